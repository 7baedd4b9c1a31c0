package exercise

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{100 * time.Millisecond, "00:01"},
		{time.Second, "00:01"},
		{4*time.Second - 100*time.Millisecond, "00:04"},
		{59 * time.Second, "00:59"},
		{61 * time.Second, "01:01"},
		{42 * time.Minute, "42:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatClock(tt.d), "FormatClock(%v)", tt.d)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		elapsed, total time.Duration
		want           float64
	}{
		{0, 10 * time.Second, 0},
		{5 * time.Second, 10 * time.Second, 50},
		{10 * time.Second, 10 * time.Second, 100},
		{11 * time.Second, 10 * time.Second, 100},
		{time.Second, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.elapsed, tt.total), "Percent(%v, %v)", tt.elapsed, tt.total)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Running: "running", Paused: "paused", Finished: "finished", State(42): "unknown"} {
		assert.Equal(t, want, s.String(), "State(%d)", s)
	}
}
