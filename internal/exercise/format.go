package exercise

import (
	"fmt"
	"time"
)

// FormatClock renders a countdown as MM:SS, rounding up to the next whole
// second so a display never shows 00:00 while time is still left.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Percent returns elapsed as a percentage of total, clamped to 0..100.
func Percent(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(elapsed) / float64(total) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
