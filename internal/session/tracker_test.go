package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/breathe/internal/exercise"
	"github.com/sadopc/breathe/internal/store"
)

type recorded struct {
	patternID string
	started   time.Time
	d         time.Duration
	completed bool
}

type fakeRecorder struct {
	mu   sync.Mutex
	got  []recorded
	fail bool
}

func (f *fakeRecorder) RecordSession(patternID string, startedAt time.Time, d time.Duration, completed bool) (*store.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("disk full")
	}
	f.got = append(f.got, recorded{patternID, startedAt, d, completed})
	return &store.Session{ID: int64(len(f.got)), PatternID: patternID, Duration: int64(d.Seconds()), Completed: completed}, nil
}

// fakeNow is a controllable wall clock.
type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time          { return f.t }
func (f *fakeNow) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestTracker(rec Recorder) (*Tracker, *fakeNow) {
	clock := &fakeNow{t: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	tr := NewTracker(rec, "box", nil)
	tr.now = clock.now
	return tr, clock
}

var (
	running  = exercise.Snapshot{State: exercise.Running, Running: true}
	paused   = exercise.Snapshot{State: exercise.Paused}
	finished = exercise.Snapshot{State: exercise.Finished, Finished: true}
	idle     = exercise.Snapshot{State: exercise.Idle}
)

func TestRecordsCompletedRun(t *testing.T) {
	rec := &fakeRecorder{}
	tr, clock := newTestTracker(rec)
	start := clock.t

	tr.Observe(running)
	clock.advance(30 * time.Second)
	tr.Observe(running)
	tr.Observe(paused)
	clock.advance(10 * time.Second)
	tr.Observe(running)
	clock.advance(20 * time.Second)
	tr.Observe(finished)

	require.Len(t, rec.got, 1)
	assert.Equal(t, recorded{"box", start, time.Minute, true}, rec.got[0])

	// Reset after finishing must not record a second time.
	tr.Observe(idle)
	tr.Abandon()
	assert.Len(t, rec.got, 1)
}

func TestRecordsAbandonedRunOnReset(t *testing.T) {
	rec := &fakeRecorder{}
	tr, clock := newTestTracker(rec)

	tr.Observe(running)
	clock.advance(9 * time.Second)
	tr.Observe(idle)

	require.Len(t, rec.got, 1)
	assert.False(t, rec.got[0].completed)
	assert.Equal(t, 9*time.Second, rec.got[0].d)
}

func TestAbandonRecordsInProgressRun(t *testing.T) {
	rec := &fakeRecorder{}
	tr, clock := newTestTracker(rec)

	tr.Observe(running)
	clock.advance(5 * time.Second)
	tr.Abandon()
	tr.Abandon()

	require.Len(t, rec.got, 1)
	assert.False(t, rec.got[0].completed)
}

func TestShortAbandonedRunSkipped(t *testing.T) {
	rec := &fakeRecorder{}
	tr, clock := newTestTracker(rec)

	tr.Observe(running)
	clock.advance(200 * time.Millisecond)
	tr.Observe(idle)
	assert.Empty(t, rec.got)
}

func TestNoRunNothingRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	tr, _ := newTestTracker(rec)

	tr.Observe(idle)
	tr.Abandon()
	assert.Empty(t, rec.got)
}

func TestSecondRunAfterReset(t *testing.T) {
	rec := &fakeRecorder{}
	tr, clock := newTestTracker(rec)

	tr.Observe(running)
	clock.advance(5 * time.Second)
	tr.Observe(idle)

	tr.Observe(running)
	clock.advance(16 * time.Second)
	tr.Observe(finished)

	require.Len(t, rec.got, 2)
	assert.False(t, rec.got[0].completed)
	assert.True(t, rec.got[1].completed)
	assert.Equal(t, 16*time.Second, rec.got[1].d)
}

func TestOnRecordReportsErrors(t *testing.T) {
	rec := &fakeRecorder{fail: true}
	tr, clock := newTestTracker(rec)

	var gotErr error
	calls := 0
	tr.OnRecord(func(_ *store.Session, err error) {
		calls++
		gotErr = err
	})

	tr.Observe(running)
	clock.advance(16 * time.Second)
	tr.Observe(finished)

	assert.Equal(t, 1, calls)
	assert.Error(t, gotErr)
}

func TestTrackerWithEngineAndStore(t *testing.T) {
	s, err := store.NewMemory()
	require.NoError(t, err)
	defer s.Close()

	d, err := exercise.NewDefinition("quick", exercise.Phase{Name: exercise.Inhale, Duration: 20 * time.Millisecond})
	require.NoError(t, err)
	e := exercise.New(d, exercise.WithQuantum(10*time.Millisecond))
	defer e.Close()

	tr := NewTracker(s, "quick", nil)
	done := make(chan struct{})
	tr.OnRecord(func(*store.Session, error) { close(done) })
	e.Subscribe(tr)
	e.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session was not recorded")
	}

	sessions, err := s.ListSessions(store.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "quick", sessions[0].PatternID)
	assert.True(t, sessions[0].Completed)
}
