// Package session records finished and abandoned exercise runs.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/sadopc/breathe/internal/exercise"
	"github.com/sadopc/breathe/internal/store"
)

// MinDuration is the shortest abandoned run worth recording.
const MinDuration = time.Second

// Recorder persists a session record.
type Recorder interface {
	RecordSession(patternID string, startedAt time.Time, d time.Duration, completed bool) (*store.Session, error)
}

// Tracker observes one engine and records each run it sees: completed runs
// when the engine finishes, abandoned runs when it is reset mid-way or when
// the caller gives up on it through Abandon.
type Tracker struct {
	rec       Recorder
	patternID string
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	started  time.Time
	recorded bool
	onRecord func(*store.Session, error)
}

func NewTracker(rec Recorder, patternID string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		rec:       rec,
		patternID: patternID,
		logger:    logger,
		now:       time.Now,
	}
}

// OnRecord registers a callback invoked after every save attempt.
func (t *Tracker) OnRecord(fn func(*store.Session, error)) {
	t.mu.Lock()
	t.onRecord = fn
	t.mu.Unlock()
}

// Observe implements exercise.Observer.
func (t *Tracker) Observe(s exercise.Snapshot) {
	switch {
	case s.Running:
		t.mu.Lock()
		if t.started.IsZero() {
			t.started = t.now()
			t.recorded = false
		}
		t.mu.Unlock()
	case s.Finished:
		t.record(true)
	case s.State == exercise.Idle:
		t.record(false)
	}
}

// Abandon records the current run, if any, as not completed.
func (t *Tracker) Abandon() {
	t.record(false)
}

func (t *Tracker) record(completed bool) {
	t.mu.Lock()
	started := t.started
	skip := started.IsZero() || t.recorded
	t.started = time.Time{}
	if skip {
		t.mu.Unlock()
		return
	}
	t.recorded = true
	d := t.now().Sub(started)
	cb := t.onRecord
	t.mu.Unlock()

	if !completed && d < MinDuration {
		t.logger.Debug("abandoned session too short to record", "pattern", t.patternID, "duration", d)
		return
	}

	sess, err := t.rec.RecordSession(t.patternID, started, d, completed)
	if err != nil {
		t.logger.Error("record session", "pattern", t.patternID, "error", err)
	} else {
		t.logger.Info("session recorded", "pattern", t.patternID, "duration", d, "completed", completed)
	}
	if cb != nil {
		cb(sess, err)
	}
}
