package exercise

import (
	"sync/atomic"
	"time"
)

// State is the engine's lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Paused
	Finished
)

var stateNames = map[State]string{
	Idle:     "idle",
	Running:  "running",
	Paused:   "paused",
	Finished: "finished",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Snapshot is an immutable readout of the engine at one point of its clock.
type Snapshot struct {
	Seq uint64 // strictly increasing per engine

	State    State
	Running  bool
	Finished bool

	Elapsed time.Duration
	Total   time.Duration

	PhaseIndex int
	Phase      Phase
	// PhaseEnd is the offset from the start at which the current phase ends.
	PhaseEnd         time.Duration
	RemainingInPhase time.Duration

	Progress float64 // percent, 0..100
}

// Remaining is the time left in the whole exercise.
func (s Snapshot) Remaining() time.Duration {
	if s.Elapsed >= s.Total {
		return 0
	}
	return s.Total - s.Elapsed
}

// Observer receives engine snapshots.
type Observer interface {
	Observe(Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) Observe(s Snapshot) { f(s) }

type subscription struct {
	id     uint64
	obs    Observer
	active atomic.Bool
}
