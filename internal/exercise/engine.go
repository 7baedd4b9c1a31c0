package exercise

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultQuantum is the amount of exercise time added on every tick.
const DefaultQuantum = 100 * time.Millisecond

// Option configures an Engine.
type Option func(*Engine)

// WithQuantum sets the tick quantum. Non-positive values are ignored.
func WithQuantum(q time.Duration) Option {
	return func(e *Engine) {
		if q > 0 {
			e.quantum = q
		}
	}
}

// WithClock replaces the real-time ticker source.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLogger sets the logger used for transitions and observer faults.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine executes a Definition over time and reports progress to observers.
//
// While running the engine owns one ticker goroutine. The goroutine is
// released on Pause, on completion, on Reset and on Close. Whoever creates
// an Engine must call Close when done with it.
type Engine struct {
	def     *Definition
	quantum time.Duration
	clock   Clock
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	elapsed time.Duration
	index   int
	closed  bool

	// run identifies the active tick loop; ticks from older loops are dropped.
	run  uint64
	stop chan struct{}

	seq     uint64
	subs    []*subscription
	nextSub uint64

	pending  []Snapshot
	draining bool
}

// New creates an idle engine bound to def. It does not start ticking.
func New(def *Definition, opts ...Option) *Engine {
	e := &Engine{
		def:     def,
		quantum: DefaultQuantum,
		clock:   realClock{},
		logger:  slog.New(slog.DiscardHandler),
		state:   Idle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Definition() *Definition { return e.def }
func (e *Engine) Quantum() time.Duration  { return e.quantum }

// Subscribe registers o and returns a function that removes it again.
// Calling the returned function more than once is a no-op.
//
// Observers are called on the goroutine that drains the snapshot queue.
// A control call usually delivers its own snapshot before returning, but
// when another goroutine (the tick loop, or an observer calling back in)
// is already draining, the snapshot is queued and delivered by that
// goroutine after the ones before it. Per observer, snapshots always
// arrive in Seq order.
func (e *Engine) Subscribe(o Observer) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextSub++
	sub := &subscription{id: e.nextSub, obs: o}
	sub.active.Store(true)
	if !e.closed {
		e.subs = append(e.subs, sub)
	}

	return func() {
		if !sub.active.Swap(false) {
			return
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == sub.id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				break
			}
		}
	}
}

// Start begins or resumes ticking. It is a no-op while running, once
// finished, and after Close.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.closed || e.state == Running || e.state == Finished {
		e.mu.Unlock()
		return
	}
	from := e.state
	e.state = Running
	e.run++
	e.stop = make(chan struct{})
	go e.loop(e.run, e.clock.NewTicker(e.quantum), e.stop)
	e.logger.Debug("exercise started", "definition", e.def.Name(), "from", from.String(), "elapsed", e.elapsed)
	e.emitLocked()
	e.mu.Unlock()

	e.drain()
}

// Pause halts ticking, keeping elapsed time and the current phase.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.closed || e.state != Running {
		e.mu.Unlock()
		return
	}
	e.state = Paused
	e.haltLocked()
	e.logger.Debug("exercise paused", "definition", e.def.Name(), "elapsed", e.elapsed)
	e.emitLocked()
	e.mu.Unlock()

	e.drain()
}

// Toggle pauses a running engine and starts any other.
func (e *Engine) Toggle() {
	if e.State() == Running {
		e.Pause()
		return
	}
	e.Start()
}

// Reset stops ticking and returns the engine to Idle from any state.
func (e *Engine) Reset() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.haltLocked()
	e.state = Idle
	e.elapsed = 0
	e.index = 0
	e.logger.Debug("exercise reset", "definition", e.def.Name())
	e.emitLocked()
	e.mu.Unlock()

	e.drain()
}

// Close stops ticking and drops every observer. It is safe to call more
// than once; control calls after Close are no-ops.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.haltLocked()
	for _, s := range e.subs {
		s.active.Store(false)
	}
	e.subs = nil
	e.pending = nil
}

// Snapshot returns the current derived state without notifying anyone.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Elapsed() time.Duration         { return e.Snapshot().Elapsed }
func (e *Engine) Remaining() time.Duration       { return e.Snapshot().Remaining() }
func (e *Engine) RemainingInPhase() time.Duration { return e.Snapshot().RemainingInPhase }
func (e *Engine) CurrentPhase() Phase            { return e.Snapshot().Phase }
func (e *Engine) PhaseIndex() int                { return e.Snapshot().PhaseIndex }
func (e *Engine) Progress() float64              { return e.Snapshot().Progress }
func (e *Engine) Running() bool                  { return e.State() == Running }
func (e *Engine) Finished() bool                 { return e.State() == Finished }

func (e *Engine) loop(run uint64, t Ticker, stop <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			if !e.tick(run) {
				return
			}
		}
	}
}

// tick advances the clock by one quantum. It reports whether the loop that
// delivered it should keep going.
func (e *Engine) tick(run uint64) bool {
	e.mu.Lock()
	if e.closed || e.run != run || e.state != Running {
		e.mu.Unlock()
		return false
	}

	e.elapsed += e.quantum
	// Catch up across every boundary crossed during this quantum, so quanta
	// longer than the shortest phase never stick on an old phase.
	last := e.def.Len() - 1
	for e.index < last && e.elapsed >= e.def.CumulativeEnd(e.index) {
		e.index++
	}

	done := false
	if total := e.def.Total(); e.elapsed >= total {
		e.elapsed = total
		e.state = Finished
		e.haltLocked()
		done = true
		e.logger.Debug("exercise finished", "definition", e.def.Name(), "total", total)
	}
	e.emitLocked()
	e.mu.Unlock()

	e.drain()
	return !done
}

// haltLocked cancels the active tick loop, if any.
func (e *Engine) haltLocked() {
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	e.run++
}

func (e *Engine) snapshotLocked() Snapshot {
	total := e.def.Total()
	end := e.def.CumulativeEnd(e.index)
	remaining := end - e.elapsed
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		Seq:              e.seq,
		State:            e.state,
		Running:          e.state == Running,
		Finished:         e.state == Finished,
		Elapsed:          e.elapsed,
		Total:            total,
		PhaseIndex:       e.index,
		Phase:            e.def.Phase(e.index),
		PhaseEnd:         end,
		RemainingInPhase: remaining,
		Progress:         Percent(e.elapsed, total),
	}
}

func (e *Engine) emitLocked() {
	e.seq++
	e.pending = append(e.pending, e.snapshotLocked())
}

// drain delivers queued snapshots in order. Only one goroutine drains at a
// time; others leave their snapshots in the queue for it. An observer that
// calls back into the engine therefore queues rather than deadlocks.
func (e *Engine) drain() {
	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		return
	}
	e.draining = true
	for len(e.pending) > 0 {
		snap := e.pending[0]
		e.pending = e.pending[1:]
		subs := append([]*subscription(nil), e.subs...)
		e.mu.Unlock()

		for _, s := range subs {
			if s.active.Load() {
				e.deliver(s, snap)
			}
		}

		e.mu.Lock()
	}
	e.draining = false
	e.mu.Unlock()
}

func (e *Engine) deliver(s *subscription, snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("observer panicked", "subscription", s.id, "seq", snap.Seq, "panic", r)
		}
	}()
	s.obs.Observe(snap)
}

// Channel subscribes a buffered channel to e. When the buffer is full the
// oldest undelivered snapshot is discarded so the newest always gets
// through. The channel is never closed; call cancel to stop deliveries.
func (e *Engine) Channel(buf int) (<-chan Snapshot, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan Snapshot, buf)
	cancel := e.Subscribe(ObserverFunc(func(s Snapshot) {
		for {
			select {
			case ch <- s:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}))
	return ch, cancel
}
