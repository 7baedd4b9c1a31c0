package catalog

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sadopc/breathe/internal/exercise"
	"github.com/sadopc/breathe/internal/store"
)

// ErrInvalidMethod is returned for custom methods that cannot be saved.
var ErrInvalidMethod = errors.New("invalid method")

// Pattern is a named breathing rhythm: one cycle of inhale, hold, exhale,
// hold. Zero-length holds are skipped when the cycle is built. Prologue and
// Epilogue, when set, run once around the repeated cycles.
type Pattern struct {
	ID          string
	Name        string
	Description string

	Inhale  time.Duration
	HoldIn  time.Duration
	Exhale  time.Duration
	HoldOut time.Duration

	Prologue []exercise.Phase
	Epilogue []exercise.Phase

	Icon   string
	Color  string
	Custom bool
}

// Cycle returns the phases of one breath, omitting zero-length holds.
func (p Pattern) Cycle() []exercise.Phase {
	var out []exercise.Phase
	for _, ph := range []exercise.Phase{
		{Name: exercise.Inhale, Duration: p.Inhale},
		{Name: exercise.Hold, Duration: p.HoldIn},
		{Name: exercise.Exhale, Duration: p.Exhale},
		{Name: exercise.Hold, Duration: p.HoldOut},
	} {
		if ph.Duration > 0 {
			out = append(out, ph)
		}
	}
	return out
}

func (p Pattern) CycleDuration() time.Duration {
	return p.Inhale + p.HoldIn + p.Exhale + p.HoldOut
}

// Definition builds an executable definition of cycles repetitions.
func (p Pattern) Definition(cycles int) (*exercise.Definition, error) {
	return exercise.NewLoopDefinition(p.Name, exercise.Loop{
		Prologue: p.Prologue,
		Body:     p.Cycle(),
		Epilogue: p.Epilogue,
		Repeat:   cycles,
	})
}

// Rhythm renders the cycle in the usual "4-7-8" notation, in seconds.
func (p Pattern) Rhythm() string {
	s := func(d time.Duration) int { return int(d / time.Second) }
	if p.HoldOut > 0 {
		return fmt.Sprintf("%d-%d-%d-%d", s(p.Inhale), s(p.HoldIn), s(p.Exhale), s(p.HoldOut))
	}
	if p.HoldIn > 0 {
		return fmt.Sprintf("%d-%d-%d", s(p.Inhale), s(p.HoldIn), s(p.Exhale))
	}
	return fmt.Sprintf("%d-%d", s(p.Inhale), s(p.Exhale))
}

// MaxPhaseSeconds bounds every phase of a custom method.
const MaxPhaseSeconds = 60

// Validate checks the constraints a custom method must satisfy.
func (p Pattern) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidMethod)
	}
	if p.Inhale <= 0 || p.Exhale <= 0 {
		return fmt.Errorf("%w: inhale and exhale must be positive", ErrInvalidMethod)
	}
	if p.HoldIn < 0 || p.HoldOut < 0 {
		return fmt.Errorf("%w: holds cannot be negative", ErrInvalidMethod)
	}
	for _, d := range []time.Duration{p.Inhale, p.HoldIn, p.Exhale, p.HoldOut} {
		if d > MaxPhaseSeconds*time.Second {
			return fmt.Errorf("%w: phases are limited to %ds", ErrInvalidMethod, MaxPhaseSeconds)
		}
	}
	return nil
}

// NewCustomID returns a fresh, time-ordered id for a custom method.
func NewCustomID() string {
	return "custom-" + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

// FromMethod converts a stored custom method.
func FromMethod(m store.Method) Pattern {
	desc := m.Description
	if desc == "" {
		desc = "Custom meditation method"
	}
	return Pattern{
		ID:          m.ID,
		Name:        m.Title,
		Description: desc,
		Inhale:      secs(m.Inhale),
		HoldIn:      secs(m.HoldIn),
		Exhale:      secs(m.Exhale),
		HoldOut:     secs(m.HoldOut),
		Icon:        m.Icon,
		Color:       m.Color,
		Custom:      true,
	}
}

// ToMethod converts p for storage.
func (p Pattern) ToMethod() store.Method {
	return store.Method{
		ID:          p.ID,
		Title:       p.Name,
		Description: p.Description,
		Icon:        p.Icon,
		Color:       p.Color,
		Inhale:      int(p.Inhale / time.Second),
		HoldIn:      int(p.HoldIn / time.Second),
		Exhale:      int(p.Exhale / time.Second),
		HoldOut:     int(p.HoldOut / time.Second),
	}
}
