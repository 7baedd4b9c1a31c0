package exercise

import (
	"errors"
	"fmt"
	"time"
)

// Well-known phase names. Any other non-empty label is accepted as a
// domain-specific phase.
const (
	Inhale = "inhale"
	Hold   = "hold"
	Exhale = "exhale"
)

// ErrInvalidDefinition is returned when a definition cannot be executed.
var ErrInvalidDefinition = errors.New("invalid definition")

// Phase is a named, fixed-duration interval of an exercise.
type Phase struct {
	Name     string
	Duration time.Duration
}

// P is shorthand for a phase measured in whole seconds.
func P(name string, secs int) Phase {
	return Phase{Name: name, Duration: time.Duration(secs) * time.Second}
}

func (p Phase) validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: phase has no name", ErrInvalidDefinition)
	}
	if p.Duration <= 0 {
		return fmt.Errorf("%w: phase %q has non-positive duration %v", ErrInvalidDefinition, p.Name, p.Duration)
	}
	return nil
}

// Loop is the structured form of a definition: a one-shot prologue, a body
// repeated Repeat times, and a one-shot epilogue.
type Loop struct {
	Prologue []Phase
	Body     []Phase
	Epilogue []Phase
	Repeat   int
}

// Flatten expands l into the linear sequence
// prologue ++ body*repeat ++ epilogue.
func Flatten(l Loop) ([]Phase, error) {
	if l.Repeat < 1 {
		return nil, fmt.Errorf("%w: repeat count %d", ErrInvalidDefinition, l.Repeat)
	}
	if len(l.Body) == 0 {
		return nil, fmt.Errorf("%w: empty loop body", ErrInvalidDefinition)
	}

	out := make([]Phase, 0, len(l.Prologue)+len(l.Body)*l.Repeat+len(l.Epilogue))
	out = append(out, l.Prologue...)
	for i := 0; i < l.Repeat; i++ {
		out = append(out, l.Body...)
	}
	out = append(out, l.Epilogue...)

	for _, p := range out {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
