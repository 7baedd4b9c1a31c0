package exercise

import (
	"fmt"
	"time"
)

// Definition is an immutable, validated, linear phase sequence.
type Definition struct {
	name   string
	phases []Phase
	ends   []time.Duration // ends[i] = sum of durations of phases[0..i]
}

// NewDefinition builds a definition from a linear phase sequence.
func NewDefinition(name string, phases ...Phase) (*Definition, error) {
	if len(phases) == 0 {
		return nil, fmt.Errorf("%w: no phases", ErrInvalidDefinition)
	}

	d := &Definition{
		name:   name,
		phases: make([]Phase, len(phases)),
		ends:   make([]time.Duration, len(phases)),
	}
	var acc time.Duration
	for i, p := range phases {
		if err := p.validate(); err != nil {
			return nil, err
		}
		acc += p.Duration
		d.phases[i] = p
		d.ends[i] = acc
	}
	return d, nil
}

// NewLoopDefinition flattens l and builds a definition from the result.
func NewLoopDefinition(name string, l Loop) (*Definition, error) {
	phases, err := Flatten(l)
	if err != nil {
		return nil, err
	}
	return NewDefinition(name, phases...)
}

func (d *Definition) Name() string { return d.name }
func (d *Definition) Len() int     { return len(d.phases) }

// Phase returns the i-th phase of the flattened sequence.
func (d *Definition) Phase(i int) Phase { return d.phases[i] }

// Phases returns a copy of the flattened sequence.
func (d *Definition) Phases() []Phase {
	return append([]Phase(nil), d.phases...)
}

// CumulativeEnd is the offset from the start at which phase i ends.
func (d *Definition) CumulativeEnd(i int) time.Duration { return d.ends[i] }

// Total is the sum of all phase durations.
func (d *Definition) Total() time.Duration { return d.ends[len(d.ends)-1] }

// MinPhase returns the shortest phase duration.
func (d *Definition) MinPhase() time.Duration {
	m := d.phases[0].Duration
	for _, p := range d.phases[1:] {
		if p.Duration < m {
			m = p.Duration
		}
	}
	return m
}
