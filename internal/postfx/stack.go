package postfx

import (
	"fmt"
	"image"
)

// Stack runs effects in order, feeding each output to the next as Color.
type Stack struct {
	effects []Effect
}

// Push appends an effect.
func (s *Stack) Push(e Effect) {
	s.effects = append(s.effects, e)
}

// Remove drops every effect of the given kind and reports whether any was found.
func (s *Stack) Remove(k Kind) bool {
	kept := s.effects[:0]
	for _, e := range s.effects {
		if e.Kind() != k {
			kept = append(kept, e)
		}
	}
	removed := len(kept) != len(s.effects)
	clear(s.effects[len(kept):])
	s.effects = kept
	return removed
}

// Len returns the number of effects.
func (s *Stack) Len() int { return len(s.effects) }

// Apply runs the chain. An empty stack returns the color input unchanged.
func (s *Stack) Apply(in Inputs) (*image.RGBA, error) {
	if err := checkColor(in); err != nil {
		return nil, err
	}
	for _, e := range s.effects {
		out, err := e.Apply(in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Kind(), err)
		}
		in.Color = out
	}
	return in.Color, nil
}
