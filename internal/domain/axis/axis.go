// Package axis defines the moral-axis vocabulary shared across the engine.
//
// Axis names arrive from authored content and from player choice history as
// free-form strings. Historically "Honesty" and "honesty" referred to the
// same axis, so identity is case-insensitive: every boundary normalizes the
// raw string into an ID before scores are accumulated or compared.
package axis

import "strings"

// ID is a normalized axis identifier. Two raw axis strings that differ only
// in case or surrounding whitespace map to the same ID.
type ID string

// Normalize converts a raw axis name into its canonical ID.
// A blank name normalizes to the empty ID, which callers treat as "no axis".
func Normalize(raw string) ID {
	return ID(strings.ToLower(strings.TrimSpace(raw)))
}

// IsZero reports whether the ID carries no axis at all.
func (id ID) IsZero() bool {
	return id == ""
}

// String returns the canonical form.
func (id ID) String() string {
	return string(id)
}

// Scores accumulates per-axis deltas.
type Scores map[ID]float64

// NewScores returns an empty score map.
func NewScores() Scores {
	return make(Scores)
}

// Add applies a delta to an axis, creating the entry at zero if absent.
// Deltas against the zero ID are dropped.
func (s Scores) Add(id ID, delta float64) {
	if id.IsZero() {
		return
	}
	s[id] += delta
}

// Clone returns an independent copy. Branch points in path enumeration rely
// on this so sibling branches never share an accumulator.
func (s Scores) Clone() Scores {
	out := make(Scores, len(s))
	for id, v := range s {
		out[id] = v
	}
	return out
}

// Merge adds every entry of other into s.
func (s Scores) Merge(other Scores) {
	for id, v := range other {
		s[id] += v
	}
}
