package record

import "strings"

// Tuple is an ordered sequence of Values: one row of output. It has no
// identity beyond its contents and is passed and cloned by value
// semantics — Clone produces an independent copy a caller can hold onto
// across calls.
type Tuple []Value

// Clone returns an independent copy of t.
func (t Tuple) Clone() Tuple {
	out := make(Tuple, len(t))
	copy(out, t)
	return out
}

// Concat returns a new Tuple holding left's values followed by right's,
// matching Schema.Merge's column ordering.
func Concat(left, right Tuple) Tuple {
	out := make(Tuple, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return out
}

// String renders t as its values joined by " | ", matching the bare
// field rendering original_source/src/types.h's printTuple uses before
// a column name is prefixed on.
func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = v.String()
	}
	return strings.Join(parts, " | ")
}
