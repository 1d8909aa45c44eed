package lookup

// Varying models a per-sample value that may be supplied densely, one
// entry per batch slot, or omitted entirely — in which case every
// index reads back a single uniform value. Modeled as an optional
// slice with a cheap is-empty check rather than pointer arithmetic
// over a possibly-null buffer.
type Varying[T any] struct {
	uniform T
	dense   []T
}

// Uniform returns a Varying that reports v for every index.
func Uniform[T any](v T) Varying[T] {
	return Varying[T]{uniform: v}
}

// Dense returns a Varying backed by a per-sample slice. An empty or
// nil slice behaves as the zero value of T for every index.
func Dense[T any](values []T) Varying[T] {
	return Varying[T]{dense: values}
}

// At returns the value for sample i.
func (v Varying[T]) At(i int) T {
	if len(v.dense) == 0 {
		return v.uniform
	}
	return v.dense[i]
}

// IsEmpty reports whether v carries no per-sample data at all (true
// uniform, including the zero Varying).
func (v Varying[T]) IsEmpty() bool {
	return len(v.dense) == 0
}
