package model

// Field is an optional patch value. The zero Field is absent.
type Field[T any] struct {
	Value T
	Set   bool
}

// Set returns a present Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Get returns the value and whether it is present.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}

func (f Field[T]) applyTo(dst *T) bool {
	if !f.Set {
		return false
	}
	*dst = f.Value
	return true
}
