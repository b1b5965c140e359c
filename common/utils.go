package common

import (
	"cmp"
	"slices"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// SortedKeys returns the keys of m in ascending order.
//
// Parameters:
//   - m: the map whose keys are collected
//
// Returns:
//   - []K: a freshly allocated, sorted slice of keys
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// WrapIndex maps i onto [0, n) with wrap-around in both directions. It returns 0 when n is not positive.
func WrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}
