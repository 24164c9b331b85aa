// Package mathx holds the small generic numeric helpers shared by the
// formatting and display code.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]; swapped bounds are put back in order.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	return Min(Max(v, lo), hi)
}

// Between reports lo <= v <= hi, whichever way round the bounds are given.
func Between[T constraints.Ordered](v, lo, hi T) bool {
	if hi < lo {
		lo, hi = hi, lo
	}
	return v >= lo && v <= hi
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b; display.New uses it as a floor.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
