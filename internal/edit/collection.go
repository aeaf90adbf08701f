// Package edit holds the mutations behind the article editing surfaces.
// Every function returns a new value and leaves its input untouched, so a
// caller can keep the previous snapshot around and compare or restore it.
package edit

import (
	"errors"
	"fmt"
)

var ErrIndexOutOfRange = errors.New("index out of range")

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d (length %d)", ErrIndexOutOfRange, i, n)
	}
	return nil
}

// Append adds v at the end of a copy of s.
func Append[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

// RemoveAt drops the element at i; later elements move down by one.
func RemoveAt[T any](s []T, i int) ([]T, error) {
	if err := checkIndex(i, len(s)); err != nil {
		return s, err
	}
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...), nil
}

func ReplaceAt[T any](s []T, i int, v T) ([]T, error) {
	if err := checkIndex(i, len(s)); err != nil {
		return s, err
	}
	out := make([]T, len(s))
	copy(out, s)
	out[i] = v
	return out, nil
}

// update applies fn to a copy of the element at i.
func update[T any](s []T, i int, fn func(T) T) ([]T, error) {
	if err := checkIndex(i, len(s)); err != nil {
		return s, err
	}
	return ReplaceAt(s, i, fn(s[i]))
}
