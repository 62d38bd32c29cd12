// Package chunk groups a forward-only sequence into fixed-size batches
// without knowing its length in advance.
package chunk

import "iter"

// Chunk returns a sequence of consecutive groups of up to size elements
// pulled from src, in order. The last group may be shorter; an exhausted
// source never produces an empty group. The result makes a single pass
// over src and is not restartable when src is not.
//
// Chunk panics if size is less than 1.
func Chunk[T any](src iter.Seq[T], size int) iter.Seq[[]T] {
	if size < 1 {
		panic("chunk: size must be at least 1")
	}
	return func(yield func([]T) bool) {
		group := make([]T, 0, size)
		for v := range src {
			group = append(group, v)
			if len(group) < size {
				continue
			}
			if !yield(group) {
				return
			}
			group = make([]T, 0, size)
		}
		if len(group) > 0 {
			yield(group)
		}
	}
}

// Slice adapts s to a sequence. Its length is still available to callers
// that hold the slice.
func Slice[T any](s []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}
}
