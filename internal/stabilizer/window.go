// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package stabilizer

// window is a fixed-length FIFO. It is always full: Push evicts the
// oldest element.
type window[T any] struct {
	data []T
	head int // index of the oldest element
}

func newWindow[T any](size int, neutral T) *window[T] {
	w := &window[T]{data: make([]T, size)}
	w.fill(neutral)
	return w
}

func (w *window[T]) fill(v T) {
	for i := range w.data {
		w.data[i] = v
	}
	w.head = 0
}

func (w *window[T]) Push(v T) {
	w.data[w.head] = v
	w.head = (w.head + 1) % len(w.data)
}

func (w *window[T]) Len() int { return len(w.data) }

// At returns the i-th element counting from the oldest.
func (w *window[T]) At(i int) T {
	return w.data[(w.head+i)%len(w.data)]
}

// Latest returns the newest element.
func (w *window[T]) Latest() T {
	return w.At(len(w.data) - 1)
}
