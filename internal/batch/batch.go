// Package batch splits row slices into chunks sized for the sink's per-statement
// row ceiling. Pure transformation, no I/O.
package batch

// Chunk splits rows into sub-slices of at most size elements, preserving order.
// The sub-slices alias the input. size must be positive; a nil or empty input
// yields no chunks.
func Chunk[T any](rows []T, size int) [][]T {
	if size <= 0 || len(rows) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(rows)+size-1)/size)
	for len(rows) > size {
		out = append(out, rows[:size:size])
		rows = rows[size:]
	}
	return append(out, rows)
}
