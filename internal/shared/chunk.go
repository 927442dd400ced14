package shared

// Chunk splits items into contiguous sub-slices of at most size elements.
// The sub-slices alias the input; callers must not append to them.
// A size <= 0 yields a single chunk containing everything.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for size < len(items) {
		chunks = append(chunks, items[:size:size])
		items = items[size:]
	}
	return append(chunks, items)
}
