package roster

// Move returns a copy of items with the element at from removed and
// reinserted at to; everything between shifts by one. Out-of-range indexes
// (including -1 from a failed lookup) return an unchanged copy.
func Move[T any](items []T, from, to int) []T {
	out := make([]T, len(items))
	copy(out, items)
	if from < 0 || to < 0 || from >= len(items) || to >= len(items) || from == to {
		return out
	}

	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out
}
