package reorder

// Move returns a new slice with the element at from moved to the
// displayed drop position to, where to is measured against the list with the
// element still in place and len(list) means "move to the end". Dropping an
// element further down the list lands it right before the element that was at
// to, which after removing the source is index to-1. An out of range from
// returns the input unchanged.
func Move[T any](list []T, from, to int) []T {
	if from < 0 || from >= len(list) {
		return list
	}
	if to < 0 {
		to = 0
	}
	if to > len(list) {
		to = len(list)
	}

	insertAt := to
	if from < to {
		insertAt = to - 1
	}

	moved := list[from]
	result := make([]T, 0, len(list))
	result = append(result, list[:from]...)
	result = append(result, list[from+1:]...)

	result = append(result, moved)
	copy(result[insertAt+1:], result[insertAt:len(result)-1])
	result[insertAt] = moved

	return result
}
