package place

import (
	"cmp"
	"slices"
)

// eps absorbs floating point noise when comparing pixel sums.
const eps = 1e-9

// sortedIndex returns the indices of items ordered by key, ties in input
// order.
func sortedIndex[T any](items []T, key func(T) float64) []int {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(key(items[a]), key(items[b]))
	})
	return idx
}
