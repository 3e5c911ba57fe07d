package transform

import "sort"

// OrdinalRank assigns 1-based ranks to rows ordered by less. Rows that
// compare equal keep their input order, so every rank is distinct.
func OrdinalRank[T any](rows []T, less func(a, b T) bool) []int {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return less(rows[idx[i]], rows[idx[j]])
	})
	ranks := make([]int, len(rows))
	for pos, i := range idx {
		ranks[i] = pos + 1
	}
	return ranks
}

// Partition is one group of rows sharing a key.
type Partition[K comparable, T any] struct {
	Key  K
	Rows []T
}

// PartitionBy groups rows by key, preserving first-seen key order and input
// order within each group.
func PartitionBy[K comparable, T any](rows []T, key func(T) K) []Partition[K, T] {
	index := make(map[K]int)
	var parts []Partition[K, T]
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(parts)
			index[k] = i
			parts = append(parts, Partition[K, T]{Key: k})
		}
		parts[i].Rows = append(parts[i].Rows, r)
	}
	return parts
}

// TopK partitions rows by key and keeps, per partition, the rows whose
// ordinal rank under less is at most k. Kept rows are in input order.
// Partitions are returned in first-seen order; k <= 0 keeps nothing.
func TopK[K comparable, T any](rows []T, key func(T) K, less func(a, b T) bool, k int) []Partition[K, T] {
	if k <= 0 {
		return nil
	}
	parts := PartitionBy(rows, key)
	for i := range parts {
		ranks := OrdinalRank(parts[i].Rows, less)
		kept := parts[i].Rows[:0:0]
		for j, r := range parts[i].Rows {
			if ranks[j] <= k {
				kept = append(kept, r)
			}
		}
		parts[i].Rows = kept
	}
	return parts
}
