package metrics

import "slices"

// Group aggregation helpers used by the catalog views. Keys and values are
// caller-supplied so the same helpers serve brand, parent and type rollups.

// GroupBy buckets items under the key function.
func GroupBy[T any, K comparable](items []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, item := range items {
		k := key(item)
		groups[k] = append(groups[k], item)
	}
	return groups
}

// SumBy totals val per key.
func SumBy[T any, K comparable](items []T, key func(T) K, val func(T) float64) map[K]float64 {
	sums := make(map[K]float64)
	for _, item := range items {
		sums[key(item)] += val(item)
	}
	return sums
}

// CountBy counts items per key.
func CountBy[T any, K comparable](items []T, key func(T) K) map[K]int {
	counts := make(map[K]int)
	for _, item := range items {
		counts[key(item)]++
	}
	return counts
}

// MeanBy averages val per key. Items for which val reports ok=false are
// excluded from both numerator and denominator; keys whose every item is
// excluded do not appear in the result.
func MeanBy[T any, K comparable](items []T, key func(T) K, val func(T) (float64, bool)) map[K]float64 {
	sums := make(map[K]float64)
	counts := make(map[K]int)
	for _, item := range items {
		v, ok := val(item)
		if !ok {
			continue
		}
		k := key(item)
		sums[k] += v
		counts[k]++
	}
	means := make(map[K]float64, len(sums))
	for k, sum := range sums {
		means[k] = sum / float64(counts[k])
	}
	return means
}

// TopN returns the n items with the largest val, descending. The input
// slice is not modified.
func TopN[T any](items []T, n int, val func(T) float64) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	slices.SortFunc(sorted, func(a, b T) int {
		va, vb := val(a), val(b)
		if va > vb {
			return -1
		}
		if va < vb {
			return 1
		}
		return 0
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
