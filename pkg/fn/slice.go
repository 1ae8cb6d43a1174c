package fn

// Map applies f to each element.
func Map[T, U any](items []T, f func(T) U) []U {
	out := make([]U, len(items))
	for i, v := range items {
		out[i] = f(v)
	}
	return out
}

// FilterMap applies f and keeps results where ok is true.
func FilterMap[T, U any](items []T, f func(T) (U, bool)) []U {
	var out []U
	for _, v := range items {
		if u, ok := f(v); ok {
			out = append(out, u)
		}
	}
	return out
}

// UniqueBy returns the distinct keys of items, in first-seen order.
func UniqueBy[T any, K comparable](items []T, key func(T) K) []K {
	seen := make(map[K]struct{})
	var out []K
	for _, v := range items {
		k := key(v)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// Counted is a key with the number of items that produced it.
type Counted[K comparable] struct {
	Key   K
	Count int
}

// CountBy counts items per key, keys in first-seen order.
func CountBy[T any, K comparable](items []T, key func(T) K) []Counted[K] {
	idx := make(map[K]int)
	var out []Counted[K]
	for _, v := range items {
		k := key(v)
		if i, ok := idx[k]; ok {
			out[i].Count++
			continue
		}
		idx[k] = len(out)
		out = append(out, Counted[K]{Key: k, Count: 1})
	}
	return out
}
