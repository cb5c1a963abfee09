// Package reconcile implements the read-after-write merge used by client
// caches: after a successful write, the server-confirmed record is merged
// into the local list by id instead of re-querying the whole collection.
package reconcile

// Merge returns list with rec merged in by id. A record with a matching id
// is replaced in place; an unknown record is prepended, newest first. The
// input slice is not mutated.
func Merge[T any](list []T, rec T, id func(T) string) []T {
	key := id(rec)
	for i, existing := range list {
		if id(existing) == key {
			out := make([]T, len(list))
			copy(out, list)
			out[i] = rec
			return out
		}
	}
	out := make([]T, 0, len(list)+1)
	out = append(out, rec)
	out = append(out, list...)
	return out
}

// Drop returns list without the record with the given id. The input slice
// is not mutated.
func Drop[T any](list []T, key string, id func(T) string) []T {
	out := make([]T, 0, len(list))
	for _, existing := range list {
		if id(existing) == key {
			continue
		}
		out = append(out, existing)
	}
	return out
}
