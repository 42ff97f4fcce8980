package mask

import "golang.org/x/exp/slices"

// index maps slice positions to child masks and iterates in ascending key order.
type index[M any] struct {
	keys []int
	vals map[int]M
}

func (ix *index[M]) len() int { return len(ix.keys) }

func (ix *index[M]) get(k int) (M, bool) {
	v, ok := ix.vals[k]
	return v, ok
}

func (ix *index[M]) put(k int, v M) {
	if ix.vals == nil {
		ix.vals = make(map[int]M)
	}
	if _, ok := ix.vals[k]; !ok {
		i, _ := slices.BinarySearch(ix.keys, k)
		ix.keys = slices.Insert(ix.keys, i, k)
	}
	ix.vals[k] = v
}

func (ix *index[M]) remove(k int) {
	if _, ok := ix.vals[k]; !ok {
		return
	}
	delete(ix.vals, k)
	if i, found := slices.BinarySearch(ix.keys, k); found {
		ix.keys = slices.Delete(ix.keys, i, i+1)
	}
}

func (ix *index[M]) first() (int, M, bool) {
	if len(ix.keys) == 0 {
		var zero M
		return 0, zero, false
	}
	k := ix.keys[0]
	return k, ix.vals[k], true
}

func (ix *index[M]) last() (int, M, bool) {
	if len(ix.keys) == 0 {
		var zero M
		return 0, zero, false
	}
	k := ix.keys[len(ix.keys)-1]
	return k, ix.vals[k], true
}

// between returns the keys strictly inside (lo, hi).
func (ix *index[M]) between(lo, hi int) []int {
	i, found := slices.BinarySearch(ix.keys, lo)
	if found {
		i++
	}
	j, _ := slices.BinarySearch(ix.keys, hi)
	if i >= j {
		return nil
	}
	return ix.keys[i:j]
}

// unionKeys merges two ascending key lists without duplicates.
func unionKeys(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// intersectKeys returns the keys present in both ascending lists.
func intersectKeys(a, b []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
