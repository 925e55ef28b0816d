package dioph

import "sort"

// workVec is a single reused sparse vector keyed by local-variable index,
// scratch space for row construction. Callers must Clear it before use;
// Keys returns indices in ascending order so that iteration is
// deterministic.
type workVec struct {
	vals map[int]Q
}

func newWorkVec() *workVec {
	return &workVec{vals: make(map[int]Q)}
}

func (w *workVec) Clear() {
	for k := range w.vals {
		delete(w.vals, k)
	}
}

func (w *workVec) Get(k int) Q {
	if v, ok := w.vals[k]; ok {
		return v
	}
	return Zero()
}

func (w *workVec) IsZero(k int) bool {
	v, ok := w.vals[k]
	return !ok || v.IsZero()
}

// AddAt adds delta to the value at k, erasing the slot entirely if the
// result is exactly zero (so IsZero/iteration never see stale zeros).
func (w *workVec) AddAt(k int, delta Q) {
	nv := w.Get(k).Add(delta)
	if nv.IsZero() {
		delete(w.vals, k)
	} else {
		w.vals[k] = nv
	}
}

func (w *workVec) Set(k int, v Q) {
	if v.IsZero() {
		delete(w.vals, k)
		return
	}
	w.vals[k] = v
}

func (w *workVec) Erase(k int) { delete(w.vals, k) }

// Keys returns the currently non-zero indices, ascending.
func (w *workVec) Keys() []int {
	ks := make([]int, 0, len(w.vals))
	for k := range w.vals {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	return ks
}

func (w *workVec) Len() int { return len(w.vals) }
