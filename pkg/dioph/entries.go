package dioph

// EntryStatus classifies an equation entry: still pending (F), solved and
// available for substitution (S), or a fresh-variable definition that is
// neither (NoSNoF).
type EntryStatus int

const (
	StatusF EntryStatus = iota
	StatusS
	StatusNoSNoF
)

func (s EntryStatus) String() string {
	switch s {
	case StatusF:
		return "F"
	case StatusS:
		return "S"
	case StatusNoSNoF:
		return "NO_S_NO_F"
	default:
		return "?"
	}
}

// freshDef records, for a fresh internal variable, the row that defines it
// (coefficient -1 there) and the F-row that produced it.
type freshDef struct {
	entryRow  int
	originRow int
}

// Entry is one equation in the working set: row_E(i)*x + c_i = 0, with row
// i of matrix L its provenance certificate. Term identity (which LRA term
// this entry originated from, if any) is tracked separately in
// EntryStore.termOf so that removal can find its row again.
type Entry struct {
	Const  Q
	Status EntryStatus
}

// EntryStore holds every live entry plus the derived F/S/k2s bookkeeping,
// all reconstructible from the entries and matrix E alone.
type EntryStore struct {
	entries []Entry
	f       []int // ordered, pending entries
	s       []int // ordered, solved (substitutable) entries

	k2s  map[int]int // local pivot var -> S-entry index
	fdef map[int]freshDef // fresh local var -> its defining rows

	// termOf maps an entry index back to the LRA term id it was built
	// from, when it has one (fresh-definition rows do not).
	termOf map[int]TermID
	// rowOfTerm is the reverse of termOf.
	rowOfTerm map[TermID]int
}

// NewEntryStore returns an empty store.
func NewEntryStore() *EntryStore {
	return &EntryStore{
		k2s:       make(map[int]int),
		fdef:      make(map[int]freshDef),
		termOf:    make(map[int]TermID),
		rowOfTerm: make(map[TermID]int),
	}
}

// Len returns the number of live entries.
func (es *EntryStore) Len() int { return len(es.entries) }

// Entry returns entry i.
func (es *EntryStore) Entry(i int) Entry { return es.entries[i] }

// SetConst sets the constant of entry i.
func (es *EntryStore) SetConst(i int, c Q) { es.entries[i].Const = c }

// F returns the current F list (order is stable but not load-bearing for
// correctness).
func (es *EntryStore) F() []int { return es.f }

// S returns the current S list.
func (es *EntryStore) S() []int { return es.s }

// K2S returns the S-entry index whose pivot variable is k, or (-1, false).
func (es *EntryStore) K2S(k int) (int, bool) {
	e, ok := es.k2s[k]
	if !ok {
		return -1, false
	}
	return e, true
}

// FreshDefOf returns the defining rows of fresh variable xt.
func (es *EntryStore) FreshDefOf(xt int) (freshDef, bool) {
	fd, ok := es.fdef[xt]
	return fd, ok
}

// TermOfEntry returns the LRA term id entry i was built from, if any.
func (es *EntryStore) TermOfEntry(i int) (TermID, bool) {
	t, ok := es.termOf[i]
	return t, ok
}

// EntryOfTerm returns the entry index built from LRA term t, if any.
func (es *EntryStore) EntryOfTerm(t TermID) (int, bool) {
	i, ok := es.rowOfTerm[t]
	return i, ok
}

// AppendEntry appends a brand-new entry (and caller-side rows of E/L),
// returning its index, and places it on F or S (or neither) according to
// status.
func (es *EntryStore) AppendEntry(status EntryStatus, c Q) int {
	i := len(es.entries)
	es.entries = append(es.entries, Entry{Const: c, Status: status})
	switch status {
	case StatusF:
		es.f = append(es.f, i)
	case StatusS:
		es.s = append(es.s, i)
	}
	return i
}

// BindTerm records that entry i was built from LRA term t.
func (es *EntryStore) BindTerm(i int, t TermID) {
	es.termOf[i] = t
	es.rowOfTerm[t] = i
}

// UnbindTerm drops the term<->entry association for entry i, if any.
func (es *EntryStore) UnbindTerm(i int) {
	if t, ok := es.termOf[i]; ok {
		delete(es.termOf, i)
		delete(es.rowOfTerm, t)
	}
}

// RemoveFromF removes entry i from the F list. No-op if absent.
func (es *EntryStore) RemoveFromF(i int) {
	for idx, e := range es.f {
		if e == i {
			es.f = append(es.f[:idx], es.f[idx+1:]...)
			return
		}
	}
}

// RemoveFromS removes entry i from the S list. No-op if absent.
func (es *EntryStore) RemoveFromS(i int) {
	for idx, e := range es.s {
		if e == i {
			es.s = append(es.s[:idx], es.s[idx+1:]...)
			return
		}
	}
}

// MoveFToS moves entry i from F to S, records k2s[k] = i, and updates its
// status.
func (es *EntryStore) MoveFToS(i, k int) {
	es.RemoveFromF(i)
	es.s = append(es.s, i)
	es.entries[i].Status = StatusS
	es.k2s[k] = i
}

// MoveSToF moves entry i from S back to F (used by incremental
// recomputation) and drops the k2s entry whose pivot was i, if found.
func (es *EntryStore) MoveSToF(i int) {
	es.RemoveFromS(i)
	es.f = append(es.f, i)
	es.entries[i].Status = StatusF
	for k, e := range es.k2s {
		if e == i {
			delete(es.k2s, k)
			break
		}
	}
}

// PushF appends a new pending entry (no row creation; caller already
// appended the matrix rows).
func (es *EntryStore) PushF(i int) {
	es.f = append(es.f, i)
}

// SetFreshDef records that local fresh variable xt is defined by
// entryRow, produced while processing originRow.
func (es *EntryStore) SetFreshDef(xt, entryRow, originRow int) {
	es.fdef[xt] = freshDef{entryRow: entryRow, originRow: originRow}
}

// SetK2S sets k2s[k] = entry.
func (es *EntryStore) SetK2S(k, entry int) { es.k2s[k] = entry }

// ClearK2S removes the k2s entry for k, if any.
func (es *EntryStore) ClearK2S(k int) { delete(es.k2s, k) }

// ForEachFreshDef calls f for every tracked fresh-variable definition.
func (es *EntryStore) ForEachFreshDef(f func(xt int, fd freshDef)) {
	for xt, fd := range es.fdef {
		f(xt, fd)
	}
}

// K2SKeyFor returns the local variable k with k2s[k] == entry, if any
// (used when an S-entry is being discarded and its k2s slot must be
// cleared by entry rather than by key).
func (es *EntryStore) K2SKeyFor(entry int) (int, bool) {
	for k, e := range es.k2s {
		if e == entry {
			return k, true
		}
	}
	return -1, false
}

// RemapRowIndex updates every piece of bookkeeping that refers to entry
// rows "oldIdx" and "newIdx" after the caller has transposed those two
// rows in matrix E/L (TransposeRows). Used by the "transpose to tail
// before erase" pattern.
func (es *EntryStore) RemapRowIndex(oldIdx, newIdx int) {
	if oldIdx == newIdx {
		return
	}
	es.entries[oldIdx], es.entries[newIdx] = es.entries[newIdx], es.entries[oldIdx]
	remapList := func(lst []int) {
		for idx, v := range lst {
			if v == oldIdx {
				lst[idx] = newIdx
			} else if v == newIdx {
				lst[idx] = oldIdx
			}
		}
	}
	remapList(es.f)
	remapList(es.s)
	for k, e := range es.k2s {
		if e == oldIdx {
			es.k2s[k] = newIdx
		} else if e == newIdx {
			es.k2s[k] = oldIdx
		}
	}
	for xt, fd := range es.fdef {
		changed := false
		if fd.entryRow == oldIdx {
			fd.entryRow = newIdx
			changed = true
		} else if fd.entryRow == newIdx {
			fd.entryRow = oldIdx
			changed = true
		}
		if fd.originRow == oldIdx {
			fd.originRow = newIdx
			changed = true
		} else if fd.originRow == newIdx {
			fd.originRow = oldIdx
			changed = true
		}
		if changed {
			es.fdef[xt] = fd
		}
	}
	oldTerm, oldHad := es.termOf[oldIdx]
	newTerm, newHad := es.termOf[newIdx]
	delete(es.termOf, oldIdx)
	delete(es.termOf, newIdx)
	if oldHad {
		es.termOf[newIdx] = oldTerm
		es.rowOfTerm[oldTerm] = newIdx
	}
	if newHad {
		es.termOf[oldIdx] = newTerm
		es.rowOfTerm[newTerm] = oldIdx
	}
}

// DropLastEntry removes the tail entry (index Len()-1) from every
// tracking structure. Callers must have already transposed the entry to
// be dropped to the tail and dropped the corresponding matrix rows.
func (es *EntryStore) DropLastEntry() {
	last := len(es.entries) - 1
	es.RemoveFromF(last)
	es.RemoveFromS(last)
	es.UnbindTerm(last)
	for k, e := range es.k2s {
		if e == last {
			delete(es.k2s, k)
		}
	}
	for xt, fd := range es.fdef {
		if fd.entryRow == last || fd.originRow == last {
			delete(es.fdef, xt)
		}
	}
	es.entries = es.entries[:last]
}
