package dioph

// NotifyAddTerm is the half of the LRA <-> Engine subscription that
// LRA calls when it introduces a new term column. The engine does not
// build the entry immediately — it queues t and builds it at the start
// of the next Check, batching all of a round's additions together. A
// term whose own column or any of whose variables is not integer is
// ignored and never becomes an entry.
func (e *Engine) NotifyAddTerm(t TermID) {
	term, ok := e.lra.Term(t)
	if !ok || !e.lra.ColumnIsInt(t) {
		return
	}
	for _, m := range term.Mono {
		if !e.lra.ColumnIsInt(m.Col) {
			return
		}
	}
	e.addedTerms = append(e.addedTerms, t)
}

// NotifyRemoveTerm is the other notification half: LRA calls this when
// it drops a term column, before or after the engine has turned it into
// an entry.
func (e *Engine) NotifyRemoveTerm(t TermID) {
	for idx, pending := range e.addedTerms {
		if pending == t {
			e.addedTerms = append(e.addedTerms[:idx], e.addedTerms[idx+1:]...)
			return
		}
	}
	if _, ok := e.activeTerms[t]; ok {
		e.shrinkLToSizes(t)
	}
}

// NotifyColumnBoundChanged queues column j for reprocessing at the start
// of the next Check; changedColumnsSeen keeps the queue free of
// duplicates without disturbing FIFO order.
func (e *Engine) NotifyColumnBoundChanged(j ColumnID) {
	if _, ok := e.changedColumnsSeen[j]; ok {
		return
	}
	e.changedColumnsSeen[j] = struct{}{}
	e.changedColumns = append(e.changedColumns, j)
}

// fillPendingTerms drains addedTerms, turning each into a fresh F-entry
// and marking it active.
func (e *Engine) fillPendingTerms() {
	pending := e.addedTerms
	e.addedTerms = nil
	for _, t := range pending {
		if _, ok := e.activeTerms[t]; ok {
			continue
		}
		e.fillEntry(t)
		e.activeTerms[t] = struct{}{}
	}
}

// processChangedColumns reacts to every column bound change queued since
// the last Check: any active term whose row mentions the changed column
// is reopened from its current L-row combination (not just its original
// LRA term, which may have since been folded together with others by
// substitution) via recalcEntries, which also cascades into any
// fresh-variable definition this touches.
func (e *Engine) processChangedColumns() {
	if len(e.changedColumns) == 0 {
		return
	}
	touched := make(map[int]struct{})
	for _, j := range e.changedColumns {
		for t := range e.columnsToTerms[j] {
			if ei, ok := e.store.EntryOfTerm(t); ok {
				touched[ei] = struct{}{}
			}
		}
	}
	e.changedColumns = nil
	for j := range e.changedColumnsSeen {
		delete(e.changedColumnsSeen, j)
	}
	e.recalcEntries(touched)
}

// recalcEntries reopens every row in touched from its current L-row
// combination and requeues it onto F. A fresh-definition row cannot be
// recalculated in place — its defining -1 self-column lives purely in
// local E-space, never recorded in L, so reopening L can't reproduce it
// — so instead it is dropped outright the moment its origin row is
// itself touched, cascading: dropping a fresh row in turn pulls in
// every other row that still references its local column (those rows'
// own E content is now stale) and every other fresh definition whose
// origin was that row. The fixed point over toRecalc/toRemove runs
// until neither set gains a member.
func (e *Engine) recalcEntries(initial map[int]struct{}) {
	toRecalc := make(map[int]struct{}, len(initial))
	for ei := range initial {
		toRecalc[ei] = struct{}{}
	}
	toRemove := make(map[int]struct{})

	for changed := true; changed; {
		changed = false
		for ei := range toRecalc {
			if e.store.Entry(ei).Status == StatusNoSNoF {
				delete(toRecalc, ei)
				toRemove[ei] = struct{}{}
				changed = true
			}
		}
		for ei := range toRemove {
			e.store.ForEachFreshDef(func(xt int, fd freshDef) {
				if fd.entryRow == ei {
					for _, cell := range e.colCells(xt) {
						if cell.row == ei {
							continue
						}
						if _, done := toRemove[cell.row]; done {
							continue
						}
						if _, already := toRecalc[cell.row]; !already {
							toRecalc[cell.row] = struct{}{}
							changed = true
						}
					}
				}
				if fd.originRow == ei {
					if _, done := toRemove[fd.entryRow]; !done {
						delete(toRecalc, fd.entryRow)
						toRemove[fd.entryRow] = struct{}{}
						changed = true
					}
				}
			})
		}
	}

	for len(toRemove) > 0 {
		var ei int
		for k := range toRemove {
			ei = k
			break
		}
		delete(toRemove, ei)
		delete(toRecalc, ei)
		e.dropEntryRow(ei, toRecalc, toRemove)
	}

	for ei := range toRecalc {
		if e.store.Entry(ei).Status == StatusS {
			if k, ok := e.store.K2SKeyFor(ei); ok {
				e.store.ClearK2S(k)
			}
			e.store.MoveSToF(ei)
		}
		e.recalculateEntry(ei)
	}
}

// eliminateLColumnForRemoval eliminates L-column lj from every row
// except preferred, picking preferred itself as the pivot when it still
// owns a nonzero cell there (the common case, since preferred is the
// row about to be dropped along with the column) and falling back to
// an arbitrary owning row otherwise. Returns every row whose L-row
// changed as a result, so the caller can reopen it before the column is
// finally retired.
func (e *Engine) eliminateLColumnForRemoval(lj, preferred int) map[int]struct{} {
	cells := append([]*cell(nil), e.lColCells(lj)...)
	if len(cells) == 0 {
		return nil
	}
	pivot := cells[0].row
	for _, c := range cells {
		if c.row == preferred {
			pivot = preferred
			break
		}
	}
	touched := make(map[int]struct{})
	for _, c := range cells {
		if c.row == pivot {
			continue
		}
		e.ml.PivotRowToRowGivenCell(pivot, c.row, lj)
		touched[c.row] = struct{}{}
	}
	return touched
}

// dropEntryRow removes entry row ei entirely: it is transposed to the
// tail of E/L so the drop is O(1), any matrix columns it emptied out
// are trimmed, and the entry store plus any caller-supplied pending-work
// sets still keyed by row index are kept in sync with the tail-swap.
func (e *Engine) dropEntryRow(ei int, pending ...map[int]struct{}) {
	tail := e.store.Len() - 1
	if ei != tail {
		e.me.TransposeRows(ei, tail)
		e.ml.TransposeRows(ei, tail)
		e.store.RemapRowIndex(ei, tail)
		for _, set := range pending {
			remapRowIndexSet(set, ei, tail)
		}
		ei = tail
	}
	e.me.ClearRow(ei)
	e.ml.ClearRow(ei)
	e.me.RemoveLastRow()
	e.ml.RemoveLastRow()
	e.me.TrimEmptyTrailingColumns()
	e.ml.TrimEmptyTrailingColumns()
	e.store.DropLastEntry()
}

// remapRowIndexSet mirrors EntryStore.RemapRowIndex's swap bookkeeping
// for a caller-owned set of pending row indices.
func remapRowIndexSet(set map[int]struct{}, oldIdx, newIdx int) {
	if oldIdx == newIdx {
		return
	}
	_, hasOld := set[oldIdx]
	_, hasNew := set[newIdx]
	if hasOld {
		delete(set, oldIdx)
		set[newIdx] = struct{}{}
	}
	if hasNew {
		delete(set, newIdx)
		set[oldIdx] = struct{}{}
	}
}

// shrinkLToSizes removes the entry backing term t. Any other row still
// referencing t's L-column is first pivoted to eliminate that cell (the
// column is about to disappear along with t) and reopened from its new
// L-row combination via recalcEntries, before t's own row is finally
// dropped. Local variable slots are left in the var register even when
// this was their last reference — other rows may still be mid-rewrite
// against the same local index space, and slot reuse is not required
// for correctness.
func (e *Engine) shrinkLToSizes(t TermID) {
	ei, ok := e.store.EntryOfTerm(t)
	if !ok {
		delete(e.activeTerms, t)
		return
	}
	lj := e.lColumnFor(t)
	if touched := e.eliminateLColumnForRemoval(lj, ei); len(touched) > 0 {
		e.recalcEntries(touched)
		ei, ok = e.store.EntryOfTerm(t)
		if !ok {
			delete(e.activeTerms, t)
			return
		}
	}
	e.dropEntryRow(ei)
	delete(e.activeTerms, t)
	for col, terms := range e.columnsToTerms {
		delete(terms, t)
		if len(terms) == 0 {
			delete(e.columnsToTerms, col)
		}
	}
}
