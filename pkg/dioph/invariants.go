package dioph

// checkInvariants re-derives the engine's core bookkeeping from matrix E/L
// and the entry store and reports the first mismatch found: matrix
// back-indexing, the entry-store/matrix row-count agreement, the k2s
// pivot-column bijection, and the columns_to_terms reverse index. Only
// the test suite calls it; Check and Settings.DebugChecks do not.
func (e *Engine) checkInvariants() error {
	if err := e.me.checkBackIndexing(); err != nil {
		return errInvariant("matrix E: %w", err)
	}
	if err := e.ml.checkBackIndexing(); err != nil {
		return errInvariant("matrix L: %w", err)
	}
	if e.store.Len() != e.me.RowCount() || e.store.Len() != e.ml.RowCount() {
		return errInvariant("entry store has %d entries but E has %d rows, L has %d rows",
			e.store.Len(), e.me.RowCount(), e.ml.RowCount())
	}

	seenPivots := make(map[int]int)
	for _, si := range e.store.S() {
		if e.store.Entry(si).Status != StatusS {
			return errInvariant("entry %d is in S list but Status is %v", si, e.store.Entry(si).Status)
		}
	}
	for j := 0; j < e.varReg.NumLocals(); j++ {
		si, ok := e.store.K2S(j)
		if !ok {
			continue
		}
		if e.store.Entry(si).Status != StatusS {
			return errInvariant("k2s[%d] = %d but entry %d is not status S", j, si, si)
		}
		if prev, dup := seenPivots[si]; dup {
			return errInvariant("entries %d and %d both claim pivot column %d/%d", prev, si, j, si)
		}
		seenPivots[si] = j
		if e.me.Get(si, j).IsZero() {
			return errInvariant("k2s[%d] = %d but row %d has no cell at column %d", j, si, si, j)
		}
	}

	for col, terms := range e.columnsToTerms {
		for t := range terms {
			if _, ok := e.store.EntryOfTerm(t); !ok {
				return errInvariant("columns_to_terms[%d] references term %d with no live entry", col, t)
			}
		}
	}
	return nil
}
