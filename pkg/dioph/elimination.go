package dioph

// fillEntry builds a brand-new F-entry for LRA term t: row_E(i) is the
// term's monomials translated into local-variable space, with every
// currently-fixed external variable folded straight into the constant
// instead of getting its own column. Row
// L(i) starts as the single cell (lColumnFor(t), 1): the entry is, so
// far, exactly one part term t and nothing else.
func (e *Engine) fillEntry(t TermID) int {
	i := e.store.AppendEntry(StatusF, Zero())
	e.me.AddRow()
	e.ml.AddRow()
	e.assertf(e.me.RowCount()-1 == i && e.ml.RowCount()-1 == i, "fillEntry: E/L row desync at %d", i)
	e.buildEntryRow(i, t)
	return i
}

// buildEntryRow (re)populates row i of E/L from LRA term t's current
// definition, folding every currently-fixed monomial variable straight
// into the constant. Row i must already be empty (a brand-new row, or
// one the caller has ClearRow'd first) when this is called.
func (e *Engine) buildEntryRow(i int, t TermID) {
	term, ok := e.lra.Term(t)
	e.assertf(ok, "buildEntryRow: %d is not a term column", t)

	c := Zero()
	for _, m := range term.Mono {
		if e.lra.ColumnIsFixed(m.Col) {
			c = c.Add(m.Coeff.Mul(e.lra.LowerBound(m.Col)))
			continue
		}
		lj := e.varReg.AddVar(m.Col)
		e.me.AddColumnsUpTo(lj)
		if existing := e.me.Get(i, lj); !existing.IsZero() {
			e.me.RemoveElementAt(i, lj)
			c2 := existing.Add(m.Coeff)
			if !c2.IsZero() {
				e.me.AddNewElement(i, lj, c2)
			}
		} else {
			e.me.AddNewElement(i, lj, m.Coeff)
		}
	}
	if e.lra.ColumnIsFixed(t) {
		// The term's own implicit -1 self column is folded like any other
		// fixed variable.
		c = c.Sub(e.lra.LowerBound(t))
	} else {
		ownLocal := e.varReg.AddVar(t)
		e.me.AddColumnsUpTo(ownLocal)
		if existing := e.me.Get(i, ownLocal); !existing.IsZero() {
			e.me.RemoveElementAt(i, ownLocal)
			c2 := existing.Add(FromInt64(-1))
			if !c2.IsZero() {
				e.me.AddNewElement(i, ownLocal, c2)
			}
		} else {
			e.me.AddNewElement(i, ownLocal, FromInt64(-1))
		}
	}
	e.store.SetConst(i, c)

	lj := e.lColumnFor(t)
	e.ml.AddNewElement(i, lj, One())

	e.store.BindTerm(i, t)
	if e.columnsToTerms[t] == nil {
		e.columnsToTerms[t] = make(map[TermID]struct{})
	}
	for _, m := range term.Mono {
		if e.columnsToTerms[m.Col] == nil {
			e.columnsToTerms[m.Col] = make(map[TermID]struct{})
		}
		e.columnsToTerms[m.Col][t] = struct{}{}
	}
}

// normalizeEByGCD divides row E(ei)/const(ei) by the gcd of row E(ei)'s
// coefficients, if that gcd exceeds 1. Reports (via conflictIndex) a
// conflict when the remaining constant does not divide evenly, and
// proposes a LIA cut with it when the number of Check calls so far is a
// multiple of DioCutFromProofPeriod. Returns false iff a conflict was
// raised.
func (e *Engine) normalizeEByGCD(ei int) bool {
	row := e.me.Row(ei)
	coeffs := make([]Q, len(row))
	for idx, cell := range row {
		coeffs[idx] = cell.val
	}
	g := GCDInts(coeffs)
	if g.IsZero() || g.IsOne() {
		return true
	}
	c := e.store.Entry(ei).Const
	cg := c.Div(g)
	if !cg.IsInt() {
		e.conflictIndex = ei
		e.metrics.observeGCDConflict()
		if e.settings.DioCutFromProofPeriod > 0 && e.diophCalls%e.settings.DioCutFromProofPeriod == 0 && !e.hasFreshVar(ei) {
			e.prepareCutProposal(ei, g, cg)
		}
		return false
	}
	e.me.DivideRow(ei, g)
	e.store.SetConst(ei, cg)
	return true
}

// normalizeByGCD runs normalizeEByGCD over a stable snapshot of the
// current F list, stopping at the first conflict.
func (e *Engine) normalizeByGCD() bool {
	snapshot := append([]int(nil), e.store.F()...)
	for _, ei := range snapshot {
		if !e.normalizeEByGCD(ei) {
			return false
		}
	}
	return true
}

// hasFreshVar reports whether row E(ei) mentions any fresh (LRA-unbacked)
// local variable.
func (e *Engine) hasFreshVar(ei int) bool {
	for _, cell := range e.me.Row(ei) {
		if e.varReg.IsFresh(cell.col) {
			return true
		}
	}
	return false
}

// prepareCutProposal turns a GCD conflict on a fresh-var-free row into a
// LIA branch suggestion: the row reads sum + c == 0, so its sum divided
// by g equals -cg, and the proposal bounds that sum above by floor(-cg).
func (e *Engine) prepareCutProposal(ei int, g, cg Q) {
	var row Term
	for _, cell := range e.me.Row(ei) {
		ext := e.varReg.LocalToExternal(cell.col)
		row.Mono = append(row.Mono, Monomial{Col: ext, Coeff: cell.val.Div(g)})
	}
	e.lastCut = &CutProposal{
		Kind:  CutUpper,
		Term:  row,
		Bound: cg.Neg().Floor(),
	}
}

// rewriteEqs runs one full pass over F: empty rows are resolved
// immediately (dropped if consistent, flagged as a conflict otherwise),
// everything else is pivoted via find_minimal_abs_coeff's choice of
// column — Case S when some coefficient is unit, Case fresh otherwise.
// Returns false iff it raised a conflict.
func (e *Engine) rewriteEqs() bool {
	snapshot := append([]int(nil), e.store.F()...)
	for _, ei := range snapshot {
		if e.store.Entry(ei).Status != StatusF {
			continue // already consumed by an earlier pivot in this pass
		}
		row := e.me.Row(ei)
		if len(row) == 0 {
			e.store.RemoveFromF(ei)
			if !e.store.Entry(ei).Const.IsZero() {
				e.conflictIndex = ei
				return false
			}
			continue
		}

		k, ahk := e.findMinimalAbsCoeff(ei)
		switch ahk.Abs().IsOne() {
		case true:
			sign := 1
			if ahk.IsNegative() {
				sign = -1
			}
			e.store.MoveFToS(ei, k)
			if !e.eliminateVarInF(ei, k, sign) {
				return false
			}
		default:
			if !e.freshVarStep(ei, k, ahk) {
				return false
			}
		}
	}
	return true
}

// findMinimalAbsCoeff returns the column of row E(ei) with the smallest
// absolute coefficient, breaking ties towards the smallest column index.
func (e *Engine) findMinimalAbsCoeff(ei int) (int, Q) {
	row := e.me.Row(ei)
	bestCol := row[0].col
	best := row[0].val
	for _, cell := range row[1:] {
		a := cell.val.Abs()
		if cmp := a.Cmp(best.Abs()); cmp < 0 || (cmp == 0 && cell.col < bestCol) {
			bestCol = cell.col
			best = cell.val
		}
	}
	return bestCol, best
}

// eliminateVarInF substitutes entry "source" (whose pivot column k has
// coefficient +-1, encoded by sign) into every other F-row that mentions
// k, via matrix row operations on both E and L.
func (e *Engine) eliminateVarInF(source, k, sign int) bool {
	col := append([]*cell(nil), e.colCells(k)...)
	for _, cell := range col {
		target := cell.row
		if target == source || e.store.Entry(target).Status != StatusF {
			continue
		}
		alpha := cell.val
		factor := alpha.Neg()
		if sign < 0 {
			factor = alpha
		}
		e.me.AddRows(factor, source, target)
		e.ml.AddRows(factor, source, target)
		newConst := e.store.Entry(target).Const.Add(factor.Mul(e.store.Entry(source).Const))
		e.store.SetConst(target, newConst)
	}
	return true
}

// colCells is a small helper exposing SparseMatrix's private column
// slice read-only, needed because elimination walks a column rather
// than a row.
func (e *Engine) colCells(j int) []*cell {
	return e.me.cols[j]
}

// lColCells is colCells' matrix-L counterpart, needed when retiring a
// term's L-column out of every row that still references it.
func (e *Engine) lColCells(j int) []*cell {
	return e.ml.cols[j]
}

// recalculateEntry rebuilds row E(ei) and its constant from scratch by
// opening row L(ei)'s current combination of terms: each L-cell names a
// term whose monomials, plus its own implicit -1 self column (mirroring
// buildEntryRow), are folded in scaled by that cell's coefficient, with
// every currently-fixed variable collapsed straight into the constant
// instead of getting its own column. Row L(ei) itself is left untouched
// — only E and the constant change. Unlike buildEntryRow, this can
// reproduce a row whose current L-combination spans several terms, the
// result of earlier substitution steps.
func (e *Engine) recalculateEntry(ei int) {
	e.wv.Clear()
	c := Zero()
	fold := func(col ColumnID, coeff Q) {
		if coeff.IsZero() {
			return
		}
		if e.lra.ColumnIsFixed(col) {
			c = c.Add(coeff.Mul(e.lra.LowerBound(col)))
			return
		}
		lj := e.varReg.AddVar(col)
		e.me.AddColumnsUpTo(lj)
		e.wv.AddAt(lj, coeff)
	}
	for _, lcell := range e.ml.Row(ei) {
		termID := e.lCols[lcell.col]
		coeff := lcell.val
		if term, ok := e.lra.Term(termID); ok {
			for _, m := range term.Mono {
				fold(m.Col, coeff.Mul(m.Coeff))
			}
		}
		fold(termID, coeff.Neg())
	}
	e.me.ClearRow(ei)
	for _, lj := range e.wv.Keys() {
		if v := e.wv.Get(lj); !v.IsZero() {
			e.me.AddNewElement(ei, lj, v)
		}
	}
	e.store.SetConst(ei, c)
}

// freshVarStep implements Case fresh of rewrite_eqs: row h has no unit
// coefficient, so a brand-new internal variable xt is introduced,
// defined by a new row that carries the quotients of dividing h's
// coefficients and constant by ahk (machine/truncated division), while h
// keeps the remainders plus ahk*xt. k has coefficient 1 in the new row,
// and eliminateVarInF then uses that row to eliminate k from every other
// F-row.
func (e *Engine) freshVarStep(h, k int, ahk Q) bool {
	e.wv.Clear()
	for _, cell := range e.me.Row(h) {
		e.wv.Set(cell.col, cell.val)
	}
	hConst := e.store.Entry(h).Const
	e.me.ClearRow(h)

	xt := e.varReg.AddVar(NoColumn)
	e.me.AddColumnsUpTo(xt)
	newRow := e.store.AppendEntry(StatusNoSNoF, Zero())
	e.assertf(newRow == e.me.AddRow() && e.ml.AddRow() == newRow, "freshVarStep: row desync")

	qConst, rConst := MachineDivRem(hConst, ahk)
	for _, j := range e.wv.Keys() {
		aj := e.wv.Get(j)
		q, r := MachineDivRem(aj, ahk)
		if !r.IsZero() {
			e.me.AddNewElement(h, j, r)
		}
		if !q.IsZero() {
			e.me.AddNewElement(newRow, j, q)
		}
	}
	e.me.AddNewElement(h, xt, ahk)
	e.me.AddNewElement(newRow, xt, FromInt64(-1))
	e.store.SetConst(h, rConst)
	e.store.SetConst(newRow, qConst)

	e.ml.AddRows(One(), h, newRow)

	e.store.SetK2S(k, newRow)
	e.store.SetFreshDef(xt, newRow, h)

	sign := 1
	if ahk.IsNegative() {
		sign = -1
	}
	_ = sign
	return e.eliminateVarInF(newRow, k, 1)
}

// processF drives rewriteEqs/normalizeByGCD to a fixpoint: pending rows
// shrink monotonically (each pass either resolves rows or discovers a
// conflict), so the loop always terminates.
func (e *Engine) processF() Outcome {
	for len(e.store.F()) > 0 {
		if e.cancelled() {
			return Undef
		}
		if !e.normalizeByGCD() {
			return Conflict
		}
		if len(e.store.F()) == 0 {
			break
		}
		if !e.rewriteEqs() {
			return Conflict
		}
	}
	return Undef
}

// processFAndTightenTerms is Engine.Check's core per-call work: drain F
// to a fixpoint, then try to tighten every substitutable LRA term column
// via tightenTermsWithS.
func (e *Engine) processFAndTightenTerms() Outcome {
	if ret := e.processF(); ret != Undef {
		return ret
	}
	return e.tightenTermsWithS()
}
