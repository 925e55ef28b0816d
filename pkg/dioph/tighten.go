package dioph

// tightenTermsWithS walks every integer, non-fixed, non-free LRA term
// column and tries to tighten its bounds by substituting S-entries into
// its defining linear combination until only coefficients with no known
// S-substitute remain, then dividing through by their GCD. A detected
// infeasibility ends the pass at once; after a successful tightening the
// walk goes on with the next term column.
func (e *Engine) tightenTermsWithS() Outcome {
	for _, t := range e.lra.Terms() {
		if !e.lra.ColumnIsInt(t) || e.lra.ColumnIsFixed(t) || e.lra.ColumnIsFree(t) {
			continue
		}
		term, ok := e.lra.Term(t)
		if !ok {
			continue
		}

		e.wv.Clear()
		c := Zero()
		dep := Dep{}
		queue := make([]int, 0, len(term.Mono))
		seen := make(map[int]bool)

		enqueueVar := func(col ColumnID, coeff Q) {
			if e.lra.ColumnIsFixed(col) {
				c = c.Add(coeff.Mul(e.lra.LowerBound(col)))
				dep = dep.join(e.lra.BoundConstraintWitnesses(col))
				return
			}
			lj, ok := e.varReg.ExternalToLocal(col)
			if !ok {
				// A live external column this engine has never seen as
				// part of any F/S row: treat it as an opaque term of its
				// own local slot so the GCD test still sees it.
				lj = e.varReg.AddVar(col)
			}
			e.wv.AddAt(lj, coeff)
			if !seen[lj] {
				seen[lj] = true
				queue = append(queue, lj)
			}
		}

		for _, m := range term.Mono {
			enqueueVar(m.Col, m.Coeff)
		}

		for len(queue) > 0 {
			lj := queue[0]
			queue = queue[1:]
			if e.wv.IsZero(lj) {
				continue
			}
			si, ok := e.store.K2S(lj)
			if !ok || e.varReg.IsFresh(lj) {
				continue
			}
			coeff := e.wv.Get(lj)
			e.wv.Erase(lj)
			c = c.Add(coeff.Mul(e.store.Entry(si).Const))
			dep = dep.join(e.lRowAsDep(si))
			for _, cell := range e.me.Row(si) {
				if cell.col == lj {
					continue
				}
				delta := coeff.Mul(cell.val)
				e.wv.AddAt(cell.col, delta)
				if !seen[cell.col] {
					seen[cell.col] = true
				}
				queue = append(queue, cell.col)
			}
		}

		remaining := make([]Q, 0, e.wv.Len())
		for _, k := range e.wv.Keys() {
			remaining = append(remaining, e.wv.Get(k))
		}
		g := GCDInts(remaining)
		if g.IsZero() {
			if ret := e.checkConstantAgainstBounds(t, c, dep); ret != Undef {
				return ret
			}
			continue
		}
		if g.IsOne() {
			continue
		}
		if ret := e.tightenColumnByGCD(t, c, g, dep); ret == Conflict {
			return ret
		}
	}
	return Undef
}

// checkConstantAgainstBounds handles the g==0 case: the term has reduced
// to a pure constant c via substitution, so c itself must respect t's
// current bounds.
func (e *Engine) checkConstantAgainstBounds(t TermID, c Q, dep Dep) Outcome {
	if lo, _, ld, ok := e.lra.HasBoundOfType(t, false); ok && c.Cmp(lo) < 0 {
		e.infeasExpl = dep.join(ld)
		return Conflict
	}
	if hi, _, hd, ok := e.lra.HasBoundOfType(t, true); ok && c.Cmp(hi) > 0 {
		e.infeasExpl = dep.join(hd)
		return Conflict
	}
	return Undef
}

// tightenColumnByGCD applies x_t == c (mod g) to t's bounds: any integral
// solution of the underlying equation must land on c + g*Z, so t's
// current [lo,hi] bound can be rounded in to the nearest feasible
// element of that residue class.
func (e *Engine) tightenColumnByGCD(t TermID, c, g Q, dep Dep) Outcome {
	tightened := false
	if lo, _, ld, ok := e.lra.HasBoundOfType(t, false); ok {
		rs := lo.Sub(c).Div(g).Ceil().Mul(g).Add(c)
		if rs.Cmp(lo) > 0 {
			if err := e.lra.UpdateColumnBound(t, Lower, rs, dep.join(ld)); err == nil {
				tightened = true
				e.metrics.observeTightening()
			}
		}
	}
	if hi, _, hd, ok := e.lra.HasBoundOfType(t, true); ok {
		rs := hi.Sub(c).Div(g).Floor().Mul(g).Add(c)
		if rs.Cmp(hi) < 0 {
			if err := e.lra.UpdateColumnBound(t, Upper, rs, dep.join(hd)); err == nil {
				tightened = true
				e.metrics.observeTightening()
			}
		}
	}
	if !tightened {
		return Undef
	}
	switch e.lra.FindFeasibleSolution() {
	case LRAInfeasible:
		e.infeasExpl = e.lra.InfeasibilityExplanation()
		return Conflict
	default:
		return Undef
	}
}
