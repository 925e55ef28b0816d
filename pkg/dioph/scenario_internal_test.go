package dioph

import "testing"

// TestRewriteEqsAbsorbsDuplicateTermIntoS exercises Case S of rewrite_eqs
// on two terms sharing the same monomials: s's entry pivots on x (the
// first coefficient with absolute value 1), and eliminateVarInF then
// folds s straight into t's row, moving t to S as well.
func TestRewriteEqsAbsorbsDuplicateTermIntoS(t *testing.T) {
	const (
		xCol ColumnID = 0
		yCol ColumnID = 1
		sCol ColumnID = 2
		tCol ColumnID = 3
	)
	mono := []Monomial{
		{Col: xCol, Coeff: FromInt64(1)},
		{Col: yCol, Coeff: FromInt64(2)},
	}
	lra := &stubLRA{
		terms: map[ColumnID]Term{
			sCol: {Mono: mono},
			tCol: {Mono: mono},
		},
		order: []ColumnID{sCol, tCol},
	}
	e := NewEngine(lra, Settings{})
	e.NotifyAddTerm(sCol)
	e.NotifyAddTerm(tCol)
	e.fillPendingTerms()

	if ret := e.processF(); ret == Conflict {
		t.Fatalf("processF unexpectedly conflicted")
	}
	if err := e.checkInvariants(); err != nil {
		t.Fatalf("checkInvariants: %v", err)
	}

	eiS, ok := e.store.EntryOfTerm(sCol)
	if !ok {
		t.Fatalf("entry for s not found")
	}
	if e.store.Entry(eiS).Status != StatusS {
		t.Fatalf("expected s's entry in S, got %s", e.store.Entry(eiS).Status)
	}
	xLocal, ok := e.varReg.ExternalToLocal(xCol)
	if !ok {
		t.Fatalf("x was never registered")
	}
	if pivot, ok := e.store.K2S(xLocal); !ok || pivot != eiS {
		t.Fatalf("expected s's entry pivoted on x's local column, got pivot=%d ok=%v", pivot, ok)
	}

	eiT, ok := e.store.EntryOfTerm(tCol)
	if !ok {
		t.Fatalf("entry for t not found")
	}
	if e.store.Entry(eiT).Status != StatusS {
		t.Fatalf("expected t's entry absorbed into S once s eliminated x from it, got %s", e.store.Entry(eiT).Status)
	}
}

// TestFreshVarStepIntroducesDefinitionRow exercises Case fresh of
// rewrite_eqs directly. A freshly built row for a term whose own column is
// not fixed always carries a unit coefficient at that column
// (buildEntryRow's implicit -1 self reference), so the ordinary F-to-S path only ever reaches Case fresh
// once some earlier substitution has already consumed a row's self
// column; this test drives freshVarStep directly on a row with no unit
// coefficient (3x + 5y + 7z) to exercise that branch in isolation.
func TestFreshVarStepIntroducesDefinitionRow(t *testing.T) {
	const (
		aCol ColumnID = 0
		bCol ColumnID = 1
		cCol ColumnID = 2
		tCol ColumnID = 3
	)
	mono := []Monomial{
		{Col: aCol, Coeff: FromInt64(3)},
		{Col: bCol, Coeff: FromInt64(5)},
		{Col: cCol, Coeff: FromInt64(7)},
	}
	lra := &stubLRA{
		terms: map[ColumnID]Term{tCol: {Mono: mono}},
		order: []ColumnID{tCol},
	}
	e := NewEngine(lra, Settings{})
	e.NotifyAddTerm(tCol)
	e.fillPendingTerms()

	ei, ok := e.store.EntryOfTerm(tCol)
	if !ok {
		t.Fatalf("entry for t not found")
	}

	ownLocal := e.varReg.AddVar(tCol)
	e.me.RemoveElementAt(ei, ownLocal)

	k, ahk := e.findMinimalAbsCoeff(ei)
	if ahk.Abs().IsOne() {
		t.Fatalf("setup error: expected no unit coefficient left in the row, got %s at col %d", ahk, k)
	}

	before := e.store.Len()
	if !e.freshVarStep(ei, k, ahk) {
		t.Fatalf("freshVarStep unexpectedly conflicted")
	}

	if e.store.Len() != before+1 {
		t.Fatalf("expected exactly one new row, got %d entries (was %d)", e.store.Len(), before)
	}
	newRow := e.store.Len() - 1
	if e.store.Entry(newRow).Status != StatusNoSNoF {
		t.Fatalf("expected the new row to be a fresh-variable definition, got %s", e.store.Entry(newRow).Status)
	}
	if !e.hasFreshVar(ei) {
		t.Fatalf("expected h's row to now mention the fresh variable")
	}
	if pivot, ok := e.store.K2S(k); !ok || pivot != newRow {
		t.Fatalf("expected k2s[%d] to point at the new definition row, got %d ok=%v", k, pivot, ok)
	}

	found := false
	e.store.ForEachFreshDef(func(xt int, fd freshDef) {
		if fd.entryRow == newRow {
			found = true
			if fd.originRow != ei {
				t.Fatalf("expected fresh def's origin row to be h (%d), got %d", ei, fd.originRow)
			}
			if !e.varReg.IsFresh(xt) {
				t.Fatalf("expected local %d to be registered as fresh", xt)
			}
		}
	})
	if !found {
		t.Fatalf("expected a fresh-variable definition recorded for the new row")
	}
}
