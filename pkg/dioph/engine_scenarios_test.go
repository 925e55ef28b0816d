package dioph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/dioph/pkg/dioph"
	"github.com/gitrdm/dioph/pkg/refsolver"
)

// TestEngineGCDConflictOnFixedTerm exercises 2x - 4y - 5 == 0 with x, y
// integer in [0,10]: the term is pinned to 5, so its value is folded into
// the entry's constant, leaving the row 2x - 4y with constant -5. gcd(2,4)
// == 2 does not divide 5, so GCD normalization raises the conflict.
func TestEngineGCDConflictOnFixedTerm(t *testing.T) {
	const (
		xCol dioph.ColumnID = 0
		yCol dioph.ColumnID = 1
		tCol dioph.ColumnID = 2
	)

	solver := refsolver.New()
	engine := dioph.NewEngine(solver, dioph.Settings{})
	solver.SetEngine(engine)

	solver.AddVar(xCol, true)
	solver.SetBound(xCol, dioph.Lower, dioph.FromInt64(0))
	solver.SetBound(xCol, dioph.Upper, dioph.FromInt64(10))
	solver.AddVar(yCol, true)
	solver.SetBound(yCol, dioph.Lower, dioph.FromInt64(0))
	solver.SetBound(yCol, dioph.Upper, dioph.FromInt64(10))

	solver.AddTerm(tCol, true, []dioph.Monomial{
		{Col: xCol, Coeff: dioph.FromInt64(2)},
		{Col: yCol, Coeff: dioph.FromInt64(-4)},
	})
	solver.SetBound(tCol, dioph.Lower, dioph.FromInt64(5))
	solver.SetBound(tCol, dioph.Upper, dioph.FromInt64(5))

	outcome := engine.Check()
	require.Equal(t, dioph.Conflict, outcome)

	var expl dioph.Explanation
	engine.Explain(&expl)
	assert.NotEmpty(t, expl.Indices, "a GCD conflict must carry a non-empty explanation")
}

// TestEngineTightenThenLRAInfeasible exercises the GCD-tighten-then-reject
// chain from the other direction: t == 2x is squeezed into [2.5, 3], a
// window with no even integer in it. Tightening rounds it in to [4, 2],
// an empty interval, and the subsequent feasibility check (x's own
// default value puts t at 0) is what actually reports Conflict.
func TestEngineTightenThenLRAInfeasible(t *testing.T) {
	const (
		xCol dioph.ColumnID = 0
		tCol dioph.ColumnID = 1
	)

	solver := refsolver.New()
	engine := dioph.NewEngine(solver, dioph.Settings{})
	solver.SetEngine(engine)

	solver.AddVar(xCol, true)
	solver.SetBound(xCol, dioph.Lower, dioph.FromInt64(0))
	solver.SetBound(xCol, dioph.Upper, dioph.FromInt64(1))

	solver.AddTerm(tCol, true, []dioph.Monomial{{Col: xCol, Coeff: dioph.FromInt64(2)}})
	solver.SetBound(tCol, dioph.Lower, dioph.FromFrac(5, 2))
	solver.SetBound(tCol, dioph.Upper, dioph.FromInt64(3))

	outcome := engine.Check()
	require.Equal(t, dioph.Conflict, outcome)

	var expl dioph.Explanation
	engine.Explain(&expl)
	assert.NotEmpty(t, expl.Indices)
}

// TestEngineIncrementalTermRemovalMatchesFreshStart registers term A,
// checks once, removes A, then registers term B over entirely different
// columns and checks again. The resulting outcome and B's tightened
// bound must match an engine that only ever saw B — the incremental
// remove/re-add path (shrinkLToSizes, recalcEntries) must leave no trace
// of A behind.
func TestEngineIncrementalTermRemovalMatchesFreshStart(t *testing.T) {
	const (
		pCol dioph.ColumnID = 0
		qCol dioph.ColumnID = 1
		aCol dioph.ColumnID = 2
		bCol dioph.ColumnID = 3
	)

	buildB := func(solver *refsolver.RefLRA) {
		solver.AddVar(qCol, true)
		solver.SetBound(qCol, dioph.Lower, dioph.FromInt64(2))
		solver.SetBound(qCol, dioph.Upper, dioph.FromInt64(10))
		solver.AddTerm(bCol, true, []dioph.Monomial{{Col: qCol, Coeff: dioph.FromInt64(2)}})
		solver.SetBound(bCol, dioph.Lower, dioph.FromInt64(4))
		solver.SetBound(bCol, dioph.Upper, dioph.FromInt64(7))
	}

	refSolver := refsolver.New()
	refEngine := dioph.NewEngine(refSolver, dioph.Settings{})
	refSolver.SetEngine(refEngine)
	buildB(refSolver)
	refOutcome := refEngine.Check()

	solver := refsolver.New()
	engine := dioph.NewEngine(solver, dioph.Settings{})
	solver.SetEngine(engine)

	solver.AddVar(pCol, true)
	solver.SetBound(pCol, dioph.Lower, dioph.FromInt64(0))
	solver.SetBound(pCol, dioph.Upper, dioph.FromInt64(10))
	solver.AddTerm(aCol, true, []dioph.Monomial{{Col: pCol, Coeff: dioph.FromInt64(3)}})
	_ = engine.Check()

	solver.RemoveTerm(aCol)
	buildB(solver)

	outcome := engine.Check()
	require.Equal(t, refOutcome, outcome)
	assert.True(t, solver.UpperBound(bCol).Equal(refSolver.UpperBound(bCol)),
		"expected B's tightened upper bound to match a fresh engine that never saw A: got %s want %s",
		solver.UpperBound(bCol), refSolver.UpperBound(bCol))
}

// TestEngineBranchExhaustionReportsConflict exercises branch-and-bound
// exhaustion: t == x + y is pinned to 3.5, which no integer x, y can ever
// satisfy. x starts at a fractional relaxed value (1.5), which puts t at
// 1.5 too; with the default random source the driver's tie-break picks t
// over x. Both the t >= 2 branch (tried first) and the t <= 1 branch
// contradict t's fixed bound, so every branch in the (single-level) stack
// is infeasible and the driver returns Conflict once the stack empties.
func TestEngineBranchExhaustionReportsConflict(t *testing.T) {
	const (
		xCol dioph.ColumnID = 0
		yCol dioph.ColumnID = 1
		tCol dioph.ColumnID = 2
	)

	solver := refsolver.New()
	engine := dioph.NewEngine(solver, dioph.Settings{})
	solver.SetEngine(engine)

	solver.AddVar(xCol, true)
	solver.SetBound(xCol, dioph.Lower, dioph.FromFrac(3, 2))
	solver.AddVar(yCol, true)
	solver.SetBound(yCol, dioph.Lower, dioph.FromInt64(0))
	solver.SetBound(yCol, dioph.Upper, dioph.FromInt64(3))

	solver.AddTerm(tCol, true, []dioph.Monomial{
		{Col: xCol, Coeff: dioph.FromInt64(1)},
		{Col: yCol, Coeff: dioph.FromInt64(1)},
	})
	solver.SetBound(tCol, dioph.Lower, dioph.FromFrac(7, 2))
	solver.SetBound(tCol, dioph.Upper, dioph.FromFrac(7, 2))

	// Seed x/y/t's values the way a host solver's own relaxation would
	// before ever invoking the engine: x sits at its fractional bound.
	solver.FindFeasibleSolution()

	outcome := engine.Check()
	require.Equal(t, dioph.Conflict, outcome)
}
