package dioph

import "math"

// branch is one side of a binary split on an LRA column: x_j <= rs when
// left, else x_j >= rs+1. fullyExplored marks that both sides of this
// branch point have now been tried (flip already happened once).
type branch struct {
	j             ColumnID
	rs            Q
	left          bool
	fullyExplored bool
}

func (b *branch) flip() {
	b.left = !b.left
	b.fullyExplored = true
}

// variableBranchStats accumulates, per external column, how many
// integer-infeasible variables remained after taking the left/right
// branch on it, one sample each time that branch is taken; scoring reads
// the mean of every recorded sample.
type variableBranchStats struct {
	afterLeft  []int
	afterRight []int
}

func mean(xs []int) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs)), true
}

func (s *variableBranchStats) score() float64 {
	left, okL := mean(s.afterLeft)
	if !okL {
		left = math.Inf(1)
	}
	right, okR := mean(s.afterRight)
	if !okR {
		right = math.Inf(1)
	}
	if left < right {
		return left
	}
	return right
}

// branchDriver is the bounded branch-and-bound search: it
// pushes trial bounds onto the LRA solver, re-checks feasibility, and
// backtracks through a stack of binary branches until either a solution
// with zero integer-infeasible variables is found (Sat) or the stack is
// exhausted (Conflict).
type branchDriver struct {
	e *Engine

	stack                 []branch
	lraLevel              int
	explanationOfBranches []ConstraintIndex
	stats                 map[ColumnID]*variableBranchStats
	maxIterations          int
}

func newBranchDriver(e *Engine) *branchDriver {
	return &branchDriver{
		e:             e,
		stats:         make(map[ColumnID]*variableBranchStats),
		maxIterations: 100,
	}
}

func (bd *branchDriver) reset() {
	bd.stack = bd.stack[:0]
	bd.lraLevel = 0
	bd.explanationOfBranches = nil
}

func (bd *branchDriver) statsFor(j ColumnID) *variableBranchStats {
	s, ok := bd.stats[j]
	if !ok {
		s = &variableBranchStats{}
		bd.stats[j] = s
	}
	return s
}

func (bd *branchDriver) score(j ColumnID) float64 {
	return bd.statsFor(j).score()
}

func (bd *branchDriver) updateStats(b branch, nOfII int) {
	s := bd.statsFor(b.j)
	if b.left {
		s.afterLeft = append(s.afterLeft, nOfII)
	} else {
		s.afterRight = append(s.afterRight, nOfII)
	}
}

// createBranch picks, among the LRA's currently int-infeasible basic
// columns, the one with the lowest score (ties broken via
// Settings.RandomNext), and proposes an arbitrary-side split at its
// current value's floor. A sentinel branch with j == NoColumn means no
// integer-infeasible column remains, i.e. the problem is SAT.
func (bd *branchDriver) createBranch() branch {
	var bj ColumnID = NoColumn
	best := math.Inf(1)
	n := 0
	for _, j := range bd.e.lra.IntInfeasibleColumns() {
		sc := bd.score(j)
		n++
		if sc < best || (sc == best && bd.e.settings.RandomNext()%uint64(n) == 0) {
			best = sc
			bj = j
		}
	}
	if bj == NoColumn {
		return branch{j: NoColumn}
	}
	return branch{
		j:    bj,
		left: bd.e.settings.RandomNext()%2 == 0,
		rs:   bd.e.lra.Value(bj).Floor(),
	}
}

func (bd *branchDriver) pushBranch() bool {
	b := bd.createBranch()
	if b.j == NoColumn {
		return false
	}
	bd.stack = append(bd.stack, b)
	return true
}

func (bd *branchDriver) lraPush() {
	bd.lraLevel++
	bd.e.lra.Push()
}

func (bd *branchDriver) lraPop() {
	bd.lraLevel--
	bd.e.lra.Pop()
	bd.e.lra.FindFeasibleSolution()
}

// addVarBoundForBranch installs b's inequality on the LRA solver and, if
// that pins its column to a single value, re-checks the substituted S-row
// for that local variable via fix_var.
func (bd *branchDriver) addVarBoundForBranch(b branch) Outcome {
	e := bd.e
	if b.left {
		e.lra.AddVarBound(b.j, Upper, b.rs)
	} else {
		e.lra.AddVarBound(b.j, Lower, b.rs.Add(One()))
	}
	if e.lra.ColumnIsFixed(b.j) {
		lj, ok := e.varReg.ExternalToLocal(b.j)
		if !ok {
			return Undef
		}
		if e.fixVar(lj) == Conflict {
			return Conflict
		}
	}
	return Undef
}

func (bd *branchDriver) undoExploredBranches() {
	for len(bd.stack) > 0 && bd.stack[len(bd.stack)-1].fullyExplored {
		bd.stack = bd.stack[:len(bd.stack)-1]
		bd.lraPop()
	}
}

func (bd *branchDriver) undoBranching() {
	for bd.lraLevel > 0 {
		bd.lraLevel--
		bd.e.lra.Pop()
	}
	bd.e.lra.FindFeasibleSolution()
}

func (bd *branchDriver) collectEvidence() {
	bd.e.infeasExpl = bd.e.lra.InfeasibilityExplanation()
	for _, ci := range bd.e.lra.Flatten(bd.e.infeasExpl) {
		bd.explanationOfBranches = append(bd.explanationOfBranches, ci)
	}
}

// branchingOnUndef runs the bounded search loop to exhaustion or success.
func (bd *branchDriver) branchingOnUndef() Outcome {
	e := bd.e
	bd.explanationOfBranches = nil
	needCreateBranch := true
	iterations := 0
	ret := func(o Outcome) Outcome {
		e.metrics.observeBranchIterations(iterations)
		return o
	}
	for {
		iterations++
		if iterations >= bd.maxIterations {
			// Ran out of search budget without reaching a terminal
			// outcome: signal the caller to push its own state forward
			// (e.g. let the surrounding LRA theory propagate more) and
			// call Check again, rather than claim nothing more can be
			// learned.
			bd.undoBranching()
			return ret(BranchOutcome)
		}
		if e.cancelled() {
			bd.undoBranching()
			return ret(Undef)
		}
		if needCreateBranch {
			if !bd.pushBranch() {
				bd.undoBranching()
				return ret(Sat)
			}
			needCreateBranch = false
		}
		bd.lraPush()

		if bd.addVarBoundForBranch(bd.stack[len(bd.stack)-1]) == Conflict {
			bd.undoExploredBranches()
			if len(bd.stack) == 0 {
				return ret(Conflict)
			}
			needCreateBranch = false
			bd.stack[len(bd.stack)-1].flip()
			bd.lraPop()
			continue
		}

		st := e.lra.FindFeasibleSolution()
		switch st {
		case LRAFeasible:
			nOfII := len(e.lra.IntInfeasibleColumns())
			if nOfII == 0 {
				bd.undoBranching()
				return ret(Sat)
			}
			bd.updateStats(bd.stack[len(bd.stack)-1], nOfII)
			needCreateBranch = true
		case LRACancelled:
			return ret(Undef)
		default: // LRAInfeasible
			bd.collectEvidence()
			bd.undoExploredBranches()
			if len(bd.stack) == 0 {
				return ret(Conflict)
			}
			needCreateBranch = false
			bd.lraPop()
			bd.stack[len(bd.stack)-1].flip()
		}
	}
}

// fixVar re-checks the S-entry substituting local variable j, now that j
// has become fixed in LRA. Returns Conflict iff the remaining gcd of that
// entry's non-j coefficients does not divide its adjusted constant.
func (e *Engine) fixVar(j int) Outcome {
	ei, ok := e.store.K2S(j)
	if !ok {
		return Undef
	}
	ext := e.varReg.LocalToExternal(j)
	c := e.store.Entry(ei).Const
	g := Zero()
	for _, cell := range e.me.Row(ei) {
		if cell.col == j {
			jCoeff := cell.val
			c = c.Add(jCoeff.Mul(e.lra.LowerBound(ext)))
			continue
		}
		if g.IsZero() {
			g = cell.val.Abs()
		} else {
			g = g.GCD(cell.val)
		}
		if g.IsOne() {
			return Undef
		}
	}
	if g.IsZero() {
		return Undef
	}
	if !c.Div(g).IsInt() {
		for _, ci := range e.lra.Flatten(e.lRowAsDep(ei)) {
			e.branch.explanationOfBranches = append(e.branch.explanationOfBranches, ci)
		}
		return Conflict
	}
	return Undef
}
