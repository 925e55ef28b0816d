package dioph

import "fmt"

// Outcome is the sum type Engine.Check returns: the engine never raises a
// domain exception, it only ever resolves to one of these four.
type Outcome int

const (
	Undef Outcome = iota
	Conflict
	BranchOutcome
	Sat
)

func (o Outcome) String() string {
	switch o {
	case Undef:
		return "undef"
	case Conflict:
		return "conflict"
	case BranchOutcome:
		return "branch"
	case Sat:
		return "sat"
	default:
		return "?"
	}
}

// CutKind distinguishes the two shapes a LIA branch proposal / cut can
// take.
type CutKind int

const (
	CutUpper CutKind = iota
)

// CutProposal is the LIA-facing cut the engine proposes from a GCD
// conflict every DioCutFromProofPeriod'th call.
type CutProposal struct {
	Kind  CutKind
	Term  Term
	Bound Q
}

// Settings bundles the tunables the engine consumes from the surrounding
// solver's settings object.
type Settings struct {
	// DioCutFromProofPeriod gates how often a GCD conflict also produces
	// a cut proposal (every k-th dio call). Zero or negative selects the
	// default period of 100.
	DioCutFromProofPeriod int
	// RandomNext is the sole source of randomness for tie-breaks and
	// branch-direction choice; pin it in tests for reproducibility.
	RandomNext func() uint64
	// CancelFlag is polled at the top of every long-running loop and as
	// part of every LRA feasibility call.
	CancelFlag func() bool
	// DebugChecks enables the engine's debug-only invariant assertions.
	// Expensive; intended for tests, not production checks.
	DebugChecks bool
}

// withDefaults fills the zero-value gaps of a caller-supplied Settings.
func (s Settings) withDefaults() Settings {
	if s.DioCutFromProofPeriod <= 0 {
		s.DioCutFromProofPeriod = 100
	}
	if s.RandomNext == nil {
		var x uint64 = 0x2545F4914F6CDD1D
		s.RandomNext = func() uint64 {
			x ^= x << 13
			x ^= x >> 7
			x ^= x << 17
			return x
		}
	}
	if s.CancelFlag == nil {
		s.CancelFlag = func() bool { return false }
	}
	return s
}

// Explanation is a deduplicated set of originating constraint indices,
// the engine's only form of proof object. It is sound but not required to
// be minimal.
type Explanation struct {
	Indices []ConstraintIndex
}

func (e *Explanation) addFlattened(lra LRA, d Dep) {
	if lra == nil {
		return
	}
	for _, ci := range lra.Flatten(d) {
		e.Indices = append(e.Indices, ci)
	}
}

// Engine is the single long-lived Diophantine elimination object owned
// by the enclosing integer solver. It is not safe for concurrent use and
// holds no locks of its own — it is driven exclusively by synchronous
// calls from the surrounding solver.
type Engine struct {
	lra      LRA
	settings Settings

	varReg *VarRegister
	store  *EntryStore
	me     *SparseMatrix // matrix E
	ml     *SparseMatrix // matrix L

	branch *branchDriver

	// columnsToTerms[c] is the set of LRA term ids whose term mentions
	// external column c. Must stay the reverse index of activeTerms.
	columnsToTerms map[ColumnID]map[TermID]struct{}
	activeTerms    map[TermID]struct{}
	addedTerms     []TermID
	changedColumns []ColumnID
	// changedColumnsSeen dedups changedColumns without changing its FIFO
	// order.
	changedColumnsSeen map[ColumnID]struct{}

	conflictIndex  int // -1 when not set
	infeasExpl     Dep
	lastCut        *CutProposal
	diophCalls     int

	// Matrix L's columns are indexed by a small sequential counter, not
	// directly by TermID (LRA term ids may be sparse/arbitrary external
	// column numbers) — lCols/lColOf is that mapping, grown lazily as
	// fillEntry first touches each term.
	lCols  []TermID
	lColOf map[TermID]int

	wv *workVec // scratch indexed work vector, see workvec.go

	metrics *metrics
}

// NewEngine constructs an Engine bound to lra. The engine registers its
// three callback handlers conceptually by documenting that lra must call
// NotifyAddTerm / NotifyRemoveTerm / NotifyColumnBoundChanged itself —
// see the LRA doc comment's note on one-way subscription.
func NewEngine(lra LRA, settings Settings) *Engine {
	e := &Engine{
		lra:                 lra,
		settings:            settings.withDefaults(),
		varReg:              NewVarRegister(),
		store:               NewEntryStore(),
		me:                  NewSparseMatrix(),
		ml:                  NewSparseMatrix(),
		columnsToTerms:      make(map[ColumnID]map[TermID]struct{}),
		activeTerms:         make(map[TermID]struct{}),
		changedColumnsSeen:  make(map[ColumnID]struct{}),
		conflictIndex:       -1,
		lColOf:              make(map[TermID]int),
		wv:                  newWorkVec(),
		metrics:             globalMetrics,
	}
	e.branch = newBranchDriver(e)
	return e
}

// lColumnFor returns the matrix-L column index for term t, allocating a
// fresh one on first use.
func (e *Engine) lColumnFor(t TermID) int {
	if j, ok := e.lColOf[t]; ok {
		return j
	}
	j := len(e.lCols)
	e.lCols = append(e.lCols, t)
	e.lColOf[t] = j
	e.ml.AddColumnsUpTo(j)
	return j
}

// Check is the engine's main entry point. It replays pending
// incremental work, normalizes and rewrites F to a fixpoint, tightens LRA
// term-column bounds by substitution, and, if integer-infeasible
// variables remain, runs bounded branch-and-bound.
func (e *Engine) Check() Outcome {
	if e.cancelled() {
		return Undef
	}
	e.diophCalls++
	e.conflictIndex = -1
	e.infeasExpl = Dep{}
	e.lastCut = nil
	e.branch.reset()

	e.processChangedColumns()
	e.fillPendingTerms()

	ret := e.processFAndTightenTerms()
	if ret != Undef {
		e.metrics.observeCheck(ret)
		return ret
	}
	ret = e.branch.branchingOnUndef()
	if ret == BranchOutcome && e.branch.maxIterations > 1 {
		// The search ran out of iteration budget without reaching a
		// terminal outcome: halve the budget so a problem that keeps
		// hitting this wall backs off rather than spinning at the same
		// cost on every subsequent call.
		e.branch.maxIterations /= 2
	}
	e.metrics.observeCheck(ret)
	return ret
}

// Explain fills out with the constraint indices witnessing the outcome of
// the most recent Check call that returned Conflict or BranchOutcome.
func (e *Engine) Explain(out *Explanation) {
	switch {
	case e.conflictIndex >= 0:
		out.addFlattened(e.lra, e.lRowAsDep(e.conflictIndex))
	case e.infeasExpl.lra != nil || e.infeasExpl.opaque != nil:
		out.addFlattened(e.lra, e.infeasExpl)
	default:
		out.Indices = append(out.Indices, e.branch.explanationOfBranches...)
	}
	seen := make(map[ConstraintIndex]struct{}, len(out.Indices))
	uniq := out.Indices[:0]
	for _, ci := range out.Indices {
		if _, dup := seen[ci]; dup {
			continue
		}
		seen[ci] = struct{}{}
		uniq = append(uniq, ci)
	}
	out.Indices = uniq
}

// LastCutProposal returns the most recent LIA cut the engine proposed
// from a GCD conflict, if any.
func (e *Engine) LastCutProposal() *CutProposal { return e.lastCut }

func (e *Engine) cancelled() bool {
	return e.settings.CancelFlag != nil && e.settings.CancelFlag()
}

// lRowAsDep turns row L(i) into a Dep by joining together the bound
// witnesses of every fixed variable it mentions, plus the term-level
// witnesses of the LRA term each L-column represents.
func (e *Engine) lRowAsDep(entryRow int) Dep {
	var d Dep
	for _, c := range e.ml.Row(entryRow) {
		termCol := e.lCols[c.col]
		d = d.join(e.lra.BoundConstraintWitnesses(termCol))
		if term, ok := e.lra.Term(termCol); ok {
			for _, m := range term.Mono {
				if e.lra.ColumnIsFixed(m.Col) {
					d = d.join(e.lra.BoundConstraintWitnesses(m.Col))
				}
			}
		}
	}
	return d
}

func (e *Engine) debug() bool {
	return e.settings.DebugChecks || debugChecks.Load()
}

func (e *Engine) assertf(cond bool, format string, args ...any) {
	if !e.debug() {
		return
	}
	if !cond {
		panic(fmt.Errorf("dioph: invariant violated: "+format, args...))
	}
}
