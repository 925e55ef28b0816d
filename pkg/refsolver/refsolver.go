// Package refsolver is a small in-memory stand-in for the linear real
// arithmetic solver dioph.Engine expects (dioph.LRA). It is not a
// production LRA implementation — no simplex tableau, no incremental
// elimination of its own — it exists to drive dioph.Engine's tests and
// the cmd/dioph demo against a real, if simplified, implementation of
// the interface rather than a hand-rolled mock per test.
package refsolver

import (
	"fmt"

	"github.com/gitrdm/dioph/pkg/dioph"
)

// boundFact records one installed bound together with the dependency
// token (a constraint index wrapped as an opaque Dep) that justifies it.
type boundFact struct {
	val    dioph.Q
	strict bool
	ci     dioph.ConstraintIndex
	has    bool
}

type column struct {
	isInt  bool
	isTerm bool
	mono   []dioph.Monomial
	lower  boundFact
	upper  boundFact
	value  dioph.Q
}

// snapshot is one Push level's undo record.
type snapshot struct {
	columns map[dioph.ColumnID]column
}

// RefLRA is a reference dioph.LRA implementation over a fixed, small
// column universe declared up front via AddVar/AddTerm. Feasibility is
// decided at a single point: each plain column takes its lower bound, else
// its upper bound, else 0; each term column takes the value of its
// monomials; then every column is checked against its bounds. It is not a
// general-purpose simplex.
type RefLRA struct {
	engine *dioph.Engine

	columns   map[dioph.ColumnID]column
	order     []dioph.ColumnID
	stack     []snapshot
	nextCI    dioph.ConstraintIndex
	status    dioph.LRAStatus
	infeasDep dioph.Dep
	infeasIdx []dioph.ConstraintIndex
}

// New returns an empty reference solver. Call SetEngine once the paired
// dioph.Engine exists, so notifications can flow both ways.
func New() *RefLRA {
	return &RefLRA{
		columns: make(map[dioph.ColumnID]column),
		status:  dioph.LRAFeasible,
	}
}

// SetEngine wires the dioph.Engine this solver notifies via
// NotifyAddTerm/NotifyRemoveTerm/NotifyColumnBoundChanged.
func (r *RefLRA) SetEngine(e *dioph.Engine) { r.engine = e }

// AddVar declares a plain (non-term) variable column.
func (r *RefLRA) AddVar(j dioph.ColumnID, isInt bool) {
	r.columns[j] = column{isInt: isInt, value: dioph.Zero()}
	r.order = append(r.order, j)
}

// AddTerm declares column j as a term column equal to the given
// monomials and notifies the paired engine.
func (r *RefLRA) AddTerm(j dioph.ColumnID, isInt bool, mono []dioph.Monomial) {
	r.columns[j] = column{isInt: isInt, isTerm: true, mono: mono, value: dioph.Zero()}
	r.order = append(r.order, j)
	r.recomputeValue(j)
	if r.engine != nil {
		r.engine.NotifyAddTerm(j)
	}
}

// RemoveTerm drops term column j and notifies the paired engine.
func (r *RefLRA) RemoveTerm(j dioph.ColumnID) {
	delete(r.columns, j)
	for i, c := range r.order {
		if c == j {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.engine != nil {
		r.engine.NotifyRemoveTerm(j)
	}
}

func (r *RefLRA) recomputeValue(j dioph.ColumnID) {
	c := r.columns[j]
	if !c.isTerm {
		return
	}
	v := dioph.Zero()
	for _, m := range c.mono {
		v = v.Add(m.Coeff.Mul(r.columns[m.Col].value))
	}
	c.value = v
	r.columns[j] = c
}

func (r *RefLRA) recomputeAllTerms() {
	for _, j := range r.order {
		if r.columns[j].isTerm {
			r.recomputeValue(j)
		}
	}
}

func (r *RefLRA) nextConstraintIndex() dioph.ConstraintIndex {
	ci := r.nextCI
	r.nextCI++
	return ci
}

// SetBound installs an external bound on column j as constraint ci,
// returning the Dep witnessing it. Used to seed the solver's initial
// problem before handing it to dioph.Engine (AddVarBound is for
// branch-time bounds the engine itself proposes).
func (r *RefLRA) SetBound(j dioph.ColumnID, kind dioph.BoundKind, val dioph.Q) dioph.Dep {
	ci := r.nextConstraintIndex()
	c := r.columns[j]
	bf := boundFact{val: val, ci: ci, has: true}
	if kind == dioph.Upper {
		c.upper = bf
	} else {
		c.lower = bf
	}
	r.columns[j] = c
	return r.witnessDep(ci)
}

func (r *RefLRA) ColumnIsInt(j dioph.ColumnID) bool  { return r.columns[j].isInt }
func (r *RefLRA) ColumnHasTerm(j dioph.ColumnID) bool { return r.columns[j].isTerm }

func (r *RefLRA) ColumnIsFixed(j dioph.ColumnID) bool {
	c := r.columns[j]
	return c.lower.has && c.upper.has && c.lower.val.Equal(c.upper.val)
}

func (r *RefLRA) ColumnIsFree(j dioph.ColumnID) bool {
	c := r.columns[j]
	return !c.lower.has && !c.upper.has
}

func (r *RefLRA) LowerBound(j dioph.ColumnID) dioph.Q { return r.columns[j].lower.val }
func (r *RefLRA) UpperBound(j dioph.ColumnID) dioph.Q { return r.columns[j].upper.val }

func (r *RefLRA) HasBoundOfType(j dioph.ColumnID, upper bool) (dioph.Q, bool, dioph.Dep, bool) {
	c := r.columns[j]
	bf := c.lower
	if upper {
		bf = c.upper
	}
	if !bf.has {
		return dioph.Zero(), false, dioph.Dep{}, false
	}
	return bf.val, false, r.witnessDep(bf.ci), true
}

// witnessDep wraps a single constraint index as a Dep whose opaque
// payload is the []dioph.ConstraintIndex set this package's MkJoin/
// Flatten understand.
func (r *RefLRA) witnessDep(ci dioph.ConstraintIndex) dioph.Dep {
	return dioph.NewDep(r, []dioph.ConstraintIndex{ci})
}

func (r *RefLRA) UpperBoundWitness(j dioph.ColumnID) dioph.Dep {
	if c := r.columns[j]; c.upper.has {
		return r.witnessDep(c.upper.ci)
	}
	return dioph.Dep{}
}

func (r *RefLRA) LowerBoundWitness(j dioph.ColumnID) dioph.Dep {
	if c := r.columns[j]; c.lower.has {
		return r.witnessDep(c.lower.ci)
	}
	return dioph.Dep{}
}

func (r *RefLRA) BoundConstraintWitnesses(j dioph.ColumnID) dioph.Dep {
	return r.LowerBoundWitness(j).Join(r.UpperBoundWitness(j))
}

func (r *RefLRA) Term(j dioph.ColumnID) (dioph.Term, bool) {
	c, ok := r.columns[j]
	if !ok || !c.isTerm {
		return dioph.Term{}, false
	}
	return dioph.Term{Mono: c.mono}.Clone(), true
}

func (r *RefLRA) Terms() []dioph.TermID {
	var out []dioph.TermID
	for _, j := range r.order {
		if r.columns[j].isTerm {
			out = append(out, j)
		}
	}
	return out
}

func (r *RefLRA) UpdateColumnBound(j dioph.ColumnID, kind dioph.BoundKind, val dioph.Q, dep dioph.Dep) error {
	c, ok := r.columns[j]
	if !ok {
		return fmt.Errorf("refsolver: unknown column %d", j)
	}
	ci := r.nextConstraintIndex()
	bf := boundFact{val: val, ci: ci, has: true}
	if kind == dioph.Upper {
		if c.upper.has && val.Cmp(c.upper.val) > 0 {
			return fmt.Errorf("refsolver: refusing to loosen upper bound on column %d", j)
		}
		c.upper = bf
	} else {
		if c.lower.has && val.Cmp(c.lower.val) < 0 {
			return fmt.Errorf("refsolver: refusing to loosen lower bound on column %d", j)
		}
		c.lower = bf
	}
	r.columns[j] = c
	return nil
}

// AddVarBound installs a branch-time bound the engine itself is
// proposing, bypassing UpdateColumnBound's monotonicity check (a branch
// is free to set either side of the variable's current value).
func (r *RefLRA) AddVarBound(j dioph.ColumnID, kind dioph.BoundKind, val dioph.Q) dioph.Dep {
	ci := r.nextConstraintIndex()
	c := r.columns[j]
	bf := boundFact{val: val, ci: ci, has: true}
	if kind == dioph.Upper {
		c.upper = bf
	} else {
		c.lower = bf
	}
	r.columns[j] = c
	if r.engine != nil {
		r.engine.NotifyColumnBoundChanged(j)
	}
	return r.witnessDep(ci)
}

// MkJoin merges two witness sets, deduping by constraint index.
func (r *RefLRA) MkJoin(a, b dioph.Dep) dioph.Dep {
	as, _ := a.Opaque().([]dioph.ConstraintIndex)
	bs, _ := b.Opaque().([]dioph.ConstraintIndex)
	if len(as) == 0 {
		return dioph.NewDep(r, bs)
	}
	if len(bs) == 0 {
		return dioph.NewDep(r, as)
	}
	seen := make(map[dioph.ConstraintIndex]bool, len(as)+len(bs))
	out := make([]dioph.ConstraintIndex, 0, len(as)+len(bs))
	for _, ci := range append(as, bs...) {
		if !seen[ci] {
			seen[ci] = true
			out = append(out, ci)
		}
	}
	return dioph.NewDep(r, out)
}

// Flatten returns d's witness set if it is one of this solver's own Deps,
// else (for the infeasibility Dep produced internally by
// FindFeasibleSolution) the most recent infeasibility witnesses.
func (r *RefLRA) Flatten(d dioph.Dep) []dioph.ConstraintIndex {
	if cis, ok := d.Opaque().([]dioph.ConstraintIndex); ok {
		return cis
	}
	return r.infeasIdx
}

func (r *RefLRA) Push() {
	snap := snapshot{columns: make(map[dioph.ColumnID]column, len(r.columns))}
	for k, v := range r.columns {
		snap.columns[k] = v
	}
	r.stack = append(r.stack, snap)
}

func (r *RefLRA) Pop() {
	n := len(r.stack)
	if n == 0 {
		return
	}
	snap := r.stack[n-1]
	r.stack = r.stack[:n-1]
	r.columns = snap.columns
}

// FindFeasibleSolution assigns every non-term column its tightest
// available bound (lower if present, else upper, else zero), propagates
// term values, and checks every column against its own bounds.
func (r *RefLRA) FindFeasibleSolution() dioph.LRAStatus {
	for j, c := range r.columns {
		if c.isTerm {
			continue
		}
		switch {
		case c.lower.has:
			c.value = c.lower.val
		case c.upper.has:
			c.value = c.upper.val
		default:
			c.value = dioph.Zero()
		}
		r.columns[j] = c
	}
	r.recomputeAllTerms()

	r.infeasIdx = nil
	for _, j := range r.order {
		c := r.columns[j]
		if c.lower.has && c.value.Cmp(c.lower.val) < 0 {
			r.infeasIdx = append(r.infeasIdx, c.lower.ci)
		}
		if c.upper.has && c.value.Cmp(c.upper.val) > 0 {
			r.infeasIdx = append(r.infeasIdx, c.upper.ci)
		}
	}
	if len(r.infeasIdx) > 0 {
		r.status = dioph.LRAInfeasible
		r.infeasDep = dioph.NewDep(r, r.infeasIdx)
		return r.status
	}
	r.status = dioph.LRAFeasible
	r.infeasDep = dioph.Dep{}
	return r.status
}

func (r *RefLRA) InfeasibilityExplanation() dioph.Dep { return r.infeasDep }
func (r *RefLRA) GetStatus() dioph.LRAStatus          { return r.status }
func (r *RefLRA) ColumnCount() int                    { return len(r.columns) }
func (r *RefLRA) Value(j dioph.ColumnID) dioph.Q       { return r.columns[j].value }

// IntInfeasibleColumns returns every integer column whose current value
// is not integral.
func (r *RefLRA) IntInfeasibleColumns() []dioph.ColumnID {
	var out []dioph.ColumnID
	for _, j := range r.order {
		c := r.columns[j]
		if c.isInt && !c.value.IsInt() {
			out = append(out, j)
		}
	}
	return out
}
