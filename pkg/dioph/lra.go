package dioph

// TermID identifies a term exposed by the LRA solver: a column j such
// that x_j == sum of the term's monomials. The engine stores only this
// handle, never an owning pointer — LRA owns the actual term object and
// the engine's raw-pointer replacement is this integer.
type TermID = ColumnID

// ConstraintIndex identifies one originating constraint in the enclosing
// solver; explanations are sets of these.
type ConstraintIndex int

// Dep is an opaque dependency token built and interpreted entirely by the
// LRA solver (its MkJoin / Flatten methods). The engine only ever
// joins two Deps it was handed, or asks LRA to flatten one into
// constraint indices — it never synthesizes a Dep's contents itself,
// other than the empty Dep.
type Dep struct {
	lra    LRA
	opaque any
}

// NewDep wraps an LRA-private payload as a Dep. LRA implementations use
// this to hand the engine an opaque witness token; the engine never
// inspects opaque, only passes it back through MkJoin/Flatten.
func NewDep(lra LRA, opaque any) Dep { return Dep{lra: lra, opaque: opaque} }

// Opaque returns the payload an LRA implementation stashed in d via
// NewDep, for use inside that same LRA's own MkJoin/Flatten methods.
func (d Dep) Opaque() any { return d.opaque }

// Join combines two dependencies via the owning LRA. Joining with a zero
// Dep is a no-op. LRA implementations use this (rather than calling
// their own MkJoin directly) so that an empty Dep on either side never
// needs special-casing at the call site.
func (d Dep) Join(other Dep) Dep {
	switch {
	case d.lra == nil:
		return other
	case other.lra == nil:
		return d
	default:
		return d.lra.MkJoin(d, other)
	}
}

func (d Dep) join(other Dep) Dep { return d.Join(other) }

// BoundKind distinguishes an upper from a lower bound.
type BoundKind int

const (
	Lower BoundKind = iota
	Upper
)

// LRAStatus is the result of asking the external LRA solver to find a
// feasible solution.
type LRAStatus int

const (
	LRAFeasible LRAStatus = iota
	LRAInfeasible
	LRACancelled
)

// Monomial is one term of a linear combination: coeff * x_col.
type Monomial struct {
	Col   ColumnID
	Coeff Q
}

// Term is a sum of monomials, the shape LRA.Term returns for a term
// column j (the monomials of x_j = sum(...), the implicit -x_j is not
// included — callers that need the defining equation add it themselves).
// See term.go for its clone/add/sub/scale algebra.
type Term struct {
	Mono []Monomial
}

// Clone returns a deep copy of t.
func (t Term) Clone() Term {
	out := Term{Mono: make([]Monomial, len(t.Mono))}
	copy(out.Mono, t.Mono)
	return out
}

// Coeff returns the coefficient of col in t, or zero if absent.
func (t Term) Coeff(col ColumnID) Q {
	for _, m := range t.Mono {
		if m.Col == col {
			return m.Coeff
		}
	}
	return Zero()
}

// LRA is the narrow contract the engine consumes from the external linear
// real arithmetic solver. The engine holds a non-owning
// reference to an LRA and drives it exclusively through this interface;
// LRA in turn drives the engine through the three Notify* methods on
// Engine it is expected to call from its own add-term, remove-term, and
// column-bound-changed hooks. Implementations must honor LRA's side of
// the entry invariant: LRA.Term(j) for a term column j must always equal
// the linear combination the engine last saw, and bound queries must be
// consistent between two calls unless a ColumnBoundChanged notification
// was sent in between.
type LRA interface {
	ColumnIsInt(j ColumnID) bool
	ColumnIsFixed(j ColumnID) bool
	ColumnIsFree(j ColumnID) bool
	ColumnHasTerm(j ColumnID) bool

	LowerBound(j ColumnID) Q
	UpperBound(j ColumnID) Q
	// HasBoundOfType reports whether column j has a bound of the given
	// kind, and if so returns its value, strictness, and witness
	// dependency.
	HasBoundOfType(j ColumnID, upper bool) (rs Q, strict bool, dep Dep, ok bool)
	UpperBoundWitness(j ColumnID) Dep
	LowerBoundWitness(j ColumnID) Dep
	BoundConstraintWitnesses(j ColumnID) Dep

	// Term returns the monomials of term column j (x_j = sum(mono)), and
	// whether j is in fact a term column.
	Term(j ColumnID) (Term, bool)
	// Terms lists every term column LRA currently exposes.
	Terms() []TermID

	UpdateColumnBound(j ColumnID, kind BoundKind, val Q, dep Dep) error
	AddVarBound(j ColumnID, kind BoundKind, val Q) Dep

	MkJoin(a, b Dep) Dep
	Flatten(d Dep) []ConstraintIndex

	Push()
	Pop()
	FindFeasibleSolution() LRAStatus
	InfeasibilityExplanation() Dep
	GetStatus() LRAStatus

	ColumnCount() int
	Value(j ColumnID) Q

	// IntInfeasibleColumns returns the columns currently in the LRA basis
	// whose value is integer-typed but not integer-valued — the
	// candidates branch-and-bound chooses among.
	IntInfeasibleColumns() []ColumnID
}
