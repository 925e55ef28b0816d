package dioph

import "testing"

// stubLRA is the minimal LRA fake needed to exercise checkInvariants
// directly, independent of pkg/refsolver (which imports this package and
// so cannot be used from an internal, white-box test file).
type stubLRA struct {
	terms map[ColumnID]Term
	order []ColumnID
}

func (s *stubLRA) ColumnIsInt(ColumnID) bool             { return true }
func (s *stubLRA) ColumnIsFixed(ColumnID) bool           { return false }
func (s *stubLRA) ColumnIsFree(ColumnID) bool            { return false }
func (s *stubLRA) ColumnHasTerm(j ColumnID) bool         { _, ok := s.terms[j]; return ok }
func (s *stubLRA) LowerBound(ColumnID) Q                 { return Zero() }
func (s *stubLRA) UpperBound(ColumnID) Q                 { return Zero() }
func (s *stubLRA) HasBoundOfType(ColumnID, bool) (Q, bool, Dep, bool) {
	return Zero(), false, Dep{}, false
}
func (s *stubLRA) UpperBoundWitness(ColumnID) Dep       { return Dep{} }
func (s *stubLRA) LowerBoundWitness(ColumnID) Dep       { return Dep{} }
func (s *stubLRA) BoundConstraintWitnesses(ColumnID) Dep { return Dep{} }
func (s *stubLRA) Term(j ColumnID) (Term, bool)         { t, ok := s.terms[j]; return t, ok }
func (s *stubLRA) Terms() []TermID                      { return s.order }
func (s *stubLRA) UpdateColumnBound(ColumnID, BoundKind, Q, Dep) error { return nil }
func (s *stubLRA) AddVarBound(ColumnID, BoundKind, Q) Dep { return Dep{} }
func (s *stubLRA) MkJoin(a, b Dep) Dep                  { return a }
func (s *stubLRA) Flatten(Dep) []ConstraintIndex        { return nil }
func (s *stubLRA) Push()                                {}
func (s *stubLRA) Pop()                                 {}
func (s *stubLRA) FindFeasibleSolution() LRAStatus      { return LRAFeasible }
func (s *stubLRA) InfeasibilityExplanation() Dep        { return Dep{} }
func (s *stubLRA) GetStatus() LRAStatus                 { return LRAFeasible }
func (s *stubLRA) ColumnCount() int                     { return len(s.order) }
func (s *stubLRA) Value(ColumnID) Q                     { return Zero() }
func (s *stubLRA) IntInfeasibleColumns() []ColumnID     { return nil }

func TestCheckInvariantsHoldsAfterFillAndRewrite(t *testing.T) {
	const (
		x ColumnID = 0
		tCol ColumnID = 1
	)
	lra := &stubLRA{
		terms: map[ColumnID]Term{tCol: {Mono: []Monomial{{Col: x, Coeff: FromInt64(1)}}}},
		order: []ColumnID{tCol},
	}
	e := NewEngine(lra, Settings{})
	e.NotifyAddTerm(tCol)
	e.fillPendingTerms()

	if err := e.checkInvariants(); err != nil {
		t.Fatalf("checkInvariants after fillEntry: %v", err)
	}

	if ret := e.processF(); ret == Conflict {
		t.Fatalf("processF unexpectedly conflicted")
	}
	if err := e.checkInvariants(); err != nil {
		t.Fatalf("checkInvariants after processF: %v", err)
	}
}
