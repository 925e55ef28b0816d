package dioph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// qCmp compares Q by value instead of by the identity of the *big.Rat it
// wraps — Q carries no exported fields, so cmp needs a Comparer rather
// than reaching into math/big's own unexported internals.
var qCmp = cmp.Comparer(func(a, b Q) bool { return a.Equal(b) })

func TestTermCloneIsDeepCopy(t *testing.T) {
	orig := Term{Mono: []Monomial{
		{Col: 1, Coeff: FromInt64(2)},
		{Col: 2, Coeff: FromFrac(1, 3)},
	}}
	clone := orig.Clone()

	if diff := cmp.Diff(orig, clone, qCmp); diff != "" {
		t.Fatalf("clone diverges from original (-orig +clone):\n%s", diff)
	}

	clone.Mono[0].Coeff = FromInt64(99)
	if orig.Mono[0].Coeff.Equal(FromInt64(99)) {
		t.Fatal("mutating the clone's monomial must not affect the original")
	}
}

func TestTermAlgebra(t *testing.T) {
	a := Term{Mono: []Monomial{{Col: 1, Coeff: FromInt64(2)}, {Col: 2, Coeff: FromInt64(3)}}}
	b := Term{Mono: []Monomial{{Col: 2, Coeff: FromInt64(-3)}, {Col: 3, Coeff: FromInt64(5)}}}

	sum := a.Add(b)
	want := Term{Mono: []Monomial{{Col: 1, Coeff: FromInt64(2)}, {Col: 3, Coeff: FromInt64(5)}}}
	if diff := cmp.Diff(want, sum, qCmp); diff != "" {
		t.Fatalf("Add: column 2 must cancel out entirely (-want +got):\n%s", diff)
	}

	diffTerm := a.Sub(a)
	if len(diffTerm.Mono) != 0 {
		t.Fatalf("Sub(a, a) must be empty, got %+v", diffTerm.Mono)
	}

	scaled := a.Scale(FromInt64(2))
	wantScaled := Term{Mono: []Monomial{{Col: 1, Coeff: FromInt64(4)}, {Col: 2, Coeff: FromInt64(6)}}}
	if diff := cmp.Diff(wantScaled, scaled, qCmp); diff != "" {
		t.Fatalf("Scale mismatch (-want +got):\n%s", diff)
	}

	if zero := a.Scale(Zero()); len(zero.Mono) != 0 {
		t.Fatalf("Scale(0) must be empty, got %+v", zero.Mono)
	}
}

func TestTermCoeffMissingColumnIsZero(t *testing.T) {
	term := Term{Mono: []Monomial{{Col: 1, Coeff: FromInt64(5)}}}

	if diff := cmp.Diff(FromInt64(5), term.Coeff(1), qCmp); diff != "" {
		t.Fatalf("Coeff(1) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Zero(), term.Coeff(7), qCmp); diff != "" {
		t.Fatalf("Coeff(7) mismatch (-want +got):\n%s", diff)
	}
}
