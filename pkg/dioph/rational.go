// Package dioph implements a decision procedure for systems of linear
// Diophantine (integer) equations, used as a subroutine of a mixed-integer
// linear arithmetic solver. See the Engine type for the entry point.
package dioph

import (
	"fmt"
	"math/big"
)

// Q is an exact rational number. It is the engine's only numeric type —
// every row coefficient, bound, and constant that flows through the
// elimination core is a Q, and no caller outside this file touches
// math/big directly. Keeping the wrapper narrow means the core algorithm
// never leaks its representation choice.
//
// The zero value of Q behaves as 0: rat() treats a nil *big.Rat as zero.
type Q struct {
	r *big.Rat
}

// FromInt64 builds an integral Q from an int64.
func FromInt64(n int64) Q {
	return Q{r: new(big.Rat).SetInt64(n)}
}

// FromBigInt builds an integral Q from a *big.Int.
func FromBigInt(n *big.Int) Q {
	return Q{r: new(big.Rat).SetInt(n)}
}

// FromFrac builds num/den in lowest terms. Panics if den is zero.
func FromFrac(num, den int64) Q {
	if den == 0 {
		panic("dioph: rational with zero denominator")
	}
	return Q{r: new(big.Rat).SetFrac64(num, den)}
}

// Zero returns the rational 0.
func Zero() Q { return FromInt64(0) }

// One returns the rational 1.
func One() Q { return FromInt64(1) }

func (q Q) rat() *big.Rat {
	if q.r == nil {
		return new(big.Rat)
	}
	return q.r
}

// Add returns q + other.
func (q Q) Add(other Q) Q { return Q{r: new(big.Rat).Add(q.rat(), other.rat())} }

// Sub returns q - other.
func (q Q) Sub(other Q) Q { return Q{r: new(big.Rat).Sub(q.rat(), other.rat())} }

// Mul returns q * other.
func (q Q) Mul(other Q) Q { return Q{r: new(big.Rat).Mul(q.rat(), other.rat())} }

// Div returns q / other. Panics if other is zero.
func (q Q) Div(other Q) Q {
	if other.IsZero() {
		panic("dioph: division by zero rational")
	}
	return Q{r: new(big.Rat).Quo(q.rat(), other.rat())}
}

// Neg returns -q.
func (q Q) Neg() Q { return Q{r: new(big.Rat).Neg(q.rat())} }

// Abs returns |q|.
func (q Q) Abs() Q { return Q{r: new(big.Rat).Abs(q.rat())} }

// Cmp returns -1, 0, or +1 as q is <, ==, or > other.
func (q Q) Cmp(other Q) int { return q.rat().Cmp(other.rat()) }

// Sign returns -1, 0, or +1 as q is negative, zero, or positive.
func (q Q) Sign() int { return q.rat().Sign() }

// IsZero reports whether q == 0.
func (q Q) IsZero() bool { return q.Sign() == 0 }

// IsOne reports whether q == 1.
func (q Q) IsOne() bool { return q.rat().Cmp(bigRatOne) == 0 }

// IsMinusOne reports whether q == -1.
func (q Q) IsMinusOne() bool { return q.rat().Cmp(bigRatMinusOne) == 0 }

// IsPositive reports whether q > 0.
func (q Q) IsPositive() bool { return q.Sign() > 0 }

// IsNegative reports whether q < 0.
func (q Q) IsNegative() bool { return q.Sign() < 0 }

// IsInt reports whether q has denominator 1.
func (q Q) IsInt() bool { return q.rat().IsInt() }

var (
	bigRatOne      = big.NewRat(1, 1)
	bigRatMinusOne = big.NewRat(-1, 1)
)

// Floor returns the greatest integral Q <= q.
func (q Q) Floor() Q {
	num := q.rat().Num()
	den := q.rat().Denom()
	z := new(big.Int)
	m := new(big.Int)
	z.DivMod(num, den, m) // Euclidean: 0 <= m < den, matches floor for positive den
	return FromBigInt(z)
}

// Ceil returns the least integral Q >= q.
func (q Q) Ceil() Q {
	f := q.Floor()
	if f.Cmp(q) == 0 {
		return f
	}
	return f.Add(One())
}

// AsBigInt returns the integer value of q as a *big.Int. Panics if q is not
// integral; callers must check IsInt first.
func (q Q) AsBigInt() *big.Int {
	if !q.IsInt() {
		panic(fmt.Sprintf("dioph: %s is not an integer", q))
	}
	return new(big.Int).Set(q.rat().Num())
}

// Denominator returns the (always positive) denominator of q in lowest
// terms.
func (q Q) Denominator() *big.Int {
	return new(big.Int).Set(q.rat().Denom())
}

// GCD returns the greatest common divisor of two integral rationals, itself
// integral and non-negative. Both q and other must be integers.
func (q Q) GCD(other Q) Q {
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(q.AsBigInt()), new(big.Int).Abs(other.AsBigInt()))
	return FromBigInt(g)
}

// LCM returns the least common multiple of two integral rationals. Both q
// and other must be integers.
func (q Q) LCM(other Q) Q {
	if q.IsZero() || other.IsZero() {
		return Zero()
	}
	g := q.GCD(other)
	prod := new(big.Int).Mul(q.AsBigInt(), other.AsBigInt())
	prod.Abs(prod)
	lcm := new(big.Int).Div(prod, g.AsBigInt())
	return FromBigInt(lcm)
}

// GCDInts computes the GCD of a set of integral rationals, skipping zeros.
// Returns 0 if all values are zero.
func GCDInts(vals []Q) Q {
	g := Zero()
	for _, v := range vals {
		if v.IsZero() {
			continue
		}
		if g.IsZero() {
			g = v.Abs()
			continue
		}
		g = g.GCD(v)
	}
	return g
}

// LCMInts computes the LCM of a set of non-zero integral rationals.
// Returns 1 if the set is empty.
func LCMInts(vals []Q) Q {
	l := One()
	for _, v := range vals {
		if v.IsZero() {
			continue
		}
		l = l.LCM(v)
	}
	return l
}

// MachineDivRem computes q, r such that a = q*b + r, with 0 <= |r| < |b|,
// and the sign of r matching the sign of a (truncated division, the
// "machine" convention of a CPU's idiv instruction). Both a and b must be
// integral; b must be non-zero.
func MachineDivRem(a, b Q) (quot, rem Q) {
	ai := a.AsBigInt()
	bi := b.AsBigInt()
	qi := new(big.Int)
	ri := new(big.Int)
	qi.QuoRem(ai, bi, ri) // big.Int.QuoRem truncates toward zero; remainder sign matches ai
	return FromBigInt(qi), FromBigInt(ri)
}

// String renders q as "num" when integral, else "num/den".
func (q Q) String() string {
	if q.IsInt() {
		return q.rat().Num().String()
	}
	return q.rat().RatString()
}

// Equal reports whether q and other denote the same rational number.
func (q Q) Equal(other Q) bool { return q.Cmp(other) == 0 }
