// Package numeric provides the single epsilon-aware floating point
// comparison helper every other package routes through, grounded on
// original_source/src/common/FloatUtils.h. Two epsilons are kept
// system-wide: a tight one for equation/activation satisfaction and a
// looser one ("almost fixed") — see config.Config.LooseEpsilon, which
// nothing in this module calls.
package numeric

import "math"

// Infinity is the implementation's largest finite double, used to
// encode +/-infinite variable bounds (spec.md §6: "per-variable (lb,
// ub) with ±∞ encoded as the implementation's largest finite double").
const Infinity = math.MaxFloat64 / 4

// NegativeInfinity mirrors Infinity for lower bounds.
const NegativeInfinity = -Infinity

// AreEqual reports whether x and y differ by no more than epsilon.
func AreEqual(x, y, epsilon float64) bool {
	return math.Abs(x-y) <= epsilon
}

// AreDisequal is the negation of AreEqual, named to mirror call sites
// that read more naturally in the negative ("assert these differ").
func AreDisequal(x, y, epsilon float64) bool {
	return !AreEqual(x, y, epsilon)
}

// IsZero reports whether x is within epsilon of zero.
func IsZero(x, epsilon float64) bool {
	return math.Abs(x) <= epsilon
}

// IsPositive reports whether x exceeds epsilon.
func IsPositive(x, epsilon float64) bool {
	return x > epsilon
}

// IsNegative reports whether x is below -epsilon.
func IsNegative(x, epsilon float64) bool {
	return x < -epsilon
}

// GT, GTE, LT, LTE are epsilon-tolerant ordering comparisons.
func GT(x, y, epsilon float64) bool  { return x > y+epsilon }
func GTE(x, y, epsilon float64) bool { return x > y-epsilon }
func LT(x, y, epsilon float64) bool  { return x < y-epsilon }
func LTE(x, y, epsilon float64) bool { return x < y+epsilon }

// Min and Max are ordinary min/max helpers kept alongside the
// comparisons above so call sites need only import this one package for
// all float handling.
func Min(x, y float64) float64 {
	if x < y {
		return x
	}
	return y
}

func Max(x, y float64) float64 {
	if x > y {
		return x
	}
	return y
}

// IsFinite reports whether x is a usable finite bound (not NaN or Inf,
// and within the Infinity sentinel range).
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x > NegativeInfinity && x < Infinity
}

// RoundToZero snaps x to exactly 0 when it is within epsilon of zero;
// used to prevent tiny numerical residues from accumulating through
// repeated LU transformations.
func RoundToZero(x, epsilon float64) float64 {
	if IsZero(x, epsilon) {
		return 0
	}
	return x
}
