package money

import "math"

// epsilonBias counters binary representation error before rounding. The
// value is the double-precision machine epsilon.
const epsilonBias = 2.220446049250313e-16

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(x float64) float64 {
	return roundAt(x, 1e2)
}

// Round8 rounds to 8 decimal places, half away from zero. Crypto amounts
// keep the wider precision of typical on-chain divisibility.
func Round8(x float64) float64 {
	return roundAt(x, 1e8)
}

func roundAt(x, scale float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	if x < 0 {
		return -math.Round((-x+epsilonBias)*scale) / scale
	}
	return math.Round((x+epsilonBias)*scale) / scale
}

// NonNegative coerces negative or non-finite values to 0.
func NonNegative(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}

// QuantityOrDefault applies the boundary default of one unit when a
// quantity is missing or zero. Negative quantities pass through and are
// coerced to zero inside the totals computation.
func QuantityOrDefault(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) || q == 0 {
		return 1
	}
	return q
}
