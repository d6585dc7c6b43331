package core

import "math"

// denormalThreshold is the magnitude below which FlushDenormals returns 0.
const denormalThreshold = 1e-30

// FlushDenormals returns 0 for values too small to matter in a decaying
// filter state, x otherwise.
func FlushDenormals(x float64) float64 {
	if x > -denormalThreshold && x < denormalThreshold {
		return 0
	}

	return x
}

// DBToLinear converts a level in dB to a linear amplitude (20*log10).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts a linear amplitude to dB (20*log10). Zero maps to
// -Inf, negative amplitudes to NaN.
func LinearToDB(linear float64) float64 {
	switch {
	case linear < 0:
		return math.NaN()
	case linear == 0:
		return math.Inf(-1)
	default:
		return 20 * math.Log10(linear)
	}
}
