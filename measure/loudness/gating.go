package loudness

import "math"

const (
	// absoluteGate is the BS.1770 absolute gating threshold in LUFS.
	absoluteGate = -70.0
	// relativeGate is the integrated loudness relative threshold in LU.
	relativeGate = -10.0
	// rangeGate is the loudness range relative threshold in LU.
	rangeGate = -20.0

	rangeLowPercentile  = 0.10
	rangeHighPercentile = 0.95
)

var (
	absoluteGateEnergy = loudnessToEnergy(absoluteGate)
	relativeGateFactor = math.Pow(10, relativeGate/10)
	rangeGateFactor    = math.Pow(10, rangeGate/10)
)

// energyToLoudness converts a weighted mean square to LUFS. Non-positive
// energies map to -Inf.
func energyToLoudness(z float64) float64 {
	if z <= 0 {
		return math.Inf(-1)
	}

	return -0.691 + 10*math.Log10(z)
}

func loudnessToEnergy(l float64) float64 {
	return math.Pow(10, (l+0.691)/10)
}

// relativeThreshold returns the energy threshold of the relative gate over
// the absolute-gated populations hs. ok is false if they are all empty.
func relativeThreshold(hs ...blockHistory) (float64, bool) {
	var (
		sum float64
		n   int
	)

	for _, h := range hs {
		s, c := h.sumAbove(0)
		sum += s
		n += c
	}

	if n == 0 {
		return 0, false
	}

	return sum / float64(n) * relativeGateFactor, true
}

// integrated computes gated loudness over hs, treated as one population.
func integrated(hs ...blockHistory) float64 {
	threshold, ok := relativeThreshold(hs...)
	if !ok {
		return math.Inf(-1)
	}

	var (
		sum float64
		n   int
	)

	for _, h := range hs {
		s, c := h.sumAbove(threshold)
		sum += s
		n += c
	}

	if n == 0 {
		return math.Inf(-1)
	}

	return energyToLoudness(sum / float64(n))
}

// loudnessRange computes LRA in LU over the short-term populations hs.
// Exact lists are concatenated; as soon as one histogram is involved every
// population is merged into a histogram.
func loudnessRange(hs ...blockHistory) float64 {
	pop := combine(hs)

	sum, n := pop.sumAbove(0)
	if n == 0 {
		return 0
	}

	gate := sum / float64(n) * rangeGateFactor

	lo, hi, ok := pop.percentiles(gate, rangeLowPercentile, rangeHighPercentile)
	if !ok {
		return 0
	}

	return energyToLoudness(hi) - energyToLoudness(lo)
}

func combine(hs []blockHistory) blockHistory {
	if len(hs) == 1 {
		return hs[0]
	}

	exact := true
	for _, h := range hs {
		if _, ok := h.(*blockList); !ok {
			exact = false
			break
		}
	}

	if exact {
		all := newBlockList(unboundedLimit)
		for _, h := range hs {
			h.(*blockList).appendTo(all)
		}

		return all
	}

	merged := newHistogram()
	for _, h := range hs {
		h.mergeInto(merged)
	}

	return merged
}
