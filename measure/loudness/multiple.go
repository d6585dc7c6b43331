package loudness

import (
	"fmt"
	"math"
)

// IntegratedMultiple returns the integrated loudness of all meters as if
// their input had been one programme. Every meter needs ModeI. The meters
// are only read.
func IntegratedMultiple(meters ...*Meter) (float64, error) {
	hs, err := collect(meters, capIntegrated, func(m *Meter) blockHistory { return m.blocks })
	if err != nil {
		return 0, err
	}

	return integrated(hs...), nil
}

// RelativeThresholdMultiple returns the relative gating threshold over all
// meters in LUFS, or -Inf if none has a block above the absolute gate.
func RelativeThresholdMultiple(meters ...*Meter) (float64, error) {
	hs, err := collect(meters, capIntegrated, func(m *Meter) blockHistory { return m.blocks })
	if err != nil {
		return 0, err
	}

	z, ok := relativeThreshold(hs...)
	if !ok {
		return math.Inf(-1), nil
	}

	return energyToLoudness(z), nil
}

// RangeMultiple returns the loudness range of all meters as if their input
// had been one programme. Every meter needs ModeLRA. Exact and histogram
// meters may be mixed; the result is then computed on a merged histogram.
func RangeMultiple(meters ...*Meter) (float64, error) {
	hs, err := collect(meters, capRange, func(m *Meter) blockHistory { return m.shortTerm })
	if err != nil {
		return 0, err
	}

	return loudnessRange(hs...), nil
}

func collect(meters []*Meter, c capability, history func(*Meter) blockHistory) ([]blockHistory, error) {
	hs := make([]blockHistory, 0, len(meters))

	for i, m := range meters {
		if m == nil {
			return nil, fmt.Errorf("%w: meter %d is nil", ErrInvalidMode, i)
		}

		if err := m.require(c); err != nil {
			return nil, fmt.Errorf("meter %d: %w", i, err)
		}

		hs = append(hs, history(m))
	}

	return hs, nil
}
