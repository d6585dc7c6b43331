package loudness

import "strings"

// Mode selects the measurements a meter supports. Flags may be combined;
// prerequisites are enabled implicitly (for example ModeLRA implies
// ModeS, which implies ModeM).
type Mode uint

const (
	// ModeM enables momentary loudness.
	ModeM Mode = 1 << iota
	// ModeS enables short-term loudness.
	ModeS
	// ModeI enables integrated loudness and the relative threshold.
	ModeI
	// ModeLRA enables loudness range.
	ModeLRA
	// ModeSamplePeak enables sample peak measurement.
	ModeSamplePeak
	// ModeTruePeak enables true peak measurement.
	ModeTruePeak
	// ModeHistogram keeps block histories in a histogram instead of exact
	// lists.
	ModeHistogram

	modeMask = ModeM | ModeS | ModeI | ModeLRA | ModeSamplePeak | ModeTruePeak | ModeHistogram
)

var modeNames = []struct {
	mode Mode
	name string
}{
	{ModeM, "M"},
	{ModeS, "S"},
	{ModeI, "I"},
	{ModeLRA, "LRA"},
	{ModeSamplePeak, "SamplePeak"},
	{ModeTruePeak, "TruePeak"},
	{ModeHistogram, "Histogram"},
}

// String returns the set flags joined by "|", or "none".
func (m Mode) String() string {
	var parts []string

	for _, n := range modeNames {
		if m&n.mode != 0 {
			parts = append(parts, n.name)
		}
	}

	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, "|")
}

type capability int

const (
	capMomentary capability = iota
	capShortTerm
	capIntegrated
	capRange
	capSamplePeak
	capTruePeak
	capHistogram

	numCapabilities
)

// capabilities is the closed set of measurements a mode enables.
type capabilities [numCapabilities]bool

// implies lists the direct prerequisites of each capability.
var implies = [numCapabilities][]capability{
	capShortTerm:  {capMomentary},
	capIntegrated: {capMomentary},
	capRange:      {capShortTerm},
	capSamplePeak: {capMomentary},
	capTruePeak:   {capMomentary, capSamplePeak},
}

var flagCapability = map[Mode]capability{
	ModeM:          capMomentary,
	ModeS:          capShortTerm,
	ModeI:          capIntegrated,
	ModeLRA:        capRange,
	ModeSamplePeak: capSamplePeak,
	ModeTruePeak:   capTruePeak,
	ModeHistogram:  capHistogram,
}

// resolve closes mode under the implication lattice.
func resolve(mode Mode) capabilities {
	var caps capabilities

	var enable func(c capability)
	enable = func(c capability) {
		if caps[c] {
			return
		}

		caps[c] = true
		for _, p := range implies[c] {
			enable(p)
		}
	}

	for flag, c := range flagCapability {
		if mode&flag != 0 {
			enable(c)
		}
	}

	return caps
}

func (c capabilities) has(cp capability) bool { return c[cp] }

// mode converts the set back to flags.
func (c capabilities) mode() Mode {
	var m Mode

	for flag, cp := range flagCapability {
		if c[cp] {
			m |= flag
		}
	}

	return m
}

var capabilityNames = [numCapabilities]string{
	capMomentary:  "momentary loudness",
	capShortTerm:  "short-term loudness",
	capIntegrated: "integrated loudness",
	capRange:      "loudness range",
	capSamplePeak: "sample peak",
	capTruePeak:   "true peak",
	capHistogram:  "histogram history",
}
