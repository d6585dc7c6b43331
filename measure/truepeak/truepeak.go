package truepeak

import (
	"math"

	"github.com/cwbudde/algo-loudness/dsp/core"
	"github.com/cwbudde/algo-loudness/dsp/window"
)

const (
	// prototypeTaps is the length of the lowpass prototype before the
	// polyphase split. Odd, so that phase 0 is a pure delay.
	prototypeTaps = 49

	// kaiserBeta matches the fast resampler profile (~55 dB sidelobes).
	kaiserBeta = 5.0
)

// Factor returns the oversampling factor used for sampleRate: 4 below
// 96 kHz, 2 below 192 kHz and 1 (plain sample peak) above.
func Factor(sampleRate float64) int {
	switch {
	case sampleRate < 96000:
		return 4
	case sampleRate < 192000:
		return 2
	default:
		return 1
	}
}

// Detector measures inter-sample peaks of a multichannel stream by
// polyphase FIR oversampling. Each channel keeps its own input history so
// blocks can be streamed in arbitrary sizes.
type Detector struct {
	factor  int
	phases  [][]float64
	history [][]float64
	work    []float64
}

// New returns a detector for channels at sampleRate.
//
// Panics if channels <= 0.
func New(channels int, sampleRate float64) *Detector {
	if channels <= 0 {
		panic("truepeak: channel count must be positive")
	}

	factor := Factor(sampleRate)
	d := &Detector{
		factor:  factor,
		history: make([][]float64, channels),
	}

	if factor == 1 {
		return d
	}

	d.phases = designPhases(factor)

	keep := len(d.phases[0]) - 1
	for ch := range d.history {
		d.history[ch] = make([]float64, keep)
	}

	return d
}

// Factor returns the oversampling factor.
func (d *Detector) Factor() int { return d.factor }

// Channels returns the number of channels.
func (d *Detector) Channels() int { return len(d.history) }

// Taps returns the number of taps of the longest polyphase branch, or 0
// when the detector does not interpolate.
func (d *Detector) Taps() int {
	if len(d.phases) == 0 {
		return 0
	}

	return len(d.phases[0])
}

// Delay returns the interpolator's group delay in input samples.
func (d *Detector) Delay() int {
	if d.factor == 1 {
		return 0
	}

	return (prototypeTaps - 1) / 2 / d.factor
}

// Prototype reassembles the interpolation filter from its phases.
func (d *Detector) Prototype() []float64 {
	if d.factor == 1 {
		return []float64{1}
	}

	out := make([]float64, prototypeTaps)
	for p, taps := range d.phases {
		for k, c := range taps {
			out[k*d.factor+p] = c
		}
	}

	return out
}

// Process feeds buf for channel ch and returns the largest absolute value
// of the oversampled signal produced by this block.
//
// The interpolator lags its input by Delay samples, so peaks formed by the
// last Delay samples of buf are only reported by the next call.
func (d *Detector) Process(ch int, buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}

	if d.factor == 1 {
		return maxAbs(buf)
	}

	hist := d.history[ch]
	n := len(hist) + len(buf)

	d.work = core.EnsureLen(d.work, n)
	work := d.work
	copy(work, hist)
	copy(work[len(hist):], buf)

	var peak float64

	for i := len(hist); i < n; i++ {
		for _, taps := range d.phases {
			var y float64
			for k, c := range taps {
				y += c * work[i-k]
			}

			if a := math.Abs(y); a > peak {
				peak = a
			}
		}
	}

	copy(hist, work[n-len(hist):])

	return peak
}

// Reset clears the input history of every channel.
func (d *Detector) Reset() {
	for _, h := range d.history {
		clear(h)
	}
}

// designPhases builds a Kaiser-windowed sinc with its cutoff at the input
// Nyquist frequency and splits it into factor branches, each normalized to
// unity DC gain.
func designPhases(factor int) [][]float64 {
	taps := make([]float64, prototypeTaps)
	center := (prototypeTaps - 1) / 2

	for n := range prototypeTaps {
		m := n - center
		if m != 0 && m%factor == 0 {
			// Exact zero crossings keep phase 0 a pure delay.
			continue
		}

		taps[n] = window.Sinc(float64(m) / float64(factor))
	}

	win, err := window.Kaiser(prototypeTaps, kaiserBeta)
	if err != nil {
		panic("truepeak: " + err.Error())
	}

	if err := window.ApplyCoefficientsInPlace(taps, win); err != nil {
		panic("truepeak: " + err.Error())
	}

	phases := make([][]float64, factor)
	for p := range factor {
		phase := make([]float64, 0, (prototypeTaps-p+factor-1)/factor)
		for i := p; i < prototypeTaps; i += factor {
			phase = append(phase, taps[i])
		}

		var sum float64
		for _, c := range phase {
			sum += c
		}

		for i := range phase {
			phase[i] /= sum
		}

		phases[p] = phase
	}

	return phases
}

func maxAbs(buf []float64) float64 {
	var peak float64

	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	return peak
}
