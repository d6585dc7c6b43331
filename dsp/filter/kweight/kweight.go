package kweight

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-loudness/dsp/core"
	"github.com/cwbudde/algo-loudness/dsp/filter/biquad"
)

// BS.1770 analog prototype parameters.
const (
	shelfFreq   = 1681.974450955533
	shelfGainDB = 3.999843853973347
	shelfQ      = 0.7071752369554196
	shelfVbExp  = 0.4996667741545416

	highpassFreq = 38.13547087602444
	highpassQ    = 0.5003270373238773
)

// MinSampleRate is the exclusive lower bound of supported sample rates:
// the shelf frequency must lie below Nyquist.
const MinSampleRate = 2 * shelfFreq

// Design returns the shelf and high-pass stages for sampleRate.
//
// The high-pass numerator is left unnormalized (1, -2, 1) as in the
// BS.1770 coefficient table.
func Design(sampleRate float64) (shelf, highpass biquad.Coefficients) {
	k := math.Tan(math.Pi * shelfFreq / sampleRate)
	vh := math.Pow(10, shelfGainDB/20)
	vb := math.Pow(vh, shelfVbExp)
	a0 := 1 + k/shelfQ + k*k

	shelf = biquad.Coefficients{
		B0: (vh + vb*k/shelfQ + k*k) / a0,
		B1: 2 * (k*k - vh) / a0,
		B2: (vh - vb*k/shelfQ + k*k) / a0,
		A1: 2 * (k*k - 1) / a0,
		A2: (1 - k/shelfQ + k*k) / a0,
	}

	k = math.Tan(math.Pi * highpassFreq / sampleRate)
	a0 = 1 + k/highpassQ + k*k

	highpass = biquad.Coefficients{
		B0: 1,
		B1: -2,
		B2: 1,
		A1: 2 * (k*k - 1) / a0,
		A2: (1 - k/highpassQ + k*k) / a0,
	}

	return shelf, highpass
}

// Supported reports whether sampleRate yields a stable K-weighting design
// with both prototype frequencies below Nyquist.
func Supported(sampleRate float64) bool {
	if !(sampleRate > MinSampleRate) || math.IsInf(sampleRate, 0) {
		return false
	}

	shelf, highpass := Design(sampleRate)

	return shelf.Stable() && highpass.Stable()
}

// Filter is a multichannel K-weighting filter: one shelf + high-pass
// chain per channel.
type Filter struct {
	sampleRate float64
	shelf      biquad.Coefficients
	highpass   biquad.Coefficients
	chains     []*biquad.Chain
}

// New returns a K-weighting filter for the given channel count and sample
// rate with zeroed state.
//
// Panics if channels <= 0 or sampleRate is not Supported.
func New(channels int, sampleRate float64) *Filter {
	if channels <= 0 {
		panic("kweight: channel count must be positive")
	}

	if !Supported(sampleRate) {
		panic("kweight: sample rate must exceed twice the shelf frequency")
	}

	shelf, highpass := Design(sampleRate)

	chains := make([]*biquad.Chain, channels)
	for ch := range chains {
		chains[ch] = biquad.NewChain(shelf, highpass)
	}

	return &Filter{
		sampleRate: sampleRate,
		shelf:      shelf,
		highpass:   highpass,
		chains:     chains,
	}
}

// Channels returns the number of channels the filter keeps state for.
func (f *Filter) Channels() int { return len(f.chains) }

// SampleRate returns the rate the coefficients were designed for.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Stages returns the shelf and high-pass coefficients.
func (f *Filter) Stages() (shelf, highpass biquad.Coefficients) {
	return f.shelf, f.highpass
}

// ProcessSample filters one sample of channel ch.
func (f *Filter) ProcessSample(ch int, x float64) float64 {
	return f.chains[ch].ProcessSample(x)
}

// ProcessBlock filters buf of channel ch in place. Zero-alloc.
func (f *Filter) ProcessBlock(ch int, buf []float64) {
	c := f.chains[ch]
	c.ProcessBlock(buf)

	// Flushed once per block so silence never runs in subnormal range.
	for i := range c.NumSections() {
		s := c.Section(i)
		st := s.State()
		s.SetState([2]float64{core.FlushDenormals(st[0]), core.FlushDenormals(st[1])})
	}
}

// Reset clears the delay lines of all channels.
func (f *Filter) Reset() {
	for _, c := range f.chains {
		c.Reset()
	}
}

// Response returns the complex response of the cascade at freqHz.
func (f *Filter) Response(freqHz float64) complex128 {
	return f.chains[0].Response(freqHz, f.sampleRate)
}

// MagnitudeDB returns the cascade magnitude at freqHz in dB.
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	return core.LinearToDB(cmplx.Abs(f.Response(freqHz)))
}
