package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-loudness/dsp/core"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// Interleave merges equally long channel signals into one interleaved
// buffer (frame-major). Panics when lengths differ.
func Interleave(channels ...[]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}

	n := len(channels[0])
	out := make([]float64, n*len(channels))

	for ch, sig := range channels {
		if len(sig) != n {
			panic("testutil: channel lengths differ")
		}

		for i, v := range sig {
			out[i*len(channels)+ch] = v
		}
	}

	return out
}

// Replicate interleaves the same signal into the given number of channels.
func Replicate(sig []float64, channels int) []float64 {
	out := make([]float64, len(sig)*channels)
	for i, v := range sig {
		for ch := range channels {
			out[i*channels+ch] = v
		}
	}

	return out
}

// Segment is one constant-level stretch of a tone sequence.
type Segment struct {
	LevelDBFS float64 // peak level of the sine
	Seconds   float64
}

// ToneSequence renders a phase-continuous sine of freqHz whose level
// follows segments. It is the shape of the EBU Tech 3341/3342 minimum
// requirement test signals (1 kHz tone at stepped levels).
func ToneSequence(freqHz, sampleRate float64, segments ...Segment) []float64 {
	var total int
	for _, s := range segments {
		total += int(math.Round(s.Seconds * sampleRate))
	}

	out := make([]float64, 0, total)
	step := 2 * math.Pi * freqHz / sampleRate

	for _, s := range segments {
		amp := core.DBToLinear(s.LevelDBFS)

		n := int(math.Round(s.Seconds * sampleRate))
		for range n {
			out = append(out, amp*math.Sin(step*float64(len(out))))
		}
	}

	return out
}

// ToFloat32 converts samples to float32.
func ToFloat32(sig []float64) []float32 {
	out := make([]float32, len(sig))
	for i, v := range sig {
		out[i] = float32(v)
	}

	return out
}

// ToInt16 quantizes samples in [-1, 1) to 16-bit PCM with rounding and
// clipping.
func ToInt16(sig []float64) []int16 {
	out := make([]int16, len(sig))
	for i, v := range sig {
		out[i] = int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, math.Round(v*32768))))
	}

	return out
}

// ToInt32 quantizes samples in [-1, 1) to 32-bit PCM with rounding and
// clipping.
func ToInt32(sig []float64) []int32 {
	out := make([]int32, len(sig))
	for i, v := range sig {
		out[i] = int32(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Round(v*2147483648))))
	}

	return out
}
