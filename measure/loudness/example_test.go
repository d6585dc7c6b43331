package loudness_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-loudness/dsp/core"
	"github.com/cwbudde/algo-loudness/measure/loudness"
)

func ExampleMeter() {
	const fs = 48000.0

	m, err := loudness.NewMeter(2, fs, loudness.ModeI|loudness.ModeLRA|loudness.ModeTruePeak)
	if err != nil {
		panic(err)
	}
	defer m.Close()

	// 20 seconds of a 1 kHz sine at -23 dBFS on both channels.
	amp := core.DBToLinear(-23)

	frames := make([]float64, 0, 2*int(fs)*20)
	for i := range int(fs) * 20 {
		v := amp * math.Sin(2*math.Pi*1000/fs*float64(i))
		frames = append(frames, v, v)
	}

	if err := m.AddFramesFloat64(frames); err != nil {
		panic(err)
	}

	mom, _ := m.Momentary()
	st, _ := m.ShortTerm()
	integrated, _ := m.Integrated()
	lra, _ := m.LoudnessRange()
	tp, _ := m.AbsoluteTruePeak()

	fmt.Printf("Momentary: %.1f LUFS\n", mom)
	fmt.Printf("Short-term: %.1f LUFS\n", st)
	fmt.Printf("Integrated: %.1f LUFS\n", integrated)
	fmt.Printf("Range: %.1f LU\n", lra)
	fmt.Printf("True peak: %.1f dBTP\n", core.LinearToDB(tp))

	// Output:
	// Momentary: -23.0 LUFS
	// Short-term: -23.0 LUFS
	// Integrated: -23.0 LUFS
	// Range: 0.0 LU
	// True peak: -23.0 dBTP
}

func ExampleMeter_Mode() {
	m, err := loudness.NewMeter(1, 44100, loudness.ModeLRA|loudness.ModeTruePeak)
	if err != nil {
		panic(err)
	}
	defer m.Close()

	fmt.Println(m.Mode())

	// Output:
	// M|S|LRA|SamplePeak|TruePeak
}

func ExampleIntegratedMultiple() {
	const fs = 48000.0

	tone := func(dBFS float64) []float64 {
		amp := core.DBToLinear(dBFS)

		out := make([]float64, int(fs)*10)
		for i := range out {
			out[i] = amp * math.Sin(2*math.Pi*1000/fs*float64(i))
		}

		return out
	}

	first, _ := loudness.NewMeter(1, fs, loudness.ModeI)
	second, _ := loudness.NewMeter(1, fs, loudness.ModeI)

	_ = first.AddFramesFloat64(tone(-20))
	_ = second.AddFramesFloat64(tone(-20))

	programme, _ := loudness.IntegratedMultiple(first, second)
	fmt.Printf("Programme: %.1f LUFS\n", programme)

	// Output:
	// Programme: -23.0 LUFS
}
