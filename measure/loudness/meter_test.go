package loudness_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-loudness/internal/testutil"
	"github.com/cwbudde/algo-loudness/measure/loudness"
)

func newMeter(t *testing.T, channels int, rate float64, mode loudness.Mode, opts ...loudness.MeterOption) *loudness.Meter {
	t.Helper()

	m, err := loudness.NewMeter(channels, rate, mode, opts...)
	require.NoError(t, err)

	t.Cleanup(func() { _ = m.Close() })

	return m
}

func TestNewMeterRejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		rate     float64
	}{
		{"zero channels", 0, 48000},
		{"negative channels", -1, 48000},
		{"zero rate", 2, 0},
		{"rate too low", 2, 8},
		{"shelf above nyquist", 2, 3000},
		{"aliased stable design", 2, 1200},
		{"just below shelf limit", 2, 3363},
		{"rate too high", 2, 3e6},
		{"nan rate", 2, math.NaN()},
		{"inf rate", 2, math.Inf(1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := loudness.NewMeter(tc.channels, tc.rate, loudness.ModeI)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, loudness.ErrConstruction)
			assert.ErrorIs(t, err, loudness.ErrInvalidMode)
		})
	}
}

func TestLowestSupportedRateStaysFinite(t *testing.T) {
	const rate = 3364.0

	m := newMeter(t, 1, rate, loudness.ModeI|loudness.ModeLRA|loudness.ModeTruePeak)
	require.NoError(t, m.AddFramesFloat64(testutil.DeterministicNoise(5, 0.3, int(rate)*20)))

	finite := func(name string, v float64, err error) {
		t.Helper()
		require.NoError(t, err, name)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s = %v", name, v)
	}

	v, err := m.Integrated()
	finite("integrated", v, err)
	assert.Greater(t, v, -30.0)

	v, err = m.Momentary()
	finite("momentary", v, err)
	v, err = m.ShortTerm()
	finite("short-term", v, err)
	v, err = m.LoudnessRange()
	finite("range", v, err)
	v, err = m.TruePeak(0)
	finite("true peak", v, err)

	// Reconfiguring to an unsupported rate is rejected and harmless.
	err = m.ChangeParameters(1, 3000)
	assert.ErrorIs(t, err, loudness.ErrConstruction)
	_, err = m.Integrated()
	assert.NoError(t, err)
}

func TestNewMeterRejectsUnknownModeFlags(t *testing.T) {
	_, err := loudness.NewMeter(2, 48000, loudness.Mode(1<<12))
	assert.ErrorIs(t, err, loudness.ErrConstruction)
	assert.ErrorIs(t, err, loudness.ErrInvalidMode)
}

func TestNewMeterRejectsInvalidChannelMap(t *testing.T) {
	_, err := loudness.NewMeter(2, 48000, loudness.ModeI, loudness.WithChannelMap(loudness.Left, loudness.Right, loudness.Center))
	assert.ErrorIs(t, err, loudness.ErrConstruction)

	_, err = loudness.NewMeter(2, 48000, loudness.ModeI, loudness.WithChannelMap(loudness.DualMono))
	assert.ErrorIs(t, err, loudness.ErrConstruction)
	assert.ErrorIs(t, err, loudness.ErrInvalidChannelIndex)
}

func TestMeterAccessors(t *testing.T) {
	m := newMeter(t, 6, 44100, loudness.ModeLRA|loudness.ModeTruePeak, loudness.WithMaxHistory(60000))

	assert.Equal(t, 6, m.Channels())
	assert.InDelta(t, 44100.0, m.SampleRate(), 0)
	assert.Equal(t, loudness.ModeM|loudness.ModeS|loudness.ModeLRA|loudness.ModeSamplePeak|loudness.ModeTruePeak, m.Mode())
	assert.Equal(t, 3000, m.MaxWindow())
	assert.Equal(t, 60000, m.MaxHistory())

	for i, want := range []loudness.Channel{loudness.Left, loudness.Right, loudness.Center, loudness.LeftSurround, loudness.RightSurround, loudness.Unused} {
		got, err := m.Channel(i)
		require.NoError(t, err)
		assert.Equal(t, want, got, "channel %d", i)
	}
}

func TestMaxWindowDefaultsAndClamping(t *testing.T) {
	assert.Equal(t, 400, newMeter(t, 1, 48000, loudness.ModeI).MaxWindow())
	assert.Equal(t, 3000, newMeter(t, 1, 48000, loudness.ModeS).MaxWindow())
	assert.Equal(t, 3000, newMeter(t, 1, 48000, loudness.ModeS, loudness.WithMaxWindow(1000)).MaxWindow())
	assert.Equal(t, 10000, newMeter(t, 1, 48000, loudness.ModeM, loudness.WithMaxWindow(10000)).MaxWindow())
	assert.Equal(t, 3000, newMeter(t, 1, 48000, loudness.ModeLRA, loudness.WithMaxHistory(1)).MaxHistory())
	assert.Equal(t, 0, newMeter(t, 1, 48000, loudness.ModeI).MaxHistory())
}

func TestQueriesRequireMode(t *testing.T) {
	m := newMeter(t, 2, 48000, loudness.ModeM)

	_, err := m.ShortTerm()
	assert.ErrorIs(t, err, loudness.ErrInvalidMode)

	_, err = m.Integrated()
	assert.ErrorIs(t, err, loudness.ErrInvalidMode)

	_, err = m.RelativeThreshold()
	assert.ErrorIs(t, err, loudness.ErrInvalidMode)

	_, err = m.LoudnessRange()
	assert.ErrorIs(t, err, loudness.ErrInvalidMode)

	_, err = m.SamplePeak(0)
	assert.ErrorIs(t, err, loudness.ErrInvalidMode)

	_, err = m.TruePeak(0)
	assert.ErrorIs(t, err, loudness.ErrInvalidMode)

	_, err = m.Momentary()
	assert.NoError(t, err)
}

func TestModeCheckPrecedesChannelCheck(t *testing.T) {
	m := newMeter(t, 2, 48000, loudness.ModeI)

	_, err := m.SamplePeak(99)
	assert.ErrorIs(t, err, loudness.ErrInvalidMode)
	assert.NotErrorIs(t, err, loudness.ErrInvalidChannelIndex)
}

func TestSetChannel(t *testing.T) {
	m := newMeter(t, 2, 48000, loudness.ModeI)

	require.NoError(t, m.SetChannel(1, loudness.Mp090))
	got, err := m.Channel(1)
	require.NoError(t, err)
	assert.Equal(t, loudness.Mp090, got)

	assert.ErrorIs(t, m.SetChannel(2, loudness.Left), loudness.ErrInvalidChannelIndex)
	assert.ErrorIs(t, m.SetChannel(-1, loudness.Left), loudness.ErrInvalidChannelIndex)
	assert.ErrorIs(t, m.SetChannel(0, loudness.Channel(1000)), loudness.ErrInvalidChannelIndex)
	assert.ErrorIs(t, m.SetChannel(0, loudness.DualMono), loudness.ErrInvalidChannelIndex)

	_, err = m.Channel(2)
	assert.ErrorIs(t, err, loudness.ErrInvalidChannelIndex)

	mono := newMeter(t, 1, 48000, loudness.ModeI)
	assert.NoError(t, mono.SetChannel(0, loudness.DualMono))
}

func TestAddFramesRejectsPartialFrames(t *testing.T) {
	m := newMeter(t, 2, 48000, loudness.ModeI)

	assert.ErrorIs(t, m.AddFramesFloat64(make([]float64, 3)), loudness.ErrFrameLength)
	assert.ErrorIs(t, m.AddFramesInt16(make([]int16, 5)), loudness.ErrFrameLength)
	assert.NoError(t, m.AddFramesFloat32(nil))
}

func TestSilenceIsNegativeInfinity(t *testing.T) {
	for _, mode := range []loudness.Mode{loudness.ModeI | loudness.ModeLRA, loudness.ModeI | loudness.ModeLRA | loudness.ModeHistogram} {
		m := newMeter(t, 2, 44100, mode)
		require.NoError(t, m.AddFramesFloat64(make([]float64, 2*44100*4)))

		for name, query := range map[string]func() (float64, error){
			"integrated": m.Integrated,
			"momentary":  m.Momentary,
			"short-term": m.ShortTerm,
			"threshold":  m.RelativeThreshold,
		} {
			v, err := query()
			require.NoError(t, err)
			assert.True(t, math.IsInf(v, -1), "%s on silence = %v (mode %s)", name, v, mode)
		}

		lra, err := m.LoudnessRange()
		require.NoError(t, err)
		assert.Zero(t, lra)
	}
}

func TestWindowedQueriesBeforeFill(t *testing.T) {
	m := newMeter(t, 1, 48000, loudness.ModeS)
	sig := testutil.DeterministicSine(1000, 48000, 0.5, 48000)

	require.NoError(t, m.AddFramesFloat64(sig[:14400])) // 300 ms

	mom, err := m.Momentary()
	require.NoError(t, err)
	assert.True(t, math.IsInf(mom, -1))

	require.NoError(t, m.AddFramesFloat64(sig[14400:])) // 1 s total

	mom, err = m.Momentary()
	require.NoError(t, err)
	assert.False(t, math.IsInf(mom, 0))

	st, err := m.ShortTerm()
	require.NoError(t, err)
	assert.True(t, math.IsInf(st, -1))
}

func TestWindowMatchesMomentaryAndShortTerm(t *testing.T) {
	m := newMeter(t, 2, 48000, loudness.ModeS|loudness.ModeI)
	require.NoError(t, m.AddFramesFloat64(testutil.Interleave(
		testutil.DeterministicNoise(1, 0.3, 48000*5),
		testutil.DeterministicNoise(2, 0.3, 48000*5),
	)))

	mom, err := m.Momentary()
	require.NoError(t, err)
	w400, err := m.Window(400)
	require.NoError(t, err)
	assert.InDelta(t, mom, w400, 1e-12)

	st, err := m.ShortTerm()
	require.NoError(t, err)
	w3000, err := m.Window(3000)
	require.NoError(t, err)
	assert.InDelta(t, st, w3000, 1e-12)

	_, err = m.Window(3001)
	assert.ErrorIs(t, err, loudness.ErrInvalidMode)

	_, err = m.Window(0)
	assert.ErrorIs(t, err, loudness.ErrInvalidMode)
}

func TestSetMaxWindow(t *testing.T) {
	m := newMeter(t, 1, 48000, loudness.ModeM)

	_, err := m.Window(1000)
	assert.ErrorIs(t, err, loudness.ErrInvalidMode)

	require.NoError(t, m.SetMaxWindow(1000))
	assert.Equal(t, 1000, m.MaxWindow())
	assert.ErrorIs(t, m.SetMaxWindow(1000), loudness.ErrNoChange)

	require.NoError(t, m.AddFramesFloat64(testutil.DeterministicSine(1000, 48000, 1, 48000)))

	w, err := m.Window(1000)
	require.NoError(t, err)
	assert.InDelta(t, -3.0036, w, 0.01)

	// Shrinking restarts the sub-block window.
	require.NoError(t, m.SetMaxWindow(100))
	assert.Equal(t, 400, m.MaxWindow())

	mom, err := m.Momentary()
	require.NoError(t, err)
	assert.True(t, math.IsInf(mom, -1))

	assert.ErrorIs(t, m.SetMaxWindow(400), loudness.ErrNoChange)
}

func TestSetMaxHistoryKeepsNewestBlocks(t *testing.T) {
	m := newMeter(t, 1, 48000, loudness.ModeI)
	sig := testutil.ToneSequence(1000, 48000,
		testutil.Segment{LevelDBFS: -20, Seconds: 10},
		testutil.Segment{LevelDBFS: -40, Seconds: 1},
	)
	require.NoError(t, m.AddFramesFloat64(sig))

	full, err := m.Integrated()
	require.NoError(t, err)
	assert.InDelta(t, -23.07, full, 0.02)

	require.NoError(t, m.SetMaxHistory(400))
	assert.Equal(t, 400, m.MaxHistory())
	assert.ErrorIs(t, m.SetMaxHistory(300), loudness.ErrNoChange)

	last, err := m.Integrated()
	require.NoError(t, err)
	assert.InDelta(t, -43.0, last, 0.05)
}

func TestSetMaxHistoryKeepsPartialSubBlock(t *testing.T) {
	bounded := newMeter(t, 1, 48000, loudness.ModeM|loudness.ModeI)
	ref := newMeter(t, 1, 48000, loudness.ModeM|loudness.ModeI)

	// 450 ms leaves half a sub-block pending.
	head := testutil.DeterministicSine(1000, 48000, 0.5, 21600)
	tail := testutil.DeterministicSine(1000, 48000, 0.5, 2400)

	for _, m := range []*loudness.Meter{bounded, ref} {
		require.NoError(t, m.AddFramesFloat64(head))
	}

	require.NoError(t, bounded.SetMaxHistory(1000))

	for _, m := range []*loudness.Meter{bounded, ref} {
		require.NoError(t, m.AddFramesFloat64(tail))
	}

	got, err := bounded.Momentary()
	require.NoError(t, err)

	want, err := ref.Momentary()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.False(t, math.IsInf(got, -1))
}

func TestChangeParameters(t *testing.T) {
	const rate = 48000.0

	m := newMeter(t, 2, rate, loudness.ModeI|loudness.ModeSamplePeak)
	require.NoError(t, m.SetChannel(0, loudness.Center))

	tone := testutil.Replicate(testutil.DeterministicSine(1000, rate, 0.5, int(rate)*5), 2)
	require.NoError(t, m.AddFramesFloat64(tone))

	before, err := m.Integrated()
	require.NoError(t, err)

	// Same values: informational error, measurement untouched.
	assert.ErrorIs(t, m.ChangeParameters(2, rate), loudness.ErrNoChange)
	after, err := m.Integrated()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	ch0, err := m.Channel(0)
	require.NoError(t, err)
	assert.Equal(t, loudness.Center, ch0)

	// New rate: history is kept, the sub-block window restarts.
	require.NoError(t, m.ChangeParameters(2, 44100))
	assert.InDelta(t, 44100.0, m.SampleRate(), 0)

	mom, err := m.Momentary()
	require.NoError(t, err)
	assert.True(t, math.IsInf(mom, -1))

	kept, err := m.Integrated()
	require.NoError(t, err)
	assert.Equal(t, before, kept)

	tone44 := testutil.Replicate(testutil.DeterministicSine(1000, 44100, 0.5, 44100*5), 2)
	require.NoError(t, m.AddFramesFloat64(tone44))

	combined, err := m.Integrated()
	require.NoError(t, err)
	assert.InDelta(t, before, combined, 0.02)

	// Channel count change restores the default map and clears peaks.
	require.NoError(t, m.ChangeParameters(3, 44100))
	ch0, err = m.Channel(0)
	require.NoError(t, err)
	assert.Equal(t, loudness.Left, ch0)

	sp, err := m.SamplePeak(2)
	require.NoError(t, err)
	assert.Zero(t, sp)

	assert.ErrorIs(t, m.ChangeParameters(0, 44100), loudness.ErrConstruction)
}

func TestChangeParametersOutOfMemoryBreaksMeter(t *testing.T) {
	m, err := loudness.NewMeter(2, 48000, loudness.ModeI)
	require.NoError(t, err)

	assert.ErrorIs(t, m.ChangeParameters(1<<20, 48000), loudness.ErrOutOfMemory)
	assert.ErrorIs(t, m.AddFramesFloat64(make([]float64, 2)), loudness.ErrOutOfMemory)

	_, err = m.Integrated()
	assert.ErrorIs(t, err, loudness.ErrOutOfMemory)

	assert.NoError(t, m.Close())
}

func TestSetMaxWindowOutOfMemory(t *testing.T) {
	m, err := loudness.NewMeter(1, 48000, loudness.ModeM)
	require.NoError(t, err)

	assert.ErrorIs(t, m.SetMaxWindow(math.MaxInt), loudness.ErrOutOfMemory)

	_, err = m.Momentary()
	assert.ErrorIs(t, err, loudness.ErrOutOfMemory)
}

func TestClose(t *testing.T) {
	m, err := loudness.NewMeter(2, 48000, loudness.ModeI)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Close(), loudness.ErrClosed)
	assert.ErrorIs(t, m.AddFramesFloat64(make([]float64, 2)), loudness.ErrClosed)
	assert.ErrorIs(t, m.SetChannel(0, loudness.Left), loudness.ErrClosed)
	assert.ErrorIs(t, m.Reset(), loudness.ErrClosed)

	_, err = m.Integrated()
	assert.ErrorIs(t, err, loudness.ErrClosed)
}

func TestResetDiscardsMeasurements(t *testing.T) {
	m := newMeter(t, 1, 48000, loudness.ModeI|loudness.ModeSamplePeak)
	require.NoError(t, m.AddFramesFloat64(testutil.DeterministicSine(1000, 48000, 0.5, 48000)))
	require.NoError(t, m.Reset())

	i, err := m.Integrated()
	require.NoError(t, err)
	assert.True(t, math.IsInf(i, -1))

	sp, err := m.SamplePeak(0)
	require.NoError(t, err)
	assert.Zero(t, sp)
}

func TestFeedChunkingDoesNotMatter(t *testing.T) {
	sig := testutil.Interleave(
		testutil.DeterministicNoise(11, 0.4, 48000*4),
		testutil.DeterministicNoise(12, 0.2, 48000*4),
	)

	whole := newMeter(t, 2, 48000, loudness.ModeI|loudness.ModeS)
	require.NoError(t, whole.AddFramesFloat64(sig))

	pieces := newMeter(t, 2, 48000, loudness.ModeI|loudness.ModeS)
	for off, step := 0, 2; off < len(sig); step = step*3%9998 + 2 {
		end := min(off+step, len(sig))
		require.NoError(t, pieces.AddFramesFloat64(sig[off:end]))
		off = end
	}

	for name, pair := range map[string][2]func() (float64, error){
		"integrated": {whole.Integrated, pieces.Integrated},
		"short-term": {whole.ShortTerm, pieces.ShortTerm},
	} {
		a, err := pair[0]()
		require.NoError(t, err)
		b, err := pair[1]()
		require.NoError(t, err)
		assert.InDelta(t, a, b, 1e-9, name)
	}
}

func TestSampleFormatsAgree(t *testing.T) {
	const rate = 48000.0

	noise := testutil.Interleave(
		testutil.DeterministicNoise(21, 0.5, int(rate)*2),
		testutil.DeterministicNoise(22, 0.5, int(rate)*2),
	)
	pcm16 := testutil.ToInt16(noise)

	asFloat := make([]float64, len(pcm16))
	for i, v := range pcm16 {
		asFloat[i] = float64(v) / 32768
	}

	pcm32 := make([]int32, len(pcm16))
	for i, v := range pcm16 {
		pcm32[i] = int32(v) << 16
	}

	mode := loudness.ModeI | loudness.ModeSamplePeak
	feeds := map[string]func(*loudness.Meter) error{
		"int16":   func(m *loudness.Meter) error { return m.AddFramesInt16(pcm16) },
		"int32":   func(m *loudness.Meter) error { return m.AddFramesInt32(pcm32) },
		"float32": func(m *loudness.Meter) error { return m.AddFramesFloat32(testutil.ToFloat32(asFloat)) },
	}

	ref := newMeter(t, 2, rate, mode)
	require.NoError(t, ref.AddFramesFloat64(asFloat))
	want, err := ref.Integrated()
	require.NoError(t, err)
	wantPeak, err := ref.AbsoluteSamplePeak()
	require.NoError(t, err)

	for name, feed := range feeds {
		m := newMeter(t, 2, rate, mode)
		require.NoError(t, feed(m), name)

		got, err := m.Integrated()
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-12, name)

		peak, err := m.AbsoluteSamplePeak()
		require.NoError(t, err)
		assert.InDelta(t, wantPeak, peak, 0, name)
	}
}

func TestChannelWeighting(t *testing.T) {
	const rate = 48000.0

	sig := testutil.DeterministicNoise(5, 0.3, int(rate)*2)
	silent := make([]float64, len(sig))

	front := newMeter(t, 5, rate, loudness.ModeI)
	require.NoError(t, front.AddFramesFloat64(testutil.Interleave(sig, silent, silent, silent, silent)))

	surround := newMeter(t, 5, rate, loudness.ModeI)
	require.NoError(t, surround.AddFramesFloat64(testutil.Interleave(silent, silent, silent, sig, silent)))

	unused := newMeter(t, 5, rate, loudness.ModeI, loudness.WithChannelMap(loudness.Unused))
	require.NoError(t, unused.AddFramesFloat64(testutil.Interleave(sig, silent, silent, silent, silent)))

	lf, err := front.Integrated()
	require.NoError(t, err)
	ls, err := surround.Integrated()
	require.NoError(t, err)
	lu, err := unused.Integrated()
	require.NoError(t, err)

	assert.InDelta(t, 10*math.Log10(1.41), ls-lf, 1e-9)
	assert.True(t, math.IsInf(lu, -1))
}

func TestDualMonoMatchesStereo(t *testing.T) {
	const rate = 48000.0

	sig := testutil.DeterministicNoise(9, 0.3, int(rate)*2)

	dual := newMeter(t, 1, rate, loudness.ModeI, loudness.WithChannelMap(loudness.DualMono))
	require.NoError(t, dual.AddFramesFloat64(sig))

	stereo := newMeter(t, 2, rate, loudness.ModeI)
	require.NoError(t, stereo.AddFramesFloat64(testutil.Replicate(sig, 2)))

	a, err := dual.Integrated()
	require.NoError(t, err)
	b, err := stereo.Integrated()
	require.NoError(t, err)
	assert.InDelta(t, b, a, 1e-9)
}

func TestVersion(t *testing.T) {
	major, minor, patch := loudness.Version()
	assert.Equal(t, loudness.VersionMajor, major)
	assert.Equal(t, loudness.VersionMinor, minor)
	assert.Equal(t, loudness.VersionPatch, patch)
}
