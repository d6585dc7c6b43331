package loudness

import "math"

func (m *Meter) resetPrevPeaks() {
	clear(m.prevSamplePeak)
	clear(m.prevTruePeak)
}

// trackPeaks updates the peaks of channel ch from normalized, unfiltered
// samples.
func (m *Meter) trackPeaks(ch int, buf []float64) {
	if !m.caps.has(capSamplePeak) {
		return
	}

	sp := maxAbs(buf)
	m.prevSamplePeak[ch] = max(m.prevSamplePeak[ch], sp)
	m.samplePeak[ch] = max(m.samplePeak[ch], sp)

	if m.tp != nil {
		tp := m.tp.Process(ch, buf)
		m.prevTruePeak[ch] = max(m.prevTruePeak[ch], tp)
		m.truePeak[ch] = max(m.truePeak[ch], tp)
	}
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

func (m *Meter) peak(c capability, ch int, peaks ...[]float64) (float64, error) {
	if err := m.require(c); err != nil {
		return 0, err
	}

	if err := m.checkChannel(ch); err != nil {
		return 0, err
	}

	var p float64
	for _, src := range peaks {
		p = max(p, src[ch])
	}

	return p, nil
}

// SamplePeak returns the largest absolute sample of channel ch seen so
// far, as a linear amplitude.
func (m *Meter) SamplePeak(ch int) (float64, error) {
	return m.peak(capSamplePeak, ch, m.samplePeak)
}

// PrevSamplePeak is SamplePeak restricted to the latest AddFrames call.
func (m *Meter) PrevSamplePeak(ch int) (float64, error) {
	return m.peak(capSamplePeak, ch, m.prevSamplePeak)
}

// TruePeak returns the largest absolute value of the oversampled signal
// of channel ch seen so far. It is never below SamplePeak.
func (m *Meter) TruePeak(ch int) (float64, error) {
	return m.peak(capTruePeak, ch, m.truePeak, m.samplePeak)
}

// PrevTruePeak is TruePeak restricted to the latest AddFrames call. The
// interpolator lags its input by a few samples (truepeak.Detector.Delay),
// so an inter-sample peak between the last samples of one call counts
// towards the next call. Sample peaks are not delayed.
func (m *Meter) PrevTruePeak(ch int) (float64, error) {
	return m.peak(capTruePeak, ch, m.prevTruePeak, m.prevSamplePeak)
}

// AbsoluteSamplePeak returns the maximum SamplePeak over all channels.
func (m *Meter) AbsoluteSamplePeak() (float64, error) {
	return m.absolutePeak(m.SamplePeak)
}

// AbsoluteTruePeak returns the maximum TruePeak over all channels.
func (m *Meter) AbsoluteTruePeak() (float64, error) {
	return m.absolutePeak(m.TruePeak)
}

func (m *Meter) absolutePeak(query func(int) (float64, error)) (float64, error) {
	var p float64

	for ch := range m.channels {
		v, err := query(ch)
		if err != nil {
			return 0, err
		}

		p = max(p, v)
	}

	return p, nil
}
