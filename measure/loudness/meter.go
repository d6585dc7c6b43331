package loudness

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-loudness/dsp/filter/kweight"
	"github.com/cwbudde/algo-loudness/measure/truepeak"
)

const (
	// Upper sample rate limit. The lower limit is kweight.MinSampleRate.
	maxSampleRate = 2822400.0

	subBlockMs = 100

	momentarySubBlocks = 4  // 400 ms
	shortTermSubBlocks = 30 // 3 s

	momentaryMs = momentarySubBlocks * subBlockMs
	shortTermMs = shortTermSubBlocks * subBlockMs

	// Allocation ceilings. Requests beyond them fail with ErrOutOfMemory.
	maxScratchSamples = 1 << 27
	maxRingSubBlocks  = 1 << 24
)

type meterState int

const (
	stateReady meterState = iota
	stateBroken
	stateClosed
)

// Meter measures loudness of an interleaved PCM stream.
type Meter struct {
	channels   int
	sampleRate float64
	caps       capabilities
	channelMap []Channel

	maxWindowMs  int
	maxHistoryMs int // 0: unbounded

	filter *kweight.Filter
	tp     *truepeak.Detector

	// Current sub-block.
	subBlockLen int
	filled      int
	sums        []float64
	scratch     [][]float64
	squares     []float64

	ring *subBlockRing

	blocks    blockHistory // 400 ms blocks, with ModeI
	shortTerm blockHistory // 3 s blocks, with ModeLRA

	samplePeak     []float64
	prevSamplePeak []float64
	truePeak       []float64
	prevTruePeak   []float64

	state meterState
}

// NewMeter creates a meter for interleaved input with the given channel
// count and sample rate. mode selects the supported measurements.
func NewMeter(channels int, sampleRate float64, mode Mode, opts ...MeterOption) (*Meter, error) {
	if err := validateParameters(channels, sampleRate); err != nil {
		return nil, err
	}

	if unknown := mode &^ modeMask; unknown != 0 {
		return nil, fmt.Errorf("%w: %w: unknown flags %#x", ErrConstruction, ErrInvalidMode, uint(unknown))
	}

	cfg := ApplyMeterOptions(opts...)

	m := &Meter{caps: resolve(mode)}
	m.maxWindowMs = m.clampWindow(cfg.MaxWindowMs)
	m.maxHistoryMs = m.clampHistory(cfg.MaxHistoryMs)

	if err := checkBufferSizes(channels, sampleRate, m.maxWindowMs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}

	if len(cfg.ChannelMap) > channels {
		return nil, fmt.Errorf("%w: channel map has %d roles for %d channels", ErrConstruction, len(cfg.ChannelMap), channels)
	}

	m.channels = channels
	m.sampleRate = sampleRate
	m.channelMap = defaultChannelMap(channels)

	for i, role := range cfg.ChannelMap {
		if err := m.SetChannel(i, role); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
		}
	}

	histogramMode := m.caps.has(capHistogram)
	if m.caps.has(capIntegrated) {
		m.blocks = newHistory(histogramMode, m.historyLimit())
	}

	if m.caps.has(capRange) {
		m.shortTerm = newHistory(histogramMode, m.historyLimit())
	}

	m.allocPeaks()
	m.allocStreaming()

	return m, nil
}

func validateParameters(channels int, sampleRate float64) error {
	if channels <= 0 {
		return fmt.Errorf("%w: %w: channel count %d", ErrConstruction, ErrInvalidMode, channels)
	}

	if math.IsNaN(sampleRate) || sampleRate > maxSampleRate {
		return fmt.Errorf("%w: %w: sample rate %g Hz above %g",
			ErrConstruction, ErrInvalidMode, sampleRate, maxSampleRate)
	}

	if !kweight.Supported(sampleRate) {
		return fmt.Errorf("%w: %w: sample rate %g Hz not above %.2f, K-weighting shelf would exceed Nyquist",
			ErrConstruction, ErrInvalidMode, sampleRate, kweight.MinSampleRate)
	}

	return nil
}

func subBlockLength(sampleRate float64) int {
	return int(math.Round(sampleRate * subBlockMs / 1000))
}

// ringSize returns the number of sub-blocks covering windowMs.
func ringSize(windowMs int) int {
	n := windowMs / subBlockMs
	if windowMs%subBlockMs != 0 {
		n++
	}

	return n
}

func checkBufferSizes(channels int, sampleRate float64, windowMs int) error {
	if n := subBlockLength(sampleRate); channels > maxScratchSamples/n {
		return fmt.Errorf("%w: %d channels of %d-frame sub-blocks", ErrOutOfMemory, channels, n)
	}

	if n := ringSize(windowMs); n > maxRingSubBlocks {
		return fmt.Errorf("%w: %d ms window", ErrOutOfMemory, windowMs)
	}

	return nil
}

func (m *Meter) minWindowMs() int {
	if m.caps.has(capShortTerm) {
		return shortTermMs
	}

	return momentaryMs
}

func (m *Meter) minHistoryMs() int {
	if m.caps.has(capRange) {
		return shortTermMs
	}

	return momentaryMs
}

func (m *Meter) clampWindow(ms int) int {
	return max(ms, m.minWindowMs())
}

func (m *Meter) clampHistory(ms int) int {
	if ms <= 0 {
		return 0
	}

	return max(ms, m.minHistoryMs())
}

func (m *Meter) historyLimit() int {
	if m.maxHistoryMs == 0 {
		return unboundedLimit
	}

	return m.maxHistoryMs / subBlockMs
}

func (m *Meter) allocPeaks() {
	m.samplePeak = make([]float64, m.channels)
	m.prevSamplePeak = make([]float64, m.channels)
	m.truePeak = make([]float64, m.channels)
	m.prevTruePeak = make([]float64, m.channels)
}

// allocStreaming (re)builds filter state, the true-peak detector and the
// sub-block buffers for the current channel count and sample rate.
func (m *Meter) allocStreaming() {
	m.filter = kweight.New(m.channels, m.sampleRate)

	m.tp = nil
	if m.caps.has(capTruePeak) {
		m.tp = truepeak.New(m.channels, m.sampleRate)
	}

	m.subBlockLen = subBlockLength(m.sampleRate)
	m.filled = 0
	m.sums = make([]float64, m.channels)
	m.squares = make([]float64, m.subBlockLen)

	m.scratch = make([][]float64, m.channels)
	for ch := range m.scratch {
		m.scratch[ch] = make([]float64, m.subBlockLen)
	}

	m.ring = newSubBlockRing(ringSize(m.maxWindowMs))
}

func (m *Meter) usable() error {
	switch m.state {
	case stateClosed:
		return ErrClosed
	case stateBroken:
		return fmt.Errorf("%w: meter unusable after failed allocation", ErrOutOfMemory)
	default:
		return nil
	}
}

func (m *Meter) require(c capability) error {
	if err := m.usable(); err != nil {
		return err
	}

	if !m.caps.has(c) {
		return fmt.Errorf("%w: %s not enabled by mode %s", ErrInvalidMode, capabilityNames[c], m.Mode())
	}

	return nil
}

func (m *Meter) checkChannel(index int) error {
	if index < 0 || index >= m.channels {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidChannelIndex, index, m.channels)
	}

	return nil
}

// Channels returns the configured channel count.
func (m *Meter) Channels() int { return m.channels }

// SampleRate returns the configured sample rate.
func (m *Meter) SampleRate() float64 { return m.sampleRate }

// Mode returns the resolved mode, including implied flags.
func (m *Meter) Mode() Mode { return m.caps.mode() }

// MaxWindow returns the max window in milliseconds.
func (m *Meter) MaxWindow() int { return m.maxWindowMs }

// MaxHistory returns the history bound in milliseconds, 0 if unbounded.
func (m *Meter) MaxHistory() int { return m.maxHistoryMs }

// SetChannel assigns role to the channel at index.
func (m *Meter) SetChannel(index int, role Channel) error {
	if err := m.usable(); err != nil {
		return err
	}

	if err := m.checkChannel(index); err != nil {
		return err
	}

	if !role.valid() {
		return fmt.Errorf("%w: unknown role %d", ErrInvalidChannelIndex, int(role))
	}

	if role == DualMono && (m.channels != 1 || index != 0) {
		return fmt.Errorf("%w: %s needs a mono meter", ErrInvalidChannelIndex, role)
	}

	m.channelMap[index] = role

	return nil
}

// Channel returns the role of the channel at index.
func (m *Meter) Channel(index int) (Channel, error) {
	if err := m.usable(); err != nil {
		return Unused, err
	}

	if err := m.checkChannel(index); err != nil {
		return Unused, err
	}

	return m.channelMap[index], nil
}

// ChangeParameters reconfigures channel count and sample rate. Filter
// state, the true-peak history and the sub-block window restart; gated
// block histories are kept. A channel count change also restores the
// default channel map and clears peaks.
//
// Returns ErrNoChange if both values are unchanged. On ErrOutOfMemory the
// meter becomes unusable.
func (m *Meter) ChangeParameters(channels int, sampleRate float64) error {
	if err := m.usable(); err != nil {
		return err
	}

	if err := validateParameters(channels, sampleRate); err != nil {
		return err
	}

	if channels == m.channels && sampleRate == m.sampleRate {
		return fmt.Errorf("%w: %d channels at %g Hz", ErrNoChange, channels, sampleRate)
	}

	if err := checkBufferSizes(channels, sampleRate, m.maxWindowMs); err != nil {
		m.fail()
		return err
	}

	if channels != m.channels {
		m.channels = channels
		m.channelMap = defaultChannelMap(channels)
		m.allocPeaks()
	}

	m.sampleRate = sampleRate
	m.allocStreaming()

	return nil
}

// SetMaxWindow sets the longest window Window can query, in milliseconds.
// Values below 3000 ms (with ModeS) or 400 ms are raised to that minimum.
// The sub-block window restarts. Returns ErrNoChange if the effective value
// is unchanged.
func (m *Meter) SetMaxWindow(ms int) error {
	if err := m.usable(); err != nil {
		return err
	}

	ms = m.clampWindow(ms)
	if ms == m.maxWindowMs {
		return fmt.Errorf("%w: max window %d ms", ErrNoChange, ms)
	}

	if n := ringSize(ms); n > maxRingSubBlocks {
		m.fail()
		return fmt.Errorf("%w: %d ms window", ErrOutOfMemory, ms)
	}

	m.maxWindowMs = ms
	m.ring = newSubBlockRing(ringSize(ms))
	m.clearSubBlock()

	return nil
}

// SetMaxHistory bounds exact block histories to ms milliseconds of audio;
// ms <= 0 removes the bound. Values below 3000 ms (with ModeLRA) or 400 ms
// are raised to that minimum. Existing histories are trimmed, oldest first.
// Returns ErrNoChange if the effective value is unchanged.
func (m *Meter) SetMaxHistory(ms int) error {
	if err := m.usable(); err != nil {
		return err
	}

	ms = m.clampHistory(ms)
	if ms == m.maxHistoryMs {
		return fmt.Errorf("%w: max history %d ms", ErrNoChange, ms)
	}

	m.maxHistoryMs = ms

	for _, h := range []blockHistory{m.blocks, m.shortTerm} {
		if h != nil {
			h.setLimit(m.historyLimit())
		}
	}

	return nil
}

// Reset discards all measurements and filter state. Configuration is kept.
func (m *Meter) Reset() error {
	if err := m.usable(); err != nil {
		return err
	}

	m.filter.Reset()

	if m.tp != nil {
		m.tp.Reset()
	}

	m.ring.reset()
	m.clearSubBlock()

	for _, h := range []blockHistory{m.blocks, m.shortTerm} {
		if h != nil {
			h.reset()
		}
	}

	for _, p := range [][]float64{m.samplePeak, m.prevSamplePeak, m.truePeak, m.prevTruePeak} {
		clear(p)
	}

	return nil
}

// Close releases the meter's buffers. Every later call returns ErrClosed.
func (m *Meter) Close() error {
	if m.state == stateClosed {
		return ErrClosed
	}

	m.release()
	m.state = stateClosed

	return nil
}

func (m *Meter) fail() {
	m.release()
	m.state = stateBroken
}

func (m *Meter) release() {
	m.filter = nil
	m.tp = nil
	m.sums = nil
	m.scratch = nil
	m.squares = nil
	m.ring = nil
	m.blocks = nil
	m.shortTerm = nil
	m.samplePeak = nil
	m.prevSamplePeak = nil
	m.truePeak = nil
	m.prevTruePeak = nil
}

func (m *Meter) clearSubBlock() {
	clear(m.sums)
	m.filled = 0
}

// Momentary returns the loudness of the last 400 ms in LUFS, or -Inf
// until 400 ms have been fed since the sub-block window last restarted.
func (m *Meter) Momentary() (float64, error) {
	if err := m.require(capMomentary); err != nil {
		return 0, err
	}

	return m.windowLoudness(momentarySubBlocks), nil
}

// ShortTerm returns the loudness of the last 3 s in LUFS, or -Inf until
// 3 s have been fed since the sub-block window last restarted.
func (m *Meter) ShortTerm() (float64, error) {
	if err := m.require(capShortTerm); err != nil {
		return 0, err
	}

	return m.windowLoudness(shortTermSubBlocks), nil
}

// Window returns the ungated loudness of the last ms milliseconds, rounded
// to whole 100 ms sub-blocks, or -Inf until that much has been fed.
// ms must not exceed MaxWindow.
func (m *Meter) Window(ms int) (float64, error) {
	if err := m.usable(); err != nil {
		return 0, err
	}

	if ms <= 0 || ms > m.maxWindowMs {
		return 0, fmt.Errorf("%w: window %d ms outside (0, %d]", ErrInvalidMode, ms, m.maxWindowMs)
	}

	return m.windowLoudness(max((ms+subBlockMs/2)/subBlockMs, 1)), nil
}

func (m *Meter) windowLoudness(subBlocks int) float64 {
	z, ok := m.ring.mean(subBlocks)
	if !ok {
		return math.Inf(-1)
	}

	return energyToLoudness(z)
}

// Integrated returns the gated programme loudness in LUFS, or -Inf if no
// block has passed the gates.
func (m *Meter) Integrated() (float64, error) {
	if err := m.require(capIntegrated); err != nil {
		return 0, err
	}

	return integrated(m.blocks), nil
}

// RelativeThreshold returns the relative gating threshold in LUFS, or -Inf
// if no block has passed the absolute gate.
func (m *Meter) RelativeThreshold() (float64, error) {
	if err := m.require(capIntegrated); err != nil {
		return 0, err
	}

	z, ok := relativeThreshold(m.blocks)
	if !ok {
		return math.Inf(-1), nil
	}

	return energyToLoudness(z), nil
}

// LoudnessRange returns the loudness range in LU, 0 if no short-term block
// has passed the gates.
func (m *Meter) LoudnessRange() (float64, error) {
	if err := m.require(capRange); err != nil {
		return 0, err
	}

	return loudnessRange(m.shortTerm), nil
}
