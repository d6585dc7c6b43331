package loudness

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Full-scale divisors of the integer formats.
const (
	int16Scale = 1.0 / 32768
	int32Scale = 1.0 / 2147483648
)

type sample interface {
	~int16 | ~int32 | ~float32 | ~float64
}

// AddFramesInt16 feeds interleaved 16-bit PCM. len(src) must be a multiple
// of the channel count.
func (m *Meter) AddFramesInt16(src []int16) error {
	return addFrames(m, src, int16Scale)
}

// AddFramesInt32 feeds interleaved 32-bit PCM. len(src) must be a multiple
// of the channel count.
func (m *Meter) AddFramesInt32(src []int32) error {
	return addFrames(m, src, int32Scale)
}

// AddFramesFloat32 feeds interleaved samples in [-1, 1]. len(src) must be a
// multiple of the channel count.
func (m *Meter) AddFramesFloat32(src []float32) error {
	return addFrames(m, src, 1)
}

// AddFramesFloat64 feeds interleaved samples in [-1, 1]. len(src) must be a
// multiple of the channel count.
func (m *Meter) AddFramesFloat64(src []float64) error {
	return addFrames(m, src, 1)
}

// addFrames deinterleaves src in chunks that end on sub-block boundaries,
// normalizes by scale and runs each channel through peak detection and the
// K-weighting filter.
func addFrames[T sample](m *Meter, src []T, scale float64) error {
	if err := m.usable(); err != nil {
		return err
	}

	channels := m.channels
	if len(src)%channels != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", ErrFrameLength, len(src), channels)
	}

	m.resetPrevPeaks()

	frames := len(src) / channels

	for off := 0; off < frames; {
		n := min(frames-off, m.subBlockLen-m.filled)
		chunk := src[off*channels : (off+n)*channels]

		for ch := range channels {
			buf := m.scratch[ch][:n]
			for i := range buf {
				buf[i] = float64(chunk[i*channels+ch])
			}

			if scale != 1 {
				vecmath.ScaleBlock(buf, buf, scale)
			}

			m.trackPeaks(ch, buf)

			m.filter.ProcessBlock(ch, buf)

			sq := m.squares[:n]
			vecmath.MulBlock(sq, buf, buf)

			var sum float64
			for _, v := range sq {
				sum += v
			}

			m.sums[ch] += sum
		}

		m.filled += n
		off += n

		if m.filled == m.subBlockLen {
			m.finishSubBlock()
		}
	}

	return nil
}

// finishSubBlock pushes the weighted energy of the current sub-block and
// emits the 400 ms and 3 s blocks ending on it.
func (m *Meter) finishSubBlock() {
	var z float64

	for ch, sum := range m.sums {
		if w := m.channelMap[ch].Weight(); w != 0 {
			z += w * sum / float64(m.subBlockLen)
		}
	}

	m.clearSubBlock()
	m.ring.push(z)

	if m.blocks != nil {
		if e, ok := m.ring.mean(momentarySubBlocks); ok && e >= absoluteGateEnergy {
			m.blocks.add(e)
		}
	}

	if m.shortTerm != nil {
		if e, ok := m.ring.mean(shortTermSubBlocks); ok && e >= absoluteGateEnergy {
			m.shortTerm.add(e)
		}
	}
}
