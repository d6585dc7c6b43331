package loudness

import "errors"

var (
	// ErrInvalidMode is returned when a query needs a measurement that the
	// meter's mode does not enable, or a window exceeds the max window.
	ErrInvalidMode = errors.New("loudness: invalid mode")
	// ErrInvalidChannelIndex is returned for channel indices outside
	// [0, channels) and for roles a channel cannot take.
	ErrInvalidChannelIndex = errors.New("loudness: invalid channel index")
	// ErrNoChange is returned when a reconfiguration leaves the meter as it
	// was. It is informational; the meter stays usable.
	ErrNoChange = errors.New("loudness: no change")
	// ErrOutOfMemory is returned when internal buffers cannot be sized. The
	// meter is unusable afterwards.
	ErrOutOfMemory = errors.New("loudness: out of memory")
	// ErrConstruction is returned for invalid channel counts, sample rates
	// or options.
	ErrConstruction = errors.New("loudness: invalid configuration")
	// ErrFrameLength is returned when a feed does not hold whole frames.
	ErrFrameLength = errors.New("loudness: sample count not a multiple of channel count")
	// ErrClosed is returned by every call on a closed meter.
	ErrClosed = errors.New("loudness: meter closed")
)
