// Package loudness implements a streaming EBU R128 / ITU-R BS.1770 loudness
// meter.
//
// A [Meter] consumes interleaved PCM frames, K-weights every channel and
// accumulates 100 ms sub-blocks. Queries then report momentary (400 ms),
// short-term (3 s) and arbitrary-window loudness, gated integrated loudness,
// loudness range (EBU Tech 3342), sample peak and true peak.
//
// The set of measurements a meter supports is fixed at construction by its
// [Mode]. Block histories are kept either exactly or, with [ModeHistogram],
// in a fixed 1000-bucket histogram of 0.1 LU resolution that bounds memory
// for arbitrarily long programmes.
//
// Several meters can be combined with [IntegratedMultiple] and
// [RangeMultiple] as if their input had been one continuous programme.
//
// A Meter is not safe for concurrent use.
package loudness
