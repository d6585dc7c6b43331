// Package truepeak estimates true-peak levels per ITU-R BS.1770 Annex 2.
//
// The discrete samples of a band-limited signal can miss the peaks of the
// continuous waveform they represent. A [Detector] upsamples each channel
// with a polyphase FIR interpolator and reports the largest absolute value
// of the oversampled signal:
//
//   - below 96 kHz the signal is oversampled 4x,
//   - below 192 kHz 2x,
//   - at 192 kHz and above no interpolation is done.
//
// The interpolator is a Kaiser-windowed sinc whose phase 0 passes input
// samples through unchanged, so the oversampled peak is never smaller than
// the sample peak of the same (delayed) input. Numeric precision is
// implementation-defined and is not guaranteed to be bit-identical across
// versions.
package truepeak
