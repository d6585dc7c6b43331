// Package kweight provides the ITU-R BS.1770 K-weighting pre-filter.
//
// K-weighting is a cascade of two second-order sections:
//
//   - a high-frequency shelf (+4 dB above roughly 2 kHz) modelling the
//     acoustic effect of the head, and
//   - the RLB high-pass (revised low-frequency B-curve) at about 38 Hz.
//
// Coefficients are not tabulated. [Design] derives both stages from the
// analog prototype via the bilinear transform, which reproduces the 48 kHz
// coefficients printed in BS.1770 and extends them to any sample rate.
//
// A [Filter] holds one biquad.Chain per channel so one value can serve an
// interleaved multichannel stream. Rates at or below [MinSampleRate] put
// the shelf above Nyquist and are rejected; see [Supported]. The cascade has a gain
// of about +0.691 dB at 997 Hz, which the -0.691 constant of the loudness
// formula cancels.
package kweight
