// Package biquad provides second-order IIR filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Sections are cascaded
// with [Chain]; the K-weighting pre-filter of the loudness meter is a
// two-section chain.
//
// Block processing is dispatched through a kernel registry keyed by the
// CPU features reported by algo-vecmath. A portable kernel is always
// registered.
package biquad
