// Package window generates the tapering windows used by the FIR designs
// of this module.
//
// Only the windows a windowed-sinc design needs are provided: rectangular
// and Kaiser, in symmetric or periodic form. [Sinc] supplies the matching
// normalized sinc kernel.
package window
