package biquad

import (
	_ "github.com/cwbudde/algo-loudness/dsp/filter/biquad/internal/arch/generic" // register portable kernel
)
