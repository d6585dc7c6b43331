package window

import (
	"errors"
	"fmt"
	"math"
)

var errMismatchedLength = errors.New("samples and coefficients must have same length")

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}

	return nil
}

func validateKaiser(size int, beta float64) error {
	if size <= 0 {
		return validateLength(size)
	}

	if beta < 0 || math.IsNaN(beta) {
		return fmt.Errorf("kaiser beta must be >= 0: %f", beta)
	}

	return nil
}
