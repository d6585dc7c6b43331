package core

// EnsureLen returns buf resliced to n, allocating only when its capacity
// is too small. Contents are not preserved across an allocation.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) >= n {
		return buf[:n]
	}

	return make([]float64, n)
}
