package loudness

// subBlockRing holds the weighted energies of the most recent finalized
// 100 ms sub-blocks.
type subBlockRing struct {
	energies []float64
	pos      int // next write position
	filled   int
}

func newSubBlockRing(size int) *subBlockRing {
	return &subBlockRing{energies: make([]float64, size)}
}

func (r *subBlockRing) size() int { return len(r.energies) }

func (r *subBlockRing) push(z float64) {
	r.energies[r.pos] = z

	r.pos++
	if r.pos == len(r.energies) {
		r.pos = 0
	}

	if r.filled < len(r.energies) {
		r.filled++
	}
}

// mean returns the mean energy of the last n sub-blocks. ok is false until
// n sub-blocks have been pushed since the last reset.
func (r *subBlockRing) mean(n int) (float64, bool) {
	if n <= 0 || n > r.filled {
		return 0, false
	}

	var sum float64

	idx := r.pos
	for range n {
		idx--
		if idx < 0 {
			idx = len(r.energies) - 1
		}

		sum += r.energies[idx]
	}

	return sum / float64(n), true
}

func (r *subBlockRing) reset() {
	clear(r.energies)
	r.pos = 0
	r.filled = 0
}
