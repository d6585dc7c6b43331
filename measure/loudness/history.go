package loudness

import (
	"math"
	"slices"
)

// blockHistory stores block energies that passed the absolute gate.
type blockHistory interface {
	add(z float64)
	count() int
	// sumAbove returns the sum and number of energies >= threshold.
	sumAbove(threshold float64) (sum float64, n int)
	// percentiles returns the energies at the lo and hi fractions of the
	// sorted population >= threshold. ok is false if it is empty.
	percentiles(threshold, lo, hi float64) (eLo, eHi float64, ok bool)
	mergeInto(h *histogram)
	reset()
	// setLimit bounds the number of retained blocks, dropping the oldest.
	setLimit(n int)
}

func newHistory(histogramMode bool, limit int) blockHistory {
	if histogramMode {
		return newHistogram()
	}

	return newBlockList(limit)
}

// percentileIndex returns round((n-1)*frac).
func percentileIndex(n int, frac float64) int {
	return int(float64(n-1)*frac + 0.5)
}

// blockList keeps every block energy in a ring bounded by limit.
type blockList struct {
	blocks []float64
	start  int // index of the oldest block once the ring is full
	limit  int
}

func newBlockList(limit int) *blockList {
	return &blockList{limit: max(limit, 1)}
}

func (l *blockList) add(z float64) {
	if len(l.blocks) < l.limit {
		l.blocks = append(l.blocks, z)
		return
	}

	l.blocks[l.start] = z

	l.start++
	if l.start == len(l.blocks) {
		l.start = 0
	}
}

func (l *blockList) count() int { return len(l.blocks) }

func (l *blockList) sumAbove(threshold float64) (float64, int) {
	var (
		sum float64
		n   int
	)

	for _, z := range l.blocks {
		if z >= threshold {
			sum += z
			n++
		}
	}

	return sum, n
}

func (l *blockList) percentiles(threshold, lo, hi float64) (float64, float64, bool) {
	sorted := make([]float64, 0, len(l.blocks))
	for _, z := range l.blocks {
		if z >= threshold {
			sorted = append(sorted, z)
		}
	}

	if len(sorted) == 0 {
		return 0, 0, false
	}

	slices.Sort(sorted)

	return sorted[percentileIndex(len(sorted), lo)], sorted[percentileIndex(len(sorted), hi)], true
}

func (l *blockList) mergeInto(h *histogram) {
	for _, z := range l.blocks {
		h.add(z)
	}
}

// appendTo copies the blocks, oldest first, into dst.
func (l *blockList) appendTo(dst *blockList) {
	for _, z := range l.ordered() {
		dst.add(z)
	}
}

func (l *blockList) reset() {
	l.blocks = l.blocks[:0]
	l.start = 0
}

func (l *blockList) setLimit(n int) {
	n = max(n, 1)

	ordered := l.ordered()
	if len(ordered) > n {
		ordered = ordered[len(ordered)-n:]
	}

	l.blocks = append(l.blocks[:0:0], ordered...)
	l.start = 0
	l.limit = n
}

func (l *blockList) ordered() []float64 {
	if l.start == 0 {
		return l.blocks
	}

	out := make([]float64, 0, len(l.blocks))
	out = append(out, l.blocks[l.start:]...)

	return append(out, l.blocks[:l.start]...)
}

// Histogram layout: 1000 buckets of 0.1 LU from -70 LUFS to +30 LUFS.
const (
	histogramBuckets = 1000
	histogramFloor   = -70.0
	histogramStep    = 0.1
)

var (
	// histogramBoundaries[i] is the lower energy bound of bucket i.
	histogramBoundaries [histogramBuckets + 1]float64
	// histogramEnergies[i] is the energy at the loudness midpoint of bucket i.
	histogramEnergies [histogramBuckets]float64
)

func init() {
	for i := range histogramBoundaries {
		histogramBoundaries[i] = loudnessToEnergy(histogramFloor + float64(i)*histogramStep)
	}

	for i := range histogramEnergies {
		histogramEnergies[i] = loudnessToEnergy(histogramFloor + (float64(i)+0.5)*histogramStep)
	}
}

// histogramIndex returns the bucket of z. Energies below the floor map to
// bucket 0, energies above the top boundary to the last bucket.
func histogramIndex(z float64) int {
	lo, hi := 0, histogramBuckets
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if z >= histogramBoundaries[mid] {
			lo = mid
		} else {
			hi = mid
		}
	}

	return lo
}

// firstBucketAbove returns the first bucket whose midpoint energy is >= threshold.
func firstBucketAbove(threshold float64) int {
	if threshold < histogramBoundaries[0] {
		return 0
	}

	idx := histogramIndex(threshold)
	if threshold > histogramEnergies[idx] {
		idx++
	}

	return idx
}

// histogram approximates a block population by bucket counts.
type histogram struct {
	counts [histogramBuckets]uint64
	total  int
}

func newHistogram() *histogram { return &histogram{} }

func (h *histogram) add(z float64) {
	h.counts[histogramIndex(z)]++
	h.total++
}

func (h *histogram) count() int { return h.total }

func (h *histogram) sumAbove(threshold float64) (float64, int) {
	var (
		sum float64
		n   int
	)

	for i := firstBucketAbove(threshold); i < histogramBuckets; i++ {
		c := h.counts[i]
		if c == 0 {
			continue
		}

		sum += float64(c) * histogramEnergies[i]
		n += int(c)
	}

	return sum, n
}

func (h *histogram) percentiles(threshold, lo, hi float64) (float64, float64, bool) {
	start := firstBucketAbove(threshold)

	var n int
	for i := start; i < histogramBuckets; i++ {
		n += int(h.counts[i])
	}

	if n == 0 {
		return 0, 0, false
	}

	return h.energyAtRank(start, percentileIndex(n, lo)), h.energyAtRank(start, percentileIndex(n, hi)), true
}

// energyAtRank returns the midpoint energy of the bucket holding the
// rank-th (0-based) block counted from bucket start upwards.
func (h *histogram) energyAtRank(start, rank int) float64 {
	var seen int

	for i := start; i < histogramBuckets; i++ {
		seen += int(h.counts[i])
		if seen > rank {
			return histogramEnergies[i]
		}
	}

	return histogramEnergies[histogramBuckets-1]
}

func (h *histogram) mergeInto(dst *histogram) {
	for i, c := range h.counts {
		dst.counts[i] += c
	}

	dst.total += h.total
}

func (h *histogram) reset() {
	clear(h.counts[:])
	h.total = 0
}

// setLimit is a no-op: the histogram is bounded by its bucket count.
func (h *histogram) setLimit(int) {}

// unboundedLimit is used as block limit when no max history is set.
const unboundedLimit = math.MaxInt
