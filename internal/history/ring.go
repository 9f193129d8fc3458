// Package history keeps a bounded window of recent filtered samples for
// analyses that need more than the per-frame recursion state.
package history

// Ring is a fixed-capacity circular buffer of float64 samples. Once full,
// each Push overwrites the oldest sample. Capacity is rounded up to a power
// of two so that positions wrap with a mask instead of a modulo.
//
// Ring has no locking; it is owned by a single session like the filter and
// detector it sits next to.
type Ring struct {
	data     []float64
	mask     int
	limit    int // requested capacity, <= len(data)
	size     int
	writePos int
}

// NewRing creates a ring holding up to capacity samples (minimum 1).
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}

	cap2 := 1
	for cap2 < capacity {
		cap2 <<= 1
	}

	return &Ring{
		data:  make([]float64, cap2),
		mask:  cap2 - 1,
		limit: capacity,
	}
}

// Push appends v, dropping the oldest sample when the ring is full.
func (r *Ring) Push(v float64) {
	r.data[r.writePos&r.mask] = v
	r.writePos = (r.writePos + 1) & r.mask
	if r.size < r.limit {
		r.size++
	}
}

// Snapshot copies the stored samples, oldest first, into dst (grown if
// needed) and returns the filled slice.
func (r *Ring) Snapshot(dst []float64) []float64 {
	if cap(dst) < r.size {
		dst = make([]float64, r.size)
	}
	dst = dst[:r.size]

	start := r.writePos - r.size
	for i := range dst {
		dst[i] = r.data[(start+i)&r.mask]
	}
	return dst
}

// Len returns the number of stored samples.
func (r *Ring) Len() int {
	return r.size
}

// Cap returns the capacity requested at construction.
func (r *Ring) Cap() int {
	return r.limit
}

// Full reports whether Len() == Cap().
func (r *Ring) Full() bool {
	return r.size == r.limit
}

// Reset empties the ring without releasing its storage.
func (r *Ring) Reset() {
	r.size = 0
	r.writePos = 0
}
