package selfpack

import (
	"sort"

	"github.com/npillmayer/selfpack/internal/runetab"
)

// Histogram counts the characters of a payload.
type Histogram struct {
	counts *runetab.Table
	order  []rune // runes in order of first appearance
	total  int
}

// Bucket is an entry of the inverted histogram: all runes sharing a count.
type Bucket struct {
	Count int
	Runes []rune // in order of first appearance in the payload
}

// NewHistogram counts the runes of payload. An empty payload yields an
// empty histogram.
func NewHistogram(payload []rune) *Histogram {
	h := &Histogram{counts: &runetab.Table{}}
	for _, r := range payload {
		if h.counts.Inc(r) == 1 {
			h.order = append(h.order, r)
		}
	}
	h.total = len(payload)
	return h
}

// Count returns the number of occurrences of r.
func (h *Histogram) Count(r rune) int {
	return h.counts.Get(r)
}

// Total returns the sum of all counts, which is the length of the payload.
func (h *Histogram) Total() int {
	return h.total
}

// Runes returns the distinct runes of the payload in order of first appearance.
func (h *Histogram) Runes() []rune {
	return h.order
}

// Inverted returns the histogram inverted into count buckets, ascending by count.
func (h *Histogram) Inverted() []Bucket {
	index := make(map[int]int)
	var buckets []Bucket
	for _, r := range h.order {
		n := h.counts.Get(r)
		i, ok := index[n]
		if !ok {
			i = len(buckets)
			index[n] = i
			buckets = append(buckets, Bucket{Count: n})
		}
		buckets[i].Runes = append(buckets[i].Runes, r)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Count < buckets[j].Count
	})
	return buckets
}
