/*
Package runetab provides a counting table indexed by runes.

Payloads are mostly drawn from a few Unicode blocks, so the table keeps
counts for BMP code points in a two-level page table and falls back to a map
for everything above U+FFFF.
*/
package runetab

// Table maps runes to counts.
//   - Top[hi] = page index (1..NumPages), or 0 meaning "page absent".
//   - Pages is a flat array of NumPages*256 counters.
//
// Lookup of a BMP rune is O(1) with two array reads.
//
// Memory:
//   - Top: 256 * 2 = 512 bytes
//   - Each populated page: 256 * 4 = 1 KB
//
// The zero value is an empty table ready to use.
type Table struct {
	Top    [256]uint16 // page index (1-based); 0 means none
	Pages  []uint32    // flat: NumPages*256
	astral map[rune]uint32
	size   int // number of runes with a non-zero count
}

// Get returns the count for r, 0 if absent.
func (t *Table) Get(r rune) int {
	if r < 0 {
		return 0
	}
	if r > 0xFFFF {
		return int(t.astral[r])
	}
	pi := t.Top[r>>8]
	if pi == 0 {
		return 0
	}
	base := int(pi-1) << 8 // *256
	return int(t.Pages[base+int(r&0xFF)])
}

// Contains reports whether r has a non-zero count.
func (t *Table) Contains(r rune) bool {
	return t.Get(r) != 0
}

// Len returns the number of distinct runes with a non-zero count.
func (t *Table) Len() int { return t.size }

// NumPages returns the number of allocated pages.
func (t *Table) NumPages() int { return len(t.Pages) >> 8 }

// ensurePage ensures that the page for high byte hi exists.
// Returns the 1-based page index.
func (t *Table) ensurePage(hi rune) uint16 {
	pi := t.Top[hi]
	if pi != 0 {
		return pi
	}
	t.Pages = append(t.Pages, make([]uint32, 256)...)
	pi = uint16(len(t.Pages) >> 8) // number of pages, 1-based index
	t.Top[hi] = pi
	return pi
}

// Inc increments the count of r and returns the new count.
func (t *Table) Inc(r rune) int {
	if r < 0 {
		return 0
	}
	if r > 0xFFFF {
		if t.astral == nil {
			t.astral = make(map[rune]uint32)
		}
		t.astral[r]++
		n := t.astral[r]
		if n == 1 {
			t.size++
		}
		return int(n)
	}
	pi := t.ensurePage(r >> 8)
	i := int(pi-1)<<8 + int(r&0xFF)
	t.Pages[i]++
	if t.Pages[i] == 1 {
		t.size++
	}
	return int(t.Pages[i])
}

// Of builds a table counting every rune of s.
func Of(s []rune) *Table {
	t := &Table{}
	for _, r := range s {
		t.Inc(r)
	}
	return t
}
