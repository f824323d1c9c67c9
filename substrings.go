package selfpack

import (
	"context"
	"iter"
)

// Candidate is a repeated substring of the payload.
type Candidate struct {
	Text  []rune // shares storage with the scanned payload
	Start int    // offset of the first occurrence
	Size  int    // length in runes
	Count int    // number of non-overlapping occurrences
	Score int    // gain minus cost
}

// Score rates the substitution of a substring of length size which occurs
// count times: the characters removed minus the characters needed to store
// the definition once and a placeholder per occurrence.
func Score(size, count, overhead int) int {
	gain := size * count
	cost := size + count + overhead
	return gain - cost
}

// cancelCheck is the number of start offsets scanned between two looks at
// the context.
const cancelCheck = 512

// scanner enumerates repeated substrings of a payload, shortest first.
type scanner struct {
	ctx      context.Context
	err      error // set if ctx ended the scan
	text     []rune
	ignore   []bool // start offsets which cannot repeat at any larger size
	overhead int
	fast     bool
}

func newScanner(ctx context.Context, text []rune, cfg *Config) *scanner {
	return &scanner{
		ctx:      ctx,
		text:     text,
		ignore:   make([]bool, len(text)),
		overhead: cfg.Overhead,
		fast:     cfg.Fast,
	}
}

// candidates yields every repeated substring together with its score.
// Iteration ends early if the scanner's context is done; sc.err tells.
func (sc *scanner) candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		n := len(sc.text)
		if n < 4 { // no substring of length 2 fits twice
			return
		}
		for size := 2; size <= n/2; size++ {
			exhausted, more := sc.scanSize(size, yield)
			if !more || exhausted || sc.fast {
				return
			}
		}
	}
}

// scanSize yields the candidates of width size. It reports whether every
// start offset is ignored and whether the consumer asked for more.
func (sc *scanner) scanSize(size int, yield func(Candidate) bool) (exhausted, more bool) {
	n := len(sc.text)
	starts := n - 2*size + 1 // a second occurrence must fit behind the first
	skip := make([]bool, n-size+1)
	ignored := 0
	for start := 0; start < starts; start++ {
		if start%cancelCheck == 0 {
			if err := sc.ctx.Err(); err != nil {
				sc.err = err
				return false, false
			}
		}
		if sc.ignore[start] {
			ignored++
			continue
		}
		if skip[start] {
			continue
		}
		sub := sc.text[start : start+size]
		count, end := 1, start+size
		for i := indexFrom(sc.text, sub, start+1); i >= 0; i = indexFrom(sc.text, sub, i+1) {
			skip[i] = true
			if i >= end {
				end = i + size
				count++
			}
		}
		if count < 2 {
			sc.ignore[start] = true
			ignored++
			continue
		}
		c := Candidate{
			Text:  sub,
			Start: start,
			Size:  size,
			Count: count,
			Score: Score(size, count, sc.overhead),
		}
		if !yield(c) {
			return false, false
		}
	}
	return ignored == starts, true
}

// indexFrom returns the index of the first occurrence of sub in s at or after
// from, or -1.
func indexFrom(s, sub []rune, from int) int {
	first := sub[0]
	last := len(s) - len(sub)
outer:
	for i := from; i <= last; i++ {
		if s[i] != first {
			continue
		}
		for k := 1; k < len(sub); k++ {
			if s[i+k] != sub[k] {
				continue outer
			}
		}
		return i
	}
	return -1
}

// BestSubstring returns the highest scoring repeated substring of payload.
// Of several candidates with the maximum score the first one found wins.
// It reports false if no substring repeats.
func BestSubstring(payload []rune, cfg *Config) (best Candidate, found bool) {
	best, found, _ = bestSubstring(context.Background(), payload, cfg)
	return best, found
}

// bestSubstring is BestSubstring with a scan which stops as soon as ctx is done.
func bestSubstring(ctx context.Context, payload []rune, cfg *Config) (best Candidate, found bool, err error) {
	checked := 0
	sc := newScanner(ctx, payload, cfg)
	for c := range sc.candidates() {
		checked++
		if !found || c.Score > best.Score {
			best, found = c, true
			tracer().Debugf(" > substring found %q : %d", string(c.Text), c.Score)
		}
	}
	if sc.err != nil {
		tracer().Infof("substring scan interrupted after %d substrings", checked)
		return Candidate{}, false, sc.err
	}
	tracer().Debugf(" * %d substrings checked", checked)
	return best, found, nil
}
