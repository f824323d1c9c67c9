package selfpack

import "strings"

// Round records one substitution.
type Round struct {
	Placeholder rune
	Definition  string // the substituted substring
	Score       int
	Start       int // offset of the first occurrence when it was selected
	Size        int // length of Definition in runes
}

// Trace lists the rounds of a compression run, most recent round first.
// This is the order in which a decoder has to undo them.
type Trace []Round

// Keys returns the placeholders in decode order.
func (t Trace) Keys() string {
	var b strings.Builder
	for _, r := range t {
		b.WriteRune(r.Placeholder)
	}
	return b.String()
}

// Chronological returns the rounds in the order they were applied.
func (t Trace) Chronological() []Round {
	rounds := make([]Round, len(t))
	for i, r := range t {
		rounds[len(t)-1-i] = r
	}
	return rounds
}
