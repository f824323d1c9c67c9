package selfpack

import (
	"reflect"
	"testing"
)

func TestHistogramConservation(t *testing.T) {
	for _, text := range []string{"", "a", "hello world", "ababab", "Grüße € 🚀🚀 Grüße"} {
		payload := []rune(text)
		h := NewHistogram(payload)
		if h.Total() != len(payload) {
			t.Errorf("total of %q is %d, expected %d", text, h.Total(), len(payload))
		}
		sum, distinct := 0, 0
		for _, b := range h.Inverted() {
			sum += b.Count * len(b.Runes)
			distinct += len(b.Runes)
			for _, r := range b.Runes {
				if h.Count(r) != b.Count {
					t.Errorf("%q: rune %q is in bucket %d but counted %d times", text, r, b.Count, h.Count(r))
				}
			}
		}
		if sum != len(payload) || distinct != len(h.Runes()) {
			t.Errorf("%q: buckets hold %d runes (%d distinct), expected %d (%d)",
				text, sum, distinct, len(payload), len(h.Runes()))
		}
	}
}

func TestHistogramInverted(t *testing.T) {
	h := NewHistogram([]rune("bbbacaa€"))
	expected := []Bucket{
		{Count: 1, Runes: []rune("c€")},
		{Count: 3, Runes: []rune("ba")},
	}
	if inv := h.Inverted(); !reflect.DeepEqual(inv, expected) {
		t.Errorf("inverted histogram is %v, expected %v", inv, expected)
	}
	if string(h.Runes()) != "bac€" {
		t.Errorf("runes should be in order of appearance, are %q", string(h.Runes()))
	}
	if h.Count('x') != 0 {
		t.Errorf("absent rune should have count 0")
	}
}

func TestHistogramEmpty(t *testing.T) {
	h := NewHistogram(nil)
	if len(h.Inverted()) != 0 || h.Total() != 0 || len(h.Runes()) != 0 {
		t.Errorf("empty payload should give an empty histogram")
	}
}
