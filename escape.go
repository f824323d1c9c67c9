package selfpack

import (
	"fmt"
	"strconv"
	"strings"
)

// fastThresholdCap limits the rare-character threshold in fast mode.
const fastThresholdCap = 2.0

// hexDigits are written verbatim in escape sequences and are never escaped.
const hexDigits = "0123456789abcdef"

// RareThreshold returns the count up to which a character is considered rare:
// the mean of the lower half of the ascending list of distinct counts.
func RareThreshold(inv []Bucket, fast bool) float64 {
	half := inv[:len(inv)/2]
	if len(half) == 0 {
		return 0
	}
	sum := 0
	for _, b := range half {
		sum += b.Count
	}
	threshold := float64(sum) / float64(len(half))
	if fast && threshold > fastThresholdCap {
		threshold = fastThresholdCap
	}
	return threshold
}

// RareRunes selects the runes to escape. The escape character always comes
// first. Hex digits and runes above U+00FF are never selected.
func RareRunes(inv []Bucket, escape rune, fast bool) []rune {
	threshold := RareThreshold(inv, fast)
	rare := []rune{escape}
	for _, b := range inv {
		if float64(b.Count) > threshold {
			break
		}
		for _, r := range b.Runes {
			if r == escape || r > 0xFF || strings.ContainsRune(hexDigits, r) {
				continue
			}
			rare = append(rare, r)
		}
	}
	return rare
}

// EscapeRare rewrites every occurrence of a rare character to the escape
// character followed by two lowercase hex digits of its code point. It returns
// the rewritten payload and the characters which were escaped; these no
// longer occur in the payload (except for the escape character itself).
func EscapeRare(payload []rune, inv []Bucket, escape rune, fast bool) ([]rune, []rune) {
	assert(escape <= 0xFF && !strings.ContainsRune(hexDigits, escape),
		"escape character must be a non-hex 8-bit character")
	rare := RareRunes(inv, escape, fast)
	set := make(map[rune]bool, len(rare))
	for _, r := range rare {
		set[r] = true
	}
	out := make([]rune, 0, len(payload))
	for _, r := range payload {
		if !set[r] {
			out = append(out, r)
			continue
		}
		out = append(out, escape, rune(hexDigits[r>>4]), rune(hexDigits[r&0xF]))
	}
	tracer().Debugf("escaped %d rare characters, threshold %.2f",
		len(rare), RareThreshold(inv, fast))
	return out, rare
}

// UnescapeRare reverses EscapeRare.
func UnescapeRare(s string, escape rune) (string, error) {
	pieces := strings.Split(s, string(escape))
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(pieces[0])
	for _, p := range pieces[1:] {
		if len(p) < 2 {
			return "", fmt.Errorf("%w: truncated escape sequence %q", ErrCorruptPayload, p)
		}
		code, err := strconv.ParseUint(p[:2], 16, 8)
		if err != nil {
			return "", fmt.Errorf("%w: bad escape sequence %q", ErrCorruptPayload, p[:2])
		}
		b.WriteRune(rune(code))
		b.WriteString(p[2:])
	}
	return b.String(), nil
}
