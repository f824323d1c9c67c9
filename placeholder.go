package selfpack

import (
	"sort"
	"strings"

	"github.com/npillmayer/selfpack/internal/runetab"
)

// Alphabet returns the source alphabet placeholders are drawn from: every
// rune of U+0000..U+007F (U+00FF with cfg.Extended) which target embeds into
// a literal verbatim, except quotes and the backslash.
func Alphabet(target Target, cfg *Config) []rune {
	limit := rune(0x7F)
	if cfg.Extended {
		limit = 0xFF
	}
	latin1 := cfg.Extended && target.Latin1()
	alphabet := make([]rune, 0, limit+1)
	for r := rune(0); r <= limit; r++ {
		if r == '\'' || r == '"' || r == '\\' {
			continue
		}
		if !strings.ContainsRune(target.Quote(string(r), latin1), r) {
			continue // escaped
		}
		alphabet = append(alphabet, r)
	}
	return alphabet
}

// Placeholders returns the characters usable as placeholders for payload:
// the alphabet minus every rune occurring in payload. The order is a seeded
// shuffle, or ascending escape cost if cfg.CostOrder is set.
func Placeholders(payload []rune, target Target, cfg *Config) []rune {
	present := runetab.Of(payload)
	var keys []rune
	for _, r := range Alphabet(target, cfg) {
		if !present.Contains(r) {
			keys = append(keys, r)
		}
	}
	newPRNG(cfg.Seed).shuffle(keys)
	if cfg.CostOrder {
		latin1 := cfg.Extended && target.Latin1()
		sort.SliceStable(keys, func(i, j int) bool {
			return target.EscapeCost(keys[i], latin1) < target.EscapeCost(keys[j], latin1)
		})
	}
	tracer().Infof("%d placeholders available", len(keys))
	return keys
}

// prng is a linear congruential generator, so that shuffles are reproducible
// across platforms and Go releases.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state = p.state*6364136223846793005 + 1442695040888963407
	return p.state
}

// shuffle performs an in-place Fisher-Yates shuffle.
func (p *prng) shuffle(rs []rune) {
	for i := len(rs) - 1; i > 0; i-- {
		j := int((p.next() >> 33) % uint64(i+1))
		rs[i], rs[j] = rs[j], rs[i]
	}
}
