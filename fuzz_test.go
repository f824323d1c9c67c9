package selfpack

import (
	"testing"
	"unicode/utf8"
)

func FuzzRoundTrip(f *testing.F) {
	for _, seed := range []string{"", "ababab", "aaaaaa", "$$$ 100%", "Grüße Grüße 🚀🚀", "x = 1\nx = 1\n"} {
		f.Add(seed, false)
		f.Add(seed, true)
	}
	f.Fuzz(func(t *testing.T, text string, hex bool) {
		if !utf8.ValidString(text) || len(text) > 512 {
			t.Skip()
		}
		cfg := NewConfig()
		if hex {
			cfg = NewConfig(WithHexEscape(0))
		}
		payload := []rune(text)
		if hex {
			payload, _ = EscapeRare(payload, NewHistogram(payload).Inverted(), cfg.Escape, false)
		}
		res := Compress(payload, Placeholders(payload, goTarget{}, cfg), cfg)
		prog := Program{Payload: string(res.Payload), Keys: res.Trace.Keys()}
		if hex {
			prog.Escape = cfg.Escape
		}
		decoded, err := Extract(prog)
		if err != nil {
			t.Fatal(err)
		}
		if decoded != text {
			t.Fatalf("%q round trips to %q", text, decoded)
		}
	})
}
