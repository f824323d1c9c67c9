package selfpack

import (
	"context"
	"fmt"
	"strings"
)

// Outcome collects the intermediate results of Run.
type Outcome struct {
	Input     []rune     // payload handed to Run
	Histogram *Histogram // histogram of Input
	Escaped   []rune     // characters rewritten by the rare-character escaper
	Keys      []rune     // placeholders offered to the compression loop
	Result    *Result
	Packed    *Packed
}

// Run packs text for target: histogram, optional rare-character escaping,
// placeholder allocation, compression and packing.
func Run(ctx context.Context, text string, target Target, cfg *Config) (*Outcome, error) {
	if cfg.HexEscape && (cfg.Escape > 0xFF || strings.ContainsRune(hexDigits, cfg.Escape)) {
		return nil, fmt.Errorf("invalid escape character %q", cfg.Escape)
	}
	payload := []rune(text)
	out := &Outcome{
		Input:     payload,
		Histogram: NewHistogram(payload),
	}
	if cfg.HexEscape {
		payload, out.Escaped = EscapeRare(payload, out.Histogram.Inverted(), cfg.Escape, cfg.Fast)
		tracer().Infof("converted rare chars to hex, %d chars replaced", len(out.Escaped))
	}
	out.Keys = Placeholders(payload, target, cfg)
	res, err := CompressContext(ctx, payload, out.Keys, cfg)
	if err != nil {
		return nil, err
	}
	out.Result = res
	if out.Packed, err = Pack(res, target, cfg); err != nil {
		return nil, err
	}
	return out, nil
}
