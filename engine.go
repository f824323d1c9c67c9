package selfpack

import (
	"context"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/davecgh/go-spew/spew"
	"github.com/npillmayer/schuko/tracing"
)

// Stop tells why compression ended.
type Stop int8

const (
	Running           Stop = iota // compression has not finished
	GainTooLow                    // no substring scores at least the minimum gain
	OutOfPlaceholders             // every placeholder has been used
	FastStop                      // fast mode stops after one round
)

func (s Stop) String() string {
	switch s {
	case Running:
		return "running"
	case GainTooLow:
		return "gain too low"
	case OutOfPlaceholders:
		return "out of placeholders"
	case FastStop:
		return "fast mode is enabled"
	}
	return fmt.Sprintf("Stop(%d)", int8(s))
}

// Result is the outcome of a compression run.
type Result struct {
	Payload []rune // compacted payload
	Trace   Trace  // rounds, most recent first
	Stop    Stop
	Digest  uint64 // hash over the offsets and sizes of all selected substrings
}

// Compress runs the greedy compression loop over payload, consuming
// placeholders from keys in order. Neither payload nor keys are modified.
func Compress(payload []rune, keys []rune, cfg *Config) *Result {
	res, _ := CompressContext(context.Background(), payload, keys, cfg)
	return res
}

// CompressContext is like Compress, but gives up when ctx is cancelled, also
// in the middle of a round.
func CompressContext(ctx context.Context, payload []rune, keys []rune, cfg *Config) (*Result, error) {
	c := newCompressor(payload, keys, cfg)
	tracer().Infof("starting compression loop, %d placeholders", len(keys))
	for c.stop == Running {
		if err := c.step(ctx); err != nil {
			return nil, err
		}
	}
	res := c.result()
	tracer().Infof("compression loop break: %s", res.Stop)
	tracer().Infof("debug hash: %016x", res.Digest)
	if tracer().GetTraceLevel() >= tracing.LevelDebug {
		tracer().Debugf("decode trace:\n%s", spew.Sdump(res.Trace))
	}
	return res, nil
}

// compressor holds the state of one compression run.
type compressor struct {
	cfg     *Config
	payload []rune
	keys    []rune // placeholders not used yet
	trace   Trace
	digest  *xxhash.Digest
	stop    Stop
}

func newCompressor(payload []rune, keys []rune, cfg *Config) *compressor {
	return &compressor{
		cfg:     cfg,
		payload: append([]rune(nil), payload...),
		keys:    keys,
		digest:  xxhash.New(),
	}
}

// step executes one round, or sets the terminal state.
func (c *compressor) step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(c.keys) == 0 {
		c.stop = OutOfPlaceholders
		return nil
	}
	key := c.keys[0]
	tracer().Debugf("round %d, payload %d runes, placeholder %q", len(c.trace)+1, len(c.payload), key)
	best, found, err := bestSubstring(ctx, c.payload, c.cfg)
	if err != nil {
		return err
	}
	if !found || best.Score < c.cfg.MinGain {
		c.stop = GainTooLow
		return nil
	}
	definition := string(best.Text)
	c.payload = substitute(c.payload, definition, key)
	c.keys = c.keys[1:]
	round := Round{
		Placeholder: key,
		Definition:  definition,
		Score:       best.Score,
		Start:       best.Start,
		Size:        best.Size,
	}
	c.trace = append(Trace{round}, c.trace...)
	fmt.Fprintf(c.digest, "%x:%x;", best.Start, best.Size)
	if c.cfg.Fast {
		c.stop = FastStop
	}
	return nil
}

func (c *compressor) result() *Result {
	return &Result{
		Payload: c.payload,
		Trace:   c.trace,
		Stop:    c.stop,
		Digest:  c.digest.Sum64(),
	}
}

// substitute replaces the non-overlapping occurrences of definition, left to
// right, by key and appends the definition behind a final key. For substrings
// overlapping themselves the replaced occurrences may differ from the ones
// the scanner counted.
func substitute(payload []rune, definition string, key rune) []rune {
	assert(definition != "", "empty substring cannot be substituted")
	pieces := strings.Split(string(payload), definition)
	pieces = append(pieces, definition)
	return []rune(strings.Join(pieces, string(key)))
}
