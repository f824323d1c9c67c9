package selfpack

// DefaultEscape is the escape character used by the rare-character escaper.
const DefaultEscape = '$'

// Config holds the settings shared by all stages of the packer.
// A Config is never modified by the packer; create one with NewConfig.
type Config struct {
	Fast      bool   // scan one substring width per round and stop after one round
	MinGain   int    // rounds scoring below MinGain end compression
	Overhead  int    // extra cost charged per substitution, on top of size+count
	Extended  bool   // add U+0080..U+00FF to the placeholder alphabet
	CostOrder bool   // order placeholders by escape cost instead of shuffling
	Seed      uint64 // seed for the placeholder shuffle
	HexEscape bool   // rewrite rare characters as escape sequences
	Escape    rune   // escape character for HexEscape
	Print     bool   // decoder prints the payload instead of executing it
}

// Option is a functional option for configuring the packer.
type Option func(*Config)

// NewConfig creates a configuration with defaults, modified by opts.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		MinGain: 1,
		Escape:  DefaultEscape,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithFast bounds the search cost: only the shortest substring width is
// scanned and compression stops after the first successful round.
func WithFast(fast bool) Option {
	return func(c *Config) {
		c.Fast = fast
	}
}

// WithMinGain sets the minimum score a substring needs to be substituted.
func WithMinGain(gain int) Option {
	return func(c *Config) {
		c.MinGain = gain
	}
}

// WithOverhead adds a constant to the cost of every candidate substring.
// An overhead of 1 accounts for the separator in front of the definition.
func WithOverhead(n int) Option {
	return func(c *Config) {
		c.Overhead = n
	}
}

// WithExtendedAlphabet widens the placeholder alphabet to 8 bits.
func WithExtendedAlphabet(ext bool) Option {
	return func(c *Config) {
		c.Extended = ext
	}
}

// WithCostOrder prefers placeholders which are cheap to embed in a literal.
func WithCostOrder(sorted bool) Option {
	return func(c *Config) {
		c.CostOrder = sorted
	}
}

// WithSeed sets the seed of the placeholder shuffle.
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// WithHexEscape enables rare-character escaping with escape character esc.
// An esc of 0 selects DefaultEscape.
func WithHexEscape(esc rune) Option {
	return func(c *Config) {
		c.HexEscape = true
		if esc == 0 {
			esc = DefaultEscape
		}
		c.Escape = esc
	}
}

// WithPrint makes the decoder print the payload instead of running it.
func WithPrint(print bool) Option {
	return func(c *Config) {
		c.Print = print
	}
}
