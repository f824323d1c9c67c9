package selfpack

import (
	"fmt"
	"strings"
)

// Program describes a self-decoding program independently of its language.
type Program struct {
	Payload string // compacted payload, unquoted
	Keys    string // placeholders in decode order
	Escape  rune   // escape character of the rare-character escaper, 0 if unused
	Print   bool   // print the decoded payload instead of executing it
	Latin1  bool   // the program text is encoded as Latin-1
}

// Target renders the decode protocol in a concrete programming language.
type Target interface {
	// Name identifies the target, e.g. "python".
	Name() string
	// Quote renders s as a string literal. With latin1 set, every rune
	// above U+00FF has to be escaped.
	Quote(s string, latin1 bool) string
	// EscapeCost is the number of bytes r occupies inside a literal.
	EscapeCost(r rune, latin1 bool) int
	// Latin1 reports whether the target can declare a Latin-1 source encoding.
	Latin1() bool
	// Emit renders the complete decoder program.
	Emit(p Program) string
	// Parse recovers a Program from a decoder produced by Emit.
	Parse(src []byte) (Program, error)
}

// Packed is the output of the packer.
type Packed struct {
	Program     Program
	Text        string // program text
	EscapedSize int    // size in bytes of the payload literal
}

// Bytes returns the program text in its output encoding.
func (p *Packed) Bytes() []byte {
	if !p.Program.Latin1 {
		return []byte(p.Text)
	}
	return encodeLatin1(p.Text)
}

// Size returns the size of the program in bytes.
func (p *Packed) Size() int {
	return len(p.Bytes())
}

// DecoderSize returns the number of bytes spent on everything but the payload literal.
func (p *Packed) DecoderSize() int {
	return p.Size() - p.EscapedSize
}

// Pack wraps a compression result into a decoder program for target.
func Pack(res *Result, target Target, cfg *Config) (*Packed, error) {
	if res == nil {
		return nil, fmt.Errorf("pack: no compression result")
	}
	prog := Program{
		Payload: string(res.Payload),
		Keys:    res.Trace.Keys(),
		Print:   cfg.Print,
	}
	if cfg.HexEscape {
		prog.Escape = cfg.Escape
	}
	if target.Latin1() {
		for _, k := range prog.Keys {
			if k > 0x7F {
				prog.Latin1 = true
				break
			}
		}
	}
	packed := &Packed{
		Program: prog,
		Text:    target.Emit(prog),
	}
	literal := target.Quote(prog.Payload, prog.Latin1)
	if prog.Latin1 {
		packed.EscapedSize = len([]rune(literal))
	} else {
		packed.EscapedSize = len(literal)
	}
	tracer().Infof("packed %d rounds for target %s: %d bytes", len(res.Trace), target.Name(), packed.Size())
	return packed, nil
}

// Extract decodes a Program back into the original text.
func Extract(prog Program) (string, error) {
	text, err := Unpack(prog.Payload, prog.Keys)
	if err != nil {
		return "", err
	}
	if prog.Escape != 0 {
		return UnescapeRare(text, prog.Escape)
	}
	return text, nil
}

// Unpack undoes the substitutions of a compressed payload. keys holds the
// placeholders most recent first, as returned by Trace.Keys.
func Unpack(payload, keys string) (string, error) {
	buf := payload
	for _, key := range keys {
		pieces := strings.Split(buf, string(key))
		if len(pieces) < 2 {
			return "", fmt.Errorf("%w: placeholder %q does not occur", ErrCorruptPayload, key)
		}
		definition := pieces[len(pieces)-1]
		buf = strings.Join(pieces[:len(pieces)-1], definition)
	}
	return buf, nil
}

func encodeLatin1(s string) []byte {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		assert(r <= 0xFF, "rune outside of Latin-1 in Latin-1 program text")
		b = append(b, byte(r))
	}
	return b
}

// DecodeLatin1 converts Latin-1 encoded bytes to a string.
func DecodeLatin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
