/*
Package python renders self-decoding programs as Python 3 source and
minifies Python source before it is packed.

A packed program looks like this:

	c='xy-X-X-XxyXab'
	for i in'YX':c=c.split(i);c=c.pop().join(c)
	exec(c)

If the rare-character escaper was used, two more lines turn escape sequences
back into characters. If an 8-bit placeholder was used, the program declares
Latin-1 as its source encoding, so every placeholder costs a single byte.
*/
package python

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/selfpack"
)

// tracer writes to trace with key 'selfpack.python'
func tracer() tracing.Trace {
	return tracing.Select("selfpack.python")
}

const (
	latin1Declaration = "#coding:latin-1\n"
	decodeLoopPrefix  = "for i in"
	decodeLoopSuffix  = ":c=c.split(i);c=c.pop().join(c)"
	hexSplitPrefix    = "a=c.split("
	hexSplitSuffix    = ");c=a.pop(0)"
	hexLoop           = "for i in a:c+=chr(int(i[:2],16))+i[2:]"
	execLine          = "exec(c)"
	printLine         = "print(c,end='')"
)

// Target emits Python 3 decoders. The zero value is ready to use.
type Target struct{}

var _ selfpack.Target = Target{}

// Name returns "python".
func (Target) Name() string { return "python" }

// Latin1 reports true: Python honours a coding declaration.
func (Target) Latin1() bool { return true }

// Quote renders s as a Python string literal. Like repr, it prefers single
// quotes unless s contains single but no double quotes.
func (Target) Quote(s string, latin1 bool) string {
	q := quoteFor(s)
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteRune(q)
	for _, r := range s {
		writeEscaped(&b, r, q, latin1)
	}
	b.WriteRune(q)
	return b.String()
}

// EscapeCost returns the bytes r occupies inside a single-quoted literal.
func (Target) EscapeCost(r rune, latin1 bool) int {
	var b strings.Builder
	writeEscaped(&b, r, '\'', latin1)
	if latin1 {
		return utf8.RuneCountInString(b.String())
	}
	return b.Len()
}

func quoteFor(s string) rune {
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		return '"'
	}
	return '\''
}

func writeEscaped(b *strings.Builder, r rune, q rune, latin1 bool) {
	switch {
	case r == '\\' || r == q:
		b.WriteByte('\\')
		b.WriteRune(r)
	case r == '\n':
		b.WriteString(`\n`)
	case r == '\r':
		b.WriteString(`\r`)
	case r == '\t':
		b.WriteString(`\t`)
	case r < 0x20 || r == 0x7F:
		fmt.Fprintf(b, `\x%02x`, r)
	case r < 0x80:
		b.WriteRune(r)
	case !unicode.IsPrint(r) || (latin1 && r > 0xFF):
		switch {
		case r <= 0xFF:
			fmt.Fprintf(b, `\x%02x`, r)
		case r <= 0xFFFF:
			fmt.Fprintf(b, `\u%04x`, r)
		default:
			fmt.Fprintf(b, `\U%08x`, r)
		}
	default:
		b.WriteRune(r)
	}
}

// Emit renders the decoder program.
func (t Target) Emit(p selfpack.Program) string {
	var b strings.Builder
	if p.Latin1 {
		b.WriteString(latin1Declaration)
	}
	b.WriteString("c=")
	b.WriteString(t.Quote(p.Payload, p.Latin1))
	b.WriteByte('\n')
	b.WriteString(decodeLoopPrefix)
	b.WriteString(t.Quote(p.Keys, p.Latin1))
	b.WriteString(decodeLoopSuffix)
	b.WriteByte('\n')
	if p.Escape != 0 {
		b.WriteString(hexSplitPrefix)
		b.WriteString(t.Quote(string(p.Escape), p.Latin1))
		b.WriteString(hexSplitSuffix)
		b.WriteByte('\n')
		b.WriteString(hexLoop)
		b.WriteByte('\n')
	}
	if p.Print {
		b.WriteString(printLine)
	} else {
		b.WriteString(execLine)
	}
	return b.String()
}

// Parse recovers the Program from a decoder written by Emit.
func (Target) Parse(src []byte) (selfpack.Program, error) {
	var p selfpack.Program
	var text string
	if bytes.HasPrefix(src, []byte(latin1Declaration)) {
		p.Latin1 = true
		text = selfpack.DecodeLatin1(src[len(latin1Declaration):])
	} else if utf8.Valid(src) {
		text = string(src)
	} else {
		return p, fmt.Errorf("%w: program is neither Latin-1 nor UTF-8", selfpack.ErrCorruptPayload)
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 3 && len(lines) != 5 {
		return p, fmt.Errorf("%w: unexpected program layout", selfpack.ErrCorruptPayload)
	}
	var err error
	if p.Payload, err = literalBetween(lines[0], "c=", ""); err != nil {
		return p, err
	}
	if p.Keys, err = literalBetween(lines[1], decodeLoopPrefix, decodeLoopSuffix); err != nil {
		return p, err
	}
	if len(lines) == 5 {
		esc, err := literalBetween(lines[2], hexSplitPrefix, hexSplitSuffix)
		if err != nil {
			return p, err
		}
		if utf8.RuneCountInString(esc) != 1 || lines[3] != hexLoop {
			return p, fmt.Errorf("%w: malformed hex decoder", selfpack.ErrCorruptPayload)
		}
		p.Escape, _ = utf8.DecodeRuneInString(esc)
	}
	switch lines[len(lines)-1] {
	case execLine:
	case printLine:
		p.Print = true
	default:
		return p, fmt.Errorf("%w: unexpected last line %q", selfpack.ErrCorruptPayload, lines[len(lines)-1])
	}
	return p, nil
}

func literalBetween(line, prefix, suffix string) (string, error) {
	if !strings.HasPrefix(line, prefix) || !strings.HasSuffix(line, suffix) ||
		len(line) < len(prefix)+len(suffix) {
		return "", fmt.Errorf("%w: expected %q...%q", selfpack.ErrCorruptPayload, prefix, suffix)
	}
	return Unquote(line[len(prefix) : len(line)-len(suffix)])
}

// Unquote interprets lit as a Python string literal without prefix, as
// produced by Quote.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 || (lit[0] != '\'' && lit[0] != '"') || lit[len(lit)-1] != lit[0] {
		return "", fmt.Errorf("%w: not a string literal: %q", selfpack.ErrCorruptPayload, lit)
	}
	q := lit[0]
	body := lit[1 : len(lit)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == q {
			return "", fmt.Errorf("%w: unescaped quote in literal", selfpack.ErrCorruptPayload)
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("%w: trailing backslash in literal", selfpack.ErrCorruptPayload)
		}
		switch body[i] {
		case '\\', '\'', '"':
			b.WriteByte(body[i])
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'x', 'u', 'U':
			width := 2
			if body[i] == 'u' {
				width = 4
			} else if body[i] == 'U' {
				width = 8
			}
			if i+width >= len(body) {
				return "", fmt.Errorf("%w: truncated escape in literal", selfpack.ErrCorruptPayload)
			}
			code, err := strconv.ParseUint(body[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("%w: bad escape in literal: %v", selfpack.ErrCorruptPayload, err)
			}
			b.WriteRune(rune(code))
			i += width
		default:
			return "", fmt.Errorf("%w: unknown escape \\%c", selfpack.ErrCorruptPayload, body[i])
		}
	}
	return b.String(), nil
}
