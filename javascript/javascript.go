// Package javascript renders self-decoding programs as JavaScript for
// Node.js or browsers.
package javascript

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/selfpack"
)

// tracer writes to trace with key 'selfpack.js'
func tracer() tracing.Trace {
	return tracing.Select("selfpack.js")
}

const (
	decodeLoopPrefix = "for(i of"
	decodeLoopSuffix = ")c=c.split(i),c=c.join(c.pop())"
	hexSplitPrefix   = "a=c.split("
	hexSplitSuffix   = ");c=a.shift();for(i of a)c+=String.fromCharCode(parseInt(i.slice(0,2),16))+i.slice(2)"
	evalLine         = "eval(c)"
	printLine        = "process.stdout.write(c)"
)

// Target emits JavaScript decoders.
type Target struct{}

var _ selfpack.Target = Target{}

// Name returns "js".
func (Target) Name() string { return "js" }

// Latin1 reports false. JavaScript source is always read as Unicode text.
func (Target) Latin1() bool { return false }

// Quote renders s as a JavaScript string literal.
func (Target) Quote(s string, _ bool) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteRune(q)
	for _, r := range s {
		writeEscaped(&b, r, q)
	}
	b.WriteRune(q)
	return b.String()
}

// EscapeCost returns the UTF-8 length of r inside a single-quoted literal.
func (Target) EscapeCost(r rune, _ bool) int {
	var b strings.Builder
	writeEscaped(&b, r, '\'')
	return b.Len()
}

func writeEscaped(b *strings.Builder, r rune, q rune) {
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
	case r < 0x20 || (r >= 0x7F && r <= 0x9F):
		fmt.Fprintf(b, `\x%02x`, r)
	case r == 0x2028 || r == 0x2029:
		fmt.Fprintf(b, `\u%04x`, r)
	case r < 0x80 || unicode.IsPrint(r):
		b.WriteRune(r)
	case r <= 0xFF:
		fmt.Fprintf(b, `\x%02x`, r)
	case r <= 0xFFFF:
		fmt.Fprintf(b, `\u%04x`, r)
	default:
		fmt.Fprintf(b, `\u{%x}`, r)
	}
}

// Emit renders the decoder program.
func (t Target) Emit(p selfpack.Program) string {
	var b strings.Builder
	b.WriteString("c=")
	b.WriteString(t.Quote(p.Payload, false))
	b.WriteByte('\n')
	b.WriteString(decodeLoopPrefix)
	b.WriteString(t.Quote(p.Keys, false))
	b.WriteString(decodeLoopSuffix)
	b.WriteByte('\n')
	if p.Escape != 0 {
		b.WriteString(hexSplitPrefix)
		b.WriteString(t.Quote(string(p.Escape), false))
		b.WriteString(hexSplitSuffix)
		b.WriteByte('\n')
	}
	if p.Print {
		b.WriteString(printLine)
	} else {
		b.WriteString(evalLine)
	}
	return b.String()
}

// Parse recovers the Program from a decoder written by Emit.
func (Target) Parse(src []byte) (selfpack.Program, error) {
	var p selfpack.Program
	if !utf8.Valid(src) {
		return p, fmt.Errorf("%w: program is not UTF-8", selfpack.ErrCorruptPayload)
	}
	lines := strings.Split(string(src), "\n")
	if len(lines) != 3 && len(lines) != 4 {
		return p, fmt.Errorf("%w: unexpected program layout", selfpack.ErrCorruptPayload)
	}
	var err error
	if p.Payload, err = literalBetween(lines[0], "c=", ""); err != nil {
		return p, err
	}
	if p.Keys, err = literalBetween(lines[1], decodeLoopPrefix, decodeLoopSuffix); err != nil {
		return p, err
	}
	if len(lines) == 4 {
		esc, err := literalBetween(lines[2], hexSplitPrefix, hexSplitSuffix)
		if err != nil {
			return p, err
		}
		if utf8.RuneCountInString(esc) != 1 {
			return p, fmt.Errorf("%w: malformed hex decoder", selfpack.ErrCorruptPayload)
		}
		p.Escape, _ = utf8.DecodeRuneInString(esc)
	}
	switch last := lines[len(lines)-1]; last {
	case evalLine:
	case printLine:
		p.Print = true
	default:
		return p, fmt.Errorf("%w: unexpected last line %q", selfpack.ErrCorruptPayload, last)
	}
	tracer().Debugf("parsed program with %d placeholders", utf8.RuneCountInString(p.Keys))
	return p, nil
}

func literalBetween(line, prefix, suffix string) (string, error) {
	if len(line) < len(prefix)+len(suffix) || !strings.HasPrefix(line, prefix) ||
		!strings.HasSuffix(line, suffix) {
		return "", fmt.Errorf("%w: expected %q...%q", selfpack.ErrCorruptPayload, prefix, suffix)
	}
	return Unquote(line[len(prefix) : len(line)-len(suffix)])
}

// Unquote interprets lit as a JavaScript string literal as produced by Quote.
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
		var hex string
		switch body[i] {
		case '\\', '\'', '"':
			b.WriteByte(body[i])
			continue
		case 'n':
			b.WriteByte('\n')
			continue
		case 'r':
			b.WriteByte('\r')
			continue
		case 't':
			b.WriteByte('\t')
			continue
		case 'x':
			if i+2 >= len(body) {
				return "", fmt.Errorf("%w: truncated escape in literal", selfpack.ErrCorruptPayload)
			}
			hex, i = body[i+1:i+3], i+2
		case 'u':
			if i+1 < len(body) && body[i+1] == '{' {
				end := strings.IndexByte(body[i:], '}')
				if end < 0 {
					return "", fmt.Errorf("%w: unterminated escape in literal", selfpack.ErrCorruptPayload)
				}
				hex, i = body[i+2:i+end], i+end
				break
			}
			if i+4 >= len(body) {
				return "", fmt.Errorf("%w: truncated escape in literal", selfpack.ErrCorruptPayload)
			}
			hex, i = body[i+1:i+5], i+4
		default:
			return "", fmt.Errorf("%w: unknown escape \\%c", selfpack.ErrCorruptPayload, body[i])
		}
		code, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || code > unicode.MaxRune {
			return "", fmt.Errorf("%w: bad escape \\%s in literal", selfpack.ErrCorruptPayload, hex)
		}
		b.WriteRune(rune(code))
	}
	return b.String(), nil
}
