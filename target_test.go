package selfpack

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// goTarget renders programs as Go-quoted lines. It serves the tests of this
// package, which cannot import the language packages.
type goTarget struct {
	latin1 bool
}

func (goTarget) Name() string { return "go" }

func (g goTarget) Latin1() bool { return g.latin1 }

func (goTarget) Quote(s string, latin1 bool) string {
	if !latin1 {
		return strconv.Quote(s)
	}
	var b strings.Builder
	for _, r := range s {
		if r > 0xFF {
			b.WriteString(strings.Trim(strconv.QuoteToASCII(string(r)), `"`))
			continue
		}
		b.WriteString(strings.Trim(strconv.Quote(string(r)), `"`))
	}
	return `"` + b.String() + `"`
}

func (g goTarget) EscapeCost(r rune, latin1 bool) int {
	q := g.Quote(string(r), latin1)
	if latin1 {
		return utf8.RuneCountInString(q) - 2
	}
	return len(q) - 2
}

func (g goTarget) Emit(p Program) string {
	action := "exec"
	if p.Print {
		action = "print"
	}
	return fmt.Sprintf("%s\n%s\n%d\n%s", g.Quote(p.Payload, p.Latin1), g.Quote(p.Keys, p.Latin1),
		p.Escape, action)
}

func (goTarget) Parse(src []byte) (Program, error) {
	var p Program
	lines := strings.Split(string(src), "\n")
	if len(lines) != 4 {
		return p, fmt.Errorf("%w: expected 4 lines", ErrCorruptPayload)
	}
	var err error
	if p.Payload, err = strconv.Unquote(lines[0]); err != nil {
		return p, err
	}
	if p.Keys, err = strconv.Unquote(lines[1]); err != nil {
		return p, err
	}
	esc, err := strconv.Atoi(lines[2])
	if err != nil {
		return p, err
	}
	p.Escape = rune(esc)
	p.Print = lines[3] == "print"
	return p, nil
}
