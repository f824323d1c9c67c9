package python

import (
	"strings"
	"unicode/utf8"
)

// Minify removes comments, blank lines and redundant whitespace from Python
// source. Each indentation level is rendered as a single space. Minification
// is repeated until the size no longer shrinks; in fast mode it runs once.
//
// If src cannot be tokenized, Minify returns an error wrapping ErrUnparsable
// and callers are expected to continue with the unmodified source.
func Minify(src string, fast bool) (string, error) {
	tracer().Infof("minifying python code, %d bytes", len(src))
	passes := 0
	for {
		out, err := minifyOnce(src)
		if err != nil {
			tracer().Errorf("minification failed: %v", err)
			return "", err
		}
		passes++
		if fast || len(out) == len(src) {
			tracer().Infof("minified to %d bytes in %d passes", len(out), passes)
			return out, nil
		}
		src = out
	}
}

func minifyOnce(src string) (string, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(src))
	depth := 0
	lineStart := true
	var prev *Token
	for i := range tokens {
		tok := &tokens[i]
		switch tok.Type {
		case Comment, NL, EndMarker:
			continue
		case Indent:
			depth++
			continue
		case Dedent:
			depth--
			continue
		case Newline:
			b.WriteByte('\n')
			lineStart = true
			prev = nil
			continue
		}
		if lineStart {
			b.WriteString(strings.Repeat(" ", depth))
			lineStart = false
		} else if prev != nil && needsSpace(prev, tok) {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
		prev = tok
	}
	return b.String(), nil
}

// needsSpace reports whether two adjacent tokens of a logical line would be
// read differently when written without a blank between them.
func needsSpace(prev, tok *Token) bool {
	last, _ := utf8.DecodeLastRuneInString(prev.Text)
	first, _ := utf8.DecodeRuneInString(tok.Text)
	switch {
	case prev.Type == String && tok.Type == String:
		return true // '' '' must not turn into a triple quote
	case prev.Type == Name && isStringPrefix(prev.Text) && (first == '\'' || first == '"'):
		return true
	case prev.Type == Number && (first == '.' || isIdentPart(first)):
		return true
	case isIdentPart(last) && isIdentPart(first):
		return true
	case prev.Type == Op && tok.Type == Op:
		return matchOperator([]rune(prev.Text+tok.Text)) > utf8.RuneCountInString(prev.Text)
	}
	return false
}
