package python

import (
	"errors"
	"testing"
)

func tokenTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	tokens, err := Tokenize(src)
	if err != nil {
		t.Fatalf("tokenizing %q failed: %v", src, err)
	}
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func sameTypes(a, b []TokenType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenizeStatements(t *testing.T) {
	tests := []struct {
		src   string
		types []TokenType
	}{
		{"x = 1\n", []TokenType{Name, Op, Number, Newline, EndMarker}},
		{"x = 1", []TokenType{Name, Op, Number, Newline, EndMarker}},
		{"# only a comment\n", []TokenType{Comment, NL, EndMarker}},
		{"\n\nx\n", []TokenType{NL, NL, Name, Newline, EndMarker}},
		{"f(a,\n  b)\n", []TokenType{Name, Op, Name, Op, NL, Name, Op, Newline, EndMarker}},
		{"x = 1 + \\\n 2\n", []TokenType{Name, Op, Number, Op, Number, Newline, EndMarker}},
		{"if x:\n    y\nz\n", []TokenType{Name, Name, Op, Newline, Indent, Name, Newline, Dedent, Name, Newline, EndMarker}},
		{"if x:\n  if y:\n    z\n", []TokenType{Name, Name, Op, Newline, Indent, Name, Name, Op, Newline,
			Indent, Name, Newline, Dedent, Dedent, EndMarker}},
		{"s = r'a\\'b' + b\"c\"\n", []TokenType{Name, Op, String, Op, String, Newline, EndMarker}},
		{"x = 1e-3 + 0x1f + .5\n", []TokenType{Name, Op, Number, Op, Number, Op, Number, Newline, EndMarker}},
	}
	for _, tt := range tests {
		if got := tokenTypes(t, tt.src); !sameTypes(got, tt.types) {
			t.Errorf("tokens of %q are %v, expected %v", tt.src, got, tt.types)
		}
	}
}

func TestTokenizeMultiLineString(t *testing.T) {
	src := "s = '''one\ntwo''' + 'x'\n"
	tokens, err := Tokenize(src)
	if err != nil {
		t.Fatal(err)
	}
	if tokens[2].Type != String || tokens[2].Text != "'''one\ntwo'''" {
		t.Fatalf("expected triple-quoted string, have %v %q", tokens[2].Type, tokens[2].Text)
	}
	if tokens[2].Start.Row != 1 || tokens[2].End.Row != 2 {
		t.Errorf("string should span rows 1 to 2, spans %d to %d", tokens[2].Start.Row, tokens[2].End.Row)
	}
	if tokens[4].Text != "'x'" {
		t.Errorf("expected 'x' after the string, have %q", tokens[4].Text)
	}
}

func TestOperatorLongestMatch(t *testing.T) {
	tests := []struct {
		src string
		n   int
	}{
		{"**=1", 3},
		{"...", 3},
		{"->x", 2},
		{"//", 2},
		{"<x", 1},
		{"$", 0},
		{"!x", 0},
	}
	for _, tt := range tests {
		if n := matchOperator([]rune(tt.src)); n != tt.n {
			t.Errorf("operator at start of %q should have length %d, has %d", tt.src, tt.n, n)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	for _, src := range []string{
		"s = 'open\n",
		"s = '''open\n",
		"x = $\n",
		"f(x\n",
		"x)\n",
		"if x:\n    y\n  z\n",
		"x = 1 \\ 2\n",
	} {
		if _, err := Tokenize(src); !errors.Is(err, ErrUnparsable) {
			t.Errorf("expected %q to be unparsable, error is %v", src, err)
		}
	}
}
