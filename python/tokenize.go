package python

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/derekparker/trie"
)

// ErrUnparsable is returned when source cannot be tokenized as Python.
var ErrUnparsable = errors.New("source is not tokenizable as Python")

// TokenType classifies Python tokens.
type TokenType int8

const (
	EndMarker TokenType = iota
	Name
	Number
	String
	Op
	Comment
	NL      // line break which does not end a logical line
	Newline // end of a logical line
	Indent
	Dedent
)

var tokenTypeNames = [...]string{"ENDMARKER", "NAME", "NUMBER", "STRING", "OP", "COMMENT",
	"NL", "NEWLINE", "INDENT", "DEDENT"}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int8(t))
}

// Pos is a position in the source. Row is 1-based, Col counts runes from 0.
type Pos struct {
	Row, Col int
}

// Token is a lexical token of Python source.
type Token struct {
	Type  TokenType
	Text  string
	Start Pos
	End   Pos
}

// operators holds every Python operator and delimiter for longest-match lookup.
var operators = func() *trie.Trie {
	t := trie.New()
	for _, op := range strings.Fields(`( ) [ ] { } : , ; + - * / | & < > = . % ~ ^ @
		== != <= >= << >> ** // -> += -= *= /= %= &= |= ^= >>= <<= **= //= @= := ...`) {
		t.Add(op, len(op))
	}
	return t
}()

// matchOperator returns the length of the longest operator starting at s[0],
// or 0.
func matchOperator(s []rune) int {
	longest := 0
	for n := 1; n <= len(s); n++ {
		key := string(s[:n])
		if !operators.HasKeysWithPrefix(key) {
			break
		}
		if _, ok := operators.Find(key); ok {
			longest = n
		}
	}
	return longest
}

// Tokenizer streams tokens from Python source, one physical line at a time.
type Tokenizer struct {
	reader    *bufio.Reader
	row       int
	line      []rune
	pos       int
	parens    int   // bracket nesting depth
	indents   []int // indentation stack, starts with column 0
	continued bool  // previous line ended with a backslash
	pending   []Token
	lastType  TokenType
	emitted   bool
	done      bool
	str       []rune // text of an unfinished string spanning lines
	strStart  Pos
	strQuote  string
}

// NewTokenizer creates a tokenizer reading Python source from reader.
func NewTokenizer(reader io.Reader) *Tokenizer {
	return &Tokenizer{
		reader:  bufio.NewReader(reader),
		indents: []int{0},
	}
}

// Tokenize returns all tokens of src, up to and including the end marker.
func Tokenize(src string) ([]Token, error) {
	tz := NewTokenizer(strings.NewReader(src))
	var tokens []Token
	for {
		tok, err := tz.Next()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token. It returns io.EOF after the end marker.
func (t *Tokenizer) Next() (Token, error) {
	for len(t.pending) == 0 {
		if t.done {
			return Token{}, io.EOF
		}
		if err := t.readLine(); err != nil {
			t.done = true
			return Token{}, err
		}
	}
	tok := t.pending[0]
	t.pending = t.pending[1:]
	return tok, nil
}

func (t *Tokenizer) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrUnparsable, t.row, fmt.Sprintf(format, args...))
}

func (t *Tokenizer) emit(typ TokenType, text string, start, end Pos) {
	t.pending = append(t.pending, Token{Type: typ, Text: text, Start: start, End: end})
	t.lastType = typ
	t.emitted = true
}

func (t *Tokenizer) at(col int) Pos {
	return Pos{Row: t.row, Col: col}
}

func (t *Tokenizer) readLine() error {
	s, err := t.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	if s == "" {
		return t.finish()
	}
	t.row++
	t.line = []rune(s)
	t.pos = 0
	switch {
	case t.str != nil:
		closed, err := t.continueString()
		if err != nil || !closed {
			return err
		}
	case t.parens == 0 && !t.continued:
		blank, err := t.indentation()
		if err != nil || blank {
			return err
		}
	default:
		t.continued = false
	}
	return t.tokens()
}

// finish emits the tokens closing the input.
func (t *Tokenizer) finish() error {
	if t.str != nil {
		return t.errorf("EOF in multi-line string")
	}
	if t.parens > 0 || t.continued {
		return t.errorf("EOF in multi-line statement")
	}
	if t.emitted && t.lastType != Newline && t.lastType != NL {
		t.emit(Newline, "", t.at(len(t.line)), t.at(len(t.line)+1))
	}
	end := Pos{Row: t.row + 1}
	for len(t.indents) > 1 {
		t.indents = t.indents[:len(t.indents)-1]
		t.emit(Dedent, "", end, end)
	}
	t.emit(EndMarker, "", end, end)
	t.done = true
	return nil
}

// lineEnd returns the line break starting at col, or "" if there is none.
func (t *Tokenizer) lineEnd(col int) string {
	rest := string(t.line[col:])
	if rest == "\n" || rest == "\r\n" || rest == "\r" {
		return rest
	}
	return ""
}

// indentation measures the leading whitespace of a new logical line and emits
// INDENT or DEDENT tokens. Blank and comment-only lines are reported as blank.
func (t *Tokenizer) indentation() (blank bool, err error) {
	col := 0
measure:
	for ; t.pos < len(t.line); t.pos++ {
		switch t.line[t.pos] {
		case ' ':
			col++
		case '\t':
			col = (col/8 + 1) * 8
		case '\f':
			col = 0
		default:
			break measure
		}
	}
	if t.pos == len(t.line) {
		return true, nil
	}
	if t.line[t.pos] == '#' {
		t.comment()
	}
	if brk := t.lineEnd(t.pos); brk != "" {
		t.emit(NL, brk, t.at(t.pos), t.at(t.pos+len(brk)))
		return true, nil
	}
	if t.pos == len(t.line) { // comment on the last line
		return true, nil
	}
	if top := t.indents[len(t.indents)-1]; col > top {
		t.indents = append(t.indents, col)
		t.emit(Indent, string(t.line[:t.pos]), t.at(0), t.at(t.pos))
		return false, nil
	}
	for col < t.indents[len(t.indents)-1] {
		t.indents = t.indents[:len(t.indents)-1]
		if col > t.indents[len(t.indents)-1] {
			return false, t.errorf("unindent does not match any outer indentation level")
		}
		t.emit(Dedent, "", t.at(t.pos), t.at(t.pos))
	}
	return false, nil
}

func (t *Tokenizer) comment() {
	start := t.pos
	end := len(t.line)
	for end > start && (t.line[end-1] == '\n' || t.line[end-1] == '\r') {
		end--
	}
	t.emit(Comment, string(t.line[start:end]), t.at(start), t.at(end))
	t.pos = end
}

// tokens tokenizes the rest of the current line.
func (t *Tokenizer) tokens() error {
	for t.pos < len(t.line) {
		r := t.line[t.pos]
		switch {
		case r == ' ' || r == '\t' || r == '\f':
			t.pos++
		case r == '#':
			t.comment()
		case t.lineEnd(t.pos) != "":
			brk := t.lineEnd(t.pos)
			typ := Newline
			if t.parens > 0 || t.lastType == Newline || t.lastType == NL {
				typ = NL
			}
			t.emit(typ, brk, t.at(t.pos), t.at(t.pos+len(brk)))
			t.pos = len(t.line)
		case r == '\\':
			if t.pos+1 < len(t.line) && t.lineEnd(t.pos+1) == "" {
				return t.errorf("unexpected character after line continuation")
			}
			t.continued = true
			t.pos = len(t.line)
		case isDigit(r) || (r == '.' && t.pos+1 < len(t.line) && isDigit(t.line[t.pos+1])):
			t.number()
		case isIdentStart(r):
			if err := t.name(); err != nil {
				return err
			}
		case r == '\'' || r == '"':
			if err := t.openString(t.pos); err != nil {
				return err
			}
		default:
			if err := t.operator(); err != nil {
				return err
			}
		}
		if t.str != nil { // string continues on the next line
			return nil
		}
	}
	return nil
}

func (t *Tokenizer) number() {
	start := t.pos
	hex := t.line[t.pos] == '0' && t.pos+1 < len(t.line) && (t.line[t.pos+1]|0x20) == 'x'
	for t.pos < len(t.line) {
		r := t.line[t.pos]
		if !hex && (r == 'e' || r == 'E') && t.pos+1 < len(t.line) &&
			(t.line[t.pos+1] == '+' || t.line[t.pos+1] == '-') {
			t.pos += 2
			continue
		}
		if !isIdentPart(r) && r != '.' {
			break
		}
		t.pos++
	}
	t.emit(Number, string(t.line[start:t.pos]), t.at(start), t.at(t.pos))
}

func (t *Tokenizer) name() error {
	start := t.pos
	for t.pos < len(t.line) && isIdentPart(t.line[t.pos]) {
		t.pos++
	}
	word := string(t.line[start:t.pos])
	if t.pos < len(t.line) && (t.line[t.pos] == '\'' || t.line[t.pos] == '"') && isStringPrefix(word) {
		return t.openString(start)
	}
	t.emit(Name, word, t.at(start), t.at(t.pos))
	return nil
}

// openString starts a string literal whose prefix begins at start; the
// opening quote is at t.pos.
func (t *Tokenizer) openString(start int) error {
	q := t.line[t.pos]
	quote := string(q)
	if t.pos+2 < len(t.line) && t.line[t.pos+1] == q && t.line[t.pos+2] == q {
		quote = strings.Repeat(quote, 3)
	}
	t.pos += len(quote)
	t.str = append([]rune{}, t.line[start:t.pos]...)
	t.strStart = t.at(start)
	t.strQuote = quote
	_, err := t.continueString()
	return err
}

// continueString scans for the end of the current string literal. It reports
// whether the string was closed on this line.
func (t *Tokenizer) continueString() (bool, error) {
	from := t.pos
	q := rune(t.strQuote[0])
	triple := len(t.strQuote) == 3
	for t.pos < len(t.line) {
		r := t.line[t.pos]
		switch {
		case r == '\\':
			if t.lineEnd(t.pos+1) != "" {
				t.pos = len(t.line)
			} else {
				t.pos += 2
			}
			continue
		case r == q && !triple:
			t.pos++
			t.closeString(from)
			return true, nil
		case r == q && t.pos+2 < len(t.line) && t.line[t.pos+1] == q && t.line[t.pos+2] == q:
			t.pos += 3
			t.closeString(from)
			return true, nil
		case !triple && t.lineEnd(t.pos) != "":
			return false, t.errorf("unterminated string literal")
		}
		t.pos++
	}
	if t.pos > len(t.line) {
		t.pos = len(t.line)
	}
	t.str = append(t.str, t.line[from:]...)
	return false, nil
}

func (t *Tokenizer) closeString(from int) {
	t.str = append(t.str, t.line[from:t.pos]...)
	t.emit(String, string(t.str), t.strStart, t.at(t.pos))
	t.str = nil
}

func (t *Tokenizer) operator() error {
	n := matchOperator(t.line[t.pos:])
	if n == 0 {
		return t.errorf("unexpected character %q", t.line[t.pos])
	}
	op := string(t.line[t.pos : t.pos+n])
	switch op {
	case "(", "[", "{":
		t.parens++
	case ")", "]", "}":
		if t.parens == 0 {
			return t.errorf("unmatched %q", op)
		}
		t.parens--
	}
	t.emit(Op, op, t.at(t.pos), t.at(t.pos+n))
	t.pos += n
	return nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc)
}

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}
