package python

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/npillmayer/selfpack"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		s      string
		latin1 bool
		lit    string
	}{
		{"abc", false, `'abc'`},
		{"it's", false, `"it's"`},
		{`a'b"c`, false, `'a\'b"c'`},
		{"a\nb\x00\\", false, `'a\nb\x00\\'`},
		{"é", false, `'é'`},
		{"é", true, `'é'`},
		{"€", false, `'€'`},
		{"€", true, `'\u20ac'`},
		{"\u0085", false, `'\x85'`},
		{"🚀", true, `'\U0001f680'`},
	}
	for _, tt := range tests {
		lit := Target{}.Quote(tt.s, tt.latin1)
		if lit != tt.lit {
			t.Errorf("quoting %q (latin1=%v) should give %s, gives %s", tt.s, tt.latin1, tt.lit, lit)
			continue
		}
		s, err := Unquote(lit)
		if err != nil {
			t.Fatalf("unquoting %s: %v", lit, err)
		}
		if s != tt.s {
			t.Errorf("unquoting %s gives %q, expected %q", lit, s, tt.s)
		}
	}
}

func TestUnquoteErrors(t *testing.T) {
	for _, lit := range []string{`abc`, `'abc"`, `'a'b'`, `'ab\'`, `'\x4'`, `'\q'`} {
		if _, err := Unquote(lit); !errors.Is(err, selfpack.ErrCorruptPayload) {
			t.Errorf("expected %s to be rejected, error is %v", lit, err)
		}
	}
}

func TestEscapeCost(t *testing.T) {
	tests := []struct {
		r      rune
		latin1 bool
		cost   int
	}{
		{'a', false, 1},
		{'\n', false, 2},
		{'\'', false, 2},
		{0x01, false, 4},
		{'é', true, 1},
		{'é', false, 2},
		{'€', true, 6},
	}
	for _, tt := range tests {
		if c := (Target{}).EscapeCost(tt.r, tt.latin1); c != tt.cost {
			t.Errorf("cost of %q (latin1=%v) should be %d, is %d", tt.r, tt.latin1, tt.cost, c)
		}
	}
}

func TestEmit(t *testing.T) {
	prog := selfpack.Program{Payload: "xyXab", Keys: "X"}
	expected := "c='xyXab'\nfor i in'X':c=c.split(i);c=c.pop().join(c)\nexec(c)"
	if src := (Target{}).Emit(prog); src != expected {
		t.Fatalf("unexpected program:\n%s", src)
	}
	prog.Escape = '$'
	prog.Print = true
	expected = "c='xyXab'\nfor i in'X':c=c.split(i);c=c.pop().join(c)\n" +
		"a=c.split('$');c=a.pop(0)\nfor i in a:c+=chr(int(i[:2],16))+i[2:]\nprint(c,end='')"
	if src := (Target{}).Emit(prog); src != expected {
		t.Fatalf("unexpected program with escaper:\n%s", src)
	}
}

func TestParseEmitted(t *testing.T) {
	for _, prog := range []selfpack.Program{
		{Payload: "xyXab", Keys: "X"},
		{Payload: "a'b\"c\n", Keys: "", Print: true},
		{Payload: "$41bc", Keys: "", Escape: '$'},
	} {
		parsed, err := Target{}.Parse([]byte(Target{}.Emit(prog)))
		if err != nil {
			t.Fatalf("parsing emitted program %+v: %v", prog, err)
		}
		if parsed != prog {
			t.Errorf("parsed program is %+v, expected %+v", parsed, prog)
		}
	}
	if _, err := (Target{}).Parse([]byte("print('hello')")); !errors.Is(err, selfpack.ErrCorruptPayload) {
		t.Errorf("foreign program should be rejected, error is %v", err)
	}
}

func TestLatin1Program(t *testing.T) {
	res := &selfpack.Result{
		Payload: []rune("éxéxé€éab"),
		Trace:   selfpack.Trace{{Placeholder: 'é', Definition: "ab", Size: 2}},
	}
	packed, err := selfpack.Pack(res, Target{}, selfpack.NewConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !packed.Program.Latin1 {
		t.Fatalf("8-bit placeholder should select Latin-1 encoding")
	}
	b := packed.Bytes()
	if !bytes.HasPrefix(b, []byte(latin1Declaration)) {
		t.Fatalf("expected coding declaration, program starts with %q", b[:16])
	}
	if !bytes.Contains(b, []byte{'\'', 0xE9, 'x'}) {
		t.Errorf("placeholder should be a single Latin-1 byte in %q", b)
	}
	if !bytes.Contains(b, []byte(`\u20ac`)) {
		t.Errorf("rune outside Latin-1 should be escaped in %q", b)
	}
	prog, err := Target{}.Parse(b)
	if err != nil {
		t.Fatal(err)
	}
	text, err := selfpack.Extract(prog)
	if err != nil {
		t.Fatal(err)
	}
	if text != "abxabxab€" {
		t.Errorf("decoded %q", text)
	}
}

func TestPackRoundTrip(t *testing.T) {
	texts := []string{
		"print('hello world'); print('hello world'); print('hello world')\n",
		"ababab",
		"the quick brown fox jumps over the lazy dog; the quick brown fox sleeps",
		"Grüße, Grüße, Grüße! €€€ 🚀🚀",
		"",
	}
	configs := []*selfpack.Config{
		selfpack.NewConfig(),
		selfpack.NewConfig(selfpack.WithExtendedAlphabet(true), selfpack.WithCostOrder(true)),
		selfpack.NewConfig(selfpack.WithHexEscape(0), selfpack.WithPrint(true)),
		selfpack.NewConfig(selfpack.WithFast(true), selfpack.WithSeed(7)),
	}
	for _, text := range texts {
		for i, cfg := range configs {
			out, err := selfpack.Run(context.Background(), text, Target{}, cfg)
			if err != nil {
				t.Fatalf("config %d: packing %q: %v", i, text, err)
			}
			prog, err := Target{}.Parse(out.Packed.Bytes())
			if err != nil {
				t.Fatalf("config %d: parsing packed %q: %v", i, text, err)
			}
			decoded, err := selfpack.Extract(prog)
			if err != nil {
				t.Fatalf("config %d: extracting %q: %v", i, text, err)
			}
			if decoded != text {
				t.Errorf("config %d: round trip of %q gives %q", i, text, decoded)
			}
		}
	}
}

func TestPackedProgramRuns(t *testing.T) {
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not found")
	}
	tests := []struct {
		text string
		cfg  *selfpack.Config
	}{
		{"to be or not to be, that is the question; to be or not to be\n", selfpack.NewConfig(selfpack.WithPrint(true))},
		{"Grüße, Grüße, Grüße! €€€ and 100% $$$ 100% $$$", selfpack.NewConfig(selfpack.WithPrint(true), selfpack.WithHexEscape(0))},
		{"ab'\"\\ ab'\"\\ ab'\"\\ \t\n\n", selfpack.NewConfig(selfpack.WithPrint(true), selfpack.WithExtendedAlphabet(true))},
		{"for i in range(3):\n    print('hi', i)\nfor i in range(3):\n    print('hi', i)\n", selfpack.NewConfig()},
	}
	dir := t.TempDir()
	for i, tt := range tests {
		out, err := selfpack.Run(context.Background(), tt.text, Target{}, tt.cfg)
		if err != nil {
			t.Fatal(err)
		}
		script := filepath.Join(dir, fmt.Sprintf("packed%d.py", i))
		if err := os.WriteFile(script, out.Packed.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
		cmd := exec.Command(python, script)
		cmd.Env = append(os.Environ(), "PYTHONIOENCODING=utf-8")
		output, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("case %d: %v\n%s", i, err, output)
		}
		expected := tt.text
		if !tt.cfg.Print {
			expected = "hi 0\nhi 1\nhi 2\nhi 0\nhi 1\nhi 2\n"
		}
		if string(output) != expected {
			t.Errorf("case %d: program writes %q, expected %q", i, output, expected)
		}
	}
}
