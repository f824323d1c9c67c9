package python

import (
	"errors"
	"testing"
)

func TestMinify(t *testing.T) {
	tests := []struct {
		src, out string
	}{
		{"x = 1  # one\n", "x=1\n"},
		{"#!/usr/bin/env python\n\n\nprint( 'hi' )\n", "print('hi')\n"},
		{"def f(a, b):\n    # sum\n\n    return a + b\n", "def f(a,b):\n return a+b\n"},
		{"if x:\n\tif y:\n\t\tz()\n\tw()\n", "if x:\n if y:\n  z()\n w()\n"},
		{"for i in r'ab':\n    'doc'\n    pass\n", "for i in r'ab':\n 'doc'\n pass\n"},
		{"s = '' ''\n", "s='' ''\n"},
		{"x = 1 .real\n", "x=1 .real\n"},
		{"y = not -x\n", "y=not-x\n"},
		{"f(a,\n  b)\n", "f(a,b)\n"},
		{"s = '''a\n  b'''\n", "s='''a\n  b'''\n"},
		{"x = a if b else'c'\n", "x=a if b else'c'\n"},
	}
	for _, tt := range tests {
		out, err := Minify(tt.src, false)
		if err != nil {
			t.Fatalf("minifying %q failed: %v", tt.src, err)
		}
		if out != tt.out {
			t.Errorf("minified %q is %q, expected %q", tt.src, out, tt.out)
		}
	}
}

func TestMinifyIsFixpoint(t *testing.T) {
	src := "class A:\n    def f(self):\n        return [1, 2,\n                3]\n"
	once, err := Minify(src, true)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Minify(once, true)
	if err != nil {
		t.Fatal(err)
	}
	if once != twice {
		t.Errorf("second pass changed %q to %q", once, twice)
	}
	full, _ := Minify(src, false)
	if full != once {
		t.Errorf("repeated minification should stop at %q, is %q", once, full)
	}
}

func TestMinifyUnparsable(t *testing.T) {
	out, err := Minify("Hello, $world!\n", false)
	if !errors.Is(err, ErrUnparsable) {
		t.Fatalf("expected ErrUnparsable, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no output on failure, have %q", out)
	}
}
