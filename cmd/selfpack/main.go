// selfpack - packs a text file into a self-decoding program
//
// Usage:
//
//	selfpack [-m] [-x] [-X] [-f] [-p] [-c] [-v ...] [-o outfile] [-t target]
//	         [-e char] [-g gain] [-seed n] [-trace file] [-baseline] infile
//	selfpack -d [-t target] [-o outfile] packedfile
//
// The default target is python: the output is a Python 3 script which
// decompresses and runs the input script. With -p the output prints the
// input text instead. Target js emits JavaScript.
//
// Option -d reverses packing: it extracts the original text from a program
// written by selfpack.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/selfpack"
	"github.com/npillmayer/selfpack/baseline"
	"github.com/npillmayer/selfpack/javascript"
	"github.com/npillmayer/selfpack/python"
	"github.com/npillmayer/selfpack/tracefile"
)

var traceKeys = []string{"selfpack", "selfpack.python", "selfpack.js"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// verbosity counts repetitions of a boolean flag; -v=n sets it to n.
type verbosity int

func (v *verbosity) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosity) Set(s string) error {
	if s == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid verbosity %q", s)
	}
	*v = verbosity(n)
	return nil
}

func (v *verbosity) IsBoolFlag() bool { return true }

type options struct {
	outfile   string
	minify    bool
	hex       bool
	escape    string
	extended  bool
	costOrder bool
	fast      bool
	verbose   verbosity
	gain      int
	seed      uint64
	target    string
	print     bool
	traceFile string
	baseline  bool
	decode    bool
}

func parseArgs(args []string, stderr io.Writer) (*options, string, error) {
	opts := &options{}
	fs := flag.NewFlagSet("selfpack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.outfile, "o", "", "specify the output `file`")
	fs.BoolVar(&opts.minify, "m", false, "minify python script before compressing")
	fs.BoolVar(&opts.hex, "x", false, "turn rare chars into hex numbers")
	fs.StringVar(&opts.escape, "e", string(selfpack.DefaultEscape), "escape `char` for -x")
	fs.BoolVar(&opts.extended, "X", false, "use 8-bit placeholders")
	fs.BoolVar(&opts.costOrder, "c", false, "prefer placeholders which are cheap to quote")
	fs.BoolVar(&opts.fast, "f", false, "enable fast compression mode for testing purposes")
	fs.Var(&opts.verbose, "v", "increase verbosity level (can be set multiple times)")
	fs.IntVar(&opts.gain, "g", 1, "minimum `gain` of a substitution")
	fs.Uint64Var(&opts.seed, "seed", 0, "`seed` for the placeholder order")
	fs.StringVar(&opts.target, "t", "python", "`target` language: python or js")
	fs.BoolVar(&opts.print, "p", false, "print the text instead of executing it")
	fs.StringVar(&opts.traceFile, "trace", "", "write the decode trace to `file`")
	fs.BoolVar(&opts.baseline, "baseline", false, "compare with general purpose compressors")
	fs.BoolVar(&opts.decode, "d", false, "extract the text from a packed program")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: selfpack [-m] [-x] [-X] [-f] [-p] [-c] [-d] [-v ...] [-o outfile] [-t target] infile\n\n")
		fmt.Fprintf(stderr, "a small and simple script packer\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, "", errors.New("expected exactly one infile")
	}
	return opts, fs.Arg(0), nil
}

func selectTarget(name string) (selfpack.Target, error) {
	switch name {
	case "python", "py":
		return python.Target{}, nil
	case "js", "javascript":
		return javascript.Target{}, nil
	}
	return nil, fmt.Errorf("unknown target %q", name)
}

func (o *options) config() (*selfpack.Config, error) {
	opts := []selfpack.Option{
		selfpack.WithFast(o.fast),
		selfpack.WithMinGain(o.gain),
		selfpack.WithExtendedAlphabet(o.extended),
		selfpack.WithCostOrder(o.costOrder),
		selfpack.WithSeed(o.seed),
		selfpack.WithPrint(o.print),
	}
	if o.hex {
		esc, size := utf8.DecodeRuneInString(o.escape)
		if size == 0 || size != len(o.escape) {
			return nil, fmt.Errorf("escape must be a single character, is %q", o.escape)
		}
		opts = append(opts, selfpack.WithHexEscape(esc))
	}
	return selfpack.NewConfig(opts...), nil
}

func setTraceLevel(v verbosity) {
	level := tracing.LevelError
	switch {
	case v >= 2:
		level = tracing.LevelDebug
	case v == 1:
		level = tracing.LevelInfo
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, infile, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}
	setTraceLevel(opts.verbose)
	target, err := selectTarget(opts.target)
	if err != nil {
		fmt.Fprintf(stderr, "selfpack: %v\n", err)
		return 2
	}
	if opts.decode {
		err = decode(infile, target, opts, stdout)
	} else {
		err = pack(ctx, infile, target, opts, stdout, stderr)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintf(stderr, "\nselfpack: program has been stopped by user\n")
		} else {
			fmt.Fprintf(stderr, "selfpack: %v\n", err)
		}
		return 1
	}
	return 0
}

func pack(ctx context.Context, infile string, target selfpack.Target, opts *options,
	stdout, stderr io.Writer) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	verbose := int(opts.verbose)
	text, err := readText(infile)
	if err != nil {
		return err
	}
	fileSize := len(text)
	if opts.minify {
		text = minify(text, target, opts.fast, stderr)
	}
	out, err := selfpack.Run(ctx, text, target, cfg)
	if err != nil {
		return err
	}
	if verbose > 0 {
		if cfg.HexEscape {
			printEscaped(stdout, out)
		}
		printPlaceholders(stdout, out, verbose)
		printSizes(stdout, fileSize, len(text), out)
	}
	if opts.baseline {
		sizes, err := baseline.Measure([]byte(text))
		if err != nil {
			return err
		}
		printBaseline(stdout, sizes, out.Packed.Size())
	}
	// the trace goes first: a failing run leaves no packed output behind
	if opts.traceFile != "" {
		if err := writeOutput(opts.traceFile, tracefile.Marshal(out.Result)); err != nil {
			return err
		}
	}
	outfile := opts.outfile
	if outfile == "" {
		outfile = defaultOutfile(target)
	}
	if err := writeOutput(outfile, out.Packed.Bytes()); err != nil {
		return err
	}
	if verbose > 0 {
		fmt.Fprintf(stdout, "\nSaved compressed script to %q\n", outfile)
	}
	return nil
}

// minify returns the minified text, or text itself if it is not Python.
func minify(text string, target selfpack.Target, fast bool, stderr io.Writer) string {
	if target.Name() != "python" {
		fmt.Fprintf(stderr, "Warning: minification is only available for python.\n")
		return text
	}
	minified, err := python.Minify(text, fast)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: Failed to parse input file as python code.\n")
		fmt.Fprintf(stderr, "Continuing without Python script optimization.\n")
		return text
	}
	return minified
}

func defaultOutfile(target selfpack.Target) string {
	if target.Name() == "js" {
		return ".selfpack.out.js"
	}
	return ".selfpack.out.py"
}

func decode(infile string, target selfpack.Target, opts *options, stdout io.Writer) error {
	src, err := readInput(infile)
	if err != nil {
		return err
	}
	prog, err := target.Parse(src)
	if err != nil {
		return err
	}
	text, err := selfpack.Extract(prog)
	if err != nil {
		return err
	}
	if opts.outfile == "" {
		_, err = io.WriteString(stdout, text)
		return err
	}
	return writeOutput(opts.outfile, []byte(text))
}
