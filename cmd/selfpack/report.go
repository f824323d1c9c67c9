package main

import (
	"fmt"
	"io"

	"github.com/npillmayer/selfpack"
	"github.com/npillmayer/selfpack/baseline"
)

// histogramCutoff limits the histogram listing at verbosity 1 to rare runes.
const histogramCutoff = 16

func printEscaped(w io.Writer, out *selfpack.Outcome) {
	fmt.Fprintf(w, "\nChars replaced: %q\n", string(out.Escaped))
	fmt.Fprintf(w, "Placeholders freed up: %d\n", len(out.Escaped))
}

func printPlaceholders(w io.Writer, out *selfpack.Outcome, verbose int) {
	fmt.Fprintf(w, "\n%d valid placeholders found: %q\n", len(out.Keys), string(out.Keys))
	for _, bucket := range out.Histogram.Inverted() {
		if verbose < 2 && bucket.Count > histogramCutoff {
			break
		}
		verb := "appears"
		if len(bucket.Runes) > 1 {
			verb = "appear"
		}
		fmt.Fprintf(w, " # %q %s %s\n", string(bucket.Runes), verb, times(bucket.Count))
	}
}

func times(n int) string {
	switch n {
	case 1:
		return "once"
	case 2:
		return "twice"
	}
	return fmt.Sprintf("%d times", n)
}

func printSizes(w io.Writer, fileSize, codeSize int, out *selfpack.Outcome) {
	packed := out.Packed
	finalSize := packed.Size()
	gain := codeSize - finalSize
	fmt.Fprintf(w, "\nCompression stopped after %d rounds: %s\n", len(out.Result.Trace), out.Result.Stop)
	fmt.Fprintf(w, "\nFile size:    %4d bytes\n", fileSize)
	fmt.Fprintf(w, "Initial size: %4d bytes\n", codeSize)
	fmt.Fprintf(w, "Payload size: %4d bytes\n", len(packed.Program.Payload))
	fmt.Fprintf(w, "Escaped code: %4d bytes\n", packed.EscapedSize)
	fmt.Fprintf(w, "Decoder size: %4d bytes\n", packed.DecoderSize())
	fmt.Fprintf(w, "Final script: %4d bytes\n", finalSize)
	fmt.Fprintf(w, "\nTotal gain: %d bytes\n", gain)
	if gain < 0 {
		fmt.Fprintf(w, "\nWarning: File size increased during compression!\n")
	}
}

func printBaseline(w io.Writer, sizes []baseline.Size, finalSize int) {
	fmt.Fprintf(w, "\nGeneral purpose compressors (not self-decoding):\n")
	for _, s := range sizes {
		fmt.Fprintf(w, "  %-5s %6d bytes\n", s.Method, s.Bytes)
	}
	fmt.Fprintf(w, "  %-5s %6d bytes\n", "self", finalSize)
}
