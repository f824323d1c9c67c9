/*
Package selfpack compacts text by replacing repeated substrings with
single-character placeholders and wraps the result into a small program that
undoes the substitutions when it runs.

The compressor is greedy: every round picks the best scoring repeated
substring of the current payload, replaces all of its non-overlapping
occurrences by a placeholder character that does not occur in the payload and
appends the substring itself behind one more placeholder. The payload thus
carries its own dictionary. A decoder splits on the placeholder, pops the last
piece (the definition) and joins the remaining pieces with it. Rounds nest, so
a decoder has to process placeholders most recent first; the Trace produced by
Compress is already in that order.

Rendering the decoder is left to a Target. Package python emits a Python 3
program, package javascript a JavaScript one.

	payload := []rune(text)
	cfg := selfpack.NewConfig(selfpack.WithSeed(7))
	keys := selfpack.Placeholders(payload, python.Target{}, cfg)
	res := selfpack.Compress(payload, keys, cfg)
	packed, err := selfpack.Pack(res, python.Target{}, cfg)

Run wraps these steps, including the optional rare-character escaping, into
one call.

This is not a general purpose compression format. It is meant for small to
medium sized source-like texts, where a self-contained human readable decoder
matters more than the compression ratio.

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package selfpack

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'selfpack'
func tracer() tracing.Trace {
	return tracing.Select("selfpack")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
