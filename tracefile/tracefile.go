/*
Package tracefile stores the decode trace of a compression run in protobuf
wire format, for later inspection or comparison between runs.

The format corresponds to this message definition:

	message Trace {
		repeated Round rounds = 1; // most recent first
		fixed64 digest = 2;
		int32 stop = 3;
	}
	message Round {
		uint32 placeholder = 1;
		string definition = 2;
		sint64 score = 3;
		uint64 start = 4;
		uint64 size = 5;
	}

Unknown fields are skipped when reading.
*/
package tracefile

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/npillmayer/selfpack"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrCorruptTrace is returned for data which is not a valid trace file.
var ErrCorruptTrace = errors.New("corrupt trace file")

const (
	traceRounds protowire.Number = 1
	traceDigest protowire.Number = 2
	traceStop   protowire.Number = 3
)

const (
	roundPlaceholder protowire.Number = 1
	roundDefinition  protowire.Number = 2
	roundScore       protowire.Number = 3
	roundStart       protowire.Number = 4
	roundSize        protowire.Number = 5
)

// File is the content of a trace file.
type File struct {
	Trace  selfpack.Trace
	Digest uint64
	Stop   selfpack.Stop
}

// Marshal encodes the trace of res.
func Marshal(res *selfpack.Result) []byte {
	var b []byte
	for _, r := range res.Trace {
		b = protowire.AppendTag(b, traceRounds, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalRound(r))
	}
	b = protowire.AppendTag(b, traceDigest, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, res.Digest)
	b = protowire.AppendTag(b, traceStop, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(res.Stop))
	return b
}

func marshalRound(r selfpack.Round) []byte {
	var b []byte
	b = protowire.AppendTag(b, roundPlaceholder, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Placeholder))
	b = protowire.AppendTag(b, roundDefinition, protowire.BytesType)
	b = protowire.AppendString(b, r.Definition)
	b = protowire.AppendTag(b, roundScore, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(r.Score)))
	b = protowire.AppendTag(b, roundStart, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Start))
	b = protowire.AppendTag(b, roundSize, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Size))
	return b
}

// Unmarshal decodes a trace file.
func Unmarshal(b []byte) (*File, error) {
	f := &File{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseError(n)
		}
		b = b[n:]
		switch {
		case num == traceRounds && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, parseError(n)
			}
			r, err := unmarshalRound(v)
			if err != nil {
				return nil, err
			}
			f.Trace = append(f.Trace, r)
			b = b[n:]
		case num == traceDigest && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, parseError(n)
			}
			f.Digest = v
			b = b[n:]
		case num == traceStop && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, parseError(n)
			}
			f.Stop = selfpack.Stop(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, parseError(n)
			}
			b = b[n:]
		}
	}
	return f, nil
}

func unmarshalRound(b []byte) (selfpack.Round, error) {
	var r selfpack.Round
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return r, parseError(n)
		}
		b = b[n:]
		if num == roundDefinition && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return r, parseError(n)
			}
			if !utf8.Valid(v) {
				return r, fmt.Errorf("%w: definition is not UTF-8", ErrCorruptTrace)
			}
			r.Definition = string(v)
			b = b[n:]
			continue
		}
		if typ != protowire.VarintType {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return r, parseError(n)
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return r, parseError(n)
		}
		b = b[n:]
		switch num {
		case roundPlaceholder:
			r.Placeholder = rune(v)
		case roundScore:
			r.Score = int(protowire.DecodeZigZag(v))
		case roundStart:
			r.Start = int(v)
		case roundSize:
			r.Size = int(v)
		}
	}
	return r, nil
}

func parseError(n int) error {
	return fmt.Errorf("%w: %v", ErrCorruptTrace, protowire.ParseError(n))
}
