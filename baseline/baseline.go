// Package baseline measures general purpose compressors on a payload, to put
// the size of a self-decoding program into perspective.
//
// None of these formats is self-decoding; the sizes exclude any decompressor.
package baseline

import (
	"bytes"
	"compress/gzip"
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Size is the compressed size of a payload under one method.
type Size struct {
	Method string
	Bytes  int
}

type compressor struct {
	name     string
	compress func([]byte) ([]byte, error)
}

var compressors = []compressor{
	{"gzip", compressGzip},
	{"zstd", compressZstd},
	{"s2", compressS2},
	{"lz4", compressLZ4},
	{"xz", compressXZ},
}

// Measure compresses data with every baseline method.
func Measure(data []byte) ([]Size, error) {
	sizes := make([]Size, 0, len(compressors))
	for _, c := range compressors {
		out, err := c.compress(data)
		if err != nil {
			return nil, fmt.Errorf("baseline %s: %w", c.name, err)
		}
		sizes = append(sizes, Size{Method: c.name, Bytes: len(out)})
	}
	return sizes, nil
}

func compressGzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func compressZstd(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, err
	}
	defer encoder.Close()
	return encoder.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func compressS2(data []byte) ([]byte, error) {
	return s2.EncodeBest(nil, data), nil
}

// compressLZ4 produces a raw LZ4 block. Incompressible data is stored as is.
func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return data, nil
	}
	return compressed[:n], nil
}

func compressXZ(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
