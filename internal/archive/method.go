package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"

	"github.com/robert-malhotra/go-npy/internal/binary"
)

// Compression methods.
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
	MethodZstd    uint16 = 93
)

// Errors
var (
	ErrUnsupportedMethod = errors.New("unsupported compression method")
	ErrDecompression     = errors.New("decompression failed")
)

// Decompressor wraps a compressed payload in a stream of its decoded bytes.
type Decompressor func(r io.Reader) (io.ReadCloser, error)

// Registry maps compression methods to decompressors.
var Registry = map[uint16]Decompressor{
	MethodDeflate: func(r io.Reader) (io.ReadCloser, error) {
		return flate.NewReader(r), nil
	},
	MethodZstd: func(r io.Reader) (io.ReadCloser, error) {
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	},
}

// methodNames names known methods for error messages.
var methodNames = map[uint16]string{
	MethodStore:   "stored",
	MethodDeflate: "deflate",
	9:             "deflate64",
	12:            "bzip2",
	14:            "lzma",
	MethodZstd:    "zstd",
	95:            "xz",
}

// MethodName returns a readable name for a compression method.
func MethodName(method uint16) string {
	if name, ok := methodNames[method]; ok {
		return name
	}
	return fmt.Sprintf("method %d", method)
}

// Supported reports whether payloads of the method can be read.
func Supported(method uint16) bool {
	if method == MethodStore {
		return true
	}
	_, ok := Registry[method]
	return ok
}

// Inflate decodes a compressed payload that must expand to exactly size bytes.
// Stored payloads need no decoding and are not accepted. The output grows as
// the stream is decoded, so a declared size the stream does not back costs no
// more than the stream produces.
func Inflate(method uint16, compressed []byte, size int) ([]byte, error) {
	dec, ok := Registry[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, MethodName(method))
	}
	rc, err := dec(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer rc.Close()

	out, err := binary.ReadN(rc, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %s produced %d of %d bytes: %v", ErrDecompression, MethodName(method), len(out), size, err)
	}

	// The stream must end exactly at the declared size.
	var probe [1]byte
	n, err := io.ReadFull(rc, probe[:])
	switch {
	case n > 0:
		return nil, fmt.Errorf("%w: %s output exceeds %d bytes", ErrDecompression, MethodName(method), size)
	case !errors.Is(err, io.EOF):
		return nil, fmt.Errorf("%w: %s: %v", ErrDecompression, MethodName(method), err)
	}
	return out, nil
}
