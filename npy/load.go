package npy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/robert-malhotra/go-npy/internal/archive"
	"github.com/robert-malhotra/go-npy/internal/binary"
	"github.com/robert-malhotra/go-npy/internal/header"
)

// maxHeaderBytes is the most an encoded header can add in front of a payload.
const maxHeaderBytes = header.PrefixLen + 4 + header.MaxTextLen

// Load decodes one array from r, which must be positioned at the magic.
// Exactly the header and payload are consumed.
func Load(r io.Reader, opts ...Option) (*Array, error) {
	return newOptions(opts).readDirect(r, -1)
}

// LoadFile reads a standalone .npy file.
func LoadFile(path string, opts ...Option) (*Array, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	a, err := newOptions(opts).readDirect(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path) //nolint:gosec // caller-supplied path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return f, nil
}

// payloadSize checks a decoded header against the configured limit and
// returns its payload size.
func (o *options) payloadSize(h *header.Header) (int, error) {
	n, err := h.NumBytes()
	if err != nil {
		return 0, err
	}
	if n > o.maxArrayBytes {
		return 0, fmt.Errorf("%w: %d-byte payload exceeds limit of %d", ErrSizeOverflow, n, o.maxArrayBytes)
	}
	return toInt(n)
}

// memberLimit bounds the sizes an archive member may declare.
func (o *options) memberLimit() uint64 {
	if o.maxArrayBytes > math.MaxUint64-maxHeaderBytes {
		return math.MaxUint64
	}
	return o.maxArrayBytes + maxHeaderBytes
}

func toInt(n uint64) (int, error) {
	if n > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d bytes", ErrSizeOverflow, n)
	}
	return int(n), nil
}

// readDirect decodes a header from r and reads exactly the payload it declares.
// avail is the number of bytes r holds, or -1 when unknown; a known size is
// checked before the payload is allocated.
func (o *options) readDirect(r io.Reader, avail int64) (*Array, error) {
	h, err := header.Read(r)
	if err != nil {
		return nil, shortRead(err, "header")
	}
	n, err := o.payloadSize(h)
	if err != nil {
		return nil, err
	}

	var data []byte
	if avail >= 0 {
		if rest := avail - int64(h.Len); int64(n) > rest {
			return nil, fmt.Errorf("%w: payload needs %d bytes, %d remain: %w",
				ErrShortRead, n, max(rest, 0), io.ErrUnexpectedEOF)
		}
		data = make([]byte, n)
		_, err = io.ReadFull(r, data)
	} else {
		data, err = binary.ReadN(r, n)
	}
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: payload of %d bytes: %w", ErrShortRead, n, io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	return newArray(h, data), nil
}

// readCompressed expands an archive member and decodes the array it holds.
// The payload is taken from where the header ended and must fill the rest of
// the expanded member exactly.
func (o *options) readCompressed(e *archive.Entry, compressed []byte) (*Array, error) {
	size, err := toInt(e.UncompressedSize)
	if err != nil {
		return nil, err
	}
	buf, err := archive.Inflate(e.Method, compressed, size)
	if err != nil {
		return nil, err
	}

	h, err := header.Decode(buf)
	if err != nil {
		return nil, err
	}
	n, err := o.payloadSize(h)
	if err != nil {
		return nil, err
	}
	payload := buf[h.Len:]
	if len(payload) != n {
		return nil, fmt.Errorf("%w: %d bytes follow the header, expected %d", ErrCorrupt, len(payload), n)
	}

	data := make([]byte, n)
	copy(data, payload)
	o.log().Debug("expanded entry",
		slog.String("name", e.Name),
		slog.String("method", archive.MethodName(e.Method)),
		slog.Uint64("compressed", e.CompressedSize),
		slog.Int("payload", n))
	return newArray(h, data), nil
}
