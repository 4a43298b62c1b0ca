package archive

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/robert-malhotra/go-npy/internal/binary"
)

const (
	localHeaderLen = 30

	// zip64ExtraID tags the extended information extra record.
	zip64ExtraID = 0x0001

	// flagDataDescriptor marks sizes deferred to a trailing data descriptor.
	flagDataDescriptor = 0x0008

	// nameSuffixLen is the length of the ".npy" suffix every member carries.
	nameSuffixLen = 4
)

// Errors
var (
	ErrMalformedEntry = errors.New("malformed archive entry")
	ErrMalformedExtra = errors.New("malformed zip64 extra field")
	ErrDataDescriptor = errors.New("entry sizes deferred to a data descriptor")
)

// Entry describes one archive member found by a scan.
type Entry struct {
	// Name is the member name with its 4-character suffix removed.
	Name string

	Method           uint16
	Flags            uint16
	CompressedSize   uint64
	UncompressedSize uint64

	// HeaderOffset is where the local header starts, DataOffset where the
	// payload starts (immediately after the extra field).
	HeaderOffset int64
	DataOffset   int64
}

// End returns the offset one past the last payload byte.
func (e *Entry) End() int64 {
	return e.DataOffset + int64(e.CompressedSize)
}

// sizeField is a 32-bit size from a local header that either holds the value
// or defers to the zip64 record.
type sizeField uint32

func (s sizeField) seeExtension() bool {
	return s == binary.Undefined32
}

// NextEntry decodes the local header at the reader's position and leaves the
// reader at the start of the payload.
//
// It returns (nil, nil) when the scan is over: either no byte is left, or the
// header signature does not match. A header cut short part way through is an
// error.
func NextEntry(r *binary.Reader) (*Entry, error) {
	start := r.Pos()

	buf := make([]byte, localHeaderLen)
	if _, err := r.ReadFull(buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading local header at %d: %w", start, err)
	}
	if buf[2] != 0x03 || buf[3] != 0x04 {
		return nil, nil
	}

	f := binary.Fields(buf)
	e := &Entry{
		Flags:        f.Uint16(6),
		Method:       f.Uint16(8),
		HeaderOffset: start,
	}
	csize := sizeField(f.Uint32(18))
	usize := sizeField(f.Uint32(22))
	nameLen := int(f.Uint16(26))
	extraLen := int(f.Uint16(28))

	name, err := r.ReadBytes(nameLen)
	if err != nil {
		return nil, fmt.Errorf("reading entry name at %d: %w", start, err)
	}
	if nameLen < nameSuffixLen {
		return nil, fmt.Errorf("%w: name %q at %d is shorter than its suffix", ErrMalformedEntry, name, start)
	}
	e.Name = string(name[:nameLen-nameSuffixLen])

	extra, err := r.ReadBytes(extraLen)
	if err != nil {
		return nil, fmt.Errorf("reading extra field of %q: %w", e.Name, err)
	}

	e.UncompressedSize, e.CompressedSize, err = resolveSizes(usize, csize, extra)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", e.Name, err)
	}
	if e.Flags&flagDataDescriptor != 0 && e.CompressedSize == 0 && e.UncompressedSize == 0 {
		return nil, fmt.Errorf("%w: %q", ErrDataDescriptor, e.Name)
	}

	e.DataOffset = r.Pos()
	if e.CompressedSize > uint64(math.MaxInt64-e.DataOffset) {
		return nil, fmt.Errorf("%w: %q compressed size %d overflows offset", ErrMalformedEntry, e.Name, e.CompressedSize)
	}
	return e, nil
}

// resolveSizes returns the concrete uncompressed and compressed sizes,
// reading the zip64 record when either declared field is sentineled.
func resolveSizes(usize, csize sizeField, extra []byte) (uint64, uint64, error) {
	u, c := uint64(usize), uint64(csize)
	if !usize.seeExtension() && !csize.seeExtension() {
		return u, c, nil
	}

	f := binary.Fields(extra)
	for off := 0; off < len(f); {
		if len(f)-off < 4 {
			return 0, 0, fmt.Errorf("%w: %d trailing bytes", ErrMalformedExtra, len(f)-off)
		}
		id, size := f.Uint16(off), int(f.Uint16(off+2))
		body := off + 4
		if size > len(f)-body {
			return 0, 0, fmt.Errorf("%w: record 0x%04x claims %d bytes, %d available", ErrMalformedExtra, id, size, len(f)-body)
		}
		if id != zip64ExtraID {
			off = body + size
			continue
		}

		// Only sentineled fields are present, uncompressed first.
		rec := f[body : body+size]
		pos := 0
		if usize.seeExtension() {
			if len(rec)-pos < 8 {
				return 0, 0, fmt.Errorf("%w: no room for uncompressed size in %d-byte record", ErrMalformedExtra, size)
			}
			u = rec.Uint64(pos)
			pos += 8
		}
		if csize.seeExtension() {
			if len(rec)-pos < 8 {
				return 0, 0, fmt.Errorf("%w: no room for compressed size in %d-byte record", ErrMalformedExtra, size)
			}
			c = rec.Uint64(pos)
		}
		return u, c, nil
	}
	return 0, 0, fmt.Errorf("%w: sizes deferred but no zip64 record present", ErrMalformedExtra)
}
