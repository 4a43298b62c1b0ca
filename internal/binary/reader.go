// Package binary provides positioned little-endian field reads used to parse
// NPY headers and ZIP archive records.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Undefined32 is the all-ones value used by 32-bit ZIP size fields to mean
// "the real value lives in the zip64 extra record".
const Undefined32 = 0xFFFFFFFF

// ErrNegativeOffset is returned when a seek would move before the start of the source.
var ErrNegativeOffset = errors.New("negative offset")

// growChunk caps the first allocation of ReadN.
const growChunk = 1 << 20

// Reader reads fixed-width fields from an io.ReaderAt while tracking its own
// position. Readers created with At share the source but not the position.
type Reader struct {
	r   io.ReaderAt
	pos int64
}

// NewReader creates a reader positioned at offset 0.
func NewReader(r io.ReaderAt) *Reader {
	return &Reader{r: r}
}

// At returns a new reader positioned at the given offset.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, pos: offset}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Seek moves the reader to an absolute offset.
func (r *Reader) Seek(offset int64) error {
	if offset < 0 {
		return fmt.Errorf("seek to %d: %w", offset, ErrNegativeOffset)
	}
	r.pos = offset
	return nil
}

// ReadFull fills buf from the current position.
//
// It returns io.EOF only when no byte at all was available, and
// io.ErrUnexpectedEOF when the source ended part way through buf. The
// position advances by the number of bytes actually read.
func (r *Reader) ReadFull(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := r.r.ReadAt(buf, r.pos)
	r.pos += int64(n)
	if n == len(buf) {
		return n, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		if n == 0 {
			return 0, io.EOF
		}
		return n, io.ErrUnexpectedEOF
	}
	return n, err
}

// ReadBytes reads exactly n bytes from the current position.
// A source that ends early yields io.ErrUnexpectedEOF even when nothing was read.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf, err := ReadN(r.Section(int64(n)), n)
	r.pos += int64(len(buf))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// ReadN reads exactly n bytes from r into a buffer that grows with the bytes
// actually delivered, so a size taken from untrusted input costs no more
// memory than the source really holds. Errors follow io.ReadFull and come
// with the bytes read before them.
func ReadN(r io.Reader, n int) ([]byte, error) {
	if n <= 0 {
		return []byte{}, nil
	}
	buf := make([]byte, 0, min(n, growChunk))
	for len(buf) < n {
		if len(buf) == cap(buf) {
			buf = slices.Grow(buf, min(n-len(buf), len(buf)))
		}
		m, err := io.ReadFull(r, buf[len(buf):min(n, cap(buf))])
		buf = buf[:len(buf)+m]
		if err != nil {
			if errors.Is(err, io.EOF) && len(buf) > 0 {
				err = io.ErrUnexpectedEOF
			}
			return buf, err
		}
	}
	return buf, nil
}

// Section returns a reader over the next n bytes without advancing the position.
func (r *Reader) Section(n int64) *io.SectionReader {
	return io.NewSectionReader(r.r, r.pos, n)
}

// Fields decodes little-endian integers out of an in-memory record.
// Offsets outside the record are the caller's bug and panic like any slice access.
type Fields []byte

// Uint16 returns the 16-bit field at off.
func (f Fields) Uint16(off int) uint16 {
	return binary.LittleEndian.Uint16(f[off:])
}

// Uint32 returns the 32-bit field at off.
func (f Fields) Uint32(off int) uint32 {
	return binary.LittleEndian.Uint32(f[off:])
}

// Uint64 returns the 64-bit field at off.
func (f Fields) Uint64(off int) uint64 {
	return binary.LittleEndian.Uint64(f[off:])
}
