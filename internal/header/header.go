// Package header decodes the self-describing header that precedes the data
// of an NPY array.
//
// The encoded header is a fixed prefix (6-byte magic, major and minor version),
// a little-endian length field (16 bits for version 1, 32 bits for versions 2
// and 3), then that many bytes of a Python dict literal such as
//
//	{'descr': '<f8', 'fortran_order': False, 'shape': (3, 4), }
package header

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-npy/internal/dtype"
)

// Magic is the signature at the start of every NPY array.
var Magic = []byte{0x93, 'N', 'U', 'M', 'P', 'Y'}

// PrefixLen is the size of the magic plus the two version bytes.
const PrefixLen = 8

// MaxTextLen bounds the dict text a header may declare.
const MaxTextLen = 1 << 20

// Errors
var (
	ErrNotNPY             = errors.New("not an NPY array: magic not found")
	ErrUnsupportedVersion = errors.New("unsupported NPY format version")
	ErrMissingKey         = errors.New("failed to find header keyword")
	ErrMalformed          = errors.New("malformed header")
	ErrUnsupportedDtype   = errors.New("unsupported dtype")
	ErrByteOrder          = errors.New("unsupported byte order")
	ErrSizeOverflow       = errors.New("array size overflows")
)

// Header is the decoded description of one array.
type Header struct {
	// Major and Minor are the format version from the prefix.
	Major uint8
	Minor uint8

	// ByteOrder is the declared marker, '<' or '|'.
	ByteOrder byte

	// TypeCode is the one-letter code from descr, e.g. 'f'.
	TypeCode byte

	// WordSize is the width of one element in bytes.
	WordSize int

	Dtype        dtype.Dtype
	FortranOrder bool

	// Shape lists dimension sizes; empty for a scalar.
	Shape []int

	// Len is the number of bytes the encoded header occupied, so the element
	// data starts Len bytes after the magic. Zero when built by Parse.
	Len int
}

// NumElements returns the product of the shape, 1 for a scalar.
func (h *Header) NumElements() (uint64, error) {
	n := uint64(1)
	for _, d := range h.Shape {
		hi, lo := bits.Mul64(n, uint64(d))
		if hi != 0 {
			return 0, fmt.Errorf("%w: shape %v", ErrSizeOverflow, h.Shape)
		}
		n = lo
	}
	return n, nil
}

// NumBytes returns the exact payload size: element count times word size.
func (h *Header) NumBytes() (uint64, error) {
	n, err := h.NumElements()
	if err != nil {
		return 0, err
	}
	hi, lo := bits.Mul64(n, uint64(h.WordSize))
	if hi != 0 {
		return 0, fmt.Errorf("%w: shape %v with word size %d", ErrSizeOverflow, h.Shape, h.WordSize)
	}
	return lo, nil
}

// lengthFieldSize returns the width of the header length field for a major version.
func lengthFieldSize(major uint8) (int, error) {
	switch major {
	case 1:
		return 2, nil
	case 2, 3:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, major)
	}
}

// Read consumes an encoded header from a sequential stream and leaves r
// positioned at the first byte of element data.
func Read(r io.Reader) (*Header, error) {
	prefix := make([]byte, PrefixLen)
	if err := readFull(r, prefix); err != nil {
		return nil, fmt.Errorf("reading prefix: %w", err)
	}
	if !bytes.Equal(prefix[:len(Magic)], Magic) {
		return nil, ErrNotNPY
	}
	major, minor := prefix[6], prefix[7]

	fieldSize, err := lengthFieldSize(major)
	if err != nil {
		return nil, err
	}
	field := make([]byte, fieldSize)
	if err := readFull(r, field); err != nil {
		return nil, fmt.Errorf("reading header length: %w", err)
	}
	var textLen uint32
	if fieldSize == 2 {
		textLen = uint32(binary.LittleEndian.Uint16(field))
	} else {
		textLen = binary.LittleEndian.Uint32(field)
	}
	if textLen > MaxTextLen {
		return nil, fmt.Errorf("%w: header length %d exceeds %d", ErrMalformed, textLen, MaxTextLen)
	}

	text := make([]byte, textLen)
	if err := readFull(r, text); err != nil {
		return nil, fmt.Errorf("reading header text (%d bytes): %w", textLen, err)
	}

	h, err := Parse(string(text))
	if err != nil {
		return nil, err
	}
	h.Major = major
	h.Minor = minor
	h.Len = PrefixLen + fieldSize + int(textLen)
	return h, nil
}

// Decode parses a header resident at the start of buf. The element data
// begins at buf[h.Len:].
func Decode(buf []byte) (*Header, error) {
	return Read(bytes.NewReader(buf))
}

// readFull is io.ReadFull with an empty stream reported as truncation too.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// Parse decodes the dict text of a header. Version and Len are left zero.
func Parse(text string) (*Header, error) {
	h := &Header{}

	order, err := value(text, "fortran_order")
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(order, "True"):
		h.FortranOrder = true
	case strings.HasPrefix(order, "False"):
		h.FortranOrder = false
	default:
		return nil, fmt.Errorf("%w: fortran_order is %.8q", ErrMalformed, order)
	}

	descr, err := value(text, "descr")
	if err != nil {
		return nil, err
	}
	if err := h.parseDescr(descr); err != nil {
		return nil, err
	}

	shape, err := value(text, "shape")
	if err != nil {
		return nil, err
	}
	if h.Shape, err = ParseShape(shape); err != nil {
		return nil, err
	}
	return h, nil
}

// value returns the text following "key":, with surrounding quotes and
// blanks skipped.
func value(text, key string) (string, error) {
	i := strings.Index(text, key)
	if i < 0 {
		return "", fmt.Errorf("%w: '%s'", ErrMissingKey, key)
	}
	rest := strings.TrimLeft(text[i+len(key):], `'" `)
	if !strings.HasPrefix(rest, ":") {
		return "", fmt.Errorf("%w: no ':' after '%s'", ErrMalformed, key)
	}
	return strings.TrimLeft(rest[1:], " "), nil
}

// parseDescr decodes a quoted "<f8" style descriptor into byte order, code,
// word size and Dtype.
func (h *Header) parseDescr(v string) error {
	if v == "" || (v[0] != '\'' && v[0] != '"') {
		return fmt.Errorf("%w: descr %.32s is not a simple type string", ErrUnsupportedDtype, v)
	}
	quote := v[0]
	end := strings.IndexByte(v[1:], quote)
	if end < 0 {
		return fmt.Errorf("%w: unterminated descr", ErrMalformed)
	}
	body := v[1 : 1+end]
	if len(body) < 2 {
		return fmt.Errorf("%w: descr %q too short", ErrMalformed, body)
	}

	h.ByteOrder = body[0]
	if h.ByteOrder != '<' && h.ByteOrder != '|' {
		return fmt.Errorf("%w: %q in descr %q", ErrByteOrder, h.ByteOrder, body)
	}
	h.TypeCode = body[1]

	width, err := strconv.Atoi(body[2:])
	if err != nil || width <= 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedDtype, body[1:])
	}
	d, ok := dtype.Lookup(h.TypeCode, width)
	if !ok {
		return fmt.Errorf("%w: %c%d", ErrUnsupportedDtype, h.TypeCode, width)
	}

	// U<n> counts UCS-4 code points.
	if d == dtype.Unicode {
		if width > math.MaxInt/4 {
			return fmt.Errorf("%w: %s", ErrSizeOverflow, body)
		}
		width *= 4
	}
	h.WordSize = width
	h.Dtype = d
	return nil
}

// ParseShape tokenizes a parenthesized tuple such as "(3, 4)" into its
// dimensions. It collects runs of decimal digits up to the closing ')' and
// skips everything else, so "(3,)" is [3], "()" is empty and a legacy
// "(3L, 4L)" is [3 4].
func ParseShape(s string) ([]int, error) {
	if !strings.HasPrefix(s, "(") {
		return nil, fmt.Errorf("%w: shape %.16q is not a tuple", ErrMalformed, s)
	}

	shape := []int{}
	dim, inDigits := 0, false
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			if dim > (math.MaxInt-int(c-'0'))/10 {
				return nil, fmt.Errorf("%w: dimension in %s", ErrSizeOverflow, s[:i+1])
			}
			dim = dim*10 + int(c-'0')
			inDigits = true
			continue
		}
		if inDigits {
			shape = append(shape, dim)
			dim, inDigits = 0, false
		}
		if c == ')' {
			return shape, nil
		}
	}
	return nil, fmt.Errorf("%w: shape tuple not closed", ErrMalformed)
}
