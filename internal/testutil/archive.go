package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// ZIP compression methods.
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
	MethodZstd    uint16 = 93
)

// ArchiveEntry describes one member of a generated archive.
type ArchiveEntry struct {
	// Name is the array name; ".npy" is appended unless RawName is set.
	Name    string
	RawName string

	// Data is the uncompressed member content, normally an encoded NPY array.
	Data   []byte
	Method uint16

	// Zip64 sentinels both 32-bit sizes and stores them in a zip64 extra record.
	Zip64 bool

	// Extra is placed in the extra field ahead of any zip64 record.
	Extra []byte
}

// Span locates one member inside the generated archive.
type Span struct {
	Header int64 // local header offset
	Data   int64 // first payload byte
	End    int64 // one past the last payload byte
}

// ArchiveFixture is a generated archive and the layout of its members.
type ArchiveFixture struct {
	Bytes []byte
	Spans []Span
}

// Archive encodes entries as a single-disk ZIP archive without comment.
func Archive(tb testing.TB, entries ...ArchiveEntry) ArchiveFixture {
	tb.Helper()

	var out bytes.Buffer
	var central bytes.Buffer
	spans := make([]Span, 0, len(entries))

	for _, e := range entries {
		name := e.RawName
		if name == "" {
			name = e.Name + ".npy"
		}
		payload := Compress(tb, e.Method, e.Data)
		crc := crc32.ChecksumIEEE(e.Data)

		csize, usize := uint32(len(payload)), uint32(len(e.Data))
		extra := append([]byte(nil), e.Extra...)
		if e.Zip64 {
			csize, usize = 0xFFFFFFFF, 0xFFFFFFFF
			extra = append(extra, Zip64Extra(uint64(len(e.Data)), uint64(len(payload)))...)
		}

		offset := int64(out.Len())
		out.Write(LocalHeader(name, e.Method, 0, crc, csize, usize, extra))
		dataStart := int64(out.Len())
		out.Write(payload)
		spans = append(spans, Span{Header: offset, Data: dataStart, End: int64(out.Len())})

		central.Write(centralHeader(name, e.Method, crc, csize, usize, extra, uint32(offset)))
	}

	cdOffset := out.Len()
	out.Write(central.Bytes())
	n := uint16(len(entries))
	out.Write(Footer(0, 0, n, n, uint32(central.Len()), uint32(cdOffset), ""))

	return ArchiveFixture{Bytes: out.Bytes(), Spans: spans}
}

// Compress encodes data with a ZIP compression method.
func Compress(tb testing.TB, method uint16, data []byte) []byte {
	tb.Helper()

	switch method {
	case MethodStore:
		return append([]byte(nil), data...)
	case MethodDeflate:
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.BestCompression)
		if err != nil {
			tb.Fatalf("flate writer: %v", err)
		}
		if _, err := w.Write(data); err != nil {
			tb.Fatalf("deflate: %v", err)
		}
		if err := w.Close(); err != nil {
			tb.Fatalf("deflate close: %v", err)
		}
		return buf.Bytes()
	case MethodZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			tb.Fatalf("zstd writer: %v", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil)
	default:
		tb.Fatalf("unknown compression method %d", method)
		return nil
	}
}

// LocalHeader encodes a 30-byte local file header followed by name and extra.
func LocalHeader(name string, method, flags uint16, crc, csize, usize uint32, extra []byte) []byte {
	var buf bytes.Buffer
	version := uint16(20)
	if csize == 0xFFFFFFFF || usize == 0xFFFFFFFF {
		version = 45
	}
	le(&buf, uint32(0x04034b50), version, flags, method, uint16(0), uint16(0x21),
		crc, csize, usize, uint16(len(name)), uint16(len(extra)))
	buf.WriteString(name)
	buf.Write(extra)
	return buf.Bytes()
}

// Zip64Extra encodes a zip64 extended information record holding both sizes.
func Zip64Extra(usize, csize uint64) []byte {
	var buf bytes.Buffer
	le(&buf, uint16(0x0001), uint16(16), usize, csize)
	return buf.Bytes()
}

// ExtraRecord encodes an arbitrary (id, payload) extra field record.
func ExtraRecord(id uint16, payload []byte) []byte {
	var buf bytes.Buffer
	le(&buf, id, uint16(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

// Footer encodes an end of central directory record.
func Footer(disk, cdDisk, onDisk, total uint16, cdSize, cdOffset uint32, comment string) []byte {
	var buf bytes.Buffer
	le(&buf, uint32(0x06054b50), disk, cdDisk, onDisk, total, cdSize, cdOffset, uint16(len(comment)))
	buf.WriteString(comment)
	return buf.Bytes()
}

func centralHeader(name string, method uint16, crc, csize, usize uint32, extra []byte, offset uint32) []byte {
	var buf bytes.Buffer
	le(&buf, uint32(0x02014b50), uint16(45), uint16(45), uint16(0), method, uint16(0), uint16(0x21),
		crc, csize, usize, uint16(len(name)), uint16(len(extra)), uint16(0),
		uint16(0), uint16(0), uint32(0), offset)
	buf.WriteString(name)
	buf.Write(extra)
	return buf.Bytes()
}

func le(buf *bytes.Buffer, fields ...any) {
	for _, f := range fields {
		// Writes to a bytes.Buffer of fixed-size values cannot fail.
		_ = binary.Write(buf, binary.LittleEndian, f)
	}
}
