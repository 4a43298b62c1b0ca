package binary

import (
	"bytes"
	"errors"
	"io"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bytesReaderAt wraps a byte slice to implement io.ReaderAt.
type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// failingReaderAt returns a fixed error for every read.
type failingReaderAt struct{ err error }

func (f failingReaderAt) ReadAt([]byte, int64) (int, error) { return 0, f.err }

func TestReaderReadBytes(t *testing.T) {
	r := NewReader(bytesReaderAt{0x02, 0x01, 0xFF, 0xFF, 0x7F})

	b, err := r.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01}, b)
	assert.Equal(t, uint16(0x0102), Fields(b).Uint16(0))
	assert.Equal(t, int64(2), r.Pos())

	b, err = r.ReadBytes(0)
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.Equal(t, int64(2), r.Pos())
}

func TestReaderReadFullDistinguishesEndFromTruncation(t *testing.T) {
	data := bytesReaderAt{1, 2, 3}

	tests := []struct {
		name    string
		offset  int64
		size    int
		wantN   int
		wantErr error
	}{
		{"complete", 0, 3, 3, nil},
		{"clean end", 3, 4, 0, io.EOF},
		{"past end", 10, 4, 0, io.EOF},
		{"truncated", 1, 4, 2, io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(data).At(tt.offset)
			n, err := r.ReadFull(make([]byte, tt.size))
			assert.Equal(t, tt.wantN, n)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.offset+int64(n), r.Pos())
		})
	}
}

func TestReaderReadBytesShortIsUnexpectedEOF(t *testing.T) {
	r := NewReader(bytesReaderAt{1, 2})

	_, err := r.ReadBytes(4)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = NewReader(bytesReaderAt{}).ReadBytes(1)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadN(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7}, 500_000)

	got, err := ReadN(bytes.NewReader(data), len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	got, err = ReadN(bytes.NewReader(data), 10)
	require.NoError(t, err)
	assert.Equal(t, data[:10], got)

	got, err = ReadN(bytes.NewReader(nil), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadNShortSource(t *testing.T) {
	data := bytes.Repeat([]byte{9}, 3*growChunk+17)

	got, err := ReadN(bytes.NewReader(data), len(data)+1)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Len(t, got, len(data))

	_, err = ReadN(bytes.NewReader(nil), 4)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadNDeclaredSizeDoesNotAllocate(t *testing.T) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := ReadN(bytes.NewReader(make([]byte, 100)), 1<<31)
	runtime.ReadMemStats(&after)

	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20))
}

func TestReaderReadBytesLargeDeclaredSize(t *testing.T) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := NewReader(bytesReaderAt(make([]byte, 64))).ReadBytes(1 << 31)
	runtime.ReadMemStats(&after)

	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20))
}

func TestReaderPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	r := NewReader(failingReaderAt{err: boom})

	_, err := r.ReadBytes(4)
	require.ErrorIs(t, err, boom)
}

func TestReaderAtIsIndependent(t *testing.T) {
	r := NewReader(bytesReaderAt{0x10, 0x20, 0x30})
	_, err := r.ReadBytes(1)
	require.NoError(t, err)

	r2 := r.At(2)
	v, err := r2.ReadBytes(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30}, v)
	assert.Equal(t, int64(1), r.Pos(), "original reader position must not move")
}

func TestReaderSeek(t *testing.T) {
	r := NewReader(bytesReaderAt{0, 1, 2, 3, 4})

	require.NoError(t, r.Seek(3))
	v, err := r.ReadBytes(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, v)

	require.ErrorIs(t, r.Seek(-1), ErrNegativeOffset)
	assert.Equal(t, int64(4), r.Pos())
}

func TestReaderSection(t *testing.T) {
	r := NewReader(bytesReaderAt{9, 8, 7, 6, 5}).At(1)
	sec := r.Section(3)

	got, err := io.ReadAll(sec)
	require.NoError(t, err)
	assert.Equal(t, []byte{8, 7, 6}, got)
	assert.Equal(t, int64(1), r.Pos())
}

func TestFields(t *testing.T) {
	f := Fields{0x34, 0x12, 0x78, 0x56, 0x34, 0x12, 1, 0, 0, 0, 0, 0, 0, 0}
	assert.Equal(t, uint16(0x1234), f.Uint16(0))
	assert.Equal(t, uint32(0x12345678), f.Uint32(2))
	assert.Equal(t, uint64(1), f.Uint64(6))
}
