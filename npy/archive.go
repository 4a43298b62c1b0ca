package npy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/robert-malhotra/go-npy/internal/archive"
	"github.com/robert-malhotra/go-npy/internal/binary"
)

// Archive maps member names, without their ".npy" suffix, to arrays.
type Archive map[string]*Array

// Footer is the end of central directory record of an archive.
type Footer = archive.Footer

// LoadArchive reads every array of an .npz file. Either all arrays are
// returned or none are.
func LoadArchive(path string, opts ...Option) (Archive, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	arrays, err := ReadArchive(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return arrays, nil
}

// LoadArchiveEntry reads the array stored under name in an .npz file.
func LoadArchiveEntry(path, name string, opts ...Option) (*Array, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := ReadArchiveEntry(f, name, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// ArchiveInfo reads and validates the footer of an .npz file without
// scanning its members.
func ArchiveInfo(path string) (*Footer, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	ft, err := archive.ReadFooter(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ft, nil
}

// ReadArchive scans the members of an archive from offset 0 and decodes each
// one. A name that appears twice keeps the later array.
func ReadArchive(r io.ReaderAt, opts ...Option) (Archive, error) {
	o := newOptions(opts)
	br := binary.NewReader(r)

	arrays := make(Archive)
	for {
		e, err := archive.NextEntry(br)
		if err != nil {
			return nil, err
		}
		if e == nil {
			break
		}

		a, err := o.readEntry(br, e)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.Name, err)
		}
		if _, ok := arrays[e.Name]; ok {
			o.log().Warn("duplicate entry replaces earlier array", slog.String("name", e.Name))
		}
		arrays[e.Name] = a

		if err := br.Seek(e.End()); err != nil {
			return nil, err
		}
	}

	o.log().Debug("loaded archive", slog.Int("arrays", len(arrays)))
	return arrays, nil
}

// ReadArchiveEntry scans the members of an archive until one is named name
// and decodes it. Members before it are skipped without reading their
// payloads, and nothing after it is read.
func ReadArchiveEntry(r io.ReaderAt, name string, opts ...Option) (*Array, error) {
	o := newOptions(opts)
	br := binary.NewReader(r)

	for {
		e, err := archive.NextEntry(br)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}

		if e.Name != name {
			o.log().Debug("skipping entry",
				slog.String("name", e.Name),
				slog.Uint64("compressed", e.CompressedSize))
			if err := br.Seek(e.End()); err != nil {
				return nil, err
			}
			continue
		}

		a, err := o.readEntry(br, e)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.Name, err)
		}
		return a, nil
	}
}

// readEntry decodes the member whose payload starts at the reader's position.
func (o *options) readEntry(br *binary.Reader, e *archive.Entry) (*Array, error) {
	limit := o.memberLimit()
	if e.UncompressedSize > limit || e.CompressedSize > limit {
		return nil, fmt.Errorf("%w: member declares %d bytes (%d compressed), limit %d",
			ErrSizeOverflow, e.UncompressedSize, e.CompressedSize, limit)
	}

	if e.Method == archive.MethodStore {
		return o.readStored(br, e)
	}
	if !archive.Supported(e.Method) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, archive.MethodName(e.Method))
	}

	size, err := toInt(e.CompressedSize)
	if err != nil {
		return nil, err
	}
	compressed, err := br.ReadBytes(size)
	if err != nil {
		return nil, shortRead(err, "compressed payload")
	}
	return o.readCompressed(e, compressed)
}

// readStored decodes a member stored without compression straight from the
// archive, bounded to the member's extent.
func (o *options) readStored(br *binary.Reader, e *archive.Entry) (*Array, error) {
	if e.CompressedSize != e.UncompressedSize {
		return nil, fmt.Errorf("%w: stored member is %d bytes but expands to %d",
			ErrCorrupt, e.CompressedSize, e.UncompressedSize)
	}

	// The declared extent is trusted once its last byte is known to exist.
	if e.CompressedSize > 0 {
		last := br.At(br.Pos() + int64(e.CompressedSize) - 1)
		if _, err := last.ReadBytes(1); err != nil {
			return nil, shortRead(err, "stored payload")
		}
	}

	sec := br.Section(int64(e.CompressedSize))
	a, err := o.readDirect(sec, sec.Size())
	if err != nil {
		return nil, err
	}

	used, err := sec.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if used != int64(e.CompressedSize) {
		return nil, fmt.Errorf("%w: array uses %d of %d member bytes", ErrCorrupt, used, e.CompressedSize)
	}
	o.log().Debug("read stored entry", slog.String("name", e.Name), slog.Int("payload", a.NumBytes()))
	return a, nil
}

// shortRead marks truncation as ErrShortRead and passes other errors through.
func shortRead(err error, what string) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %w", ErrShortRead, what, err)
	}
	return err
}
