package archive

import (
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-npy/internal/binary"
)

// FooterLen is the size of an end of central directory record without comment.
const FooterLen = 22

const footerSignature = 0x06054b50

// Errors
var (
	ErrNotArchive  = errors.New("not an archive: end of central directory not found")
	ErrMultiDisk   = errors.New("multi-disk archives are not supported")
	ErrRecordCount = errors.New("central directory record counts disagree")
	ErrComment     = errors.New("archive comments are not supported")
)

// Footer is the end of central directory record.
type Footer struct {
	DiskNumber    uint16
	CDDisk        uint16
	CDCountOnDisk uint16
	CDCount       uint16
	CDSize        uint32
	CDOffset      uint32
	CommentLen    uint16
}

// ReadFooter reads the record occupying the last FooterLen bytes of a source
// of the given size and checks that it describes a single-disk archive
// without comment.
func ReadFooter(r io.ReaderAt, size int64) (*Footer, error) {
	if size < FooterLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the footer", ErrNotArchive, size)
	}

	buf := make([]byte, FooterLen)
	if _, err := binary.NewReader(r).At(size - FooterLen).ReadFull(buf); err != nil {
		return nil, fmt.Errorf("reading footer: %w", err)
	}
	f := binary.Fields(buf)
	if f.Uint32(0) != footerSignature {
		return nil, ErrNotArchive
	}

	ft := &Footer{
		DiskNumber:    f.Uint16(4),
		CDDisk:        f.Uint16(6),
		CDCountOnDisk: f.Uint16(8),
		CDCount:       f.Uint16(10),
		CDSize:        f.Uint32(12),
		CDOffset:      f.Uint32(16),
		CommentLen:    f.Uint16(20),
	}
	if err := ft.validate(); err != nil {
		return nil, err
	}
	return ft, nil
}

func (ft *Footer) validate() error {
	if ft.DiskNumber != 0 || ft.CDDisk != 0 {
		return fmt.Errorf("%w: disk %d, central directory on disk %d", ErrMultiDisk, ft.DiskNumber, ft.CDDisk)
	}
	if ft.CDCountOnDisk != ft.CDCount {
		return fmt.Errorf("%w: %d on disk, %d total", ErrRecordCount, ft.CDCountOnDisk, ft.CDCount)
	}
	if ft.CommentLen != 0 {
		return fmt.Errorf("%w: %d-byte comment", ErrComment, ft.CommentLen)
	}
	return nil
}
