package npy

import (
	"errors"

	"github.com/robert-malhotra/go-npy/internal/archive"
	"github.com/robert-malhotra/go-npy/internal/dtype"
	"github.com/robert-malhotra/go-npy/internal/header"
)

// Common errors
var (
	ErrOpen      = errors.New("unable to open")
	ErrNotFound  = errors.New("array not found")
	ErrShortRead = errors.New("failed read")
	ErrCorrupt   = errors.New("array data does not match its header")
)

// Header errors.
var (
	ErrNotNPY             = header.ErrNotNPY
	ErrUnsupportedVersion = header.ErrUnsupportedVersion
	ErrMissingKey         = header.ErrMissingKey
	ErrMalformedHeader    = header.ErrMalformed
	ErrUnsupportedDtype   = header.ErrUnsupportedDtype
	ErrByteOrder          = header.ErrByteOrder
	ErrSizeOverflow       = header.ErrSizeOverflow
	ErrTypeMismatch       = dtype.ErrTypeMismatch
)

// Archive errors.
var (
	ErrNotArchive        = archive.ErrNotArchive
	ErrMultiDisk         = archive.ErrMultiDisk
	ErrRecordCount       = archive.ErrRecordCount
	ErrComment           = archive.ErrComment
	ErrMalformedEntry    = archive.ErrMalformedEntry
	ErrMalformedExtra    = archive.ErrMalformedExtra
	ErrDataDescriptor    = archive.ErrDataDescriptor
	ErrUnsupportedMethod = archive.ErrUnsupportedMethod
	ErrDecompression     = archive.ErrDecompression
)
