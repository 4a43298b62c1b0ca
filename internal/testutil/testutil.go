// Package testutil builds NPY arrays and NPZ archives in memory for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// headerAlign is the boundary numpy pads prefix plus header text to.
const headerAlign = 64

// NPYSpec describes one encoded array.
type NPYSpec struct {
	// Descr is the dtype string without quotes, e.g. "<f8".
	Descr   string
	Fortran bool
	Shape   []int
	Data    []byte

	// Major selects the format version; 0 means 1.
	Major uint8

	// Dict replaces the generated dict text when set.
	Dict string
}

// ShapeTuple renders a shape the way numpy does: "()", "(3,)", "(3, 4)".
func ShapeTuple(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return "(" + strconv.Itoa(shape[0]) + ",)"
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// HeaderDict renders the dict literal of a header.
func HeaderDict(descr string, fortran bool, shape []int) string {
	order := "False"
	if fortran {
		order = "True"
	}
	return fmt.Sprintf("{'descr': '%s', 'fortran_order': %s, 'shape': %s, }", descr, order, ShapeTuple(shape))
}

// NPY encodes spec as a complete standalone array.
func NPY(tb testing.TB, spec NPYSpec) []byte {
	tb.Helper()

	major := spec.Major
	if major == 0 {
		major = 1
	}
	fieldSize := 2
	if major >= 2 {
		fieldSize = 4
	}

	dict := spec.Dict
	if dict == "" {
		dict = HeaderDict(spec.Descr, spec.Fortran, spec.Shape)
	}
	preamble := 6 + 2 + fieldSize
	total := preamble + len(dict) + 1
	if rem := total % headerAlign; rem != 0 {
		total += headerAlign - rem
	}
	text := dict + strings.Repeat(" ", total-preamble-len(dict)-1) + "\n"

	var buf bytes.Buffer
	buf.Write([]byte{0x93, 'N', 'U', 'M', 'P', 'Y', major, 0})
	if fieldSize == 2 {
		if len(text) > 0xFFFF {
			tb.Fatalf("header text of %d bytes needs format version 2", len(text))
		}
		_ = binary.Write(&buf, binary.LittleEndian, uint16(len(text)))
	} else {
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(text)))
	}
	buf.WriteString(text)
	buf.Write(spec.Data)
	return buf.Bytes()
}

// Raw encodes fixed-size values (or slices of them) in little-endian order.
func Raw(tb testing.TB, values ...any) []byte {
	tb.Helper()

	var buf bytes.Buffer
	for _, v := range values {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			tb.Fatalf("encoding %T: %v", v, err)
		}
	}
	return buf.Bytes()
}

// WriteFile stores data under a fresh temporary directory and returns its path.
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}
	return path
}
