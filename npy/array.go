package npy

import (
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-npy/internal/dtype"
	"github.com/robert-malhotra/go-npy/internal/header"
)

// Array is a loaded array. Data always holds exactly NumElements()*WordSize
// bytes in the order given by FortranOrder.
type Array struct {
	// Shape lists dimension sizes; empty for a scalar.
	Shape []int

	// WordSize is the width of one element in bytes.
	WordSize int

	Dtype        Dtype
	FortranOrder bool
	Data         []byte
}

func newArray(h *header.Header, data []byte) *Array {
	return &Array{
		Shape:        h.Shape,
		WordSize:     h.WordSize,
		Dtype:        h.Dtype,
		FortranOrder: h.FortranOrder,
		Data:         data,
	}
}

// NumElements returns the product of the shape, 1 for a scalar.
func (a *Array) NumElements() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// NumBytes returns the payload size.
func (a *Array) NumBytes() int {
	return len(a.Data)
}

// String summarizes the array, e.g. "float64(3, 4) C".
func (a *Array) String() string {
	dims := make([]string, len(a.Shape))
	for i, d := range a.Shape {
		dims[i] = fmt.Sprint(d)
	}
	order := "C"
	if a.FortranOrder {
		order = "F"
	}
	return fmt.Sprintf("%s(%s) %s", a.Dtype, strings.Join(dims, ", "), order)
}

// Values copies the array data into a new []T. T must have the width and
// class of the array's element kind, otherwise ErrTypeMismatch is returned.
func Values[T Element](a *Array) ([]T, error) {
	return dtype.ConvertToSlice[T](a.Dtype, a.Data)
}
