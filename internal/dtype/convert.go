package dtype

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

// ErrTypeMismatch is returned when the requested Go type cannot hold the stored elements.
var ErrTypeMismatch = errors.New("type mismatch")

// Element is the set of Go types raw array data can be viewed as.
type Element interface {
	~bool |
		~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~float32 | ~float64 |
		~complex64 | ~complex128
}

// Compatible reports whether elements of d can be copied verbatim into
// values of type t. Widths must match exactly and the class must agree,
// so []int reads LongLong data on 64-bit hosts and Int data on 32-bit hosts.
func Compatible(d Dtype, t reflect.Type) bool {
	if t == nil || d.Flexible() || d.Size() == 0 || int(t.Size()) != d.Size() {
		return false
	}
	switch d {
	case Bool:
		return t.Kind() == reflect.Bool
	case Byte, Short, Int, Long, LongLong:
		switch t.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
			return true
		}
	case UByte, UShort, UInt, ULong, ULongLong:
		switch t.Kind() {
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
			return true
		}
	case Float, Double:
		return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
	case CFloat, CDouble:
		return t.Kind() == reflect.Complex64 || t.Kind() == reflect.Complex128
	}
	return false
}

// ConvertToSlice copies little-endian element data into a newly allocated []T.
// Host byte order is assumed to be little-endian; no swapping is performed.
func ConvertToSlice[T Element](d Dtype, data []byte) ([]T, error) {
	t := reflect.TypeFor[T]()
	if !Compatible(d, t) {
		return nil, fmt.Errorf("%w: cannot view %s data as %s", ErrTypeMismatch, d, t)
	}
	size := int(t.Size())
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of element size %d", ErrTypeMismatch, len(data), size)
	}

	out := make([]T, len(data)/size)
	if len(out) == 0 {
		return out, nil
	}

	// Bytes other than 0 and 1 are not valid Go bools.
	if t.Kind() == reflect.Bool {
		bools := unsafe.Slice((*bool)(unsafe.Pointer(&out[0])), len(out))
		for i, b := range data {
			bools[i] = b != 0
		}
		return out, nil
	}

	directCopy(out, data)
	return out, nil
}

// directCopy copies raw bytes over the backing array of dst.
func directCopy[T Element](dst []T, data []byte) {
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), len(data))
	copy(raw, data)
}
