package dtype

import (
	"fmt"
	"reflect"
	"strconv"
)

// Dtype identifies an element kind by class, width and signedness.
type Dtype uint8

// Element kinds. NoType is the sentinel for kinds with no NPY equivalent.
const (
	NoType Dtype = iota
	Bool
	Byte
	UByte
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Float
	Double
	LongDouble
	CFloat
	CDouble
	CLongDouble
	String
	Unicode
	Void
)

type info struct {
	name string
	code byte
	size int // 0 for flexible-width kinds
}

var infos = [...]info{
	NoType:      {"notype", '?', 0},
	Bool:        {"bool", 'b', 1},
	Byte:        {"int8", 'i', 1},
	UByte:       {"uint8", 'u', 1},
	Short:       {"int16", 'i', 2},
	UShort:      {"uint16", 'u', 2},
	Int:         {"int32", 'i', 4},
	UInt:        {"uint32", 'u', 4},
	Long:        {"long", 'i', strconv.IntSize / 8},
	ULong:       {"ulong", 'u', strconv.IntSize / 8},
	LongLong:    {"int64", 'i', 8},
	ULongLong:   {"uint64", 'u', 8},
	Float:       {"float32", 'f', 4},
	Double:      {"float64", 'f', 8},
	LongDouble:  {"float128", 'f', 16},
	CFloat:      {"complex64", 'c', 8},
	CDouble:     {"complex128", 'c', 16},
	CLongDouble: {"complex256", 'c', 32},
	String:      {"bytes", 'S', 0},
	Unicode:     {"str", 'U', 0},
	Void:        {"void", 'V', 0},
}

func (d Dtype) info() info {
	if int(d) >= len(infos) {
		return infos[NoType]
	}
	return infos[d]
}

// String returns a short human readable name such as "float64".
func (d Dtype) String() string {
	if int(d) >= len(infos) {
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
	return infos[d].name
}

// Code returns the one-letter NPY type code.
func (d Dtype) Code() byte {
	return d.info().code
}

// Size returns the element width in bytes, or 0 for String, Unicode, Void and NoType
// whose width is carried by the header.
func (d Dtype) Size() int {
	return d.info().size
}

// Flexible reports whether the width of d is declared per array.
func (d Dtype) Flexible() bool {
	return d == String || d == Unicode || d == Void
}

// table is the fixed header lookup: type code and width to Dtype.
var table = map[byte]map[int]Dtype{
	'f': {4: Float, 8: Double, 16: LongDouble},
	'i': {1: Byte, 2: Short, 4: Int, 8: LongLong},
	'u': {1: UByte, 2: UShort, 4: UInt, 8: ULongLong},
	'b': {1: Bool},
	'c': {8: CFloat, 16: CDouble, 32: CLongDouble},
}

// Lookup resolves a header type code and width to a Dtype.
// The flexible codes S, U and V accept any width.
func Lookup(code byte, wordSize int) (Dtype, bool) {
	switch code {
	case 'S':
		return String, true
	case 'U':
		return Unicode, true
	case 'V':
		return Void, true
	}
	widths, ok := table[code]
	if !ok {
		return NoType, false
	}
	d, ok := widths[wordSize]
	return d, ok
}

// TypeCode returns the NPY type code a writer would declare for a Go kind,
// or '?' when the kind has no NPY equivalent.
func TypeCode(k reflect.Kind) byte {
	switch k {
	case reflect.Float32, reflect.Float64:
		return 'f'
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return 'i'
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return 'u'
	case reflect.Bool:
		return 'b'
	case reflect.Complex64, reflect.Complex128:
		return 'c'
	default:
		return '?'
	}
}

// FromKind returns the Dtype for a Go kind, or NoType when it has none.
// int and uint follow the host word size, see the package documentation.
func FromKind(k reflect.Kind) Dtype {
	switch k {
	case reflect.Float32:
		return Float
	case reflect.Float64:
		return Double
	case reflect.Int8:
		return Byte
	case reflect.Int16:
		return Short
	case reflect.Int32:
		return Int
	case reflect.Int:
		if strconv.IntSize == 64 {
			return Long
		}
		return Int
	case reflect.Int64:
		return LongLong
	case reflect.Uint8:
		return UByte
	case reflect.Uint16:
		return UShort
	case reflect.Uint32:
		return UInt
	case reflect.Uint:
		if strconv.IntSize == 64 {
			return ULong
		}
		return UInt
	case reflect.Uint64:
		return ULongLong
	case reflect.Bool:
		return Bool
	case reflect.Complex64:
		return CFloat
	case reflect.Complex128:
		return CDouble
	default:
		return NoType
	}
}

// GoType returns the Go type that holds one element of d, or nil when Go has
// no native representation (extended precision and flexible kinds).
func GoType(d Dtype) reflect.Type {
	switch d {
	case Bool:
		return reflect.TypeFor[bool]()
	case Byte:
		return reflect.TypeFor[int8]()
	case UByte:
		return reflect.TypeFor[uint8]()
	case Short:
		return reflect.TypeFor[int16]()
	case UShort:
		return reflect.TypeFor[uint16]()
	case Int:
		return reflect.TypeFor[int32]()
	case UInt:
		return reflect.TypeFor[uint32]()
	case Long:
		return reflect.TypeFor[int]()
	case ULong:
		return reflect.TypeFor[uint]()
	case LongLong:
		return reflect.TypeFor[int64]()
	case ULongLong:
		return reflect.TypeFor[uint64]()
	case Float:
		return reflect.TypeFor[float32]()
	case Double:
		return reflect.TypeFor[float64]()
	case CFloat:
		return reflect.TypeFor[complex64]()
	case CDouble:
		return reflect.TypeFor[complex128]()
	default:
		return nil
	}
}
