package npy

import (
	"reflect"

	"github.com/robert-malhotra/go-npy/internal/dtype"
)

// Dtype identifies the element kind of an array.
type Dtype = dtype.Dtype

// Element kinds.
const (
	NoType      = dtype.NoType
	Bool        = dtype.Bool
	Byte        = dtype.Byte
	UByte       = dtype.UByte
	Short       = dtype.Short
	UShort      = dtype.UShort
	Int         = dtype.Int
	UInt        = dtype.UInt
	Long        = dtype.Long
	ULong       = dtype.ULong
	LongLong    = dtype.LongLong
	ULongLong   = dtype.ULongLong
	Float       = dtype.Float
	Double      = dtype.Double
	LongDouble  = dtype.LongDouble
	CFloat      = dtype.CFloat
	CDouble     = dtype.CDouble
	CLongDouble = dtype.CLongDouble
	String      = dtype.String
	Unicode     = dtype.Unicode
	Void        = dtype.Void
)

// Element is the set of Go types an array can be viewed as with Values.
type Element = dtype.Element

// TypeCode returns the one-letter NPY type code for a Go kind, or '?' when
// there is none.
func TypeCode(k reflect.Kind) byte {
	return dtype.TypeCode(k)
}

// DtypeOf returns the element kind matching a Go kind, or NoType.
// int and uint map to Long and ULong on 64-bit hosts.
func DtypeOf(k reflect.Kind) Dtype {
	return dtype.FromKind(k)
}

// GoType returns the Go type holding one element of d, or nil for extended
// precision and flexible-width kinds.
func GoType(d Dtype) reflect.Type {
	return dtype.GoType(d)
}
