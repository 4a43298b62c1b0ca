// Package dtype maps between NPY element kinds and Go types.
//
// An NPY header declares each element as a byte-order mark, a one-letter
// type code and a width in bytes, for example "<f8" or "|b1". This package
// owns the closed set of element kinds the loader understands and the two
// mappings around it:
//
//   - Header side: [Lookup] turns a (type code, width) pair into a [Dtype].
//     Pairs outside the fixed table are rejected by the caller.
//   - Go side: [TypeCode] and [FromKind] turn a reflect.Kind into the code and
//     [Dtype] a writer would declare for it. Unknown kinds yield '?' and
//     [NoType] rather than an error.
//
// # Type Mapping
//
//	Code | Width     | Dtype        | Go type
//	-----|-----------|--------------|-----------
//	b    | 1         | Bool         | bool
//	i    | 1/2/4/8   | Byte..LongLong | int8..int64
//	u    | 1/2/4/8   | UByte..ULongLong | uint8..uint64
//	f    | 4/8/16    | Float, Double, LongDouble | float32, float64, none
//	c    | 8/16/32   | CFloat, CDouble, CLongDouble | complex64, complex128, none
//	S    | any       | String       | none (raw bytes)
//	U    | any       | Unicode      | none (raw UCS-4)
//	V    | any       | Void         | none (raw bytes)
//
// # Long Words
//
// Go's int and uint have the platform word size, the same ambiguity C's long
// carries in files written on different hosts. [FromKind] maps them to [Long]
// and [ULong] on 64-bit hosts and to [Int] and [UInt] on 32-bit hosts. A header
// never decodes to [Long]; an 8-byte "i8" is always [LongLong]. [ConvertToSlice]
// accepts []int for LongLong data when the widths agree.
package dtype
