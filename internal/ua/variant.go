// internal/ua/variant.go
package ua

import (
	"errors"
	"fmt"
	"math"
)

// ErrTypeMismatch is returned when a value of one scalar type is applied
// where a different scalar type is declared. No widening is performed.
var ErrTypeMismatch = errors.New("ua: type mismatch")

// Variant is a scalar value tagged with its type. All eleven supported
// scalars are stored in a single 64-bit payload, so a Variant is
// comparable and cheap to copy. Float payloads keep their exact bit
// pattern, NaN included.
type Variant struct {
	typ  TypeID
	bits uint64
}

// Type returns the scalar type the variant carries.
func (v Variant) Type() TypeID {
	return v.typ
}

// Bits exposes the raw payload. Used by the shadow cache, which stores
// payloads in an atomic word.
func (v Variant) Bits() uint64 {
	return v.bits
}

// FromBits reconstructs a variant from a payload previously obtained via
// Bits. The caller supplies the (immutable) type.
func FromBits(t TypeID, bits uint64) Variant {
	return Variant{typ: t, bits: bits}
}

// Zero returns the zero value of the given type. Stacks type-check a
// node's initial value against its declared data type, so the zero must
// carry the exact type.
func Zero(t TypeID) Variant {
	return Variant{typ: t}
}

func NewBoolean(x bool) Variant {
	var b uint64
	if x {
		b = 1
	}
	return Variant{typ: TypeBoolean, bits: b}
}

func NewSByte(x int8) Variant {
	return Variant{typ: TypeSByte, bits: uint64(uint8(x))}
}

func NewByte(x uint8) Variant {
	return Variant{typ: TypeByte, bits: uint64(x)}
}

func NewInt16(x int16) Variant {
	return Variant{typ: TypeInt16, bits: uint64(uint16(x))}
}

func NewUInt16(x uint16) Variant {
	return Variant{typ: TypeUInt16, bits: uint64(x)}
}

func NewInt32(x int32) Variant {
	return Variant{typ: TypeInt32, bits: uint64(uint32(x))}
}

func NewUInt32(x uint32) Variant {
	return Variant{typ: TypeUInt32, bits: uint64(x)}
}

func NewInt64(x int64) Variant {
	return Variant{typ: TypeInt64, bits: uint64(x)}
}

func NewUInt64(x uint64) Variant {
	return Variant{typ: TypeUInt64, bits: x}
}

func NewFloat(x float32) Variant {
	return Variant{typ: TypeFloat, bits: uint64(math.Float32bits(x))}
}

func NewDouble(x float64) Variant {
	return Variant{typ: TypeDouble, bits: math.Float64bits(x)}
}

func (v Variant) Boolean() bool  { return v.bits != 0 }
func (v Variant) SByte() int8    { return int8(uint8(v.bits)) }
func (v Variant) Byte() uint8    { return uint8(v.bits) }
func (v Variant) Int16() int16   { return int16(uint16(v.bits)) }
func (v Variant) UInt16() uint16 { return uint16(v.bits) }
func (v Variant) Int32() int32   { return int32(uint32(v.bits)) }
func (v Variant) UInt32() uint32 { return uint32(v.bits) }
func (v Variant) Int64() int64   { return int64(v.bits) }
func (v Variant) UInt64() uint64 { return v.bits }

func (v Variant) Float() float32  { return math.Float32frombits(uint32(v.bits)) }
func (v Variant) Double() float64 { return math.Float64frombits(v.bits) }

// String renders the value for logs.
func (v Variant) String() string {
	switch v.typ {
	case TypeBoolean:
		return fmt.Sprintf("Boolean(%t)", v.Boolean())
	case TypeSByte:
		return fmt.Sprintf("SByte(%d)", v.SByte())
	case TypeByte:
		return fmt.Sprintf("Byte(%d)", v.Byte())
	case TypeInt16:
		return fmt.Sprintf("Int16(%d)", v.Int16())
	case TypeUInt16:
		return fmt.Sprintf("UInt16(%d)", v.UInt16())
	case TypeInt32:
		return fmt.Sprintf("Int32(%d)", v.Int32())
	case TypeUInt32:
		return fmt.Sprintf("UInt32(%d)", v.UInt32())
	case TypeInt64:
		return fmt.Sprintf("Int64(%d)", v.Int64())
	case TypeUInt64:
		return fmt.Sprintf("UInt64(%d)", v.UInt64())
	case TypeFloat:
		return fmt.Sprintf("Float(%g)", v.Float())
	case TypeDouble:
		return fmt.Sprintf("Double(%g)", v.Double())
	}
	return "Invalid"
}
