// Package bser decodes BSER, the binary serialization used by file watching
// services to stream structured results to their clients.
//
// This package defines three "families" of functions:
//   - ReadXxxBytes() reads one item from a []byte and returns the remaining bytes.
//   - (*Reader).ReadXxx() reads from a Reader, which carries decode limits and
//     only advances when a read fully succeeds.
//   - Loads() decodes a complete PDU (magic, length, value) into a Value tree.
//
// Decoding is read-only: the package never produces BSER.
//
// All multi-byte numbers are read in a configurable byte order. The wire
// format historically used the producing host's order; every producer in
// practice is little-endian, which is the default here.
package bser

import (
	"encoding/binary"
	"errors"
)

// Wire tags.
const (
	tagArray    byte = 0x00
	tagObject   byte = 0x01
	tagString   byte = 0x02
	tagInt8     byte = 0x03
	tagInt16    byte = 0x04
	tagInt32    byte = 0x05
	tagInt64    byte = 0x06
	tagReal     byte = 0x07
	tagTrue     byte = 0x08
	tagFalse    byte = 0x09
	tagNull     byte = 0x0a
	tagTemplate byte = 0x0b
	tagSkip     byte = 0x0c
)

// magic is the two byte prefix of every PDU.
var magic = [2]byte{0x00, 0x01}

const (
	// DefaultMaxDepth bounds nesting of arrays, objects and templates.
	DefaultMaxDepth = 4096

	// DefaultMaxContainerLen bounds array, object and template row counts.
	DefaultMaxContainerLen = 1 << 24

	// DefaultMaxStringLen bounds the length of a single bytestring.
	DefaultMaxStringLen = 1 << 30
)

// DefaultByteOrder is used by the package-level ReadXxxBytes functions and by
// new Readers.
var DefaultByteOrder binary.ByteOrder = binary.LittleEndian

// ErrTrailingBytes is returned by Readers with strict trailing checks when a
// PDU payload holds bytes after its value.
var ErrTrailingBytes = errors.New("bser: trailing bytes after value")

// Type represents BSER value types.
type Type byte

// BSER Types
const (
	InvalidType Type = iota

	NullType       // null
	BoolType       // true or false
	IntType        // signed integer of any width
	RealType       // float64
	BytestringType // length-prefixed bytes
	ArrayType      // array
	ObjectType     // object
	TemplateType   // template encoded array of objects
)

// String implements fmt.Stringer
func (t Type) String() string {
	switch t {
	case NullType:
		return "null"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case RealType:
		return "real"
	case BytestringType:
		return "bytestring"
	case ArrayType:
		return "array"
	case ObjectType:
		return "object"
	case TemplateType:
		return "template"
	default:
		return "<invalid>"
	}
}

// getType returns the Type announced by a tag byte.
func getType(tag byte) Type {
	switch tag {
	case tagArray:
		return ArrayType
	case tagObject:
		return ObjectType
	case tagString:
		return BytestringType
	case tagInt8, tagInt16, tagInt32, tagInt64:
		return IntType
	case tagReal:
		return RealType
	case tagTrue, tagFalse:
		return BoolType
	case tagNull:
		return NullType
	case tagTemplate:
		return TemplateType
	}
	return InvalidType
}

// NextType returns the type of the next value in the slice.
func NextType(b []byte) Type {
	if len(b) == 0 {
		return InvalidType
	}
	return getType(b[0])
}

// IsNull checks if the next value is null.
func IsNull(b []byte) bool {
	return len(b) > 0 && b[0] == tagNull
}
