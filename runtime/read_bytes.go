package bser

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Minimum encoded sizes of container elements. A declared count can never
// exceed the remaining bytes divided by these, which bounds allocation before
// any element is read.
const (
	minArrayElemSize  = 1                      // any tag
	minObjectPairSize = 1 + Int8Size + NullSize // empty key, null value
)

// readIntCore reads an integer of any width in the given byte order.
// On failure b is returned unchanged.
func readIntCore(b []byte, order binary.ByteOrder) (int64, []byte, error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}

	need := intSize(b[0])
	if need == 0 {
		return 0, b, MalformedTagError{Tag: b[0]}
	}
	if len(b) < need {
		return 0, b, ErrShortBytes
	}

	switch b[0] {
	case tagInt8:
		return int64(int8(b[1])), b[2:], nil
	case tagInt16:
		return int64(int16(order.Uint16(b[1:]))), b[3:], nil
	case tagInt32:
		return int64(int32(order.Uint32(b[1:]))), b[5:], nil
	default:
		return int64(order.Uint64(b[1:])), b[9:], nil
	}
}

// checkLen validates a declared length against the bytes available and a
// configured limit. A limit of zero disables the configured bound.
func checkLen(n int64, avail int, limit int) error {
	if n < 0 || n > int64(avail) || (limit > 0 && n > int64(limit)) {
		return LengthOverflowError{Length: n, Limit: int64(limit), Available: int64(avail)}
	}
	return nil
}

// readBytestringCore reads a bytestring and returns a slice of b holding its
// payload. The returned slice has its capacity clipped to its length.
func readBytestringCore(b []byte, order binary.ByteOrder, limit int) (v []byte, o []byte, err error) {
	if len(b) < 1 {
		return nil, b, ErrShortBytes
	}
	if b[0] != tagString {
		return nil, b, UnknownTagError{Tag: b[0]}
	}

	// skip string marker
	sz, o, err := readIntCore(b[1:], order)
	if err != nil {
		return nil, b, withOffset(err, 1)
	}
	if err := checkLen(sz, len(o), limit); err != nil {
		return nil, b, withOffset(err, 1)
	}
	return o[:sz:sz], o[sz:], nil
}

// readCountCore reads the count that follows a container tag. The count is
// bounded by what the remaining bytes can hold given the minimum element size.
func readCountCore(b []byte, tag byte, order binary.ByteOrder, limit int, minElem int) (int, []byte, error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}
	if b[0] != tag {
		return 0, b, TypeError{Method: getType(tag), Encoded: getType(b[0])}
	}
	sz, o, err := readIntCore(b[1:], order)
	if err != nil {
		return 0, b, withOffset(err, 1)
	}
	if err := checkLen(sz, len(o)/minElem, limit); err != nil {
		return 0, b, withOffset(err, 1)
	}
	return int(sz), o, nil
}

// ReadIntBytes reads an integer of any width and widens it to int64.
func ReadIntBytes(b []byte) (int64, []byte, error) {
	return readIntCore(b, DefaultByteOrder)
}

// readRealCore reads a REAL value.
func readRealCore(b []byte, order binary.ByteOrder) (float64, []byte, error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}
	if b[0] != tagReal {
		return 0, b, TypeError{Method: RealType, Encoded: getType(b[0])}
	}
	if len(b) < RealSize {
		return 0, b, ErrShortBytes
	}
	return math.Float64frombits(order.Uint64(b[1:])), b[RealSize:], nil
}

// ReadRealBytes reads a REAL value.
func ReadRealBytes(b []byte) (float64, []byte, error) {
	return readRealCore(b, DefaultByteOrder)
}

// ReadBoolBytes reads a bool
func ReadBoolBytes(b []byte) (bool, []byte, error) {
	if len(b) < 1 {
		return false, b, ErrShortBytes
	}
	switch b[0] {
	case tagTrue:
		return true, b[1:], nil
	case tagFalse:
		return false, b[1:], nil
	}
	return false, b, TypeError{Method: BoolType, Encoded: getType(b[0])}
}

// ReadNullBytes reads a null
func ReadNullBytes(b []byte) ([]byte, error) {
	if len(b) < 1 {
		return b, ErrShortBytes
	}
	if b[0] != tagNull {
		return b, TypeError{Method: NullType, Encoded: getType(b[0])}
	}
	return b[1:], nil
}

// ReadBytestringZC reads a bytestring without copying it. The returned slice
// aliases b and is only valid for as long as b is.
func ReadBytestringZC(b []byte) (v []byte, o []byte, err error) {
	return readBytestringCore(b, DefaultByteOrder, 0)
}

// ReadBytestringBytes reads a bytestring and returns a copy of its payload.
func ReadBytestringBytes(b []byte) ([]byte, []byte, error) {
	v, o, err := readBytestringCore(b, DefaultByteOrder, 0)
	if err != nil {
		return nil, b, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, o, nil
}

// ReadArrayHeaderBytes reads an array tag and its element count.
func ReadArrayHeaderBytes(b []byte) (sz int, o []byte, err error) {
	return readCountCore(b, tagArray, DefaultByteOrder, 0, minArrayElemSize)
}

// ReadObjectHeaderBytes reads an object tag and its pair count.
func ReadObjectHeaderBytes(b []byte) (sz int, o []byte, err error) {
	return readCountCore(b, tagObject, DefaultByteOrder, 0, minObjectPairSize)
}

// readPDUHeaderCore checks the magic prefix and reads the declared payload
// length.
func readPDUHeaderCore(b []byte, order binary.ByteOrder) (int64, []byte, error) {
	if len(b) < len(magic) || b[0] != magic[0] || b[1] != magic[1] {
		return 0, b, ErrInvalidHeader
	}
	sz, o, err := readIntCore(b[len(magic):], order)
	if err != nil {
		return 0, b, fmt.Errorf("%w: %w", ErrInvalidHeader, withOffset(err, len(magic)))
	}
	return sz, o, nil
}

// ReadPDUHeaderBytes validates the magic prefix and returns the declared
// payload length together with the bytes that follow the header.
func ReadPDUHeaderBytes(b []byte) (int64, []byte, error) {
	return readPDUHeaderCore(b, DefaultByteOrder)
}

// nextPDUCore splits the first PDU off a stream of concatenated PDUs.
func nextPDUCore(b []byte, order binary.ByteOrder) (pdu []byte, rest []byte, err error) {
	sz, o, err := readPDUHeaderCore(b, order)
	if err != nil {
		return nil, b, err
	}
	if sz < 0 {
		return nil, b, LengthMismatchError{Declared: sz, Actual: len(o)}
	}
	if sz > int64(len(o)) {
		return nil, b, ErrShortBytes
	}
	n := len(b) - len(o) + int(sz)
	return b[:n:n], b[n:], nil
}

// NextPDUBytes splits the first PDU off a stream of concatenated PDUs.
// The returned pdu includes its header and can be passed to Loads.
func NextPDUBytes(b []byte) (pdu []byte, rest []byte, err error) {
	return nextPDUCore(b, DefaultByteOrder)
}

// ForEachPDUBytes calls fn with every PDU in a stream of concatenated PDUs,
// stopping at the first error.
func ForEachPDUBytes(b []byte, fn func(pdu []byte) error) error {
	for len(b) > 0 {
		pdu, rest, err := NextPDUBytes(b)
		if err != nil {
			return err
		}
		if err := fn(pdu); err != nil {
			return err
		}
		b = rest
	}
	return nil
}

// Skip skips over the next BSER value
func Skip(b []byte) ([]byte, error) {
	r := NewReaderBytes(b)
	if err := r.Skip(); err != nil {
		return b, err
	}
	return r.Remaining(), nil
}
