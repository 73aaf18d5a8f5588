package bser

import (
	"bytes"
	"encoding/binary"
)

// Reader decodes BSER from an in-memory buffer. It carries the decode limits
// and byte order, and advances its cursor only when a read succeeds, so a
// failed read leaves Remaining() unchanged.
//
// A Reader is not safe for concurrent use. Distinct Readers may decode
// concurrently, including over the same immutable buffer.
type Reader struct {
	buf           []byte
	size          int // length of the buffer handed to NewReaderBytes or Reset
	order         binary.ByteOrder
	maxDepth      int
	maxContainer  int
	maxString     int
	zeroCopy      bool
	strictTrailing bool
}

// NewReaderBytes constructs a Reader over the provided buffer with the
// default limits.
func NewReaderBytes(b []byte) *Reader {
	return &Reader{
		buf:          b,
		size:         len(b),
		order:        DefaultByteOrder,
		maxDepth:     DefaultMaxDepth,
		maxContainer: DefaultMaxContainerLen,
		maxString:    DefaultMaxStringLen,
	}
}

// Reset points the Reader at a new buffer, keeping its configuration.
func (r *Reader) Reset(b []byte) {
	r.buf = b
	r.size = len(b)
}

// SetByteOrder sets the byte order of multi-byte integers and reals.
// Use binary.NativeEndian to match a producer running on the same host.
// A nil order restores DefaultByteOrder.
func (r *Reader) SetByteOrder(order binary.ByteOrder) {
	if order == nil {
		order = DefaultByteOrder
	}
	r.order = order
}

// SetMaxDepth bounds how deeply arrays, objects and templates may nest.
// A value of zero disables the limit. When exceeded, ErrMaxDepthExceeded is
// returned.
func (r *Reader) SetMaxDepth(max int) { r.maxDepth = max }

// SetMaxContainerLen configures an upper bound on array and object counts and
// template row counts. A value of zero disables the limit; counts are still
// bounded by the remaining input. When exceeded, a LengthOverflowError is
// returned.
func (r *Reader) SetMaxContainerLen(max int) { r.maxContainer = max }

// SetMaxStringLen configures an upper bound on bytestring lengths, object keys
// included. A value of zero disables the limit.
func (r *Reader) SetMaxStringLen(max int) { r.maxString = max }

// SetZeroCopy controls whether decoded bytestrings and keys alias the input
// buffer instead of being copied. With zero copy enabled the buffer must stay
// alive and unmodified for as long as any decoded Value is in use.
func (r *Reader) SetZeroCopy(zc bool) { r.zeroCopy = zc }

// SetStrictTrailing controls whether ReadPDU rejects bytes left in the
// payload after its value with ErrTrailingBytes. By default they are ignored.
func (r *Reader) SetStrictTrailing(strict bool) { r.strictTrailing = strict }

// Remaining returns the unread portion of the underlying buffer.
func (r *Reader) Remaining() []byte { return r.buf }

// offset returns the position of b within the buffer the Reader was given.
func (r *Reader) offset(b []byte) int { return r.size - len(b) }

// rebase converts the b-relative offset carried by a leaf error into an
// offset within the Reader's buffer.
func (r *Reader) rebase(err error, b []byte) error {
	return withOffset(err, r.offset(b))
}

// ReadInt reads an integer of any width and advances the buffer.
func (r *Reader) ReadInt() (int64, error) {
	i, o, err := readIntCore(r.buf, r.order)
	if err != nil {
		return 0, r.rebase(err, r.buf)
	}
	r.buf = o
	return i, nil
}

// ReadReal reads a REAL value and advances the buffer.
func (r *Reader) ReadReal() (float64, error) {
	f, o, err := readRealCore(r.buf, r.order)
	if err != nil {
		return 0, err
	}
	r.buf = o
	return f, nil
}

// ReadBytestring reads a bytestring and advances the buffer. The result
// aliases the buffer when zero copy is enabled.
func (r *Reader) ReadBytestring() ([]byte, error) {
	v, o, err := r.readBytestring(r.buf)
	if err != nil {
		return nil, err
	}
	r.buf = o
	return v, nil
}

func (r *Reader) readBytestring(b []byte) ([]byte, []byte, error) {
	v, o, err := readBytestringCore(b, r.order, r.maxString)
	if err != nil {
		return nil, b, r.rebase(err, b)
	}
	if !r.zeroCopy {
		v = bytes.Clone(v)
	}
	return v, o, nil
}

// ReadValue decodes the next value into a tree and advances the buffer.
func (r *Reader) ReadValue() (Value, error) {
	v, o, err := r.decodeValue(r.buf, 0)
	if err != nil {
		return Value{}, err
	}
	r.buf = o
	return v, nil
}

// Skip skips over the next value without building a tree. The same limits
// apply as for ReadValue.
func (r *Reader) Skip() error {
	o, err := r.skipValue(r.buf, 0)
	if err != nil {
		return err
	}
	r.buf = o
	return nil
}

// NextPDU splits the next PDU off a stream of concatenated PDUs and advances
// the buffer past it.
func (r *Reader) NextPDU() ([]byte, error) {
	pdu, rest, err := nextPDUCore(r.buf, r.order)
	if err != nil {
		return nil, err
	}
	r.buf = rest
	return pdu, nil
}

// ReadPDU decodes a complete PDU: the magic prefix, the payload length and
// one value. The whole buffer must be the PDU. Bytes after the value inside
// the payload are ignored unless strict trailing checks are enabled.
func (r *Reader) ReadPDU() (Value, error) {
	payload, err := r.readEnvelope(r.buf)
	if err != nil {
		return Value{}, err
	}
	v, o, err := r.decodeValue(payload, 0)
	if err != nil {
		return Value{}, err
	}
	if len(o) > 0 && r.strictTrailing {
		return Value{}, ErrTrailingBytes
	}
	r.buf = payload[len(payload):]
	return v, nil
}

// readEnvelope validates the PDU header and returns the payload.
func (r *Reader) readEnvelope(b []byte) ([]byte, error) {
	sz, o, err := readPDUHeaderCore(b, r.order)
	if err != nil {
		return nil, err
	}
	if sz != int64(len(o)) {
		return nil, LengthMismatchError{Declared: sz, Actual: len(o)}
	}
	return o, nil
}

// Loads decodes a complete PDU with the default limits.
func Loads(b []byte) (Value, error) {
	return NewReaderBytes(b).ReadPDU()
}
