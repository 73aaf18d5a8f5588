package bser

import (
	"encoding/hex"
	"strconv"
	"sync"
)

// Local byte buffer pool used by the diagnostic and JSON renderers.
//
// Guidelines:
// - PutByteBuffer resets the buffer, so callers must copy out anything they
//   keep before putting it back.
// - Use Ensure(n) to grow capacity up-front when you know you will append
//   at least n more bytes.

type ByteBuffer struct {
	b []byte
}

var bbPool = sync.Pool{New: func() any { return &ByteBuffer{b: make([]byte, 0, 1024)} }}

// GetByteBuffer obtains a pooled ByteBuffer. The buffer is Reset() before
// being returned so length is zero (capacity may be reused).
func GetByteBuffer() *ByteBuffer {
	bb := bbPool.Get().(*ByteBuffer)
	bb.Reset()
	return bb
}

// PutByteBuffer returns the buffer to the pool after Resetting length to zero.
func PutByteBuffer(bb *ByteBuffer) { bb.Reset(); bbPool.Put(bb) }

// Bytes returns the underlying bytes.
func (bb *ByteBuffer) Bytes() []byte { return bb.b }

// Len returns length.
func (bb *ByteBuffer) Len() int { return len(bb.b) }

// Reset resets the length to zero; capacity is unchanged.
func (bb *ByteBuffer) Reset() { bb.b = bb.b[:0] }

// Ensure ensures there is room for at least n more bytes without reallocation.
func (bb *ByteBuffer) Ensure(n int) {
	need := len(bb.b) + n
	if cap(bb.b) >= need {
		return
	}
	c := cap(bb.b)
	if c == 0 {
		c = 1024
	}
	for c < need {
		c <<= 1
	}
	nb := make([]byte, len(bb.b), c)
	copy(nb, bb.b)
	bb.b = nb
}

// Extend grows the buffer by n bytes and returns a slice to the newly
// appended region for direct writes.
func (bb *ByteBuffer) Extend(n int) []byte {
	old := len(bb.b)
	bb.Ensure(n)
	bb.b = bb.b[:old+n]
	return bb.b[old:]
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(p []byte) (int, error) {
	bb.b = append(bb.b, p...)
	return len(p), nil
}

// WriteString appends a string.
func (bb *ByteBuffer) WriteString(s string) (int, error) {
	bb.b = append(bb.b, s...)
	return len(s), nil
}

// WriteByte appends a single byte.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.b = append(bb.b, c)
	return nil
}

// CopyBytes returns a copy of the buffer contents that outlives the buffer.
func (bb *ByteBuffer) CopyBytes() []byte {
	out := make([]byte, len(bb.b))
	copy(out, bb.b)
	return out
}

// Appenders used by the renderers. They return the buffer for chaining.

func (bb *ByteBuffer) AppendInt64(i int64) *ByteBuffer {
	bb.b = strconv.AppendInt(bb.b, i, 10)
	return bb
}

func (bb *ByteBuffer) AppendQuoted(s []byte) *ByteBuffer {
	bb.b = strconv.AppendQuote(bb.b, UnsafeString(s))
	return bb
}

func (bb *ByteBuffer) AppendHex(s []byte) *ByteBuffer {
	hex.Encode(bb.Extend(hex.EncodedLen(len(s))), s)
	return bb
}
