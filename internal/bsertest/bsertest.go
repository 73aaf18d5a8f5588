// Package bsertest builds BSER fixtures for tests and benchmarks. The bser
// package only decodes, so every encoded input in this module comes from here.
package bsertest

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Wire tags, duplicated so fixtures do not depend on the decoder under test.
const (
	TagArray    byte = 0x00
	TagObject   byte = 0x01
	TagString   byte = 0x02
	TagInt8     byte = 0x03
	TagInt16    byte = 0x04
	TagInt32    byte = 0x05
	TagInt64    byte = 0x06
	TagReal     byte = 0x07
	TagTrue     byte = 0x08
	TagFalse    byte = 0x09
	TagNull     byte = 0x0a
	TagTemplate byte = 0x0b
	TagSkip     byte = 0x0c
)

// Encoder appends BSER in a fixed byte order.
type Encoder struct {
	Order binary.AppendByteOrder
}

// LE and BE are little and big endian encoders.
var (
	LE = Encoder{Order: binary.LittleEndian}
	BE = Encoder{Order: binary.BigEndian}
)

// AppendInt appends i using the smallest integer width that holds it.
func (e Encoder) AppendInt(b []byte, i int64) []byte {
	switch {
	case i >= math.MinInt8 && i <= math.MaxInt8:
		return e.AppendInt8(b, int8(i))
	case i >= math.MinInt16 && i <= math.MaxInt16:
		return e.AppendInt16(b, int16(i))
	case i >= math.MinInt32 && i <= math.MaxInt32:
		return e.AppendInt32(b, int32(i))
	}
	return e.AppendInt64(b, i)
}

func (e Encoder) AppendInt8(b []byte, i int8) []byte {
	return append(b, TagInt8, byte(i))
}

func (e Encoder) AppendInt16(b []byte, i int16) []byte {
	return e.Order.AppendUint16(append(b, TagInt16), uint16(i))
}

func (e Encoder) AppendInt32(b []byte, i int32) []byte {
	return e.Order.AppendUint32(append(b, TagInt32), uint32(i))
}

func (e Encoder) AppendInt64(b []byte, i int64) []byte {
	return e.Order.AppendUint64(append(b, TagInt64), uint64(i))
}

func (e Encoder) AppendReal(b []byte, f float64) []byte {
	return e.Order.AppendUint64(append(b, TagReal), math.Float64bits(f))
}

func (e Encoder) AppendBool(b []byte, v bool) []byte {
	if v {
		return append(b, TagTrue)
	}
	return append(b, TagFalse)
}

func (e Encoder) AppendNull(b []byte) []byte { return append(b, TagNull) }

func (e Encoder) AppendSkip(b []byte) []byte { return append(b, TagSkip) }

func (e Encoder) AppendBytes(b []byte, s []byte) []byte {
	b = e.AppendInt(append(b, TagString), int64(len(s)))
	return append(b, s...)
}

func (e Encoder) AppendString(b []byte, s string) []byte {
	b = e.AppendInt(append(b, TagString), int64(len(s)))
	return append(b, s...)
}

func (e Encoder) AppendArrayHeader(b []byte, n int) []byte {
	return e.AppendInt(append(b, TagArray), int64(n))
}

func (e Encoder) AppendObjectHeader(b []byte, n int) []byte {
	return e.AppendInt(append(b, TagObject), int64(n))
}

// AppendTemplateHeader appends the template tag, the key array and the row
// count. The caller appends rows*len(keys) values after it.
func (e Encoder) AppendTemplateHeader(b []byte, keys []string, rows int) []byte {
	b = e.AppendArrayHeader(append(b, TagTemplate), len(keys))
	for _, k := range keys {
		b = e.AppendString(b, k)
	}
	return e.AppendInt(b, int64(rows))
}

// AppendPDU appends the magic prefix, the payload length and the payload.
func (e Encoder) AppendPDU(b []byte, payload []byte) []byte {
	b = e.AppendInt(append(b, 0x00, 0x01), int64(len(payload)))
	return append(b, payload...)
}

// KV is one entry of an Obj.
type KV struct {
	Key   string
	Value any
}

// Obj is an object with a fixed key order. Duplicate keys are encoded as given.
type Obj []KV

// Template is encoded with the template tag. Rows may hold Skip.
type Template struct {
	Keys []string
	Rows [][]any
}

type skip struct{}

// Skip marks a template cell that is left out of its row.
var Skip = skip{}

// AppendValue appends a Go value. Supported are nil, bool, int, int8,
// int16, int32, int64, float64, string, []byte, []any, Obj and Template.
func (e Encoder) AppendValue(b []byte, v any) []byte {
	switch v := v.(type) {
	case nil:
		return e.AppendNull(b)
	case bool:
		return e.AppendBool(b, v)
	case int:
		return e.AppendInt(b, int64(v))
	case int8:
		return e.AppendInt8(b, v)
	case int16:
		return e.AppendInt16(b, v)
	case int32:
		return e.AppendInt32(b, v)
	case int64:
		return e.AppendInt64(b, v)
	case float64:
		return e.AppendReal(b, v)
	case string:
		return e.AppendString(b, v)
	case []byte:
		return e.AppendBytes(b, v)
	case []any:
		b = e.AppendArrayHeader(b, len(v))
		for _, x := range v {
			b = e.AppendValue(b, x)
		}
		return b
	case Obj:
		b = e.AppendObjectHeader(b, len(v))
		for _, kv := range v {
			b = e.AppendString(b, kv.Key)
			b = e.AppendValue(b, kv.Value)
		}
		return b
	case Template:
		b = e.AppendTemplateHeader(b, v.Keys, len(v.Rows))
		for _, row := range v.Rows {
			if len(row) != len(v.Keys) {
				panic(fmt.Sprintf("bsertest: template row has %d cells for %d keys", len(row), len(v.Keys)))
			}
			for _, x := range row {
				if x == Skip {
					b = e.AppendSkip(b)
					continue
				}
				b = e.AppendValue(b, x)
			}
		}
		return b
	case skip:
		return e.AppendSkip(b)
	}
	panic(fmt.Sprintf("bsertest: unsupported type %T", v))
}

// PDU encodes v as a complete PDU.
func (e Encoder) PDU(v any) []byte {
	return e.AppendPDU(nil, e.AppendValue(nil, v))
}

// PDU encodes v as a complete little endian PDU.
func PDU(v any) []byte { return LE.PDU(v) }

// Value encodes v without a PDU header in little endian.
func Value(v any) []byte { return LE.AppendValue(nil, v) }
