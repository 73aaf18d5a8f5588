package bser

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
)

// ToJSONBytes converts the next BSER value into a JSON encoding and
// returns the JSON bytes and remainder.
//
// Bytestrings that hold valid UTF-8 become JSON strings. Other bytestrings
// become {"$base64": "..."} wrapper objects. Object keys are always JSON
// strings; invalid UTF-8 in a key is replaced with U+FFFD. Reals that JSON
// cannot represent (NaN and the infinities) become null.
func ToJSONBytes(b []byte) ([]byte, []byte, error) {
	r := NewReaderBytes(b)
	r.SetZeroCopy(true)
	v, err := r.ReadValue()
	if err != nil {
		return nil, b, err
	}
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	toJSON(bb, v)
	return bb.CopyBytes(), r.Remaining(), nil
}

// MarshalJSON implements json.Marshaler with the mapping of ToJSONBytes.
func (v Value) MarshalJSON() ([]byte, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	toJSON(bb, v)
	return bb.CopyBytes(), nil
}

func toJSON(buf *ByteBuffer, v Value) {
	switch v.typ {
	case BoolType:
		if v.n != 0 {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case IntType:
		buf.AppendInt64(int64(v.n))
	case RealType:
		f := math.Float64frombits(v.n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
			return
		}
		buf.b = strconv.AppendFloat(buf.b, f, 'g', -1, 64)
	case BytestringType:
		if isUTF8Valid(v.b) {
			writeJSONString(buf, UnsafeString(v.b))
			return
		}
		buf.WriteString(`{"$base64":"`)
		encodeBase64Std(buf, v.b)
		buf.WriteString(`"}`)
	case ArrayType:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			toJSON(buf, e)
		}
		buf.WriteByte(']')
	case ObjectType:
		buf.WriteByte('{')
		for i, p := range v.obj.Pairs() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, UnsafeString(p.Key))
			buf.WriteByte(':')
			toJSON(buf, p.Value)
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
}

// writeJSONString appends s as a JSON string without HTML escaping.
func writeJSONString(buf *ByteBuffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.b = buf.b[:len(buf.b)-1] // Encode terminates with a newline
}

func encodeBase64Std(buf *ByteBuffer, src []byte) {
	base64.StdEncoding.Encode(buf.Extend(base64.StdEncoding.EncodedLen(len(src))), src)
}
