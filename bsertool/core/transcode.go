package core

import (
	"fmt"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
	"github.com/tinylib/msgp/msgp"

	bser "github.com/synadia-labs/bser.go/runtime"
)

// Output formats accepted by Transcode.
const (
	FormatJSON    = "json"
	FormatDiag    = "diag"
	FormatCBOR    = "cbor"
	FormatMsgpack = "msgpack"
)

// textFormat reports whether records of the format are newline separated.
func textFormat(format string) bool {
	return format == FormatJSON || format == FormatDiag
}

var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bsertool: cbor encoder initialization failed: " + err.Error())
	}
	return em
}()

// Transcode appends v to dst in the requested format.
//
// Bytestrings holding valid UTF-8 become text in every format; other
// bytestrings stay binary (base64 wrapped in JSON). CBOR output uses Core
// Deterministic Encoding and so sorts object keys; msgpack keeps the
// decoded key order.
func Transcode(dst []byte, v bser.Value, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		js, err := v.MarshalJSON()
		if err != nil {
			return dst, err
		}
		return append(dst, js...), nil
	case FormatDiag:
		return append(dst, v.String()...), nil
	case FormatCBOR:
		enc, err := cborEncMode.Marshal(native(v))
		if err != nil {
			return dst, fmt.Errorf("cbor encode: %w", err)
		}
		return append(dst, enc...), nil
	case FormatMsgpack:
		return appendMsgpack(dst, v), nil
	}
	return dst, fmt.Errorf("unknown format %q", format)
}

// native converts v to Go values that generic encoders understand.
func native(v bser.Value) any {
	switch v.Type() {
	case bser.BoolType:
		b, _ := v.Bool()
		return b
	case bser.IntType:
		i, _ := v.Int()
		return i
	case bser.RealType:
		f, _ := v.Real()
		return f
	case bser.BytestringType:
		s, _ := v.Bytes()
		if utf8.Valid(s) {
			return string(s)
		}
		return s
	case bser.ArrayType:
		arr, _ := v.Array()
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = native(e)
		}
		return out
	case bser.ObjectType:
		obj, _ := v.Object()
		out := make(map[string]any, obj.Len())
		obj.Range(func(key []byte, e bser.Value) bool {
			out[string(key)] = native(e)
			return true
		})
		return out
	}
	return nil
}

func appendMsgpack(b []byte, v bser.Value) []byte {
	switch v.Type() {
	case bser.BoolType:
		x, _ := v.Bool()
		return msgp.AppendBool(b, x)
	case bser.IntType:
		i, _ := v.Int()
		return msgp.AppendInt64(b, i)
	case bser.RealType:
		f, _ := v.Real()
		return msgp.AppendFloat64(b, f)
	case bser.BytestringType:
		s, _ := v.Bytes()
		if utf8.Valid(s) {
			return msgp.AppendStringFromBytes(b, s)
		}
		return msgp.AppendBytes(b, s)
	case bser.ArrayType:
		arr, _ := v.Array()
		b = msgp.AppendArrayHeader(b, uint32(len(arr)))
		for _, e := range arr {
			b = appendMsgpack(b, e)
		}
		return b
	case bser.ObjectType:
		obj, _ := v.Object()
		b = msgp.AppendMapHeader(b, uint32(obj.Len()))
		obj.Range(func(key []byte, e bser.Value) bool {
			b = msgp.AppendStringFromBytes(b, key)
			b = appendMsgpack(b, e)
			return true
		})
		return b
	}
	return msgp.AppendNil(b)
}
