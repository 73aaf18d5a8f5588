package bser

import (
	"math"
	"strconv"
)

// DiagBytes renders the next BSER value in diagnostic notation and returns
// the remaining bytes.
//
// Bytestrings holding valid UTF-8 render as quoted text, others as h'..'.
// Templates render as the array of objects they expand to.
func DiagBytes(b []byte) (string, []byte, error) {
	r := NewReaderBytes(b)
	r.SetZeroCopy(true)
	v, err := r.ReadValue()
	if err != nil {
		return "", b, err
	}
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	diagValue(bb, v)
	return string(bb.Bytes()), r.Remaining(), nil
}

func diagValue(buf *ByteBuffer, v Value) {
	switch v.typ {
	case NullType:
		buf.WriteString("null")
	case BoolType:
		if v.n != 0 {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case IntType:
		buf.AppendInt64(int64(v.n))
	case RealType:
		buf.WriteString(formatFloat64Diag(math.Float64frombits(v.n)))
	case BytestringType:
		diagBytestring(buf, v.b)
	case ArrayType:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteString(", ")
			}
			diagValue(buf, e)
		}
		buf.WriteByte(']')
	case ObjectType:
		buf.WriteByte('{')
		for i, p := range v.obj.Pairs() {
			if i > 0 {
				buf.WriteString(", ")
			}
			diagBytestring(buf, p.Key)
			buf.WriteString(": ")
			diagValue(buf, p.Value)
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("<invalid>")
	}
}

func diagBytestring(buf *ByteBuffer, s []byte) {
	if isUTF8Valid(s) {
		buf.AppendQuoted(s)
		return
	}
	buf.WriteString("h'")
	buf.AppendHex(s)
	buf.WriteByte('\'')
}

// formatFloat64Diag returns a diagnostic string for a real. Integral values
// keep a ".0" suffix so they stay distinguishable from integers.
func formatFloat64Diag(f float64) string {
	if math.IsInf(f, +1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	af := math.Abs(f)
	if af == 0 || af < 1e15 {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if f == math.Trunc(f) {
			s += ".0"
		}
		return s
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
