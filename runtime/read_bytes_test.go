package bser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/synadia-labs/bser.go/internal/bsertest"
)

func TestReadIntBytesWidths(t *testing.T) {
	cases := []struct {
		in   []byte
		want int64
		size int
	}{
		{[]byte{0x03, 0xfe}, -2, Int8Size},
		{[]byte{0x04, 0x00, 0x80}, -32768, Int16Size},
		{[]byte{0x05, 0xff, 0xff, 0xff, 0x7f}, 2147483647, Int32Size},
		{[]byte{0x06, 0x01, 0, 0, 0, 0, 0, 0, 0}, 1, Int64Size},
	}
	for _, tc := range cases {
		in := append(append([]byte{}, tc.in...), 0xaa)
		got, rest, err := ReadIntBytes(in)
		if err != nil {
			t.Fatalf("% x: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("% x: got %d want %d", tc.in, got, tc.want)
		}
		if len(rest) != 1 || rest[0] != 0xaa {
			t.Fatalf("% x: rest = % x", tc.in, rest)
		}
		if _, _, err := ReadIntBytes(tc.in[:tc.size-1]); err != ErrShortBytes {
			t.Fatalf("% x truncated: expected ErrShortBytes, got %v", tc.in, err)
		}
	}
}

func TestReadIntBytesMalformed(t *testing.T) {
	for _, tag := range []byte{0x00, 0x02, 0x07, 0x0a, 0x0c, 0x42} {
		in := []byte{tag, 0x01}
		_, rest, err := ReadIntBytes(in)
		var mte MalformedTagError
		if !errors.As(err, &mte) || mte.Tag != tag {
			t.Fatalf("tag %#x: expected MalformedTagError, got %v", tag, err)
		}
		if len(rest) != len(in) {
			t.Fatalf("tag %#x: input consumed on failure", tag)
		}
	}
	if _, _, err := ReadIntBytes(nil); err != ErrShortBytes {
		t.Fatalf("expected ErrShortBytes, got %v", err)
	}
}

func TestReadBytestringBytes(t *testing.T) {
	in := bsertest.LE.AppendString(nil, "héllo")
	v, rest, err := ReadBytestringBytes(in)
	if err != nil || string(v) != "héllo" || len(rest) != 0 {
		t.Fatalf("got %q rest=%d err=%v", v, len(rest), err)
	}
	v[0] = 'H'
	if in[3] != 'h' {
		t.Fatalf("copy aliases input")
	}

	zc, _, err := ReadBytestringZC(in)
	if err != nil {
		t.Fatalf("ReadBytestringZC: %v", err)
	}
	if cap(zc) != len(zc) {
		t.Fatalf("zero-copy result capacity not clipped")
	}

	if _, _, err := ReadBytestringBytes(in[:len(in)-1]); !errors.Is(err, ErrLengthOverflow) {
		t.Fatalf("expected ErrLengthOverflow, got %v", err)
	}
	if _, _, err := ReadBytestringBytes([]byte{0x03, 0x01}); !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestReadScalarBytes(t *testing.T) {
	b := []byte{0x08, 0x09, 0x0a}
	v, b, err := ReadBoolBytes(b)
	if err != nil || !v {
		t.Fatalf("true: %v %v", v, err)
	}
	v, b, err = ReadBoolBytes(b)
	if err != nil || v {
		t.Fatalf("false: %v %v", v, err)
	}
	if _, _, err := ReadBoolBytes(b); err == nil {
		t.Fatalf("expected TypeError for null")
	}
	b, err = ReadNullBytes(b)
	if err != nil || len(b) != 0 {
		t.Fatalf("null: %v", err)
	}

	f, _, err := ReadRealBytes(bsertest.LE.AppendReal(nil, 3.25))
	if err != nil || f != 3.25 {
		t.Fatalf("real: %v %v", f, err)
	}
	var te TypeError
	if _, _, err := ReadRealBytes([]byte{0x03, 0x01}); !errors.As(err, &te) || te.Encoded != IntType {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

func TestReadContainerHeaders(t *testing.T) {
	arr := bsertest.Value([]any{1, 2})
	n, rest, err := ReadArrayHeaderBytes(arr)
	if err != nil || n != 2 || len(rest) != 4 {
		t.Fatalf("array header: n=%d rest=%d err=%v", n, len(rest), err)
	}
	if _, _, err := ReadObjectHeaderBytes(arr); err == nil {
		t.Fatalf("expected TypeError reading array as object")
	}
	obj := bsertest.Value(bsertest.Obj{{Key: "a", Value: nil}})
	n, _, err = ReadObjectHeaderBytes(obj)
	if err != nil || n != 1 {
		t.Fatalf("object header: n=%d err=%v", n, err)
	}
}

func TestNextType(t *testing.T) {
	cases := []struct {
		in   []byte
		want Type
	}{
		{nil, InvalidType},
		{[]byte{0x00}, ArrayType},
		{[]byte{0x01}, ObjectType},
		{[]byte{0x02}, BytestringType},
		{[]byte{0x05}, IntType},
		{[]byte{0x07}, RealType},
		{[]byte{0x09}, BoolType},
		{[]byte{0x0a}, NullType},
		{[]byte{0x0b}, TemplateType},
		{[]byte{0x0c}, InvalidType},
	}
	for _, tc := range cases {
		if got := NextType(tc.in); got != tc.want {
			t.Fatalf("% x: got %s want %s", tc.in, got, tc.want)
		}
	}
	if !IsNull([]byte{0x0a}) || IsNull(nil) {
		t.Fatalf("IsNull mismatch")
	}
}

func TestSkipBytes(t *testing.T) {
	b := bsertest.Value(bsertest.Obj{
		{Key: "t", Value: bsertest.Template{Keys: []string{"a"}, Rows: [][]any{{bsertest.Skip}, {1.5}}}},
		{Key: "s", Value: "x"},
	})
	b = append(b, 0x0a)
	rest, err := Skip(b)
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if diff := cmp.Diff([]byte{0x0a}, rest); diff != "" {
		t.Fatalf("rest (-want +got):\n%s", diff)
	}
	if _, err := Skip(b[:len(b)-2]); err == nil {
		t.Fatalf("expected error skipping truncated value")
	}
}

func TestPDUHeaderAndStreams(t *testing.T) {
	one := bsertest.PDU("a")
	two := bsertest.PDU([]any{1, 2})
	stream := append(append([]byte{}, one...), two...)

	sz, rest, err := ReadPDUHeaderBytes(stream)
	if err != nil || sz != int64(len(one)-HeaderSize) {
		t.Fatalf("header: sz=%d err=%v", sz, err)
	}
	if len(rest) != len(stream)-HeaderSize {
		t.Fatalf("header rest = %d", len(rest))
	}

	pdu, rest, err := NextPDUBytes(stream)
	if err != nil {
		t.Fatalf("NextPDUBytes: %v", err)
	}
	if diff := cmp.Diff(one, pdu); diff != "" {
		t.Fatalf("first pdu (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(two, rest); diff != "" {
		t.Fatalf("rest (-want +got):\n%s", diff)
	}

	var n int
	err = ForEachPDUBytes(stream, func(pdu []byte) error {
		if _, err := Loads(pdu); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil || n != 2 {
		t.Fatalf("ForEachPDUBytes: n=%d err=%v", n, err)
	}

	if err := ForEachPDUBytes(stream[:len(stream)-1], func([]byte) error { return nil }); err != ErrShortBytes {
		t.Fatalf("expected ErrShortBytes for partial PDU, got %v", err)
	}
	if _, _, err := NextPDUBytes([]byte{0x00, 0x01, 0x03, 0xff}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch for negative length, got %v", err)
	}
}
