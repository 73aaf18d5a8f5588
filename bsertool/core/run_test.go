package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"

	"github.com/synadia-labs/bser.go/internal/bsertest"
	bser "github.com/synadia-labs/bser.go/runtime"
)

func sampleStream() []byte {
	var b []byte
	b = append(b, bsertest.PDU(bsertest.Obj{
		{Key: "clock", Value: "c:1:2"},
		{Key: "files", Value: bsertest.Template{
			Keys: []string{"name", "exists"},
			Rows: [][]any{{"a.go", true}, {"b.go", bsertest.Skip}},
		}},
	})...)
	b = append(b, bsertest.PDU([]any{1, 2.5, nil})...)
	return b
}

func TestDecodeJSON(t *testing.T) {
	var out bytes.Buffer
	err := Decode(sampleStream(), &out, Options{Limits: DefaultLimits()})
	require.NoError(t, err)
	require.Equal(t,
		`{"clock":"c:1:2","files":[{"name":"a.go","exists":true},{"name":"b.go"}]}`+"\n"+
			`[1,2.5,null]`+"\n",
		out.String())
}

func TestDecodeSlurpDiag(t *testing.T) {
	var out bytes.Buffer
	err := Decode(bsertest.PDU("xyy"), &out, Options{
		Limits: DefaultLimits(),
		Format: FormatDiag,
		Slurp:  true,
	})
	require.NoError(t, err)
	require.Equal(t, `["xyy"]`+"\n", out.String())
}

func TestDecodeCBOR(t *testing.T) {
	var out bytes.Buffer
	err := Decode(bsertest.PDU(bsertest.Obj{
		{Key: "b", Value: []byte{0xff}},
		{Key: "a", Value: int64(-7)},
	}), &out, Options{Limits: DefaultLimits(), Format: FormatCBOR})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, cbor.Unmarshal(out.Bytes(), &got))
	require.Equal(t, map[string]any{"a": int64(-7), "b": []byte{0xff}}, got)

	// deterministic encoding sorts keys
	require.Equal(t, byte(0xa2), out.Bytes()[0])
	require.Equal(t, []byte{0x61, 'a'}, out.Bytes()[1:3])
}

func TestDecodeMsgpack(t *testing.T) {
	var out bytes.Buffer
	err := Decode(bsertest.PDU(bsertest.Obj{
		{Key: "z", Value: "last-first"},
		{Key: "a", Value: []any{true, 1.5}},
	}), &out, Options{Limits: DefaultLimits(), Format: FormatMsgpack})
	require.NoError(t, err)

	b := out.Bytes()
	sz, b, err := msgp.ReadMapHeaderBytes(b)
	require.NoError(t, err)
	require.EqualValues(t, 2, sz)

	key, b, err := msgp.ReadStringBytes(b)
	require.NoError(t, err)
	require.Equal(t, "z", key)
	val, b, err := msgp.ReadStringBytes(b)
	require.NoError(t, err)
	require.Equal(t, "last-first", val)

	key, b, err = msgp.ReadStringBytes(b)
	require.NoError(t, err)
	require.Equal(t, "a", key)
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	flag, b, err := msgp.ReadBoolBytes(b)
	require.NoError(t, err)
	require.True(t, flag)
	f, b, err := msgp.ReadFloat64Bytes(b)
	require.NoError(t, err)
	require.Equal(t, 1.5, f)
	require.Empty(t, b)
}

func TestDecodeErrors(t *testing.T) {
	stream := sampleStream()
	broken := append(append([]byte{}, stream...), bsertest.LE.AppendPDU(nil, []byte{0x0c})...)

	var out bytes.Buffer
	err := Decode(broken, &out, Options{Limits: DefaultLimits()})
	require.ErrorIs(t, err, bser.ErrUnknownTag)
	require.ErrorContains(t, err, "pdu 2 at offset")
	// earlier PDUs were already written
	require.Equal(t, 2, strings.Count(out.String(), "\n"))

	l := DefaultLimits()
	l.MaxContainer = 1
	err = Decode(stream, &bytes.Buffer{}, Options{Limits: l})
	require.ErrorIs(t, err, bser.ErrLengthOverflow)

	err = Decode(stream, &bytes.Buffer{}, Options{Limits: DefaultLimits(), Format: "xml"})
	require.ErrorContains(t, err, "unknown format")
}

func TestValidate(t *testing.T) {
	var logs bytes.Buffer
	stream := sampleStream()
	sum, err := Validate(stream, Options{
		Limits: DefaultLimits(),
		Logger: log.NewLogfmtLogger(&logs),
	})
	require.NoError(t, err)
	require.Equal(t, Summary{PDUs: 2, Bytes: len(stream)}, sum)
	require.Contains(t, logs.String(), `msg="valid pdu" index=1`)

	sum, err = Validate(stream[:len(stream)-1], Options{Limits: DefaultLimits()})
	require.ErrorIs(t, err, bser.ErrShortBytes)
	require.Equal(t, 1, sum.PDUs)

	_, err = Validate(nil, Options{Limits: DefaultLimits()})
	require.ErrorContains(t, err, "no PDUs")
}
