package tests

import (
	"testing"

	"github.com/synadia-labs/bser.go/internal/bsertest"
	bser "github.com/synadia-labs/bser.go/runtime"
)

func TestPDUStreamSplit(t *testing.T) {
	var stream []byte
	want := []string{"hi", "there", ""}
	for _, s := range want {
		stream = append(stream, bsertest.PDU(s)...)
	}

	var got []string
	err := bser.ForEachPDUBytes(stream, func(pdu []byte) error {
		v, err := bser.Loads(pdu)
		if err != nil {
			return err
		}
		s, ok := v.Bytes()
		if !ok {
			t.Fatalf("expected bytestring, got %s", v.Type())
		}
		got = append(got, string(s))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachPDUBytes: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d PDUs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pdu %d: got %q want %q", i, got[i], want[i])
		}
	}
}

// FuzzPDUStreams fuzzes the stream helpers to ensure they do not
// panic on arbitrary input.
func FuzzPDUStreams(f *testing.F) {
	seq := append(bsertest.PDU("hi"), bsertest.PDU(int64(42))...)
	f.Add(seq)
	f.Add([]byte{0x00, 0x01, 0x03, 0x7f})

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic in stream fuzz: %v", r)
			}
		}()

		_ = bser.ForEachPDUBytes(data, func(pdu []byte) error {
			if _, err := bser.Loads(pdu); err != nil {
				return err
			}
			return bser.ValidateBytes(pdu)
		})

		_ = bser.NewReaderBytes(data).ValidateStream()

		// every split must consume bytes
		rest := data
		for len(rest) > 0 {
			pdu, next, err := bser.NextPDUBytes(rest)
			if err != nil {
				break
			}
			if len(pdu) == 0 || len(next) >= len(rest) {
				t.Fatalf("NextPDUBytes made no progress")
			}
			rest = next
		}
	})
}
