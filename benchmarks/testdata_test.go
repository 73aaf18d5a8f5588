package benchmarks

import (
	"fmt"
	"testing"

	"github.com/synadia-labs/bser.go/bsertool/core"
	"github.com/synadia-labs/bser.go/internal/bsertest"
	bser "github.com/synadia-labs/bser.go/runtime"
)

// numFiles matches the size of a typical query result for a mid-sized
// source tree.
const numFiles = 2000

var fileKeys = []string{"name", "size", "mtime_ms", "exists", "new", "type"}

func fileRow(i int) []any {
	row := []any{
		fmt.Sprintf("src/pkg%03d/file_%05d.go", i%100, i),
		int64(1024 + i*17),
		int64(1700000000000 + i),
		true,
		i%7 == 0,
		"f",
	}
	if i%5 == 0 {
		row[4] = bsertest.Skip
	}
	return row
}

// queryResult builds a query response whose file list is encoded either as
// a template or as a plain array of objects.
func queryResult(template bool) any {
	var files any
	if template {
		t := bsertest.Template{Keys: fileKeys}
		for i := 0; i < numFiles; i++ {
			t.Rows = append(t.Rows, fileRow(i))
		}
		files = t
	} else {
		arr := make([]any, 0, numFiles)
		for i := 0; i < numFiles; i++ {
			var obj bsertest.Obj
			for j, cell := range fileRow(i) {
				if cell == bsertest.Skip {
					continue
				}
				obj = append(obj, bsertest.KV{Key: fileKeys[j], Value: cell})
			}
			arr = append(arr, obj)
		}
		files = arr
	}
	return bsertest.Obj{
		{Key: "version", Value: "2024.03.18.00"},
		{Key: "clock", Value: "c:1710000000:4242:1:987"},
		{Key: "is_fresh_instance", Value: false},
		{Key: "files", Value: files},
	}
}

type fixture struct {
	bser     []byte
	template []byte
	cbor     []byte
	msgpack  []byte
}

// newFixture encodes the same document in every format. The CBOR and msgpack
// encodings are produced from the decoded tree, so all decoders see the
// same logical content.
func newFixture(tb testing.TB) fixture {
	tb.Helper()
	f := fixture{
		bser:     bsertest.PDU(queryResult(false)),
		template: bsertest.PDU(queryResult(true)),
	}
	v, err := bser.Loads(f.bser)
	if err != nil {
		tb.Fatalf("Loads: %v", err)
	}
	if f.cbor, err = core.Transcode(nil, v, core.FormatCBOR); err != nil {
		tb.Fatalf("cbor transcode: %v", err)
	}
	if f.msgpack, err = core.Transcode(nil, v, core.FormatMsgpack); err != nil {
		tb.Fatalf("msgpack transcode: %v", err)
	}
	return f
}

func TestFixtureEquivalence(t *testing.T) {
	f := newFixture(t)
	plain, err := bser.Loads(f.bser)
	if err != nil {
		t.Fatalf("Loads plain: %v", err)
	}
	tmpl, err := bser.Loads(f.template)
	if err != nil {
		t.Fatalf("Loads template: %v", err)
	}
	if !plain.Equal(tmpl) {
		t.Fatalf("template and plain encodings decode differently")
	}
	if len(f.template) >= len(f.bser) {
		t.Fatalf("template encoding is not smaller: %d >= %d", len(f.template), len(f.bser))
	}
}
