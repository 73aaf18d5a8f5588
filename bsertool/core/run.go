package core

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	bser "github.com/synadia-labs/bser.go/runtime"
)

// Options configures Decode and Validate.
type Options struct {
	Limits Limits
	Format string
	// Slurp collects every PDU of the stream into one array.
	Slurp  bool
	Logger log.Logger
}

func (o Options) logger() log.Logger {
	if o.Logger == nil {
		return log.NewNopLogger()
	}
	return o.Logger
}

// Summary describes a validated stream.
type Summary struct {
	PDUs  int
	Bytes int
}

// forEachPDU decodes or validates each PDU of data in turn. fn receives the
// index, the offset of the PDU in data and a Reader positioned on it.
func forEachPDU(data []byte, limits Limits, fn func(i, offset int, r *bser.Reader) error) (int, error) {
	stream := limits.NewReader(data)
	pdu := limits.NewReader(nil)
	var i int
	for ; len(stream.Remaining()) > 0; i++ {
		offset := len(data) - len(stream.Remaining())
		b, err := stream.NextPDU()
		if err != nil {
			return i, fmt.Errorf("pdu %d at offset %d: %w", i, offset, err)
		}
		pdu.Reset(b)
		if err := fn(i, offset, pdu); err != nil {
			return i, fmt.Errorf("pdu %d at offset %d: %w", i, offset, err)
		}
	}
	return i, nil
}

// Decode decodes every PDU in data and writes it to w in opts.Format.
func Decode(data []byte, w io.Writer, opts Options) error {
	logger := opts.logger()
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}

	var (
		out     []byte
		slurped []bser.Value
	)
	emit := func(v bser.Value) error {
		var err error
		out, err = Transcode(out[:0], v, format)
		if err != nil {
			return err
		}
		if textFormat(format) {
			out = append(out, '\n')
		}
		_, err = w.Write(out)
		return err
	}

	n, err := forEachPDU(data, opts.Limits, func(i, offset int, r *bser.Reader) error {
		v, err := r.ReadPDU()
		if err != nil {
			return err
		}
		level.Debug(logger).Log("msg", "decoded pdu", "index", i, "offset", offset, "type", v.Type())
		if opts.Slurp {
			slurped = append(slurped, v)
			return nil
		}
		return emit(v)
	})
	if err != nil {
		return err
	}
	if opts.Slurp {
		if err := emit(bser.Array(slurped...)); err != nil {
			return err
		}
	}
	level.Debug(logger).Log("msg", "decode complete", "pdus", n, "bytes", len(data))
	return nil
}

// Validate checks every PDU in data without building trees.
func Validate(data []byte, opts Options) (Summary, error) {
	logger := opts.logger()
	n, err := forEachPDU(data, opts.Limits, func(i, offset int, r *bser.Reader) error {
		if err := r.ValidatePDU(); err != nil {
			return err
		}
		level.Debug(logger).Log("msg", "valid pdu", "index", i, "offset", offset)
		return nil
	})
	if err != nil {
		return Summary{PDUs: n}, err
	}
	if n == 0 {
		return Summary{}, errors.New("no PDUs in input")
	}
	return Summary{PDUs: n, Bytes: len(data)}, nil
}
