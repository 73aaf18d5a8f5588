package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/c2h5oh/datasize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/synadia-labs/bser.go/bsertool/core"
)

// CLI defines the bsertool command-line interface.
type CLI struct {
	Verbose bool `short:"v" help:"Enable verbose diagnostics"`

	Decode   DecodeCmd   `cmd:"" help:"Decode BSER PDUs and print them."`
	Validate ValidateCmd `cmd:"" help:"Check that input holds well formed BSER PDUs."`
}

// InputFlags select and preprocess the input, shared by every command.
type InputFlags struct {
	File       string `arg:"" optional:"" help:"Input file (defaults to stdin)"`
	Hex        bool   `help:"Input is hex text; whitespace is ignored"`
	Decompress string `help:"Input compression" enum:"auto,none,zstd,lz4,gzip" default:"auto"`
}

// LimitFlags override the decoder limits. Unset flags keep the value from
// --limits or the library default.
type LimitFlags struct {
	Limits         string `help:"YAML file with decoder limits" type:"existingfile"`
	MaxDepth       int    `help:"Maximum nesting depth (0 disables)" default:"-1"`
	MaxContainer   int    `help:"Maximum array, object or template row count (0 disables)" default:"-1"`
	MaxString      string `help:"Maximum bytestring length, e.g. 64MB (0 disables)"`
	MaxInput       string `help:"Maximum input size after decompression, e.g. 1GB (0 disables)"`
	ByteOrder      string `help:"Byte order of multi-byte numbers: little, big or native"`
	StrictTrailing bool   `help:"Reject bytes after the value inside a PDU payload"`
}

func (f LimitFlags) resolve() (core.Limits, error) {
	l := core.DefaultLimits()
	if f.Limits != "" {
		var err error
		if l, err = core.LoadLimits(f.Limits); err != nil {
			return l, err
		}
	}
	if f.MaxDepth >= 0 {
		l.MaxDepth = f.MaxDepth
	}
	if f.MaxContainer >= 0 {
		l.MaxContainer = f.MaxContainer
	}
	if f.MaxString != "" {
		var sz datasize.ByteSize
		if err := sz.UnmarshalText([]byte(f.MaxString)); err != nil {
			return l, fmt.Errorf("--max-string: %w", err)
		}
		l.MaxString = sz
	}
	if f.MaxInput != "" {
		var sz datasize.ByteSize
		if err := sz.UnmarshalText([]byte(f.MaxInput)); err != nil {
			return l, fmt.Errorf("--max-input: %w", err)
		}
		l.MaxInput = sz
	}
	if f.ByteOrder != "" {
		l.ByteOrder = f.ByteOrder
	}
	if f.StrictTrailing {
		l.StrictTrailing = true
	}
	return l, l.Validate()
}

type DecodeCmd struct {
	InputFlags `embed:""`
	LimitFlags `embed:""`

	Format string `short:"f" help:"Output format" enum:"json,diag,cbor,msgpack" default:"json"`
	Slurp  bool   `help:"Decode a stream of PDUs into a single array"`
}

func (c *DecodeCmd) Run(g *globals) error {
	data, limits, err := prepare(c.InputFlags, c.LimitFlags, g)
	if err != nil {
		return err
	}
	return core.Decode(data, g.stdout, core.Options{
		Limits: limits,
		Format: c.Format,
		Slurp:  c.Slurp,
		Logger: g.logger,
	})
}

type ValidateCmd struct {
	InputFlags `embed:""`
	LimitFlags `embed:""`
}

func (c *ValidateCmd) Run(g *globals) error {
	data, limits, err := prepare(c.InputFlags, c.LimitFlags, g)
	if err != nil {
		return err
	}
	sum, err := core.Validate(data, core.Options{Limits: limits, Logger: g.logger})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.stdout, "valid (%d PDUs, %d bytes)\n", sum.PDUs, sum.Bytes)
	return err
}

type globals struct {
	stdin  io.Reader
	stdout io.Writer
	logger log.Logger
}

func prepare(in InputFlags, lf LimitFlags, g *globals) ([]byte, core.Limits, error) {
	limits, err := lf.resolve()
	if err != nil {
		return nil, limits, err
	}
	data, err := core.LoadInput(in.File, g.stdin, in.Hex, in.Decompress, int64(limits.MaxInput.Bytes()))
	if err != nil {
		return nil, limits, err
	}
	level.Debug(g.logger).Log("msg", "input loaded", "bytes", len(data), "compression", in.Decompress)
	return data, limits, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bsertool"),
		kong.Description("Decode and validate BSER, the binary protocol of file watching services."),
	)

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if cli.Verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	err := ctx.Run(&globals{stdin: os.Stdin, stdout: os.Stdout, logger: logger})
	ctx.FatalIfErrorf(err)
}
