package core

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression modes accepted by Decompress.
const (
	CompressionAuto = "auto"
	CompressionNone = "none"
	CompressionZstd = "zstd"
	CompressionLZ4  = "lz4"
	CompressionGzip = "gzip"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
	gzipMagic = []byte{0x1f, 0x8b}
)

// ReadInput reads the named file, or stdin when path is empty or "-".
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// DecodeHex decodes hex text, ignoring any whitespace between digits.
func DecodeHex(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	if len(cleaned) == 0 {
		return nil, errors.New("empty input after stripping whitespace from hex")
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded[:count], nil
}

// SniffCompression reports the compression format announced by the first
// bytes of data, or CompressionNone. A BSER PDU starts with 0x00 0x01, which
// none of the recognized magic numbers share.
func SniffCompression(data []byte) string {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(data, lz4Magic):
		return CompressionLZ4
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	}
	return CompressionNone
}

// ErrInputTooLarge is returned when decompressed input exceeds its cap.
var ErrInputTooLarge = errors.New("decompressed input too large")

// Decompress undoes the requested compression. With CompressionAuto the
// format is sniffed from the input. Output larger than maxSize bytes fails
// with ErrInputTooLarge; a maxSize of zero disables the cap.
func Decompress(data []byte, mode string, maxSize int64) ([]byte, error) {
	if mode == "" || mode == CompressionAuto {
		mode = SniffCompression(data)
	}

	switch mode {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := readCapped(dec, maxSize)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return out, nil
	case CompressionLZ4:
		out, err := readCapped(lz4.NewReader(bytes.NewReader(data)), maxSize)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return out, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		defer zr.Close()
		out, err := readCapped(zr, maxSize)
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown compression %q", mode)
}

// readCapped reads r to the end, failing once more than maxSize bytes arrive.
func readCapped(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		return io.ReadAll(r)
	}
	out, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > maxSize {
		return nil, ErrInputTooLarge
	}
	return out, nil
}

// LoadInput reads, hex decodes and decompresses input as configured.
func LoadInput(path string, stdin io.Reader, hexMode bool, compression string, maxSize int64) ([]byte, error) {
	data, err := ReadInput(path, stdin)
	if err != nil {
		return nil, err
	}
	if hexMode {
		if data, err = DecodeHex(data); err != nil {
			return nil, err
		}
	}
	return Decompress(data, compression, maxSize)
}
