package core

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"

	bser "github.com/synadia-labs/bser.go/runtime"
)

// Byte orders accepted by ParseByteOrder.
const (
	OrderLittle = "little"
	OrderBig    = "big"
	OrderNative = "native"
)

// Limits configures a bser.Reader. A zero limit disables that bound.
//
// In YAML the size limits accept human sizes:
//
//	max_depth: 64
//	max_container: 100000
//	max_string: 64MB
//	max_input: 1GB
//	byte_order: little
//	strict_trailing: false
//
// MaxInput caps the input after decompression.
type Limits struct {
	MaxDepth       int               `yaml:"max_depth"`
	MaxContainer   int               `yaml:"max_container"`
	MaxString      datasize.ByteSize `yaml:"max_string"`
	MaxInput       datasize.ByteSize `yaml:"max_input"`
	ByteOrder      string            `yaml:"byte_order"`
	StrictTrailing bool              `yaml:"strict_trailing"`
}

// DefaultMaxInput is the default cap on decompressed input.
const DefaultMaxInput = datasize.GB

// DefaultLimits returns the limits of a fresh bser.Reader.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:     bser.DefaultMaxDepth,
		MaxContainer: bser.DefaultMaxContainerLen,
		MaxString:    datasize.ByteSize(bser.DefaultMaxStringLen),
		MaxInput:     DefaultMaxInput,
		ByteOrder:    OrderLittle,
	}
}

// LoadLimits reads a YAML limits file over the defaults. Keys missing from
// the file keep their default value.
func LoadLimits(path string) (Limits, error) {
	l := DefaultLimits()
	data, err := os.ReadFile(path)
	if err != nil {
		return l, fmt.Errorf("read limits: %w", err)
	}
	if err := yaml.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("parse limits %s: %w", path, err)
	}
	if err := l.Validate(); err != nil {
		return l, fmt.Errorf("limits %s: %w", path, err)
	}
	return l, nil
}

// Validate checks that every field holds a usable value.
func (l Limits) Validate() error {
	if l.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", l.MaxDepth)
	}
	if l.MaxContainer < 0 {
		return fmt.Errorf("max_container must not be negative, got %d", l.MaxContainer)
	}
	if l.MaxString.Bytes() > uint64(maxInt) {
		return fmt.Errorf("max_string %s is too large", l.MaxString.HumanReadable())
	}
	if l.MaxInput.Bytes() > uint64(maxInt) {
		return fmt.Errorf("max_input %s is too large", l.MaxInput.HumanReadable())
	}
	if _, err := ParseByteOrder(l.ByteOrder); err != nil {
		return err
	}
	return nil
}

const maxInt = int(^uint(0) >> 1)

// Apply configures r with l. l must be valid.
func (l Limits) Apply(r *bser.Reader) {
	order, _ := ParseByteOrder(l.ByteOrder)
	r.SetByteOrder(order)
	r.SetMaxDepth(l.MaxDepth)
	r.SetMaxContainerLen(l.MaxContainer)
	r.SetMaxStringLen(int(l.MaxString.Bytes()))
	r.SetStrictTrailing(l.StrictTrailing)
}

// NewReader returns a Reader over b configured with l.
func (l Limits) NewReader(b []byte) *bser.Reader {
	r := bser.NewReaderBytes(b)
	l.Apply(r)
	return r
}

// ParseByteOrder maps little, big or native to a byte order. The empty
// string selects the library default.
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch s {
	case "", OrderLittle:
		return binary.LittleEndian, nil
	case OrderBig:
		return binary.BigEndian, nil
	case OrderNative:
		return binary.NativeEndian, nil
	}
	return nil, fmt.Errorf("unknown byte order %q (want little, big or native)", s)
}
