package bser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const resumableDefault = false

var (
	// ErrShortBytes is returned when the
	// slice being decoded is too short to
	// contain the contents of the value
	ErrShortBytes error = errShort{}

	// ErrMaxDepthExceeded is returned when nesting exceeds the configured depth.
	// This should only realistically be seen on adversarial data trying to exhaust the stack.
	ErrMaxDepthExceeded error = errDepth{}

	// ErrMalformedTag is matched by MalformedTagError.
	ErrMalformedTag = errors.New("bser: malformed integer tag")

	// ErrUnknownTag is matched by UnknownTagError.
	ErrUnknownTag = errors.New("bser: unknown tag")

	// ErrLengthOverflow is matched by LengthOverflowError.
	ErrLengthOverflow = errors.New("bser: declared length out of range")

	// ErrLengthMismatch is matched by LengthMismatchError.
	ErrLengthMismatch = errors.New("bser: data length != header length")

	// ErrMalformedTemplate is returned when a template is not followed by an
	// array of bytestring keys.
	ErrMalformedTemplate = errors.New("bser: expected array of keys to follow template")

	// ErrInvalidHeader is returned when a PDU does not start with the magic
	// prefix and a readable length.
	ErrInvalidHeader = errors.New("bser: invalid header")
)

// Error is the interface satisfied
// by all of the errors that originate
// from this package.
type Error interface {
	error

	// Resumable returns whether
	// or not decoding may continue
	// past the error. No BSER error is
	// resumable: every failure ends the decode.
	Resumable() bool
}

// contextError allows Error instances to be enhanced with additional
// context about their origin.
type contextError interface {
	Error

	// withContext must not modify the error instance - it must clone and
	// return a new error with the context added.
	withContext(ctx string) error
}

// Cause returns the underlying cause of an error that has been wrapped
// with additional context.
func Cause(e error) error {
	out := e
	if e, ok := e.(errWrapped); ok && e.cause != nil {
		out = e.cause
	}
	return out
}

// Resumable returns whether or not the error means that the stream of data is
// malformed and the information is unrecoverable.
func Resumable(e error) bool {
	if e, ok := e.(Error); ok {
		return e.Resumable()
	}
	return resumableDefault
}

// WrapError wraps an error with additional context that allows the part of the
// value tree that caused the problem to be identified. Underlying errors
// can be retrieved using Cause()
//
// The input error is not modified - a new error should be returned.
//
// ErrShortBytes and ErrMaxDepthExceeded are not wrapped so callers can compare
// them directly.
func WrapError(err error, ctx ...any) error {
	switch e := err.(type) {
	case errShort, errDepth:
		return e
	case contextError:
		return e.withContext(ctxString(ctx))
	default:
		return errWrapped{cause: err, ctx: ctxString(ctx)}
	}
}

func addCtx(ctx, add string) string {
	if ctx != "" {
		return add + "/" + ctx
	} else {
		return add
	}
}

func ctxString(ctx []any) string {
	parts := make([]string, 0, len(ctx))
	for _, c := range ctx {
		switch c := c.(type) {
		case int:
			parts = append(parts, "["+strconv.Itoa(c)+"]")
		case string:
			parts = append(parts, c)
		case []byte:
			parts = append(parts, string(c))
		default:
			parts = append(parts, fmt.Sprint(c))
		}
	}
	return strings.Join(parts, "/")
}

func quoteStr(s string) string {
	return strconv.Quote(s)
}

func hexByte(b byte) string {
	const digits = "0123456789abcdef"
	return "0x" + string([]byte{digits[b>>4], digits[b&0xf]})
}

// errWrapped allows arbitrary errors passed to WrapError to be enhanced with
// context and unwrapped with Cause()
type errWrapped struct {
	cause error
	ctx   string
}

func (e errWrapped) Error() string {
	if e.ctx != "" {
		return e.cause.Error() + " at " + e.ctx
	} else {
		return e.cause.Error()
	}
}

func (e errWrapped) Resumable() bool {
	if e, ok := e.cause.(Error); ok {
		return e.Resumable()
	}
	return resumableDefault
}

func (e errWrapped) withContext(ctx string) error {
	e.ctx = addCtx(e.ctx, ctx)
	return e
}

// Unwrap returns the cause.
func (e errWrapped) Unwrap() error { return e.cause }

type errShort struct{}

func (e errShort) Error() string   { return "bser: too few bytes left to read value" }
func (e errShort) Resumable() bool { return false }

type errDepth struct{}

func (e errDepth) Error() string   { return "bser: max depth exceeded" }
func (e errDepth) Resumable() bool { return false }

// MalformedTagError is returned when an integer is expected
// but the tag byte is not one of the four integer size tags.
type MalformedTagError struct {
	Tag    byte
	Offset int // offset of the tag byte in the input
	ctx    string
}

// Error implements the error interface
func (e MalformedTagError) Error() string {
	out := "bser: invalid bser int encoding " + hexByte(e.Tag) + " at offset " + strconv.Itoa(e.Offset)
	if e.ctx != "" {
		out += " at " + e.ctx
	}
	return out
}

// Is reports whether target is ErrMalformedTag.
func (e MalformedTagError) Is(target error) bool { return target == ErrMalformedTag }

// Resumable is always 'false'
func (e MalformedTagError) Resumable() bool { return false }

func (e MalformedTagError) withContext(ctx string) error { e.ctx = addCtx(e.ctx, ctx); return e }

// UnknownTagError is returned when a value starts with a byte
// that is not a BSER tag. SKIP outside of a template row is reported
// this way too.
type UnknownTagError struct {
	Tag    byte
	Offset int
	ctx    string
}

// Error implements the error interface
func (e UnknownTagError) Error() string {
	out := "bser: unhandled bser opcode " + hexByte(e.Tag) + " at offset " + strconv.Itoa(e.Offset)
	if e.ctx != "" {
		out += " at " + e.ctx
	}
	return out
}

// Is reports whether target is ErrUnknownTag.
func (e UnknownTagError) Is(target error) bool { return target == ErrUnknownTag }

// Resumable is always 'false'
func (e UnknownTagError) Resumable() bool { return false }

func (e UnknownTagError) withContext(ctx string) error { e.ctx = addCtx(e.ctx, ctx); return e }

// LengthOverflowError is returned when a declared bytestring length or
// container count is negative, runs past the end of the input, or is above
// the configured limit.
type LengthOverflowError struct {
	Length    int64 // the declared length
	Limit     int64 // the configured limit, zero when disabled
	Available int64 // the largest length the remaining input can hold
	Offset    int   // offset of the length integer
	ctx       string
}

// Error implements the error interface
func (e LengthOverflowError) Error() string {
	out := "bser: declared length " + strconv.FormatInt(e.Length, 10)
	switch {
	case e.Length < 0:
		out += " is negative"
	case e.Limit > 0 && e.Length > e.Limit && e.Limit <= e.Available:
		out += " exceeds limit " + strconv.FormatInt(e.Limit, 10)
	default:
		out += " exceeds remaining input (room for " + strconv.FormatInt(e.Available, 10) + ")"
	}
	out += " at offset " + strconv.Itoa(e.Offset)
	if e.ctx != "" {
		out += " at " + e.ctx
	}
	return out
}

// Is reports whether target is ErrLengthOverflow.
func (e LengthOverflowError) Is(target error) bool { return target == ErrLengthOverflow }

// Resumable is always 'false'
func (e LengthOverflowError) Resumable() bool { return false }

func (e LengthOverflowError) withContext(ctx string) error { e.ctx = addCtx(e.ctx, ctx); return e }

// LengthMismatchError is returned when the payload length declared in a PDU
// header differs from the number of bytes that follow it.
type LengthMismatchError struct {
	Declared int64
	Actual   int
}

// Error implements the error interface
func (e LengthMismatchError) Error() string {
	return "bser: data len " + strconv.Itoa(e.Actual) + " != header len " + strconv.FormatInt(e.Declared, 10)
}

// Is reports whether target is ErrLengthMismatch.
func (e LengthMismatchError) Is(target error) bool { return target == ErrLengthMismatch }

// Resumable is always 'false'
func (e LengthMismatchError) Resumable() bool { return false }

// A TypeError is returned when a particular
// decoding method is unsuitable for decoding
// a particular BSER value.
type TypeError struct {
	Method  Type // Type expected by method
	Encoded Type // Type actually encoded

	ctx string
}

// Error implements the error interface
func (t TypeError) Error() string {
	out := "bser: attempted to decode type " + quoteStr(t.Encoded.String()) + " with method for " + quoteStr(t.Method.String())
	if t.ctx != "" {
		out += " at " + t.ctx
	}
	return out
}

// Resumable is always 'false'
func (t TypeError) Resumable() bool { return false }

func (t TypeError) withContext(ctx string) error { t.ctx = addCtx(t.ctx, ctx); return t }

// withOffset shifts the offset carried by err by delta bytes. Leaf readers
// report offsets relative to the slice they were handed; callers rebase them.
func withOffset(err error, delta int) error {
	switch e := err.(type) {
	case MalformedTagError:
		e.Offset += delta
		return e
	case UnknownTagError:
		e.Offset += delta
		return e
	case LengthOverflowError:
		e.Offset += delta
		return e
	}
	return err
}
