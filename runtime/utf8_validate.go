package bser

import "unicode/utf8"

// isUTF8Valid reports whether a bytestring can be rendered as text. It can be
// overridden by architecture-specific implementations via build tags.
var isUTF8Valid = func(b []byte) bool { return utf8.Valid(b) }
