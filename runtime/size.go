package bser

// Encoded sizes, tag byte included. For bytestrings, arrays and objects the
// total encoded size is the tag, the encoded length integer and the payload.
const (
	Int8Size  = 2
	Int16Size = 3
	Int32Size = 5
	Int64Size = 9
	RealSize  = 9
	BoolSize  = 1
	NullSize  = 1
	SkipSize  = 1

	// HeaderSize is the magic prefix plus the smallest length integer.
	HeaderSize = len(magic) + Int8Size
)

// intSize returns the encoded size of an integer with the given tag, or zero
// when tag is not an integer tag.
func intSize(tag byte) int {
	switch tag {
	case tagInt8:
		return Int8Size
	case tagInt16:
		return Int16Size
	case tagInt32:
		return Int32Size
	case tagInt64:
		return Int64Size
	}
	return 0
}
