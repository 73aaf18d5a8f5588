package bser

// ValidatePDU checks that the buffer holds one well formed PDU without
// building a tree, and advances past it.
// Checks performed:
// - the magic prefix and a payload length equal to the bytes that follow
// - every tag, integer width, length and count, under the Reader's limits
// - template key arrays holding only bytestrings
// - no bytes after the value when strict trailing checks are enabled
func (r *Reader) ValidatePDU() error {
	payload, err := r.readEnvelope(r.buf)
	if err != nil {
		return err
	}
	o, err := r.skipValue(payload, 0)
	if err != nil {
		return err
	}
	if len(o) > 0 && r.strictTrailing {
		return ErrTrailingBytes
	}
	r.buf = payload[len(payload):]
	return nil
}

// ValidateBytes checks that b holds one well formed PDU with the default
// limits.
func ValidateBytes(b []byte) error {
	return NewReaderBytes(b).ValidatePDU()
}

// ValidateStream validates every PDU in a stream of concatenated PDUs,
// stopping at the first error. The error is wrapped with the PDU index.
func (r *Reader) ValidateStream() error {
	sub := *r
	for i := 0; len(r.buf) > 0; i++ {
		pdu, err := r.NextPDU()
		if err != nil {
			return WrapError(err, i)
		}
		sub.Reset(pdu)
		if err := sub.ValidatePDU(); err != nil {
			return WrapError(err, i)
		}
	}
	return nil
}
