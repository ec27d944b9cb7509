package dcfcodec

// Frame-level free functions that operate on raw header bytes without
// constructing a Reader, recovered from the C reference's
// dcf_ser_message_length/dcf_ser_validate_message (spec §4 "Supplemented
// features"). A transport layer uses these to learn how many bytes to read
// off the wire before a full message is available, grounded on the
// teacher's internal/protocol/frame package, which plays the same "transport
// glue" role for its own TLV format.

// MessageLength reads the payload length out of a frame header and returns
// the total number of bytes the complete framed message occupies, including
// the header and the CRC32 trailer if present. header must contain at least
// HeaderSize bytes.
func MessageLength(header []byte) (uint64, error) {
	if len(header) < HeaderSize {
		return 0, wrap("MessageLength", KindTruncated)
	}
	magic := getU32(header[0:4])
	if magic != Magic {
		return 0, wrap("MessageLength", KindInvalidMagic)
	}
	flags := Flags(header[8])
	payloadLen := getU32(header[9:13])

	total := uint64(HeaderSize) + uint64(payloadLen)
	if !flags.Has(FlagNoCRC) {
		total += 4
	}
	return total, nil
}

// ValidateMessage runs full header and CRC32 validation over buf without
// retaining a Reader, useful for a transport layer that wants a fast
// accept/reject before dispatching to application code.
func ValidateMessage(buf []byte) error {
	_, err := NewReader(buf)
	return err
}
