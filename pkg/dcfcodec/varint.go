package dcfcodec

// LEB128 varint and ZigZag signed remapping (spec §3/§8), mirroring
// dcf_ser_write_varint/dcf_ser_read_varint and their signed counterparts in
// the C reference.

// zigzagEncode maps a signed value to an unsigned one so that small
// magnitudes (positive or negative) encode to few varint bytes.
func zigzagEncode(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// zigzagDecode reverses zigzagEncode.
func zigzagDecode(z uint64) int64 {
	return int64(z>>1) ^ -int64(z&1)
}

// appendVarint appends v to dst in LEB128 form and returns the extended slice.
func appendVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// varintLen returns the number of bytes v would occupy when LEB128-encoded,
// without actually encoding it.
func varintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// takeVarint decodes a LEB128 unsigned integer from the front of b, returning
// the value and the number of bytes consumed. shift >= 64 before a byte is
// consumed is reported as overflow, matching dcf_ser_read_varint's guard.
func takeVarint(b []byte) (v uint64, n int, err error) {
	var shift uint
	for {
		if n >= len(b) {
			return 0, 0, ErrTruncated
		}
		if shift >= 64 {
			return 0, 0, ErrOverflow
		}
		c := b[n]
		v |= uint64(c&0x7F) << shift
		n++
		if c&0x80 == 0 {
			return v, n, nil
		}
		shift += 7
	}
}
