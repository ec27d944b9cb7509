package dcfcodec

import "encoding/binary"

// Byte-order primitives (spec §4.1). The wire format is always big-endian;
// these wrap encoding/binary rather than hand-rolling swap loops, matching
// every fixed-width codec in the pack (internal/protocol/frame, freyjadb's
// pkg/codec/record.go, map1's encode.go).

func putU16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }
func putU32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func putU64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

func getU16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func getU32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func getU64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

// Bswap16 reverses the byte order of a 16-bit word, matching dcf_ser_bswap16.
// Exposed for callers that interoperate with the C reference implementation's
// raw byte-order utilities; the Go codec itself never needs it directly since
// encoding/binary.BigEndian already abstracts host endianness.
func Bswap16(v uint16) uint16 {
	return v<<8 | v>>8
}

// Bswap32 reverses the byte order of a 32-bit word, matching dcf_ser_bswap32.
func Bswap32(v uint32) uint32 {
	return v<<24 | (v&0x0000FF00)<<8 | (v&0x00FF0000)>>8 | v>>24
}

// Bswap64 reverses the byte order of a 64-bit word, matching dcf_ser_bswap64.
func Bswap64(v uint64) uint64 {
	return v<<56 | (v&0x000000000000FF00)<<40 | (v&0x0000000000FF0000)<<24 |
		(v&0x00000000FF000000)<<8 | (v&0x000000FF00000000)>>8 |
		(v&0x0000FF0000000000)>>24 | (v&0x00FF000000000000)>>40 | v>>56
}
