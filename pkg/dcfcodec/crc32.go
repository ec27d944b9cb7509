package dcfcodec

import "hash/crc32"

// CRC32 primitives (spec §4.2): IEEE 802.3 polynomial, reflected, seeded
// 0xFFFFFFFF, finalized with a trailing XOR 0xFFFFFFFF — exactly what
// hash/crc32's IEEE table implements, matching freyjadb's calculateCRC32
// (pkg/codec/record.go), which reaches for crc32.NewIEEE() for the same
// purpose rather than a third-party CRC library.

// CRC32 computes the checksum of data in one call.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// CRC32Update extends a raw running register with more data, mirroring
// dcf_ser_crc32_update: the register carries no implicit invert-in/out, so
// a caller seeds it with 0xFFFFFFFF and XORs the final register with
// 0xFFFFFFFF to recover the same value CRC32 would compute over the whole
// message — CRC32Update(0xFFFFFFFF, A ++ B) ^ 0xFFFFFFFF == CRC32(A ++ B).
// hash/crc32's own Update instead assumes its crc argument is already a
// finished ChecksumIEEE-style value and re-inverts around each call, which
// does not compose the way the C reference's running register does, so the
// table lookup is done by hand here against crc32.IEEETable.
func CRC32Update(crc uint32, data []byte) uint32 {
	tab := crc32.IEEETable
	for _, b := range data {
		crc = tab[byte(crc)^b] ^ (crc >> 8)
	}
	return crc
}
