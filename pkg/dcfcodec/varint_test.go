package dcfcodec

import "testing"

func TestZigZagRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 2, -2, 300, -300, 1 << 40, -(1 << 40)}
	for _, v := range cases {
		z := zigzagEncode(v)
		got := zigzagDecode(z)
		if got != v {
			t.Fatalf("zigzag round trip: got %d, want %d", got, v)
		}
	}
}

func TestZigZagSmallMagnitudeIsCompact(t *testing.T) {
	// Small values of either sign should encode to few bytes, the whole
	// point of ZigZag over plain two's-complement varint.
	for _, v := range []int64{0, -1, 1, -2, 2} {
		z := zigzagEncode(v)
		if varintLen(z) != 1 {
			t.Fatalf("zigzag(%d) = %d occupies %d bytes, want 1", v, z, varintLen(z))
		}
	}
}

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40, ^uint64(0)}
	for _, v := range cases {
		var tmp [10]byte
		enc := appendVarint(tmp[:0], v)
		got, n, err := takeVarint(enc)
		if err != nil {
			t.Fatalf("takeVarint(%d): %v", v, err)
		}
		if got != v || n != len(enc) {
			t.Fatalf("takeVarint(%d) = (%d, %d), want (%d, %d)", v, got, n, v, len(enc))
		}
	}
}

func TestVarintTruncated(t *testing.T) {
	// A continuation byte with nothing following is truncated, not malformed.
	_, _, err := takeVarint([]byte{0x80})
	if err == nil {
		t.Fatalf("expected error for truncated varint")
	}
}

func TestByteSwapInvolution(t *testing.T) {
	if Bswap16(Bswap16(0x1234)) != 0x1234 {
		t.Fatalf("Bswap16 not involutive")
	}
	if Bswap32(Bswap32(0x12345678)) != 0x12345678 {
		t.Fatalf("Bswap32 not involutive")
	}
	if Bswap64(Bswap64(0x0123456789ABCDEF)) != 0x0123456789ABCDEF {
		t.Fatalf("Bswap64 not involutive")
	}
}

func TestByteSwapKnownValues(t *testing.T) {
	if got := Bswap32(0x12345678); got != 0x78563412 {
		t.Fatalf("Bswap32(0x12345678) = %#x, want 0x78563412", got)
	}
}

func TestCRC32CheckValue(t *testing.T) {
	// The canonical CRC32/IEEE check value for the ASCII string "123456789".
	if got := CRC32([]byte("123456789")); got != 0xCBF43926 {
		t.Fatalf("CRC32(\"123456789\") = %#x, want 0xcbf43926", got)
	}
}

func TestCRC32UpdateMatchesOneShot(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	oneShot := CRC32(data)

	running := uint32(0xFFFFFFFF)
	for i := 0; i < len(data); i += 7 {
		end := i + 7
		if end > len(data) {
			end = len(data)
		}
		running = CRC32Update(running, data[i:end])
	}
	if got := running ^ 0xFFFFFFFF; got != oneShot {
		t.Fatalf("incremental CRC32 = %#x, want %#x", got, oneShot)
	}
}
