package dcfcodec

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoundTripPrimitives(t *testing.T) {
	w := NewWriter(7, 0)
	if err := w.WriteBool(true); err != nil {
		t.Fatalf("WriteBool: %v", err)
	}
	if err := w.WriteU32(123456); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	if err := w.WriteI64(-9); err != nil {
		t.Fatalf("WriteI64: %v", err)
	}
	if err := w.WriteF64(3.5); err != nil {
		t.Fatalf("WriteF64: %v", err)
	}
	if err := w.WriteString("hello"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := w.WriteVarsint(-300); err != nil {
		t.Fatalf("WriteVarsint: %v", err)
	}

	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.MsgType() != 7 {
		t.Fatalf("MsgType = %d, want 7", r.MsgType())
	}
	if !r.CRCVerified() {
		t.Fatalf("expected CRC verified")
	}

	b, err := r.ReadBool()
	if err != nil || !b {
		t.Fatalf("ReadBool = %v, %v", b, err)
	}
	u32, err := r.ReadU32()
	if err != nil || u32 != 123456 {
		t.Fatalf("ReadU32 = %v, %v", u32, err)
	}
	i64, err := r.ReadI64()
	if err != nil || i64 != -9 {
		t.Fatalf("ReadI64 = %v, %v", i64, err)
	}
	f64, err := r.ReadF64()
	if err != nil || f64 != 3.5 {
		t.Fatalf("ReadF64 = %v, %v", f64, err)
	}
	s, err := r.ReadString()
	if err != nil || s != "hello" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	vs, err := r.ReadVarsint()
	if err != nil || vs != -300 {
		t.Fatalf("ReadVarsint = %v, %v", vs, err)
	}
	if !r.AtEnd() {
		t.Fatalf("expected AtEnd after consuming all fields")
	}
}

func TestWriteStringWireLayout(t *testing.T) {
	w := NewWriter(1, FlagNoCRC)
	if err := w.WriteString("hi"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	payload := buf[HeaderSize:]
	want := []byte{byte(TypeString), 0x00, 0x00, 0x00, 0x02, 'h', 'i'}
	if !bytes.Equal(payload, want) {
		t.Fatalf("payload = % x, want % x", payload, want)
	}
}

func TestWriteEmptyStringWireLayout(t *testing.T) {
	w := NewWriter(1, FlagNoCRC)
	if err := w.WriteString(""); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	payload := buf[HeaderSize:]
	want := []byte{byte(TypeString), 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(payload, want) {
		t.Fatalf("empty string payload = % x, want STRING | 0x00000000 (% x)", payload, want)
	}
}

func TestRoundTripArray(t *testing.T) {
	w := NewWriter(1, FlagNoCRC)
	if err := w.ArrayBegin(TypeU32, 3); err != nil {
		t.Fatalf("ArrayBegin: %v", err)
	}
	for _, v := range []uint32{10, 20, 30} {
		if err := w.WriteU32(v); err != nil {
			t.Fatalf("WriteU32: %v", err)
		}
	}
	if err := w.ArrayEnd(); err != nil {
		t.Fatalf("ArrayEnd: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	elemType, count, err := r.ArrayBegin()
	if err != nil {
		t.Fatalf("ArrayBegin: %v", err)
	}
	if elemType != TypeU32 || count != 3 {
		t.Fatalf("got elemType=%v count=%d", elemType, count)
	}
	got := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := r.ReadU32()
		if err != nil {
			t.Fatalf("ReadU32[%d]: %v", i, err)
		}
		got = append(got, v)
	}
	if err := r.ArrayEnd(); err != nil {
		t.Fatalf("ArrayEnd: %v", err)
	}
	want := []uint32{10, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d]=%d, want %d", i, got[i], want[i])
		}
	}
}

func TestRoundTripStruct(t *testing.T) {
	w := NewWriter(2, 0)
	if err := w.StructBegin(55); err != nil {
		t.Fatalf("StructBegin: %v", err)
	}
	if err := w.WriteField(1, TypeString); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	if err := w.WriteString("name"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := w.WriteField(2, TypeU32); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	if err := w.WriteU32(99); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	if err := w.StructEnd(); err != nil {
		t.Fatalf("StructEnd: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	typeID, err := r.StructBegin()
	if err != nil || typeID != 55 {
		t.Fatalf("StructBegin = %d, %v", typeID, err)
	}
	seen := map[uint16]Type{}
	for {
		id, tag, err := r.ReadField()
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			t.Fatalf("ReadField: %v", err)
		}
		seen[id] = tag
		switch id {
		case 1:
			s, err := r.ReadString()
			if err != nil || s != "name" {
				t.Fatalf("field 1 = %q, %v", s, err)
			}
		case 2:
			v, err := r.ReadU32()
			if err != nil || v != 99 {
				t.Fatalf("field 2 = %d, %v", v, err)
			}
		default:
			if err := r.SkipValue(tag); err != nil {
				t.Fatalf("SkipValue: %v", err)
			}
		}
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(seen))
	}
	if err := r.StructEnd(); err != nil {
		t.Fatalf("StructEnd: %v", err)
	}
}

func TestRoundTripMap(t *testing.T) {
	w := NewWriter(3, 0)
	if err := w.MapBegin(TypeString, TypeU32, 2); err != nil {
		t.Fatalf("MapBegin: %v", err)
	}
	pairs := []struct {
		k string
		v uint32
	}{{"a", 1}, {"b", 2}}
	for _, p := range pairs {
		if err := w.WriteString(p.k); err != nil {
			t.Fatalf("WriteString: %v", err)
		}
		if err := w.WriteU32(p.v); err != nil {
			t.Fatalf("WriteU32: %v", err)
		}
	}
	if err := w.MapEnd(); err != nil {
		t.Fatalf("MapEnd: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	keyType, valType, count, err := r.MapBegin()
	if err != nil {
		t.Fatalf("MapBegin: %v", err)
	}
	if keyType != TypeString || valType != TypeU32 || count != 2 {
		t.Fatalf("got keyType=%v valType=%v count=%d", keyType, valType, count)
	}
	got := map[string]uint32{}
	for i := uint32(0); i < count; i++ {
		k, err := r.ReadStringCopy()
		if err != nil {
			t.Fatalf("ReadStringCopy[%d]: %v", i, err)
		}
		v, err := r.ReadU32()
		if err != nil {
			t.Fatalf("ReadU32[%d]: %v", i, err)
		}
		got[k] = v
	}
	if err := r.MapEnd(); err != nil {
		t.Fatalf("MapEnd: %v", err)
	}
	for _, p := range pairs {
		if got[p.k] != p.v {
			t.Fatalf("got[%q]=%d, want %d", p.k, got[p.k], p.v)
		}
	}
}

func TestRawReserveAndRead(t *testing.T) {
	w := NewWriter(4, 0)
	dst, err := w.Reserve(4)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	copy(dst, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	if err := w.WriteRaw([]byte("tail")); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	raw, err := r.ReadRaw(4)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if string(raw) != "\xde\xad\xbe\xef" {
		t.Fatalf("ReadRaw = %x, want deadbeef", raw)
	}
	tail, err := r.ReadRawPtr(4)
	if err != nil {
		t.Fatalf("ReadRawPtr: %v", err)
	}
	if string(tail) != "tail" {
		t.Fatalf("ReadRawPtr = %q, want tail", tail)
	}
	if !r.AtEnd() {
		t.Fatalf("expected AtEnd after consuming raw bytes")
	}
}

func TestDecodeInvalidMagic(t *testing.T) {
	w := NewWriter(1, 0)
	_ = w.WriteU8(1)
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	buf[0] = 0

	_, err = NewReader(buf)
	if !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestDecodeVersionMismatch(t *testing.T) {
	w := NewWriter(1, FlagNoCRC)
	_ = w.WriteU8(1)
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	buf[4] = 0x99 // corrupt major version byte only

	_, err = NewReader(buf)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestVersionMinorMismatchAccepted(t *testing.T) {
	w := NewWriter(1, FlagNoCRC)
	_ = w.WriteU8(1)
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	buf[5] = 0x01 // bump the minor byte only; major byte untouched

	if _, err := NewReader(buf); err != nil {
		t.Fatalf("expected minor version skew to be accepted, got %v", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	w := NewWriter(1, 0)
	_ = w.WriteString("abcdef")
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	_, err = NewReader(buf[:len(buf)-2])
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestDecodeCRCMismatch(t *testing.T) {
	w := NewWriter(1, 0)
	_ = w.WriteU8(1)
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	buf[len(buf)-1] ^= 0xFF

	_, err = NewReader(buf)
	if !errors.Is(err, ErrCRCMismatch) {
		t.Fatalf("expected ErrCRCMismatch, got %v", err)
	}
}

func TestNoCRCFlagSkipsTrailer(t *testing.T) {
	w := NewWriter(1, FlagNoCRC)
	_ = w.WriteU8(9)
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(buf) != HeaderSize+2 {
		t.Fatalf("len(buf) = %d, want %d", len(buf), HeaderSize+2)
	}

	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.CRCVerified() {
		t.Fatalf("expected CRC not verified when FlagNoCRC set")
	}
}

func TestTypeMismatch(t *testing.T) {
	w := NewWriter(1, 0)
	_ = w.WriteU32(1)
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.ReadString(); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestDepthExceeded(t *testing.T) {
	w := NewWriter(1, 0)
	for i := 0; i < MaxDepth; i++ {
		if err := w.ArrayBegin(TypeArray, 1); err != nil {
			t.Fatalf("ArrayBegin[%d]: %v", i, err)
		}
	}
	if err := w.ArrayBegin(TypeArray, 1); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
}

func TestSkipSkipsUnknownContainer(t *testing.T) {
	w := NewWriter(1, 0)
	if err := w.ArrayBegin(TypeU8, 2); err != nil {
		t.Fatalf("ArrayBegin: %v", err)
	}
	_ = w.WriteU8(1)
	_ = w.WriteU8(2)
	if err := w.ArrayEnd(); err != nil {
		t.Fatalf("ArrayEnd: %v", err)
	}
	if err := w.WriteString("trailer"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if err := r.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	s, err := r.ReadString()
	if err != nil || s != "trailer" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
}

func TestBorrowedWriterBufferFull(t *testing.T) {
	small := make([]byte, HeaderSize+4)
	w, err := NewWriterBuffer(small, 1, FlagNoCRC)
	if err != nil {
		t.Fatalf("NewWriterBuffer: %v", err)
	}
	if err := w.WriteString("this string will not fit"); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("expected ErrBufferFull, got %v", err)
	}
}

func TestMessageLength(t *testing.T) {
	w := NewWriter(1, 0)
	_ = w.WriteString("abc")
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	n, err := MessageLength(buf[:HeaderSize])
	if err != nil {
		t.Fatalf("MessageLength: %v", err)
	}
	if int(n) != len(buf) {
		t.Fatalf("MessageLength = %d, want %d", n, len(buf))
	}
	if err := ValidateMessage(buf); err != nil {
		t.Fatalf("ValidateMessage: %v", err)
	}
	if err := ValidateMessage(buf[:len(buf)-1]); err == nil {
		t.Fatalf("expected ValidateMessage to reject a truncated frame")
	}
}
