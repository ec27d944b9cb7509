package dcfcodec

import (
	"math"
	"unsafe"
)

// Reader is the streaming decoder state machine (spec §4.4). It never
// allocates or copies the input buffer; string/bytes reads alias it directly
// unless the caller asks for a copying variant. The buffer passed to
// NewReader must outlive every value produced by zero-copy reads.
type Reader struct {
	buf          []byte
	header       Header
	payloadStart int
	payloadEnd   int
	pos          int
	depth        int
	crcVerified  bool
}

// NewReader validates buf's frame header (and CRC32 trailer, unless
// FlagNoCRC is set) and returns a Reader positioned at the start of the
// payload, matching dcf_ser_reader_init + dcf_ser_reader_validate.
func NewReader(buf []byte) (*Reader, error) {
	r := &Reader{}
	if err := r.reset(buf); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) reset(buf []byte) error {
	if len(buf) < HeaderSize {
		return wrap("NewReader", KindTruncated)
	}
	magic := getU32(buf[0:4])
	if magic != Magic {
		return wrap("NewReader", KindInvalidMagic)
	}
	version := getU16(buf[4:6])
	// Only the major (high) byte of the version must match, per spec §9.
	if byte(version>>8) != byte(Version>>8) {
		return wrap("NewReader", KindVersionMismatch)
	}
	msgType := getU16(buf[6:8])
	flags := Flags(buf[8])
	payloadLen := getU32(buf[9:13])
	sequence := getU32(buf[13:17])

	expected := uint64(HeaderSize) + uint64(payloadLen)
	hasCRC := !flags.Has(FlagNoCRC)
	if hasCRC {
		expected += 4
	}
	if uint64(len(buf)) < expected {
		return wrap("NewReader", KindTruncated)
	}

	crcVerified := false
	if hasCRC {
		crcOffset := HeaderSize + int(payloadLen)
		stored := getU32(buf[crcOffset : crcOffset+4])
		computed := CRC32(buf[:crcOffset])
		if stored != computed {
			return wrap("NewReader", KindCRCMismatch)
		}
		crcVerified = true
	}

	r.buf = buf
	r.header = Header{
		Magic:      magic,
		Version:    version,
		MsgType:    msgType,
		Flags:      flags,
		PayloadLen: payloadLen,
		Sequence:   sequence,
	}
	r.payloadStart = HeaderSize
	r.payloadEnd = HeaderSize + int(payloadLen)
	r.pos = r.payloadStart
	r.depth = 0
	r.crcVerified = crcVerified
	return nil
}

// Header returns the decoded frame header.
func (r *Reader) Header() Header { return r.header }

// MsgType returns the header's message type, matching dcf_ser_reader_msg_type.
func (r *Reader) MsgType() uint16 { return r.header.MsgType }

// CRCVerified reports whether the CRC trailer was present and checked.
func (r *Reader) CRCVerified() bool { return r.crcVerified }

// Remaining returns the number of unread payload bytes.
func (r *Reader) Remaining() int {
	return r.payloadEnd - r.pos
}

// AtEnd reports whether the payload has been fully consumed.
func (r *Reader) AtEnd() bool {
	return r.pos >= r.payloadEnd
}

// PeekType returns the tag of the next value without consuming it, or
// TypeInvalid if positioned at or past the end of the payload.
func (r *Reader) PeekType() Type {
	if r.AtEnd() {
		return TypeInvalid
	}
	return Type(r.buf[r.pos])
}

func (r *Reader) ensure(n int) error {
	if r.pos+n > r.payloadEnd {
		return wrap("read", KindTruncated)
	}
	return nil
}

func (r *Reader) expectTag(want Type) error {
	if err := r.ensure(1); err != nil {
		return err
	}
	got := Type(r.buf[r.pos])
	if got != want {
		return wrap("read", KindTypeMismatch)
	}
	r.pos++
	return nil
}

// --- primitive readers ---

func (r *Reader) ReadNull() error {
	return r.expectTag(TypeNull)
}

func (r *Reader) ReadBool() (bool, error) {
	if err := r.expectTag(TypeBool); err != nil {
		return false, err
	}
	if err := r.ensure(1); err != nil {
		return false, err
	}
	v := r.buf[r.pos] != 0
	r.pos++
	return v, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	if err := r.expectTag(TypeU8); err != nil {
		return 0, err
	}
	if err := r.ensure(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) ReadI8() (int8, error) {
	if err := r.expectTag(TypeI8); err != nil {
		return 0, err
	}
	if err := r.ensure(1); err != nil {
		return 0, err
	}
	v := int8(r.buf[r.pos])
	r.pos++
	return v, nil
}

func (r *Reader) ReadU16() (uint16, error) {
	if err := r.expectTag(TypeU16); err != nil {
		return 0, err
	}
	if err := r.ensure(2); err != nil {
		return 0, err
	}
	v := getU16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadI16() (int16, error) {
	if err := r.expectTag(TypeI16); err != nil {
		return 0, err
	}
	if err := r.ensure(2); err != nil {
		return 0, err
	}
	v := int16(getU16(r.buf[r.pos:]))
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	if err := r.expectTag(TypeU32); err != nil {
		return 0, err
	}
	if err := r.ensure(4); err != nil {
		return 0, err
	}
	v := getU32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadI32() (int32, error) {
	if err := r.expectTag(TypeI32); err != nil {
		return 0, err
	}
	if err := r.ensure(4); err != nil {
		return 0, err
	}
	v := int32(getU32(r.buf[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadU64() (uint64, error) {
	if err := r.expectTag(TypeU64); err != nil {
		return 0, err
	}
	if err := r.ensure(8); err != nil {
		return 0, err
	}
	v := getU64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadI64() (int64, error) {
	if err := r.expectTag(TypeI64); err != nil {
		return 0, err
	}
	if err := r.ensure(8); err != nil {
		return 0, err
	}
	v := int64(getU64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadF32() (float32, error) {
	if err := r.expectTag(TypeF32); err != nil {
		return 0, err
	}
	if err := r.ensure(4); err != nil {
		return 0, err
	}
	v := math.Float32frombits(getU32(r.buf[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadF64() (float64, error) {
	if err := r.expectTag(TypeF64); err != nil {
		return 0, err
	}
	if err := r.ensure(8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(getU64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

// --- variable-length readers ---

func (r *Reader) ReadVarint() (uint64, error) {
	if err := r.expectTag(TypeVarint); err != nil {
		return 0, err
	}
	v, n, err := takeVarint(r.buf[r.pos:r.payloadEnd])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

func (r *Reader) ReadVarsint() (int64, error) {
	z, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return zigzagDecode(z), nil
}

func (r *Reader) readLength() (int, error) {
	if err := r.ensure(4); err != nil {
		return 0, err
	}
	v := getU32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return int(v), nil
}

// ReadString returns a string aliasing the reader's backing buffer. The
// returned string is valid only as long as the buffer passed to NewReader
// is not modified or discarded.
func (r *Reader) ReadString() (string, error) {
	if err := r.expectTag(TypeString); err != nil {
		return "", err
	}
	n, err := r.readLength()
	if err != nil {
		return "", err
	}
	if n > MaxString {
		return "", wrap("ReadString", KindOverflow)
	}
	if err := r.ensure(n); err != nil {
		return "", err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	if n == 0 {
		return "", nil
	}
	return unsafe.String(&b[0], n), nil
}

// ReadStringCopy behaves like ReadString but returns a string backed by a
// fresh copy, safe to retain after the input buffer is reused or discarded.
func (r *Reader) ReadStringCopy() (string, error) {
	s, err := r.ReadString()
	if err != nil {
		return "", err
	}
	b := make([]byte, len(s))
	copy(b, s)
	return string(b), nil
}

// ReadBytes returns a slice aliasing the reader's backing buffer (zero-copy).
func (r *Reader) ReadBytes() ([]byte, error) {
	if err := r.expectTag(TypeBytes); err != nil {
		return nil, err
	}
	n, err := r.readLength()
	if err != nil {
		return nil, err
	}
	if n > MaxMessage {
		return nil, wrap("ReadBytes", KindOverflow)
	}
	if err := r.ensure(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBytesCopy behaves like ReadBytes but returns an independent copy.
func (r *Reader) ReadBytesCopy() ([]byte, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

func (r *Reader) ReadUUID() ([16]byte, error) {
	var u [16]byte
	if err := r.expectTag(TypeUUID); err != nil {
		return u, err
	}
	if err := r.ensure(16); err != nil {
		return u, err
	}
	copy(u[:], r.buf[r.pos:r.pos+16])
	r.pos += 16
	return u, nil
}

func (r *Reader) ReadTimestamp() (int64, error) {
	if err := r.expectTag(TypeTimestamp); err != nil {
		return 0, err
	}
	if err := r.ensure(8); err != nil {
		return 0, err
	}
	v := int64(getU64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadDuration() (int64, error) {
	if err := r.expectTag(TypeDuration); err != nil {
		return 0, err
	}
	if err := r.ensure(8); err != nil {
		return 0, err
	}
	v := int64(getU64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

// --- containers ---

func (r *Reader) enterContainer() error {
	if r.depth >= MaxDepth {
		return wrap("container", KindDepthExceeded)
	}
	r.depth++
	return nil
}

func (r *Reader) leaveContainer() error {
	if r.depth == 0 {
		return wrap("container", KindMalformed)
	}
	r.depth--
	return nil
}

// ArrayBegin reads the ARRAY tag, element type, and count.
func (r *Reader) ArrayBegin() (elemType Type, count uint32, err error) {
	if err = r.expectTag(TypeArray); err != nil {
		return
	}
	if err = r.ensure(5); err != nil {
		return
	}
	elemType = Type(r.buf[r.pos])
	count = getU32(r.buf[r.pos+1:])
	if count > MaxArray {
		err = wrap("ArrayBegin", KindTooLarge)
		return
	}
	r.pos += 5
	err = r.enterContainer()
	return
}

func (r *Reader) ArrayEnd() error {
	return r.leaveContainer()
}

// MapBegin reads the MAP tag, key/value types, and entry count.
func (r *Reader) MapBegin() (keyType, valType Type, count uint32, err error) {
	if err = r.expectTag(TypeMap); err != nil {
		return
	}
	if err = r.ensure(6); err != nil {
		return
	}
	keyType = Type(r.buf[r.pos])
	valType = Type(r.buf[r.pos+1])
	count = getU32(r.buf[r.pos+2:])
	if count > MaxArray {
		err = wrap("MapBegin", KindTooLarge)
		return
	}
	r.pos += 6
	err = r.enterContainer()
	return
}

func (r *Reader) MapEnd() error {
	return r.leaveContainer()
}

// StructBegin reads the STRUCT tag and type ID.
func (r *Reader) StructBegin() (typeID uint16, err error) {
	if err = r.expectTag(TypeStruct); err != nil {
		return
	}
	if err = r.ensure(2); err != nil {
		return
	}
	typeID = getU16(r.buf[r.pos:])
	r.pos += 2
	err = r.enterContainer()
	return
}

// ReadField reads the next field header inside a struct. It returns
// ErrNotFound exactly when the sentinel (field_id=0, type=NULL) is reached,
// matching dcf_ser_read_field.
func (r *Reader) ReadField() (fieldID uint16, tag Type, err error) {
	if err = r.ensure(3); err != nil {
		return
	}
	fieldID = getU16(r.buf[r.pos:])
	tag = Type(r.buf[r.pos+2])
	r.pos += 3
	if fieldID == 0 && tag == TypeNull {
		err = ErrNotFound
		return
	}
	return
}

func (r *Reader) StructEnd() error {
	return r.leaveContainer()
}

// --- raw access ---

// ReadRaw copies the next n bytes verbatim with no tag interpretation.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if err := r.ensure(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+n])
	r.pos += n
	return b, nil
}

// ReadRawPtr returns a zero-copy slice of the next n bytes.
func (r *Reader) ReadRawPtr(n int) ([]byte, error) {
	if err := r.ensure(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip advances past the next value without decoding it, recursing through
// containers. It mirrors dcf_ser_reader_skip, including rejecting tags with
// no defined skip behavior (TUPLE, OPTIONAL, ENUM, EXTENSION) as InvalidType
// per spec §9.
func (r *Reader) Skip() error {
	if err := r.ensure(1); err != nil {
		return err
	}
	tag := Type(r.buf[r.pos])
	r.pos++
	return r.skipValue(tag)
}

// SkipValue skips the value that follows a struct field header already
// consumed by the caller (e.g. an unrecognized field ID encountered by a
// schema-driven decoder). The value still carries its own leading type tag;
// SkipValue consumes it and returns ErrTypeMismatch if it differs from tag.
func (r *Reader) SkipValue(tag Type) error {
	if err := r.expectTag(tag); err != nil {
		return err
	}
	return r.skipValue(tag)
}

// skipValue skips the body of a value of the given tag whose tag byte has
// already been consumed — shared by Skip and SkipValue.
func (r *Reader) skipValue(tag Type) error {
	if n := tag.FixedSize(); n > 0 {
		if err := r.ensure(n); err != nil {
			return err
		}
		r.pos += n
		return nil
	}
	switch tag {
	case TypeNull:
		return nil
	case TypeVarint:
		_, n, err := takeVarint(r.buf[r.pos:r.payloadEnd])
		if err != nil {
			return err
		}
		r.pos += n
		return nil
	case TypeString, TypeBytes:
		n, err := r.readLength()
		if err != nil {
			return err
		}
		return r.advance(n)
	case TypeArray:
		if err := r.ensure(5); err != nil {
			return err
		}
		count := getU32(r.buf[r.pos+1:])
		r.pos += 5
		if err := r.enterContainer(); err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			if err := r.Skip(); err != nil {
				return err
			}
		}
		return r.leaveContainer()
	case TypeMap:
		if err := r.ensure(6); err != nil {
			return err
		}
		count := getU32(r.buf[r.pos+2:])
		r.pos += 6
		if err := r.enterContainer(); err != nil {
			return err
		}
		for i := uint32(0); i < count*2; i++ {
			if err := r.Skip(); err != nil {
				return err
			}
		}
		return r.leaveContainer()
	case TypeStruct:
		if err := r.ensure(2); err != nil {
			return err
		}
		r.pos += 2
		if err := r.enterContainer(); err != nil {
			return err
		}
		for {
			if err := r.ensure(3); err != nil {
				return err
			}
			fieldID := getU16(r.buf[r.pos:])
			fieldTag := Type(r.buf[r.pos+2])
			r.pos += 3
			if fieldID == 0 && fieldTag == TypeNull {
				break
			}
			if err := r.SkipValue(fieldTag); err != nil {
				return err
			}
		}
		return r.leaveContainer()
	default:
		return wrap("Skip", KindInvalidType)
	}
}

func (r *Reader) advance(n int) error {
	if err := r.ensure(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}
