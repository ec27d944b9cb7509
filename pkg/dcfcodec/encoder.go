package dcfcodec

import "math"

// Writer is the streaming encoder state machine (spec §4.3). A Writer either
// owns a growable backing array (NewWriter) or writes into a caller-supplied
// fixed buffer that is never grown (NewWriterBuffer) — mirroring the C
// reference's dcf_ser_writer_init vs dcf_ser_writer_init_buffer split.
//
// Every value on the wire is preceded by its own one-byte type tag, so the
// payload is self-describing independent of any schema. Container headers
// (array/map/struct) additionally record element/key/value types and counts
// for validation and fast skipping, but elements are still individually
// tagged like any other value.
type Writer struct {
	buf      []byte
	pos      int
	owning   bool
	depth    int
	msgType  uint16
	flags    Flags
	sequence uint32
	finished bool
}

// NewWriter creates an owning Writer with a growable backing array. The
// backing array starts at InitialCapacity and doubles on growth, capped at
// MaxMessage.
func NewWriter(msgType uint16, flags Flags) *Writer {
	w := &Writer{owning: true}
	w.Reset(msgType, flags)
	return w
}

// NewWriterBuffer creates a Writer over a caller-supplied fixed buffer. The
// buffer is never grown; writes past capacity return ErrBufferFull. buf must
// be at least HeaderSize+4 bytes, matching the C reference's capacity check
// for borrowed buffers (room for the header plus a minimal CRC trailer).
func NewWriterBuffer(buf []byte, msgType uint16, flags Flags) (*Writer, error) {
	if len(buf) < HeaderSize+4 {
		return nil, wrap("NewWriterBuffer", KindBufferFull)
	}
	w := &Writer{buf: buf, owning: false}
	w.resetBorrowed(msgType, flags)
	return w, nil
}

// Reset reinitializes an owning Writer for reuse, matching dcf_ser_writer_reset.
func (w *Writer) Reset(msgType uint16, flags Flags) {
	if !w.owning {
		w.resetBorrowed(msgType, flags)
		return
	}
	if cap(w.buf) < InitialCapacity {
		w.buf = make([]byte, InitialCapacity)
	} else {
		w.buf = w.buf[:cap(w.buf)]
	}
	w.pos = HeaderSize
	w.depth = 0
	w.msgType = msgType
	w.flags = flags
	w.sequence = 0
	w.finished = false
}

func (w *Writer) resetBorrowed(msgType uint16, flags Flags) {
	w.pos = HeaderSize
	w.depth = 0
	w.msgType = msgType
	w.flags = flags
	w.sequence = 0
	w.finished = false
}

// SetSequence sets the header's sequence field, taking effect at Finish.
func (w *Writer) SetSequence(seq uint32) {
	w.sequence = seq
}

// PayloadSize returns the number of payload bytes written so far, matching
// dcf_ser_writer_payload_size.
func (w *Writer) PayloadSize() int {
	return w.pos - HeaderSize
}

// grow ensures at least n more bytes are available past pos. Owning writers
// double their capacity up to MaxMessage; borrowed writers never grow.
func (w *Writer) grow(n int) error {
	need := w.pos + n
	if need <= len(w.buf) {
		return nil
	}
	if !w.owning {
		return wrap("write", KindBufferFull)
	}
	newCap := cap(w.buf)
	if newCap == 0 {
		newCap = InitialCapacity
	}
	for newCap < need {
		newCap *= 2
	}
	if newCap > MaxMessage {
		if need > MaxMessage {
			return wrap("write", KindTooLarge)
		}
		newCap = MaxMessage
	}
	nb := make([]byte, newCap)
	copy(nb, w.buf[:w.pos])
	w.buf = nb
	return nil
}

func (w *Writer) putTag(t Type) error {
	if err := w.grow(1); err != nil {
		return err
	}
	w.buf[w.pos] = byte(t)
	w.pos++
	return nil
}

func (w *Writer) putBytes(b []byte) error {
	if err := w.grow(len(b)); err != nil {
		return err
	}
	copy(w.buf[w.pos:], b)
	w.pos += len(b)
	return nil
}

// --- primitive writers ---

func (w *Writer) WriteNull() error {
	return w.putTag(TypeNull)
}

func (w *Writer) WriteBool(v bool) error {
	if err := w.putTag(TypeBool); err != nil {
		return err
	}
	var b byte
	if v {
		b = 1
	}
	return w.putBytes([]byte{b})
}

func (w *Writer) WriteU8(v uint8) error {
	if err := w.putTag(TypeU8); err != nil {
		return err
	}
	return w.putBytes([]byte{v})
}

func (w *Writer) WriteI8(v int8) error {
	if err := w.putTag(TypeI8); err != nil {
		return err
	}
	return w.putBytes([]byte{byte(v)})
}

func (w *Writer) WriteU16(v uint16) error {
	if err := w.putTag(TypeU16); err != nil {
		return err
	}
	var b [2]byte
	putU16(b[:], v)
	return w.putBytes(b[:])
}

func (w *Writer) WriteI16(v int16) error {
	if err := w.putTag(TypeI16); err != nil {
		return err
	}
	var b [2]byte
	putU16(b[:], uint16(v))
	return w.putBytes(b[:])
}

func (w *Writer) WriteU32(v uint32) error {
	if err := w.putTag(TypeU32); err != nil {
		return err
	}
	var b [4]byte
	putU32(b[:], v)
	return w.putBytes(b[:])
}

func (w *Writer) WriteI32(v int32) error {
	if err := w.putTag(TypeI32); err != nil {
		return err
	}
	var b [4]byte
	putU32(b[:], uint32(v))
	return w.putBytes(b[:])
}

func (w *Writer) WriteU64(v uint64) error {
	if err := w.putTag(TypeU64); err != nil {
		return err
	}
	var b [8]byte
	putU64(b[:], v)
	return w.putBytes(b[:])
}

func (w *Writer) WriteI64(v int64) error {
	if err := w.putTag(TypeI64); err != nil {
		return err
	}
	var b [8]byte
	putU64(b[:], uint64(v))
	return w.putBytes(b[:])
}

// WriteF32 writes the raw IEEE754 bit pattern of v, never a decimal
// round-trip — matching the C reference's memcpy-based float writers.
func (w *Writer) WriteF32(v float32) error {
	if err := w.putTag(TypeF32); err != nil {
		return err
	}
	var b [4]byte
	putU32(b[:], math.Float32bits(v))
	return w.putBytes(b[:])
}

func (w *Writer) WriteF64(v float64) error {
	if err := w.putTag(TypeF64); err != nil {
		return err
	}
	var b [8]byte
	putU64(b[:], math.Float64bits(v))
	return w.putBytes(b[:])
}

// --- variable-length writers ---

func (w *Writer) WriteVarint(v uint64) error {
	if err := w.putTag(TypeVarint); err != nil {
		return err
	}
	var tmp [10]byte
	return w.putBytes(appendVarint(tmp[:0], v))
}

// WriteVarsint writes a signed integer using ZigZag remapping so small
// magnitudes of either sign stay compact.
func (w *Writer) WriteVarsint(v int64) error {
	if err := w.putTag(TypeVarint); err != nil {
		return err
	}
	var tmp [10]byte
	return w.putBytes(appendVarint(tmp[:0], zigzagEncode(v)))
}

func (w *Writer) WriteString(s string) error {
	if len(s) > MaxString {
		return wrap("WriteString", KindTooLarge)
	}
	if err := w.putTag(TypeString); err != nil {
		return err
	}
	var lb [4]byte
	putU32(lb[:], uint32(len(s)))
	if err := w.putBytes(lb[:]); err != nil {
		return err
	}
	return w.putBytes([]byte(s))
}

func (w *Writer) WriteBytes(b []byte) error {
	if len(b) > MaxMessage {
		return wrap("WriteBytes", KindTooLarge)
	}
	if err := w.putTag(TypeBytes); err != nil {
		return err
	}
	var lb [4]byte
	putU32(lb[:], uint32(len(b)))
	if err := w.putBytes(lb[:]); err != nil {
		return err
	}
	return w.putBytes(b)
}

func (w *Writer) WriteUUID(u [16]byte) error {
	if err := w.putTag(TypeUUID); err != nil {
		return err
	}
	return w.putBytes(u[:])
}

func (w *Writer) WriteTimestamp(unixNano int64) error {
	if err := w.putTag(TypeTimestamp); err != nil {
		return err
	}
	var b [8]byte
	putU64(b[:], uint64(unixNano))
	return w.putBytes(b[:])
}

func (w *Writer) WriteDuration(nanos int64) error {
	if err := w.putTag(TypeDuration); err != nil {
		return err
	}
	var b [8]byte
	putU64(b[:], uint64(nanos))
	return w.putBytes(b[:])
}

// --- containers ---

func (w *Writer) enterContainer() error {
	if w.depth >= MaxDepth {
		return wrap("container", KindDepthExceeded)
	}
	w.depth++
	return nil
}

func (w *Writer) leaveContainer() error {
	if w.depth == 0 {
		return wrap("container", KindMalformed)
	}
	w.depth--
	return nil
}

// ArrayBegin writes the ARRAY tag, element type, and count, matching
// dcf_ser_array_begin. Callers must then write exactly count tagged values
// and call ArrayEnd.
func (w *Writer) ArrayBegin(elemType Type, count uint32) error {
	if count > MaxArray {
		return wrap("ArrayBegin", KindTooLarge)
	}
	if err := w.enterContainer(); err != nil {
		return err
	}
	if err := w.putTag(TypeArray); err != nil {
		return err
	}
	if err := w.putBytes([]byte{byte(elemType)}); err != nil {
		return err
	}
	var b [4]byte
	putU32(b[:], count)
	return w.putBytes(b[:])
}

func (w *Writer) ArrayEnd() error {
	return w.leaveContainer()
}

// MapBegin writes the MAP tag, key/value types, and entry count.
func (w *Writer) MapBegin(keyType, valType Type, count uint32) error {
	if count > MaxArray {
		return wrap("MapBegin", KindTooLarge)
	}
	if err := w.enterContainer(); err != nil {
		return err
	}
	if err := w.putTag(TypeMap); err != nil {
		return err
	}
	if err := w.putBytes([]byte{byte(keyType), byte(valType)}); err != nil {
		return err
	}
	var b [4]byte
	putU32(b[:], count)
	return w.putBytes(b[:])
}

func (w *Writer) MapEnd() error {
	return w.leaveContainer()
}

// StructBegin writes the STRUCT tag and a type ID used to disambiguate
// struct shapes for schema-driven decoding.
func (w *Writer) StructBegin(typeID uint16) error {
	if err := w.enterContainer(); err != nil {
		return err
	}
	if err := w.putTag(TypeStruct); err != nil {
		return err
	}
	var b [2]byte
	putU16(b[:], typeID)
	return w.putBytes(b[:])
}

// WriteField writes a field header (field_id, type tag). The caller writes
// the field's value immediately afterward using the matching WriteXxx method.
func (w *Writer) WriteField(fieldID uint16, tag Type) error {
	var b [2]byte
	putU16(b[:], fieldID)
	if err := w.putBytes(b[:]); err != nil {
		return err
	}
	return w.putBytes([]byte{byte(tag)})
}

// StructEnd writes the sentinel field (id=0, type=NULL) and closes the struct.
func (w *Writer) StructEnd() error {
	var b [2]byte
	putU16(b[:], 0)
	if err := w.putBytes(b[:]); err != nil {
		return err
	}
	if err := w.putBytes([]byte{byte(TypeNull)}); err != nil {
		return err
	}
	return w.leaveContainer()
}

// --- raw access ---

// WriteRaw copies data verbatim into the payload with no tag, for callers
// implementing their own sub-grammars on top of the codec.
func (w *Writer) WriteRaw(data []byte) error {
	return w.putBytes(data)
}

// Reserve returns a slice of n zeroed bytes within the writer's backing
// array for the caller to fill in directly, matching dcf_ser_write_reserve.
// The slice is invalidated by any subsequent write that triggers a grow.
func (w *Writer) Reserve(n int) ([]byte, error) {
	if err := w.grow(n); err != nil {
		return nil, err
	}
	start := w.pos
	w.pos += n
	b := w.buf[start:w.pos]
	clear(b)
	return b, nil
}

// Finish builds the frame header, appends the CRC32 trailer unless
// FlagNoCRC is set, and returns the complete framed message. The Writer must
// not be reused after Finish without calling Reset.
func (w *Writer) Finish() ([]byte, error) {
	if w.finished {
		return nil, wrap("Finish", KindInvalidArg)
	}
	payloadLen := w.pos - HeaderSize
	if payloadLen > MaxMessage {
		return nil, wrap("Finish", KindTooLarge)
	}

	putU32(w.buf[0:4], Magic)
	putU16(w.buf[4:6], Version)
	putU16(w.buf[6:8], w.msgType)
	w.buf[8] = byte(w.flags)
	putU32(w.buf[9:13], uint32(payloadLen))
	putU32(w.buf[13:17], w.sequence)

	if !w.flags.Has(FlagNoCRC) {
		if err := w.grow(4); err != nil {
			return nil, err
		}
		sum := CRC32(w.buf[:w.pos])
		var cb [4]byte
		putU32(cb[:], sum)
		copy(w.buf[w.pos:w.pos+4], cb[:])
		w.pos += 4
	}

	w.finished = true
	return w.buf[:w.pos], nil
}
