package schema

import (
	"errors"
	"fmt"

	"github.com/ALH477/dcf-serializer/pkg/dcfcodec"
)

// FieldDef describes one field a Schema expects inside a STRUCT.
type FieldDef struct {
	ID       uint16
	Name     string
	Tag      dcfcodec.Type
	Required bool
}

// Schema names the fields expected inside a STRUCT of a given type ID,
// mirroring the teacher's Schema{MessageType, Fields} in semantic.go.
type Schema struct {
	TypeID uint16
	Name   string
	Fields []FieldDef
}

func (s Schema) find(id uint16) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Value is a dynamically typed field value, tagged with the wire type it was
// written or read as. Exactly one of the typed fields is meaningful for a
// given Tag.
type Value struct {
	Tag       dcfcodec.Type
	Bool      bool
	U8        uint8
	I8        int8
	U16       uint16
	I16       int16
	U32       uint32
	I32       int32
	U64       uint64
	I64       int64
	F32       float32
	F64       float64
	Varint    uint64
	Str       string
	Bytes     []byte
	UUID      [16]byte
	Timestamp int64
	Duration  int64
}

// Record holds decoded or to-be-encoded field values keyed by field ID.
type Record map[uint16]Value

// MissingFieldError reports that a Required field was absent from a decoded
// struct, mirroring the teacher's MissingFieldError in semantic.go.
type MissingFieldError struct {
	TypeID  uint16
	FieldID uint16
	Name    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("schema: struct %d missing required field %d (%s)", e.TypeID, e.FieldID, e.Name)
}

// Encode writes rec as a STRUCT of s.TypeID, one field per entry in
// s.Fields present in rec, in schema-declared order. A Required field absent
// from rec is reported via MissingFieldError rather than silently omitted.
func Encode(w *dcfcodec.Writer, s Schema, rec Record) error {
	if err := w.StructBegin(s.TypeID); err != nil {
		return err
	}
	for _, f := range s.Fields {
		v, ok := rec[f.ID]
		if !ok {
			if f.Required {
				return &MissingFieldError{TypeID: s.TypeID, FieldID: f.ID, Name: f.Name}
			}
			continue
		}
		if err := w.WriteField(f.ID, f.Tag); err != nil {
			return err
		}
		if err := writeValue(w, f.Tag, v); err != nil {
			return err
		}
	}
	return w.StructEnd()
}

func writeValue(w *dcfcodec.Writer, tag dcfcodec.Type, v Value) error {
	switch tag {
	case dcfcodec.TypeBool:
		return w.WriteBool(v.Bool)
	case dcfcodec.TypeU8:
		return w.WriteU8(v.U8)
	case dcfcodec.TypeI8:
		return w.WriteI8(v.I8)
	case dcfcodec.TypeU16:
		return w.WriteU16(v.U16)
	case dcfcodec.TypeI16:
		return w.WriteI16(v.I16)
	case dcfcodec.TypeU32:
		return w.WriteU32(v.U32)
	case dcfcodec.TypeI32:
		return w.WriteI32(v.I32)
	case dcfcodec.TypeU64:
		return w.WriteU64(v.U64)
	case dcfcodec.TypeI64:
		return w.WriteI64(v.I64)
	case dcfcodec.TypeF32:
		return w.WriteF32(v.F32)
	case dcfcodec.TypeF64:
		return w.WriteF64(v.F64)
	case dcfcodec.TypeVarint:
		return w.WriteVarint(v.Varint)
	case dcfcodec.TypeString:
		return w.WriteString(v.Str)
	case dcfcodec.TypeBytes:
		return w.WriteBytes(v.Bytes)
	case dcfcodec.TypeUUID:
		return w.WriteUUID(v.UUID)
	case dcfcodec.TypeTimestamp:
		return w.WriteTimestamp(v.Timestamp)
	case dcfcodec.TypeDuration:
		return w.WriteDuration(v.Duration)
	default:
		return dcfcodec.ErrInvalidType
	}
}

// Decode reads a STRUCT and resolves its fields against s. Field IDs not
// present in s are skipped rather than rejected, so unknown fields from a
// newer schema version do not break an older reader. A Required field
// absent by the time the struct's sentinel is reached is reported via
// MissingFieldError.
func Decode(r *dcfcodec.Reader, s Schema) (Record, error) {
	typeID, err := r.StructBegin()
	if err != nil {
		return nil, err
	}
	if typeID != s.TypeID {
		return nil, dcfcodec.ErrTypeMismatch
	}

	rec := Record{}
	for {
		fieldID, tag, err := r.ReadField()
		if err != nil {
			if errors.Is(err, dcfcodec.ErrNotFound) {
				break
			}
			return nil, err
		}
		def, known := s.find(fieldID)
		if !known {
			if err := r.SkipValue(tag); err != nil {
				return nil, err
			}
			continue
		}
		if def.Tag != tag {
			return nil, dcfcodec.ErrTypeMismatch
		}
		v, err := readValue(r, tag)
		if err != nil {
			return nil, err
		}
		rec[fieldID] = v
	}
	if err := r.StructEnd(); err != nil {
		return nil, err
	}

	for _, f := range s.Fields {
		if f.Required {
			if _, ok := rec[f.ID]; !ok {
				return nil, &MissingFieldError{TypeID: s.TypeID, FieldID: f.ID, Name: f.Name}
			}
		}
	}
	return rec, nil
}

// readValue reads the value that follows a field header already consumed by
// ReadField. The value itself still carries its own leading type tag (every
// WriteXxx call emits one), so this dispatches straight to the matching
// typed Read* method, which re-validates that tag against tag.
func readValue(r *dcfcodec.Reader, tag dcfcodec.Type) (Value, error) {
	v := Value{Tag: tag}
	var err error
	switch tag {
	case dcfcodec.TypeBool:
		v.Bool, err = r.ReadBool()
	case dcfcodec.TypeU8:
		v.U8, err = r.ReadU8()
	case dcfcodec.TypeI8:
		v.I8, err = r.ReadI8()
	case dcfcodec.TypeU16:
		v.U16, err = r.ReadU16()
	case dcfcodec.TypeI16:
		v.I16, err = r.ReadI16()
	case dcfcodec.TypeU32:
		v.U32, err = r.ReadU32()
	case dcfcodec.TypeI32:
		v.I32, err = r.ReadI32()
	case dcfcodec.TypeU64:
		v.U64, err = r.ReadU64()
	case dcfcodec.TypeI64:
		v.I64, err = r.ReadI64()
	case dcfcodec.TypeF32:
		v.F32, err = r.ReadF32()
	case dcfcodec.TypeF64:
		v.F64, err = r.ReadF64()
	case dcfcodec.TypeVarint:
		v.Varint, err = r.ReadVarint()
	case dcfcodec.TypeString:
		v.Str, err = r.ReadStringCopy()
	case dcfcodec.TypeBytes:
		v.Bytes, err = r.ReadBytesCopy()
	case dcfcodec.TypeUUID:
		v.UUID, err = r.ReadUUID()
	case dcfcodec.TypeTimestamp:
		v.Timestamp, err = r.ReadTimestamp()
	case dcfcodec.TypeDuration:
		v.Duration, err = r.ReadDuration()
	default:
		err = dcfcodec.ErrInvalidType
	}
	return v, err
}
