package schema

import (
	"errors"
	"testing"

	"github.com/ALH477/dcf-serializer/pkg/dcfcodec"
)

var userSchema = Schema{
	TypeID: 10,
	Name:   "User",
	Fields: []FieldDef{
		{ID: 1, Name: "name", Tag: dcfcodec.TypeString, Required: true},
		{ID: 2, Name: "age", Tag: dcfcodec.TypeU32, Required: true},
		{ID: 3, Name: "nickname", Tag: dcfcodec.TypeString, Required: false},
	},
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	w := dcfcodec.NewWriter(1, 0)
	rec := Record{
		1: {Tag: dcfcodec.TypeString, Str: "ada"},
		2: {Tag: dcfcodec.TypeU32, U32: 36},
	}
	if err := Encode(w, userSchema, rec); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := dcfcodec.NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := Decode(r, userSchema)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got[1].Str != "ada" {
		t.Fatalf("field 1 = %q, want ada", got[1].Str)
	}
	if got[2].U32 != 36 {
		t.Fatalf("field 2 = %d, want 36", got[2].U32)
	}
	if _, ok := got[3]; ok {
		t.Fatalf("optional field 3 should be absent")
	}
}

func TestEncodeMissingRequiredField(t *testing.T) {
	w := dcfcodec.NewWriter(1, 0)
	rec := Record{
		1: {Tag: dcfcodec.TypeString, Str: "ada"},
	}
	if err := Encode(w, userSchema, rec); err == nil {
		t.Fatalf("expected Encode to reject missing required field")
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	w := dcfcodec.NewWriter(1, 0)
	if err := w.StructBegin(10); err != nil {
		t.Fatalf("StructBegin: %v", err)
	}
	_ = w.WriteField(1, dcfcodec.TypeString)
	_ = w.WriteString("ada")
	_ = w.WriteField(2, dcfcodec.TypeU32)
	_ = w.WriteU32(36)
	_ = w.WriteField(77, dcfcodec.TypeBytes)
	_ = w.WriteBytes([]byte{0x01, 0x02, 0x03})
	if err := w.StructEnd(); err != nil {
		t.Fatalf("StructEnd: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := dcfcodec.NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := Decode(r, userSchema)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 known fields decoded, got %d", len(got))
	}
}

func TestDecodeMissingRequiredFieldError(t *testing.T) {
	w := dcfcodec.NewWriter(1, 0)
	if err := w.StructBegin(10); err != nil {
		t.Fatalf("StructBegin: %v", err)
	}
	_ = w.WriteField(1, dcfcodec.TypeString)
	_ = w.WriteString("ada")
	if err := w.StructEnd(); err != nil {
		t.Fatalf("StructEnd: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := dcfcodec.NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	_, err = Decode(r, userSchema)
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.FieldID != 2 {
		t.Fatalf("MissingFieldError.FieldID = %d, want 2", missing.FieldID)
	}
}
