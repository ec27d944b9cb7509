package dcfcodec

// Wire constants (spec §3). Normative — must not vary across implementations.
const (
	Magic   uint32 = 0x44434653 // "DCFS"
	Version uint16 = 0x0520     // major=0x05, minor=0x20

	HeaderSize = 17

	MaxMessage      = 16 * 1024 * 1024
	MaxString       = 64 * 1024
	MaxArray        = 1 << 20
	MaxDepth        = 32
	InitialCapacity = 256
)

// Flags is the one-byte header flag field. The codec only interprets
// NoCRC; the rest are preserved byte-for-byte for the caller.
type Flags uint8

const (
	FlagCompressed Flags = 0x01
	FlagEncrypted  Flags = 0x02
	FlagStreaming  Flags = 0x04
	FlagFinal      Flags = 0x08
	FlagPriority   Flags = 0x10
	FlagNoCRC      Flags = 0x20
	FlagExtended   Flags = 0x80
)

// Has reports whether f contains bit.
func (f Flags) Has(bit Flags) bool {
	return f&bit != 0
}

// Type is the one-byte wire type tag preceding every value.
type Type uint8

const (
	TypeNull Type = 0x00
	TypeBool Type = 0x01
	TypeU8   Type = 0x02
	TypeI8   Type = 0x03
	TypeU16  Type = 0x04
	TypeI16  Type = 0x05
	TypeU32  Type = 0x06
	TypeI32  Type = 0x07
	TypeU64  Type = 0x08
	TypeI64  Type = 0x09
	TypeF32  Type = 0x0A
	TypeF64  Type = 0x0B

	TypeVarint Type = 0x10
	TypeString Type = 0x11
	TypeBytes  Type = 0x12
	TypeUUID   Type = 0x13

	TypeArray  Type = 0x20
	TypeMap    Type = 0x21
	TypeStruct Type = 0x22
	TypeTuple  Type = 0x23

	TypeTimestamp Type = 0x30
	TypeDuration  Type = 0x31
	TypeOptional  Type = 0x32
	TypeEnum      Type = 0x33

	TypeExtension Type = 0xFE
	TypeInvalid   Type = 0xFF
)

// String renders a human-readable tag name, mirroring dcf_ser_type_str.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeU8:
		return "u8"
	case TypeI8:
		return "i8"
	case TypeU16:
		return "u16"
	case TypeI16:
		return "i16"
	case TypeU32:
		return "u32"
	case TypeI32:
		return "i32"
	case TypeU64:
		return "u64"
	case TypeI64:
		return "i64"
	case TypeF32:
		return "f32"
	case TypeF64:
		return "f64"
	case TypeVarint:
		return "varint"
	case TypeString:
		return "string"
	case TypeBytes:
		return "bytes"
	case TypeUUID:
		return "uuid"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	case TypeStruct:
		return "struct"
	case TypeTuple:
		return "tuple"
	case TypeTimestamp:
		return "timestamp"
	case TypeDuration:
		return "duration"
	case TypeOptional:
		return "optional"
	case TypeEnum:
		return "enum"
	case TypeExtension:
		return "extension"
	case TypeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// FixedSize returns the fixed wire payload size for type tags that have
// one, and 0 for variable-length or container types.
func (t Type) FixedSize() int {
	switch t {
	case TypeNull:
		return 0
	case TypeBool, TypeU8, TypeI8:
		return 1
	case TypeU16, TypeI16:
		return 2
	case TypeU32, TypeI32, TypeF32:
		return 4
	case TypeU64, TypeI64, TypeF64, TypeTimestamp, TypeDuration:
		return 8
	case TypeUUID:
		return 16
	default:
		return 0
	}
}

// Header is the fixed 17-byte frame header. It is never aliased onto the
// wire buffer directly — fields are always put/got as discrete big-endian
// integers (spec §9: no packed-struct aliasing).
type Header struct {
	Magic      uint32
	Version    uint16
	MsgType    uint16
	Flags      Flags
	PayloadLen uint32
	Sequence   uint32
}
