package consts

import "fmt"

const (
	// BEJ stream header: 4-byte version, 2-byte flags, 1-byte schema class.
	BEJ_STREAM_HEADER_SIZE = 7

	// Known BEJ version words found in the stream header.
	BEJ_VERSION_1_0_0 = 0xF1F0F000
	BEJ_VERSION_1_1_0 = 0xF1F1F000

	// Packed dictionary header size in bytes.
	DICTIONARY_HEADER_SIZE = 12

	// Size of one packed dictionary entry record.
	DICTIONARY_ENTRY_SIZE = 10

	// NNINT payload length bounds (the length byte itself is excluded).
	NNINT_MIN_PAYLOAD = 1
	NNINT_MAX_PAYLOAD = 4

	// Name lengths of 0 or 255 mark an entry without a resolvable name.
	DICTIONARY_NAME_LENGTH_UNSET = 255
)

// Format is the 4-bit BEJ value format carried in the high nibble of the
// SFLV format byte.
type Format byte

const (
	FORMAT_SET                 Format = 0x0
	FORMAT_ARRAY               Format = 0x1
	FORMAT_NULL                Format = 0x2
	FORMAT_INTEGER             Format = 0x3
	FORMAT_ENUM                Format = 0x4
	FORMAT_STRING              Format = 0x5
	FORMAT_REAL                Format = 0x6
	FORMAT_BOOLEAN             Format = 0x7
	FORMAT_BYTE_STRING         Format = 0x8
	FORMAT_CHOICE              Format = 0x9
	FORMAT_PROPERTY_ANNOTATION Format = 0xA
	FORMAT_REGISTRY_ITEM       Format = 0xB
)

// FormatFromByte extracts the format code from a raw SFLV format byte. The
// low nibble carries sub-format flags which the decoder does not interpret.
func FormatFromByte(b byte) Format {
	return Format(b >> 4)
}

// Valid reports whether the format code is one this decoder recognizes.
func (f Format) Valid() bool {
	return f <= FORMAT_REGISTRY_ITEM
}

// String returns the format name used in logs and dictionary dumps.
func (f Format) String() string {
	switch f {
	case FORMAT_SET:
		return "Set"
	case FORMAT_ARRAY:
		return "Array"
	case FORMAT_NULL:
		return "Null"
	case FORMAT_INTEGER:
		return "Integer"
	case FORMAT_ENUM:
		return "Enum"
	case FORMAT_STRING:
		return "String"
	case FORMAT_REAL:
		return "Real"
	case FORMAT_BOOLEAN:
		return "Boolean"
	case FORMAT_BYTE_STRING:
		return "ByteString"
	case FORMAT_CHOICE:
		return "Choice"
	case FORMAT_PROPERTY_ANNOTATION:
		return "PropertyAnnotation"
	case FORMAT_REGISTRY_ITEM:
		return "RegistryItem"
	default:
		return fmt.Sprintf("Unknown(0x%X)", byte(f))
	}
}
