package testing

import (
	"encoding/binary"

	"github.com/bgrewell/bej-kit/pkg/consts"
	"github.com/bgrewell/bej-kit/pkg/encoding"
)

// StreamHeader returns the 7-byte BEJ stream header.
func StreamHeader(version uint32, flags uint16, schemaClass byte) []byte {
	header := make([]byte, consts.BEJ_STREAM_HEADER_SIZE)
	binary.LittleEndian.PutUint32(header[0:4], version)
	binary.LittleEndian.PutUint16(header[4:6], flags)
	header[6] = schemaClass
	return header
}

// Tuple serializes one SFLV tuple. The selector bit is folded into the
// sequence NNINT and the format code shifted into the high nibble.
func Tuple(sequence uint32, annotation bool, format consts.Format, payload []byte) []byte {
	combined := sequence << 1
	if annotation {
		combined |= 0x1
	}
	out := encoding.AppendNNInt(nil, combined)
	out = append(out, byte(format)<<4)
	out = encoding.AppendNNInt(out, uint32(len(payload)))
	return append(out, payload...)
}

// ContainerPayload builds a SET or ARRAY payload: the declared member
// count followed by the already-serialized member tuples.
func ContainerPayload(count uint32, members ...[]byte) []byte {
	out := encoding.AppendNNInt(nil, count)
	for _, m := range members {
		out = append(out, m...)
	}
	return out
}

// Stream concatenates a default stream header with a top-level tuple.
func Stream(top []byte) []byte {
	return append(StreamHeader(consts.BEJ_VERSION_1_0_0, 0, 0), top...)
}
