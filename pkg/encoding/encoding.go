package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bgrewell/bej-kit/pkg/consts"
	"github.com/bgrewell/bej-kit/pkg/stream"
)

var (
	// ErrMalformedNNInt is returned when an NNINT length byte is 0 or
	// larger than 4.
	ErrMalformedNNInt = errors.New("malformed NNINT length byte")

	// ErrUnexpectedEOF is returned when the input ends in the middle of an
	// NNINT or SFLV tuple.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
)

// Tuple is one parsed SFLV (Sequence/Format/Length/Value) value. The
// selector bit has been stripped from Sequence; RawFormat preserves the
// full format byte including the sub-format flags in the low nibble.
type Tuple struct {
	Sequence   uint32
	Annotation bool
	Format     consts.Format
	RawFormat  byte
	Length     uint32
	Value      []byte
}

// ReadFull fills p from src, translating a short read into ErrUnexpectedEOF.
func ReadFull(src stream.ByteSource, p []byte) error {
	total := 0
	for total < len(p) {
		n, err := src.Read(p[total:])
		total += n
		if err == io.EOF || (err == nil && n == 0) {
			if total < len(p) {
				return ErrUnexpectedEOF
			}
			break
		}
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
	}
	return nil
}

// ReadNNInt reads one BEJ non-negative integer: a length byte L followed by
// L little-endian payload bytes, zero-extended to 32 bits. L must be 1..4.
func ReadNNInt(src stream.ByteSource) (uint32, error) {
	var lb [1]byte
	if err := ReadFull(src, lb[:]); err != nil {
		return 0, err
	}
	l := int(lb[0])
	if l < consts.NNINT_MIN_PAYLOAD || l > consts.NNINT_MAX_PAYLOAD {
		return 0, fmt.Errorf("%w: %d", ErrMalformedNNInt, l)
	}

	var payload [consts.NNINT_MAX_PAYLOAD]byte
	if err := ReadFull(src, payload[:l]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(payload[:]), nil
}

// AppendNNInt appends the canonical minimum-length NNINT encoding of v to
// dst and returns the extended slice.
func AppendNNInt(dst []byte, v uint32) []byte {
	var payload [consts.NNINT_MAX_PAYLOAD]byte
	binary.LittleEndian.PutUint32(payload[:], v)
	l := consts.NNINT_MAX_PAYLOAD
	for l > consts.NNINT_MIN_PAYLOAD && payload[l-1] == 0 {
		l--
	}
	dst = append(dst, byte(l))
	return append(dst, payload[:l]...)
}

// ReadTuple reads one SFLV tuple from src: the combined sequence NNINT
// (bit 0 is the dictionary selector), the raw format byte, the payload
// length NNINT, and exactly Length payload bytes.
func ReadTuple(src stream.ByteSource) (*Tuple, error) {
	seq, err := ReadNNInt(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuple sequence: %w", err)
	}

	var fb [1]byte
	if err = ReadFull(src, fb[:]); err != nil {
		return nil, fmt.Errorf("failed to read tuple format: %w", err)
	}

	length, err := ReadNNInt(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuple length: %w", err)
	}

	t := &Tuple{
		Sequence:   seq >> 1,
		Annotation: seq&0x1 != 0,
		Format:     consts.FormatFromByte(fb[0]),
		RawFormat:  fb[0],
		Length:     length,
	}
	if length > 0 {
		t.Value = make([]byte, length)
		if err = ReadFull(src, t.Value); err != nil {
			return nil, fmt.Errorf("failed to read tuple value of %d bytes: %w", length, err)
		}
	}
	return t, nil
}
