package transcoder

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/bgrewell/bej-kit/pkg/consts"
	"github.com/bgrewell/bej-kit/pkg/dictionary"
	"github.com/bgrewell/bej-kit/pkg/encoding"
	"github.com/bgrewell/bej-kit/pkg/logging"
	"github.com/bgrewell/bej-kit/pkg/stream"
	"github.com/go-logr/logr"
)

// ErrUnknownFormat is returned when a tuple carries a format nibble outside
// the range this decoder recognizes.
var ErrUnknownFormat = errors.New("unknown BEJ format")

const hexdigits = "0123456789abcdef"

// Transcoder walks one BEJ stream and writes the equivalent JSON document.
// It is single use and not safe for concurrent use; the dictionaries it
// borrows are read-only and may be shared.
type Transcoder struct {
	schema      *dictionary.Dictionary
	annotations *dictionary.Dictionary
	src         stream.ByteSource
	out         *bufio.Writer
	depth       int
	logger      *logging.Logger
}

// New creates a Transcoder reading BEJ from src and writing JSON to out.
// The annotation dictionary may be nil; annotation-selected tuples then
// resolve no names.
func New(src stream.ByteSource, out io.Writer, schema, annotations *dictionary.Dictionary, logger *logging.Logger) *Transcoder {
	if logger == nil {
		logger = logging.NewLogger(logr.Discard())
	}
	return &Transcoder{
		schema:      schema,
		annotations: annotations,
		src:         src,
		out:         bufio.NewWriter(out),
		logger:      logger,
	}
}

// Decode reads the BEJ stream header and the single top-level SFLV tuple,
// transcodes it, and flushes the output terminated by one newline. On
// error the output may hold a partial, non well-formed document.
func (t *Transcoder) Decode() error {
	var header [consts.BEJ_STREAM_HEADER_SIZE]byte
	if err := encoding.ReadFull(t.src, header[:]); err != nil {
		return fmt.Errorf("failed to read BEJ stream header: %w", err)
	}
	t.logger.Debug("Read BEJ stream header",
		"version", fmt.Sprintf("0x%08X", binary.LittleEndian.Uint32(header[0:4])),
		"flags", binary.LittleEndian.Uint16(header[4:6]),
		"schemaClass", header[6])

	tuple, err := encoding.ReadTuple(t.src)
	if err != nil {
		return fmt.Errorf("failed to read top-level tuple: %w", err)
	}

	entry := t.resolve(tuple, nil)
	if err = t.decodeValue(tuple, entry); err != nil {
		// Keep whatever was emitted before the failure.
		_ = t.out.Flush()
		return err
	}

	if err = t.out.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err = t.out.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// dictFor selects the dictionary the tuple's selector bit routes to.
func (t *Transcoder) dictFor(tuple *encoding.Tuple) *dictionary.Dictionary {
	if tuple.Annotation {
		return t.annotations
	}
	return t.schema
}

// resolve looks up the dictionary entry for a tuple under the given parent
// entry. A nil result is not an error; the caller falls back to a
// sequence-number placeholder.
func (t *Transcoder) resolve(tuple *encoding.Tuple, parent *dictionary.Entry) *dictionary.Entry {
	d := t.dictFor(tuple)
	if d == nil {
		return nil
	}
	return d.Find(parent, tuple.Sequence, int(tuple.Format))
}

// decodeValue dispatches one tuple by format. entry is the dictionary
// entry describing the tuple itself (nil when unresolved) and roots the
// lookups for any children.
func (t *Transcoder) decodeValue(tuple *encoding.Tuple, entry *dictionary.Entry) error {
	if !tuple.Format.Valid() {
		if err := t.writeString("null"); err != nil {
			return err
		}
		return fmt.Errorf("%w: 0x%X", ErrUnknownFormat, byte(tuple.Format))
	}

	switch tuple.Format {
	case consts.FORMAT_SET:
		return t.decodeSet(tuple, entry)
	case consts.FORMAT_ARRAY:
		return t.decodeArray(tuple, entry)
	case consts.FORMAT_NULL:
		return t.writeString("null")
	case consts.FORMAT_INTEGER:
		return t.decodeInteger(tuple.Value)
	case consts.FORMAT_ENUM:
		return t.decodeEnum(tuple, entry)
	case consts.FORMAT_STRING:
		return t.writeJSONString(tuple.Value)
	case consts.FORMAT_REAL:
		return t.decodeReal(tuple.Value)
	case consts.FORMAT_BOOLEAN:
		return t.decodeBoolean(tuple.Value)
	case consts.FORMAT_BYTE_STRING:
		return t.writeString(`"<byte_string>"`)
	default:
		t.logger.Error(nil, "WARNING: format is not supported, emitting null",
			"format", tuple.Format.String(), "sequence", tuple.Sequence)
		return t.writeString("null")
	}
}

// decodeSet emits a JSON object. The payload opens with an NNINT child
// count used for validation only; the loop is driven by end of buffer.
func (t *Transcoder) decodeSet(tuple *encoding.Tuple, entry *dictionary.Entry) error {
	if err := t.out.WriteByte('{'); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	children := 0
	if len(tuple.Value) > 0 {
		src := stream.NewBufferSource(tuple.Value)
		declared, err := encoding.ReadNNInt(src)
		if err != nil {
			return fmt.Errorf("failed to read set member count: %w", err)
		}

		t.depth++
		err = t.decodeSetMembers(src, entry, &children)
		t.depth--
		if err != nil {
			return err
		}

		if uint32(children) != declared {
			t.logger.Debug("Set member count mismatch",
				"declared", declared, "actual", children)
		}
	}

	if children > 0 {
		if err := t.writeNewlineIndent(); err != nil {
			return err
		}
	}
	if err := t.out.WriteByte('}'); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// decodeSetMembers reads set members until the payload buffer is
// exhausted, tracking how many were emitted through count.
func (t *Transcoder) decodeSetMembers(src *stream.BufferSource, entry *dictionary.Entry, count *int) error {
	for !src.EOF() {
		child, err := encoding.ReadTuple(src)
		if err != nil {
			return fmt.Errorf("failed to read set member: %w", err)
		}

		if *count > 0 {
			if err = t.out.WriteByte(','); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if err = t.writeNewlineIndent(); err != nil {
			return err
		}

		childEntry := t.resolve(child, entry)
		if err = t.writeMemberName(child, childEntry); err != nil {
			return err
		}
		if err = t.decodeValue(child, childEntry); err != nil {
			return err
		}
		*count++
	}
	return nil
}

// decodeArray emits a JSON array on a single line. Elements share the
// enclosing entry's schema, so the entry is passed down unchanged.
func (t *Transcoder) decodeArray(tuple *encoding.Tuple, entry *dictionary.Entry) error {
	if err := t.out.WriteByte('['); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if len(tuple.Value) > 0 {
		src := stream.NewBufferSource(tuple.Value)
		declared, err := encoding.ReadNNInt(src)
		if err != nil {
			return fmt.Errorf("failed to read array element count: %w", err)
		}

		elements := 0
		for !src.EOF() {
			child, err := encoding.ReadTuple(src)
			if err != nil {
				return fmt.Errorf("failed to read array element: %w", err)
			}
			if elements > 0 {
				if err = t.writeString(", "); err != nil {
					return err
				}
			}
			if err = t.decodeValue(child, entry); err != nil {
				return err
			}
			elements++
		}

		if uint32(elements) != declared {
			t.logger.Debug("Array element count mismatch",
				"declared", declared, "actual", elements)
		}
	}

	if err := t.out.WriteByte(']'); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// decodeInteger emits a signed little-endian integer of 1..8 bytes,
// sign-extended from its top payload byte. An empty payload emits 0;
// payloads beyond 8 bytes contribute only their first 8.
func (t *Transcoder) decodeInteger(value []byte) error {
	n := len(value)
	if n == 0 {
		return t.writeString("0")
	}
	if n > 8 {
		n = 8
	}

	var v uint64
	for i := 0; i < n; i++ {
		v |= uint64(value[i]) << (8 * i)
	}
	if n < 8 && value[n-1]&0x80 != 0 {
		v |= ^uint64(0) << (8 * n)
	}
	return t.writeString(strconv.FormatInt(int64(v), 10))
}

// decodeEnum resolves the payload NNINT option sequence to a name under
// the tuple's own dictionary entry. An unresolved option is emitted as its
// decimal sequence number in quotes.
func (t *Transcoder) decodeEnum(tuple *encoding.Tuple, entry *dictionary.Entry) error {
	option, err := encoding.ReadNNInt(stream.NewBufferSource(tuple.Value))
	if err != nil {
		return fmt.Errorf("failed to read enum option: %w", err)
	}

	if d := t.dictFor(tuple); d != nil {
		if e := d.Find(entry, option, dictionary.AnyFormat); e != nil && e.Name != "" {
			return t.writeJSONString([]byte(e.Name))
		}
	}
	return t.writeString(`"` + strconv.FormatUint(uint64(option), 10) + `"`)
}

// decodeReal is length-driven: 4 and 8 byte payloads are IEEE-754 floats,
// 1 and 2 byte payloads fall back to their unsigned integer value, and any
// other length emits null.
func (t *Transcoder) decodeReal(value []byte) error {
	switch len(value) {
	case 4:
		f := math.Float32frombits(binary.LittleEndian.Uint32(value))
		return t.writeString(strconv.FormatFloat(float64(f), 'g', 7, 32))
	case 8:
		f := math.Float64frombits(binary.LittleEndian.Uint64(value))
		return t.writeString(strconv.FormatFloat(f, 'g', 15, 64))
	case 1:
		return t.writeString(strconv.FormatUint(uint64(value[0]), 10))
	case 2:
		return t.writeString(strconv.FormatUint(uint64(binary.LittleEndian.Uint16(value)), 10))
	default:
		return t.writeString("null")
	}
}

// decodeBoolean emits true when any payload byte is non-zero.
func (t *Transcoder) decodeBoolean(value []byte) error {
	for _, b := range value {
		if b != 0 {
			return t.writeString("true")
		}
	}
	return t.writeString("false")
}

// writeMemberName emits the quoted object key for a set member followed by
// ": ". Unresolved members get a "seq_<N>" placeholder.
func (t *Transcoder) writeMemberName(tuple *encoding.Tuple, entry *dictionary.Entry) error {
	var err error
	if entry != nil && entry.Name != "" {
		err = t.writeJSONString([]byte(entry.Name))
	} else {
		err = t.writeString(`"seq_` + strconv.FormatUint(uint64(tuple.Sequence), 10) + `"`)
	}
	if err != nil {
		return err
	}
	return t.writeString(": ")
}

// writeJSONString emits the payload bytes as a quoted JSON string. Bytes
// are passed through verbatim above 0x1F apart from the two characters
// JSON requires escaping; control bytes use the short escapes where they
// exist and \u00XX otherwise.
func (t *Transcoder) writeJSONString(value []byte) error {
	if err := t.out.WriteByte('"'); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, b := range value {
		var err error
		switch b {
		case '"':
			_, err = t.out.WriteString(`\"`)
		case '\\':
			_, err = t.out.WriteString(`\\`)
		case '\b':
			_, err = t.out.WriteString(`\b`)
		case '\f':
			_, err = t.out.WriteString(`\f`)
		case '\n':
			_, err = t.out.WriteString(`\n`)
		case '\r':
			_, err = t.out.WriteString(`\r`)
		case '\t':
			_, err = t.out.WriteString(`\t`)
		default:
			if b < 0x20 {
				_, err = t.out.WriteString(`\u00` + string(hexdigits[b>>4]) + string(hexdigits[b&0xF]))
			} else {
				err = t.out.WriteByte(b)
			}
		}
		if err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := t.out.WriteByte('"'); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeNewlineIndent emits a newline followed by one tab per depth level.
func (t *Transcoder) writeNewlineIndent() error {
	if err := t.out.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for i := 0; i < t.depth; i++ {
		if err := t.out.WriteByte('\t'); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func (t *Transcoder) writeString(s string) error {
	if _, err := t.out.WriteString(s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
