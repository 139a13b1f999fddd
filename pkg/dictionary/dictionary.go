package dictionary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bgrewell/bej-kit/pkg/consts"
	"github.com/bgrewell/bej-kit/pkg/logging"
	"github.com/go-logr/logr"
)

// AnyFormat makes Find match on sequence number alone. Enum option lookup
// uses it because the option's declared format is not known to the caller.
const AnyFormat = -1

var (
	// ErrTruncated is returned when the dictionary blob is shorter than
	// its header or declared entry table.
	ErrTruncated = errors.New("dictionary data truncated")
)

// Entry is one row of the dictionary entry table. Children of an entry
// occupy a contiguous run of the table; the packed child pointer offset is
// converted to a table index at load time.
type Entry struct {
	Format      byte
	Sequence    uint16
	ChildOffset uint16
	ChildCount  uint16
	Name        string

	childIndex int
}

// FormatCode returns the expected BEJ format of values carrying this
// entry's sequence number (the high nibble of the packed format byte).
func (e *Entry) FormatCode() consts.Format {
	return consts.FormatFromByte(e.Format)
}

// HasChildren reports whether the entry owns a non-empty child run.
func (e *Entry) HasChildren() bool {
	return e.childIndex >= 0 && e.ChildCount > 0
}

// Dictionary is an immutable table mapping sequence numbers to property
// names and declared formats. It is read-only after loading and may be
// shared between concurrent decode calls.
type Dictionary struct {
	VersionTag    byte
	Flags         byte
	EntryCount    uint16
	SchemaVersion uint32
	Size          uint32
	Entries       []Entry

	logger *logging.Logger
}

// Load reads a packed dictionary file from the given location.
func Load(location string, logger *logging.Logger) (*Dictionary, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", location, err)
	}
	d, err := Parse(data, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dictionary %s: %w", location, err)
	}
	return d, nil
}

// Parse loads a packed dictionary blob: a 12-byte header followed by the
// entry table and a trailing name region addressed by absolute offsets.
func Parse(data []byte, logger *logging.Logger) (*Dictionary, error) {
	if logger == nil {
		logger = logging.NewLogger(logr.Discard())
	}

	if len(data) < consts.DICTIONARY_HEADER_SIZE {
		return nil, fmt.Errorf("%w: %d bytes is smaller than the %d byte header", ErrTruncated, len(data), consts.DICTIONARY_HEADER_SIZE)
	}

	d := &Dictionary{
		VersionTag:    data[0],
		Flags:         data[1],
		EntryCount:    binary.LittleEndian.Uint16(data[2:4]),
		SchemaVersion: binary.LittleEndian.Uint32(data[4:8]),
		Size:          binary.LittleEndian.Uint32(data[8:12]),
		logger:        logger,
	}

	if int(d.Size) > len(data) {
		return nil, fmt.Errorf("%w: header declares %d bytes but only %d are present", ErrTruncated, d.Size, len(data))
	}

	tableEnd := consts.DICTIONARY_HEADER_SIZE + int(d.EntryCount)*consts.DICTIONARY_ENTRY_SIZE
	if tableEnd > len(data) {
		return nil, fmt.Errorf("%w: entry table of %d entries exceeds %d bytes", ErrTruncated, d.EntryCount, len(data))
	}

	d.Entries = make([]Entry, d.EntryCount)
	for i := range d.Entries {
		rec := data[consts.DICTIONARY_HEADER_SIZE+i*consts.DICTIONARY_ENTRY_SIZE:]
		e := &d.Entries[i]
		e.Format = rec[0]
		e.Sequence = binary.LittleEndian.Uint16(rec[1:3])
		e.ChildOffset = binary.LittleEndian.Uint16(rec[3:5])
		e.ChildCount = binary.LittleEndian.Uint16(rec[5:7])
		e.childIndex = childIndexOf(e.ChildOffset, len(d.Entries), logger)

		nameLength := int(rec[7])
		nameOffset := int(binary.LittleEndian.Uint16(rec[8:10]))
		e.Name = resolveName(data, d.Size, nameOffset, nameLength, logger)
	}

	logger.Debug("Loaded dictionary",
		"entries", d.EntryCount, "schemaVersion", d.SchemaVersion, "size", d.Size)

	return d, nil
}

// childIndexOf converts a packed child pointer offset to an index into the
// entry table, or -1 when the entry has no children or the offset does not
// land on an entry record.
func childIndexOf(offset uint16, entryCount int, logger *logging.Logger) int {
	if offset == 0 {
		return -1
	}
	rel := int(offset) - consts.DICTIONARY_HEADER_SIZE
	if rel < 0 || rel%consts.DICTIONARY_ENTRY_SIZE != 0 {
		logger.Debug("Ignoring misaligned child pointer offset", "offset", offset)
		return -1
	}
	idx := rel / consts.DICTIONARY_ENTRY_SIZE
	if idx >= entryCount {
		logger.Debug("Ignoring out of range child pointer offset", "offset", offset)
		return -1
	}
	return idx
}

// resolveName copies an entry name out of the name region. Out of range
// offsets are not fatal; the entry simply keeps no name.
func resolveName(data []byte, size uint32, offset, length int, logger *logging.Logger) string {
	if length == 0 || length >= consts.DICTIONARY_NAME_LENGTH_UNSET {
		return ""
	}
	if offset+length > int(size) {
		logger.Debug("Dictionary name out of range",
			"offset", offset, "length", length, "dictionarySize", size)
		return ""
	}
	// Packed names carry a trailing NUL inside their declared length.
	return strings.TrimRight(string(data[offset:offset+length]), "\x00")
}

// Find resolves a sequence number against the child run of parent, or
// against the whole table when parent is nil (the dictionary root is a
// virtual parent owning every top-level entry). A format of AnyFormat
// matches entries regardless of their declared format. Find returns nil
// when no entry matches; a missing name is not an error.
func (d *Dictionary) Find(parent *Entry, sequence uint32, format int) *Entry {
	lo, hi := 0, len(d.Entries)
	if parent != nil {
		if !parent.HasChildren() {
			return nil
		}
		lo = parent.childIndex
		hi = lo + int(parent.ChildCount)
		if hi > len(d.Entries) {
			hi = len(d.Entries)
		}
	}

	// Sibling runs are small; a linear scan is fine here.
	for i := lo; i < hi; i++ {
		e := &d.Entries[i]
		if uint32(e.Sequence) == sequence && (format == AnyFormat || e.FormatCode() == consts.Format(format)) {
			return e
		}
	}
	return nil
}

// Children returns the contiguous run of child entries owned by e, or nil.
func (d *Dictionary) Children(e *Entry) []Entry {
	if e == nil || !e.HasChildren() {
		return nil
	}
	hi := e.childIndex + int(e.ChildCount)
	if hi > len(d.Entries) {
		hi = len(d.Entries)
	}
	return d.Entries[e.childIndex:hi]
}
