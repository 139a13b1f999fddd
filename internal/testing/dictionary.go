package testing

import (
	"encoding/binary"

	"github.com/bgrewell/bej-kit/pkg/consts"
)

// DictEntry describes one entry of a packed test dictionary. Children are
// laid out breadth-first so each entry's child run is contiguous, the same
// invariant real dictionaries carry.
type DictEntry struct {
	Format   byte
	Sequence uint16
	Name     string
	Children []DictEntry
}

// BuildDictionary packs entries into a dictionary blob: 12-byte header,
// 10-byte entry records in breadth-first order, then the name region.
// Names are stored with a terminating NUL included in their declared
// length, matching packed production dictionaries.
func BuildDictionary(versionTag, flags byte, schemaVersion uint32, roots []DictEntry) []byte {
	// Assign table rows breadth-first; children of the node at table
	// position qi start at len(nodes) the moment qi is processed.
	nodes := make([]*DictEntry, 0, len(roots))
	childStart := make(map[*DictEntry]int)
	for i := range roots {
		nodes = append(nodes, &roots[i])
	}
	for qi := 0; qi < len(nodes); qi++ {
		n := nodes[qi]
		if len(n.Children) > 0 {
			childStart[n] = len(nodes)
			for i := range n.Children {
				nodes = append(nodes, &n.Children[i])
			}
		}
	}

	tableEnd := consts.DICTIONARY_HEADER_SIZE + len(nodes)*consts.DICTIONARY_ENTRY_SIZE
	blob := make([]byte, tableEnd)

	nameOffsets := make(map[*DictEntry]int)
	for _, n := range nodes {
		if n.Name != "" {
			nameOffsets[n] = len(blob)
			blob = append(blob, n.Name...)
			blob = append(blob, 0)
		}
	}

	blob[0] = versionTag
	blob[1] = flags
	binary.LittleEndian.PutUint16(blob[2:4], uint16(len(nodes)))
	binary.LittleEndian.PutUint32(blob[4:8], schemaVersion)
	binary.LittleEndian.PutUint32(blob[8:12], uint32(len(blob)))

	for i, n := range nodes {
		rec := blob[consts.DICTIONARY_HEADER_SIZE+i*consts.DICTIONARY_ENTRY_SIZE:]
		rec[0] = n.Format
		binary.LittleEndian.PutUint16(rec[1:3], n.Sequence)
		if start, ok := childStart[n]; ok {
			offset := consts.DICTIONARY_HEADER_SIZE + start*consts.DICTIONARY_ENTRY_SIZE
			binary.LittleEndian.PutUint16(rec[3:5], uint16(offset))
			binary.LittleEndian.PutUint16(rec[5:7], uint16(len(n.Children)))
		}
		if n.Name != "" {
			rec[7] = byte(len(n.Name) + 1)
			binary.LittleEndian.PutUint16(rec[8:10], uint16(nameOffsets[n]))
		}
	}

	return blob
}
