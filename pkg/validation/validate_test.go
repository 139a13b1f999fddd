package validation

import (
	"encoding/binary"
	"testing"

	itesting "github.com/bgrewell/bej-kit/internal/testing"
	"github.com/bgrewell/bej-kit/pkg/consts"
	"github.com/bgrewell/bej-kit/pkg/dictionary"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, blob []byte) *dictionary.Dictionary {
	t.Helper()
	d, err := dictionary.Parse(blob, nil)
	require.NoError(t, err)
	return d
}

func TestValidateWellFormed(t *testing.T) {
	d := parse(t, itesting.BuildDictionary(0, 0, 0, []itesting.DictEntry{
		{
			Format:   0x00,
			Sequence: 0,
			Name:     "Resource",
			Children: []itesting.DictEntry{
				{Format: 0x30, Sequence: 0, Name: "Id"},
				{Format: 0x50, Sequence: 1, Name: "Name"},
				// Same sequence as Id but a different declared format.
				{Format: 0x50, Sequence: 0, Name: "Alias"},
			},
		},
	}))

	require.Empty(t, Problems(d))
	require.NoError(t, Validate(d))
}

func TestValidateDuplicateSiblings(t *testing.T) {
	d := parse(t, itesting.BuildDictionary(0, 0, 0, []itesting.DictEntry{
		{
			Format:   0x00,
			Sequence: 0,
			Children: []itesting.DictEntry{
				{Format: 0x30, Sequence: 7},
				{Format: 0x30, Sequence: 7},
			},
		},
	}))

	problems := Problems(d)
	require.Len(t, problems, 1)
	require.Contains(t, problems[0], "sequence 7")
	require.Error(t, Validate(d))
}

func TestValidateChildRunOutOfRange(t *testing.T) {
	blob := itesting.BuildDictionary(0, 0, 0, []itesting.DictEntry{
		{
			Format:   0x00,
			Sequence: 0,
			Children: []itesting.DictEntry{
				{Format: 0x30, Sequence: 0},
			},
		},
	})
	// Inflate the declared child count past the table.
	binary.LittleEndian.PutUint16(blob[consts.DICTIONARY_HEADER_SIZE+5:], 9)

	problems := Problems(parse(t, blob))
	require.Len(t, problems, 1)
	require.Contains(t, problems[0], "extends past")
}

func TestValidateMisalignedChildPointer(t *testing.T) {
	blob := itesting.BuildDictionary(0, 0, 0, []itesting.DictEntry{
		{
			Format:   0x00,
			Sequence: 0,
			Children: []itesting.DictEntry{
				{Format: 0x30, Sequence: 0},
			},
		},
	})
	binary.LittleEndian.PutUint16(blob[consts.DICTIONARY_HEADER_SIZE+3:], 17)

	problems := Problems(parse(t, blob))
	require.Len(t, problems, 1)
	require.Contains(t, problems[0], "does not address an entry record")
}
