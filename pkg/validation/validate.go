package validation

import (
	"fmt"

	"github.com/bgrewell/bej-kit/pkg/consts"
	"github.com/bgrewell/bej-kit/pkg/dictionary"
)

// Problems checks the structural invariants a well-formed packed
// dictionary carries and describes every violation found. The decoder
// itself tolerates these conditions; the checks exist for dictionary
// inspection tooling.
func Problems(d *dictionary.Dictionary) []string {
	var problems []string

	for i := range d.Entries {
		e := &d.Entries[i]
		if e.ChildOffset == 0 {
			continue
		}

		rel := int(e.ChildOffset) - consts.DICTIONARY_HEADER_SIZE
		if rel < 0 || rel%consts.DICTIONARY_ENTRY_SIZE != 0 {
			problems = append(problems, fmt.Sprintf(
				"entry %d: child pointer offset %d does not address an entry record", i, e.ChildOffset))
			continue
		}

		start := rel / consts.DICTIONARY_ENTRY_SIZE
		if start+int(e.ChildCount) > len(d.Entries) {
			problems = append(problems, fmt.Sprintf(
				"entry %d: child run [%d, %d) extends past the %d entry table",
				i, start, start+int(e.ChildCount), len(d.Entries)))
			continue
		}

		// Sibling sequence numbers must be unique per declared format.
		type key struct {
			sequence uint16
			format   consts.Format
		}
		seen := make(map[key]int)
		for ci := start; ci < start+int(e.ChildCount); ci++ {
			c := &d.Entries[ci]
			k := key{sequence: c.Sequence, format: c.FormatCode()}
			if prev, dup := seen[k]; dup {
				problems = append(problems, fmt.Sprintf(
					"entry %d: children %d and %d share sequence %d with format %s",
					i, prev, ci, c.Sequence, c.FormatCode()))
			}
			seen[k] = ci
		}
	}

	return problems
}

// Validate returns an error describing the first invariant violation in
// the dictionary, or nil when it is well formed.
func Validate(d *dictionary.Dictionary) error {
	if problems := Problems(d); len(problems) > 0 {
		return fmt.Errorf("dictionary is malformed: %s", problems[0])
	}
	return nil
}
