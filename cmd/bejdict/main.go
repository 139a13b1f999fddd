package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bgrewell/bej-kit/pkg/dictionary"
	"github.com/bgrewell/bej-kit/pkg/logging"
	"github.com/bgrewell/bej-kit/pkg/validation"
)

func main() {
	// Logging level flags
	debug := flag.Bool("v", false, "Enable verbose (debug) logging")
	trace := flag.Bool("vv", false, "Enable trace logging")

	// Parse flags
	flag.Parse()

	// Configure logging
	if *trace {
		level := "trace"
		logging.InitLogger(&level)
	} else if *debug {
		level := "debug"
		logging.InitLogger(&level)
	}

	// Ensure we have a dictionary path
	if flag.NArg() < 1 {
		fmt.Println("Usage: bejdict [options] <path-to-dictionary>")
		fmt.Println("  -v               Enable verbose (debug) logging")
		fmt.Println("  -vv              Enable trace logging")
		os.Exit(1)
	}

	dict, err := dictionary.Load(flag.Arg(0), logging.DefaultLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load dictionary: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Dictionary Information ===")
	fmt.Printf("Version Tag: 0x%02X\n", dict.VersionTag)
	fmt.Printf("Flags: 0x%02X\n", dict.Flags)
	fmt.Printf("Schema Version: 0x%08X\n", dict.SchemaVersion)
	fmt.Printf("Entries: %d\n", dict.EntryCount)
	fmt.Printf("Size: %d bytes\n", dict.Size)
	fmt.Println("==============================")

	if problems := validation.Problems(dict); len(problems) > 0 {
		fmt.Println("=== Validation Problems ===")
		for _, p := range problems {
			fmt.Println("  " + p)
		}
		fmt.Println("==============================")
	}

	if len(dict.Entries) > 0 {
		root := &dict.Entries[0]
		printEntry(dict, root, 0, map[*dictionary.Entry]bool{})
	}
}

// printEntry walks the entry hierarchy from e, indenting one level per
// generation. The seen set guards against malformed dictionaries whose
// child pointers loop.
func printEntry(dict *dictionary.Dictionary, e *dictionary.Entry, depth int, seen map[*dictionary.Entry]bool) {
	if seen[e] {
		return
	}
	seen[e] = true

	name := e.Name
	if name == "" {
		name = fmt.Sprintf("seq_%d", e.Sequence)
	}
	fmt.Printf("%s%s (sequence=%d format=%s children=%d)\n",
		strings.Repeat("  ", depth), name, e.Sequence, e.FormatCode(), e.ChildCount)

	children := dict.Children(e)
	for i := range children {
		printEntry(dict, &children[i], depth+1, seen)
	}
}
