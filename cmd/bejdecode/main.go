package main

import (
	"fmt"
	"os"
	"time"

	bej "github.com/bgrewell/bej-kit"
	"github.com/bgrewell/bej-kit/pkg/helpers"
	"github.com/bgrewell/bej-kit/pkg/logging"
	"github.com/bgrewell/bej-kit/pkg/version"
	"github.com/bgrewell/usage"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

func main() {

	u := usage.NewUsage(
		usage.WithApplicationVersion(version.Version()),
		usage.WithApplicationBranch(version.Branch()),
		usage.WithApplicationBuildDate(version.Date()),
		usage.WithApplicationCommitHash(version.Revision()),
		usage.WithApplicationName("bejdecode"),
		usage.WithApplicationDescription("bejdecode is a command-line tool for decoding Binary Encoded JSON (BEJ) streams into JSON documents. Property names and enumeration labels are resolved through side-loaded schema and annotation dictionaries."),
	)

	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print verbose output", "", nil)
	schemaPath := u.AddStringOption("s", "schema", "", "Path to the packed schema dictionary", "required", nil)
	annotationPath := u.AddStringOption("a", "annotation", "", "Path to the packed annotation dictionary", "", nil)
	bejPath := u.AddStringOption("b", "bej", "", "Path to the BEJ encoded input file", "required", nil)
	command := u.AddArgument(1, "command", "Operation to perform, currently only 'decode'", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if command == nil || *command != "decode" {
		u.PrintError(fmt.Errorf("the operation <command> must be 'decode'"))
		os.Exit(1)
	}

	if schemaPath == nil || *schemaPath == "" {
		u.PrintError(fmt.Errorf("a schema dictionary -s <path> must be provided"))
		os.Exit(1)
	}

	if bejPath == nil || *bejPath == "" {
		u.PrintError(fmt.Errorf("a BEJ input file -b <path> must be provided"))
		os.Exit(1)
	}

	if *verbose {
		level := "debug"
		logging.InitLogger(&level)
	}

	// A spinner keeps quiet runs from looking hung on large streams; it is
	// skipped when verbose logging already writes to stderr.
	var spinner *yacspin.Spinner
	if !*verbose && term.IsTerminal(int(os.Stderr.Fd())) {
		cfg := yacspin.Config{
			Frequency: 100 * time.Millisecond,
			CharSet:   yacspin.CharSets[14],
			Suffix:    " decoding " + *bejPath,
			Writer:    os.Stderr,
		}
		if s, err := yacspin.New(cfg); err == nil {
			spinner = s
			_ = spinner.Start()
		}
	}

	stopSpinner := func() {
		if spinner != nil {
			_ = spinner.Stop()
		}
	}

	opts := []bej.Option{
		bej.WithSchemaDictionary(*schemaPath),
		bej.WithDecodeOnOpen(true),
		bej.WithLogger(logging.DefaultLogger()),
	}
	if annotationPath != nil && *annotationPath != "" {
		opts = append(opts, bej.WithAnnotationDictionary(*annotationPath))
	}

	// Decode-on-open writes the JSON document next to the input.
	doc, err := bej.Open(*bejPath, opts...)
	if err != nil {
		stopSpinner()
		u.PrintError(err)
		os.Exit(1)
	}
	defer doc.Close()

	stopSpinner()
	fmt.Printf("Decoded '%s' to '%s'.\n", *bejPath, helpers.JSONOutputPath(*bejPath))
}
