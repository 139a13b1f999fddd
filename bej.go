package bej

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bgrewell/bej-kit/pkg/dictionary"
	"github.com/bgrewell/bej-kit/pkg/helpers"
	"github.com/bgrewell/bej-kit/pkg/logging"
	"github.com/bgrewell/bej-kit/pkg/stream"
	"github.com/bgrewell/bej-kit/pkg/transcoder"
	"github.com/go-logr/logr"
)

// ErrInvalidArgument is returned when a required file path is missing.
var ErrInvalidArgument = errors.New("invalid argument")

// Options represents the options for opening a BEJ document
type Options struct {
	schemaDictionary     string
	annotationDictionary string
	decodeOnOpen         bool
	logger               *logging.Logger
}

// Option represents a function that modifies the Options
type Option func(*Options)

// WithSchemaDictionary sets the path of the packed schema dictionary. A
// schema dictionary is required; Open returns ErrInvalidArgument without one.
func WithSchemaDictionary(location string) Option {
	return func(o *Options) {
		o.schemaDictionary = location
	}
}

// WithAnnotationDictionary sets the path of the packed annotation
// dictionary. It is optional; annotation-selected tuples then decode with
// placeholder names.
func WithAnnotationDictionary(location string) Option {
	return func(o *Options) {
		o.annotationDictionary = location
	}
}

// WithDecodeOnOpen sets whether to decode the BEJ stream when opening. The
// JSON document is written next to the input with a .json extension. If
// set to false then the document will need to be manually decoded with
// Decode or DecodeToFile.
func WithDecodeOnOpen(decodeOnOpen bool) Option {
	return func(o *Options) {
		o.decodeOnOpen = decodeOnOpen
	}
}

// WithLogger sets the logger for the document
func WithLogger(logger *logging.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// Open opens a BEJ stream file and loads its dictionaries
func Open(location string, opts ...Option) (Document, error) {
	// Set default options
	options := Options{
		logger: logging.NewLogger(logr.Discard()),
	}

	// Apply options
	for _, opt := range opts {
		opt(&options)
	}

	if options.schemaDictionary == "" {
		return nil, fmt.Errorf("%w: a schema dictionary location must be provided", ErrInvalidArgument)
	}

	doc := &BEJDocument{options: options}
	return doc, doc.Open(location)
}

// Document represents an openable BEJ stream
type Document interface {
	Open(location string) error
	Decode(w io.Writer) error
	DecodeToFile(location string) error
	Close() error
	SchemaDictionary() *dictionary.Dictionary
	AnnotationDictionary() *dictionary.Dictionary
}

// BEJDocument is a BEJ stream plus the two dictionaries that give its
// tuples names. Decode consumes the stream cursor, so a document decodes
// once per Open.
type BEJDocument struct {
	schema      *dictionary.Dictionary
	annotations *dictionary.Dictionary
	bejFile     *os.File
	options     Options
	logger      *logging.Logger
}

// Open loads both dictionaries and opens the BEJ stream for decoding
func (d *BEJDocument) Open(location string) (err error) {

	// Pull the logger out of the options
	d.logger = d.options.logger
	if d.logger == nil {
		d.logger = logging.NewLogger(logr.Discard())
	}

	if location == "" {
		return fmt.Errorf("%w: a BEJ stream location must be provided", ErrInvalidArgument)
	}

	// Dictionaries are loaded eagerly so lookup never touches the disk
	// while the stream is being walked
	d.schema, err = dictionary.Load(d.options.schemaDictionary, d.logger)
	if err != nil {
		return fmt.Errorf("failed to load schema dictionary: %w", err)
	}
	d.logger.Debug("Loaded schema dictionary",
		"location", d.options.schemaDictionary, "entries", d.schema.EntryCount)

	if d.options.annotationDictionary != "" {
		d.annotations, err = dictionary.Load(d.options.annotationDictionary, d.logger)
		if err != nil {
			return fmt.Errorf("failed to load annotation dictionary: %w", err)
		}
		d.logger.Debug("Loaded annotation dictionary",
			"location", d.options.annotationDictionary, "entries", d.annotations.EntryCount)
	}

	d.bejFile, err = os.Open(location)
	if err != nil {
		return fmt.Errorf("failed to open BEJ stream: %w", err)
	}

	// Decode the stream if requested
	if d.options.decodeOnOpen {
		if err = d.DecodeToFile(helpers.JSONOutputPath(location)); err != nil {
			return err
		}
	}

	return nil
}

// Decode transcodes the BEJ stream to JSON on w
func (d *BEJDocument) Decode(w io.Writer) error {
	if d.bejFile == nil {
		return errors.New("bej stream is not open")
	}

	t := transcoder.New(stream.NewFileSource(d.bejFile), w, d.schema, d.annotations, d.logger)
	if err := t.Decode(); err != nil {
		return fmt.Errorf("failed to decode BEJ stream: %w", err)
	}

	d.logger.Debug("Finished decoding BEJ stream", "input", d.bejFile.Name())
	return nil
}

// DecodeToFile transcodes the BEJ stream to JSON in a newly created file
func (d *BEJDocument) DecodeToFile(location string) error {
	out, err := os.Create(location)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", location, err)
	}
	defer out.Close()

	return d.Decode(out)
}

// Close closes the BEJ stream file
func (d *BEJDocument) Close() error {
	if d.bejFile == nil {
		return nil
	}
	return d.bejFile.Close()
}

// SchemaDictionary returns the loaded schema dictionary
func (d *BEJDocument) SchemaDictionary() *dictionary.Dictionary {
	return d.schema
}

// AnnotationDictionary returns the loaded annotation dictionary, or nil
func (d *BEJDocument) AnnotationDictionary() *dictionary.Dictionary {
	return d.annotations
}
