package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// Format represents the output format type
type Format string

const (
	FormatBundle Format = "bundle"
	FormatNDJSON Format = "ndjson"
)

// ErrLimitExceeded is returned when a bundle would exceed its resource limit
var ErrLimitExceeded = errors.New("bundle resource limit exceeded")

// Writer writes FHIR resources to a single stream
type Writer struct {
	writer       io.Writer
	format       Format
	file         *os.File
	resources    []json.RawMessage
	maxResources int
	count        int
}

// NewWriter creates a new output writer ("" or "-" is stdout)
func NewWriter(outputPath string, format Format) (*Writer, error) {
	return NewWriterWithLimit(outputPath, format, 0)
}

// NewWriterWithLimit creates a writer whose bundle holds at most
// maxResources entries. Zero means no limit; NDJSON output is never limited.
func NewWriterWithLimit(outputPath string, format Format, maxResources int) (*Writer, error) {
	var writer io.Writer
	var file *os.File

	if outputPath == "" || outputPath == "-" {
		writer = os.Stdout
	} else {
		var err error
		file, err = os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		writer = file
	}

	return &Writer{
		writer:       writer,
		format:       format,
		file:         file,
		maxResources: maxResources,
	}, nil
}

// Write writes a FHIR resource to the output
func (w *Writer) Write(resource any) error {
	data, err := json.Marshal(resource)
	if err != nil {
		return fmt.Errorf("failed to marshal resource: %w", err)
	}

	if w.format == FormatNDJSON {
		data = append(data, '\n')
		if _, err := w.writer.Write(data); err != nil {
			return fmt.Errorf("failed to write resource: %w", err)
		}
		w.count++
		return nil
	}

	if w.maxResources > 0 && len(w.resources) >= w.maxResources {
		return fmt.Errorf("%w (%d)", ErrLimitExceeded, w.maxResources)
	}
	w.resources = append(w.resources, data)
	w.count++
	return nil
}

// Count returns the number of resources accepted so far
func (w *Writer) Count() int {
	return w.count
}

// Close finalizes the output (creates bundle if needed) and closes the file
func (w *Writer) Close() error {
	var err error
	if w.format == FormatBundle && len(w.resources) > 0 {
		err = w.writeBundle()
	}

	if w.file != nil {
		return errors.Join(err, w.file.Close())
	}
	return err
}

// writeBundle creates and writes a FHIR Bundle containing all resources
func (w *Writer) writeBundle() error {
	entries := make([]fhir.BundleEntry, 0, len(w.resources))
	for _, resource := range w.resources {
		entries = append(entries, fhir.BundleEntry{Resource: resource})
	}

	total := len(entries)
	bundle := &fhir.Bundle{
		Type:  fhir.BundleTypeCollection,
		Entry: entries,
		Total: &total,
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}

	if _, err := w.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}

	return nil
}

// ParseFormat parses a format string into a Format type
func ParseFormat(s string) (Format, error) {
	switch s {
	case "ndjson", "":
		return FormatNDJSON, nil
	case "bundle":
		return FormatBundle, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: ndjson, bundle)", s)
	}
}

// Extension returns the file extension used for the format
func (f Format) Extension() string {
	if f == FormatBundle {
		return ".json"
	}
	return ".ndjson"
}
