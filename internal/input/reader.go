package input

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"

	"fhirroute/internal/resource"
)

// Format is the layout of the input stream
type Format string

const (
	FormatAuto   Format = "auto"
	FormatNDJSON Format = "ndjson"
	FormatBundle Format = "bundle"
)

// maxLineSize bounds a single NDJSON record
const maxLineSize = 16 * 1024 * 1024

// Record is one raw JSON resource from the input
type Record struct {
	Raw    json.RawMessage
	Number int // NDJSON line number or 1-based Bundle entry index
}

// Reader streams records from an NDJSON file or a Bundle document
type Reader struct {
	file    *os.File
	format  Format
	scanner *bufio.Scanner
	entries []fhir.BundleEntry
	number  int
}

// ParseFormat parses an input format string
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatAuto, "":
		return FormatAuto, nil
	case FormatNDJSON:
		return FormatNDJSON, nil
	case FormatBundle:
		return FormatBundle, nil
	default:
		return "", fmt.Errorf("unsupported input format: %s (supported: auto, ndjson, bundle)", s)
	}
}

// DetectFormat picks NDJSON for .ndjson and .jsonl files and Bundle otherwise
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	default:
		return FormatBundle
	}
}

// Open opens path ("-" for stdin) for reading
func Open(path string, format Format) (*Reader, error) {
	if format == FormatAuto || format == "" {
		format = DetectFormat(path)
	}

	if path == "-" {
		return NewReader(os.Stdin, format)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	r, err := NewReader(file, format)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.file = file
	return r, nil
}

// NewReader reads records from src. Bundle input is decoded up front.
func NewReader(src io.Reader, format Format) (*Reader, error) {
	r := &Reader{format: format}

	switch format {
	case FormatNDJSON:
		r.scanner = bufio.NewScanner(src)
		r.scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	case FormatBundle:
		entries, err := readBundle(src)
		if err != nil {
			return nil, err
		}
		r.entries = entries
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}

	return r, nil
}

// Format returns the resolved input format
func (r *Reader) Format() Format {
	return r.format
}

// Read returns the next record, or io.EOF when the input is exhausted
func (r *Reader) Read() (*Record, error) {
	if r.format == FormatBundle {
		for len(r.entries) > 0 {
			entry := r.entries[0]
			r.entries = r.entries[1:]
			r.number++
			// Entries carrying only a request or response have nothing to route
			if len(entry.Resource) == 0 {
				continue
			}
			return &Record{Raw: entry.Resource, Number: r.number}, nil
		}
		return nil, io.EOF
	}

	for r.scanner.Scan() {
		r.number++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		// The scanner reuses its buffer between calls
		raw := make([]byte, len(line))
		copy(raw, line)
		return &Record{Raw: raw, Number: r.number}, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", r.number+1, err)
	}
	return nil, io.EOF
}

// ReadAll reads all remaining records (use with caution on large files)
func (r *Reader) ReadAll() ([]*Record, error) {
	records := []*Record{}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// Close closes the underlying file
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// readBundle decodes a Bundle document and returns its entries
func readBundle(src io.Reader) ([]fhir.BundleEntry, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	var envelope struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	if resource.StripNamespace(envelope.ResourceType) != "Bundle" {
		return nil, fmt.Errorf("input is not a Bundle (resourceType %q)", envelope.ResourceType)
	}

	var bundle fhir.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	return bundle.Entry, nil
}
