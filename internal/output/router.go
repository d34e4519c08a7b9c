package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// Router writes each resource type to its own file in a directory, e.g.
// Patient.ndjson. It is not safe for concurrent use.
type Router struct {
	dir          string
	format       Format
	maxResources int
	writers      map[fhir.ResourceType]*Writer
}

// NewRouter creates dir if needed and returns a router writing into it
func NewRouter(dir string, format Format, maxResources int) (*Router, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Router{
		dir:          dir,
		format:       format,
		maxResources: maxResources,
		writers:      make(map[fhir.ResourceType]*Writer),
	}, nil
}

// Route writes resource to the file for rt, creating the file on first use
func (r *Router) Route(rt fhir.ResourceType, resource any) error {
	w, ok := r.writers[rt]
	if !ok {
		var err error
		w, err = NewWriterWithLimit(r.Path(rt), r.format, r.maxResources)
		if err != nil {
			return err
		}
		r.writers[rt] = w
	}
	if err := w.Write(resource); err != nil {
		return fmt.Errorf("%s: %w", rt.Code(), err)
	}
	return nil
}

// Path returns the output file for rt
func (r *Router) Path(rt fhir.ResourceType) string {
	return filepath.Join(r.dir, rt.Code()+r.format.Extension())
}

// Counts returns the number of resources routed per resource type name
func (r *Router) Counts() map[string]int {
	counts := make(map[string]int, len(r.writers))
	for rt, w := range r.writers {
		counts[rt.Code()] = w.Count()
	}
	return counts
}

// Types returns the names of the resource types routed so far, sorted
func (r *Router) Types() []string {
	names := make([]string, 0, len(r.writers))
	for rt := range r.writers {
		names = append(names, rt.Code())
	}
	sort.Strings(names)
	return names
}

// Close closes every open writer and reports all failures
func (r *Router) Close() error {
	var errs []error
	for rt, w := range r.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rt.Code(), err))
		}
	}
	return errors.Join(errs...)
}
