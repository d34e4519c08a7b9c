package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"
	"github.com/spf13/pflag"

	"fhirroute/internal/config"
	"fhirroute/internal/input"
	"fhirroute/internal/logging"
	"fhirroute/internal/output"
	"fhirroute/internal/resource"
	"fhirroute/internal/validation"
)

// options are the resolved command-line settings
type options struct {
	inputPath   string
	outputDir   string
	inputFormat input.Format
	format      output.Format
	workers     int
	route       *config.RouteConfig
}

// Summary reports what a run did
type Summary struct {
	Records          int
	Routed           map[string]int
	Filtered         int
	Unknown          int
	Errors           int
	ValidationIssues int
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if _, err := run(opts); err != nil {
		logging.Default().Error().Err(err).Msg("Routing failed")
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, error) {
	flags := pflag.NewFlagSet("fhirroute", pflag.ContinueOnError)

	inputPath := flags.StringP("input", "i", "", "Input file: Bundle JSON or NDJSON, - for stdin (required)")
	outputDir := flags.StringP("output-dir", "o", "", "Directory for per-resource-type output files (required)")
	configPath := flags.StringP("config", "c", "", "YAML route configuration file")
	formatStr := flags.StringP("format", "f", "", "Output format: ndjson or bundle")
	inputFormatStr := flags.String("input-format", "auto", "Input format: auto, ndjson or bundle")
	include := flags.StringSlice("include", nil, "Resource types to route (default: all)")
	exclude := flags.StringSlice("exclude", nil, "Resource types to drop")
	unknown := flags.String("unknown", "", "Unknown resource types: skip or fail")
	maxResources := flags.Int("max-resources", 0, "Maximum resources per bundle file (default: 10000)")
	validate := flags.Bool("validate", false, "Enable FHIR validation")
	validationLevel := flags.String("validation-level", "", "Validation level: error (drop invalid records) or warn (log only)")
	workers := flags.IntP("workers", "w", 4, "Number of decode workers (output keeps input order)")
	logLevel := flags.String("log-level", "info", "Log level: trace, debug, info, warn, error or off")
	logFormat := flags.String("log-format", "auto", "Log format: auto, console or json")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := logging.Configure(*logLevel, *logFormat); err != nil {
		return nil, err
	}

	if *inputPath == "" {
		flags.PrintDefaults()
		return nil, fmt.Errorf("--input/-i flag is required")
	}
	if *outputDir == "" {
		flags.PrintDefaults()
		return nil, fmt.Errorf("--output-dir/-o flag is required")
	}
	if *workers < 1 {
		return nil, fmt.Errorf("--workers must be at least 1")
	}

	route := config.DefaultRoute()
	if *configPath != "" {
		var err error
		route, err = config.LoadRoute(*configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load route config: %w", err)
		}
	}

	// Flags override the route file
	if flags.Changed("format") {
		route.Format = *formatStr
	}
	if flags.Changed("include") {
		route.Include = *include
	}
	if flags.Changed("exclude") {
		route.Exclude = *exclude
	}
	if flags.Changed("unknown") {
		route.Unknown = *unknown
	}
	if flags.Changed("max-resources") {
		route.MaxResources = *maxResources
	}
	if flags.Changed("validate") {
		route.Validate = *validate
	}
	if flags.Changed("validation-level") {
		route.ValidationLevel = *validationLevel
	}
	if err := route.Resolve(); err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(route.Format)
	if err != nil {
		return nil, err
	}
	inputFormat, err := input.ParseFormat(*inputFormatStr)
	if err != nil {
		return nil, err
	}

	return &options{
		inputPath:   *inputPath,
		outputDir:   *outputDir,
		inputFormat: inputFormat,
		format:      format,
		workers:     *workers,
		route:       route,
	}, nil
}

func run(opts *options) (*Summary, error) {
	log := logging.Default()

	reader, err := input.Open(opts.inputPath, opts.inputFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer reader.Close()

	router, err := output.NewRouter(opts.outputDir, opts.format, opts.route.MaxResources)
	if err != nil {
		return nil, err
	}

	var validator validation.Validator
	if opts.route.Validate {
		validator = validation.NewDefaultValidator()
	}

	log.Info().
		Str("input", opts.inputPath).
		Str("input_format", string(reader.Format())).
		Str("output_dir", opts.outputDir).
		Str("format", string(opts.format)).
		Bool("validate", validator != nil).
		Int("workers", opts.workers).
		Msg("Routing resources")

	type job struct {
		seq    int
		record *input.Record
	}

	type result struct {
		seq              int
		resource         any
		resourceType     fhir.ResourceType
		validationErrors []validation.ValidationError
		err              error
		number           int
	}

	jobs := make(chan job, opts.workers*4)
	results := make(chan result, opts.workers*4)
	// Closed by the consumer to stop the producer after a fatal record
	stop := make(chan struct{})
	// Bounds how far decoding may run ahead of the oldest unwritten record
	window := make(chan struct{}, opts.workers*16)

	var wg sync.WaitGroup
	for i := 0; i < opts.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := result{seq: j.seq, number: j.record.Number}
				res.resource, res.resourceType, res.err = resource.Decode(j.record.Raw)
				if res.err == nil && validator != nil && opts.route.Allows(res.resourceType) {
					res.validationErrors = validator.Validate(res.resource)
				}
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := &Summary{}
	var fatal error

	handle := func(res result) {
		summary.Records++

		if res.err != nil {
			if errors.Is(res.err, resource.ErrUnknownResourceType) {
				summary.Unknown++
				if opts.route.Unknown == config.UnknownFail {
					fatal = fmt.Errorf("record %d: %w", res.number, res.err)
					close(stop)
				}
				return
			}
			log.Warn().Int("record", res.number).Err(res.err).Msg("Skipping record")
			summary.Errors++
			return
		}

		if !opts.route.Allows(res.resourceType) {
			summary.Filtered++
			return
		}

		if len(res.validationErrors) > 0 {
			summary.ValidationIssues++
			log.Warn().Msg(validation.FormatErrors(res.validationErrors, res.number))
			if opts.route.ValidationLevel == config.LevelError && validation.HasErrors(res.validationErrors) {
				summary.Errors++
				return
			}
		}

		if err := router.Route(res.resourceType, res.resource); err != nil {
			if errors.Is(err, output.ErrLimitExceeded) {
				fatal = fmt.Errorf("record %d: %w", res.number, err)
				close(stop)
				return
			}
			log.Error().Int("record", res.number).Err(err).Msg("Error writing resource")
			summary.Errors++
			return
		}

		if summary.Records%1000 == 0 {
			log.Info().Int("records", summary.Records).Msg("Progress")
		}
	}

	// Consumer: the router is only touched from this goroutine. Results are
	// handled in input order so output files keep the order of the input.
	done := make(chan struct{})
	go func() {
		defer close(done)
		pending := make(map[int]result)
		next := 0
		for res := range results {
			pending[res.seq] = res
			for {
				r, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if fatal == nil {
					handle(r)
				}
				<-window
			}
		}
	}()

	var readErr error
	seq := 0
produce:
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("failed to read input: %w", err)
			break
		}

		select {
		case window <- struct{}{}:
		case <-stop:
			break produce
		}
		select {
		case jobs <- job{seq: seq, record: rec}:
			seq++
		case <-stop:
			<-window
			break produce
		}
	}
	close(jobs)
	<-done

	summary.Routed = router.Counts()
	closeErr := router.Close()

	if err := errors.Join(fatal, readErr, closeErr); err != nil {
		return summary, err
	}

	logSummary(summary)
	return summary, nil
}

func logSummary(s *Summary) {
	names := make([]string, 0, len(s.Routed))
	for name := range s.Routed {
		names = append(names, name)
	}
	sort.Strings(names)

	event := logging.Default().Info().
		Int("records", s.Records).
		Int("filtered", s.Filtered).
		Int("unknown", s.Unknown).
		Int("errors", s.Errors).
		Int("validation_issues", s.ValidationIssues)
	for _, name := range names {
		event = event.Int(name, s.Routed[name])
	}
	event.Msg("Completed")
}
