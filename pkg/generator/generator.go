// Package generator ties loading, code building, rendering and writing
// together into one generation run.
package generator

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/osakka/axiosgen/pkg/codegen"
	"github.com/osakka/axiosgen/pkg/config"
	cgerrors "github.com/osakka/axiosgen/pkg/errors"
	"github.com/osakka/axiosgen/pkg/logging"
	"github.com/osakka/axiosgen/pkg/metrics"
	"github.com/osakka/axiosgen/pkg/openapi"
	"github.com/osakka/axiosgen/pkg/templates"
	"github.com/osakka/axiosgen/pkg/writer"
)

// Generator runs code generation
type Generator struct {
	logger  logging.Logger
	metrics metrics.Metrics
}

// Result summarizes one generation run
type Result struct {
	Title    string                      `json:"title"`
	Version  string                      `json:"version"`
	IsV3     bool                        `json:"is_v3"`
	Services int                         `json:"services"`
	Requests int                         `json:"requests"`
	Models   int                         `json:"models"`
	Enums    int                         `json:"enums"`
	Files    []writer.File               `json:"files"`
	Written  []string                    `json:"written,omitempty"`
	Warnings []openapi.ValidationWarning `json:"warnings,omitempty"`
	Errors   []openapi.ValidationError   `json:"errors,omitempty"`
	Duration time.Duration               `json:"duration"`
}

// New creates a generator. Nil logger and metrics record nothing.
func New(logger logging.Logger, m metrics.Metrics) *Generator {
	if logger == nil {
		logger = logging.NewNoOp()
	}
	if m == nil {
		m = metrics.NoOp()
	}
	return &Generator{
		logger:  logger.WithComponent("generator"),
		metrics: m.WithPrefix("codegen"),
	}
}

// Generate loads the document configured in opts, renders it and writes the
// files to the output directory
func (g *Generator) Generate(ctx context.Context, opts *config.Options) (*Result, error) {
	start := time.Now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	parsed, err := g.Load(ctx, opts)
	if err != nil {
		return nil, err
	}

	result, err := g.Render(ctx, parsed.Spec, opts)
	if err != nil {
		return nil, err
	}
	result.Warnings = parsed.Warnings
	result.Errors = parsed.Errors

	w := writer.New(g.logger, g.metrics, writer.NewFormatter(opts))
	written, err := w.Write(ctx, opts.OutputDir, result.Files)
	if err != nil {
		return nil, err
	}
	result.Written = written
	result.Duration = time.Since(start)

	g.logger.Info("code_generation_completed",
		"output_dir", opts.OutputDir,
		"files", len(written),
		"duration", result.Duration)

	return result, nil
}

// Load fetches and decodes the document named by opts: the remote URL, then
// the source file, then the in-memory source
func (g *Generator) Load(ctx context.Context, opts *config.Options) (*openapi.ParseResult, error) {
	if !opts.HasSource() {
		return nil, cgerrors.New(cgerrors.CategoryConfiguration, "load_spec",
			"remote_url, source_file or source must have a value")
	}

	loader := openapi.NewLoader(g.logger, openapi.LoaderConfig{
		HTTPTimeout: opts.Fetch.Timeout,
		MaxFileSize: opts.Fetch.MaxSize,
		CacheDir:    opts.Fetch.CacheDir,
		CacheExpiry: opts.Fetch.CacheExpiry,
	})

	var (
		result *openapi.ParseResult
		err    error
	)
	switch {
	case opts.RemoteURL != "":
		result, err = loader.LoadURL(ctx, opts.RemoteURL)
	case opts.SourceFile != "":
		result, err = loader.LoadFile(ctx, opts.SourceFile)
	default:
		result, err = loader.LoadValue(ctx, opts.Source)
	}
	if err != nil {
		return nil, err
	}

	if result.Spec == nil {
		var problems []string
		for _, e := range result.Errors {
			problems = append(problems, e.Message)
		}
		return result, cgerrors.New(cgerrors.CategoryValidation, "load_spec",
			"cannot decode document: "+strings.Join(problems, "; ")).
			WithContext("source", result.Metadata.Source)
	}

	for _, e := range result.Errors {
		g.logger.Warn("spec_validation_error", "code", e.Code, "path", e.Path, "message", e.Message)
	}
	for _, w := range result.Warnings {
		g.logger.Debug("spec_validation_warning", "code", w.Code, "path", w.Path, "message", w.Message)
	}
	return result, nil
}

// Render builds and renders doc into files without writing them
func (g *Generator) Render(ctx context.Context, doc *openapi.Document, opts *config.Options) (*Result, error) {
	start := time.Now()
	timer := g.metrics.Time("render_duration_ms")
	defer timer.Stop()

	if doc == nil {
		return nil, cgerrors.New(cgerrors.CategoryValidation, "render", "no document to render")
	}

	isV3 := doc.IsV3(opts.OpenAPIVersion)
	g.logger.Info("starting_code_generation",
		"spec_title", doc.Info.Title,
		"spec_version", doc.Info.Version,
		"openapi_v3", isV3,
		"multiple_file_mode", opts.MultipleFileMode)

	builder := codegen.NewBuilder(g.logger, opts)
	services, err := builder.BuildRequests(doc, isV3)
	if err != nil {
		return nil, fmt.Errorf("build requests: %w", err)
	}
	defs, err := builder.BuildDefinitions(doc.Schemas(isV3))
	if err != nil {
		return nil, fmt.Errorf("build definitions: %w", err)
	}
	if len(opts.IncludeTypes) > 0 {
		defs = defs.Filter(codegen.DeepRefs(opts.IncludeTypes, defs))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	extend, err := readExtendFile(opts.ExtendDefinitionFile)
	if err != nil {
		return nil, err
	}

	l := &layout{
		opts:     opts,
		renderer: templates.New(opts),
		resolver: builder.Resolver(),
		basePath: doc.BasePath(),
		extend:   extend,
		services: services,
		defs:     defs,
	}
	var files []writer.File
	if opts.MultipleFileMode {
		files, err = l.multipleFiles()
	} else {
		files, err = l.singleFile()
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Title:    doc.Info.Title,
		Version:  doc.Info.Version,
		IsV3:     isV3,
		Services: len(services),
		Models:   len(defs.Models),
		Enums:    len(defs.Enums),
		Files:    files,
		Duration: time.Since(start),
	}
	for _, svc := range services {
		result.Requests += len(svc.Requests)
	}

	g.recordMetrics(result)
	g.logger.Debug("code_rendered",
		"services", result.Services,
		"requests", result.Requests,
		"models", result.Models,
		"enums", result.Enums,
		"files", len(files))

	return result, nil
}

func readExtendFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", cgerrors.Wrap(err, cgerrors.CategoryIO, "read_extend_definition_file", "cannot read "+path)
	}
	return string(data), nil
}

func (g *Generator) recordMetrics(r *Result) {
	g.metrics.Set("services_generated", float64(r.Services))
	g.metrics.Set("requests_generated", float64(r.Requests))
	g.metrics.Set("models_generated", float64(r.Models))
	g.metrics.Set("enums_generated", float64(r.Enums))
	g.metrics.Inc("runs_total")
}
