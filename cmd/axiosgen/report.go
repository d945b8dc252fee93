package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/osakka/axiosgen/pkg/generator"
	"github.com/osakka/axiosgen/pkg/openapi"
	"github.com/osakka/axiosgen/pkg/writer"
)

// reporter prints human readable summaries. Logs go to stderr, reports to stdout.
type reporter struct {
	out   io.Writer
	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
	title *color.Color
}

func newReporter(out io.Writer) *reporter {
	return &reporter{
		out:   out,
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed),
		title: color.New(color.Bold),
	}
}

func (r *reporter) success(msg string) {
	r.ok.Fprintln(r.out, msg)
}

func (r *reporter) listening(addr string) {
	r.ok.Fprintf(r.out, "Listening on http://%s\n", addr)
}

// parse mirrors what the loader learned about the document
func (r *reporter) parse(result *openapi.ParseResult) {
	meta := result.Metadata

	r.title.Fprintln(r.out, "Parsed document:")
	fmt.Fprintf(r.out, "   Source: %s\n", meta.Source)
	if result.Spec != nil {
		fmt.Fprintf(r.out, "   Title: %s\n", meta.Title)
		fmt.Fprintf(r.out, "   Version: %s\n", meta.Version)
	}
	fmt.Fprintf(r.out, "   Format: %s\n", meta.Format)
	fmt.Fprintf(r.out, "   Size: %d bytes\n", meta.Size)
	if result.Spec != nil {
		fmt.Fprintf(r.out, "   Paths: %d\n", meta.PathCount)
		fmt.Fprintf(r.out, "   Schemas: %d\n", meta.SchemaCount)
		fmt.Fprintf(r.out, "   Parse time: %v\n", meta.ParseDuration.Round(time.Microsecond))
	}
	if meta.CacheHit {
		fmt.Fprintln(r.out, "   Served from cache")
	}

	if len(result.Errors) > 0 {
		r.fail.Fprintf(r.out, "\nValidation errors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(r.out, "   - %s: %s (%s)\n", e.Path, e.Message, e.Code)
		}
	}
	if len(result.Warnings) > 0 {
		r.warn.Fprintf(r.out, "\nValidation warnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Fprintf(r.out, "   - %s: %s (%s)\n", w.Path, w.Message, w.Code)
		}
	}

	switch {
	case result.Spec == nil:
		r.fail.Fprintln(r.out, "\nDocument could not be decoded")
	case result.Valid:
		r.ok.Fprintln(r.out, "\nDocument is valid")
	default:
		r.warn.Fprintln(r.out, "\nDocument has validation errors but can be generated")
	}
}

func (r *reporter) generation(result *generator.Result) {
	r.title.Fprintf(r.out, "Generated %s %s\n", result.Title, result.Version)
	fmt.Fprintf(r.out, "   Services: %d\n", result.Services)
	fmt.Fprintf(r.out, "   Requests: %d\n", result.Requests)
	fmt.Fprintf(r.out, "   Models: %d\n", result.Models)
	fmt.Fprintf(r.out, "   Enums: %d\n", result.Enums)

	if len(result.Written) > 0 {
		fmt.Fprintln(r.out, "\nFiles:")
		for _, path := range result.Written {
			fmt.Fprintf(r.out, "   - %s\n", path)
		}
	}

	if n := len(result.Errors); n > 0 {
		r.warn.Fprintf(r.out, "\n%d validation errors were ignored, run validate for details\n", n)
	}
	r.ok.Fprintf(r.out, "\nCode generation completed in %v\n", result.Duration.Round(time.Millisecond))
}

// files prints rendered files one after another, each under a header line
func (r *reporter) files(files []writer.File) {
	for i, f := range files {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		r.title.Fprintf(r.out, "// ==== %s ====\n", f.Name)
		fmt.Fprint(r.out, f.Content)
	}
}
