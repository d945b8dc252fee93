package writer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/osakka/axiosgen/pkg/config"
	cgerrors "github.com/osakka/axiosgen/pkg/errors"
)

// Formatter rewrites generated source before it is written
type Formatter interface {
	Format(ctx context.Context, name string, src []byte) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface
type FormatterFunc func(ctx context.Context, name string, src []byte) ([]byte, error)

func (f FormatterFunc) Format(ctx context.Context, name string, src []byte) ([]byte, error) {
	return f(ctx, name, src)
}

// NopFormatter returns the source unchanged
type NopFormatter struct{}

func (NopFormatter) Format(_ context.Context, _ string, src []byte) ([]byte, error) {
	return src, nil
}

// BasicFormatter strips trailing whitespace, collapses runs of blank lines
// and ends the file with a single newline
type BasicFormatter struct{}

func (BasicFormatter) Format(_ context.Context, _ string, src []byte) ([]byte, error) {
	lines := strings.Split(string(src), "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	text := strings.TrimRight(strings.Join(out, "\n"), "\n")
	if text == "" {
		return []byte{}, nil
	}
	return []byte(text + "\n"), nil
}

// CommandFormatter pipes the source through an external command such as
// prettier. Arguments may contain {file}, replaced by the output file name.
type CommandFormatter struct {
	Command []string
}

func (f CommandFormatter) Format(ctx context.Context, name string, src []byte) ([]byte, error) {
	if len(f.Command) == 0 {
		return nil, cgerrors.New(cgerrors.CategoryConfiguration, "format_command", "no formatter command configured")
	}

	args := make([]string, len(f.Command)-1)
	for i, arg := range f.Command[1:] {
		args[i] = strings.ReplaceAll(arg, "{file}", name)
	}

	cmd := exec.CommandContext(ctx, f.Command[0], args...)
	cmd.Stdin = bytes.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, cgerrors.Wrap(err, cgerrors.CategoryIO, "format_command",
			fmt.Sprintf("%s failed: %s", f.Command[0], strings.TrimSpace(stderr.String())))
	}
	return stdout.Bytes(), nil
}

// NewFormatter returns the formatter selected by opts
func NewFormatter(opts *config.Options) Formatter {
	switch opts.Formatter {
	case config.FormatterNone:
		return NopFormatter{}
	case config.FormatterCommand:
		return CommandFormatter{Command: opts.FormatCommand}
	default:
		return BasicFormatter{}
	}
}
