package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Logger is the structured logging interface used across axiosgen.
// The first argument is a snake_case operation name, followed by key/value pairs.
type Logger interface {
	Trace(operation string, fields ...interface{})
	Debug(operation string, fields ...interface{})
	Info(operation string, fields ...interface{})
	Warn(operation string, fields ...interface{})
	Error(operation string, fields ...interface{})
	WithComponent(component string) Logger
	With(fields ...interface{}) Logger
}

// Config configures the logger backend
type Config struct {
	Level  string    `yaml:"level"`
	JSON   bool      `yaml:"json"`
	Output io.Writer `yaml:"-"`

	// File, when set, mirrors log output into a rotating log file
	File FileLoggerConfig `yaml:"file"`
}

// hclogLogger implements Logger on top of go-hclog
type hclogLogger struct {
	base hclog.Logger
}

// New creates a logger for the given component
func New(component string, cfg Config) Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	return &hclogLogger{
		base: hclog.New(&hclog.LoggerOptions{
			Name:       component,
			Level:      level,
			Output:     output,
			JSONFormat: cfg.JSON,
		}),
	}
}

func (l *hclogLogger) Trace(operation string, fields ...interface{}) {
	l.base.Trace(operation, normalizeFields(fields)...)
}

func (l *hclogLogger) Debug(operation string, fields ...interface{}) {
	l.base.Debug(operation, normalizeFields(fields)...)
}

func (l *hclogLogger) Info(operation string, fields ...interface{}) {
	l.base.Info(operation, normalizeFields(fields)...)
}

func (l *hclogLogger) Warn(operation string, fields ...interface{}) {
	l.base.Warn(operation, normalizeFields(fields)...)
}

func (l *hclogLogger) Error(operation string, fields ...interface{}) {
	l.base.Error(operation, normalizeFields(fields)...)
}

func (l *hclogLogger) WithComponent(component string) Logger {
	return &hclogLogger{base: l.base.ResetNamed(component)}
}

func (l *hclogLogger) With(fields ...interface{}) Logger {
	return &hclogLogger{base: l.base.With(normalizeFields(fields)...)}
}

// normalizeFields drops a dangling key and stringifies non-string keys so
// hclog never reports EXTRA_VALUE_AT_END.
func normalizeFields(fields []interface{}) []interface{} {
	if len(fields)%2 != 0 {
		fields = fields[:len(fields)-1]
	}
	for i := 0; i < len(fields); i += 2 {
		if _, ok := fields[i].(string); !ok {
			fields[i] = fmt.Sprint(fields[i])
		}
	}
	return fields
}

// ParseLevel reports whether level is a known log level
func ParseLevel(level string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error", "off":
		return normalized, nil
	}
	return "", fmt.Errorf("unknown log level %q", level)
}

// NewNoOp returns a logger that discards everything
func NewNoOp() Logger {
	return noOpLogger{}
}

type noOpLogger struct{}

func (noOpLogger) Trace(string, ...interface{})  {}
func (noOpLogger) Debug(string, ...interface{})  {}
func (noOpLogger) Info(string, ...interface{})   {}
func (noOpLogger) Warn(string, ...interface{})   {}
func (noOpLogger) Error(string, ...interface{})  {}
func (l noOpLogger) WithComponent(string) Logger { return l }
func (l noOpLogger) With(...interface{}) Logger  { return l }
