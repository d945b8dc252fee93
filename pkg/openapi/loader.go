package openapi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ghodss/yaml"

	cgerrors "github.com/osakka/axiosgen/pkg/errors"
	"github.com/osakka/axiosgen/pkg/logging"
)

// Document formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Loader fetches, decodes and validates API descriptions
type Loader struct {
	logger logging.Logger
	config LoaderConfig
	client *http.Client
}

// LoaderConfig configures document loading
type LoaderConfig struct {
	// Network settings for remote documents
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	MaxFileSize    int64         `yaml:"max_file_size"`
	AllowedSchemes []string      `yaml:"allowed_schemes"`

	// Caching of remote documents, disabled when CacheDir is empty
	CacheDir    string        `yaml:"cache_dir"`
	CacheExpiry time.Duration `yaml:"cache_expiry"`

	// Skip the kin-openapi validation pass
	SkipSchemaValidation bool `yaml:"skip_schema_validation"`
}

// ParseResult contains the result of loading a document
type ParseResult struct {
	Spec     *Document           `json:"-"`
	Valid    bool                `json:"valid"`
	Errors   []ValidationError   `json:"errors,omitempty"`
	Warnings []ValidationWarning `json:"warnings,omitempty"`
	Metadata ParseMetadata       `json:"metadata"`

	raw []byte
}

// ParseMetadata contains metadata about the loading process
type ParseMetadata struct {
	Source         string        `json:"source"`
	Format         string        `json:"format"`
	Size           int64         `json:"size"`
	Version        string        `json:"version,omitempty"`
	Title          string        `json:"title,omitempty"`
	PathCount      int           `json:"path_count"`
	SchemaCount    int           `json:"schema_count"`
	ParseDuration  time.Duration `json:"parse_duration"`
	ValidationTime time.Duration `json:"validation_time"`
	CacheHit       bool          `json:"cache_hit"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationWarning represents a validation warning
type ValidationWarning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// DefaultLoaderConfig returns the default loader configuration
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		HTTPTimeout:    30 * time.Second,
		MaxFileSize:    20 * 1024 * 1024,
		AllowedSchemes: []string{"http", "https"},
		CacheExpiry:    time.Hour,
	}
}

// NewLoader creates a new document loader. Zero config fields take their defaults.
func NewLoader(logger logging.Logger, config LoaderConfig) *Loader {
	if logger == nil {
		logger = logging.NewNoOp()
	}

	defaults := DefaultLoaderConfig()
	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = defaults.HTTPTimeout
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = defaults.MaxFileSize
	}
	if len(config.AllowedSchemes) == 0 {
		config.AllowedSchemes = defaults.AllowedSchemes
	}
	if config.CacheExpiry <= 0 {
		config.CacheExpiry = defaults.CacheExpiry
	}

	return &Loader{
		logger: logger.WithComponent("openapi_loader"),
		config: config,
		client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

// LoadFile loads a document from a local JSON or YAML file
func (l *Loader) LoadFile(ctx context.Context, filePath string) (*ParseResult, error) {
	l.logger.Info("loading_spec_file", "file_path", filePath)

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, cgerrors.Wrap(err, cgerrors.CategoryIO, "load_spec_file", "cannot stat "+filePath)
	}
	if info.Size() > l.config.MaxFileSize {
		return nil, cgerrors.New(cgerrors.CategoryValidation, "load_spec_file",
			fmt.Sprintf("file size %d exceeds maximum %d", info.Size(), l.config.MaxFileSize))
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, cgerrors.Wrap(err, cgerrors.CategoryIO, "load_spec_file", "cannot read "+filePath)
	}

	return l.load(ctx, content, detectFormat(filePath, content), filePath)
}

// LoadURL fetches a document over http or https
func (l *Loader) LoadURL(ctx context.Context, specURL string) (*ParseResult, error) {
	l.logger.Info("loading_spec_url", "url", specURL)

	parsedURL, err := url.Parse(specURL)
	if err != nil {
		return nil, cgerrors.Wrap(err, cgerrors.CategoryConfiguration, "load_spec_url", "invalid URL")
	}
	if !l.isAllowedScheme(parsedURL.Scheme) {
		return nil, cgerrors.New(cgerrors.CategoryConfiguration, "load_spec_url",
			fmt.Sprintf("scheme %q not allowed", parsedURL.Scheme))
	}

	if content, format, ok := l.getCached(specURL); ok {
		l.logger.Info("spec_cache_hit", "url", specURL)
		result, err := l.load(ctx, content, format, specURL)
		if err == nil {
			result.Metadata.CacheHit = true
		}
		return result, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, specURL, nil)
	if err != nil {
		return nil, cgerrors.Wrap(err, cgerrors.CategoryNetwork, "load_spec_url", "cannot create request")
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/yaml")
	req.Header.Set("User-Agent", "axiosgen")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, cgerrors.Wrap(err, cgerrors.CategoryNetwork, "load_spec_url", "fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, cgerrors.New(cgerrors.CategoryNetwork, "load_spec_url",
			fmt.Sprintf("unexpected status %s", resp.Status)).WithContext("url", specURL)
	}
	if resp.ContentLength > l.config.MaxFileSize {
		return nil, cgerrors.New(cgerrors.CategoryValidation, "load_spec_url",
			fmt.Sprintf("content length %d exceeds maximum %d", resp.ContentLength, l.config.MaxFileSize))
	}

	// Read one byte past the limit so oversized bodies without a length are caught
	content, err := io.ReadAll(io.LimitReader(resp.Body, l.config.MaxFileSize+1))
	if err != nil {
		return nil, cgerrors.Wrap(err, cgerrors.CategoryNetwork, "load_spec_url", "cannot read response")
	}
	if int64(len(content)) > l.config.MaxFileSize {
		return nil, cgerrors.New(cgerrors.CategoryValidation, "load_spec_url",
			fmt.Sprintf("response exceeds maximum size %d", l.config.MaxFileSize))
	}

	format := detectFormatFromResponse(resp, specURL, content)
	result, err := l.load(ctx, content, format, specURL)
	if err != nil {
		return nil, err
	}

	if result.Spec != nil {
		if err := l.putCached(specURL, content, format); err != nil {
			l.logger.Warn("spec_cache_write_failed", "url", specURL, "error", err)
		}
	}
	return result, nil
}

// LoadBytes decodes a document held in memory. An empty format is detected from the content.
func (l *Loader) LoadBytes(ctx context.Context, content []byte, format string) (*ParseResult, error) {
	if format == "" {
		format = detectFormat("", content)
	}
	return l.load(ctx, content, format, "bytes")
}

// LoadValue accepts an already decoded document, such as a map or a struct
func (l *Loader) LoadValue(ctx context.Context, v interface{}) (*ParseResult, error) {
	switch doc := v.(type) {
	case *Document:
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, cgerrors.Wrap(err, cgerrors.CategoryValidation, "load_spec_value", "cannot encode document")
		}
		return l.load(ctx, data, FormatJSON, "value")
	case []byte:
		return l.LoadBytes(ctx, doc, "")
	case string:
		return l.LoadBytes(ctx, []byte(doc), "")
	case json.RawMessage:
		return l.load(ctx, doc, FormatJSON, "value")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, cgerrors.Wrap(err, cgerrors.CategoryValidation, "load_spec_value", "value is not JSON encodable")
	}
	return l.load(ctx, data, FormatJSON, "value")
}

// load decodes content and validates it. Decode failures are reported in the
// result with code PARSE_ERROR rather than as an error.
func (l *Loader) load(ctx context.Context, content []byte, format, source string) (*ParseResult, error) {
	start := time.Now()

	result := &ParseResult{
		Metadata: ParseMetadata{
			Source: source,
			Format: format,
			Size:   int64(len(content)),
		},
	}

	data, spec, err := parseContent(content, format)
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "root",
			Message: err.Error(),
			Code:    "PARSE_ERROR",
		})
		result.Valid = false
		l.logger.Warn("spec_parse_failed", "source", source, "format", format, "error", err)
		return result, nil
	}

	result.Spec = spec
	result.raw = data
	result.Metadata.ParseDuration = time.Since(start)
	result.Metadata.Version = spec.OpenAPI
	if result.Metadata.Version == "" {
		result.Metadata.Version = spec.Swagger
	}
	result.Metadata.Title = spec.Info.Title
	result.Metadata.PathCount = spec.Paths.Len()
	result.Metadata.SchemaCount = spec.Schemas(spec.IsV3("")).Len()

	if err := l.Validate(ctx, result); err != nil {
		return nil, err
	}

	l.logger.Info("spec_loaded",
		"source", source,
		"format", format,
		"version", result.Metadata.Version,
		"valid", result.Valid,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
		"parse_duration", result.Metadata.ParseDuration)

	return result, nil
}

// parseContent converts YAML to JSON and decodes the document. The returned
// JSON is what the schema validation pass reads.
func parseContent(content []byte, format string) ([]byte, *Document, error) {
	data := content
	switch format {
	case FormatJSON:
	case FormatYAML:
		converted, err := yaml.YAMLToJSON(content)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		data = converted
	default:
		return nil, nil, fmt.Errorf("unsupported format: %s", format)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil, fmt.Errorf("document must be a JSON or YAML object")
	}

	var spec Document
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return data, &spec, nil
}

// detectFormat detects the format from the file extension, then the content
func detectFormat(filePath string, content []byte) string {
	if filePath != "" {
		switch strings.ToLower(filepath.Ext(filePath)) {
		case ".json":
			return FormatJSON
		case ".yaml", ".yml":
			return FormatYAML
		}
	}

	trimmed := bytes.TrimSpace(content)
	if bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("[")) {
		return FormatJSON
	}
	return FormatYAML
}

// detectFormatFromResponse uses the URL extension, then Content-Type, then the content
func detectFormatFromResponse(resp *http.Response, specURL string, content []byte) string {
	if u, err := url.Parse(specURL); err == nil {
		switch strings.ToLower(filepath.Ext(u.Path)) {
		case ".json":
			return FormatJSON
		case ".yaml", ".yml":
			return FormatYAML
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "json") {
		return FormatJSON
	}
	if strings.Contains(contentType, "yaml") || strings.Contains(contentType, "yml") {
		return FormatYAML
	}

	return detectFormat("", content)
}

func (l *Loader) isAllowedScheme(scheme string) bool {
	for _, allowed := range l.config.AllowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// cacheKey hashes the source URL into a file name
func cacheKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

func (l *Loader) cachePath(source, format string) string {
	return filepath.Join(l.config.CacheDir, cacheKey(source)+"."+format)
}

func (l *Loader) getCached(source string) ([]byte, string, bool) {
	if l.config.CacheDir == "" {
		return nil, "", false
	}

	for _, format := range []string{FormatJSON, FormatYAML} {
		path := l.cachePath(source, format)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) > l.config.CacheExpiry {
			l.logger.Debug("spec_cache_expired", "source", source, "cache_path", path)
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return content, format, true
	}
	return nil, "", false
}

func (l *Loader) putCached(source string, content []byte, format string) error {
	if l.config.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.config.CacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := l.cachePath(source, format)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	l.logger.Debug("spec_cached", "source", source, "cache_path", path)
	return nil
}
