package config

import (
	"fmt"
	"strings"
	"time"

	cgerrors "github.com/osakka/axiosgen/pkg/errors"
	"github.com/osakka/axiosgen/pkg/logging"
)

// Method naming modes
const (
	MethodNameOperationID = "operationId"
	MethodNamePath        = "path"
)

// Model rendering modes
const (
	ModelModeInterface = "interface"
	ModelModeClass     = "class"
)

// Formatter kinds
const (
	FormatterBasic   = "basic"
	FormatterNone    = "none"
	FormatterCommand = "command"
)

// Config is the top-level configuration file layout
type Config struct {
	Codegen Options        `yaml:"codegen"`
	Log     logging.Config `yaml:"log"`
	Server  ServerConfig   `yaml:"server"`
}

// Options configures one code generation run
type Options struct {
	// Input
	RemoteURL      string      `yaml:"remote_url" json:"remoteUrl"`
	SourceFile     string      `yaml:"source_file" json:"sourceFile"`
	Source         interface{} `yaml:"-" json:"-"`
	OpenAPIVersion string      `yaml:"openapi_version" json:"openApi"`

	// Output
	OutputDir            string   `yaml:"output_dir" json:"outputDir"`
	FileName             string   `yaml:"file_name" json:"fileName"`
	MultipleFileMode     bool     `yaml:"multiple_file_mode" json:"multipleFileMode"`
	SharedServiceOptions bool     `yaml:"shared_service_options" json:"sharedServiceOptions"`
	ExtendDefinitionFile string   `yaml:"extend_definition_file" json:"extendDefinitionFile"`
	Formatter            string   `yaml:"formatter" json:"formatter"`
	FormatCommand        []string `yaml:"format_command" json:"formatCommand"`

	// Naming
	ServiceNameSuffix string `yaml:"service_name_suffix" json:"serviceNameSuffix"`
	EnumNamePrefix    string `yaml:"enum_name_prefix" json:"enumNamePrefix"`
	MethodNameMode    string `yaml:"method_name_mode" json:"methodNameMode"`

	// Requests
	UseStaticMethod            bool     `yaml:"use_static_method" json:"useStaticMethod"`
	UseCustomerRequestInstance bool     `yaml:"use_customer_request_instance" json:"useCustomerRequestInstance"`
	UseHeaderParameters        bool     `yaml:"use_header_parameters" json:"useHeaderParameters"`
	Include                    []string `yaml:"include" json:"include"`
	URLFilters                 []string `yaml:"url_filters" json:"urlFilters"`

	// Models
	ModelMode               string   `yaml:"model_mode" json:"modelMode"`
	StrictNullChecks        bool     `yaml:"strict_null_checks" json:"strictNullChecks"`
	UseClassTransformer     bool     `yaml:"use_class_transformer" json:"useClassTransformer"`
	GenerateValidationModel bool     `yaml:"generate_validation_model" json:"generateValidationModel"`
	IncludeTypes            []string `yaml:"include_types" json:"includeTypes"`
	ExtendGenericType       []string `yaml:"extend_generic_type" json:"extendGenericType"`

	Fetch FetchOptions `yaml:"fetch" json:"-"`
}

// FetchOptions configures loading remote documents
type FetchOptions struct {
	Timeout     time.Duration `yaml:"timeout"`
	MaxSize     int64         `yaml:"max_size"`
	CacheDir    string        `yaml:"cache_dir"`
	CacheExpiry time.Duration `yaml:"cache_expiry"`
}

// ServerConfig configures the HTTP generation mode
type ServerConfig struct {
	Address         string        `yaml:"address"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// Default returns the full default configuration
func Default() Config {
	return Config{
		Codegen: DefaultOptions(),
		Log: logging.Config{
			Level: "info",
		},
		Server: ServerConfig{
			Address:         "127.0.0.1",
			Port:            8085,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    20 * 1024 * 1024,
		},
	}
}

// DefaultOptions returns the default code generation options
func DefaultOptions() Options {
	return Options{
		OutputDir:         "./service",
		FileName:          "index.ts",
		Formatter:         FormatterBasic,
		ServiceNameSuffix: "Service",
		EnumNamePrefix:    "Enum",
		MethodNameMode:    MethodNameOperationID,
		UseStaticMethod:   true,
		ModelMode:         ModelModeInterface,
		StrictNullChecks:  true,
		Include:           []string{},
		IncludeTypes:      []string{},
		ExtendGenericType: []string{},
		URLFilters:        []string{},
		Fetch: FetchOptions{
			Timeout:     30 * time.Second,
			MaxSize:     20 * 1024 * 1024,
			CacheExpiry: time.Hour,
		},
	}
}

// Validate implements Validator
func (c *Config) Validate() error {
	if err := c.Codegen.Validate(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return cgerrors.Wrap(err, cgerrors.CategoryConfiguration, "validate_config", "invalid log level")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return cgerrors.New(cgerrors.CategoryConfiguration, "validate_config",
			fmt.Sprintf("server port %d out of range", c.Server.Port))
	}
	return nil
}

// Validate checks option values that the generator cannot recover from
func (o *Options) Validate() error {
	var problems []string

	switch o.MethodNameMode {
	case MethodNameOperationID, MethodNamePath:
	default:
		problems = append(problems, fmt.Sprintf("method_name_mode must be %q or %q, got %q",
			MethodNameOperationID, MethodNamePath, o.MethodNameMode))
	}

	switch o.ModelMode {
	case ModelModeInterface, ModelModeClass:
	default:
		problems = append(problems, fmt.Sprintf("model_mode must be %q or %q, got %q",
			ModelModeInterface, ModelModeClass, o.ModelMode))
	}

	switch o.Formatter {
	case FormatterBasic, FormatterNone:
	case FormatterCommand:
		if len(o.FormatCommand) == 0 {
			problems = append(problems, "formatter \"command\" requires format_command")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown formatter %q", o.Formatter))
	}

	if o.OutputDir == "" {
		problems = append(problems, "output_dir cannot be empty")
	}
	if !o.MultipleFileMode && o.FileName == "" {
		problems = append(problems, "file_name cannot be empty in single file mode")
	}
	if o.RemoteURL != "" && o.SourceFile != "" {
		problems = append(problems, "remote_url and source_file are mutually exclusive")
	}
	if o.Fetch.Timeout < 0 || o.Fetch.MaxSize < 0 {
		problems = append(problems, "fetch timeout and max_size cannot be negative")
	}

	if len(problems) > 0 {
		return cgerrors.New(cgerrors.CategoryConfiguration, "validate_options", strings.Join(problems, "; "))
	}
	return nil
}

// HasSource reports whether any input was configured
func (o *Options) HasSource() bool {
	return o.RemoteURL != "" || o.SourceFile != "" || o.Source != nil
}
