package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AXIOSGEN_OUTPUT_DIR
const EnvPrefix = "AXIOSGEN"

type override struct {
	key   string
	apply func(v *viper.Viper, key string, c *Config)
}

func stringOverride(set func(c *Config, s string)) func(*viper.Viper, string, *Config) {
	return func(v *viper.Viper, key string, c *Config) { set(c, v.GetString(key)) }
}

func boolOverride(set func(c *Config, b bool)) func(*viper.Viper, string, *Config) {
	return func(v *viper.Viper, key string, c *Config) { set(c, v.GetBool(key)) }
}

func sliceOverride(set func(c *Config, s []string)) func(*viper.Viper, string, *Config) {
	return func(v *viper.Viper, key string, c *Config) { set(c, v.GetStringSlice(key)) }
}

var overrides = []override{
	{"remote-url", stringOverride(func(c *Config, s string) { c.Codegen.RemoteURL = s })},
	{"source-file", stringOverride(func(c *Config, s string) { c.Codegen.SourceFile = s })},
	{"openapi-version", stringOverride(func(c *Config, s string) { c.Codegen.OpenAPIVersion = s })},
	{"output-dir", stringOverride(func(c *Config, s string) { c.Codegen.OutputDir = s })},
	{"file-name", stringOverride(func(c *Config, s string) { c.Codegen.FileName = s })},
	{"multiple-file-mode", boolOverride(func(c *Config, b bool) { c.Codegen.MultipleFileMode = b })},
	{"shared-service-options", boolOverride(func(c *Config, b bool) { c.Codegen.SharedServiceOptions = b })},
	{"extend-definition-file", stringOverride(func(c *Config, s string) { c.Codegen.ExtendDefinitionFile = s })},
	{"formatter", stringOverride(func(c *Config, s string) { c.Codegen.Formatter = s })},
	{"format-command", sliceOverride(func(c *Config, s []string) { c.Codegen.FormatCommand = s })},
	{"service-name-suffix", stringOverride(func(c *Config, s string) { c.Codegen.ServiceNameSuffix = s })},
	{"enum-name-prefix", stringOverride(func(c *Config, s string) { c.Codegen.EnumNamePrefix = s })},
	{"method-name-mode", stringOverride(func(c *Config, s string) { c.Codegen.MethodNameMode = s })},
	{"use-static-method", boolOverride(func(c *Config, b bool) { c.Codegen.UseStaticMethod = b })},
	{"use-customer-request-instance", boolOverride(func(c *Config, b bool) { c.Codegen.UseCustomerRequestInstance = b })},
	{"use-header-parameters", boolOverride(func(c *Config, b bool) { c.Codegen.UseHeaderParameters = b })},
	{"include", sliceOverride(func(c *Config, s []string) { c.Codegen.Include = s })},
	{"url-filters", sliceOverride(func(c *Config, s []string) { c.Codegen.URLFilters = s })},
	{"model-mode", stringOverride(func(c *Config, s string) { c.Codegen.ModelMode = s })},
	{"strict-null-checks", boolOverride(func(c *Config, b bool) { c.Codegen.StrictNullChecks = b })},
	{"use-class-transformer", boolOverride(func(c *Config, b bool) { c.Codegen.UseClassTransformer = b })},
	{"generate-validation-model", boolOverride(func(c *Config, b bool) { c.Codegen.GenerateValidationModel = b })},
	{"include-types", sliceOverride(func(c *Config, s []string) { c.Codegen.IncludeTypes = s })},
	{"extend-generic-type", sliceOverride(func(c *Config, s []string) { c.Codegen.ExtendGenericType = s })},
	{"fetch-timeout", func(v *viper.Viper, key string, c *Config) { c.Codegen.Fetch.Timeout = v.GetDuration(key) }},
	{"max-spec-size", func(v *viper.Viper, key string, c *Config) { c.Codegen.Fetch.MaxSize = v.GetInt64(key) }},
	{"cache-dir", stringOverride(func(c *Config, s string) { c.Codegen.Fetch.CacheDir = s })},
	{"cache-expiry", func(v *viper.Viper, key string, c *Config) { c.Codegen.Fetch.CacheExpiry = v.GetDuration(key) }},
	{"log-level", stringOverride(func(c *Config, s string) { c.Log.Level = s })},
	{"log-json", boolOverride(func(c *Config, b bool) { c.Log.JSON = b })},
	{"log-file", stringOverride(func(c *Config, s string) { c.Log.File.FilePath = s })},
	{"address", stringOverride(func(c *Config, s string) { c.Server.Address = s })},
	{"port", func(v *viper.Viper, key string, c *Config) { c.Server.Port = v.GetInt(key) }},
}

// NewViper returns a viper instance reading AXIOSGEN_* environment variables
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every known override flag present in fs
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, o := range overrides {
		if f := fs.Lookup(o.key); f != nil {
			if err := v.BindPFlag(o.key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyOverrides copies every explicitly set flag or environment variable
// into cfg. Values left at their flag default do not override the file.
func ApplyOverrides(v *viper.Viper, cfg *Config) []string {
	var applied []string
	for _, o := range overrides {
		if v.IsSet(o.key) {
			o.apply(v, o.key, cfg)
			applied = append(applied, o.key)
		}
	}
	return applied
}

// LoadDotEnv loads .env style files into the process environment without
// replacing variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// RegisterCodegenFlags adds the code generation flags to fs
func RegisterCodegenFlags(fs *pflag.FlagSet) {
	d := DefaultOptions()

	fs.String("remote-url", "", "URL of the OpenAPI/Swagger document")
	fs.String("source-file", "", "path of a local OpenAPI/Swagger document (JSON or YAML)")
	fs.String("openapi-version", "", "force the document version (2.0 or 3.0)")
	fs.StringP("output-dir", "o", d.OutputDir, "directory the generated files are written to")
	fs.String("file-name", d.FileName, "output file name in single file mode")
	fs.Bool("multiple-file-mode", d.MultipleFileMode, "write one file per service plus index.defs.ts")
	fs.Bool("shared-service-options", d.SharedServiceOptions, "emit serviceOptions.ts once and import it")
	fs.String("extend-definition-file", "", "TypeScript file appended to the definitions")
	fs.String("formatter", d.Formatter, "output formatter: basic, none or command")
	fs.StringSlice("format-command", nil, "external formatter command and arguments, reads stdin")
	fs.String("service-name-suffix", d.ServiceNameSuffix, "suffix appended to service class names")
	fs.String("enum-name-prefix", d.EnumNamePrefix, "prefix of enums generated for inline enum properties")
	fs.String("method-name-mode", d.MethodNameMode, "operationId or path")
	fs.Bool("use-static-method", d.UseStaticMethod, "emit service methods as static")
	fs.Bool("use-customer-request-instance", d.UseCustomerRequestInstance, "call a user supplied axios instance")
	fs.Bool("use-header-parameters", d.UseHeaderParameters, "pass header parameters through to axios")
	fs.StringSlice("include", nil, "services (Tag or Tag.operation) to generate")
	fs.StringSlice("url-filters", nil, "only generate paths contained in one of these filters")
	fs.String("model-mode", d.ModelMode, "interface or class")
	fs.Bool("strict-null-checks", d.StrictNullChecks, "mark optional properties with ?")
	fs.Bool("use-class-transformer", d.UseClassTransformer, "decorate class models with class-transformer")
	fs.Bool("generate-validation-model", d.GenerateValidationModel, "emit validation metadata for class models")
	fs.StringSlice("include-types", nil, "generate only these definitions and the definitions they reference")
	fs.StringSlice("extend-generic-type", nil, "extra generic type names supplied by the user")
	fs.Duration("fetch-timeout", d.Fetch.Timeout, "timeout for fetching remote documents")
	fs.Int64("max-spec-size", d.Fetch.MaxSize, "maximum size in bytes of a remote document")
	fs.String("cache-dir", "", "directory caching fetched remote documents")
	fs.Duration("cache-expiry", d.Fetch.CacheExpiry, "how long cached documents stay valid")
}

// RegisterLogFlags adds the logging flags to fs
func RegisterLogFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "log level: trace, debug, info, warn or error")
	fs.Bool("log-json", false, "emit JSON log lines")
	fs.String("log-file", "", "also write logs to this rotating file")
}

// RegisterServerFlags adds the HTTP server flags to fs
func RegisterServerFlags(fs *pflag.FlagSet) {
	d := Default().Server
	fs.String("address", d.Address, "listen address")
	fs.Int("port", d.Port, "listen port")
}
