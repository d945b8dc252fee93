package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/osakka/axiosgen/pkg/logging"
)

// DefaultConfigFile is looked up in the working directory when no file is named
const DefaultConfigFile = "axiosgen.yaml"

// Loader handles configuration loading from YAML files
type Loader struct {
	logger logging.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNoOp()
	}
	return &Loader{
		logger: logger.WithComponent("config"),
	}
}

// Validator interface for configuration validation
type Validator interface {
	Validate() error
}

// LoadFromFile decodes the YAML file at filePath over config. Fields absent
// from the file keep the values config already holds, so callers pass a
// struct pre-filled with defaults.
func (l *Loader) LoadFromFile(filePath string, config interface{}, validate bool) error {
	l.logger.Info("config_loading_started", "file_path", filePath)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("configuration file not found: %s", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		l.logger.Error("config_file_read_failed",
			"file_path", filePath,
			"error", err)
		return fmt.Errorf("failed to read configuration file %s: %w", filePath, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		l.logger.Error("config_yaml_parse_failed",
			"file_path", filePath,
			"error", err)
		return fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	l.logger.Info("config_file_loaded",
		"file_path", filePath,
		"size_bytes", len(data))

	if validate {
		if validator, ok := config.(Validator); ok {
			if err := validator.Validate(); err != nil {
				l.logger.Error("config_validation_failed", "error", err)
				return fmt.Errorf("configuration validation failed: %w", err)
			}
		}
	}

	return nil
}

// SaveToFile saves configuration to a YAML file
func (l *Loader) SaveToFile(filePath string, config interface{}) error {
	l.logger.Info("config_saving_started", "file_path", filePath)

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		l.logger.Error("config_yaml_marshal_failed", "error", err)
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		l.logger.Error("config_file_write_failed",
			"file_path", filePath,
			"error", err)
		return fmt.Errorf("failed to write configuration file %s: %w", filePath, err)
	}

	l.logger.Info("config_saving_completed",
		"file_path", filePath,
		"size_bytes", len(data))

	return nil
}

// GetDefaultConfigPath returns the configuration file to use when none was
// given on the command line. An empty result means run on defaults.
func GetDefaultConfigPath() string {
	if path := os.Getenv("AXIOSGEN_CONFIG_FILE"); path != "" {
		return path
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// GenerateExampleConfig writes the default configuration to filePath
func GenerateExampleConfig(filePath string) error {
	cfg := Default()
	return NewLoader(nil).SaveToFile(filePath, &cfg)
}
