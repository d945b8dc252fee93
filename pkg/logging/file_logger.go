package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileLoggerConfig configures file-based logging
type FileLoggerConfig struct {
	FilePath   string `yaml:"file_path"`
	MaxSize    int64  `yaml:"max_size"`    // Maximum size in bytes before rotation
	MaxBackups int    `yaml:"max_backups"` // Maximum number of backup files
	Compress   bool   `yaml:"compress"`    // Whether to gzip rotated files
}

// FileLogger is an io.Writer that appends to a log file and rotates it by size
type FileLogger struct {
	config     FileLoggerConfig
	file       *os.File
	written    int64
	mutex      sync.Mutex
	lastRotate time.Time
}

// NewFileLogger creates a new file logger
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	if err := validateFileLoggerConfig(config); err != nil {
		return nil, err
	}

	fl := &FileLogger{
		config:     config,
		lastRotate: time.Now(),
	}

	logDir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	if err := fl.openFile(); err != nil {
		return nil, err
	}

	return fl, nil
}

// NewWithFile creates a logger that writes to cfg.Output and mirrors into the
// configured log file. The returned closer flushes and closes the file.
func NewWithFile(component string, cfg Config) (Logger, io.Closer, error) {
	if cfg.File.FilePath == "" {
		return New(component, cfg), nopCloser{}, nil
	}

	fl, err := NewFileLogger(cfg.File)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	cfg.Output = io.MultiWriter(output, fl)

	return New(component, cfg), fl, nil
}

func (fl *FileLogger) openFile() error {
	file, err := os.OpenFile(fl.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", fl.config.FilePath, err)
	}

	fl.file = file

	if stat, err := file.Stat(); err == nil {
		fl.written = stat.Size()
	}

	return nil
}

// Write writes data to the log file
func (fl *FileLogger) Write(data []byte) (int, error) {
	fl.mutex.Lock()
	defer fl.mutex.Unlock()

	if fl.needsRotation(int64(len(data))) {
		if err := fl.rotate(); err != nil {
			return 0, fmt.Errorf("log rotation failed: %w", err)
		}
	}

	n, err := fl.file.Write(data)
	fl.written += int64(n)
	return n, err
}

func (fl *FileLogger) needsRotation(additionalBytes int64) bool {
	if fl.config.MaxSize <= 0 {
		return false
	}

	return fl.written+additionalBytes > fl.config.MaxSize
}

func (fl *FileLogger) rotate() error {
	if fl.file != nil {
		fl.file.Close()
	}

	timestamp := time.Now().Format("2006-01-02T15-04-05.000")
	backupPath := fmt.Sprintf("%s.%s", fl.config.FilePath, timestamp)

	if err := os.Rename(fl.config.FilePath, backupPath); err != nil {
		return fmt.Errorf("failed to create backup %s: %w", backupPath, err)
	}

	if fl.config.Compress {
		// A failed compression leaves the plain backup in place.
		_ = compressFile(backupPath)
	}

	fl.cleanupOldBackups()

	if err := fl.openFile(); err != nil {
		return err
	}

	fl.written = 0
	fl.lastRotate = time.Now()

	return nil
}

func compressFile(filePath string) error {
	src, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filePath + ".gz")
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(dst)
	if _, err := io.Copy(zw, src); err != nil {
		dst.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	return os.Remove(filePath)
}

// cleanupOldBackups removes the oldest backups beyond MaxBackups
func (fl *FileLogger) cleanupOldBackups() {
	if fl.config.MaxBackups <= 0 {
		return
	}

	pattern := fl.config.FilePath + ".*"
	backups, err := filepath.Glob(pattern)
	if err != nil || len(backups) <= fl.config.MaxBackups {
		return
	}

	// Timestamp suffixes sort chronologically.
	sort.Strings(backups)
	excess := len(backups) - fl.config.MaxBackups
	for _, backup := range backups[:excess] {
		os.Remove(backup)
	}
}

// Close closes the file logger
func (fl *FileLogger) Close() error {
	fl.mutex.Lock()
	defer fl.mutex.Unlock()

	if fl.file != nil {
		return fl.file.Close()
	}

	return nil
}

// GetStats returns file logger statistics
func (fl *FileLogger) GetStats() FileLoggerStats {
	fl.mutex.Lock()
	defer fl.mutex.Unlock()

	return FileLoggerStats{
		FilePath:     fl.config.FilePath,
		CurrentSize:  fl.written,
		MaxSize:      fl.config.MaxSize,
		LastRotation: fl.lastRotate,
	}
}

// FileLoggerStats represents file logger statistics
type FileLoggerStats struct {
	FilePath     string    `json:"file_path"`
	CurrentSize  int64     `json:"current_size"`
	MaxSize      int64     `json:"max_size"`
	LastRotation time.Time `json:"last_rotation"`
}

func validateFileLoggerConfig(config FileLoggerConfig) error {
	if config.FilePath == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	if config.MaxSize < 0 {
		return fmt.Errorf("max size cannot be negative")
	}

	if config.MaxBackups < 0 {
		return fmt.Errorf("max backups cannot be negative")
	}

	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var _ io.Writer = (*FileLogger)(nil)
