package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger(t *testing.T) {
	t.Run("logs contain operation and fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New("test.component", Config{Level: "debug", JSON: true, Output: &buf})

		logger.Info("spec_loaded", "paths", 3, "format", "json")

		entries := decodeEntries(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, "spec_loaded", entries[0]["@message"])
		assert.Equal(t, "test.component", entries[0]["@module"])
		assert.Equal(t, "info", entries[0]["@level"])
		assert.EqualValues(t, 3, entries[0]["paths"])
		assert.Equal(t, "json", entries[0]["format"])
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New("test", Config{Level: "warn", JSON: true, Output: &buf})

		logger.Debug("hidden")
		logger.Info("hidden")
		logger.Warn("shown")
		logger.Error("shown")

		assert.Len(t, decodeEntries(t, &buf), 2)
	})

	t.Run("with component replaces the name", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New("root", Config{JSON: true, Output: &buf}).WithComponent("openapi_loader")

		logger.Info("component_test")

		entries := decodeEntries(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, "openapi_loader", entries[0]["@module"])
	})

	t.Run("dangling key is dropped", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New("test", Config{JSON: true, Output: &buf}).With("request_id", "abc")

		logger.Info("odd_fields", "key", "value", "dangling")

		entries := decodeEntries(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, "abc", entries[0]["request_id"])
		assert.Equal(t, "value", entries[0]["key"])
		assert.NotContains(t, entries[0], "EXTRA_VALUE_AT_END")
	})
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, "debug", level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "axiosgen.log")

	fl, err := NewFileLogger(FileLoggerConfig{FilePath: path, MaxSize: 64, MaxBackups: 1})
	require.NoError(t, err)
	defer fl.Close()

	_, err = fl.Write([]byte(strings.Repeat("a", 60) + "\n"))
	require.NoError(t, err)
	_, err = fl.Write([]byte("rotates\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rotates\n", string(data))

	backups, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	assert.Len(t, backups, 1)
	assert.EqualValues(t, len("rotates\n"), fl.GetStats().CurrentSize)
}

func TestNewWithFileMirrorsOutput(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "mirror.log")

	logger, closer, err := NewWithFile("mirror", Config{
		Output: &buf,
		File:   FileLoggerConfig{FilePath: path},
	})
	require.NoError(t, err)

	logger.Info("mirrored_entry")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mirrored_entry")
	assert.Contains(t, buf.String(), "mirrored_entry")
}

func TestFileLoggerConfigValidation(t *testing.T) {
	_, err := NewFileLogger(FileLoggerConfig{})
	assert.Error(t, err)

	_, err = NewFileLogger(FileLoggerConfig{FilePath: filepath.Join(t.TempDir(), "x.log"), MaxSize: -1})
	assert.Error(t, err)
}
