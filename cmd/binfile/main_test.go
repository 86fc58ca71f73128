package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/binfile/component"
	"github.com/c360/binfile/componentregistry"
	"github.com/c360/binfile/config"
)

const writerConfig = `
platform:
  id: test
metrics:
  enabled: false
components:
  writer:
    type: processor
    name: write_binary_file
    enabled: true
    config:
      binary_element_path: "//image"
      target_directory:
        value: /var/spool/images
      target_file_name:
        expression: "//fileName"
      allow_overwrite: false
  disabled:
    type: processor
    name: write_binary_file
    enabled: false
    config: {}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "binfile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--version"}, &out))
	assert.Equal(t, "binfile version "+Version+"\n", out.String())
}

func TestRun_PrintSchema(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--print-schema", "--log-level", "error"}, &out))

	var schemas map[string]map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &schemas))
	require.Contains(t, schemas, "write_binary_file")

	schema := schemas["write_binary_file"]
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", schema["$schema"])
	assert.Contains(t, schema["properties"], "binary_element_path")
}

func TestRun_PrintDefinition(t *testing.T) {
	path := writeConfig(t, writerConfig)

	var out bytes.Buffer
	require.NoError(t, run([]string{"--config", path, "--print-definition", "--log-level", "error"}, &out))

	text := out.String()
	assert.Contains(t, text, "<!-- writer -->")
	assert.NotContains(t, text, "<!-- disabled -->")
	assert.Contains(t, text, `<writeBinaryFile xmlns="urn:c360:binfile">`)
	assert.Contains(t, text, `<targetDirectory value="/var/spool/images">`)
	assert.Contains(t, text, `<targetFileName expression="//fileName">`)
	assert.Contains(t, text, `<allowOverwrite value="false">`)
	assert.NotContains(t, text, "forceUniqueFileName")
}

func TestRun_Validate(t *testing.T) {
	path := writeConfig(t, writerConfig)

	var out bytes.Buffer
	assert.NoError(t, run([]string{"--config", path, "--validate", "--log-level", "error"}, &out))
}

func TestRun_ValidateRejectsComponentConfig(t *testing.T) {
	path := writeConfig(t, `
platform:
  id: test
components:
  writer:
    type: processor
    name: write_binary_file
    enabled: true
    config:
      binary_element_path: "//image"
      target_directory:
        value: /tmp
        expression: "//dir"
      target_file_name:
        value: pic.png
`)

	err := run([]string{"--config", path, "--validate", "--log-level", "error"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create component writer")
}

func TestRun_FlagErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing config", args: []string{"--config", "/nonexistent/binfile.json"}, wantErr: "config file not found"},
		{name: "bad log level", args: []string{"--log-level", "loud", "--config", "main.go"}, wantErr: "invalid log level"},
		{name: "bad log format", args: []string{"--log-format", "xml", "--config", "main.go"}, wantErr: "invalid log format"},
		{name: "unknown flag", args: []string{"--frobnicate"}, wantErr: "parse flags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCreateComponents_SkipsUnknownFactories(t *testing.T) {
	registry := component.NewRegistry()
	require.NoError(t, componentregistry.Register(registry))

	cfg := &config.Config{Components: config.ComponentConfigs{
		"mystery": {Type: "processor", Name: "not_registered", Enabled: true},
	}}
	require.NoError(t, createComponents(registry, cfg, component.Dependencies{}))
	assert.Empty(t, registry.InstanceNames())
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("BINFILE_TEST_DURATION", "45")
	assert.Equal(t, int64(45), int64(getEnvDuration("BINFILE_TEST_DURATION", 0).Seconds()))

	t.Setenv("BINFILE_TEST_DURATION", "1m")
	assert.Equal(t, "1m0s", getEnvDuration("BINFILE_TEST_DURATION", 0).String())

	t.Setenv("BINFILE_TEST_DURATION", "soon")
	assert.Equal(t, "5s", getEnvDuration("BINFILE_TEST_DURATION", 5e9).String())
}

func TestNewNATSClient(t *testing.T) {
	cfg := &config.Config{NATS: config.NATSConfig{
		URLs:          []string{"nats://a:4222", "nats://b:4222"},
		Name:          "binfile-test",
		MaxReconnects: 3,
		Username:      "user",
		Password:      "pass",
	}}

	client, err := newNATSClient(cfg, nil, newLogger(&bytes.Buffer{}, "error", "text"), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "nats://a:4222,nats://b:4222", client.URL())
	assert.False(t, client.IsHealthy())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("dropped")
	logger.Warn("kept", "component", "writer")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, appName, line["service"])
	assert.Equal(t, "writer", line["component"])
}
