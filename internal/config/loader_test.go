package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withConfigPaths points the loader at test-controlled user and project
// config files for the duration of a test.
func withConfigPaths(t *testing.T, userPath, projectPath string) {
	t.Helper()

	origUser := getUserConfigPath
	origProject := getProjectConfigPath
	getUserConfigPath = func() (string, error) { return userPath, nil }
	getProjectConfigPath = func() (string, error) { return projectPath, nil }
	t.Cleanup(func() {
		getUserConfigPath = origUser
		getProjectConfigPath = origProject
	})
}

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, configFileName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaultsOnly(t *testing.T) {
	tmp := t.TempDir()
	withConfigPaths(t,
		filepath.Join(tmp, "user", configFileName),
		filepath.Join(tmp, "project", configFileName))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	names := make([]string, 0, len(cfg.Services))
	for _, svc := range cfg.Services {
		names = append(names, svc.Name)
	}
	assert.Equal(t, []string{"weaviate", "api", "ui"}, names, "default stack in start order")
	assert.Equal(t, "info", cfg.GlobalSettings.LogLevel)
}

func TestLoadConfigUserOverridesDefaults(t *testing.T) {
	tmp := t.TempDir()
	userPath := writeConfigFile(t, filepath.Join(tmp, "user"), `
globalSettings:
  logLevel: debug
services:
  - name: weaviate
    type: container
    enabled: true
    image: semitechnologies/weaviate:1.25.0
    readiness:
      url: http://localhost:8080/v1/.well-known/ready
`)
	withConfigPaths(t, userPath, filepath.Join(tmp, "project", configFileName))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.GlobalSettings.LogLevel)
	require.Len(t, cfg.Services, 3, "override replaces, never duplicates")
	assert.Equal(t, "weaviate", cfg.Services[0].Name, "overridden service keeps its start position")
	assert.Equal(t, "semitechnologies/weaviate:1.25.0", cfg.Services[0].Image)
}

func TestLoadConfigProjectWinsOverUser(t *testing.T) {
	tmp := t.TempDir()
	userPath := writeConfigFile(t, filepath.Join(tmp, "user"), `
globalSettings:
  logLevel: debug
`)
	projectPath := writeConfigFile(t, filepath.Join(tmp, "project"), `
globalSettings:
  logLevel: warn
`)
	withConfigPaths(t, userPath, projectPath)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.GlobalSettings.LogLevel)
}

func TestLoadConfigAppendsUnknownServices(t *testing.T) {
	tmp := t.TempDir()
	projectPath := writeConfigFile(t, filepath.Join(tmp, "project"), `
services:
  - name: postgres
    type: container
    enabled: true
    image: postgres:16
    readiness:
      type: tcp
      address: localhost:5432
`)
	withConfigPaths(t, filepath.Join(tmp, "user", configFileName), projectPath)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Len(t, cfg.Services, 4)
	added := cfg.Services[3]
	assert.Equal(t, "postgres", added.Name)
	assert.Equal(t, ProbeTypeTCP, added.Readiness.Type)
	assert.Equal(t, "localhost:5432", added.Readiness.Address)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tmp := t.TempDir()
	userPath := writeConfigFile(t, filepath.Join(tmp, "user"), "services: [not: valid: yaml")
	withConfigPaths(t, userPath, filepath.Join(tmp, "project", configFileName))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigFromPath(t *testing.T) {
	tmp := t.TempDir()
	path := writeConfigFile(t, tmp, `
services:
  - name: api
    type: container
    enabled: false
`)

	cfg, err := LoadConfigFromPath(path)
	require.NoError(t, err)

	enabled := cfg.EnabledServices()
	names := make([]string, 0, len(enabled))
	for _, svc := range enabled {
		names = append(names, svc.Name)
	}
	assert.Equal(t, []string{"weaviate", "ui"}, names, "api disabled by the explicit config file")
}

func TestLoadConfigFromPathMissingFile(t *testing.T) {
	_, err := LoadConfigFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyProbeDefaults(t *testing.T) {
	p := ApplyProbeDefaults(ProbeDefinition{URL: "http://localhost:8000/api/v1/ping"})

	assert.Equal(t, ProbeTypeHTTP, p.Type)
	assert.Equal(t, DefaultMaxAttempts, p.MaxAttempts)
	assert.Equal(t, DefaultRetryDelay, p.RetryDelay)
	assert.Equal(t, DefaultProbeTimeout, p.Timeout)
}

func TestApplyProbeDefaultsKeepsExplicitValues(t *testing.T) {
	p := ApplyProbeDefaults(ProbeDefinition{
		Type:        ProbeTypeTCP,
		Address:     "localhost:9000",
		MaxAttempts: 5,
	})

	assert.Equal(t, ProbeTypeTCP, p.Type)
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, DefaultRetryDelay, p.RetryDelay, "unset fields still get defaults")
}

func TestExpandEnvValues(t *testing.T) {
	t.Setenv("RAGSTACK_TEST_KEY", "sk-secret")

	expanded := ExpandEnvValues(map[string]string{
		"OPENAI_API_KEY": "${RAGSTACK_TEST_KEY}",
		"PLAIN":          "unchanged",
	})

	assert.Equal(t, "sk-secret", expanded["OPENAI_API_KEY"])
	assert.Equal(t, "unchanged", expanded["PLAIN"])
	assert.Nil(t, ExpandEnvValues(nil))
}

func TestDefaultConfigProbeEndpoints(t *testing.T) {
	cfg := GetDefaultConfig()
	byName := make(map[string]ServiceDefinition)
	for _, svc := range cfg.Services {
		byName[svc.Name] = svc
	}

	assert.Equal(t, "http://localhost:8080/v1/.well-known/ready", byName["weaviate"].Readiness.URL)
	assert.Equal(t, "http://localhost:8000/api/v1/ping", byName["api"].Readiness.URL)
	assert.Equal(t, "http://localhost:8501/", byName["ui"].Readiness.URL)
}
