package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/ragstack"
	projectConfigDir = ".ragstack"
	configFileName   = "config.yaml"
)

// LoadConfig loads the stack configuration by layering default, user, and
// project settings. Project settings win over user settings, which win over
// the built-in defaults.
func LoadConfig() (StackConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
			userConfig, err := loadConfigFromFile(userConfigPath)
			if err != nil {
				return StackConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
			}
			config = mergeConfigs(config, userConfig)
		}
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else {
		if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
			projectConfig, err := loadConfigFromFile(projectConfigPath)
			if err != nil {
				return StackConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
			}
			config = mergeConfigs(config, projectConfig)
		}
	}

	return config, nil
}

// LoadConfigFromPath loads the configuration from an explicit file, layered
// on top of the built-in defaults only. Used by the --config flag.
func LoadConfigFromPath(path string) (StackConfig, error) {
	config := GetDefaultConfig()
	fileConfig, err := loadConfigFromFile(path)
	if err != nil {
		return StackConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return mergeConfigs(config, fileConfig), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a StackConfig from a YAML file.
func loadConfigFromFile(filePath string) (StackConfig, error) {
	var config StackConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return StackConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return StackConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}
	return config, nil
}

// mergeConfigs layers override on top of base. Services are merged by name:
// an override entry replaces the base entry wholesale but keeps its position
// in the start order; unknown names are appended at the end. Global settings
// are merged field-wise.
func mergeConfigs(base, override StackConfig) StackConfig {
	merged := base

	if override.GlobalSettings.LogLevel != "" {
		merged.GlobalSettings.LogLevel = override.GlobalSettings.LogLevel
	}
	if override.GlobalSettings.DefaultContainerRuntime != "" {
		merged.GlobalSettings.DefaultContainerRuntime = override.GlobalSettings.DefaultContainerRuntime
	}

	if len(override.Services) > 0 {
		byName := make(map[string]int, len(merged.Services))
		for i, svc := range merged.Services {
			byName[svc.Name] = i
		}
		for _, svc := range override.Services {
			if i, ok := byName[svc.Name]; ok {
				merged.Services[i] = svc
			} else {
				merged.Services = append(merged.Services, svc)
				byName[svc.Name] = len(merged.Services) - 1
			}
		}
	}

	return merged
}

// ExpandEnvValues applies ${VAR} expansion from the process environment to
// each value of the given map, returning a new map. Secrets like API keys
// reach the services this way without being written into config files.
func ExpandEnvValues(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}
	expanded := make(map[string]string, len(env))
	for k, v := range env {
		expanded[k] = os.ExpandEnv(v)
	}
	return expanded
}
