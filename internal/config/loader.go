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
	userConfigDir    = ".config/smokectl"
	projectConfigDir = ".smokectl"
	configFileName   = "config.yaml"
)

// LoadConfig loads the smokectl configuration by layering user and project
// settings; project settings win. Both files are optional — an empty config
// is valid, the check command just has nothing to run from it.
func LoadConfig() (SmokectlConfig, error) {
	var config SmokectlConfig

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional; note and move on.
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
			userConfig, err := loadConfigFromFile(userConfigPath)
			if err != nil {
				return SmokectlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
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
				return SmokectlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
			}
			config = mergeConfigs(config, projectConfig)
		}
	}

	return config, nil
}

// LoadConfigFromPath loads a single explicit config file, bypassing the
// layering. Used by the --config flag.
func LoadConfigFromPath(path string) (SmokectlConfig, error) {
	return loadConfigFromFile(path)
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

// loadConfigFromFile loads a SmokectlConfig from a YAML file.
func loadConfigFromFile(filePath string) (SmokectlConfig, error) {
	var config SmokectlConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return SmokectlConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return SmokectlConfig{}, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return config, nil
}

// mergeConfigs overlays overlay on base. A non-empty kube context in the
// overlay wins; checks with the same label replace base checks, new labels
// append in overlay order.
func mergeConfigs(base, overlay SmokectlConfig) SmokectlConfig {
	merged := base
	if overlay.KubeContext != "" {
		merged.KubeContext = overlay.KubeContext
	}

	index := make(map[string]int, len(merged.Checks))
	for i, c := range merged.Checks {
		index[c.Label()] = i
	}
	for _, c := range overlay.Checks {
		if i, ok := index[c.Label()]; ok {
			merged.Checks[i] = c
			continue
		}
		merged.Checks = append(merged.Checks, c)
	}
	return merged
}

// Validate reports the first structural problem in the config, if any.
func (c SmokectlConfig) Validate() error {
	seen := make(map[string]bool, len(c.Checks))
	for _, check := range c.Checks {
		if check.Service == "" {
			return fmt.Errorf("check %q: service is required", check.Label())
		}
		if check.Namespace == "" {
			return fmt.Errorf("check %q: namespace is required", check.Label())
		}
		if check.LocalPort <= 0 || check.LocalPort > 65535 {
			return fmt.Errorf("check %q: invalid local port %d", check.Label(), check.LocalPort)
		}
		if check.RemotePort <= 0 || check.RemotePort > 65535 {
			return fmt.Errorf("check %q: invalid remote port %d", check.Label(), check.RemotePort)
		}
		if seen[check.Label()] {
			return fmt.Errorf("duplicate check label %q", check.Label())
		}
		seen[check.Label()] = true
	}
	return nil
}
