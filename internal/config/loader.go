// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	ConfigFileBaseName  = ".env"                // Base name of configuration files (".env.toml").
	ConfigFileExtension = ".toml"               // Extension of configuration files.
	ConfigSeparator     = "."                   // Separator between base name and runtime (".env.local.toml").
	EnvConfigFilePrefix = "COVID_CONFIG_PREFIX" // Directory holding the configuration files.
	EnvConfigRuntime    = "COVID_RUNTIME"       // Runtime selecting the override file ("local", "test", "prod").
	DefaultRuntime      = "local"
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// ConfigFiles returns the base and runtime override file names derived from
// the environment, in the order they are applied.
func ConfigFiles() (base string, override string) {
	prefix := os.Getenv(EnvConfigFilePrefix)
	if len(prefix) > 0 && !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix = prefix + string(os.PathSeparator)
	}
	runtime := os.Getenv(EnvConfigRuntime)
	if runtime == "" {
		runtime = DefaultRuntime
	}
	base = prefix + ConfigFileBaseName + ConfigFileExtension
	override = prefix + ConfigFileBaseName + ConfigSeparator + runtime + ConfigFileExtension
	return base, override
}

// LoadConfig decodes the base file and then the runtime override file into
// baseConfig. Values in the override win. Missing files are skipped, so a
// config created by NewConfig keeps its defaults.
func LoadConfig(baseConfig interface{}) error {
	base, override := ConfigFiles()
	for _, name := range []string{base, override} {
		if !fileExists(name) {
			slog.Debug("configuration file not found, skipping", "file", name)
			continue
		}
		if _, err := toml.DecodeFile(name, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
		}
		slog.Info("loaded configuration file", "file", name)
	}
	return nil
}

// Load builds a validated Config from the defaults and the TOML files.
func Load() (*Config, error) {
	c := NewConfig()
	if err := LoadConfig(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}
