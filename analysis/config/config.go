// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the abstract interpreter and of the tools built on top of it.
// To add elements to a config file, add fields to this struct.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a config file, but computed after initialization
type Config struct {
	Options `yaml:"options" toml:"options"`

	sourceFile string

	// ThreadEntries lists functions whose body must be considered as running concurrently with the rest of the
	// program, in addition to the targets of start_thread instructions.
	ThreadEntries []string `yaml:"thread-entries" toml:"thread-entries"`
}

// Options are the scalar settings of the configuration
type Options struct {
	// ReportsDir is the directory where the analysis results are written when the tool is asked to write them to
	// files. If it is empty and a report is requested, a directory is created next to the config file.
	ReportsDir string `yaml:"reports-dir" toml:"reports-dir"`

	// EntryPoint is the function where the whole-program analysis starts. Defaults to the entry point declared in
	// the program, or "main".
	EntryPoint string `yaml:"entry-point" toml:"entry-point"`

	// Concurrency enables the concurrency-aware fixed point after the sequential one.
	Concurrency bool `yaml:"concurrency" toml:"concurrency"`

	// OutputFormat is one of "text", "json" or "xml"
	OutputFormat string `yaml:"output-format" toml:"output-format"`

	// ReportProgress enables periodic progress reports during the fixed point computation
	ReportProgress bool `yaml:"report-progress" toml:"report-progress"`

	// ProgressIntervalMs is the minimum number of milliseconds between two progress reports
	ProgressIntervalMs int `yaml:"progress-interval-ms" toml:"progress-interval-ms"`

	// ReportCallDepth adds the call stack depth of the analysis to progress reports
	ReportCallDepth bool `yaml:"report-call-depth" toml:"report-call-depth"`

	// ReportFunctionCounts adds the number of function entries and exits to progress reports
	ReportFunctionCounts bool `yaml:"report-function-counts" toml:"report-function-counts"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level" toml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn" toml:"silence-warn"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:    "",
		ThreadEntries: nil,
		Options: Options{
			ReportsDir:           "",
			EntryPoint:           "",
			Concurrency:          false,
			OutputFormat:         OutputText,
			ReportProgress:       false,
			ProgressIntervalMs:   DefaultProgressIntervalMs,
			ReportCallDepth:      false,
			ReportFunctionCounts: false,
			LogLevel:             int(InfoLevel),
			SilenceWarn:          false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadFromBytes(filename, b)
}

// LoadFromBytes reads a configuration from the contents b of the file filename. Files with a .toml extension are
// decoded as TOML, anything else is decoded as YAML first and then as TOML if it is not valid YAML.
func LoadFromBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		if _, err := toml.Decode(string(b), cfg); err != nil {
			return nil, fmt.Errorf("could not unmarshal config file as toml: %w", err)
		}
	} else if errYaml := yaml.Unmarshal(b, cfg); errYaml != nil {
		cfg = NewDefault()
		if _, errToml := toml.Decode(string(b), cfg); errToml != nil {
			return nil, fmt.Errorf("could not unmarshal config file, not as yaml: %w, not as toml: %v",
				errYaml, errToml)
		}
	}

	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.ProgressIntervalMs <= 0 {
		cfg.ProgressIntervalMs = DefaultProgressIntervalMs
	}

	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	switch cfg.OutputFormat {
	case "":
		cfg.OutputFormat = OutputText
	case OutputText, OutputJSON, OutputXML:
	default:
		return nil, fmt.Errorf("unknown output format %q (expected %s, %s or %s)",
			cfg.OutputFormat, OutputText, OutputJSON, OutputXML)
	}

	return cfg, nil
}

// SetReportsDir creates the reports directory if needed. If no directory has been set, a fresh temporary
// directory is created next to the config file.
func (c *Config) SetReportsDir() error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(c.sourceFile), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports: %w", err)
		}
		c.ReportsDir = tmpdir
		return nil
	}
	if err := os.Mkdir(c.ReportsDir, 0750); err != nil && !os.IsExist(err) {
		return fmt.Errorf("could not create directory %s", c.ReportsDir)
	}
	return nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// ProgressInterval returns the minimum duration between two progress reports
func (c Config) ProgressInterval() time.Duration {
	if c.ProgressIntervalMs <= 0 {
		return DefaultProgressIntervalMs * time.Millisecond
	}
	return time.Duration(c.ProgressIntervalMs) * time.Millisecond
}

// IsThreadEntry returns true if the function name was listed as a thread entry in the config
func (c Config) IsThreadEntry(name string) bool {
	for _, e := range c.ThreadEntries {
		if e == name {
			return true
		}
	}
	return false
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
