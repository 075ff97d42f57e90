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
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed testdata
var testfsys embed.FS

func loadFromTestDir(filename string) (string, *Config, error) {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %v: %v", filename, err)
	}
	config, err := LoadFromBytes(filename, b)
	if err != nil {
		return filename, nil, fmt.Errorf("failed to load file %v: %v", filename, err)
	}
	return filename, config, err
}

func testLoadOneFile(t *testing.T, filename string, expected Config) {
	configFileName, config, err := loadFromTestDir(filename)
	if err != nil {
		t.Fatalf("Error loading %q: %v", configFileName, err)
	}
	c1, err1 := yaml.Marshal(config)
	c2, err2 := yaml.Marshal(expected)
	if err1 != nil {
		t.Errorf("Error marshalling %v", config)
	}
	if err2 != nil {
		t.Errorf("Error marshalling %v", expected)
	}
	if string(c1) != string(c2) {
		t.Errorf("Error in %q:\n%q is not\n%q\n", filename, c1, c2)
	}
}

func TestLoadYaml(t *testing.T) {
	expected := NewDefault()
	expected.LogLevel = int(DebugLevel)
	expected.EntryPoint = "start"
	expected.Concurrency = true
	expected.OutputFormat = OutputJSON
	expected.ReportProgress = true
	expected.ProgressIntervalMs = 250
	expected.ReportCallDepth = true
	expected.ThreadEntries = []string{"worker", "logger"}
	testLoadOneFile(t, "config.yaml", *expected)
}

func TestLoadToml(t *testing.T) {
	expected := NewDefault()
	expected.LogLevel = int(TraceLevel)
	expected.Concurrency = true
	expected.OutputFormat = OutputXML
	expected.ReportFunctionCounts = true
	expected.ThreadEntries = []string{"worker"}
	testLoadOneFile(t, "config.toml", *expected)
}

func TestLoadDefaults(t *testing.T) {
	testLoadOneFile(t, "defaults.yaml", *NewDefault())
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	_, _, err := loadFromTestDir("bad-format.yaml")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("expected an unknown output format error, got %v", err)
	}
}

func TestProgressInterval(t *testing.T) {
	_, c, err := loadFromTestDir("config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if c.ProgressInterval() != 250*time.Millisecond {
		t.Errorf("unexpected progress interval %v", c.ProgressInterval())
	}
	if !c.IsThreadEntry("logger") || c.IsThreadEntry("main") {
		t.Errorf("thread entries not loaded correctly: %v", c.ThreadEntries)
	}
	if c.RelPath("x.ir") != "testdata/x.ir" {
		t.Errorf("unexpected relative path %q", c.RelPath("x.ir"))
	}
}

func TestLogGroupLevels(t *testing.T) {
	c := NewDefault()
	c.LogLevel = int(InfoLevel)
	logger := NewLogGroup(c)
	var buf bytes.Buffer
	logger.SetAllOutput(&buf)
	logger.Debugf("hidden %d", 1)
	logger.Infof("shown %d", 2)
	logger.Warnf("warning %d", 3)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message printed at info level: %q", out)
	}
	if !strings.Contains(out, "shown 2") || !strings.Contains(out, "warning 3") {
		t.Errorf("missing messages in %q", out)
	}
}
