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

package threads

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/irtext"
	"github.com/awslabs/ar-go-absint/analysis/program"
	. "github.com/awslabs/ar-go-absint/internal/funcutil"
)

func loadThreadsTestResult(t *testing.T, cfg *config.Config, src string) AnalysisResult {
	p, err := irtext.ParseString("threads.ir", src)
	if err != nil {
		t.Fatalf("failed to parse program: %v", err)
	}
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	ar, err := Analyze(logger, cfg, p)
	if err != nil {
		t.Fatalf("thread analysis returned error %v", err)
	}
	return ar
}

const trivial = `
global shared, flag;
func worker() {
  atomic_begin;
  shared = shared + 1;
  atomic_end;
}
func main() {
  shared = 0;
  start_thread t;
  flag = 1;
  goto out;
t:
  call worker();
  end_thread;
out:
  assert shared >= 0;
}
`

func TestTrivial(t *testing.T) {
	ar := loadThreadsTestResult(t, config.NewDefault(), trivial)

	for start, id := range ar.ThreadStarts {
		t.Logf("%d : %s @ %d", id, ar.Program.Instr(start), start)
	}
	if len(ar.Ids) != 2 || ar.Ids[1] != 5 {
		t.Fatalf("expected one thread started at 5, got %v", ar.Ids)
	}

	for l := program.Location(0); int(l) < ar.Program.NumLocations(); l++ {
		expected := l != 4 && l != 5
		if ar.IsThreaded(l) != expected {
			t.Errorf("location %d (%s): expected threaded=%v", l, ar.Program.Instr(l), expected)
		}
	}

	res := map[string]string{}
	for name, color := range ar.FunctionColors() {
		e := strings.Join(Map(SetToOrderedSlice(color), func(i uint32) string { return strconv.Itoa(int(i)) }), ",")
		t.Logf("Function %s - %s", name, e)
		res[name] = e
	}
	if res["main"] != "0,1" {
		t.Errorf("main should run in both threads, got %s", res["main"])
	}
	if res["worker"] != "1" {
		t.Errorf("worker should only run in thread 1, got %s", res["worker"])
	}
	if entries := ar.ThreadEntries(); len(entries) != 1 || entries[0] != 8 {
		t.Errorf("expected the thread to start at 8, got %v", entries)
	}
	if names := ar.ThreadedFunctions(); strings.Join(names, ",") != "main,worker" {
		t.Errorf("unexpected threaded functions %v", names)
	}
}

func TestSequentialProgramHasNoThreadedLocation(t *testing.T) {
	src := `global g; func f() { g = 1; } func main() { call f(); g = 2; }`
	ar := loadThreadsTestResult(t, config.NewDefault(), src)
	if ar.NumThreaded() != 0 {
		t.Errorf("expected no threaded location, got %d", ar.NumThreaded())
	}
	if ar.Reached.Count() != uint(ar.Program.NumLocations()) {
		t.Errorf("all locations should be reached, got %d", ar.Reached.Count())
	}
}

func TestThreadEntriesFromConfig(t *testing.T) {
	src := `global g; func helper() { g = g + 1; } func unused() { skip; } func main() { g = 0; }`
	cfg := config.NewDefault()
	cfg.ThreadEntries = []string{"helper"}
	ar := loadThreadsTestResult(t, cfg, src)
	helper, _ := ar.Program.Function("helper")
	for _, l := range helper.Body {
		if !ar.IsThreaded(l) {
			t.Errorf("location %d of helper should be threaded", l)
		}
	}
	unused, _ := ar.Program.Function("unused")
	if ar.Reached.Test(uint(unused.Entry())) {
		t.Errorf("unused should not be reached")
	}
	main, _ := ar.Program.Function("main")
	for _, l := range main.Body {
		if !ar.IsThreaded(l) {
			t.Errorf("location %d of main runs alongside helper and should be threaded", l)
		}
	}
	if entries := ar.ThreadEntries(); len(entries) != 1 || entries[0] != helper.Entry() {
		t.Errorf("expected helper's entry as the only thread entry, got %v", entries)
	}
	if !ar.FunctionColors()["helper"][1] {
		t.Errorf("helper should have color 1, got %v", ar.FunctionColors()["helper"])
	}
}

func TestUnknownThreadEntry(t *testing.T) {
	p, err := irtext.ParseFile(filepath.Join("..", "irtext", "testdata", "scenario.ir"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.NewDefault()
	cfg.ThreadEntries = []string{"nope"}
	if _, err := Analyze(config.NewLogGroup(cfg), cfg, p); err == nil {
		t.Errorf("expected an error for an undefined thread entry")
	}
}
