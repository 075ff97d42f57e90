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

package ai_test

import (
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/ai"
	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/domains/constants"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/threads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrencyAwareFixedpoint(t *testing.T) {
	p := parseTestdata(t, "threads.ir")
	cfg := config.NewDefault()
	ar, err := threads.Analyze(quietLogger(), cfg, p)
	require.NoError(t, err)

	assertion := location(t, p, "main", 6)
	require.True(t, ar.IsThreaded(assertion))

	// the sequential analysis ignores the increment done by the worker thread
	seq := runConstants(t, p)
	v, ok := seq.StateBefore(assertion).Value("shared")
	assert.True(t, ok)
	assert.Equal(t, int64(0), v)

	e := constants.NewConcurrencyAwareEngine(p, ar.IsThreaded, ai.WithLogger(quietLogger()))
	require.NoError(t, e.RunProgram())
	s := e.StateBefore(assertion)
	assert.False(t, s.IsBottom())
	_, ok = s.Value("shared")
	assert.False(t, ok, "shared may have been incremented by the worker")

	shared := e.SharedState()
	assert.False(t, shared.IsBottom())
	for _, id := range shared.Symbols() {
		assert.NotContains(t, id, "::", "thread-local symbols must not reach the shared state")
	}

	// the shared state is stable: a second round changes nothing
	changed, err := e.ConcurrentFixedpoint()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, shared.ToPredicate(), e.SharedState().ToPredicate())
}

func TestConcurrencyWithoutThreadsIsSequential(t *testing.T) {
	p := parseTestdata(t, "calls.ir")
	ar, err := threads.Analyze(quietLogger(), config.NewDefault(), p)
	require.NoError(t, err)
	require.Equal(t, 0, ar.NumThreaded())

	seq := runConstants(t, p)
	e := constants.NewConcurrencyAwareEngine(p, ar.IsThreaded, ai.WithLogger(quietLogger()))
	require.NoError(t, e.RunProgram())
	assert.True(t, e.SharedState().IsBottom())
	assert.Equal(t, seq.NumStates(), e.NumStates())
	for l := 0; l < p.NumLocations(); l++ {
		loc := program.Location(l)
		assert.Equal(t, seq.StateBefore(loc).ToPredicate(), e.StateBefore(loc).ToPredicate(), "location %d", loc)
	}

	e.Clear()
	assert.True(t, e.SharedState().IsBottom())
	assert.Equal(t, 0, e.NumStates())
}

func runConcurrent(t *testing.T, p *program.Program, cfg *config.Config) *ai.ConcurrencyAwareEngine[*constants.State] {
	t.Helper()
	ar, err := threads.Analyze(quietLogger(), cfg, p)
	require.NoError(t, err)
	e := constants.NewConcurrencyAwareEngine(p, ar.IsThreaded, ai.WithLogger(quietLogger()),
		ai.WithThreadEntries(ar.ThreadEntries()...))
	require.NoError(t, e.RunProgram())
	return e
}

func TestSharedStateSeesIntermediateWrites(t *testing.T) {
	p := parse(t, `
global shared;
func worker() {
  shared = 5;
  shared = 0;
}
func main() {
  shared = 0;
  start_thread t;
  assert shared == 0;
  goto out;
t:
  call worker();
  end_thread;
out:
}`)
	assertion := location(t, p, "main", 2)

	seq := runConstants(t, p)
	assert.Equal(t, constants.Holds, seq.StateBefore(assertion).Check(p.Instr(assertion).Guard))

	// the assertion may run between the two writes of the worker, whose exit state only knows shared == 0
	e := runConcurrent(t, p, config.NewDefault())
	_, ok := e.SharedState().Value("shared")
	assert.False(t, ok)
	results := constants.CheckAssertions(p, e.StateBefore)
	require.Len(t, results, 1)
	assert.Equal(t, constants.Unknown, results[0].Verdict)

	changed, err := e.ConcurrentFixedpoint()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestConfiguredThreadEntryIsAnalysed(t *testing.T) {
	p := parse(t, `
global g;
func handler() {
  g = 7;
}
func main() {
  g = 0;
  assert g == 0;
}`)
	cfg := config.NewDefault()
	cfg.ThreadEntries = []string{"handler"}
	e := runConcurrent(t, p, cfg)

	// handler is never called but runs alongside main
	handler, _ := p.Function("handler")
	end, err := e.Lookup(handler.Exit())
	require.NoError(t, err)
	assert.False(t, end.IsBottom())
	assert.False(t, e.SharedState().IsBottom())

	results := constants.CheckAssertions(p, e.StateBefore)
	require.Len(t, results, 1)
	assert.Equal(t, constants.Unknown, results[0].Verdict, "handler may set g to 7 before the assertion")

	changed, err := e.ConcurrentFixedpoint()
	require.NoError(t, err)
	assert.False(t, changed)
}
