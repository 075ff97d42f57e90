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
	"bytes"
	"testing"
	"time"

	"github.com/awslabs/ar-go-absint/analysis/ai"
	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	reports []ai.Progress
}

func (r *recorder) ReportProgress(p ai.Progress) {
	r.reports = append(r.reports, p)
}

// tick returns a clock that advances by one second every time it is read
func tick() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestProgressReports(t *testing.T) {
	p := parse(t, diamond)
	r := &recorder{}
	e := ai.NewEngine(p, newPreds, ai.WithLogger(quietLogger()), ai.WithClock(tick()),
		ai.WithProgress(r, 500*time.Millisecond))
	require.NoError(t, e.RunProgram())

	require.Len(t, r.reports, 5)
	for i, report := range r.reports {
		assert.Equal(t, i+1, report.Visits)
		assert.Equal(t, "main", report.Function)
		assert.Equal(t, 1, report.CallDepth)
		if i > 0 {
			assert.Greater(t, report.Elapsed, r.reports[i-1].Elapsed)
		}
	}
}

func TestProgressReportsAreThrottled(t *testing.T) {
	p := parse(t, diamond)
	r := &recorder{}
	e := ai.NewEngine(p, newPreds, ai.WithLogger(quietLogger()), ai.WithClock(tick()),
		ai.WithProgress(r, time.Hour))
	require.NoError(t, e.RunProgram())
	assert.Empty(t, r.reports)
	assert.Equal(t, 5, e.Progress().Visits)
}

func TestProgressCountsFunctions(t *testing.T) {
	p := parseTestdata(t, "calls.ir")
	e := ai.NewEngine(p, newPreds, ai.WithLogger(quietLogger()))
	require.NoError(t, e.RunProgram())

	progress := e.Progress()
	// main, inc and fail
	assert.Equal(t, 3, progress.FunctionEntries)
	assert.Equal(t, progress.FunctionEntries, progress.FunctionExits)
	assert.Equal(t, 2, progress.MaxCallDepth)
	assert.Equal(t, 0, progress.CallDepth)
}

func TestLogReporter(t *testing.T) {
	cfg := config.NewDefault()
	cfg.ReportCallDepth = true
	logger := config.NewLogGroup(cfg)
	var b bytes.Buffer
	logger.SetAllOutput(&b)

	r := ai.NewLogReporter(logger, cfg)
	r.ReportProgress(ai.Progress{Function: "worker", CallDepth: 2, MaxCallDepth: 3, Visits: 7,
		FunctionEntries: 4, FunctionExits: 2})
	out := b.String()
	assert.Contains(t, out, "7 locations visited, analysing worker")
	assert.Contains(t, out, "call depth 2 (max 3)")
	assert.NotContains(t, out, "function entries")
}

func TestProgressFromConfig(t *testing.T) {
	cfg := config.NewDefault()
	cfg.ReportProgress = true
	cfg.ReportFunctionCounts = true
	logger := config.NewLogGroup(cfg)
	var b bytes.Buffer
	logger.SetAllOutput(&b)

	p := parse(t, diamond)
	e := ai.NewEngine(p, newPreds, ai.WithConfig(cfg, logger), ai.WithClock(tick()))
	require.NoError(t, e.RunProgram())
	assert.Contains(t, b.String(), "5 locations visited")
	assert.Contains(t, b.String(), "1 function entries, 0 function exits")
}
