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

package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/awslabs/ar-go-absint/analysis/config"
)

// Progress is a snapshot of the state of a fixed point computation
type Progress struct {
	// Function is the function whose body is currently being analysed
	Function string

	// CallDepth is the number of nested fixed points currently running, MaxCallDepth the largest depth reached
	CallDepth    int
	MaxCallDepth int

	// FunctionEntries and FunctionExits count how many fixed points of function bodies were started and finished
	FunctionEntries int
	FunctionExits   int

	// Visits is the number of locations visited
	Visits int

	Elapsed time.Duration
}

// ProgressReporter receives progress snapshots during the analysis
type ProgressReporter interface {
	ReportProgress(p Progress)
}

// LogReporter reports progress on a logger, including only the counters enabled in the configuration
type LogReporter struct {
	Logger         *config.LogGroup
	CallDepth      bool
	FunctionCounts bool
}

// NewLogReporter returns a reporter printing progress at the info level
func NewLogReporter(logger *config.LogGroup, cfg *config.Config) *LogReporter {
	return &LogReporter{
		Logger:         logger,
		CallDepth:      cfg.ReportCallDepth,
		FunctionCounts: cfg.ReportFunctionCounts,
	}
}

// ReportProgress prints p
func (r *LogReporter) ReportProgress(p Progress) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%.1fs] %d locations visited, analysing %s", p.Elapsed.Seconds(), p.Visits, p.Function)
	if r.CallDepth {
		fmt.Fprintf(&b, ", call depth %d (max %d)", p.CallDepth, p.MaxCallDepth)
	}
	if r.FunctionCounts {
		fmt.Fprintf(&b, ", %d function entries, %d function exits", p.FunctionEntries, p.FunctionExits)
	}
	r.Logger.Infof("%s", b.String())
}

// progressTracker maintains the counters of the current analysis and forwards snapshots to the reporter no more
// often than the interval.
type progressTracker struct {
	reporter ProgressReporter
	interval time.Duration
	now      func() time.Time
	start    time.Time
	last     time.Time
	current  Progress
	stack    []string
}

func (t *progressTracker) reset() {
	t.current = Progress{}
	t.stack = nil
	t.start = t.now()
	t.last = t.start
}

func (t *progressTracker) enter(function string) {
	t.stack = append(t.stack, function)
	t.current.Function = function
	t.current.CallDepth = len(t.stack)
	if t.current.CallDepth > t.current.MaxCallDepth {
		t.current.MaxCallDepth = t.current.CallDepth
	}
	t.current.FunctionEntries++
}

func (t *progressTracker) exit() {
	if len(t.stack) > 0 {
		t.stack = t.stack[:len(t.stack)-1]
	}
	t.current.CallDepth = len(t.stack)
	if len(t.stack) > 0 {
		t.current.Function = t.stack[len(t.stack)-1]
	}
	t.current.FunctionExits++
}

func (t *progressTracker) visit() {
	t.current.Visits++
	if t.reporter == nil {
		return
	}
	now := t.now()
	if now.Sub(t.last) < t.interval {
		return
	}
	t.last = now
	p := t.current
	p.Elapsed = now.Sub(t.start)
	t.reporter.ReportProgress(p)
}
