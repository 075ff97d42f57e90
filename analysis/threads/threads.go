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

// Package threads computes which locations of a program may run concurrently with another thread. The result is
// the predicate used by the concurrency-aware abstract interpreter to select the locations receiving the shared
// state.
package threads

import (
	"fmt"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/program"
	fn "github.com/awslabs/ar-go-absint/internal/funcutil"
	"github.com/willf/bitset"
)

// AnalysisResult contains all the information resulting from the Analyze function
type AnalysisResult struct {
	Program *program.Program

	// Ids contains the locations where threads start. Ids[0] is the main thread, which starts at the entry point.
	// Threads started from the configuration's thread entries start at the entry of the function.
	Ids []program.Location

	// ThreadStarts maps start_thread instructions to their index in Ids. The indices are >= 1.
	ThreadStarts map[program.Location]uint32

	// Colors maps every reached location to the set of threads it may be executed by
	Colors map[program.Location]map[uint32]bool

	// Threaded contains the locations that may execute while another thread is alive
	Threaded *bitset.BitSet

	// Reached contains the locations reachable from the entry point or a thread entry
	Reached *bitset.BitSet
}

// IsThreaded returns true if l may run concurrently with another thread
func (r AnalysisResult) IsThreaded(l program.Location) bool {
	return l >= 0 && r.Threaded.Test(uint(l))
}

// NumThreaded returns the number of threaded locations
func (r AnalysisResult) NumThreaded() int {
	return int(r.Threaded.Count())
}

// ThreadEntries returns the first location of every thread other than the main thread: the targets of the
// start_thread instructions and the entries of the functions configured as thread entries.
func (r AnalysisResult) ThreadEntries() []program.Location {
	var entries []program.Location
	for i, id := range r.Ids {
		if i == 0 {
			continue
		}
		if start, ok := r.ThreadStarts[id]; ok && start == uint32(i) {
			entries = append(entries, r.Program.Instr(id).Targets[0])
		} else {
			entries = append(entries, id)
		}
	}
	return entries
}

// ThreadedFunctions returns the names of the functions containing at least one threaded location, sorted
func (r AnalysisResult) ThreadedFunctions() []string {
	names := map[string]bool{}
	for i, ok := r.Threaded.NextSet(0); ok; i, ok = r.Threaded.NextSet(i + 1) {
		names[r.Program.Instr(program.Location(i)).Function] = true
	}
	return fn.SetToOrderedSlice(names)
}

// FunctionColors returns, for each reached function, the set of threads that may execute some of its locations
func (r AnalysisResult) FunctionColors() map[string]map[uint32]bool {
	res := map[string]map[uint32]bool{}
	for l, colors := range r.Colors {
		name := r.Program.Instr(l).Function
		if res[name] == nil {
			res[name] = map[uint32]bool{}
		}
		res[name] = fn.Union(res[name], colors)
	}
	return res
}

// Analyze runs the thread analysis on the program with the configuration provided.
//
// The analysis consists in:
//
// - a first pass to collect all the start_thread instructions, and the thread entries of the configuration
//
// - a fixpoint marking every location with the threads it may run in, and whether another thread may be alive
func Analyze(logger *config.LogGroup, cfg *config.Config, p *program.Program) (AnalysisResult, error) {
	entryName := p.EntryPoint
	if cfg.EntryPoint != "" {
		entryName = cfg.EntryPoint
	}
	entry, ok := p.Function(entryName)
	if !ok {
		return AnalysisResult{}, fmt.Errorf("entry point %q is not defined", entryName)
	}

	n := uint(p.NumLocations())
	res := AnalysisResult{
		Program:      p,
		Ids:          []program.Location{-1},
		ThreadStarts: map[program.Location]uint32{},
		Colors:       map[program.Location]map[uint32]bool{},
		Threaded:     bitset.New(n),
		Reached:      bitset.New(n),
	}

	for _, instr := range p.Instructions {
		if instr.Kind == program.StartThread {
			res.ThreadStarts[instr.Loc] = uint32(len(res.Ids))
			res.Ids = append(res.Ids, instr.Loc)
			logger.Debugf("Thread %d started at %d in %s (%s)", len(res.Ids)-1, instr.Loc, instr.Function,
				instr.Source)
		}
	}

	var entries []*program.Function
	for _, name := range cfg.ThreadEntries {
		f, ok := p.Function(name)
		if !ok {
			return AnalysisResult{}, fmt.Errorf("thread entry %q is not defined", name)
		}
		if !f.BodyAvailable() {
			logger.Warnf("Thread entry %s has no body", name)
			continue
		}
		entries = append(entries, f)
	}

	// the thread entries of the configuration run alongside the main thread from the start
	fp := &fixpoint{result: &res, returnSites: map[string][]program.Location{}}
	if entry.BodyAvailable() {
		res.Ids[0] = entry.Entry()
		fp.propagate(entry.Entry(), map[uint32]bool{0: true}, len(entries) > 0)
	}
	for _, f := range entries {
		id := uint32(len(res.Ids))
		res.Ids = append(res.Ids, f.Entry())
		fp.propagate(f.Entry(), map[uint32]bool{id: true}, true)
	}
	fp.run(logger)
	logger.Debugf("%d threaded locations out of %d reached", res.Threaded.Count(), res.Reached.Count())
	return res, nil
}

// fixpoint propagates colors and the threaded flag along the control flow. A location is put into the queue every
// time its colors or its flag change.
type fixpoint struct {
	result *AnalysisResult
	que    []program.Location

	// returnSites maps functions to the locations following the calls to them
	returnSites map[string][]program.Location
}

func (fp *fixpoint) propagate(l program.Location, colors map[uint32]bool, threaded bool) {
	r := fp.result
	add := false
	if !r.Reached.Test(uint(l)) {
		r.Reached.Set(uint(l))
		r.Colors[l] = map[uint32]bool{}
		add = true
	}
	if threaded && !r.Threaded.Test(uint(l)) {
		r.Threaded.Set(uint(l))
		add = true
	}
	for id := range colors {
		if !r.Colors[l][id] {
			r.Colors[l][id] = true
			add = true
		}
	}
	if add {
		fp.que = append(fp.que, l)
	}
}

func (fp *fixpoint) run(logger *config.LogGroup) {
	r := fp.result
	p := r.Program
	for len(fp.que) != 0 {
		l := fp.que[0]
		fp.que = fp.que[1:]
		instr := p.Instr(l)
		colors := r.Colors[l]
		threaded := r.Threaded.Test(uint(l))

		switch instr.Kind {
		case program.StartThread:
			// the new thread only runs under its own color, and both threads are now concurrent
			fp.propagate(instr.Targets[0], map[uint32]bool{r.ThreadStarts[l]: true}, true)
			fp.propagate(l+1, colors, true)

		case program.FunctionCall:
			callee := fp.callee(instr, logger)
			if callee == nil {
				fp.propagate(l+1, colors, threaded)
				continue
			}
			if !fn.Contains(fp.returnSites[callee.Name], l+1) {
				fp.returnSites[callee.Name] = append(fp.returnSites[callee.Name], l+1)
			}
			fp.propagate(callee.Entry(), colors, threaded)
			if exit := callee.Exit(); r.Reached.Test(uint(exit)) {
				fp.propagate(l+1, colors, threaded || r.Threaded.Test(uint(exit)))
			}

		case program.EndFunction:
			for _, ret := range fp.returnSites[instr.Function] {
				site := ret - 1
				if r.Reached.Test(uint(site)) {
					fp.propagate(ret, r.Colors[site], threaded || r.Threaded.Test(uint(site)))
				}
			}

		default:
			for _, succ := range p.Successors(l) {
				fp.propagate(succ, colors, threaded)
			}
		}
	}
}

// callee returns the function called with a body, or nil if the call does not enter a body
func (fp *fixpoint) callee(instr *program.Instruction, logger *config.LogGroup) *program.Function {
	name, direct := instr.Call.CalleeName()
	if !direct {
		logger.Warnf("Indirect call at %d is not followed by the thread analysis", instr.Loc)
		return nil
	}
	f, ok := fp.result.Program.Function(name)
	if !ok || !f.BodyAvailable() {
		return nil
	}
	return f
}
