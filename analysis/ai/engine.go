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
	"time"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/program"
)

// Option configures an engine
type Option func(*settings)

type settings struct {
	logger     *config.LogGroup
	reporter   ProgressReporter
	interval   time.Duration
	now        func() time.Time
	initialize func(p *program.Program)
	finalize   func()

	threadEntries []program.Location
}

// WithLogger sets the logger of the engine
func WithLogger(logger *config.LogGroup) Option {
	return func(s *settings) { s.logger = logger }
}

// WithProgress sets a reporter receiving progress snapshots at most once per interval
func WithProgress(reporter ProgressReporter, interval time.Duration) Option {
	return func(s *settings) {
		s.reporter = reporter
		s.interval = interval
	}
}

// WithClock replaces the clock used for progress reports
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithInitialize sets a function called before each run of the analysis, after the program has been validated
func WithInitialize(f func(p *program.Program)) Option {
	return func(s *settings) { s.initialize = f }
}

// WithFinalize sets a function called after each successful run of the analysis
func WithFinalize(f func()) Option {
	return func(s *settings) { s.finalize = f }
}

// WithThreadEntries sets the locations where threads start. The concurrency-aware engine analyses them even when
// the sequential analysis does not reach them.
func WithThreadEntries(locations ...program.Location) Option {
	return func(s *settings) { s.threadEntries = append(s.threadEntries, locations...) }
}

// WithConfig sets the logger, and enables progress reports on that logger if the config asks for them.
func WithConfig(cfg *config.Config, logger *config.LogGroup) Option {
	return func(s *settings) {
		s.logger = logger
		if cfg.ReportProgress {
			s.reporter = NewLogReporter(logger, cfg)
			s.interval = cfg.ProgressInterval()
		}
	}
}

// Engine computes a fixed point of the domain D over a program. The results are stored per location and can be
// queried once a Run method has returned.
type Engine[D Domain[D]] struct {
	program  *program.Program
	newState func() D
	states   map[program.Location]D
	settings settings
	progress progressTracker
}

// NewEngine returns an engine analysing p with the domain D. newState must return a bottom state.
func NewEngine[D Domain[D]](p *program.Program, newState func() D, options ...Option) *Engine[D] {
	s := settings{now: time.Now}
	for _, option := range options {
		option(&s)
	}
	if s.logger == nil {
		s.logger = config.NewLogGroup(config.NewDefault())
	}
	e := &Engine[D]{
		program:  p,
		newState: newState,
		states:   map[program.Location]D{},
		settings: s,
		progress: progressTracker{reporter: s.reporter, interval: s.interval, now: s.now},
	}
	e.progress.reset()
	return e
}

// Program returns the program analysed by the engine
func (e *Engine[D]) Program() *program.Program {
	return e.program
}

// Lookup returns the state stored at location l. The state is owned by the engine and must not be modified.
func (e *Engine[D]) Lookup(l program.Location) (D, error) {
	s, ok := e.states[l]
	if !ok {
		var zero D
		return zero, fmt.Errorf("%w: %d", ErrStateNotFound, l)
	}
	return s, nil
}

// StateBefore returns a copy of the state before location l. Locations that were not reached are bottom.
func (e *Engine[D]) StateBefore(l program.Location) D {
	if s, ok := e.states[l]; ok {
		return s.Copy()
	}
	return e.bottom()
}

// StateAfter returns a copy of the state after the instruction at l, which is the state before the next
// instruction. There is no state after the end of a function.
func (e *Engine[D]) StateAfter(l program.Location) (D, error) {
	if int(l) < 0 || int(l) >= e.program.NumLocations() {
		var zero D
		return zero, fmt.Errorf("%w: location %d is not in the program", ErrMalformedProgram, l)
	}
	if e.program.Instr(l).Kind == program.EndFunction {
		var zero D
		return zero, fmt.Errorf("%w: no state after the end of function %s",
			ErrMalformedProgram, e.program.Instr(l).Function)
	}
	return e.StateBefore(l + 1), nil
}

// NumStates returns the number of locations that have a state
func (e *Engine[D]) NumStates() int {
	return len(e.states)
}

// Progress returns the counters of the last run
func (e *Engine[D]) Progress() Progress {
	p := e.progress.current
	p.Elapsed = e.settings.now().Sub(e.progress.start)
	return p
}

// Clear removes all the states and resets the progress counters
func (e *Engine[D]) Clear() {
	e.states = map[program.Location]D{}
	e.progress.reset()
}

// RunProgram analyses the whole program, starting from the entry point with the entry state. Calls are analysed
// interprocedurally.
func (e *Engine[D]) RunProgram() error {
	entry, err := e.prepare(e.program.EntryPoint)
	if err != nil {
		return err
	}
	if err := e.sequentialFixedpoint(entry); err != nil {
		return err
	}
	e.finish()
	return nil
}

// RunFunction analyses a single function, starting from its first instruction with the entry state. Calls are not
// followed: they are ordinary edges to the next instruction, and the domain must model the effect of the callee.
func (e *Engine[D]) RunFunction(name string) error {
	f, err := e.prepare(name)
	if err != nil {
		return err
	}
	if f.BodyAvailable() {
		e.entryState(f)
		if _, err := e.fixedpoint(f, false, newWorklist(f.Entry()), nil); err != nil {
			return err
		}
	}
	e.finish()
	return nil
}

func (e *Engine[D]) prepare(name string) (*program.Function, error) {
	if err := e.program.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProgram, err)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no entry point", ErrMalformedProgram)
	}
	f, ok := e.program.Function(name)
	if !ok {
		return nil, fmt.Errorf("%w: function %s is not defined", ErrUnresolvedCall, name)
	}
	e.progress.reset()
	if e.settings.initialize != nil {
		e.settings.initialize(e.program)
	}
	e.settings.logger.Debugf("Starting abstract interpretation from %s", name)
	return f, nil
}

func (e *Engine[D]) finish() {
	if e.settings.finalize != nil {
		e.settings.finalize()
	}
	e.settings.logger.Debugf("Abstract interpretation done: %d locations visited, %d states",
		e.progress.current.Visits, len(e.states))
}

func (e *Engine[D]) entryState(f *program.Function) {
	e.state(f.Entry()).MakeEntry()
}

// sequentialFixedpoint runs the fixed point of the entry function, following calls
func (e *Engine[D]) sequentialFixedpoint(entry *program.Function) error {
	if !entry.BodyAvailable() {
		e.settings.logger.Warnf("Entry point %s has no body, nothing to analyse", entry.Name)
		return nil
	}
	e.entryState(entry)
	_, err := e.fixedpoint(entry, true, newWorklist(entry.Entry()), nil)
	return err
}

func (e *Engine[D]) bottom() D {
	s := e.newState()
	if !s.IsBottom() {
		s.MakeBottom()
	}
	return s
}

// state returns the state stored at l, creating a bottom state if l has none
func (e *Engine[D]) state(l program.Location) D {
	s, ok := e.states[l]
	if !ok {
		s = e.bottom()
		e.states[l] = s
	}
	return s
}

// frame is one fixed point computation over the body of a function. The frame of a callee records the call that
// started it, so that the return edge is followed when the callee's fixed point is done.
type frame struct {
	function *program.Function
	worklist *worklist
	newData  bool
	call     *pendingCall
}

type pendingCall struct {
	site   program.Location
	ret    program.Location
	callee *program.Function
}

// fixedpoint visits the locations of the worklist of f until it is empty, and returns true if any state changed.
// When interprocedural is true, calls to functions with a body start a nested fixed point over the callee. The
// optional after function is called after each location of f (not of its callees) has been visited.
func (e *Engine[D]) fixedpoint(f *program.Function, interprocedural bool, wl *worklist,
	after func(l program.Location)) (bool, error) {
	e.progress.enter(f.Name)
	e.settings.logger.Tracef("Enter %s", f.Name)
	stack := []*frame{{function: f, worklist: wl}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.worklist.isEmpty() {
			stack = stack[:len(stack)-1]
			e.progress.exit()
			e.settings.logger.Tracef("Exit %s", top.function.Name)
			if len(stack) == 0 {
				return top.newData, nil
			}
			caller := stack[len(stack)-1]
			if e.returnEdge(top.call) {
				caller.newData = true
				caller.worklist.insert(top.call.ret)
			}
			if after != nil && len(stack) == 1 {
				after(top.call.site)
			}
			continue
		}

		l, err := top.worklist.next()
		if err != nil {
			return top.newData, err
		}
		e.progress.visit()
		call, changed, err := e.visit(l, top.worklist, interprocedural)
		if err != nil {
			return false, err
		}
		top.newData = top.newData || changed
		if call != nil {
			// the callee's entry changed: its body must be analysed again before the return edge is followed
			stack = append(stack, &frame{function: call.callee, worklist: newWorklist(call.callee.Entry()), call: call})
			e.progress.enter(call.callee.Name)
			e.settings.logger.Tracef("Enter %s (call depth %d)", call.callee.Name, len(stack))
			continue
		}
		if after != nil && len(stack) == 1 {
			after(l)
		}
	}
	return false, nil
}

// visit computes the states flowing out of l and adds the locations whose state changed to the worklist. If a
// nested fixed point of a callee is needed, visit returns the pending call instead of following the return edge.
func (e *Engine[D]) visit(l program.Location, wl *worklist, interprocedural bool) (*pendingCall, bool, error) {
	instr := e.program.Instr(l)
	switch {
	case instr.Kind == program.FunctionCall && interprocedural:
		succs := e.program.Successors(l)
		if len(succs) != 1 || succs[0] != l+1 {
			return nil, false, fmt.Errorf("%w: the only successor of call %d must be the next instruction",
				ErrMalformedProgram, l)
		}
		callee, err := e.resolve(instr)
		if err != nil {
			return nil, false, err
		}
		ret := l + 1
		if !callee.BodyAvailable() {
			if e.visitEdge(l, ret) {
				wl.insert(ret)
				return nil, true, nil
			}
			return nil, false, nil
		}
		call := &pendingCall{site: l, ret: ret, callee: callee}
		if e.visitEdge(l, callee.Entry()) {
			return call, false, nil
		}
		if e.returnEdge(call) {
			wl.insert(ret)
			return nil, true, nil
		}
		return nil, false, nil

	case instr.Kind == program.EndFunction:
		return nil, false, nil

	default:
		changed := false
		for _, to := range e.program.Successors(l) {
			if e.visitEdge(l, to) {
				wl.insert(to)
				changed = true
			}
		}
		return nil, changed, nil
	}
}

func (e *Engine[D]) resolve(instr *program.Instruction) (*program.Function, error) {
	name, direct := instr.Call.CalleeName()
	if !direct {
		return nil, fmt.Errorf("%w: %s at %d", ErrIndirectCall, instr, instr.Loc)
	}
	f, ok := e.program.Function(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not in the call table (call at %d)", ErrUnresolvedCall, name, instr.Loc)
	}
	return f, nil
}

// visitEdge transforms a copy of the state at from along the edge to to, merges the result into the state at to,
// and returns true if that state changed.
func (e *Engine[D]) visitEdge(from, to program.Location) bool {
	next := e.state(from).Copy()
	next.Transform(from, to, e)
	return e.state(to).Merge(next, from, to)
}

// returnEdge follows the edge from the end of the callee to the return site. An unreachable exit contributes
// nothing: the call does not return.
func (e *Engine[D]) returnEdge(call *pendingCall) bool {
	callSite := e.state(call.site)
	if callSite.IsBottom() {
		return false
	}
	exit := call.callee.Exit()
	end, ok := e.states[exit]
	if !ok || end.IsBottom() {
		return false
	}
	next := end.Copy()
	next.Transform(exit, call.ret, e)
	if rm, isReturnMerger := any(next).(ReturnMerger[D]); isReturnMerger {
		rm.MergeReturn(callSite, e.StateBefore(call.callee.Entry()), exit, call.ret, e)
	}
	return e.state(call.ret).Merge(next, exit, call.ret)
}
