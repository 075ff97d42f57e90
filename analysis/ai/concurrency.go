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
	"github.com/awslabs/ar-go-absint/analysis/program"
)

// ConcurrencyAwareEngine runs the sequential fixed point, and then approximates the interleavings of threads with a
// shared state summarizing the exits of every function that runs concurrently.
type ConcurrencyAwareEngine[D Domain[D]] struct {
	*Engine[D]
	isThreaded func(l program.Location) bool
	shared     D
}

// NewConcurrencyAwareEngine returns an engine for p. isThreaded returns true for the locations that may run
// concurrently with other threads. The entries of threads are set with WithThreadEntries.
func NewConcurrencyAwareEngine[D Domain[D]](p *program.Program, newState func() D,
	isThreaded func(l program.Location) bool, options ...Option) *ConcurrencyAwareEngine[D] {
	e := NewEngine(p, newState, options...)
	return &ConcurrencyAwareEngine[D]{
		Engine:     e,
		isThreaded: isThreaded,
		shared:     e.bottom(),
	}
}

// SharedState returns a copy of the shared state
func (c *ConcurrencyAwareEngine[D]) SharedState() D {
	return c.shared.Copy()
}

// Clear removes all the states, including the shared state
func (c *ConcurrencyAwareEngine[D]) Clear() {
	c.Engine.Clear()
	c.shared = c.bottom()
}

// RunProgram analyses the whole program sequentially from its entry point, and then runs the concurrent fixed point.
func (c *ConcurrencyAwareEngine[D]) RunProgram() error {
	entry, err := c.prepare(c.program.EntryPoint)
	if err != nil {
		return err
	}
	if err := c.sequentialFixedpoint(entry); err != nil {
		return err
	}
	if _, err := c.ConcurrentFixedpoint(); err != nil {
		return err
	}
	c.finish()
	return nil
}

// ConcurrentFixedpoint feeds the shared state into every reachable threaded location and analyses the program from
// there. The shared state joins the states of every threaded location, since another thread may observe any of
// them, and not only the exit states. Thread entries that the sequential analysis did not reach start from the
// entry state. The rounds stop when no state changes. It returns true if any state changed; running it again after
// it has returned does not change any state.
func (c *ConcurrencyAwareEngine[D]) ConcurrentFixedpoint() (bool, error) {
	changed := false
	for _, entry := range c.settings.threadEntries {
		if s, ok := c.states[entry]; !ok || s.IsBottom() {
			c.settings.logger.Debugf("Thread entry %d not reached sequentially, starting from the entry state", entry)
			c.state(entry).MakeEntry()
			changed = true
		}
	}

	var threaded []program.Location
	for l := 0; l < c.program.NumLocations(); l++ {
		if c.isThreaded(program.Location(l)) {
			threaded = append(threaded, program.Location(l))
		}
	}
	c.settings.logger.Debugf("Concurrent fixed point over %d threaded locations", len(threaded))

	publish := func(l program.Location) bool {
		s, ok := c.states[l]
		return ok && c.isThreaded(l) && c.mergeShared(c.shared, s, l, SharedLocation)
	}

	again := true
	rounds := 0
	for again {
		again = false
		rounds++
		for _, loc := range threaded {
			s, ok := c.states[loc]
			if !ok || s.IsBottom() {
				continue
			}
			if c.mergeShared(s, c.shared, SharedLocation, loc) {
				again = true
			}
			if publish(loc) {
				again = true
			}
			f := c.program.FunctionAt(loc)
			newData, err := c.fixedpoint(f, true, newWorklist(loc), func(l program.Location) {
				if publish(l) {
					again = true
				}
			})
			if err != nil {
				return true, err
			}
			again = again || newData
		}
		changed = changed || again
	}
	c.settings.logger.Debugf("Shared state stable after %d rounds", rounds)
	return changed, nil
}

func (c *ConcurrencyAwareEngine[D]) mergeShared(dst D, src D, from, to program.Location) bool {
	if sm, ok := any(dst).(SharedMerger[D]); ok {
		return sm.MergeShared(src, from, to)
	}
	return dst.Merge(src, from, to)
}
