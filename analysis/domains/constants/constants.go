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

// Package constants implements a constant propagation domain: each variable is either a known integer constant or
// unknown (top). The domain models parameter passing and return values, and only shares global variables between
// threads.
package constants

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/awslabs/ar-go-absint/analysis/ai"
	"github.com/awslabs/ar-go-absint/analysis/program"
	fn "github.com/awslabs/ar-go-absint/internal/funcutil"
	"golang.org/x/exp/maps"
)

// State maps symbol identifiers to their constant value. A symbol without an entry is unknown.
type State struct {
	bottom bool
	values map[string]int64
}

// New returns a bottom state
func New() *State {
	return &State{bottom: true, values: map[string]int64{}}
}

// NewEngine returns an engine running the constant propagation over p
func NewEngine(p *program.Program, options ...ai.Option) *ai.Engine[*State] {
	return ai.NewEngine(p, New, options...)
}

// NewConcurrencyAwareEngine returns a concurrency-aware engine running the constant propagation over p
func NewConcurrencyAwareEngine(p *program.Program, isThreaded func(program.Location) bool,
	options ...ai.Option) *ai.ConcurrencyAwareEngine[*State] {
	return ai.NewConcurrencyAwareEngine(p, New, isThreaded, options...)
}

func isGlobal(id string) bool {
	return !strings.ContainsAny(id, ":#")
}

// Value returns the constant value of the symbol with the given identifier, and false if it is not known.
func (s *State) Value(id string) (int64, bool) {
	if s.bottom {
		return 0, false
	}
	v, ok := s.values[id]
	return v, ok
}

// Symbols returns the identifiers of the symbols with a known value, sorted
func (s *State) Symbols() []string {
	return fn.SortedKeys(s.values)
}

// IsBottom returns true if the location is unreachable
func (s *State) IsBottom() bool {
	return s.bottom
}

// IsTop returns true if no symbol has a known value
func (s *State) IsTop() bool {
	return !s.bottom && len(s.values) == 0
}

// MakeBottom sets the state to bottom
func (s *State) MakeBottom() {
	s.bottom = true
	s.values = map[string]int64{}
}

// MakeTop sets the state to top
func (s *State) MakeTop() {
	s.bottom = false
	s.values = map[string]int64{}
}

// MakeEntry sets the state to top: nothing is known about the inputs of the program
func (s *State) MakeEntry() {
	s.MakeTop()
}

// Copy returns a deep copy of the state
func (s *State) Copy() *State {
	return &State{bottom: s.bottom, values: maps.Clone(s.values)}
}

// Merge joins other into s. A symbol stays constant only if it has the same value in both states.
func (s *State) Merge(other *State, _, _ program.Location) bool {
	if other.bottom {
		return false
	}
	if s.bottom {
		s.bottom = false
		s.values = maps.Clone(other.values)
		return true
	}
	return s.join(other, func(string) bool { return true })
}

// MergeShared joins the global symbols of other into s. The local symbols of s are unchanged.
func (s *State) MergeShared(other *State, _, _ program.Location) bool {
	if other.bottom {
		return false
	}
	if s.bottom {
		s.bottom = false
		s.values = map[string]int64{}
		for id, v := range other.values {
			if isGlobal(id) {
				s.values[id] = v
			}
		}
		return true
	}
	return s.join(other, isGlobal)
}

func (s *State) join(other *State, include func(string) bool) bool {
	changed := false
	for id, v := range s.values {
		if !include(id) {
			continue
		}
		if w, ok := other.values[id]; !ok || w != v {
			delete(s.values, id)
			changed = true
		}
	}
	return changed
}

// MergeReturn restores the locals of the caller from the call site, except the one receiving the return value.
// The globals are those of the callee's exit, and the callee's entry state is not needed.
func (s *State) MergeReturn(callSite *State, _ *State, _, to program.Location, oracle ai.Oracle[*State]) {
	if callSite.bottom {
		s.MakeBottom()
		return
	}
	if s.bottom {
		return
	}
	lhs := ""
	if call := oracle.Program().Instr(to - 1); call.Kind == program.FunctionCall && call.Call.Lhs != nil {
		if sym, ok := call.Call.Lhs.(*program.Symbol); ok {
			lhs = sym.ID()
		}
	}
	for id, v := range callSite.values {
		if !isGlobal(id) && id != lhs {
			s.values[id] = v
		}
	}
}

// Transform applies the instruction at from to the state, for the edge from -> to
func (s *State) Transform(from, to program.Location, oracle ai.Oracle[*State]) {
	if s.bottom {
		return
	}
	t := &transformer{state: s, program: oracle.Program()}
	program.InstrSwitch(t, oracle.Program().Instr(from), to)
}

// ToPredicate returns the state as a boolean expression over the symbols
func (s *State) ToPredicate() string {
	if s.bottom {
		return "FALSE"
	}
	if len(s.values) == 0 {
		return "TRUE"
	}
	return strings.Join(fn.Map(s.Symbols(), func(id string) string {
		return fmt.Sprintf("%s == %d", id, s.values[id])
	}), " && ")
}

func (s *State) String() string {
	return s.ToPredicate()
}

// OutputText writes one line per known symbol
func (s *State) OutputText(w io.Writer) error {
	switch {
	case s.bottom:
		_, err := io.WriteString(w, "BOTTOM\n")
		return err
	case len(s.values) == 0:
		_, err := io.WriteString(w, "TOP\n")
		return err
	}
	for _, id := range s.Symbols() {
		if _, err := fmt.Fprintf(w, "%s = %d\n", id, s.values[id]); err != nil {
			return err
		}
	}
	return nil
}

// OutputJSON returns "BOTTOM", "TOP", or an object mapping symbols to values
func (s *State) OutputJSON() any {
	switch {
	case s.bottom:
		return "BOTTOM"
	case len(s.values) == 0:
		return "TOP"
	}
	return maps.Clone(s.values)
}

// OutputXML returns a state element with one value element per known symbol
func (s *State) OutputXML() ai.XMLNode {
	node := ai.XMLNode{
		XMLName: xml.Name{Local: "state"},
		Attrs:   []xml.Attr{{Name: xml.Name{Local: "bottom"}, Value: strconv.FormatBool(s.bottom)}},
	}
	for _, id := range s.Symbols() {
		node.Children = append(node.Children, ai.XMLNode{
			XMLName: xml.Name{Local: "value"},
			Attrs:   []xml.Attr{{Name: xml.Name{Local: "symbol"}, Value: id}},
			Text:    strconv.FormatInt(s.values[id], 10),
		})
	}
	return node
}
