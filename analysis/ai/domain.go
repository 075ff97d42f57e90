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
	"encoding/xml"
	"io"

	"github.com/awslabs/ar-go-absint/analysis/program"
)

// SharedLocation is the location of the synthetic node holding the shared state of the concurrency-aware analysis.
// It is passed as the from or to location when merging into or out of the shared state.
const SharedLocation program.Location = -1

// Oracle is the view of the engine that domains can query while transforming a state.
type Oracle[D any] interface {
	// Program returns the program being analysed
	Program() *program.Program

	// StateBefore returns a copy of the state before location l, bottom if l has not been reached
	StateBefore(l program.Location) D
}

// Domain is the contract of abstract states. D is the type implementing the domain, which should be a pointer
// type: the engine stores one D per location and mutates it in place through Merge.
//
// Merge must be monotone and the lattice must not have infinite ascending chains reachable by merging (or the domain
// must widen), otherwise the fixed point does not terminate. The engine does not check this.
type Domain[D any] interface {
	// IsBottom returns true if the state represents no concrete state (unreachable)
	IsBottom() bool

	// IsTop returns true if the state does not constrain the concrete states
	IsTop() bool

	// MakeBottom sets the state to bottom
	MakeBottom()

	// MakeTop sets the state to top
	MakeTop()

	// MakeEntry sets the state to the initial state at the first instruction of the analysis
	MakeEntry()

	// Transform updates the receiver, a copy of the state before from, into the state flowing along the edge from ->
	// to. For calls that are analysed interprocedurally, to is the entry of the callee, and for the return edge, from
	// is the end of the callee and to the instruction following the call.
	Transform(from, to program.Location, ai Oracle[D])

	// Merge joins other into the receiver, the state at to, and returns true iff the receiver changed.
	Merge(other D, from, to program.Location) bool

	// Copy returns a copy of the state that does not share mutable data with the receiver
	Copy() D
}

// ReturnMerger is implemented by domains that reconstruct the state after a call from three states: the state at the
// call site, the state at the entry of the callee, and the receiver, which is the exit state of the callee after
// the return edge has been transformed. The receiver is modified in place before being merged into the return site.
// Which parts of each state survive the call is up to the domain.
type ReturnMerger[D any] interface {
	MergeReturn(callSite D, calleeEntry D, from, to program.Location, ai Oracle[D])
}

// SharedMerger is implemented by domains that distinguish thread-local state from shared state. MergeShared must
// join only the part of other that is visible from other threads, and return true iff the receiver changed. Domains
// that do not implement SharedMerger are merged with Merge.
type SharedMerger[D any] interface {
	MergeShared(other D, from, to program.Location) bool
}

// TextOutputter is implemented by domains that can print themselves
type TextOutputter interface {
	OutputText(w io.Writer) error
}

// JSONOutputter is implemented by domains that have a JSON representation. The result must be marshallable by
// encoding/json.
type JSONOutputter interface {
	OutputJSON() any
}

// XMLOutputter is implemented by domains that have an XML representation
type XMLOutputter interface {
	OutputXML() XMLNode
}

// XMLNode is a generic XML element
type XMLNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []XMLNode  `xml:",any"`
}
