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

package reachability

import (
	"fmt"
	"io"

	"github.com/awslabs/ar-go-absint/analysis/program"
)

// Statistics summarizes the shape of a program
type Statistics struct {
	Functions          int `json:"functions"`
	DeclaredOnly       int `json:"declaredOnly"`
	ReachableFunctions int `json:"reachableFunctions"`
	RecursiveFunctions int `json:"recursiveFunctions"`
	Locations          int `json:"locations"`
	ReachableLocations int `json:"reachableLocations"`
	CallSites          int `json:"callSites"`
	IndirectCalls      int `json:"indirectCalls"`
	ExternCalls        int `json:"externCalls"`
	ThreadStarts       int `json:"threadStarts"`
	Assertions         int `json:"assertions"`
}

// ComputeStatistics returns the statistics of p. Reachability is computed from the entry point of p.
func ComputeStatistics(p *program.Program) (Statistics, error) {
	cg := NewCallGraph(p)
	reachable, err := cg.Reachable(p.EntryPoint)
	if err != nil {
		return Statistics{}, err
	}
	isReachable := map[string]bool{}
	for _, name := range reachable {
		isReachable[name] = true
	}

	stats := Statistics{
		Functions:          len(p.FunctionNames),
		ReachableFunctions: len(reachable),
		RecursiveFunctions: len(cg.RecursiveFunctions()),
		Locations:          p.NumLocations(),
	}
	for _, f := range p.OrderedFunctions() {
		if !f.BodyAvailable() {
			stats.DeclaredOnly++
			continue
		}
		if isReachable[f.Name] {
			stats.ReachableLocations += len(f.Body)
		}
		for _, l := range f.Body {
			instr := p.Instr(l)
			switch instr.Kind {
			case program.FunctionCall:
				stats.CallSites++
				name, direct := instr.Call.CalleeName()
				if !direct {
					stats.IndirectCalls++
				} else if callee, ok := p.Function(name); !ok || !callee.BodyAvailable() {
					stats.ExternCalls++
				}
			case program.StartThread:
				stats.ThreadStarts++
			case program.Assert:
				stats.Assertions++
			}
		}
	}
	return stats, nil
}

// WriteText prints the statistics, one per line
func (s Statistics) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, `Functions:            %d
  declared only:      %d
  reachable:          %d
  recursive:          %d
Locations:            %d
  reachable:          %d
Call sites:           %d
  indirect:           %d
  to extern:          %d
Thread starts:        %d
Assertions:           %d
`, s.Functions, s.DeclaredOnly, s.ReachableFunctions, s.RecursiveFunctions, s.Locations, s.ReachableLocations,
		s.CallSites, s.IndirectCalls, s.ExternCalls, s.ThreadStarts, s.Assertions)
	return err
}
