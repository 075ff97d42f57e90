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

package constants

import (
	"github.com/awslabs/ar-go-absint/analysis/program"
)

// Verdict is the status of an assertion under the constants abstraction
type Verdict int

const (
	// Unknown means the assertion may hold or fail
	Unknown Verdict = iota
	// Holds means the assertion holds in every execution that reaches it
	Holds
	// Fails means the assertion fails in every execution that reaches it
	Fails
	// Unreachable means no execution reaches the assertion
	Unreachable
)

func (v Verdict) String() string {
	switch v {
	case Holds:
		return "SUCCESS"
	case Fails:
		return "FAILURE"
	case Unreachable:
		return "UNREACHABLE"
	default:
		return "UNKNOWN"
	}
}

// Assertion is the verdict of one assert instruction
type Assertion struct {
	Location program.Location
	Instr    *program.Instruction
	Verdict  Verdict
}

// Check returns the verdict of guard in the state
func (s *State) Check(guard program.Expr) Verdict {
	if s.bottom {
		return Unreachable
	}
	v, ok := s.eval(guard)
	switch {
	case !ok:
		return Unknown
	case v != 0:
		return Holds
	default:
		return Fails
	}
}

// CheckAssertions returns the verdict of every assert instruction of p, in program order, given the state before
// each location.
func CheckAssertions(p *program.Program, stateBefore func(program.Location) *State) []Assertion {
	var res []Assertion
	for l := 0; l < p.NumLocations(); l++ {
		loc := program.Location(l)
		instr := p.Instr(loc)
		if instr.Kind != program.Assert {
			continue
		}
		res = append(res, Assertion{Location: loc, Instr: instr, Verdict: stateBefore(loc).Check(instr.Guard)})
	}
	return res
}
