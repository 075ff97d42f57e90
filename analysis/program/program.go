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

// Package program contains the goto-program representation analysed by the abstract interpreter: a dense arena
// of instructions indexed by Location, grouped into functions whose bodies are contiguous and end with an
// EndFunction instruction.
package program

import (
	"errors"
	"fmt"
	"strings"

	fn "github.com/awslabs/ar-go-absint/internal/funcutil"
)

// ErrInvalidProgram is returned by Validate when a structural invariant of the program is violated
var ErrInvalidProgram = errors.New("invalid program")

// Location is the index of an instruction in the program. Locations are totally ordered by program order.
type Location int

// Kind is the kind of an instruction
type Kind int

// Instruction kinds
const (
	Skip Kind = iota
	Assign
	Decl
	Dead
	Assume
	Assert
	Goto
	FunctionCall
	Return
	EndFunction
	StartThread
	EndThread
	AtomicBegin
	AtomicEnd
)

var kindNames = [...]string{
	Skip:         "SKIP",
	Assign:       "ASSIGN",
	Decl:         "DECL",
	Dead:         "DEAD",
	Assume:       "ASSUME",
	Assert:       "ASSERT",
	Goto:         "GOTO",
	FunctionCall: "FUNCTION_CALL",
	Return:       "RETURN",
	EndFunction:  "END_FUNCTION",
	StartThread:  "START_THREAD",
	EndThread:    "END_THREAD",
	AtomicBegin:  "ATOMIC_BEGIN",
	AtomicEnd:    "ATOMIC_END",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// SourceLocation is a position in the file the program was read from. The zero value means unknown.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// IsKnown returns true if the source location has a line
func (s SourceLocation) IsKnown() bool {
	return s.Line > 0
}

func (s SourceLocation) String() string {
	if !s.IsKnown() {
		return ""
	}
	if s.File == "" {
		return fmt.Sprintf("line %d", s.Line)
	}
	return fmt.Sprintf("file %s line %d", s.File, s.Line)
}

// Call is the payload of a FunctionCall instruction
type Call struct {
	// Lhs receives the return value, nil if the value is discarded
	Lhs Expr
	// Function is a *Symbol for direct calls. Any other expression is an indirect call.
	Function Expr
	Args     []Expr
}

// CalleeName returns the name of the function called, and false if the call is indirect.
func (c *Call) CalleeName() (string, bool) {
	if s, ok := c.Function.(*Symbol); ok {
		return s.Name, true
	}
	return "", false
}

// Instruction is one node of the control-flow graph. Which fields are set depends on the Kind:
//
// - Assign: Lhs = Rhs
//
// - Decl, Dead: Lhs is the symbol declared or going out of scope
//
// - Assume, Assert: Guard
//
// - Goto: Targets, taken when Guard holds (a nil Guard is true)
//
// - FunctionCall: Call
//
// - Return: Rhs is the returned value, or nil
//
// - StartThread: Targets holds the single location where the new thread starts
type Instruction struct {
	Kind     Kind
	Loc      Location
	Function string
	Lhs      Expr
	Rhs      Expr
	Guard    Expr
	Targets  []Location
	Call     *Call
	Source   SourceLocation
}

func (i *Instruction) String() string {
	switch i.Kind {
	case Skip:
		return "skip"
	case Assign:
		return fmt.Sprintf("%s = %s", i.Lhs, i.Rhs)
	case Decl:
		return fmt.Sprintf("decl %s", i.Lhs)
	case Dead:
		return fmt.Sprintf("dead %s", i.Lhs)
	case Assume:
		return fmt.Sprintf("assume %s", i.Guard)
	case Assert:
		return fmt.Sprintf("assert %s", i.Guard)
	case Goto:
		targets := strings.Join(fn.Map(i.Targets, func(l Location) string { return fmt.Sprintf("%d", l) }), ", ")
		if IsConstTrue(i.Guard) {
			return "goto " + targets
		}
		return fmt.Sprintf("goto %s if %s", targets, i.Guard)
	case FunctionCall:
		args := strings.Join(fn.Map(i.Call.Args, Expr.String), ", ")
		callee := i.Call.Function.String()
		if i.Call.Lhs != nil {
			return fmt.Sprintf("call %s = %s(%s)", i.Call.Lhs, callee, args)
		}
		return fmt.Sprintf("call %s(%s)", callee, args)
	case Return:
		if i.Rhs == nil {
			return "return"
		}
		return "return " + i.Rhs.String()
	case EndFunction:
		return "end_function"
	case StartThread:
		return fmt.Sprintf("start_thread %d", i.Targets[0])
	case EndThread:
		return "end_thread"
	case AtomicBegin:
		return "atomic_begin"
	case AtomicEnd:
		return "atomic_end"
	}
	return i.Kind.String()
}

// Function is an entry of the call table. Body is empty for functions that are only declared.
type Function struct {
	Name   string
	Params []*Symbol
	Body   []Location
	Source SourceLocation
}

// BodyAvailable returns true if the function has a body that can be analysed
func (f *Function) BodyAvailable() bool {
	return len(f.Body) > 0
}

// Entry returns the first instruction of the body. The function must have a body.
func (f *Function) Entry() Location {
	return f.Body[0]
}

// Exit returns the EndFunction instruction of the body. The function must have a body.
func (f *Function) Exit() Location {
	return f.Body[len(f.Body)-1]
}

// Contains returns true if l is an instruction of the body of f
func (f *Function) Contains(l Location) bool {
	return len(f.Body) > 0 && f.Body[0] <= l && l <= f.Body[len(f.Body)-1]
}

// Program is a goto program: an instruction arena and a call table.
type Program struct {
	// Instructions is indexed by Location
	Instructions []*Instruction

	// Functions is the call table
	Functions map[string]*Function

	// FunctionNames is the order in which functions were declared
	FunctionNames []string

	// EntryPoint is the name of the function where whole program analyses start
	EntryPoint string

	Globals []*Symbol
}

// NumLocations returns the number of instructions of the program
func (p *Program) NumLocations() int {
	return len(p.Instructions)
}

// Instr returns the instruction at location l
func (p *Program) Instr(l Location) *Instruction {
	return p.Instructions[l]
}

// Function returns the function with the given name
func (p *Program) Function(name string) (*Function, bool) {
	f, ok := p.Functions[name]
	return f, ok
}

// FunctionAt returns the function containing location l
func (p *Program) FunctionAt(l Location) *Function {
	return p.Functions[p.Instructions[l].Function]
}

// OrderedFunctions returns the functions in declaration order
func (p *Program) OrderedFunctions() []*Function {
	return fn.Map(p.FunctionNames, func(name string) *Function { return p.Functions[name] })
}

// Successors returns the successors of the instruction at l, in order and with duplicates preserved.
func (p *Program) Successors(l Location) []Location {
	i := p.Instructions[l]
	next := l + 1
	switch i.Kind {
	case Goto:
		if IsConstFalse(i.Guard) {
			return []Location{next}
		}
		succs := append([]Location{}, i.Targets...)
		if !IsConstTrue(i.Guard) {
			succs = append(succs, next)
		}
		return succs
	case Assume:
		if IsConstFalse(i.Guard) {
			return nil
		}
		return []Location{next}
	case Return:
		return []Location{p.FunctionAt(l).Exit()}
	case StartThread:
		return []Location{i.Targets[0], next}
	case EndFunction, EndThread:
		return nil
	default:
		return []Location{next}
	}
}

// Validate checks the structural invariants of the program: every location holds the instruction with that
// location, every body is contiguous and ends with its only EndFunction, and jump targets stay inside the function.
func (p *Program) Validate() error {
	covered := 0
	for _, name := range p.FunctionNames {
		f, ok := p.Functions[name]
		if !ok || f.Name != name {
			return fmt.Errorf("%w: function %q is not in the call table", ErrInvalidProgram, name)
		}
		if !f.BodyAvailable() {
			continue
		}
		for k, l := range f.Body {
			if int(l) < 0 || int(l) >= len(p.Instructions) {
				return fmt.Errorf("%w: location %d of %s is out of range", ErrInvalidProgram, l, name)
			}
			if k > 0 && l != f.Body[k-1]+1 {
				return fmt.Errorf("%w: body of %s is not contiguous at %d", ErrInvalidProgram, name, l)
			}
			instr := p.Instructions[l]
			if instr.Loc != l || instr.Function != name {
				return fmt.Errorf("%w: instruction at %d does not belong to %s", ErrInvalidProgram, l, name)
			}
			if (instr.Kind == EndFunction) != (k == len(f.Body)-1) {
				return fmt.Errorf("%w: body of %s must end with its only end_function (at %d)",
					ErrInvalidProgram, name, l)
			}
			for _, t := range instr.Targets {
				if !f.Contains(t) {
					return fmt.Errorf("%w: target %d of instruction %d is outside of %s",
						ErrInvalidProgram, t, l, name)
				}
			}
			if (instr.Kind == Goto || instr.Kind == StartThread) && len(instr.Targets) == 0 {
				return fmt.Errorf("%w: %s at %d has no target", ErrInvalidProgram, instr.Kind, l)
			}
			if instr.Kind == FunctionCall && (instr.Call == nil || instr.Call.Function == nil) {
				return fmt.Errorf("%w: call at %d has no function", ErrInvalidProgram, l)
			}
		}
		covered += len(f.Body)
	}
	if covered != len(p.Instructions) {
		return fmt.Errorf("%w: %d instructions do not belong to any function",
			ErrInvalidProgram, len(p.Instructions)-covered)
	}
	if p.EntryPoint != "" {
		if _, ok := p.Functions[p.EntryPoint]; !ok {
			return fmt.Errorf("%w: entry point %q is not defined", ErrInvalidProgram, p.EntryPoint)
		}
	}
	return nil
}

// String returns a listing of the program, one instruction per line prefixed by its location.
func (p *Program) String() string {
	var b strings.Builder
	for _, g := range p.Globals {
		fmt.Fprintf(&b, "global %s;\n", g.Name)
	}
	for _, f := range p.OrderedFunctions() {
		params := strings.Join(fn.Map(f.Params, func(s *Symbol) string { return s.Name }), ", ")
		if !f.BodyAvailable() {
			fmt.Fprintf(&b, "extern func %s(%s);\n", f.Name, params)
			continue
		}
		fmt.Fprintf(&b, "func %s(%s) {\n", f.Name, params)
		for _, l := range f.Body {
			fmt.Fprintf(&b, "  %4d: %s\n", l, p.Instructions[l])
		}
		b.WriteString("}\n")
	}
	if p.EntryPoint != "" {
		fmt.Fprintf(&b, "entry %s;\n", p.EntryPoint)
	}
	return b.String()
}
