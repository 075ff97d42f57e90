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

package program

import (
	"errors"
	"fmt"
)

// Builder constructs programs. Functions are laid out in the instruction arena in the order they are declared,
// each body followed by its EndFunction instruction. Jump targets are labels resolved when Build is called.
type Builder struct {
	globals     map[string]*Symbol
	globalOrder []*Symbol
	functions   map[string]*FunctionBuilder
	order       []string
	entry       string
	errs        []error
}

// FunctionBuilder appends instructions to the body of one function
type FunctionBuilder struct {
	parent  *Builder
	name    string
	params  []*Symbol
	vars    map[string]*Symbol
	instrs  []*Instruction
	targets [][]string
	labels  map[string]int
	source  SourceLocation
	decl    SourceLocation
	hasBody bool
}

// NewBuilder returns an empty program builder
func NewBuilder() *Builder {
	return &Builder{
		globals:   map[string]*Symbol{},
		functions: map[string]*FunctionBuilder{},
	}
}

// Global declares a global symbol and returns it. Declaring the same global twice returns the same symbol.
func (b *Builder) Global(name string) *Symbol {
	if g, ok := b.globals[name]; ok {
		return g
	}
	g := NewGlobal(name)
	b.globals[name] = g
	b.globalOrder = append(b.globalOrder, g)
	return g
}

// Extern declares a function without a body
func (b *Builder) Extern(name string, params ...string) *FunctionBuilder {
	if f, ok := b.functions[name]; ok {
		return f
	}
	f := b.newFunction(name, params)
	return f
}

// Function declares a function with a body and returns the builder for its body. A function can be declared
// extern first and defined later, but it can be defined only once.
func (b *Builder) Function(name string, params ...string) *FunctionBuilder {
	if f, ok := b.functions[name]; ok {
		if f.hasBody {
			b.errs = append(b.errs, fmt.Errorf("function %s is defined twice", name))
			// the duplicate body is built in a detached builder and dropped
			dup := &FunctionBuilder{parent: b, name: name, vars: map[string]*Symbol{}, labels: map[string]int{}}
			dup.hasBody = true
			return dup
		}
		f.hasBody = true
		f.params = nil
		f.vars = map[string]*Symbol{}
		for _, p := range params {
			f.Param(p)
		}
		return f
	}
	f := b.newFunction(name, params)
	f.hasBody = true
	return f
}

func (b *Builder) newFunction(name string, params []string) *FunctionBuilder {
	f := &FunctionBuilder{
		parent: b,
		name:   name,
		vars:   map[string]*Symbol{},
		labels: map[string]int{},
	}
	for _, p := range params {
		f.Param(p)
	}
	b.functions[name] = f
	b.order = append(b.order, name)
	return f
}

// SetEntryPoint sets the entry point of the program. When no entry point is set, main is used if it exists.
func (b *Builder) SetEntryPoint(name string) {
	b.entry = name
}

// Build lays out the program, resolves labels and validates the result.
func (b *Builder) Build() (*Program, error) {
	p := &Program{
		Functions:     map[string]*Function{},
		FunctionNames: append([]string{}, b.order...),
		EntryPoint:    b.entry,
		Globals:       append([]*Symbol{}, b.globalOrder...),
	}
	errs := append([]error{}, b.errs...)
	for _, name := range b.order {
		fb := b.functions[name]
		f := &Function{Name: name, Params: fb.params, Source: fb.decl}
		p.Functions[name] = f
		if !fb.hasBody {
			continue
		}
		base := Location(len(p.Instructions))
		for k, instr := range fb.instrs {
			instr.Loc = base + Location(k)
			instr.Function = name
			instr.Targets = nil
			for _, label := range fb.targets[k] {
				idx, ok := fb.labels[label]
				if !ok {
					errs = append(errs, fmt.Errorf("unknown label %s in function %s", label, name))
					continue
				}
				instr.Targets = append(instr.Targets, base+Location(idx))
			}
			p.Instructions = append(p.Instructions, instr)
			f.Body = append(f.Body, instr.Loc)
		}
		end := &Instruction{
			Kind:     EndFunction,
			Loc:      base + Location(len(fb.instrs)),
			Function: name,
			Source:   fb.source,
		}
		p.Instructions = append(p.Instructions, end)
		f.Body = append(f.Body, end.Loc)
	}
	if p.EntryPoint == "" {
		if _, ok := p.Functions["main"]; ok {
			p.EntryPoint = "main"
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the name of the function being built
func (f *FunctionBuilder) Name() string {
	return f.name
}

// Param adds a parameter to the function
func (f *FunctionBuilder) Param(name string) *Symbol {
	s := NewParam(f.name, name)
	f.params = append(f.params, s)
	f.vars[name] = s
	return s
}

// Local declares a local variable of the function. The local shadows any global with the same name.
func (f *FunctionBuilder) Local(name string) *Symbol {
	if s, ok := f.vars[name]; ok {
		return s
	}
	s := NewLocal(f.name, name)
	f.vars[name] = s
	return s
}

// Var resolves a variable name: parameters and locals first, then globals. Unknown names are implicitly
// declared as locals.
func (f *FunctionBuilder) Var(name string) *Symbol {
	if s, ok := f.vars[name]; ok {
		return s
	}
	if g, ok := f.parent.globals[name]; ok {
		return g
	}
	return f.Local(name)
}

// At sets the source location of the instructions added next
func (f *FunctionBuilder) At(s SourceLocation) *FunctionBuilder {
	f.source = s
	if !f.decl.IsKnown() {
		f.decl = s
	}
	return f
}

// Label marks the position of the next instruction. A label at the end of the body refers to the EndFunction.
func (f *FunctionBuilder) Label(name string) {
	if _, ok := f.labels[name]; ok {
		f.parent.errs = append(f.parent.errs, fmt.Errorf("label %s is defined twice in function %s", name, f.name))
		return
	}
	f.labels[name] = len(f.instrs)
}

func (f *FunctionBuilder) add(instr *Instruction, labels ...string) int {
	instr.Source = f.source
	f.instrs = append(f.instrs, instr)
	f.targets = append(f.targets, labels)
	return len(f.instrs) - 1
}

// Skip adds a no-op. All the methods adding an instruction return its index in the body.
func (f *FunctionBuilder) Skip() int {
	return f.add(&Instruction{Kind: Skip})
}

// Assign adds lhs = rhs
func (f *FunctionBuilder) Assign(lhs Expr, rhs Expr) int {
	return f.add(&Instruction{Kind: Assign, Lhs: lhs, Rhs: rhs})
}

// Decl adds the declaration of a local
func (f *FunctionBuilder) Decl(s *Symbol) int {
	return f.add(&Instruction{Kind: Decl, Lhs: s})
}

// Dead adds the end of the scope of a local
func (f *FunctionBuilder) Dead(s *Symbol) int {
	return f.add(&Instruction{Kind: Dead, Lhs: s})
}

// Assume adds an assumption: executions where the guard is false are discarded
func (f *FunctionBuilder) Assume(guard Expr) int {
	return f.add(&Instruction{Kind: Assume, Guard: guard})
}

// Assert adds an assertion
func (f *FunctionBuilder) Assert(guard Expr) int {
	return f.add(&Instruction{Kind: Assert, Guard: guard})
}

// Goto adds a jump to the labels, taken when the guard holds. A nil guard is an unconditional jump.
func (f *FunctionBuilder) Goto(guard Expr, labels ...string) int {
	if guard == nil {
		guard = True
	}
	return f.add(&Instruction{Kind: Goto, Guard: guard}, labels...)
}

// Call adds a direct call to the named function. lhs may be nil.
func (f *FunctionBuilder) Call(lhs Expr, callee string, args ...Expr) int {
	return f.add(&Instruction{
		Kind: FunctionCall,
		Call: &Call{Lhs: lhs, Function: &Symbol{Name: callee, Kind: GlobalSymbol}, Args: args},
	})
}

// CallIndirect adds a call through a function pointer
func (f *FunctionBuilder) CallIndirect(lhs Expr, function Expr, args ...Expr) int {
	return f.add(&Instruction{Kind: FunctionCall, Call: &Call{Lhs: lhs, Function: function, Args: args}})
}

// Return adds a return statement. value may be nil.
func (f *FunctionBuilder) Return(value Expr) int {
	instr := &Instruction{Kind: Return, Rhs: value}
	if value != nil {
		instr.Lhs = ReturnValue(f.name)
	}
	return f.add(instr)
}

// StartThread adds the creation of a thread starting at the label
func (f *FunctionBuilder) StartThread(label string) int {
	return f.add(&Instruction{Kind: StartThread}, label)
}

// EndThread adds the termination of the current thread
func (f *FunctionBuilder) EndThread() int {
	return f.add(&Instruction{Kind: EndThread})
}

// AtomicBegin adds the start of an atomic section
func (f *FunctionBuilder) AtomicBegin() int {
	return f.add(&Instruction{Kind: AtomicBegin})
}

// AtomicEnd adds the end of an atomic section
func (f *FunctionBuilder) AtomicEnd() int {
	return f.add(&Instruction{Kind: AtomicEnd})
}
