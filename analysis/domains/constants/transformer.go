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
	fn "github.com/awslabs/ar-go-absint/internal/funcutil"
)

// transformer implements the transfer function of each instruction kind
type transformer struct {
	state   *State
	program *program.Program
}

var _ program.InstrOp = (*transformer)(nil)

// assign sets lhs to the value v, or to top if ok is false. A write through a pointer may change any global.
func (t *transformer) assign(lhs program.Expr, v int64, ok bool) {
	switch x := lhs.(type) {
	case *program.Symbol:
		if ok {
			t.state.values[x.ID()] = v
		} else {
			delete(t.state.values, x.ID())
		}
	default:
		t.havocGlobals()
	}
}

func (t *transformer) havocGlobals() {
	for id := range t.state.values {
		if isGlobal(id) {
			delete(t.state.values, id)
		}
	}
}

// dropLocals removes every symbol that is not global. Entering and leaving a function changes the set of locals
// in scope.
func (t *transformer) dropLocals() {
	for id := range t.state.values {
		if !isGlobal(id) {
			delete(t.state.values, id)
		}
	}
}

func (t *transformer) DoSkip(*program.Instruction) {}

func (t *transformer) DoAssign(i *program.Instruction) {
	v, ok := t.state.eval(i.Rhs)
	t.assign(i.Lhs, v, ok)
}

func (t *transformer) DoDecl(i *program.Instruction) {
	t.assign(i.Lhs, 0, false)
}

func (t *transformer) DoDead(i *program.Instruction) {
	t.assign(i.Lhs, 0, false)
}

func (t *transformer) DoAssume(i *program.Instruction) {
	t.state.assume(i.Guard, true)
}

func (t *transformer) DoAssert(*program.Instruction) {}

func (t *transformer) DoGoto(i *program.Instruction, to program.Location) {
	taken := fn.Contains(i.Targets, to)
	next := to == i.Loc+1 && !program.IsConstTrue(i.Guard)
	switch {
	case taken && !next:
		t.state.assume(i.Guard, true)
	case next && !taken:
		t.state.assume(i.Guard, false)
	}
}

// DoFunctionCall handles both the edge into the callee, which binds the parameters, and the edge to the next
// instruction for calls that are not analysed, where the callee may have changed any global.
func (t *transformer) DoFunctionCall(i *program.Instruction, to program.Location) {
	name, direct := i.Call.CalleeName()
	var callee *program.Function
	if direct {
		callee, _ = t.program.Function(name)
	}
	if callee != nil && callee.BodyAvailable() && to == callee.Entry() {
		type binding struct {
			value int64
			known bool
		}
		args := fn.Map(i.Call.Args, func(e program.Expr) binding {
			v, ok := t.state.eval(e)
			return binding{v, ok}
		})
		t.dropLocals()
		for k, p := range callee.Params {
			if k < len(args) {
				t.assign(p, args[k].value, args[k].known)
			}
		}
		return
	}
	if i.Call.Lhs != nil {
		t.assign(i.Call.Lhs, 0, false)
	}
	t.havocGlobals()
}

func (t *transformer) DoReturn(i *program.Instruction) {
	if i.Lhs == nil {
		return
	}
	v, ok := t.state.eval(i.Rhs)
	t.assign(i.Lhs, v, ok)
}

// DoEndFunction is the return edge: the return value is copied into the left-hand side of the call, and the locals
// of the callee go out of scope.
func (t *transformer) DoEndFunction(i *program.Instruction, to program.Location) {
	v, ok := t.state.values[program.ReturnValue(i.Function).ID()]
	t.dropLocals()
	if int(to) <= 0 {
		return
	}
	if call := t.program.Instr(to - 1); call.Kind == program.FunctionCall && call.Call.Lhs != nil {
		t.assign(call.Call.Lhs, v, ok)
	}
}

func (t *transformer) DoStartThread(*program.Instruction, program.Location) {}

func (t *transformer) DoEndThread(*program.Instruction) {}

func (t *transformer) DoAtomicBegin(*program.Instruction) {}

func (t *transformer) DoAtomicEnd(*program.Instruction) {}
