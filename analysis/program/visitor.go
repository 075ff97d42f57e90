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

// An InstrOp must implement methods for ALL the instruction kinds. Domains implement it to define their transfer
// functions; from and to are the edge being transformed.
type InstrOp interface {
	DoSkip(i *Instruction)
	DoAssign(i *Instruction)
	DoDecl(i *Instruction)
	DoDead(i *Instruction)
	DoAssume(i *Instruction)
	DoAssert(i *Instruction)
	DoGoto(i *Instruction, to Location)
	DoFunctionCall(i *Instruction, to Location)
	DoReturn(i *Instruction)
	DoEndFunction(i *Instruction, to Location)
	DoStartThread(i *Instruction, to Location)
	DoEndThread(i *Instruction)
	DoAtomicBegin(i *Instruction)
	DoAtomicEnd(i *Instruction)
}

// InstrSwitch is a map from the different instruction kinds to the methods of the visitor. The edge destination
// is passed to the kinds whose effect depends on the branch taken.
//
//gocyclo:ignore
func InstrSwitch(visitor InstrOp, instr *Instruction, to Location) {
	switch instr.Kind {
	case Skip:
		visitor.DoSkip(instr)
	case Assign:
		visitor.DoAssign(instr)
	case Decl:
		visitor.DoDecl(instr)
	case Dead:
		visitor.DoDead(instr)
	case Assume:
		visitor.DoAssume(instr)
	case Assert:
		visitor.DoAssert(instr)
	case Goto:
		visitor.DoGoto(instr, to)
	case FunctionCall:
		visitor.DoFunctionCall(instr, to)
	case Return:
		visitor.DoReturn(instr)
	case EndFunction:
		visitor.DoEndFunction(instr, to)
	case StartThread:
		visitor.DoStartThread(instr, to)
	case EndThread:
		visitor.DoEndThread(instr)
	case AtomicBegin:
		visitor.DoAtomicBegin(instr)
	case AtomicEnd:
		visitor.DoAtomicEnd(instr)
	}
}
