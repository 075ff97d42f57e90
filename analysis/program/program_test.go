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
	"reflect"
	"strings"
	"testing"
)

// buildLoop builds
//
//	func main() { i = 0; L: if i >= 10 goto done; i = i + 1; goto L; done: return i }
func buildLoop(t *testing.T) *Program {
	b := NewBuilder()
	f := b.Function("main")
	i := f.Var("i")
	f.Assign(i, &Const{Value: 0})
	f.Label("L")
	f.Goto(&Binary{Op: OpGeq, X: i, Y: &Const{Value: 10}}, "done")
	f.Assign(i, &Binary{Op: OpAdd, X: i, Y: &Const{Value: 1}})
	f.Goto(nil, "L")
	f.Label("done")
	f.Return(i)
	p, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build program: %v", err)
	}
	return p
}

func TestSuccessors(t *testing.T) {
	p := buildLoop(t)
	expected := map[Location][]Location{
		0: {1},
		1: {4, 2},
		2: {3},
		3: {1},
		4: {5},
		5: nil,
	}
	if p.NumLocations() != len(expected) {
		t.Fatalf("expected %d locations, got %d:\n%s", len(expected), p.NumLocations(), p)
	}
	for l, succs := range expected {
		if got := p.Successors(l); !reflect.DeepEqual(got, succs) {
			t.Errorf("successors of %d (%s): expected %v, got %v", l, p.Instr(l), succs, got)
		}
	}
	if p.EntryPoint != "main" {
		t.Errorf("expected main to be the default entry point, got %q", p.EntryPoint)
	}
}

func TestConstantGuards(t *testing.T) {
	b := NewBuilder()
	f := b.Function("main")
	f.Goto(False, "end")
	f.Goto(True, "end", "end")
	f.Assume(False)
	f.Assume(&Nondet{})
	f.Label("end")
	p, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		loc      Location
		expected []Location
	}{
		{0, []Location{1}},
		{1, []Location{4, 4}},
		{2, nil},
		{3, []Location{4}},
	}
	for _, c := range cases {
		if got := p.Successors(c.loc); !reflect.DeepEqual(got, c.expected) {
			t.Errorf("successors of %q: expected %v, got %v", p.Instr(c.loc), c.expected, got)
		}
	}
}

func TestLayoutIsContiguous(t *testing.T) {
	b := NewBuilder()
	b.Extern("abort")
	g := b.Function("g", "a")
	g.Return(g.Var("a"))
	m := b.Function("main")
	m.Call(nil, "g", &Const{Value: 1})
	m.StartThread("t")
	m.Goto(nil, "out")
	m.Label("t")
	m.Call(nil, "abort")
	m.EndThread()
	m.Label("out")
	p, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	abort, _ := p.Function("abort")
	if abort.BodyAvailable() {
		t.Errorf("abort should have no body")
	}
	gf, _ := p.Function("g")
	if gf.Entry() != 0 || gf.Exit() != 1 {
		t.Errorf("unexpected body of g: %v", gf.Body)
	}
	mf, _ := p.Function("main")
	if mf.Entry() != 2 || mf.Exit() != 7 {
		t.Errorf("unexpected body of main: %v", mf.Body)
	}
	if got := p.Successors(3); !reflect.DeepEqual(got, []Location{5, 4}) {
		t.Errorf("unexpected successors of start_thread: %v", got)
	}
	if got := p.Successors(0); !reflect.DeepEqual(got, []Location{1}) {
		t.Errorf("return should jump to end_function, got %v", got)
	}
	if p.Instr(0).Lhs.(*Symbol).ID() != "g#return_value" {
		t.Errorf("unexpected return value symbol %v", p.Instr(0).Lhs)
	}
	if p.FunctionAt(6).Name != "main" {
		t.Errorf("location 6 should be in main")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("built program is invalid: %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	b := NewBuilder()
	f := b.Function("main")
	f.Goto(nil, "nowhere")
	b.Function("main")
	_, err := b.Build()
	if err == nil {
		t.Fatalf("expected errors")
	}
	for _, msg := range []string{"unknown label nowhere", "defined twice"} {
		if !strings.Contains(err.Error(), msg) {
			t.Errorf("expected error %q in %v", msg, err)
		}
	}
}

func TestValidateRejectsBrokenBodies(t *testing.T) {
	p := buildLoop(t)
	p.Instructions[3].Targets = []Location{42}
	if err := p.Validate(); !errors.Is(err, ErrInvalidProgram) {
		t.Errorf("expected invalid program error, got %v", err)
	}
	p = buildLoop(t)
	p.Instructions[5].Kind = Skip
	if err := p.Validate(); !errors.Is(err, ErrInvalidProgram) {
		t.Errorf("expected invalid program error for missing end_function, got %v", err)
	}
	p = buildLoop(t)
	p.EntryPoint = "start"
	if err := p.Validate(); !errors.Is(err, ErrInvalidProgram) {
		t.Errorf("expected invalid program error for missing entry point, got %v", err)
	}
}

func TestStringAndSymbols(t *testing.T) {
	p := buildLoop(t)
	s := p.String()
	for _, line := range []string{"func main() {", "goto 4 if i >= 10", "i = i + 1", "return i", "entry main;"} {
		if !strings.Contains(s, line) {
			t.Errorf("listing does not contain %q:\n%s", line, s)
		}
	}
	x, y := NewGlobal("x"), NewLocal("f", "y")
	e := &Binary{Op: OpMul, X: &Binary{Op: OpAdd, X: x, Y: y}, Y: &Unary{Op: OpDeref, X: x}}
	if e.String() != "(x + y) * *x" {
		t.Errorf("unexpected printing %q", e.String())
	}
	ids := []string{}
	for _, s := range Symbols(e) {
		ids = append(ids, s.ID())
	}
	if !reflect.DeepEqual(ids, []string{"x", "f::y"}) {
		t.Errorf("unexpected symbols %v", ids)
	}
	if Not(Not(x)) != x || !IsConstTrue(Not(False)) {
		t.Errorf("unexpected negation simplification")
	}
}
