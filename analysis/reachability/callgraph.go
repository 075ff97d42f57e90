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

// Package reachability computes the call graph of a program, the functions reachable from its entry point and the
// recursive functions.
package reachability

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/awslabs/ar-go-absint/analysis/program"
	fn "github.com/awslabs/ar-go-absint/internal/funcutil"
	"github.com/awslabs/ar-go-absint/internal/graphutil"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// CallGraph is the graph of direct calls between the functions of a program. Node i is the i-th function in
// declaration order. Indirect calls and calls to undefined functions have no edge.
type CallGraph struct {
	Program *program.Program
	Graph   graphutil.CGraph
	ids     map[string]int
}

// NewCallGraph builds the call graph of p
func NewCallGraph(p *program.Program) *CallGraph {
	ids := make(map[string]int, len(p.FunctionNames))
	for i, name := range p.FunctionNames {
		ids[name] = i
	}
	succ := func(i int) []int {
		var callees []int
		for _, name := range Callees(p, p.Functions[p.FunctionNames[i]]) {
			if j, ok := ids[name]; ok {
				callees = append(callees, j)
			}
		}
		return callees
	}
	return &CallGraph{
		Program: p,
		Graph:   graphutil.NewGraph(p.FunctionNames, succ),
		ids:     ids,
	}
}

// Callees returns the names of the functions called directly by f, in program order and without duplicates
func Callees(p *program.Program, f *program.Function) []string {
	seen := map[string]bool{}
	var callees []string
	for _, l := range f.Body {
		instr := p.Instr(l)
		if instr.Kind != program.FunctionCall {
			continue
		}
		if name, direct := instr.Call.CalleeName(); direct && !seen[name] {
			seen[name] = true
			callees = append(callees, name)
		}
	}
	return callees
}

func (cg *CallGraph) name(n graph.Node) string {
	return cg.Program.FunctionNames[n.ID()]
}

// Reachable returns the functions reachable from the entry functions through direct calls, in declaration order.
// The entries are included.
func (cg *CallGraph) Reachable(entries ...string) ([]string, error) {
	reached := map[int64]bool{}
	w := traverse.BreadthFirst{
		Visit: func(n graph.Node) { reached[n.ID()] = true },
	}
	for _, entry := range entries {
		id, ok := cg.ids[entry]
		if !ok {
			return nil, fmt.Errorf("function %s is not defined", entry)
		}
		w.Walk(cg.Graph, cg.Graph.Node(int64(id)), nil)
	}
	var res []string
	for i, name := range cg.Program.FunctionNames {
		if reached[int64(i)] {
			res = append(res, name)
		}
	}
	return res, nil
}

// Cycles returns every elementary cycle of the call graph, each starting and ending with the same function
func (cg *CallGraph) Cycles() [][]string {
	return fn.Map(graphutil.FindAllElementaryCycles(cg.Graph), func(cycle []int64) []string {
		return fn.Map(cycle, func(id int64) string { return cg.Program.FunctionNames[id] })
	})
}

// RecursiveFunctions returns the set of functions that may call themselves, directly or not
func (cg *CallGraph) RecursiveFunctions() map[string]bool {
	res := map[string]bool{}
	ids := make([]int, len(cg.Program.FunctionNames))
	for i := range ids {
		ids[i] = i
	}
	succ := func(i int) []int {
		return fn.Map(graph.NodesOf(cg.Graph.From(int64(i))), func(n graph.Node) int { return int(n.ID()) })
	}
	for _, scc := range graphutil.StronglyConnectedComponents(ids, succ) {
		if len(scc) > 1 || cg.Graph.HasEdgeFromTo(int64(scc[0]), int64(scc[0])) {
			for _, i := range scc {
				res[cg.Program.FunctionNames[i]] = true
			}
		}
	}
	return res
}

// BottomUp returns the groups of mutually recursive functions, callees before callers
func (cg *CallGraph) BottomUp() [][]string {
	return fn.Map(topo.TarjanSCC(cg.Graph), func(scc []graph.Node) []string {
		return fn.Map(scc, cg.name)
	})
}

// ReachableFunctionsReport writes the names of the functions reachable from the entry point of p, one per line or
// as a JSON array.
func ReachableFunctionsReport(w io.Writer, p *program.Program, jsonFlag bool) error {
	reachable, err := NewCallGraph(p).Reachable(p.EntryPoint)
	if err != nil {
		return err
	}
	if jsonFlag {
		buf, err := json.Marshal(reachable)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(buf))
		return err
	}
	for _, name := range reachable {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
