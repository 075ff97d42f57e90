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

package graphutil

import (
	"sort"

	"github.com/yourbasic/graph"
)

// FindAllElementaryCycles finds all elementary cycles in the graph CGraph, self-loops included. Each cycle is
// returned as the list of its nodes, starting and ending with its smallest node.
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
func FindAllElementaryCycles(cg CGraph) [][]int64 {
	s := &state{cycles: [][]int64{}}
	keys := make([]int64, len(cg.Keys))
	copy(keys, cg.Keys)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for start := 0; start < len(keys); {
		fg := Subgraph(cg, keys[start:])
		least, found := leastCyclicNode(fg)
		if !found {
			break
		}
		s.stack = []int64{}
		s.blocked = map[int64]bool{}
		s.blist = map[int64]map[int64]bool{}
		s.circuit(least, least, fg)
		start = sort.Search(len(keys), func(i int) bool { return keys[i] > least })
	}
	return s.cycles
}

// leastCyclicNode returns the smallest node of g that belongs to a strongly connected component with a cycle.
func leastCyclicNode(g CGraph) (int64, bool) {
	var least int64
	found := false
	for _, component := range graph.StrongComponents(g) {
		var inGraph []int
		for _, v := range component {
			if _, ok := g.IDMap[int64(v)]; ok {
				inGraph = append(inGraph, v)
			}
		}
		if len(inGraph) == 0 {
			continue
		}
		sort.Ints(inGraph)
		v := int64(inGraph[0])
		if len(inGraph) >= 2 || g.Edges[v][v] {
			if !found || v < least {
				least = v
				found = true
			}
		}
	}
	return least, found
}

type state struct {
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
}

func (s *state) unblock(u int64) {
	s.blocked[u] = false
	for _, w := range sortedIDs(s.blist[u]) {
		delete(s.blist[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *state) circuit(v int64, start int64, g CGraph) bool {
	f := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for _, w := range sortedIDs(g.Edges[v]) {
		if w == start {
			cycle := make([]int64, len(s.stack), len(s.stack)+1)
			copy(cycle, s.stack)
			s.cycles = append(s.cycles, append(cycle, w))
			f = true
		} else if !s.blocked[w] {
			if s.circuit(w, start, g) {
				f = true
			}
		}
	}

	if f {
		s.unblock(v)
	} else {
		for _, w := range sortedIDs(g.Edges[v]) {
			if s.blist[w] == nil {
				s.blist[w] = map[int64]bool{}
			}
			s.blist[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return f
}
