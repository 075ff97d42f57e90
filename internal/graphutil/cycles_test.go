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

package graphutil_test

import (
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-absint/internal/funcutil"
	"github.com/awslabs/ar-go-absint/internal/graphutil"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

func adjacency(m map[int][]int) func(int) []int {
	return func(i int) []int { return m[i] }
}

func labels(n int) []string {
	ls := make([]string, n)
	for i := range ls {
		ls[i] = "n" + strconv.Itoa(i)
	}
	return ls
}

func TestFindAllElementaryCycles(t *testing.T) {
	// 0 -> 1 -> 2 -> 0, 2 -> 3 -> 3, 4 -> 1
	g := graphutil.NewGraph(labels(5), adjacency(map[int][]int{
		0: {1},
		1: {2},
		2: {0, 3},
		3: {3},
		4: {1},
	}))
	stats := graph.Check(g)
	t.Logf("Stats:\n\tsize: %d\n\tmulti: %d\n\tloops: %d\n\tisolated: %d",
		stats.Size, stats.Multi, stats.Loops, stats.Isolated)
	if stats.Loops != 1 {
		t.Fatalf("expected one self-loop, got %d", stats.Loops)
	}

	cycles := graphutil.FindAllElementaryCycles(g)
	results := funcutil.Map(cycles, func(cycle []int64) string {
		return strings.Join(funcutil.Map(cycle, func(x int64) string { return strconv.Itoa(int(x)) }), "")
	})
	sort.Strings(results)
	expected := []string{"0120", "33"}
	if !slices.Equal(results, expected) {
		t.Fatalf("expected cycles %v, got %v", expected, results)
	}
}

func TestFindAllElementaryCyclesAcyclic(t *testing.T) {
	g := graphutil.NewGraph(labels(3), adjacency(map[int][]int{0: {1, 2}, 1: {2}}))
	if cycles := graphutil.FindAllElementaryCycles(g); len(cycles) != 0 {
		t.Fatalf("expected no cycle, got %v", cycles)
	}
}

func TestCGraphIsGonumDirected(t *testing.T) {
	g := graphutil.NewGraph(labels(4), adjacency(map[int][]int{0: {1}, 1: {0}, 2: {3}}))
	sccs := topo.TarjanSCC(g)
	sizes := funcutil.Map(sccs, func(c []gonum.Node) int { return len(c) })
	sort.Ints(sizes)
	if !slices.Equal(sizes, []int{1, 1, 2}) {
		t.Fatalf("unexpected component sizes %v", sizes)
	}
	if g.To(0).Len() != 1 || !g.HasEdgeFromTo(2, 3) || g.HasEdgeFromTo(3, 2) {
		t.Fatalf("unexpected edges")
	}
}
