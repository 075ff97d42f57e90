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

	"gonum.org/v1/gonum/graph"
)

// A CGraph is a directed graph whose nodes are identified by the integers 0..Order()-1. It implements both the
// iterator interface of github.com/yourbasic/graph and the graph.Directed interface of gonum.
type CGraph struct {
	// The order of the graph
	order int

	// IDMap maps from node IDs to CNodes
	IDMap map[int64]CNode

	// Keys are all the node IDs, sorted
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge between IDMap[x] and IDMap[y]
	Edges map[int64]map[int64]bool
}

// NewGraph returns a graph with nodes 0..len(labels)-1 where node i is labelled by labels[i] and the successors of
// i are succ(i). Successors outside the node range are ignored.
func NewGraph(labels []string, succ func(int) []int) CGraph {
	n := len(labels)
	idmap := make(map[int64]CNode, n)
	edges := make(map[int64]map[int64]bool, n)
	keys := make([]int64, n)
	for i, label := range labels {
		id := int64(i)
		keys[i] = id
		idmap[id] = CNode{id: id, Label: label}
		edges[id] = map[int64]bool{}
		for _, j := range succ(i) {
			if j >= 0 && j < n {
				edges[id][int64(j)] = true
			}
		}
	}

	return CGraph{
		order: n,
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
	}
}

// Subgraph returns the subgraph of original containing only the nodes in include. The order of the subgraph is the
// order of the original graph, since node identifiers are not renumbered.
func Subgraph(original CGraph, include []int64) CGraph {
	idmap := make(map[int64]CNode, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	keys := make([]int64, len(include))

	for j, i := range include {
		keys[j] = i
		idmap[i] = original.IDMap[i]
	}

	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if _, ok := idmap[e]; ok {
				edges[i][e] = true
			}
		}
	}

	return CGraph{
		order: original.Order(),
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
	}
}

// Order returns the number of possible node identifiers
func (c CGraph) Order() int {
	return c.order
}

// Visit calls do for every successor w of v. If do returns true, Visit stops and returns true.
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if _, ok := c.IDMap[int64(v)]; !ok {
		return false
	}
	for _, w := range sortedIDs(c.Edges[int64(v)]) {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// Node returns the node with the given id, or nil.
func (c CGraph) Node(id int64) graph.Node {
	if n, ok := c.IDMap[id]; ok {
		return n
	}
	return nil
}

// Nodes returns all the nodes of the graph
func (c CGraph) Nodes() graph.Nodes {
	ids := make([]int64, 0, len(c.IDMap))
	for k := range c.IDMap {
		ids = append(ids, k)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return newNodeSet(c.IDMap, ids)
}

// From returns the successors of the node id
func (c CGraph) From(id int64) graph.Nodes {
	return newNodeSet(c.IDMap, sortedIDs(c.Edges[id]))
}

// To returns the predecessors of the node id
func (c CGraph) To(id int64) graph.Nodes {
	var ids []int64
	for _, k := range c.Keys {
		if c.Edges[k][id] {
			ids = append(ids, k)
		}
	}
	return newNodeSet(c.IDMap, ids)
}

// HasEdgeBetween returns true if there is an edge in either direction between xid and yid
func (c CGraph) HasEdgeBetween(xid, yid int64) bool {
	return c.Edges[xid][yid] || c.Edges[yid][xid]
}

// HasEdgeFromTo returns true if there is an edge from uid to vid
func (c CGraph) HasEdgeFromTo(uid, vid int64) bool {
	return c.Edges[uid][vid]
}

// Edge returns the edge from uid to vid, or nil
func (c CGraph) Edge(uid, vid int64) graph.Edge {
	if c.Edges[uid][vid] {
		return CEdge{from: c.IDMap[uid], to: c.IDMap[vid]}
	}
	return nil
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id, ok := range set {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// A CNode is a labelled node of a CGraph
type CNode struct {
	id    int64
	Label string
}

// ID implements graph.Node
func (n CNode) ID() int64 {
	return n.id
}

func (n CNode) String() string {
	return n.Label
}

// NodeSet is an iterator over nodes of a CGraph.
type NodeSet struct {
	// nodes is the set of nodes in the iterator
	nodes map[int64]CNode

	// ids is the set of node ids in the iterator
	ids []int64

	// cur is the current index of the iterator. The current node is nodes[ids[cur]]
	// invariant: -1 <= cur <= len(ids)
	cur int
}

func newNodeSet(nodes map[int64]CNode, ids []int64) *NodeSet {
	return &NodeSet{nodes: nodes, ids: ids, cur: -1}
}

// Next advances the iterator and returns whether a node is available
func (ns *NodeSet) Next() bool {
	if ns.cur < len(ns.ids)-1 {
		ns.cur++
		return true
	}
	ns.cur = len(ns.ids)
	return false
}

// Len returns the number of nodes remaining in the iterator
func (ns *NodeSet) Len() int {
	if ns.cur >= len(ns.ids) {
		return 0
	}
	return len(ns.ids) - ns.cur - 1
}

// Reset rewinds the iterator
func (ns *NodeSet) Reset() {
	ns.cur = -1
}

// Node returns the current node
func (ns *NodeSet) Node() graph.Node {
	if ns.cur < 0 || ns.cur >= len(ns.ids) {
		return nil
	}
	return ns.nodes[ns.ids[ns.cur]]
}

// A CEdge is a directed edge of a CGraph
type CEdge struct {
	from CNode
	to   CNode
}

// From returns the source of the edge
func (e CEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e CEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns the edge in the reverse direction
func (e CEdge) ReversedEdge() graph.Edge {
	return CEdge{from: e.to, to: e.from}
}
