// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package digraph models the periodic DAG real-time task: a directed
// acyclic graph of Nodes, queried by id, with the topological operations
// the scheduler needs (source, sinks, predecessors/successors, ancestors,
// descendants) plus the parameter-map operations policies attach their
// bookkeeping through.
package digraph

import "fmt"

// Edge is a directed, integer-weighted edge between two node ids. The
// weight carries no scheduling semantics in the core (spec §3). DAG does
// not use this type: it stores adjacency only, and the weight passed to
// AddEdge is not kept.
type Edge struct {
	From, To int
	Weight   int32
}

// DAG is a directed acyclic graph of Nodes. Node ids are assigned
// sequentially from 0 and equal each node's position in nodes — AddNode
// asserts this invariant, matching the original's add_node_with_id_consistency.
type DAG struct {
	Name  string
	nodes []Node
	suc   map[int][]int // adjacency, successors in insertion order
	pre   map[int][]int // adjacency, predecessors in insertion order
}

// New returns an empty DAG ready to accept nodes via AddNode.
func New(name string) *DAG {
	return &DAG{
		Name: name,
		suc:  make(map[int][]int),
		pre:  make(map[int][]int),
	}
}

// AddNode appends node to the graph. node.ID must equal its position.
func (d *DAG) AddNode(node Node) error {
	if node.ID != len(d.nodes) {
		return fmt.Errorf("%w: got id %d, want %d", ErrNodeIDMismatch, node.ID, len(d.nodes))
	}
	for _, existing := range d.nodes {
		if existing.ID == node.ID {
			return fmt.Errorf("%w: %d", ErrDuplicateNodeID, node.ID)
		}
	}
	d.nodes = append(d.nodes, node)
	return nil
}

// AddEdge records a directed edge from -> to. Both ids must already exist.
// weight is accepted but not stored.
func (d *DAG) AddEdge(from, to int, weight int32) error {
	if !d.validID(from) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, from)
	}
	if !d.validID(to) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, to)
	}
	d.suc[from] = append(d.suc[from], to)
	d.pre[to] = append(d.pre[to], from)
	return nil
}

func (d *DAG) validID(id int) bool { return id >= 0 && id < len(d.nodes) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// Node returns a clone of the node at id. Callers that mean to mutate the
// live DAG (e.g. pre_done_count bookkeeping) must use SetParam/AddParam
// instead, which write through to the stored node.
func (d *DAG) Node(id int) (Node, error) {
	if !d.validID(id) {
		return Node{}, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return d.nodes[id].Clone(), nil
}

// Nodes returns clones of every node, in id order.
func (d *DAG) Nodes() []Node {
	out := make([]Node, len(d.nodes))
	for i, n := range d.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Source returns the unique node with no incoming edges. Zero or multiple
// sources is a structural error (spec §3, §9: "the spec mandates a unique
// source and treats multiples as a structural error").
func (d *DAG) Source() (Node, error) {
	var sources []int
	for _, n := range d.nodes {
		if len(d.pre[n.ID]) == 0 {
			sources = append(sources, n.ID)
		}
	}
	if len(sources) != 1 {
		return Node{}, fmt.Errorf("%w: found %d", ErrSourceNotUnique, len(sources))
	}
	return d.nodes[sources[0]].Clone(), nil
}

// Sinks returns clones of every node with no outgoing edges, in id order.
func (d *DAG) Sinks() []Node {
	var out []Node
	for _, n := range d.nodes {
		if len(d.suc[n.ID]) == 0 {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Pre returns the ids of v's direct predecessors, in edge-insertion order.
func (d *DAG) Pre(v int) ([]int, error) {
	if !d.validID(v) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, v)
	}
	return append([]int(nil), d.pre[v]...), nil
}

// Suc returns the ids of v's direct successors, in edge-insertion order.
func (d *DAG) Suc(v int) ([]int, error) {
	if !d.validID(v) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, v)
	}
	return append([]int(nil), d.suc[v]...), nil
}

// Ancestors returns the ids of every node reachable from v by following
// predecessor edges, in BFS discovery order, each id appearing once.
func (d *DAG) Ancestors(v int) ([]int, error) {
	return d.bfs(v, d.pre)
}

// Descendants returns the ids of every node reachable from v by following
// successor edges, in BFS discovery order, each id appearing once. This
// order is reproducible but the EDF tie-breakers never depend on it —
// only on node id and dag_id (spec §4.1).
func (d *DAG) Descendants(v int) ([]int, error) {
	return d.bfs(v, d.suc)
}

func (d *DAG) bfs(start int, adj map[int][]int) ([]int, error) {
	if !d.validID(start) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, start)
	}
	seen := map[int]bool{}
	queue := []int{start}
	var out []int
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if seen[next] {
				continue
			}
			seen[next] = true
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	return out, nil
}

// IsReady reports whether v's completed-predecessor count equals its
// in-degree: pre(v).len() == params[v]["pre_done_count"].
func (d *DAG) IsReady(v int) (bool, error) {
	if !d.validID(v) {
		return false, fmt.Errorf("%w: %d", ErrNodeNotFound, v)
	}
	return len(d.pre[v]) == int(d.nodes[v].PreDoneCount()), nil
}

// AddParam fails if key already exists on v.
func (d *DAG) AddParam(v int, key string, value int32) error {
	if !d.validID(v) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, v)
	}
	return d.nodes[v].Add(key, value)
}

// UpdateParam fails if key is absent on v.
func (d *DAG) UpdateParam(v int, key string, value int32) error {
	if !d.validID(v) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, v)
	}
	return d.nodes[v].Update(key, value)
}

// SetParam upserts key on v.
func (d *DAG) SetParam(v int, key string, value int32) error {
	if !d.validID(v) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, v)
	}
	d.nodes[v].Set(key, value)
	return nil
}

// SetAllParams upserts key on every node in the graph.
func (d *DAG) SetAllParams(key string, value int32) {
	for i := range d.nodes {
		d.nodes[i].Set(key, value)
	}
}

// DAGParams reads period, relative_deadline and dag_id from the source
// node, the convention under which "DAG parameters" are stored (spec §3).
func (d *DAG) DAGParams() (period, relativeDeadline, dagID int32, err error) {
	src, err := d.Source()
	if err != nil {
		return 0, 0, 0, err
	}
	return src.MustGet(ParamPeriod), src.MustGet(ParamRelativeDeadline), src.MustGet(ParamDAGID), nil
}
