// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package digraph

import "fmt"

// Reserved parameter names. These carry defined scheduling semantics; every
// other key is free for a policy to attach its own bookkeeping.
const (
	ParamExecutionTime       = "execution_time"
	ParamDAGID               = "dag_id"
	ParamJobID               = "job_id"
	ParamPeriod              = "period"
	ParamRelativeDeadline    = "relative_deadline"
	ParamPriority            = "priority"
	ParamRefAbsoluteDeadline = "ref_absolute_deadline"
	ParamPreDoneCount        = "pre_done_count"
	ParamIsPreempted         = "is_preempted"
	ParamDummy               = "dummy"
)

// Node is one vertex of a DAG: an id and a flat map of named integer
// parameters. Node values are cloned freely — the zero value is not useful,
// use NewNode.
type Node struct {
	ID     int
	Params map[string]int32
}

// NewNode returns a Node with id and execution_time set. Additional
// parameters are attached with Set/Add after construction.
func NewNode(id int, executionTime int32) Node {
	return Node{
		ID: id,
		Params: map[string]int32{
			ParamExecutionTime: executionTime,
		},
	}
}

// Clone returns a deep copy: the copy's Params map is independent, so
// mutating one node (e.g. decrementing ExecutionTime while it runs on a
// Core) never affects the other (e.g. the DAG's template node, or a
// different queued snapshot of it).
func (n Node) Clone() Node {
	params := make(map[string]int32, len(n.Params))
	for k, v := range n.Params {
		params[k] = v
	}
	return Node{ID: n.ID, Params: params}
}

// Get returns the value of key and whether it was present.
func (n Node) Get(key string) (int32, bool) {
	v, ok := n.Params[key]
	return v, ok
}

// MustGet returns the value of key, panicking if absent. Reserved
// parameters that are required for the node's role (e.g. ExecutionTime)
// are read through this path: a missing required parameter is a
// configuration error, not a recoverable one (spec §7).
func (n Node) MustGet(key string) int32 {
	v, ok := n.Params[key]
	if !ok {
		panic(fmt.Errorf("%w: %s on node %d", ErrParamMissing, key, n.ID))
	}
	return v
}

// GetOr returns the value of key, or def if absent.
func (n Node) GetOr(key string, def int32) int32 {
	if v, ok := n.Params[key]; ok {
		return v
	}
	return def
}

// Add sets key to value, failing if key is already present.
func (n Node) Add(key string, value int32) error {
	if _, ok := n.Params[key]; ok {
		return fmt.Errorf("%w: %s", ErrParamExists, key)
	}
	n.Params[key] = value
	return nil
}

// Update overwrites key's value, failing if key is absent.
func (n Node) Update(key string, value int32) error {
	if _, ok := n.Params[key]; !ok {
		return fmt.Errorf("%w: %s", ErrParamMissing, key)
	}
	n.Params[key] = value
	return nil
}

// Set upserts key to value.
func (n Node) Set(key string, value int32) {
	n.Params[key] = value
}

// ExecutionTime is the remaining work in ticks.
func (n Node) ExecutionTime() int32 { return n.MustGet(ParamExecutionTime) }

// DAGID identifies the owning DAG, injected by the scheduler at load time.
func (n Node) DAGID() int32 { return n.MustGet(ParamDAGID) }

// JobID identifies the release instance this node snapshot belongs to.
func (n Node) JobID() int32 { return n.MustGet(ParamJobID) }

// Priority is the fixed-priority policy's sort key; lower wins.
func (n Node) Priority() int32 { return n.MustGet(ParamPriority) }

// RefAbsoluteDeadline is the EDF policy's sort key; lower wins.
func (n Node) RefAbsoluteDeadline() int32 { return n.MustGet(ParamRefAbsoluteDeadline) }

// PreDoneCount is the number of predecessors completed for this instance.
func (n Node) PreDoneCount() int32 { return n.GetOr(ParamPreDoneCount, 0) }

// IsPreempted reports whether this snapshot was previously preempted,
// distinguishing a Resume event from a Start event in the log.
func (n Node) IsPreempted() bool { return n.GetOr(ParamIsPreempted, 0) != 0 }

// IsDummy reports whether the node is excluded from utilization accounting.
func (n Node) IsDummy() bool { return n.GetOr(ParamDummy, 0) != 0 }
