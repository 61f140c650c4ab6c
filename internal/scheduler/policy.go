// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler implements the policy-agnostic scheduling kernel
// (release, sort, dispatch/preempt, tick, completion) and the two
// concrete policies that plug into it: fixed-priority (covering
// Rate-Monotonic and Greedy) and global-EDF.
package scheduler

import "github.com/dagu-org/dagsim/internal/digraph"

// Policy supplies the three operations the kernel cannot decide on its
// own (spec §4.4): how the ready queue is ordered, how release-time
// parameters are recomputed, and (via PreemptiveType, held separately)
// which parameter drives preemption.
type Policy interface {
	// Name identifies the policy for logs and CLI flags.
	Name() string
	// SortReadyQueue imposes the policy's total order on queue, in place.
	// The comparator must be a total order; EDF breaks ties by (id, dag_id).
	SortReadyQueue(queue []digraph.Node)
	// UpdateParamsOnRelease runs once per release, before the source node
	// is enqueued, so recomputed keys (e.g. EDF's ref_absolute_deadline)
	// are in place before the first sort.
	UpdateParamsOnRelease(dag *digraph.DAG, jobID int32) error
}

// PreemptiveType selects whether the kernel may preempt a running node and,
// if so, which parameter is compared to decide (spec §4.4).
type PreemptiveType struct {
	preemptive bool
	key        string
}

// NonPreemptive disables preemption: once a node is allocated to a core it
// runs to completion.
func NonPreemptive() PreemptiveType { return PreemptiveType{} }

// Preemptive enables preemption keyed on the given node parameter — the
// running node with the numerically largest value of key is the victim.
func Preemptive(key string) PreemptiveType { return PreemptiveType{preemptive: true, key: key} }

// IsPreemptive reports whether preemption is enabled.
func (p PreemptiveType) IsPreemptive() bool { return p.preemptive }

// Key returns the preemption comparison key. Only meaningful when
// IsPreemptive is true.
func (p PreemptiveType) Key() string { return p.key }
