// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"sort"

	"github.com/dagu-org/dagsim/internal/digraph"
)

// FixedPriority orders the ready queue ascending by the "priority" node
// parameter; lower wins. It never touches node parameters on release —
// priorities are assigned up front by whichever configuration is in play
// (spec §4.6).
//
// Rate-Monotonic is this policy configured by AssignRateMonotonic
// (priority = period, so the shortest period wins); Greedy is this policy
// configured by AssignGreedy (uniform priority, used with NonPreemptive).
type FixedPriority struct{}

// NewFixedPriority returns the fixed-priority policy.
func NewFixedPriority() FixedPriority { return FixedPriority{} }

func (FixedPriority) Name() string { return "fixed-priority" }

func (FixedPriority) SortReadyQueue(queue []digraph.Node) {
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Priority() < queue[j].Priority()
	})
}

func (FixedPriority) UpdateParamsOnRelease(*digraph.DAG, int32) error {
	return nil // priorities are assigned before simulation starts
}

// AssignRateMonotonic sets every node's priority to the DAG's period
// (lower period => higher priority, since the comparator is ascending).
func AssignRateMonotonic(dag *digraph.DAG) error {
	src, err := dag.Source()
	if err != nil {
		return err
	}
	period := src.MustGet(digraph.ParamPeriod)
	dag.SetAllParams(digraph.ParamPriority, period)
	return nil
}

// AssignGreedy sets every node to the same priority. It is paired with
// NonPreemptive, so Greedy never preempts and simply runs whatever is
// already allocated to completion; with all priorities equal, the kernel's
// strict key comparison would find no victim in any case.
func AssignGreedy(dag *digraph.DAG) {
	dag.SetAllParams(digraph.ParamPriority, 0)
}
