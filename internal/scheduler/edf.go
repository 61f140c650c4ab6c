// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"fmt"
	"sort"

	"github.com/dagu-org/dagsim/internal/digraph"
)

// GlobalEDF orders the ready queue ascending by ref_absolute_deadline,
// ties broken by node id then dag_id. On every release it recomputes
// ref_absolute_deadline for the releasing DAG by back-propagating sink
// deadlines up the graph (spec §4.5).
type GlobalEDF struct{}

// NewGlobalEDF returns the global-EDF policy.
func NewGlobalEDF() GlobalEDF { return GlobalEDF{} }

func (GlobalEDF) Name() string { return "global-edf" }

func (GlobalEDF) SortReadyQueue(queue []digraph.Node) {
	sort.SliceStable(queue, func(i, j int) bool {
		a, b := queue[i], queue[j]
		da, db := a.RefAbsoluteDeadline(), b.RefAbsoluteDeadline()
		if da != db {
			return da < db
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.DAGID() < b.DAGID()
	})
}

// UpdateParamsOnRelease back-propagates sink deadlines up the DAG for
// release instance jobID:
//
//  1. for each sink s: ref_absolute_deadline[s] = relative_deadline[s] + jobID*period
//  2. for each non-sink v: ref_absolute_deadline[v] = min over descendant
//     sinks d of ref_absolute_deadline[d]
func (GlobalEDF) UpdateParamsOnRelease(dag *digraph.DAG, jobID int32) error {
	src, err := dag.Source()
	if err != nil {
		return err
	}
	period := src.MustGet(digraph.ParamPeriod)

	sinkIDs := map[int]bool{}
	for _, sink := range dag.Sinks() {
		sinkIDs[sink.ID] = true
		deadline := sink.GetOr(digraph.ParamRelativeDeadline, src.MustGet(digraph.ParamRelativeDeadline))
		refAbs := deadline + jobID*period
		if err := dag.SetParam(sink.ID, digraph.ParamRefAbsoluteDeadline, refAbs); err != nil {
			return err
		}
	}

	for _, node := range dag.Nodes() {
		if sinkIDs[node.ID] {
			continue
		}
		descendants, err := dag.Descendants(node.ID)
		if err != nil {
			return err
		}
		var min int32
		found := false
		for _, d := range descendants {
			if !sinkIDs[d] {
				continue
			}
			dn, err := dag.Node(d)
			if err != nil {
				return err
			}
			v := dn.MustGet(digraph.ParamRefAbsoluteDeadline)
			if !found || v < min {
				min, found = v, true
			}
		}
		if !found {
			return fmt.Errorf("scheduler: node %d has no descendant sink to back-propagate a deadline from", node.ID)
		}
		if err := dag.SetParam(node.ID, digraph.ParamRefAbsoluteDeadline, min); err != nil {
			return err
		}
	}
	return nil
}
