// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"

	"github.com/dagu-org/dagsim/internal/core"
	"github.com/dagu-org/dagsim/internal/digraph"
	"github.com/dagu-org/dagsim/internal/report"
)

type dagStatus int

const (
	waiting dagStatus = iota
	ready
)

// dagState tracks one DAG's release counter and, between a release and the
// completion of every sink it spawned, whether it is still in flight.
type dagState struct {
	status        dagStatus
	releaseCount  int32
	totalSinks    int
	finishedSinks int
}

// Scheduler is the policy-agnostic kernel: it owns the ready queue and
// drives every DAG's release/sort/dispatch/tick/completion cycle one unit
// of simulated time at a time (spec §4.4, §5).
type Scheduler struct {
	dags      []*digraph.DAG
	processor *core.Processor
	policy    Policy
	preempt   PreemptiveType
	states    []dagState
	readyQ    []digraph.Node
}

// NewScheduler builds a kernel over dags, assigning each DAG's dag_id (its
// index in the slice) to every one of its nodes.
func NewScheduler(dags []*digraph.DAG, processor *core.Processor, policy Policy, preempt PreemptiveType) *Scheduler {
	states := make([]dagState, len(dags))
	for i, d := range dags {
		d.SetAllParams(digraph.ParamDAGID, int32(i))
		states[i] = dagState{status: waiting, totalSinks: len(d.Sinks())}
	}
	return &Scheduler{
		dags:      dags,
		processor: processor,
		policy:    policy,
		preempt:   preempt,
		states:    states,
	}
}

// Schedule runs the kernel loop for up to duration ticks, or until a
// deadline miss ends the run early. Structural failures (a missing
// required parameter, a non-unique source, an out-of-range core) surface
// as err; a missed deadline does not — it is reported via the returned
// Result's DeadlineMissed field, per spec §7.
func (s *Scheduler) Schedule(ctx context.Context, duration int32) (result *report.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("scheduler: %v", r)
			}
		}
	}()

	for _, d := range s.dags {
		for i := 0; i < d.NodeCount(); i++ {
			if err := d.SetParam(i, digraph.ParamPreDoneCount, 0); err != nil {
				return nil, err
			}
			if err := d.SetParam(i, digraph.ParamJobID, 0); err != nil {
				return nil, err
			}
		}
	}

	agg := report.NewAggregator(len(s.dags), s.processor.NumCores())
	var currentTime int32
	var miss *report.Miss

loop:
	for currentTime < duration {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := s.release(agg, currentTime); err != nil {
			return nil, err
		}
		s.policy.SortReadyQueue(s.readyQ)

		if err := s.dispatch(); err != nil {
			return nil, err
		}

		results := s.processor.Process()
		currentTime++
		agg.WriteProcessingTime(busyCoreIndices(results))

		m, err := s.complete(agg, results, currentTime)
		if err != nil {
			return nil, err
		}
		if m != nil {
			miss = m
			break loop
		}

		s.policy.SortReadyQueue(s.readyQ)
	}

	pendingSinks := make([]int, len(s.states))
	for i, st := range s.states {
		if st.status == ready {
			pendingSinks[i] = st.totalSinks - st.finishedSinks
		}
	}
	return agg.Finalize(currentTime, miss, pendingSinks), nil
}

// release enqueues the source node of every DAG that is Waiting and whose
// period has elapsed, recomputing the policy's release-time parameters
// first (spec §4.5/§4.6 run before the first sort sees the new job). A DAG
// still Ready (its prior job's sinks haven't all finished) is skipped even
// if its period has elapsed, per spec §4.4's release condition and §9's
// non-overlapping-jobs invariant — otherwise a job that overruns its
// period under contention would have its job_id clobbered mid-flight.
func (s *Scheduler) release(agg *report.Aggregator, currentTime int32) error {
	for i, d := range s.dags {
		st := &s.states[i]
		period, _, _, err := d.DAGParams()
		if err != nil {
			return err
		}
		if st.status != waiting || currentTime != period*st.releaseCount {
			continue
		}
		if err := s.policy.UpdateParamsOnRelease(d, st.releaseCount); err != nil {
			return err
		}
		d.SetAllParams(digraph.ParamJobID, st.releaseCount)
		src, err := d.Source()
		if err != nil {
			return err
		}
		s.readyQ = append(s.readyQ, src)
		agg.WriteDAGRelease(i, currentTime)
		st.releaseCount++
		st.status = ready
	}
	return nil
}

// dispatch allocates ready-queue nodes onto idle cores, preempting the
// current worst-key running node when the policy is preemptive and the
// ready head's key strictly beats it, until neither move is possible.
func (s *Scheduler) dispatch() error {
	for len(s.readyQ) > 0 {
		if coreID, ok := s.processor.IdleCore(); ok {
			if err := s.processor.Allocate(coreID, s.readyQ[0]); err != nil {
				return err
			}
			s.readyQ = s.readyQ[1:]
			continue
		}
		if !s.preempt.IsPreemptive() {
			return nil
		}
		headKey := s.readyQ[0].MustGet(s.preempt.Key())
		victimKey, victimCore, err := s.processor.MaxKey(s.preempt.Key())
		if err != nil {
			return nil
		}
		if headKey >= victimKey {
			return nil
		}
		victim, err := s.processor.Preempt(victimCore)
		if err != nil {
			return err
		}
		s.readyQ = append(s.readyQ, victim)
		s.policy.SortReadyQueue(s.readyQ)
	}
	return nil
}

// complete applies every core's Done result, in core-index order: sink
// completions are logged and checked against the deadline; non-sink
// completions write through pre_done_count and enqueue newly-ready
// successors.
func (s *Scheduler) complete(agg *report.Aggregator, results []core.ProcessResult, currentTime int32) (*report.Miss, error) {
	for _, r := range results {
		if r.Result != core.Done {
			continue
		}
		node := r.Node
		dagID := int(node.DAGID())
		d := s.dags[dagID]
		st := &s.states[dagID]

		sucs, err := d.Suc(node.ID)
		if err != nil {
			return nil, err
		}
		if len(sucs) == 0 {
			response := agg.WriteDAGFinish(dagID, currentTime)
			relDeadline, err := s.relativeDeadline(d, node)
			if err != nil {
				return nil, err
			}
			if response > relDeadline {
				return &report.Miss{
					DAGID:            dagID,
					JobID:            node.JobID(),
					ResponseTime:     response,
					RelativeDeadline: relDeadline,
				}, nil
			}
			st.finishedSinks++
			if st.finishedSinks == st.totalSinks {
				st.finishedSinks = 0
				st.status = waiting
				// The job is complete: clear predecessor counts so the next
				// release's successors become ready again.
				d.SetAllParams(digraph.ParamPreDoneCount, 0)
			}
			continue
		}

		for _, suc := range sucs {
			cur, err := d.Node(suc)
			if err != nil {
				return nil, err
			}
			if err := d.SetParam(suc, digraph.ParamPreDoneCount, cur.PreDoneCount()+1); err != nil {
				return nil, err
			}
			isReady, err := d.IsReady(suc)
			if err != nil {
				return nil, err
			}
			if !isReady {
				continue
			}
			sucNode, err := d.Node(suc)
			if err != nil {
				return nil, err
			}
			s.readyQ = append(s.readyQ, sucNode)
		}
	}
	return nil, nil
}

// relativeDeadline is node's own relative_deadline if the loader set one
// on it directly, else its DAG's source-level default (spec §4.5, the same
// fallback global-EDF uses to compute ref_absolute_deadline).
func (s *Scheduler) relativeDeadline(d *digraph.DAG, node digraph.Node) (int32, error) {
	if v, ok := node.Get(digraph.ParamRelativeDeadline); ok {
		return v, nil
	}
	_, relDeadline, _, err := d.DAGParams()
	return relDeadline, err
}

// busyCoreIndices returns the indices of cores that advanced work this
// tick (InProgress, or Done on a non-dummy node) — the utilization
// accounting unit (spec §6).
func busyCoreIndices(results []core.ProcessResult) []int {
	var out []int
	for i, r := range results {
		if r.Result == core.InProgress || (r.Result == core.Done && !r.Node.IsDummy()) {
			out = append(out, i)
		}
	}
	return out
}
