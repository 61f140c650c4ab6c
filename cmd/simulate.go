// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dagu-org/dagsim/internal/config"
	"github.com/dagu-org/dagsim/internal/core"
	"github.com/dagu-org/dagsim/internal/digraph"
	"github.com/dagu-org/dagsim/internal/loader"
	"github.com/dagu-org/dagsim/internal/logger"
	"github.com/dagu-org/dagsim/internal/notify"
	"github.com/dagu-org/dagsim/internal/report"
	"github.com/dagu-org/dagsim/internal/scheduler"
	"github.com/dagu-org/dagsim/internal/telemetry"
)

// buildScheduler loads cfg.DAGsDir and wires a kernel for cfg.Algorithm:
//
//   - global-edf:      GlobalEDF policy, preemptive on ref_absolute_deadline
//   - rate-monotonic:  FixedPriority with priority=period, preemptive on priority
//   - greedy:          FixedPriority with uniform priority, non-preemptive
func buildScheduler(cfg *config.Config, log logger.Logger) (*scheduler.Scheduler, error) {
	dags, err := loader.LoadDir(cfg.DAGsDir)
	if err != nil {
		return nil, err
	}

	var policy scheduler.Policy
	var preempt scheduler.PreemptiveType

	switch cfg.Algorithm {
	case "global-edf":
		policy = scheduler.NewGlobalEDF()
		preempt = scheduler.Preemptive(digraph.ParamRefAbsoluteDeadline)
	case "rate-monotonic":
		for _, d := range dags {
			if err := scheduler.AssignRateMonotonic(d); err != nil {
				return nil, err
			}
		}
		policy = scheduler.NewFixedPriority()
		preempt = scheduler.Preemptive(digraph.ParamPriority)
	case "greedy":
		for _, d := range dags {
			scheduler.AssignGreedy(d)
		}
		policy = scheduler.NewFixedPriority()
		preempt = scheduler.NonPreemptive()
	default:
		return nil, fmt.Errorf("cmd: unknown algorithm %q (want global-edf, rate-monotonic, or greedy)", cfg.Algorithm)
	}

	log.Infof("loaded %d dag(s) from %s, cores=%d, algorithm=%s", len(dags), cfg.DAGsDir, cfg.Cores, policy.Name())
	processor := core.NewProcessor(cfg.Cores)
	return scheduler.NewScheduler(dags, processor, policy, preempt), nil
}

// runOnce runs one simulation to completion (or until a deadline miss),
// dumps the report, and notifies on a miss.
func runOnce(ctx context.Context, cfg *config.Config, log logger.Logger, notifier notify.Notifier) (*report.Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "dagsim.schedule")
	defer span.End()

	sched, err := buildScheduler(cfg, log)
	if err != nil {
		return nil, err
	}

	result, err := sched.Schedule(ctx, cfg.Duration)
	if err != nil {
		return nil, err
	}
	result.RunID = uuid.NewString()
	log.Infof("run %s: schedule_length=%d", result.RunID, result.ScheduleLength)
	span.SetAttributes(
		attribute.String("dagsim.run_id", result.RunID),
		attribute.Int64("dagsim.schedule_length", int64(result.ScheduleLength)),
		attribute.Bool("dagsim.deadline_missed", result.DeadlineMissed),
	)

	if result.DeadlineMissed {
		dagID := 0
		if result.MissedJobDAGID != nil {
			dagID = *result.MissedJobDAGID
		}
		log.Warnf("deadline missed: dag=%d job=%d response_time=%d relative_deadline=%d",
			dagID, result.MissedJobID, result.MissedResponseTime, result.MissedRelativeDeadline)
		if err := notifier.DeadlineMissed(ctx, fmt.Sprintf("dag-%d", dagID), dagID,
			result.MissedJobID, result.MissedResponseTime, result.MissedRelativeDeadline); err != nil {
			log.Errorf("notify: %v", err)
		}
	}

	path, err := result.Dump(cfg.OutDir, cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	log.Infof("wrote report to %s", path)
	return result, nil
}
