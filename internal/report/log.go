// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package report is the scheduler's log aggregator (spec §3 "Log state"):
// it accumulates release/finish times and per-core busy ticks as the
// kernel runs, then derives per-sink response-time statistics and
// processor-wide utilization statistics once the run ends. It also owns
// the §6 "Log output" contract: Result is a pure serializable struct,
// dumped to YAML by Dump.
package report

import "math"

// DAGLog holds one DAG's release/finish history and derived response-time
// statistics.
type DAGLog struct {
	DAGID               int     `yaml:"dag_id" json:"dag_id"`
	ReleaseTimes        []int32 `yaml:"release_times" json:"release_times"`
	FinishTimes         []int32 `yaml:"finish_times" json:"finish_times"`
	ResponseTimes       []int32 `yaml:"response_times" json:"response_times"`
	BestResponseTime    int32   `yaml:"best_response_time" json:"best_response_time"`
	AverageResponseTime float64 `yaml:"average_response_time" json:"average_response_time"`
	WorstResponseTime   int32   `yaml:"worst_response_time" json:"worst_response_time"`
}

func newDAGLog(dagID int) DAGLog {
	return DAGLog{DAGID: dagID}
}

// finalize computes best/average/worst from ResponseTimes, which
// WriteDAGFinish already populated one entry per sink completion.
// pendingSinks accounts for a job still in flight when the run ended (the
// duration ran out, or a different DAG's miss broke the loop first): each
// of its not-yet-completed sinks gets an unbounded response time, matching
// the original implementation's "mark as a deadline miss by maximizing the
// response time" convention.
func (d *DAGLog) finalize(pendingSinks int) {
	for i := 0; i < pendingSinks; i++ {
		d.ResponseTimes = append(d.ResponseTimes, math.MaxInt32)
	}
	if len(d.ResponseTimes) == 0 {
		return
	}
	var sum int64
	d.BestResponseTime = d.ResponseTimes[0]
	d.WorstResponseTime = d.ResponseTimes[0]
	for _, r := range d.ResponseTimes {
		if r < d.BestResponseTime {
			d.BestResponseTime = r
		}
		if r > d.WorstResponseTime {
			d.WorstResponseTime = r
		}
		sum += int64(r)
	}
	d.AverageResponseTime = float64(sum) / float64(len(d.ResponseTimes))
}

// CoreLog holds one core's cumulative busy-tick count and utilization.
type CoreLog struct {
	CoreID        int     `yaml:"core_id" json:"core_id"`
	TotalProcTime int32   `yaml:"total_proc_time" json:"total_proc_time"`
	Utilization   float64 `yaml:"utilization" json:"utilization"`
}

func newCoreLog(coreID int) CoreLog {
	return CoreLog{CoreID: coreID}
}

func (c *CoreLog) finalize(scheduleLength int32) {
	if scheduleLength == 0 {
		return
	}
	c.Utilization = float64(c.TotalProcTime) / float64(scheduleLength)
}

// ProcessorLog summarizes every core plus the processor-wide mean and
// variance of utilization.
type ProcessorLog struct {
	NumCores            int       `yaml:"num_cores" json:"num_cores"`
	CoreLogs            []CoreLog `yaml:"core_logs" json:"core_logs"`
	AverageUtilization  float64   `yaml:"average_utilization" json:"average_utilization"`
	VarianceUtilization float64   `yaml:"variance_utilization" json:"variance_utilization"`
}

func newProcessorLog(numCores int) ProcessorLog {
	logs := make([]CoreLog, numCores)
	for i := range logs {
		logs[i] = newCoreLog(i)
	}
	return ProcessorLog{NumCores: numCores, CoreLogs: logs}
}

func (p *ProcessorLog) finalize(scheduleLength int32) {
	for i := range p.CoreLogs {
		p.CoreLogs[i].finalize(scheduleLength)
	}
	var sum float64
	for _, c := range p.CoreLogs {
		sum += c.Utilization
	}
	p.AverageUtilization = sum / float64(len(p.CoreLogs))
	var varSum float64
	for _, c := range p.CoreLogs {
		d := c.Utilization - p.AverageUtilization
		varSum += d * d
	}
	p.VarianceUtilization = varSum / float64(len(p.CoreLogs))
}

// Result is the scheduler's final, immutable log: the §6 "pure
// serializable struct" contract handed to external log output.
type Result struct {
	RunID                  string       `yaml:"run_id,omitempty" json:"run_id,omitempty"`
	ScheduleLength         int32        `yaml:"schedule_length" json:"schedule_length"`
	ProcessorLog           ProcessorLog `yaml:"processor_log" json:"processor_log"`
	DAGSetLog              []DAGLog     `yaml:"dag_set_log" json:"dag_set_log"`
	DeadlineMissed         bool         `yaml:"deadline_missed" json:"deadline_missed"`
	MissedJobDAGID         *int         `yaml:"missed_job_dag_id,omitempty" json:"missed_job_dag_id,omitempty"`
	MissedJobID            int32        `yaml:"missed_job_id,omitempty" json:"missed_job_id,omitempty"`
	MissedResponseTime     int32        `yaml:"missed_response_time,omitempty" json:"missed_response_time,omitempty"`
	MissedRelativeDeadline int32        `yaml:"missed_relative_deadline,omitempty" json:"missed_relative_deadline,omitempty"`
}

// Miss bundles the detail of a deadline miss for Finalize. Zero value
// means no miss occurred.
type Miss struct {
	DAGID            int
	JobID            int32
	ResponseTime     int32
	RelativeDeadline int32
}

// Aggregator accumulates log events during a run; Finalize turns it into
// an immutable Result.
type Aggregator struct {
	dagLogs []DAGLog
	procLog ProcessorLog
	// currentRelease is the release time of each DAG's in-flight job. A
	// DAG never has two jobs in flight at once (spec §9), so every sink
	// completion for dagID — however many sinks it has — measures its
	// response time against this single value.
	currentRelease []int32
}

// NewAggregator returns an Aggregator for numDAGs DAGs (indexed by dag_id)
// and a numCores-core processor.
func NewAggregator(numDAGs, numCores int) *Aggregator {
	dagLogs := make([]DAGLog, numDAGs)
	for i := range dagLogs {
		dagLogs[i] = newDAGLog(i)
	}
	return &Aggregator{
		dagLogs:        dagLogs,
		procLog:        newProcessorLog(numCores),
		currentRelease: make([]int32, numDAGs),
	}
}

// WriteDAGRelease records a release time for dagID.
func (a *Aggregator) WriteDAGRelease(dagID int, t int32) {
	a.dagLogs[dagID].ReleaseTimes = append(a.dagLogs[dagID].ReleaseTimes, t)
	a.currentRelease[dagID] = t
}

// WriteDAGFinish records one sink's finish time for dagID and returns its
// response time (finish - the current job's release). Called once per
// sink completion, so a multi-sink DAG calls it more than once per job —
// each call shares the same job's release time via currentRelease.
func (a *Aggregator) WriteDAGFinish(dagID int, t int32) int32 {
	dl := &a.dagLogs[dagID]
	response := t - a.currentRelease[dagID]
	dl.FinishTimes = append(dl.FinishTimes, t)
	dl.ResponseTimes = append(dl.ResponseTimes, response)
	return response
}

// WriteProcessingTime increments the busy-tick counter for each core index
// that produced an InProgress or Done(non-dummy) result this tick.
func (a *Aggregator) WriteProcessingTime(coreIndices []int) {
	for _, i := range coreIndices {
		a.procLog.CoreLogs[i].TotalProcTime++
	}
}

// Finalize computes per-core utilization, processor mean/variance, and
// per-sink response-time statistics, and freezes the result. Pass miss
// when a deadline was missed; nil means the run completed clean.
// pendingSinks[i], if present, is the number of dagLogs[i]'s current job's
// sinks that had not completed when the run ended; it may be shorter than
// dagLogs or nil, in which case the missing entries are treated as 0.
func (a *Aggregator) Finalize(scheduleLength int32, miss *Miss, pendingSinks []int) *Result {
	a.procLog.finalize(scheduleLength)
	for i := range a.dagLogs {
		var pending int
		if i < len(pendingSinks) {
			pending = pendingSinks[i]
		}
		a.dagLogs[i].finalize(pending)
	}
	result := &Result{
		ScheduleLength: scheduleLength,
		ProcessorLog:   a.procLog,
		DAGSetLog:      append([]DAGLog(nil), a.dagLogs...),
	}
	if miss != nil {
		result.DeadlineMissed = true
		dagID := miss.DAGID
		result.MissedJobDAGID = &dagID
		result.MissedJobID = miss.JobID
		result.MissedResponseTime = miss.ResponseTime
		result.MissedRelativeDeadline = miss.RelativeDeadline
	}
	return result
}
