// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package core models a single processing unit (Core) and a fixed-size
// pool of them (Processor): the allocate/process/preempt state machine the
// scheduler kernel drives one tick at a time.
package core

import (
	"errors"
	"fmt"

	"github.com/dagu-org/dagsim/internal/digraph"
)

// ErrCoreBusy is returned by Allocate when the core is not idle.
var ErrCoreBusy = errors.New("core: already busy")

// ErrCoreIdle is returned by Preempt when the core has nothing running.
var ErrCoreIdle = errors.New("core: is idle")

// Result is what Process returns for one core after one tick.
type Result int

const (
	// Idle means the core had nothing to do this tick.
	Idle Result = iota
	// InProgress means the core's node advanced by one unit but did not finish.
	InProgress
	// Done means the core's node finished this tick; Node holds the snapshot.
	Done
)

func (r Result) String() string {
	switch r {
	case Idle:
		return "Idle"
	case InProgress:
		return "InProgress"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// ProcessResult is the outcome of one Core.Process call.
type ProcessResult struct {
	Result Result
	Node   digraph.Node // valid only when Result == Done
}

// Core is one processing unit. The invariant IsIdle <=> Processing == nil
// <=> Remain == 0 holds at every observation point (spec §8, invariant 1).
type Core struct {
	IsIdle     bool
	Processing *digraph.Node
	Remain     int32
}

// NewCore returns an idle core.
func NewCore() *Core {
	return &Core{IsIdle: true}
}

// Allocate assigns node to the core. Requires the core to be idle and the
// node to carry execution_time.
func (c *Core) Allocate(node digraph.Node) error {
	if !c.IsIdle {
		return ErrCoreBusy
	}
	remain := node.ExecutionTime() // panics if execution_time absent, per spec §7
	n := node.Clone()
	c.Processing = &n
	c.Remain = remain
	c.IsIdle = false
	return nil
}

// Process advances the core by one unit. Idle cores return Idle without
// effect. A core whose node completes this tick resets to idle and returns
// the finished node snapshot.
func (c *Core) Process() ProcessResult {
	if c.IsIdle {
		return ProcessResult{Result: Idle}
	}
	c.Remain--
	if c.Remain == 0 {
		node := *c.Processing
		c.Processing = nil
		c.IsIdle = true
		return ProcessResult{Result: Done, Node: node}
	}
	return ProcessResult{Result: InProgress}
}

// Preempt extracts the running node, writing its remaining execution time
// back into execution_time and marking is_preempted, then resets the core
// to idle. The returned node re-enters the ready queue as a still-
// incomplete sub-job (spec §4.2).
func (c *Core) Preempt() (digraph.Node, error) {
	if c.IsIdle {
		return digraph.Node{}, ErrCoreIdle
	}
	node := *c.Processing
	node.Set(digraph.ParamExecutionTime, c.Remain)
	node.Set(digraph.ParamIsPreempted, 1)
	c.Processing = nil
	c.Remain = 0
	c.IsIdle = true
	return node, nil
}

func (c *Core) String() string {
	if c.IsIdle {
		return "Core{idle}"
	}
	return fmt.Sprintf("Core{node=%d remain=%d}", c.Processing.ID, c.Remain)
}
