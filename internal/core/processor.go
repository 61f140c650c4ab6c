// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package core

import (
	"errors"
	"fmt"

	"github.com/dagu-org/dagsim/internal/digraph"
)

// ErrNoMaxKey is returned by MaxKey when no core is currently processing.
var ErrNoMaxKey = errors.New("processor: no busy core")

// Processor is a fixed-size, ordered pool of Cores indexed by core id in
// [0, N).
type Processor struct {
	Cores []*Core
}

// NewProcessor returns a Processor of n idle Cores.
func NewProcessor(n int) *Processor {
	cores := make([]*Core, n)
	for i := range cores {
		cores[i] = NewCore()
	}
	return &Processor{Cores: cores}
}

// NumCores returns the size of the pool.
func (p *Processor) NumCores() int { return len(p.Cores) }

// Allocate assigns node to the core at coreID.
func (p *Processor) Allocate(coreID int, node digraph.Node) error {
	if coreID < 0 || coreID >= len(p.Cores) {
		return fmt.Errorf("processor: core %d out of range", coreID)
	}
	return p.Cores[coreID].Allocate(node)
}

// Preempt recovers the node running on coreID.
func (p *Processor) Preempt(coreID int) (digraph.Node, error) {
	if coreID < 0 || coreID >= len(p.Cores) {
		return digraph.Node{}, fmt.Errorf("processor: core %d out of range", coreID)
	}
	return p.Cores[coreID].Preempt()
}

// Process advances every core by one unit and returns one ProcessResult per
// core, indexed by core id (spec §4.3).
func (p *Processor) Process() []ProcessResult {
	results := make([]ProcessResult, len(p.Cores))
	for i, c := range p.Cores {
		results[i] = c.Process()
	}
	return results
}

// IdleCore returns the lowest-indexed idle core, if any.
func (p *Processor) IdleCore() (int, bool) {
	for i, c := range p.Cores {
		if c.IsIdle {
			return i, true
		}
	}
	return 0, false
}

// NumIdleCores reports how many cores are currently idle.
func (p *Processor) NumIdleCores() int {
	n := 0
	for _, c := range p.Cores {
		if c.IsIdle {
			n++
		}
	}
	return n
}

// MaxKey returns the value of param key and the core index among
// currently-busy cores with the numerically largest value — the
// preemption victim, whose policy-key value is worst. Ties are broken by
// lowest core index (spec §9: "deterministically by core index (lowest)").
func (p *Processor) MaxKey(key string) (value int32, coreID int, err error) {
	found := false
	for i, c := range p.Cores {
		if c.IsIdle {
			continue
		}
		v := c.Processing.MustGet(key)
		if !found || v > value {
			value, coreID, found = v, i, true
		}
	}
	if !found {
		return 0, 0, ErrNoMaxKey
	}
	return value, coreID, nil
}
