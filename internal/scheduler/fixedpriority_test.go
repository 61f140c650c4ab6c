// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagu-org/dagsim/internal/digraph"
	"github.com/dagu-org/dagsim/internal/scheduler"
)

func TestFixedPriority_SortReadyQueueAscending(t *testing.T) {
	a := digraph.NewNode(0, 1)
	a.Set(digraph.ParamPriority, 5)
	b := digraph.NewNode(1, 1)
	b.Set(digraph.ParamPriority, 2)
	c := digraph.NewNode(2, 1)
	c.Set(digraph.ParamPriority, 2)

	queue := []digraph.Node{a, b, c}
	scheduler.NewFixedPriority().SortReadyQueue(queue)

	assert.Equal(t, []int{1, 2, 0}, []int{queue[0].ID, queue[1].ID, queue[2].ID})
}

func TestAssignRateMonotonic_PriorityEqualsPeriod(t *testing.T) {
	d := digraph.New("x")
	require.NoError(t, d.AddNode(digraph.NewNode(0, 2)))
	require.NoError(t, d.AddNode(digraph.NewNode(1, 2)))
	require.NoError(t, d.AddEdge(0, 1, 0))
	require.NoError(t, d.SetParam(0, digraph.ParamPeriod, 15))

	require.NoError(t, scheduler.AssignRateMonotonic(d))

	for i := 0; i < d.NodeCount(); i++ {
		n, err := d.Node(i)
		require.NoError(t, err)
		assert.Equal(t, int32(15), n.Priority())
	}
}

func TestAssignGreedy_UniformPriority(t *testing.T) {
	d := digraph.New("x")
	require.NoError(t, d.AddNode(digraph.NewNode(0, 2)))
	require.NoError(t, d.AddNode(digraph.NewNode(1, 2)))
	require.NoError(t, d.AddEdge(0, 1, 0))

	scheduler.AssignGreedy(d)

	for i := 0; i < d.NodeCount(); i++ {
		n, err := d.Node(i)
		require.NoError(t, err)
		assert.Equal(t, int32(0), n.Priority())
	}
}
