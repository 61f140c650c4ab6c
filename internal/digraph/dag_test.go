// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package digraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagu-org/dagsim/internal/digraph"
)

// buildDiamond builds 0 -> {1,2} -> 3.
func buildDiamond(t *testing.T) *digraph.DAG {
	t.Helper()
	d := digraph.New("diamond")
	for i := 0; i < 4; i++ {
		require.NoError(t, d.AddNode(digraph.NewNode(i, 1)))
	}
	require.NoError(t, d.AddEdge(0, 1, 0))
	require.NoError(t, d.AddEdge(0, 2, 0))
	require.NoError(t, d.AddEdge(1, 3, 0))
	require.NoError(t, d.AddEdge(2, 3, 0))
	return d
}

func TestDAG_AddNodeRejectsIDMismatch(t *testing.T) {
	d := digraph.New("x")
	err := d.AddNode(digraph.NewNode(1, 1))
	assert.ErrorIs(t, err, digraph.ErrNodeIDMismatch)
}

func TestDAG_SourceAndSinks(t *testing.T) {
	d := buildDiamond(t)

	src, err := d.Source()
	require.NoError(t, err)
	assert.Equal(t, 0, src.ID)

	sinks := d.Sinks()
	require.Len(t, sinks, 1)
	assert.Equal(t, 3, sinks[0].ID)
}

func TestDAG_SourceNotUniqueIsAnError(t *testing.T) {
	d := digraph.New("two-sources")
	require.NoError(t, d.AddNode(digraph.NewNode(0, 1)))
	require.NoError(t, d.AddNode(digraph.NewNode(1, 1)))

	_, err := d.Source()
	assert.ErrorIs(t, err, digraph.ErrSourceNotUnique)
}

func TestDAG_PreSuc(t *testing.T) {
	d := buildDiamond(t)

	suc, err := d.Suc(0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, suc)

	pre, err := d.Pre(3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, pre)
}

func TestDAG_AncestorsDescendants(t *testing.T) {
	d := buildDiamond(t)

	desc, err := d.Descendants(0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, desc)

	anc, err := d.Ancestors(3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 0}, anc)
}

func TestDAG_IsReady(t *testing.T) {
	d := buildDiamond(t)

	ready, err := d.IsReady(3)
	require.NoError(t, err)
	assert.False(t, ready)

	require.NoError(t, d.SetParam(3, digraph.ParamPreDoneCount, 2))
	ready, err = d.IsReady(3)
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestDAG_ParamWriteThrough(t *testing.T) {
	d := buildDiamond(t)

	require.NoError(t, d.AddParam(0, "custom", 42))
	assert.ErrorIs(t, d.AddParam(0, "custom", 1), digraph.ErrParamExists)

	require.NoError(t, d.UpdateParam(0, "custom", 7))
	n, err := d.Node(0)
	require.NoError(t, err)
	assert.Equal(t, int32(7), n.GetOr("custom", -1))

	d.SetAllParams(digraph.ParamPriority, 9)
	for i := 0; i < d.NodeCount(); i++ {
		n, err := d.Node(i)
		require.NoError(t, err)
		assert.Equal(t, int32(9), n.Priority())
	}
}

func TestDAG_NodeReturnsAClone(t *testing.T) {
	d := buildDiamond(t)

	n, err := d.Node(0)
	require.NoError(t, err)
	n.Set(digraph.ParamExecutionTime, 100)

	again, err := d.Node(0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), again.ExecutionTime())
}

func TestDAG_DAGParams(t *testing.T) {
	d := buildDiamond(t)
	require.NoError(t, d.SetParam(0, digraph.ParamPeriod, 20))
	require.NoError(t, d.SetParam(0, digraph.ParamRelativeDeadline, 20))
	require.NoError(t, d.SetParam(0, digraph.ParamDAGID, 3))

	period, relDeadline, dagID, err := d.DAGParams()
	require.NoError(t, err)
	assert.Equal(t, int32(20), period)
	assert.Equal(t, int32(20), relDeadline)
	assert.Equal(t, int32(3), dagID)
}
