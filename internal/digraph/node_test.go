// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package digraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagu-org/dagsim/internal/digraph"
)

func TestNode_GetSetAddUpdate(t *testing.T) {
	n := digraph.NewNode(0, 10)

	v, ok := n.Get(digraph.ParamExecutionTime)
	require.True(t, ok)
	assert.Equal(t, int32(10), v)

	_, ok = n.Get(digraph.ParamPriority)
	assert.False(t, ok)
	assert.Equal(t, int32(99), n.GetOr(digraph.ParamPriority, 99))

	require.NoError(t, n.Add(digraph.ParamPriority, 5))
	assert.ErrorIs(t, n.Add(digraph.ParamPriority, 6), digraph.ErrParamExists)

	require.NoError(t, n.Update(digraph.ParamPriority, 7))
	assert.Equal(t, int32(7), n.Priority())
	assert.ErrorIs(t, n.Update(digraph.ParamDummy, 1), digraph.ErrParamMissing)

	n.Set(digraph.ParamDummy, 1)
	assert.True(t, n.IsDummy())
}

func TestNode_MustGetPanicsOnMissing(t *testing.T) {
	n := digraph.NewNode(3, 10)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, digraph.ErrParamMissing)
	}()
	n.Priority()
}

func TestNode_CloneIsIndependent(t *testing.T) {
	n := digraph.NewNode(0, 10)
	clone := n.Clone()
	clone.Set(digraph.ParamExecutionTime, 3)

	assert.Equal(t, int32(10), n.ExecutionTime())
	assert.Equal(t, int32(3), clone.ExecutionTime())
}

func TestNode_IsPreempted(t *testing.T) {
	n := digraph.NewNode(0, 10)
	assert.False(t, n.IsPreempted())
	n.Set(digraph.ParamIsPreempted, 1)
	assert.True(t, n.IsPreempted())
}
