// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagu-org/dagsim/internal/core"
	"github.com/dagu-org/dagsim/internal/digraph"
)

func TestProcessor_IdleCoreIsLowestIndexed(t *testing.T) {
	p := core.NewProcessor(3)
	require.NoError(t, p.Allocate(0, digraph.NewNode(0, 5)))

	idle, ok := p.IdleCore()
	require.True(t, ok)
	assert.Equal(t, 1, idle)
	assert.Equal(t, 2, p.NumIdleCores())
}

func TestProcessor_MaxKeyPicksLargestTieBrokenByLowestIndex(t *testing.T) {
	p := core.NewProcessor(3)

	high := digraph.NewNode(0, 5)
	high.Set(digraph.ParamPriority, 10)
	mid := digraph.NewNode(1, 5)
	mid.Set(digraph.ParamPriority, 10)
	low := digraph.NewNode(2, 5)
	low.Set(digraph.ParamPriority, 3)

	require.NoError(t, p.Allocate(0, high))
	require.NoError(t, p.Allocate(1, mid))
	require.NoError(t, p.Allocate(2, low))

	value, coreID, err := p.MaxKey(digraph.ParamPriority)
	require.NoError(t, err)
	assert.Equal(t, int32(10), value)
	assert.Equal(t, 0, coreID)
}

func TestProcessor_MaxKeyErrorsWithNoBusyCore(t *testing.T) {
	p := core.NewProcessor(2)
	_, _, err := p.MaxKey(digraph.ParamPriority)
	assert.ErrorIs(t, err, core.ErrNoMaxKey)
}

func TestProcessor_ProcessIndexedByCore(t *testing.T) {
	p := core.NewProcessor(2)
	require.NoError(t, p.Allocate(1, digraph.NewNode(5, 1)))

	results := p.Process()
	require.Len(t, results, 2)
	assert.Equal(t, core.Idle, results[0].Result)
	assert.Equal(t, core.Done, results[1].Result)
	assert.Equal(t, 5, results[1].Node.ID)
}
