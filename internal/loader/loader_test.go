// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagu-org/dagsim/internal/digraph"
	"github.com/dagu-org/dagsim/internal/loader"
)

const sampleDAG = `
name: chain
period: 10
relative_deadline: 10
nodes:
  - id: 0
    execution_time: 2
  - id: 1
    execution_time: 3
    relative_deadline: 8
edges:
  - from: 0
    to: 1
`

func TestLoadDir_ParsesNodesEdgesAndDAGParams(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chain.yaml"), []byte(sampleDAG), 0o644))

	dags, err := loader.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, dags, 1)

	d := dags[0]
	assert.Equal(t, "chain", d.Name)
	assert.Equal(t, 2, d.NodeCount())

	period, relDeadline, _, err := d.DAGParams()
	require.NoError(t, err)
	assert.Equal(t, int32(10), period)
	assert.Equal(t, int32(10), relDeadline)

	n1, err := d.Node(1)
	require.NoError(t, err)
	assert.Equal(t, int32(3), n1.ExecutionTime())
	v, ok := n1.Get(digraph.ParamRelativeDeadline)
	require.True(t, ok)
	assert.Equal(t, int32(8), v)

	suc, err := d.Suc(0)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, suc)
}

func TestLoadDir_NameDefaultsToFilename(t *testing.T) {
	dir := t.TempDir()
	unnamed := `
period: 5
relative_deadline: 5
nodes:
  - id: 0
    execution_time: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unnamed.yaml"), []byte(unnamed), 0o644))

	dags, err := loader.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, dags, 1)
	assert.Equal(t, "unnamed", dags[0].Name)
}

func TestLoadDir_ErrorsOnEmptyDir(t *testing.T) {
	_, err := loader.LoadDir(t.TempDir())
	assert.Error(t, err)
}

func TestLoadDir_MultipleFilesInFilenameOrder(t *testing.T) {
	dir := t.TempDir()
	one := "name: b\nperiod: 1\nrelative_deadline: 1\nnodes:\n  - id: 0\n    execution_time: 1\n"
	two := "name: a\nperiod: 1\nrelative_deadline: 1\nnodes:\n  - id: 0\n    execution_time: 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1-b.yaml"), []byte(one), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0-a.yaml"), []byte(two), 0o644))

	dags, err := loader.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, dags, 2)
	assert.Equal(t, "a", dags[0].Name)
	assert.Equal(t, "b", dags[1].Name)
}
