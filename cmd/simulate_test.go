// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagu-org/dagsim/internal/config"
	"github.com/dagu-org/dagsim/internal/logger"
	"github.com/dagu-org/dagsim/internal/notify"
)

const oneNodeDAG = `
name: solo
period: 10
relative_deadline: 10
nodes:
  - id: 0
    execution_time: 2
`

func writeDAG(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestBuildScheduler_UnknownAlgorithmIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeDAG(t, dir, "solo.yaml", oneNodeDAG)

	cfg := config.Default()
	cfg.DAGsDir = dir
	cfg.Cores = 1
	cfg.Algorithm = "bogus"

	_, err := buildScheduler(&cfg, logger.Default)
	assert.Error(t, err)
}

func TestBuildScheduler_WiresEachKnownAlgorithm(t *testing.T) {
	dir := t.TempDir()
	writeDAG(t, dir, "solo.yaml", oneNodeDAG)

	for _, algo := range []string{"global-edf", "rate-monotonic", "greedy"} {
		cfg := config.Default()
		cfg.DAGsDir = dir
		cfg.Cores = 2
		cfg.Algorithm = algo

		sched, err := buildScheduler(&cfg, logger.Default)
		require.NoError(t, err, "algorithm %s", algo)
		assert.NotNil(t, sched)
	}
}

func TestRunOnce_CompletesAndDumpsReport(t *testing.T) {
	dagsDir := t.TempDir()
	writeDAG(t, dagsDir, "solo.yaml", oneNodeDAG)
	outDir := t.TempDir()

	cfg := config.Default()
	cfg.DAGsDir = dagsDir
	cfg.Cores = 1
	cfg.Duration = 30
	cfg.Algorithm = "greedy"
	cfg.OutDir = outDir

	result, err := runOnce(context.Background(), &cfg, logger.Default, notify.NopNotifier{})
	require.NoError(t, err)
	assert.False(t, result.DeadlineMissed)
	assert.Equal(t, int32(30), result.ScheduleLength)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunOnce_ReportsDeadlineMiss(t *testing.T) {
	dagsDir := t.TempDir()
	writeDAG(t, dagsDir, "tight.yaml", `
name: tight
period: 5
relative_deadline: 2
nodes:
  - id: 0
    execution_time: 4
`)
	outDir := t.TempDir()

	cfg := config.Default()
	cfg.DAGsDir = dagsDir
	cfg.Cores = 1
	cfg.Duration = 20
	cfg.Algorithm = "greedy"
	cfg.OutDir = outDir

	result, err := runOnce(context.Background(), &cfg, logger.Default, notify.NopNotifier{})
	require.NoError(t, err)
	assert.True(t, result.DeadlineMissed)
}
