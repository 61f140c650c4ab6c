// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package report_test

import (
	"os"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagu-org/dagsim/internal/report"
)

func TestResult_DumpWritesReadableYAML(t *testing.T) {
	agg := report.NewAggregator(1, 1)
	agg.WriteDAGRelease(0, 0)
	agg.WriteProcessingTime([]int{0})
	agg.WriteDAGFinish(0, 1)
	result := agg.Finalize(2, nil, nil)

	dir := t.TempDir()
	path, err := result.Dump(dir, "global-edf")
	require.NoError(t, err)
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var roundTripped report.Result
	require.NoError(t, yaml.Unmarshal(data, &roundTripped))
	assert.Equal(t, result.ScheduleLength, roundTripped.ScheduleLength)
	assert.Equal(t, result.DAGSetLog[0].ResponseTimes, roundTripped.DAGSetLog[0].ResponseTimes)
}
