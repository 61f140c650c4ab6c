// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagu-org/dagsim/internal/logger"
)

func TestLogger_WritesInfoNotDebugByDefault(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.WithWriter(&buf))

	log.Debug("hidden")
	log.Info("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestLogger_WithDebugShowsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.WithDebug(), logger.WithWriter(&buf))

	log.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLogger_WithQuietDiscardsEverything(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.WithQuiet(), logger.WithWriter(&buf))

	log.Error("should not appear")
	assert.Empty(t, buf.String())
}

func TestLogger_FanoutWritesToEveryWriter(t *testing.T) {
	var a, b bytes.Buffer
	log := logger.NewLogger(logger.WithWriter(&a), logger.WithWriter(&b))

	log.Infof("hello %s", "world")
	assert.Contains(t, a.String(), "hello world")
	assert.Contains(t, b.String(), "hello world")
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.WithFormat("json"), logger.WithWriter(&buf))

	log.Info("structured")
	assert.Contains(t, buf.String(), `"msg":"structured"`)
}
