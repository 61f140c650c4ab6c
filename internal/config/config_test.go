// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagu-org/dagsim/internal/config"
)

func TestLoad_FallsBackToDefaultsWithNoFileOrEnv(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), *cfg)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("DAGSIM_CORES", "8")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Cores)
	assert.Equal(t, config.Default().Algorithm, cfg.Algorithm, "unset fields keep their default")
}
