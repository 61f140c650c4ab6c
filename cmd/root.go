// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd wires dagsim's cobra command tree: run, serve, version.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dagu-org/dagsim/internal/build"
)

var rootCmd = &cobra.Command{
	Use:   build.AppName,
	Short: "Discrete-event simulator of global multiprocessor scheduling of periodic DAG tasks",
}

// Execute runs the command tree, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(createRunCommand())
	rootCmd.AddCommand(createServeCommand())
	rootCmd.AddCommand(createVersionCommand())
}
