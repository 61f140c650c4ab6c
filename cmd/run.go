// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dagu-org/dagsim/internal/config"
	"github.com/dagu-org/dagsim/internal/logger"
	"github.com/dagu-org/dagsim/internal/notify"
	"github.com/dagu-org/dagsim/internal/report"
	"github.com/dagu-org/dagsim/internal/telemetry"
)

func createRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation to completion and write a report",
		Long:  `dagsim run --dags <dir> --cores N --duration T --algorithm {global-edf,rate-monotonic,greedy} --out <dir>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			bindRunFlags(v, cmd)
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("cmd: load config: %w", err)
			}

			var opts []logger.Option
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				opts = append(opts, logger.WithDebug())
			}
			log := logger.NewLogger(opts...)

			shutdown, err := telemetry.Setup(cmd.Context(), "dagsim", "dev")
			if err != nil {
				return fmt.Errorf("cmd: telemetry: %w", err)
			}
			defer func() { _ = shutdown(cmd.Context()) }()

			result, err := runOnce(cmd.Context(), cfg, log, notify.NopNotifier{})
			if err != nil {
				return err
			}
			printSummary(os.Stdout, result)
			if result.DeadlineMissed {
				return fmt.Errorf("cmd: deadline missed in dag %d", *result.MissedJobDAGID)
			}
			return nil
		},
	}
	cmd.Flags().String("dags", "", "directory of YAML DAG descriptions")
	cmd.Flags().Int("cores", 0, "number of processor cores")
	cmd.Flags().Int32("duration", 0, "simulation duration in ticks")
	cmd.Flags().String("algorithm", "", "scheduling algorithm: global-edf, rate-monotonic, greedy")
	cmd.Flags().String("out", "", "directory to write the report to")
	cmd.Flags().Bool("debug", false, "enable debug logging")
	return cmd
}

func bindRunFlags(v *viper.Viper, cmd *cobra.Command) {
	_ = v.BindPFlag("dags_dir", cmd.Flags().Lookup("dags"))
	_ = v.BindPFlag("cores", cmd.Flags().Lookup("cores"))
	_ = v.BindPFlag("duration", cmd.Flags().Lookup("duration"))
	_ = v.BindPFlag("algorithm", cmd.Flags().Lookup("algorithm"))
	_ = v.BindPFlag("out_dir", cmd.Flags().Lookup("out"))
}

func printSummary(w *os.File, result *report.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"dag_id", "releases", "best", "average", "worst"})
	for _, dl := range result.DAGSetLog {
		if len(dl.ReleaseTimes) == 0 {
			continue
		}
		t.AppendRow(table.Row{dl.DAGID, len(dl.ReleaseTimes), dl.BestResponseTime, dl.AverageResponseTime, dl.WorstResponseTime})
	}
	t.Render()

	fmt.Fprintf(w, "schedule_length=%d average_utilization=%.4f variance_utilization=%.4f deadline_missed=%v\n",
		result.ScheduleLength, result.ProcessorLog.AverageUtilization, result.ProcessorLog.VarianceUtilization, result.DeadlineMissed)
}
