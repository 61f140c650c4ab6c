// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/dagu-org/dagsim/internal/config"
	"github.com/dagu-org/dagsim/internal/logger"
	"github.com/dagu-org/dagsim/internal/notify"
	"github.com/dagu-org/dagsim/internal/web"
)

func createServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Periodically re-run the simulation and serve the latest report over HTTP",
		Long: `dagsim serve re-runs the simulation on a cron schedule (and whenever a file
under --dags changes), publishing the latest report at GET /api/v1/runs/latest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			bindRunFlags(v, cmd)
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("cmd: load config: %w", err)
			}

			schedule, _ := cmd.Flags().GetString("schedule")
			addr, _ := cmd.Flags().GetString("addr")
			slackToken, _ := cmd.Flags().GetString("slack-token")
			slackChannel, _ := cmd.Flags().GetString("slack-channel")

			log := logger.NewLogger()

			var notifier notify.Notifier = notify.NopNotifier{}
			if slackToken != "" && slackChannel != "" {
				notifier = notify.NewSlackNotifier(slackToken, slackChannel, log)
			}

			srv := web.NewServer(log)
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// runAndPublish owns its own Scheduler per invocation; the only
			// state shared across runs is srv's latest *report.Result.
			runAndPublish := func() {
				result, err := runOnce(ctx, cfg, log, notifier)
				if err != nil {
					log.Errorf("serve: run failed: %v", err)
					return
				}
				srv.SetLatest(result)
			}
			runAndPublish()

			scheduler := cron.New()
			if _, err := scheduler.AddFunc(schedule, runAndPublish); err != nil {
				return fmt.Errorf("cmd: cron schedule %q: %w", schedule, err)
			}
			scheduler.Start()
			defer scheduler.Stop()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("cmd: fsnotify: %w", err)
			}
			defer watcher.Close()
			if err := watcher.Add(cfg.DAGsDir); err != nil {
				return fmt.Errorf("cmd: watch %s: %w", cfg.DAGsDir, err)
			}

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				for {
					select {
					case <-gctx.Done():
						return gctx.Err()
					case event, ok := <-watcher.Events:
						if !ok {
							return nil
						}
						if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
							log.Infof("serve: %s changed, re-running", event.Name)
							runAndPublish()
						}
					case watchErr, ok := <-watcher.Errors:
						if !ok {
							return nil
						}
						log.Errorf("serve: watcher: %v", watchErr)
					}
				}
			})

			g.Go(func() error {
				httpServer := &http.Server{Addr: addr, Handler: srv}
				go func() {
					<-gctx.Done()
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					_ = httpServer.Shutdown(shutdownCtx)
				}()
				log.Infof("serve: listening on %s", addr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})

			return g.Wait()
		},
	}
	cmd.Flags().String("dags", "", "directory of YAML DAG descriptions")
	cmd.Flags().Int("cores", 0, "number of processor cores")
	cmd.Flags().Int32("duration", 0, "simulation duration in ticks")
	cmd.Flags().String("algorithm", "", "scheduling algorithm: global-edf, rate-monotonic, greedy")
	cmd.Flags().String("out", "", "directory to write reports to")
	cmd.Flags().String("schedule", "@every 1m", "cron schedule to re-run the simulation on")
	cmd.Flags().String("addr", ":8080", "address to serve the read-only API on")
	cmd.Flags().String("slack-token", "", "Slack bot token for deadline-miss notifications")
	cmd.Flags().String("slack-channel", "", "Slack channel to notify on deadline miss")
	return cmd
}
