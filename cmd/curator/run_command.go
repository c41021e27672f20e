package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"curator/internal/logging"
	"curator/internal/manifest"
	"curator/internal/watcher"
	"curator/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the incoming directory once, or continuously with --watch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "curator.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another curator run is already in progress (lock %s)", lock.Path())
			}
			defer lock.Unlock()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := manifest.Open(cfg)
			if err != nil {
				return fmt.Errorf("open manifest: %w", err)
			}
			defer store.Close()

			provider, err := ctx.newProvider()
			if err != nil {
				return err
			}
			runner := workflow.NewRunner(cfg, provider, store, logger)

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if !watch {
				summary, err := runner.RunOnce(signalCtx)
				if err != nil {
					return err
				}
				return writeSummary(cmd, summary, jsonOutput)
			}

			scanner := watcher.New(cfg, logger)
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (poll %s, stable window %s)\n",
				cfg.Paths.IncomingDir, cfg.PollInterval(), cfg.StableWindow())
			err = scanner.Watch(signalCtx, cfg.PollInterval(), func(runCtx context.Context, files []string) {
				summary, runErr := runner.Process(runCtx, files)
				if runErr != nil {
					logger.Error("run failed", logging.Error(runErr))
					return
				}
				if writeErr := writeSummary(cmd, summary, jsonOutput); writeErr != nil {
					logger.Warn("render summary", logging.Error(writeErr))
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep polling the incoming directory for stable files")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit run summaries as JSON")
	return cmd
}

func writeSummary(cmd *cobra.Command, summary manifest.Summary, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(cmd, map[string]any{
			"total":         summary.Total,
			"movies":        summary.Movies,
			"movies_kids":   summary.MovieKids,
			"tv":            summary.TV,
			"tv_kids":       summary.TVKids,
			"unresolved":    summary.Unresolved,
			"rescued":       summary.Rescued,
			"catalog_calls": summary.CatalogCalls,
		})
	}
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintf(out, "Processed %d files\n", summary.Total)
	fmt.Fprintln(out, renderStatusLine("Movies", statusInfo, fmt.Sprintf("%d", summary.Movies), colorize))
	fmt.Fprintln(out, renderStatusLine("Movies (kids)", statusInfo, fmt.Sprintf("%d", summary.MovieKids), colorize))
	fmt.Fprintln(out, renderStatusLine("TV", statusInfo, fmt.Sprintf("%d", summary.TV), colorize))
	fmt.Fprintln(out, renderStatusLine("TV (kids)", statusInfo, fmt.Sprintf("%d", summary.TVKids), colorize))
	unresolvedKind := statusOK
	if summary.Unresolved > 0 {
		unresolvedKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Unresolved", unresolvedKind, fmt.Sprintf("%d", summary.Unresolved), colorize))
	if summary.Rescued > 0 {
		fmt.Fprintln(out, renderStatusLine("Rescued", statusOK, fmt.Sprintf("%d", summary.Rescued), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Catalog calls", statusInfo, fmt.Sprintf("%d", summary.CatalogCalls), colorize))
	return nil
}
