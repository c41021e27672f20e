package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/manifest"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect recorded ingestion runs",
	}

	manifestCmd.AddCommand(newManifestRunsCommand(ctx))
	manifestCmd.AddCommand(newManifestRecordsCommand(ctx))
	manifestCmd.AddCommand(newManifestPruneCommand(ctx))

	return manifestCmd
}

func (c *commandContext) withStore(fn func(*manifest.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := manifest.Open(cfg)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newManifestRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *manifest.Store) error {
				runs, err := store.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}

				if jsonOutput {
					type jsonRun struct {
						ID           string `json:"id"`
						StartedAt    string `json:"started_at"`
						FinishedAt   string `json:"finished_at,omitempty"`
						Total        int    `json:"total"`
						Resolved     int    `json:"resolved"`
						Unresolved   int    `json:"unresolved"`
						Rescued      int    `json:"rescued"`
						CatalogCalls int    `json:"catalog_calls"`
					}
					items := make([]jsonRun, 0, len(runs))
					for _, run := range runs {
						item := jsonRun{
							ID:           run.ID,
							StartedAt:    run.StartedAt.Format(time.RFC3339),
							Total:        run.Summary.Total,
							Resolved:     run.Summary.Resolved(),
							Unresolved:   run.Summary.Unresolved,
							Rescued:      run.Summary.Rescued,
							CatalogCalls: run.Summary.CatalogCalls,
						}
						if run.FinishedAt != nil {
							item.FinishedAt = run.FinishedAt.Format(time.RFC3339)
						}
						items = append(items, item)
					}
					return writeJSON(cmd, map[string]any{"runs": items})
				}

				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					finished := "running"
					if run.FinishedAt != nil {
						finished = run.FinishedAt.Format("2006-01-02 15:04")
					}
					rows = append(rows, []string{
						run.ID,
						run.StartedAt.Format("2006-01-02 15:04"),
						finished,
						fmt.Sprintf("%d", run.Summary.Total),
						fmt.Sprintf("%d", run.Summary.Resolved()),
						fmt.Sprintf("%d", run.Summary.Unresolved),
						fmt.Sprintf("%d", run.Summary.Rescued),
						fmt.Sprintf("%d", run.Summary.CatalogCalls),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Finished", "Total", "Resolved", "Unresolved", "Rescued", "Calls"},
					rows, 4, 5, 6, 7, 8))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit runs as JSON")
	return cmd
}

func newManifestRecordsCommand(ctx *commandContext) *cobra.Command {
	var kinds []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "records [RUN_ID]",
		Short: "Show per-file outcomes for a run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *manifest.Store) error {
				runID := ""
				if len(args) == 1 {
					runID = args[0]
				} else {
					latest, err := store.LatestRun(cmd.Context())
					if err != nil {
						return err
					}
					if latest == nil {
						fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
						return nil
					}
					runID = latest.ID
				}

				records, err := store.RecordsForRun(cmd.Context(), runID, kinds...)
				if err != nil {
					return err
				}

				if jsonOutput {
					type jsonRecord struct {
						Source    string `json:"source"`
						Kind      string `json:"kind"`
						Title     string `json:"title,omitempty"`
						Year      int    `json:"year,omitempty"`
						Score     int    `json:"score"`
						CatalogID int64  `json:"catalog_id,omitempty"`
						Rescued   bool   `json:"rescued"`
						FinalPath string `json:"final_path,omitempty"`
						Queried   int    `json:"queried"`
					}
					items := make([]jsonRecord, 0, len(records))
					for _, record := range records {
						items = append(items, jsonRecord{
							Source:    record.Source,
							Kind:      record.Kind,
							Title:     record.Title,
							Year:      record.Year,
							Score:     record.Score,
							CatalogID: record.CatalogID,
							Rescued:   record.Rescued,
							FinalPath: record.FinalPath,
							Queried:   record.Queried,
						})
					}
					return writeJSON(cmd, map[string]any{"run": runID, "records": items})
				}

				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintf(out, "No records for run %s\n", runID)
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					title := record.Title
					if record.Year > 0 {
						title = fmt.Sprintf("%s (%d)", record.Title, record.Year)
					}
					rescued := ""
					if record.Rescued {
						rescued = "yes"
					}
					rows = append(rows, []string{
						filepath.Base(record.Source),
						record.Kind,
						title,
						fmt.Sprintf("%d", record.Score),
						rescued,
						fmt.Sprintf("%d", record.Queried),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Source", "Kind", "Title", "Score", "Rescued", "Queries"},
					rows, 4, 6))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Filter records by kind (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit records as JSON")
	return cmd
}

func newManifestPruneCommand(ctx *commandContext) *cobra.Command {
	var keepDays int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keepDays <= 0 {
				return fmt.Errorf("--keep-days must be positive")
			}
			return ctx.withStore(func(store *manifest.Store) error {
				cutoff := time.Now().AddDate(0, 0, -keepDays)
				removed, err := store.PruneRuns(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs older than %d days\n", removed, keepDays)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&keepDays, "keep-days", 30, "Retention window in days")
	return cmd
}
