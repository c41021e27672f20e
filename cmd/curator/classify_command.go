package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/classify"
	"curator/internal/logging"
	"curator/internal/workflow"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var yearHint int
	var tvHint bool

	cmd := &cobra.Command{
		Use:   "classify NAME",
		Short: "Resolve a single release name without moving any files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			provider, err := ctx.newProvider()
			if err != nil {
				return err
			}

			runner := workflow.NewRunner(cfg, provider, nil, logging.NewNop())
			result, match, err := runner.Classify(cmd.Context(), args[0], yearHint, tvHint)
			if err != nil {
				return fmt.Errorf("classify %q: %w", args[0], err)
			}

			if jsonOutput {
				payload := map[string]any{
					"name":       args[0],
					"kind":       string(result.Kind),
					"title":      result.Title,
					"year":       result.Year,
					"score":      result.Score,
					"catalog_id": result.CatalogID,
					"queries":    match.Queried,
				}
				if result.HasEpisode {
					payload["season"] = result.Season
					payload["episode"] = result.Episode
				}
				if len(match.Genres) > 0 {
					payload["genres"] = match.Genres
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			kind := statusOK
			if result.Kind == classify.KindUnresolved {
				kind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Kind", kind, string(result.Kind), colorize))
			if result.Kind.Resolved() {
				fmt.Fprintln(out, renderStatusLine("Title", statusInfo, result.Title, colorize))
				if result.Year > 0 {
					fmt.Fprintln(out, renderStatusLine("Year", statusInfo, fmt.Sprintf("%d", result.Year), colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Score", statusInfo, fmt.Sprintf("%d", result.Score), colorize))
				fmt.Fprintln(out, renderStatusLine("Catalog ID", statusInfo, fmt.Sprintf("%d", result.CatalogID), colorize))
				if result.HasEpisode {
					fmt.Fprintln(out, renderStatusLine("Episode", statusInfo,
						fmt.Sprintf("S%02dE%02d", result.Season, result.Episode), colorize))
				}
				if len(match.Genres) > 0 {
					fmt.Fprintln(out, renderStatusLine("Genres", statusInfo, strings.Join(match.Genres, ", "), colorize))
				}
			}
			fmt.Fprintln(out, renderStatusLine("Queries", statusInfo, fmt.Sprintf("%d", match.Queried), colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the decision as JSON")
	cmd.Flags().IntVar(&yearHint, "year", 0, "Production year hint when the name carries none")
	cmd.Flags().BoolVar(&tvHint, "tv", false, "Treat the name as a series episode")
	return cmd
}
