package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"curator/internal/workflow"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List files in the incoming directory that a run would process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			files, err := workflow.ListIncoming(cfg)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, map[string]any{"incoming": files})
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "No eligible files in %s\n", cfg.Paths.IncomingDir)
				return nil
			}
			rows := make([][]string, 0, len(files))
			for i, file := range files {
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), filepath.Base(file), file})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Name", "Path"}, rows, 1))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the file list as JSON")
	return cmd
}
