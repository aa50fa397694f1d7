// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/notion-math/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled fix runs and the blocks they changed",
	Long: `History reads the local journal written by fix. Without flags it lists the
most recent runs; --run shows the blocks changed by one run with their text
before and after. --export writes runs and changes as YAML or JSON.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("run", "", "show the blocks changed by this run")
	historyCmd.Flags().String("page", "", "only runs over this page id")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs")
	historyCmd.Flags().String("export", "", "write runs with their changes to stdout: yaml or json")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := viper.GetString("journal")
	if path == "" {
		return fmt.Errorf("journal disabled: set --journal or the journal config key")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no journal at %s: run fix first", path)
	}

	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	runID, _ := cmd.Flags().GetString("run")
	pageID, _ := cmd.Flags().GetString("page")
	limit, _ := cmd.Flags().GetInt("limit")
	export, _ := cmd.Flags().GetString("export")

	opts := journal.QueryOptions{RunID: runID, PageID: pageID, Limit: limit}
	ctx := context.Background()

	if export != "" {
		return j.Export(ctx, os.Stdout, export, opts)
	}
	if runID != "" {
		changes, err := j.Changes(ctx, opts)
		if err != nil {
			return err
		}
		formatChanges(os.Stdout, changes)
		return nil
	}

	runs, err := j.Runs(ctx, opts)
	if err != nil {
		return err
	}
	formatRuns(os.Stdout, runs)
	return nil
}

func formatRuns(w io.Writer, runs []journal.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-36s  %-20s  %-7s  %-7s  %s\n",
		"Run", "Page", "Started", "Changed", "Eqns", "Status")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for _, r := range runs {
		status := "ok"
		switch {
		case r.Error != "":
			status = "failed: " + truncate(r.Error, 40)
		case !r.Finished():
			status = "incomplete"
		case r.DryRun:
			status = "dry run"
		}
		fmt.Fprintf(w, "%-36s  %-36s  %-20s  %-7d  %-7d  %s\n",
			r.ID, r.PageID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Changed, r.Equations, status)
	}
	fmt.Fprintf(w, "\n%d run(s)\n", len(runs))
}

func formatChanges(w io.Writer, changes []journal.ChangeRecord) {
	if len(changes) == 0 {
		fmt.Fprintln(w, "No blocks changed.")
		return
	}
	for _, c := range changes {
		fmt.Fprintf(w, "%s %s (depth %d)\n", c.BlockType, c.BlockID, c.Depth)
		fmt.Fprintf(w, "  - %s\n", truncate(c.Before, 100))
		fmt.Fprintf(w, "  + %s\n", truncate(c.After, 100))
	}
	fmt.Fprintf(w, "\n%d block(s)\n", len(changes))
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
