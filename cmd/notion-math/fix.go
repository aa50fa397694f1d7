// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/notion-math/internal/fix"
	"github.com/pdiddy/notion-math/internal/journal"
	"github.com/pdiddy/notion-math/internal/notion"
	"github.com/pdiddy/notion-math/pkg/types"
)

var fixCmd = &cobra.Command{
	Use:   "fix [page]",
	Short: "Rewrite inline $...$ math on a page into Notion equations",
	Long: `Fix walks every block of a page depth-first and rewrites $...$ spans in
textual blocks into inline equations. Blocks are processed one at a time; the
first API failure stops the run, and blocks already updated stay updated.

The page may be given as an id or as a Notion page URL. Running fix again on a
converted page changes nothing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("dry-run", false, "report blocks that would change without updating them")
	fixCmd.Flags().Bool("recursive", true, "descend into child blocks (toggles, columns, nested lists)")
	fixCmd.Flags().Bool("normalize-unicode", false, "rewrite symbols such as ≥ and → inside expressions to LaTeX commands")
	fixCmd.Flags().Duration("block-delay", 0, "pause between blocks (default 50ms)")
	fixCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	bindFlag("dry_run", fixCmd.Flags().Lookup("dry-run"))
	bindFlag("recursive", fixCmd.Flags().Lookup("recursive"))
	bindFlag("normalize_unicode", fixCmd.Flags().Lookup("normalize-unicode"))
	bindFlag("block_delay", fixCmd.Flags().Lookup("block-delay"))
	bindFlag("timeout", fixCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), args)
	if err != nil {
		return err
	}

	closer, err := setupLogging(cfg.LogConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := fixPage(ctx, notion.NewClient(cfg), cfg, logrus.StandardLogger())
	printSummary(os.Stdout, summary, cfg.DryRun)
	if err != nil {
		if notion.IsUnauthorized(err) {
			return fmt.Errorf("%w (check the token and that the page is shared with the integration)", err)
		}
		return err
	}
	return nil
}

// fixPage runs the fixer over cfg.PageID, journaling the run when a
// journal path is configured.
func fixPage(ctx context.Context, api fix.API, cfg types.Config, logger *logrus.Logger) (fix.Summary, error) {
	log := logger.WithField("page", cfg.PageID)

	var (
		rec fix.Recorder
		run *journal.Run
	)
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return fix.Summary{}, err
		}
		defer j.Close()

		run, err = j.BeginRun(ctx, cfg.PageID, cfg.DryRun)
		if err != nil {
			return fix.Summary{}, err
		}
		rec = run
		log = log.WithField("run", run.ID)
	}

	log.Info("scanning page for inline LaTeX")
	summary, runErr := fix.New(api, cfg.FixConfig, rec, log).Run(ctx, cfg.PageID)

	if run != nil {
		// The run context may be cancelled; the journal still gets its summary.
		if err := run.Finish(context.WithoutCancel(ctx), summary, runErr); err != nil {
			log.WithError(err).Warn("could not finish journal entry")
		}
	}
	return summary, runErr
}

func printSummary(w io.Writer, s fix.Summary, dryRun bool) {
	verb := "updated"
	if dryRun {
		verb = "would update"
	}
	fmt.Fprintf(w, "\nscanned: %d, textual: %d, skipped: %d, %s: %d block(s), equations: %d\n",
		s.Scanned, s.Textual, s.Skipped, verb, s.Changed, s.Equations)
}
