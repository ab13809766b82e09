package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dupefinder/internal/arr"
	"dupefinder/internal/decisions"
	"dupefinder/internal/dedupe"
	"dupefinder/internal/logging"
	"dupefinder/internal/scan"
	"dupefinder/internal/services/plex"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun         bool
		skipResolution bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan configured libraries and resolve duplicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if dryRun {
				cfg.Runtime.DryRun = true
			}
			if skipResolution {
				cfg.Runtime.SkipFinalResolution = true
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			interactive := !cfg.Runtime.AutoDelete && !cfg.Runtime.SkipFinalResolution
			if interactive && !isTerminal(os.Stdin) {
				return fmt.Errorf("interactive resolution needs a terminal; enable auto_delete or pass --skip-resolution")
			}

			journal, err := decisions.Open(cfg)
			if err != nil {
				return fmt.Errorf("open decisions journal: %w", err)
			}
			defer journal.Close()

			runID := uuid.NewString()
			recorder, closeLog, err := decisions.NewRecorder(cfg, journal, runID, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			client := plex.NewClient(cfg)

			var overrider dedupe.Overrider
			if cfg.Radarr.Enabled || cfg.Sonarr.Enabled {
				overrider = arr.NewResolver(cfg, logger)
			}

			var prompter dedupe.Prompter
			if interactive {
				prompter = dedupe.NewTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), !cfg.Runtime.MatchFilepathsOnly)
			}

			totals := &dedupe.RunTotals{}
			engine := dedupe.NewEngine(dedupe.OptionsFromConfig(cfg), client, overrider, prompter, recorder, totals, logger)
			runner := scan.NewRunner(cfg, client, engine, journal, totals, runID, logger)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runner.Run(runCtx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total Deleted Files: %d\n", totals.Files())
			fmt.Fprintf(out, "Total Deleted Size (GB): %.2f\n", totals.Gigabytes())
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate deletions without making changes")
	cmd.Flags().BoolVar(&skipResolution, "skip-resolution", false, "Run only the cleanup stages, skipping keep-one resolution")
	return cmd
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
