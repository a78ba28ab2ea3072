package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bio-link-checker/internal/config"
	"bio-link-checker/internal/linkcheck"
	"bio-link-checker/internal/report"
)

type scanOptions struct {
	jsonOutput   bool
	concurrency  int
	logLevel     string
	failOnBroken bool
}

func newScanCmd() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Check the links on one page and print the results",
		Example: `  bio-link-checker scan https://example.com/bio
  bio-link-checker scan https://example.com/bio --json
  bio-link-checker scan https://example.com/bio --concurrency 8 --fail-on-broken`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.concurrency < 0 {
				return fmt.Errorf("--concurrency must not be negative")
			}
			if _, err := config.ParseLevel(opts.logLevel); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			logger := newCLILogger(cmd.ErrOrStderr(), opts.logLevel)
			checker := linkcheck.New(logger, linkcheck.WithMaxConcurrency(opts.concurrency))

			links, err := checker.Scan(ctx, args[0])
			if err != nil {
				logger.Debug("Scan failed", slog.Any("error", err))
				return &exitError{code: exitFailed, err: errors.New(linkcheck.Reason(err))}
			}

			if opts.jsonOutput || !isTerminal(out) {
				err = report.WriteJSON(out, links)
			} else {
				err = report.WriteTable(out, links)
			}
			if err != nil {
				return &exitError{code: exitFailed, err: err}
			}

			if opts.failOnBroken && report.Summarize(links).Broken() > 0 {
				return &exitError{code: exitBrokenLinks}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.jsonOutput, "json", false, "Print JSON even when stdout is a terminal")
	f.IntVarP(&opts.concurrency, "concurrency", "c", 0, "Maximum probes in flight (0 = unbounded)")
	f.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	f.BoolVar(&opts.failOnBroken, "fail-on-broken", false, "Exit with status 3 when any link is broken")

	return cmd
}

func newCLILogger(w io.Writer, level string) *slog.Logger {
	cfg := config.Config{LogLevel: level, LogFormat: "text"}
	return cfg.NewLogger(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
