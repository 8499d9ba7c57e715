package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/Vodeneev/keirin-odds/internal/odds"
)

func newFetchCmd(configPath *string) *cobra.Command {
	var venue, race string
	cmd := &cobra.Command{
		Use:     "fetch",
		Short:   "Scrape the odds of one race once and print them",
		Example: `  odds-service fetch --venue 函館 --race 3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd.Context(), *configPath, venue, race, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&venue, "venue", "", "Venue name, e.g. 函館 (required)")
	cmd.Flags().StringVar(&race, "race", "", "Race number, e.g. 3 (required)")
	_ = cmd.MarkFlagRequired("venue")
	_ = cmd.MarkFlagRequired("race")

	return cmd
}

// runFetch prints exactly what GET /odds would answer. A non-200 answer is
// returned as an error so the exit code reflects it.
func runFetch(parent context.Context, configPath, venue, race string, out io.Writer) error {
	// stdout carries the odds table; logs go to stderr
	cfg, log, err := loadConfig(configPath, os.Stderr)
	if err != nil {
		return err
	}

	svc, b, err := startService(cfg, log)
	if err != nil {
		return err
	}
	defer closeBrowser(b, log)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	setupSignalHandler(ctx, cancel, log)

	rows, err := svc.Odds(ctx, venue, race)
	status, body := odds.Render(rows, err)

	fmt.Fprintln(out, body)
	if status != http.StatusOK || err != nil {
		return fmt.Errorf("odds request for %s race %s: status %d (%s)", venue, race, status, odds.Outcome(err))
	}
	return nil
}
