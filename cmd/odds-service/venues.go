package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Vodeneev/keirin-odds/internal/odds/venues"
)

func newVenuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "venues",
		Short: "List the venue names accepted by /odds and their codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVenues(cmd.OutOrStdout())
		},
	}
}

func printVenues(out io.Writer) error {
	table, err := venues.Default()
	if err != nil {
		return fmt.Errorf("load venues: %w", err)
	}
	for _, v := range table.Venues() {
		if _, err := fmt.Fprintf(out, "%s,%s\n", v.Name, v.Code); err != nil {
			return err
		}
	}
	return nil
}
