package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"wedding-relay/internal/party"
)

// NewLookupCommand creates the lookup command.
func NewLookupCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lookup <first-name> [last-name]",
		Short: "Find a guest and print their travel party",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := setup()
			store, err := openDirectory(cmd.Context(), cfg.Directory)
			if err != nil {
				return fmt.Errorf("failed to open directory: %w", err)
			}

			first, last := nameArgs(args)
			res, err := party.NewResolver(store, log).Resolve(cmd.Context(), first, last)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the search result as JSON")
	return cmd
}

func printResult(w io.Writer, res party.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if !res.Found {
		fmt.Fprintln(w, "No guest found.")
		return nil
	}

	fmt.Fprintf(w, "Found %s (row %d)\n", res.Guest.DisplayName(), res.Guest.Row)
	fmt.Fprintf(w, "Travel party (%d):\n", len(res.Party))
	for _, g := range res.Party {
		fmt.Fprintf(w, "  - %-24s row %-4d %s\n", g.DisplayName(), g.Row, g.TravelOrigin)
	}
	return nil
}
