package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/norgesglass/norgesglass/internal/source"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search for an address",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if len([]rune(query)) < cfg.Search.MinChars {
			return eris.Errorf("query must be at least %d characters", cfg.Search.MinChars)
		}

		src := source.New(cfg)
		results, err := src.SearchAddress(cmd.Context(), query)
		if err != nil {
			return eris.Wrap(err, "search address")
		}

		w := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(w, emptyColor.Sprint("Ingen treff"))
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(w, "%s\n", headingColor.Sprint(r.Text))
			sub := strings.Join(nonEmpty(r.Municipality, r.County), ", ")
			if pos, ok := r.Position(); ok {
				sub = strings.Join(nonEmpty(sub, pos.String()), " · ")
			}
			if sub != "" {
				fmt.Fprintf(w, "  %s\n", labelColor.Sprint(sub))
			}
		}
		return nil
	},
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
