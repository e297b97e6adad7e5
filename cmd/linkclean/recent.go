package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/samber/do"
	"github.com/serroba/linkclean/internal/pipeline"
	"github.com/serroba/linkclean/internal/recent"
	"github.com/spf13/cobra"
)

func (a *app) recentCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently cleaned links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := do.Invoke[*pipeline.Service](a.injector)
			if err != nil {
				return err
			}

			entries := svc.Recent(cmd.Context())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return enc.Encode(entries)
			}

			return printRecent(cmd, entries)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries in their stored JSON shape")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget all recent links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := do.Invoke[*pipeline.Service](a.injector)
			if err != nil {
				return err
			}

			return svc.ClearRecent(cmd.Context())
		},
	})

	return cmd
}

func printRecent(cmd *cobra.Command, entries []recent.Entry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	for i, e := range entries {
		creator := ""
		if e.Creator != nil {
			creator = "@" + *e.Creator
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, e.Timestamp.Local().Format("2006-01-02 15:04"), creator, e.Link)
	}

	return w.Flush()
}
