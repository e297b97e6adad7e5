package main

import (
	"encoding/json"

	"github.com/serroba/linkclean/internal/payload"
	"github.com/spf13/cobra"
)

func (a *app) decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [data]",
		Short: "Decode an obfuscated backend payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			v, err := payload.Decode(data)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)

			return enc.Encode(v)
		},
	}
}
