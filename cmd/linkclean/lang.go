package main

import (
	"fmt"
	"strings"

	"github.com/samber/do"
	"github.com/serroba/linkclean/internal/language"
	"github.com/spf13/cobra"
)

func (a *app) langCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Show the message language and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := a.language(cmd.Context())

			source := string(r.Source)
			if r.Provider != "" {
				source += ", " + r.Provider
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", r.Language, source)

			return err
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "set <code>",
		Short:     "Store the message language",
		Args:      cobra.ExactArgs(1),
		ValidArgs: codes(),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := language.Code(strings.ToLower(strings.TrimSpace(args[0])))
			if !language.IsSupported(c) {
				return fmt.Errorf("unsupported language %q, expected one of %s", args[0], strings.Join(codes(), ", "))
			}

			pref, err := do.Invoke[*language.Preference](a.injector)
			if err != nil {
				return err
			}

			saved, err := pref.Save(cmd.Context(), c)
			if err != nil {
				return fmt.Errorf("save language: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), saved)

			return err
		},
	})

	return cmd
}

func codes() []string {
	supported := language.Supported()
	out := make([]string, len(supported))

	for i, c := range supported {
		out[i] = string(c)
	}

	return out
}
