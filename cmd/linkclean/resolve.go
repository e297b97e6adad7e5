package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/do"
	"github.com/serroba/linkclean/internal/language"
	"github.com/serroba/linkclean/internal/link"
	"github.com/serroba/linkclean/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const maxStdinInput = 64 << 10

type resolveFlags struct {
	noValidate bool
	noCopy     bool
	open       bool
	asJSON     bool
}

type resolveOutput struct {
	InputURL     string `json:"inputUrl"`
	CanonicalURL string `json:"canonicalUrl"`
	Creator      string `json:"creator,omitempty"`
	PreviewImage string `json:"previewImage,omitempty"`
	Copied       bool   `json:"copied"`
}

func (a *app) resolveCmd() *cobra.Command {
	var f resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve [link]",
		Short: "Resolve a share link and copy the clean link",
		Long: "Resolve a share link to its canonical URL without tracking parameters. " +
			"The link is read from the argument or, when absent, from stdin. " +
			"The result is printed on stdout and copied to the clipboard.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runResolve(cmd, args, f)
		},
	}

	cmd.Flags().BoolVar(&f.noValidate, "no-validate", false, "resolve links that do not look like share links")
	cmd.Flags().BoolVar(&f.noCopy, "no-copy", false, "do not copy the result")
	cmd.Flags().BoolVar(&f.open, "open", false, "open the clean link in the browser")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the result as JSON")

	return cmd
}

func (a *app) runResolve(cmd *cobra.Command, args []string, f resolveFlags) error {
	ctx := cmd.Context()

	input, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	lang := a.language(ctx).Language
	a.say(lang, language.MsgProcessingLink)

	svc, err := do.Invoke[*pipeline.Service](a.injector)
	if err != nil {
		return err
	}

	result, err := svc.Process(ctx, pipeline.Request{
		Input:    input,
		Validate: !f.noValidate,
		Copy:     !f.noCopy,
	})
	if err != nil {
		key := language.MsgProcessingError
		if errors.Is(err, link.ErrValidation) && !errors.Is(err, link.ErrResolution) {
			key = language.MsgInvalidLink
		}

		return fmt.Errorf("%s: %w", a.text(lang, key), err)
	}

	a.say(lang, language.MsgLinkCleaned)

	if !f.noCopy {
		if result.Copied {
			a.say(lang, language.MsgCopySuccess)
		} else {
			a.say(lang, language.MsgCopyFailed)
		}
	}

	if f.open {
		if err := a.open.Open(ctx, result.Resolved.CanonicalURL); err != nil {
			a.log.Warn("failed to open link", zap.Error(err))
		} else {
			a.say(lang, language.MsgLinkOpened)
		}
	}

	if f.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(resolveOutput{
			InputURL:     result.InputURL,
			CanonicalURL: result.Resolved.CanonicalURL,
			Creator:      result.Resolved.Creator,
			PreviewImage: result.Resolved.PreviewImageURL,
			Copied:       result.Copied,
		})
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Resolved.CanonicalURL)

	return err
}

// readInput returns the argument, or stdin when there is none.
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	data, err := io.ReadAll(io.LimitReader(stdin, maxStdinInput))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	input := strings.TrimSpace(string(data))
	if input == "" {
		return "", errNoInput
	}

	return input, nil
}
