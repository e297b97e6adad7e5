package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/do"
	"github.com/serroba/linkclean/internal/config"
	"github.com/serroba/linkclean/internal/container"
	"github.com/serroba/linkclean/internal/language"
	"github.com/serroba/linkclean/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const detectTimeout = 3 * time.Second

// Version is set via ldflags during build.
var Version = "dev"

type app struct {
	opts     container.Options
	langFlag string

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	getenv func(string) string
	open   opener

	injector *do.Injector
	log      *zap.Logger
	catalog  language.Catalog
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:      in,
		out:     out,
		errOut:  errOut,
		getenv:  os.Getenv,
		open:    systemOpener{goos: goos(), getenv: os.Getenv},
		catalog: language.DefaultCatalog,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "linkclean",
		Short:             "Clean TikTok share links",
		Long:              "linkclean resolves TikTok share links to their canonical form, strips tracking parameters and copies the result.",
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.Config, "config", "c", "", "settings file (default: linkclean.yaml in ., ./config or "+config.Dir()+")")
	flags.StringVar(&a.opts.RedisAddr, "redis", "", "Redis address for the redis storage backend")
	flags.StringVar(&a.opts.DatabaseURL, "database-url", "", "Postgres URL for the postgres storage backend")
	flags.StringVar(&a.opts.LogLevel, "log-level", "", "log level (default from settings)")
	flags.StringVar(&a.langFlag, "lang", "", "message language (en, es, fr, it, de)")

	root.AddCommand(
		a.resolveCmd(),
		a.recentCmd(),
		a.langCmd(),
		a.decodeCmd(),
	)

	return root
}

// run executes the command line and releases everything it opened.
func (a *app) run(args []string) error {
	defer a.teardown()

	root := a.rootCmd()
	root.SetArgs(args)

	return root.Execute()
}

func (a *app) setup(*cobra.Command, []string) error {
	a.injector = do.New()
	do.ProvideValue(a.injector, &a.opts)
	do.ProvideValue(a.injector, &container.Terminal{In: a.in, Out: a.errOut})
	container.TerminalPackages(a.injector)

	settings, err := do.Invoke[*config.Settings](a.injector)
	if err != nil {
		return err
	}

	if a.opts.LogLevel == "" {
		a.opts.LogLevel = settings.Log.Level
	}

	if a.opts.LogFormat == "" {
		a.opts.LogFormat = settings.Log.Encoding
	}

	a.log, err = do.Invoke[*zap.Logger](a.injector)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

func (a *app) teardown() {
	if a.injector != nil {
		if err := a.injector.Shutdown(); err != nil && a.log != nil {
			a.log.Warn("shutdown error", zap.Error(err))
		}
	}

	if a.log != nil {
		_ = logger.Sync(a.log)
	}
}

// language picks the message language: --lang, then the stored preference,
// then detection from geolocation and the system locale.
func (a *app) language(ctx context.Context) language.Result {
	if a.langFlag != "" {
		return language.Result{Language: language.Parse(a.langFlag), Source: language.SourcePreference}
	}

	pref, err := do.Invoke[*language.Preference](a.injector)
	if err != nil {
		a.log.Warn("language preference unavailable", zap.Error(err))
	}

	detector, err := do.Invoke[*language.Detector](a.injector)
	if err != nil {
		a.log.Warn("language detection unavailable", zap.Error(err))

		return language.Result{Language: language.Default, Source: language.SourceDefault}
	}

	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	return language.Resolve(ctx, pref, detector, language.Hint{Locale: systemLocale(a.getenv)})
}

func (a *app) text(lang language.Code, key string) string {
	return a.catalog.Text(lang, key)
}

func (a *app) say(lang language.Code, key string) {
	_, _ = fmt.Fprintln(a.errOut, a.text(lang, key))
}

func systemLocale(getenv func(string) string) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := getenv(key); v != "" {
			return v
		}
	}

	return ""
}

var errNoInput = errors.New("no input: pass a link as an argument or on stdin")
