package container

import (
	"io"

	"github.com/samber/do"
	"github.com/serroba/linkclean/internal/analytics"
	"github.com/serroba/linkclean/internal/clipboard"
	"github.com/serroba/linkclean/internal/config"
	"github.com/serroba/linkclean/internal/link"
	"github.com/serroba/linkclean/internal/metrics"
	"github.com/serroba/linkclean/internal/pipeline"
	"github.com/serroba/linkclean/internal/recent"
	"github.com/serroba/linkclean/internal/resolver"
	"go.uber.org/zap"
)

// Terminal is the console a terminal client talks to.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// ClipboardPackage provides *clipboard.Writer built from the clipboard
// settings. A *Terminal must be provided.
func ClipboardPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*clipboard.Writer, error) {
		settings := do.MustInvoke[*config.Settings](i)
		term := do.MustInvoke[*Terminal](i)

		strategies := clipboard.Strategies(clipboard.Config{
			Native:        settings.Clipboard.Native,
			StagedCommand: settings.Clipboard.StagedCommand,
			OSC52:         settings.Clipboard.OSC52,
			Prompt:        settings.Clipboard.Prompt,
			Stdin:         term.In,
			Stdout:        term.Out,
		})

		return clipboard.NewWriter(strategies, do.MustInvoke[*zap.Logger](i), do.MustInvoke[*metrics.Metrics](i)), nil
	})
}

// TerminalPipelinePackage provides the terminal client's *pipeline.Service,
// which copies results and publishes nothing.
func TerminalPipelinePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pipeline.Service, error) {
		settings := do.MustInvoke[*config.Settings](i)

		return pipeline.NewService(
			do.MustInvoke[resolver.Resolver](i),
			link.NewValidator(),
			do.MustInvoke[*recent.Cache](i),
			pipeline.WithClipboard(do.MustInvoke[*clipboard.Writer](i)),
			pipeline.WithLogger(do.MustInvoke[*zap.Logger](i)),
			pipeline.WithStrategy(settings.Resolver.Strategy),
			pipeline.WithOrigin(analytics.OriginCLI),
		), nil
	})
}

// TerminalPackages registers everything the terminal client needs. Options
// and a *Terminal must already be provided.
func TerminalPackages(injector *do.Injector) {
	LoggerPackage(injector)
	SettingsPackage(injector)
	MetricsPackage(injector)
	RedisPackage(injector)
	PostgresPackage(injector)
	StorePackage(injector)
	RecentPackage(injector)
	ResolverPackage(injector)
	LanguagePackage(injector)
	ClipboardPackage(injector)
	TerminalPipelinePackage(injector)
}
