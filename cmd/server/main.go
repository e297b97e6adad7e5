package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/samber/do"
	"github.com/serroba/linkclean/internal/container"
	"github.com/serroba/linkclean/internal/logger"
	"github.com/serroba/linkclean/internal/messaging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	var injector *do.Injector

	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector = do.New()
		do.ProvideValue(injector, options)
		container.ServerPackages(injector)

		log := do.MustInvoke[*zap.Logger](injector)

		var server *http.Server

		hooks.OnStart(func() {
			handler, err := container.Handler(injector)
			if err != nil {
				log.Fatal("failed to build server", zap.Error(err))
			}

			if options.RedisAddr == "" {
				if err := startInProcessAnalytics(injector); err != nil {
					log.Fatal("failed to start analytics consumer", zap.Error(err))
				}
			}

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           handler,
				ReadHeaderTimeout: readHeaderTimeout,
			}

			log.Info("server starting",
				zap.Int("port", options.Port),
				zap.Bool("redis", options.RedisAddr != ""),
				zap.Bool("postgres", options.DatabaseURL != ""),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					log.Error("server shutdown error", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				log.Error("service shutdown error", zap.Error(err))
			}

			log.Info("server stopped")
			_ = logger.Sync(log)
		})
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document",
		Run: func(*cobra.Command, []string) {
			api, err := do.Invoke[huma.API](injector)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(api.OpenAPI())
		},
	})

	cli.Run()
}

// startInProcessAnalytics runs the analytics consumer next to the server.
// Without Redis, events travel over an in-memory channel and only this
// process can drain them.
func startInProcessAnalytics(injector *do.Injector) error {
	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		return err
	}

	return group.Start(context.Background())
}
