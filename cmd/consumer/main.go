package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do"
	"github.com/serroba/linkclean/internal/container"
	"github.com/serroba/linkclean/internal/logger"
	"github.com/serroba/linkclean/internal/messaging"
	"go.uber.org/zap"
)

func main() {
	opts := &container.Options{
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ConsumerGroup: getEnv("CONSUMER_GROUP", "linkclean-analytics"),
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.ConsumerPackages(injector)

	log := do.MustInvoke[*zap.Logger](injector)
	defer func() { _ = logger.Sync(log) }()

	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		log.Fatal("failed to build consumer group", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := group.Start(ctx); err != nil {
		log.Fatal("failed to start consumer group", zap.Error(err))
	}

	var metricsServer *http.Server

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		reg := do.MustInvoke[*prometheus.Registry](injector)
		metricsServer = &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			log.Info("serving metrics", zap.String("addr", addr))

			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()

	log.Info("shutting down")

	if metricsServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)

		cancelShutdown()
	}

	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}

	log.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}
