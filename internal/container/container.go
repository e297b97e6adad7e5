// Package container wires the application with samber/do. Each XxxPackage
// function registers the providers for one concern; binaries pick the
// packages they need.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/linkclean/internal/config"
	"github.com/serroba/linkclean/internal/logger"
	"github.com/serroba/linkclean/internal/metrics"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

// Options are the process-level flags, also readable as SERVICE_* variables.
type Options struct {
	Port          int    `default:"8888"                help:"Port to listen on"                                short:"p"`
	RedisAddr     string `default:""                    help:"Redis server address, empty to run without Redis" short:"r"`
	DatabaseURL   string `default:""                    help:"Postgres connection string, empty to run without" short:"d"`
	Config        string `default:""                    help:"Settings file, searched for when empty"          short:"c"`
	LogFormat     string `default:"console"             help:"Log encoding: console or json"`
	LogLevel      string `default:"info"                help:"Log level"`
	ConsumerGroup string `default:"linkclean-analytics" help:"Redis Streams consumer group for analytics"`
}

// Redis owns the shared Redis client.
type Redis struct {
	Client *redis.Client
}

func (r *Redis) Shutdown() error {
	return r.Client.Close()
}

// Postgres owns the shared connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Pool.Close()

	return nil
}

// LoggerPackage provides *zap.Logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return logger.New(logger.Config{
			Level:    opts.LogLevel,
			Encoding: opts.LogFormat,
		})
	})
}

// SettingsPackage provides *config.Settings.
func SettingsPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*config.Settings, error) {
		opts := do.MustInvoke[*Options](i)

		return config.Load(config.Options{File: opts.Config})
	})
}

// MetricsPackage provides the Prometheus registry and *metrics.Metrics.
func MetricsPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*prometheus.Registry, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		return reg, nil
	})

	do.Provide(injector, func(i *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(do.MustInvoke[*prometheus.Registry](i)), nil
	})
}

// RedisPackage provides *Redis. Invoking it fails when no address is set.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)
		log := do.MustInvoke[*zap.Logger](i)

		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis address is not configured")
		}

		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("connect to redis at %s: %w", opts.RedisAddr, err)
		}

		log.Info("connected to redis", zap.String("addr", opts.RedisAddr))

		return &Redis{Client: client}, nil
	})
}

// PostgresPackage provides *Postgres. Invoking it fails when no URL is set.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		log := do.MustInvoke[*zap.Logger](i)

		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("database url is not configured")
		}

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("connect to postgres: %w", err)
		}

		log.Info("connected to postgres")

		return &Postgres{Pool: pool}, nil
	})
}

// redisClient returns the shared client, or nil when Redis is off.
func redisClient(i *do.Injector) *redis.Client {
	if do.MustInvoke[*Options](i).RedisAddr == "" {
		return nil
	}

	return do.MustInvoke[*Redis](i).Client
}

// postgresPool returns the shared pool, or nil when Postgres is off.
func postgresPool(i *do.Injector) *pgxpool.Pool {
	if do.MustInvoke[*Options](i).DatabaseURL == "" {
		return nil
	}

	return do.MustInvoke[*Postgres](i).Pool
}

// ServerPackages registers everything the HTTP server needs. Options must
// already be provided.
func ServerPackages(injector *do.Injector) {
	LoggerPackage(injector)
	SettingsPackage(injector)
	MetricsPackage(injector)
	RedisPackage(injector)
	PostgresPackage(injector)
	StorePackage(injector)
	RecentPackage(injector)
	ResolverPackage(injector)
	LanguagePackage(injector)
	TransportPackage(injector)
	PublisherGroupPackage(injector)
	ConsumerGroupPackage(injector)
	PipelinePackage(injector)
	RateLimitPackage(injector)
	HTTPPackage(injector)
}

// ConsumerPackages registers what the standalone analytics consumer needs.
func ConsumerPackages(injector *do.Injector) {
	LoggerPackage(injector)
	MetricsPackage(injector)
	RedisPackage(injector)
	PostgresPackage(injector)
	TransportPackage(injector)
	ConsumerGroupPackage(injector)
}
