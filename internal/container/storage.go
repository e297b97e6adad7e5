package container

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/serroba/linkclean/internal/config"
	"github.com/serroba/linkclean/internal/ratelimit"
	"github.com/serroba/linkclean/internal/store"
	"go.uber.org/zap"
)

const (
	kvCacheTTL    = 10 * time.Minute
	sweepInterval = time.Minute
)

// StorePackage provides the store.KV selected by storage.backend. Durable
// backends get a Redis read-through cache when Redis is configured.
func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (store.KV, error) {
		settings := do.MustInvoke[*config.Settings](i)
		log := do.MustInvoke[*zap.Logger](i)

		kv, err := openKV(i, settings.Storage)
		if err != nil {
			return nil, err
		}

		log.Info("store ready", zap.String("backend", settings.Storage.Backend))

		switch store.Backend(settings.Storage.Backend) {
		case store.BackendPostgres, store.BackendSQLite, store.BackendFile:
			if client := redisClient(i); client != nil {
				return store.NewRedisCacheKV(kv, client, kvCacheTTL), nil
			}
		}

		return kv, nil
	})
}

func openKV(i *do.Injector, s config.StorageSettings) (store.KV, error) {
	switch store.Backend(s.Backend) {
	case store.BackendMemory:
		return store.NewMemoryKV(), nil
	case store.BackendRedis:
		return store.NewRedisKV(do.MustInvoke[*Redis](i).Client), nil
	case store.BackendPostgres:
		kv := store.NewPostgresKV(do.MustInvoke[*Postgres](i).Pool)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := kv.Migrate(ctx); err != nil {
			return nil, err
		}

		return kv, nil
	case store.BackendSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		return store.OpenSQLiteKV(ctx, s.Path)
	case store.BackendFile:
		return store.NewFileKV(s.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}

// sweeper periodically drops idle keys from the in-memory rate limit store.
type sweeper struct {
	store *store.RateLimitMemoryStore
	stop  chan struct{}
	done  chan struct{}
}

func startSweeper(s *store.RateLimitMemoryStore, window time.Duration) *sweeper {
	sw := &sweeper{store: s, stop: make(chan struct{}), done: make(chan struct{})}

	go func() {
		defer close(sw.done)

		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-sw.stop:
				return
			case <-ticker.C:
				s.Sweep(window)
			}
		}
	}()

	return sw
}

func (s *sweeper) Shutdown() error {
	close(s.stop)
	<-s.done

	return nil
}

// RateLimitPackage provides *ratelimit.Limiter over Redis when configured,
// otherwise over process memory.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*ratelimit.Policy, error) {
		p := ratelimit.DefaultPolicy()

		return p, p.Validate()
	})

	do.Provide(injector, func(i *do.Injector) (*sweeper, error) {
		return startSweeper(do.MustInvoke[*store.RateLimitMemoryStore](i), longestWindow(do.MustInvoke[*ratelimit.Policy](i))), nil
	})

	do.Provide(injector, func(_ *do.Injector) (*store.RateLimitMemoryStore, error) {
		return store.NewRateLimitMemoryStore(), nil
	})

	do.Provide(injector, func(i *do.Injector) (*ratelimit.Limiter, error) {
		policy := do.MustInvoke[*ratelimit.Policy](i)

		if client := redisClient(i); client != nil {
			return ratelimit.NewLimiter(store.NewRateLimitRedisStore(client), policy), nil
		}

		_ = do.MustInvoke[*sweeper](i)

		return ratelimit.NewLimiter(do.MustInvoke[*store.RateLimitMemoryStore](i), policy), nil
	})
}

func longestWindow(p *ratelimit.Policy) time.Duration {
	longest := time.Minute

	for _, limits := range p.Limits {
		for _, l := range limits {
			longest = max(longest, l.Window)
		}
	}

	return longest
}
