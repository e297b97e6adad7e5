package container

import (
	"context"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/samber/do"
	"github.com/serroba/linkclean/internal/analytics"
	analyticsstore "github.com/serroba/linkclean/internal/analytics/store"
	"github.com/serroba/linkclean/internal/config"
	"github.com/serroba/linkclean/internal/language"
	"github.com/serroba/linkclean/internal/link"
	"github.com/serroba/linkclean/internal/messaging"
	"github.com/serroba/linkclean/internal/metrics"
	"github.com/serroba/linkclean/internal/pipeline"
	"github.com/serroba/linkclean/internal/recent"
	"github.com/serroba/linkclean/internal/resolver"
	"github.com/serroba/linkclean/internal/store"
	"go.uber.org/zap"
)

// ResolverPackage provides the ungated resolver.Resolver and its *http.Client.
func ResolverPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*http.Client, error) {
		settings := do.MustInvoke[*config.Settings](i)

		return &http.Client{Timeout: settings.Resolver.Timeout}, nil
	})

	do.Provide(injector, func(i *do.Injector) (resolver.Resolver, error) {
		settings := do.MustInvoke[*config.Settings](i)

		return resolver.New(resolver.Config{
			Strategy: resolver.Strategy(settings.Resolver.Strategy),
			Endpoint: settings.Resolver.Endpoint,
			Client:   do.MustInvoke[*http.Client](i),
			Coalesce: settings.Resolver.Coalesce,
		}, do.MustInvoke[*metrics.Metrics](i))
	})
}

// LanguagePackage provides the detector and the stored preference.
func LanguagePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*language.Detector, error) {
		settings := do.MustInvoke[*config.Settings](i)

		providers := language.DefaultProviders(
			settings.Providers.IPAPI,
			settings.Providers.IPInfo,
			settings.Providers.Trace,
		)

		return language.NewDetector(
			do.MustInvoke[*http.Client](i),
			providers,
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*metrics.Metrics](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*language.Preference, error) {
		return language.NewPreference(do.MustInvoke[store.KV](i), do.MustInvoke[*zap.Logger](i)), nil
	})
}

// RecentPackage provides *recent.Cache.
func RecentPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*recent.Cache, error) {
		return recent.NewCache(
			do.MustInvoke[store.KV](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*metrics.Metrics](i),
		), nil
	})
}

// TransportPackage provides the in-process pub/sub used when Redis is off.
func TransportPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*gochannel.GoChannel, error) {
		return messaging.NewInProcess(messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))), nil
	})
}

// PublisherGroupPackage provides the shared publisher and *analytics.Publisher.
// Events go to Redis Streams when Redis is configured, otherwise in-process.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		var (
			pub message.Publisher
			err error
		)

		if client := redisClient(i); client != nil {
			pub, err = messaging.NewRedisPublisher(client, messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i)))
			if err != nil {
				return nil, err
			}
		} else {
			pub = do.MustInvoke[*gochannel.GoChannel](i)
		}

		return messaging.NewPublisherGroup(pub), nil
	})

	do.Provide(injector, func(i *do.Injector) (*analytics.Publisher, error) {
		return analytics.NewPublisher(do.MustInvoke[*messaging.PublisherGroup](i).Publisher()), nil
	})
}

// ConsumerGroupPackage provides the analytics *messaging.ConsumerGroup. Events
// are stored in Postgres when configured and logged otherwise.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		log := do.MustInvoke[*zap.Logger](i)

		pool := postgresPool(i)
		if pool == nil {
			return analyticsstore.NewNoop(log), nil
		}

		s := analyticsstore.NewPostgres(pool)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}

		return s, nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		log := do.MustInvoke[*zap.Logger](i)

		var sub message.Subscriber

		if client := redisClient(i); client != nil {
			s, err := messaging.NewRedisSubscriber(client, opts.ConsumerGroup, messaging.NewZapLogger(log))
			if err != nil {
				return nil, err
			}

			sub = s
		} else {
			sub = do.MustInvoke[*gochannel.GoChannel](i)
		}

		group := messaging.NewConsumerGroup(sub, log)
		group.Add(analytics.NewConsumer(sub, do.MustInvoke[analytics.Store](i), log,
			messaging.WithMetrics(do.MustInvoke[*metrics.Metrics](i)),
		))

		return group, nil
	})
}

// PipelinePackage provides the server's *pipeline.Service. The server never
// touches a clipboard.
func PipelinePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pipeline.Service, error) {
		settings := do.MustInvoke[*config.Settings](i)

		return pipeline.NewService(
			do.MustInvoke[resolver.Resolver](i),
			link.NewValidator(),
			do.MustInvoke[*recent.Cache](i),
			pipeline.WithEvents(do.MustInvoke[*analytics.Publisher](i)),
			pipeline.WithLogger(do.MustInvoke[*zap.Logger](i)),
			pipeline.WithStrategy(settings.Resolver.Strategy),
			pipeline.WithOrigin(analytics.OriginAPI),
		), nil
	})
}
