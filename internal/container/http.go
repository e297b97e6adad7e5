package container

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do"
	"github.com/serroba/linkclean/internal/handlers"
	"github.com/serroba/linkclean/internal/health"
	"github.com/serroba/linkclean/internal/language"
	"github.com/serroba/linkclean/internal/middleware"
	"github.com/serroba/linkclean/internal/pipeline"
	"github.com/serroba/linkclean/internal/ratelimit"
	"go.uber.org/zap"
)

const requestIDLength = 16

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Handle("/metrics", promhttp.HandlerFor(do.MustInvoke[*prometheus.Registry](i), promhttp.HandlerOpts{}))

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		log := do.MustInvoke[*zap.Logger](i)

		newID, err := nanoid.Standard(requestIDLength)
		if err != nil {
			return nil, err
		}

		api := humachi.New(router, huma.DefaultConfig("Link Cleaner", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(newID))
		api.UseMiddleware(middleware.RateLimiter(api, do.MustInvoke[*ratelimit.Limiter](i), log))

		handlers.RegisterRoutes(api,
			handlers.NewLinkHandler(do.MustInvoke[*pipeline.Service](i), log),
			handlers.NewLanguageHandler(
				do.MustInvoke[*language.Detector](i),
				do.MustInvoke[*language.Preference](i),
				log,
			),
		)

		health.RegisterRoutes(api, health.NewHandler(healthCheckers(i)))

		return api, nil
	})
}

func healthCheckers(i *do.Injector) map[string]health.Checker {
	checkers := map[string]health.Checker{}

	if client := redisClient(i); client != nil {
		checkers["redis"] = health.NewRedisChecker(client)
	}

	if pool := postgresPool(i); pool != nil {
		checkers["postgres"] = health.NewPostgresChecker(pool)
	}

	return checkers
}

// Handler returns the fully wired HTTP handler.
func Handler(injector *do.Injector) (http.Handler, error) {
	if _, err := do.Invoke[huma.API](injector); err != nil {
		return nil, err
	}

	router, err := do.Invoke[*chi.Mux](injector)
	if err != nil {
		return nil, err
	}

	return router, nil
}
