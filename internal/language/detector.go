package language

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"

	"github.com/serroba/linkclean/internal/metrics"
	"go.uber.org/zap"
)

const maxProviderBody = 64 << 10

// Source tells where a detected language came from.
type Source string

const (
	SourceProvider   Source = "provider"
	SourceLocale     Source = "locale"
	SourceDefault    Source = "default"
	SourcePreference Source = "preference"
)

// Hint carries the caller-side signals used by detection.
type Hint struct {
	// ClientIP is the address to locate. Empty, loopback and private addresses
	// make providers locate the host itself.
	ClientIP string

	// Locale is an Accept-Language header or a POSIX/BCP 47 locale string.
	Locale string
}

// Result is a detected language and its origin.
type Result struct {
	Language Code
	Source   Source
	Provider string
}

// Detector walks the geolocation providers in order and falls back to the locale.
type Detector struct {
	client    *http.Client
	providers []Provider
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewDetector creates a detector over providers, tried in the given order.
func NewDetector(client *http.Client, providers []Provider, logger *zap.Logger, m *metrics.Metrics) *Detector {
	if client == nil {
		client = http.DefaultClient
	}

	return &Detector{
		client:    client,
		providers: providers,
		logger:    logger,
		metrics:   m,
	}
}

// Detect always returns a supported language.
func (d *Detector) Detect(ctx context.Context, hint Hint) Code {
	return d.DetectWithSource(ctx, hint).Language
}

// DetectWithSource is Detect plus the origin of the answer.
func (d *Detector) DetectWithSource(ctx context.Context, hint Hint) Result {
	ip := lookupAddress(hint.ClientIP)

	for _, p := range d.providers {
		if p.SelfOnly && ip != "" {
			d.logger.Debug("skipping self-only geolocation provider",
				zap.String("provider", p.Name),
			)

			continue
		}

		country, err := d.lookup(ctx, p, ip)
		if err != nil {
			d.metrics.ObserveGeolocation(p.Name, "miss")
			d.logger.Warn("geolocation provider failed",
				zap.String("provider", p.Name),
				zap.Error(err),
			)

			continue
		}

		d.metrics.ObserveGeolocation(p.Name, "hit")

		if lang := MapCountryToLanguage(country); IsSupported(lang) {
			d.logger.Debug("language detected from geolocation",
				zap.String("provider", p.Name),
				zap.String("country", country),
				zap.String("language", string(lang)),
			)

			return d.result(Result{Language: lang, Source: SourceProvider, Provider: p.Name})
		}
	}

	if lang, ok := fromHintLocale(hint.Locale); ok {
		return d.result(Result{Language: lang, Source: SourceLocale})
	}

	return d.result(Result{Language: Default, Source: SourceDefault})
}

func (d *Detector) result(r Result) Result {
	d.metrics.ObserveLanguage(string(r.Language), string(r.Source))

	return r
}

func (d *Detector) lookup(ctx context.Context, p Provider, ip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(ip), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return p.Extract(body)
}

func fromHintLocale(locale string) (Code, bool) {
	if lang, ok := FromAcceptLanguage(locale); ok {
		return lang, true
	}

	return FromLocale(locale)
}

// lookupAddress returns the address providers should locate, or "" for the host itself.
func lookupAddress(clientIP string) string {
	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		return ""
	}

	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		return ""
	}

	return addr.String()
}
