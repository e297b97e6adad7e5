package language_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/serroba/linkclean/internal/language"
	"github.com/serroba/linkclean/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider serves one geolocation endpoint and counts the calls it gets.
type fakeProvider struct {
	server   *httptest.Server
	calls    atomic.Int32
	lastPath atomic.Value
}

func newFakeProvider(t *testing.T, status int, body string) *fakeProvider {
	t.Helper()

	f := &fakeProvider{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.lastPath.Store(r.URL.Path)
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))

	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeProvider) path() string {
	p, _ := f.lastPath.Load().(string)

	return p
}

func newDetector(ipAPI, ipInfo, trace *fakeProvider, m *metrics.Metrics) *language.Detector {
	return language.NewDetector(
		http.DefaultClient,
		language.DefaultProviders(ipAPI.server.URL, ipInfo.server.URL, trace.server.URL),
		zap.NewNop(),
		m,
	)
}

func TestDetector_ProviderCombinations(t *testing.T) {
	t.Parallel()

	const (
		ipAPIOK  = `{"status":"success","countryCode":"ES"}`
		ipInfoOK = `{"country":"FR"}`
		traceOK  = "ip=203.0.113.9\nloc=DE\n"
	)

	type outcome struct {
		status int
		body   string
	}

	ok := func(body string) outcome { return outcome{status: http.StatusOK, body: body} }

	tests := []struct {
		name         string
		ipAPI        outcome
		ipInfo       outcome
		trace        outcome
		want         language.Code
		wantSource   language.Source
		wantProvider string
	}{
		{
			name:  "all succeed, first wins",
			ipAPI: ok(ipAPIOK), ipInfo: ok(ipInfoOK), trace: ok(traceOK),
			want: language.Spanish, wantSource: language.SourceProvider, wantProvider: "ip-api",
		},
		{
			name:  "only ip-api succeeds",
			ipAPI: ok(ipAPIOK), ipInfo: outcome{http.StatusTooManyRequests, ""}, trace: ok("garbage"),
			want: language.Spanish, wantSource: language.SourceProvider, wantProvider: "ip-api",
		},
		{
			name:  "ip-api failure flag falls through to ipinfo",
			ipAPI: ok(`{"status":"fail"}`), ipInfo: ok(ipInfoOK), trace: ok(traceOK),
			want: language.French, wantSource: language.SourceProvider, wantProvider: "ipinfo",
		},
		{
			name:  "ip-api server error falls through to ipinfo",
			ipAPI: outcome{http.StatusInternalServerError, ipAPIOK}, ipInfo: ok(ipInfoOK), trace: outcome{http.StatusBadGateway, ""},
			want: language.French, wantSource: language.SourceProvider, wantProvider: "ipinfo",
		},
		{
			name:  "only trace succeeds",
			ipAPI: ok("not json"), ipInfo: ok(`{"country":""}`), trace: ok(traceOK),
			want: language.German, wantSource: language.SourceProvider, wantProvider: "cloudflare-trace",
		},
		{
			name:  "ip-api and trace succeed",
			ipAPI: ok(ipAPIOK), ipInfo: ok("{"), trace: ok(traceOK),
			want: language.Spanish, wantSource: language.SourceProvider, wantProvider: "ip-api",
		},
		{
			name:  "ipinfo and trace succeed",
			ipAPI: outcome{http.StatusForbidden, ""}, ipInfo: ok(ipInfoOK), trace: ok(traceOK),
			want: language.French, wantSource: language.SourceProvider, wantProvider: "ipinfo",
		},
		{
			name:  "all fail, locale fallback",
			ipAPI: ok(`{"status":"fail"}`), ipInfo: outcome{http.StatusServiceUnavailable, ""}, trace: ok("loc=\n"),
			want: language.Italian, wantSource: language.SourceLocale,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ipAPI := newFakeProvider(t, tt.ipAPI.status, tt.ipAPI.body)
			ipInfo := newFakeProvider(t, tt.ipInfo.status, tt.ipInfo.body)
			trace := newFakeProvider(t, tt.trace.status, tt.trace.body)

			got := newDetector(ipAPI, ipInfo, trace, nil).
				DetectWithSource(context.Background(), language.Hint{Locale: "it-IT"})

			assert.Equal(t, tt.want, got.Language)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantProvider, got.Provider)
		})
	}
}

func TestDetector_StopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	ipAPI := newFakeProvider(t, http.StatusOK, `{"status":"success","countryCode":"US"}`)
	ipInfo := newFakeProvider(t, http.StatusOK, `{"country":"FR"}`)
	trace := newFakeProvider(t, http.StatusOK, "loc=DE\n")

	got := newDetector(ipAPI, ipInfo, trace, nil).
		DetectWithSource(context.Background(), language.Hint{Locale: "es-ES"})

	assert.Equal(t, language.English, got.Language, "unmapped countries map to English")
	assert.Equal(t, language.SourceProvider, got.Source)
	assert.Equal(t, int32(1), ipAPI.calls.Load())
	assert.Equal(t, int32(0), ipInfo.calls.Load())
	assert.Equal(t, int32(0), trace.calls.Load())
}

func TestDetector_Fallbacks(t *testing.T) {
	t.Parallel()

	failing := func(t *testing.T) *fakeProvider {
		return newFakeProvider(t, http.StatusInternalServerError, "")
	}

	tests := []struct {
		name       string
		locale     string
		want       language.Code
		wantSource language.Source
	}{
		{name: "accept-language header", locale: "de-CH,de;q=0.9,en;q=0.5", want: language.German, wantSource: language.SourceLocale},
		{name: "posix locale", locale: "fr_FR.UTF-8", want: language.French, wantSource: language.SourceLocale},
		{name: "unsupported locale", locale: "ja-JP", want: language.English, wantSource: language.SourceDefault},
		{name: "no locale", locale: "", want: language.English, wantSource: language.SourceDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newDetector(failing(t), failing(t), failing(t), nil)
			got := d.DetectWithSource(context.Background(), language.Hint{Locale: tt.locale})

			assert.Equal(t, tt.want, got.Language)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.want, d.Detect(context.Background(), language.Hint{Locale: tt.locale}))
		})
	}
}

func TestDetector_TransportErrors(t *testing.T) {
	t.Parallel()

	closed := newFakeProvider(t, http.StatusOK, "")
	closed.server.Close()

	trace := newFakeProvider(t, http.StatusOK, "loc=SM\n")

	d := language.NewDetector(nil, language.DefaultProviders(
		closed.server.URL, closed.server.URL, trace.server.URL,
	), zap.NewNop(), nil)

	assert.Equal(t, language.Italian, d.Detect(context.Background(), language.Hint{}))
}

func TestDetector_ClientIP(t *testing.T) {
	t.Parallel()

	t.Run("public address is looked up and trace is skipped", func(t *testing.T) {
		t.Parallel()

		ipAPI := newFakeProvider(t, http.StatusOK, `{"status":"fail"}`)
		ipInfo := newFakeProvider(t, http.StatusOK, `{"status":"fail"}`)
		trace := newFakeProvider(t, http.StatusOK, "loc=DE\n")

		got := newDetector(ipAPI, ipInfo, trace, nil).
			DetectWithSource(context.Background(), language.Hint{ClientIP: "8.8.8.8"})

		assert.Equal(t, "/json/8.8.8.8", ipAPI.path())
		assert.Equal(t, "/8.8.8.8/json", ipInfo.path())
		assert.Equal(t, int32(0), trace.calls.Load())
		assert.Equal(t, language.SourceDefault, got.Source)
	})

	t.Run("private address locates the host", func(t *testing.T) {
		t.Parallel()

		ipAPI := newFakeProvider(t, http.StatusOK, `{"status":"success","countryCode":"CL"}`)
		ipInfo := newFakeProvider(t, http.StatusOK, "")
		trace := newFakeProvider(t, http.StatusOK, "")

		got := newDetector(ipAPI, ipInfo, trace, nil).
			Detect(context.Background(), language.Hint{ClientIP: "192.168.1.20"})

		assert.Equal(t, language.Spanish, got)
		assert.Equal(t, "/json/", ipAPI.path())
	})
}

func TestDetector_Metrics(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())

	ipAPI := newFakeProvider(t, http.StatusBadGateway, "")
	ipInfo := newFakeProvider(t, http.StatusOK, `{"country":"AR"}`)
	trace := newFakeProvider(t, http.StatusOK, "")

	got := newDetector(ipAPI, ipInfo, trace, m).Detect(context.Background(), language.Hint{})

	require.Equal(t, language.Spanish, got)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Geolocation.WithLabelValues("ip-api", "miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Geolocation.WithLabelValues("ipinfo", "hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Languages.WithLabelValues("es", "provider")), 0)
}
