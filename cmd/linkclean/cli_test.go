package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/serroba/linkclean/internal/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const canonicalURL = "https://www.tiktok.com/@user/video/12345"

type fakeOpener struct {
	opened []string
}

func (f *fakeOpener) Open(_ context.Context, url string) error {
	f.opened = append(f.opened, url)

	return nil
}

type harness struct {
	config string
	opener *fakeOpener
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	data, err := payload.Encode(map[string]string{"purified-location": canonicalURL, "creator": "user"})
	require.NoError(t, err)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":"` + data + `"}`))
	}))
	t.Cleanup(backend.Close)

	providers := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(providers.Close)

	settings := strings.Join([]string{
		"resolver:",
		"  strategy: backend",
		"  endpoint: " + backend.URL,
		"providers:",
		"  ip_api: " + providers.URL,
		"  ipinfo: " + providers.URL,
		"  trace: " + providers.URL,
		"storage:",
		"  backend: file",
		"  path: " + filepath.Join(dir, "state.json"),
		"clipboard:",
		"  native: false",
		"  staged_command: false",
		"  osc52: false",
		"  prompt: true",
		"log:",
		"  level: error",
		"",
	}, "\n")

	path := filepath.Join(dir, "linkclean.yaml")
	require.NoError(t, os.WriteFile(path, []byte(settings), 0o600))

	return &harness{config: path, opener: &fakeOpener{}}
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer

	a := newApp(strings.NewReader(stdin), &out, &errOut)
	a.getenv = func(string) string { return "" }
	a.open = h.opener

	err := a.run(append([]string{"--config", h.config}, args...))

	return out.String(), errOut.String(), err
}

func TestResolve(t *testing.T) {
	h := newHarness(t)

	t.Run("prints the canonical link and confirms the copy", func(t *testing.T) {
		out, errOut, err := h.run("\n", "--lang", "en", "resolve", "https://vm.tiktok.com/ZMabcdXYZ/")

		require.NoError(t, err)
		assert.Equal(t, canonicalURL+"\n", out)
		assert.Contains(t, errOut, "Link cleaned successfully.")
		assert.Contains(t, errOut, "Link copied to clipboard")
		assert.Contains(t, errOut, canonicalURL)
	})

	t.Run("reads the link from stdin", func(t *testing.T) {
		out, _, err := h.run("https://vm.tiktok.com/ZMabcdXYZ/\n", "--lang", "en", "resolve", "--no-copy")

		require.NoError(t, err)
		assert.Equal(t, canonicalURL+"\n", out)
	})

	t.Run("opens the link and prints json", func(t *testing.T) {
		out, _, err := h.run("", "--lang", "en", "resolve", "--no-copy", "--open", "--json", "https://vm.tiktok.com/ZMabcdXYZ/")

		require.NoError(t, err)
		assert.Equal(t, []string{canonicalURL}, h.opener.opened)

		var got resolveOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, canonicalURL, got.CanonicalURL)
		assert.Equal(t, "user", got.Creator)
		assert.False(t, got.Copied)
	})

	t.Run("rejects links that are not share links", func(t *testing.T) {
		out, _, err := h.run("", "--lang", "en", "resolve", "https://example.com/watch")

		require.Error(t, err)
		assert.Empty(t, out)
		assert.Contains(t, err.Error(), "The link is not a valid TikTok URL")
	})

	t.Run("fails without input", func(t *testing.T) {
		_, _, err := h.run("", "--lang", "en", "resolve")

		assert.ErrorIs(t, err, errNoInput)
	})
}

func TestRecent(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("", "--lang", "en", "resolve", "--no-copy", "https://vm.tiktok.com/ZMabcdXYZ/")
	require.NoError(t, err)

	t.Run("lists the stored entries", func(t *testing.T) {
		out, _, err := h.run("", "recent", "--json")
		require.NoError(t, err)

		var entries []struct {
			Link    string  `json:"link"`
			Creator *string `json:"creator"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, canonicalURL, entries[0].Link)
		require.NotNil(t, entries[0].Creator)
		assert.Equal(t, "user", *entries[0].Creator)
	})

	t.Run("prints a table by default", func(t *testing.T) {
		out, _, err := h.run("", "recent")

		require.NoError(t, err)
		assert.Contains(t, out, "@user")
		assert.Contains(t, out, canonicalURL)
	})

	t.Run("clear forgets everything", func(t *testing.T) {
		_, _, err := h.run("", "recent", "clear")
		require.NoError(t, err)

		out, _, err := h.run("", "recent", "--json")
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, out)
	})
}

func TestLang(t *testing.T) {
	h := newHarness(t)

	t.Run("falls back to the default without locale or providers", func(t *testing.T) {
		out, _, err := h.run("", "lang")

		require.NoError(t, err)
		assert.Equal(t, "en (default)\n", out)
	})

	t.Run("set stores the preference", func(t *testing.T) {
		out, _, err := h.run("", "lang", "set", "FR")
		require.NoError(t, err)
		assert.Equal(t, "fr\n", out)

		out, _, err = h.run("", "lang")
		require.NoError(t, err)
		assert.Equal(t, "fr (preference)\n", out)
	})

	t.Run("set rejects unsupported codes", func(t *testing.T) {
		_, _, err := h.run("", "lang", "set", "pt")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported language")
	})

	t.Run("messages follow the stored preference", func(t *testing.T) {
		_, errOut, err := h.run("", "resolve", "--no-copy", "https://vm.tiktok.com/ZMabcdXYZ/")

		require.NoError(t, err)
		assert.Contains(t, errOut, "Lien nettoyé avec succès.")
	})
}

func TestDecode(t *testing.T) {
	h := newHarness(t)

	data, err := payload.Encode(map[string]any{"status": 301, "location": canonicalURL})
	require.NoError(t, err)

	t.Run("decodes an argument", func(t *testing.T) {
		out, _, err := h.run("", "decode", data)

		require.NoError(t, err)
		assert.JSONEq(t, `{"status":301,"location":"`+canonicalURL+`"}`, out)
	})

	t.Run("decodes stdin", func(t *testing.T) {
		out, _, err := h.run(data+"\n", "decode")

		require.NoError(t, err)
		assert.JSONEq(t, `{"status":301,"location":"`+canonicalURL+`"}`, out)
	})

	t.Run("reports garbage", func(t *testing.T) {
		_, _, err := h.run("", "decode", "!!!")

		assert.Error(t, err)
	})
}

func TestSystemOpener(t *testing.T) {
	noEnv := func(string) string { return "" }

	tests := []struct {
		name   string
		opener systemOpener
		want   string
	}{
		{"darwin", systemOpener{goos: "darwin", getenv: noEnv}, "open"},
		{"windows", systemOpener{goos: "windows", getenv: noEnv}, "rundll32"},
		{"linux", systemOpener{goos: "linux", getenv: noEnv}, "xdg-open"},
		{"termux", systemOpener{goos: "linux", getenv: func(k string) string {
			if k == "TERMUX_VERSION" {
				return "0.118"
			}

			return ""
		}}, "termux-open-url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args := tt.opener.command(canonicalURL)

			assert.Equal(t, tt.want, name)
			assert.Equal(t, canonicalURL, args[len(args)-1])
		})
	}
}
