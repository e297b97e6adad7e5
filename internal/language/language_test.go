package language_test

import (
	"testing"

	"github.com/serroba/linkclean/internal/language"
	"github.com/stretchr/testify/assert"
)

func TestMapCountryToLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		countries []string
		want      language.Code
	}{
		{
			countries: []string{
				"ES", "MX", "AR", "CO", "PE", "VE", "CL", "EC", "GT", "CU",
				"BO", "DO", "HN", "PY", "SV", "NI", "CR", "PA", "UY",
			},
			want: language.Spanish,
		},
		{
			countries: []string{"FR", "BE", "CH", "CA", "LU", "MC", "SN", "CI", "BF", "ML"},
			want:      language.French,
		},
		{
			countries: []string{"IT", "SM", "VA"},
			want:      language.Italian,
		},
		{
			countries: []string{"DE", "AT", "LI"},
			want:      language.German,
		},
		{
			countries: []string{"US", "GB", "JP", "BR", "PT", "", "ZZ"},
			want:      language.English,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			t.Parallel()

			for _, cc := range tt.countries {
				assert.Equal(t, tt.want, language.MapCountryToLanguage(cc), "country %q", cc)
			}
		})
	}

	t.Run("input is case insensitive", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, language.Spanish, language.MapCountryToLanguage("mx"))
		assert.Equal(t, language.German, language.MapCountryToLanguage(" at "))
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, language.French, language.Parse("fr"))
	assert.Equal(t, language.German, language.Parse(" DE "))
	assert.Equal(t, language.English, language.Parse("pt"))
	assert.Equal(t, language.English, language.Parse(""))
}

func TestSupported(t *testing.T) {
	t.Parallel()

	got := language.Supported()
	assert.Equal(t, []language.Code{"en", "es", "fr", "it", "de"}, got)

	got[0] = "xx"
	assert.True(t, language.IsSupported(language.English), "callers cannot mutate the set")
}

func TestFromLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		locale string
		want   language.Code
		ok     bool
	}{
		{locale: "fr-CA", want: "fr", ok: true},
		{locale: "de_AT.UTF-8", want: "de", ok: true},
		{locale: "it_IT@euro", want: "it", ok: true},
		{locale: "ES", want: "es", ok: true},
		{locale: "pt-BR", want: "pt", ok: false},
		{locale: "C", want: "c", ok: false},
		{locale: "", want: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			t.Parallel()

			got, ok := language.FromLocale(tt.locale)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFromAcceptLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   language.Code
		ok     bool
	}{
		{name: "single tag", header: "es-MX", want: "es", ok: true},
		{name: "first tag wins on equal weight", header: "fr-CA,fr;q=0.9,en;q=0.8", want: "fr", ok: true},
		{name: "highest weight wins", header: "en;q=0.5,de;q=0.9", want: "de", ok: true},
		{name: "unsupported top tag", header: "pt-BR,es;q=0.5", ok: false},
		{name: "empty header", header: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := language.FromAcceptLanguage(tt.header)

			assert.Equal(t, tt.ok, ok)

			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
