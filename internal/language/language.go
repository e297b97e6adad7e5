// Package language picks the UI language from geolocation signals, falling back
// to the host locale.
package language

import (
	"strings"

	"golang.org/x/text/language"
)

// Code is a supported UI language.
type Code string

const (
	English Code = "en"
	Spanish Code = "es"
	French  Code = "fr"
	Italian Code = "it"
	German  Code = "de"

	// Default is used whenever nothing better is known.
	Default = English
)

var supported = []Code{English, Spanish, French, Italian, German}

var countryLanguages = map[string]Code{
	"ES": Spanish, "MX": Spanish, "AR": Spanish, "CO": Spanish, "PE": Spanish,
	"VE": Spanish, "CL": Spanish, "EC": Spanish, "GT": Spanish, "CU": Spanish,
	"BO": Spanish, "DO": Spanish, "HN": Spanish, "PY": Spanish, "SV": Spanish,
	"NI": Spanish, "CR": Spanish, "PA": Spanish, "UY": Spanish,

	"FR": French, "BE": French, "CH": French, "CA": French, "LU": French,
	"MC": French, "SN": French, "CI": French, "BF": French, "ML": French,

	"IT": Italian, "SM": Italian, "VA": Italian,

	"DE": German, "AT": German, "LI": German,
}

// Supported returns the supported languages in display order.
func Supported() []Code {
	out := make([]Code, len(supported))
	copy(out, supported)

	return out
}

// IsSupported reports whether c is one of the supported languages.
func IsSupported(c Code) bool {
	for _, s := range supported {
		if s == c {
			return true
		}
	}

	return false
}

// Parse normalises s to a supported language, returning Default for anything else.
func Parse(s string) Code {
	c := Code(strings.ToLower(strings.TrimSpace(s)))
	if IsSupported(c) {
		return c
	}

	return Default
}

// MapCountryToLanguage maps an ISO 3166-1 alpha-2 country code to a language.
// Countries missing from the table map to English.
func MapCountryToLanguage(countryCode string) Code {
	if c, ok := countryLanguages[strings.ToUpper(strings.TrimSpace(countryCode))]; ok {
		return c
	}

	return Default
}

// FromLocale takes the primary subtag of a locale string such as "fr-CA" or
// "de_AT.UTF-8" and returns it when supported.
func FromLocale(locale string) (Code, bool) {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}

	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		locale = locale[:i]
	}

	c := Code(strings.ToLower(locale))

	return c, IsSupported(c)
}

// FromAcceptLanguage reduces an Accept-Language header to its highest weighted
// tag and returns that tag's language when supported.
func FromAcceptLanguage(header string) (Code, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return FromLocale(header)
	}

	base, _ := tags[0].Base()

	return FromLocale(base.String())
}
