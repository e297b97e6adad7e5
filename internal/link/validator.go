package link

import (
	"net/url"
	"regexp"
	"strings"
)

const maxURLLength = 2048

// Known share-link shapes. Each entry is matched against the trimmed input.
var defaultPatterns = []*regexp.Regexp{
	// canonical video page
	regexp.MustCompile(`^https?://(www\.)?tiktok\.com/@[\w.\-]+/video/\d+`),
	// short-code path
	regexp.MustCompile(`^https?://(www\.)?tiktok\.com/t/[A-Za-z0-9]+/?`),
	// short-domain redirectors
	regexp.MustCompile(`^https?://vm\.tiktok\.com/[A-Za-z0-9]+/?`),
	regexp.MustCompile(`^https?://vt\.tiktok\.com/[A-Za-z0-9]+/?`),
	// mobile subdomain
	regexp.MustCompile(`^https?://m\.tiktok\.com/`),
}

// Validator pre-filters input before committing to a network resolution.
type Validator struct {
	allowedSchemes map[string]bool
	patterns       []*regexp.Regexp
}

// NewValidator creates a validator for the known short-link and canonical domains.
func NewValidator() *Validator {
	return &Validator{
		allowedSchemes: map[string]bool{"http": true, "https": true},
		patterns:       defaultPatterns,
	}
}

// IsCandidate reports whether rawURL matches one of the known link shapes.
func (v *Validator) IsCandidate(rawURL string) bool {
	candidate := strings.TrimSpace(rawURL)

	for _, p := range v.patterns {
		if p.MatchString(candidate) {
			return true
		}
	}

	return false
}

// ExtractURL validates pasted text and returns a clean URL, or an empty string if
// the text is not a single http(s) URL.
func (v *Validator) ExtractURL(text string) string {
	text = strings.TrimSpace(text)

	if len(text) > maxURLLength || strings.ContainsAny(text, "\n\r") {
		return ""
	}

	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		return ""
	}

	parsed, err := url.Parse(text)
	if err != nil || parsed.Host == "" || !v.allowedSchemes[parsed.Scheme] {
		return ""
	}

	return parsed.String()
}
