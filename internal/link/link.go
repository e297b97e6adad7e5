package link

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrNetwork reports a transport failure or a non-success HTTP status.
	ErrNetwork = errors.New("network error")

	// ErrResolution reports a response that arrived but carried no usable canonical URL.
	ErrResolution = errors.New("resolution error")

	// ErrValidation reports input or decoded data that does not have the expected shape.
	ErrValidation = errors.New("validation error")
)

// Resolved is the outcome of resolving a share link.
type Resolved struct {
	CanonicalURL    string
	Creator         string
	PreviewImageURL string
}

// Canonicalize keeps scheme, host and path of rawURL and drops query and fragment.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse location: %w: %w", ErrResolution, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("location %q is not absolute: %w", rawURL, ErrResolution)
	}

	canonical := url.URL{
		Scheme:  u.Scheme,
		Host:    u.Host,
		Path:    u.Path,
		RawPath: u.RawPath,
	}

	return canonical.String(), nil
}
