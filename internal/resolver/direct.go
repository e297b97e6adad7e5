package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/serroba/linkclean/internal/link"
)

// Direct reads the redirect returned by the share link host itself.
type Direct struct {
	client *http.Client
}

// NewDirect creates a direct resolver. The client is copied so that redirect
// following can be disabled without touching the caller's value.
func NewDirect(client *http.Client) *Direct {
	c := http.Client{}
	if client != nil {
		c = *client
	}

	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Direct{client: &c}
}

// Resolve requests inputURL and accepts only a 301 with a Location header.
func (d *Direct) Resolve(ctx context.Context, inputURL string) (*link.Resolved, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, inputURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w: %w", link.ErrValidation, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request share link: %w: %w", link.ErrNetwork, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusMovedPermanently {
		return nil, fmt.Errorf("share link answered %d, want 301: %w", resp.StatusCode, link.ErrResolution)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return nil, fmt.Errorf("redirect without location: %w", link.ErrResolution)
	}

	target, err := req.URL.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse location: %w: %w", link.ErrResolution, err)
	}

	canonical, err := link.Canonicalize(target.String())
	if err != nil {
		return nil, err
	}

	return &link.Resolved{CanonicalURL: canonical}, nil
}

var _ Resolver = (*Direct)(nil)
