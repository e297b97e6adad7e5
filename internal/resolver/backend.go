package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/serroba/linkclean/internal/link"
	"github.com/serroba/linkclean/internal/payload"
)

const maxBackendBody = 1 << 20

// Backend delegates resolution to the resolution endpoint.
type Backend struct {
	endpoint string
	client   *http.Client
}

// NewBackend creates a resolver calling endpoint.
func NewBackend(endpoint string, client *http.Client) *Backend {
	if client == nil {
		client = http.DefaultClient
	}

	return &Backend{endpoint: endpoint, client: client}
}

// backendResponse covers both the legacy and the obfuscated response bodies.
type backendResponse struct {
	Status   int     `json:"status"`
	Location string  `json:"purified-location"`
	Data     *string `json:"data"`
}

// decodedPayload is the object hidden in the obfuscated data field.
type decodedPayload struct {
	Location string `json:"purified-location"`
	Creator  string `json:"creator"`
	OGImage  string `json:"og_image"`
}

// Resolve asks the backend for the canonical URL of inputURL.
func (b *Backend) Resolve(ctx context.Context, inputURL string) (*link.Resolved, error) {
	endpoint, err := url.Parse(b.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse backend endpoint: %w", err)
	}

	query := endpoint.Query()
	query.Set("url", inputURL)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w: %w", link.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("backend answered %s: %w", resp.Status, link.ErrNetwork)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBackendBody))
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w: %w", link.ErrNetwork, err)
	}

	var data backendResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse backend response: %w: %w", link.ErrResolution, err)
	}

	if data.Data != nil {
		return fromPayload(*data.Data)
	}

	if data.Status != http.StatusMovedPermanently || data.Location == "" {
		return nil, fmt.Errorf("backend returned status %d without a location: %w", data.Status, link.ErrResolution)
	}

	return &link.Resolved{CanonicalURL: data.Location}, nil
}

func fromPayload(obfuscated string) (*link.Resolved, error) {
	var decoded decodedPayload
	if err := payload.DecodeInto(obfuscated, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", link.ErrResolution, err)
	}

	if decoded.Location == "" {
		return nil, fmt.Errorf("decoded payload has no purified-location: %w: %w", link.ErrResolution, link.ErrValidation)
	}

	return &link.Resolved{
		CanonicalURL:    decoded.Location,
		Creator:         decoded.Creator,
		PreviewImageURL: decoded.OGImage,
	}, nil
}

var _ Resolver = (*Backend)(nil)
