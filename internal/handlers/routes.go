package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkclean/internal/ratelimit"
)

var networkLimited = map[string]any{
	ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeNetwork},
}

// RegisterRoutes registers the link and language routes.
func RegisterRoutes(api huma.API, links *LinkHandler, languages *LanguageHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "resolve-link",
		Method:      http.MethodPost,
		Path:        "/resolve",
		Summary:     "Resolve share link",
		Description: "Resolves a share link to its canonical URL and remembers it. Unknown link shapes are rejected unless validate is false.",
		Tags:        []string{"Links"},
		Metadata:    networkLimited,
	}, links.Resolve)

	huma.Register(api, huma.Operation{
		OperationID: "resolve-link-lenient",
		Method:      http.MethodGet,
		Path:        "/resolve",
		Summary:     "Resolve any link",
		Description: "Resolves a link without checking its shape first.",
		Tags:        []string{"Links"},
		Metadata:    networkLimited,
	}, links.ResolveQuery)

	huma.Register(api, huma.Operation{
		OperationID: "list-recent",
		Method:      http.MethodGet,
		Path:        "/recent",
		Summary:     "List recent links",
		Tags:        []string{"Links"},
	}, links.ListRecent)

	huma.Register(api, huma.Operation{
		OperationID:   "clear-recent",
		Method:        http.MethodDelete,
		Path:          "/recent",
		Summary:       "Clear recent links",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusNoContent,
	}, links.ClearRecent)

	huma.Register(api, huma.Operation{
		OperationID: "decode-payload",
		Method:      http.MethodPost,
		Path:        "/decode",
		Summary:     "Decode backend payload",
		Description: "Reverses the obfuscation applied to resolution backend responses.",
		Tags:        []string{"Diagnostics"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30},
				},
			},
		},
	}, links.Decode)

	huma.Register(api, huma.Operation{
		OperationID: "get-language",
		Method:      http.MethodGet,
		Path:        "/language",
		Summary:     "Get UI language",
		Description: "Returns the stored language or detects one from the caller's location and Accept-Language header.",
		Tags:        []string{"Language"},
		Metadata:    networkLimited,
	}, languages.Get)

	huma.Register(api, huma.Operation{
		OperationID: "set-language",
		Method:      http.MethodPut,
		Path:        "/language",
		Summary:     "Set UI language",
		Tags:        []string{"Language"},
	}, languages.Set)
}
