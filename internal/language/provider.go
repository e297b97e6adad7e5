package language

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoCountry = errors.New("no country in response")

// Provider describes one geolocation service. Providers are values built once at
// startup; the detector never changes them.
type Provider struct {
	Name string

	// URL builds the request URL. ip is empty when the caller's own address
	// should be located.
	URL func(ip string) string

	// Extract pulls the country code out of a successful response body.
	Extract func(body []byte) (string, error)

	// SelfOnly marks services that can only locate the caller's own address.
	SelfOnly bool
}

// IPAPI locates addresses with the ip-api.com JSON endpoint.
func IPAPI(baseURL string) Provider {
	baseURL = strings.TrimRight(baseURL, "/")

	return Provider{
		Name: "ip-api",
		URL: func(ip string) string {
			return fmt.Sprintf("%s/json/%s?fields=status,countryCode", baseURL, ip)
		},
		Extract: func(body []byte) (string, error) {
			var data struct {
				Status      string `json:"status"`
				CountryCode string `json:"countryCode"`
			}

			if err := json.Unmarshal(body, &data); err != nil {
				return "", fmt.Errorf("parse ip-api response: %w", err)
			}

			if data.Status == "fail" {
				return "", errors.New("ip-api reported failure")
			}

			return nonEmpty(data.CountryCode)
		},
	}
}

// IPInfo locates addresses with the ipinfo.io JSON endpoint.
func IPInfo(baseURL string) Provider {
	baseURL = strings.TrimRight(baseURL, "/")

	return Provider{
		Name: "ipinfo",
		URL: func(ip string) string {
			if ip == "" {
				return baseURL + "/json"
			}

			return fmt.Sprintf("%s/%s/json", baseURL, ip)
		},
		Extract: func(body []byte) (string, error) {
			var data struct {
				Country string `json:"country"`
			}

			if err := json.Unmarshal(body, &data); err != nil {
				return "", fmt.Errorf("parse ipinfo response: %w", err)
			}

			return nonEmpty(data.Country)
		},
	}
}

// CloudflareTrace reads the loc= line of the edge network trace endpoint.
func CloudflareTrace(baseURL string) Provider {
	baseURL = strings.TrimRight(baseURL, "/")

	return Provider{
		Name: "cloudflare-trace",
		URL: func(_ string) string {
			return baseURL + "/cdn-cgi/trace"
		},
		Extract: func(body []byte) (string, error) {
			scanner := bufio.NewScanner(bytes.NewReader(body))
			for scanner.Scan() {
				if loc, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "loc="); ok {
					return nonEmpty(loc)
				}
			}

			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("read trace response: %w", err)
			}

			return "", errNoCountry
		},
		SelfOnly: true,
	}
}

// DefaultProviders returns the providers in their fixed priority order.
func DefaultProviders(ipAPIURL, ipInfoURL, traceURL string) []Provider {
	return []Provider{
		IPAPI(ipAPIURL),
		IPInfo(ipInfoURL),
		CloudflareTrace(traceURL),
	}
}

func nonEmpty(countryCode string) (string, error) {
	countryCode = strings.TrimSpace(countryCode)
	if countryCode == "" {
		return "", errNoCountry
	}

	return countryCode, nil
}
