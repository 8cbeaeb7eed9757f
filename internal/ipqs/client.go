// Package ipqs wraps the IPQualityScore IP reputation API.
package ipqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUpstream marks transport-level failures reaching the provider, so
// callers can tell them apart from policy verdicts.
var ErrUpstream = errors.New("ipqs: upstream request failed")

// Result is the subset of the IPQualityScore JSON payload the verifier and
// audit trail read.
type Result struct {
	Success bool   `json:"success" msgpack:"success"`
	Message string `json:"message,omitempty" msgpack:"message"`

	FraudScore  float64 `json:"fraud_score" msgpack:"fraud_score"`
	Proxy       bool    `json:"proxy" msgpack:"proxy"`
	VPN         bool    `json:"vpn" msgpack:"vpn"`
	Tor         bool    `json:"tor" msgpack:"tor"`
	ActiveVPN   bool    `json:"active_vpn" msgpack:"active_vpn"`
	ActiveTor   bool    `json:"active_tor" msgpack:"active_tor"`
	RecentAbuse bool    `json:"recent_abuse" msgpack:"recent_abuse"`
	BotStatus   bool    `json:"bot_status" msgpack:"bot_status"`

	CountryCode    string `json:"country_code" msgpack:"country_code"`
	Region         string `json:"region" msgpack:"region"`
	City           string `json:"city" msgpack:"city"`
	ISP            string `json:"ISP" msgpack:"isp"`
	ConnectionType string `json:"connection_type" msgpack:"connection_type"`

	// FromCache is set by CachedClient on cache hits; never serialized.
	FromCache bool `json:"-" msgpack:"-"`
}

// Client performs IP lookups. Implementations: HTTPClient, CachedClient.
type Client interface {
	Lookup(ctx context.Context, ip, userAgent string) (*Result, error)
}

// HTTPClient calls the IPQualityScore JSON endpoint:
// {base}/{api_key}/{ip}?user_agent=...&strictness=N&allow_public_access_points=true
type HTTPClient struct {
	apiKey     string
	baseURL    string
	strictness int
	httpClient *http.Client
}

func NewHTTPClient(apiKey, baseURL string, strictness int, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		strictness: strictness,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Lookup(ctx context.Context, ip, userAgent string) (*Result, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ipqs: build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("user_agent", userAgent)
	q.Set("strictness", strconv.Itoa(c.strictness))
	q.Set("allow_public_access_points", "true")
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return &result, nil
}
