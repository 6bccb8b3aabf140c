// Package shopify proxies the store's Admin REST and Storefront GraphQL APIs.
package shopify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx answer from Shopify.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify: status %d: %s", e.Status, e.Body)
}

// Options configures a Client.
type Options struct {
	StoreDomain     string
	BaseURL         string // overrides https://<StoreDomain>, used by tests
	APIVersion      string
	AdminToken      string
	StorefrontToken string
	Timeout         time.Duration
	Cache           Cache
}

// Client talks to one Shopify store.
type Client struct {
	adminURL        string
	storefrontURL   string
	adminToken      string
	storefrontToken string
	http            *http.Client
	cache           Cache
	logger          *zap.SugaredLogger
}

// New creates a Client. A nil Cache disables catalog memoization.
func New(opts Options, logger *zap.SugaredLogger) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://" + opts.StoreDomain
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		adminURL:        base + "/admin/api/" + opts.APIVersion,
		storefrontURL:   base + "/api/" + opts.APIVersion + "/graphql.json",
		adminToken:      opts.AdminToken,
		storefrontToken: opts.StorefrontToken,
		http:            &http.Client{Timeout: timeout},
		cache:           opts.Cache,
		logger:          logger,
	}
}

// adminGet fetches an Admin API path and decodes the JSON body into out.
func (c *Client) adminGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.adminURL+path, nil)
	if err != nil {
		return fmt.Errorf("shopify: build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.adminToken)
	return c.do(req, out)
}

// storefrontQuery runs a GraphQL document against the Storefront API.
func (c *Client) storefrontQuery(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("shopify: encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.storefrontURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("shopify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.storefrontToken)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("shopify: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("shopify: read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("shopify: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
