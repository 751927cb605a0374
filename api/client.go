package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const apiPath = "/api/data/v9.2"

// TokenSource supplies the bearer token attached to every outbound request.
type TokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// Client issues authenticated GET requests against the Dataverse OData
// endpoint of a single environment.
type Client struct {
	baseURL    string
	apiURL     string
	tokens     TokenSource
	httpClient *http.Client
}

// ClientOption customizes the client.
type ClientOption func(c *Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// BaseURL returns the environment base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches the given resource with optional OData query options and
// returns the raw response body. withAnnotations requests OData annotations
// alongside record data.
func (c *Client) Get(ctx context.Context, resource string, query url.Values, withAnnotations bool) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire token: %w", err)
	}
	URL := c.apiURL + "/" + resource
	if len(query) > 0 {
		URL += "?" + query.Encode()
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, URL, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Authorization", "Bearer "+token.AccessToken)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("OData-MaxVersion", "4.0")
	request.Header.Set("OData-Version", "4.0")
	request.Header.Set("x-ms-client-request-id", uuid.New().String())
	if withAnnotations {
		request.Header.Set("Prefer", `odata.include-annotations="*"`)
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %v: %w", resource, err)
	}
	defer response.Body.Close()
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", resource, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%v returned status %v: %s", resource, response.StatusCode, data)
	}
	return data, nil
}

// New creates a Dataverse client for the given environment base URL.
func New(baseURL string, tokens TokenSource, options ...ClientOption) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	ret := &Client{
		baseURL:    baseURL,
		apiURL:     baseURL + apiPath,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}
