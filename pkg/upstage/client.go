package upstage

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the default base URL for the Upstage API.
const DefaultBaseURL = "https://api.upstage.ai/v1"

// API endpoint paths relative to the base URL.
const (
	digitizePath       = "/document-digitization"
	extractionPath     = "/information-extraction/chat/completions"
	schemaGenPath      = "/information-extraction/schema-generation/chat/completions"
	classificationPath = "/document-classification/chat/completions"
)

// Default retry and timeout policy. Each attempt gets its own timeout; the
// backoff delay doubles between attempts up to the cap.
const (
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = 1 * time.Second
	DefaultRetryMaxDelay  = 4 * time.Second
	DefaultRequestTimeout = 5 * time.Minute
)

// Client is an Upstage Document AI API client.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	clientID       string
	maxAttempts    int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	requestTimeout time.Duration
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClientIdentifier sets the x-upstage-client header value sent with
// every request.
func WithClientIdentifier(id string) Option {
	return func(c *Client) {
		c.clientID = id
	}
}

// WithMaxAttempts sets the total number of attempts per logical call.
// Values below 1 are clamped to 1.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = max(n, 1)
	}
}

// WithRetryDelays sets the initial and maximum backoff delay between
// attempts.
func WithRetryDelays(base, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = base
		c.retryMaxDelay = maxDelay
	}
}

// WithRequestTimeout sets the per-attempt timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = d
	}
}

// New creates a new Upstage API client authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		apiKey:         apiKey,
		httpClient:     http.DefaultClient,
		clientID:       "upstage-mcp-go",
		maxAttempts:    DefaultMaxAttempts,
		retryBaseDelay: DefaultRetryBaseDelay,
		retryMaxDelay:  DefaultRetryMaxDelay,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// setCommonHeaders applies the auth and client-identification headers
// carried by every outbound request.
func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("x-upstage-client", c.clientID)
	req.Header.Set("Accept", "application/json")
}

// parseError extracts an APIError from an error response.
func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil && errResp.Error.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error.Message}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
