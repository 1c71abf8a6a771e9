package edgar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/epeers/bankmetrics/internal/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// EDGAR publishes XBRL company facts per registrant. SEC fair-access policy requires a
// User-Agent that identifies the caller with a contact address and caps request rate.
// https://www.sec.gov/os/accessing-edgar-data
const (
	defaultBaseURL      = "https://data.sec.gov/api/xbrl/companyfacts"
	defaultTimeout      = 30 * time.Second
	DefaultRequestDelay = 110 * time.Millisecond
)

// Client fetches company facts documents from the SEC API
type Client struct {
	userAgent  string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL (for testing)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRequestDelay sets the fixed minimum spacing between requests.
// A zero delay disables throttling.
func WithRequestDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		if delay <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
}

// NewClient creates a new SEC company facts client. userAgent is the contact string
// sent with every request.
func NewClient(userAgent string, opts ...ClientOption) *Client {
	c := &Client{
		userAgent: userAgent,
		baseURL:   defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultRequestDelay), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Load fetches and parses the company facts document for a CIK.
// Returns ErrNotFound when the SEC has no facts for the registrant.
func (c *Client) Load(ctx context.Context, cik string) (*models.CompanyFacts, error) {
	padded, err := PadCIK(cik)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, fmt.Sprintf("%s/CIK%s.json", c.baseURL, padded))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	facts, err := ParseCompanyFacts(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("CIK %s: %w", padded, err)
	}
	return facts, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	log.Debugf("GET %s", reqURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, URL: reqURL, Message: string(body)}
	}

	return resp, nil
}
