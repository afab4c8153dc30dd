// Package glowmarkt implements the HTTP client for the Glowmarkt v0-1 API,
// the service behind the Bright app that exposes smart meter readings.
package glowmarkt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/energy-tools/glow-atlas/pkg/models/api"
)

const (
	// DefaultBaseURL is the public Glowmarkt API root.
	DefaultBaseURL = "https://api.glowmarkt.com/api/v0-1"

	// DefaultApplicationID is Bright's published application id. Every
	// request must carry it in the applicationId header.
	DefaultApplicationID = "b0f1b774-a586-4f72-9edd-27ead8aa7a8d"

	// FunctionSum asks the server to sum raw readings into each bucket.
	FunctionSum = "sum"

	defaultTimeout = 30 * time.Second

	// timestampLayout is what the readings endpoint expects for from/to:
	// ISO-8601 without a zone suffix.
	timestampLayout = "2006-01-02T15:04:05"
)

type Config struct {
	BaseURL       string
	ApplicationID string
	Timeout       time.Duration
	// MinInterval spaces consecutive requests to stay clear of server-side
	// throttling. Zero disables pacing.
	MinInterval time.Duration
}

// Client is a thin transport for the Glowmarkt API. It holds no session
// state; callers pass the token for authenticated endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ApplicationID == "" {
		cfg.ApplicationID = DefaultApplicationID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		appID:      cfg.ApplicationID,
		limiter:    rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
	}
}

// Login exchanges account credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth", "", nil, api.AuthRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Token == "" {
		return nil, &AuthError{StatusCode: http.StatusOK, Message: "login response carried no token"}
	}

	return &resp, nil
}

// GetVirtualEntities lists the virtual entities visible to the account.
func (c *Client) GetVirtualEntities(ctx context.Context, token string) ([]api.VirtualEntity, error) {
	var resp []api.VirtualEntity
	if err := c.do(ctx, http.MethodGet, "/virtualentity", token, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetResources lists the resources attached to one virtual entity.
func (c *Client) GetResources(ctx context.Context, token, veID string) (*api.VirtualEntityResources, error) {
	var resp api.VirtualEntityResources
	path := fmt.Sprintf("/virtualentity/%s/resources", url.PathEscape(veID))
	if err := c.do(ctx, http.MethodGet, path, token, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type ReadingsRequest struct {
	ResourceID string
	From       time.Time
	To         time.Time
	Period     time.Duration
	Function   string
}

// GetReadings pulls one window of aggregated readings for a resource. The
// window bounds are sent as UTC wall-clock time with offset 0, so returned
// epochs are unambiguous.
func (c *Client) GetReadings(ctx context.Context, token string, req ReadingsRequest) (*api.ReadingsResponse, error) {
	function := req.Function
	if function == "" {
		function = FunctionSum
	}

	query := url.Values{}
	query.Set("from", FormatTimestamp(req.From))
	query.Set("to", FormatTimestamp(req.To))
	query.Set("period", FormatPeriod(req.Period))
	query.Set("offset", strconv.Itoa(0))
	query.Set("function", function)

	var resp api.ReadingsResponse
	path := fmt.Sprintf("/resource/%s/readings", url.PathEscape(req.ResourceID))
	if err := c.do(ctx, http.MethodGet, path, token, query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FormatTimestamp renders a request bound the way the readings endpoint
// expects: UTC wall-clock time without a zone suffix.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// FormatPeriod renders a bucket width as an ISO-8601 duration.
func FormatPeriod(d time.Duration) string {
	day := 24 * time.Hour
	switch {
	case d >= day && d%day == 0:
		days := int(d / day)
		if days%7 == 0 {
			return fmt.Sprintf("P%dW", days/7)
		}
		return fmt.Sprintf("P%dD", days)
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("PT%dH", int(d/time.Hour))
	default:
		return fmt.Sprintf("PT%dM", int(d/time.Minute))
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for request slot: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("creating %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("applicationId", c.appID)
	if token != "" {
		req.Header.Set("token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransientError{Err: fmt.Errorf("reading %s %s response: %w", method, path, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp.StatusCode, errorText(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &CatalogError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("undecodable %s %s response: %v", method, path, err),
			}
		}
	}

	return nil
}

func classifyStatus(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{StatusCode: status, Message: message}
	case status == http.StatusTooManyRequests || status >= 500:
		return &TransientError{StatusCode: status, Message: message}
	default:
		return &CatalogError{StatusCode: status, Message: message}
	}
}

func errorText(body []byte) string {
	var parsed api.ErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Text() != "" {
		return parsed.Text()
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
