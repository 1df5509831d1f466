package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// contextDefault is substituted for empty optional context fields so the
// coaching service always receives a complete SessionContext.
const contextDefault = "general"

// Client talks to the coaching service's control surface: session creation,
// session summary, and the startup health probe. The realtime event channel
// is addressed separately (see ChannelURL).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey sets the bearer token sent on control requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the coaching service at baseURL
// (http(s)://host[:port], no trailing slash required).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// CreateSession requests a new coaching session. Empty optional fields are
// replaced with the "general" sentinel; UserName is required.
func (c *Client) CreateSession(ctx context.Context, sc SessionContext) (string, error) {
	if strings.TrimSpace(sc.UserName) == "" {
		return "", NewRequestError("user name is required", nil)
	}

	req := CreateSessionRequest{
		UserName:     strings.TrimSpace(sc.UserName),
		EventDetails: orDefault(sc.EventDetails),
		Goals:        orDefault(sc.Goals),
		Participants: orDefault(sc.Participants),
		Tone:         orDefault(sc.Tone),
	}

	var resp CreateSessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions", req, &resp); err != nil {
		return "", NewRequestError("create session", err)
	}
	if strings.TrimSpace(resp.SessionID) == "" {
		return "", NewRequestError("create session: response missing session_id", nil)
	}
	return resp.SessionID, nil
}

// SessionSummary requests the final summary for an ended session. It must
// be called only after the event channel has been closed, so the service
// has received the complete audio stream.
func (c *Client) SessionSummary(ctx context.Context, sessionID string) (*SessionSummary, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, NewRequestError("summary: session id is required", nil)
	}
	var summary SessionSummary
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/summary"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &summary); err != nil {
		return nil, NewRequestError("session summary", err)
	}
	return &summary, nil
}

// ProbeHealth issues a best-effort readiness check against the service.
// Failure is non-fatal: it is logged and swallowed.
func (c *Client) ProbeHealth(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		c.logger.Warn("health probe skipped", "error", err)
		return
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("health probe failed", "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("health probe returned non-OK", "status", resp.StatusCode)
		return
	}
	c.logger.Debug("health probe ok")
}

// ChannelURL derives the event-channel websocket address for a session id
// from the client's base URL: same host, path-scoped by id.
func (c *Client) ChannelURL(sessionID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/sessions/" + url.PathEscape(sessionID) + "/stream"
	return u.String(), nil
}

// doJSON sends a JSON request and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	httpReq.Header.Set("X-Connect-Id", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func orDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return contextDefault
	}
	return strings.TrimSpace(s)
}
