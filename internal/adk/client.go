// Package adk provides a Go client for an ADK-compatible agent backend:
// session lookup and creation over REST, and turn execution over the
// newline-delimited SSE stream of /run_sse.
package adk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrSessionNotFound is returned by GetSession when the backend does not
// know the (user, session) pair. Callers treat it as "no prior session" and
// fall through to creation.
var ErrSessionNotFound = errors.New("session not found")

// Client provides HTTP methods for the agent backend API.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	appName string
	// httpClient serves the bounded REST calls.
	httpClient *http.Client
	// streamClient serves the long-lived run stream; it must not carry a
	// request timeout or streams get cut off mid-turn.
	streamClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for REST calls.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the REST call timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// New creates a new backend client.
// baseURL is the backend address (e.g. "https://gavigans.demo.example.com")
// and appName the ADK application the sessions belong to.
func New(baseURL, appName string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		appName: appName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		streamClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// sessionURL builds the session resource URL for a user.
func (c *Client) sessionURL(userID, sessionID string) string {
	u := c.baseURL + "/apps/" + url.PathEscape(c.appName) +
		"/users/" + url.PathEscape(userID) + "/sessions"
	if sessionID != "" {
		u += "/" + url.PathEscape(sessionID)
	}
	return u
}

// GetSession fetches a session by (userID, sessionID).
// Returns ErrSessionNotFound when the backend does not know the pair.
func (c *Client) GetSession(ctx context.Context, userID, sessionID string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sessionURL(userID, sessionID), nil)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSessionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get session: status %d: %s", resp.StatusCode, string(body))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("get session: decode: %w", err)
	}
	return &session, nil
}

// CreateSession creates a new session for userID, seeded with state.
func (c *Client) CreateSession(ctx context.Context, userID string, state map[string]any) (*Session, error) {
	body, err := json.Marshal(createSessionRequest{State: state})
	if err != nil {
		return nil, fmt.Errorf("create session: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sessionURL(userID, ""), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create session: status %d: %s", resp.StatusCode, string(respBody))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("create session: decode: %w", err)
	}
	return &session, nil
}
