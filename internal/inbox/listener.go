// Package inbox maintains the long-lived server-push subscription that
// delivers human-agent messages and AI pause/resume notifications while a
// session is open.
//
// The channel is independent of the outbound streaming pipeline: a human
// agent can write into the conversation at any time, including while an AI
// turn is streaming. Delivery availability is favored over resource
// conservation, so a dropped transport is reopened after a fixed delay,
// forever, until Close is called.
package inbox

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultReconnectInterval is the fixed delay between reconnection attempts.
const DefaultReconnectInterval = 3 * time.Second

// event is the wire shape of one inbound item.
type event struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
	AIPaused  bool   `json:"ai_paused"`
	Message   string `json:"message"`
}

// Callbacks defines the handlers for inbound items.
// All callbacks are optional; nil callbacks are ignored.
type Callbacks struct {
	// OnMessage is called when a human agent sends a message.
	OnMessage func(content, author string, timestamp time.Time)

	// OnStatusChanged is called when the AI-paused flag changes.
	// statusText, when non-empty, is a human-readable status line worth
	// showing to the visitor.
	OnStatusChanged func(paused bool, statusText string)
}

// Listener maintains at most one inbound subscription at a time.
// It is safe for concurrent use.
type Listener struct {
	baseURL    string
	interval   time.Duration
	httpClient *http.Client
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Option configures the listener.
type Option func(*Listener)

// WithReconnectInterval overrides the fixed reconnection delay.
func WithReconnectInterval(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithLogger sets the logger for transport events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) {
		l.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
// The client must not carry a request timeout or the long-lived
// subscription gets cut off.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Listener) {
		l.httpClient = c
	}
}

// NewListener creates a listener for the given backend base URL.
func NewListener(baseURL string, opts ...Option) *Listener {
	l := &Listener{
		baseURL:    baseURL,
		interval:   DefaultReconnectInterval,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Listen opens the subscription for (sessionID, userID), replacing any
// prior subscription. It returns immediately; items are delivered on a
// background goroutine until Close.
func (l *Listener) Listen(sessionID, userID string, cb Callbacks) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.mu.Unlock()

	go l.run(ctx, sessionID, userID, cb)
}

// Close tears down the current subscription. The listener does not reopen
// until the next Listen call.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// run connects and reconnects until ctx is cancelled.
func (l *Listener) run(ctx context.Context, sessionID, userID string, cb Callbacks) {
	logger := l.logger.With("session_id", sessionID)
	for {
		err := l.subscribe(ctx, sessionID, userID, cb)
		if ctx.Err() != nil {
			return
		}
		logger.Debug("inbox subscription dropped, reconnecting", "error", err, "delay", l.interval)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.interval):
		}
	}
}

// subscribe opens one subscription and pumps items until the transport
// drops or ctx is cancelled.
func (l *Listener) subscribe(ctx context.Context, sessionID, userID string, cb Callbacks) error {
	u := l.baseURL + "/api/inbox/listen/" + url.PathEscape(sessionID) +
		"?user_id=" + url.QueryEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("inbox subscribe: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inbox subscribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inbox subscribe: status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 16*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		l.dispatch(payload, cb)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("inbox read: %w", err)
	}
	return nil
}

// dispatch routes one inbound payload to the callbacks. Unknown types and
// parse failures are keepalive noise and are silently ignored: nothing on
// this channel is ever surfaced to the visitor as an error.
func (l *Listener) dispatch(payload string, cb Callbacks) {
	var ev event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return
	}

	switch ev.Type {
	case "new_message":
		if cb.OnMessage != nil {
			cb.OnMessage(ev.Content, ev.Author, parseTimestamp(ev.Timestamp))
		}
	case "ai_status_changed":
		if cb.OnStatusChanged != nil {
			cb.OnStatusChanged(ev.AIPaused, ev.Message)
		}
	}
}

// parseTimestamp parses an inbound timestamp, returning the current time
// when the value is absent or malformed.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}
