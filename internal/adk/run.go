package adk

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// maxEventSize bounds a single streamed record. Product search responses
// can carry sizable payloads, so this is generous.
const maxEventSize = 4 * 1024 * 1024

// Run posts one chat turn to the streaming endpoint and invokes onEvent for
// every decoded event, in arrival order, on the calling goroutine.
//
// onOpen, if non-nil, is invoked once after the stream connection is
// established, before any event is delivered.
//
// Run blocks until the stream ends. Cancelling ctx aborts the in-flight
// read; the returned error then wraps ctx.Err() so callers can distinguish
// a user abort from a genuine failure.
func (c *Client) Run(ctx context.Context, userID, sessionID, text string, onOpen func(), onEvent func(Event)) error {
	body, err := json.Marshal(RunRequest{
		AppName:   c.appName,
		UserID:    userID,
		SessionID: sessionID,
		NewMessage: Content{
			Role:  "user",
			Parts: []Part{{Text: text}},
		},
		Streaming: true,
	})
	if err != nil {
		return fmt.Errorf("run: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run_sse", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("run: status %d: %s", resp.StatusCode, string(respBody))
	}

	if onOpen != nil {
		onOpen()
	}

	return c.readStream(ctx, resp.Body, onEvent)
}

// readStream consumes the newline-delimited event stream, decoding every
// "data:"-prefixed record and delivering it in arrival order.
func (c *Client) readStream(ctx context.Context, r io.Reader, onEvent func(Event)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		ev, err := decodeEvent([]byte(payload))
		if err != nil {
			// Undecodable records are dropped; the stream itself stays up.
			slog.Debug("skipping undecodable stream record", "error", err)
			continue
		}
		onEvent(ev)
	}

	if err := scanner.Err(); err != nil {
		// A cancelled context surfaces as a read error on the body.
		if ctx.Err() != nil {
			return fmt.Errorf("run: %w", ctx.Err())
		}
		return fmt.Errorf("run: read stream: %w", err)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("run: %w", ctx.Err())
	}
	return nil
}
