package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aiprlassist/gavchat/internal/adk"
	"github.com/aiprlassist/gavchat/internal/stream"
)

// SendTurn runs one full user turn: the text is appended to the timeline
// optimistically, a session is ensured, the request is streamed, and the
// reduced reply (or an error entry) lands back on the timeline.
//
// Blank input and input sent while a turn is already in flight are
// ignored. The call blocks until the turn settles; use CancelTurn from
// another goroutine to abort.
func (c *Conversation) SendTurn(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	c.mu.Lock()
	if c.status != StatusIdle && c.status != StatusHumanMode {
		c.mu.Unlock()
		return
	}
	paused := c.aiPaused
	next := StatusLoading
	if paused {
		// A human agent holds the conversation: the turn is relayed, but no
		// AI response is expected, so the loading indicator stays off.
		next = StatusHumanMode
	}
	c.status = next
	c.activities = nil
	c.streamingText = ""

	turnCtx, cancel := context.WithCancel(ctx)
	c.cancelTurn = cancel
	c.mu.Unlock()

	c.notifyStatus(next)
	c.appendMessage(Message{Role: RoleUser, Text: text, Timestamp: time.Now()})

	defer c.finishTurn(cancel)

	sessionID, err := c.EnsureSession(turnCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Error("turn aborted, no session", "error", err)
		c.appendMessage(errorMessage(err))
		return
	}

	reducer := stream.NewReducer()
	err = c.backend.Run(turnCtx, c.userID, sessionID, text,
		func() { c.onStreamOpen() },
		func(ev adk.Event) { c.onStreamEvent(reducer, ev) },
	)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Debug("turn cancelled", "session_id", sessionID)
			return
		}
		c.logger.Error("streaming turn failed", "session_id", sessionID, "error", err)
		c.appendMessage(errorMessage(err))
		return
	}

	result, pausedNow := reducer.Finalize()
	if pausedNow {
		// The agent yielded to a human: record the handover, render nothing.
		c.mu.Lock()
		c.aiPaused = true
		c.mu.Unlock()
		c.logger.Info("agent paused, handing over to human", "session_id", sessionID)
		return
	}

	c.appendMessage(Message{
		Role:      RoleAgent,
		Text:      result.Text,
		Timestamp: time.Now(),
		Products:  result.Products,
		ToolCalls: result.ToolCalls,
		Events:    result.Events,
	})
}

// finishTurn settles the conversation after a turn, however it ended.
func (c *Conversation) finishTurn(cancel context.CancelFunc) {
	cancel()

	c.mu.Lock()
	c.cancelTurn = nil
	c.activities = nil
	c.streamingText = ""
	next := c.restingStatusLocked()
	changed := c.status != next
	c.status = next
	c.mu.Unlock()

	if changed {
		c.notifyStatus(next)
	}
	c.notifyUpdate()
}

// onStreamOpen marks the transition from waiting to receiving.
func (c *Conversation) onStreamOpen() {
	c.mu.Lock()
	changed := c.status == StatusLoading
	if changed {
		c.status = StatusStreaming
	}
	c.mu.Unlock()
	if changed {
		c.notifyStatus(StatusStreaming)
	}
}

// onStreamEvent feeds one event through the reducer and republishes the
// transient view: the latest cumulative text chunk and the activity trail.
func (c *Conversation) onStreamEvent(r *stream.Reducer, ev adk.Event) {
	r.Feed(ev)
	c.mu.Lock()
	c.streamingText = r.Text()
	c.activities = r.Activities()
	c.mu.Unlock()
	c.notifyUpdate()
}

// errorMessage is the visible timeline entry for a failed turn.
func errorMessage(err error) Message {
	return Message{
		Role:      RoleAgent,
		Text:      fmt.Sprintf("Sorry, something went wrong: %v", err),
		Timestamp: time.Now(),
	}
}
