package chat

import (
	"context"
	"errors"

	"github.com/aiprlassist/gavchat/internal/adk"
)

// SessionCreationError reports that session creation over the network
// failed after recovery was attempted or skipped. It is the only error a
// session negotiation can surface.
type SessionCreationError struct {
	Err error
}

func (e *SessionCreationError) Error() string {
	return "session creation failed: " + e.Err.Error()
}

func (e *SessionCreationError) Unwrap() error {
	return e.Err
}

// EnsureSession recovers the prior session or creates a new one, returning
// the session identifier. It is idempotent within a Conversation lifetime:
// once negotiated, the same identifier is returned immediately, and
// concurrent callers converge on a single in-flight negotiation.
//
// Recovery is attempted at most once per lifetime regardless of how many
// times EnsureSession is invoked; a recovery failure is never fatal, it
// only falls through to creation.
func (c *Conversation) EnsureSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	for {
		if c.sessionID != "" {
			sid := c.sessionID
			c.mu.Unlock()
			return sid, nil
		}
		if c.inflight == nil {
			break
		}
		// Another caller is negotiating; wait for it and re-check.
		wait := c.inflight
		c.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		c.mu.Lock()
	}
	inflight := make(chan struct{})
	c.inflight = inflight
	epoch := c.epoch
	c.mu.Unlock()

	sid, err := c.negotiate(ctx, epoch)

	c.mu.Lock()
	if c.inflight == inflight {
		c.inflight = nil
	}
	c.mu.Unlock()
	close(inflight)

	return sid, err
}

// negotiate runs one recovery-then-create pass.
func (c *Conversation) negotiate(ctx context.Context, epoch int) (string, error) {
	logger := c.logger.With("user_id", c.userID)

	c.mu.Lock()
	attemptRecovery := !c.recoveryDone
	c.recoveryDone = true
	c.mu.Unlock()

	if attemptRecovery {
		if prior := c.st.SessionID(); prior != "" {
			c.enterRecovering()
			session, err := c.backend.GetSession(ctx, c.userID, prior)
			c.exitRecovering()

			if err == nil {
				logger.Info("recovered session", "session_id", session.ID, "events", len(session.Events))
				c.adopt(session, true, epoch)
				return session.ID, nil
			}

			// Not-found and fetch errors are equivalent here: drop the
			// stored identifier and fall through to creation.
			if errors.Is(err, adk.ErrSessionNotFound) {
				logger.Info("stored session unknown to backend, creating a new one", "session_id", prior)
			} else {
				logger.Warn("session recovery failed, creating a new one", "session_id", prior, "error", err)
			}
			c.st.ClearSession()
		}
	}

	session, err := c.backend.CreateSession(ctx, c.userID, c.launch.InitialState())
	if err != nil {
		return "", &SessionCreationError{Err: err}
	}
	logger.Info("created session", "session_id", session.ID)
	c.adopt(session, false, epoch)
	return session.ID, nil
}

// adopt applies a negotiated session to the conversation. A Reset that
// happened while the negotiation was in flight invalidates the result.
func (c *Conversation) adopt(session *adk.Session, recovered bool, epoch int) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.sessionID = session.ID
	if recovered {
		c.messages = append(c.messages, DecodeHistory(session.Events)...)
		c.aiPaused = session.AIPaused()
	}
	c.mu.Unlock()

	c.st.SetSessionID(session.ID)
	c.startListener(session.ID)
	c.notifyUpdate()
}

// enterRecovering flips the status for the one-time recovery attempt, but
// never stomps an in-flight turn's status.
func (c *Conversation) enterRecovering() {
	c.mu.Lock()
	changed := c.status == StatusIdle
	if changed {
		c.status = StatusRecovering
	}
	c.mu.Unlock()
	if changed {
		c.notifyStatus(StatusRecovering)
	}
}

// exitRecovering converges back to idle: success, not-found and error all
// leave recovery the same way.
func (c *Conversation) exitRecovering() {
	c.mu.Lock()
	changed := c.status == StatusRecovering
	if changed {
		c.status = StatusIdle
	}
	c.mu.Unlock()
	if changed {
		c.notifyStatus(StatusIdle)
	}
}
