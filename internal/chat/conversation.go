// Package chat is the conversation state machine tying the client together:
// identity resolution, session negotiation, the streaming request pipeline,
// and the inbound human-agent channel all feed one message timeline and one
// status value consumed by the presentation layer.
//
// Three concurrent actors mutate the conversation (the send path, the
// stream reduction, and the inbox listener), so all state lives behind one
// mutex. Append order is guaranteed within each channel; the interleaving
// between the outbound stream and the inbox channel is not.
package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aiprlassist/gavchat/internal/adk"
	"github.com/aiprlassist/gavchat/internal/config"
	"github.com/aiprlassist/gavchat/internal/identity"
	"github.com/aiprlassist/gavchat/internal/inbox"
	"github.com/aiprlassist/gavchat/internal/store"
	"github.com/aiprlassist/gavchat/internal/stream"
)

// Callbacks notify the presentation layer of conversation changes.
// All callbacks are optional. They are invoked without the conversation
// lock held, but must not block for long: they run on the goroutine that
// produced the change.
type Callbacks struct {
	// OnUpdate is called after any state change.
	OnUpdate func()
	// OnMessage is called when a message is appended to the timeline.
	OnMessage func(Message)
	// OnStatus is called when the status value changes.
	OnStatus func(Status)
}

// Options configures a Conversation.
type Options struct {
	// Launch carries the widget launch parameters.
	Launch config.LaunchParams
	// Welcome is the single message a fresh conversation starts with.
	Welcome string
	// Logger receives conversation diagnostics.
	Logger *slog.Logger
	// Callbacks notify the presentation layer.
	Callbacks Callbacks
}

// Conversation owns the full client-side chat state. It is safe for
// concurrent use.
type Conversation struct {
	backend  *adk.Client
	listener *inbox.Listener
	st       store.Store
	launch   config.LaunchParams
	welcome  string
	logger   *slog.Logger
	cb       Callbacks

	userID string

	mu            sync.Mutex
	sessionID     string
	status        Status
	aiPaused      bool
	messages      []Message
	activities    []stream.Activity
	streamingText string

	// recoveryDone latches the one-time recovery attempt. Reset rearms it.
	recoveryDone bool
	// inflight is non-nil while a session negotiation is running;
	// concurrent callers wait on it instead of starting their own.
	inflight chan struct{}
	// epoch invalidates in-flight negotiations across a Reset.
	epoch int

	cancelTurn context.CancelFunc
}

// New creates a Conversation wired to its collaborators. The user identity
// is resolved immediately, once per Conversation lifetime.
func New(backend *adk.Client, listener *inbox.Listener, st store.Store, opts Options) *Conversation {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	welcome := opts.Welcome
	if welcome == "" {
		welcome = config.DefaultWelcomeMessage
	}

	c := &Conversation{
		backend:  backend,
		listener: listener,
		st:       st,
		launch:   opts.Launch,
		welcome:  welcome,
		logger:   logger,
		cb:       opts.Callbacks,
		status:   StatusIdle,
	}
	c.userID = identity.Resolve(st, opts.Launch.Email)
	c.messages = []Message{c.welcomeMessage()}
	return c
}

// UserID returns the resolved user identifier.
func (c *Conversation) UserID() string {
	return c.userID
}

// SessionID returns the negotiated session identifier, or "" before the
// first successful negotiation.
func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Status returns the current conversation status.
func (c *Conversation) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// AIPaused reports whether a human agent has taken over.
func (c *Conversation) AIPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aiPaused
}

// Messages returns a copy of the message timeline.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)
	return msgs
}

// Activities returns a copy of the transient live-activity entries of the
// in-flight turn.
func (c *Conversation) Activities() []stream.Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	acts := make([]stream.Activity, len(c.activities))
	copy(acts, c.activities)
	return acts
}

// StreamingText returns the current streaming text buffer: the latest
// cumulative chunk of the in-flight reply.
func (c *Conversation) StreamingText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamingText
}

// CancelTurn aborts the in-flight turn, if any. An aborted turn is fully
// silent: no error message, the status simply resets.
func (c *Conversation) CancelTurn() {
	c.mu.Lock()
	cancel := c.cancelTurn
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Reset discards the session but keeps the identity: the timeline shrinks
// back to the single welcome entry, the stored session identifier is
// cleared, the inbox subscription is closed, and the recovery latch is
// rearmed for the next negotiation.
func (c *Conversation) Reset() {
	c.mu.Lock()
	if c.cancelTurn != nil {
		c.cancelTurn()
		c.cancelTurn = nil
	}
	c.epoch++
	c.sessionID = ""
	c.aiPaused = false
	c.recoveryDone = false
	c.messages = []Message{c.welcomeMessage()}
	c.activities = nil
	c.streamingText = ""
	c.status = StatusIdle
	c.mu.Unlock()

	c.st.ClearSession()
	c.listener.Close()

	c.notifyStatus(StatusIdle)
	c.notifyUpdate()
}

// Close tears down the conversation: the in-flight turn is aborted and the
// inbox subscription closed.
func (c *Conversation) Close() {
	c.CancelTurn()
	c.listener.Close()
}

// welcomeMessage builds the entry a fresh timeline starts with.
func (c *Conversation) welcomeMessage() Message {
	return Message{Role: RoleAgent, Text: c.welcome, Timestamp: time.Now()}
}

// startListener (re)binds the inbox subscription to the negotiated session.
// Called exactly once per successful negotiation; a new subscription
// replaces any prior one.
func (c *Conversation) startListener(sessionID string) {
	c.listener.Listen(sessionID, c.userID, inbox.Callbacks{
		OnMessage:       c.onInboxMessage,
		OnStatusChanged: c.onInboxStatus,
	})
}

// onInboxMessage appends a human-agent message pushed through the inbox.
func (c *Conversation) onInboxMessage(content, author string, timestamp time.Time) {
	msg := Message{
		Role:      RoleAgent,
		Text:      content,
		Author:    author,
		Timestamp: timestamp,
	}
	c.appendMessage(msg)
}

// onInboxStatus applies a live pause/resume notification. The paused flag
// governs how the next turn is routed; when the conversation is at rest the
// visible status follows the flag immediately.
func (c *Conversation) onInboxStatus(paused bool, statusText string) {
	c.mu.Lock()
	c.aiPaused = paused
	var changed Status
	if c.status == StatusIdle || c.status == StatusHumanMode {
		next := c.restingStatusLocked()
		if next != c.status {
			c.status = next
			changed = next
		}
	}
	c.mu.Unlock()

	if changed != "" {
		c.notifyStatus(changed)
	}
	if statusText != "" {
		c.appendMessage(Message{Role: RoleSystem, Text: statusText, Timestamp: time.Now()})
	}
	c.notifyUpdate()
}

// restingStatusLocked is the status the conversation settles into between
// turns. Human mode is sticky while the paused flag is set.
func (c *Conversation) restingStatusLocked() Status {
	if c.aiPaused {
		return StatusHumanMode
	}
	return StatusIdle
}

// appendMessage appends to the timeline and notifies the presentation layer.
func (c *Conversation) appendMessage(msg Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	if c.cb.OnMessage != nil {
		c.cb.OnMessage(msg)
	}
	c.notifyUpdate()
}

func (c *Conversation) notifyUpdate() {
	if c.cb.OnUpdate != nil {
		c.cb.OnUpdate()
	}
}

func (c *Conversation) notifyStatus(s Status) {
	if c.cb.OnStatus != nil {
		c.cb.OnStatus(s)
	}
}
