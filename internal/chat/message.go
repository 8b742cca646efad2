package chat

import (
	"time"

	"github.com/aiprlassist/gavchat/internal/adk"
	"github.com/aiprlassist/gavchat/internal/stream"
)

// Role identifies who authored a message.
type Role string

const (
	// RoleUser is the visitor.
	RoleUser Role = "user"
	// RoleAgent is an AI agent or a human agent answering through the inbox.
	RoleAgent Role = "agent"
	// RoleSystem is a status line shown inline in the conversation.
	RoleSystem Role = "system"
)

// Message is one entry in the conversation timeline. The timeline is
// append-only and rendered in insertion order.
type Message struct {
	Role      Role
	Text      string
	Author    string
	Timestamp time.Time
	// Products are structured product cards extracted from tool results.
	Products []stream.Product
	// ToolCalls are the tools invoked while producing this message.
	ToolCalls []stream.ToolCall
	// Events is the raw event sequence the message was reduced from.
	Events []adk.Event
}

// Status is the single conversation status value driving the UI.
type Status string

const (
	// StatusIdle means the conversation is ready for a new turn.
	StatusIdle Status = "idle"
	// StatusLoading means a turn was sent and the stream has not opened yet.
	StatusLoading Status = "loading"
	// StatusStreaming means response events are arriving.
	StatusStreaming Status = "streaming"
	// StatusHumanMode means a human agent has taken over: turns are relayed
	// silently and replies arrive through the inbox channel.
	StatusHumanMode Status = "human_mode"
	// StatusRecovering means the one-time session recovery is in progress.
	StatusRecovering Status = "recovering"
)
