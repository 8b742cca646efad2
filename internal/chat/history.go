package chat

import (
	"strings"

	"github.com/aiprlassist/gavchat/internal/adk"
)

// DecodeHistory reconstructs the message timeline from a recovered
// session's event sequence.
//
// It is a pure function. Events with no text and events carrying only the
// reserved pause sentinel are dropped: the sentinel marks "AI paused, no
// content to show" and must never be rendered.
func DecodeHistory(events []adk.Event) []Message {
	var msgs []Message
	for _, ev := range events {
		text := strings.TrimSpace(ev.Text())
		if text == "" || text == adk.PauseSentinel {
			continue
		}
		msgs = append(msgs, Message{
			Role:   roleForAuthor(ev.Author),
			Text:   text,
			Author: ev.Author,
		})
	}
	return msgs
}

// roleForAuthor maps a server-recorded author to a display role.
// Only the literal "system" author routes to the system role; any unknown
// author is an agent.
func roleForAuthor(author string) Role {
	switch author {
	case "user":
		return RoleUser
	case "human_agent":
		return RoleAgent
	case "system":
		return RoleSystem
	default:
		return RoleAgent
	}
}
