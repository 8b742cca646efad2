package chat

import (
	"testing"

	"github.com/aiprlassist/gavchat/internal/adk"
)

func event(author, text string) adk.Event {
	return adk.Event{
		Author:  author,
		Content: &adk.Content{Parts: []adk.Part{{Text: text}}},
	}
}

func TestDecodeHistory(t *testing.T) {
	events := []adk.Event{
		event("user", "do you ship to Ireland?"),
		event("gavigans_agent", "We do, within 5 days."),
		event("gavigans_agent", adk.PauseSentinel),
		event("human_agent", "Sam here, happy to help."),
		event("system", "An agent joined the chat"),
		event("gavigans_agent", "   "),
		{Author: "gavigans_agent"},
	}

	msgs := DecodeHistory(events)
	if len(msgs) != 4 {
		t.Fatalf("decoded %d messages, want 4: %+v", len(msgs), msgs)
	}

	want := []struct {
		role Role
		text string
	}{
		{RoleUser, "do you ship to Ireland?"},
		{RoleAgent, "We do, within 5 days."},
		{RoleAgent, "Sam here, happy to help."},
		{RoleSystem, "An agent joined the chat"},
	}
	for i, w := range want {
		if msgs[i].Role != w.role || msgs[i].Text != w.text {
			t.Errorf("message %d = %+v, want role %v text %q", i, msgs[i], w.role, w.text)
		}
	}
}

func TestDecodeHistoryUnknownAuthorIsAgent(t *testing.T) {
	msgs := DecodeHistory([]adk.Event{event("some_future_subagent", "hello")})
	if len(msgs) != 1 || msgs[0].Role != RoleAgent {
		t.Errorf("decoded = %+v, want one agent message", msgs)
	}
	if msgs[0].Author != "some_future_subagent" {
		t.Errorf("author = %q, want preserved", msgs[0].Author)
	}
}

func TestDecodeHistoryEmpty(t *testing.T) {
	if msgs := DecodeHistory(nil); len(msgs) != 0 {
		t.Errorf("decoded %d messages from nil events", len(msgs))
	}
}
