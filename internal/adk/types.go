package adk

import "encoding/json"

// PauseSentinel is the reserved text the backend emits instead of a reply
// when a human agent has taken over the conversation. It must never be
// rendered to the visitor.
const PauseSentinel = "__AI_PAUSED__"

// StateKeyAIPaused is the session-state key carrying the human-takeover flag.
const StateKeyAIPaused = "ai_paused"

// Session is a conversational session as stored by the backend.
type Session struct {
	ID      string         `json:"id"`
	AppName string         `json:"appName,omitempty"`
	UserID  string         `json:"userId,omitempty"`
	State   map[string]any `json:"state,omitempty"`
	Events  []Event        `json:"events,omitempty"`
}

// AIPaused reads the human-takeover flag from the session state.
func (s *Session) AIPaused() bool {
	if s == nil || s.State == nil {
		return false
	}
	paused, _ := s.State[StateKeyAIPaused].(bool)
	return paused
}

// Event is one server-recorded or streamed agent event.
type Event struct {
	Content *Content `json:"content,omitempty"`
	Partial bool     `json:"partial,omitempty"`
	Author  string   `json:"author,omitempty"`
}

// Content is the event payload: an ordered list of parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// Part is a single piece of event content. Exactly one field is normally set.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// FunctionCall is a tool invocation recorded in an event.
type FunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name,omitempty"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse is the result of a tool invocation.
type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Response map[string]any `json:"response,omitempty"`
}

// Text returns the concatenated text of all text parts of the event.
func (e Event) Text() string {
	if e.Content == nil {
		return ""
	}
	var text string
	for _, p := range e.Content.Parts {
		if p.Text != "" {
			if text != "" {
				text += " "
			}
			text += p.Text
		}
	}
	return text
}

// RunRequest is the body of a streaming run request.
type RunRequest struct {
	AppName    string  `json:"appName"`
	UserID     string  `json:"userId"`
	SessionID  string  `json:"sessionId"`
	NewMessage Content `json:"newMessage"`
	Streaming  bool    `json:"streaming"`
}

// createSessionRequest is the body of a session-creation request.
type createSessionRequest struct {
	State map[string]any `json:"state"`
}

// decodeEvent parses one streamed JSON record into an Event.
func decodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}
