package stream

import (
	"strings"

	"github.com/aiprlassist/gavchat/internal/adk"
)

// Activity is one transient live-activity entry shown while a turn streams.
// Activities are not part of the final message; they exist only for the
// duration of the turn.
type Activity struct {
	Kind Kind
	// Name is the tool name for function call/response activities.
	Name string
}

// ToolCall is the tool-invocation metadata folded into the final message.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Result is the reduction of one complete turn.
type Result struct {
	// Text is the final reply text.
	Text string
	// Products are the structured products extracted from tool results.
	Products []Product
	// ToolCalls are the tools the agent invoked during the turn.
	ToolCalls []ToolCall
	// Events is the raw event sequence of the turn.
	Events []adk.Event
}

// Reducer folds a turn's event stream into a Result.
//
// Text and partial-text events REPLACE the current text buffer rather than
// appending to it: each partial chunk is a cumulative restatement of the
// whole reply so far, and treating chunks as deltas would duplicate text.
// The final (non-partial) text event is the candidate reply; absent one,
// the last partial stands in.
//
// Reducer is not safe for concurrent use; the stream delivers events in
// arrival order on one goroutine.
type Reducer struct {
	events     []adk.Event
	activities []Activity
	toolCalls  []ToolCall
	responses  []*adk.FunctionResponse

	// current is the latest text chunk, shown live while streaming.
	current string
	// final is the text of the last non-partial text event, if any.
	final string
}

// NewReducer creates an empty reducer for one turn.
func NewReducer() *Reducer {
	return &Reducer{}
}

// Feed folds one event into the reduction.
func (r *Reducer) Feed(ev adk.Event) {
	r.events = append(r.events, ev)

	switch Classify(ev) {
	case KindFunctionCall:
		for _, p := range ev.Content.Parts {
			if p.FunctionCall == nil {
				continue
			}
			r.activities = append(r.activities, Activity{Kind: KindFunctionCall, Name: p.FunctionCall.Name})
			r.toolCalls = append(r.toolCalls, ToolCall{
				ID:   p.FunctionCall.ID,
				Name: p.FunctionCall.Name,
				Args: p.FunctionCall.Args,
			})
		}
	case KindFunctionResponse:
		for _, p := range ev.Content.Parts {
			if p.FunctionResponse == nil {
				continue
			}
			r.activities = append(r.activities, Activity{Kind: KindFunctionResponse, Name: p.FunctionResponse.Name})
			r.responses = append(r.responses, p.FunctionResponse)
		}
	case KindText:
		text := ev.Text()
		r.current = text
		r.final = text
	case KindTextPartial:
		r.current = ev.Text()
	case KindThinking:
		// No displayable payload; nothing to fold.
	}
}

// Text returns the current streaming text buffer: only the latest chunk.
func (r *Reducer) Text() string {
	return r.current
}

// Activities returns the live-activity entries accumulated so far.
func (r *Reducer) Activities() []Activity {
	return r.activities
}

// Finalize completes the reduction.
//
// If the candidate reply is empty or the reserved pause sentinel, paused is
// true and the Result carries no text: a human agent has taken over and
// will reply asynchronously through the inbox channel.
func (r *Reducer) Finalize() (Result, bool) {
	text := r.final
	if text == "" {
		text = r.current
	}
	text = strings.TrimSpace(text)

	if text == "" || text == adk.PauseSentinel {
		return Result{Events: r.events}, true
	}

	return Result{
		Text:      text,
		Products:  extractProducts(r.responses),
		ToolCalls: r.toolCalls,
		Events:    r.events,
	}, false
}
