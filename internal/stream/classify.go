// Package stream reduces the incremental event stream of one chat turn into
// a single display message plus transient live-activity entries. It is pure:
// no I/O, no clocks, so reduction behavior can be tested independently of
// network timing.
package stream

import "github.com/aiprlassist/gavchat/internal/adk"

// Kind classifies one streamed event for display purposes.
type Kind string

const (
	// KindFunctionCall is a tool invocation.
	KindFunctionCall Kind = "function_call"
	// KindFunctionResponse is a tool result.
	KindFunctionResponse Kind = "function_response"
	// KindText is a complete text payload.
	KindText Kind = "text"
	// KindTextPartial is an in-progress text chunk. Chunks are cumulative
	// restatements, not deltas.
	KindTextPartial Kind = "text_partial"
	// KindThinking is an event with no displayable payload.
	KindThinking Kind = "thinking"
)

// Classify determines the display kind of one event.
//
// Precedence within a single payload: function call beats function response
// beats non-empty text; anything else is "thinking".
func Classify(ev adk.Event) Kind {
	if ev.Content != nil {
		for _, p := range ev.Content.Parts {
			if p.FunctionCall != nil {
				return KindFunctionCall
			}
		}
		for _, p := range ev.Content.Parts {
			if p.FunctionResponse != nil {
				return KindFunctionResponse
			}
		}
	}
	if ev.Text() != "" {
		if ev.Partial {
			return KindTextPartial
		}
		return KindText
	}
	return KindThinking
}
