package inbox

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestListenerDeliversMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/inbox/listen/sess-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("user_id"); got != "user_1" {
			t.Errorf("user_id = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"new_message\",\"content\":\"Hi, Sam here\",\"author\":\"Sam\",\"timestamp\":\"2026-01-15T10:30:00Z\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"ai_status_changed\",\"ai_paused\":true,\"message\":\"An agent joined the chat\"}\n\n")
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "data: {\"type\":\"totally_unknown\"}\n\n")
		fmt.Fprint(w, "data: junk that is not json\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	}))
	defer server.Close()

	messages := make(chan string, 1)
	statuses := make(chan bool, 1)

	l := NewListener(server.URL, WithReconnectInterval(10*time.Millisecond))
	defer l.Close()

	l.Listen("sess-1", "user_1", Callbacks{
		OnMessage: func(content, author string, timestamp time.Time) {
			if author != "Sam" {
				t.Errorf("author = %q", author)
			}
			if timestamp.UTC().Hour() != 10 {
				t.Errorf("timestamp = %v, want parsed wire value", timestamp)
			}
			messages <- content
		},
		OnStatusChanged: func(paused bool, statusText string) {
			if statusText != "An agent joined the chat" {
				t.Errorf("statusText = %q", statusText)
			}
			statuses <- paused
		},
	})

	select {
	case got := <-messages:
		if got != "Hi, Sam here" {
			t.Errorf("content = %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	select {
	case paused := <-statuses:
		if !paused {
			t.Error("paused = false, want true")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status change")
	}
}

func TestListenerReconnects(t *testing.T) {
	var connects atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connects.Add(1)
		if n < 3 {
			// Drop the first connections immediately.
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"new_message\",\"content\":\"finally\"}\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	}))
	defer server.Close()

	delivered := make(chan string, 1)
	l := NewListener(server.URL, WithReconnectInterval(10*time.Millisecond))
	defer l.Close()

	l.Listen("sess-1", "user_1", Callbacks{
		OnMessage: func(content, _ string, _ time.Time) {
			select {
			case delivered <- content:
			default:
			}
		},
	})

	select {
	case got := <-delivered:
		if got != "finally" {
			t.Errorf("content = %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not reconnect")
	}
	if n := connects.Load(); n < 3 {
		t.Errorf("connects = %d, want at least 3", n)
	}
}

func TestListenerCloseStopsReconnecting(t *testing.T) {
	var connects atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connects.Add(1)
	}))
	defer server.Close()

	l := NewListener(server.URL, WithReconnectInterval(10*time.Millisecond))
	l.Listen("sess-1", "user_1", Callbacks{})

	time.Sleep(50 * time.Millisecond)
	l.Close()
	settled := connects.Load()

	time.Sleep(100 * time.Millisecond)
	if after := connects.Load(); after > settled+1 {
		t.Errorf("listener kept reconnecting after Close: %d then %d", settled, after)
	}
}

func TestListenerListenReplacesSubscription(t *testing.T) {
	sessions := make(chan string, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessions <- r.URL.Path
		w.Header().Set("Content-Type", "text/event-stream")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	}))
	defer server.Close()

	l := NewListener(server.URL, WithReconnectInterval(10*time.Millisecond))
	defer l.Close()

	l.Listen("old", "user_1", Callbacks{})
	select {
	case <-sessions:
	case <-time.After(2 * time.Second):
		t.Fatal("first subscription never connected")
	}

	l.Listen("new", "user_1", Callbacks{})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case path := <-sessions:
			if path == "/api/inbox/listen/new" {
				return
			}
		case <-deadline:
			t.Fatal("second subscription never connected")
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	if got := parseTimestamp("2026-01-15T10:30:00Z"); got.UTC().Minute() != 30 {
		t.Errorf("parsed = %v", got)
	}
	before := time.Now()
	if got := parseTimestamp("yesterday-ish"); got.Before(before) {
		t.Errorf("malformed timestamp should fall back to now, got %v", got)
	}
	if got := parseTimestamp(""); got.Before(before) {
		t.Errorf("empty timestamp should fall back to now, got %v", got)
	}
}
