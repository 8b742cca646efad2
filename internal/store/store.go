// Package store provides the durable client-side state for gavchat: the
// persistent user identifier and the last negotiated session identifier.
// These are the only two values that survive restarts; a reset clears the
// session identifier but never the user identifier.
//
// Writes are last-writer-wins with no transaction. Storage failures degrade
// to "no stored value" rather than surfacing as errors, matching the widget
// contract: an unavailable store must never make the chat unusable.
package store

import (
	"encoding/json"
	"os"
	"sync"
)

// Store is the durable key store consumed by identity resolution and session
// negotiation.
type Store interface {
	// UserID returns the stored user identifier, or "" if none.
	UserID() string
	// SetUserID persists the user identifier.
	SetUserID(id string)
	// SessionID returns the stored session identifier, or "" if none.
	SessionID() string
	// SetSessionID persists the session identifier.
	SetSessionID(id string)
	// ClearSession removes the stored session identifier, keeping the user
	// identifier intact.
	ClearSession()
}

// state is the on-disk shape of the durable state file.
type state struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// FileStore persists state to a JSON file. It is safe for concurrent use.
type FileStore struct {
	mu     sync.Mutex
	path   string
	st     state
	loaded bool
}

// NewFileStore creates a store backed by the JSON file at path.
// The file is created lazily on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// load reads the state file once. Read errors leave the state empty.
func (f *FileStore) load() {
	if f.loaded {
		return
	}
	f.loaded = true

	data, err := os.ReadFile(f.path)
	if err != nil {
		return
	}
	// A corrupt file is treated the same as a missing one.
	_ = json.Unmarshal(data, &f.st)
}

// save writes the state file. Write errors are dropped; the in-memory copy
// still serves reads for the rest of this run.
func (f *FileStore) save() {
	data, err := json.MarshalIndent(f.st, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(f.path, data, 0600)
}

// UserID returns the stored user identifier.
func (f *FileStore) UserID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	return f.st.UserID
}

// SetUserID persists the user identifier.
func (f *FileStore) SetUserID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	f.st.UserID = id
	f.save()
}

// SessionID returns the stored session identifier.
func (f *FileStore) SessionID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	return f.st.SessionID
}

// SetSessionID persists the session identifier.
func (f *FileStore) SetSessionID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	f.st.SessionID = id
	f.save()
}

// ClearSession removes the stored session identifier.
func (f *FileStore) ClearSession() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	f.st.SessionID = ""
	f.save()
}

// MemStore is an in-memory Store, used in tests and for ephemeral runs
// where no durable directory is available.
type MemStore struct {
	mu sync.Mutex
	st state
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// UserID returns the stored user identifier.
func (m *MemStore) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.UserID
}

// SetUserID stores the user identifier.
func (m *MemStore) SetUserID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.UserID = id
}

// SessionID returns the stored session identifier.
func (m *MemStore) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.SessionID
}

// SetSessionID stores the session identifier.
func (m *MemStore) SetSessionID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.SessionID = id
}

// ClearSession removes the stored session identifier.
func (m *MemStore) ClearSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.SessionID = ""
}
