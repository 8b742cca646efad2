// Package identity derives the stable user identifier for a chat client.
//
// An authenticated email always wins and produces the same identifier on
// every device (a deterministic hash), so a visitor who starts anonymously
// and later logs in "claims" their authenticated identity. Without an email
// the previously stored identifier is reused, and only if neither exists is
// a fresh random identifier minted and persisted.
package identity

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"github.com/aiprlassist/gavchat/internal/store"
)

// prefix is prepended to every derived identifier.
const prefix = "user_"

// Resolve returns the user identifier for this client, persisting it in st.
//
// Resolution order:
//  1. email present: deterministic hash of the email; the stored identifier
//     is overwritten every call so the authenticated identity takes over.
//  2. a stored identifier exists: returned unchanged.
//  3. otherwise: a new random identifier is minted and persisted.
//
// There is no error path. If the store is unavailable it behaves as "no
// stored id" and a fresh identifier is minted each run.
func Resolve(st store.Store, email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email != "" {
		id := prefix + hashEmail(email)
		st.SetUserID(id)
		return id
	}

	if id := st.UserID(); id != "" {
		return id
	}

	id := prefix + uuid.NewString()
	st.SetUserID(id)
	return id
}

// hashEmail computes a deterministic, platform-stable hash of the email.
// Same email always yields the same identifier, across devices and runs.
func hashEmail(email string) string {
	h := fnv.New32a()
	// Write never fails for hash.Hash implementations.
	_, _ = h.Write([]byte(email))
	return fmt.Sprintf("%08x", h.Sum32())
}
