// Package drafts persists in-progress builder state so a session can be
// resumed. Writes are best effort: a failing store never blocks editing.
package drafts

import (
	"context"
)

//go:generate mockgen -destination=mock/mock_store.go -package=draftsmock -source=store.go Store

// Kind names a builder whose drafts are stored
type Kind string

const (
	KindTeam     Kind = "team-builder-draft"
	KindTierList Kind = "tier-list-builder-draft"
)

// Key scopes a builder's draft key to one session
func Key(kind Kind, sessionID string) string {
	return string(kind) + ":" + sessionID
}

// Store loads and saves serialized drafts by key. Load returns a NotFound
// error when no draft exists.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
