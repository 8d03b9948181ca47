package models

import (
	"encoding/json"
	"time"
)

// DocumentKind tells a published document's shape apart
type DocumentKind string

const (
	KindTeam     DocumentKind = "team"
	KindTierList DocumentKind = "tier-list"
)

// Valid reports whether k is a known document kind
func (k DocumentKind) Valid() bool {
	return k == KindTeam || k == KindTierList
}

// PublishedDocument is a shared team or tier list
type PublishedDocument struct {
	ID        string          `json:"id"`
	Kind      DocumentKind    `json:"kind"`
	Name      string          `json:"name"`
	Author    string          `json:"author"`
	ShareCode string          `json:"share_code"`
	Body      json.RawMessage `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DocumentSummary is a lightweight version for listings
type DocumentSummary struct {
	ID        string       `json:"id"`
	Kind      DocumentKind `json:"kind"`
	Name      string       `json:"name"`
	Author    string       `json:"author"`
	ShareCode string       `json:"share_code"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// DocumentCreate is the payload for publishing a document
type DocumentCreate struct {
	Kind   DocumentKind    `json:"kind"`
	Name   string          `json:"name"`
	Author string          `json:"author"`
	Body   json.RawMessage `json:"body"`
}

// DocumentUpdate is the payload for republishing a document
type DocumentUpdate struct {
	Name   *string         `json:"name,omitempty"`
	Author *string         `json:"author,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
}
