package models

import (
	"encoding/json"
	"time"
)

// EntityKind names a cached-entity partition.
type EntityKind string

const (
	EntityBusiness EntityKind = "business"
	EntityService  EntityKind = "service"
	EntityProduct  EntityKind = "product"
)

// CachedEntity is a local snapshot of a directory entity, kept so the UI
// can render while offline. Snapshots share the storage substrate with
// queued actions but carry no relational invariants against them.
type CachedEntity struct {
	EntityID string          `json:"entityId"`
	Kind     EntityKind      `json:"kind"`
	Data     json.RawMessage `json:"data"`
	CachedAt time.Time       `json:"cachedAt"`
}
