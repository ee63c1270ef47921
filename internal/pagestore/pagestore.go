// Package pagestore publishes pages to a Confluence-style content API.
package pagestore

import "context"

// PageRef identifies an existing page and its current version.
type PageRef struct {
	ID      string
	Version int
}

// UpsertRequest describes the desired state of one page.
type UpsertRequest struct {
	Title    string
	Body     string // wiki markup
	Space    string
	ParentID string // empty for a top-level page
}

// Action is the path an upsert took.
type Action string

const (
	ActionCreated           Action = "created"
	ActionUpdated           Action = "updated"
	ActionConflictUpdated   Action = "conflict_updated"
	ActionConflictRecreated Action = "conflict_recreated"
)

type UpsertResult struct {
	ID      string
	Version int
	Action  Action
}

// PageStore finds pages by title and writes them idempotently.
type PageStore interface {
	// Find reports the page with title in space. Lookup failures are logged and reported as not found.
	Find(ctx context.Context, title, space string) (*PageRef, bool)
	// Upsert creates or updates the page titled req.Title, resolving one version conflict by re-fetching.
	Upsert(ctx context.Context, req UpsertRequest) (*UpsertResult, error)
}
