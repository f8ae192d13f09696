package workflow

import (
	"context"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/google/uuid"
)

// ListItemsFilter narrows the item collection returned by the store.
type ListItemsFilter struct {
	// IncludeTerminal admits published and archived items; the board never
	// requests them.
	IncludeTerminal bool
	// Search is matched against title and id, case-insensitively.
	Search string
	// Locale narrows the listing to one locale. Items without a locale are
	// always included; empty means every locale.
	Locale string
	// AllLocales bypasses the dispatcher's default locale narrowing.
	AllLocales bool
	Limit      int
	Offset     int
}

// Store is the remote workflow store contract. Transport, retries, and
// encoding belong to the implementation; this package only assumes the call
// either succeeds with confirmed server state or fails without side effects
// visible to the caller.
type Store interface {
	ListItems(ctx context.Context, filter ListItemsFilter) ([]*ContentItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ContentItem, error)
	GetWorkflowState(ctx context.Context, id uuid.UUID) (*WorkflowState, error)
	SetStage(ctx context.Context, id uuid.UUID, stage domain.Stage, actor Actor) (*WorkflowState, error)
	SetLocked(ctx context.Context, id uuid.UUID, locked bool, actor Actor) (*WorkflowState, error)
	ListEvents(ctx context.Context, id uuid.UUID) ([]*WorkflowEvent, error)
	ListComments(ctx context.Context, id uuid.UUID) ([]*InternalComment, error)
	AddComment(ctx context.Context, id uuid.UUID, actor Actor, body string) error
	Publish(ctx context.Context, id uuid.UUID, channel domain.PublishChannel, actor Actor) error
}
