package workflow

import (
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/google/uuid"
)

// Actor identifies the person performing a workflow action.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

// ContentItem is the read-only projection of an article owned by the external
// repository. The workflow engine never mutates it directly; items change only
// through workflow actions persisted by the store.
type ContentItem struct {
	ID        uuid.UUID     `json:"id"`
	Slug      string        `json:"slug"`
	Title     string        `json:"title"`
	Locale    string        `json:"locale,omitempty"`
	Status    domain.Status `json:"status"`
	AuthorID  uuid.UUID     `json:"author_id"`
	// ScheduleAt carries the repository-owned publish schedule, when set.
	ScheduleAt *time.Time `json:"schedule_at,omitempty"`
	// StageChangedAt is an embedded workflow timestamp some repository payloads
	// carry; it participates in the SLA fallback chain.
	StageChangedAt *time.Time `json:"stage_changed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// WorkflowState is the per-item record owned by the remote workflow store.
type WorkflowState struct {
	ItemID         uuid.UUID    `json:"item_id"`
	Stage          domain.Stage `json:"stage"`
	Locked         bool         `json:"locked"`
	StageUpdatedAt *time.Time   `json:"stage_updated_at,omitempty"`
}

// Clone returns a deep copy so cached records never alias caller memory.
func (s *WorkflowState) Clone() *WorkflowState {
	if s == nil {
		return nil
	}
	copied := *s
	if s.StageUpdatedAt != nil {
		at := *s.StageUpdatedAt
		copied.StageUpdatedAt = &at
	}
	return &copied
}

// WorkflowEvent is one append-only audit entry produced by the store on every
// mutating action.
type WorkflowEvent struct {
	ID         uuid.UUID     `json:"id"`
	ItemID     uuid.UUID     `json:"item_id"`
	Action     string        `json:"action"`
	Actor      Actor         `json:"actor"`
	FromStage  *domain.Stage `json:"from_stage,omitempty"`
	ToStage    *domain.Stage `json:"to_stage,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// InternalComment is a free-text note attached to an item. Comments are only
// ever created through the comment action, never edited or deleted here.
type InternalComment struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	Actor     Actor     `json:"actor"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrichedItem pairs a repository item with its derived stage and staleness
// annotation for board projection and inspection.
type EnrichedItem struct {
	Item  *ContentItem
	State *WorkflowState
	Stage domain.Stage
	SLA   SLAStatus
}
