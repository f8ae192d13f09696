package store

import (
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ItemRecord persists the article projection the board lists.
type ItemRecord struct {
	bun.BaseModel `bun:"table:content_items,alias:ci"`

	ID             uuid.UUID  `bun:",pk,type:uuid"                                 json:"id"`
	Slug           string     `bun:"slug,notnull"                                  json:"slug"`
	Title          string     `bun:"title,notnull"                                 json:"title"`
	Locale         string     `bun:"locale"                                        json:"locale,omitempty"`
	Status         string     `bun:"status,notnull,default:'draft'"                json:"status"`
	AuthorID       uuid.UUID  `bun:"author_id,type:uuid"                           json:"author_id"`
	ScheduleAt     *time.Time `bun:"schedule_at,nullzero"                          json:"schedule_at,omitempty"`
	StageChangedAt *time.Time `bun:"stage_changed_at,nullzero"                     json:"stage_changed_at,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// StateRecord persists per-item workflow state. One row per item.
type StateRecord struct {
	bun.BaseModel `bun:"table:workflow_states,alias:ws"`

	ItemID         uuid.UUID  `bun:"item_id,pk,type:uuid"            json:"item_id"`
	Stage          string     `bun:"stage,notnull,default:'draft'"   json:"stage"`
	Locked         bool       `bun:"locked,notnull,default:false"    json:"locked"`
	StageUpdatedAt *time.Time `bun:"stage_updated_at,nullzero"       json:"stage_updated_at,omitempty"`
}

// EventRecord is the append-only audit trail written on every mutating action.
type EventRecord struct {
	bun.BaseModel `bun:"table:workflow_events,alias:we"`

	ID         uuid.UUID `bun:",pk,type:uuid"        json:"id"`
	ItemID     uuid.UUID `bun:"item_id,notnull,type:uuid" json:"item_id"`
	Action     string    `bun:"action,notnull"       json:"action"`
	ActorID    uuid.UUID `bun:"actor_id,type:uuid"   json:"actor_id"`
	ActorName  string    `bun:"actor_name"           json:"actor_name,omitempty"`
	ActorEmail string    `bun:"actor_email"          json:"actor_email,omitempty"`
	FromStage  *string   `bun:"from_stage"           json:"from_stage,omitempty"`
	ToStage    *string   `bun:"to_stage"             json:"to_stage,omitempty"`
	OccurredAt time.Time `bun:"occurred_at,nullzero,default:current_timestamp" json:"occurred_at"`
}

// CommentRecord is the append-only internal comment trail.
type CommentRecord struct {
	bun.BaseModel `bun:"table:workflow_comments,alias:wc"`

	ID         uuid.UUID `bun:",pk,type:uuid"        json:"id"`
	ItemID     uuid.UUID `bun:"item_id,notnull,type:uuid" json:"item_id"`
	ActorID    uuid.UUID `bun:"actor_id,type:uuid"   json:"actor_id"`
	ActorName  string    `bun:"actor_name"           json:"actor_name,omitempty"`
	ActorEmail string    `bun:"actor_email"          json:"actor_email,omitempty"`
	Body       string    `bun:"body,notnull"         json:"body"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

func (r *ItemRecord) toDomain() *workflow.ContentItem {
	if r == nil {
		return nil
	}
	return &workflow.ContentItem{
		ID:             r.ID,
		Slug:           r.Slug,
		Title:          r.Title,
		Locale:         r.Locale,
		Status:         domain.NormalizeStatus(r.Status),
		AuthorID:       r.AuthorID,
		ScheduleAt:     cloneTime(r.ScheduleAt),
		StageChangedAt: cloneTime(r.StageChangedAt),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (r *StateRecord) toDomain() *workflow.WorkflowState {
	if r == nil {
		return nil
	}
	stage, ok := domain.ParseStage(r.Stage)
	if !ok {
		stage = domain.StageDraft
	}
	return &workflow.WorkflowState{
		ItemID:         r.ItemID,
		Stage:          stage,
		Locked:         r.Locked,
		StageUpdatedAt: cloneTime(r.StageUpdatedAt),
	}
}

func (r *EventRecord) toDomain() *workflow.WorkflowEvent {
	if r == nil {
		return nil
	}
	event := &workflow.WorkflowEvent{
		ID:     r.ID,
		ItemID: r.ItemID,
		Action: r.Action,
		Actor: workflow.Actor{
			ID:    r.ActorID,
			Name:  r.ActorName,
			Email: r.ActorEmail,
		},
		OccurredAt: r.OccurredAt,
	}
	if r.FromStage != nil {
		if stage, ok := domain.ParseStage(*r.FromStage); ok {
			event.FromStage = &stage
		}
	}
	if r.ToStage != nil {
		if stage, ok := domain.ParseStage(*r.ToStage); ok {
			event.ToStage = &stage
		}
	}
	return event
}

func (r *CommentRecord) toDomain() *workflow.InternalComment {
	if r == nil {
		return nil
	}
	return &workflow.InternalComment{
		ID:     r.ID,
		ItemID: r.ItemID,
		Actor: workflow.Actor{
			ID:    r.ActorID,
			Name:  r.ActorName,
			Email: r.ActorEmail,
		},
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

func stageString(stage domain.Stage) *string {
	value := string(stage)
	return &value
}
