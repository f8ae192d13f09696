package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/identity"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory workflow store for scaffolding and tests. It
// mirrors the bun store's semantics: stage changes stamp stage_updated_at,
// every mutation appends an audit event, publish flips the item status.
type MemoryStore struct {
	mu       sync.RWMutex
	items    map[uuid.UUID]*workflow.ContentItem
	states   map[uuid.UUID]*workflow.WorkflowState
	events   map[uuid.UUID][]*workflow.WorkflowEvent
	comments map[uuid.UUID][]*workflow.InternalComment
	now      func() time.Time
}

// MemoryStoreOption configures the store.
type MemoryStoreOption func(*MemoryStore)

// WithMemoryClock overrides the clock (primarily for testing).
func WithMemoryClock(clock func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	store := &MemoryStore{
		items:    make(map[uuid.UUID]*workflow.ContentItem),
		states:   make(map[uuid.UUID]*workflow.WorkflowState),
		events:   make(map[uuid.UUID][]*workflow.WorkflowEvent),
		comments: make(map[uuid.UUID][]*workflow.InternalComment),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

var _ workflow.Store = (*MemoryStore)(nil)

// SeedItem inserts or replaces an item.
func (s *MemoryStore) SeedItem(item *workflow.ContentItem) {
	if item == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *item
	s.items[item.ID] = &copied
}

// SeedState inserts or replaces workflow state for an item.
func (s *MemoryStore) SeedState(state *workflow.WorkflowState) {
	if state == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.ItemID] = state.Clone()
}

// ListItems returns seeded items ordered by most recent update.
func (s *MemoryStore) ListItems(_ context.Context, filter workflow.ListItemsFilter) ([]*workflow.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	locale := strings.ToLower(strings.TrimSpace(filter.Locale))
	items := make([]*workflow.ContentItem, 0, len(s.items))
	for _, item := range s.items {
		if !filter.IncludeTerminal && isTerminalStatus(item.Status) {
			continue
		}
		if locale != "" && item.Locale != "" && strings.ToLower(item.Locale) != locale {
			continue
		}
		if needle != "" {
			title := strings.ToLower(item.Title)
			id := strings.ToLower(item.ID.String())
			if !strings.Contains(title, needle) && !strings.Contains(id, needle) {
				continue
			}
		}
		copied := *item
		items = append(items, &copied)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return nil, nil
		}
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(items) {
		items = items[:filter.Limit]
	}
	return items, nil
}

// GetItem fetches the full item by id.
func (s *MemoryStore) GetItem(_ context.Context, id uuid.UUID) (*workflow.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", workflow.ErrItemNotFound, id.String())
	}
	copied := *item
	return &copied, nil
}

// GetWorkflowState returns the item's workflow state when present.
func (s *MemoryStore) GetWorkflowState(_ context.Context, id uuid.UUID) (*workflow.WorkflowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", workflow.ErrStateNotFound, id.String())
	}
	return state.Clone(), nil
}

// SetStage persists the target stage and appends the audit event naming the actor.
func (s *MemoryStore) SetStage(_ context.Context, id uuid.UUID, stage domain.Stage, actor workflow.Actor) (*workflow.WorkflowState, error) {
	if !domain.IsPipelineStage(stage) {
		return nil, workflow.ErrStageInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	current := s.states[id]
	state := &workflow.WorkflowState{ItemID: id, Stage: domain.StageDraft}
	if current != nil {
		state = current.Clone()
	}
	fromStage := state.Stage
	state.Stage = stage
	state.StageUpdatedAt = &now
	s.states[id] = state

	s.appendEventLocked(&workflow.WorkflowEvent{
		ItemID:     id,
		Action:     ActionStageMove,
		Actor:      actor,
		FromStage:  &fromStage,
		ToStage:    &stage,
		OccurredAt: now,
	})
	return state.Clone(), nil
}

// SetLocked persists the lock flag and appends the audit event naming the actor.
func (s *MemoryStore) SetLocked(_ context.Context, id uuid.UUID, locked bool, actor workflow.Actor) (*workflow.WorkflowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	current := s.states[id]
	state := &workflow.WorkflowState{ItemID: id, Stage: domain.StageDraft}
	if current != nil {
		state = current.Clone()
	}
	state.Locked = locked
	s.states[id] = state

	action := ActionLockSet
	if !locked {
		action = ActionLockCleared
	}
	s.appendEventLocked(&workflow.WorkflowEvent{
		ItemID:     id,
		Action:     action,
		Actor:      actor,
		OccurredAt: now,
	})
	return state.Clone(), nil
}

// ListEvents returns the item's audit trail, newest first.
func (s *MemoryStore) ListEvents(_ context.Context, id uuid.UUID) ([]*workflow.WorkflowEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.events[id]
	out := make([]*workflow.WorkflowEvent, len(events))
	for i, event := range events {
		copied := *event
		// newest first
		out[len(events)-1-i] = &copied
	}
	return out, nil
}

// ListComments returns the item's comments, newest first.
func (s *MemoryStore) ListComments(_ context.Context, id uuid.UUID) ([]*workflow.InternalComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := s.comments[id]
	out := make([]*workflow.InternalComment, len(comments))
	for i, comment := range comments {
		copied := *comment
		out[len(comments)-1-i] = &copied
	}
	return out, nil
}

// AddComment appends a comment and its audit event.
func (s *MemoryStore) AddComment(_ context.Context, id uuid.UUID, actor workflow.Actor, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	seq := int64(len(s.comments[id])) + 1
	s.comments[id] = append(s.comments[id], &workflow.InternalComment{
		ID:        identity.CommentUUID(id, seq),
		ItemID:    id,
		Actor:     actor,
		Body:      body,
		CreatedAt: now,
	})
	s.appendEventLocked(&workflow.WorkflowEvent{
		ItemID:     id,
		Action:     ActionCommentAdded,
		Actor:      actor,
		OccurredAt: now,
	})
	return nil
}

// Publish flips the item status to published and appends the audit event.
func (s *MemoryStore) Publish(_ context.Context, id uuid.UUID, channel domain.PublishChannel, actor workflow.Actor) error {
	if _, ok := domain.ParsePublishChannel(string(channel)); !ok {
		return workflow.ErrChannelInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", workflow.ErrItemNotFound, id.String())
	}

	now := s.now()
	item.Status = domain.StatusPublished
	item.UpdatedAt = now

	state := s.states[id]
	if state == nil {
		state = &workflow.WorkflowState{ItemID: id}
	}
	state.Stage = domain.StagePublished
	state.StageUpdatedAt = &now
	s.states[id] = state

	s.appendEventLocked(&workflow.WorkflowEvent{
		ItemID:     id,
		Action:     ActionPublished + ":" + string(channel),
		Actor:      actor,
		OccurredAt: now,
	})
	return nil
}

func (s *MemoryStore) appendEventLocked(event *workflow.WorkflowEvent) {
	seq := int64(len(s.events[event.ItemID])) + 1
	event.ID = identity.EventUUID(event.ItemID, seq)
	s.events[event.ItemID] = append(s.events[event.ItemID], event)
}

func isTerminalStatus(status domain.Status) bool {
	switch domain.NormalizeStatus(string(status)) {
	case domain.StatusPublished, domain.StatusArchived:
		return true
	}
	return false
}
