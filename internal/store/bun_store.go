package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/identity"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Event action labels written to the audit trail.
const (
	ActionStageMove    = "stage.move"
	ActionLockSet      = "lock.set"
	ActionLockCleared  = "lock.cleared"
	ActionCommentAdded = "comment.added"
	ActionPublished    = "published"
)

// BunStore is the bun-backed reference implementation of the workflow store
// contract. It persists items, per-item state, and the append-only event and
// comment trails, and stamps stage_updated_at on every stage change.
type BunStore struct {
	db     *bun.DB
	items  repository.Repository[*ItemRecord]
	states repository.Repository[*StateRecord]
	logger interfaces.Logger
	now    func() time.Time
}

// BunStoreOption configures the store.
type BunStoreOption func(*BunStore)

// WithStoreLogger injects the module logger.
func WithStoreLogger(logger interfaces.Logger) BunStoreOption {
	return func(s *BunStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreClock overrides the clock used for event and stage timestamps
// (primarily for testing).
func WithStoreClock(clock func() time.Time) BunStoreOption {
	return func(s *BunStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewBunStore constructs the store without repository caching.
func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	return NewBunStoreWithCache(db, nil, nil, opts...)
}

// NewBunStoreWithCache constructs the store with optional read-through caching
// on the item repository.
func NewBunStoreWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...BunStoreOption) *BunStore {
	store := &BunStore{
		db:     db,
		items:  wrapWithCache(NewItemRepository(db), cacheService, keySerializer),
		states: NewStateRepository(db),
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

var _ workflow.Store = (*BunStore)(nil)

// ListItems returns the item collection ordered by most recent update.
// Terminal statuses are excluded unless the filter asks for them.
func (s *BunStore) ListItems(ctx context.Context, filter workflow.ListItemsFilter) ([]*workflow.ContentItem, error) {
	records := []*ItemRecord{}
	query := s.db.NewSelect().Model(&records).Order("updated_at DESC")

	if !filter.IncludeTerminal {
		query = query.Where("ci.status NOT IN (?)", bun.In([]string{
			string(domain.StatusPublished),
			string(domain.StatusArchived),
		}))
	}
	if locale := strings.ToLower(strings.TrimSpace(filter.Locale)); locale != "" {
		query = query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(ci.locale) = ?", locale).
				WhereOr("ci.locale IS NULL").
				WhereOr("ci.locale = ''")
		})
	}
	if needle := strings.ToLower(strings.TrimSpace(filter.Search)); needle != "" {
		pattern := "%" + needle + "%"
		query = query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(ci.title) LIKE ?", pattern).
				WhereOr("LOWER(CAST(ci.id AS TEXT)) LIKE ?", pattern)
		})
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("store: list items: %w", err)
	}

	items := make([]*workflow.ContentItem, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDomain())
	}
	return items, nil
}

// GetItem fetches the full item by id.
func (s *BunStore) GetItem(ctx context.Context, id uuid.UUID) (*workflow.ContentItem, error) {
	record, err := s.items.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapNotFound(err, workflow.ErrItemNotFound, id)
	}
	return record.toDomain(), nil
}

// GetWorkflowState returns the item's workflow state, or ErrStateNotFound for
// items that never entered the pipeline explicitly.
func (s *BunStore) GetWorkflowState(ctx context.Context, id uuid.UUID) (*workflow.WorkflowState, error) {
	record, err := s.states.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapNotFound(err, workflow.ErrStateNotFound, id)
	}
	return record.toDomain(), nil
}

// SetStage persists the target stage, stamps stage_updated_at, appends the
// audit event naming the actor, and returns the resulting state.
func (s *BunStore) SetStage(ctx context.Context, id uuid.UUID, stage domain.Stage, actor workflow.Actor) (*workflow.WorkflowState, error) {
	if !domain.IsPipelineStage(stage) {
		return nil, workflow.ErrStageInvalid
	}

	current, err := s.loadOrDefaultState(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fromStage := current.Stage
	record := &StateRecord{
		ItemID:         id,
		Stage:          string(stage),
		Locked:         current.Locked,
		StageUpdatedAt: &now,
	}
	if err := s.upsertState(ctx, record); err != nil {
		return nil, fmt.Errorf("store: set stage: %w", err)
	}

	s.appendEvent(ctx, &EventRecord{
		ItemID:     id,
		Action:     ActionStageMove,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		FromStage:  stageString(fromStage),
		ToStage:    stageString(stage),
		OccurredAt: now,
	})

	return record.toDomain(), nil
}

// SetLocked persists the lock flag and appends the audit event naming the actor.
func (s *BunStore) SetLocked(ctx context.Context, id uuid.UUID, locked bool, actor workflow.Actor) (*workflow.WorkflowState, error) {
	current, err := s.loadOrDefaultState(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record := &StateRecord{
		ItemID:         id,
		Stage:          string(current.Stage),
		Locked:         locked,
		StageUpdatedAt: current.StageUpdatedAt,
	}
	if err := s.upsertState(ctx, record); err != nil {
		return nil, fmt.Errorf("store: set locked: %w", err)
	}

	action := ActionLockSet
	if !locked {
		action = ActionLockCleared
	}
	s.appendEvent(ctx, &EventRecord{
		ItemID:     id,
		Action:     action,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		OccurredAt: now,
	})

	return record.toDomain(), nil
}

// ListEvents returns the item's audit trail, newest first.
func (s *BunStore) ListEvents(ctx context.Context, id uuid.UUID) ([]*workflow.WorkflowEvent, error) {
	records := []*EventRecord{}
	err := s.db.NewSelect().
		Model(&records).
		Where("we.item_id = ?", id).
		Order("occurred_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list events: %w", err)
	}

	events := make([]*workflow.WorkflowEvent, 0, len(records))
	for _, record := range records {
		events = append(events, record.toDomain())
	}
	return events, nil
}

// ListComments returns the item's comments, newest first.
func (s *BunStore) ListComments(ctx context.Context, id uuid.UUID) ([]*workflow.InternalComment, error) {
	records := []*CommentRecord{}
	err := s.db.NewSelect().
		Model(&records).
		Where("wc.item_id = ?", id).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list comments: %w", err)
	}

	comments := make([]*workflow.InternalComment, 0, len(records))
	for _, record := range records {
		comments = append(comments, record.toDomain())
	}
	return comments, nil
}

// AddComment appends a comment with a deterministic identity derived from the
// item id and the comment's sequence position.
func (s *BunStore) AddComment(ctx context.Context, id uuid.UUID, actor workflow.Actor, body string) error {
	seq, err := s.db.NewSelect().
		Model((*CommentRecord)(nil)).
		Where("wc.item_id = ?", id).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("store: add comment: %w", err)
	}

	now := s.now()
	record := &CommentRecord{
		ID:         identity.CommentUUID(id, int64(seq)+1),
		ItemID:     id,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		Body:       body,
		CreatedAt:  now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return fmt.Errorf("store: add comment: %w", err)
	}

	s.appendEvent(ctx, &EventRecord{
		ItemID:     id,
		Action:     ActionCommentAdded,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		OccurredAt: now,
	})
	return nil
}

// Publish marks the item published on the requested channel. The item record
// leaves the board on the next listing pass via its terminal status.
func (s *BunStore) Publish(ctx context.Context, id uuid.UUID, channel domain.PublishChannel, actor workflow.Actor) error {
	if _, ok := domain.ParsePublishChannel(string(channel)); !ok {
		return workflow.ErrChannelInvalid
	}

	now := s.now()
	result, err := s.db.NewUpdate().
		Model((*ItemRecord)(nil)).
		Set("status = ?", string(domain.StatusPublished)).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store: publish: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return workflow.ErrItemNotFound
	}

	state := &StateRecord{
		ItemID:         id,
		Stage:          string(domain.StagePublished),
		StageUpdatedAt: &now,
	}
	if current, err := s.loadOrDefaultState(ctx, id); err == nil {
		state.Locked = current.Locked
	}
	if err := s.upsertState(ctx, state); err != nil {
		return fmt.Errorf("store: publish: %w", err)
	}

	s.appendEvent(ctx, &EventRecord{
		ItemID:     id,
		Action:     ActionPublished + ":" + string(channel),
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		OccurredAt: now,
	})
	return nil
}

func (s *BunStore) loadOrDefaultState(ctx context.Context, id uuid.UUID) (*workflow.WorkflowState, error) {
	state, err := s.GetWorkflowState(ctx, id)
	if err == nil {
		return state, nil
	}
	if errors.Is(err, workflow.ErrStateNotFound) {
		return &workflow.WorkflowState{ItemID: id, Stage: domain.StageDraft}, nil
	}
	return nil, err
}

func (s *BunStore) upsertState(ctx context.Context, record *StateRecord) error {
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (item_id) DO UPDATE").
		Set("stage = EXCLUDED.stage").
		Set("locked = EXCLUDED.locked").
		Set("stage_updated_at = EXCLUDED.stage_updated_at").
		Exec(ctx)
	return err
}

// appendEvent assigns the deterministic event identity and inserts the record.
// Audit failures are logged, not surfaced: the mutating action already
// succeeded and the trail is supplementary.
func (s *BunStore) appendEvent(ctx context.Context, record *EventRecord) {
	seq, err := s.db.NewSelect().
		Model((*EventRecord)(nil)).
		Where("we.item_id = ?", record.ItemID).
		Count(ctx)
	if err != nil {
		s.logger.Warn("store.event.append_failed", "item_id", record.ItemID.String(), "error", err)
		return
	}
	record.ID = identity.EventUUID(record.ItemID, int64(seq)+1)
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		s.logger.Warn("store.event.append_failed", "item_id", record.ItemID.String(), "error", err)
	}
}

func mapNotFound(err error, sentinel error, id uuid.UUID) error {
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return fmt.Errorf("%w: %s", sentinel, id.String())
	}
	return fmt.Errorf("store: %w", err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
