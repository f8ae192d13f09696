package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

// ErrStoreRequired indicates the service was constructed without a store.
var ErrStoreRequired = errors.New("workflow: store required")

type actionKind string

const (
	actionMoveStage actionKind = "move_stage"
	actionSetLock   actionKind = "set_lock"
	actionComment   actionKind = "comment"
	actionPublish   actionKind = "publish"
)

type busyKey struct {
	item   uuid.UUID
	action actionKind
}

// Service dispatches workflow actions against the remote store. Local state is
// confirm-after-success: the cache is written only with server-returned
// records, so a failed call leaves it exactly as it was. Per item and action
// kind at most one mutating call is in flight; duplicates are no-ops.
type Service struct {
	store        Store
	cache        *StateCache
	sla          SLAPolicy
	timeline     *Timeline
	logger       interfaces.Logger
	now          func() time.Time
	channels     map[domain.PublishChannel]struct{}
	founderQueue bool
	locale       string

	mu          sync.Mutex
	busy        map[busyKey]struct{}
	refreshing  bool
	unavailable bool
}

// ServiceOption configures the dispatcher.
type ServiceOption func(*Service)

// WithSLAPolicy overrides the default staleness thresholds.
func WithSLAPolicy(policy SLAPolicy) ServiceOption {
	return func(s *Service) {
		s.sla = policy
	}
}

// WithTimeline wires the inspector aggregator so successful mutations refresh
// its supplements and publish clears the selection.
func WithTimeline(timeline *Timeline) ServiceOption {
	return func(s *Service) {
		s.timeline = timeline
	}
}

// WithLogger injects the module logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for stage derivation and SLA evaluation
// (primarily for testing).
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithPublishChannels restricts the channels Publish accepts. Without the
// option every known channel is enabled.
func WithPublishChannels(channels ...domain.PublishChannel) ServiceOption {
	return func(s *Service) {
		if len(channels) == 0 {
			return
		}
		allowed := make(map[domain.PublishChannel]struct{}, len(channels))
		for _, channel := range channels {
			if parsed, ok := domain.ParsePublishChannel(string(channel)); ok {
				allowed[parsed] = struct{}{}
			}
		}
		s.channels = allowed
	}
}

// WithFounderQueueOnly narrows the simplified board to founder-approval items.
func WithFounderQueueOnly(enabled bool) ServiceOption {
	return func(s *Service) {
		s.founderQueue = enabled
	}
}

// WithDefaultLocale sets the locale applied to board listings that do not ask
// for one explicitly.
func WithDefaultLocale(locale string) ServiceOption {
	return func(s *Service) {
		s.locale = strings.TrimSpace(locale)
	}
}

// NewService constructs the dispatcher.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	service := &Service{
		store:  store,
		cache:  NewStateCache(),
		sla:    DefaultSLAPolicy(),
		logger: logging.NoOp(),
		now:    time.Now,
		busy:   make(map[busyKey]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(service)
		}
	}
	return service, nil
}

// Available reports whether workflow mutations are still enabled. It flips to
// false permanently after the store signals a not-implemented endpoint.
func (s *Service) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.unavailable
}

// State returns the cached workflow state for an item, if fetched.
func (s *Service) State(id uuid.UUID) (*WorkflowState, bool) {
	return s.cache.Get(id)
}

// Adopt satisfies StateSink: it writes server-confirmed state fetched during
// inspection through the single cache writer path.
func (s *Service) Adopt(state *WorkflowState) {
	s.cache.Put(state)
}

// MoveStageRequest captures a stage move on behalf of an actor.
type MoveStageRequest struct {
	ItemID uuid.UUID
	From   domain.Stage
	To     domain.Stage
	Actor  Actor
	Caps   domain.Capabilities
}

// MoveStage re-checks legality and the lock condition immediately before
// dispatch, persists the move, and adopts the server-returned state. The
// requested stage is never assumed applied verbatim.
func (s *Service) MoveStage(ctx context.Context, req MoveStageRequest) (*WorkflowState, error) {
	if !s.begin(req.ItemID, actionMoveStage) {
		return nil, ErrActionPending
	}
	defer s.end(req.ItemID, actionMoveStage)

	if !s.Available() {
		return nil, ErrUnavailable
	}

	if decision := CanMove(req.Caps, req.From, req.To); !decision.OK {
		s.logger.Debug("workflow.move_stage.denied",
			"item_id", req.ItemID.String(),
			"from", string(req.From),
			"to", string(req.To),
			"reason", decision.Reason,
		)
		return nil, &TransitionDeniedError{ItemID: req.ItemID, Reason: decision.Reason}
	}

	if state, ok := s.cache.Get(req.ItemID); ok && state.Locked && !req.Caps.Founder {
		return nil, ErrItemLocked
	}

	confirmed, err := s.store.SetStage(ctx, req.ItemID, req.To, req.Actor)
	if err != nil {
		return nil, s.dispatchError("move_stage", req.ItemID, err)
	}

	s.cache.Put(confirmed)
	s.logger.Info("workflow.move_stage.applied",
		"item_id", req.ItemID.String(),
		"from", string(req.From),
		"to", string(confirmed.Stage),
		"actor", req.Actor.ID.String(),
	)
	s.refreshInspected(ctx, req.ItemID)
	return confirmed.Clone(), nil
}

// SetLockRequest captures a lock toggle.
type SetLockRequest struct {
	ItemID uuid.UUID
	Locked bool
	Actor  Actor
	Caps   domain.Capabilities
}

// ToggleLock sets or clears the item lock. Founder capability is required.
func (s *Service) ToggleLock(ctx context.Context, req SetLockRequest) (*WorkflowState, error) {
	if !req.Caps.Founder {
		return nil, ErrFounderOnly
	}
	if !s.begin(req.ItemID, actionSetLock) {
		return nil, ErrActionPending
	}
	defer s.end(req.ItemID, actionSetLock)

	if !s.Available() {
		return nil, ErrUnavailable
	}

	confirmed, err := s.store.SetLocked(ctx, req.ItemID, req.Locked, req.Actor)
	if err != nil {
		return nil, s.dispatchError("set_lock", req.ItemID, err)
	}

	s.cache.Put(confirmed)
	s.logger.Info("workflow.set_lock.applied",
		"item_id", req.ItemID.String(),
		"locked", confirmed.Locked,
		"actor", req.Actor.ID.String(),
	)
	s.refreshInspected(ctx, req.ItemID)
	return confirmed.Clone(), nil
}

// AddCommentRequest captures an internal comment submission.
type AddCommentRequest struct {
	ItemID uuid.UUID
	Actor  Actor
	Body   string
}

// AddComment posts an internal comment. Whitespace-only text is rejected
// locally without a network call.
func (s *Service) AddComment(ctx context.Context, req AddCommentRequest) error {
	if strings.TrimSpace(req.Body) == "" {
		return ErrEmptyComment
	}
	if !s.begin(req.ItemID, actionComment) {
		return ErrActionPending
	}
	defer s.end(req.ItemID, actionComment)

	if err := s.store.AddComment(ctx, req.ItemID, req.Actor, req.Body); err != nil {
		s.logger.Warn("workflow.comment.failed", "item_id", req.ItemID.String(), "error", err)
		return err
	}
	s.refreshInspected(ctx, req.ItemID)
	return nil
}

// PublishRequest captures a publish action.
type PublishRequest struct {
	ItemID  uuid.UUID
	Channel domain.PublishChannel
	Actor   Actor
	Caps    domain.Capabilities
}

// Publish pushes the item out of the pipeline through the given channel.
// Founder capability is required. On success the cached state is dropped (the
// next derivation classifies the item off the board once the repository status
// changes upstream) and the inspector selection is cleared when it pointed at
// the published item.
func (s *Service) Publish(ctx context.Context, req PublishRequest) error {
	if !req.Caps.Founder {
		return ErrFounderOnly
	}
	channel, ok := domain.ParsePublishChannel(string(req.Channel))
	if !ok {
		return ErrChannelInvalid
	}
	if len(s.channels) > 0 {
		if _, enabled := s.channels[channel]; !enabled {
			return ErrChannelNotAllowed
		}
	}
	if !s.begin(req.ItemID, actionPublish) {
		return ErrActionPending
	}
	defer s.end(req.ItemID, actionPublish)

	if !s.Available() {
		return ErrUnavailable
	}

	if err := s.store.Publish(ctx, req.ItemID, req.Channel, req.Actor); err != nil {
		return s.dispatchError("publish", req.ItemID, err)
	}

	s.cache.Remove(req.ItemID)
	s.logger.Info("workflow.publish.applied",
		"item_id", req.ItemID.String(),
		"channel", string(req.Channel),
		"actor", req.Actor.ID.String(),
	)
	if s.timeline != nil {
		if selected, ok := s.timeline.Selected(); ok && selected == req.ItemID {
			s.timeline.ClearSelection()
		}
	}
	return nil
}

// RefreshBoard fetches the item collection and annotates every entry with its
// derived stage and staleness. Listings that do not name a locale use the
// configured default. A refresh that is already in flight causes the second
// request to be ignored rather than queued.
func (s *Service) RefreshBoard(ctx context.Context, filter ListItemsFilter) ([]EnrichedItem, error) {
	if filter.Locale == "" && !filter.AllLocales {
		filter.Locale = s.locale
	}

	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		return nil, ErrRefreshPending
	}
	s.refreshing = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	items, err := s.store.ListItems(ctx, filter)
	if err != nil {
		s.logger.Error("workflow.board.refresh_failed", "error", err)
		return nil, err
	}
	return s.Enrich(items), nil
}

// SimplifiedBoard projects the enriched collection into the two-bucket view,
// honouring the configured founder queue narrowing.
func (s *Service) SimplifiedBoard(items []EnrichedItem, query string) SimplifiedBoard {
	return ProjectSimplified(items, query, s.founderQueue)
}

// Enrich derives stage and SLA status for each item against the local cache.
func (s *Service) Enrich(items []*ContentItem) []EnrichedItem {
	now := s.now()
	enriched := make([]EnrichedItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		state, _ := s.cache.Get(item.ID)
		stage := DeriveStage(item, state, now)
		enriched = append(enriched, EnrichedItem{
			Item:  item,
			State: state,
			Stage: stage,
			SLA:   s.sla.Evaluate(item, state, stage, now),
		})
	}
	return enriched
}

func (s *Service) refreshInspected(ctx context.Context, id uuid.UUID) {
	if s.timeline == nil {
		return
	}
	if selected, ok := s.timeline.Selected(); !ok || selected != id {
		return
	}
	s.timeline.RefreshSupplements(ctx, id)
}

// dispatchError maps store failures onto the local taxonomy. A not-implemented
// endpoint disables further mutations; every other failure passes through as a
// one-shot notice with the cache untouched.
func (s *Service) dispatchError(action string, id uuid.UUID, err error) error {
	if errors.Is(err, ErrNotImplemented) {
		s.mu.Lock()
		s.unavailable = true
		s.mu.Unlock()
		s.logger.Error("workflow.actions_unavailable",
			"action", action,
			"item_id", id.String(),
			"error", err,
		)
		return err
	}
	s.logger.Warn("workflow.dispatch_failed",
		"action", action,
		"item_id", id.String(),
		"error", err,
	)
	return err
}

func (s *Service) begin(id uuid.UUID, action actionKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := busyKey{item: id, action: action}
	if _, pending := s.busy[key]; pending {
		return false
	}
	s.busy[key] = struct{}{}
	return true
}

func (s *Service) end(id uuid.UUID, action actionKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, busyKey{item: id, action: action})
}
