package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/google/uuid"
)

type stubStore struct {
	mu sync.Mutex

	listItemsFn    func(ctx context.Context, filter ListItemsFilter) ([]*ContentItem, error)
	getItemFn      func(ctx context.Context, id uuid.UUID) (*ContentItem, error)
	getStateFn     func(ctx context.Context, id uuid.UUID) (*WorkflowState, error)
	setStageFn     func(ctx context.Context, id uuid.UUID, stage domain.Stage, actor Actor) (*WorkflowState, error)
	setLockedFn    func(ctx context.Context, id uuid.UUID, locked bool, actor Actor) (*WorkflowState, error)
	listEventsFn   func(ctx context.Context, id uuid.UUID) ([]*WorkflowEvent, error)
	listCommentsFn func(ctx context.Context, id uuid.UUID) ([]*InternalComment, error)
	addCommentFn   func(ctx context.Context, id uuid.UUID, actor Actor, body string) error
	publishFn      func(ctx context.Context, id uuid.UUID, channel domain.PublishChannel, actor Actor) error

	setStageCalls   int
	setLockedCalls  int
	addCommentCalls int
	publishCalls    int
	listItemsCalls  int
}

func (s *stubStore) count(counter *int) {
	s.mu.Lock()
	*counter++
	s.mu.Unlock()
}

func (s *stubStore) calls(counter *int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *counter
}

func (s *stubStore) ListItems(ctx context.Context, filter ListItemsFilter) ([]*ContentItem, error) {
	s.count(&s.listItemsCalls)
	if s.listItemsFn != nil {
		return s.listItemsFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubStore) GetItem(ctx context.Context, id uuid.UUID) (*ContentItem, error) {
	if s.getItemFn != nil {
		return s.getItemFn(ctx, id)
	}
	return &ContentItem{ID: id, Title: "stub", Status: domain.StatusDraft}, nil
}

func (s *stubStore) GetWorkflowState(ctx context.Context, id uuid.UUID) (*WorkflowState, error) {
	if s.getStateFn != nil {
		return s.getStateFn(ctx, id)
	}
	return nil, ErrStateNotFound
}

func (s *stubStore) SetStage(ctx context.Context, id uuid.UUID, stage domain.Stage, actor Actor) (*WorkflowState, error) {
	s.count(&s.setStageCalls)
	if s.setStageFn != nil {
		return s.setStageFn(ctx, id, stage, actor)
	}
	now := time.Now()
	return &WorkflowState{ItemID: id, Stage: stage, StageUpdatedAt: &now}, nil
}

func (s *stubStore) SetLocked(ctx context.Context, id uuid.UUID, locked bool, actor Actor) (*WorkflowState, error) {
	s.count(&s.setLockedCalls)
	if s.setLockedFn != nil {
		return s.setLockedFn(ctx, id, locked, actor)
	}
	return &WorkflowState{ItemID: id, Stage: domain.StageDraft, Locked: locked}, nil
}

func (s *stubStore) ListEvents(ctx context.Context, id uuid.UUID) ([]*WorkflowEvent, error) {
	if s.listEventsFn != nil {
		return s.listEventsFn(ctx, id)
	}
	return nil, nil
}

func (s *stubStore) ListComments(ctx context.Context, id uuid.UUID) ([]*InternalComment, error) {
	if s.listCommentsFn != nil {
		return s.listCommentsFn(ctx, id)
	}
	return nil, nil
}

func (s *stubStore) AddComment(ctx context.Context, id uuid.UUID, actor Actor, body string) error {
	s.count(&s.addCommentCalls)
	if s.addCommentFn != nil {
		return s.addCommentFn(ctx, id, actor, body)
	}
	return nil
}

func (s *stubStore) Publish(ctx context.Context, id uuid.UUID, channel domain.PublishChannel, actor Actor) error {
	s.count(&s.publishCalls)
	if s.publishFn != nil {
		return s.publishFn(ctx, id, channel, actor)
	}
	return nil
}

func newTestService(t *testing.T, store Store, opts ...ServiceOption) *Service {
	t.Helper()
	service, err := NewService(store, opts...)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return service
}

func TestNewServiceRequiresStore(t *testing.T) {
	if _, err := NewService(nil); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func TestMoveStageAdoptsServerState(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	var gotActor Actor
	store := &stubStore{
		setStageFn: func(_ context.Context, itemID uuid.UUID, stage domain.Stage, actor Actor) (*WorkflowState, error) {
			gotActor = actor
			return &WorkflowState{ItemID: itemID, Stage: stage, StageUpdatedAt: &at}, nil
		},
	}
	service := newTestService(t, store)

	actor := Actor{ID: uuid.New(), Name: "Riley"}
	state, err := service.MoveStage(context.Background(), MoveStageRequest{
		ItemID: id,
		From:   domain.StageLegalReview,
		To:     domain.StageEditorApproval,
		Actor:  actor,
		Caps:   editorCaps,
	})
	if err != nil {
		t.Fatalf("MoveStage returned error: %v", err)
	}
	if gotActor.ID != actor.ID || gotActor.Name != "Riley" {
		t.Fatalf("expected actor forwarded to store, got %+v", gotActor)
	}
	if state.Stage != domain.StageEditorApproval {
		t.Fatalf("expected editor_approval, got %q", state.Stage)
	}

	cached, ok := service.State(id)
	if !ok {
		t.Fatal("expected confirmed state in cache")
	}
	if cached.Stage != domain.StageEditorApproval || !cached.StageUpdatedAt.Equal(at) {
		t.Fatalf("expected cache to hold the server-returned record, got %+v", cached)
	}
}

func TestMoveStageNeverAssumesRequestedStage(t *testing.T) {
	id := uuid.New()
	store := &stubStore{
		setStageFn: func(_ context.Context, itemID uuid.UUID, _ domain.Stage, _ Actor) (*WorkflowState, error) {
			// Server disagrees with the requested stage.
			return &WorkflowState{ItemID: itemID, Stage: domain.StageLegalReview}, nil
		},
	}
	service := newTestService(t, store)

	state, err := service.MoveStage(context.Background(), MoveStageRequest{
		ItemID: id,
		From:   domain.StageCopyEdit,
		To:     domain.StageLegalReview,
		Caps:   founderCaps,
	})
	if err != nil {
		t.Fatalf("MoveStage returned error: %v", err)
	}
	if state.Stage != domain.StageLegalReview {
		t.Fatalf("expected the server's stage, got %q", state.Stage)
	}
	cached, _ := service.State(id)
	if cached.Stage != domain.StageLegalReview {
		t.Fatalf("expected cached stage from server, got %q", cached.Stage)
	}
}

func TestMoveStageDeniedLocallyWithoutDispatch(t *testing.T) {
	store := &stubStore{}
	service := newTestService(t, store)

	_, err := service.MoveStage(context.Background(), MoveStageRequest{
		ItemID: uuid.New(),
		From:   domain.StageEditorApproval,
		To:     domain.StageFounderApproval,
		Caps:   editorCaps,
	})
	if !errors.Is(err, ErrTransitionDenied) {
		t.Fatalf("expected ErrTransitionDenied, got %v", err)
	}
	var denied *TransitionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected TransitionDeniedError, got %T", err)
	}
	if denied.Reason != ReasonFounderOnlyStage {
		t.Fatalf("expected reason %q, got %q", ReasonFounderOnlyStage, denied.Reason)
	}
	if store.calls(&store.setStageCalls) != 0 {
		t.Fatal("expected no store call for a locally denied move")
	}
}

func TestMoveStageLockedItem(t *testing.T) {
	id := uuid.New()
	store := &stubStore{}
	service := newTestService(t, store)
	service.Adopt(&WorkflowState{ItemID: id, Stage: domain.StageCopyEdit, Locked: true})

	_, err := service.MoveStage(context.Background(), MoveStageRequest{
		ItemID: id,
		From:   domain.StageCopyEdit,
		To:     domain.StageDraft,
		Caps:   staffCaps,
	})
	if !errors.Is(err, ErrItemLocked) {
		t.Fatalf("expected ErrItemLocked for staff, got %v", err)
	}

	_, err = service.MoveStage(context.Background(), MoveStageRequest{
		ItemID: id,
		From:   domain.StageCopyEdit,
		To:     domain.StageLegalReview,
		Caps:   editorCaps,
	})
	if !errors.Is(err, ErrItemLocked) {
		t.Fatalf("expected ErrItemLocked for editor, got %v", err)
	}
	if store.calls(&store.setStageCalls) != 0 {
		t.Fatal("expected no dispatch against a locked item")
	}

	if _, err := service.MoveStage(context.Background(), MoveStageRequest{
		ItemID: id,
		From:   domain.StageCopyEdit,
		To:     domain.StageLegalReview,
		Caps:   founderCaps,
	}); err != nil {
		t.Fatalf("expected founder to bypass the lock, got %v", err)
	}
	if store.calls(&store.setStageCalls) != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", store.calls(&store.setStageCalls))
	}
}

func TestMoveStageFailureLeavesCacheUntouched(t *testing.T) {
	id := uuid.New()
	boom := errors.New("backend down")
	store := &stubStore{
		setStageFn: func(context.Context, uuid.UUID, domain.Stage, Actor) (*WorkflowState, error) {
			return nil, boom
		},
	}
	service := newTestService(t, store)
	at := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	service.Adopt(&WorkflowState{ItemID: id, Stage: domain.StageDraft, StageUpdatedAt: &at})

	before, _ := service.State(id)
	_, err := service.MoveStage(context.Background(), MoveStageRequest{
		ItemID: id,
		From:   domain.StageDraft,
		To:     domain.StageCopyEdit,
		Caps:   founderCaps,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the store failure surfaced, got %v", err)
	}

	after, ok := service.State(id)
	if !ok {
		t.Fatal("expected state still cached")
	}
	if after.Stage != before.Stage || after.Locked != before.Locked || !after.StageUpdatedAt.Equal(*before.StageUpdatedAt) {
		t.Fatalf("expected cache identical after failure: before=%+v after=%+v", before, after)
	}
}

func TestMoveStageDuplicateInvocationIsNoOp(t *testing.T) {
	id := uuid.New()
	release := make(chan struct{})
	entered := make(chan struct{})
	var enteredOnce sync.Once
	store := &stubStore{
		setStageFn: func(_ context.Context, itemID uuid.UUID, stage domain.Stage, _ Actor) (*WorkflowState, error) {
			enteredOnce.Do(func() { close(entered) })
			<-release
			return &WorkflowState{ItemID: itemID, Stage: stage}, nil
		},
	}
	service := newTestService(t, store)

	req := MoveStageRequest{
		ItemID: id,
		From:   domain.StageDraft,
		To:     domain.StageCopyEdit,
		Caps:   founderCaps,
	}

	done := make(chan error, 1)
	go func() {
		_, err := service.MoveStage(context.Background(), req)
		done <- err
	}()
	<-entered

	if _, err := service.MoveStage(context.Background(), req); !errors.Is(err, ErrActionPending) {
		t.Fatalf("expected ErrActionPending for duplicate invocation, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("expected first invocation to succeed, got %v", err)
	}
	if store.calls(&store.setStageCalls) != 1 {
		t.Fatalf("expected a single dispatch, got %d", store.calls(&store.setStageCalls))
	}

	if _, err := service.MoveStage(context.Background(), MoveStageRequest{
		ItemID: id,
		From:   domain.StageCopyEdit,
		To:     domain.StageLegalReview,
		Caps:   founderCaps,
	}); err != nil {
		t.Fatalf("expected flag cleared after completion, got %v", err)
	}
}

func TestToggleLockRequiresFounder(t *testing.T) {
	store := &stubStore{}
	service := newTestService(t, store)

	_, err := service.ToggleLock(context.Background(), SetLockRequest{
		ItemID: uuid.New(),
		Locked: true,
		Caps:   editorCaps,
	})
	if !errors.Is(err, ErrFounderOnly) {
		t.Fatalf("expected ErrFounderOnly, got %v", err)
	}
	if store.calls(&store.setLockedCalls) != 0 {
		t.Fatal("expected no dispatch for non-founder lock toggle")
	}

	state, err := service.ToggleLock(context.Background(), SetLockRequest{
		ItemID: uuid.New(),
		Locked: true,
		Caps:   founderCaps,
	})
	if err != nil {
		t.Fatalf("ToggleLock returned error: %v", err)
	}
	if !state.Locked {
		t.Fatal("expected confirmed locked state")
	}
}

func TestAddCommentRejectsWhitespaceWithoutDispatch(t *testing.T) {
	store := &stubStore{}
	service := newTestService(t, store)

	err := service.AddComment(context.Background(), AddCommentRequest{
		ItemID: uuid.New(),
		Body:   "   \n\t ",
	})
	if !errors.Is(err, ErrEmptyComment) {
		t.Fatalf("expected ErrEmptyComment, got %v", err)
	}
	if store.calls(&store.addCommentCalls) != 0 {
		t.Fatal("expected no network call for a whitespace comment")
	}
}

func TestAddCommentDispatches(t *testing.T) {
	var gotBody string
	store := &stubStore{
		addCommentFn: func(_ context.Context, _ uuid.UUID, _ Actor, body string) error {
			gotBody = body
			return nil
		},
	}
	service := newTestService(t, store)

	if err := service.AddComment(context.Background(), AddCommentRequest{
		ItemID: uuid.New(),
		Actor:  Actor{ID: uuid.New(), Name: "Sam"},
		Body:   "needs a second source",
	}); err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	if gotBody != "needs a second source" {
		t.Fatalf("expected body forwarded verbatim, got %q", gotBody)
	}
}

func TestPublishRequiresFounderAndValidChannel(t *testing.T) {
	store := &stubStore{}
	service := newTestService(t, store)

	err := service.Publish(context.Background(), PublishRequest{
		ItemID:  uuid.New(),
		Channel: domain.ChannelSite,
		Caps:    editorCaps,
	})
	if !errors.Is(err, ErrFounderOnly) {
		t.Fatalf("expected ErrFounderOnly, got %v", err)
	}

	err = service.Publish(context.Background(), PublishRequest{
		ItemID:  uuid.New(),
		Channel: domain.PublishChannel("fax"),
		Caps:    founderCaps,
	})
	if !errors.Is(err, ErrChannelInvalid) {
		t.Fatalf("expected ErrChannelInvalid, got %v", err)
	}
	if store.calls(&store.publishCalls) != 0 {
		t.Fatal("expected no dispatch for rejected publish requests")
	}
}

func TestPublishRejectsDisabledChannel(t *testing.T) {
	store := &stubStore{}
	service := newTestService(t, store, WithPublishChannels(domain.ChannelSite))

	err := service.Publish(context.Background(), PublishRequest{
		ItemID:  uuid.New(),
		Channel: domain.ChannelNewsletter,
		Caps:    founderCaps,
	})
	if !errors.Is(err, ErrChannelNotAllowed) {
		t.Fatalf("expected ErrChannelNotAllowed, got %v", err)
	}
	if store.calls(&store.publishCalls) != 0 {
		t.Fatal("expected no dispatch for a disabled channel")
	}

	if err := service.Publish(context.Background(), PublishRequest{
		ItemID:  uuid.New(),
		Channel: domain.ChannelSite,
		Caps:    founderCaps,
	}); err != nil {
		t.Fatalf("expected the enabled channel to pass, got %v", err)
	}
}

func TestRefreshBoardAppliesDefaultLocale(t *testing.T) {
	var gotFilter ListItemsFilter
	store := &stubStore{
		listItemsFn: func(_ context.Context, filter ListItemsFilter) ([]*ContentItem, error) {
			gotFilter = filter
			return nil, nil
		},
	}
	service := newTestService(t, store, WithDefaultLocale("es"))

	if _, err := service.RefreshBoard(context.Background(), ListItemsFilter{}); err != nil {
		t.Fatalf("RefreshBoard returned error: %v", err)
	}
	if gotFilter.Locale != "es" {
		t.Fatalf("expected default locale applied, got %q", gotFilter.Locale)
	}

	if _, err := service.RefreshBoard(context.Background(), ListItemsFilter{Locale: "en"}); err != nil {
		t.Fatalf("RefreshBoard returned error: %v", err)
	}
	if gotFilter.Locale != "en" {
		t.Fatalf("expected explicit locale kept, got %q", gotFilter.Locale)
	}

	if _, err := service.RefreshBoard(context.Background(), ListItemsFilter{AllLocales: true}); err != nil {
		t.Fatalf("RefreshBoard returned error: %v", err)
	}
	if gotFilter.Locale != "" {
		t.Fatalf("expected AllLocales to skip the default, got %q", gotFilter.Locale)
	}
}

func TestSimplifiedBoardHonorsFounderQueueSetting(t *testing.T) {
	items := []EnrichedItem{
		enrichedAt(domain.StageDraft, "A"),
		enrichedAt(domain.StageFounderApproval, "B"),
		enrichedAt(domain.StageScheduled, "C"),
	}

	store := &stubStore{}
	service := newTestService(t, store, WithFounderQueueOnly(true))
	board := service.SimplifiedBoard(items, "")
	if len(board.NeedsReview) != 1 || board.NeedsReview[0].Item.Title != "B" {
		t.Fatalf("expected only the founder-approval item, got %+v", board.NeedsReview)
	}
	if len(board.Scheduled) != 1 {
		t.Fatalf("expected scheduled bucket intact, got %d", len(board.Scheduled))
	}

	wide := newTestService(t, store)
	if got := len(wide.SimplifiedBoard(items, "").NeedsReview); got != 2 {
		t.Fatalf("expected full needs-review bucket by default, got %d", got)
	}
}

func TestPublishDropsCachedStateAndClearsSelection(t *testing.T) {
	id := uuid.New()
	store := &stubStore{}
	timeline := NewTimeline(store)
	service := newTestService(t, store, WithTimeline(timeline))
	service.Adopt(&WorkflowState{ItemID: id, Stage: domain.StageScheduled})

	if _, err := timeline.Select(context.Background(), id); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}

	if err := service.Publish(context.Background(), PublishRequest{
		ItemID:  id,
		Channel: domain.ChannelNewsletter,
		Caps:    founderCaps,
	}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if _, ok := service.State(id); ok {
		t.Fatal("expected cached state dropped after publish")
	}
	if _, selected := timeline.Selected(); selected {
		t.Fatal("expected inspector selection cleared")
	}
}

func TestPublishLeavesOtherSelectionAlone(t *testing.T) {
	published := uuid.New()
	inspected := uuid.New()
	store := &stubStore{}
	timeline := NewTimeline(store)
	service := newTestService(t, store, WithTimeline(timeline))

	if _, err := timeline.Select(context.Background(), inspected); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if err := service.Publish(context.Background(), PublishRequest{
		ItemID:  published,
		Channel: domain.ChannelSite,
		Caps:    founderCaps,
	}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if selected, ok := timeline.Selected(); !ok || selected != inspected {
		t.Fatal("expected unrelated selection preserved")
	}
}

func TestNotImplementedDisablesMutations(t *testing.T) {
	store := &stubStore{
		setStageFn: func(context.Context, uuid.UUID, domain.Stage, Actor) (*WorkflowState, error) {
			return nil, ErrNotImplemented
		},
	}
	service := newTestService(t, store)

	_, err := service.MoveStage(context.Background(), MoveStageRequest{
		ItemID: uuid.New(),
		From:   domain.StageDraft,
		To:     domain.StageCopyEdit,
		Caps:   founderCaps,
	})
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented surfaced, got %v", err)
	}
	if service.Available() {
		t.Fatal("expected mutations disabled after not-implemented response")
	}

	_, err = service.ToggleLock(context.Background(), SetLockRequest{
		ItemID: uuid.New(),
		Locked: true,
		Caps:   founderCaps,
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on later mutation, got %v", err)
	}
	if store.calls(&store.setLockedCalls) != 0 {
		t.Fatal("expected no dispatch once unavailable")
	}
}

func TestRefreshBoardGuardsConcurrentRefresh(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var enteredOnce sync.Once
	store := &stubStore{
		listItemsFn: func(context.Context, ListItemsFilter) ([]*ContentItem, error) {
			enteredOnce.Do(func() { close(entered) })
			<-release
			return nil, nil
		},
	}
	service := newTestService(t, store)

	done := make(chan error, 1)
	go func() {
		_, err := service.RefreshBoard(context.Background(), ListItemsFilter{})
		done <- err
	}()
	<-entered

	if _, err := service.RefreshBoard(context.Background(), ListItemsFilter{}); !errors.Is(err, ErrRefreshPending) {
		t.Fatalf("expected ErrRefreshPending, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("expected first refresh to succeed, got %v", err)
	}
	if _, err := service.RefreshBoard(context.Background(), ListItemsFilter{}); err != nil {
		t.Fatalf("expected guard cleared after completion, got %v", err)
	}
}

func TestEnrichDerivesStageAndStaleness(t *testing.T) {
	id := uuid.New()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-80 * time.Hour)
	store := &stubStore{}
	service := newTestService(t, store, WithClock(func() time.Time { return now }))
	service.Adopt(&WorkflowState{ItemID: id, Stage: domain.StageLegalReview, StageUpdatedAt: &stale})

	enriched := service.Enrich([]*ContentItem{
		{ID: id, Title: "Leak investigation", Status: domain.StatusDraft, UpdatedAt: now},
		nil,
	})
	if len(enriched) != 1 {
		t.Fatalf("expected nil items skipped, got %d", len(enriched))
	}
	if enriched[0].Stage != domain.StageLegalReview {
		t.Fatalf("expected cached state to drive derivation, got %q", enriched[0].Stage)
	}
	if !enriched[0].SLA.Stuck {
		t.Fatal("expected 80h in legal review flagged stale")
	}
}
