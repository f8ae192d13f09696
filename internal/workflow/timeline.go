package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

// CommentRenderer converts raw comment markdown into display HTML.
type CommentRenderer interface {
	Render(body string) (string, error)
}

// StateSink receives server-confirmed workflow state fetched during
// inspection. The dispatcher implements it so the cache keeps a single
// writer path.
type StateSink interface {
	Adopt(state *WorkflowState)
}

// CommentView pairs a comment with its rendered body.
type CommentView struct {
	Comment  *InternalComment
	BodyHTML string
}

// Inspection is the read model for the currently selected item: full detail,
// event history, and comments. Events and comments are supplementary; their
// fetch failures degrade to empty lists and are flagged rather than failing
// the view.
type Inspection struct {
	Item             *ContentItem
	State            *WorkflowState
	Events           []*WorkflowEvent
	Comments         []*CommentView
	EventsDegraded   bool
	CommentsDegraded bool
}

// Timeline aggregates item detail, events, and comments for the inspector.
// Responses that arrive after the selection has moved on are dropped.
type Timeline struct {
	store  Store
	render CommentRenderer
	states StateSink
	logger interfaces.Logger

	mu        sync.Mutex
	selection uuid.UUID
	token     uint64
	view      *Inspection
}

// TimelineOption configures the aggregator.
type TimelineOption func(*Timeline)

// WithCommentRenderer overrides the markdown renderer used for comment bodies.
func WithCommentRenderer(renderer CommentRenderer) TimelineOption {
	return func(t *Timeline) {
		if renderer != nil {
			t.render = renderer
		}
	}
}

// WithoutCommentRendering disables markdown rendering; comment views carry
// raw bodies only.
func WithoutCommentRendering() TimelineOption {
	return func(t *Timeline) {
		t.render = nil
	}
}

// WithStateSink wires the cache writer that adopts state fetched on selection.
func WithStateSink(sink StateSink) TimelineOption {
	return func(t *Timeline) {
		t.states = sink
	}
}

// WithTimelineLogger injects the module logger.
func WithTimelineLogger(logger interfaces.Logger) TimelineOption {
	return func(t *Timeline) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTimeline constructs the aggregator.
func NewTimeline(store Store, opts ...TimelineOption) *Timeline {
	timeline := &Timeline{
		store:  store,
		render: NewMarkdownRenderer(),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(timeline)
		}
	}
	return timeline
}

// AttachSink wires the state sink after construction. The dispatcher consumes
// the timeline and the timeline feeds the dispatcher's cache, so one side has
// to be bound late.
func (t *Timeline) AttachSink(sink StateSink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states = sink
}

// Selected returns the id of the currently inspected item, if any.
func (t *Timeline) Selected() (uuid.UUID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selection, t.selection != uuid.Nil
}

// Current returns the last completed inspection view.
func (t *Timeline) Current() *Inspection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// ClearSelection drops the active selection and its view. In-flight fetches
// for the cleared item are discarded when they land.
func (t *Timeline) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection = uuid.Nil
	t.view = nil
	t.token++
}

// Select makes the item the active selection and fetches full detail, event
// history, and comments in parallel. Event and comment failures degrade to
// empty lists; a missing item fails the view. When another Select or
// ClearSelection happens while the fetches are in flight, the late result is
// dropped and ErrSelectionSuperseded is returned.
func (t *Timeline) Select(ctx context.Context, id uuid.UUID) (*Inspection, error) {
	t.mu.Lock()
	t.selection = id
	t.token++
	token := t.token
	t.mu.Unlock()

	var (
		wg       sync.WaitGroup
		item     *ContentItem
		itemErr  error
		state    *WorkflowState
		events   []*WorkflowEvent
		eventErr error
		comments []*InternalComment
		commErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		item, itemErr = t.store.GetItem(ctx, id)
		if itemErr != nil {
			return
		}
		fetched, err := t.store.GetWorkflowState(ctx, id)
		if err != nil && !errors.Is(err, ErrStateNotFound) {
			t.logger.Warn("timeline.state.fetch_failed", "item_id", id.String(), "error", err)
			return
		}
		state = fetched
	}()
	go func() {
		defer wg.Done()
		events, eventErr = t.store.ListEvents(ctx, id)
	}()
	go func() {
		defer wg.Done()
		comments, commErr = t.store.ListComments(ctx, id)
	}()
	wg.Wait()

	if itemErr != nil {
		t.logger.Error("timeline.item.fetch_failed", "item_id", id.String(), "error", itemErr)
		return nil, itemErr
	}

	view := &Inspection{
		Item:  item,
		State: state,
	}
	if eventErr != nil {
		t.logger.Warn("timeline.events.fetch_failed", "item_id", id.String(), "error", eventErr)
		view.EventsDegraded = true
	} else {
		view.Events = events
	}
	if commErr != nil {
		t.logger.Warn("timeline.comments.fetch_failed", "item_id", id.String(), "error", commErr)
		view.CommentsDegraded = true
	} else {
		view.Comments = t.renderComments(comments)
	}

	t.mu.Lock()
	if t.token != token || t.selection != id {
		t.mu.Unlock()
		return nil, ErrSelectionSuperseded
	}
	t.view = view
	t.mu.Unlock()

	if state != nil && t.states != nil {
		t.states.Adopt(state)
	}
	return view, nil
}

// RefreshSupplements refetches events and comments for the item when it is
// still the active selection. Item detail is left as-is. Failures degrade the
// respective list instead of erroring.
func (t *Timeline) RefreshSupplements(ctx context.Context, id uuid.UUID) {
	t.mu.Lock()
	if t.selection != id || t.view == nil {
		t.mu.Unlock()
		return
	}
	token := t.token
	t.mu.Unlock()

	events, eventErr := t.store.ListEvents(ctx, id)
	comments, commErr := t.store.ListComments(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.token != token || t.selection != id || t.view == nil {
		return
	}
	if eventErr != nil {
		t.logger.Warn("timeline.events.refresh_failed", "item_id", id.String(), "error", eventErr)
		t.view.EventsDegraded = true
	} else {
		t.view.Events = events
		t.view.EventsDegraded = false
	}
	if commErr != nil {
		t.logger.Warn("timeline.comments.refresh_failed", "item_id", id.String(), "error", commErr)
		t.view.CommentsDegraded = true
	} else {
		t.view.Comments = t.renderComments(comments)
		t.view.CommentsDegraded = false
	}
}

func (t *Timeline) renderComments(comments []*InternalComment) []*CommentView {
	if comments == nil {
		return nil
	}
	views := make([]*CommentView, 0, len(comments))
	for _, comment := range comments {
		view := &CommentView{Comment: comment}
		if t.render != nil {
			html, err := t.render.Render(comment.Body)
			if err != nil {
				t.logger.Warn("timeline.comment.render_failed", "comment_id", comment.ID.String(), "error", err)
			} else {
				view.BodyHTML = html
			}
		}
		views = append(views, view)
	}
	return views
}
