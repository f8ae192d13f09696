package workflowcmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-newsroom/internal/commands"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

const addCommentMessageType = "newsroom.workflow.add_comment"

// AddCommentCommand posts an internal comment on an item.
type AddCommentCommand struct {
	ItemID uuid.UUID      `json:"item_id"`
	Actor  workflow.Actor `json:"actor"`
	Body   string         `json:"body"`
}

// Type implements command.Message.
func (AddCommentCommand) Type() string { return addCommentMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m AddCommentCommand) Validate() error {
	errs := validation.Errors{}
	if m.ItemID == uuid.Nil {
		errs["item_id"] = validation.NewError("newsroom.workflow.add_comment.item_id_required", "item_id is required")
	}
	if strings.TrimSpace(m.Body) == "" {
		errs["body"] = validation.NewError("newsroom.workflow.add_comment.body_required", "body cannot be empty")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AddCommentHandler posts comments via the workflow service.
type AddCommentHandler struct {
	inner *commands.Handler[AddCommentCommand]
}

// NewAddCommentHandler constructs a handler wired to the provided workflow service.
func NewAddCommentHandler(service *workflow.Service, logger interfaces.Logger, opts ...commands.HandlerOption[AddCommentCommand]) *AddCommentHandler {
	exec := func(ctx context.Context, msg AddCommentCommand) error {
		return service.AddComment(ctx, workflow.AddCommentRequest{
			ItemID: msg.ItemID,
			Actor:  msg.Actor,
			Body:   msg.Body,
		})
	}

	handlerOpts := []commands.HandlerOption[AddCommentCommand]{
		commands.WithLogger[AddCommentCommand](logger),
		commands.WithOperation[AddCommentCommand]("workflow.add_comment"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &AddCommentHandler{
		inner: commands.NewHandler[AddCommentCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[AddCommentCommand].Execute.
func (h *AddCommentHandler) Execute(ctx context.Context, msg AddCommentCommand) error {
	return h.inner.Execute(ctx, msg)
}
