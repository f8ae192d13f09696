package workflowcmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-newsroom/internal/commands"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

const moveStageMessageType = "newsroom.workflow.move_stage"

// MoveStageCommand requests a pipeline stage change for an item.
type MoveStageCommand struct {
	ItemID uuid.UUID           `json:"item_id"`
	From   domain.Stage        `json:"from"`
	To     domain.Stage        `json:"to"`
	Actor  workflow.Actor      `json:"actor"`
	Role   string              `json:"role"`
	Caps   domain.Capabilities `json:"-"`
}

// Type implements command.Message.
func (MoveStageCommand) Type() string { return moveStageMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m MoveStageCommand) Validate() error {
	errs := validation.Errors{}
	if m.ItemID == uuid.Nil {
		errs["item_id"] = validation.NewError("newsroom.workflow.move_stage.item_id_required", "item_id is required")
	}
	if !domain.IsPipelineStage(m.From) {
		errs["from"] = validation.NewError("newsroom.workflow.move_stage.from_invalid", "from must be a pipeline stage")
	}
	if !domain.IsPipelineStage(m.To) {
		errs["to"] = validation.NewError("newsroom.workflow.move_stage.to_invalid", "to must be a pipeline stage")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MoveStageHandler dispatches stage moves via the workflow service using the
// shared command handler foundation.
type MoveStageHandler struct {
	inner *commands.Handler[MoveStageCommand]
}

// NewMoveStageHandler constructs a handler wired to the provided workflow service.
func NewMoveStageHandler(service *workflow.Service, logger interfaces.Logger, opts ...commands.HandlerOption[MoveStageCommand]) *MoveStageHandler {
	exec := func(ctx context.Context, msg MoveStageCommand) error {
		caps := msg.Caps
		if msg.Role != "" {
			caps = domain.ResolveRole(msg.Role)
		}
		_, err := service.MoveStage(ctx, workflow.MoveStageRequest{
			ItemID: msg.ItemID,
			From:   msg.From,
			To:     msg.To,
			Actor:  msg.Actor,
			Caps:   caps,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[MoveStageCommand]{
		commands.WithLogger[MoveStageCommand](logger),
		commands.WithOperation[MoveStageCommand]("workflow.move_stage"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MoveStageHandler{
		inner: commands.NewHandler[MoveStageCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[MoveStageCommand].Execute.
func (h *MoveStageHandler) Execute(ctx context.Context, msg MoveStageCommand) error {
	return h.inner.Execute(ctx, msg)
}
