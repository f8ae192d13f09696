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

const setLockMessageType = "newsroom.workflow.set_lock"

// SetLockCommand requests the item lock be set or cleared.
type SetLockCommand struct {
	ItemID uuid.UUID           `json:"item_id"`
	Locked bool                `json:"locked"`
	Actor  workflow.Actor      `json:"actor"`
	Role   string              `json:"role"`
	Caps   domain.Capabilities `json:"-"`
}

// Type implements command.Message.
func (SetLockCommand) Type() string { return setLockMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m SetLockCommand) Validate() error {
	errs := validation.Errors{}
	if m.ItemID == uuid.Nil {
		errs["item_id"] = validation.NewError("newsroom.workflow.set_lock.item_id_required", "item_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetLockHandler toggles the item lock via the workflow service.
type SetLockHandler struct {
	inner *commands.Handler[SetLockCommand]
}

// NewSetLockHandler constructs a handler wired to the provided workflow service.
func NewSetLockHandler(service *workflow.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SetLockCommand]) *SetLockHandler {
	exec := func(ctx context.Context, msg SetLockCommand) error {
		caps := msg.Caps
		if msg.Role != "" {
			caps = domain.ResolveRole(msg.Role)
		}
		_, err := service.ToggleLock(ctx, workflow.SetLockRequest{
			ItemID: msg.ItemID,
			Locked: msg.Locked,
			Actor:  msg.Actor,
			Caps:   caps,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[SetLockCommand]{
		commands.WithLogger[SetLockCommand](logger),
		commands.WithOperation[SetLockCommand]("workflow.set_lock"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SetLockHandler{
		inner: commands.NewHandler[SetLockCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SetLockCommand].Execute.
func (h *SetLockHandler) Execute(ctx context.Context, msg SetLockCommand) error {
	return h.inner.Execute(ctx, msg)
}
