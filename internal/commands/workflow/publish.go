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

const publishMessageType = "newsroom.workflow.publish"

// PublishCommand pushes an item out of the pipeline through a channel.
type PublishCommand struct {
	ItemID  uuid.UUID           `json:"item_id"`
	Channel string              `json:"channel"`
	Actor   workflow.Actor      `json:"actor"`
	Role    string              `json:"role"`
	Caps    domain.Capabilities `json:"-"`
}

// Type implements command.Message.
func (PublishCommand) Type() string { return publishMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m PublishCommand) Validate() error {
	errs := validation.Errors{}
	if m.ItemID == uuid.Nil {
		errs["item_id"] = validation.NewError("newsroom.workflow.publish.item_id_required", "item_id is required")
	}
	if _, ok := domain.ParsePublishChannel(m.Channel); !ok {
		errs["channel"] = validation.NewError("newsroom.workflow.publish.channel_invalid", "channel must be site, broadcast, or newsletter")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PublishHandler publishes items via the workflow service.
type PublishHandler struct {
	inner *commands.Handler[PublishCommand]
}

// NewPublishHandler constructs a handler wired to the provided workflow service.
func NewPublishHandler(service *workflow.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishCommand]) *PublishHandler {
	exec := func(ctx context.Context, msg PublishCommand) error {
		caps := msg.Caps
		if msg.Role != "" {
			caps = domain.ResolveRole(msg.Role)
		}
		channel, _ := domain.ParsePublishChannel(msg.Channel)
		return service.Publish(ctx, workflow.PublishRequest{
			ItemID:  msg.ItemID,
			Channel: channel,
			Actor:   msg.Actor,
			Caps:    caps,
		})
	}

	handlerOpts := []commands.HandlerOption[PublishCommand]{
		commands.WithLogger[PublishCommand](logger),
		commands.WithOperation[PublishCommand]("workflow.publish"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishHandler{
		inner: commands.NewHandler[PublishCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishCommand].Execute.
func (h *PublishHandler) Execute(ctx context.Context, msg PublishCommand) error {
	return h.inner.Execute(ctx, msg)
}
