package newsroom

import (
	"time"

	"github.com/goliatone/go-newsroom/internal/commands"
	workflowcmd "github.com/goliatone/go-newsroom/internal/commands/workflow"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
)

// Command messages and handlers re-exported so hosts can dispatch editorial
// actions through the command layer without reaching into internal packages.
type (
	MoveStageCommand  = workflowcmd.MoveStageCommand
	SetLockCommand    = workflowcmd.SetLockCommand
	AddCommentCommand = workflowcmd.AddCommentCommand
	PublishCommand    = workflowcmd.PublishCommand

	MoveStageHandler  = workflowcmd.MoveStageHandler
	SetLockHandler    = workflowcmd.SetLockHandler
	AddCommentHandler = workflowcmd.AddCommentHandler
	PublishHandler    = workflowcmd.PublishHandler
)

// Commands groups the wired message handlers for the editorial actions.
type Commands struct {
	MoveStage  *MoveStageHandler
	SetLock    *SetLockHandler
	AddComment *AddCommentHandler
	Publish    *PublishHandler
}

func newCommands(service *workflow.Service, provider interfaces.LoggerProvider, timeout time.Duration) *Commands {
	logger := logging.CommandsLogger(provider)

	var moveOpts []commands.HandlerOption[MoveStageCommand]
	var lockOpts []commands.HandlerOption[SetLockCommand]
	var commentOpts []commands.HandlerOption[AddCommentCommand]
	var publishOpts []commands.HandlerOption[PublishCommand]
	if timeout > 0 {
		moveOpts = append(moveOpts, commands.WithTimeout[MoveStageCommand](timeout))
		lockOpts = append(lockOpts, commands.WithTimeout[SetLockCommand](timeout))
		commentOpts = append(commentOpts, commands.WithTimeout[AddCommentCommand](timeout))
		publishOpts = append(publishOpts, commands.WithTimeout[PublishCommand](timeout))
	}

	return &Commands{
		MoveStage:  workflowcmd.NewMoveStageHandler(service, logger, moveOpts...),
		SetLock:    workflowcmd.NewSetLockHandler(service, logger, lockOpts...),
		AddComment: workflowcmd.NewAddCommentHandler(service, logger, commentOpts...),
		Publish:    workflowcmd.NewPublishHandler(service, logger, publishOpts...),
	}
}
