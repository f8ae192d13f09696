package workflow

import (
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
)

// DeriveStage maps an item's persisted fields to one canonical pipeline stage.
//
// An explicit stage on fetched workflow state always wins. Otherwise the stage
// is inferred from the raw status, where a "scheduled" status or a schedule
// timestamp in the future both resolve to StageScheduled. A terminal status is
// checked first so a published item with a lingering schedule timestamp stays
// off the board. The function is pure: identical inputs yield the identical
// stage regardless of call order.
func DeriveStage(item *ContentItem, state *WorkflowState, now time.Time) domain.Stage {
	if state != nil {
		if stage, ok := domain.ParseStage(string(state.Stage)); ok {
			return stage
		}
	}
	if item == nil {
		return domain.StageDraft
	}
	status := domain.NormalizeStatus(string(item.Status))
	if status == domain.StatusPublished || status == domain.StatusArchived {
		return domain.StageFromStatus(status)
	}
	if item.ScheduleAt != nil && item.ScheduleAt.After(now) {
		return domain.StageScheduled
	}
	return domain.StageFromStatus(item.Status)
}

// OnBoard reports whether the derived stage places an item on the review board.
func OnBoard(stage domain.Stage) bool {
	return domain.IsPipelineStage(stage)
}
