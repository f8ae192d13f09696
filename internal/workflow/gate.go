package workflow

import "github.com/goliatone/go-newsroom/internal/domain"

// Rejection reasons surfaced by the legality gate. They are part of the
// contract: callers match on them when rendering notices.
const (
	ReasonStaffScope       = "staff scope"
	ReasonFounderOnlyStage = "founder-only stage"
	ReasonUnknownStage     = "unknown stage"
)

// Decision is the outcome of a legality check.
type Decision struct {
	OK     bool
	Reason string
}

func allow() Decision {
	return Decision{OK: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// staffScope is the only slice of the pipeline staff may operate in.
func inStaffScope(stage domain.Stage) bool {
	return stage == domain.StageDraft || stage == domain.StageCopyEdit
}

// CanMove decides whether the capability set permits moving an item between
// two stages. Lock state is deliberately not consulted here: it is fetched
// asynchronously and may be stale at evaluation time, so the dispatcher
// re-checks it immediately before dispatch.
func CanMove(caps domain.Capabilities, from, to domain.Stage) Decision {
	if !domain.IsPipelineStage(from) || !domain.IsPipelineStage(to) {
		return deny(ReasonUnknownStage)
	}
	if caps.Staff {
		if inStaffScope(from) && inStaffScope(to) {
			return allow()
		}
		return deny(ReasonStaffScope)
	}
	if caps.Editor && !caps.Founder {
		if from == domain.StageFounderApproval || to == domain.StageFounderApproval {
			return deny(ReasonFounderOnlyStage)
		}
	}
	return allow()
}

// NextStage returns the single legal forward step for the capability set, or
// false when the stage has no next. Non-founder editors skip founder approval:
// their next stage from editor approval is scheduled.
func NextStage(caps domain.Capabilities, stage domain.Stage) (domain.Stage, bool) {
	if stage == domain.StageScheduled {
		return "", false
	}
	idx := domain.StageIndex(stage)
	if idx < 0 {
		return "", false
	}
	if stage == domain.StageEditorApproval && caps.Editor && !caps.Founder {
		return domain.StageScheduled, true
	}
	order := domain.PipelineStages()
	if idx+1 >= len(order) {
		return "", false
	}
	return order[idx+1], true
}

// PrevStage mirrors NextStage for backward steps. Draft has no previous; for
// non-founder editors the previous stage from scheduled is editor approval.
func PrevStage(caps domain.Capabilities, stage domain.Stage) (domain.Stage, bool) {
	if stage == domain.StageDraft {
		return "", false
	}
	idx := domain.StageIndex(stage)
	if idx < 0 {
		return "", false
	}
	if stage == domain.StageScheduled && caps.Editor && !caps.Founder {
		return domain.StageEditorApproval, true
	}
	if idx == 0 {
		return "", false
	}
	return domain.PipelineStages()[idx-1], true
}
