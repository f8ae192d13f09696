package domain

import "strings"

// Stage represents one discrete position in the editorial review pipeline.
type Stage string

const (
	StageDraft           Stage = "draft"
	StageCopyEdit        Stage = "copy_edit"
	StageLegalReview     Stage = "legal_review"
	StageEditorApproval  Stage = "editor_approval"
	StageFounderApproval Stage = "founder_approval"
	StageScheduled       Stage = "scheduled"

	// StagePublished is terminal and sits outside the ordered sequence; it is
	// reached only through the publish action and never revisited.
	StagePublished Stage = "published"
)

// stageOrder is the canonical review sequence. StagePublished is deliberately
// absent: publish is an action, not a transition inside the sequence.
var stageOrder = []Stage{
	StageDraft,
	StageCopyEdit,
	StageLegalReview,
	StageEditorApproval,
	StageFounderApproval,
	StageScheduled,
}

// PipelineStages returns the ordered review sequence, first to last.
func PipelineStages() []Stage {
	ordered := make([]Stage, len(stageOrder))
	copy(ordered, stageOrder)
	return ordered
}

// StageIndex returns the position of the stage in the canonical order, or -1
// when the stage is not part of the ordered sequence.
func StageIndex(stage Stage) int {
	for i, candidate := range stageOrder {
		if candidate == stage {
			return i
		}
	}
	return -1
}

// IsPipelineStage reports whether the stage belongs to the ordered sequence.
func IsPipelineStage(stage Stage) bool {
	return StageIndex(stage) >= 0
}

// ParseStage coerces a raw string into a known Stage. The second return is
// false for free-form values, which are never admitted into the pipeline.
func ParseStage(input string) (Stage, bool) {
	stage := Stage(strings.ToLower(strings.TrimSpace(input)))
	if IsPipelineStage(stage) || stage == StagePublished {
		return stage, true
	}
	return "", false
}
