package domain

import "strings"

// NormalizeStatus coerces arbitrary status strings into the lowercase form the
// article repository persists.
func NormalizeStatus(input string) Status {
	return Status(strings.ToLower(strings.TrimSpace(input)))
}

// StageFromStatus maps a raw repository status onto a pipeline stage. Terminal
// statuses (published, archived) map to StagePublished, which places the item
// outside the review board.
func StageFromStatus(status Status) Stage {
	switch NormalizeStatus(string(status)) {
	case StatusScheduled:
		return StageScheduled
	case StatusPublished, StatusArchived:
		return StagePublished
	default:
		return StageDraft
	}
}
