package workflow

import (
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
)

// SLAStatus annotates an item with its time in stage. Elapsed is only
// meaningful when Resolved is true; an item is never flagged stuck without a
// valid timestamp basis.
type SLAStatus struct {
	Resolved bool
	Elapsed  time.Duration
	Stuck    bool
}

// SLAPolicy holds per-stage staleness thresholds. A zero or negative threshold
// disables the check for that stage.
type SLAPolicy struct {
	thresholds map[domain.Stage]time.Duration
}

// DefaultSLAPolicy mirrors the thresholds the desk has operated with: legal
// review gets the longest window, scheduled items never go stale.
func DefaultSLAPolicy() SLAPolicy {
	return NewSLAPolicy(map[domain.Stage]time.Duration{
		domain.StageDraft:           48 * time.Hour,
		domain.StageCopyEdit:        24 * time.Hour,
		domain.StageLegalReview:     72 * time.Hour,
		domain.StageEditorApproval:  24 * time.Hour,
		domain.StageFounderApproval: 24 * time.Hour,
		domain.StageScheduled:       0,
	})
}

// NewSLAPolicy builds a policy from explicit thresholds. Stages absent from
// the map are treated as disabled.
func NewSLAPolicy(thresholds map[domain.Stage]time.Duration) SLAPolicy {
	copied := make(map[domain.Stage]time.Duration, len(thresholds))
	for stage, threshold := range thresholds {
		copied[stage] = threshold
	}
	return SLAPolicy{thresholds: copied}
}

// Threshold returns the configured window for a stage.
func (p SLAPolicy) Threshold(stage domain.Stage) (time.Duration, bool) {
	threshold, ok := p.thresholds[stage]
	if !ok || threshold <= 0 {
		return 0, false
	}
	return threshold, true
}

// StageTimestamp resolves the moment the item entered its current stage via an
// explicit, ordered fallback chain: stage_updated_at from fetched state, the
// embedded workflow timestamp on the raw item, the item's last-updated
// timestamp, then its creation timestamp. The second return is false when no
// source resolves.
func StageTimestamp(item *ContentItem, state *WorkflowState) (time.Time, bool) {
	if state != nil && state.StageUpdatedAt != nil && !state.StageUpdatedAt.IsZero() {
		return *state.StageUpdatedAt, true
	}
	if item == nil {
		return time.Time{}, false
	}
	if item.StageChangedAt != nil && !item.StageChangedAt.IsZero() {
		return *item.StageChangedAt, true
	}
	if !item.UpdatedAt.IsZero() {
		return item.UpdatedAt, true
	}
	if !item.CreatedAt.IsZero() {
		return item.CreatedAt, true
	}
	return time.Time{}, false
}

// Evaluate computes elapsed time in stage and the staleness flag. Stuck is
// true exactly when elapsed exceeds the stage threshold; it is always false
// when the timestamp basis is unresolvable or the threshold is disabled.
func (p SLAPolicy) Evaluate(item *ContentItem, state *WorkflowState, stage domain.Stage, now time.Time) SLAStatus {
	basis, ok := StageTimestamp(item, state)
	if !ok {
		return SLAStatus{}
	}
	elapsed := now.Sub(basis)
	status := SLAStatus{Resolved: true, Elapsed: elapsed}
	if threshold, enabled := p.Threshold(stage); enabled && elapsed > threshold {
		status.Stuck = true
	}
	return status
}
