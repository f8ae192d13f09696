package workflow

import (
	"strings"

	"github.com/goliatone/go-newsroom/internal/domain"
)

// BoardColumn is one stage bucket in the full board projection.
type BoardColumn struct {
	Stage domain.Stage
	Items []EnrichedItem
}

// Board is the full projection: one ordered column per pipeline stage. Items
// whose derived stage sits outside the pipeline never appear.
type Board struct {
	Columns []BoardColumn
}

// Column returns the bucket for a stage.
func (b Board) Column(stage domain.Stage) []EnrichedItem {
	for _, column := range b.Columns {
		if column.Stage == stage {
			return column.Items
		}
	}
	return nil
}

// SimplifiedBoard collapses the ordered stages into two buckets: everything
// ahead of scheduling, and scheduled items.
type SimplifiedBoard struct {
	NeedsReview []EnrichedItem
	Scheduled   []EnrichedItem
}

// FilterItems applies the case-insensitive title/id substring search. It runs
// before grouping so both projections see the same collection.
func FilterItems(items []EnrichedItem, query string) []EnrichedItem {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return items
	}
	filtered := make([]EnrichedItem, 0, len(items))
	for _, item := range items {
		if item.Item == nil {
			continue
		}
		title := strings.ToLower(item.Item.Title)
		id := strings.ToLower(item.Item.ID.String())
		if strings.Contains(title, needle) || strings.Contains(id, needle) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// ProjectBoard groups enriched items by derived stage.
func ProjectBoard(items []EnrichedItem, query string) Board {
	filtered := FilterItems(items, query)
	buckets := make(map[domain.Stage][]EnrichedItem, len(filtered))
	for _, item := range filtered {
		if !OnBoard(item.Stage) {
			continue
		}
		buckets[item.Stage] = append(buckets[item.Stage], item)
	}

	board := Board{Columns: make([]BoardColumn, 0, len(buckets))}
	for _, stage := range domain.PipelineStages() {
		board.Columns = append(board.Columns, BoardColumn{
			Stage: stage,
			Items: buckets[stage],
		})
	}
	return board
}

// ProjectSimplified collapses the pipeline into needs-review and scheduled
// buckets. When founderQueueOnly is set, the needs-review bucket is narrowed
// to items waiting on founder approval.
func ProjectSimplified(items []EnrichedItem, query string, founderQueueOnly bool) SimplifiedBoard {
	filtered := FilterItems(items, query)
	projection := SimplifiedBoard{}
	for _, item := range filtered {
		if !OnBoard(item.Stage) {
			continue
		}
		if item.Stage == domain.StageScheduled {
			projection.Scheduled = append(projection.Scheduled, item)
			continue
		}
		if founderQueueOnly && item.Stage != domain.StageFounderApproval {
			continue
		}
		projection.NeedsReview = append(projection.NeedsReview, item)
	}
	return projection
}
