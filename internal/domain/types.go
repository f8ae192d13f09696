package domain

// Status represents raw lifecycle states owned by the article repository
type Status string

const (
	// StatusDraft indicates an article still under preparation
	StatusDraft Status = "draft"
	// StatusPublished identifies an article available to readers
	StatusPublished Status = "published"
	// StatusArchived marks an article retained for history but no longer visible
	StatusArchived Status = "archived"
	// StatusScheduled marks an article with a future publish time configured
	StatusScheduled Status = "scheduled"
)
