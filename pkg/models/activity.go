package models

import (
	"time"
)

// EngagementType classifies an entry of the user engagement log
type EngagementType string

// Engagement types - the log is append-only
const (
	EngagementView      EngagementType = "view"
	EngagementComment   EngagementType = "comment"
	EngagementReaction  EngagementType = "reaction"
	EngagementRating    EngagementType = "rating"
	EngagementHighlight EngagementType = "highlight"
	EngagementShare     EngagementType = "share"
)

// UserEngagement is one append-only engagement event. It backs the unique
// view counter and is exported for downstream analytics.
type UserEngagement struct {
	ID        string            `json:"id" db:"id"`
	UserID    string            `json:"user_id" db:"user_id"`
	PostID    string            `json:"post_id" db:"post_id"`
	Type      EngagementType    `json:"engagement_type" db:"engagement_type"`
	Timestamp time.Time         `json:"timestamp" db:"created_at"`
	Duration  *time.Duration    `json:"duration,omitempty" db:"duration_ms"`
	Details   map[string]string `json:"details,omitempty" db:"details"`
}

// Weight scores an engagement for ranking consumers
func (e *UserEngagement) Weight() int {
	switch e.Type {
	case EngagementComment:
		return 3
	case EngagementShare:
		return 4
	case EngagementRating, EngagementHighlight:
		return 2
	default:
		return 1
	}
}
