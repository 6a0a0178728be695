package models

import (
	"time"
)

// ModerationStatus is the review state of a comment
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
	ModerationSpam     ModerationStatus = "spam"
)

// Valid reports whether s is one of the known moderation states
func (s ModerationStatus) Valid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationRejected, ModerationSpam:
		return true
	}
	return false
}

// DefaultMaxCommentLength bounds comment content, counted in characters
const DefaultMaxCommentLength = 1000

// Actor is the caller-supplied identity behind every operation
type Actor struct {
	ID          string `json:"id" db:"id"`
	DisplayName string `json:"display_name" db:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty" db:"avatar_url"`
}

// Comment is a node in a per-post discussion tree. The tree is stored as
// parent pointers; ReplyCount is authoritative for the number of live children.
type Comment struct {
	ID               string           `json:"id" db:"id"`
	PostID           string           `json:"post_id" db:"post_id"`
	Content          string           `json:"content" db:"content"`
	Author           Actor            `json:"author"`
	ParentID         *string          `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        *time.Time       `json:"updated_at,omitempty" db:"updated_at"`
	ModerationStatus ModerationStatus `json:"moderation_status" db:"moderation_status"`
	IsEdited         bool             `json:"is_edited" db:"is_edited"`
	HighlightID      *string          `json:"highlight_id,omitempty" db:"highlight_id"`
	HighlightText    *string          `json:"highlight_text,omitempty" db:"highlight_text"`
	ReplyCount       int              `json:"reply_count" db:"reply_count"`

	// Reactions is joined at read time and never persisted on the row
	Reactions []Reaction `json:"reactions,omitempty" db:"-"`
}

// IsTopLevel reports whether the comment has no parent
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

// Clone returns a deep copy so callers never alias store-owned state
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	out := *c
	out.ParentID = cloneString(c.ParentID)
	out.HighlightID = cloneString(c.HighlightID)
	out.HighlightText = cloneString(c.HighlightText)
	if c.UpdatedAt != nil {
		t := *c.UpdatedAt
		out.UpdatedAt = &t
	}
	if c.Reactions != nil {
		out.Reactions = append([]Reaction(nil), c.Reactions...)
	}
	return &out
}

// CommentSort selects the ordering of a comment listing
type CommentSort string

const (
	SortNewest  CommentSort = "newest"
	SortOldest  CommentSort = "oldest"
	SortPopular CommentSort = "popular"
)

// Valid reports whether s is a supported ordering
func (s CommentSort) Valid() bool {
	switch s {
	case SortNewest, SortOldest, SortPopular:
		return true
	}
	return false
}

// CreateCommentRequest is the HTTP body for posting a comment
type CreateCommentRequest struct {
	Content     string  `json:"content" binding:"required"`
	ParentID    *string `json:"parent_id,omitempty"`
	HighlightID *string `json:"highlight_id,omitempty"`
}

// UpdateCommentRequest is the HTTP body for editing a comment
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ModerateCommentRequest is the HTTP body for a moderation decision
type ModerateCommentRequest struct {
	Status ModerationStatus `json:"status" binding:"required"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
