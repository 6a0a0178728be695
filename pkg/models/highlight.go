package models

import (
	"time"
)

// Highlight is a quoted span of post text anchored by offsets
type Highlight struct {
	ID          string    `json:"id" db:"id"`
	PostID      string    `json:"post_id" db:"post_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	UserName    string    `json:"user_name" db:"user_name"`
	Text        string    `json:"text" db:"text"`
	StartOffset int       `json:"start_offset" db:"start_offset"`
	EndOffset   int       `json:"end_offset" db:"end_offset"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	CommentID   *string   `json:"comment_id,omitempty" db:"comment_id"`
}

// Clone returns a deep copy
func (h *Highlight) Clone() *Highlight {
	if h == nil {
		return nil
	}
	out := *h
	out.CommentID = cloneString(h.CommentID)
	return &out
}

// CreateHighlightRequest is the HTTP body for a new highlight
type CreateHighlightRequest struct {
	Text        string `json:"text" binding:"required"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// ContentFeedback is a single user's rating of a post
type ContentFeedback struct {
	ID        string     `json:"id" db:"id"`
	PostID    string     `json:"post_id" db:"post_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	UserName  string     `json:"user_name" db:"user_name"`
	Rating    int        `json:"rating" db:"rating"`
	Feedback  *string    `json:"feedback,omitempty" db:"feedback"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Clone returns a deep copy
func (f *ContentFeedback) Clone() *ContentFeedback {
	if f == nil {
		return nil
	}
	out := *f
	out.Feedback = cloneString(f.Feedback)
	if f.UpdatedAt != nil {
		t := *f.UpdatedAt
		out.UpdatedAt = &t
	}
	return &out
}

const (
	MinRating = 1
	MaxRating = 5
)

// SubmitFeedbackRequest is the HTTP body for rating a post
type SubmitFeedbackRequest struct {
	Rating   int     `json:"rating" binding:"required"`
	Feedback *string `json:"feedback,omitempty"`
}
