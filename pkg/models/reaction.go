package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReactionType is one of the six supported sentiments
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionHaha  ReactionType = "haha"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

// ReactionTypes lists every reaction type in display order
var ReactionTypes = []ReactionType{
	ReactionLike,
	ReactionLove,
	ReactionHaha,
	ReactionWow,
	ReactionSad,
	ReactionAngry,
}

// Valid reports whether t is a supported reaction type
func (t ReactionType) Valid() bool {
	for _, known := range ReactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TargetKind tags what a reaction is attached to
type TargetKind string

const (
	TargetComment TargetKind = "comment"
	TargetPost    TargetKind = "post"
)

// ReactionTarget is either a comment or a post, never both. The zero value
// is invalid; build targets with CommentTarget or PostTarget.
type ReactionTarget struct {
	kind TargetKind
	id   string
}

// CommentTarget addresses a comment
func CommentTarget(commentID string) ReactionTarget {
	return ReactionTarget{kind: TargetComment, id: commentID}
}

// PostTarget addresses a post
func PostTarget(postID string) ReactionTarget {
	return ReactionTarget{kind: TargetPost, id: postID}
}

// ParseTarget builds a target from its wire form
func ParseTarget(kind, id string) (ReactionTarget, error) {
	if id == "" {
		return ReactionTarget{}, NewValidationError("target", "target id is required")
	}
	switch TargetKind(kind) {
	case TargetComment:
		return CommentTarget(id), nil
	case TargetPost:
		return PostTarget(id), nil
	}
	return ReactionTarget{}, NewValidationError("target", fmt.Sprintf("unknown target kind %q", kind))
}

func (t ReactionTarget) Kind() TargetKind { return t.kind }
func (t ReactionTarget) ID() string       { return t.id }
func (t ReactionTarget) IsPost() bool     { return t.kind == TargetPost }
func (t ReactionTarget) IsComment() bool  { return t.kind == TargetComment }
func (t ReactionTarget) IsZero() bool     { return t.kind == "" || t.id == "" }

// Key is a stable string form, e.g. "post:p1"
func (t ReactionTarget) Key() string {
	return string(t.kind) + ":" + t.id
}

func (t ReactionTarget) String() string {
	return t.Key()
}

type targetJSON struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

func (t ReactionTarget) MarshalJSON() ([]byte, error) {
	return json.Marshal(targetJSON{Kind: t.kind, ID: t.id})
}

func (t *ReactionTarget) UnmarshalJSON(data []byte) error {
	var raw targetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTarget(string(raw.Kind), raw.ID)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Reaction is one user's sentiment on a comment or post. PostID is the
// owning post for both target kinds.
type Reaction struct {
	ID        string         `json:"id" db:"id"`
	Target    ReactionTarget `json:"target"`
	PostID    string         `json:"post_id" db:"post_id"`
	UserID    string         `json:"user_id" db:"user_id"`
	UserName  string         `json:"user_name" db:"user_name"`
	Type      ReactionType   `json:"type" db:"type"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// SetReactionRequest is the HTTP body for reacting
type SetReactionRequest struct {
	Type ReactionType `json:"type" binding:"required"`
}
