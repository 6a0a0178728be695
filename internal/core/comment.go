// Package core - Comment Business Logic
// Per-post discussion trees: create, edit, moderate, cascade delete and list.
package core

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"

	"engagehub/internal/repository"
	"engagehub/pkg/logger"
	"engagehub/pkg/models"
)

// CreateCommentInput carries a new top-level comment or reply
type CreateCommentInput struct {
	PostID      string
	Content     string
	Author      models.Actor
	ParentID    *string
	HighlightID *string
}

// ListCommentsQuery selects the approved children of ParentID, or the
// approved top-level comments when ParentID is nil
type ListCommentsQuery struct {
	PostID   string
	ParentID *string
	Sort     models.CommentSort
}

// CommentService defines comment operations
type CommentService interface {
	Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error)
	Update(ctx context.Context, commentID, content string) (*models.Comment, error)
	Delete(ctx context.Context, commentID string) error
	Moderate(ctx context.Context, commentID string, status models.ModerationStatus, moderator models.Actor) (*models.Comment, error)
	List(ctx context.Context, q ListCommentsQuery) (iter.Seq[models.Comment], error)
	// Get returns an approved comment; other statuses read as not found
	Get(ctx context.Context, commentID string) (*models.Comment, error)
	// GetForModeration returns a comment in any moderation status
	GetForModeration(ctx context.Context, commentID string) (*models.Comment, error)
	// ListForModeration returns every non-approved comment of a post, oldest first
	ListForModeration(ctx context.Context, postID string) ([]models.Comment, error)
}

type commentService struct {
	store repository.Store
	settings
}

// NewCommentService creates a new comment service
func NewCommentService(store repository.Store, opts ...Option) CommentService {
	return &commentService{store: store, settings: newSettings(opts)}
}

// Create inserts a pending comment. Replies bump the parent's reply count
// and notify the parent's author in the same transaction.
func (s *commentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := requireField("post_id", in.PostID); err != nil {
		return nil, err
	}
	if err := requireField("author", in.Author.ID); err != nil {
		return nil, err
	}
	content, err := s.validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	var title string
	if in.ParentID != nil {
		title = s.postTitle(ctx, in.PostID)
	}

	now := s.now()
	comment := &models.Comment{
		ID:               repository.NewID(repository.PrefixComment),
		PostID:           in.PostID,
		Content:          content,
		Author:           in.Author,
		CreatedAt:        now,
		ModerationStatus: models.ModerationPending,
	}
	if in.ParentID != nil {
		parentID := *in.ParentID
		comment.ParentID = &parentID
	}

	var logged []models.UserEngagement
	err = s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		if err := tx.LockPost(ctx, in.PostID); err != nil {
			return err
		}

		var highlight *models.Highlight
		if in.HighlightID != nil {
			h, err := tx.GetHighlight(ctx, *in.HighlightID)
			if err != nil {
				return err
			}
			if h.PostID != in.PostID {
				return models.NewNotFoundError("highlight", *in.HighlightID)
			}
			if h.CommentID != nil {
				return models.NewValidationError("highlight_id", "highlight already has a comment")
			}
			text := h.Text
			comment.HighlightID = &h.ID
			comment.HighlightText = &text
			highlight = h
		}

		var parent *models.Comment
		if in.ParentID != nil {
			p, err := tx.GetComment(ctx, *in.ParentID)
			if err != nil {
				return err
			}
			if p.PostID != in.PostID {
				return models.NewNotFoundError("parent comment", *in.ParentID)
			}
			parent = p
		}

		if err := tx.InsertComment(ctx, comment); err != nil {
			return err
		}

		if highlight != nil {
			highlight.CommentID = &comment.ID
			if err := tx.UpdateHighlight(ctx, highlight); err != nil {
				return err
			}
		}

		if parent != nil {
			parent.ReplyCount++
			if err := tx.UpdateComment(ctx, parent); err != nil {
				return err
			}
			if parent.Author.ID != in.Author.ID {
				_, err := dispatch(ctx, tx, now, parent.Author.ID, models.NotificationEvent{
					Type:            models.NotificationReply,
					CommentID:       comment.ID,
					ParentCommentID: &parent.ID,
					PostID:          in.PostID,
					PostTitle:       title,
					Actor:           in.Author,
					Message:         fmt.Sprintf("%s replied to your comment on %q", displayName(in.Author), title),
				})
				if err != nil {
					return err
				}
			}
		}

		e, err := appendEngagement(ctx, tx, models.UserEngagement{
			UserID:    in.Author.ID,
			PostID:    in.PostID,
			Type:      models.EngagementComment,
			Timestamp: now,
			Details:   map[string]string{"comment_id": comment.ID},
		})
		if err != nil {
			return err
		}
		logged = append(logged, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.publish(ctx, logged)
	logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"post_id":    comment.PostID,
		"reply":      !comment.IsTopLevel(),
	}).Debug("comment created")
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, commentID, content string) (*models.Comment, error) {
	trimmed, err := s.validateContent(content)
	if err != nil {
		return nil, err
	}

	var comment *models.Comment
	err = s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		c, err := lockComment(ctx, tx, commentID)
		if err != nil {
			return err
		}
		now := s.now()
		c.Content = trimmed
		c.IsEdited = true
		c.UpdatedAt = &now
		if err := tx.UpdateComment(ctx, c); err != nil {
			return err
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

// Delete removes the comment and its whole subtree together with every
// reaction and notification that references a removed comment
func (s *commentService) Delete(ctx context.Context, commentID string) error {
	var removed int
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		target, err := lockComment(ctx, tx, commentID)
		if err != nil {
			return err
		}

		ids, err := subtreeIDs(ctx, tx, target.ID)
		if err != nil {
			return err
		}

		if err := tx.DeleteComments(ctx, ids); err != nil {
			return err
		}
		if _, err := tx.DeleteCommentReactions(ctx, ids); err != nil {
			return err
		}
		if _, err := tx.DeleteCommentNotifications(ctx, ids); err != nil {
			return err
		}
		if _, err := tx.UnlinkHighlights(ctx, ids); err != nil {
			return err
		}

		if !target.IsTopLevel() {
			parent, err := tx.GetComment(ctx, *target.ParentID)
			if err != nil {
				return err
			}
			if parent.ReplyCount > 0 {
				parent.ReplyCount--
			}
			if err := tx.UpdateComment(ctx, parent); err != nil {
				return err
			}
		}

		removed = len(ids)
		_, err = refreshMetrics(ctx, tx, target.PostID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"comment_id": commentID,
		"removed":    removed,
	}).Debug("comment deleted")
	return nil
}

// Moderate sets the moderation status. Any transition is allowed; approve
// and reject decisions notify the author.
func (s *commentService) Moderate(ctx context.Context, commentID string, status models.ModerationStatus, moderator models.Actor) (*models.Comment, error) {
	if !status.Valid() {
		return nil, models.NewValidationError("status", fmt.Sprintf("unknown moderation status %q", status))
	}
	if err := requireField("moderator", moderator.ID); err != nil {
		return nil, err
	}

	var postID string
	err := s.store.View(ctx, func(tx repository.Tx) error {
		c, err := tx.GetComment(ctx, commentID)
		if err != nil {
			return err
		}
		postID = c.PostID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to moderate comment: %w", err)
	}
	title := s.postTitle(ctx, postID)

	var comment *models.Comment
	err = s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		c, err := lockComment(ctx, tx, commentID)
		if err != nil {
			return err
		}
		c.ModerationStatus = status
		if err := tx.UpdateComment(ctx, c); err != nil {
			return err
		}

		if status == models.ModerationApproved || status == models.ModerationRejected {
			_, err := dispatch(ctx, tx, s.now(), c.Author.ID, models.NotificationEvent{
				Type:            models.NotificationModeration,
				CommentID:       c.ID,
				ParentCommentID: c.ParentID,
				PostID:          c.PostID,
				PostTitle:       title,
				Actor:           moderator,
				Message:         fmt.Sprintf("Your comment on %q was %s", title, status),
			})
			if err != nil {
				return err
			}
		}

		if _, err := refreshMetrics(ctx, tx, c.PostID); err != nil {
			return err
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to moderate comment: %w", err)
	}
	return comment, nil
}

// List returns a restartable sequence over a snapshot of approved comments
func (s *commentService) List(ctx context.Context, q ListCommentsQuery) (iter.Seq[models.Comment], error) {
	if err := requireField("post_id", q.PostID); err != nil {
		return nil, err
	}
	if q.Sort == "" {
		q.Sort = models.SortNewest
	}
	if !q.Sort.Valid() {
		return nil, models.NewValidationError("sort", fmt.Sprintf("unknown sort %q", q.Sort))
	}

	var comments []*models.Comment
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		comments, err = tx.ListComments(ctx, repository.CommentFilter{
			PostID:   q.PostID,
			ParentID: q.ParentID,
			Statuses: []models.ModerationStatus{models.ModerationApproved},
		})
		if err != nil {
			return err
		}
		return attachReactions(ctx, tx, comments)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	sortComments(comments, q.Sort)

	return func(yield func(models.Comment) bool) {
		for _, c := range comments {
			if !yield(*c.Clone()) {
				return
			}
		}
	}, nil
}

func (s *commentService) Get(ctx context.Context, commentID string) (*models.Comment, error) {
	return s.get(ctx, commentID, true)
}

func (s *commentService) GetForModeration(ctx context.Context, commentID string) (*models.Comment, error) {
	return s.get(ctx, commentID, false)
}

func (s *commentService) get(ctx context.Context, commentID string, approvedOnly bool) (*models.Comment, error) {
	var comment *models.Comment
	err := s.store.View(ctx, func(tx repository.Tx) error {
		c, err := tx.GetComment(ctx, commentID)
		if err != nil {
			return err
		}
		if approvedOnly && c.ModerationStatus != models.ModerationApproved {
			return models.NewNotFoundError("comment", commentID)
		}
		if err := attachReactions(ctx, tx, []*models.Comment{c}); err != nil {
			return err
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("comment not found: %w", err)
	}
	return comment, nil
}

func (s *commentService) ListForModeration(ctx context.Context, postID string) ([]models.Comment, error) {
	if err := requireField("post_id", postID); err != nil {
		return nil, err
	}

	var out []models.Comment
	err := s.store.View(ctx, func(tx repository.Tx) error {
		comments, err := tx.ListComments(ctx, repository.CommentFilter{
			PostID:    postID,
			AnyParent: true,
			Statuses: []models.ModerationStatus{
				models.ModerationPending,
				models.ModerationRejected,
				models.ModerationSpam,
			},
		})
		if err != nil {
			return err
		}
		out = make([]models.Comment, 0, len(comments))
		for _, c := range comments {
			out = append(out, *c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list moderation queue: %w", err)
	}
	return out, nil
}

// lockComment resolves the owning post, locks it and re-reads the comment
// so the returned copy reflects every committed write
func lockComment(ctx context.Context, tx repository.Tx, commentID string) (*models.Comment, error) {
	c, err := tx.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := tx.LockPost(ctx, c.PostID); err != nil {
		return nil, err
	}
	return tx.GetComment(ctx, commentID)
}

// subtreeIDs returns rootID and all of its descendants, deepest first
func subtreeIDs(ctx context.Context, tx repository.Tx, rootID string) ([]string, error) {
	var ids []string
	var walk func(id string, depth int) error
	walk = func(id string, depth int) error {
		if depth > maxThreadDepth {
			return errors.New("comment thread exceeds maximum depth")
		}
		children, err := tx.ChildCommentIDs(ctx, id)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		ids = append(ids, id)
		return nil
	}
	if err := walk(rootID, 0); err != nil {
		return nil, err
	}
	return ids, nil
}

// maxThreadDepth guards the recursive walk against a corrupted parent cycle
const maxThreadDepth = 10000

func attachReactions(ctx context.Context, tx repository.Tx, comments []*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	targets := make([]models.ReactionTarget, 0, len(comments))
	byID := make(map[string]*models.Comment, len(comments))
	for _, c := range comments {
		targets = append(targets, models.CommentTarget(c.ID))
		byID[c.ID] = c
		c.Reactions = nil
	}

	reactions, err := tx.ListReactions(ctx, targets...)
	if err != nil {
		return err
	}
	for _, r := range reactions {
		if c, ok := byID[r.Target.ID()]; ok {
			c.Reactions = append(c.Reactions, *r)
		}
	}
	return nil
}

func sortComments(comments []*models.Comment, order models.CommentSort) {
	newestFirst := func(a, b *models.Comment) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}

	switch order {
	case models.SortOldest:
		sort.SliceStable(comments, func(i, j int) bool {
			return newestFirst(comments[j], comments[i])
		})
	case models.SortPopular:
		sort.SliceStable(comments, func(i, j int) bool {
			a, b := comments[i], comments[j]
			if len(a.Reactions) != len(b.Reactions) {
				return len(a.Reactions) > len(b.Reactions)
			}
			if a.ReplyCount != b.ReplyCount {
				return a.ReplyCount > b.ReplyCount
			}
			return newestFirst(a, b)
		})
	default:
		sort.SliceStable(comments, func(i, j int) bool {
			return newestFirst(comments[i], comments[j])
		})
	}
}

func displayName(a models.Actor) string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.ID
}
