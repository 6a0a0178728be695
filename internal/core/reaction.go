package core

import (
	"context"
	"errors"
	"fmt"

	"engagehub/internal/repository"
	"engagehub/pkg/models"
)

// ReactionService manages one reaction per user per comment or post
type ReactionService interface {
	// Set creates or replaces the caller's reaction on target. Repeating the
	// current type returns the stored reaction unchanged.
	Set(ctx context.Context, target models.ReactionTarget, user models.Actor, kind models.ReactionType) (*models.Reaction, error)
	// Remove reports whether a reaction existed
	Remove(ctx context.Context, target models.ReactionTarget, userID string) (bool, error)
	// List reads reactions of a post or of an approved comment
	List(ctx context.Context, target models.ReactionTarget) ([]models.Reaction, error)
}

type reactionService struct {
	store repository.Store
	settings
}

// NewReactionService creates a new reaction service
func NewReactionService(store repository.Store, opts ...Option) ReactionService {
	return &reactionService{store: store, settings: newSettings(opts)}
}

func (s *reactionService) Set(ctx context.Context, target models.ReactionTarget, user models.Actor, kind models.ReactionType) (*models.Reaction, error) {
	if target.IsZero() {
		return nil, models.NewValidationError("target", "target is required")
	}
	if err := requireField("user_id", user.ID); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, models.NewValidationError("type", fmt.Sprintf("unknown reaction type %q", kind))
	}

	var (
		reaction *models.Reaction
		logged   []models.UserEngagement
	)
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		postID, err := lockTarget(ctx, tx, target)
		if err != nil {
			return err
		}

		existing, err := tx.GetReaction(ctx, target, user.ID)
		switch {
		case err == nil && existing.Type == kind:
			reaction = existing
			return nil
		case err == nil:
			existing.Type = kind
			existing.UserName = user.DisplayName
			if err := tx.UpdateReaction(ctx, existing); err != nil {
				return err
			}
			reaction = existing
		case errors.Is(err, models.ErrNotFound):
			reaction = &models.Reaction{
				ID:        repository.NewID(repository.PrefixReaction),
				Target:    target,
				PostID:    postID,
				UserID:    user.ID,
				UserName:  user.DisplayName,
				Type:      kind,
				CreatedAt: s.now(),
			}
			if err := tx.InsertReaction(ctx, reaction); err != nil {
				return err
			}
		default:
			return err
		}

		e, err := appendEngagement(ctx, tx, models.UserEngagement{
			UserID:    user.ID,
			PostID:    postID,
			Type:      models.EngagementReaction,
			Timestamp: s.now(),
			Details: map[string]string{
				"target":   target.Key(),
				"reaction": string(kind),
			},
		})
		if err != nil {
			return err
		}
		logged = append(logged, e)

		if target.IsPost() {
			_, err = refreshMetrics(ctx, tx, postID)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set reaction: %w", err)
	}

	s.publish(ctx, logged)
	return reaction, nil
}

func (s *reactionService) Remove(ctx context.Context, target models.ReactionTarget, userID string) (bool, error) {
	if target.IsZero() {
		return false, models.NewValidationError("target", "target is required")
	}
	if err := requireField("user_id", userID); err != nil {
		return false, err
	}

	removed := false
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		postID, err := lockTarget(ctx, tx, target)
		if errors.Is(err, models.ErrNotFound) {
			// a missing comment carries no reactions
			return nil
		}
		if err != nil {
			return err
		}

		existing, err := tx.GetReaction(ctx, target, userID)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.DeleteReaction(ctx, existing.ID); err != nil {
			return err
		}
		removed = true

		if target.IsPost() {
			_, err = refreshMetrics(ctx, tx, postID)
		}
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove reaction: %w", err)
	}
	return removed, nil
}

func (s *reactionService) List(ctx context.Context, target models.ReactionTarget) ([]models.Reaction, error) {
	if target.IsZero() {
		return nil, models.NewValidationError("target", "target is required")
	}

	var out []models.Reaction
	err := s.store.View(ctx, func(tx repository.Tx) error {
		if target.IsComment() {
			c, err := tx.GetComment(ctx, target.ID())
			if err != nil {
				return err
			}
			if c.ModerationStatus != models.ModerationApproved {
				return models.NewNotFoundError("comment", target.ID())
			}
		}
		reactions, err := tx.ListReactions(ctx, target)
		if err != nil {
			return err
		}
		out = make([]models.Reaction, 0, len(reactions))
		for _, r := range reactions {
			out = append(out, *r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	return out, nil
}

// lockTarget locks the post owning target and returns its ID. Comment
// targets must still exist once the lock is held.
func lockTarget(ctx context.Context, tx repository.Tx, target models.ReactionTarget) (string, error) {
	if target.IsComment() {
		c, err := lockComment(ctx, tx, target.ID())
		if err != nil {
			return "", err
		}
		return c.PostID, nil
	}
	if err := tx.LockPost(ctx, target.ID()); err != nil {
		return "", err
	}
	return target.ID(), nil
}
