package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagehub/pkg/models"
)

// storeContract exercises the behaviour every Store backend must share.
// Record IDs are random so the suite can run against a shared database.
func storeContract(t *testing.T, store Store) {
	t.Run("comments", func(t *testing.T) { contractComments(t, store) })
	t.Run("reactions", func(t *testing.T) { contractReactions(t, store) })
	t.Run("rollback", func(t *testing.T) { contractRollback(t, store) })
	t.Run("feedback", func(t *testing.T) { contractFeedback(t, store) })
	t.Run("notifications", func(t *testing.T) { contractNotifications(t, store) })
	t.Run("metrics", func(t *testing.T) { contractMetrics(t, store) })
	t.Run("engagements", func(t *testing.T) { contractEngagements(t, store) })
	t.Run("view is read-only", func(t *testing.T) { contractReadOnly(t, store) })
}

func unique(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newComment(postID string, parentID *string, offset int) *models.Comment {
	return &models.Comment{
		ID:               NewID(PrefixComment),
		PostID:           postID,
		Content:          "content",
		Author:           models.Actor{ID: "author", DisplayName: "Author"},
		ParentID:         parentID,
		CreatedAt:        baseTime.Add(time.Duration(offset) * time.Second),
		ModerationStatus: models.ModerationPending,
	}
}

func write(t *testing.T, store Store, fn func(tx Tx) error) {
	t.Helper()
	require.NoError(t, store.WithTransaction(context.Background(), fn))
}

func contractComments(t *testing.T, store Store) {
	ctx := context.Background()
	postID := unique("post")

	root := newComment(postID, nil, 0)
	reply := newComment(postID, &root.ID, 1)
	approved := newComment(postID, nil, 2)
	approved.ModerationStatus = models.ModerationApproved

	write(t, store, func(tx Tx) error {
		require.NoError(t, tx.LockPost(ctx, postID))
		for _, c := range []*models.Comment{root, reply, approved} {
			require.NoError(t, tx.InsertComment(ctx, c))
		}
		return nil
	})

	err := store.View(ctx, func(tx Tx) error {
		got, err := tx.GetComment(ctx, reply.ID)
		require.NoError(t, err)
		assert.Equal(t, root.ID, *got.ParentID)
		assert.Equal(t, "Author", got.Author.DisplayName)

		top, err := tx.ListComments(ctx, CommentFilter{PostID: postID})
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, root.ID, top[0].ID)
		assert.Equal(t, approved.ID, top[1].ID)

		children, err := tx.ListComments(ctx, CommentFilter{PostID: postID, ParentID: &root.ID})
		require.NoError(t, err)
		require.Len(t, children, 1)

		onlyApproved, err := tx.ListComments(ctx, CommentFilter{
			PostID: postID, AnyParent: true, Statuses: []models.ModerationStatus{models.ModerationApproved},
		})
		require.NoError(t, err)
		require.Len(t, onlyApproved, 1)
		assert.Equal(t, approved.ID, onlyApproved[0].ID)

		ids, err := tx.ChildCommentIDs(ctx, root.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{reply.ID}, ids)

		_, err = tx.GetComment(ctx, "cmt-missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	write(t, store, func(tx Tx) error {
		c, err := tx.GetComment(ctx, root.ID)
		require.NoError(t, err)
		c.ReplyCount = 1
		c.IsEdited = true
		require.NoError(t, tx.UpdateComment(ctx, c))
		return tx.DeleteComments(ctx, []string{reply.ID})
	})

	err = store.View(ctx, func(tx Tx) error {
		c, err := tx.GetComment(ctx, root.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, c.ReplyCount)
		assert.True(t, c.IsEdited)
		_, err = tx.GetComment(ctx, reply.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func contractReactions(t *testing.T, store Store) {
	ctx := context.Background()
	postID := unique("post")
	target := models.PostTarget(postID)

	r := &models.Reaction{
		ID: NewID(PrefixReaction), Target: target, PostID: postID,
		UserID: "u1", UserName: "User", Type: models.ReactionLike, CreatedAt: baseTime,
	}
	write(t, store, func(tx Tx) error { return tx.InsertReaction(ctx, r) })

	dup := *r
	dup.ID = NewID(PrefixReaction)
	err := store.WithTransaction(ctx, func(tx Tx) error { return tx.InsertReaction(ctx, &dup) })
	assert.ErrorIs(t, err, models.ErrConflict)

	write(t, store, func(tx Tx) error {
		got, err := tx.GetReaction(ctx, target, "u1")
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)
		assert.True(t, got.Target.IsPost())
		assert.Equal(t, postID, got.Target.ID())

		got.Type = models.ReactionSad
		return tx.UpdateReaction(ctx, got)
	})

	commentTarget := models.CommentTarget(unique("cmt"))
	other := &models.Reaction{
		ID: NewID(PrefixReaction), Target: commentTarget, PostID: postID,
		UserID: "u1", Type: models.ReactionWow, CreatedAt: baseTime.Add(time.Second),
	}
	write(t, store, func(tx Tx) error { return tx.InsertReaction(ctx, other) })

	err = store.View(ctx, func(tx Tx) error {
		both, err := tx.ListReactions(ctx, target, commentTarget)
		require.NoError(t, err)
		require.Len(t, both, 2)
		assert.Equal(t, models.ReactionSad, both[0].Type)
		assert.Equal(t, models.ReactionWow, both[1].Type)
		return nil
	})
	require.NoError(t, err)

	write(t, store, func(tx Tx) error {
		n, err := tx.DeleteCommentReactions(ctx, []string{commentTarget.ID()})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return tx.DeleteReaction(ctx, r.ID)
	})

	err = store.View(ctx, func(tx Tx) error {
		rest, err := tx.ListReactions(ctx, target, commentTarget)
		require.NoError(t, err)
		assert.Empty(t, rest)
		_, err = tx.GetReaction(ctx, target, "u1")
		assert.ErrorIs(t, err, models.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func contractRollback(t *testing.T, store Store) {
	ctx := context.Background()
	postID := unique("post")
	c := newComment(postID, nil, 0)
	boom := errors.New("boom")

	err := store.WithTransaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.InsertComment(ctx, c))
		require.NoError(t, tx.SaveMetrics(ctx, models.NewEngagementMetrics(postID)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Panics(t, func() {
		_ = store.WithTransaction(ctx, func(tx Tx) error {
			require.NoError(t, tx.InsertComment(ctx, newComment(postID, nil, 1)))
			panic("boom")
		})
	})

	err = store.View(ctx, func(tx Tx) error {
		all, err := tx.ListComments(ctx, CommentFilter{PostID: postID, AnyParent: true})
		require.NoError(t, err)
		assert.Empty(t, all)
		_, err = tx.GetMetrics(ctx, postID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func contractFeedback(t *testing.T, store Store) {
	ctx := context.Background()
	postID := unique("post")

	f := &models.ContentFeedback{
		ID: NewID(PrefixFeedback), PostID: postID, UserID: "u1", Rating: 3, CreatedAt: baseTime,
	}
	write(t, store, func(tx Tx) error { return tx.InsertFeedback(ctx, f) })

	dup := *f
	dup.ID = NewID(PrefixFeedback)
	err := store.WithTransaction(ctx, func(tx Tx) error { return tx.InsertFeedback(ctx, &dup) })
	assert.ErrorIs(t, err, models.ErrConflict)

	write(t, store, func(tx Tx) error {
		got, err := tx.GetFeedback(ctx, postID, "u1")
		require.NoError(t, err)
		got.Rating = 5
		text := "great"
		got.Feedback = &text
		return tx.UpdateFeedback(ctx, got)
	})

	err = store.View(ctx, func(tx Tx) error {
		all, err := tx.ListFeedback(ctx, postID)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, 5, all[0].Rating)
		assert.Equal(t, "great", *all[0].Feedback)
		return nil
	})
	require.NoError(t, err)
}

func contractNotifications(t *testing.T, store Store) {
	ctx := context.Background()
	userID := unique("user")
	commentID := unique("cmt")
	parentID := unique("cmt")

	older := &models.CommentNotification{
		ID: NewID(PrefixNotification), UserID: userID, CommentID: commentID, PostID: "p",
		ActorID: "a", Type: models.NotificationReply, Message: "m", CreatedAt: baseTime,
	}
	newer := &models.CommentNotification{
		ID: NewID(PrefixNotification), UserID: userID, CommentID: unique("cmt"), ParentCommentID: &parentID,
		PostID: "p", ActorID: "a", Type: models.NotificationModeration, Message: "m", CreatedAt: baseTime.Add(time.Minute),
	}
	kept := &models.CommentNotification{
		ID: NewID(PrefixNotification), UserID: userID, CommentID: unique("cmt"), PostID: "p",
		ActorID: "a", Type: models.NotificationMention, Message: "m", CreatedAt: baseTime.Add(2 * time.Minute),
	}
	write(t, store, func(tx Tx) error {
		for _, n := range []*models.CommentNotification{older, newer, kept} {
			require.NoError(t, tx.InsertNotification(ctx, n))
		}
		return nil
	})

	write(t, store, func(tx Tx) error {
		list, err := tx.ListNotifications(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{kept.ID, newer.ID, older.ID}, []string{list[0].ID, list[1].ID, list[2].ID})

		n, err := tx.MarkAllNotificationsRead(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		n, err = tx.MarkAllNotificationsRead(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		// matches by comment id and by parent comment id
		n, err = tx.DeleteCommentNotifications(ctx, []string{commentID, parentID})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		return nil
	})

	err := store.View(ctx, func(tx Tx) error {
		list, err := tx.ListNotifications(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, kept.ID, list[0].ID)
		assert.True(t, list[0].IsRead)
		return nil
	})
	require.NoError(t, err)
}

func contractMetrics(t *testing.T, store Store) {
	ctx := context.Background()
	postID := unique("post")

	m := models.NewEngagementMetrics(postID)
	m.ViewCount = 7
	m.ReactionCounts[models.ReactionLove] = 2
	m.AverageRating = 4.5
	write(t, store, func(tx Tx) error {
		_, err := tx.GetMetrics(ctx, postID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		require.NoError(t, tx.SaveMetrics(ctx, m))
		m.ShareCount = 1
		return tx.SaveMetrics(ctx, m)
	})

	err := store.View(ctx, func(tx Tx) error {
		got, err := tx.GetMetrics(ctx, postID)
		require.NoError(t, err)
		assert.Equal(t, m, got)
		return nil
	})
	require.NoError(t, err)
}

func contractEngagements(t *testing.T, store Store) {
	ctx := context.Background()
	postID := unique("post")
	dwell := 1500 * time.Millisecond

	write(t, store, func(tx Tx) error {
		seen, err := tx.HasEngagement(ctx, "u1", postID, models.EngagementView)
		require.NoError(t, err)
		assert.False(t, seen)
		return tx.AppendEngagement(ctx, &models.UserEngagement{
			ID: NewID(PrefixEngagement), UserID: "u1", PostID: postID, Type: models.EngagementView,
			Timestamp: baseTime, Duration: &dwell, Details: map[string]string{"source": "feed"},
		})
	})

	err := store.View(ctx, func(tx Tx) error {
		seen, err := tx.HasEngagement(ctx, "u1", postID, models.EngagementView)
		require.NoError(t, err)
		assert.True(t, seen)
		seen, err = tx.HasEngagement(ctx, "u1", postID, models.EngagementShare)
		require.NoError(t, err)
		assert.False(t, seen)
		return nil
	})
	require.NoError(t, err)
}

func contractReadOnly(t *testing.T, store Store) {
	ctx := context.Background()
	err := store.View(ctx, func(tx Tx) error {
		return tx.InsertComment(ctx, newComment(unique("post"), nil, 0))
	})
	assert.Error(t, err)
}
