package core

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagehub/internal/events"
	"engagehub/internal/repository"
	"engagehub/pkg/models"
)

type testEnv struct {
	store         *repository.MemoryStore
	events        *events.Recorder
	comments      CommentService
	reactions     ReactionService
	highlights    HighlightService
	feedback      FeedbackService
	notifications NotificationService
	metrics       MetricsService
}

// tickingClock advances one second per call so creation order is strict
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	recorder := &events.Recorder{}
	opts := []Option{
		WithClock(tickingClock()),
		WithPublisher(recorder),
		WithPostDirectory(StaticPostDirectory{"post-1": "Getting Started"}),
	}
	return &testEnv{
		store:         store,
		events:        recorder,
		comments:      NewCommentService(store, opts...),
		reactions:     NewReactionService(store, opts...),
		highlights:    NewHighlightService(store, opts...),
		feedback:      NewFeedbackService(store, opts...),
		notifications: NewNotificationService(store, opts...),
		metrics:       NewMetricsService(store, opts...),
	}
}

var (
	alice     = models.Actor{ID: "alice", DisplayName: "Alice"}
	bob       = models.Actor{ID: "bob", DisplayName: "Bob"}
	moderator = models.Actor{ID: "mod", DisplayName: "Moderator"}
)

func (e *testEnv) comment(t *testing.T, author models.Actor, parentID *string) *models.Comment {
	t.Helper()
	c, err := e.comments.Create(context.Background(), CreateCommentInput{
		PostID:   "post-1",
		Content:  "comment by " + author.ID,
		Author:   author,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) approved(t *testing.T, author models.Actor, parentID *string) *models.Comment {
	t.Helper()
	c := e.comment(t, author, parentID)
	c, err := e.comments.Moderate(context.Background(), c.ID, models.ModerationApproved, moderator)
	require.NoError(t, err)
	return c
}

func (e *testEnv) get(t *testing.T, id string) *models.Comment {
	t.Helper()
	c, err := e.comments.GetForModeration(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (e *testEnv) listIDs(t *testing.T, q ListCommentsQuery) []string {
	t.Helper()
	seq, err := e.comments.List(context.Background(), q)
	require.NoError(t, err)
	var ids []string
	for c := range seq {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestCreateComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.comments.Create(ctx, CreateCommentInput{
		PostID:  "post-1",
		Content: "  first!  ",
		Author:  alice,
	})
	require.NoError(t, err)

	assert.Equal(t, "first!", c.Content)
	assert.Equal(t, models.ModerationPending, c.ModerationStatus)
	assert.Equal(t, 0, c.ReplyCount)
	assert.True(t, strings.HasPrefix(c.ID, repository.PrefixComment+"-"))
	assert.Nil(t, c.ParentID)

	// pending comments are not counted
	m, err := env.metrics.Get(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, 0, m.CommentCount)

	recorded := env.events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, models.EngagementComment, recorded[0].Type)
	assert.Equal(t, c.ID, recorded[0].Details["comment_id"])
}

func TestCreateCommentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"too long", strings.Repeat("a", models.DefaultMaxCommentLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.comments.Create(ctx, CreateCommentInput{PostID: "post-1", Content: tt.content, Author: alice})
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	// length is counted in characters, not bytes
	_, err := env.comments.Create(ctx, CreateCommentInput{
		PostID:  "post-1",
		Content: strings.Repeat("é", models.DefaultMaxCommentLength),
		Author:  alice,
	})
	assert.NoError(t, err)
}

func TestCreateCommentMaxLengthOption(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewCommentService(store, WithMaxCommentLength(5))

	_, err := svc.Create(context.Background(), CreateCommentInput{PostID: "p", Content: "123456", Author: alice})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Create(context.Background(), CreateCommentInput{PostID: "p", Content: "12345", Author: alice})
	assert.NoError(t, err)
}

func TestCreateReplyParentChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	missing := "cmt-missing"
	_, err := env.comments.Create(ctx, CreateCommentInput{PostID: "post-1", Content: "hi", Author: bob, ParentID: &missing})
	assert.ErrorIs(t, err, models.ErrNotFound)

	parent := env.comment(t, alice, nil)
	_, err = env.comments.Create(ctx, CreateCommentInput{PostID: "post-2", Content: "hi", Author: bob, ParentID: &parent.ID})
	assert.ErrorIs(t, err, models.ErrNotFound)

	// failed creates leave nothing behind
	assert.Equal(t, 0, env.get(t, parent.ID).ReplyCount)
	notifications, err := env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestCreateCommentFromHighlight(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	h, err := env.highlights.Create(ctx, CreateHighlightInput{
		PostID: "post-1", User: alice, Text: "quoted words", StartOffset: 4, EndOffset: 16,
	})
	require.NoError(t, err)

	c, err := env.comments.Create(ctx, CreateCommentInput{
		PostID: "post-1", Content: "about this", Author: alice, HighlightID: &h.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, c.HighlightText)
	assert.Equal(t, "quoted words", *c.HighlightText)
	assert.Equal(t, h.ID, *c.HighlightID)

	highlights, err := env.highlights.List(ctx, "post-1")
	require.NoError(t, err)
	require.Len(t, highlights, 1)
	require.NotNil(t, highlights[0].CommentID)
	assert.Equal(t, c.ID, *highlights[0].CommentID)

	_, err = env.comments.Create(ctx, CreateCommentInput{
		PostID: "post-2", Content: "wrong post", Author: alice, HighlightID: &h.ID,
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	// one comment per highlight; deleting it frees the highlight again
	_, err = env.comments.Create(ctx, CreateCommentInput{
		PostID: "post-1", Content: "me too", Author: bob, HighlightID: &h.ID,
	})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, h.ID, *env.get(t, c.ID).HighlightID)

	require.NoError(t, env.comments.Delete(ctx, c.ID))
	again, err := env.comments.Create(ctx, CreateCommentInput{
		PostID: "post-1", Content: "me too", Author: bob, HighlightID: &h.ID,
	})
	require.NoError(t, err)
	highlights, err = env.highlights.List(ctx, "post-1")
	require.NoError(t, err)
	require.NotNil(t, highlights[0].CommentID)
	assert.Equal(t, again.ID, *highlights[0].CommentID)
}

func TestUpdateComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := env.approved(t, alice, nil)
	updated, err := env.comments.Update(ctx, c.ID, "edited text")
	require.NoError(t, err)

	assert.Equal(t, "edited text", updated.Content)
	assert.True(t, updated.IsEdited)
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.After(c.CreatedAt))
	assert.Equal(t, models.ModerationApproved, updated.ModerationStatus)

	_, err = env.comments.Update(ctx, "cmt-missing", "text")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = env.comments.Update(ctx, c.ID, "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

// Scenario: pending comment becomes visible once approved
func TestModerationMakesCommentVisible(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c1 := env.comment(t, alice, nil)
	assert.Empty(t, env.listIDs(t, ListCommentsQuery{PostID: "post-1"}))

	_, err := env.comments.Moderate(ctx, c1.ID, models.ModerationApproved, moderator)
	require.NoError(t, err)
	assert.Equal(t, []string{c1.ID}, env.listIDs(t, ListCommentsQuery{PostID: "post-1", Sort: models.SortNewest}))

	m, err := env.metrics.Get(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, 1, m.CommentCount)

	// un-approving drops it from listings and counts
	_, err = env.comments.Moderate(ctx, c1.ID, models.ModerationPending, moderator)
	require.NoError(t, err)
	assert.Empty(t, env.listIDs(t, ListCommentsQuery{PostID: "post-1"}))
	m, err = env.metrics.Get(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, 0, m.CommentCount)
}

func TestModerationNotifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := env.comment(t, alice, nil)

	_, err := env.comments.Moderate(ctx, c.ID, models.ModerationSpam, moderator)
	require.NoError(t, err)
	_, err = env.comments.Moderate(ctx, c.ID, models.ModerationPending, moderator)
	require.NoError(t, err)
	notifications, err := env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, notifications)

	_, err = env.comments.Moderate(ctx, c.ID, models.ModerationRejected, moderator)
	require.NoError(t, err)
	_, err = env.comments.Moderate(ctx, c.ID, models.ModerationApproved, moderator)
	require.NoError(t, err)

	notifications, err = env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, models.NotificationModeration, notifications[0].Type)
	assert.Equal(t, "Your comment on \"Getting Started\" was approved", notifications[0].Message)
	assert.Equal(t, "Your comment on \"Getting Started\" was rejected", notifications[1].Message)
	assert.Equal(t, moderator.ID, notifications[0].ActorID)
	assert.Equal(t, "Getting Started", notifications[0].PostTitle)

	_, err = env.comments.Moderate(ctx, c.ID, "bogus", moderator)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = env.comments.Moderate(ctx, "cmt-missing", models.ModerationApproved, moderator)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// Scenario: reply counts track live children and self replies are silent
func TestReplyCountAndNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c1 := env.approved(t, alice, nil)

	self := env.comment(t, alice, &c1.ID)
	assert.Equal(t, 1, env.get(t, c1.ID).ReplyCount)
	notifications, err := env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	for _, n := range notifications {
		assert.NotEqual(t, models.NotificationReply, n.Type)
	}

	c2 := env.comment(t, bob, &c1.ID)
	assert.Equal(t, 2, env.get(t, c1.ID).ReplyCount)

	notifications, err = env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	var replies []models.CommentNotification
	for _, n := range notifications {
		if n.Type == models.NotificationReply {
			replies = append(replies, n)
		}
	}
	require.Len(t, replies, 1)
	assert.Equal(t, c2.ID, replies[0].CommentID)
	assert.Equal(t, c1.ID, *replies[0].ParentCommentID)
	assert.Equal(t, "Bob replied to your comment on \"Getting Started\"", replies[0].Message)

	require.NoError(t, env.comments.Delete(ctx, c2.ID))
	assert.Equal(t, 1, env.get(t, c1.ID).ReplyCount)
	require.NoError(t, env.comments.Delete(ctx, self.ID))
	assert.Equal(t, 0, env.get(t, c1.ID).ReplyCount)

	// the reply notification went with the deleted reply
	notifications, err = env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	for _, n := range notifications {
		assert.NotEqual(t, c2.ID, n.CommentID)
	}
}

// Scenario: deleting a root removes the whole thread and its references
func TestDeleteCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c1 := env.approved(t, alice, nil)
	c2 := env.approved(t, bob, &c1.ID)
	c3 := env.approved(t, alice, &c2.ID)

	for _, c := range []*models.Comment{c1, c2, c3} {
		_, err := env.reactions.Set(ctx, models.CommentTarget(c.ID), bob, models.ReactionLike)
		require.NoError(t, err)
	}
	_, err := env.reactions.Set(ctx, models.PostTarget("post-1"), bob, models.ReactionLove)
	require.NoError(t, err)

	h, err := env.highlights.Create(ctx, CreateHighlightInput{PostID: "post-1", User: alice, Text: "span", StartOffset: 0, EndOffset: 4})
	require.NoError(t, err)
	seeded, err := env.comments.Create(ctx, CreateCommentInput{PostID: "post-1", Content: "seeded", Author: alice, ParentID: &c3.ID, HighlightID: &h.ID})
	require.NoError(t, err)

	require.NoError(t, env.comments.Delete(ctx, c1.ID))

	deleted := map[string]struct{}{c1.ID: {}, c2.ID: {}, c3.ID: {}, seeded.ID: {}}
	err = env.store.View(ctx, func(tx repository.Tx) error {
		remaining, err := tx.ListComments(ctx, repository.CommentFilter{PostID: "post-1", AnyParent: true})
		require.NoError(t, err)
		assert.Empty(t, remaining)

		for id := range deleted {
			reactions, err := tx.ListReactions(ctx, models.CommentTarget(id))
			require.NoError(t, err)
			assert.Empty(t, reactions)
		}

		for _, user := range []string{alice.ID, bob.ID} {
			notifications, err := tx.ListNotifications(ctx, user)
			require.NoError(t, err)
			for _, n := range notifications {
				assert.False(t, n.References(deleted), "notification %s references a deleted comment", n.ID)
			}
		}

		highlights, err := tx.ListHighlights(ctx, "post-1")
		require.NoError(t, err)
		require.Len(t, highlights, 1)
		assert.Nil(t, highlights[0].CommentID)
		return nil
	})
	require.NoError(t, err)

	// post-level reactions survive and metrics reflect the empty thread
	m, err := env.metrics.Get(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, 0, m.CommentCount)
	assert.Equal(t, 1, m.ReactionCounts[models.ReactionLove])
	assert.Equal(t, 1, m.HighlightCount)

	assert.ErrorIs(t, env.comments.Delete(ctx, c1.ID), models.ErrNotFound)
}

func TestDeleteMiddleOfThread(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c1 := env.approved(t, alice, nil)
	c2 := env.approved(t, bob, &c1.ID)
	env.approved(t, alice, &c2.ID)
	sibling := env.approved(t, bob, &c1.ID)

	require.NoError(t, env.comments.Delete(ctx, c2.ID))

	root := env.get(t, c1.ID)
	assert.Equal(t, 1, root.ReplyCount)
	assert.Equal(t, []string{sibling.ID}, env.listIDs(t, ListCommentsQuery{PostID: "post-1", ParentID: &c1.ID}))

	m, err := env.metrics.Get(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, 2, m.CommentCount)
}

func TestReplyCountConsistency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.comment(t, alice, nil)
	var live []*models.Comment
	for i := 0; i < 6; i++ {
		parent := root
		if i > 0 && i%2 == 0 {
			parent = live[i-1]
		}
		live = append(live, env.comment(t, bob, &parent.ID))
	}
	require.NoError(t, env.comments.Delete(ctx, live[1].ID))
	require.NoError(t, env.comments.Delete(ctx, live[4].ID))

	err := env.store.View(ctx, func(tx repository.Tx) error {
		all, err := tx.ListComments(ctx, repository.CommentFilter{PostID: "post-1", AnyParent: true})
		require.NoError(t, err)
		children := make(map[string]int)
		for _, c := range all {
			if c.ParentID != nil {
				children[*c.ParentID]++
			}
		}
		for _, c := range all {
			assert.Equal(t, children[c.ID], c.ReplyCount, "comment %s", c.ID)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestListCommentsSorting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.approved(t, alice, nil)
	second := env.approved(t, bob, nil)
	third := env.approved(t, alice, nil)
	env.comment(t, bob, nil) // pending, never listed

	assert.Equal(t, []string{third.ID, second.ID, first.ID}, env.listIDs(t, ListCommentsQuery{PostID: "post-1"}))
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, env.listIDs(t, ListCommentsQuery{PostID: "post-1", Sort: models.SortOldest}))

	// popular: reactions, then replies, then newest
	_, err := env.reactions.Set(ctx, models.CommentTarget(first.ID), alice, models.ReactionLike)
	require.NoError(t, err)
	_, err = env.reactions.Set(ctx, models.CommentTarget(first.ID), bob, models.ReactionWow)
	require.NoError(t, err)
	_, err = env.reactions.Set(ctx, models.CommentTarget(second.ID), alice, models.ReactionSad)
	require.NoError(t, err)
	env.comment(t, alice, &third.ID)
	_, err = env.reactions.Set(ctx, models.CommentTarget(third.ID), bob, models.ReactionHaha)
	require.NoError(t, err)

	assert.Equal(t, []string{first.ID, third.ID, second.ID}, env.listIDs(t, ListCommentsQuery{PostID: "post-1", Sort: models.SortPopular}))

	_, err = env.comments.List(ctx, ListCommentsQuery{PostID: "post-1", Sort: "random"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestListCommentsSequenceIsRestartable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.approved(t, alice, nil)
	env.approved(t, bob, nil)
	_, err := env.reactions.Set(ctx, models.CommentTarget(a.ID), bob, models.ReactionLike)
	require.NoError(t, err)

	seq, err := env.comments.List(ctx, ListCommentsQuery{PostID: "post-1", Sort: models.SortOldest})
	require.NoError(t, err)

	firstPass := slices.Collect(seq)
	secondPass := slices.Collect(seq)
	require.Len(t, firstPass, 2)
	assert.Equal(t, firstPass, secondPass)
	require.Len(t, firstPass[0].Reactions, 1)
	assert.Equal(t, models.ReactionLike, firstPass[0].Reactions[0].Type)

	// early stop
	count := 0
	for range seq {
		count++
		break
	}
	assert.Equal(t, 1, count)

	// mutating a yielded value never leaks into the snapshot
	firstPass[0].Reactions[0].Type = models.ReactionAngry
	again := slices.Collect(seq)
	assert.Equal(t, models.ReactionLike, again[0].Reactions[0].Type)
}

func TestListForModeration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pending := env.comment(t, alice, nil)
	env.approved(t, bob, nil)
	spam := env.comment(t, bob, nil)
	_, err := env.comments.Moderate(ctx, spam.ID, models.ModerationSpam, moderator)
	require.NoError(t, err)

	queue, err := env.comments.ListForModeration(ctx, "post-1")
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, pending.ID, queue[0].ID)
	assert.Equal(t, spam.ID, queue[1].ID)
}

func TestGetHidesUnapprovedComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pending := env.comment(t, alice, nil)
	_, err := env.comments.Get(ctx, pending.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = env.comments.Moderate(ctx, pending.ID, models.ModerationSpam, moderator)
	require.NoError(t, err)
	_, err = env.comments.Get(ctx, pending.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = env.reactions.List(ctx, models.CommentTarget(pending.ID))
	assert.ErrorIs(t, err, models.ErrNotFound)

	audited, err := env.comments.GetForModeration(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationSpam, audited.ModerationStatus)

	_, err = env.comments.Moderate(ctx, pending.ID, models.ModerationApproved, moderator)
	require.NoError(t, err)
	got, err := env.comments.Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, got.ID)
}
