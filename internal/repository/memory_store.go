package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"engagehub/pkg/models"
)

var errReadOnly = errors.New("write attempted in read-only transaction")

// MemoryStore keeps every record in process memory. Writers hold one
// store-wide lock for the whole transaction, which is a coarser form of the
// per-post critical section; an undo journal restores state on failure.
type MemoryStore struct {
	mu sync.RWMutex

	comments      map[string]*models.Comment
	reactions     map[string]*models.Reaction
	reactionIndex map[string]string // userID|target key -> reaction id
	highlights    map[string]*models.Highlight
	feedback      map[string]*models.ContentFeedback // post|user -> feedback
	notifications map[string]*models.CommentNotification
	metrics       map[string]*models.EngagementMetrics
	engagements   []*models.UserEngagement
	engagementSet map[string]struct{} // user|post|type
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		comments:      make(map[string]*models.Comment),
		reactions:     make(map[string]*models.Reaction),
		reactionIndex: make(map[string]string),
		highlights:    make(map[string]*models.Highlight),
		feedback:      make(map[string]*models.ContentFeedback),
		notifications: make(map[string]*models.CommentNotification),
		metrics:       make(map[string]*models.EngagementMetrics),
		engagementSet: make(map[string]struct{}),
	}
}

// WithTransaction runs fn under the write lock and rolls back on error or panic
func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(tx Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// View runs fn under the read lock
func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&memTx{store: s, readOnly: true})
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() {}

type memTx struct {
	store    *MemoryStore
	readOnly bool
	undo     []func()
}

func (tx *memTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *memTx) writable() error {
	if tx.readOnly {
		return errReadOnly
	}
	return nil
}

// put records the previous value of m[k] before overwriting it
func put[V any](tx *memTx, m map[string]V, k string, v V) {
	old, had := m[k]
	tx.undo = append(tx.undo, func() {
		if had {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
	m[k] = v
}

// remove records the previous value of m[k] before deleting it
func remove[V any](tx *memTx, m map[string]V, k string) {
	old, had := m[k]
	if !had {
		return
	}
	tx.undo = append(tx.undo, func() { m[k] = old })
	delete(m, k)
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func reactionKey(target models.ReactionTarget, userID string) string {
	return userID + "|" + target.Key()
}

func feedbackKey(postID, userID string) string {
	return postID + "|" + userID
}

func engagementKey(userID, postID string, kind models.EngagementType) string {
	return userID + "|" + postID + "|" + string(kind)
}

// LockPost is a no-op: the write lock already covers every post
func (tx *memTx) LockPost(ctx context.Context, postID string) error {
	return nil
}

// ==== comments ====

func (tx *memTx) InsertComment(ctx context.Context, comment *models.Comment) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, exists := tx.store.comments[comment.ID]; exists {
		return models.NewConflictError("insert_comment", errors.New("duplicate id"))
	}
	stored := comment.Clone()
	stored.Reactions = nil
	put(tx, tx.store.comments, comment.ID, stored)
	return nil
}

func (tx *memTx) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	c, ok := tx.store.comments[id]
	if !ok {
		return nil, models.NewNotFoundError("comment", id)
	}
	return c.Clone(), nil
}

func (tx *memTx) UpdateComment(ctx context.Context, comment *models.Comment) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, ok := tx.store.comments[comment.ID]; !ok {
		return models.NewNotFoundError("comment", comment.ID)
	}
	stored := comment.Clone()
	stored.Reactions = nil
	put(tx, tx.store.comments, comment.ID, stored)
	return nil
}

func (tx *memTx) DeleteComments(ctx context.Context, ids []string) error {
	if err := tx.writable(); err != nil {
		return err
	}
	for _, id := range ids {
		remove(tx, tx.store.comments, id)
	}
	return nil
}

func (tx *memTx) ListComments(ctx context.Context, filter CommentFilter) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range tx.store.comments {
		if filter.matches(c) {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (tx *memTx) ChildCommentIDs(ctx context.Context, parentID string) ([]string, error) {
	var ids []string
	for _, c := range tx.store.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ==== reactions ====

func (tx *memTx) GetReaction(ctx context.Context, target models.ReactionTarget, userID string) (*models.Reaction, error) {
	id, ok := tx.store.reactionIndex[reactionKey(target, userID)]
	if !ok {
		return nil, models.NewNotFoundError("reaction", target.Key())
	}
	r := *tx.store.reactions[id]
	return &r, nil
}

func (tx *memTx) InsertReaction(ctx context.Context, reaction *models.Reaction) error {
	if err := tx.writable(); err != nil {
		return err
	}
	key := reactionKey(reaction.Target, reaction.UserID)
	if _, exists := tx.store.reactionIndex[key]; exists {
		return models.NewConflictError("insert_reaction", errors.New("reaction already exists for user and target"))
	}
	r := *reaction
	put(tx, tx.store.reactions, r.ID, &r)
	put(tx, tx.store.reactionIndex, key, r.ID)
	return nil
}

func (tx *memTx) UpdateReaction(ctx context.Context, reaction *models.Reaction) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, ok := tx.store.reactions[reaction.ID]; !ok {
		return models.NewNotFoundError("reaction", reaction.ID)
	}
	r := *reaction
	put(tx, tx.store.reactions, r.ID, &r)
	return nil
}

func (tx *memTx) DeleteReaction(ctx context.Context, id string) error {
	if err := tx.writable(); err != nil {
		return err
	}
	r, ok := tx.store.reactions[id]
	if !ok {
		return models.NewNotFoundError("reaction", id)
	}
	remove(tx, tx.store.reactionIndex, reactionKey(r.Target, r.UserID))
	remove(tx, tx.store.reactions, id)
	return nil
}

func (tx *memTx) ListReactions(ctx context.Context, targets ...models.ReactionTarget) ([]*models.Reaction, error) {
	keys := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		keys[t.Key()] = struct{}{}
	}
	var out []*models.Reaction
	for _, r := range tx.store.reactions {
		if _, ok := keys[r.Target.Key()]; ok {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (tx *memTx) DeleteCommentReactions(ctx context.Context, commentIDs []string) (int, error) {
	if err := tx.writable(); err != nil {
		return 0, err
	}
	ids := idSet(commentIDs)
	var doomed []string
	for id, r := range tx.store.reactions {
		if !r.Target.IsComment() {
			continue
		}
		if _, ok := ids[r.Target.ID()]; ok {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		if err := tx.DeleteReaction(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(doomed), nil
}

// ==== highlights ====

func (tx *memTx) InsertHighlight(ctx context.Context, highlight *models.Highlight) error {
	if err := tx.writable(); err != nil {
		return err
	}
	put(tx, tx.store.highlights, highlight.ID, highlight.Clone())
	return nil
}

func (tx *memTx) GetHighlight(ctx context.Context, id string) (*models.Highlight, error) {
	h, ok := tx.store.highlights[id]
	if !ok {
		return nil, models.NewNotFoundError("highlight", id)
	}
	return h.Clone(), nil
}

func (tx *memTx) UpdateHighlight(ctx context.Context, highlight *models.Highlight) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, ok := tx.store.highlights[highlight.ID]; !ok {
		return models.NewNotFoundError("highlight", highlight.ID)
	}
	put(tx, tx.store.highlights, highlight.ID, highlight.Clone())
	return nil
}

func (tx *memTx) ListHighlights(ctx context.Context, postID string) ([]*models.Highlight, error) {
	var out []*models.Highlight
	for _, h := range tx.store.highlights {
		if h.PostID == postID {
			out = append(out, h.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (tx *memTx) UnlinkHighlights(ctx context.Context, commentIDs []string) (int, error) {
	if err := tx.writable(); err != nil {
		return 0, err
	}
	ids := idSet(commentIDs)
	n := 0
	for id, h := range tx.store.highlights {
		if h.CommentID == nil {
			continue
		}
		if _, ok := ids[*h.CommentID]; ok {
			unlinked := h.Clone()
			unlinked.CommentID = nil
			put(tx, tx.store.highlights, id, unlinked)
			n++
		}
	}
	return n, nil
}

// ==== feedback ====

func (tx *memTx) GetFeedback(ctx context.Context, postID, userID string) (*models.ContentFeedback, error) {
	f, ok := tx.store.feedback[feedbackKey(postID, userID)]
	if !ok {
		return nil, models.NewNotFoundError("feedback", feedbackKey(postID, userID))
	}
	return f.Clone(), nil
}

func (tx *memTx) InsertFeedback(ctx context.Context, feedback *models.ContentFeedback) error {
	if err := tx.writable(); err != nil {
		return err
	}
	key := feedbackKey(feedback.PostID, feedback.UserID)
	if _, exists := tx.store.feedback[key]; exists {
		return models.NewConflictError("insert_feedback", errors.New("feedback already exists for user and post"))
	}
	put(tx, tx.store.feedback, key, feedback.Clone())
	return nil
}

func (tx *memTx) UpdateFeedback(ctx context.Context, feedback *models.ContentFeedback) error {
	if err := tx.writable(); err != nil {
		return err
	}
	key := feedbackKey(feedback.PostID, feedback.UserID)
	if _, ok := tx.store.feedback[key]; !ok {
		return models.NewNotFoundError("feedback", key)
	}
	put(tx, tx.store.feedback, key, feedback.Clone())
	return nil
}

func (tx *memTx) ListFeedback(ctx context.Context, postID string) ([]*models.ContentFeedback, error) {
	var out []*models.ContentFeedback
	for _, f := range tx.store.feedback {
		if f.PostID == postID {
			out = append(out, f.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ==== notifications ====

func (tx *memTx) InsertNotification(ctx context.Context, notification *models.CommentNotification) error {
	if err := tx.writable(); err != nil {
		return err
	}
	put(tx, tx.store.notifications, notification.ID, notification.Clone())
	return nil
}

func (tx *memTx) GetNotification(ctx context.Context, id string) (*models.CommentNotification, error) {
	n, ok := tx.store.notifications[id]
	if !ok {
		return nil, models.NewNotFoundError("notification", id)
	}
	return n.Clone(), nil
}

func (tx *memTx) UpdateNotification(ctx context.Context, notification *models.CommentNotification) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, ok := tx.store.notifications[notification.ID]; !ok {
		return models.NewNotFoundError("notification", notification.ID)
	}
	put(tx, tx.store.notifications, notification.ID, notification.Clone())
	return nil
}

func (tx *memTx) ListNotifications(ctx context.Context, userID string) ([]*models.CommentNotification, error) {
	var out []*models.CommentNotification
	for _, n := range tx.store.notifications {
		if n.UserID == userID {
			out = append(out, n.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (tx *memTx) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	if err := tx.writable(); err != nil {
		return 0, err
	}
	n := 0
	for id, notif := range tx.store.notifications {
		if notif.UserID != userID || notif.IsRead {
			continue
		}
		read := notif.Clone()
		read.IsRead = true
		put(tx, tx.store.notifications, id, read)
		n++
	}
	return n, nil
}

func (tx *memTx) DeleteCommentNotifications(ctx context.Context, commentIDs []string) (int, error) {
	if err := tx.writable(); err != nil {
		return 0, err
	}
	ids := idSet(commentIDs)
	var doomed []string
	for id, n := range tx.store.notifications {
		if n.References(ids) {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		remove(tx, tx.store.notifications, id)
	}
	return len(doomed), nil
}

// ==== metrics & engagement log ====

func (tx *memTx) GetMetrics(ctx context.Context, postID string) (*models.EngagementMetrics, error) {
	m, ok := tx.store.metrics[postID]
	if !ok {
		return nil, models.NewNotFoundError("metrics", postID)
	}
	return m.Clone(), nil
}

func (tx *memTx) SaveMetrics(ctx context.Context, metrics *models.EngagementMetrics) error {
	if err := tx.writable(); err != nil {
		return err
	}
	put(tx, tx.store.metrics, metrics.PostID, metrics.Clone())
	return nil
}

func (tx *memTx) AppendEngagement(ctx context.Context, engagement *models.UserEngagement) error {
	if err := tx.writable(); err != nil {
		return err
	}
	e := *engagement
	n := len(tx.store.engagements)
	tx.store.engagements = append(tx.store.engagements, &e)
	tx.undo = append(tx.undo, func() { tx.store.engagements = tx.store.engagements[:n] })

	key := engagementKey(e.UserID, e.PostID, e.Type)
	if _, seen := tx.store.engagementSet[key]; !seen {
		tx.store.engagementSet[key] = struct{}{}
		tx.undo = append(tx.undo, func() { delete(tx.store.engagementSet, key) })
	}
	return nil
}

func (tx *memTx) HasEngagement(ctx context.Context, userID, postID string, kind models.EngagementType) (bool, error) {
	_, ok := tx.store.engagementSet[engagementKey(userID, postID, kind)]
	return ok, nil
}

// Engagements returns a copy of the engagement log, oldest first
func (s *MemoryStore) Engagements() []models.UserEngagement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.UserEngagement, 0, len(s.engagements))
	for _, e := range s.engagements {
		out = append(out, *e)
	}
	return out
}
