package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"engagehub/internal/core"
	"engagehub/pkg/models"
	"engagehub/pkg/utils"
)

// listComments returns one page of approved comments under a post or parent
func (s *Server) listComments(c *gin.Context) {
	page, err := utils.ParsePagination(
		c.Query("limit"), c.Query("offset"),
		s.config.Engagement.DefaultPageSize, s.config.Engagement.MaxPageSize,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	parentID := c.Query("parent_id")
	seq, err := s.svc.Comments.List(c.Request.Context(), core.ListCommentsQuery{
		PostID:   c.Param("post_id"),
		ParentID: utils.OptionalString(&parentID),
		Sort:     models.CommentSort(c.Query("sort")),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	var all []models.Comment
	for comment := range seq {
		all = append(all, comment)
	}
	start, end, hasMore := page.Window(len(all))

	respond(c, http.StatusOK, "", models.PaginatedResponse[models.Comment]{
		Data: append([]models.Comment{}, all[start:end]...),
		Meta: models.PaginationMeta{Limit: page.Limit, Offset: page.Offset, HasMore: hasMore},
	})
}

// createComment posts a top-level comment or a reply
func (s *Server) createComment(c *gin.Context) {
	var req models.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := s.svc.Comments.Create(c.Request.Context(), core.CreateCommentInput{
		PostID:      c.Param("post_id"),
		Content:     req.Content,
		Author:      actor(c),
		ParentID:    utils.OptionalString(req.ParentID),
		HighlightID: utils.OptionalString(req.HighlightID),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "comment submitted for moderation", comment)
}

func (s *Server) getComment(c *gin.Context) {
	comment, err := s.svc.Comments.Get(c.Request.Context(), c.Param("comment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", comment)
}

// getCommentForModeration returns the comment whatever its moderation status
func (s *Server) getCommentForModeration(c *gin.Context) {
	comment, err := s.svc.Comments.GetForModeration(c.Request.Context(), c.Param("comment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", comment)
}

func (s *Server) updateComment(c *gin.Context) {
	var req models.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := s.svc.Comments.Update(c.Request.Context(), c.Param("comment_id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "comment updated", comment)
}

// deleteComment removes the comment and every reply beneath it
func (s *Server) deleteComment(c *gin.Context) {
	if err := s.svc.Comments.Delete(c.Request.Context(), c.Param("comment_id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "comment deleted", nil)
}

func (s *Server) moderateComment(c *gin.Context) {
	var req models.ModerateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := s.svc.Comments.Moderate(c.Request.Context(), c.Param("comment_id"), req.Status, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "comment "+string(comment.ModerationStatus), comment)
}

func (s *Server) moderationQueue(c *gin.Context) {
	comments, err := s.svc.Comments.ListForModeration(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	respond(c, http.StatusOK, "", comments)
}
