package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"engagehub/internal/core"
	"engagehub/pkg/models"
	"engagehub/pkg/utils"
)

func (s *Server) setCommentReaction(c *gin.Context) {
	s.setReaction(c, models.CommentTarget(c.Param("comment_id")))
}

func (s *Server) setPostReaction(c *gin.Context) {
	s.setReaction(c, models.PostTarget(c.Param("post_id")))
}

// setReaction creates or replaces the caller's reaction on target
func (s *Server) setReaction(c *gin.Context, target models.ReactionTarget) {
	var req models.SetReactionRequest
	if !bindJSON(c, &req) {
		return
	}

	reaction, err := s.svc.Reactions.Set(c.Request.Context(), target, actor(c), req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", reaction)
}

func (s *Server) removeCommentReaction(c *gin.Context) {
	s.removeReaction(c, models.CommentTarget(c.Param("comment_id")))
}

func (s *Server) removePostReaction(c *gin.Context) {
	s.removeReaction(c, models.PostTarget(c.Param("post_id")))
}

func (s *Server) removeReaction(c *gin.Context, target models.ReactionTarget) {
	removed, err := s.svc.Reactions.Remove(c.Request.Context(), target, actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"removed": removed})
}

func (s *Server) listPostReactions(c *gin.Context) {
	s.listReactions(c, models.PostTarget(c.Param("post_id")))
}

func (s *Server) listCommentReactions(c *gin.Context) {
	s.listReactions(c, models.CommentTarget(c.Param("comment_id")))
}

func (s *Server) listReactions(c *gin.Context, target models.ReactionTarget) {
	reactions, err := s.svc.Reactions.List(c.Request.Context(), target)
	if err != nil {
		respondError(c, err)
		return
	}
	if reactions == nil {
		reactions = []models.Reaction{}
	}
	respond(c, http.StatusOK, "", reactions)
}

func (s *Server) createHighlight(c *gin.Context) {
	var req models.CreateHighlightRequest
	if !bindJSON(c, &req) {
		return
	}

	highlight, err := s.svc.Highlights.Create(c.Request.Context(), core.CreateHighlightInput{
		PostID:      c.Param("post_id"),
		User:        actor(c),
		Text:        req.Text,
		StartOffset: req.StartOffset,
		EndOffset:   req.EndOffset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "", highlight)
}

func (s *Server) listHighlights(c *gin.Context) {
	highlights, err := s.svc.Highlights.List(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if highlights == nil {
		highlights = []models.Highlight{}
	}
	respond(c, http.StatusOK, "", highlights)
}

// submitFeedback upserts the caller's rating of a post
func (s *Server) submitFeedback(c *gin.Context) {
	var req models.SubmitFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	feedback, err := s.svc.Feedback.Submit(c.Request.Context(), core.SubmitFeedbackInput{
		PostID:   c.Param("post_id"),
		User:     actor(c),
		Rating:   req.Rating,
		Feedback: utils.OptionalString(req.Feedback),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", feedback)
}

func (s *Server) getFeedback(c *gin.Context) {
	feedback, err := s.svc.Feedback.Get(c.Request.Context(), c.Param("post_id"), actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", feedback)
}
