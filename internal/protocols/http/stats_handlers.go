package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"engagehub/pkg/models"
)

// viewRequest is the optional body of a recorded view
type viewRequest struct {
	DurationMs *int64 `json:"duration_ms,omitempty"`
}

func (s *Server) getMetrics(c *gin.Context) {
	m, err := s.svc.Metrics.Get(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", m)
}

func (s *Server) refreshMetrics(c *gin.Context) {
	m, err := s.svc.Metrics.Refresh(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "metrics refreshed", m)
}

func (s *Server) recordView(c *gin.Context) {
	var req viewRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	var dwell *time.Duration
	if req.DurationMs != nil {
		if *req.DurationMs < 0 {
			respondError(c, models.NewValidationError("duration_ms", "duration must not be negative"))
			return
		}
		d := time.Duration(*req.DurationMs) * time.Millisecond
		dwell = &d
	}

	m, err := s.svc.Metrics.RecordView(c.Request.Context(), c.Param("post_id"), actor(c).ID, dwell)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", m)
}

func (s *Server) recordShare(c *gin.Context) {
	var req models.ShareRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	m, err := s.svc.Metrics.RecordShare(c.Request.Context(), c.Param("post_id"), actor(c).ID, req.Channel)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", m)
}
