package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"engagehub/pkg/models"
)

func (s *Server) listNotifications(c *gin.Context) {
	list, err := s.svc.Notifications.List(c.Request.Context(), actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.CommentNotification{}
	}
	respond(c, http.StatusOK, "", list)
}

func (s *Server) unreadCount(c *gin.Context) {
	n, err := s.svc.Notifications.UnreadCount(c.Request.Context(), actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", models.UnreadCountResponse{Unread: n})
}

func (s *Server) markNotificationRead(c *gin.Context) {
	changed, err := s.svc.Notifications.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"changed": changed})
}

func (s *Server) markAllNotificationsRead(c *gin.Context) {
	n, err := s.svc.Notifications.MarkAllRead(c.Request.Context(), actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", models.MarkAllReadResponse{Updated: n})
}
