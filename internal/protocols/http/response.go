package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"engagehub/pkg/logger"
	"engagehub/pkg/models"
	"engagehub/pkg/utils"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// respondError maps a service error onto the response envelope
func respondError(c *gin.Context, err error) {
	if utils.IsContextError(err) {
		logger.WithRequestID(c.Request.Context()).
			WithField("path", c.FullPath()).
			WithField("error", err.Error()).
			Warn("request abandoned")
		abortWithError(c, models.NewHTTPError(models.ErrCodeTimeout, "request cancelled or timed out", http.StatusGatewayTimeout))
		return
	}

	appErr := models.ToAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.WithRequestID(c.Request.Context()).
			WithField("path", c.FullPath()).
			WithField("error", err.Error()).
			Error("request failed")
	}
	abortWithError(c, appErr)
}

func abortWithError(c *gin.Context, appErr *models.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToHTTPError())
}

// bindJSON decodes the request body, answering 400 on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, models.NewHTTPError(models.ErrCodeBadRequest, "invalid request body: "+err.Error(), http.StatusBadRequest))
		return false
	}
	return true
}

// actor is only called behind RequireActor
func actor(c *gin.Context) models.Actor {
	a, _ := GetActor(c)
	return a
}
