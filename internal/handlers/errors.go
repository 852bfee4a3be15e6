package handlers

import (
	"errors"
	"net/http"

	"emoji-backend/internal/middleware"
	"emoji-backend/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses. Unclassified errors
// are logged and reported as 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, label := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		status, label = http.StatusBadRequest, "invalid input"
	case errors.Is(err, models.ErrInvalidRequest):
		status, label = http.StatusBadRequest, "invalid request"
	case errors.Is(err, models.ErrNotFound):
		status, label = http.StatusNotFound, "emoji not found"
	case errors.Is(err, models.ErrOutOfOrder):
		status, label = http.StatusConflict, "callback out of order"
	case errors.Is(err, models.ErrStateConflict):
		status, label = http.StatusConflict, "state conflict"
	case errors.Is(err, models.ErrDependencyUnavailable):
		status, label = http.StatusServiceUnavailable, "dependency unavailable"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("trace_id", middleware.GetTraceID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	c.JSON(status, models.ErrorResponse{Error: label, Message: err.Error()})
}
