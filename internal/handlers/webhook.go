package handlers

import (
	"io"
	"net/http"

	"emoji-backend/internal/middleware"
	"emoji-backend/internal/models"
	"emoji-backend/internal/pipeline"
	"emoji-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxCallbackBody = 1 << 20

type WebhookHandler struct {
	pipelineService *services.PipelineService
	logger          *zap.Logger
}

func NewWebhookHandler(pipelineService *services.PipelineService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		pipelineService: pipelineService,
		logger:          logger,
	}
}

// SaveEmoji godoc
// @Summary     Generation callback
// @Description Receives the generation prediction. Stores the original image and submits background removal, or flags the emoji when the prediction failed. Requires the callback token issued at submission.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       id    query string true "Emoji ID"
// @Param       token query string true "Callback token"
// @Success     200 {object} models.WebhookResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /api/webhook/save-emoji [post]
func (h *WebhookHandler) SaveEmoji(c *gin.Context) {
	h.handle(c, pipeline.StageGeneration)
}

// RemoveBackground godoc
// @Summary     Background removal callback
// @Description Receives the background removal prediction and completes or flags the emoji. Requires the callback token issued at submission.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       id    query string true "Emoji ID"
// @Param       token query string true "Callback token"
// @Success     200 {object} models.WebhookResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /api/webhook/remove-background [post]
func (h *WebhookHandler) RemoveBackground(c *gin.Context) {
	h.handle(c, pipeline.StageBackgroundRemoval)
}

func (h *WebhookHandler) handle(c *gin.Context, stage pipeline.Stage) {
	value, exists := c.Get(middleware.EmojiIDKey)
	if !exists {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "emoji id not found"})
		return
	}
	id := value.(uuid.UUID)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	ev, err := pipeline.ParseCallback(stage, body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	action, err := h.pipelineService.HandleCallback(c.Request.Context(), id, ev)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := "ok"
	if action == pipeline.ActionIgnore {
		status = "ignored"
	}
	c.JSON(http.StatusOK, models.WebhookResponse{Status: status})
}
