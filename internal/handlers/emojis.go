package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"emoji-backend/internal/models"
	"emoji-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EmojiHandler struct {
	emojiService *services.EmojiService
	logger       *zap.Logger
}

func NewEmojiHandler(emojiService *services.EmojiService, logger *zap.Logger) *EmojiHandler {
	return &EmojiHandler{
		emojiService: emojiService,
		logger:       logger,
	}
}

// CreateEmoji godoc
// @Summary     Request a new emoji
// @Description Validates and safety-checks the prompt, stores the request and submits generation. Prompts rejected by the safety check are stored flagged and still return an id.
// @Tags        emojis
// @Accept      json
// @Produce     json
// @Param       request body models.CreateEmojiRequest true "Prompt and form token"
// @Success     201 {object} models.CreateEmojiResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /api/emojis [post]
func (h *EmojiHandler) CreateEmoji(c *gin.Context) {
	var req models.CreateEmojiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	emoji, err := h.emojiService.Create(c.Request.Context(), req)
	if err != nil {
		if emoji != nil && errors.Is(err, models.ErrDependencyUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"id":      emoji.ID.String(),
				"error":   "generation unavailable",
				"message": err.Error(),
			})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateEmojiResponse{ID: emoji.ID.String()})
}

// GetEmoji godoc
// @Summary     Get an emoji
// @Description Returns the current state of an emoji request
// @Tags        emojis
// @Produce     json
// @Param       id path string true "Emoji ID"
// @Success     200 {object} models.GetEmojiResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/emojis/{id} [get]
func (h *EmojiHandler) GetEmoji(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid emoji id"})
		return
	}

	emoji, err := h.emojiService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.GetEmojiResponse{Emoji: models.NewEmojiResponse(emoji)})
}

// ListEmojis godoc
// @Summary     List emojis
// @Description Lists emojis that are not flagged and have no error
// @Tags        emojis
// @Produce     json
// @Param       take           query int    false "Page size (default 100, max 1000)"
// @Param       skip           query int    false "Offset"
// @Param       orderBy        query string false "createdAt or updatedAt"
// @Param       orderDirection query string false "asc or desc"
// @Success     200 {object} models.EmojiListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/emojis [get]
func (h *EmojiHandler) ListEmojis(c *gin.Context) {
	h.list(c, false)
}

// ListFeatured godoc
// @Summary     List featured emojis
// @Description Lists emojis marked as featured
// @Tags        emojis
// @Produce     json
// @Param       take query int false "Page size (default 100, max 1000)"
// @Param       skip query int false "Offset"
// @Success     200 {object} models.EmojiListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/emojis/featured [get]
func (h *EmojiHandler) ListFeatured(c *gin.Context) {
	h.list(c, true)
}

func (h *EmojiHandler) list(c *gin.Context, featuredOnly bool) {
	opts, err := parseListOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid query", Message: err.Error()})
		return
	}
	opts.FeaturedOnly = featuredOnly

	emojis, err := h.emojiService.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := models.EmojiListResponse{Emojis: make([]models.EmojiSummary, 0, len(emojis))}
	for _, e := range emojis {
		resp.Emojis = append(resp.Emojis, models.EmojiSummary{ID: e.ID.String(), UpdatedAt: e.UpdatedAt})
	}
	c.JSON(http.StatusOK, resp)
}

func parseListOptions(c *gin.Context) (models.ListOptions, error) {
	opts := models.ListOptions{
		OrderBy:        c.Query("orderBy"),
		OrderDirection: c.Query("orderDirection"),
	}
	if v := c.Query("take"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("take must be an integer")
		}
		opts.Take = n
	}
	if v := c.Query("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("skip must be an integer")
		}
		opts.Skip = n
	}
	return opts, nil
}

// CountEmojis godoc
// @Summary     Count emojis
// @Description Returns the number of emojis that are not flagged and have no error
// @Tags        emojis
// @Produce     json
// @Success     200 {object} models.CountResponse
// @Router      /api/emojis/count [get]
func (h *EmojiHandler) CountEmojis(c *gin.Context) {
	count, err := h.emojiService.Count(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.CountResponse{Count: count})
}
