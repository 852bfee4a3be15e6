package models

import "time"

type CreateEmojiResponse struct {
	ID string `json:"id"`
}

type EmojiResponse struct {
	ID              string    `json:"id"`
	Prompt          string    `json:"prompt"`
	State           string    `json:"state"`
	OriginalURL     string    `json:"originalUrl,omitempty"`
	NoBackgroundURL string    `json:"noBackgroundUrl,omitempty"`
	SafetyRating    int       `json:"safetyRating"`
	IsFlagged       bool      `json:"isFlagged"`
	IsFeatured      bool      `json:"isFeatured"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type GetEmojiResponse struct {
	Emoji EmojiResponse `json:"emoji"`
}

type EmojiSummary struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type EmojiListResponse struct {
	Emojis []EmojiSummary `json:"emojis"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type WebhookResponse struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// NewEmojiResponse flattens the nullable columns for JSON output.
func NewEmojiResponse(e *Emoji) EmojiResponse {
	return EmojiResponse{
		ID:              e.ID.String(),
		Prompt:          e.Prompt,
		State:           string(e.State),
		OriginalURL:     e.OriginalURL.String,
		NoBackgroundURL: e.NoBackgroundURL.String,
		SafetyRating:    e.SafetyRating,
		IsFlagged:       e.IsFlagged,
		IsFeatured:      e.IsFeatured,
		Error:           e.Error.String,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
