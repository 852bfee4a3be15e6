package services

import (
	"context"

	"emoji-backend/internal/models"
	"github.com/google/uuid"
)

// RecordStore owns every persisted emoji request. UpdateEmoji is a
// conditional write keyed on the expected current state.
type RecordStore interface {
	CreateEmoji(ctx context.Context, e *models.Emoji) error
	GetEmoji(ctx context.Context, id uuid.UUID) (*models.Emoji, error)
	UpdateEmoji(ctx context.Context, id uuid.UUID, expected models.State, upd models.EmojiUpdate) (*models.Emoji, error)
	ListEmojis(ctx context.Context, opts models.ListOptions) ([]models.Emoji, error)
	CountEmojis(ctx context.Context) (int, error)
}

// BlobStore stores image bytes under a key and returns their public URL.
// Putting the same key twice overwrites.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// GenerationClient submits asynchronous provider jobs. Results arrive later
// through the stage callbacks, never as return values.
type GenerationClient interface {
	SubmitGeneration(ctx context.Context, id uuid.UUID, prompt string) error
	SubmitBackgroundRemoval(ctx context.Context, id uuid.UUID, imageURL string) error
	DownloadFile(ctx context.Context, url string) ([]byte, error)
}

// EmojiCache is an optional read-through cache for terminal records.
type EmojiCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Emoji, error)
	Set(ctx context.Context, e *models.Emoji) error
}

// FormTokenVerifier checks the anti-automation token sent with the
// creation form.
type FormTokenVerifier interface {
	VerifyFormToken(token string) error
}
