package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"emoji-backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const emojiKeyPrefix = "emoji:"

// EmojiCache holds records that reached a terminal state. Their state and
// URLs never change again, but is_featured can still be toggled by an
// operator, so a cached copy may show a stale is_featured until the TTL
// expires. In-flight records are not cached.
type EmojiCache struct {
	client *redis.Client
	ttl    time.Duration
}

func Connect(addr string, ttl time.Duration) (*EmojiCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     10,
		MinIdleConns: 2,
		PoolTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &EmojiCache{client: client, ttl: ttl}, nil
}

func key(id uuid.UUID) string {
	return emojiKeyPrefix + id.String()
}

type cachedEmoji struct {
	ID              uuid.UUID `json:"id"`
	Prompt          string    `json:"prompt"`
	State           string    `json:"state"`
	OriginalURL     *string   `json:"original_url,omitempty"`
	NoBackgroundURL *string   `json:"no_background_url,omitempty"`
	SafetyRating    int       `json:"safety_rating"`
	IsFlagged       bool      `json:"is_flagged"`
	IsFeatured      bool      `json:"is_featured"`
	Error           *string   `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Get returns redis.Nil when the record is not cached.
func (c *EmojiCache) Get(ctx context.Context, id uuid.UUID) (*models.Emoji, error) {
	data, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, err
	}

	var ce cachedEmoji
	if err := json.Unmarshal(data, &ce); err != nil {
		return nil, fmt.Errorf("failed to decode cached emoji: %w", err)
	}
	return ce.toModel(), nil
}

func (c *EmojiCache) Set(ctx context.Context, e *models.Emoji) error {
	if !e.State.IsTerminal() {
		return nil
	}

	data, err := json.Marshal(fromModel(e))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(e.ID), data, c.ttl).Err()
}

func (c *EmojiCache) Close() error {
	return c.client.Close()
}

func fromModel(e *models.Emoji) cachedEmoji {
	ce := cachedEmoji{
		ID:           e.ID,
		Prompt:       e.Prompt,
		State:        string(e.State),
		SafetyRating: e.SafetyRating,
		IsFlagged:    e.IsFlagged,
		IsFeatured:   e.IsFeatured,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.OriginalURL.Valid {
		ce.OriginalURL = &e.OriginalURL.String
	}
	if e.NoBackgroundURL.Valid {
		ce.NoBackgroundURL = &e.NoBackgroundURL.String
	}
	if e.Error.Valid {
		ce.Error = &e.Error.String
	}
	return ce
}

func (ce cachedEmoji) toModel() *models.Emoji {
	e := &models.Emoji{
		ID:           ce.ID,
		Prompt:       ce.Prompt,
		State:        models.State(ce.State),
		SafetyRating: ce.SafetyRating,
		IsFlagged:    ce.IsFlagged,
		IsFeatured:   ce.IsFeatured,
		CreatedAt:    ce.CreatedAt,
		UpdatedAt:    ce.UpdatedAt,
	}
	if ce.OriginalURL != nil {
		e.OriginalURL.String, e.OriginalURL.Valid = *ce.OriginalURL, true
	}
	if ce.NoBackgroundURL != nil {
		e.NoBackgroundURL.String, e.NoBackgroundURL.Valid = *ce.NoBackgroundURL, true
	}
	if ce.Error != nil {
		e.Error.String, e.Error.Valid = *ce.Error, true
	}
	return e
}
