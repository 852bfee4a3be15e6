package memstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"emoji-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStore_CreateAndGet(t *testing.T) {
	s := NewRecordStore()
	ctx := context.Background()
	e := &models.Emoji{ID: uuid.New(), Prompt: "a cat", State: models.StatePendingGeneration}

	require.NoError(t, s.CreateEmoji(ctx, e))
	assert.False(t, e.CreatedAt.IsZero())
	assert.Error(t, s.CreateEmoji(ctx, e))

	got, err := s.GetEmoji(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "a cat", got.Prompt)

	_, err = s.GetEmoji(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecordStore_UpdateIsConditional(t *testing.T) {
	s := NewRecordStore()
	ctx := context.Background()
	e := &models.Emoji{ID: uuid.New(), Prompt: "a cat", State: models.StatePendingGeneration}
	require.NoError(t, s.CreateEmoji(ctx, e))

	original := "https://blobs/o.png"
	updated, err := s.UpdateEmoji(ctx, e.ID, models.StatePendingGeneration, models.EmojiUpdate{
		State:       models.StatePendingBackgroundRemoval,
		OriginalURL: &original,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatePendingBackgroundRemoval, updated.State)
	assert.Equal(t, original, updated.OriginalURL.String)

	_, err = s.UpdateEmoji(ctx, e.ID, models.StatePendingGeneration, models.EmojiUpdate{State: models.StateFlagged})
	assert.ErrorIs(t, err, models.ErrStateConflict)

	_, err = s.UpdateEmoji(ctx, uuid.New(), models.StatePendingGeneration, models.EmojiUpdate{State: models.StateFlagged})
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, 1, s.Updates())
}

func TestRecordStore_ListAndCountSkipInvalid(t *testing.T) {
	s := NewRecordStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return at }
		e := &models.Emoji{ID: uuid.New(), Prompt: "ok", State: models.StateComplete}
		require.NoError(t, s.CreateEmoji(ctx, e))
		ids = append(ids, e.ID)
	}
	require.NoError(t, s.CreateEmoji(ctx, &models.Emoji{
		ID:        uuid.New(),
		State:     models.StateFlagged,
		IsFlagged: true,
		Error:     sql.NullString{String: "rejected", Valid: true},
	}))
	s.SetFeatured(ids[1], true)

	list, err := s.ListEmojis(ctx, models.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)

	list, err = s.ListEmojis(ctx, models.ListOptions{OrderDirection: "asc", Take: 1, Skip: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ids[1], list[0].ID)

	list, err = s.ListEmojis(ctx, models.ListOptions{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ids[1], list[0].ID)

	count, err := s.CountEmojis(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestBlobStore_PutOverwrites(t *testing.T) {
	b := NewBlobStore("https://blobs")
	ctx := context.Background()

	u1, err := b.Put(ctx, "x-original.png", []byte("one"), "image/png")
	require.NoError(t, err)
	u2, err := b.Put(ctx, "x-original.png", []byte("two"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://blobs/x-original.png", u1)
	assert.Equal(t, u1, u2)
	data, ok := b.Get("x-original.png")
	require.True(t, ok)
	assert.Equal(t, []byte("two"), data)
	assert.Equal(t, 2, b.Puts())
}
