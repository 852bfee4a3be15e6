package callback

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"emoji-backend/internal/models"
	"emoji-backend/internal/pipeline"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_CallbackURL(t *testing.T) {
	s := NewSigner("https://emoji.example.com/", "secret", time.Hour)
	id := uuid.New()

	raw, err := s.CallbackURL(pipeline.StageGeneration, id)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "emoji.example.com", u.Host)
	assert.Equal(t, "/api/webhook/save-emoji", u.Path)
	assert.Equal(t, id.String(), u.Query().Get("id"))

	assert.NoError(t, s.Verify(pipeline.StageGeneration, id, u.Query().Get("token")))
}

func TestSigner_VerifyRejectsOtherRecordOrStage(t *testing.T) {
	s := NewSigner("https://emoji.example.com", "secret", time.Hour)
	id := uuid.New()

	token, err := s.Token(pipeline.StageGeneration, id)
	require.NoError(t, err)

	err = s.Verify(pipeline.StageGeneration, uuid.New(), token)
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	err = s.Verify(pipeline.StageBackgroundRemoval, id, token)
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestSigner_VerifyRejectsForeignSecret(t *testing.T) {
	id := uuid.New()
	token, err := NewSigner("https://a", "other-secret", time.Hour).Token(pipeline.StageGeneration, id)
	require.NoError(t, err)

	err = NewSigner("https://a", "secret", time.Hour).Verify(pipeline.StageGeneration, id, token)
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestSigner_VerifyRejectsMissingAndGarbage(t *testing.T) {
	s := NewSigner("https://a", "secret", time.Hour)

	assert.ErrorIs(t, s.Verify(pipeline.StageGeneration, uuid.New(), ""), models.ErrInvalidRequest)
	assert.ErrorIs(t, s.Verify(pipeline.StageGeneration, uuid.New(), "invalid-token"), models.ErrInvalidRequest)
}

func TestSigner_VerifyExpired(t *testing.T) {
	s := NewSigner("https://a", "secret", time.Hour)
	issued := time.Now()
	s.now = func() time.Time { return issued }

	id := uuid.New()
	token, err := s.Token(pipeline.StageBackgroundRemoval, id)
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(2 * time.Hour) }
	err = s.Verify(pipeline.StageBackgroundRemoval, id, token)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "expired"))
}
