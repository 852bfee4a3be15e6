package pipeline_test

import (
	"database/sql"
	"testing"

	"emoji-backend/internal/models"
	"emoji-backend/internal/pipeline"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmoji(state models.State) *models.Emoji {
	return &models.Emoji{ID: uuid.New(), Prompt: "a cat", State: state}
}

func TestBlobKey(t *testing.T) {
	id := uuid.MustParse("7b0f4a4e-0a3c-4e55-9a3b-2f6f0f1b9c11")

	assert.Equal(t, "7b0f4a4e-0a3c-4e55-9a3b-2f6f0f1b9c11-original.png", pipeline.BlobKey(id, pipeline.StageGeneration))
	assert.Equal(t, "7b0f4a4e-0a3c-4e55-9a3b-2f6f0f1b9c11-no-background.png", pipeline.BlobKey(id, pipeline.StageBackgroundRemoval))
}

func TestPlan_GenerationSuccess(t *testing.T) {
	e := newEmoji(models.StatePendingGeneration)

	step, err := pipeline.Plan(e, pipeline.Event{Stage: pipeline.StageGeneration, Output: "https://img/a.png"})
	require.NoError(t, err)

	assert.Equal(t, pipeline.ActionStoreOriginal, step.Action)
	assert.Equal(t, models.StatePendingGeneration, step.Expected)
	assert.Equal(t, models.StatePendingGeneration, step.Next)
	assert.Equal(t, "https://img/a.png", step.SourceURL)
	assert.Equal(t, pipeline.BlobKey(e.ID, pipeline.StageGeneration), step.BlobKey)
	assert.True(t, step.SubmitBackgroundRemoval)
	assert.Equal(t, models.StatePendingBackgroundRemoval, step.AdvanceTo)

	upd := step.Update("https://blobs/x-original.png")
	require.NotNil(t, upd.OriginalURL)
	assert.Equal(t, "https://blobs/x-original.png", *upd.OriginalURL)
	assert.Nil(t, upd.NoBackgroundURL)
	assert.Nil(t, upd.Error)
}

func TestPlan_GenerationFailureFlags(t *testing.T) {
	e := newEmoji(models.StatePendingGeneration)

	step, err := pipeline.Plan(e, pipeline.Event{Stage: pipeline.StageGeneration, Failed: true, Error: "NSFW"})
	require.NoError(t, err)

	assert.Equal(t, pipeline.ActionFlag, step.Action)
	assert.Equal(t, models.StateFlagged, step.Next)

	upd := step.Update("")
	require.NotNil(t, upd.Error)
	assert.Equal(t, "NSFW", *upd.Error)
	assert.Nil(t, upd.OriginalURL)
}

func TestPlan_EmptyProviderErrorGetsDefaultMessage(t *testing.T) {
	step, err := pipeline.Plan(newEmoji(models.StatePendingGeneration), pipeline.Event{Stage: pipeline.StageGeneration, Failed: true})
	require.NoError(t, err)

	assert.Equal(t, pipeline.ActionFlag, step.Action)
	assert.NotEmpty(t, step.Error)
}

func TestPlan_GenerationIgnoredOnceAdvanced(t *testing.T) {
	for _, state := range []models.State{
		models.StatePendingBackgroundRemoval,
		models.StateComplete,
		models.StateFlagged,
	} {
		t.Run(string(state), func(t *testing.T) {
			step, err := pipeline.Plan(newEmoji(state), pipeline.Event{Stage: pipeline.StageGeneration, Output: "https://img/b.png"})
			require.NoError(t, err)
			assert.Equal(t, pipeline.ActionIgnore, step.Action)
			assert.NotEmpty(t, step.Reason)
		})
	}
}

func TestPlan_BackgroundRemovalSuccess(t *testing.T) {
	e := newEmoji(models.StatePendingBackgroundRemoval)
	e.OriginalURL = sql.NullString{String: "https://blobs/o.png", Valid: true}

	step, err := pipeline.Plan(e, pipeline.Event{Stage: pipeline.StageBackgroundRemoval, Output: "https://img/nb.png"})
	require.NoError(t, err)

	assert.Equal(t, pipeline.ActionStoreFinal, step.Action)
	assert.Equal(t, models.StatePendingBackgroundRemoval, step.Expected)
	assert.Equal(t, models.StateComplete, step.Next)
	assert.False(t, step.SubmitBackgroundRemoval)

	upd := step.Update("https://blobs/nb.png")
	require.NotNil(t, upd.NoBackgroundURL)
	assert.Equal(t, "https://blobs/nb.png", *upd.NoBackgroundURL)
}

func TestPlan_BackgroundRemovalRacingStageOneCompletes(t *testing.T) {
	e := newEmoji(models.StatePendingGeneration)
	e.OriginalURL = sql.NullString{String: "https://blobs/o.png", Valid: true}

	step, err := pipeline.Plan(e, pipeline.Event{Stage: pipeline.StageBackgroundRemoval, Output: "https://img/nb.png"})
	require.NoError(t, err)

	assert.Equal(t, pipeline.ActionStoreFinal, step.Action)
	assert.Equal(t, models.StatePendingGeneration, step.Expected)
}

func TestPlan_BackgroundRemovalBeforeOriginalIsOutOfOrder(t *testing.T) {
	_, err := pipeline.Plan(newEmoji(models.StatePendingGeneration), pipeline.Event{Stage: pipeline.StageBackgroundRemoval, Output: "https://img/nb.png"})

	assert.ErrorIs(t, err, models.ErrOutOfOrder)
}

func TestPlan_BackgroundRemovalFailureFlags(t *testing.T) {
	e := newEmoji(models.StatePendingBackgroundRemoval)
	e.OriginalURL = sql.NullString{String: "https://blobs/o.png", Valid: true}

	step, err := pipeline.Plan(e, pipeline.Event{Stage: pipeline.StageBackgroundRemoval, Failed: true, Error: "model crashed"})
	require.NoError(t, err)

	assert.Equal(t, pipeline.ActionFlag, step.Action)
	assert.Equal(t, models.StatePendingBackgroundRemoval, step.Expected)
	assert.Equal(t, "model crashed", step.Error)
}

func TestPlan_BackgroundRemovalIgnoredWhenTerminal(t *testing.T) {
	for _, state := range []models.State{models.StateComplete, models.StateFlagged} {
		step, err := pipeline.Plan(newEmoji(state), pipeline.Event{Stage: pipeline.StageBackgroundRemoval, Output: "https://img/nb.png"})
		require.NoError(t, err)
		assert.Equal(t, pipeline.ActionIgnore, step.Action, state)
	}
}

func TestPlan_InvalidInput(t *testing.T) {
	_, err := pipeline.Plan(nil, pipeline.Event{Stage: pipeline.StageGeneration, Output: "https://img/a.png"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = pipeline.Plan(newEmoji(models.StatePendingGeneration), pipeline.Event{Stage: pipeline.Stage(9), Output: "https://img/a.png"})
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	_, err = pipeline.Plan(newEmoji(models.StatePendingGeneration), pipeline.Event{Stage: pipeline.StageGeneration})
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestStage_CallbackPath(t *testing.T) {
	assert.Equal(t, "/api/webhook/save-emoji", pipeline.StageGeneration.CallbackPath())
	assert.Equal(t, "/api/webhook/remove-background", pipeline.StageBackgroundRemoval.CallbackPath())
}
