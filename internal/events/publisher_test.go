package events_test

import (
	"context"
	"database/sql"
	"testing"

	"emoji-backend/internal/events"
	"emoji-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCreatedEvent(t *testing.T) {
	e := &models.Emoji{ID: uuid.New(), State: models.StatePendingGeneration}
	assert.Equal(t, events.EventCreated, events.CreatedEvent(e).Type)

	e.State = models.StateFlagged
	e.Error = sql.NullString{String: "prompt rejected by safety check (rating 100)", Valid: true}
	ev := events.CreatedEvent(e)
	assert.Equal(t, events.EventFlagged, ev.Type)
	assert.Equal(t, e.Error.String, ev.Error)
	assert.Equal(t, e.ID.String(), ev.EmojiID)
}

func TestCompletedEvent(t *testing.T) {
	e := &models.Emoji{
		ID:              uuid.New(),
		State:           models.StateComplete,
		OriginalURL:     sql.NullString{String: "https://blobs/o.png", Valid: true},
		NoBackgroundURL: sql.NullString{String: "https://blobs/nb.png", Valid: true},
	}

	ev := events.CompletedEvent(e)

	assert.Equal(t, events.EventCompleted, ev.Type)
	assert.Equal(t, "complete", ev.State)
	assert.Equal(t, "https://blobs/nb.png", ev.NoBackgroundURL)
}

func TestNewKafkaPublisher_RequiresBroker(t *testing.T) {
	_, err := events.NewKafkaPublisher(nil, "emoji_events")
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p events.Publisher = events.NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), events.Event{}))
	assert.NoError(t, p.Close())
}
