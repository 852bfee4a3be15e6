package pipeline_test

import (
	"testing"

	"emoji-backend/internal/models"
	"emoji-backend/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback_Output(t *testing.T) {
	tests := []struct {
		name  string
		stage pipeline.Stage
		body  string
		want  string
	}{
		{"generation list", pipeline.StageGeneration, `{"status":"succeeded","output":["https://img/a.png","https://img/b.png"]}`, "https://img/a.png"},
		{"generation single", pipeline.StageGeneration, `{"output":"https://img/a.png"}`, "https://img/a.png"},
		{"list skips blanks", pipeline.StageGeneration, `{"output":["", "https://img/b.png"]}`, "https://img/b.png"},
		{"background removal single", pipeline.StageBackgroundRemoval, `{"status":"succeeded","output":"https://img/nb.png","error":null}`, "https://img/nb.png"},
		{"background removal list", pipeline.StageBackgroundRemoval, `{"output":["https://img/nb.png"]}`, "https://img/nb.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := pipeline.ParseCallback(tt.stage, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.stage, ev.Stage)
			assert.False(t, ev.Failed)
			assert.Equal(t, tt.want, ev.Output)
		})
	}
}

func TestParseCallback_Failure(t *testing.T) {
	ev, err := pipeline.ParseCallback(pipeline.StageGeneration, []byte(`{"status":"failed","error":"NSFW content detected"}`))
	require.NoError(t, err)
	assert.True(t, ev.Failed)
	assert.Equal(t, "NSFW content detected", ev.Error)

	ev, err = pipeline.ParseCallback(pipeline.StageBackgroundRemoval, []byte(`{"status":"canceled","output":null}`))
	require.NoError(t, err)
	assert.True(t, ev.Failed)
	assert.Equal(t, "prediction canceled", ev.Error)
}

func TestParseCallback_Invalid(t *testing.T) {
	bodies := []string{
		`not json`,
		`{}`,
		`{"output":null}`,
		`{"output":[]}`,
		`{"output":42}`,
		`{"output":"ftp://img/a.png"}`,
		`{"output":"not a url"}`,
	}

	for _, body := range bodies {
		_, err := pipeline.ParseCallback(pipeline.StageGeneration, []byte(body))
		assert.ErrorIs(t, err, models.ErrInvalidRequest, body)
	}
}
