package safety_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"emoji-backend/internal/safety"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordClassifier(t *testing.T) {
	k := safety.NewKeywordClassifier()

	rating, err := k.Rate(context.Background(), "a happy cat wearing a hat")
	require.NoError(t, err)
	assert.Equal(t, 0, rating)

	rating, err = k.Rate(context.Background(), "cat with a SWASTIKA flag")
	require.NoError(t, err)
	assert.Equal(t, 100, rating)
}

func TestKeywordClassifier_MatchesWholeWords(t *testing.T) {
	k := safety.NewKeywordClassifier("gore")

	rating, err := k.Rate(context.Background(), "gorement of a goregeous gorilla")
	require.NoError(t, err)
	assert.Equal(t, 0, rating)

	rating, err = k.Rate(context.Background(), "lots of gore!")
	require.NoError(t, err)
	assert.Equal(t, 100, rating)
}

func TestModerationClient_Rate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"highest score scaled", `{"results":[{"flagged":false,"category_scores":{"violence":0.12,"hate":0.423}}]}`, 42},
		{"flagged is 100", `{"results":[{"flagged":true,"category_scores":{"violence":0.3}}]}`, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/moderations", r.URL.Path)
				assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			rating, err := safety.NewModerationClient(srv.URL+"/v1/", "key").Rate(context.Background(), "a cat")
			require.NoError(t, err)
			assert.Equal(t, tt.want, rating)
		})
	}
}

func TestModerationClient_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := safety.NewModerationClient(srv.URL, "key").Rate(context.Background(), "a cat")
	assert.Error(t, err)
}
