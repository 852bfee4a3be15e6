package replicate

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFile_SizeLimit(t *testing.T) {
	orig := maxDownloadBytes
	maxDownloadBytes = 8
	t.Cleanup(func() { maxDownloadBytes = orig })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/small.png" {
			w.Write(bytes.Repeat([]byte("x"), 8))
			return
		}
		w.Write(bytes.Repeat([]byte("x"), 64))
	}))
	defer srv.Close()

	client := &Client{httpClient: srv.Client()}

	data, err := client.DownloadFile(context.Background(), srv.URL+"/small.png")
	require.NoError(t, err)
	assert.Len(t, data, 8)

	_, err = client.DownloadFile(context.Background(), srv.URL+"/large.png")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "larger than 8 bytes")
}
