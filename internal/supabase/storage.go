package supabase

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient is the blob store for generated images. Keys are flat
// object names inside a single public bucket.
type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewStorageClient reuses the storage handle of an initialised Supabase client.
func NewStorageClient(sb *Client, bucket string) (*StorageClient, error) {
	if sb == nil || sb.Supabase == nil || sb.Supabase.Storage == nil {
		return nil, fmt.Errorf("supabase storage client is not initialised")
	}

	return &StorageClient{
		client:  sb.Supabase.Storage,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(sb.Config.SupabaseURL, "/"),
	}, nil
}

// Put uploads data under key, overwriting any existing object, and returns
// its public URL. The storage SDK takes no context, so the upload runs in a
// goroutine and Put returns as soon as ctx is done.
func (s *StorageClient) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	upsert := true
	cacheControl := "31536000"

	done := make(chan error, 1)
	go func() {
		_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(data), storage.FileOptions{
			ContentType:  &contentType,
			CacheControl: &cacheControl,
			Upsert:       &upsert,
		})
		done <- err
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("failed to upload %s: %w", key, ctx.Err())
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("failed to upload %s: %w", key, err)
		}
	}

	return s.GetPublicURL(key), nil
}

func (s *StorageClient) GetPublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)
}
