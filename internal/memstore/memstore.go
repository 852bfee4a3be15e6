// Package memstore provides in-process record and blob stores. They back
// local runs without Postgres or Supabase and serve as fakes in tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"emoji-backend/internal/models"
	"github.com/google/uuid"
)

type RecordStore struct {
	mu      sync.Mutex
	emojis  map[uuid.UUID]models.Emoji
	now     func() time.Time
	updates int
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		emojis: make(map[uuid.UUID]models.Emoji),
		now:    time.Now,
	}
}

func (s *RecordStore) CreateEmoji(_ context.Context, e *models.Emoji) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emojis[e.ID]; exists {
		return fmt.Errorf("failed to create emoji: id %s already exists", e.ID)
	}
	now := s.now()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.emojis[e.ID] = *e
	return nil
}

func (s *RecordStore) GetEmoji(_ context.Context, id uuid.UUID) (*models.Emoji, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.emojis[id]
	if !ok {
		return nil, fmt.Errorf("emoji %s: %w", id, models.ErrNotFound)
	}
	return &e, nil
}

func (s *RecordStore) UpdateEmoji(_ context.Context, id uuid.UUID, expected models.State, upd models.EmojiUpdate) (*models.Emoji, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.emojis[id]
	if !ok {
		return nil, fmt.Errorf("emoji %s: %w", id, models.ErrNotFound)
	}
	if e.State != expected {
		return nil, fmt.Errorf("emoji %s is no longer %s: %w", id, expected, models.ErrStateConflict)
	}

	updated := upd.Apply(e, s.now())
	s.emojis[id] = updated
	s.updates++
	return &updated, nil
}

func (s *RecordStore) ListEmojis(_ context.Context, opts models.ListOptions) ([]models.Emoji, error) {
	opts = opts.Normalize()

	s.mu.Lock()
	var out []models.Emoji
	for _, e := range s.emojis {
		if e.IsFlagged || e.Error.Valid {
			continue
		}
		if opts.FeaturedOnly && !e.IsFeatured {
			continue
		}
		out = append(out, e)
	}
	s.mu.Unlock()

	key := func(e models.Emoji) time.Time {
		if opts.OrderBy == "updatedAt" {
			return e.UpdatedAt
		}
		return e.CreatedAt
	}
	sort.SliceStable(out, func(i, j int) bool {
		if opts.OrderDirection == "asc" {
			return key(out[i]).Before(key(out[j]))
		}
		return key(out[i]).After(key(out[j]))
	})

	if opts.Skip >= len(out) {
		return nil, nil
	}
	out = out[opts.Skip:]
	if len(out) > opts.Take {
		out = out[:opts.Take]
	}
	return out, nil
}

func (s *RecordStore) CountEmojis(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.emojis {
		if !e.IsFlagged && !e.Error.Valid {
			count++
		}
	}
	return count, nil
}

// Updates reports how many conditional writes have been applied.
func (s *RecordStore) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

// SetFeatured toggles the editorial flag.
func (s *RecordStore) SetFeatured(id uuid.UUID, featured bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.emojis[id]; ok {
		e.IsFeatured = featured
		s.emojis[id] = e
	}
}

// BlobStore keeps objects in memory and hands out URLs under baseURL.
type BlobStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	puts    int
}

func NewBlobStore(baseURL string) *BlobStore {
	return &BlobStore{
		baseURL: baseURL,
		objects: make(map[string][]byte),
	}
}

func (b *BlobStore) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = append([]byte(nil), data...)
	b.puts++
	return b.URL(key), nil
}

func (b *BlobStore) URL(key string) string {
	return b.baseURL + "/" + key
}

func (b *BlobStore) Get(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	return data, ok
}

// Puts reports how many uploads have been performed.
func (b *BlobStore) Puts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.puts
}
