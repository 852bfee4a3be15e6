package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"emoji-backend/internal/models"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const emojiColumns = `id, prompt, state, original_url, no_background_url, safety_rating,
	is_flagged, is_featured, error, created_at, updated_at`

// validEmojiFilter matches records that finished without being flagged.
const validEmojiFilter = `is_flagged = FALSE AND error IS NULL`

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmoji(row rowScanner) (*models.Emoji, error) {
	var e models.Emoji
	var state string
	err := row.Scan(
		&e.ID, &e.Prompt, &state, &e.OriginalURL, &e.NoBackgroundURL, &e.SafetyRating,
		&e.IsFlagged, &e.IsFeatured, &e.Error, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.State = models.State(state)
	if !e.State.Valid() {
		return nil, fmt.Errorf("emoji %s has unknown state %q", e.ID, state)
	}
	return &e, nil
}

func (d *DatabaseClient) CreateEmoji(ctx context.Context, e *models.Emoji) error {
	row := d.db.QueryRowContext(ctx, `
		INSERT INTO emojis (id, prompt, state, safety_rating, is_flagged, error)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+emojiColumns,
		e.ID, e.Prompt, string(e.State), e.SafetyRating, e.IsFlagged, e.Error,
	)

	created, err := scanEmoji(row)
	if err != nil {
		return fmt.Errorf("failed to create emoji: %w", err)
	}

	*e = *created
	return nil
}

func (d *DatabaseClient) GetEmoji(ctx context.Context, id uuid.UUID) (*models.Emoji, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+emojiColumns+`
		FROM emojis
		WHERE id = $1
	`, id)

	e, err := scanEmoji(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("emoji %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get emoji: %w", err)
	}

	return e, nil
}

// UpdateEmoji applies upd only while the stored state equals expected. A
// record in any other state yields models.ErrStateConflict.
func (d *DatabaseClient) UpdateEmoji(ctx context.Context, id uuid.UUID, expected models.State, upd models.EmojiUpdate) (*models.Emoji, error) {
	row := d.db.QueryRowContext(ctx, `
		UPDATE emojis
		SET state = $3,
			original_url = COALESCE($4, original_url),
			no_background_url = COALESCE($5, no_background_url),
			error = COALESCE($6, error),
			is_flagged = ($3 = 'flagged'),
			updated_at = NOW()
		WHERE id = $1 AND state = $2
		RETURNING `+emojiColumns,
		id, string(expected), string(upd.State), nullable(upd.OriginalURL), nullable(upd.NoBackgroundURL), nullable(upd.Error),
	)

	e, err := scanEmoji(row)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update emoji: %w", err)
	}

	var exists bool
	if err := d.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM emojis WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check emoji: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("emoji %s: %w", id, models.ErrNotFound)
	}
	return nil, fmt.Errorf("emoji %s is no longer %s: %w", id, expected, models.ErrStateConflict)
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (d *DatabaseClient) ListEmojis(ctx context.Context, opts models.ListOptions) ([]models.Emoji, error) {
	opts = opts.Normalize()

	column := "created_at"
	if opts.OrderBy == "updatedAt" {
		column = "updated_at"
	}
	direction := "DESC"
	if opts.OrderDirection == "asc" {
		direction = "ASC"
	}
	where := validEmojiFilter
	if opts.FeaturedOnly {
		where += ` AND is_featured = TRUE`
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT `+emojiColumns+`
		FROM emojis
		WHERE `+where+`
		ORDER BY `+column+` `+direction+`
		LIMIT $1 OFFSET $2
	`, opts.Take, opts.Skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list emojis: %w", err)
	}
	defer rows.Close()

	var emojis []models.Emoji
	for rows.Next() {
		e, err := scanEmoji(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan emoji: %w", err)
		}
		emojis = append(emojis, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list emojis: %w", err)
	}

	return emojis, nil
}

func (d *DatabaseClient) CountEmojis(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emojis WHERE `+validEmojiFilter).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count emojis: %w", err)
	}
	return count, nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
