package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"emoji-backend/internal/events"
	"emoji-backend/internal/models"
	"emoji-backend/internal/replicate"
	"emoji-backend/internal/safety"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EmojiServiceConfig struct {
	PromptMaxLength int
	// SafetyThreshold is the highest rating still sent to generation.
	SafetyThreshold int
	Timeout         time.Duration
	SubmitAttempts  int
	SubmitBackoffs  []time.Duration
}

// EmojiService creates emoji requests and serves them back to clients.
type EmojiService struct {
	records    RecordStore
	generator  GenerationClient
	classifier safety.Classifier
	verifier   FormTokenVerifier
	cache      EmojiCache
	publisher  events.Publisher
	logger     *zap.Logger
	cfg        EmojiServiceConfig
}

func NewEmojiService(
	records RecordStore,
	generator GenerationClient,
	classifier safety.Classifier,
	verifier FormTokenVerifier,
	cache EmojiCache,
	publisher events.Publisher,
	logger *zap.Logger,
	cfg EmojiServiceConfig,
) *EmojiService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.SubmitAttempts <= 0 {
		cfg.SubmitAttempts = 3
	}
	if cfg.SubmitBackoffs == nil {
		cfg.SubmitBackoffs = replicate.DefaultBackoffs
	}
	return &EmojiService{
		records:    records,
		generator:  generator,
		classifier: classifier,
		verifier:   verifier,
		cache:      cache,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// Create validates the prompt, rates it and stores the new request. Prompts
// rated above the safety threshold are stored already flagged and never
// reach the provider. The returned record is valid even when err wraps
// models.ErrDependencyUnavailable from a failed submission: a submission the
// provider rejected flags it, any other failure leaves it pending_generation
// because the provider may still have accepted the job.
func (s *EmojiService) Create(ctx context.Context, req models.CreateEmojiRequest) (*models.Emoji, error) {
	if s.verifier != nil {
		if err := s.verifier.VerifyFormToken(req.Token); err != nil {
			return nil, err
		}
	}

	prompt, err := s.normalizePrompt(req.Prompt)
	if err != nil {
		return nil, err
	}

	rating, err := s.rate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	emoji := &models.Emoji{
		ID:           uuid.New(),
		Prompt:       prompt,
		State:        models.StatePendingGeneration,
		SafetyRating: rating,
	}
	if rating > s.cfg.SafetyThreshold {
		emoji.State = models.StateFlagged
		emoji.IsFlagged = true
		emoji.Error = sql.NullString{
			String: fmt.Sprintf("prompt rejected by safety check (rating %d)", rating),
			Valid:  true,
		}
	}

	if err := s.records.CreateEmoji(ctx, emoji); err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("Emoji created",
		zap.String("emoji_id", emoji.ID.String()),
		zap.String("state", string(emoji.State)),
		zap.Int("safety_rating", rating),
	)
	s.publish(ctx, events.CreatedEvent(emoji))

	if emoji.State == models.StateFlagged {
		return emoji, nil
	}

	err = replicate.RetryWithBackoff(ctx, s.cfg.SubmitBackoffs, s.cfg.SubmitAttempts, func() error {
		cctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
		return s.generator.SubmitGeneration(cctx, emoji.ID, prompt)
	})
	if errors.Is(err, replicate.ErrRejected) {
		return s.flagRejected(ctx, emoji, err)
	}
	if err != nil {
		s.logger.Warn("Generation submission unconfirmed, leaving emoji pending",
			zap.String("emoji_id", emoji.ID.String()),
			zap.Error(err),
		)
		return emoji, fmt.Errorf("submit generation: %w: %w", models.ErrDependencyUnavailable, err)
	}

	return emoji, nil
}

// flagRejected terminates a record whose generation job the provider
// refused; nothing will ever call back for it.
func (s *EmojiService) flagRejected(ctx context.Context, emoji *models.Emoji, submitErr error) (*models.Emoji, error) {
	s.logger.Error("Failed to submit generation",
		zap.String("emoji_id", emoji.ID.String()),
		zap.Error(submitErr),
	)

	msg := "failed to submit generation: " + submitErr.Error()
	flagged, err := s.records.UpdateEmoji(ctx, emoji.ID, models.StatePendingGeneration, models.EmojiUpdate{
		State: models.StateFlagged,
		Error: &msg,
	})
	if err != nil {
		s.logger.Error("Failed to flag rejected emoji",
			zap.String("emoji_id", emoji.ID.String()),
			zap.Error(err),
		)
		return emoji, fmt.Errorf("%w: %w", models.ErrDependencyUnavailable, submitErr)
	}

	s.publish(ctx, events.FlaggedEvent(flagged))
	return flagged, fmt.Errorf("%w: %w", models.ErrDependencyUnavailable, submitErr)
}

func (s *EmojiService) normalizePrompt(raw string) (string, error) {
	prompt := strings.Join(strings.Fields(raw), " ")
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is required", models.ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(prompt); n > s.cfg.PromptMaxLength {
		return "", fmt.Errorf("%w: prompt is %d characters, at most %d allowed", models.ErrInvalidInput, n, s.cfg.PromptMaxLength)
	}
	return prompt, nil
}

func (s *EmojiService) rate(ctx context.Context, prompt string) (int, error) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	rating, err := s.classifier.Rate(cctx, prompt)
	if err != nil {
		return 0, fmt.Errorf("safety check: %w: %w", models.ErrDependencyUnavailable, err)
	}
	return rating, nil
}

// Get returns a record, serving terminal records from the cache when one is
// configured.
func (s *EmojiService) Get(ctx context.Context, id uuid.UUID) (*models.Emoji, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id); err == nil {
			return cached, nil
		}
	}

	emoji, err := s.records.GetEmoji(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, emoji); err != nil {
			s.logger.Warn("Failed to cache emoji", zap.String("emoji_id", id.String()), zap.Error(err))
		}
	}
	return emoji, nil
}

func (s *EmojiService) List(ctx context.Context, opts models.ListOptions) ([]models.Emoji, error) {
	emojis, err := s.records.ListEmojis(ctx, opts.Normalize())
	if err != nil {
		return nil, storeError(err)
	}
	return emojis, nil
}

func (s *EmojiService) Count(ctx context.Context) (int, error) {
	n, err := s.records.CountEmojis(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	return n, nil
}

func (s *EmojiService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish emoji event",
			zap.String("emoji_id", event.EmojiID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}
