package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"emoji-backend/internal/events"
	"emoji-backend/internal/models"
	"emoji-backend/internal/pipeline"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	imageContentType = "image/png"
	defaultTimeout   = 15 * time.Second
)

// PipelineService advances emoji records in response to provider callbacks.
// Every write is conditional on the state the plan was computed from, so
// duplicate and out-of-order deliveries cannot move a record backwards.
type PipelineService struct {
	records   RecordStore
	blobs     BlobStore
	generator GenerationClient
	publisher events.Publisher
	logger    *zap.Logger
	timeout   time.Duration
}

func NewPipelineService(
	records RecordStore,
	blobs BlobStore,
	generator GenerationClient,
	publisher events.Publisher,
	logger *zap.Logger,
	timeout time.Duration,
) *PipelineService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &PipelineService{
		records:   records,
		blobs:     blobs,
		generator: generator,
		publisher: publisher,
		logger:    logger,
		timeout:   timeout,
	}
}

// HandleCallback applies a parsed callback to the record with the given id
// and reports what was done. A lost conditional write is re-planned once
// against the fresh record.
func (s *PipelineService) HandleCallback(ctx context.Context, id uuid.UUID, ev pipeline.Event) (pipeline.Action, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		emoji, err := s.records.GetEmoji(ctx, id)
		if err != nil {
			return pipeline.ActionIgnore, storeError(err)
		}

		step, err := pipeline.Plan(emoji, ev)
		if err != nil {
			return pipeline.ActionIgnore, err
		}

		err = s.execute(ctx, emoji, step)
		if err == nil {
			return step.Action, nil
		}
		if !errors.Is(err, models.ErrStateConflict) {
			return step.Action, err
		}

		s.logger.Info("Emoji changed concurrently, re-planning callback",
			zap.String("emoji_id", id.String()),
			zap.String("stage", ev.Stage.String()),
			zap.Error(err),
		)
		lastErr = err
	}
	return pipeline.ActionIgnore, lastErr
}

func (s *PipelineService) execute(ctx context.Context, emoji *models.Emoji, step pipeline.Step) error {
	switch step.Action {
	case pipeline.ActionIgnore:
		s.logger.Info("Duplicate callback ignored",
			zap.String("emoji_id", emoji.ID.String()),
			zap.String("state", string(emoji.State)),
			zap.String("reason", step.Reason),
		)
		return nil

	case pipeline.ActionFlag:
		updated, err := s.records.UpdateEmoji(ctx, emoji.ID, step.Expected, step.Update(""))
		if err != nil {
			return storeError(err)
		}
		s.logTransition(emoji, updated)
		s.publish(ctx, events.FlaggedEvent(updated))
		return nil

	case pipeline.ActionStoreOriginal, pipeline.ActionStoreFinal:
		return s.storeOutput(ctx, emoji, step)
	}

	return fmt.Errorf("unhandled pipeline action %s", step.Action)
}

// storeOutput copies the provider output into the blob store before any
// record references it.
func (s *PipelineService) storeOutput(ctx context.Context, emoji *models.Emoji, step pipeline.Step) error {
	data, err := s.download(ctx, step.SourceURL)
	if err != nil {
		return err
	}

	blobURL, err := s.put(ctx, step.BlobKey, data)
	if err != nil {
		return err
	}

	updated, err := s.records.UpdateEmoji(ctx, emoji.ID, step.Expected, step.Update(blobURL))
	if err != nil {
		return storeError(err)
	}

	if step.Action == pipeline.ActionStoreFinal {
		s.logTransition(emoji, updated)
		s.publish(ctx, events.CompletedEvent(updated))
		return nil
	}

	s.publish(ctx, events.OriginalSavedEvent(updated))

	if step.SubmitBackgroundRemoval {
		// The record stays pending_generation until stage 2 is accepted, so a
		// provider retry of this callback re-enters here instead of stalling.
		if err := s.submitBackgroundRemoval(ctx, emoji.ID, blobURL); err != nil {
			return err
		}
		advanced, err := s.records.UpdateEmoji(ctx, emoji.ID, updated.State, models.EmojiUpdate{State: step.AdvanceTo})
		if err != nil {
			return storeError(err)
		}
		updated = advanced
	}

	s.logTransition(emoji, updated)
	return nil
}

func (s *PipelineService) download(ctx context.Context, sourceURL string) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.generator.DownloadFile(cctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("download provider output: %w: %w", models.ErrDependencyUnavailable, err)
	}
	return data, nil
}

func (s *PipelineService) put(ctx context.Context, key string, data []byte) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	blobURL, err := s.blobs.Put(cctx, key, data, imageContentType)
	if err != nil {
		return "", fmt.Errorf("store image: %w: %w", models.ErrDependencyUnavailable, err)
	}
	return blobURL, nil
}

func (s *PipelineService) submitBackgroundRemoval(ctx context.Context, id uuid.UUID, imageURL string) error {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.generator.SubmitBackgroundRemoval(cctx, id, imageURL); err != nil {
		return fmt.Errorf("submit background removal: %w: %w", models.ErrDependencyUnavailable, err)
	}
	return nil
}

// storeError passes record store sentinels through and reports anything else
// as the store being unavailable.
func storeError(err error) error {
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrStateConflict) {
		return err
	}
	return fmt.Errorf("record store: %w: %w", models.ErrDependencyUnavailable, err)
}

func (s *PipelineService) logTransition(before, after *models.Emoji) {
	s.logger.Info("Emoji state changed",
		zap.String("emoji_id", after.ID.String()),
		zap.String("from", string(before.State)),
		zap.String("to", string(after.State)),
	)
}

// publish is best effort: the state change is already committed.
func (s *PipelineService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish emoji event",
			zap.String("emoji_id", event.EmojiID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}
