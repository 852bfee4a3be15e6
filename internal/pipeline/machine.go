// Package pipeline holds the emoji request state machine. It decides what a
// provider callback should do to a record; it performs no I/O itself.
package pipeline

import (
	"fmt"

	"emoji-backend/internal/models"
	"github.com/google/uuid"
)

// Stage identifies which provider job a callback reports on.
type Stage int

const (
	StageGeneration Stage = iota + 1
	StageBackgroundRemoval
)

func (s Stage) String() string {
	switch s {
	case StageGeneration:
		return "generation"
	case StageBackgroundRemoval:
		return "background-removal"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) Valid() bool {
	return s == StageGeneration || s == StageBackgroundRemoval
}

// CallbackPath is the route the provider posts this stage's result to.
func (s Stage) CallbackPath() string {
	if s == StageGeneration {
		return "/api/webhook/save-emoji"
	}
	return "/api/webhook/remove-background"
}

func (s Stage) blobSuffix() string {
	if s == StageGeneration {
		return "original"
	}
	return "no-background"
}

// BlobKey is the deterministic storage key for a stage's output. Re-storing
// under the same key overwrites, so retried callbacks never orphan blobs.
func BlobKey(id uuid.UUID, s Stage) string {
	return fmt.Sprintf("%s-%s.png", id.String(), s.blobSuffix())
}

// Event is a parsed provider callback.
type Event struct {
	Stage  Stage
	Output string
	Failed bool
	Error  string
}

type Action int

const (
	// ActionIgnore acknowledges a duplicate or stale callback without writing.
	ActionIgnore Action = iota
	ActionStoreOriginal
	ActionStoreFinal
	ActionFlag
)

func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionStoreOriginal:
		return "store_original"
	case ActionStoreFinal:
		return "store_final"
	case ActionFlag:
		return "flag"
	}
	return "unknown"
}

// Step is the outcome of planning a callback against the current record.
type Step struct {
	Action Action
	// Expected is the state the conditional write is keyed on.
	Expected models.State
	// Next is the state written together with the stage's fields.
	Next      models.State
	BlobKey   string
	SourceURL string
	Error     string
	// SubmitBackgroundRemoval requests stage 2 once the original is recorded;
	// AdvanceTo is written after that submission is accepted.
	SubmitBackgroundRemoval bool
	AdvanceTo               models.State
	Reason                  string
}

// Update builds the conditional write for this step. blobURL is the public
// location returned by the blob store and is ignored for flag steps.
func (s Step) Update(blobURL string) models.EmojiUpdate {
	upd := models.EmojiUpdate{State: s.Next}
	switch s.Action {
	case ActionStoreOriginal:
		upd.OriginalURL = &blobURL
	case ActionStoreFinal:
		upd.NoBackgroundURL = &blobURL
	case ActionFlag:
		msg := s.Error
		upd.Error = &msg
	}
	return upd
}

const defaultProviderError = "image provider reported an error"

// Plan decides how ev applies to e. It returns models.ErrOutOfOrder for a
// stage-2 result that precedes its stage-1 result, and an ActionIgnore step
// for callbacks the record has already moved past.
func Plan(e *models.Emoji, ev Event) (Step, error) {
	if e == nil {
		return Step{}, fmt.Errorf("plan callback: %w", models.ErrNotFound)
	}
	if !ev.Stage.Valid() {
		return Step{}, fmt.Errorf("%w: unknown stage %d", models.ErrInvalidRequest, int(ev.Stage))
	}
	if !ev.Failed && ev.Output == "" {
		return Step{}, fmt.Errorf("%w: missing output", models.ErrInvalidRequest)
	}

	switch ev.Stage {
	case StageGeneration:
		return planGeneration(e, ev), nil
	default:
		return planBackgroundRemoval(e, ev)
	}
}

func planGeneration(e *models.Emoji, ev Event) Step {
	if e.State != models.StatePendingGeneration {
		return Step{Action: ActionIgnore, Reason: fmt.Sprintf("generation result for record in state %s", e.State)}
	}
	if ev.Failed {
		return flagStep(e.State, ev.Error)
	}
	return Step{
		Action:                  ActionStoreOriginal,
		Expected:                models.StatePendingGeneration,
		Next:                    models.StatePendingGeneration,
		BlobKey:                 BlobKey(e.ID, StageGeneration),
		SourceURL:               ev.Output,
		SubmitBackgroundRemoval: true,
		AdvanceTo:               models.StatePendingBackgroundRemoval,
	}
}

func planBackgroundRemoval(e *models.Emoji, ev Event) (Step, error) {
	switch e.State {
	case models.StateComplete, models.StateFlagged:
		return Step{Action: ActionIgnore, Reason: fmt.Sprintf("background removal result for record in state %s", e.State)}, nil
	case models.StatePendingGeneration:
		// Stage 2 may finish before the stage-1 handler records its state
		// change, but never before the original image is stored.
		if !e.OriginalURL.Valid {
			return Step{}, fmt.Errorf("emoji %s: %w", e.ID, models.ErrOutOfOrder)
		}
	}

	if ev.Failed {
		return flagStep(e.State, ev.Error), nil
	}
	return Step{
		Action:    ActionStoreFinal,
		Expected:  e.State,
		Next:      models.StateComplete,
		BlobKey:   BlobKey(e.ID, StageBackgroundRemoval),
		SourceURL: ev.Output,
	}, nil
}

func flagStep(from models.State, msg string) Step {
	if msg == "" {
		msg = defaultProviderError
	}
	return Step{
		Action:   ActionFlag,
		Expected: from,
		Next:     models.StateFlagged,
		Error:    msg,
	}
}
