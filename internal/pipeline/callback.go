package pipeline

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"emoji-backend/internal/models"
)

// callbackBody is the subset of a provider prediction we read.
type callbackBody struct {
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  *string         `json:"error"`
}

// ParseCallback decodes a webhook body for the given stage. Stage 1 reports
// a list of image URLs (the first is used), stage 2 a single URL; both shapes
// are accepted for either stage.
func ParseCallback(stage Stage, body []byte) (Event, error) {
	if !stage.Valid() {
		return Event{}, fmt.Errorf("%w: unknown stage %d", models.ErrInvalidRequest, int(stage))
	}

	var payload callbackBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return Event{}, fmt.Errorf("%w: failed to parse body: %v", models.ErrInvalidRequest, err)
	}

	ev := Event{Stage: stage}

	if payload.Error != nil {
		ev.Failed = true
		ev.Error = strings.TrimSpace(*payload.Error)
		return ev, nil
	}
	if payload.Status == "failed" || payload.Status == "canceled" {
		ev.Failed = true
		ev.Error = "prediction " + payload.Status
		return ev, nil
	}

	output, err := firstOutput(payload.Output)
	if err != nil {
		return Event{}, err
	}
	ev.Output = output
	return ev, nil
}

func firstOutput(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("%w: missing output", models.ErrInvalidRequest)
	}

	var candidate string
	var single string
	var list []string
	switch {
	case json.Unmarshal(raw, &single) == nil:
		candidate = single
	case json.Unmarshal(raw, &list) == nil:
		for _, item := range list {
			if strings.TrimSpace(item) != "" {
				candidate = item
				break
			}
		}
	default:
		return "", fmt.Errorf("%w: output must be a URL or a list of URLs", models.ErrInvalidRequest)
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", fmt.Errorf("%w: missing output", models.ErrInvalidRequest)
	}
	u, err := url.Parse(candidate)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: output is not an http(s) URL", models.ErrInvalidRequest)
	}
	return candidate, nil
}
