package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"emoji-backend/internal/pipeline"
	"github.com/google/uuid"
)

// ErrRejected marks a prediction the provider refused outright. Retrying the
// same request cannot succeed, unlike timeouts and 5xx responses.
var ErrRejected = errors.New("prediction rejected")

// maxDownloadBytes bounds a single provider output.
var maxDownloadBytes int64 = 20 << 20

// CallbackURLs produces the per-record webhook URL for a stage.
type CallbackURLs interface {
	CallbackURL(stage pipeline.Stage, id uuid.UUID) (string, error)
}

type Client struct {
	baseURL                  string
	apiToken                 string
	emojiVersion             string
	backgroundRemovalVersion string
	callbacks                CallbackURLs
	httpClient               *http.Client
}

// PredictionRequest is the body of POST /predictions.
type PredictionRequest struct {
	Version             string                 `json:"version"`
	Input               map[string]interface{} `json:"input"`
	Webhook             string                 `json:"webhook,omitempty"`
	WebhookEventsFilter []string               `json:"webhook_events_filter,omitempty"`
}

type PredictionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "starting", "processing", "succeeded", "failed", "canceled"
}

func NewClient(baseURL, apiToken, emojiVersion, backgroundRemovalVersion string, callbacks CallbackURLs) *Client {
	return &Client{
		baseURL:                  strings.TrimSuffix(baseURL, "/"),
		apiToken:                 apiToken,
		emojiVersion:             emojiVersion,
		backgroundRemovalVersion: backgroundRemovalVersion,
		callbacks:                callbacks,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// EmojiPrompt wraps a user prompt in the trigger phrase the emoji model was
// fine-tuned on.
func EmojiPrompt(prompt string) string {
	return "A TOK emoji of " + strings.TrimSpace(prompt)
}

// SubmitGeneration starts stage 1. The result is delivered to the stage's
// callback URL; a nil error only means the job was accepted.
func (c *Client) SubmitGeneration(ctx context.Context, id uuid.UUID, prompt string) error {
	webhook, err := c.callbacks.CallbackURL(pipeline.StageGeneration, id)
	if err != nil {
		return fmt.Errorf("failed to build callback url: %w", err)
	}

	_, err = c.createPrediction(ctx, PredictionRequest{
		Version: c.emojiVersion,
		Input: map[string]interface{}{
			"prompt":              EmojiPrompt(prompt),
			"width":               1024,
			"height":              1024,
			"lora_scale":          0.6,
			"num_outputs":         1,
			"guidance_scale":      7.5,
			"apply_watermark":     false,
			"high_noise_frac":     0.8,
			"negative_prompt":     "racist, xenophobic, antisemitic, islamophobic, bigoted",
			"prompt_strength":     0.8,
			"num_inference_steps": 25,
		},
		Webhook:             webhook,
		WebhookEventsFilter: []string{"completed"},
	})
	if err != nil {
		return fmt.Errorf("failed to submit generation: %w", err)
	}
	return nil
}

// SubmitBackgroundRemoval starts stage 2 on the stored stage-1 image.
func (c *Client) SubmitBackgroundRemoval(ctx context.Context, id uuid.UUID, imageURL string) error {
	webhook, err := c.callbacks.CallbackURL(pipeline.StageBackgroundRemoval, id)
	if err != nil {
		return fmt.Errorf("failed to build callback url: %w", err)
	}

	_, err = c.createPrediction(ctx, PredictionRequest{
		Version: c.backgroundRemovalVersion,
		Input: map[string]interface{}{
			"image": imageURL,
		},
		Webhook:             webhook,
		WebhookEventsFilter: []string{"completed"},
	})
	if err != nil {
		return fmt.Errorf("failed to submit background removal: %w", err)
	}
	return nil
}

func (c *Client) createPrediction(ctx context.Context, predictionReq PredictionRequest) (*PredictionResponse, error) {
	jsonData, err := json.Marshal(predictionReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		if isRejection(resp.StatusCode) {
			return nil, fmt.Errorf("%w: status %d, body: %s", ErrRejected, resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to create prediction: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result PredictionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return &result, nil
}

// isRejection reports 4xx statuses other than timeouts and rate limiting.
func isRejection(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}
	return status >= 400 && status < 500
}

// DownloadFile fetches a provider output.
func (c *Client) DownloadFile(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("failed to download file: status %d, body: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > maxDownloadBytes {
		return nil, fmt.Errorf("failed to download file: larger than %d bytes", maxDownloadBytes)
	}

	return data, nil
}
