// Package safety rates prompts before any generation job is spent on them.
// Ratings run from 0 (harmless) to 100 (certainly violating).
package safety

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode"
)

type Classifier interface {
	Rate(ctx context.Context, prompt string) (int, error)
}

// ModerationClient rates prompts with an OpenAI-compatible moderation API.
type ModerationClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type moderationRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged        bool               `json:"flagged"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

func NewModerationClient(baseURL, apiKey string) *ModerationClient {
	return &ModerationClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   "omni-moderation-latest",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Rate returns the highest category score scaled to 0..100. A result the
// provider flags outright is never rated below 100.
func (c *ModerationClient) Rate(ctx context.Context, prompt string) (int, error) {
	jsonData, err := json.Marshal(moderationRequest{Model: c.model, Input: prompt})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/moderations", bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("moderation request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result moderationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Results) == 0 {
		return 0, fmt.Errorf("moderation response has no results")
	}

	var highest float64
	for _, score := range result.Results[0].CategoryScores {
		highest = math.Max(highest, score)
	}
	if result.Results[0].Flagged {
		return 100, nil
	}
	return scale(highest), nil
}

func scale(score float64) int {
	rating := int(math.Round(score * 100))
	if rating < 0 {
		return 0
	}
	if rating > 100 {
		return 100
	}
	return rating
}

// KeywordClassifier is the offline fallback used when no moderation API is
// configured. Any blocked word yields a rating of 100.
type KeywordClassifier struct {
	blocked map[string]struct{}
}

var defaultBlocklist = []string{
	"nazi", "swastika", "kkk", "porn", "nude", "naked", "nsfw", "sex",
	"gore", "beheading", "suicide", "rape", "genocide", "terrorist",
}

func NewKeywordClassifier(words ...string) *KeywordClassifier {
	if len(words) == 0 {
		words = defaultBlocklist
	}
	blocked := make(map[string]struct{}, len(words))
	for _, w := range words {
		blocked[strings.ToLower(w)] = struct{}{}
	}
	return &KeywordClassifier{blocked: blocked}
}

func (k *KeywordClassifier) Rate(_ context.Context, prompt string) (int, error) {
	words := strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, ok := k.blocked[w]; ok {
			return 100, nil
		}
	}
	return 0, nil
}
