package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	maxAttemptsPerKey = 3
	baseRetryDelay    = 2 * time.Second
	maxRetryDelay     = 8 * time.Second
)

// GeminiGenerator calls a Gemini image model through the official SDK.
// Rate-limited keys are retried with backoff, then the next configured key is
// tried; image generation quota is commonly the first thing to run out.
type GeminiGenerator struct {
	apiKeys []string
	model   string
	logger  zerolog.Logger

	// call and sleep are seams for tests.
	call  func(ctx context.Context, apiKey string, req Request) (*Result, error)
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGemini constructs a generator over the given API keys.
func NewGemini(apiKeys []string, model string, logger zerolog.Logger) (*GeminiGenerator, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("imagegen: at least one gemini api key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("imagegen: model is required")
	}
	g := &GeminiGenerator{apiKeys: apiKeys, model: model, logger: logger}
	g.call = g.invokeSDK
	g.sleep = sleepContext
	return g, nil
}

// Model returns the configured model identifier.
func (g *GeminiGenerator) Model() string {
	return g.model
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	var lastErr error
	for keyIndex, apiKey := range g.apiKeys {
		for attempt := 1; attempt <= maxAttemptsPerKey; attempt++ {
			result, err := g.call(ctx, apiKey, req)
			if err == nil {
				return result, nil
			}
			lastErr = err
			if !isRetryable(err) {
				return nil, err
			}
			g.logger.Warn().
				Err(err).
				Str("model", g.model).
				Int("key", keyIndex+1).
				Int("attempt", attempt).
				Msg("imagegen: retryable gemini error")
			if attempt < maxAttemptsPerKey {
				if err := g.sleep(ctx, retryDelay(attempt)); err != nil {
					return nil, err
				}
			}
		}
		if isRateLimited(lastErr) && keyIndex < len(g.apiKeys)-1 {
			g.logger.Warn().
				Int("key", keyIndex+1).
				Msg("imagegen: key exhausted, rotating to next key")
			continue
		}
		break
	}
	return nil, fmt.Errorf("imagegen: all attempts failed: %w", lastErr)
}

func (g *GeminiGenerator) invokeSDK(ctx context.Context, apiKey string, req Request) (*Result, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: create client: %w", err)
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, img := range req.Images {
		mime := img.MIME
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mime, Data: img.Data},
		})
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	// gemini-2.5-flash-image rejects candidateCount > 1, so the config stays empty.
	resp, err := client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{})
	if err != nil {
		return nil, fmt.Errorf("imagegen: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("imagegen: no candidates returned")
	}

	result := &Result{Model: g.model}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" && result.Text == "" {
			result.Text = part.Text
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 && result.Data == nil {
			result.Data = part.InlineData.Data
			result.MIME = part.InlineData.MIMEType
		}
	}
	if result.Data == nil {
		return nil, errors.New("imagegen: no image in response")
	}
	if result.MIME == "" {
		result.MIME = "image/png"
	}
	return result, nil
}

func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted")
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if isRateLimited(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "internal") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "connection reset")
}

func retryDelay(attempt int) time.Duration {
	delay := baseRetryDelay << (attempt - 1)
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ Generator = (*GeminiGenerator)(nil)
