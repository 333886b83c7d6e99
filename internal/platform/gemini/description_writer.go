package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/realtorist/realtorist-api/internal/config"
	"github.com/realtorist/realtorist-api/internal/domain"
	"google.golang.org/genai"
)

// contentGenerator is the part of the genai client the writer uses.
// *genai.Models implements it.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// DescriptionWriter generates listing descriptions with Gemini.
type DescriptionWriter struct {
	models     contentGenerator
	model      string
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewDescriptionWriter creates a writer from cfg. It fails with
// ErrInvalidConfig when no API key is configured.
func NewDescriptionWriter(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*DescriptionWriter, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return newDescriptionWriter(client.Models, cfg, logger)
}

func newDescriptionWriter(models contentGenerator, cfg config.LLMConfig, logger *slog.Logger) (*DescriptionWriter, error) {
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DescriptionWriter{
		models:     models,
		model:      cfg.ModelName,
		maxRetries: max(cfg.MaxRetries, 0),
		baseDelay:  time.Duration(max(cfg.RetryDelaySeconds, 1)) * time.Second,
		logger:     logger.With("component", "gemini_description_writer"),
		sleep:      sleepContext,
	}, nil
}

// Describe returns a description for listing.
func (w *DescriptionWriter) Describe(ctx context.Context, listing *domain.Listing) (string, error) {
	prompt, err := buildPrompt(listing)
	if err != nil {
		return "", err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var lastErr error

	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(w.baseDelay, attempt, rng)
			w.logger.WarnContext(ctx, "retrying Gemini call",
				"attempt", attempt+1,
				"delay_ms", delay.Milliseconds(),
				"error", lastErr)
			if err := w.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		text, err := w.generate(ctx, prompt)
		if err == nil {
			w.logger.DebugContext(ctx, "listing description generated",
				"external_id", listing.ExternalID,
				"length", len(text))
			return text, nil
		}
		if errors.Is(err, ErrEmptyResponse) || ctx.Err() != nil {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("gemini call failed after %d attempts: %w", w.maxRetries+1, lastErr)
}

func (w *DescriptionWriter) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := w.models.GenerateContent(ctx, w.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// backoff returns base*2^(attempt-1) plus up to 20% jitter.
func backoff(base time.Duration, attempt int, rng *rand.Rand) time.Duration {
	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))
	jitter := time.Duration(rng.Int63n(int64(delay)/5 + 1))
	return delay + jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
