// Package llm recognizes Chinese characters in images with a hosted model.
package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/f3rmion/hanzicam/internal/prompt"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// Config holds client settings.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
	Prompt    prompt.Options
}

// Client is a hanzi.Recognizer backed by the Anthropic Messages API.
type Client struct {
	api         anthropic.Client
	model       string
	maxTokens   int64
	timeout     time.Duration
	instruction string
	log         *slog.Logger
}

var _ hanzi.Recognizer = (*Client)(nil)

// NewClient creates a client. Retries are left to the caller.
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, hanzi.InvalidConfigf("llm.api_key", "not set (use ANTHROPIC_API_KEY or HANZICAM_LLM_API_KEY)")
	}
	if cfg.MaxTokens <= 0 {
		return nil, hanzi.InvalidConfigf("llm.max_tokens", "must be positive, got %d", cfg.MaxTokens)
	}
	if cfg.Timeout <= 0 {
		return nil, hanzi.InvalidConfigf("llm.timeout", "must be positive, got %s", cfg.Timeout)
	}
	if log == nil {
		log = slog.Default()
	}

	instruction, err := prompt.Recognize(cfg.Prompt)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:         anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   int64(cfg.MaxTokens),
		timeout:     cfg.Timeout,
		instruction: instruction,
		log:         log,
	}, nil
}

// Recognize sends img to the model and decodes its answer. Every failure is a
// *hanzi.RecognitionError.
func (c *Client) Recognize(ctx context.Context, img hanzi.Image) (hanzi.RecognitionResult, error) {
	if len(img.Data) == 0 {
		return hanzi.RecognitionResult{}, fmt.Errorf("%w: empty payload", hanzi.ErrInvalidFrame)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(img.MediaType, base64.StdEncoding.EncodeToString(img.Data)),
				anthropic.NewTextBlock(c.instruction),
			),
		},
	})
	if err != nil {
		return hanzi.RecognitionResult{}, c.classify(ctx, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return hanzi.RecognitionResult{}, hanzi.NewRecognitionError("empty reply", hanzi.ErrMalformedResponse)
	}

	result, err := DecodeResult(text.String())
	if err != nil {
		c.log.Warn("unusable recognition reply",
			slog.String("stop_reason", string(msg.StopReason)),
			slog.Any("error", err))
		return hanzi.RecognitionResult{}, hanzi.NewRecognitionError("unreadable reply", err)
	}

	c.log.Debug("recognition done",
		slog.Int("characters", len(result.Characters)),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int64("output_tokens", msg.Usage.OutputTokens))
	return result, nil
}

func (c *Client) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return hanzi.NewRecognitionError("timed out", err)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		c.log.Warn("recognition service error", slog.Int("status", apiErr.StatusCode))
		return hanzi.NewRecognitionError(fmt.Sprintf("service returned %d", apiErr.StatusCode), err)
	}
	return hanzi.NewRecognitionError("service unreachable", err)
}
