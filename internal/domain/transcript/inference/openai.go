// Package inference adapts hosted vision models to the transcript parser.
package inference

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/course-planner/internal/domain/transcript/document"
)

// ErrMissingAPIKey is returned by NewOpenAIClient when no key is configured.
var ErrMissingAPIKey = errors.New("openai api key is required")

// Config for the OpenAI client
type Config struct {
	APIKey            string
	BaseURL           string        // empty uses the SDK default
	Model             string        // e.g. "gpt-4o"
	Timeout           time.Duration // per request
	RequestsPerSecond float64       // <= 0 disables throttling
	Burst             int
}

// OpenAIClient sends page images to the OpenAI Responses API
type OpenAIClient struct {
	client  openai.Client
	model   string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewOpenAIClient builds a client. Requests are never retried; a failed call
// surfaces to the caller, which falls back to text parsing.
func NewOpenAIClient(cfg Config, logger *slog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &OpenAIClient{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Infer issues a single request holding the prompt and every page image.
func (c *OpenAIClient) Infer(ctx context.Context, images []document.PageImage, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	content := make(responses.ResponseInputMessageContentListParam, 0, len(images)+1)
	content = append(content, responses.ResponseInputContentParamOfInputText(prompt))
	for _, img := range images {
		mime := img.MIME
		if mime == "" {
			mime = "image/png"
		}
		content = append(content, responses.ResponseInputContentUnionParam{
			OfInputImage: &responses.ResponseInputImageParam{
				ImageURL: openai.String("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)),
				Detail:   responses.ResponseInputImageDetailHigh,
			},
		})
	}

	c.logger.Info("llm.infer.start",
		"req_id", rid,
		"model", c.model,
		"pages", len(images),
	)

	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(content, "user"),
			},
		},
	})
	if err != nil {
		c.logger.Error("llm.infer.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("openai responses request: %w", err)
	}

	out := resp.OutputText()
	c.logger.Info("llm.infer.done",
		"req_id", rid,
		"output_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
