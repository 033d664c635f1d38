// Package llm wraps the language-model backends used for forecasting.
// Every provider speaks the chat-completions API through go-openai; the
// differences are confined to client construction.
package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"llm4time/logger"
	"llm4time/models"
)

// Response is one model answer plus its usage accounting. ResponseTime is
// wall-clock seconds for the request.
type Response struct {
	Text           string
	PromptTokens   int
	ResponseTokens int
	ResponseTime   float64
}

// Client sends one prompt and returns one answer.
type Client interface {
	Predict(ctx context.Context, prompt string) (Response, error)
}

// Options configures a chat client. RequestsPerMinute of zero disables
// rate limiting.
type Options struct {
	Provider          models.Provider
	Model             string
	APIKey            string
	BaseURL           string
	Temperature       float64
	RequestsPerMinute int
}

// Reasoning models wrap their scratch work in think tags; forecasts only
// live outside them.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// CleanResponse strips think blocks and surrounding whitespace.
func CleanResponse(text string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(text, ""))
}

type chatClient struct {
	api     *openai.Client
	opts    Options
	limiter *rate.Limiter
	log     *logger.Log
}

// New builds a client for the given provider. LM Studio uses the OpenAI
// wire format against a local endpoint and accepts any API key.
func New(opts Options) (Client, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("llm: model name is required")
	}

	var cfg openai.ClientConfig
	switch opts.Provider {
	case models.ProviderOpenAI:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("llm: api key is required for provider %s", opts.Provider)
		}
		cfg = openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			cfg.BaseURL = opts.BaseURL
		}
	case models.ProviderAzure:
		if opts.APIKey == "" || opts.BaseURL == "" {
			return nil, fmt.Errorf("llm: api key and base url are required for provider %s", opts.Provider)
		}
		cfg = openai.DefaultAzureConfig(opts.APIKey, opts.BaseURL)
	case models.ProviderLMStudio:
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:1234/v1"
		}
		key := opts.APIKey
		if key == "" {
			key = "lm-studio"
		}
		cfg = openai.DefaultConfig(key)
		cfg.BaseURL = baseURL
	default:
		return nil, fmt.Errorf("llm: unknown provider: %q", opts.Provider)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return &chatClient{
		api:     openai.NewClientWithConfig(cfg),
		opts:    opts,
		limiter: limiter,
		log:     logger.GetLogger(),
	}, nil
}

func (c *chatClient) Predict(ctx context.Context, prompt string) (Response, error) {
	log := c.log.WithComponent("llm").WithFields(logger.Fields{
		"provider": string(c.opts.Provider),
		"model":    c.opts.Model,
	})

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{}, fmt.Errorf("llm: rate limit wait: %w", err)
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Temperature: float32(c.opts.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		logger.IncrementLLMFailure()
		log.WithError(err).Error("chat completion failed")
		return Response{}, fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		logger.IncrementLLMFailure()
		return Response{}, fmt.Errorf("llm: empty response from %s", c.opts.Model)
	}

	out := Response{
		Text:           CleanResponse(resp.Choices[0].Message.Content),
		PromptTokens:   resp.Usage.PromptTokens,
		ResponseTokens: resp.Usage.CompletionTokens,
		ResponseTime:   elapsed.Seconds(),
	}

	logger.IncrementLLMRequest(out.PromptTokens, out.ResponseTokens)
	c.log.LogMetric("llm", "tokens_total", out.PromptTokens+out.ResponseTokens, "counter",
		logger.Fields{"model": c.opts.Model})
	log.WithFields(logger.Fields{
		"prompt_tokens":   out.PromptTokens,
		"response_tokens": out.ResponseTokens,
		"response_time":   out.ResponseTime,
	}).Info("chat completion succeeded")
	return out, nil
}
