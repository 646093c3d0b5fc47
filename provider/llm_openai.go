// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/AshBuk/sonicinput/internal/errs"
	"github.com/AshBuk/sonicinput/internal/logger"
)

// LLMProvider is an OpenAI-compatible chat-completion vendor (spec §4.6:
// "a single HTTP policy shared by all cloud providers; multiple OpenAI-
// compatible LLM vendors"). It is reused unmodified by AI refinement
// (§4.7), matching the spec's "the HTTP policy ... shared by multiple ASR
// and LLM backends".
type LLMProvider struct {
	name   string
	client oai.Client
	model  string
	policy RetryPolicy
	log    logger.Logger
}

// LLMProviderConfig configures an OpenAI-compatible vendor. BaseURL lets
// this same type front any OpenAI-compatible endpoint, not just OpenAI's.
type LLMProviderConfig struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Policy  RetryPolicy
	Logger  logger.Logger
}

// NewLLMProvider builds an OpenAI-compatible chat provider.
func NewLLMProvider(cfg LLMProviderConfig) *LLMProvider {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: timeout}))

	policy := cfg.Policy
	if policy.MaxRetries == 0 && policy.Base == 0 {
		policy = DefaultRetryPolicy()
	}

	name := cfg.Name
	if name == "" {
		name = "openai-compatible"
	}

	return &LLMProvider{
		name:   name,
		client: oai.NewClient(reqOpts...),
		model:  cfg.Model,
		policy: policy,
		log:    cfg.Logger,
	}
}

func (p *LLMProvider) Name() string { return p.name }

// Transcribe is unsupported: this variant only exposes the chat capability.
func (p *LLMProvider) Transcribe(ctx context.Context, pcm []float32, sampleRate int, opts TranscribeOptions) (Result, error) {
	return Result{}, errs.New(errs.Unknown, p.name+": transcribe capability not supported by this provider", nil)
}

// Chat runs one chat-completion request under the shared retry policy.
func (p *LLMProvider) Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (Result, error) {
	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: toOpenAIMessages(messages),
	}
	if opts.Temperature != 0 {
		params.Temperature = param.NewOpt(opts.Temperature)
	}
	if opts.TopP != 0 {
		params.TopP = param.NewOpt(opts.TopP)
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(opts.MaxTokens))
	}

	var resp *oai.ChatCompletion
	attempts, latency, err := p.policy.Do(ctx, p.name, p.log, func(ctx context.Context) (int, error) {
		var callErr error
		resp, callErr = p.client.Chat.Completions.New(ctx, params)
		if callErr != nil {
			return statusFromOpenAIError(callErr), callErr
		}
		return http.StatusOK, nil
	})

	if err != nil {
		return Result{
			Error:      err.Error(),
			ErrorCode:  classifyFinal(err),
			Provider:   p.name,
			RetryCount: attempts - 1,
			LatencyMs:  latency.Milliseconds(),
			DurationS:  latency.Seconds(),
		}, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return Result{}, errs.New(errs.CloudFatal, p.name+": empty choices in response", nil)
	}

	return Result{
		Text:     resp.Choices[0].Message.Content,
		Provider: p.name,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		RetryCount: attempts - 1,
		LatencyMs:  latency.Milliseconds(),
		DurationS:  latency.Seconds(),
	}, nil
}

func toOpenAIMessages(messages []ChatMessage) []oai.ChatCompletionMessageParamUnion {
	out := make([]oai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, oai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, oai.AssistantMessage(m.Content))
		default:
			out = append(out, oai.UserMessage(m.Content))
		}
	}
	return out
}

// statusFromOpenAIError best-effort extracts an HTTP status from the
// openai-go client's error type so the shared retry policy can classify it.
func statusFromOpenAIError(err error) int {
	type statusErr interface{ StatusCode() int }
	if se, ok := err.(statusErr); ok {
		return se.StatusCode()
	}
	return 0
}

func classifyFinal(err error) string {
	if err == nil {
		return ""
	}
	if _, ok := err.(*errs.CoreError); ok {
		return ErrCodeMaxRetriesExceeded
	}
	if status := statusFromOpenAIError(err); status != 0 {
		code, _ := classify(status, nil)
		return code
	}
	code, _ := classify(0, err)
	return code
}
