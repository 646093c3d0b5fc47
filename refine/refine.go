// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package refine implements the chat-completion-style transcript rewrite
// (spec §4.7), grounded on original_source/src/sonicinput/ai/base_client.py's
// two-message template construction, think-tag stripping, and TPS
// accounting, built here on top of provider.Provider so the HTTP policy
// (§4.6) is reused rather than reimplemented.
package refine

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/AshBuk/sonicinput/internal/errs"
	"github.com/AshBuk/sonicinput/internal/logger"
	"github.com/AshBuk/sonicinput/provider"
)

// thinkTagPattern matches <think>...</think> spans, case-insensitive,
// dot-matches-newline, non-greedy (spec §4.7 step 2 / §9 "think-tag
// filter"). Nested tags are not expected; re.sub-equivalent repeated
// application is idempotent after one pass, same as the Python original.
var thinkTagPattern = regexp.MustCompile(`(?is)<think>.*?</think>`)

// StripThinkTags removes every <think>...</think> span and trims the
// result. Property P9: the output never contains "<think>" or "</think>".
func StripThinkTags(text string) string {
	return strings.TrimSpace(thinkTagPattern.ReplaceAllString(text, ""))
}

// Options configures one refine call. Model selection is a property of
// which Provider instance a Refiner wraps (bound at construction), not a
// per-call option.
type Options struct {
	PromptTemplate string // if it contains "{text}", old-style user-message formatting; else system+user split
	MaxTokens      int
	// GracefulDegrade: if the filtered output is empty, return the original
	// transcript unchanged instead of an empty string (spec §4.7 step 3).
	GracefulDegrade bool
}

// tpsSample is one entry in the rolling TPS window.
type tpsSample struct {
	promptTPS     float64
	completionTPS float64
	combinedTPS   float64
}

const rollingWindowSize = 100

// Refiner rewrites transcripts via a chat-completion Provider, tracking a
// rolling window of token-per-second figures the way
// AIPerformanceMonitor/base_client.py's token accounting does.
type Refiner struct {
	mu       sync.Mutex
	provider provider.Provider
	log      logger.Logger
	window   []tpsSample
}

// New builds a Refiner on top of any chat-capable Provider (an
// *provider.LLMProvider in production, a stub in tests).
func New(p provider.Provider, log logger.Logger) *Refiner {
	return &Refiner{provider: p, log: log}
}

// Refine builds the two-message conversation per spec §4.7, sends it with
// temperature=0.3/top_p=0.9/stream=false, strips think-tags from the
// response, and returns the original transcript together with an error when
// the call fails. An empty result after stripping returns the original
// transcript when opts.GracefulDegrade is set, and "" otherwise.
func (r *Refiner) Refine(ctx context.Context, text string, opts Options) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	system, user := prepareMessages(text, opts.PromptTemplate)
	messages := []provider.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}

	result, err := r.provider.Chat(ctx, messages, provider.ChatOptions{
		Temperature: 0.3,
		TopP:        0.9,
		MaxTokens:   opts.MaxTokens,
		Stream:      false,
	})
	if err != nil {
		if r.log != nil {
			r.log.Warning("ai refinement failed, falling back to raw transcript: %v", err)
		}
		return text, errs.New(errs.CloudTransient, "ai refinement failed", err)
	}

	refined := StripThinkTags(result.Text)
	if refined == "" {
		if r.log != nil {
			r.log.Warning("ai response was only thinking tags or empty")
		}
		if opts.GracefulDegrade {
			return text, nil
		}
		return "", nil
	}

	r.recordTokenStats(result)
	return refined, nil
}

// prepareMessages implements base_client.py's _prepare_messages: old-style
// templates embed {text} into a single user message with a generic system
// prompt; new-style templates are used as the system message verbatim.
func prepareMessages(text, promptTemplate string) (system, user string) {
	if strings.Contains(promptTemplate, "{text}") {
		return "You are a professional text refinement assistant.",
			strings.ReplaceAll(promptTemplate, "{text}", text)
	}
	return promptTemplate, text
}

// recordTokenStats computes the three TPS figures (prompt, completion,
// combined) relative to measured latency and appends to the rolling window.
func (r *Refiner) recordTokenStats(result provider.Result) {
	seconds := result.DurationS
	if seconds <= 0 {
		return
	}
	sample := tpsSample{
		promptTPS:     float64(result.Usage.PromptTokens) / seconds,
		completionTPS: float64(result.Usage.CompletionTokens) / seconds,
		combinedTPS:   float64(result.Usage.TotalTokens) / seconds,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.window = append(r.window, sample)
	if len(r.window) > rollingWindowSize {
		r.window = r.window[len(r.window)-rollingWindowSize:]
	}
}

// AverageTPS returns the average of the three TPS figures over the rolling
// window of the last 100 requests (zero values if no samples recorded yet).
func (r *Refiner) AverageTPS() (promptTPS, completionTPS, combinedTPS float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.window) == 0 {
		return 0, 0, 0
	}
	var sumPrompt, sumCompletion, sumCombined float64
	for _, s := range r.window {
		sumPrompt += s.promptTPS
		sumCompletion += s.completionTPS
		sumCombined += s.combinedTPS
	}
	n := float64(len(r.window))
	return sumPrompt / n, sumCompletion / n, sumCombined / n
}

// TestConnection sends a minimal request (capped at 5 tokens) through the same
// Refine code path so retry logic is exercised identically (spec §4.7
// "Test-connection path").
func (r *Refiner) TestConnection(ctx context.Context) error {
	_, err := r.Refine(ctx, "test", Options{
		PromptTemplate: "Return the word 'ok' only.",
		MaxTokens:      5,
	})
	return err
}
