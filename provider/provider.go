// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package provider implements the polymorphic ASR/LLM capability set shared
// by the local whisper.cpp engine and cloud vendors, plus the single HTTP
// policy (retry, backoff, rate-limit abandon, observability) every cloud
// variant reuses.
package provider

import "context"

// ChatMessage is one turn of a chat-completion request.
type ChatMessage struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// TranscribeOptions configures a transcribe call. Language is a BCP-47-ish
// hint ("auto" for autodetect); Temperature follows whisper.cpp/OpenAI
// sampling convention.
type TranscribeOptions struct {
	Language    string
	Temperature float64
}

// ChatOptions configures a chat call.
type ChatOptions struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stream      bool
}

// Usage reports token accounting when the backend returns it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Result is the unified shape every Provider call returns, win or lose.
type Result struct {
	Text       string
	Language   string
	Confidence float64
	Usage      Usage

	Error      string
	ErrorCode  string // TIMEOUT, CONNECTION_ERROR, MAX_RETRIES_EXCEEDED, or an http status as a string
	Provider   string
	RetryCount int
	LatencyMs  int64
	DurationS  float64
}

// Error-code constants for Result.ErrorCode (spec §4.6 unified error shape).
const (
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeConnectionError    = "CONNECTION_ERROR"
	ErrCodeMaxRetriesExceeded = "MAX_RETRIES_EXCEEDED"
)

// Provider is the capability set spec §3 calls Provider: polymorphic over
// transcribe and chat, implemented by exactly one local engine (whisper.cpp)
// and several cloud vendors sharing the HTTP policy in policy.go.
type Provider interface {
	// Name identifies the provider for logging and observability.
	Name() string
	// Transcribe converts 16kHz mono float32 PCM into text.
	Transcribe(ctx context.Context, pcm []float32, sampleRate int, opts TranscribeOptions) (Result, error)
	// Chat runs a chat-completion-style request; used by AI refinement and
	// by LLM-backed ASR vendors that front their model behind a chat API.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (Result, error)
}
