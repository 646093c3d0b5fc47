// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/AshBuk/sonicinput/internal/errs"
)

// localEngine is the subset of whisper.WhisperEngine this adapter needs.
// Kept as an interface so tests can stub it without linking whisper.cpp's
// cgo bindings.
type localEngine interface {
	TranscribeWithContext(ctx context.Context, audioFile string) (string, error)
}

// LocalWhisperProvider adapts the teacher's whisper.cpp binding
// (whisper.WhisperEngine) into the Provider interface, making the bundled
// offline model one concrete Provider among several cloud variants (spec
// §4.5: "the teacher's whisper.Engine becomes one concrete provider.Provider
// implementation among several").
type LocalWhisperProvider struct {
	engine localEngine
}

// NewLocalWhisperProvider wraps an already-loaded whisper engine.
func NewLocalWhisperProvider(engine localEngine) *LocalWhisperProvider {
	return &LocalWhisperProvider{engine: engine}
}

func (p *LocalWhisperProvider) Name() string { return "whisper.cpp" }

// Transcribe encodes pcm to a scratch WAV file (whisper.cpp's binding reads
// from a file path, not a byte buffer) and delegates to the engine.
func (p *LocalWhisperProvider) Transcribe(ctx context.Context, pcm []float32, sampleRate int, opts TranscribeOptions) (Result, error) {
	start := time.Now()

	wavBytes, err := EncodeWAV(pcm, sampleRate)
	if err != nil {
		return Result{}, errs.New(errs.Transcription, "failed to encode audio for local engine", err)
	}

	tmp, err := os.CreateTemp("", "sonicinput-local-*.wav")
	if err != nil {
		return Result{}, errs.New(errs.Transcription, "failed to create scratch audio file", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(wavBytes); err != nil {
		_ = tmp.Close()
		return Result{}, errs.New(errs.Transcription, "failed to write scratch audio file", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, errs.New(errs.Transcription, "failed to flush scratch audio file", err)
	}

	text, err := p.engine.TranscribeWithContext(ctx, tmp.Name())
	latency := time.Since(start)
	if err != nil {
		return Result{
			Error:      err.Error(),
			Provider:   p.Name(),
			LatencyMs:  latency.Milliseconds(),
			DurationS:  latency.Seconds(),
		}, errs.New(errs.Transcription, "local transcription failed", err)
	}

	return Result{
		Text:      text,
		Language:  opts.Language,
		Provider:  p.Name(),
		LatencyMs: latency.Milliseconds(),
		DurationS: latency.Seconds(),
	}, nil
}

// Chat is not supported by the local ASR-only engine.
func (p *LocalWhisperProvider) Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (Result, error) {
	return Result{}, fmt.Errorf("%s: chat capability not supported", p.Name())
}
