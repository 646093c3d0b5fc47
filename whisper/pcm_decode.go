// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package whisper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
)

// DecodePCM reads a WAV file from disk and returns its samples as float32
// normalized to [-1.0, 1.0], the same decode this package's whisper.cpp
// engine applies before handing audio to the model (engine.go's
// loadAudioData). It has no cgo dependency so callers outside the engine
// (the orchestrator's history-persistence path) can reuse it regardless of
// build tags.
func DecodePCM(audioFile string) ([]float32, int, error) {
	clean := filepath.Clean(audioFile)
	if clean != audioFile || strings.Contains(clean, "..") {
		return nil, 0, fmt.Errorf("invalid audio file path")
	}
	// #nosec G304 -- Path is sanitized above.
	file, err := os.Open(clean)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if decoder == nil {
		return nil, 0, fmt.Errorf("failed to create WAV decoder")
	}
	audioBuffer, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read audio buffer: %w", err)
	}

	samples := make([]float32, audioBuffer.NumFrames())
	for i := 0; i < audioBuffer.NumFrames(); i++ {
		samples[i] = float32(audioBuffer.Data[i]) / 32768.0
	}
	sampleRate := int(decoder.SampleRate)
	return samples, sampleRate, nil
}
