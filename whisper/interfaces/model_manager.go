// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package interfaces

import (
	"context"

	"github.com/AshBuk/sonicinput/config"
)

// ModelInfo describes a configured Whisper model
type ModelInfo struct {
	Path        string
	Name        string
	Type        string // tiny, base, small, medium, large
	Size        int64  // File size in bytes
	Available   bool   // Whether the model file exists
	Description string
}

// ProgressCallback is called during model download with progress information
type ProgressCallback func(downloaded, total int64, percentage float64)

// Defines the contract for managing the lifecycle of Whisper models
type ModelManager interface {
	// Initialize and validate the configured model
	Initialize() error
	// Return the absolute path to the validated model file
	GetModelPath() (string, error)
	// Check if the model file at the given path is valid
	ValidateModel(modelPath string) error
	// Switch to a different configured model by ID and return its path; a model whose file is absent is rejected, not downloaded.
	SwitchModel(modelID string) (string, error)
	// GetAvailableModels returns the models currently present on disk
	GetAvailableModels() map[string]*ModelInfo
	// GetActiveModel returns the name of the currently selected model
	GetActiveModel() string
}

// Represents a whisper.Model type without a direct CGO dependency
type WhisperModel interface{}

// Defines the contract for a speech-to-text transcription engine
type WhisperEngine interface {
	// Transcribe an audio file and return the resulting text
	Transcribe(audioFile string) (string, error)
	// Add cancellation support for long running operations
	TranscribeWithContext(ctx context.Context, audioFile string) (string, error)
	// Close the engine and release any associated resources
	Close() error
	// Return the underlying model object
	GetModel() WhisperModel
	// Return the configuration used by the engine
	GetConfig() *config.Config
}
