// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package services

import (
	"github.com/AshBuk/sonicinput/config"
	"github.com/AshBuk/sonicinput/config/store"
	"github.com/AshBuk/sonicinput/history"
	"github.com/AshBuk/sonicinput/internal/eventbus"
	"github.com/AshBuk/sonicinput/internal/registry"
	"github.com/AshBuk/sonicinput/reload"
)

// AudioServiceInterface defines the contract for audio-related operations
type AudioServiceInterface interface {
	// Recording lifecycle
	HandleStartRecording() error
	HandleStopRecording() error
	IsRecording() bool
	GetLastTranscript() string

	// Streaming operations
	HandleStartStreamingRecording() error
	HandleStreamingResult(text string, isFinal bool)

	// VAD (Voice Activity Detection) operations
	HandleStartVADRecording() error

	// Model management
	EnsureModelAvailable() error
	EnsureAudioRecorderAvailable() error
	SwitchModel(modelType string) error
	CycleModel() (string, error)

	// Cleanup
	Shutdown() error
}

// UIServiceInterface defines the contract for user interface operations
type UIServiceInterface interface {
	// Tray management
	SetRecordingState(isRecording bool)
	SetTooltip(tooltip string)
	ShowNotification(title, message string)

	// State updates
	UpdateRecordingUI(isRecording bool, level float64)
	SetError(message string)
	SetSuccess(message string)

	// Menu actions
	ShowConfigFile() error
	ShowAboutPage() error

	// Settings refresh
	UpdateSettings(cfg *config.Config)

	// Cleanup
	Shutdown() error
}

// IOServiceInterface defines the contract for input/output operations
type IOServiceInterface interface {
	// Text output
	OutputText(text string) error
	SetOutputMethod(method string) error

	// WebSocket operations
	BroadcastTranscription(text string, isFinal bool)
	StartWebSocketServer() error
	StopWebSocketServer() error

	// Output routing
	HandleTypingFallback(text string) error

	// Clipboard protection around an in-flight transcription
	BeginTranscription()
	CompleteTranscription(result string)

	// Cleanup
	Shutdown() error
}

// ConfigServiceInterface defines the contract for configuration operations
type ConfigServiceInterface interface {
	// Configuration management
	LoadConfig(configFile string) error
	SaveConfig() error
	ReloadConfig() error
	GetConfig() interface{}

	// Settings updates
	UpdateVADSensitivity(sensitivity string) error
	UpdateLanguage(language string) error
	UpdateModelType(modelType string) error
	UpdateOutputMode(mode string) error
	UpdateRecordingMethod(method string) error
	ToggleWorkflowNotifications() error
	ToggleStreaming() error
	ToggleVAD() error

	// Hotkey management
	RegisterHotkeys() error
	UnregisterHotkeys() error

	// Cleanup
	Shutdown() error
}

// HotkeyServiceInterface defines the contract for global hotkey operations
type HotkeyServiceInterface interface {
	SetupHotkeyCallbacks(
		startRecording func() error,
		stopRecording func() error,
		toggleVAD func() error,
		toggleStreaming func() error,
		switchModel func() error,
		showConfig func() error,
		resetToDefaults func() error,
	) error
	RegisterHotkeys() error
	UnregisterHotkeys() error
	CaptureOnce(timeoutMs int) (string, error)
	SupportsCaptureOnce() bool

	// Cleanup
	Shutdown() error
}

// ServiceContainer holds all service interfaces plus the orchestration
// infrastructure (store, registry, event bus, reload coordinator) that ties
// runtime config changes back into the running services.
type ServiceContainer struct {
	Audio   AudioServiceInterface
	UI      UIServiceInterface
	IO      IOServiceInterface
	Config  ConfigServiceInterface
	Hotkeys HotkeyServiceInterface

	Store        *store.Store
	Registry     *registry.Registry
	Bus          *eventbus.Bus
	Reload       *reload.Coordinator
	HistoryStore *history.Store
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer() *ServiceContainer {
	return &ServiceContainer{}
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown() error {
	var lastErr error

	if sc.Audio != nil {
		if err := sc.Audio.Shutdown(); err != nil {
			lastErr = err
		}
	}

	if sc.UI != nil {
		if err := sc.UI.Shutdown(); err != nil {
			lastErr = err
		}
	}

	if sc.IO != nil {
		if err := sc.IO.Shutdown(); err != nil {
			lastErr = err
		}
	}

	if sc.Config != nil {
		if err := sc.Config.Shutdown(); err != nil {
			lastErr = err
		}
	}

	if sc.Hotkeys != nil {
		if err := sc.Hotkeys.Shutdown(); err != nil {
			lastErr = err
		}
	}

	if sc.HistoryStore != nil {
		if err := sc.HistoryStore.Close(); err != nil {
			lastErr = err
		}
	}

	if sc.Store != nil {
		if err := sc.Store.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
