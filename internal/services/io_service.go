// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/AshBuk/sonicinput/config"
	"github.com/AshBuk/sonicinput/internal/logger"
	"github.com/AshBuk/sonicinput/internal/platform"
	outputFactory "github.com/AshBuk/sonicinput/output/factory"
	outputInterfaces "github.com/AshBuk/sonicinput/output/interfaces"
	"github.com/AshBuk/sonicinput/output/outputters"
	"github.com/AshBuk/sonicinput/websocket"
	"github.com/AshBuk/sonicinput/whisper"
)

// Handles text output routing and transcription synchronization
type IOService struct {
	logger          logger.Logger
	config          *config.Config
	outputManager   outputInterfaces.Outputter
	injector        *outputters.Injector
	webSocketServer *websocket.WebSocketServer
	// Dependencies
	ui  UIServiceInterface
	cfg ConfigServiceInterface

	// Transcription synchronization
	mu                      sync.Mutex
	transcriptionInProgress bool
	transcriptionResultChan chan string
}

// Create a new service instance
func NewIOService(
	logger logger.Logger,
	config *config.Config,
	outputManager outputInterfaces.Outputter,
	webSocketServer *websocket.WebSocketServer,
) *IOService {
	ios := &IOService{
		logger:          logger,
		config:          config,
		outputManager:   outputManager,
		webSocketServer: webSocketServer,
	}
	ios.rebuildInjector()
	return ios
}

// rebuildInjector (re)creates the smart-strategy Injector for the current
// environment and config, used for OutputModeSmart delivery.
func (ios *IOService) rebuildInjector() {
	env := ios.detectOutputEnvironment()
	factory := outputFactory.NewFactory(ios.config)
	injector, err := factory.GetInjector(env, ios.logger)
	if err != nil {
		ios.logger.Warning("failed to build text injector: %v", err)
		return
	}
	ios.injector = injector
}

// SetRecordingMode forwards the Orchestrator's recording-in-progress flag to
// the Injector so it skips its own clipboard save/restore around paste
// while a recording-start clipboard snapshot is already held elsewhere.
func (ios *IOService) SetRecordingMode(recording bool) {
	if ios.injector != nil {
		ios.injector.SetRecordingMode(recording)
	}
}

// Prevent clipboard race conditions during async transcription
func (ios *IOService) BeginTranscription() {
	ios.mu.Lock()
	defer ios.mu.Unlock()
	ios.transcriptionInProgress = true
	// Reset result channel for a new transcription session
	ios.transcriptionResultChan = make(chan string, 1)
	// Clear clipboard to prevent race condition with old content
	// Only when clipboard mode is active to avoid unnecessary side-effects
	if ios.outputManager != nil && ios.config.Output.DefaultMode == "clipboard" {
		if err := ios.outputManager.CopyToClipboard(""); err != nil {
			ios.logger.Debug("Failed to clear clipboard: %v", err)
		}
	}
}

// Release clipboard protection and notify waiting readers
func (ios *IOService) CompleteTranscription(result string) {
	ios.mu.Lock()
	inProgress := ios.transcriptionInProgress
	ch := ios.transcriptionResultChan
	ios.transcriptionInProgress = false
	ios.mu.Unlock()

	if inProgress && ch != nil {
		select {
		case ch <- result:
		default:
		}
	}
}

// Block until transcription completes or timeout for synchronized reads
func (ios *IOService) WaitForTranscription(timeout time.Duration) (string, error) {
	ios.mu.Lock()
	inProgress := ios.transcriptionInProgress
	ch := ios.transcriptionResultChan
	ios.mu.Unlock()
	if !inProgress || ch == nil {
		return "", nil
	}
	select {
	case res := <-ch:
		return res, nil
	case <-time.After(timeout):
		// Auto-cleanup on timeout
		ios.mu.Lock()
		ios.transcriptionInProgress = false
		ios.mu.Unlock()
		return "", fmt.Errorf("timeout waiting for transcription result")
	}
}

// Route text to configured output method with fallback strategy
func (ios *IOService) OutputText(text string) error {
	if ios.outputManager == nil {
		return fmt.Errorf("output manager not available")
	}
	ios.logger.Info("Outputting text: %s", text)
	switch ios.config.Output.DefaultMode {
	case config.OutputModeSmart:
		if ios.injector == nil {
			return fmt.Errorf("text injector not available")
		}
		if !ios.injector.Inject(text) {
			return fmt.Errorf("smart text injection failed on all methods")
		}
	case "clipboard":
		if err := ios.outputManager.CopyToClipboard(text); err != nil {
			return ios.fallbackToTyping(text, err)
		}
		ios.logger.Debug("Successfully copied text to clipboard")
	case "active_window":
		if err := ios.outputManager.TypeToActiveWindow(text); err != nil {
			return ios.fallbackToClipboard(text, err)
		}
		ios.logger.Debug("Successfully typed text to active window")
	default:
		ios.logger.Warning("Unknown output mode '%s', using typing with clipboard fallback", ios.config.Output.DefaultMode)
		if err := ios.outputManager.TypeToActiveWindow(text); err != nil {
			return ios.fallbackToClipboard(text, err)
		}
	}
	return nil
}

// Force clipboard output bypassing default routing
func (ios *IOService) OutputToClipboard(text string) error {
	if ios.outputManager == nil {
		return fmt.Errorf("output manager not available")
	}
	if err := ios.outputManager.CopyToClipboard(text); err != nil {
		ios.logger.Error("Failed to copy to clipboard: %v", err)
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// Force typing output bypassing default routing
func (ios *IOService) OutputByTyping(text string) error {
	if ios.outputManager == nil {
		return fmt.Errorf("output manager not available")
	}
	if err := ios.outputManager.TypeToActiveWindow(text); err != nil {
		ios.logger.Error("Failed to type to active window: %v", err)
		return fmt.Errorf("failed to type to active window: %w", err)
	}
	return nil
}

// Switch output mode and persist setting with UI refresh
func (ios *IOService) SetOutputMethod(method string) error {
	ios.logger.Info("Setting output method to: %s", method)
	// Validate method
	if method != config.OutputModeClipboard && method != config.OutputModeActiveWindow &&
		method != config.OutputModeCombined && method != config.OutputModeSmart {
		return fmt.Errorf("invalid output method: %s (must be 'clipboard', 'active_window', 'combined', or 'smart')", method)
	}
	// Persist via ConfigService if available
	if ios.cfg != nil {
		if err := ios.cfg.UpdateOutputMode(method); err != nil {
			return err
		}
	} else {
		ios.config.Output.DefaultMode = method
	}
	// Recreate output manager immediately to reflect new mode
	env := ios.detectOutputEnvironment()
	out, err := outputFactory.GetOutputterFromConfig(ios.config, env)
	if err != nil {
		return fmt.Errorf("failed to reinitialize output manager: %w", err)
	}
	ios.outputManager = out
	ios.rebuildInjector()
	// Notify UI to refresh settings display
	if ios.ui != nil {
		ios.ui.UpdateSettings(ios.config)
	}
	ios.logger.Info("Output method set to: %s", method)
	return nil
}

// Push a transcription update to connected WebSocket clients
func (ios *IOService) BroadcastTranscription(text string, isFinal bool) {
	if ios.webSocketServer == nil {
		return
	}
	ios.webSocketServer.BroadcastMessage("transcription", map[string]any{
		"text":     text,
		"is_final": isFinal,
	})
}

// HandleTypingFallback routes text through the typing path after another
// output method has failed, without re-entering the smart injector.
func (ios *IOService) HandleTypingFallback(text string) error {
	if ios.outputManager == nil {
		return fmt.Errorf("output manager not available")
	}
	if err := ios.outputManager.TypeToActiveWindow(text); err != nil {
		ios.logger.Error("Typing fallback failed: %v", err)
		return fmt.Errorf("typing fallback failed: %w", err)
	}
	return nil
}

// Enable external client communication channel
func (ios *IOService) StartWebSocketServer() error {
	if ios.webSocketServer == nil {
		return fmt.Errorf("WebSocket server not configured")
	}
	ios.logger.Info("Starting WebSocket server...")
	// Start the WebSocket server
	return ios.webSocketServer.Start()
}

// Gracefully close external client connections
func (ios *IOService) StopWebSocketServer() error {
	if ios.webSocketServer == nil {
		return nil
	}
	ios.logger.Info("Stopping WebSocket server...")
	// Stop the WebSocket server
	ios.webSocketServer.Stop()
	return nil
}

// Report active clipboard/typing tool implementations for debugging
func (ios *IOService) GetOutputToolNames() (clipboardTool, typeTool string) {
	if ios.outputManager == nil {
		return "unknown", "unknown"
	}
	return ios.outputManager.GetToolNames()
}

// Ensure all connections are closed before termination
func (ios *IOService) Shutdown() error {
	var lastErr error
	// Stop WebSocket server
	if err := ios.StopWebSocketServer(); err != nil {
		ios.logger.Error("Error stopping WebSocket server: %v", err)
		lastErr = err
	}
	ios.logger.Info("IOService shutdown complete")
	return lastErr
}

// detectOutputEnvironment maps platform environment to output factory environment type
func (ios *IOService) detectOutputEnvironment() outputFactory.EnvironmentType {
	switch platform.DetectEnvironment() {
	case platform.EnvironmentWayland:
		return outputFactory.EnvironmentWayland
	case platform.EnvironmentX11:
		return outputFactory.EnvironmentX11
	default:
		return outputFactory.EnvironmentUnknown
	}
}

// SetWhisperEngine updates the WebSocket server's whisper engine reference after hot-reload
func (ios *IOService) SetWhisperEngine(engine *whisper.WhisperEngine) {
	if ios.webSocketServer != nil {
		ios.webSocketServer.SetWhisperEngine(engine)
	}
}

// Wire UI service for settings refresh notifications
func (ios *IOService) SetUIService(ui UIServiceInterface) { ios.ui = ui }

// Wire config service for persistent setting changes
func (ios *IOService) SetConfigService(cfg ConfigServiceInterface) { ios.cfg = cfg }

// AfterRecreate implements reload.Recreatable: when the Registry swaps the
// "outputManager" singleton for a RECREATE-strategy config reload, this
// repoints the locally cached reference and rebuilds the smart injector the
// same way SetOutputMethod does for a user-initiated mode switch.
func (ios *IOService) AfterRecreate(newInstance interface{}) error {
	out, ok := newInstance.(outputInterfaces.Outputter)
	if !ok {
		return fmt.Errorf("unexpected output manager type %T", newInstance)
	}
	ios.mu.Lock()
	ios.outputManager = out
	ios.mu.Unlock()
	ios.rebuildInjector()
	return nil
}

// fallbackToTyping switches to typing mode and executes the output
func (ios *IOService) fallbackToTyping(text string, originalErr error) error {
	ios.logger.Warning("Clipboard method failed: %v. Switching to active_window mode.", originalErr)
	if err := ios.switchOutputMode(config.OutputModeActiveWindow, "clipboard failed"); err != nil {
		return fmt.Errorf("failed to switch output mode: %w", err)
	}
	if err := ios.outputManager.TypeToActiveWindow(text); err != nil {
		return fmt.Errorf("both clipboard and typing failed - clipboard: %w, typing: %v", originalErr, err)
	}
	return nil
}

// fallbackToClipboard switches to clipboard mode and executes the output
func (ios *IOService) fallbackToClipboard(text string, originalErr error) error {
	ios.logger.Warning("Active window method failed: %v. Switching to clipboard mode.", originalErr)
	if err := ios.switchOutputMode(config.OutputModeClipboard, "typing failed"); err != nil {
		return fmt.Errorf("failed to switch output mode: %w", err)
	}
	if err := ios.outputManager.CopyToClipboard(text); err != nil {
		return fmt.Errorf("both typing and clipboard failed - typing: %w, clipboard: %v", originalErr, err)
	}
	ios.logger.Debug("Successfully copied text to clipboard (after switch)")
	return nil
}

// switchOutputMode switches the output mode and persists it in the config
func (ios *IOService) switchOutputMode(mode string, reason string) error {
	ios.logger.Warning("Switching output mode to '%s' due to '%s'", mode, reason)
	// Update and persist config if service is available
	if ios.cfg != nil {
		if err := ios.cfg.UpdateOutputMode(mode); err != nil {
			ios.logger.Error("Failed to persist output mode: %v", err)
			return fmt.Errorf("failed to persist output mode: %w", err)
		}
	} else {
		old := ios.config.Output.DefaultMode
		ios.config.Output.DefaultMode = mode
		ios.logger.Warning("ConfigService not available; switched output mode in memory from %s to %s", old, mode)
	}
	// Recreate output manager for the new mode based on current environment
	env := ios.detectOutputEnvironment()
	out, err := outputFactory.GetOutputterFromConfig(ios.config, env)
	if err != nil {
		ios.logger.Error("Failed to reinitialize output manager after mode switch: %v", err)
		return fmt.Errorf("failed to reinitialize output manager after mode switch: %w", err)
	}
	ios.outputManager = out
	ios.rebuildInjector()
	// Notify user
	if ios.ui != nil {
		msg := fmt.Sprintf("Switched to %s due to %s", mode, reason)
		ios.ui.ShowNotification("Output Fallback", msg)
		ios.ui.UpdateSettings(ios.config)
	}
	ios.logger.Info("Output mode switched to '%s' and persisted", mode)
	return nil
}
