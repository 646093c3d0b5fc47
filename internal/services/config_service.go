// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package services

import (
	"fmt"
	"strings"

	"github.com/AshBuk/sonicinput/config"
	"github.com/AshBuk/sonicinput/config/store"
	"github.com/AshBuk/sonicinput/hotkeys/manager"
	"github.com/AshBuk/sonicinput/internal/logger"
)

// ConfigService implements ConfigServiceInterface
type ConfigService struct {
	logger        logger.Logger
	config        *config.Config
	configFile    string
	hotkeyManager *manager.HotkeyManager
	store         *store.Store
}

// SetStore wires the dotted-path config store so runtime setting changes
// flow through it and emit config.changed diffs for the reload coordinator.
// Left nil, ConfigService falls back to its plain YAML save.
func (cs *ConfigService) SetStore(s *store.Store) { cs.store = s }

// setStoreValue mirrors a setting change into the store, logging but not
// failing the caller on error since the YAML file is the save of record.
func (cs *ConfigService) setStoreValue(path string, value interface{}) {
	if cs.store == nil {
		return
	}
	if err := cs.store.Set(path, value); err != nil {
		cs.logger.Warning("config store: failed to set %s: %v", path, err)
	}
}

// NewConfigService creates a new ConfigService instance
func NewConfigService(
	logger logger.Logger,
	config *config.Config,
	configFile string,
	hotkeyManager *manager.HotkeyManager,
) *ConfigService {
	return &ConfigService{
		logger:        logger,
		config:        config,
		configFile:    configFile,
		hotkeyManager: hotkeyManager,
	}
}

// LoadConfig implements ConfigServiceInterface
func (cs *ConfigService) LoadConfig(configFile string) error {
	cs.logger.Info("Loading configuration from: %s", configFile)
	cs.configFile = configFile

	// Config is already loaded by factory, just update the file path
	return nil
}

// SaveConfig implements ConfigServiceInterface
func (cs *ConfigService) SaveConfig() error {
	cs.logger.Info("Saving configuration to: %s", cs.configFile)

	if cs.configFile == "" {
		return fmt.Errorf("no config file path set")
	}

	return config.SaveConfig(cs.configFile, cs.config)
}

// ReloadConfig implements ConfigServiceInterface
func (cs *ConfigService) ReloadConfig() error {
	cs.logger.Info("Reloading configuration...")

	if cs.configFile == "" {
		return fmt.Errorf("no config file path set")
	}

	newConfig, err := config.LoadConfig(cs.configFile)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	cs.config = newConfig
	return nil
}

// GetConfig implements ConfigServiceInterface
func (cs *ConfigService) GetConfig() interface{} {
	return cs.config
}

// UpdateVADSensitivity implements ConfigServiceInterface
func (cs *ConfigService) UpdateVADSensitivity(sensitivity string) error {
	cs.logger.Info("Updating VAD sensitivity to: %s", sensitivity)

	s := strings.ToLower(sensitivity)
	switch s {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("invalid VAD sensitivity: %s", sensitivity)
	}

	if cs.config.Audio.VADSensitivity == s {
		return nil
	}

	old := cs.config.Audio.VADSensitivity
	cs.config.Audio.VADSensitivity = s

	if err := cs.SaveConfig(); err != nil {
		cs.config.Audio.VADSensitivity = old
		return fmt.Errorf("failed to save config: %w", err)
	}
	cs.setStoreValue("audio.vad_sensitivity", s)

	return nil
}

// UpdateLanguage implements ConfigServiceInterface
func (cs *ConfigService) UpdateLanguage(language string) error {
	cs.logger.Info("Updating language to: %s", language)

	if cs.config.General.Language == language {
		return nil
	}

	old := cs.config.General.Language
	cs.config.General.Language = language

	if err := cs.SaveConfig(); err != nil {
		cs.config.General.Language = old
		return fmt.Errorf("failed to save config: %w", err)
	}
	cs.setStoreValue("general.language", language)

	return nil
}

// UpdateModelType implements ConfigServiceInterface
func (cs *ConfigService) UpdateModelType(modelType string) error {
	cs.logger.Info("Updating model type to: %s", modelType)

	if cs.config.General.ModelType == modelType {
		return nil
	}

	old := cs.config.General.ModelType
	cs.config.General.ModelType = modelType

	if err := cs.SaveConfig(); err != nil {
		cs.config.General.ModelType = old
		return fmt.Errorf("failed to save config: %w", err)
	}
	cs.setStoreValue("general.model_type", modelType)

	return nil
}

// UpdateOutputMode implements ConfigServiceInterface
func (cs *ConfigService) UpdateOutputMode(mode string) error {
	cs.logger.Info("Updating output mode to: %s", mode)

	if cs.config.Output.DefaultMode == mode {
		return nil
	}

	old := cs.config.Output.DefaultMode
	cs.config.Output.DefaultMode = mode

	if err := cs.SaveConfig(); err != nil {
		cs.config.Output.DefaultMode = old
		return fmt.Errorf("failed to save config: %w", err)
	}
	cs.setStoreValue("output.default_mode", mode)

	return nil
}

// UpdateRecordingMethod implements ConfigServiceInterface
func (cs *ConfigService) UpdateRecordingMethod(method string) error {
	cs.logger.Info("Updating recording method to: %s", method)

	if cs.config.Audio.RecordingMethod == method {
		return nil
	}

	old := cs.config.Audio.RecordingMethod
	cs.config.Audio.RecordingMethod = method

	if err := cs.SaveConfig(); err != nil {
		cs.config.Audio.RecordingMethod = old
		return fmt.Errorf("failed to save config: %w", err)
	}
	cs.setStoreValue("audio.recording_method", method)

	return nil
}

// ToggleWorkflowNotifications implements ConfigServiceInterface
func (cs *ConfigService) ToggleWorkflowNotifications() error {
	cs.logger.Info("Toggling workflow notifications")

	cs.config.Notifications.EnableWorkflowNotifications = !cs.config.Notifications.EnableWorkflowNotifications

	if err := cs.SaveConfig(); err != nil {
		return err
	}
	cs.setStoreValue("notifications.enable_workflow_notifications", cs.config.Notifications.EnableWorkflowNotifications)
	return nil
}

// ToggleStreaming implements ConfigServiceInterface
func (cs *ConfigService) ToggleStreaming() error {
	cs.logger.Info("Toggling streaming mode")

	cs.config.Audio.EnableStreaming = !cs.config.Audio.EnableStreaming

	if err := cs.SaveConfig(); err != nil {
		return err
	}
	cs.setStoreValue("audio.enable_streaming", cs.config.Audio.EnableStreaming)
	return nil
}

// ToggleVAD implements ConfigServiceInterface
func (cs *ConfigService) ToggleVAD() error {
	cs.logger.Info("Toggling VAD mode")

	cs.config.Audio.EnableVAD = !cs.config.Audio.EnableVAD

	if err := cs.SaveConfig(); err != nil {
		return err
	}
	cs.setStoreValue("audio.enable_vad", cs.config.Audio.EnableVAD)
	return nil
}

// SetupHotkeyCallbacks configures hotkey callbacks with handler functions
func (cs *ConfigService) SetupHotkeyCallbacks(
	startRecording func() error,
	stopRecording func() error,
	toggleStreaming func() error,
	toggleVAD func() error,
	switchModel func() error,
	showConfig func() error,
	reloadConfig func() error,
) error {
	if cs.hotkeyManager == nil {
		return fmt.Errorf("hotkey manager not available")
	}

	cs.logger.Info("Setting up hotkey callbacks...")

	// Register the main recording callbacks
	cs.hotkeyManager.RegisterCallbacks(startRecording, stopRecording)

	// Register additional hotkey actions
	cs.hotkeyManager.RegisterHotkeyAction("toggle_streaming", toggleStreaming)
	cs.hotkeyManager.RegisterHotkeyAction("toggle_vad", toggleVAD)
	cs.hotkeyManager.RegisterHotkeyAction("switch_model", switchModel)
	cs.hotkeyManager.RegisterHotkeyAction("show_config", showConfig)
	cs.hotkeyManager.RegisterHotkeyAction("reload_config", reloadConfig)

	cs.logger.Info("Hotkey callbacks configured successfully")
	return nil
}

// RegisterHotkeys implements ConfigServiceInterface
func (cs *ConfigService) RegisterHotkeys() error {
	if cs.hotkeyManager == nil {
		return fmt.Errorf("hotkey manager not available")
	}

	cs.logger.Info("Registering hotkeys...")

	return cs.hotkeyManager.Start()
}

// UnregisterHotkeys implements ConfigServiceInterface
func (cs *ConfigService) UnregisterHotkeys() error {
	if cs.hotkeyManager == nil {
		return nil
	}

	cs.logger.Info("Unregistering hotkeys...")

	cs.hotkeyManager.Stop()
	return nil
}

// Shutdown implements ConfigServiceInterface
func (cs *ConfigService) Shutdown() error {
	var lastErr error

	// Unregister hotkeys
	if err := cs.UnregisterHotkeys(); err != nil {
		cs.logger.Error("Error unregistering hotkeys: %v", err)
		lastErr = err
	}

	// Save final configuration state
	if err := cs.SaveConfig(); err != nil {
		cs.logger.Error("Error saving config during shutdown: %v", err)
		lastErr = err
	}

	cs.logger.Info("ConfigService shutdown complete")
	return lastErr
}
