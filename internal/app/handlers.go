// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package app

import "fmt"

// handleStartRecording begins a standard (non-streaming, non-VAD) recording
// session through the audio service.
func (a *App) handleStartRecording() error {
	if a.Services == nil || a.Services.Audio == nil {
		return fmt.Errorf("audio service not available")
	}
	return a.Services.Audio.HandleStartRecording()
}

// handleStopRecordingAndTranscribe stops whatever recording mode is active
// and hands the captured audio off for transcription.
func (a *App) handleStopRecordingAndTranscribe() error {
	if a.Services == nil || a.Services.Audio == nil {
		return fmt.Errorf("audio service not available")
	}
	return a.Services.Audio.HandleStopRecording()
}

// handleToggleVAD starts or stops Voice Activity Detection gated recording,
// mirroring the start/stop recording hotkey pair.
func (a *App) handleToggleVAD() error {
	if a.Services == nil || a.Services.Audio == nil {
		return fmt.Errorf("audio service not available")
	}
	if a.Services.Audio.IsRecording() {
		return a.Services.Audio.HandleStopRecording()
	}
	return a.Services.Audio.HandleStartVADRecording()
}

// handleToggleStreaming starts or stops chunked streaming recording.
func (a *App) handleToggleStreaming() error {
	if a.Services == nil || a.Services.Audio == nil {
		return fmt.Errorf("audio service not available")
	}
	if a.Services.Audio.IsRecording() {
		return a.Services.Audio.HandleStopRecording()
	}
	return a.Services.Audio.HandleStartStreamingRecording()
}

// handleSwitchModel cycles to the next available Whisper model and notifies
// the user which one is now active.
func (a *App) handleSwitchModel() error {
	if a.Services == nil || a.Services.Audio == nil {
		return fmt.Errorf("audio service not available")
	}
	description, err := a.Services.Audio.CycleModel()
	if err != nil {
		if a.Services.UI != nil {
			a.Services.UI.ShowNotification("Model Switch", err.Error())
		}
		return err
	}
	if a.Services.UI != nil {
		a.Services.UI.ShowNotification("Model Switched", "Now using: "+description)
	}
	return nil
}

// handleShowConfig opens the configuration file in the system default editor.
func (a *App) handleShowConfig() error {
	if a.Services == nil || a.Services.UI == nil {
		return fmt.Errorf("ui service not available")
	}
	return a.Services.UI.ShowConfigFile()
}

// handleResetToDefaults reloads configuration from disk, discarding any
// in-memory changes made since the file was last loaded or saved.
func (a *App) handleResetToDefaults() error {
	if a.Services == nil || a.Services.Config == nil {
		return fmt.Errorf("config service not available")
	}
	if err := a.Services.Config.ReloadConfig(); err != nil {
		return err
	}
	if a.Services.UI != nil {
		a.Services.UI.ShowNotification("Configuration", "Reset to saved defaults")
	}
	return nil
}
