// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package services

import (
	"github.com/AshBuk/sonicinput/config"
	"github.com/AshBuk/sonicinput/config/store"
	"github.com/AshBuk/sonicinput/hotkeys/adapters"
	"github.com/AshBuk/sonicinput/reload"
)

// audioReloadable applies audio.* config changes without tearing down the
// AudioService itself: a changed recording method just marks the recorder
// for lazy reinitialization, the same path ensureAudioRecorderAvailable
// already takes after a manual fallback switch.
type audioReloadable struct {
	audio *AudioService
}

func (a *audioReloadable) ConfigDependencies() []string  { return []string{"audio"} }
func (a *audioReloadable) ServiceDependencies() []string { return nil }

func (a *audioReloadable) ChooseStrategy(*store.ConfigDiff) reload.Strategy {
	return reload.Reinitialize
}

func (a *audioReloadable) CanReloadNow() (bool, string) {
	if a.audio != nil && a.audio.IsRecording() {
		return false, "recording in progress"
	}
	return true, ""
}

func (a *audioReloadable) Prepare(*store.ConfigDiff) (interface{}, error) { return nil, nil }

func (a *audioReloadable) Commit(*store.ConfigDiff) error {
	a.audio.mu.Lock()
	a.audio.audioRecorderNeedsReinit = true
	a.audio.mu.Unlock()
	return nil
}

func (a *audioReloadable) Rollback(interface{}) error { return nil }

// ioReloadable handles output.* config changes via the RECREATE strategy:
// the concrete Outputter implementation depends on the mode (clipboard vs.
// active-window vs. smart), so unlike a parameter tweak this needs a fresh
// instance from the Registry's "outputManager" factory.
type ioReloadable struct {
	io *IOService
}

func (o *ioReloadable) ConfigDependencies() []string  { return []string{"output"} }
func (o *ioReloadable) ServiceDependencies() []string { return nil }

func (o *ioReloadable) ChooseStrategy(*store.ConfigDiff) reload.Strategy {
	return reload.Recreate
}

func (o *ioReloadable) CanReloadNow() (bool, string) { return true, "" }

func (o *ioReloadable) Prepare(*store.ConfigDiff) (interface{}, error) { return nil, nil }

// Commit is never invoked for a RECREATE strategy; the Coordinator calls
// AfterRecreate once the Registry has swapped the singleton instead.
func (o *ioReloadable) Commit(*store.ConfigDiff) error { return nil }

func (o *ioReloadable) Rollback(interface{}) error { return nil }

func (o *ioReloadable) AfterRecreate(newInstance interface{}) error {
	return o.io.AfterRecreate(newInstance)
}

// hotkeyReloadable applies hotkeys.* config changes in place through the
// hotkey manager's own ReloadConfig, the same path HotkeyService.
// ReloadFromConfig already exposes for the tray's "reload config" action.
type hotkeyReloadable struct {
	hotkeys *HotkeyService
	cfg     *config.Config
}

func (h *hotkeyReloadable) ConfigDependencies() []string  { return []string{"hotkeys"} }
func (h *hotkeyReloadable) ServiceDependencies() []string { return nil }

func (h *hotkeyReloadable) ChooseStrategy(*store.ConfigDiff) reload.Strategy {
	return reload.Reinitialize
}

func (h *hotkeyReloadable) CanReloadNow() (bool, string) { return true, "" }

func (h *hotkeyReloadable) Prepare(*store.ConfigDiff) (interface{}, error) { return nil, nil }

func (h *hotkeyReloadable) Commit(*store.ConfigDiff) error {
	newCfg := adapters.NewConfigAdapter(h.cfg.Hotkeys.StartRecording, h.cfg.Hotkeys.Provider).
		WithAdditionalHotkeys(h.cfg.Hotkeys.ShowConfig, h.cfg.Hotkeys.ResetToDefaults)
	return h.hotkeys.ReloadBindings(newCfg)
}

func (h *hotkeyReloadable) Rollback(interface{}) error { return nil }
