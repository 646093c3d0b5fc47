// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package errs defines the error kinds shared across the core and the
// propagation policy (recovered locally / surfaced to user / fatal) each
// kind falls under.
package errs

import "fmt"

// Kind classifies an error for logging, event emission, and suggestion
// generation. It is not a type hierarchy: callers switch on Kind, they
// never type-assert on concrete error types.
type Kind string

const (
	AudioDevice       Kind = "audio_device"
	AudioOverflow     Kind = "audio_overflow"
	ModelLoad         Kind = "model_load"
	Transcription     Kind = "transcription"
	CloudAuth         Kind = "cloud_auth"
	CloudRateLimit    Kind = "cloud_rate_limit"
	CloudTransient    Kind = "cloud_transient"
	CloudFatal        Kind = "cloud_fatal"
	Network           Kind = "network"
	Timeout           Kind = "timeout"
	ClipboardBusy     Kind = "clipboard_busy"
	InputInjection    Kind = "input_injection"
	ConfigInvalid     Kind = "config_invalid"
	ConfigCorrupt     Kind = "config_corrupt"
	HotkeyConflict    Kind = "hotkey_conflict"
	Permission        Kind = "permission"
	ValidationFailure Kind = "validation_failure"
	GPUUnavailable    Kind = "gpu_unavailable"
	GPUMemory         Kind = "gpu_memory"
	Unknown           Kind = "unknown"
)

// Severity describes how an error of a given Kind should propagate.
type Severity string

const (
	SeverityRecovered Severity = "recovered" // logged, pipeline continues
	SeveritySurfaced  Severity = "surfaced"   // event emitted, current utterance aborts
	SeverityFatal     Severity = "fatal"      // process exits with code 1
)

// CoreError carries a Kind, a short plain-language message, recovery
// suggestions, and the wrapped cause.
type CoreError struct {
	Kind        Kind
	Message     string
	Suggestions []string
	Err         error
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error { return e.Err }

// New builds a CoreError whose Suggestions are filled from Kind.
func New(kind Kind, message string, cause error) *CoreError {
	return &CoreError{
		Kind:        kind,
		Message:     message,
		Suggestions: SuggestionsFor(kind),
		Err:         cause,
	}
}

// SeverityOf returns the propagation policy for a Kind, per spec §7.
func SeverityOf(kind Kind) Severity {
	switch kind {
	case AudioOverflow, Transcription, Timeout, ClipboardBusy:
		return SeverityRecovered
	case ModelLoad, CloudFatal, InputInjection, HotkeyConflict:
		return SeveritySurfaced
	case ConfigCorrupt:
		return SeverityFatal
	default:
		return SeveritySurfaced
	}
}

// SuggestionsFor returns 2-6 short, plain-language recovery suggestions for
// a Kind. Never returns fewer than two entries.
func SuggestionsFor(kind Kind) []string {
	switch kind {
	case AudioDevice:
		return []string{
			"check that a microphone is connected",
			"select a different input device in settings",
			"verify no other application is holding the device exclusively",
		}
	case AudioOverflow:
		return []string{
			"close other audio-heavy applications",
			"reduce the configured recording sample rate",
		}
	case ModelLoad:
		return []string{
			"close other GPU applications",
			"switch to CPU inference",
			"use a smaller model",
			"re-download the model file, it may be corrupted",
		}
	case GPUUnavailable:
		return []string{
			"switch to CPU inference",
			"confirm GPU drivers are installed",
		}
	case GPUMemory:
		return []string{
			"close other GPU applications",
			"switch to CPU inference",
			"use a smaller model",
		}
	case Transcription:
		return []string{
			"retry recording",
			"check that the selected model is loaded",
		}
	case CloudAuth:
		return []string{
			"verify the API key is set and current",
			"check the provider account's billing status",
		}
	case CloudRateLimit:
		return []string{
			"wait before retrying",
			"reduce request frequency",
			"upgrade the provider plan's rate limit",
		}
	case CloudTransient, Network, Timeout:
		return []string{
			"check your network connection",
			"retry in a few seconds",
			"verify the provider's status page",
		}
	case CloudFatal:
		return []string{
			"check the request payload against the provider's API docs",
			"contact the provider's support",
		}
	case ClipboardBusy:
		return []string{
			"close the application currently holding the clipboard",
			"retry the paste",
		}
	case InputInjection:
		return []string{
			"click into the target window and retry",
			"switch the injection method in settings",
		}
	case ConfigInvalid:
		return []string{
			"check the edited configuration value against its schema",
			"reset the affected setting to its default",
		}
	case ConfigCorrupt:
		return []string{
			"restore configuration from the automatic backup",
			"delete the config file to regenerate defaults",
		}
	case HotkeyConflict:
		return []string{
			"choose a different key combination",
			"close the application currently holding that hotkey",
		}
	case Permission:
		return []string{
			"grant the required OS permission",
			"run with elevated privileges if appropriate",
		}
	case ValidationFailure:
		return []string{
			"check the input against the expected format",
			"consult the field's documentation",
		}
	default:
		return []string{
			"retry the operation",
			"check the application logs for details",
		}
	}
}
