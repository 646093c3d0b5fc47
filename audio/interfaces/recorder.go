// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package interfaces

// AudioLevelCallback is called with audio level information
type AudioLevelCallback func(level float64)

// AudioRecorder interface for audio recording
type AudioRecorder interface {
	StartRecording() error
	StopRecording() (string, error)
	GetOutputFile() string
	CleanupFile() error
	SetAudioLevelCallback(callback AudioLevelCallback) // Sets callback for audio level monitoring
	GetAudioLevel() float64                            // Returns current audio level (0.0 to 1.0)

	// UseStreaming reports whether this recorder can emit chunked PCM while recording.
	UseStreaming() bool
	// StartStreamingRecording begins emitting float32 PCM chunks on the returned channel.
	// The recording process must already be started via StartRecording.
	StartStreamingRecording() (<-chan []float32, error)
	// StopStreamingRecording stops chunk emission without stopping the underlying process.
	StopStreamingRecording() error
}
