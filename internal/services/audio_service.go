// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/AshBuk/sonicinput/audio/factory"
	"github.com/AshBuk/sonicinput/audio/interfaces"
	"github.com/AshBuk/sonicinput/audio/processing"
	"github.com/AshBuk/sonicinput/config"
	"github.com/AshBuk/sonicinput/history"
	"github.com/AshBuk/sonicinput/internal/constants"
	"github.com/AshBuk/sonicinput/internal/logger"
	"github.com/AshBuk/sonicinput/internal/utils"
	"github.com/AshBuk/sonicinput/provider"
	"github.com/AshBuk/sonicinput/refine"
	"github.com/AshBuk/sonicinput/whisper"
)

// maxSilenceFrames is the number of consecutive silent chunks (at the
// configured streaming buffer duration) that end a speech segment.
const maxSilenceFrames = 20

// Orchestrates recording, transcription, and output workflows
type AudioService struct {
	logger          logger.Logger
	config          *config.Config
	recorder        interfaces.AudioRecorder
	whisperEngine   *whisper.WhisperEngine
	streamingEngine *whisper.StreamingWhisperEngine
	modelManager    whisper.ModelManager
	tempManager     *processing.TempFileManager

	// State management
	mu                       sync.RWMutex
	isRecording              bool
	lastTranscript           string
	audioRecorderNeedsReinit bool

	// Chunked (streaming/VAD) recording state
	chunkedActive bool
	chunkedCancel context.CancelFunc

	// Goroutine ownership: tracks background transcription tasks
	wg sync.WaitGroup

	// Context for operations
	ctx    context.Context
	cancel context.CancelFunc

	// Dependencies
	ui  UIServiceInterface
	io  IOServiceInterface
	cfg ConfigServiceInterface

	// Optional post-transcription pipeline stages
	refiner      *refine.Refiner
	refineOpts   refine.Options
	historyStore *history.Store
}

// ErrNoRecordingInProgress indicates a stop request when no session is active.
var ErrNoRecordingInProgress = errors.New("no recording in progress")

// Create a new AudioService instance
func NewAudioService(
	logger logger.Logger,
	config *config.Config,
	recorder interfaces.AudioRecorder,
	whisperEngine *whisper.WhisperEngine,
	streamingEngine *whisper.StreamingWhisperEngine,
	modelManager whisper.ModelManager,
	tempManager *processing.TempFileManager,
) *AudioService {
	ctx, cancel := context.WithCancel(context.Background())

	return &AudioService{
		logger:          logger,
		config:          config,
		recorder:        recorder,
		whisperEngine:   whisperEngine,
		streamingEngine: streamingEngine,
		modelManager:    modelManager,
		tempManager:     tempManager,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Wire dependencies to prevent circular imports during initialization
func (as *AudioService) SetDependencies(ui UIServiceInterface, io IOServiceInterface) {
	as.ui = ui
	as.io = io
}

// Wire config service for runtime setting persistence
func (as *AudioService) SetConfig(cfg ConfigServiceInterface) { as.cfg = cfg }

// SetRefiner wires an AI text-refinement stage into the transcription
// pipeline; nil disables it.
func (as *AudioService) SetRefiner(refiner *refine.Refiner, opts refine.Options) {
	as.refiner = refiner
	as.refineOpts = opts
}

// SetHistoryStore wires persistence of completed utterances; nil disables it.
func (as *AudioService) SetHistoryStore(hs *history.Store) { as.historyStore = hs }

// HandleStartRecording starts audio recording
func (as *AudioService) HandleStartRecording() error {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.logger.Info("Starting recording...")

	// Ensure model is available
	if err := as.ensureModelAvailable(); err != nil {
		as.logger.Error("Model not available: %v", err)
		as.setUIError(constants.MsgModelUnavailable)
		return fmt.Errorf("model not available: %w", err)
	}
	// Ensure audio recorder is available
	if err := as.ensureAudioRecorderAvailable(); err != nil {
		as.logger.Error("Audio recorder not available: %v", err)
		as.setUIError(constants.MsgRecorderUnavailable)
		return fmt.Errorf("audio recorder not available: %w", err)
	}
	// Standard recording
	return as.startStandardRecording()
}

// HandleStartStreamingRecording starts continuous transcription. When a
// StreamingWhisperEngine is available it transcribes overlapping chunks
// live with iterative agreement; otherwise it falls back to VAD-gated
// segment transcription, delivered as soon as silence ends a segment.
func (as *AudioService) HandleStartStreamingRecording() error {
	if as.streamingEngine != nil {
		return as.startLiveStreamingRecording()
	}
	return as.startChunkedRecording("Streaming")
}

// startLiveStreamingRecording feeds the recorder's raw chunk stream directly
// into the StreamingWhisperEngine, forwarding confirmed results as soon as
// the agreement threshold is reached.
func (as *AudioService) startLiveStreamingRecording() error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.isRecording || as.chunkedActive {
		return fmt.Errorf("recording already in progress")
	}
	if err := as.ensureModelAvailable(); err != nil {
		as.setUIError(constants.MsgModelUnavailable)
		return fmt.Errorf("model not available: %w", err)
	}
	if err := as.ensureAudioRecorderAvailable(); err != nil {
		as.setUIError(constants.MsgRecorderUnavailable)
		return fmt.Errorf("audio recorder not available: %w", err)
	}
	if !as.recorder.UseStreaming() {
		return fmt.Errorf("recorder does not support streaming mode")
	}
	if err := as.recorder.StartRecording(); err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}
	audioStream, err := as.recorder.StartStreamingRecording()
	if err != nil {
		_, _ = as.recorder.StopRecording()
		return fmt.Errorf("failed to start streaming recording: %w", err)
	}

	ctx, cancel := context.WithCancel(as.ctx)
	as.chunkedActive = true
	as.chunkedCancel = cancel
	as.isRecording = true

	as.streamingEngine.Reset()
	as.streamingEngine.SetPartialResultCallback(func(text string, isConfirmed bool) {
		if text == "" || as.ui == nil {
			return
		}
		status := "(listening)"
		if isConfirmed {
			status = "(confirmed)"
		}
		as.ui.SetTooltip(status + " " + text)
	})

	if as.ui != nil {
		as.ui.SetRecordingState(true)
		as.ui.ShowNotification("Streaming Mode", "Real-time transcription started. Speak normally.")
	}

	go as.processLiveStream(ctx, audioStream)
	return nil
}

// processLiveStream runs the streaming engine over the recorder's chunk
// channel and delivers confirmed results as they arrive, resetting
// recording state once the audio stream closes or the context is cancelled.
func (as *AudioService) processLiveStream(ctx context.Context, audioStream <-chan []float32) {
	defer func() {
		as.mu.Lock()
		as.chunkedActive = false
		as.chunkedCancel = nil
		as.isRecording = false
		as.mu.Unlock()
		if as.ui != nil {
			as.ui.SetRecordingState(false)
		}
	}()

	resultStream := make(chan *whisper.TranscriptionResult, 10)
	go func() {
		if err := as.streamingEngine.TranscribeStream(ctx, audioStream, resultStream); err != nil {
			as.logger.Warning("Streaming transcription ended: %v", err)
		}
	}()

	for {
		select {
		case result, ok := <-resultStream:
			if !ok {
				return
			}
			if result.IsConfirmed && result.Text != "" {
				as.HandleStreamingResult(result.Text, true)
			}
		case <-ctx.Done():
			return
		}
	}
}

// HandleStartVADRecording starts Voice Activity Detection gated recording:
// recording begins on speech and ends after a period of silence, using the
// same chunk segmentation as streaming mode.
func (as *AudioService) HandleStartVADRecording() error {
	return as.startChunkedRecording("VAD")
}

// HandleStreamingResult routes a streaming/VAD transcription result to the
// configured output, mirroring handleTranscriptionResult for segment output.
func (as *AudioService) HandleStreamingResult(text string, isFinal bool) {
	if !isFinal {
		return
	}
	as.handleTranscriptionResult(text, nil, "")
}

// EnsureModelAvailable implements AudioServiceInterface
func (as *AudioService) EnsureModelAvailable() error {
	return as.ensureModelAvailable()
}

// EnsureAudioRecorderAvailable implements AudioServiceInterface
func (as *AudioService) EnsureAudioRecorderAvailable() error {
	return as.ensureAudioRecorderAvailable()
}

// SwitchModel switches the active whisper model by ID
func (as *AudioService) SwitchModel(modelType string) error {
	if as.modelManager == nil {
		return fmt.Errorf("model manager not available")
	}
	path, err := as.modelManager.SwitchModel(modelType)
	if err != nil {
		return fmt.Errorf("failed to switch model: %w", err)
	}
	as.logger.Info("Switched model to %s (%s)", modelType, path)
	return nil
}

// CycleModel switches to the next available model in alphabetical order,
// wrapping around after the last one. Returns the description of the model
// switched to, for display in a notification.
func (as *AudioService) CycleModel() (string, error) {
	if as.modelManager == nil {
		return "", fmt.Errorf("model manager not available")
	}
	available := as.modelManager.GetAvailableModels()
	if len(available) <= 1 {
		return "", fmt.Errorf("only one model available")
	}

	names := make([]string, 0, len(available))
	for name := range available {
		names = append(names, name)
	}
	sort.Strings(names)

	current := as.modelManager.GetActiveModel()
	nextIndex := 0
	for i, name := range names {
		if name == current {
			nextIndex = (i + 1) % len(names)
			break
		}
	}
	next := names[nextIndex]

	if err := as.SwitchModel(next); err != nil {
		return "", err
	}
	return available[next].Description, nil
}

// startChunkedRecording begins recorder-level streaming and a VAD-gated
// segmentation loop shared by both streaming and VAD recording modes.
func (as *AudioService) startChunkedRecording(mode string) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.isRecording || as.chunkedActive {
		return fmt.Errorf("recording already in progress")
	}
	if err := as.ensureModelAvailable(); err != nil {
		as.setUIError(constants.MsgModelUnavailable)
		return fmt.Errorf("model not available: %w", err)
	}
	if err := as.ensureAudioRecorderAvailable(); err != nil {
		as.setUIError(constants.MsgRecorderUnavailable)
		return fmt.Errorf("audio recorder not available: %w", err)
	}
	if !as.recorder.UseStreaming() {
		return fmt.Errorf("recorder does not support %s mode", mode)
	}
	if err := as.recorder.StartRecording(); err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}
	stream, err := as.recorder.StartStreamingRecording()
	if err != nil {
		_, _ = as.recorder.StopRecording()
		return fmt.Errorf("failed to start %s recording: %w", mode, err)
	}

	ctx, cancel := context.WithCancel(as.ctx)
	as.chunkedActive = true
	as.chunkedCancel = cancel
	as.isRecording = true

	if as.ui != nil {
		as.ui.SetRecordingState(true)
		as.ui.ShowNotification(mode+" Mode", "Listening for speech...")
	}

	go as.processChunkedStream(ctx, stream, mode)
	return nil
}

// processChunkedStream gates incoming PCM chunks by voice activity,
// buffering speech and flushing it for transcription once silence follows.
func (as *AudioService) processChunkedStream(ctx context.Context, stream <-chan []float32, mode string) {
	vad := processing.NewVADWithSensitivity(processing.ParseVADSensitivity(as.config.Audio.VADSensitivity))
	var speechBuffer [][]float32
	recordingSpeech := false
	silenceCount := 0

	defer func() {
		as.mu.Lock()
		as.chunkedActive = false
		as.chunkedCancel = nil
		as.isRecording = false
		as.mu.Unlock()
		if as.ui != nil {
			as.ui.SetRecordingState(false)
		}
	}()

	for {
		select {
		case chunk, ok := <-stream:
			if !ok {
				if recordingSpeech && len(speechBuffer) > 0 {
					as.processSpeechSegment(speechBuffer, mode)
				}
				return
			}
			if vad.IsSpeechActive(chunk) {
				silenceCount = 0
				if !recordingSpeech {
					recordingSpeech = true
					speechBuffer = speechBuffer[:0]
					as.logger.Info("%s: speech detected, recording segment", mode)
					if as.ui != nil {
						as.ui.ShowNotification(mode, "Speech detected...")
					}
				}
				speechBuffer = append(speechBuffer, chunk)
			} else if recordingSpeech {
				silenceCount++
				speechBuffer = append(speechBuffer, chunk)
				if silenceCount >= maxSilenceFrames {
					recordingSpeech = false
					segment := speechBuffer
					speechBuffer = nil
					go as.processSpeechSegment(segment, mode)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// processSpeechSegment encodes a buffered speech segment to a temp WAV file
// and transcribes it, delivering the result through HandleStreamingResult.
func (as *AudioService) processSpeechSegment(speechBuffer [][]float32, mode string) {
	if len(speechBuffer) == 0 {
		return
	}
	as.logger.Info("%s: processing speech segment (%d chunks)", mode, len(speechBuffer))

	audioFile, err := as.saveSpeechBufferToFile(speechBuffer)
	if err != nil {
		as.logger.Error("%s: failed to save speech segment: %v", mode, err)
		return
	}
	defer func() { _ = os.Remove(audioFile) }()

	ctx, cancel := context.WithTimeout(as.ctx, 2*time.Minute)
	defer cancel()
	transcript, err := as.whisperEngine.TranscribeWithContext(ctx, audioFile)
	if err != nil {
		as.logger.Error("%s: transcription failed: %v", mode, err)
		return
	}
	as.HandleStreamingResult(transcript, true)
}

// saveSpeechBufferToFile joins buffered PCM chunks and encodes them as a WAV
// file under the configured temp directory.
func (as *AudioService) saveSpeechBufferToFile(speechBuffer [][]float32) (string, error) {
	var total int
	for _, c := range speechBuffer {
		total += len(c)
	}
	pcm := make([]float32, 0, total)
	for _, c := range speechBuffer {
		pcm = append(pcm, c...)
	}

	wavBytes, err := provider.EncodeWAV(pcm, as.config.Audio.SampleRate)
	if err != nil {
		return "", fmt.Errorf("failed to encode speech segment: %w", err)
	}

	path, err := as.tempManager.CreateTempWav(as.config.General.TempAudioPath)
	if err != nil {
		return "", err
	}
	// #nosec G304 -- path is produced and validated by TempFileManager.CreateTempWav.
	if err := os.WriteFile(filepath.Clean(path), wavBytes, 0600); err != nil {
		return "", fmt.Errorf("failed to write speech segment: %w", err)
	}
	return path, nil
}

// HandleStopRecording stops recording and starts transcription
func (as *AudioService) HandleStopRecording() error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.chunkedActive {
		cancel := as.chunkedCancel
		as.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		_ = as.recorder.StopStreamingRecording()
		_, _ = as.recorder.StopRecording()
		as.mu.Lock()
		return nil
	}

	if !as.isRecording {
		return ErrNoRecordingInProgress
	}
	as.logger.Info("Stopping recording and transcribing...")

	audioFile, err := as.recorder.StopRecording()
	if err != nil {
		as.logger.Warning("StopRecording returned error: %v", err)
		as.handleRecordingError(err)

		// Auto-fallback to arecord if using ffmpeg
		if as.config.Audio.RecordingMethod == "ffmpeg" {
			// Persist change via ConfigService if available
			if as.cfg != nil {
				_ = as.cfg.UpdateRecordingMethod("arecord")
			}
			as.config.Audio.RecordingMethod = "arecord"
			as.ClearSession()
			if as.ui != nil {
				as.ui.ShowNotification("Audio Fallback", "Switched to arecord due to ffmpeg capture error. Try recording again.")
				// Refresh tray to reflect new method
				as.ui.UpdateSettings(as.config)
			}
			as.logger.Info("Auto-fallback: switched to arecord due to ffmpeg failure")
		}
		// Ensure state is reset so the hotkey toggle can recover
		as.isRecording = false
		if as.ui != nil {
			as.ui.SetRecordingState(false)
		}
		// Swallow error to make stop idempotent and avoid being stuck
		return nil
	}
	as.isRecording = false
	// Update UI
	if as.ui != nil {
		as.ui.SetRecordingState(false)
		as.ui.ShowNotification(constants.NotifyRecordingStopped, constants.NotifyRecordingStopMsg)
	}
	// Check if shutdown is in progress before starting transcription
	select {
	case <-as.ctx.Done():
		as.logger.Warning("Shutdown in progress, skipping transcription")
		return nil
	default:
	}
	// Signal IO that transcription is starting to protect clipboard reads
	if as.io != nil {
		as.io.BeginTranscription()
	}
	// Start async transcription with ownership tracking
	as.wg.Add(1)
	go func() {
		defer as.wg.Done()
		as.transcribeAsync(audioFile)
	}()
	return nil
}

// IsRecording returns current recording state
func (as *AudioService) IsRecording() bool {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.isRecording
}

// GetLastTranscript returns the last transcription result
func (as *AudioService) GetLastTranscript() string {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.lastTranscript
}

// ensureModelAvailable ensures whisper model is ready
func (as *AudioService) ensureModelAvailable() error {
	if as.modelManager == nil {
		return fmt.Errorf("model manager not available")
	}
	// Try to get the model path, which will download if needed
	_, err := as.modelManager.GetModelPath()
	if err != nil {
		as.logger.Info("Model not found locally, checking download...")
		return fmt.Errorf("failed to ensure model available: %w", err)
	}
	return nil
}

// ensureAudioRecorderAvailable ensures audio recorder is ready
func (as *AudioService) ensureAudioRecorderAvailable() error {
	if as.audioRecorderNeedsReinit || as.recorder == nil {
		as.logger.Info("Reinitializing audio recorder...")
		recorder, err := factory.GetRecorder(as.config, as.logger, as.tempManager)
		if err != nil {
			return fmt.Errorf("failed to reinitialize audio recorder: %w", err)
		}
		as.recorder = recorder
		as.audioRecorderNeedsReinit = false
	}
	return nil
}

// Shutdown gracefully shuts down the audio service
func (as *AudioService) Shutdown() error {
	// Use function scope to ensure mutex is released even on panic
	func() {
		as.mu.Lock()
		defer as.mu.Unlock()

		// Cancel context first to signal all operations and prevent new goroutines
		as.cancel()

		if as.isRecording && as.recorder != nil {
			if _, err := as.recorder.StopRecording(); err != nil {
				as.logger.Error("Error stopping recording during shutdown: %v", err)
			}
			as.isRecording = false
		}
	}()

	// Wait for background transcription tasks with timeout
	done := make(chan struct{})
	go func() {
		as.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		as.logger.Info("AudioService shutdown complete")
	case <-time.After(5 * time.Second):
		as.logger.Warning("AudioService shutdown timeout - transcription may still be running")
	}
	return nil
}

// Private helper methods

// startStandardRecording starts standard recording mode
func (as *AudioService) startStandardRecording() error {
	// Set up audio level monitoring
	as.recorder.SetAudioLevelCallback(func(level float64) {
		if as.ui != nil {
			as.ui.UpdateRecordingUI(true, level)
		}
		as.logger.Debug("Audio level: %.2f", level)
	})
	// Start recording
	if err := as.recorder.StartRecording(); err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}
	as.isRecording = true
	// Update UI
	if as.ui != nil {
		as.ui.SetRecordingState(true)
		as.ui.ShowNotification(constants.NotifyRecordingStarted, "Speak now...")
	}
	return nil
}

// transcribeAsync performs async transcription.
// Note: The inner goroutine calling TranscribeWithContext is intentionally not tracked
// by the WaitGroup. Whisper.cpp CGO calls cannot be cancelled, so tracking them would
// cause Shutdown() to block for up to 2 minutes. Instead, we accept that the CGO work
// may outlive shutdown: whisper/engine.go's TranscribeWithContext returns on
// cancellation, but the Transcribe call it started runs to completion.
func (as *AudioService) transcribeAsync(audioFile string) {
	ctx, cancel := context.WithTimeout(as.ctx, 2*time.Minute)
	defer cancel()

	type result struct {
		transcript string
		err        error
	}

	resultChan := make(chan result, 1)
	go func() {
		transcript, err := as.whisperEngine.TranscribeWithContext(ctx, audioFile)
		select {
		case resultChan <- result{transcript: transcript, err: err}:
		case <-ctx.Done():
		}
	}()
	select {
	case res := <-resultChan:
		as.handleTranscriptionResult(res.transcript, res.err, audioFile)
	case <-ctx.Done():
		as.handleTranscriptionCancellation(ctx.Err())
	}
}

// handleTranscriptionResult processes a transcription result: refines it
// (if an AI refiner is configured), routes it to output, and persists it to
// history (if a history store is configured). audioFile is the recorder's
// temp WAV path for the standard recording path, or "" for streaming/VAD
// segments whose temp file is already removed by the time this runs.
func (as *AudioService) handleTranscriptionResult(transcript string, err error, audioFile string) {
	if err != nil {
		as.handleTranscriptionError(err)
		return
	}
	sanitized := utils.SanitizeTranscript(transcript)
	as.mu.Lock()
	as.lastTranscript = sanitized
	as.mu.Unlock()

	if sanitized == "" {
		as.handleEmptyTranscript()
		return
	}
	as.logger.Info("Transcription result: %s", sanitized)

	rec := &history.Record{
		TranscriptionText:   sanitized,
		TranscriptionStatus: history.StatusSuccess,
		FinalText:           sanitized,
	}
	if as.whisperEngine != nil {
		rec.TranscriptionLang = as.config.General.Language
	}

	finalText := sanitized
	if as.refiner != nil {
		ctx, cancel := context.WithTimeout(as.ctx, 30*time.Second)
		refined, refineErr := as.refiner.Refine(ctx, sanitized, as.refineOpts)
		cancel()
		if refineErr != nil {
			as.logger.Warning("AI refinement failed, using raw transcript: %v", refineErr)
			rec.AIStatus = history.StatusFailed
		} else {
			finalText = refined
			rec.AIOptimizedText = refined
			rec.AIStatus = history.StatusSuccess
		}
		rec.FinalText = finalText
	} else {
		rec.AIStatus = history.StatusSkipped
	}

	// Output text
	if as.io != nil {
		if err := as.io.OutputText(finalText); err != nil {
			as.logger.Error("Failed to output text: %v, trying typing fallback", err)
			if fallbackErr := as.io.HandleTypingFallback(finalText); fallbackErr != nil {
				as.logger.Error("Typing fallback also failed: %v", fallbackErr)
				if as.ui != nil {
					as.ui.SetError("Output failed")
				}
				return
			}
		}
	}
	// Notify IO about completion for clipboard protection release
	if as.io != nil {
		as.io.CompleteTranscription(finalText)
		as.io.BroadcastTranscription(finalText, true)
	}
	// Update UI
	if as.ui != nil {
		as.ui.SetSuccess(constants.MsgTranscriptionComplete)
	}

	as.persistHistory(rec, audioFile)
}

// persistHistory saves a completed utterance asynchronously so a slow disk
// or WAL checkpoint never delays text output.
func (as *AudioService) persistHistory(rec *history.Record, audioFile string) {
	if as.historyStore == nil {
		return
	}
	var pcm []float32
	sampleRate := as.config.Audio.SampleRate
	if audioFile != "" {
		if samples, rate, err := whisper.DecodePCM(audioFile); err != nil {
			as.logger.Warning("history: failed to decode audio for persistence: %v", err)
		} else {
			pcm = samples
			sampleRate = rate
		}
	}
	as.wg.Add(1)
	go func() {
		defer as.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := as.historyStore.Save(ctx, rec, pcm, sampleRate, provider.EncodeWAV); err != nil {
			as.logger.Warning("history: failed to save record: %v", err)
		}
	}()
}

// handleTranscriptionError handles transcription errors
func (as *AudioService) handleTranscriptionError(err error) {
	as.logger.Error("Transcription error: %v", err)
	if as.ui != nil {
		as.ui.SetError(constants.MsgTranscriptionFailed)
		as.ui.ShowNotification(constants.NotifyTranscriptionErr, err.Error())
	}
	// Release clipboard protection
	if as.io != nil {
		as.io.CompleteTranscription("")
	}
}

// handleEmptyTranscript handles empty transcription results
func (as *AudioService) handleEmptyTranscript() {
	as.logger.Info("Empty transcript received")
	if as.ui != nil {
		as.ui.SetError(constants.MsgNoSpeechDetected)
		as.ui.ShowNotification(constants.NotifyNoSpeech, constants.MsgTranscriptionEmpty)
	}
}

// handleRecordingError handles recording errors
func (as *AudioService) handleRecordingError(err error) {
	as.logger.Error("Recording error: %v", err)
	if as.ui != nil {
		as.ui.SetError("Recording error")
		as.ui.ShowNotification("Recording Error", err.Error())
	}
}

// handleTranscriptionCancellation handles transcription cancellation
func (as *AudioService) handleTranscriptionCancellation(err error) {
	as.logger.Warning("Transcription cancelled: %v", err)
	if as.ui != nil {
		as.ui.SetError("Transcription cancelled")
		as.ui.ShowNotification("Transcription Cancelled", "Operation timed out")
	}
	// Release clipboard protection
	if as.io != nil {
		as.io.CompleteTranscription("")
	}
}

// ClearSession clears audio session state and temp files
func (as *AudioService) ClearSession() {
	if as.recorder != nil {
		_ = as.recorder.CleanupFile()
	}
	as.audioRecorderNeedsReinit = true
	as.lastTranscript = ""
}

// setUIError sets UI error state
func (as *AudioService) setUIError(message string) {
	if as.ui != nil {
		as.ui.SetError(message)
	}
}
