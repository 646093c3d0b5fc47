// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package outputters

import (
	"bytes"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/AshBuk/sonicinput/config"
	"github.com/AshBuk/sonicinput/internal/logger"
	"github.com/AshBuk/sonicinput/output/interfaces"
)

// Strategy selects how Injector delivers text to the focused application.
type Strategy int

const (
	StrategyClipboard Strategy = iota
	StrategyKeystroke
	StrategySmart
)

const (
	restoreDelayDefault  = time.Second
	failureWindow        = 5 * time.Minute
	failureThreshold     = 3
	quiescenceReset      = 30 * time.Minute
	restoreJoinTimeout   = 2 * time.Second
	logPreviewChars      = 50
	restoreSizeTolerance = 0.10
)

// clipboard targets xclip reports via TARGETS that cannot be re-materialized
// in another process, or that the OS will auto-synthesize on restore from a
// richer format already being restored (spec §4.8 "format discipline").
var nonRestorableTargets = map[string]bool{
	"TARGETS":                true,
	"MULTIPLE":               true,
	"TIMESTAMP":              true,
	"SAVE_TARGETS":           true,
	"image/bmp":              true,
	"image/x-MS-bmp":         true,
	"application/x-metafile": true,
	"image/x-win-metafile":   true,
	"image/x-win-bitmap":     true,
}

// restoreOrder lists richer formats before the plain-text formats the OS
// would otherwise synthesize from them (spec §4.8 "dependency order").
var restoreOrder = []string{"text/html", "UTF8_STRING", "text/plain;charset=utf-8", "STRING", "text/plain"}

type clipboardFormat struct {
	target string
	data   []byte
}

// failureTracker counts a method's failures in a sliding window, switching
// the preferred method away once it crosses failureThreshold, and resetting
// after quiescenceReset of no failures at all (spec §4.8 "smart" strategy).
type failureTracker struct {
	mu          sync.Mutex
	failures    map[Strategy][]time.Time
	lastFailure time.Time
}

func newFailureTracker() *failureTracker {
	return &failureTracker{failures: make(map[Strategy][]time.Time)}
}

func (f *failureTracker) recordFailure(s Strategy) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.lastFailure = now
	f.failures[s] = append(prune(f.failures[s], now), now)
}

func (f *failureTracker) shouldAvoid(s Strategy) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	if !f.lastFailure.IsZero() && now.Sub(f.lastFailure) > quiescenceReset {
		f.failures = make(map[Strategy][]time.Time)
		return false
	}
	f.failures[s] = prune(f.failures[s], now)
	return len(f.failures[s]) >= failureThreshold
}

func prune(times []time.Time, now time.Time) []time.Time {
	out := times[:0]
	for _, t := range times {
		if now.Sub(t) <= failureWindow {
			out = append(out, t)
		}
	}
	return out
}

// Injector delivers transcribed text to the focused application using the
// clipboard and/or keystroke outputters, implementing the clipboard
// save/restore and smart-strategy failure tracking spec §4.8 describes on
// top of the plain Outputter implementations.
type Injector struct {
	clipboard    interfaces.Outputter
	typer        interfaces.Outputter
	config       *config.Config
	log          logger.Logger
	strategy     Strategy
	preferred    Strategy
	tracker      *failureTracker
	restoreDelay time.Duration

	mu        sync.Mutex
	recording bool
}

// NewInjector builds an Injector around existing clipboard/type outputters.
func NewInjector(clipboard, typer interfaces.Outputter, cfg *config.Config, log logger.Logger, strategy Strategy) *Injector {
	preferred := strategy
	if preferred == StrategySmart {
		preferred = StrategyClipboard
	}
	return &Injector{
		clipboard:    clipboard,
		typer:        typer,
		config:       cfg,
		log:          log,
		strategy:     strategy,
		preferred:    preferred,
		tracker:      newFailureTracker(),
		restoreDelay: restoreDelayDefault,
	}
}

// SetRecordingMode marks whether a recording is in progress; while true the
// Injector must not save/restore the clipboard around its own paste, since
// the Orchestrator already snapshotted the pre-record clipboard itself.
func (inj *Injector) SetRecordingMode(recording bool) {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	inj.recording = recording
}

func (inj *Injector) isRecording() bool {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	return inj.recording
}

// Inject delivers text using the configured strategy. Under "smart" it
// tries the preferred method first and falls back to the other on failure,
// tracking failures to auto-switch the preferred method going forward.
// On total failure it logs a privacy-preserving preview and returns false,
// never propagating the error up the stack (spec §4.8 "Failure semantics").
func (inj *Injector) Inject(text string) bool {
	switch inj.strategy {
	case StrategyClipboard:
		return inj.tryClipboard(text) == nil
	case StrategyKeystroke:
		return inj.tryKeystroke(text) == nil
	default:
		return inj.injectSmart(text)
	}
}

func (inj *Injector) injectSmart(text string) bool {
	first, second := inj.preferred, otherOf(inj.preferred)
	if inj.tracker.shouldAvoid(first) {
		first, second = second, first
	}

	if inj.attempt(first, text) == nil {
		return true
	}
	inj.tracker.recordFailure(first)

	if inj.attempt(second, text) == nil {
		return true
	}
	inj.tracker.recordFailure(second)

	inj.logFailure(text)
	return false
}

func otherOf(s Strategy) Strategy {
	if s == StrategyClipboard {
		return StrategyKeystroke
	}
	return StrategyClipboard
}

func (inj *Injector) attempt(s Strategy, text string) error {
	if s == StrategyKeystroke {
		return inj.tryKeystroke(text)
	}
	return inj.tryClipboard(text)
}

func (inj *Injector) logFailure(text string) {
	if inj.log == nil {
		return
	}
	preview := text
	if len(preview) > logPreviewChars {
		preview = preview[:logPreviewChars]
	}
	inj.log.Error("text injection failed on all methods, preview: %q", preview)
}

// tryKeystroke synthesizes per-character key events via the underlying
// TypeOutputter, never touching the clipboard.
func (inj *Injector) tryKeystroke(text string) error {
	return inj.typer.TypeToActiveWindow(text)
}

// tryClipboard saves the current clipboard (unless in recording mode),
// copies text, synthesizes a paste, and restores the saved clipboard after
// restoreDelay on a background goroutine.
func (inj *Injector) tryClipboard(text string) error {
	recording := inj.isRecording()

	var snapshot []clipboardFormat
	if !recording {
		snapshot = inj.saveClipboardFormats()
	}

	if err := inj.clipboard.CopyToClipboard(text); err != nil {
		return err
	}

	if err := inj.synthesizePaste(); err != nil {
		return err
	}

	if !recording && snapshot != nil {
		go inj.restoreClipboardFormats(snapshot)
	}
	return nil
}

// synthesizePaste sends Ctrl+V to the focused application using whichever
// keystroke tool is configured, reusing its allowlist/sanitize checks.
func (inj *Injector) synthesizePaste() error {
	_, typeTool := inj.typer.GetToolNames()
	if typeTool == "" {
		return fmt.Errorf("no keystroke tool configured to synthesize paste")
	}
	if !config.IsCommandAllowed(inj.config, typeTool) {
		return fmt.Errorf("keystroke tool not allowed: %s", typeTool)
	}

	var args []string
	switch typeTool {
	case "xdotool":
		args = []string{"key", "--clearmodifiers", "ctrl+v"}
	case "wtype":
		args = []string{"-M", "ctrl", "-P", "v", "-m", "ctrl"}
	case "ydotool":
		args = []string{"key", "29:1", "47:1", "47:0", "29:0"} // ctrl down, v down/up, ctrl up
	default:
		return fmt.Errorf("unsupported keystroke tool for paste synthesis: %s", typeTool)
	}

	time.Sleep(30 * time.Millisecond) // let the clipboard write land before the paste keystroke fires
	safeArgs := config.SanitizeCommandArgs(args)
	// #nosec G204 -- Safe: tool is allowlisted and arguments are sanitized.
	cmd := exec.Command(typeTool, safeArgs...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("paste synthesis failed: %w (out: %s)", err, string(out))
	}
	return nil
}

// saveClipboardFormats enumerates clipboard targets via xclip and captures
// the content of every one that is re-materializable, skipping opaque OS
// handles and auto-synthesized sentinels.
func (inj *Injector) saveClipboardFormats() []clipboardFormat {
	targets, err := inj.clipboardTargets()
	if err != nil {
		return nil
	}

	var saved []clipboardFormat
	for _, target := range targets {
		if nonRestorableTargets[target] {
			continue
		}
		data, err := inj.readClipboardTarget(target)
		if err != nil || len(data) == 0 {
			continue
		}
		saved = append(saved, clipboardFormat{target: target, data: data})
	}
	return orderForRestore(saved)
}

func orderForRestore(formats []clipboardFormat) []clipboardFormat {
	priority := make(map[string]int, len(restoreOrder))
	for i, t := range restoreOrder {
		priority[t] = i
	}
	ordered := make([]clipboardFormat, len(formats))
	copy(ordered, formats)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0; j-- {
			pi, oki := priority[ordered[j].target]
			pj, okj := priority[ordered[j-1].target]
			if oki && (!okj || pi < pj) {
				ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
				continue
			}
			break
		}
	}
	return ordered
}

// restoreClipboardFormats re-applies saved formats after restoreDelay, in
// dependency order, validating each restore by reading it back and
// comparing size within a 10% tolerance. Runs on a background goroutine
// with a bounded wait so a stalled restore cannot block the Orchestrator.
func (inj *Injector) restoreClipboardFormats(formats []clipboardFormat) {
	time.Sleep(inj.restoreDelay)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, f := range formats {
			if err := inj.writeClipboardTarget(f.target, f.data); err != nil {
				continue
			}
			readBack, err := inj.readClipboardTarget(f.target)
			if err != nil {
				continue
			}
			if !withinTolerance(len(readBack), len(f.data), restoreSizeTolerance) && inj.log != nil {
				inj.log.Warning("clipboard restore size mismatch for %s: wrote %d, read %d", f.target, len(f.data), len(readBack))
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(restoreJoinTimeout):
		if inj.log != nil {
			inj.log.Warning("clipboard restore did not finish within %s, abandoning", restoreJoinTimeout)
		}
	}
}

func withinTolerance(got, want int, tolerance float64) bool {
	if want == 0 {
		return got == 0
	}
	diff := float64(got-want) / float64(want)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

func (inj *Injector) clipboardTargets() ([]string, error) {
	if !config.IsCommandAllowed(inj.config, "xclip") {
		return nil, fmt.Errorf("xclip not allowed")
	}
	// #nosec G204 -- Safe: fixed argument list, no user input.
	cmd := exec.Command("xclip", "-selection", "clipboard", "-o", "-t", "TARGETS")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	var targets []string
	for _, line := range bytes.Split(out.Bytes(), []byte("\n")) {
		if len(line) > 0 {
			targets = append(targets, string(line))
		}
	}
	return targets, nil
}

func (inj *Injector) readClipboardTarget(target string) ([]byte, error) {
	safeArgs := config.SanitizeCommandArgs([]string{"-selection", "clipboard", "-o", "-t", target})
	// #nosec G204 -- Safe: tool is allowlisted and target comes from xclip's own TARGETS output.
	cmd := exec.Command("xclip", safeArgs...)
	return cmd.Output()
}

func (inj *Injector) writeClipboardTarget(target string, data []byte) error {
	safeArgs := config.SanitizeCommandArgs([]string{"-selection", "clipboard", "-t", target})
	// #nosec G204 -- Safe: tool is allowlisted and target was previously read from xclip's own TARGETS output.
	cmd := exec.Command("xclip", safeArgs...)
	cmd.Stdin = bytes.NewReader(data)
	return cmd.Run()
}
