// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package store implements the Config Store (spec §4.1): a typed
// key/value tree addressed by dotted path, persisted as pretty-printed
// JSON with a debounced, atomic (write-to-temp-then-rename) save, and
// secret-field encryption at rest. It is the Go-idiomatic rendering of
// the teacher's gopkg.in/yaml.v2-backed models.Config loader
// (config/loaders/yaml_loader.go): same shape (defaults → load → validate
// → save), generalized from one fixed struct to an arbitrary nested map so
// unknown keys survive round-trips and dotted-path access works without a
// schema.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AshBuk/sonicinput/internal/errs"
	"github.com/AshBuk/sonicinput/internal/eventbus"
	"github.com/AshBuk/sonicinput/internal/logger"
)

// debounceWindow is the coalescing window between a Set call and the
// actual disk write (spec §4.1, "coalesce window ≈ 500 ms").
const debounceWindow = 500 * time.Millisecond

// requiredSections are the top-level keys spec §6 requires to always be
// present, even on a brand-new config file.
var requiredSections = []string{"audio", "transcription", "ai", "ui", "input", "hotkeys", "logging"}

// Store is the authoritative in-memory and on-disk configuration tree.
// Safe for concurrent use; all mutations take a single lock, and the
// debounce timer is serialized with Set (spec §9, "Config Store: all
// mutations take a single lock").
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]interface{}

	key []byte // machine-bound secret encryption key

	timer   *time.Timer
	pending bool
	wg      sync.WaitGroup
	closed  bool

	bus *eventbus.Bus
	log logger.Logger
}

// New creates a Store writing to path. Load must be called before the
// store is used; New itself does no I/O.
func New(path string, bus *eventbus.Bus, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefaultLogger(logger.WarningLevel)
	}
	return &Store{
		path: path,
		data: defaultSections(),
		key:  deriveMachineKey(),
		bus:  bus,
		log:  log,
	}
}

func defaultSections() map[string]interface{} {
	m := make(map[string]interface{}, len(requiredSections))
	for _, s := range requiredSections {
		m[s] = map[string]interface{}{}
	}
	return m
}

// Load reads the config file from disk, merging it over the schema
// defaults so required sections always exist and unknown keys persist.
// A missing file is not an error: the store boots with defaults. A
// malformed file is backed up, the store boots with defaults, and a
// config-corrupted event is emitted (spec §4.1 failure modes).
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config store: reading %s: %w", s.path, err)
	}

	var onDisk map[string]interface{}
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		s.backupCorrupted(raw)
		s.log.Error("config store: %s is not valid JSON, booting with defaults: %v", s.path, err)
		if s.bus != nil {
			s.bus.Emit("config.corrupted", &errs.CoreError{Kind: errs.ConfigCorrupt, Message: "config file was corrupted and has been reset to defaults", Err: err})
		}
		return nil
	}

	decryptTree(onDisk, s.key)
	for k, v := range onDisk {
		s.data[k] = v
	}
	return nil
}

func (s *Store) backupCorrupted(raw []byte) {
	backupPath := s.path + ".corrupted-" + time.Now().UTC().Format("20060102T150405Z")
	if err := os.WriteFile(backupPath, raw, 0o600); err != nil {
		s.log.Warning("config store: failed to back up corrupted config: %v", err)
	}
}

// Get returns the value at the dotted path, or def if it does not exist.
func (s *Store) Get(path string, def interface{}) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := lookup(s.data, splitPath(path))
	if !ok {
		return def
	}
	return v
}

// Set writes value at the dotted path, auto-creating intermediate maps and
// repairing any non-map intermediary it finds in the way (logging the
// repair), then schedules a debounced save.
func (s *Store) Set(path string, value interface{}) error {
	s.mu.Lock()
	before := cloneTree(s.data)

	segs := splitPath(path)
	if len(segs) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("config store: empty path")
	}
	if err := assign(s.data, segs, value, s.log); err != nil {
		s.mu.Unlock()
		return err
	}
	after := cloneTree(s.data)
	s.scheduleSave()
	s.mu.Unlock()

	changed := diffChangedKeys(before, after)
	if len(changed) > 0 && s.bus != nil {
		s.bus.Emit(EventConfigChanged, &ConfigDiff{
			ChangedKeys: changed,
			Old:         before,
			New:         after,
			Timestamp:   time.Now(),
		})
	}
	return nil
}

// scheduleSave arms (or re-arms) the debounce timer. Must be called with
// s.mu held.
func (s *Store) scheduleSave() {
	if s.closed {
		return
	}
	s.pending = true
	if s.timer != nil && s.timer.Stop() {
		s.wg.Done() // the stopped callback will never run
	}
	s.wg.Add(1)
	s.timer = time.AfterFunc(debounceWindow, func() {
		defer s.wg.Done()
		if err := s.flushLocked(); err != nil {
			s.log.Error("config store: debounced save failed: %v", err)
		}
	})
}

func (s *Store) flushLocked() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes the current tree to disk via write-to-temp-then-rename
// so the file on disk is always either the last committed state or
// absent, never a partial write. Must be called with s.mu held.
func (s *Store) saveLocked() error {
	if !s.pending {
		return nil
	}
	toWrite := cloneTree(s.data)
	encryptTree(toWrite, s.key)

	encoded, err := json.MarshalIndent(toWrite, "", "  ")
	if err != nil {
		return fmt.Errorf("config store: marshaling: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("config store: creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("config store: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("config store: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("config store: closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("config store: chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("config store: renaming into place: %w", err)
	}

	s.pending = false
	return nil
}

// Flush synchronously writes any pending change and cancels the debounce
// timer. Close calls this; it is also exported so callers with their own
// shutdown sequencing (spec §9's "joins on process exit") can flush early.
func (s *Store) Flush() error {
	s.mu.Lock()
	if s.timer != nil && s.timer.Stop() {
		s.wg.Done() // the stopped callback will never run
	}
	err := s.saveLocked()
	s.mu.Unlock()
	return err
}

// Close flushes any pending write and waits for the debounce timer
// goroutine to finish, so the caller can rely on the write having
// completed (or failed) before the process exits.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	err := s.Flush()
	s.wg.Wait()
	return err
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func lookup(m map[string]interface{}, segs []string) (interface{}, bool) {
	if len(segs) == 0 {
		return nil, false
	}
	v, ok := m[segs[0]]
	if !ok {
		return nil, false
	}
	if len(segs) == 1 {
		return v, true
	}
	nested, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	return lookup(nested, segs[1:])
}

// assign walks segs into m, creating intermediate maps as needed and
// replacing (with a log line) any intermediary that exists but is not
// itself a map.
func assign(m map[string]interface{}, segs []string, value interface{}, log logger.Logger) error {
	key := segs[0]
	if len(segs) == 1 {
		m[key] = value
		return nil
	}
	existing, ok := m[key]
	nested, isMap := existing.(map[string]interface{})
	if ok && !isMap {
		log.Warning("config store: repairing non-map value at intermediate key %q", key)
		nested = map[string]interface{}{}
		m[key] = nested
	} else if !ok {
		nested = map[string]interface{}{}
		m[key] = nested
	}
	return assign(nested, segs[1:], value, log)
}

func cloneTree(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = cloneTree(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func walkLeaves(m map[string]interface{}, fn func(key string, value string) string) {
	for k, v := range m {
		switch t := v.(type) {
		case map[string]interface{}:
			walkLeaves(t, fn)
		case string:
			m[k] = fn(k, t)
		}
	}
}

func encryptTree(m map[string]interface{}, key []byte) {
	walkLeaves(m, func(leaf, value string) string {
		if !isSecretLeaf(leaf) || strings.HasPrefix(value, secretPrefix) {
			return value
		}
		enc, err := encryptSecret(key, value)
		if err != nil {
			return value
		}
		return enc
	})
}

func decryptTree(m map[string]interface{}, key []byte) {
	walkLeaves(m, func(leaf, value string) string {
		if !isSecretLeaf(leaf) {
			return value
		}
		return decryptSecret(key, value)
	})
}
