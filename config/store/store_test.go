// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshBuk/sonicinput/internal/eventbus"
	"github.com/AshBuk/sonicinput/internal/logger"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	s := New(path, eventbus.New(nil), logger.NewDefaultLogger(logger.ErrorLevel))
	require.NoError(t, s.Load())
	return s, path
}

func TestRequiredSectionsPresentOnFreshStore(t *testing.T) {
	s, _ := newTestStore(t)
	for _, section := range requiredSections {
		v := s.Get(section, nil)
		assert.NotNil(t, v, "section %q should default to an empty map", section)
	}
}

func TestSetThenGetRoundTrips(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Set("audio.device", "default"))
	assert.Equal(t, "default", s.Get("audio.device", nil))
}

func TestSetAutoCreatesIntermediateMaps(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Set("a.b.c", 42))
	assert.Equal(t, 42, s.Get("a.b.c", nil))
}

func TestSetRepairsNonMapIntermediary(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Set("a", "not a map"))
	require.NoError(t, s.Set("a.b", 1))
	assert.Equal(t, 1, s.Get("a.b", nil))
}

func TestFlushWritesFileThenReloadRoundTrips(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, s.Set("ui.theme", "dark"))
	require.NoError(t, s.Flush())

	_, err := os.Stat(path)
	require.NoError(t, err)

	reopened := New(path, eventbus.New(nil), logger.NewDefaultLogger(logger.ErrorLevel))
	require.NoError(t, reopened.Load())
	assert.Equal(t, "dark", reopened.Get("ui.theme", nil))
}

func TestSecretLeafIsEncryptedOnDiskButTransparentViaGet(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, s.Set("ai.api_key", "sk-super-secret"))
	require.NoError(t, s.Flush())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-super-secret")

	reopened := New(path, eventbus.New(nil), logger.NewDefaultLogger(logger.ErrorLevel))
	require.NoError(t, reopened.Load())
	assert.Equal(t, "sk-super-secret", reopened.Get("ai.api_key", nil))
}

func TestMalformedFileIsBackedUpAndStoreBootsWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o600))

	s := New(path, eventbus.New(nil), logger.NewDefaultLogger(logger.ErrorLevel))
	require.NoError(t, s.Load())

	assert.NotNil(t, s.Get("audio", nil))

	matches, err := filepath.Glob(path + ".corrupted-*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSetEmitsConfigChangedOnBus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	bus := eventbus.New(nil)
	var received *ConfigDiff
	bus.On(EventConfigChanged, func(payload interface{}) error {
		received = payload.(*ConfigDiff)
		return nil
	})

	s := New(path, bus, logger.NewDefaultLogger(logger.ErrorLevel))
	require.NoError(t, s.Load())
	require.NoError(t, s.Set("hotkeys.start_recording", "ctrl+alt+r"))

	require.NotNil(t, received)
	assert.Contains(t, received.ChangedKeys, "hotkeys.start_recording")
}
