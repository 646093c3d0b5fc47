//go:build cgo

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fakeEncodeWAV(pcm []float32, sampleRate int) ([]byte, error) {
	return []byte("RIFF-fake-wav"), nil
}

func TestSaveThenGetRoundTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &Record{TranscriptionText: "hello world", TranscriptionStatus: StatusSuccess, FinalText: "hello world"}
	require.NoError(t, s.Save(ctx, rec, nil, 16000, fakeEncodeWAV))
	assert.NotEmpty(t, rec.ID)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.TranscriptionText)
	assert.Equal(t, StatusSuccess, got.TranscriptionStatus)
}

func TestSaveWithPCMWritesAudioFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &Record{TranscriptionText: "with audio"}
	pcm := []float32{0.1, 0.2, 0.3}
	require.NoError(t, s.Save(ctx, rec, pcm, 16000, fakeEncodeWAV))

	require.NotEmpty(t, rec.AudioPath)
	data, err := os.ReadFile(rec.AudioPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF-fake-wav"), data)
}

func TestSaveWithoutPCMLeavesAudioPathEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &Record{TranscriptionText: "no audio"}
	require.NoError(t, s.Save(ctx, rec, nil, 16000, fakeEncodeWAV))
	assert.Empty(t, rec.AudioPath)
}

// TestDeleteManyRemovesRecordsAndAudioFiles asserts P8: after DeleteMany
// returns, no record or audio file for the deleted ids remains, and a
// subsequent SweepOrphans finds nothing left over.
func TestDeleteManyRemovesRecordsAndAudioFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		rec := &Record{TranscriptionText: "utterance"}
		require.NoError(t, s.Save(ctx, rec, []float32{0.1}, 16000, fakeEncodeWAV))
		ids = append(ids, rec.ID)
	}

	deleted := ids[:2]
	require.NoError(t, s.DeleteMany(ctx, deleted))

	for _, id := range deleted {
		_, err := s.Get(ctx, id)
		assert.Error(t, err)
	}
	remaining, err := s.Get(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, ids[2], remaining.ID)

	removed, err := s.SweepOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestSweepOrphansRemovesUnreferencedAudioFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &Record{TranscriptionText: "kept"}
	require.NoError(t, s.Save(ctx, rec, []float32{0.1}, 16000, fakeEncodeWAV))

	orphanPath := filepath.Join(s.audioDir, "orphan.wav")
	require.NoError(t, os.WriteFile(orphanPath, []byte("stale"), 0o600))

	removed, err := s.SweepOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, err = os.Stat(orphanPath)
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(rec.AudioPath)
	assert.NoError(t, err)
}

func TestUpdateModifiesAIFieldsOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &Record{TranscriptionText: "raw transcript", AIStatus: StatusPending}
	require.NoError(t, s.Save(ctx, rec, nil, 16000, fakeEncodeWAV))

	require.NoError(t, s.Update(ctx, rec.ID, "refined transcript", StatusSuccess, "refined transcript"))

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "raw transcript", got.TranscriptionText)
	assert.Equal(t, "refined transcript", got.AIOptimizedText)
	assert.Equal(t, StatusSuccess, got.AIStatus)
}

func TestUpdateUnknownIDErrors(t *testing.T) {
	s := newTestStore(t)
	err := s.Update(context.Background(), "missing", "x", StatusSuccess, "x")
	assert.Error(t, err)
}

func TestSearchMatchesByFreeText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &Record{TranscriptionText: "turn on the kitchen lights"}, nil, 16000, fakeEncodeWAV))
	require.NoError(t, s.Save(ctx, &Record{TranscriptionText: "set a timer for ten minutes"}, nil, 16000, fakeEncodeWAV))

	results, err := s.Search(ctx, ListFilter{SearchText: "kitchen"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].TranscriptionText, "kitchen")
}

func TestListOrdersByCreatedAtDescending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &Record{TranscriptionText: "first"}
	require.NoError(t, s.Save(ctx, first, nil, 16000, fakeEncodeWAV))
	second := &Record{TranscriptionText: "second"}
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, s.Save(ctx, second, nil, 16000, fakeEncodeWAV))

	results, err := s.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, second.ID, results[0].ID)
	assert.Equal(t, first.ID, results[1].ID)
}

func TestBatchReprocessCountsSuccessAndFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Save(ctx, &Record{TranscriptionText: "utterance"}, nil, 16000, fakeEncodeWAV))
	}

	call := 0
	result, err := s.BatchReprocess(ctx, ListFilter{}, 0, func(ctx context.Context, rec *Record) error {
		call++
		if call%2 == 0 {
			return assertError
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 2, result.Failed)
}

var assertError = errBatchFailure{}

type errBatchFailure struct{}

func (errBatchFailure) Error() string { return "reprocess failed" }
