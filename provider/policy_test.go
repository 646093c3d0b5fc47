// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskAPIKeyNeverLeaksMiddle(t *testing.T) {
	masked := MaskAPIKey("sk-1234567890abcdef")
	assert.NotContains(t, masked, "1234567890abcdef"[:10])
	assert.Contains(t, masked, "…")
}

func TestRetryPolicyRetriesOnRetryableStatusThenSucceeds(t *testing.T) {
	policy := DefaultRetryPolicy()
	policy.Base = time.Millisecond
	policy.MaxRetries = 3

	calls := 0
	attempts, _, err := policy.Do(context.Background(), "test", nil, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return http.StatusServiceUnavailable, nil
		}
		return http.StatusOK, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyExhaustsAndReturnsMaxRetriesError(t *testing.T) {
	policy := DefaultRetryPolicy()
	policy.Base = time.Millisecond
	policy.MaxRetries = 2

	calls := 0
	attempts, _, err := policy.Do(context.Background(), "test", nil, func(ctx context.Context) (int, error) {
		calls++
		return http.StatusServiceUnavailable, nil
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts) // 1 + MaxRetries
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyDoesNotRetryOtherFourXX(t *testing.T) {
	policy := DefaultRetryPolicy()
	policy.Base = time.Millisecond

	calls := 0
	_, _, err := policy.Do(context.Background(), "test", nil, func(ctx context.Context) (int, error) {
		calls++
		return http.StatusBadRequest, nil
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyAbandonsWhenBackoffExceedsThreshold(t *testing.T) {
	policy := DefaultRetryPolicy()
	policy.Base = 20 * time.Second // first retry's backoff already exceeds AbandonAbove
	policy.AbandonAbove = 5 * time.Second
	policy.MaxRetries = 5

	calls := 0
	_, _, err := policy.Do(context.Background(), "test", nil, func(ctx context.Context) (int, error) {
		calls++
		return http.StatusServiceUnavailable, nil
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "should abandon before sleeping through an over-threshold backoff")
}

func TestEncodeWAVProducesRIFFHeader(t *testing.T) {
	pcm := []float32{0, 0.5, -0.5, 1, -1}
	out, err := EncodeWAV(pcm, 16000)
	require.NoError(t, err)
	require.True(t, len(out) > 44)
	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, "WAVE", string(out[8:12]))
}
