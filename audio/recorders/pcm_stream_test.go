// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package recorders

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func int16LEBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(uint16(s))
		buf[i*2+1] = byte(uint16(s) >> 8)
	}
	return buf
}

// TestDecodePCM16ChunksPreservesAllSamples asserts the buffer-conservation
// property (P1) at the decode boundary: every sample written to the source
// reader is delivered exactly once across the emitted chunks, including a
// trailing partial chunk shorter than the requested chunk size.
func TestDecodePCM16ChunksPreservesAllSamples(t *testing.T) {
	samples := make([]int16, 0, 2500)
	for i := 0; i < 2500; i++ {
		samples = append(samples, int16(i%1000-500))
	}
	src := bytes.NewReader(int16LEBytes(samples))

	ch := make(chan []float32, 100)
	decodePCM16Chunks(context.Background(), src, 1000, ch)

	var delivered []float32
	for chunk := range ch {
		delivered = append(delivered, chunk...)
	}

	require := assert.New(t)
	require.Len(delivered, len(samples))
	for i, s := range samples {
		require.InDelta(float32(s)/32768.0, delivered[i], 1e-6)
	}
}

// TestDecodePCM16ChunksStopsOnContextCancel ensures a cancelled context
// halts delivery instead of blocking forever or dropping the channel open.
func TestDecodePCM16ChunksStopsOnContextCancel(t *testing.T) {
	samples := make([]int16, 10000)
	src := bytes.NewReader(int16LEBytes(samples))

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan []float32)
	done := make(chan struct{})
	go func() {
		decodePCM16Chunks(ctx, src, 100, ch)
		close(done)
	}()

	cancel()
	<-done // decodePCM16Chunks must return (and close ch) promptly
	_, open := <-ch
	assert.False(t, open)
}

// TestDecodePCM16ChunksDefaultsChunkSize verifies the documented fallback of
// ~100ms at 16kHz when an invalid chunk size is requested.
func TestDecodePCM16ChunksDefaultsChunkSize(t *testing.T) {
	samples := make([]int16, 1600)
	src := bytes.NewReader(int16LEBytes(samples))

	ch := make(chan []float32, 10)
	decodePCM16Chunks(context.Background(), src, 0, ch)

	var total int
	for chunk := range ch {
		total += len(chunk)
	}
	assert.Equal(t, 1600, total)
}
