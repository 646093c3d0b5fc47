// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package provider

import (
	"bytes"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV packages float32 PCM samples in [-1, 1] into a 16-bit mono WAV
// container, the format every ASR provider's request body expects (spec
// §4.6: "PCM float32 -> 16-bit little-endian -> WAV container (1 ch, 16
// kHz)"). It mirrors whisper/engine.go's decode path in reverse, using the
// same go-audio/wav dependency the teacher already carries for decoding.
func EncodeWAV(pcm []float32, sampleRate int) ([]byte, error) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   make([]int, len(pcm)),
		SourceBitDepth: 16,
	}
	for i, sample := range pcm {
		scaled := sample * 32768.0
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		buf.Data[i] = int(scaled)
	}

	var out bytes.Buffer
	enc := wav.NewEncoder(&out, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
