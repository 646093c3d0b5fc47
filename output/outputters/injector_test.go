// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package outputters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestOrderForRestorePutsRicherFormatsFirst asserts the dependency-order part
// of P7: richer formats (text/html) are restored before the plain-text
// formats the OS would otherwise auto-synthesize from them.
func TestOrderForRestorePutsRicherFormatsFirst(t *testing.T) {
	in := []clipboardFormat{
		{target: "STRING", data: []byte("a")},
		{target: "text/html", data: []byte("<b>a</b>")},
		{target: "text/plain;charset=utf-8", data: []byte("a")},
	}
	out := orderForRestore(in)
	assert.Equal(t, "text/html", out[0].target)
	assert.Equal(t, "text/plain;charset=utf-8", out[1].target) // next in restoreOrder among the input targets
}

func TestOrderForRestoreKeepsUnknownTargetsStable(t *testing.T) {
	in := []clipboardFormat{
		{target: "application/x-custom", data: []byte("x")},
		{target: "text/html", data: []byte("<b>x</b>")},
	}
	out := orderForRestore(in)
	assert.Equal(t, "text/html", out[0].target)
	assert.Equal(t, "application/x-custom", out[1].target)
}

func TestFailureTrackerSwitchesAfterThreshold(t *testing.T) {
	ft := newFailureTracker()
	assert.False(t, ft.shouldAvoid(StrategyClipboard))

	for i := 0; i < failureThreshold; i++ {
		ft.recordFailure(StrategyClipboard)
	}
	assert.True(t, ft.shouldAvoid(StrategyClipboard))
	assert.False(t, ft.shouldAvoid(StrategyKeystroke))
}

func TestFailureTrackerResetsAfterQuiescence(t *testing.T) {
	ft := newFailureTracker()
	for i := 0; i < failureThreshold; i++ {
		ft.recordFailure(StrategyClipboard)
	}
	require := assert.New(t)
	require.True(ft.shouldAvoid(StrategyClipboard))

	// Simulate quiescenceReset having elapsed without a new failure.
	ft.mu.Lock()
	ft.lastFailure = time.Now().Add(-(quiescenceReset + time.Second))
	ft.mu.Unlock()

	require.False(ft.shouldAvoid(StrategyClipboard))
}

func TestOtherOfTogglesStrategy(t *testing.T) {
	assert.Equal(t, StrategyKeystroke, otherOf(StrategyClipboard))
	assert.Equal(t, StrategyClipboard, otherOf(StrategyKeystroke))
}
