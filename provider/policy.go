// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AshBuk/sonicinput/internal/errs"
	"github.com/AshBuk/sonicinput/internal/logger"
)

// RetryPolicy is the single backoff/retry contract shared by every cloud
// provider variant (spec §4.6), generalized from websocket/retry_manager.go's
// per-connection linear backoff into a per-request exponential attempt loop.
type RetryPolicy struct {
	Base          time.Duration // default 1s
	MaxDelay      time.Duration // default 60s
	TimeoutCap    time.Duration // default 10s, caps delay after a request-timeout failure
	MaxRetries    int           // default 3
	AbandonAbove  time.Duration // default 30s: if the next backoff would exceed this, give up instead of sleeping
	RetryStatuses map[int]bool
}

// DefaultRetryPolicy returns the spec-mandated defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Base:         time.Second,
		MaxDelay:     60 * time.Second,
		TimeoutCap:   10 * time.Second,
		MaxRetries:   3,
		AbandonAbove: 30 * time.Second,
		RetryStatuses: map[int]bool{
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
			http.StatusRequestTimeout:      true,
		},
	}
}

// backoffFor computes the delay before attempt (0-indexed retry number),
// satisfying P4: d_i <= min(base * 2^i, cap).
func (p RetryPolicy) backoffFor(attempt int, wasTimeout bool) time.Duration {
	capDelay := p.MaxDelay
	if wasTimeout && p.TimeoutCap > 0 && p.TimeoutCap < capDelay {
		capDelay = p.TimeoutCap
	}
	delay := p.Base << uint(attempt)
	if delay <= 0 || delay > capDelay {
		delay = capDelay
	}
	// up to 20% jitter, subtracted so the delay never exceeds the bound above
	jitter := time.Duration(float64(delay) * 0.2 * rand.Float64())
	return delay - jitter
}

// classify maps a transport error or HTTP status to an error code and
// whether it is retryable.
func classify(statusCode int, err error) (code string, retryable bool) {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ErrCodeTimeout, true
		}
		return ErrCodeConnectionError, true
	}
	if statusCode == 0 {
		return "", false
	}
	return fmt.Sprintf("%d", statusCode), statusCode >= 500 || statusCode == http.StatusTooManyRequests || statusCode == http.StatusRequestTimeout
}

var (
	meter          = otel.Meter("github.com/AshBuk/sonicinput/provider")
	attemptCounter metric.Int64Counter
	latencyHist    metric.Float64Histogram
)

func init() {
	attemptCounter, _ = meter.Int64Counter("provider_request_attempts",
		metric.WithDescription("Number of HTTP attempts made per provider request"))
	latencyHist, _ = meter.Float64Histogram("provider_request_latency_ms",
		metric.WithDescription("End-to-end latency of a provider request, in milliseconds"))
}

// Do executes attempt with RetryPolicy's backoff/abandon/retry-set rules and
// records the otel observability spec §4.6 requires ({attempts, status,
// latency}). attempt must return the HTTP status code it observed (0 if the
// failure was a transport error, not an HTTP response) alongside any error.
func (p RetryPolicy) Do(ctx context.Context, providerName string, log logger.Logger, attempt func(ctx context.Context) (statusCode int, err error)) (attempts int, latency time.Duration, finalErr error) {
	ctx, span := otel.Tracer("github.com/AshBuk/sonicinput/provider").Start(ctx, "provider.request",
	)
	defer span.End()

	start := time.Now()
	var lastStatus int
	var lastErr error

	for i := 0; i <= p.MaxRetries; i++ {
		attempts++
		statusCode, err := attempt(ctx)
		lastStatus, lastErr = statusCode, err
		if err == nil && !p.RetryStatuses[statusCode] {
			break
		}
		code, retryable := classify(statusCode, err)
		if !retryable || i == p.MaxRetries {
			if lastErr == nil && !retryable {
				lastErr = fmt.Errorf("provider %s: non-retryable status %d", providerName, statusCode)
			}
			_ = code
			break
		}
		wasTimeout := code == ErrCodeTimeout
		delay := p.backoffFor(i, wasTimeout)
		if delay > p.AbandonAbove {
			lastErr = errs.New(errs.CloudRateLimit, fmt.Sprintf("provider %s: backoff of %s exceeds abandon threshold", providerName, delay), lastErr)
			break
		}
		if log != nil {
			log.Warning("provider %s: attempt %d/%d failed (%v), retrying in %s", providerName, i+1, p.MaxRetries+1, errOrStatus(err, statusCode), delay)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			lastErr = ctx.Err()
			latency = time.Since(start)
			return attempts, latency, lastErr
		}
	}

	latency = time.Since(start)
	attemptCounter.Add(ctx, int64(attempts), metric.WithAttributes(attribute.String("provider", providerName)))
	latencyHist.Record(ctx, float64(latency.Milliseconds()), metric.WithAttributes(attribute.String("provider", providerName)))
	span.SetAttributes(
		attribute.String("provider", providerName),
		attribute.Int("attempts", attempts),
		attribute.Int("last_status", lastStatus),
	)

	if lastErr == nil && p.RetryStatuses[lastStatus] {
		lastErr = errs.New(errs.CloudTransient, fmt.Sprintf("provider %s: exhausted retries at status %d", providerName, lastStatus), nil)
	}
	return attempts, latency, lastErr
}

func errOrStatus(err error, status int) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("http %d", status)
}

// MaskAPIKey renders a secret as "xxxx…xxxx" for logging, never the raw key.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("x", len(key))
	}
	return key[:2] + strings.Repeat("x", 4) + "…" + strings.Repeat("x", 4) + key[len(key)-2:]
}
