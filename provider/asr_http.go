// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/AshBuk/sonicinput/internal/errs"
	"github.com/AshBuk/sonicinput/internal/logger"
)

// MultipartASRProvider is the common shape for cloud ASR vendors that
// accept the audio as a multipart/form-data upload (spec §4.6: "multipart
// file=audio.wav + form fields (model, language, temperature)"). Per-vendor
// specifics are supplied via the four hook functions, matching spec's "a
// small subclass supplies four things: endpoint_url, auth_headers(),
// build_request(payload, opts), parse_response(raw)".
type MultipartASRProvider struct {
	name       string
	httpClient *http.Client
	policy     RetryPolicy
	log        logger.Logger

	endpointURL func() string
	authHeaders func() map[string]string
	formFields  func(opts TranscribeOptions) map[string]string
	parseBody   func(raw []byte) (Result, error)
}

// MultipartASRConfig wires the per-vendor hooks into the shared policy.
type MultipartASRConfig struct {
	Name        string
	HTTPClient  *http.Client
	Policy      RetryPolicy
	Logger      logger.Logger
	EndpointURL func() string
	AuthHeaders func() map[string]string
	FormFields  func(opts TranscribeOptions) map[string]string
	ParseBody   func(raw []byte) (Result, error)
}

// NewMultipartASRProvider builds a multipart-upload ASR vendor adapter.
func NewMultipartASRProvider(cfg MultipartASRConfig) *MultipartASRProvider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	policy := cfg.Policy
	if policy.MaxRetries == 0 && policy.Base == 0 {
		policy = DefaultRetryPolicy()
	}
	return &MultipartASRProvider{
		name:        cfg.Name,
		httpClient:  client,
		policy:      policy,
		log:         cfg.Logger,
		endpointURL: cfg.EndpointURL,
		authHeaders: cfg.AuthHeaders,
		formFields:  cfg.FormFields,
		parseBody:   cfg.ParseBody,
	}
}

func (p *MultipartASRProvider) Name() string { return p.name }

func (p *MultipartASRProvider) Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (Result, error) {
	return Result{}, fmt.Errorf("%s: chat capability not supported", p.name)
}

func (p *MultipartASRProvider) Transcribe(ctx context.Context, pcm []float32, sampleRate int, opts TranscribeOptions) (Result, error) {
	wavBytes, err := EncodeWAV(pcm, sampleRate)
	if err != nil {
		return Result{}, errs.New(errs.Transcription, p.name+": failed to encode audio", err)
	}

	var result Result
	attempts, latency, retryErr := p.policy.Do(ctx, p.name, p.log, func(ctx context.Context) (int, error) {
		body, contentType, err := buildMultipartBody(wavBytes, p.formFields(opts))
		if err != nil {
			return 0, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpointURL(), body)
		if err != nil {
			return 0, err
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("User-Agent", "SonicInput/"+userAgentVersion)
		for k, v := range p.authHeaders() {
			req.Header.Set(k, v)
		}

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return 0, err
		}
		defer func() { _ = resp.Body.Close() }()
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, err
		}
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, fmt.Errorf("%s: http %d", p.name, resp.StatusCode)
		}
		result, err = p.parseBody(raw)
		return resp.StatusCode, err
	})

	result.Provider = p.name
	result.RetryCount = attempts - 1
	result.LatencyMs = latency.Milliseconds()
	result.DurationS = latency.Seconds()
	if retryErr != nil {
		result.Error = retryErr.Error()
		return result, retryErr
	}
	return result, nil
}

const userAgentVersion = "1.0"

func buildMultipartBody(wavBytes []byte, fields map[string]string) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	part, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(wavBytes); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

// PollingASRProvider models an async submit-then-poll ASR vendor (spec
// §4.6: "at least one wraps it as base64 inside a JSON body and runs async
// (submit -> poll with a taskid until status is terminal or a 120s
// wall-clock cap)"), the doubao/qwen-style vendor noted in original_source.
type PollingASRProvider struct {
	name       string
	httpClient *http.Client
	policy     RetryPolicy
	log        logger.Logger

	submitURL   func() string
	pollURL     func(taskID string) string
	authHeaders func() map[string]string
	buildSubmit func(wavBase64 string, opts TranscribeOptions) ([]byte, error)
	parseSubmit func(raw []byte) (taskID string, err error)
	parsePoll   func(raw []byte) (terminal bool, result Result, err error)
	pollEvery   time.Duration
	wallClock   time.Duration
}

// PollingASRConfig wires the per-vendor hooks for the async submit/poll shape.
type PollingASRConfig struct {
	Name        string
	HTTPClient  *http.Client
	Policy      RetryPolicy
	Logger      logger.Logger
	SubmitURL   func() string
	PollURL     func(taskID string) string
	AuthHeaders func() map[string]string
	BuildSubmit func(wavBase64 string, opts TranscribeOptions) ([]byte, error)
	ParseSubmit func(raw []byte) (string, error)
	ParsePoll   func(raw []byte) (bool, Result, error)
	PollEvery   time.Duration
	WallClock   time.Duration // default 120s per spec §4.6
}

func NewPollingASRProvider(cfg PollingASRConfig) *PollingASRProvider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	policy := cfg.Policy
	if policy.MaxRetries == 0 && policy.Base == 0 {
		policy = DefaultRetryPolicy()
	}
	pollEvery := cfg.PollEvery
	if pollEvery <= 0 {
		pollEvery = 2 * time.Second
	}
	wallClock := cfg.WallClock
	if wallClock <= 0 {
		wallClock = 120 * time.Second
	}
	return &PollingASRProvider{
		name:        cfg.Name,
		httpClient:  client,
		policy:      policy,
		log:         cfg.Logger,
		submitURL:   cfg.SubmitURL,
		pollURL:     cfg.PollURL,
		authHeaders: cfg.AuthHeaders,
		buildSubmit: cfg.BuildSubmit,
		parseSubmit: cfg.ParseSubmit,
		parsePoll:   cfg.ParsePoll,
		pollEvery:   pollEvery,
		wallClock:   wallClock,
	}
}

func (p *PollingASRProvider) Name() string { return p.name }

func (p *PollingASRProvider) Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (Result, error) {
	return Result{}, fmt.Errorf("%s: chat capability not supported", p.name)
}

func (p *PollingASRProvider) doJSON(ctx context.Context, method, url string, body []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "SonicInput/"+userAgentVersion)
	for k, v := range p.authHeaders() {
		req.Header.Set(k, v)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return raw, resp.StatusCode, fmt.Errorf("%s: http %d", p.name, resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}

func (p *PollingASRProvider) Transcribe(ctx context.Context, pcm []float32, sampleRate int, opts TranscribeOptions) (Result, error) {
	wavBytes, err := EncodeWAV(pcm, sampleRate)
	if err != nil {
		return Result{}, errs.New(errs.Transcription, p.name+": failed to encode audio", err)
	}
	b64 := base64Encode(wavBytes)

	deadline := time.Now().Add(p.wallClock)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	var taskID string
	attempts, latency, retryErr := p.policy.Do(ctx, p.name, p.log, func(ctx context.Context) (int, error) {
		submitBody, err := p.buildSubmit(b64, opts)
		if err != nil {
			return 0, err
		}
		raw, status, err := p.doJSON(ctx, http.MethodPost, p.submitURL(), submitBody)
		if err != nil {
			return status, err
		}
		taskID, err = p.parseSubmit(raw)
		return status, err
	})
	if retryErr != nil {
		return Result{
			Error:      retryErr.Error(),
			Provider:   p.name,
			RetryCount: attempts - 1,
			LatencyMs:  latency.Milliseconds(),
		}, retryErr
	}

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return Result{
				Error:     fmt.Sprintf("%s: polling exceeded %s wall-clock cap", p.name, p.wallClock),
				ErrorCode: ErrCodeTimeout,
				Provider:  p.name,
				LatencyMs: time.Since(start).Milliseconds(),
			}, ctx.Err()
		case <-ticker.C:
			raw, _, err := p.doJSON(ctx, http.MethodGet, p.pollURL(taskID), nil)
			if err != nil {
				continue // transient poll failure, keep polling until wall-clock cap
			}
			terminal, result, err := p.parsePoll(raw)
			if err != nil {
				return Result{Error: err.Error(), Provider: p.name, LatencyMs: time.Since(start).Milliseconds()}, err
			}
			if terminal {
				result.Provider = p.name
				result.LatencyMs = time.Since(start).Milliseconds()
				result.DurationS = time.Since(start).Seconds()
				return result, nil
			}
		}
	}
}

func base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// decodeJSON is a small helper kept here so hook implementations in calling
// code don't each need their own encoding/json import for trivial shapes.
func decodeJSON(raw []byte, v interface{}) error {
	return json.Unmarshal(raw, v)
}
