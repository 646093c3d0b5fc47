// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package whisper

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/AshBuk/sonicinput/internal/errs"
	"github.com/AshBuk/sonicinput/internal/eventbus"
	"github.com/AshBuk/sonicinput/internal/logger"
	"github.com/AshBuk/sonicinput/provider"
	"github.com/AshBuk/sonicinput/whisper/interfaces"
)

// taskQueueCapacity bounds the pending-task queue (spec §4.5): once full,
// Submit rejects new work rather than growing unbounded.
const taskQueueCapacity = 50

// TaskKind distinguishes the operations a Worker accepts.
type TaskKind int

const (
	TaskTranscribe TaskKind = iota
	TaskLoadModel
	TaskUnloadModel
	TaskReloadModel
	TaskBeginStream
	TaskFeedChunk
	TaskFinalizeStream
)

// Task is one unit of work submitted to the Worker's queue.
type Task struct {
	Kind      TaskKind
	AudioFile string
	ModelID   string
	ChunkID   int
	PCM       []float32
	Done      chan TaskResult
}

// TaskResult is delivered on Task.Done once the worker processes a task.
type TaskResult struct {
	Text string
	Err  error
}

// streamChunkResult holds one finalized chunk awaiting in-order delivery.
type streamChunkResult struct {
	chunkID int
	text    string
	failed  bool
}

// Worker owns a persistent goroutine draining a bounded FIFO task queue,
// ensuring only one transcription runs at a time (spec P3) whether it is
// a local whisper.cpp engine or a cloud provider.Provider. Streaming
// finalize results are reordered into chunk-id order before being
// published (spec P2), inserting a placeholder for any chunk that failed
// so downstream consumers never see gaps.
type Worker struct {
	engine   interfaces.WhisperEngine
	cloud    provider.Provider
	log      logger.Logger
	bus      *eventbus.Bus
	tasks    chan *Task
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	mu       sync.Mutex
	loadedID string

	streamMu     sync.Mutex
	streamChunks []streamChunkResult
	nextToEmit   int
}

// NewWorker builds a Worker around a local engine. A nil engine is valid
// when every task will instead be dispatched through SetCloudProvider.
func NewWorker(engine interfaces.WhisperEngine, log logger.Logger, bus *eventbus.Bus) *Worker {
	return &Worker{
		engine: engine,
		log:    log,
		bus:    bus,
		tasks:  make(chan *Task, taskQueueCapacity),
	}
}

// SetCloudProvider makes the worker dispatch transcribe tasks to a cloud
// ASR provider.Provider instead of (or in addition to, via fallback in the
// orchestrator) the local engine.
func (w *Worker) SetCloudProvider(p provider.Provider) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cloud = p
}

// Start launches the worker goroutine. Calling Start twice is a no-op.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(runCtx)
}

// Stop cancels the worker goroutine and waits for it to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	w.wg.Wait()
}

// Submit enqueues a task, rejecting it if the queue is at capacity
// (spec §4.5 "bounded task queue").
func (w *Worker) Submit(task *Task) error {
	if task.Done == nil {
		task.Done = make(chan TaskResult, 1)
	}
	select {
	case w.tasks <- task:
		return nil
	default:
		return errs.New(errs.Transcription, "transcription queue is full", nil)
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			w.drain(ctx.Err())
			return
		case task := <-w.tasks:
			w.process(ctx, task)
		}
	}
}

// drain fails every task still queued when the worker shuts down, so no
// caller blocks forever on Task.Done.
func (w *Worker) drain(err error) {
	for {
		select {
		case task := <-w.tasks:
			task.Done <- TaskResult{Err: err}
		default:
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, task *Task) {
	switch task.Kind {
	case TaskLoadModel, TaskReloadModel:
		w.handleLoadModel(task)
	case TaskUnloadModel:
		w.handleUnloadModel(task)
	case TaskTranscribe:
		w.handleTranscribe(ctx, task)
	case TaskBeginStream:
		w.handleBeginStream(task)
	case TaskFeedChunk:
		w.handleFeedChunk(ctx, task)
	case TaskFinalizeStream:
		w.handleFinalizeStream(task)
	default:
		task.Done <- TaskResult{Err: fmt.Errorf("unknown task kind %d", task.Kind)}
	}
}

func (w *Worker) handleLoadModel(task *Task) {
	w.mu.Lock()
	w.loadedID = task.ModelID
	w.mu.Unlock()
	if w.bus != nil {
		w.bus.Emit("whisper.model_loaded", task.ModelID)
	}
	task.Done <- TaskResult{Text: task.ModelID}
}

func (w *Worker) handleUnloadModel(task *Task) {
	w.mu.Lock()
	if w.engine != nil {
		_ = w.engine.Close()
	}
	w.loadedID = ""
	w.mu.Unlock()
	task.Done <- TaskResult{}
}

func (w *Worker) handleTranscribe(ctx context.Context, task *Task) {
	w.mu.Lock()
	cloud := w.cloud
	w.mu.Unlock()

	if cloud != nil {
		result, err := cloud.Transcribe(ctx, task.PCM, 16000, provider.TranscribeOptions{})
		if err != nil {
			task.Done <- TaskResult{Err: err}
			return
		}
		task.Done <- TaskResult{Text: result.Text}
		return
	}

	if w.engine == nil {
		task.Done <- TaskResult{Err: errs.New(errs.Transcription, "no transcription engine configured", nil)}
		return
	}
	text, err := w.engine.TranscribeWithContext(ctx, task.AudioFile)
	task.Done <- TaskResult{Text: text, Err: err}
}

func (w *Worker) handleBeginStream(task *Task) {
	w.streamMu.Lock()
	w.streamChunks = nil
	w.nextToEmit = 0
	w.streamMu.Unlock()
	task.Done <- TaskResult{}
}

// handleFeedChunk transcribes one streaming chunk and stores its result for
// in-order finalize, inserting a placeholder if transcription fails so a
// single bad chunk never blocks every chunk after it (spec P2).
func (w *Worker) handleFeedChunk(ctx context.Context, task *Task) {
	w.mu.Lock()
	cloud := w.cloud
	w.mu.Unlock()

	var text string
	var err error
	if cloud != nil {
		var result provider.Result
		result, err = cloud.Transcribe(ctx, task.PCM, 16000, provider.TranscribeOptions{})
		text = result.Text
	} else if w.engine != nil {
		text, err = w.engine.TranscribeWithContext(ctx, task.AudioFile)
	} else {
		err = errs.New(errs.Transcription, "no transcription engine configured", nil)
	}

	w.streamMu.Lock()
	w.streamChunks = append(w.streamChunks, streamChunkResult{chunkID: task.ChunkID, text: text, failed: err != nil})
	w.streamMu.Unlock()

	if w.bus != nil {
		w.bus.Emit("whisper.chunk_done", task.ChunkID)
	}
	task.Done <- TaskResult{Text: text, Err: err}
}

// handleFinalizeStream sorts buffered chunk results by chunk id and joins
// them, substituting "[unintelligible]" for any chunk that failed, so the
// final transcript preserves chunk order even when chunks complete
// out-of-order or fail individually.
func (w *Worker) handleFinalizeStream(task *Task) {
	w.streamMu.Lock()
	chunks := make([]streamChunkResult, len(w.streamChunks))
	copy(chunks, w.streamChunks)
	w.streamChunks = nil
	w.streamMu.Unlock()

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].chunkID < chunks[j].chunkID })

	var out string
	for i, c := range chunks {
		if i > 0 {
			out += " "
		}
		if c.failed {
			out += "[unintelligible]"
			continue
		}
		out += c.text
	}
	task.Done <- TaskResult{Text: out}
}
