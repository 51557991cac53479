package database

import (
	"context"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Writer serializes concurrent snapshot writes into a single in-order flush
// stream. Every mutation enqueues a complete point-in-time snapshot; a single
// flush goroutine drains the queue strictly FIFO and writes each snapshot
// before taking the next. Later snapshots supersede earlier content, but all
// writes still execute in order, so the final state always reaches disk.
//
// Callers do not block on flush completion: a mutation is visible to
// in-process reads immediately while durability trails slightly behind.
type Writer struct {
	file     *SnapshotFile
	log      zerolog.Logger
	queue    chan []byte
	retryMax uint64

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewWriter creates a Writer flushing to the given file. queueDepth bounds
// how many snapshots may be pending before mutations back-pressure.
func NewWriter(file *SnapshotFile, queueDepth int, retryMax uint64, log zerolog.Logger) *Writer {
	if queueDepth < 1 {
		queueDepth = 1
	}
	return &Writer{
		file:     file,
		log:      log.With().Str("component", "writer").Logger(),
		queue:    make(chan []byte, queueDepth),
		retryMax: retryMax,
	}
}

// Start launches the flush loop. Calling Start on a running writer is a no-op.
func (w *Writer) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.run()

	w.log.Info().Str("path", w.file.Path()).Msg("Snapshot writer started")
}

// Stop drains the remaining queue and stops the flush loop.
func (w *Writer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}

	w.cancel()
	w.wg.Wait()
	w.running = false
	w.log.Info().Msg("Snapshot writer stopped")
}

// Enqueue hands a complete serialized snapshot to the flush loop. Blocks only
// when the queue is full. Once the writer is stopped the snapshot is dropped
// instead; durability then rests on a final synchronous Flush.
func (w *Writer) Enqueue(data []byte) {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()
	if ctx == nil {
		w.queue <- data
		return
	}
	select {
	case w.queue <- data:
	case <-ctx.Done():
		w.log.Warn().Msg("Writer stopped, snapshot not queued")
	}
}

// Flush writes a snapshot synchronously, bypassing the queue. Used for the
// persist-once step at startup and the final flush at teardown.
func (w *Writer) Flush(data []byte) error {
	return w.write(data)
}

// run is the single-consumer flush loop.
func (w *Writer) run() {
	defer w.wg.Done()

	for {
		select {
		case data := <-w.queue:
			w.flush(data)
		case <-w.ctx.Done():
			// Drain whatever is still queued before exiting so no applied
			// mutation is left undurable by a clean shutdown.
			for {
				select {
				case data := <-w.queue:
					w.flush(data)
				default:
					return
				}
			}
		}
	}
}

// flush writes one queued snapshot. A persistent storage fault is the only
// fatal condition in the engine: it means durability is lost for mutations
// already applied in memory.
func (w *Writer) flush(data []byte) {
	if err := w.write(data); err != nil {
		w.log.Fatal().Err(err).Str("path", w.file.Path()).Msg("Failed to persist snapshot")
	}
}

// write attempts the atomic file write, retrying transient failures.
func (w *Writer) write(data []byte) error {
	op := func() error {
		return w.file.Write(data)
	}
	return backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), w.retryMax))
}
