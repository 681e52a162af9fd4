package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
)

// WorkerQueue runs a fixed pool of workers over a bounded channel.
type WorkerQueue struct {
	handle  Handler
	onDone  func(Job, error, time.Duration)
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

var _ Queue = (*WorkerQueue)(nil)

type Option func(*WorkerQueue)

func WithWorkers(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *WorkerQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithResultHook registers a callback run after every job, from the worker
// goroutine that handled it.
func WithResultHook(fn func(job Job, err error, elapsed time.Duration)) Option {
	return func(q *WorkerQueue) {
		q.onDone = fn
	}
}

func NewWorkerQueue(handle Handler, logger *slog.Logger, opts ...Option) *WorkerQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &WorkerQueue{
		handle:  handle,
		logger:  logger,
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *WorkerQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker.started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Debug("worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *WorkerQueue) run(workerID int, job Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	err := q.safeHandle(ctx, job)
	cancel()
	elapsed := time.Since(start)

	if err != nil {
		q.logger.Error("worker.job.failed", "worker_id", workerID, "seq", job.Seq, "path", job.Path, "error", err)
	} else {
		q.logger.Debug("worker.job.ok", "worker_id", workerID, "seq", job.Seq, "path", job.Path,
			"elapsed_ms", elapsed.Milliseconds())
	}
	if q.onDone != nil {
		q.onDone(job, err, elapsed)
	}
}

// safeHandle turns a handler panic into an ErrInternal so one bad file
// cannot take the worker down.
func (q *WorkerQueue) safeHandle(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = common.NewAppError("INTERNAL_ERROR", fmt.Sprintf("handler panic: %v", r), common.ErrInternal)
		}
	}()
	return q.handle(ctx, job)
}

// Enqueue blocks while the queue is full.
func (q *WorkerQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "path", job.Path)
		return ErrClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueued", "seq", job.Seq, "path", job.Path)
		return nil
	default:
	}
	q.logger.Debug("queue.full.backpressure", "seq", job.Seq, "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for the workers to drain the
// queue, or for ctx to end.
func (q *WorkerQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Debug("queue.shutdown.drained")
	}
}
