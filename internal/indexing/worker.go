package indexing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"jobmate/search-service/internal/model"
	"jobmate/search-service/internal/queue"
)

// Worker consumes IndexingJobs, embeds the sanitized snapshot and writes the
// index entry. Jobs for different candidates run concurrently on an ants
// pool; each delivery is handled by exactly one goroutine. Deliveries in
// flight are tracked so a reclaim sweep never hands them to a second
// goroutine, and each attempt refreshes the delivery's idle time so other
// consumers do not claim it either.
type Worker struct {
	source   Source[model.IndexingJob]
	index    IndexWriter
	embedder Embedder
	status   StatusTracker
	notifier Notifier

	pool           *ants.Pool
	maxAttempts    int
	baseDelay      time.Duration
	attemptTimeout time.Duration
	batchSize      int64
	block          time.Duration
	minIdle        time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker) error

// WithPoolSize sets the number of concurrent jobs. Default is
// runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) WorkerOption {
	return func(w *Worker) error {
		if size < 1 {
			size = 1
		}
		if w.pool != nil {
			w.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		w.pool = pool
		return nil
	}
}

// WithRetry sets the attempt cap and the first backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) WorkerOption {
	return func(w *Worker) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		w.maxAttempts = maxAttempts
		w.baseDelay = baseDelay
		return nil
	}
}

// WithAttemptTimeout bounds a single embed-and-write attempt. It is capped
// at half the reclaim idle time.
func WithAttemptTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) error {
		if d <= 0 {
			return errors.New("indexing worker: attempt timeout must be positive")
		}
		w.attemptTimeout = d
		return nil
	}
}

// WithReclaimMinIdle sets how long a delivery must be pending before
// ReclaimStale takes it over.
func WithReclaimMinIdle(d time.Duration) WorkerOption {
	return func(w *Worker) error {
		w.minIdle = d
		return nil
	}
}

// WithStatus records job transitions in t.
func WithStatus(t StatusTracker) WorkerOption {
	return func(w *Worker) error {
		w.status = t
		return nil
	}
}

// WithNotifier emits exhausted-job signals through n.
func WithNotifier(n Notifier) WorkerOption {
	return func(w *Worker) error {
		w.notifier = n
		return nil
	}
}

// NewWorker returns a Worker reading from source.
func NewWorker(source Source[model.IndexingJob], index IndexWriter, embedder Embedder, opts ...WorkerOption) (*Worker, error) {
	if source == nil || index == nil || embedder == nil {
		return nil, errors.New("indexing worker: source, index and embedder are required")
	}
	w := &Worker{
		source:      source,
		index:       index,
		embedder:    embedder,
		maxAttempts: 5,
		baseDelay:   500 * time.Millisecond,
		batchSize:   16,
		block:       5 * time.Second,
		minIdle:     2 * time.Minute,

		attemptTimeout: 30 * time.Second,
		inflight:       make(map[string]struct{}),
	}
	for _, opt := range append([]WorkerOption{WithPoolSize(runtime.NumCPU() / 2)}, opts...) {
		if err := opt(w); err != nil {
			w.Release()
			return nil, err
		}
	}
	if limit := w.minIdle / 2; limit > 0 && w.attemptTimeout > limit {
		w.attemptTimeout = limit
	}
	return w, nil
}

// Release frees the worker pool.
func (w *Worker) Release() {
	if w.pool != nil {
		w.pool.Release()
	}
}

// Run reads and processes deliveries until ctx is cancelled, then waits for
// in-flight jobs. In-flight jobs are not cancelled with ctx; the retry policy
// bounds them.
func (w *Worker) Run(ctx context.Context) {
	log.Printf("[indexer] Worker started: pool=%d maxAttempts=%d", w.pool.Cap(), w.maxAttempts)
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		log.Println("[indexer] Worker stopped")
	}()

	for ctx.Err() == nil {
		// Read no more than the pool can start, so nothing sits pending
		// behind a blocked Submit.
		free := min(int64(w.pool.Free()), w.batchSize)
		if free <= 0 {
			sleep(ctx, 50*time.Millisecond)
			continue
		}
		deliveries, err := w.source.Read(ctx, free, w.block)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[indexer] Read error: %v, backing off", err)
			sleep(ctx, time.Second)
			continue
		}
		w.dispatch(context.WithoutCancel(ctx), deliveries, &wg)
	}
}

// ReclaimStale takes over deliveries another consumer left pending and
// processes them. Deliveries this worker is already processing are
// skipped. It returns how many were reclaimed.
func (w *Worker) ReclaimStale(ctx context.Context) (int, error) {
	deliveries, err := w.source.Claim(ctx, w.minIdle, w.batchSize)
	var wg sync.WaitGroup
	n := w.dispatch(context.WithoutCancel(ctx), deliveries, &wg)
	if n > 0 {
		log.Printf("[indexer] Reclaimed %d stalled job(s)", n)
	}
	wg.Wait()
	return n, err
}

// dispatch submits every delivery not already in flight and returns how
// many were submitted.
func (w *Worker) dispatch(ctx context.Context, deliveries []queue.Delivery[model.IndexingJob], wg *sync.WaitGroup) int {
	n := 0
	for _, d := range deliveries {
		if !w.track(d.ID) {
			log.Printf("[indexer] Delivery %s already in progress, skipped", d.ID)
			continue
		}
		wg.Add(1)
		if err := w.pool.Submit(func() {
			defer wg.Done()
			defer w.untrack(d.ID)
			w.Handle(ctx, d)
		}); err != nil {
			wg.Done()
			w.untrack(d.ID)
			log.Printf("[indexer] Submit error for %s: %v, left pending for reclaim", d.ID, err)
			continue
		}
		n++
	}
	return n
}

func (w *Worker) track(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inflight[id]; ok {
		return false
	}
	w.inflight[id] = struct{}{}
	return true
}

func (w *Worker) untrack(id string) {
	w.mu.Lock()
	delete(w.inflight, id)
	w.mu.Unlock()
}

// Handle processes one delivery to completion: it retries transient
// failures, writes the entry, records each transition and acks. Exhausted
// jobs are dead-lettered, signalled and acked; the previous index entry
// stays in place.
func (w *Worker) Handle(ctx context.Context, d queue.Delivery[model.IndexingJob]) {
	if d.Err != nil {
		log.Printf("[indexer] Undecodable delivery %s: %v", d.ID, d.Err)
		w.deadLetter(ctx, d.Message, d.Err.Error())
		w.ack(ctx, d.ID)
		return
	}

	job := d.Value
	job.State = model.JobPending
	job.RetryCount = 0
	if err := transition(&job, model.JobProcessing); err != nil {
		log.Printf("[indexer] %v", err)
		return
	}
	w.record(ctx, job, "")

	attempts, err := RetryWithBackoff(ctx, func(int) error {
		if terr := w.source.Touch(ctx, d.ID); terr != nil {
			log.Printf("[indexer] Touch %s failed: %v", d.ID, terr)
		}
		actx, cancel := context.WithTimeout(ctx, w.attemptTimeout)
		err := w.process(actx, job)
		cancel()
		if err != nil {
			job.RetryCount++
			w.record(ctx, job, err.Error())
		}
		return err
	}, w.maxAttempts, w.baseDelay)

	if err == nil {
		_ = transition(&job, model.JobCompleted)
		w.record(ctx, job, "")
		w.ack(ctx, d.ID)
		return
	}

	_ = transition(&job, model.JobFailed)
	w.record(ctx, job, err.Error())
	log.Printf("[indexer] Job %s for candidate %s failed after %d attempt(s): %v",
		job.ID, job.CandidateID, attempts, err)
	w.deadLetter(ctx, d.Message, err.Error())
	w.ack(ctx, d.ID)
	if w.notifier != nil {
		ev := FailureEvent{JobID: job.ID, CandidateID: job.CandidateID, Attempts: attempts, Error: err.Error()}
		if nerr := w.notifier.IndexingFailed(ctx, ev); nerr != nil {
			log.Printf("[indexer] Failure signal for job %s not sent: %v", job.ID, nerr)
		}
	}
}

// process runs one attempt: embed, then replace the entry in one statement.
func (w *Worker) process(ctx context.Context, job model.IndexingJob) error {
	if strings.TrimSpace(job.CandidateID) == "" {
		return Permanent(fmt.Errorf("job %s has no candidate id", job.ID))
	}

	var vec []float32
	if strings.TrimSpace(job.Snapshot.SanitizedText) != "" {
		var err error
		if vec, err = w.embedder.Embed(ctx, job.Snapshot.SanitizedText); err != nil {
			return fmt.Errorf("embed candidate %s: %w", job.CandidateID, err)
		}
	}

	entry := BuildEntry(job, vec, w.embedder.Model())
	applied, err := w.index.Upsert(ctx, entry)
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("[indexer] Candidate %s: newer snapshot already indexed, job %s (version %s) skipped",
			job.CandidateID, job.ID, job.Snapshot.Version.Format(time.RFC3339))
	}
	return nil
}

func (w *Worker) record(ctx context.Context, job model.IndexingJob, lastErr string) {
	if w.status == nil {
		return
	}
	if err := w.status.Record(ctx, job, lastErr); err != nil {
		log.Printf("[indexer] Status update for job %s failed: %v", job.ID, err)
	}
}

func (w *Worker) ack(ctx context.Context, id string) {
	if err := w.source.Ack(ctx, id); err != nil {
		log.Printf("[indexer] Ack %s failed: %v, delivery will be reclaimed", id, err)
	}
}

func (w *Worker) deadLetter(ctx context.Context, msg queue.Message, reason string) {
	if err := w.source.DeadLetter(ctx, msg, reason); err != nil {
		log.Printf("[indexer] Dead-letter %s failed: %v", msg.ID, err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
