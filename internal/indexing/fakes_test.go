package indexing_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"jobmate/search-service/internal/indexing"
	"jobmate/search-service/internal/model"
	"jobmate/search-service/internal/queue"
)

// --- Fakes ---

// fakeSource is an in-memory Source that records acks and dead letters.
type fakeSource[T any] struct {
	mu       sync.Mutex
	pending  []queue.Delivery[T]
	claim    []queue.Delivery[T]
	acked    []string
	dead     map[string]string
	readErr  error
	ackErr   error
	enqueued []T

	enqueueErr error
	onEnqueue  func(T) // runs after the value is queued, like a fast worker
	touched    []string
}

func newFakeSource[T any]() *fakeSource[T] {
	return &fakeSource[T]{dead: map[string]string{}}
}

func (s *fakeSource[T]) push(id string, v T) {
	payload, _ := json.Marshal(v)
	s.pending = append(s.pending, queue.Delivery[T]{Message: queue.Message{ID: id, Payload: payload}, Value: v})
}

func (s *fakeSource[T]) Read(ctx context.Context, count int64, _ time.Duration) ([]queue.Delivery[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	if len(s.pending) == 0 {
		s.mu.Unlock()
		<-ctx.Done()
		s.mu.Lock()
		return nil, ctx.Err()
	}
	n := min(int(count), len(s.pending))
	out := s.pending[:n]
	s.pending = s.pending[n:]
	return out, nil
}

func (s *fakeSource[T]) Claim(context.Context, time.Duration, int64) ([]queue.Delivery[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.claim
	s.claim = nil
	return out, nil
}

func (s *fakeSource[T]) Ack(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ackErr != nil {
		return s.ackErr
	}
	s.acked = append(s.acked, id)
	return nil
}

func (s *fakeSource[T]) DeadLetter(_ context.Context, msg queue.Message, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dead[msg.ID] = reason
	return nil
}

func (s *fakeSource[T]) Touch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = append(s.touched, id)
	return nil
}

func (s *fakeSource[T]) touchedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.touched...)
}

// Enqueue lets fakeSource double as the pipeline's JobQueue.
func (s *fakeSource[T]) Enqueue(_ context.Context, v T) (string, error) {
	s.mu.Lock()
	if s.enqueueErr != nil {
		s.mu.Unlock()
		return "", s.enqueueErr
	}
	s.enqueued = append(s.enqueued, v)
	hook := s.onEnqueue
	s.mu.Unlock()
	if hook != nil {
		hook(v)
	}
	return "1-0", nil
}

func (s *fakeSource[T]) ackedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.acked...)
}

// fakeIndex applies the same snapshot-version guard as the Postgres store.
type fakeIndex struct {
	mu      sync.Mutex
	entries map[string][]byte
	writes  int
	errs    []error // returned by successive calls, then nil
}

func newFakeIndex() *fakeIndex { return &fakeIndex{entries: map[string][]byte{}} }

func (f *fakeIndex) Upsert(_ context.Context, e model.SearchIndexEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return false, err
		}
	}
	if raw, ok := f.entries[e.CandidateID]; ok {
		var cur model.SearchIndexEntry
		_ = json.Unmarshal(raw, &cur)
		if cur.SnapshotVersion.After(e.SnapshotVersion) {
			return false, nil
		}
	}
	raw, _ := json.Marshal(e)
	f.entries[e.CandidateID] = raw
	f.writes++
	return true, nil
}

func (f *fakeIndex) get(id string) (model.SearchIndexEntry, []byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.entries[id]
	var e model.SearchIndexEntry
	if ok {
		_ = json.Unmarshal(raw, &e)
	}
	return e, raw, ok
}

type fakeEmbedder struct {
	mu       sync.Mutex
	failures int // number of leading calls that fail
	err      error
	texts    []string
}

func (f *fakeEmbedder) Model() string { return "test-embed" }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("embedding provider unavailable")
	}
	return []float32{float32(len(text)), 0.5}, nil
}

type fakeStatus struct {
	mu      sync.Mutex
	history map[string][]model.JobState
	last    map[string]indexing.JobStatus
}

func newFakeStatus() *fakeStatus {
	return &fakeStatus{history: map[string][]model.JobState{}, last: map[string]indexing.JobStatus{}}
}

// Record applies the same ordering guard as the Redis tracker.
func (f *fakeStatus) Record(_ context.Context, job model.IndexingJob, lastErr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.last[job.ID]; ok && !indexing.IsStatusUpdateAllowed(cur.State, job.State) {
		return nil
	}
	h := f.history[job.ID]
	if len(h) == 0 || h[len(h)-1] != job.State {
		f.history[job.ID] = append(h, job.State)
	}
	f.last[job.ID] = indexing.JobStatus{
		JobID: job.ID, CandidateID: job.CandidateID, State: job.State,
		RetryCount: job.RetryCount, LastError: lastErr,
	}
	return nil
}

func (f *fakeStatus) Get(_ context.Context, id string) (*indexing.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.last[id]
	if !ok {
		return nil, indexing.ErrJobNotFound
	}
	return &st, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []indexing.FailureEvent
}

func (f *fakeNotifier) IndexingFailed(_ context.Context, ev indexing.FailureEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

// fakeExtractor returns fixed skills or an error.
type fakeExtractor struct {
	skills []string
	err    error
	texts  []string
}

func (f *fakeExtractor) Extract(_ context.Context, text string) ([]string, error) {
	f.texts = append(f.texts, text)
	return f.skills, f.err
}

// blockingEmbedder signals each call on started and returns once release is
// closed or ctx ends.
type blockingEmbedder struct {
	started chan string
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func newBlockingEmbedder() *blockingEmbedder {
	return &blockingEmbedder{started: make(chan string, 8), release: make(chan struct{})}
}

func (b *blockingEmbedder) Model() string { return "test-embed" }

func (b *blockingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.started <- text
	select {
	case <-b.release:
		return []float32{1, 0}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *blockingEmbedder) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}
