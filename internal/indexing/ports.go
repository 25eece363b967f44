package indexing

import (
	"context"
	"time"

	"jobmate/search-service/internal/model"
	"jobmate/search-service/internal/queue"
)

// IndexWriter atomically replaces a candidate's index entry. applied is
// false when a newer snapshot is already stored.
type IndexWriter interface {
	Upsert(ctx context.Context, e model.SearchIndexEntry) (applied bool, err error)
}

// Embedder computes document embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// JobQueue accepts jobs for asynchronous processing.
type JobQueue interface {
	Enqueue(ctx context.Context, job model.IndexingJob) (string, error)
}

// Source is the consuming side of a durable queue of T.
type Source[T any] interface {
	Read(ctx context.Context, count int64, block time.Duration) ([]queue.Delivery[T], error)
	Claim(ctx context.Context, minIdle time.Duration, count int64) ([]queue.Delivery[T], error)
	Ack(ctx context.Context, id string) error
	DeadLetter(ctx context.Context, msg queue.Message, reason string) error
	// Touch resets the idle time of a delivery this consumer still owns.
	Touch(ctx context.Context, id string) error
}

// StatusTracker records job progress for the status endpoint.
type StatusTracker interface {
	Record(ctx context.Context, job model.IndexingJob, lastErr string) error
	Get(ctx context.Context, jobID string) (*JobStatus, error)
}

// Notifier emits the operational signal for exhausted jobs.
type Notifier interface {
	IndexingFailed(ctx context.Context, ev FailureEvent) error
}

// FailureEvent describes a job that will not be retried.
type FailureEvent struct {
	JobID       string `json:"jobId"`
	CandidateID string `json:"candidateId"`
	Attempts    int    `json:"attempts"`
	Error       string `json:"error"`
}
