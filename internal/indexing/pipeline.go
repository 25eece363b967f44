package indexing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jobmate/search-service/internal/model"
	"jobmate/search-service/internal/sanitize"
	"jobmate/search-service/internal/skills"
)

// ErrInvalidEvent is returned for candidate events that can never be indexed.
var ErrInvalidEvent = errors.New("invalid candidate event")

// Pipeline turns candidate-changed events into queued IndexingJobs.
type Pipeline struct {
	extractor skills.Extractor
	sanitizer sanitize.Sanitizer
	queue     JobQueue
	status    StatusTracker
	now       func() time.Time
	logger    *slog.Logger
}

// NewPipeline wires the collaborators. status may be nil.
func NewPipeline(extractor skills.Extractor, sanitizer sanitize.Sanitizer, queue JobQueue, status StatusTracker) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		sanitizer: sanitizer,
		queue:     queue,
		status:    status,
		now:       time.Now,
		logger:    slog.Default().With("component", "indexing-pipeline"),
	}
}

// HandleCandidateChanged extracts skills, sanitizes the profile text and
// enqueues a job with the resulting snapshot. Raw profile text never reaches
// the queue. Errors wrapping ErrInvalidEvent are not worth retrying.
func (p *Pipeline) HandleCandidateChanged(ctx context.Context, rec model.CandidateRecord) (model.IndexingJob, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return model.IndexingJob{}, fmt.Errorf("%w: candidate id is required", ErrInvalidEvent)
	}

	text := rec.ProfileText()
	found, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return model.IndexingJob{}, fmt.Errorf("extract skills for %s: %w", rec.ID, err)
	}
	sanitized := p.sanitizer.Sanitize(text, rec.FullName(), rec.Email, rec.Address)

	// PENDING is recorded before the job becomes visible to workers.
	job := NewJob(rec, sanitized, found, p.now())
	p.record(ctx, job, "")
	if _, err := p.queue.Enqueue(ctx, job); err != nil {
		failed := job
		failed.State = model.JobFailed
		p.record(ctx, failed, err.Error())
		return model.IndexingJob{}, fmt.Errorf("enqueue job for %s: %w", rec.ID, err)
	}

	p.logger.Info("indexing job enqueued",
		"jobId", job.ID, "candidateId", rec.ID, "skills", len(job.Skills), "version", job.Snapshot.Version)
	return job, nil
}

func (p *Pipeline) record(ctx context.Context, job model.IndexingJob, lastErr string) {
	if p.status == nil {
		return
	}
	if err := p.status.Record(ctx, job, lastErr); err != nil {
		p.logger.Warn("record job status failed", "jobId", job.ID, "state", job.State, "err", err)
	}
}
