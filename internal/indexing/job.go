// Package indexing keeps each candidate's search index entry in step with its
// record.
//
// Job lifecycle:
//
//	PENDING ──► PROCESSING ──► COMPLETED
//	                 │
//	                 └────────► FAILED
//
// COMPLETED and FAILED are terminal. Retries happen inside PROCESSING and are
// counted in RetryCount.
package indexing

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobmate/search-service/internal/model"
)

var validTransitions = map[model.JobState][]model.JobState{
	model.JobPending:    {model.JobProcessing},
	model.JobProcessing: {model.JobCompleted, model.JobFailed},
}

// ParseJobState converts a raw string to a JobState, returning an error for
// unknown values.
func ParseJobState(s string) (model.JobState, error) {
	st := model.JobState(s)
	switch st {
	case model.JobPending, model.JobProcessing, model.JobCompleted, model.JobFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown job state %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to model.JobState) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true for COMPLETED and FAILED.
func IsTerminal(s model.JobState) bool {
	return s == model.JobCompleted || s == model.JobFailed
}

// IsStatusUpdateAllowed reports whether a recorded status in state stored
// may be overwritten by a record in state next. Records arrive from
// different goroutines, so a late PENDING must not hide PROCESSING, and a
// terminal status is only replaced by another terminal status (a
// redelivered job finishing again).
func IsStatusUpdateAllowed(stored, next model.JobState) bool {
	switch {
	case IsTerminal(stored):
		return IsTerminal(next)
	case stored == model.JobProcessing:
		return next != model.JobPending
	}
	return true
}

// transition moves job to state `to` or returns an error leaving it unchanged.
func transition(job *model.IndexingJob, to model.JobState) error {
	if !IsTransitionAllowed(job.State, to) {
		return fmt.Errorf("job %s: transition %s → %s not allowed", job.ID, job.State, to)
	}
	job.State = to
	return nil
}

// NewJob builds a PENDING job carrying the full sanitized snapshot of rec.
// The snapshot version is the record's UpdatedAt, or now when the record has
// none.
func NewJob(rec model.CandidateRecord, sanitizedText string, skills []string, now time.Time) model.IndexingJob {
	version := rec.UpdatedAt.UTC()
	if rec.UpdatedAt.IsZero() {
		version = now.UTC()
	}
	tenant := rec.TenantID
	if tenant == "" {
		tenant = model.GlobalTenant
	}
	if skills == nil {
		skills = []string{}
	}
	return model.IndexingJob{
		ID:          uuid.NewString(),
		CandidateID: rec.ID,
		TenantID:    tenant,
		Snapshot: model.IndexSnapshot{
			FirstName:        rec.FirstName,
			LastName:         rec.LastName,
			Headline:         rec.Headline,
			Location:         rec.Location,
			SanitizedText:    sanitizedText,
			NeedsSponsorship: rec.NeedsSponsorship,
			AuthorizedToWork: rec.AuthorizedToWork,
			Active:           !rec.Archived,
			Version:          version,
		},
		Skills:     skills,
		State:      model.JobPending,
		EnqueuedAt: now.UTC(),
	}
}
