package model

import "time"

// CandidateRecord is the full candidate snapshot carried by a
// candidate-changed event. It is owned by the candidate service; the search
// service only derives index data from it.
type CandidateRecord struct {
	ID               string    `json:"id"`
	TenantID         string    `json:"tenantId,omitempty"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Address          string    `json:"address,omitempty"`
	Headline         string    `json:"headline,omitempty"`
	Location         string    `json:"location,omitempty"`
	Summary          string    `json:"summary,omitempty"`
	ResumeText       string    `json:"resumeText,omitempty"`
	NeedsSponsorship bool      `json:"needsSponsorship"`
	AuthorizedToWork *bool     `json:"authorizedToWork,omitempty"`
	Archived         bool      `json:"archived,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// FullName joins first and last name.
func (c CandidateRecord) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ProfileText is the free text that skills are extracted from and that,
// once sanitized, gets indexed and embedded.
func (c CandidateRecord) ProfileText() string {
	text := ""
	for _, part := range []string{c.Headline, c.Summary, c.ResumeText} {
		if part == "" {
			continue
		}
		if text != "" {
			text += "\n\n"
		}
		text += part
	}
	return text
}

// JobState is the lifecycle state of an IndexingJob.
type JobState string

const (
	JobPending    JobState = "PENDING"
	JobProcessing JobState = "PROCESSING"
	JobCompleted  JobState = "COMPLETED"
	JobFailed     JobState = "FAILED"
)

// IndexSnapshot is everything the worker needs to rebuild an index entry.
// It never contains raw profile text: SanitizedText has already been through
// the PII sanitizer.
type IndexSnapshot struct {
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Headline         string    `json:"headline,omitempty"`
	Location         string    `json:"location,omitempty"`
	SanitizedText    string    `json:"sanitizedText"`
	NeedsSponsorship bool      `json:"needsSponsorship"`
	AuthorizedToWork *bool     `json:"authorizedToWork,omitempty"`
	Active           bool      `json:"active"`
	Version          time.Time `json:"version"`
}

// IndexingJob refreshes one candidate's searchable representation. It carries
// a full snapshot, so reprocessing is idempotent.
type IndexingJob struct {
	ID          string        `json:"id"`
	CandidateID string        `json:"candidateId"`
	TenantID    string        `json:"tenantId,omitempty"`
	Snapshot    IndexSnapshot `json:"snapshot"`
	Skills      []string      `json:"skills"`
	State       JobState      `json:"state"`
	RetryCount  int           `json:"retryCount"`
	EnqueuedAt  time.Time     `json:"enqueuedAt"`
}

// SearchIndexEntry is the per-candidate derived data read by the strategies.
// Entries are replaced whole; they are never partially updated.
type SearchIndexEntry struct {
	CandidateID      string    `json:"candidateId"`
	TenantID         string    `json:"tenantId,omitempty"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Headline         string    `json:"headline,omitempty"`
	Location         string    `json:"location,omitempty"`
	BodyText         string    `json:"bodyText"`
	Embedding        []float32 `json:"embedding"`
	EmbeddingModel   string    `json:"embeddingModel"`
	Skills           []string  `json:"skills"`
	NeedsSponsorship bool      `json:"needsSponsorship"`
	AuthorizedToWork *bool     `json:"authorizedToWork,omitempty"`
	Active           bool      `json:"active"`
	SnapshotVersion  time.Time `json:"snapshotVersion"`
	ContentHash      string    `json:"contentHash"`
}

// IndexedCandidate holds the display fields returned with a hit.
type IndexedCandidate struct {
	CandidateID      string
	TenantID         string
	FirstName        string
	LastName         string
	Headline         string
	Location         string
	NeedsSponsorship bool
	Skills           []string
}

// TextQuery is a ranked full-text lookup within one tenant's candidates.
// A zero Limit means no limit.
type TextQuery struct {
	TenantID    string
	TSQuery     string
	Sponsorship SponsorshipFilter
	Limit       int
	Offset      int
}

// TextHit is a full-text match with the engine's normalized rank in [0,1).
type TextHit struct {
	Candidate IndexedCandidate
	Rank      float64
}

// VectorQuery is a similarity lookup against candidate embeddings. A zero
// Limit means no limit.
type VectorQuery struct {
	TenantID    string
	Embedding   []float32
	Threshold   float64
	Sponsorship SponsorshipFilter
	Limit       int
	Offset      int
}

// VectorHit is a candidate whose cosine similarity is at or above the
// query threshold.
type VectorHit struct {
	Candidate  IndexedCandidate
	Similarity float64
}
