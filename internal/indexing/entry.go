package indexing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"jobmate/search-service/internal/model"
)

// BuildEntry derives the index entry for job. It is a pure function of the
// job snapshot, skills and embedding, so reprocessing an unchanged job yields
// an identical entry.
func BuildEntry(job model.IndexingJob, vec []float32, embeddingModel string) model.SearchIndexEntry {
	snap := job.Snapshot
	e := model.SearchIndexEntry{
		CandidateID:      job.CandidateID,
		TenantID:         job.TenantID,
		FirstName:        snap.FirstName,
		LastName:         snap.LastName,
		Headline:         snap.Headline,
		Location:         snap.Location,
		BodyText:         snap.SanitizedText,
		Embedding:        vec,
		Skills:           canonicalSkills(job.Skills),
		NeedsSponsorship: snap.NeedsSponsorship,
		AuthorizedToWork: snap.AuthorizedToWork,
		Active:           snap.Active,
		SnapshotVersion:  snap.Version,
	}
	if len(vec) > 0 {
		e.EmbeddingModel = embeddingModel
	}
	e.ContentHash = contentHash(e)
	return e
}

// canonicalSkills returns a sorted, de-duplicated copy.
func canonicalSkills(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// contentHash fingerprints the searchable content of e, excluding the
// embedding and version.
func contentHash(e model.SearchIndexEntry) string {
	payload, _ := json.Marshal(struct {
		First, Last, Headline, Location, Body string
		Skills                                []string
		Sponsorship, Active                   bool
		Authorized                            *bool
	}{
		e.FirstName, e.LastName, e.Headline, e.Location, e.BodyText,
		e.Skills, e.NeedsSponsorship, e.Active, e.AuthorizedToWork,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
