// Package index stores and queries SearchIndexEntry rows in Postgres: a
// weighted tsvector for ranked prefix search and a pgvector embedding for
// similarity search.
package index

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/search-service/internal/model"
)

// ─── Store ───────────────────────────────────────────────────────────────────

// Store reads and writes candidate_search_index. Reads serve the search
// strategies; Upsert is called only by the indexing worker.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const hitColumns = `candidate_id, tenant_id, first_name, last_name, headline, location, needs_sponsorship, skills`

// ─── Full-text ───────────────────────────────────────────────────────────────

// SearchText runs a ranked tsquery. ts_rank normalization 32 maps the rank
// into [0,1). A zero Limit returns every match.
func (s *Store) SearchText(ctx context.Context, q model.TextQuery) ([]model.TextHit, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+hitColumns+`, ts_rank(search_vector, query, 32) AS rank
		FROM candidate_search_index, to_tsquery('simple', $1) query
		WHERE active
		  AND tenant_id = $5
		  AND search_vector @@ query
		  AND ($2::boolean IS NULL OR needs_sponsorship = $2)
		ORDER BY rank DESC, last_name, first_name, candidate_id
		LIMIT $3 OFFSET $4`,
		q.TSQuery, q.Sponsorship.Flag(), limitArg(q.Limit), q.Offset, tenantArg(q.TenantID),
	)
	if err != nil {
		return nil, fmt.Errorf("searchText query: %w", err)
	}
	defer rows.Close()

	hits := make([]model.TextHit, 0)
	for rows.Next() {
		var h model.TextHit
		if err := scanCandidate(rows, &h.Candidate, &h.Rank); err != nil {
			return nil, fmt.Errorf("searchText scan: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searchText rows: %w", err)
	}
	return hits, nil
}

// CountText counts matches for the same predicate SearchText uses. Limit
// and Offset are ignored.
func (s *Store) CountText(ctx context.Context, q model.TextQuery) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM candidate_search_index
		WHERE active
		  AND tenant_id = $3
		  AND search_vector @@ to_tsquery('simple', $1)
		  AND ($2::boolean IS NULL OR needs_sponsorship = $2)`,
		q.TSQuery, q.Sponsorship.Flag(), tenantArg(q.TenantID),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("countText: %w", err)
	}
	return n, nil
}

// ─── Vector ──────────────────────────────────────────────────────────────────

// SearchVector returns candidates whose cosine similarity to the query
// embedding is at least q.Threshold, most similar first.
func (s *Store) SearchVector(ctx context.Context, q model.VectorQuery) ([]model.VectorHit, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+hitColumns+`, 1 - (embedding <=> $1::vector) AS similarity
		FROM candidate_search_index
		WHERE active
		  AND tenant_id = $6
		  AND embedding IS NOT NULL
		  AND 1 - (embedding <=> $1::vector) >= $2
		  AND ($3::boolean IS NULL OR needs_sponsorship = $3)
		ORDER BY similarity DESC, last_name, first_name, candidate_id
		LIMIT $4 OFFSET $5`,
		FormatVector(q.Embedding), q.Threshold, q.Sponsorship.Flag(), limitArg(q.Limit), q.Offset, tenantArg(q.TenantID),
	)
	if err != nil {
		return nil, fmt.Errorf("searchVector query: %w", err)
	}
	defer rows.Close()

	hits := make([]model.VectorHit, 0)
	for rows.Next() {
		var h model.VectorHit
		if err := scanCandidate(rows, &h.Candidate, &h.Similarity); err != nil {
			return nil, fmt.Errorf("searchVector scan: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searchVector rows: %w", err)
	}
	return hits, nil
}

// CountVector counts candidates above the similarity threshold.
func (s *Store) CountVector(ctx context.Context, q model.VectorQuery) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM candidate_search_index
		WHERE active
		  AND tenant_id = $4
		  AND embedding IS NOT NULL
		  AND 1 - (embedding <=> $1::vector) >= $2
		  AND ($3::boolean IS NULL OR needs_sponsorship = $3)`,
		FormatVector(q.Embedding), q.Threshold, q.Sponsorship.Flag(), tenantArg(q.TenantID),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("countVector: %w", err)
	}
	return n, nil
}

// ─── Write-back ──────────────────────────────────────────────────────────────

// Upsert replaces the candidate's entry in a single statement, regenerating
// the tsvector from the entry's names, sanitized body and skills. The row is
// only replaced when its stored snapshot version is not newer than e's;
// applied is false when a newer snapshot already won.
func (s *Store) Upsert(ctx context.Context, e model.SearchIndexEntry) (applied bool, err error) {
	var embedding any
	if len(e.Embedding) > 0 {
		embedding = FormatVector(e.Embedding)
	}
	skills := e.Skills
	if skills == nil {
		skills = []string{}
	}
	tenant := tenantArg(e.TenantID)

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO candidate_search_index (
			candidate_id, tenant_id, first_name, last_name, headline, location,
			body_text, search_vector, embedding, embedding_model, skills,
			needs_sponsorship, authorized_to_work, active, snapshot_version,
			content_hash, indexed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			setweight(to_tsvector('simple', $3 || ' ' || $4), 'A') ||
			setweight(to_tsvector('simple', $7), 'B') ||
			setweight(to_tsvector('simple', array_to_string($10::text[], ' ')), 'C'),
			$8::vector, $9, $10, $11, $12, $13, $14, $15, now()
		)
		ON CONFLICT (candidate_id) DO UPDATE SET
			tenant_id          = EXCLUDED.tenant_id,
			first_name         = EXCLUDED.first_name,
			last_name          = EXCLUDED.last_name,
			headline           = EXCLUDED.headline,
			location           = EXCLUDED.location,
			body_text          = EXCLUDED.body_text,
			search_vector      = EXCLUDED.search_vector,
			embedding          = EXCLUDED.embedding,
			embedding_model    = EXCLUDED.embedding_model,
			skills             = EXCLUDED.skills,
			needs_sponsorship  = EXCLUDED.needs_sponsorship,
			authorized_to_work = EXCLUDED.authorized_to_work,
			active             = EXCLUDED.active,
			snapshot_version   = EXCLUDED.snapshot_version,
			content_hash       = EXCLUDED.content_hash,
			indexed_at         = EXCLUDED.indexed_at
		WHERE candidate_search_index.snapshot_version <= EXCLUDED.snapshot_version`,
		e.CandidateID, tenant, e.FirstName, e.LastName, e.Headline, e.Location,
		e.BodyText, embedding, e.EmbeddingModel, skills,
		e.NeedsSponsorship, e.AuthorizedToWork, e.Active, e.SnapshotVersion,
		e.ContentHash,
	)
	if err != nil {
		return false, fmt.Errorf("upsert index entry %s: %w", e.CandidateID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func scanCandidate(rows pgx.Rows, c *model.IndexedCandidate, score *float64) error {
	return rows.Scan(
		&c.CandidateID, &c.TenantID, &c.FirstName, &c.LastName, &c.Headline, &c.Location,
		&c.NeedsSponsorship, &c.Skills, score,
	)
}

// tenantArg maps an empty tenant to the global tenant, matching how Upsert
// stores entries that carry none.
func tenantArg(tenantID string) string {
	if t := strings.TrimSpace(tenantID); t != "" {
		return t
	}
	return model.GlobalTenant
}

// limitArg maps a zero limit to SQL NULL, which Postgres treats as no limit.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

// FormatVector renders v in pgvector's text input format, e.g. "[0.5,-1]".
func FormatVector(v []float32) string {
	var b strings.Builder
	b.Grow(len(v)*8 + 2)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
