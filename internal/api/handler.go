// Package api implements the HTTP handlers for the search service.
//
// The tenant is taken from the x-tenant-id header forwarded by the Gateway,
// or from the tenantId query parameter. Requests without either use the
// global tenant.
//
// Routes:
//
//	GET  /search?term=&page=&pageSize=&mode=&sponsorship=  → ranked candidates
//	GET  /scoring-config/{tenant}                          → effective scoring config
//	PUT  /scoring-config/{tenant}                          → replace scoring config
//	POST /index/events                                     → enqueue an indexing job
//	GET  /index/jobs/{id}                                  → indexing job status
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"jobmate/search-service/internal/indexing"
	"jobmate/search-service/internal/model"
	"jobmate/search-service/internal/scoring"
	"jobmate/search-service/internal/search"
)

const (
	defaultPageSize = 20

	// statusClientClosedRequest is the nginx convention for a caller that
	// went away before the response was ready.
	statusClientClosedRequest = 499
)

// ─── Dependencies ────────────────────────────────────────────────────────────

// Searcher runs a search request.
type Searcher interface {
	Dispatch(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error)
}

// ScoringConfigs reads and replaces per-tenant scoring configs.
type ScoringConfigs interface {
	GetScoringConfig(ctx context.Context, tenantID string) (model.ScoringConfig, error)
	SetScoringConfig(ctx context.Context, tenantID string, semanticWeight, keywordWeight, threshold float64, fusion string) (model.ScoringConfig, error)
}

// EventIntake turns a candidate-changed event into a queued indexing job.
type EventIntake interface {
	HandleCandidateChanged(ctx context.Context, rec model.CandidateRecord) (model.IndexingJob, error)
}

// JobStatuses looks up indexing job progress.
type JobStatuses interface {
	Get(ctx context.Context, jobID string) (*indexing.JobStatus, error)
}

// ─── Request / response types ────────────────────────────────────────────────

type scoringConfigBody struct {
	SemanticWeight      *float64 `json:"semanticWeight"`
	KeywordWeight       *float64 `json:"keywordWeight"`
	SimilarityThreshold *float64 `json:"similarityThreshold"`
	FusionStrategy      string   `json:"fusionStrategy"`
}

type jobAccepted struct {
	JobID       string         `json:"jobId"`
	CandidateID string         `json:"candidateId"`
	State       model.JobState `json:"state"`
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	searcher Searcher
	scoring  ScoringConfigs
	intake   EventIntake
	jobs     JobStatuses
}

// NewHandler returns a configured Handler.
func NewHandler(searcher Searcher, scoring ScoringConfigs, intake EventIntake, jobs JobStatuses) *Handler {
	return &Handler{searcher: searcher, scoring: scoring, intake: intake, jobs: jobs}
}

// RegisterRoutes mounts all search-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/search", h.handleSearch)
	mux.HandleFunc("/scoring-config/", h.handleScoringConfig)
	mux.HandleFunc("/index/events", h.handleIndexEvent)
	mux.HandleFunc("/index/jobs/", h.handleJobStatus)
}

// ─── Route dispatch ──────────────────────────────────────────────────────────

// handleSearch handles GET /search
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := parseSearchRequest(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.searcher.Dispatch(r.Context(), req)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	jsonOK(w, resp)
}

// handleScoringConfig handles GET|PUT /scoring-config/{tenant}
func (h *Handler) handleScoringConfig(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[1] == "" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	tenantID := parts[1]

	switch r.Method {
	case http.MethodGet:
		cfg, err := h.scoring.GetScoringConfig(r.Context(), tenantID)
		if err != nil {
			writeError(w, "getScoringConfig", err)
			return
		}
		jsonOK(w, cfg)
	case http.MethodPut:
		h.putScoringConfig(w, r, tenantID)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleIndexEvent handles POST /index/events
func (h *Handler) handleIndexEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var rec model.CandidateRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if rec.TenantID == "" {
		rec.TenantID = r.Header.Get("x-tenant-id")
	}

	job, err := h.intake.HandleCandidateChanged(r.Context(), rec)
	if err != nil {
		writeError(w, "indexEvent", err)
		return
	}

	writeJSON(w, http.StatusAccepted, jobAccepted{
		JobID:       job.ID,
		CandidateID: job.CandidateID,
		State:       job.State,
	})
}

// handleJobStatus handles GET /index/jobs/{id}
func (h *Handler) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[2] == "" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	status, err := h.jobs.Get(r.Context(), parts[2])
	if err != nil {
		writeError(w, "jobStatus", err)
		return
	}
	jsonOK(w, status)
}

// ─── Individual handlers ─────────────────────────────────────────────────────

func (h *Handler) putScoringConfig(w http.ResponseWriter, r *http.Request, tenantID string) {
	var body scoringConfigBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.SemanticWeight == nil || body.KeywordWeight == nil || body.SimilarityThreshold == nil {
		jsonError(w, "semanticWeight, keywordWeight and similarityThreshold are required", http.StatusBadRequest)
		return
	}

	cfg, err := h.scoring.SetScoringConfig(r.Context(), tenantID,
		*body.SemanticWeight, *body.KeywordWeight, *body.SimilarityThreshold, body.FusionStrategy)
	if err != nil {
		writeError(w, "putScoringConfig", err)
		return
	}
	jsonOK(w, cfg)
}

// parseSearchRequest reads the query string. Missing page and pageSize
// default to 1 and 20; range checks are left to the dispatcher.
func parseSearchRequest(r *http.Request) (model.SearchRequest, error) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		return model.SearchRequest{}, errors.New("page must be an integer")
	}
	pageSize, err := intParam(q.Get("pageSize"), defaultPageSize)
	if err != nil {
		return model.SearchRequest{}, errors.New("pageSize must be an integer")
	}

	tenantID := r.Header.Get("x-tenant-id")
	if tenantID == "" {
		tenantID = q.Get("tenantId")
	}

	return model.SearchRequest{
		Term:        q.Get("term"),
		Page:        page,
		PageSize:    pageSize,
		Mode:        model.ParseMode(q.Get("mode")),
		Sponsorship: model.ParseSponsorshipFilter(q.Get("sponsorship")),
		TenantID:    tenantID,
	}, nil
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var verr *search.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, scoring.ErrInvalidConfig),
		errors.Is(err, indexing.ErrInvalidEvent):
		return http.StatusBadRequest
	case errors.Is(err, indexing.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, search.ErrNoStrategy):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, op string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError || code == http.StatusServiceUnavailable {
		log.Printf("[search] %s error: %v", op, err)
		if code == http.StatusInternalServerError {
			jsonError(w, "internal error", code)
			return
		}
	}
	jsonError(w, err.Error(), code)
}

func jsonOK(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
