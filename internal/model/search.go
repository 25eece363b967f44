// Package model defines shared data structures for the search service.
package model

import "strings"

// GlobalTenant is the tenant used when a request or config carries none.
const GlobalTenant = "global"

// Mode selects the search strategy for a request.
type Mode string

const (
	ModeNameMatch Mode = "nameMatch"
	ModeSemantic  Mode = "semantic"
	ModeHybrid    Mode = "hybrid"
	ModeAuto      Mode = "auto"
)

// ParseMode maps a raw mode string to a Mode. Matching is case-insensitive and
// an empty string means auto. Unknown values are returned as-is so the
// dispatcher can apply its fallback.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ModeAuto
	case "namematch", "name":
		return ModeNameMatch
	case "semantic":
		return ModeSemantic
	case "hybrid":
		return ModeHybrid
	case "auto":
		return ModeAuto
	}
	return Mode(s)
}

// SponsorshipFilter restricts results on the candidate's visa sponsorship flag.
type SponsorshipFilter string

const (
	SponsorshipAll SponsorshipFilter = "all"
	SponsorshipYes SponsorshipFilter = "yes"
	SponsorshipNo  SponsorshipFilter = "no"
)

// ParseSponsorshipFilter returns the filter for s. Empty or unknown values
// mean no filtering.
func ParseSponsorshipFilter(s string) SponsorshipFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true":
		return SponsorshipYes
	case "no", "false":
		return SponsorshipNo
	}
	return SponsorshipAll
}

// Allows reports whether a candidate with the given flag passes the filter.
func (f SponsorshipFilter) Allows(needsSponsorship bool) bool {
	switch f {
	case SponsorshipYes:
		return needsSponsorship
	case SponsorshipNo:
		return !needsSponsorship
	}
	return true
}

// Flag returns the value an indexed query must match, or nil for no filter.
func (f SponsorshipFilter) Flag() *bool {
	var v bool
	switch f {
	case SponsorshipYes:
		v = true
	case SponsorshipNo:
		v = false
	default:
		return nil
	}
	return &v
}

// SearchRequest is a single search call.
type SearchRequest struct {
	Term        string            `json:"term"`
	Page        int               `json:"page"`
	PageSize    int               `json:"pageSize"`
	Mode        Mode              `json:"mode"`
	Sponsorship SponsorshipFilter `json:"sponsorshipFilter,omitempty"`
	TenantID    string            `json:"tenantId,omitempty"`
}

// Tenant returns the request's tenant, defaulting to GlobalTenant.
func (r SearchRequest) Tenant() string {
	if t := strings.TrimSpace(r.TenantID); t != "" {
		return t
	}
	return GlobalTenant
}

// Offset is the number of rows skipped for the requested page.
func (r SearchRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// SearchResult is one ranked candidate.
type SearchResult struct {
	CandidateID      string   `json:"candidateId"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Headline         string   `json:"headline,omitempty"`
	Location         string   `json:"location,omitempty"`
	NeedsSponsorship bool     `json:"needsSponsorship"`
	Score            float64  `json:"score"`
	MatchedTerms     []string `json:"matchedTerms"`
	Strategy         string   `json:"strategy"`
}

// SearchResponse is a page of results plus paging metadata.
type SearchResponse struct {
	Results         []SearchResult `json:"results"`
	TotalCount      int            `json:"totalCount"`
	Page            int            `json:"page"`
	PageSize        int            `json:"pageSize"`
	TotalPages      int            `json:"totalPages"`
	HasNextPage     bool           `json:"hasNextPage"`
	HasPreviousPage bool           `json:"hasPreviousPage"`
}

// NewSearchResponse fills in the paging fields for a page of results.
func NewSearchResponse(results []SearchResult, totalCount, page, pageSize int) *SearchResponse {
	if results == nil {
		results = []SearchResult{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return &SearchResponse{
		Results:         results,
		TotalCount:      totalCount,
		Page:            page,
		PageSize:        pageSize,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}
