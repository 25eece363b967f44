package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobmate/search-service/internal/model"
	"jobmate/search-service/internal/search"
)

func TestFilterSponsorship(t *testing.T) {
	in := []model.SearchResult{
		{CandidateID: "1", NeedsSponsorship: true},
		{CandidateID: "2", NeedsSponsorship: false},
		{CandidateID: "3", NeedsSponsorship: true},
	}
	ids := func(rs []model.SearchResult) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.CandidateID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "3"}, ids(search.FilterSponsorship(in, model.SponsorshipYes)))
	assert.Equal(t, []string{"2"}, ids(search.FilterSponsorship(in, model.SponsorshipNo)))
	assert.Equal(t, []string{"1", "2", "3"}, ids(search.FilterSponsorship(in, model.SponsorshipAll)))
	assert.Equal(t, []string{"1", "2", "3"}, ids(search.FilterSponsorship(in, "")))
}

func TestPaginate(t *testing.T) {
	rs := make([]model.SearchResult, 45)
	assert.Len(t, search.Paginate(rs, 0, 20), 20)
	assert.Len(t, search.Paginate(rs, 40, 20), 5)
	assert.Empty(t, search.Paginate(rs, 60, 20))
	assert.NotNil(t, search.Paginate(rs, 60, 20))
}

func TestSortResults(t *testing.T) {
	rs := []model.SearchResult{
		{CandidateID: "b", LastName: "Kim", Score: 0.5},
		{CandidateID: "a", LastName: "Kim", Score: 0.5},
		{CandidateID: "c", LastName: "Ali", FirstName: "Zoe", Score: 0.5},
		{CandidateID: "d", LastName: "Ali", FirstName: "Amy", Score: 0.5},
		{CandidateID: "e", LastName: "Zed", Score: 0.9},
	}
	search.SortResults(rs)

	var got []string
	for _, r := range rs {
		got = append(got, r.CandidateID)
	}
	assert.Equal(t, []string{"e", "d", "c", "a", "b"}, got)
}
