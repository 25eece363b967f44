package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobmate/search-service/internal/model"
)

func TestNewSearchResponse_Paging(t *testing.T) {
	cases := []struct {
		total, page, size int
		pages             int
		next, prev        bool
	}{
		{45, 2, 20, 3, true, true},
		{45, 3, 20, 3, false, true},
		{40, 2, 20, 2, false, true},
		{0, 1, 20, 0, false, false},
		{1, 1, 1, 1, false, false},
		{21, 1, 20, 2, true, false},
		{5, 4, 20, 1, false, true},
	}
	for _, tc := range cases {
		resp := model.NewSearchResponse(nil, tc.total, tc.page, tc.size)
		assert.Equal(t, tc.pages, resp.TotalPages, "total=%d size=%d", tc.total, tc.size)
		assert.Equal(t, tc.next, resp.HasNextPage, "total=%d page=%d", tc.total, tc.page)
		assert.Equal(t, tc.prev, resp.HasPreviousPage, "page=%d", tc.page)
		assert.NotNil(t, resp.Results)
	}
}

func TestNewSearchResponse_Property(t *testing.T) {
	for size := 1; size <= 7; size++ {
		for total := 0; total <= 50; total++ {
			for page := 1; page <= 10; page++ {
				resp := model.NewSearchResponse(nil, total, page, size)
				want := total / size
				if total%size != 0 {
					want++
				}
				assert.Equal(t, want, resp.TotalPages)
				assert.Equal(t, page < want, resp.HasNextPage)
				assert.Equal(t, page > 1, resp.HasPreviousPage)
			}
		}
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, model.ModeAuto, model.ParseMode(""))
	assert.Equal(t, model.ModeAuto, model.ParseMode(" AUTO "))
	assert.Equal(t, model.ModeNameMatch, model.ParseMode("nameMatch"))
	assert.Equal(t, model.ModeSemantic, model.ParseMode("Semantic"))
	assert.Equal(t, model.ModeHybrid, model.ParseMode("hybrid"))
	assert.Equal(t, model.Mode("fuzzy"), model.ParseMode("fuzzy"))
}

func TestSponsorshipFilter(t *testing.T) {
	cases := []struct {
		raw  string
		want model.SponsorshipFilter
		yes  bool
		no   bool
		flag *bool
	}{
		{"yes", model.SponsorshipYes, true, false, boolPtr(true)},
		{"no", model.SponsorshipNo, false, true, boolPtr(false)},
		{"all", model.SponsorshipAll, true, true, nil},
		{"", model.SponsorshipAll, true, true, nil},
		{"maybe", model.SponsorshipAll, true, true, nil},
	}
	for _, tc := range cases {
		f := model.ParseSponsorshipFilter(tc.raw)
		assert.Equal(t, tc.want, f, tc.raw)
		assert.Equal(t, tc.yes, f.Allows(true), tc.raw)
		assert.Equal(t, tc.no, f.Allows(false), tc.raw)
		assert.Equal(t, tc.flag, f.Flag(), tc.raw)
	}
}

func TestSearchRequest_Defaults(t *testing.T) {
	r := model.SearchRequest{Page: 3, PageSize: 20}
	assert.Equal(t, model.GlobalTenant, r.Tenant())
	assert.Equal(t, 40, r.Offset())
	r.TenantID = " acme "
	assert.Equal(t, "acme", r.Tenant())
}

func boolPtr(b bool) *bool { return &b }
