package leadview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/models"
)

func lead(id int64, name, sector string, stage models.Stage) models.Lead {
	return models.Lead{
		ID:    id,
		Stage: stage,
		Company: &models.Company{
			ID:     id,
			Name:   name,
			Sector: sector,
		},
	}
}

func sample() []models.Lead {
	return []models.Lead{
		lead(1, "Zenith Castings", "Manufacturing", models.StageUniverse),
		lead(2, "Apex Pharma", "Pharmaceuticals", models.StageQualified),
		lead(3, "Bluewater Logistics", "Logistics", models.StageUniverse),
		lead(4, "Apex Diagnostics", "Pharmaceuticals", models.StageOutreach),
	}
}

func names(r Result) []string {
	out := make([]string, len(r.Leads))
	for i, l := range r.Leads {
		out[i] = l.CompanyName()
	}
	return out
}

func TestApplySearch(t *testing.T) {
	r := Apply(sample(), Query{Search: "apex"})
	assert.Equal(t, 2, r.Total)

	// Sector text is searchable too.
	r = Apply(sample(), Query{Search: "LOGIST"})
	require.Len(t, r.Leads, 1)
	assert.Equal(t, "Bluewater Logistics", r.Leads[0].CompanyName())

	r = Apply(sample(), Query{Search: "no such company"})
	assert.Zero(t, r.Total)
}

func TestApplyStageAndSectorFilters(t *testing.T) {
	r := Apply(sample(), Query{Stage: models.StageUniverse})
	assert.Equal(t, 2, r.Total)

	r = Apply(sample(), Query{Sector: "pharmaceuticals"})
	assert.Equal(t, 2, r.Total)

	// A lead without company data cannot match a sector filter.
	withBare := append(sample(), models.Lead{ID: 9})
	r = Apply(withBare, Query{Sector: "Logistics"})
	assert.Equal(t, 1, r.Total)
}

func TestApplyAssigneeFilter(t *testing.T) {
	leads := sample()
	leads[0].AssignedTo = "a1"
	leads[2].AssignedTo = "a1"

	r := Apply(leads, Query{AssignedTo: "a1"})
	assert.Equal(t, 2, r.Total)
}

func TestSortCompany(t *testing.T) {
	r := Apply(sample(), Query{Sort: SortCompany})
	assert.Equal(t, []string{"Apex Diagnostics", "Apex Pharma", "Bluewater Logistics", "Zenith Castings"}, names(r))
}

func TestSortCreatedNewestFirst(t *testing.T) {
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	leads := sample()
	leads[0].CreatedAt = &old
	leads[1].CreatedAt = &recent

	r := Apply(leads, Query{Sort: SortCreated})
	assert.Equal(t, "Apex Pharma", r.Leads[0].CompanyName())
	assert.Equal(t, "Zenith Castings", r.Leads[1].CompanyName())
}

func TestSortPocStatusWorstFirst(t *testing.T) {
	leads := sample()
	leads[0].PocCompletionStatus = models.PocGreen
	leads[1].PocCompletionStatus = models.PocRed
	leads[2].PocCompletionStatus = models.PocAmber
	leads[3].PocCompletionStatus = models.PocGreen

	r := Apply(leads, Query{Sort: SortPocStatus})
	assert.Equal(t, models.PocRed, r.Leads[0].PocCompletionStatus)
	assert.Equal(t, models.PocAmber, r.Leads[1].PocCompletionStatus)
}

func TestPagination(t *testing.T) {
	r := Apply(sample(), Query{Sort: SortCompany, PageSize: 3})
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 2, r.Pages)
	assert.Equal(t, 1, r.Page)
	assert.Len(t, r.Leads, 3)

	r = Apply(sample(), Query{Sort: SortCompany, PageSize: 3, Page: 2})
	assert.Equal(t, 2, r.Page)
	require.Len(t, r.Leads, 1)
	assert.Equal(t, "Zenith Castings", r.Leads[0].CompanyName())

	// Out-of-range pages clamp instead of returning nothing.
	r = Apply(sample(), Query{PageSize: 3, Page: 99})
	assert.Equal(t, 2, r.Page)
	r = Apply(sample(), Query{PageSize: 3, Page: -1})
	assert.Equal(t, 1, r.Page)
}

func TestPaginationEmptyResult(t *testing.T) {
	r := Apply(nil, Query{PageSize: 10})
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 1, r.Pages)
	assert.Empty(t, r.Leads)
}

func TestSectors(t *testing.T) {
	withBare := append(sample(), models.Lead{ID: 9})
	got := Sectors(withBare)
	assert.Equal(t, []string{"Logistics", "Manufacturing", "Pharmaceuticals"}, got)
}
