// Package leadview derives what a stage's list screen shows from the cached
// lead set: search, filters, sort and pagination. It is pure; the cache owns
// the data and the screens own the selections.
package leadview

import (
	"sort"
	"strings"

	"github.com/dealdesk/dealdesk/internal/models"
)

type SortKey string

const (
	SortCompany      SortKey = "company"
	SortCreated      SortKey = "created"
	SortStageUpdated SortKey = "stage_updated"
	SortPocStatus    SortKey = "poc_status"
)

// Query is one screen's current view selections. Zero values mean "no
// constraint".
type Query struct {
	Search     string
	Sector     string
	Location   string
	AssignedTo string
	// Stage narrows the universe tab, which lists leads across stages.
	Stage    models.Stage
	Sort     SortKey
	Page     int
	PageSize int
}

type Result struct {
	Leads []models.Lead
	Total int
	Page  int
	Pages int
}

// Apply filters, sorts and paginates leads for display.
func Apply(leads []models.Lead, q Query) Result {
	filtered := make([]models.Lead, 0, len(leads))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	for _, lead := range leads {
		if q.Stage != "" && lead.Stage != q.Stage {
			continue
		}
		if q.AssignedTo != "" && lead.AssignedTo != q.AssignedTo {
			continue
		}
		if lead.Company != nil {
			if q.Sector != "" && !strings.EqualFold(lead.Company.Sector, q.Sector) {
				continue
			}
			if q.Location != "" && !strings.EqualFold(lead.Company.Location, q.Location) {
				continue
			}
		} else if q.Sector != "" || q.Location != "" {
			continue
		}
		if search != "" && !matches(lead, search) {
			continue
		}
		filtered = append(filtered, lead)
	}

	sortLeads(filtered, q.Sort)

	total := len(filtered)
	pageSize := q.PageSize
	if pageSize <= 0 {
		return Result{Leads: filtered, Total: total, Page: 1, Pages: 1}
	}

	pages := (total + pageSize - 1) / pageSize
	if pages == 0 {
		pages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	return Result{Leads: filtered[start:end], Total: total, Page: page, Pages: pages}
}

func matches(lead models.Lead, search string) bool {
	if lead.Company != nil {
		if strings.Contains(strings.ToLower(lead.Company.Name), search) {
			return true
		}
		if strings.Contains(strings.ToLower(lead.Company.Sector), search) {
			return true
		}
		if strings.Contains(strings.ToLower(lead.Company.Location), search) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(lead.Notes), search)
}

func sortLeads(leads []models.Lead, key SortKey) {
	switch key {
	case SortCompany:
		sort.SliceStable(leads, func(i, j int) bool {
			return strings.ToLower(leads[i].CompanyName()) < strings.ToLower(leads[j].CompanyName())
		})
	case SortCreated:
		sort.SliceStable(leads, func(i, j int) bool {
			ti, tj := leads[i].CreatedAt, leads[j].CreatedAt
			if ti == nil || tj == nil {
				return tj == nil && ti != nil
			}
			return ti.After(*tj)
		})
	case SortPocStatus:
		rank := map[models.PocStatus]int{models.PocRed: 0, models.PocAmber: 1, models.PocGreen: 2}
		sort.SliceStable(leads, func(i, j int) bool {
			return rank[leads[i].PocCompletionStatus] < rank[leads[j].PocCompletionStatus]
		})
	case SortStageUpdated, "":
		sort.SliceStable(leads, func(i, j int) bool {
			ti, tj := leads[i].StageUpdatedAt, leads[j].StageUpdatedAt
			if ti == nil || tj == nil {
				return tj == nil && ti != nil
			}
			return ti.After(*tj)
		})
	}
}

// Sectors collects the distinct sector values present, for filter menus.
func Sectors(leads []models.Lead) []string {
	seen := map[string]bool{}
	var out []string
	for _, lead := range leads {
		if lead.Company == nil || lead.Company.Sector == "" {
			continue
		}
		if !seen[lead.Company.Sector] {
			seen[lead.Company.Sector] = true
			out = append(out, lead.Company.Sector)
		}
	}
	sort.Strings(out)
	return out
}
