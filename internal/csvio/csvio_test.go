package csvio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/models"
)

func TestParse(t *testing.T) {
	in := strings.Join([]string{
		"name,sector,location,founded_year,revenue_inr_cr,ebitda_inr_cr",
		"Acme Industrials,Manufacturing,Pune,1998,120.5,18.2",
		"Bluewater Logistics,Logistics,Chennai,,\"1,050\",-4.5",
	}, "\n")

	got, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Empty(t, got.Errors)

	first := got.Rows[0]
	assert.Equal(t, "Acme Industrials", first.Name)
	assert.Equal(t, "Pune", first.Location)
	assert.Equal(t, 1998, first.FoundedYear)
	assert.Equal(t, 120.5, first.RevenueInrCr)

	// Thousands separators are accepted, and EBITDA may be negative.
	second := got.Rows[1]
	assert.Equal(t, 1050.0, second.RevenueInrCr)
	assert.Equal(t, -4.5, second.EbitdaInrCr)
}

func TestParseBadRowsAreReportedNotFatal(t *testing.T) {
	in := strings.Join([]string{
		"name,founded_year,revenue_inr_cr",
		",2001,10",
		"Apex Pharma,1492,10",
		"Zenith Castings,2001,-5",
		"Good Co,2001,10",
	}, "\n")

	got, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "Good Co", got.Rows[0].Name)

	// Row numbers are spreadsheet row numbers, counting the header as row 1.
	require.Len(t, got.Errors, 3)
	assert.Equal(t, 2, got.Errors[0].Row)
	assert.Contains(t, got.Errors[0].Message, "name is required")
	assert.Equal(t, 3, got.Errors[1].Row)
	assert.Contains(t, got.Errors[1].Message, "founded_year")
	assert.Equal(t, 4, got.Errors[2].Row)
	assert.Contains(t, got.Errors[2].Message, "must not be negative")
}

func TestParseHeaderHandling(t *testing.T) {
	// BOM, mixed case and spaces in headers are all tolerated, and column
	// order is free.
	in := "\ufeffSector,NAME,Founded Year\nPharma,Apex Pharma,2005\n"
	got, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "Apex Pharma", got.Rows[0].Name)
	assert.Equal(t, "Pharma", got.Rows[0].Sector)
	assert.Equal(t, 2005, got.Rows[0].FoundedYear)
}

func TestParseRejectsUnusableFiles(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("sector,location\nPharma,Pune\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")

	_, err = Parse(strings.NewReader("name,sector\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestRenderRoundTrip(t *testing.T) {
	rows := []CompanyRow{{
		Name:         "Acme Industrials",
		Sector:       "Manufacturing",
		Location:     "Pune",
		FoundedYear:  1998,
		RevenueInrCr: 120.5,
		PatInrCr:     -2.25,
	}}

	out, err := Render(rows)
	require.NoError(t, err)

	back, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, back.Rows, 1)
	assert.Equal(t, rows[0], back.Rows[0])
}

func TestSampleParses(t *testing.T) {
	got, err := Parse(strings.NewReader(Sample()))
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Empty(t, got.Errors)
	assert.Equal(t, "Acme Industrials", got.Rows[0].Name)
}

func TestWriteLeads(t *testing.T) {
	leads := []models.Lead{
		{
			Stage:               models.StageQualified,
			AssignedTo:          "a1",
			PocCompletionStatus: models.PocGreen,
			Notes:               "warm intro",
			Company:             &models.Company{Name: "Acme Industrials", Sector: "Manufacturing", Location: "Pune"},
		},
		{Stage: models.StageUniverse},
	}

	var b strings.Builder
	require.NoError(t, WriteLeads(&b, leads))

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "company,sector,location,stage,assigned_to,poc_status,notes", lines[0])
	assert.Equal(t, "Acme Industrials,Manufacturing,Pune,qualified,a1,green,warm intro", lines[1])
	assert.Equal(t, ",,,universe,,,", lines[2])
}
