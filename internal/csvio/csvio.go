// Package csvio parses company upload CSVs locally before anything is sent,
// so the user sees per-row problems against their own file rather than a
// server-side error dump, and renders lead exports.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dealdesk/dealdesk/internal/models"
)

// Header columns accepted on a company upload, in sample order. Matching is
// case-insensitive and ignores surrounding spaces.
var uploadColumns = []string{
	"name",
	"sector",
	"sub_sector",
	"location",
	"website",
	"founded_year",
	"business_description",
	"products",
	"revenue_inr_cr",
	"ebitda_inr_cr",
	"pat_inr_cr",
}

// CompanyRow is one parsed upload row.
type CompanyRow struct {
	Name                string
	Sector              string
	SubSector           string
	Location            string
	Website             string
	FoundedYear         int
	BusinessDescription string
	Products            string
	RevenueInrCr        float64
	EbitdaInrCr         float64
	PatInrCr            float64
}

// RowError pins a problem to the data row it occurred on. Row numbers are
// 1-based counting the header, matching what a spreadsheet shows.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ParseResult separates usable rows from rejected ones; a file with some bad
// rows still yields its good rows.
type ParseResult struct {
	Rows   []CompanyRow
	Errors []RowError
}

// Parse reads a company upload CSV. The header row is required and column
// order is free; unknown columns are ignored.
func Parse(r io.Reader) (*ParseResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := map[string]int{}
	for i, col := range header {
		index[normalize(col)] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, fmt.Errorf("header is missing the required %q column", "name")
	}

	result := &ParseResult{}
	for rowNum := 2; ; rowNum++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		row, rerr := parseRow(record, index, rowNum)
		if rerr != nil {
			result.Errors = append(result.Errors, *rerr)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	if len(result.Rows) == 0 && len(result.Errors) == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	return result, nil
}

func parseRow(record []string, index map[string]int, rowNum int) (CompanyRow, *RowError) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := CompanyRow{
		Name:                field("name"),
		Sector:              field("sector"),
		SubSector:           field("sub_sector"),
		Location:            field("location"),
		Website:             field("website"),
		BusinessDescription: field("business_description"),
		Products:            field("products"),
	}
	if row.Name == "" {
		return row, &RowError{Row: rowNum, Message: "company name is required"}
	}

	if v := field("founded_year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1800 || year > time.Now().Year() {
			return row, &RowError{Row: rowNum, Message: fmt.Sprintf("invalid founded_year %q", v)}
		}
		row.FoundedYear = year
	}

	for _, num := range []struct {
		col  string
		dst  *float64
		sign bool // true when negative values are allowed
	}{
		{"revenue_inr_cr", &row.RevenueInrCr, false},
		{"ebitda_inr_cr", &row.EbitdaInrCr, true},
		{"pat_inr_cr", &row.PatInrCr, true},
	} {
		v := field(num.col)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil {
			return row, &RowError{Row: rowNum, Message: fmt.Sprintf("invalid %s %q", num.col, v)}
		}
		if f < 0 && !num.sign {
			return row, &RowError{Row: rowNum, Message: fmt.Sprintf("%s must not be negative", num.col)}
		}
		*num.dst = f
	}

	return row, nil
}

// Render serializes parsed rows back to the canonical column order for the
// upload endpoint, which accepts the file body as a string.
func Render(rows []CompanyRow) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(uploadColumns); err != nil {
		return "", err
	}
	for _, row := range rows {
		rec := []string{
			row.Name,
			row.Sector,
			row.SubSector,
			row.Location,
			row.Website,
			intField(row.FoundedYear),
			row.BusinessDescription,
			row.Products,
			floatField(row.RevenueInrCr),
			floatField(row.EbitdaInrCr),
			floatField(row.PatInrCr),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}

// Sample is the template offered for download next to the upload dialog.
func Sample() string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Write(uploadColumns)
	w.Write([]string{
		"Acme Industrials", "Manufacturing", "Auto Components", "Pune",
		"https://acme.example.com", "1998",
		"Tier-1 supplier of precision castings", "Castings; machined parts",
		"120.5", "18.2", "9.7",
	})
	w.Flush()
	return b.String()
}

// WriteLeads renders the current lead list as a CSV export.
func WriteLeads(w io.Writer, leads []models.Lead) error {
	cw := csv.NewWriter(w)
	header := []string{"company", "sector", "location", "stage", "assigned_to", "poc_status", "notes"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, lead := range leads {
		var sector, location string
		if lead.Company != nil {
			sector = lead.Company.Sector
			location = lead.Company.Location
		}
		rec := []string{
			lead.CompanyName(),
			sector,
			location,
			string(lead.Stage),
			lead.AssignedTo,
			string(lead.PocCompletionStatus),
			lead.Notes,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func normalize(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	col = strings.ReplaceAll(col, " ", "_")
	return strings.TrimPrefix(col, "\ufeff")
}

func intField(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func floatField(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
