package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dealdesk/dealdesk/internal/models"
)

func (c *Client) DashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error) {
	var metrics models.DashboardMetrics
	if err := c.do(ctx, http.MethodGet, "/dashboard/metrics", nil, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// ActivityLog fetches one page of the audit trail.
func (c *Client) ActivityLog(ctx context.Context, page, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	path := fmt.Sprintf("/activity-log?page=%d&limit=%d", page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CSVUploadResult reports a bulk company import: per-row failures carry the
// offending row number so the user can fix the file.
type CSVUploadResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Errors   []struct {
		Row     int    `json:"row"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// UploadCompaniesCSV posts raw CSV data for bulk lead creation.
func (c *Client) UploadCompaniesCSV(ctx context.Context, csvData []byte) (*CSVUploadResult, error) {
	var result CSVUploadResult
	body := map[string]string{"csvData": string(csvData)}
	if err := c.do(ctx, http.MethodPost, "/companies/csv-upload", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SampleCSV downloads the import template.
func (c *Client) SampleCSV(ctx context.Context) ([]byte, error) {
	return c.doRaw(ctx, http.MethodGet, "/companies/csv-sample", "", nil)
}

// ExportLeadsCSV downloads the given stage's leads as CSV. Stage "" exports
// everything.
func (c *Client) ExportLeadsCSV(ctx context.Context, stage models.Stage) ([]byte, error) {
	path := "/leads/csv-export"
	if stage != "" {
		path += "?stage=" + url.QueryEscape(string(stage))
	}
	return c.doRaw(ctx, http.MethodGet, path, "", nil)
}
