package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dealdesk/dealdesk/internal/models"
)

// InterventionInput logs or schedules a touch-point. DocumentName is set only
// for document-type entries, where it names the gate artifact.
type InterventionInput struct {
	LeadID       int64                   `json:"leadId"`
	Type         models.InterventionType `json:"type"`
	ScheduledAt  time.Time               `json:"scheduledAt"`
	Notes        string                  `json:"notes"`
	DocumentName string                  `json:"documentName,omitempty"`
}

func (c *Client) CreateIntervention(ctx context.Context, input InterventionInput) (*models.Intervention, error) {
	var iv models.Intervention
	if err := c.do(ctx, http.MethodPost, "/interventions", input, &iv); err != nil {
		return nil, err
	}
	return &iv, nil
}

func (c *Client) UpdateIntervention(ctx context.Context, id int64, input InterventionInput) (*models.Intervention, error) {
	var iv models.Intervention
	path := fmt.Sprintf("/interventions/%d", id)
	if err := c.do(ctx, http.MethodPut, path, input, &iv); err != nil {
		return nil, err
	}
	return &iv, nil
}

func (c *Client) DeleteIntervention(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/interventions/%d", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ListInterventions fetches every intervention recorded against a lead.
func (c *Client) ListInterventions(ctx context.Context, leadID int64) ([]models.Intervention, error) {
	var ivs []models.Intervention
	path := fmt.Sprintf("/interventions/lead/%d", leadID)
	if err := c.do(ctx, http.MethodGet, path, nil, &ivs); err != nil {
		return nil, err
	}
	return ivs, nil
}

// ListScheduledInterventions fetches upcoming interventions across leads for
// the Scheduled Tasks view.
func (c *Client) ListScheduledInterventions(ctx context.Context) ([]models.Intervention, error) {
	var ivs []models.Intervention
	if err := c.do(ctx, http.MethodGet, "/interventions/scheduled", nil, &ivs); err != nil {
		return nil, err
	}
	return ivs, nil
}
