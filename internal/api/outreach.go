package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dealdesk/dealdesk/internal/models"
)

// OutreachInput records one outreach activity. A FollowUpDate implicitly
// schedules a task for the Scheduled Tasks view.
type OutreachInput struct {
	LeadID       int64                       `json:"leadId"`
	ActivityType models.OutreachActivityType `json:"activityType"`
	Status       models.OutreachStatus       `json:"status"`
	ContactDate  *time.Time                  `json:"contactDate,omitempty"`
	FollowUpDate *time.Time                  `json:"followUpDate,omitempty"`
	Notes        string                      `json:"notes,omitempty"`
}

func (c *Client) CreateOutreach(ctx context.Context, input OutreachInput) (*models.OutreachActivity, error) {
	var activity models.OutreachActivity
	if err := c.do(ctx, http.MethodPost, "/outreach", input, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

func (c *Client) UpdateOutreach(ctx context.Context, id int64, input OutreachInput) (*models.OutreachActivity, error) {
	var activity models.OutreachActivity
	path := fmt.Sprintf("/outreach/%d", id)
	if err := c.do(ctx, http.MethodPatch, path, input, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListOutreach fetches the outreach log of one lead.
func (c *Client) ListOutreach(ctx context.Context, leadID int64) ([]models.OutreachActivity, error) {
	var activities []models.OutreachActivity
	path := fmt.Sprintf("/outreach/lead/%d", leadID)
	if err := c.do(ctx, http.MethodGet, path, nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}
