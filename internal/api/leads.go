package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dealdesk/dealdesk/internal/models"
)

// ListLeads fetches every lead visible to the session, across stages. The
// universe view is built from this.
func (c *Client) ListLeads(ctx context.Context) ([]models.Lead, error) {
	var leads []models.Lead
	if err := c.do(ctx, http.MethodGet, "/leads/all", nil, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// ListLeadsByStage fetches the leads currently sitting in one stage.
func (c *Client) ListLeadsByStage(ctx context.Context, stage models.Stage) ([]models.Lead, error) {
	var leads []models.Lead
	path := fmt.Sprintf("/leads/stage/%s", url.PathEscape(string(stage)))
	if err := c.do(ctx, http.MethodGet, path, nil, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// StageChange is the body of the stage PATCH. POC selections ride along on
// the outreach -> pitching transition.
type StageChange struct {
	Stage        models.Stage `json:"stage"`
	DefaultPocID *int64       `json:"defaultPocId,omitempty"`
	BackupPocID  *int64       `json:"backupPocId,omitempty"`
}

// UpdateStage moves a lead to a new stage.
func (c *Client) UpdateStage(ctx context.Context, leadID int64, change StageChange) (*models.Lead, error) {
	var lead models.Lead
	path := fmt.Sprintf("/leads/%d/stage", leadID)
	if err := c.do(ctx, http.MethodPatch, path, change, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// ProgressStage advances a lead through a document-gated transition via the
// dedicated endpoint; the backend re-checks the document artifact.
func (c *Client) ProgressStage(ctx context.Context, leadID int64, target models.Stage) (*models.Lead, error) {
	var lead models.Lead
	path := fmt.Sprintf("/leads/%d/progress-stage", leadID)
	body := map[string]models.Stage{"targetStage": target}
	if err := c.do(ctx, http.MethodPost, path, body, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// RejectLead moves a lead to rejected with the mandatory reason. The reason
// ends up in the activity log.
func (c *Client) RejectLead(ctx context.Context, leadID int64, reason string) error {
	path := fmt.Sprintf("/leads/%d/reject", leadID)
	body := map[string]string{"rejectionReason": reason}
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

// AssignRequest assigns a lead to a single analyst-level user. AssignedTo of
// nil clears the assignment. ChallengeToken is required only when replacing
// an existing assignee.
type AssignRequest struct {
	AssignedTo     *string `json:"assignedTo"`
	ChallengeToken string  `json:"challengeToken,omitempty"`
}

func (c *Client) AssignLead(ctx context.Context, leadID int64, req AssignRequest) error {
	path := fmt.Sprintf("/leads/%d/assign", leadID)
	return c.do(ctx, http.MethodPost, path, req, nil)
}

// AssignInterns replaces the intern set on a lead (analyst acting role). An
// empty slice unassigns all interns.
func (c *Client) AssignInterns(ctx context.Context, leadID int64, internIDs []string) error {
	path := fmt.Sprintf("/leads/%d/assign-intern", leadID)
	body := map[string][]string{"internIds": internIDs}
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

// ReassignInternRequest swaps one intern for another on an already-assigned
// lead, under challenge-token protection.
type ReassignInternRequest struct {
	FromInternID   string `json:"fromInternId"`
	ToInternID     string `json:"toInternId"`
	Notes          string `json:"notes,omitempty"`
	ChallengeToken string `json:"challengeToken"`
}

func (c *Client) ReassignIntern(ctx context.Context, leadID int64, req ReassignInternRequest) error {
	path := fmt.Sprintf("/leads/%d/reassign-intern", leadID)
	return c.do(ctx, http.MethodPatch, path, req, nil)
}

// BulkAssignResult reports the outcome of a bulk assignment. Errors is
// normally empty (the request is all-or-nothing) but itemized per-lead
// failures are decoded if the backend ever returns them.
type BulkAssignResult struct {
	AssignedCount int `json:"assignedCount"`
	Errors        []struct {
		LeadID  int64  `json:"leadId"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

func (c *Client) BulkAssign(ctx context.Context, leadIDs []int64, assignedTo string) (*BulkAssignResult, error) {
	body := map[string]interface{}{
		"leadIds":    leadIDs,
		"assignedTo": assignedTo,
	}
	var result BulkAssignResult
	if err := c.do(ctx, http.MethodPost, "/leads/bulk-assign", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NewLead is the individual lead form payload. Company name and sector are
// required; the rest is optional enrichment.
type NewLead struct {
	CompanyName         string   `json:"companyName"`
	Sector              string   `json:"sector"`
	AssignedTo          string   `json:"assignedTo,omitempty"`
	Location            string   `json:"location,omitempty"`
	BusinessDescription string   `json:"businessDescription,omitempty"`
	Website             string   `json:"website,omitempty"`
	RevenueInrCr        *float64 `json:"revenueInrCr,omitempty"`
	EbitdaInrCr         *float64 `json:"ebitdaInrCr,omitempty"`
	PatInrCr            *float64 `json:"patInrCr,omitempty"`
}

// CreateLead creates a company and its lead in the universe stage.
func (c *Client) CreateLead(ctx context.Context, req NewLead) (*models.Lead, error) {
	var lead models.Lead
	if err := c.do(ctx, http.MethodPost, "/leads/individual", req, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// GenerateChallengeToken requests the short-lived token that authorizes a
// reassignment of the given lead.
func (c *Client) GenerateChallengeToken(ctx context.Context, leadID int64, purpose string) (string, error) {
	body := map[string]interface{}{
		"leadId":  leadID,
		"purpose": purpose,
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/challenge-token/generate", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}
