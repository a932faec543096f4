package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dealdesk/dealdesk/internal/models"
)

// InvitationInput invites a user by email. AnalystID links an invited intern
// to the analyst they will report to.
type InvitationInput struct {
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	AnalystID string      `json:"analystId,omitempty"`
}

func (c *Client) CreateInvitation(ctx context.Context, input InvitationInput) (*models.Invitation, error) {
	var inv models.Invitation
	if err := c.do(ctx, http.MethodPost, "/api/invitations", input, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *Client) ListInvitations(ctx context.Context) ([]models.Invitation, error) {
	var invs []models.Invitation
	if err := c.do(ctx, http.MethodGet, "/api/invitations", nil, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// RetryInvitation asks the backend to resend a failed invitation email. The
// backend enforces the retry cap; the UI also disables the action past it.
func (c *Client) RetryInvitation(ctx context.Context, invitationID int64) error {
	path := fmt.Sprintf("/api/invitations/%d/retry", invitationID)
	return c.do(ctx, http.MethodPost, path, struct{}{}, nil)
}
