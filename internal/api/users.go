package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dealdesk/dealdesk/internal/models"
)

// ListUsers fetches the organization's users. Role filtering (analysts for
// partner assignment, an analyst's own interns) happens client-side.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CurrentUser fetches the signed-in user attached to the session.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, userID string, role models.Role) error {
	path := fmt.Sprintf("/users/%s/role", userID)
	body := map[string]models.Role{"role": role}
	return c.do(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) SuspendUser(ctx context.Context, userID string, suspend bool) error {
	path := fmt.Sprintf("/users/%s/suspend", userID)
	body := map[string]bool{"suspend": suspend}
	return c.do(ctx, http.MethodPatch, path, body, nil)
}
