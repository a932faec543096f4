package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dealdesk/dealdesk/internal/models"
)

// ContactInput is the POC form payload. Name, designation and LinkedIn are
// the required fields; email and phone are optional.
type ContactInput struct {
	CompanyID       int64  `json:"companyId"`
	Name            string `json:"name"`
	Designation     string `json:"designation"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	LinkedinProfile string `json:"linkedinProfile"`
	IsPrimary       bool   `json:"isPrimary"`
}

// ListContacts fetches the POCs of one company.
func (c *Client) ListContacts(ctx context.Context, companyID int64) ([]models.Contact, error) {
	var contacts []models.Contact
	path := fmt.Sprintf("/contacts/company/%d", companyID)
	if err := c.do(ctx, http.MethodGet, path, nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (c *Client) CreateContact(ctx context.Context, input ContactInput) (*models.Contact, error) {
	var contact models.Contact
	if err := c.do(ctx, http.MethodPost, "/contacts", input, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *Client) UpdateContact(ctx context.Context, contactID int64, input ContactInput) (*models.Contact, error) {
	var contact models.Contact
	path := fmt.Sprintf("/contacts/%d", contactID)
	if err := c.do(ctx, http.MethodPut, path, input, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *Client) DeleteContact(ctx context.Context, contactID int64) error {
	path := fmt.Sprintf("/contacts/%d", contactID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// UpdateCompanyDriveLink sets the pitching-document repository URL on a
// company.
func (c *Client) UpdateCompanyDriveLink(ctx context.Context, companyID int64, link string) error {
	path := fmt.Sprintf("/companies/%d", companyID)
	body := map[string]string{"driveLink": link}
	return c.do(ctx, http.MethodPatch, path, body, nil)
}
