// Package forms validates dialog submissions before anything touches the
// network. A validation failure is a client-side error surfaced next to the
// field; it never becomes an HTTP request.
package forms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ContactForm is the POC form. Name, designation and LinkedIn are required;
// email and phone are optional but validated when present.
type ContactForm struct {
	CompanyID       int64  `validate:"required,gt=0"`
	Name            string `validate:"required"`
	Designation     string `validate:"required"`
	LinkedinProfile string `validate:"required,url"`
	Email           string `validate:"omitempty,email"`
	Phone           string `validate:"omitempty,min=7,max=20"`
	IsPrimary       bool
}

// LeadForm is the individual lead form: company name and sector required,
// financials non-negative when given.
type LeadForm struct {
	CompanyName         string   `validate:"required"`
	Sector              string   `validate:"required"`
	AssignedTo          string   `validate:"omitempty"`
	Location            string   `validate:"omitempty"`
	Website             string   `validate:"omitempty,url"`
	BusinessDescription string   `validate:"omitempty,max=2000"`
	RevenueInrCr        *float64 `validate:"omitempty,gte=0"`
	EbitdaInrCr         *float64 `validate:"omitempty"`
	PatInrCr            *float64 `validate:"omitempty"`
}

// InvitationForm invites a user. Intern invitations must name the analyst
// they report to.
type InvitationForm struct {
	Email     string `validate:"required,email"`
	Role      string `validate:"required,oneof=admin partner analyst intern"`
	AnalystID string `validate:"required_if=Role intern"`
}

// InterventionForm logs a touch-point. Document entries must be named.
type InterventionForm struct {
	LeadID       int64  `validate:"required,gt=0"`
	Type         string `validate:"required,oneof=linkedin_message call whatsapp email meeting document"`
	ScheduledAt  string `validate:"required"`
	Notes        string `validate:"omitempty,max=2000"`
	DocumentName string `validate:"required_if=Type document"`
}

// EngagementForm is the engagement gate dialog: meeting datetime and notes
// are both required, as is the default POC.
type EngagementForm struct {
	MeetingAt    string `validate:"required"`
	Notes        string `validate:"required"`
	DefaultPocID int64  `validate:"required,gt=0"`
	BackupPocID  int64  `validate:"omitempty,nefield=DefaultPocID"`
}

// DocumentGateForm is the document gate dialog: upload date and notes both
// required.
type DocumentGateForm struct {
	UploadDate   string `validate:"required"`
	Notes        string `validate:"required"`
	DocumentName string `validate:"required"`
}

// Validate checks a form and returns a user-facing message for the first
// failing field.
func Validate(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(message(verrs[0]))
}

func message(fe validator.FieldError) string {
	field := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Invalid email address"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte", "gt":
		return fmt.Sprintf("%s must not be negative", field)
	case "nefield":
		return "Backup POC must differ from the default POC"
	case "min", "max":
		return fmt.Sprintf("%s has an invalid length", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

// humanize splits CamelCase field names into words: "LinkedinProfile" ->
// "Linkedin Profile".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := rune(field[i-1])
			if prev < 'A' || prev > 'Z' {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	out := b.String()
	out = strings.ReplaceAll(out, "I D", "ID")
	return out
}
