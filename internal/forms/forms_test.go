package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContact() ContactForm {
	return ContactForm{
		CompanyID:       10,
		Name:            "Priya Nair",
		Designation:     "CFO",
		LinkedinProfile: "https://linkedin.com/in/priyanair",
	}
}

func TestContactForm(t *testing.T) {
	assert.NoError(t, Validate(validContact()))

	form := validContact()
	form.Name = ""
	err := Validate(form)
	require.Error(t, err)
	assert.Equal(t, "Name is required", err.Error())

	form = validContact()
	form.LinkedinProfile = "not a url"
	err = Validate(form)
	require.Error(t, err)
	assert.Equal(t, "Linkedin Profile must be a valid URL", err.Error())

	form = validContact()
	form.Email = "not-an-email"
	err = Validate(form)
	require.Error(t, err)
	assert.Equal(t, "Invalid email address", err.Error())

	// Optional fields stay optional when blank.
	form = validContact()
	form.Email = ""
	form.Phone = ""
	assert.NoError(t, Validate(form))

	form = validContact()
	form.Phone = "123"
	err = Validate(form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid length")
}

func TestLeadForm(t *testing.T) {
	form := LeadForm{CompanyName: "Acme Industrials", Sector: "Manufacturing"}
	assert.NoError(t, Validate(form))

	err := Validate(LeadForm{Sector: "Manufacturing"})
	require.Error(t, err)
	assert.Equal(t, "Company Name is required", err.Error())

	negative := -1.0
	form.RevenueInrCr = &negative
	err = Validate(form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")

	// EBITDA and PAT may legitimately be negative.
	form.RevenueInrCr = nil
	form.EbitdaInrCr = &negative
	form.PatInrCr = &negative
	assert.NoError(t, Validate(form))
}

func TestInvitationForm(t *testing.T) {
	assert.NoError(t, Validate(InvitationForm{Email: "new@firm.example.com", Role: "analyst"}))

	err := Validate(InvitationForm{Email: "bad", Role: "analyst"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email address", err.Error())

	err = Validate(InvitationForm{Email: "new@firm.example.com", Role: "ceo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")

	// Intern invitations must name the supervising analyst.
	err = Validate(InvitationForm{Email: "new@firm.example.com", Role: "intern"})
	require.Error(t, err)
	assert.Equal(t, "Analyst ID is required", err.Error())

	assert.NoError(t, Validate(InvitationForm{
		Email: "new@firm.example.com", Role: "intern", AnalystID: "a1",
	}))
}

func TestInterventionForm(t *testing.T) {
	form := InterventionForm{LeadID: 1, Type: "call", ScheduledAt: "2026-09-15 11:00"}
	assert.NoError(t, Validate(form))

	form.Type = "document"
	err := Validate(form)
	require.Error(t, err)
	assert.Equal(t, "Document Name is required", err.Error())

	form.DocumentName = "Contract"
	assert.NoError(t, Validate(form))

	err = Validate(InterventionForm{LeadID: 1, Type: "fax", ScheduledAt: "2026-09-15 11:00"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}

func TestEngagementForm(t *testing.T) {
	form := EngagementForm{MeetingAt: "2026-09-15 11:00", Notes: "intro call", DefaultPocID: 3}
	assert.NoError(t, Validate(form))

	err := Validate(EngagementForm{MeetingAt: "2026-09-15 11:00", Notes: "x"})
	require.Error(t, err)
	assert.Equal(t, "Default Poc ID is required", err.Error())

	form.BackupPocID = 3
	err = Validate(form)
	require.Error(t, err)
	assert.Equal(t, "Backup POC must differ from the default POC", err.Error())

	form.BackupPocID = 4
	assert.NoError(t, Validate(form))
}

func TestDocumentGateForm(t *testing.T) {
	assert.NoError(t, Validate(DocumentGateForm{
		UploadDate: "2026-10-01", Notes: "signed", DocumentName: "Contract",
	}))

	err := Validate(DocumentGateForm{UploadDate: "2026-10-01", DocumentName: "Contract"})
	require.Error(t, err)
	assert.Equal(t, "Notes is required", err.Error())
}
