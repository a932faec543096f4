package screens

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/gates"
	"github.com/dealdesk/dealdesk/internal/models"
)

func newLeadsForTest(stage models.Stage) *Leads {
	l := NewLeads(Deps{PageSize: 20})
	l.stage = stage
	l.raw = []models.Lead{{
		ID:        1,
		CompanyID: 10,
		Stage:     stage,
		Company:   &models.Company{ID: 10, Name: "Acme Industrials"},
	}}
	l.loading = false
	l.refreshView()
	return l
}

func TestEngagementWizardBlocksWithoutContacts(t *testing.T) {
	l := newLeadsForTest(models.StageOutreach)
	l.mode = leadsModeEngagement
	l.busy = true

	cmd := l.Update(contactsLoadedMsg{})
	assert.Nil(t, cmd)

	// The wizard closes with the blocking message instead of presenting an
	// empty POC picker.
	assert.Equal(t, leadsModeList, l.mode)
	assert.ErrorIs(t, l.err, gates.ErrNoContacts)
	assert.False(t, l.busy)
	assert.Contains(t, l.View(), "No contacts found")
}

func TestEngagementWizardKeepsLoadedContacts(t *testing.T) {
	l := newLeadsForTest(models.StageOutreach)
	l.mode = leadsModeEngagement
	l.busy = true

	contacts := []models.Contact{{ID: 3, Name: "Priya Nair", Designation: "CFO"}}
	l.Update(contactsLoadedMsg{contacts: contacts})

	assert.Equal(t, leadsModeEngagement, l.mode)
	assert.NoError(t, l.err)
	assert.Equal(t, contacts, l.engContacts)
}

func TestEngagementSubmitNeedsDefaultPoc(t *testing.T) {
	l := newLeadsForTest(models.StageOutreach)
	l.mode = leadsModeEngagement
	l.engDate.SetValue("2026-09-15 11:00")
	l.engNotes.SetValue("intro call")

	cmd := l.submitEngagement()
	assert.Nil(t, cmd)
	require.Error(t, l.err)
	assert.Contains(t, l.err.Error(), "Default Poc ID is required")
}

func TestDocumentDialogNeedsNotes(t *testing.T) {
	l := newLeadsForTest(models.StageMandates)
	l.mode = leadsModeDocument
	l.docStep = 2
	l.docCursor = len(docChoices) - 1
	l.docDate.SetValue("2026-10-01")
	l.docNotes.SetValue("")

	cmd := l.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	require.Error(t, l.err)
	assert.Equal(t, "Notes is required", l.err.Error())
	assert.Equal(t, leadsModeDocument, l.mode)
}
