package gates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/models"
)

func greenContact() models.Contact {
	return models.Contact{
		ID: 1, Name: "Priya Nair", Designation: "CFO",
		LinkedinProfile: "https://linkedin.com/in/priyanair",
		Email:           "priya@acme.example.com",
	}
}

func TestQualificationGate(t *testing.T) {
	g := QualificationGate{}

	assert.ErrorIs(t, g.Evaluate(Inputs{}), ErrNoContacts)

	in := Inputs{Contacts: []models.Contact{{Name: "only name"}}}
	assert.ErrorIs(t, g.Evaluate(in), ErrPocIncomplete)

	in = Inputs{Contacts: []models.Contact{greenContact()}}
	assert.NoError(t, g.Evaluate(in))
}

func TestOutreachGateIsAlwaysOpen(t *testing.T) {
	assert.NoError(t, OutreachGate{}.Evaluate(Inputs{}))
}

func TestEngagementGate(t *testing.T) {
	g := EngagementGate{}
	pocID := int64(1)
	meeting := models.Intervention{Type: models.InterventionMeeting, ScheduledAt: time.Now()}

	assert.ErrorIs(t, g.Evaluate(Inputs{}), ErrNoContacts)

	in := Inputs{Contacts: []models.Contact{greenContact()}}
	assert.ErrorIs(t, g.Evaluate(in), ErrNoMeeting)

	in.Interventions = []models.Intervention{{Type: models.InterventionCall}}
	assert.ErrorIs(t, g.Evaluate(in), ErrNoMeeting)

	in.Interventions = []models.Intervention{meeting}
	assert.ErrorIs(t, g.Evaluate(in), ErrNoDefaultPoc)

	in.Lead.DefaultPocID = &pocID
	assert.NoError(t, g.Evaluate(in))
}

func TestMandateGateAlwaysAsksForConfirmation(t *testing.T) {
	assert.ErrorIs(t, MandateGate{}.Evaluate(Inputs{}), ErrNotConfirmed)
}

func TestDocumentGate(t *testing.T) {
	g := DocumentGate{DocumentName: models.DocumentLoE}

	assert.Error(t, g.Evaluate(Inputs{}))

	in := Inputs{Interventions: []models.Intervention{
		{Type: models.InterventionDocument, DocumentName: models.DocumentPDM},
	}}
	assert.Error(t, g.Evaluate(in))

	in.Interventions = append(in.Interventions, models.Intervention{
		Type: models.InterventionDocument, DocumentName: models.DocumentLoE,
	})
	assert.NoError(t, g.Evaluate(in))
}

func TestRejectGate(t *testing.T) {
	active := Inputs{Lead: models.Lead{Stage: models.StagePitching}}

	assert.ErrorIs(t, RejectGate{Reason: ""}.Evaluate(active), ErrNoReason)
	assert.ErrorIs(t, RejectGate{Reason: "   "}.Evaluate(active), ErrNoReason)
	assert.NoError(t, RejectGate{Reason: "no mandate potential"}.Evaluate(active))

	terminal := Inputs{Lead: models.Lead{Stage: models.StageWon}}
	assert.Error(t, RejectGate{Reason: "too late"}.Evaluate(terminal))
}

func TestForTransition(t *testing.T) {
	gate, ok := ForTransition(models.StageUniverse, models.StageQualified)
	require.True(t, ok)
	assert.Equal(t, "qualification", gate.Name())

	gate, ok = ForTransition(models.StageOutreach, models.StagePitching)
	require.True(t, ok)
	assert.Equal(t, "engagement", gate.Name())

	_, ok = ForTransition(models.StageUniverse, models.StageOutreach)
	assert.False(t, ok)

	_, ok = ForTransition(models.StageWon, models.StageLost)
	assert.False(t, ok)
}
