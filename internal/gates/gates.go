// Package gates holds the per-transition preconditions of the lead pipeline.
// Each gate is a pure predicate over the lead and its related data; gates
// never mutate anything, they only decide whether the subsequent stage
// mutation may be sent and what artifact a dialog must collect first.
package gates

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dealdesk/dealdesk/internal/models"
)

// Precondition failures surfaced as blocking messages. These never reach the
// network layer.
var (
	ErrPocIncomplete = errors.New("point of contact details are incomplete: fill name, designation, LinkedIn and at least one of email or phone")
	ErrNoContacts    = errors.New("No contacts found for this company. Please add POCs before moving to Pitching stage")
	ErrNoMeeting     = errors.New("a meeting must be recorded before moving to Pitching")
	ErrNoDefaultPoc  = errors.New("a default POC must be selected before moving to Pitching")
	ErrNoReason      = errors.New("a rejection reason is required")
	ErrNotConfirmed  = errors.New("mandate receipt must be confirmed before moving to Mandates")
)

// Inputs is everything a gate may inspect.
type Inputs struct {
	Lead          models.Lead
	Contacts      []models.Contact
	Interventions []models.Intervention
}

// Gate decides whether a stage transition's precondition holds. Evaluate
// returns nil when satisfied; otherwise the error names the missing artifact
// the UI must collect.
type Gate interface {
	// Name identifies the gate in logs and dialog titles.
	Name() string
	Evaluate(in Inputs) error
}

// Satisfied is the predicate view of a gate.
func Satisfied(g Gate, in Inputs) bool {
	return g.Evaluate(in) == nil
}

// QualificationGate guards universe -> qualified: the company's POC
// completeness must reach green.
type QualificationGate struct{}

func (QualificationGate) Name() string { return "qualification" }

func (QualificationGate) Evaluate(in Inputs) error {
	if len(in.Contacts) == 0 {
		return ErrNoContacts
	}
	if CompletionStatus(in.Contacts) != models.PocGreen {
		return ErrPocIncomplete
	}
	return nil
}

// OutreachGate guards qualified -> outreach. There is no precondition beyond
// existing state; the mutation goes straight through.
type OutreachGate struct{}

func (OutreachGate) Name() string { return "outreach" }

func (OutreachGate) Evaluate(Inputs) error { return nil }

// EngagementGate guards outreach -> pitching: a meeting-type intervention
// must exist and a default POC must have been selected. With an empty contact
// list the gate blocks outright, since there is nothing to select.
type EngagementGate struct{}

func (EngagementGate) Name() string { return "engagement" }

func (EngagementGate) Evaluate(in Inputs) error {
	if len(in.Contacts) == 0 {
		return ErrNoContacts
	}

	hasMeeting := false
	for _, iv := range in.Interventions {
		if iv.Type == models.InterventionMeeting {
			hasMeeting = true
			break
		}
	}
	if !hasMeeting {
		return ErrNoMeeting
	}

	if in.Lead.DefaultPocID == nil {
		return ErrNoDefaultPoc
	}
	return nil
}

// MandateGate guards pitching -> mandates. It is a human attestation, not a
// data check: the dialog's checklist (signed Letter of Engagement, formal
// commitment, agreed terms) is advisory text only, so the gate is never
// satisfied by data alone and always asks for confirmation.
type MandateGate struct{}

func (MandateGate) Name() string { return "mandate" }

func (MandateGate) Evaluate(Inputs) error { return ErrNotConfirmed }

// DocumentGate guards document-gated progressions in pitching/mandates: a
// document-type intervention tagged with the required document name must
// exist.
type DocumentGate struct {
	DocumentName string
}

func (g DocumentGate) Name() string { return "document:" + g.DocumentName }

func (g DocumentGate) Evaluate(in Inputs) error {
	for _, iv := range in.Interventions {
		if iv.Type == models.InterventionDocument && iv.DocumentName == g.DocumentName {
			return nil
		}
	}
	return fmt.Errorf("%s is required to proceed", g.DocumentName)
}

// RejectGate guards any active stage -> rejected: only a non-empty reason is
// required, and the lead must still be in a non-terminal stage.
type RejectGate struct {
	Reason string
}

func (RejectGate) Name() string { return "reject" }

func (g RejectGate) Evaluate(in Inputs) error {
	if !in.Lead.Stage.CanReject() {
		return fmt.Errorf("cannot reject a lead in %s stage", in.Lead.Stage.Label())
	}
	if strings.TrimSpace(g.Reason) == "" {
		return ErrNoReason
	}
	return nil
}

// ForTransition returns the gate guarding from -> to on the forward path.
func ForTransition(from, to models.Stage) (Gate, bool) {
	switch {
	case from == models.StageUniverse && to == models.StageQualified:
		return QualificationGate{}, true
	case from == models.StageQualified && to == models.StageOutreach:
		return OutreachGate{}, true
	case from == models.StageOutreach && to == models.StagePitching:
		return EngagementGate{}, true
	case from == models.StagePitching && to == models.StageMandates:
		return MandateGate{}, true
	}
	return nil, false
}
