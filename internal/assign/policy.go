// Package assign implements role-dependent lead assignment: partners and
// admins place a single analyst on a lead, analysts place one or more of
// their own interns. Reassignment of an already-assigned lead additionally
// requires a short-lived challenge token from the server.
package assign

import (
	"fmt"

	"github.com/dealdesk/dealdesk/internal/models"
)

// Policy is the single place the analyst-vs-partner/admin branching lives.
// It is selected once per session from the acting role and consumed uniformly
// by every assignment surface.
type Policy interface {
	// Candidates filters the organization's users down to legal assignees
	// for the acting user.
	Candidates(actor models.User, users []models.User) []models.User
	// MultiSelect reports whether the widget selects several assignees
	// (interns) or exactly one (analyst-level).
	MultiSelect() bool
	// IsReassignment reports whether an assignment of lead would replace an
	// existing assignee under this policy.
	IsReassignment(lead models.Lead) bool
}

// SingleAssigneePolicy is the partner/admin variant: one assignee, chosen
// from the organization's analysts.
type SingleAssigneePolicy struct{}

func (SingleAssigneePolicy) Candidates(_ models.User, users []models.User) []models.User {
	var out []models.User
	for _, u := range users {
		if u.Role == models.RoleAnalyst && !u.IsSuspended {
			out = append(out, u)
		}
	}
	return out
}

func (SingleAssigneePolicy) MultiSelect() bool { return false }

func (SingleAssigneePolicy) IsReassignment(lead models.Lead) bool {
	return lead.AssignedTo != ""
}

// MultiInternPolicy is the analyst variant: multi-select over the interns
// reporting to the acting analyst.
type MultiInternPolicy struct{}

func (MultiInternPolicy) Candidates(actor models.User, users []models.User) []models.User {
	var out []models.User
	for _, u := range users {
		if u.Role == models.RoleIntern && u.AnalystID == actor.ID && !u.IsSuspended {
			out = append(out, u)
		}
	}
	return out
}

func (MultiInternPolicy) MultiSelect() bool { return true }

func (MultiInternPolicy) IsReassignment(lead models.Lead) bool {
	return len(lead.AssignedInterns) > 0
}

// PolicyFor selects the assignment policy for a role. Interns cannot assign.
func PolicyFor(role models.Role) (Policy, error) {
	switch role {
	case models.RolePartner, models.RoleAdmin:
		return SingleAssigneePolicy{}, nil
	case models.RoleAnalyst:
		return MultiInternPolicy{}, nil
	}
	return nil, fmt.Errorf("role %q cannot assign leads", role)
}
