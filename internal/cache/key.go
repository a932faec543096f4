package cache

import (
	"fmt"
	"strings"

	"github.com/dealdesk/dealdesk/internal/models"
)

// Key addresses one remote resource in the cache. Keys are only built through
// the constructors below so every component spells a given resource the same
// way; ad hoc string paths are not accepted anywhere.
type Key string

// StageAll addresses the cross-stage lead list that backs the universe view.
const StageAll = models.Stage("all")

func LeadsKey(stage models.Stage) Key {
	if stage == "" {
		stage = StageAll
	}
	return Key(fmt.Sprintf("leads/stage/%s", stage))
}

func ContactsKey(companyID int64) Key {
	return Key(fmt.Sprintf("contacts/company/%d", companyID))
}

func InterventionsKey(leadID int64) Key {
	return Key(fmt.Sprintf("interventions/lead/%d", leadID))
}

func ScheduledInterventionsKey() Key {
	return Key("interventions/scheduled")
}

func OutreachKey(leadID int64) Key {
	return Key(fmt.Sprintf("outreach/lead/%d", leadID))
}

func UsersKey() Key {
	return Key("users")
}

func InvitationsKey() Key {
	return Key("invitations")
}

func MetricsKey() Key {
	return Key("dashboard/metrics")
}

func ActivityLogKey(page int) Key {
	return Key(fmt.Sprintf("activity-log/page/%d", page))
}

// IsLeadList reports whether the key addresses any lead list. Used by
// predicate invalidation after mutations that can move leads between lists.
func (k Key) IsLeadList() bool {
	return strings.HasPrefix(string(k), "leads/stage/")
}
