package assign

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/api"
	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/models"
)

// State is the lifecycle of one assignment widget instance. Direct
// assignment of an unassigned lead skips the token states entirely.
type State int

const (
	StateIdle State = iota
	StateTokenPending
	StateTokenReady
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTokenPending:
		return "token-pending"
	case StateTokenReady:
		return "token-ready"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ErrTokenRequired is returned when a reassignment is submitted before the
// challenge token arrived.
var ErrTokenRequired = errors.New("challenge token required: close and reopen the dialog")

// TokenPurposeReassignment is the purpose sent on token generation.
const TokenPurposeReassignment = "reassignment"

// Backend is the slice of the API client the assignment subsystem uses.
type Backend interface {
	GenerateChallengeToken(ctx context.Context, leadID int64, purpose string) (string, error)
	AssignLead(ctx context.Context, leadID int64, req api.AssignRequest) error
	AssignInterns(ctx context.Context, leadID int64, internIDs []string) error
	ReassignIntern(ctx context.Context, leadID int64, req api.ReassignInternRequest) error
	BulkAssign(ctx context.Context, leadIDs []int64, assignedTo string) (*api.BulkAssignResult, error)
}

// Widget drives one assignment dialog instance for one lead.
type Widget struct {
	backend Backend
	store   *cache.Store
	policy  Policy
	actor   models.User
	log     *zap.Logger

	state State
	token string
	err   error
}

func NewWidget(backend Backend, store *cache.Store, actor models.User, log *zap.Logger) (*Widget, error) {
	policy, err := PolicyFor(actor.Role)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Widget{
		backend: backend,
		store:   store,
		policy:  policy,
		actor:   actor,
		log:     log,
		state:   StateIdle,
	}, nil
}

func (w *Widget) State() State   { return w.state }
func (w *Widget) Policy() Policy { return w.policy }
func (w *Widget) Err() error     { return w.err }

// Begin prepares the widget for lead. A reassignment moves through
// TokenPending and fetches the challenge token; a first assignment stays
// Idle, ready to submit directly.
func (w *Widget) Begin(ctx context.Context, lead models.Lead) error {
	w.err = nil
	w.token = ""
	w.state = StateIdle

	if !w.policy.IsReassignment(lead) {
		return nil
	}

	w.state = StateTokenPending
	token, err := w.backend.GenerateChallengeToken(ctx, lead.ID, TokenPurposeReassignment)
	if err != nil {
		w.state = StateError
		w.err = err
		return err
	}
	w.token = token
	w.state = StateTokenReady
	w.log.Debug("challenge token ready", zap.Int64("lead_id", lead.ID))
	return nil
}

// Assign submits a single-assignee assignment (partner/admin policy). For a
// reassignment the challenge token obtained in Begin rides along; without it
// the submission is refused locally.
func (w *Widget) Assign(ctx context.Context, view models.Stage, lead models.Lead, assigneeID string) error {
	if w.policy.MultiSelect() {
		return errors.New("analyst role assigns interns, not analysts")
	}

	req := api.AssignRequest{AssignedTo: &assigneeID}
	if w.policy.IsReassignment(lead) {
		if w.state != StateTokenReady || w.token == "" {
			return ErrTokenRequired
		}
		req.ChallengeToken = w.token
	}

	return w.submit(ctx, view, lead, func(ctx context.Context) error {
		return w.backend.AssignLead(ctx, lead.ID, req)
	})
}

// AssignInterns submits the analyst policy's intern set. Replacing an
// existing non-empty set is a reassignment and carries the token.
func (w *Widget) AssignInterns(ctx context.Context, view models.Stage, lead models.Lead, internIDs []string) error {
	if !w.policy.MultiSelect() {
		return errors.New("only analysts assign interns")
	}
	if w.policy.IsReassignment(lead) && len(internIDs) > 0 {
		if w.state != StateTokenReady || w.token == "" {
			return ErrTokenRequired
		}
	}

	return w.submit(ctx, view, lead, func(ctx context.Context) error {
		return w.backend.AssignInterns(ctx, lead.ID, internIDs)
	})
}

// ReassignIntern swaps one intern for another on an assigned lead.
func (w *Widget) ReassignIntern(ctx context.Context, view models.Stage, lead models.Lead, fromID, toID string) error {
	if w.state != StateTokenReady || w.token == "" {
		return ErrTokenRequired
	}

	req := api.ReassignInternRequest{
		FromInternID:   fromID,
		ToInternID:     toID,
		Notes:          fmt.Sprintf("Reassigned by %s", w.actor.Email),
		ChallengeToken: w.token,
	}
	return w.submit(ctx, view, lead, func(ctx context.Context) error {
		return w.backend.ReassignIntern(ctx, lead.ID, req)
	})
}

// UnassignAll clears every assignee. Always permitted to an assigning role,
// never needs a token.
func (w *Widget) UnassignAll(ctx context.Context, view models.Stage, lead models.Lead) error {
	return w.submit(ctx, view, lead, func(ctx context.Context) error {
		if w.policy.MultiSelect() {
			return w.backend.AssignInterns(ctx, lead.ID, nil)
		}
		return w.backend.AssignLead(ctx, lead.ID, api.AssignRequest{AssignedTo: nil})
	})
}

func (w *Widget) submit(ctx context.Context, view models.Stage, lead models.Lead, call func(context.Context) error) error {
	w.state = StateSubmitting
	if err := call(ctx); err != nil {
		w.state = StateError
		w.err = err
		if api.IsChallengeTokenError(err) {
			w.err = ErrTokenRequired
		}
		return w.err
	}

	w.state = StateSuccess
	w.invalidate(view)
	return nil
}

func (w *Widget) invalidate(view models.Stage) {
	w.store.Invalidate(cache.LeadsKey(view))
	w.store.Invalidate(cache.LeadsKey(cache.StageAll))
	w.store.Invalidate(cache.MetricsKey())
}

// BulkResult is the outcome surfaced for a bulk assignment.
type BulkResult struct {
	Requested int
	Assigned  int
	// Failures holds per-lead messages when the backend itemizes a partial
	// failure; empty on the normal all-or-nothing path.
	Failures []string
}

// BulkAssign assigns every selected lead to one user in a single request.
// Partner/admin only.
func BulkAssign(ctx context.Context, backend Backend, store *cache.Store, actor models.User, view models.Stage, leadIDs []int64, assigneeID string) (*BulkResult, error) {
	policy, err := PolicyFor(actor.Role)
	if err != nil {
		return nil, err
	}
	if policy.MultiSelect() {
		return nil, errors.New("bulk assignment is a partner/admin action")
	}
	if len(leadIDs) == 0 {
		return nil, errors.New("no leads selected")
	}

	res, err := backend.BulkAssign(ctx, leadIDs, assigneeID)
	if err != nil {
		return nil, err
	}

	store.Invalidate(cache.LeadsKey(view))
	store.Invalidate(cache.LeadsKey(cache.StageAll))
	store.Invalidate(cache.MetricsKey())

	out := &BulkResult{Requested: len(leadIDs), Assigned: res.AssignedCount}
	for _, f := range res.Errors {
		out.Failures = append(out.Failures, fmt.Sprintf("lead %d: %s", f.LeadID, f.Message))
	}
	if out.Assigned == 0 && len(out.Failures) == 0 {
		// Backends that return no count are treated as all-or-nothing.
		out.Assigned = len(leadIDs)
	}
	return out, nil
}

// Summary renders the success toast text, including the affected count.
func (r *BulkResult) Summary() string {
	if len(r.Failures) > 0 {
		return fmt.Sprintf("%d of %d leads assigned; failures: %s",
			r.Assigned, r.Requested, strings.Join(r.Failures, "; "))
	}
	return fmt.Sprintf("%d leads assigned", r.Assigned)
}
