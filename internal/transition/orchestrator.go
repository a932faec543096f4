// Package transition sequences stage moves: gate check, artifact collection,
// mutation, optimistic cache update, reconcile or rollback. Mutations are
// at-most-once per user action; nothing here retries.
package transition

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/api"
	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/gates"
	"github.com/dealdesk/dealdesk/internal/models"
)

// ErrInFlight is returned when a second mutation is attempted on a lead whose
// first mutation has not settled. The UI disables the button, this is the
// backstop.
var ErrInFlight = errors.New("a mutation for this lead is already in flight")

// Backend is the slice of the API client the orchestrator drives.
type Backend interface {
	ListContacts(ctx context.Context, companyID int64) ([]models.Contact, error)
	ListInterventions(ctx context.Context, leadID int64) ([]models.Intervention, error)
	CreateIntervention(ctx context.Context, input api.InterventionInput) (*models.Intervention, error)
	UpdateStage(ctx context.Context, leadID int64, change api.StageChange) (*models.Lead, error)
	ProgressStage(ctx context.Context, leadID int64, target models.Stage) (*models.Lead, error)
	RejectLead(ctx context.Context, leadID int64, reason string) error
}

// EngagementArtifact is what the engagement gate dialog collects before the
// outreach -> pitching move.
type EngagementArtifact struct {
	MeetingAt    time.Time
	Notes        string
	DefaultPocID int64
	BackupPocID  *int64
}

// DocumentArtifact is what a document gate dialog collects.
type DocumentArtifact struct {
	DocumentName string
	UploadDate   time.Time
	Notes        string
}

type Orchestrator struct {
	backend Backend
	store   *cache.Store
	log     *zap.Logger

	mu       sync.Mutex
	inflight map[int64]bool
	keyGen   map[cache.Key]uint64
}

func New(backend Backend, store *cache.Store, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		backend:  backend,
		store:    store,
		log:      log,
		inflight: make(map[int64]bool),
		keyGen:   make(map[cache.Key]uint64),
	}
}

// Resolve fetches the lead's gate-relevant collaborator data through the
// cache, hitting the network only for stale or missing keys.
func (o *Orchestrator) Resolve(ctx context.Context, lead models.Lead) (gates.Inputs, error) {
	contacts, err := cache.Fetch(ctx, o.store, cache.ContactsKey(lead.CompanyID), func(ctx context.Context) ([]models.Contact, error) {
		return o.backend.ListContacts(ctx, lead.CompanyID)
	})
	if err != nil {
		return gates.Inputs{}, err
	}

	interventions, err := cache.Fetch(ctx, o.store, cache.InterventionsKey(lead.ID), func(ctx context.Context) ([]models.Intervention, error) {
		return o.backend.ListInterventions(ctx, lead.ID)
	})
	if err != nil {
		return gates.Inputs{}, err
	}

	return gates.Inputs{Lead: lead, Contacts: contacts, Interventions: interventions}, nil
}

// Check evaluates the gate for lead -> target against current data. A nil
// error means the mutation may be sent; a gates error means the UI must open
// the matching artifact dialog first.
func (o *Orchestrator) Check(ctx context.Context, lead models.Lead, target models.Stage) error {
	gate, ok := gates.ForTransition(lead.Stage, target)
	if !ok {
		return errors.New("no transition from " + lead.Stage.Label() + " to " + target.Label())
	}

	in, err := o.Resolve(ctx, lead)
	if err != nil {
		return err
	}
	return gate.Evaluate(in)
}

// Qualify moves universe -> qualified once the company's POC completeness
// reaches green. The gate failure message is surfaced as-is; no dialog can
// fix it except the POC screen.
func (o *Orchestrator) Qualify(ctx context.Context, view models.Stage, lead models.Lead) error {
	if err := o.Check(ctx, lead, models.StageQualified); err != nil {
		return err
	}
	return o.mutate(ctx, view, lead, models.StageQualified, func(ctx context.Context) error {
		_, err := o.backend.UpdateStage(ctx, lead.ID, api.StageChange{Stage: models.StageQualified})
		return err
	})
}

// MoveToOutreach is the ungated qualified -> outreach move.
func (o *Orchestrator) MoveToOutreach(ctx context.Context, view models.Stage, lead models.Lead) error {
	return o.mutate(ctx, view, lead, models.StageOutreach, func(ctx context.Context) error {
		_, err := o.backend.UpdateStage(ctx, lead.ID, api.StageChange{Stage: models.StageOutreach})
		return err
	})
}

// CompleteEngagement records the collected meeting and moves the lead to
// pitching with its POC selections. Exactly one intervention POST precedes
// exactly one stage PATCH.
func (o *Orchestrator) CompleteEngagement(ctx context.Context, view models.Stage, lead models.Lead, artifact EngagementArtifact) error {
	if artifact.DefaultPocID == 0 {
		return gates.ErrNoDefaultPoc
	}

	_, err := o.backend.CreateIntervention(ctx, api.InterventionInput{
		LeadID:      lead.ID,
		Type:        models.InterventionMeeting,
		ScheduledAt: artifact.MeetingAt,
		Notes:       artifact.Notes,
	})
	if err != nil {
		return err
	}
	o.store.Invalidate(cache.InterventionsKey(lead.ID))

	defaultPoc := artifact.DefaultPocID
	return o.mutate(ctx, view, lead, models.StagePitching, func(ctx context.Context) error {
		_, err := o.backend.UpdateStage(ctx, lead.ID, api.StageChange{
			Stage:        models.StagePitching,
			DefaultPocID: &defaultPoc,
			BackupPocID:  artifact.BackupPocID,
		})
		return err
	})
}

// ConfirmMandate moves pitching -> mandates after the user's explicit
// confirmation. There is no data gate; the confirmation dialog is the gate.
func (o *Orchestrator) ConfirmMandate(ctx context.Context, view models.Stage, lead models.Lead) error {
	return o.mutate(ctx, view, lead, models.StageMandates, func(ctx context.Context) error {
		_, err := o.backend.UpdateStage(ctx, lead.ID, api.StageChange{Stage: models.StageMandates})
		return err
	})
}

// ProgressWithDocument records the document artifact (if not already on file)
// and advances through the dedicated progress-stage endpoint.
func (o *Orchestrator) ProgressWithDocument(ctx context.Context, view models.Stage, lead models.Lead, target models.Stage, artifact DocumentArtifact) error {
	in, err := o.Resolve(ctx, lead)
	if err != nil {
		return err
	}

	gate := gates.DocumentGate{DocumentName: artifact.DocumentName}
	if gate.Evaluate(in) != nil {
		_, err := o.backend.CreateIntervention(ctx, api.InterventionInput{
			LeadID:       lead.ID,
			Type:         models.InterventionDocument,
			ScheduledAt:  artifact.UploadDate,
			Notes:        artifact.Notes,
			DocumentName: artifact.DocumentName,
		})
		if err != nil {
			return err
		}
		o.store.Invalidate(cache.InterventionsKey(lead.ID))
	}

	return o.mutate(ctx, view, lead, target, func(ctx context.Context) error {
		_, err := o.backend.ProgressStage(ctx, lead.ID, target)
		return err
	})
}

// Reject moves any active-stage lead to rejected with the mandatory reason.
func (o *Orchestrator) Reject(ctx context.Context, view models.Stage, lead models.Lead, reason string) error {
	gate := gates.RejectGate{Reason: reason}
	if err := gate.Evaluate(gates.Inputs{Lead: lead}); err != nil {
		return err
	}

	err := o.mutate(ctx, view, lead, models.StageRejected, func(ctx context.Context) error {
		return o.backend.RejectLead(ctx, lead.ID, reason)
	})
	if err != nil {
		return err
	}
	o.store.InvalidateMatching(func(k cache.Key) bool {
		return strings.HasPrefix(string(k), "activity-log")
	})
	return nil
}

// mutate runs one stage mutation with optimistic update, targeted
// invalidation on success and rollback on failure.
func (o *Orchestrator) mutate(ctx context.Context, view models.Stage, lead models.Lead, target models.Stage, call func(context.Context) error) error {
	if !o.acquire(lead.ID) {
		return ErrInFlight
	}
	defer o.releaseLead(lead.ID)

	tx := o.begin(cache.LeadsKey(view))
	tx.Apply(lead.ID, target)

	if err := call(ctx); err != nil {
		tx.Rollback()
		o.log.Warn("stage mutation failed, rolled back",
			zap.Int64("lead_id", lead.ID),
			zap.String("from", string(lead.Stage)),
			zap.String("to", string(target)),
			zap.Error(err))
		return err
	}

	// Source list, destination list, and the dashboard aggregate are now
	// stale; the next read of each refetches.
	o.store.Invalidate(cache.LeadsKey(view))
	o.store.Invalidate(cache.LeadsKey(lead.Stage))
	o.store.Invalidate(cache.LeadsKey(target))
	o.store.Invalidate(cache.LeadsKey(cache.StageAll))
	o.store.Invalidate(cache.MetricsKey())

	o.log.Info("stage mutation applied",
		zap.Int64("lead_id", lead.ID),
		zap.String("from", string(lead.Stage)),
		zap.String("to", string(target)))
	return nil
}

func (o *Orchestrator) begin(key cache.Key) *Tx {
	o.mu.Lock()
	o.keyGen[key]++
	gen := o.keyGen[key]
	o.mu.Unlock()

	tx := &Tx{store: o.store, key: key, gen: gen, owner: o}
	if v, ok := o.store.Peek(key); ok {
		if leads, ok := v.([]models.Lead); ok {
			tx.snapshot = leads
			tx.had = true
		}
	}
	return tx
}

// current reports whether gen is still the latest transaction on key.
func (o *Orchestrator) current(key cache.Key, gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.keyGen[key] == gen
}

func (o *Orchestrator) acquire(leadID int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight[leadID] {
		return false
	}
	o.inflight[leadID] = true
	return true
}

func (o *Orchestrator) releaseLead(leadID int64) {
	o.mu.Lock()
	delete(o.inflight, leadID)
	o.mu.Unlock()
}
