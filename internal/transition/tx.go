package transition

import (
	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/models"
)

// Tx is one pending optimistic update: the pre-mutation snapshot of a cached
// lead list, the optimistic value written over it, and the rollback that
// restores the snapshot. Keeping this explicit keeps the rollback contract
// testable away from any UI plumbing.
type Tx struct {
	store    *cache.Store
	key      cache.Key
	snapshot []models.Lead
	had      bool
	gen      uint64
	owner    *Orchestrator
}

// Apply writes the optimistic view: the lead marked with its target stage, in
// place, in the current view's list.
func (tx *Tx) Apply(leadID int64, target models.Stage) {
	if !tx.had {
		return
	}
	next := make([]models.Lead, len(tx.snapshot))
	copy(next, tx.snapshot)
	for i := range next {
		if next[i].ID == leadID {
			next[i].Stage = target
		}
	}
	tx.store.Set(tx.key, next)
}

// Rollback restores the pre-mutation snapshot. A rollback racing a newer
// write to the same key is ignored, so a late failure response cannot clobber
// a list the user has since refreshed or re-mutated.
func (tx *Tx) Rollback() {
	if !tx.had {
		return
	}
	if !tx.owner.current(tx.key, tx.gen) {
		return
	}
	tx.store.Set(tx.key, tx.snapshot)
}
