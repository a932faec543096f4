package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageNext(t *testing.T) {
	next, ok := StageUniverse.Next()
	assert.True(t, ok)
	assert.Equal(t, StageQualified, next)

	next, ok = StageMandates.Next()
	assert.True(t, ok)
	assert.Equal(t, StageWon, next)

	_, ok = StageWon.Next()
	assert.False(t, ok)

	_, ok = StageRejected.Next()
	assert.False(t, ok)
}

func TestCanAdvanceToIsSingleStep(t *testing.T) {
	assert.True(t, StageUniverse.CanAdvanceTo(StageQualified))
	assert.True(t, StageOutreach.CanAdvanceTo(StagePitching))

	// No skipping, no backward moves.
	assert.False(t, StageUniverse.CanAdvanceTo(StageOutreach))
	assert.False(t, StageQualified.CanAdvanceTo(StageUniverse))
	assert.False(t, StagePitching.CanAdvanceTo(StagePitching))
	assert.False(t, StageWon.CanAdvanceTo(StageLost))
}

func TestCanReject(t *testing.T) {
	assert.True(t, StageUniverse.CanReject())
	assert.True(t, StageMandates.CanReject())

	assert.False(t, StageWon.CanReject())
	assert.False(t, StageLost.CanReject())
	assert.False(t, StageRejected.CanReject())
	assert.False(t, Stage("bogus").CanReject())
}

func TestTerminal(t *testing.T) {
	for _, s := range []Stage{StageWon, StageLost, StageRejected} {
		assert.True(t, s.Terminal(), s)
	}
	for _, s := range []Stage{StageUniverse, StageQualified, StageOutreach, StagePitching, StageMandates} {
		assert.False(t, s.Terminal(), s)
	}
}

func TestInvitationRetryCap(t *testing.T) {
	inv := Invitation{RetryCount: MaxInvitationRetries - 1}
	assert.True(t, inv.CanRetry())

	inv.RetryCount = MaxInvitationRetries
	assert.False(t, inv.CanRetry())
}
