package assign

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/api"
	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/models"
)

type fakeBackend struct {
	token    string
	tokenErr error

	assignErr error
	bulkRes   *api.BulkAssignResult
	bulkErr   error

	tokenRequests []string
	assigns       []api.AssignRequest
	internSets    [][]string
	reassigns     []api.ReassignInternRequest
	bulkLeadIDs   []int64
	bulkAssignee  string
}

func (f *fakeBackend) GenerateChallengeToken(ctx context.Context, leadID int64, purpose string) (string, error) {
	f.tokenRequests = append(f.tokenRequests, purpose)
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.token, nil
}

func (f *fakeBackend) AssignLead(ctx context.Context, leadID int64, req api.AssignRequest) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.assigns = append(f.assigns, req)
	return nil
}

func (f *fakeBackend) AssignInterns(ctx context.Context, leadID int64, internIDs []string) error {
	f.internSets = append(f.internSets, internIDs)
	return nil
}

func (f *fakeBackend) ReassignIntern(ctx context.Context, leadID int64, req api.ReassignInternRequest) error {
	f.reassigns = append(f.reassigns, req)
	return nil
}

func (f *fakeBackend) BulkAssign(ctx context.Context, leadIDs []int64, assignedTo string) (*api.BulkAssignResult, error) {
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	f.bulkLeadIDs = leadIDs
	f.bulkAssignee = assignedTo
	if f.bulkRes != nil {
		return f.bulkRes, nil
	}
	return &api.BulkAssignResult{}, nil
}

var orgUsers = []models.User{
	{ID: "a1", Role: models.RoleAnalyst},
	{ID: "a2", Role: models.RoleAnalyst, IsSuspended: true},
	{ID: "p1", Role: models.RolePartner},
	{ID: "i1", Role: models.RoleIntern, AnalystID: "a1"},
	{ID: "i2", Role: models.RoleIntern, AnalystID: "a1", IsSuspended: true},
	{ID: "i3", Role: models.RoleIntern, AnalystID: "a9"},
}

func TestPolicyFor(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RolePartner} {
		p, err := PolicyFor(role)
		require.NoError(t, err)
		assert.IsType(t, SingleAssigneePolicy{}, p)
	}

	p, err := PolicyFor(models.RoleAnalyst)
	require.NoError(t, err)
	assert.IsType(t, MultiInternPolicy{}, p)

	_, err = PolicyFor(models.RoleIntern)
	assert.Error(t, err)
}

func TestSingleAssigneeCandidates(t *testing.T) {
	got := SingleAssigneePolicy{}.Candidates(models.User{ID: "p1"}, orgUsers)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
}

func TestMultiInternCandidates(t *testing.T) {
	// Only the acting analyst's own active interns qualify.
	got := MultiInternPolicy{}.Candidates(models.User{ID: "a1"}, orgUsers)
	require.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].ID)
}

func TestIsReassignment(t *testing.T) {
	assert.False(t, SingleAssigneePolicy{}.IsReassignment(models.Lead{}))
	assert.True(t, SingleAssigneePolicy{}.IsReassignment(models.Lead{AssignedTo: "a1"}))

	assert.False(t, MultiInternPolicy{}.IsReassignment(models.Lead{AssignedTo: "a1"}))
	assert.True(t, MultiInternPolicy{}.IsReassignment(models.Lead{AssignedInterns: []string{"i1"}}))
}

func TestFreshAssignmentNeedsNoToken(t *testing.T) {
	backend := &fakeBackend{}
	store := cache.NewStore()
	w, err := NewWidget(backend, store, models.User{ID: "p1", Role: models.RolePartner}, nil)
	require.NoError(t, err)

	lead := models.Lead{ID: 1, Stage: models.StageUniverse}
	require.NoError(t, w.Begin(context.Background(), lead))
	assert.Equal(t, StateIdle, w.State())
	assert.Empty(t, backend.tokenRequests)

	require.NoError(t, w.Assign(context.Background(), models.StageUniverse, lead, "a1"))
	assert.Equal(t, StateSuccess, w.State())

	require.Len(t, backend.assigns, 1)
	assert.Equal(t, "a1", *backend.assigns[0].AssignedTo)
	assert.Empty(t, backend.assigns[0].ChallengeToken)
}

func TestReassignmentCarriesToken(t *testing.T) {
	backend := &fakeBackend{token: "tok-123"}
	store := cache.NewStore()
	w, err := NewWidget(backend, store, models.User{ID: "p1", Role: models.RolePartner}, nil)
	require.NoError(t, err)

	lead := models.Lead{ID: 1, Stage: models.StageQualified, AssignedTo: "a1"}
	require.NoError(t, w.Begin(context.Background(), lead))
	assert.Equal(t, StateTokenReady, w.State())
	assert.Equal(t, []string{TokenPurposeReassignment}, backend.tokenRequests)

	require.NoError(t, w.Assign(context.Background(), models.StageQualified, lead, "a2"))
	require.Len(t, backend.assigns, 1)
	assert.Equal(t, "tok-123", backend.assigns[0].ChallengeToken)
}

func TestReassignmentWithoutTokenIsRefusedLocally(t *testing.T) {
	backend := &fakeBackend{}
	store := cache.NewStore()
	w, err := NewWidget(backend, store, models.User{ID: "p1", Role: models.RolePartner}, nil)
	require.NoError(t, err)

	// Begin never ran, so no token was fetched.
	lead := models.Lead{ID: 1, Stage: models.StageQualified, AssignedTo: "a1"}
	err = w.Assign(context.Background(), models.StageQualified, lead, "a2")
	assert.ErrorIs(t, err, ErrTokenRequired)
	assert.Empty(t, backend.assigns)
}

func TestExpiredTokenMapsToTokenRequired(t *testing.T) {
	backend := &fakeBackend{
		token:     "tok-123",
		assignErr: &api.Error{Status: 403, Message: "Challenge token expired"},
	}
	store := cache.NewStore()
	w, err := NewWidget(backend, store, models.User{ID: "p1", Role: models.RolePartner}, nil)
	require.NoError(t, err)

	lead := models.Lead{ID: 1, Stage: models.StageQualified, AssignedTo: "a1"}
	require.NoError(t, w.Begin(context.Background(), lead))

	err = w.Assign(context.Background(), models.StageQualified, lead, "a2")
	assert.ErrorIs(t, err, ErrTokenRequired)
	assert.Equal(t, StateError, w.State())
}

func TestAssignInterns(t *testing.T) {
	backend := &fakeBackend{token: "tok-9"}
	store := cache.NewStore()
	w, err := NewWidget(backend, store, models.User{ID: "a1", Role: models.RoleAnalyst}, nil)
	require.NoError(t, err)

	// First intern assignment goes straight through.
	lead := models.Lead{ID: 2, Stage: models.StageOutreach}
	require.NoError(t, w.Begin(context.Background(), lead))
	require.NoError(t, w.AssignInterns(context.Background(), models.StageOutreach, lead, []string{"i1"}))
	require.Len(t, backend.internSets, 1)
	assert.Equal(t, []string{"i1"}, backend.internSets[0])

	// Replacing the set is a reassignment and needs the token.
	assigned := models.Lead{ID: 2, Stage: models.StageOutreach, AssignedInterns: []string{"i1"}}
	w2, err := NewWidget(backend, store, models.User{ID: "a1", Role: models.RoleAnalyst}, nil)
	require.NoError(t, err)
	err = w2.AssignInterns(context.Background(), models.StageOutreach, assigned, []string{"i3"})
	assert.ErrorIs(t, err, ErrTokenRequired)

	require.NoError(t, w2.Begin(context.Background(), assigned))
	require.NoError(t, w2.AssignInterns(context.Background(), models.StageOutreach, assigned, []string{"i3"}))
}

func TestUnassignAllIsTokenless(t *testing.T) {
	backend := &fakeBackend{}
	store := cache.NewStore()

	w, err := NewWidget(backend, store, models.User{ID: "p1", Role: models.RolePartner}, nil)
	require.NoError(t, err)
	lead := models.Lead{ID: 3, Stage: models.StageQualified, AssignedTo: "a1"}
	require.NoError(t, w.UnassignAll(context.Background(), models.StageQualified, lead))
	require.Len(t, backend.assigns, 1)
	assert.Nil(t, backend.assigns[0].AssignedTo)

	w2, err := NewWidget(backend, store, models.User{ID: "a1", Role: models.RoleAnalyst}, nil)
	require.NoError(t, err)
	internLead := models.Lead{ID: 4, Stage: models.StageOutreach, AssignedInterns: []string{"i1"}}
	require.NoError(t, w2.UnassignAll(context.Background(), models.StageOutreach, internLead))
	require.Len(t, backend.internSets, 1)
	assert.Nil(t, backend.internSets[0])
}

func TestAssignInvalidatesLeadLists(t *testing.T) {
	backend := &fakeBackend{}
	store := cache.NewStore()
	store.Set(cache.LeadsKey(models.StageUniverse), "view")
	store.Set(cache.LeadsKey(cache.StageAll), "all")
	store.Set(cache.MetricsKey(), "metrics")

	w, err := NewWidget(backend, store, models.User{ID: "p1", Role: models.RolePartner}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Assign(context.Background(), models.StageUniverse, models.Lead{ID: 1}, "a1"))

	for _, key := range []cache.Key{
		cache.LeadsKey(models.StageUniverse),
		cache.LeadsKey(cache.StageAll),
		cache.MetricsKey(),
	} {
		_, fresh := store.Get(key)
		assert.False(t, fresh, key)
	}
}

func TestBulkAssign(t *testing.T) {
	backend := &fakeBackend{bulkRes: &api.BulkAssignResult{AssignedCount: 3}}
	store := cache.NewStore()
	actor := models.User{ID: "p1", Role: models.RolePartner}

	res, err := BulkAssign(context.Background(), backend, store, actor, models.StageUniverse, []int64{1, 2, 3}, "a1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, backend.bulkLeadIDs)
	assert.Equal(t, "a1", backend.bulkAssignee)
	assert.Equal(t, 3, res.Assigned)
	assert.Equal(t, "3 leads assigned", res.Summary())
}

func TestBulkAssignDefaultsToAllOrNothing(t *testing.T) {
	// A backend that returns no count is treated as having assigned all.
	backend := &fakeBackend{}
	store := cache.NewStore()
	actor := models.User{ID: "ad", Role: models.RoleAdmin}

	res, err := BulkAssign(context.Background(), backend, store, actor, models.StageUniverse, []int64{5, 6}, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Assigned)
}

func TestBulkAssignGuards(t *testing.T) {
	backend := &fakeBackend{}
	store := cache.NewStore()

	_, err := BulkAssign(context.Background(), backend, store, models.User{Role: models.RoleAnalyst}, models.StageUniverse, []int64{1}, "a1")
	assert.Error(t, err)

	_, err = BulkAssign(context.Background(), backend, store, models.User{Role: models.RolePartner}, models.StageUniverse, nil, "a1")
	assert.Error(t, err)
}
