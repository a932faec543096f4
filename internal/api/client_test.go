package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL, 5*time.Second, nil)
	c.SetSession("s3ss10n")
	return c
}

func TestRequestCarriesSessionAndRequestID(t *testing.T) {
	var gotCookie, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			gotCookie = cookie.Value
		}
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`[]`))
	})

	_, err := c.ListLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s3ss10n", gotCookie)
	assert.NotEmpty(t, gotRequestID)
}

func TestListLeadsByStagePath(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]models.Lead{{ID: 1, Stage: models.StageQualified}})
	})

	leads, err := c.ListLeadsByStage(context.Background(), models.StageQualified)
	require.NoError(t, err)
	assert.Equal(t, "/leads/stage/qualified", gotPath)
	require.Len(t, leads, 1)
	assert.Equal(t, int64(1), leads[0].ID)
}

func TestUpdateStageBody(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody StageChange
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(models.Lead{ID: 7, Stage: gotBody.Stage})
	})

	poc := int64(3)
	lead, err := c.UpdateStage(context.Background(), 7, StageChange{
		Stage:        models.StagePitching,
		DefaultPocID: &poc,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/leads/7/stage", gotPath)
	assert.Equal(t, models.StagePitching, gotBody.Stage)
	require.NotNil(t, gotBody.DefaultPocID)
	assert.Equal(t, poc, *gotBody.DefaultPocID)
	assert.Equal(t, models.StagePitching, lead.Stage)
}

func TestRejectLeadBody(t *testing.T) {
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.RejectLead(context.Background(), 4, "no mandate potential"))
	assert.Equal(t, "no mandate potential", gotBody["rejectionReason"])
}

func TestErrorBodyDecoding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Lead already assigned"}`))
	})

	err := c.AssignLead(context.Background(), 1, AssignRequest{})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Lead already assigned", apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestErrorBodyFallbackKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"stage transition not allowed"}`))
	})

	err := c.RejectLead(context.Background(), 1, "reason")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "stage transition not allowed", apiErr.Message)
}

func TestServerMessage(t *testing.T) {
	withMsg := &Error{Status: 400, Message: "sector is required"}
	assert.Equal(t, "sector is required", ServerMessage(withMsg, "fallback"))

	noMsg := &Error{Status: 500}
	assert.Equal(t, "fallback", ServerMessage(noMsg, "fallback"))

	assert.Equal(t, "fallback", ServerMessage(errors.New("dial tcp: timeout"), "fallback"))
}

func TestIsChallengeTokenError(t *testing.T) {
	assert.True(t, IsChallengeTokenError(&Error{Status: 403, Message: "Challenge token expired"}))
	assert.True(t, IsChallengeTokenError(&Error{Status: 400, Message: "invalid challenge token"}))
	assert.False(t, IsChallengeTokenError(&Error{Status: 403, Message: "forbidden"}))
	assert.False(t, IsChallengeTokenError(errors.New("challenge token")))
}

func TestGenerateChallengeToken(t *testing.T) {
	var gotBody map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/challenge-token/generate", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"token":"tok-42"}`))
	})

	token, err := c.GenerateChallengeToken(context.Background(), 12, "reassignment")
	require.NoError(t, err)
	assert.Equal(t, "tok-42", token)
	assert.Equal(t, float64(12), gotBody["leadId"])
	assert.Equal(t, "reassignment", gotBody["purpose"])
}

func TestBulkAssignDecodesResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leads/bulk-assign", r.URL.Path)
		w.Write([]byte(`{"assignedCount":2,"errors":[{"leadId":9,"message":"already assigned"}]}`))
	})

	res, err := c.BulkAssign(context.Background(), []int64{1, 2, 9}, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.AssignedCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, int64(9), res.Errors[0].LeadID)
}

func TestNoContentResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.AssignInterns(context.Background(), 1, []string{"i1"}))
}
