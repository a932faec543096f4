package localstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/models"
)

func openTestStore(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	_, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { Close() })
}

func TestSessionLifecycle(t *testing.T) {
	openTestStore(t)

	// Nothing stored yet.
	session, err := LoadSession()
	require.NoError(t, err)
	assert.Nil(t, session)

	require.NoError(t, SaveSession("cookie-value", "analyst@firm.example.com"))

	session, err = LoadSession()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "cookie-value", session.Cookie)
	assert.Equal(t, "analyst@firm.example.com", session.Email)
	assert.WithinDuration(t, time.Now(), session.SavedAt, time.Minute)

	// Saving again replaces the singleton row.
	require.NoError(t, SaveSession("newer-cookie", "partner@firm.example.com"))
	session, err = LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "newer-cookie", session.Cookie)

	require.NoError(t, ClearSession())
	session, err = LoadSession()
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestPreferences(t *testing.T) {
	openTestStore(t)

	assert.Equal(t, "dark", Preference("theme", "dark"))

	require.NoError(t, SetPreference("theme", "light"))
	assert.Equal(t, "light", Preference("theme", "dark"))

	require.NoError(t, SetPreference("theme", "dark"))
	assert.Equal(t, "dark", Preference("theme", "light"))
}

func TestLeadSnapshots(t *testing.T) {
	openTestStore(t)

	leads, _, err := LoadLeadSnapshot("qualified")
	require.NoError(t, err)
	assert.Nil(t, leads)

	saved := []models.Lead{
		{ID: 1, Stage: models.StageQualified, Company: &models.Company{Name: "Acme Industrials"}},
		{ID: 2, Stage: models.StageQualified},
	}
	require.NoError(t, SaveLeadSnapshot("qualified", saved))

	leads, fetchedAt, err := LoadLeadSnapshot("qualified")
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "Acme Industrials", leads[0].CompanyName())
	assert.WithinDuration(t, time.Now(), fetchedAt, time.Minute)

	// A newer snapshot for the same stage replaces the old one.
	require.NoError(t, SaveLeadSnapshot("qualified", saved[:1]))
	leads, _, err = LoadLeadSnapshot("qualified")
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestOperationsRequireOpenStore(t *testing.T) {
	// No Open call in this test.
	assert.Error(t, SaveSession("c", "e"))
	assert.Error(t, SetPreference("k", "v"))
	_, err := LoadSession()
	assert.Error(t, err)
}
