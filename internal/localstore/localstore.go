// Package localstore is the on-disk state that survives restarts: the server
// session cookie, UI preferences, and per-stage lead snapshots used to paint
// list screens before the first fetch returns.
package localstore

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dealdesk/dealdesk/internal/config"
	"github.com/dealdesk/dealdesk/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var db *sql.DB

// Open opens the store, creating directories and running pending migrations.
func Open() (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	if err := config.EnsureDirectories(); err != nil {
		return nil, err
	}

	path, err := config.StorePath()
	if err != nil {
		return nil, err
	}

	db, err = sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := runMigrations(); err != nil {
		db.Close()
		db = nil
		return nil, err
	}
	return db, nil
}

func Close() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

func runMigrations() error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// Session is the persisted server credential. The cookie value is opaque;
// the server decides whether it is still valid.
type Session struct {
	Cookie  string
	Email   string
	SavedAt time.Time
}

func SaveSession(cookie, email string) error {
	if db == nil {
		return fmt.Errorf("store not open")
	}
	_, err := db.Exec(`
		INSERT INTO session (id, cookie, email, saved_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET cookie = excluded.cookie, email = excluded.email, saved_at = excluded.saved_at
	`, cookie, email, time.Now().UTC())
	return err
}

// LoadSession returns the saved session, or nil when none was saved.
func LoadSession() (*Session, error) {
	if db == nil {
		return nil, fmt.Errorf("store not open")
	}
	var s Session
	err := db.QueryRow(`SELECT cookie, email, saved_at FROM session WHERE id = 1`).
		Scan(&s.Cookie, &s.Email, &s.SavedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func ClearSession() error {
	if db == nil {
		return fmt.Errorf("store not open")
	}
	_, err := db.Exec(`DELETE FROM session WHERE id = 1`)
	return err
}

// SetPreference stores a UI preference such as the theme or default sort.
func SetPreference(key, value string) error {
	if db == nil {
		return fmt.Errorf("store not open")
	}
	_, err := db.Exec(`
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// Preference reads a preference, returning fallback when unset.
func Preference(key, fallback string) string {
	if db == nil {
		return fallback
	}
	var value string
	err := db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return fallback
	}
	return value
}

// SaveLeadSnapshot persists a fetched stage list for warm starts.
func SaveLeadSnapshot(stage string, leads []models.Lead) error {
	if db == nil {
		return fmt.Errorf("store not open")
	}
	payload, err := json.Marshal(leads)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO lead_snapshots (stage, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(stage) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`, stage, string(payload), time.Now().UTC())
	return err
}

// LoadLeadSnapshot returns the last saved list for a stage and when it was
// fetched. Callers treat snapshots as stale paint, never as fresh data.
func LoadLeadSnapshot(stage string) ([]models.Lead, time.Time, error) {
	if db == nil {
		return nil, time.Time{}, fmt.Errorf("store not open")
	}
	var payload string
	var fetchedAt time.Time
	err := db.QueryRow(`SELECT payload, fetched_at FROM lead_snapshots WHERE stage = ?`, stage).
		Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var leads []models.Lead
	if err := json.Unmarshal([]byte(payload), &leads); err != nil {
		return nil, time.Time{}, err
	}
	return leads, fetchedAt, nil
}
