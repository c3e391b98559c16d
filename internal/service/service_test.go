package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/timecard/internal/models"
	"github.com/mmynk/timecard/internal/storage/sqlite"
)

// fakeClock is a settable clock shared by services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// setupStore creates a SQLite store in a temp directory.
func setupStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "timecard-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.RemoveAll(tempDir)
	})
	return store
}

// seedEmployment creates an active employment for userID with the given policy.
func seedEmployment(t *testing.T, store *sqlite.SQLiteStore, userID string, policy models.RoundPolicy) *models.Employment {
	t.Helper()
	ctx := context.Background()

	company := &models.Company{Name: "Northwind"}
	if err := store.CreateCompany(ctx, company); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	position := &models.Position{CompanyID: company.ID, Name: "Line Cook"}
	if err := store.CreatePosition(ctx, position); err != nil {
		t.Fatalf("CreatePosition failed: %v", err)
	}
	employment := &models.Employment{
		UserID:     userID,
		PositionID: position.ID,
		StartDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Rounding:   policy,
	}
	if err := store.CreateEmployment(ctx, employment); err != nil {
		t.Fatalf("CreateEmployment failed: %v", err)
	}
	return employment
}

func mustCustom(t *testing.T, minutes int) models.RoundPolicy {
	t.Helper()
	p, err := models.CustomRounding(minutes)
	if err != nil {
		t.Fatalf("CustomRounding(%d) failed: %v", minutes, err)
	}
	return p
}

// wednesdayMorning is a fixed "now" for tests: Wednesday 2024-03-06 09:00 UTC.
var wednesdayMorning = time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC)
