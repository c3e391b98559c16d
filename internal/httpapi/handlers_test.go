package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/timecard/internal/auth"
	"github.com/mmynk/timecard/internal/metrics"
	"github.com/mmynk/timecard/internal/models"
	"github.com/mmynk/timecard/internal/service"
	"github.com/mmynk/timecard/internal/storage/sqlite"
)

const (
	testSecret = "test-secret"
	aliceID    = "user-alice"
	bobID      = "user-bob"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	router     *gin.Engine
	store      *sqlite.SQLiteStore
	clock      *testClock
	jwtManager *auth.JWTManager
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tempDir, err := os.MkdirTemp("", "timecard-httpapi-*")
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

	clock := &testClock{now: time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC)}
	m := metrics.New()
	opts := []service.Option{
		service.WithClock(clock.Now),
		service.WithLocation(time.UTC),
		service.WithMetrics(m),
	}
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)

	router := NewRouter(RouterConfig{
		Handlers: NewHandlers(
			service.NewShiftService(store, opts...),
			service.NewDashboardService(store, opts...),
			time.UTC,
		),
		JWTManager: jwtManager,
		Metrics:    m,
	})

	return &testServer{router: router, store: store, clock: clock, jwtManager: jwtManager}
}

func (s *testServer) seedEmployment(t *testing.T, userID string, policy models.RoundPolicy) *models.Employment {
	t.Helper()
	ctx := context.Background()

	company := &models.Company{Name: "Acme"}
	if err := s.store.CreateCompany(ctx, company); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	position := &models.Position{CompanyID: company.ID, Name: "Barista"}
	if err := s.store.CreatePosition(ctx, position); err != nil {
		t.Fatalf("CreatePosition failed: %v", err)
	}
	employment := &models.Employment{
		UserID:     userID,
		PositionID: position.ID,
		StartDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Rounding:   policy,
	}
	if err := s.store.CreateEmployment(ctx, employment); err != nil {
		t.Fatalf("CreateEmployment failed: %v", err)
	}
	return employment
}

func (s *testServer) do(t *testing.T, userID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := s.jwtManager.Generate(userID)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthcheck(t *testing.T) {
	s := setupServer(t)

	rec := s.do(t, "", http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestClockInOut(t *testing.T) {
	s := setupServer(t)
	emp := s.seedEmployment(t, aliceID, models.QuarterHourRounding())
	base := "/api/employments/" + emp.ID

	rec := s.do(t, aliceID, http.MethodPost, base+"/clock_in", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("clock_in: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	opened := decode[ShiftJSON](t, rec)
	if opened.EndTime != nil {
		t.Errorf("expected open shift, got end_time %v", opened.EndTime)
	}
	if opened.Date != "2024-03-06" {
		t.Errorf("expected date 2024-03-06, got %s", opened.Date)
	}

	rec = s.do(t, aliceID, http.MethodPost, base+"/clock_in", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second clock_in: expected 422, got %d", rec.Code)
	}
	errs := decode[ErrorResponse](t, rec)
	if len(errs.Errors) != 1 || errs.Errors[0] != "Already clocked in for this employment" {
		t.Errorf("unexpected errors: %v", errs.Errors)
	}

	s.clock.Advance(8*time.Hour + 7*time.Minute)
	rec = s.do(t, aliceID, http.MethodPost, base+"/clock_out", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clock_out: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	closed := decode[ShiftJSON](t, rec)
	if closed.ID != opened.ID || closed.EndTime == nil {
		t.Fatalf("expected shift %s closed, got %+v", opened.ID, closed)
	}

	rec = s.do(t, aliceID, http.MethodGet, "/api/shifts/"+closed.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get shift: expected 200, got %d", rec.Code)
	}
	got := decode[ShiftJSON](t, rec)
	if got.HoursWorked == nil || *got.HoursWorked != 8.0 {
		t.Errorf("expected hours_worked 8.0, got %v", got.HoursWorked)
	}

	rec = s.do(t, aliceID, http.MethodPost, base+"/clock_out", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("clock_out without active shift: expected 422, got %d", rec.Code)
	}
	errs = decode[ErrorResponse](t, rec)
	if len(errs.Errors) != 1 || errs.Errors[0] != "No active shift to clock out of" {
		t.Errorf("unexpected errors: %v", errs.Errors)
	}
}

func TestAuthAndOwnership(t *testing.T) {
	s := setupServer(t)
	emp := s.seedEmployment(t, aliceID, models.ExactRounding())

	tests := []struct {
		name   string
		userID string
		path   string
		want   int
	}{
		{"missing token", "", "/api/employments/" + emp.ID + "/clock_in", http.StatusUnauthorized},
		{"other user", bobID, "/api/employments/" + emp.ID + "/clock_in", http.StatusNotFound},
		{"unknown employment", aliceID, "/api/employments/nope/clock_in", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.userID, http.MethodPost, tt.path, nil)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestManualShifts(t *testing.T) {
	s := setupServer(t)
	emp := s.seedEmployment(t, aliceID, models.HalfHourRounding())
	base := "/api/employments/" + emp.ID + "/shifts"

	start := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	end := start.Add(7*time.Hour + 50*time.Minute)

	rec := s.do(t, aliceID, http.MethodPost, base, map[string]any{
		"date":        "2024-03-05",
		"start_time":  start,
		"end_time":    end,
		"description": "Inventory",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[ShiftJSON](t, rec)
	if created.Description != "Inventory" || created.Date != "2024-03-05" {
		t.Errorf("unexpected shift: %+v", created)
	}

	t.Run("end before start", func(t *testing.T) {
		rec := s.do(t, aliceID, http.MethodPost, base, map[string]any{
			"start_time": start,
			"end_time":   start.Add(-time.Minute),
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		rec := s.do(t, aliceID, http.MethodPost, base, map[string]any{
			"date":       "05/03/2024",
			"start_time": start,
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	rec = s.do(t, aliceID, http.MethodGet, base, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	list := decode[struct {
		Shifts []ShiftJSON `json:"shifts"`
	}](t, rec)
	if len(list.Shifts) != 1 {
		t.Fatalf("expected 1 shift, got %d", len(list.Shifts))
	}
	if h := list.Shifts[0].HoursWorked; h == nil || *h != 8.0 {
		t.Errorf("expected hours_worked 8.0, got %v", h)
	}

	// Reopen the shift, then try to reopen a second one.
	rec = s.do(t, aliceID, http.MethodPatch, "/api/shifts/"+created.ID, map[string]any{"end_time": nil})
	if rec.Code != http.StatusOK {
		t.Fatalf("reopen: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if reopened := decode[ShiftJSON](t, rec); reopened.EndTime != nil {
		t.Errorf("expected reopened shift, got end_time %v", reopened.EndTime)
	}

	rec = s.do(t, aliceID, http.MethodPost, base, map[string]any{
		"start_time": start.Add(24 * time.Hour),
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second open shift: expected 422, got %d", rec.Code)
	}

	rec = s.do(t, aliceID, http.MethodPatch, "/api/shifts/"+created.ID, map[string]any{"notes": "checked"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch notes: expected 200, got %d", rec.Code)
	}
	if patched := decode[ShiftJSON](t, rec); patched.Notes != "checked" || patched.EndTime != nil {
		t.Errorf("unexpected shift after patch: %+v", patched)
	}

	rec = s.do(t, aliceID, http.MethodDelete, "/api/shifts/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = s.do(t, aliceID, http.MethodGet, "/api/shifts/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted: expected 404, got %d", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	s := setupServer(t)
	cafe := s.seedEmployment(t, aliceID, models.QuarterHourRounding())
	bar := s.seedEmployment(t, aliceID, models.ExactRounding())

	// Monday 2024-03-04, 4h07m under quarter-hour rounding.
	monday := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	rec := s.do(t, aliceID, http.MethodPost, "/api/employments/"+cafe.ID+"/shifts", map[string]any{
		"start_time": monday,
		"end_time":   monday.Add(4*time.Hour + 7*time.Minute),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, aliceID, http.MethodPost, "/api/employments/"+bar.ID+"/clock_in", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("clock_in: expected 201, got %d", rec.Code)
	}
	s.clock.Advance(90 * time.Minute)

	rec = s.do(t, aliceID, http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	view := decode[DashboardJSON](t, rec)

	if len(view.ActiveEmployments) != 2 {
		t.Errorf("expected 2 active employments, got %d", len(view.ActiveEmployments))
	}
	if got := view.TotalWeeklyHours[cafe.ID]; got != 4.0 {
		t.Errorf("cafe weekly: expected 4.0, got %v", got)
	}
	if got := view.TotalWeeklyHours[bar.ID]; got != 1.5 {
		t.Errorf("bar weekly: expected 1.5, got %v", got)
	}
	if got := view.DailyHours["2024-03-04_"+cafe.ID]; got != 4.0 {
		t.Errorf("cafe monday: expected 4.0, got %v", got)
	}
	if len(view.CurrentShifts) != 1 || view.CurrentShifts[0].EmploymentID != bar.ID {
		t.Errorf("expected one current shift for bar, got %+v", view.CurrentShifts)
	}

	// The previous week has no shifts but still lists both employments.
	rec = s.do(t, aliceID, http.MethodGet, "/api/dashboard?week_of=2024-02-28", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard week_of: expected 200, got %d", rec.Code)
	}
	past := decode[DashboardJSON](t, rec)
	if len(past.TotalWeeklyHours) != 2 || past.TotalWeeklyHours[cafe.ID] != 0 {
		t.Errorf("expected zero totals for both employments, got %v", past.TotalWeeklyHours)
	}

	rec = s.do(t, aliceID, http.MethodGet, "/api/dashboard?week_of=yesterday", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad week_of: expected 400, got %d", rec.Code)
	}

	rec = s.do(t, aliceID, http.MethodGet, "/api/dashboard", nil)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode raw dashboard: %v", err)
	}
	for _, key := range []string{"shifts", "active_employments", "total_weekly_hours", "daily_hours", "current_shifts"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("dashboard missing key %q", key)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupServer(t)
	s.do(t, "", http.MethodGet, "/healthcheck", nil)

	rec := s.do(t, "", http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Error("expected http_requests_total in metrics output")
	}
}
