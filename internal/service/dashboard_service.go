package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/timecard/internal/calculator"
	"github.com/mmynk/timecard/internal/models"
	"github.com/mmynk/timecard/internal/storage"
)

// DashboardService builds the per-user hours summary.
type DashboardService struct {
	store storage.Store
	config
}

// NewDashboardService creates a new DashboardService with the given storage backend.
func NewDashboardService(store storage.Store, opts ...Option) *DashboardService {
	return &DashboardService{store: store, config: newConfig(opts)}
}

// Dashboard summarizes the current week for the user.
func (s *DashboardService) Dashboard(ctx context.Context, userID string) (*models.DashboardView, error) {
	return s.DashboardForWeek(ctx, userID, s.now())
}

// DashboardForWeek summarizes the user's active employments, with weekly totals for
// the week containing ref. Active shifts count their hours up to now.
func (s *DashboardService) DashboardForWeek(ctx context.Context, userID string, ref time.Time) (*models.DashboardView, error) {
	slog.Info("Dashboard request received", "user_id", userID, "week_of", ref.Format(models.DateLayout))

	details, err := s.store.ListActiveEmployments(ctx, userID)
	if err != nil {
		slog.Error("Dashboard failed - could not list employments", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list active employments: %w", err)
	}

	employments := make([]*models.Employment, len(details))
	ids := make([]string, len(details))
	for i, d := range details {
		employments[i] = &d.Employment
		ids[i] = d.ID
	}

	shifts, err := s.store.ListShiftsByEmployments(ctx, ids)
	if err != nil {
		slog.Error("Dashboard failed - could not list shifts", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list shifts: %w", err)
	}

	now := s.now()
	view := &models.DashboardView{
		Shifts:            shifts,
		ActiveEmployments: details,
		TotalWeeklyHours:  calculator.WeeklyTotals(employments, shifts, ref, now, s.loc),
		DailyHours:        calculator.DailyTotals(employments, shifts, now),
		CurrentShifts:     calculator.CurrentShifts(shifts),
	}
	if view.ActiveEmployments == nil {
		view.ActiveEmployments = []*models.EmploymentDetail{}
	}

	slog.Info("Dashboard successful",
		"user_id", userID,
		"employments_count", len(details),
		"shifts_count", len(shifts),
		"current_count", len(view.CurrentShifts),
	)
	return view, nil
}
