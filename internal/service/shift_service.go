package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/timecard/internal/apperr"
	"github.com/mmynk/timecard/internal/calculator"
	"github.com/mmynk/timecard/internal/metrics"
	"github.com/mmynk/timecard/internal/models"
	"github.com/mmynk/timecard/internal/storage"
)

// User-facing failure messages.
const (
	msgAlreadyClockedIn   = "Already clocked in for this employment"
	msgNoActiveShift      = "No active shift to clock out of"
	msgEmploymentNotFound = "Employment not found"
	msgShiftNotFound      = "Shift not found"
	msgEmploymentEnded    = "Employment has ended"
	msgEndBeforeStart     = "End time must be after start time"
	msgStartRequired      = "Start time is required"
	msgOneActiveShift     = "Another shift is already active for this employment"
)

// ShiftWithHours pairs a shift with its rounded hours.
type ShiftWithHours struct {
	Shift *models.Shift
	Hours float64
}

// ShiftInput is a manually entered shift.
type ShiftInput struct {
	// Date defaults to StartTime's calendar day.
	Date        *time.Time
	StartTime   time.Time
	EndTime     *time.Time
	Description string
	Notes       string
}

// ShiftUpdate is a partial edit. Nil fields are left unchanged.
type ShiftUpdate struct {
	Date      *time.Time
	StartTime *time.Time
	EndTime   *time.Time
	// ClearEndTime reopens the shift. It wins over EndTime.
	ClearEndTime bool
	Description  *string
	Notes        *string
}

// ShiftService manages clock-in/clock-out and manual shift edits.
//
// Each employment is either without an active shift or has exactly one; the store's
// unique index backs that, so concurrent clock-ins for one employment cannot both win.
type ShiftService struct {
	store storage.Store
	config
}

// NewShiftService creates a new ShiftService with the given storage backend.
func NewShiftService(store storage.Store, opts ...Option) *ShiftService {
	return &ShiftService{store: store, config: newConfig(opts)}
}

// ClockIn opens a shift starting now for the user's employment.
func (s *ShiftService) ClockIn(ctx context.Context, userID, employmentID string) (*models.Shift, error) {
	slog.Info("ClockIn request received", "user_id", userID, "employment_id", employmentID)

	employment, err := s.employmentFor(ctx, userID, employmentID)
	if err != nil {
		s.metrics.ShiftEvent("clock_in", resultFor(err))
		return nil, err
	}
	if !employment.Active() {
		s.metrics.ShiftEvent("clock_in", metrics.ResultInvalid)
		return nil, apperr.Validation(apperr.CodeInvalidShift, msgEmploymentEnded)
	}

	now := s.now()
	shift := &models.Shift{
		EmploymentID: employment.ID,
		Date:         s.today(now),
		StartTime:    now,
	}

	if err := s.store.StartShift(ctx, shift); err != nil {
		if errors.Is(err, storage.ErrActiveShiftExists) {
			slog.Warn("ClockIn rejected, shift already active", "employment_id", employmentID)
			s.metrics.ShiftEvent("clock_in", metrics.ResultConflict)
			return nil, apperr.Conflict(apperr.CodeAlreadyClockedIn, msgAlreadyClockedIn)
		}
		slog.Error("ClockIn failed", "employment_id", employmentID, "error", err)
		s.metrics.ShiftEvent("clock_in", metrics.ResultError)
		return nil, fmt.Errorf("clock in: %w", err)
	}

	slog.Info("Clocked in", "employment_id", employmentID, "shift_id", shift.ID)
	s.metrics.ShiftEvent("clock_in", metrics.ResultOK)
	return shift, nil
}

// ClockOut closes the employment's active shift at now.
func (s *ShiftService) ClockOut(ctx context.Context, userID, employmentID string) (*models.Shift, error) {
	slog.Info("ClockOut request received", "user_id", userID, "employment_id", employmentID)

	employment, err := s.employmentFor(ctx, userID, employmentID)
	if err != nil {
		s.metrics.ShiftEvent("clock_out", resultFor(err))
		return nil, err
	}

	shift, err := s.store.CloseActiveShift(ctx, employment.ID, s.now())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.metrics.ShiftEvent("clock_out", metrics.ResultNotFound)
		return nil, apperr.NotFound(apperr.CodeNoActiveShift, msgNoActiveShift)
	case errors.Is(err, storage.ErrInvalidShiftTimes):
		s.metrics.ShiftEvent("clock_out", metrics.ResultInvalid)
		return nil, apperr.Validation(apperr.CodeInvalidShift, msgEndBeforeStart)
	case err != nil:
		slog.Error("ClockOut failed", "employment_id", employmentID, "error", err)
		s.metrics.ShiftEvent("clock_out", metrics.ResultError)
		return nil, fmt.Errorf("clock out: %w", err)
	}

	slog.Info("Clocked out", "employment_id", employmentID, "shift_id", shift.ID)
	s.metrics.ShiftEvent("clock_out", metrics.ResultOK)
	return shift, nil
}

// HoursWorked returns the rounded hours of a closed shift, or the hours so far of an
// active one, under the owning employment's policy.
func (s *ShiftService) HoursWorked(ctx context.Context, userID, shiftID string) (float64, error) {
	sh, err := s.GetShift(ctx, userID, shiftID)
	if err != nil {
		return 0, err
	}
	return sh.Hours, nil
}

// GetShift returns a shift of the user together with its hours.
func (s *ShiftService) GetShift(ctx context.Context, userID, shiftID string) (*ShiftWithHours, error) {
	shift, employment, err := s.shiftFor(ctx, userID, shiftID)
	if err != nil {
		return nil, err
	}
	return &ShiftWithHours{
		Shift: shift,
		Hours: calculator.HoursWorked(shift, employment.Rounding, s.now()),
	}, nil
}

// ListShifts returns the shifts of one employment with their hours, newest first.
func (s *ShiftService) ListShifts(ctx context.Context, userID, employmentID string) ([]ShiftWithHours, error) {
	employment, err := s.employmentFor(ctx, userID, employmentID)
	if err != nil {
		return nil, err
	}

	shifts, err := s.store.ListShiftsByEmployments(ctx, []string{employment.ID})
	if err != nil {
		slog.Error("ListShifts failed", "employment_id", employmentID, "error", err)
		return nil, fmt.Errorf("list shifts: %w", err)
	}

	now := s.now()
	result := make([]ShiftWithHours, len(shifts))
	for i, shift := range shifts {
		result[i] = ShiftWithHours{
			Shift: shift,
			Hours: calculator.HoursWorked(shift, employment.Rounding, now),
		}
	}
	return result, nil
}

// CreateShift records a manually entered shift. An open entry is subject to the
// one-active-shift rule like a clock-in.
func (s *ShiftService) CreateShift(ctx context.Context, userID, employmentID string, in ShiftInput) (*models.Shift, error) {
	slog.Info("CreateShift request received", "user_id", userID, "employment_id", employmentID)

	employment, err := s.employmentFor(ctx, userID, employmentID)
	if err != nil {
		return nil, err
	}

	shift := &models.Shift{
		EmploymentID: employment.ID,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Description:  in.Description,
		Notes:        in.Notes,
	}
	if in.Date != nil {
		shift.Date = *in.Date
	} else {
		shift.Date = s.today(in.StartTime)
	}
	if err := validateShiftTimes(shift); err != nil {
		s.metrics.ShiftEvent("create", metrics.ResultInvalid)
		return nil, err
	}

	if err := s.store.CreateShift(ctx, shift); err != nil {
		s.metrics.ShiftEvent("create", resultFor(err))
		return nil, s.translateWriteError("CreateShift", err)
	}

	slog.Info("Shift created", "employment_id", employmentID, "shift_id", shift.ID)
	s.metrics.ShiftEvent("create", metrics.ResultOK)
	return shift, nil
}

// UpdateShift applies a manual edit. Times are re-validated and reopening a shift
// is rejected when another shift of the employment is active.
func (s *ShiftService) UpdateShift(ctx context.Context, userID, shiftID string, in ShiftUpdate) (*models.Shift, error) {
	slog.Info("UpdateShift request received", "user_id", userID, "shift_id", shiftID)

	shift, _, err := s.shiftFor(ctx, userID, shiftID)
	if err != nil {
		return nil, err
	}

	if in.Date != nil {
		shift.Date = *in.Date
	}
	if in.StartTime != nil {
		shift.StartTime = *in.StartTime
	}
	switch {
	case in.ClearEndTime:
		shift.EndTime = nil
	case in.EndTime != nil:
		end := *in.EndTime
		shift.EndTime = &end
	}
	if in.Description != nil {
		shift.Description = *in.Description
	}
	if in.Notes != nil {
		shift.Notes = *in.Notes
	}

	if err := validateShiftTimes(shift); err != nil {
		s.metrics.ShiftEvent("update", metrics.ResultInvalid)
		return nil, err
	}

	if err := s.store.UpdateShift(ctx, shift); err != nil {
		s.metrics.ShiftEvent("update", resultFor(err))
		return nil, s.translateWriteError("UpdateShift", err)
	}

	slog.Info("Shift updated", "shift_id", shift.ID, "active", shift.Active())
	s.metrics.ShiftEvent("update", metrics.ResultOK)
	return shift, nil
}

// DeleteShift removes one of the user's shifts.
func (s *ShiftService) DeleteShift(ctx context.Context, userID, shiftID string) error {
	slog.Info("DeleteShift request received", "user_id", userID, "shift_id", shiftID)

	if _, _, err := s.shiftFor(ctx, userID, shiftID); err != nil {
		return err
	}
	if err := s.store.DeleteShift(ctx, shiftID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(apperr.CodeNotFound, msgShiftNotFound)
		}
		slog.Error("DeleteShift failed", "shift_id", shiftID, "error", err)
		return fmt.Errorf("delete shift: %w", err)
	}

	slog.Info("Shift deleted", "shift_id", shiftID)
	return nil
}

// employmentFor loads an employment owned by userID. Employments of other users
// are reported as not found.
func (s *ShiftService) employmentFor(ctx context.Context, userID, employmentID string) (*models.Employment, error) {
	return loadEmployment(ctx, s.store, userID, employmentID)
}

// shiftFor loads a shift and its employment, both owned by userID.
func (s *ShiftService) shiftFor(ctx context.Context, userID, shiftID string) (*models.Shift, *models.Employment, error) {
	shift, err := s.store.GetShift(ctx, shiftID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, apperr.NotFound(apperr.CodeNotFound, msgShiftNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get shift: %w", err)
	}

	employment, err := loadEmployment(ctx, s.store, userID, shift.EmploymentID)
	if apperr.IsNotFound(err) {
		return nil, nil, apperr.NotFound(apperr.CodeNotFound, msgShiftNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	return shift, employment, nil
}

func (s *ShiftService) translateWriteError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrActiveShiftExists):
		return apperr.Validation(apperr.CodeInvalidShift, msgOneActiveShift)
	case errors.Is(err, storage.ErrInvalidShiftTimes):
		return apperr.Validation(apperr.CodeInvalidShift, msgEndBeforeStart)
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound(apperr.CodeNotFound, msgShiftNotFound)
	}
	slog.Error(op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func loadEmployment(ctx context.Context, store storage.Store, userID, employmentID string) (*models.Employment, error) {
	employment, err := store.GetEmployment(ctx, employmentID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeNotFound, msgEmploymentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get employment: %w", err)
	}
	if employment.UserID != userID {
		return nil, apperr.NotFound(apperr.CodeNotFound, msgEmploymentNotFound)
	}
	return employment, nil
}

func validateShiftTimes(shift *models.Shift) error {
	if shift.StartTime.IsZero() {
		return apperr.Validation(apperr.CodeInvalidShift, msgStartRequired)
	}
	if shift.EndTime != nil && !shift.EndTime.After(shift.StartTime) {
		return apperr.Validation(apperr.CodeInvalidShift, msgEndBeforeStart)
	}
	return nil
}

// resultFor classifies an error for the shift_events metric.
func resultFor(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case apperr.IsNotFound(err), errors.Is(err, storage.ErrNotFound):
		return metrics.ResultNotFound
	case apperr.IsConflict(err):
		return metrics.ResultConflict
	case apperr.IsValidation(err), errors.Is(err, storage.ErrActiveShiftExists), errors.Is(err, storage.ErrInvalidShiftTimes):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
