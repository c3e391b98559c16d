// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/timecard/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrActiveShiftExists is returned when a write would leave an employment with
	// more than one active shift.
	ErrActiveShiftExists = errors.New("employment already has an active shift")

	// ErrInvalidShiftTimes is returned when a shift's end time is not after its start time.
	ErrInvalidShiftTimes = errors.New("shift end time must be after start time")
)

// Store defines the interface for timecard storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Implementations must guarantee that at most one shift per employment has a nil
// EndTime, including under concurrent writers.
type Store interface {
	// CreateCompany persists a company. ID is generated when empty.
	CreateCompany(ctx context.Context, company *models.Company) error

	// CreatePosition persists a position under an existing company.
	CreatePosition(ctx context.Context, position *models.Position) error

	// CreateEmployment persists an employment. ID and timestamps are filled in.
	CreateEmployment(ctx context.Context, employment *models.Employment) error

	// GetEmployment returns the employment or ErrNotFound.
	GetEmployment(ctx context.Context, employmentID string) (*models.Employment, error)

	// EndEmployment sets the employment's end date. Returns ErrNotFound if unknown.
	EndEmployment(ctx context.Context, employmentID string, endDate time.Time) error

	// DeleteEmployment removes the employment and all of its shifts.
	DeleteEmployment(ctx context.Context, employmentID string) error

	// ListActiveEmployments returns the user's employments without an end date,
	// joined with position and company.
	ListActiveEmployments(ctx context.Context, userID string) ([]*models.EmploymentDetail, error)

	// StartShift inserts an open shift. Returns ErrActiveShiftExists if the
	// employment already has one.
	StartShift(ctx context.Context, shift *models.Shift) error

	// CloseActiveShift sets EndTime on the employment's active shift and returns it.
	// Returns ErrNotFound when no shift is active and ErrInvalidShiftTimes when
	// endTime is not after the shift's start.
	CloseActiveShift(ctx context.Context, employmentID string, endTime time.Time) (*models.Shift, error)

	// GetActiveShift returns the employment's open shift or ErrNotFound.
	GetActiveShift(ctx context.Context, employmentID string) (*models.Shift, error)

	// CreateShift inserts a shift that may be open or closed.
	CreateShift(ctx context.Context, shift *models.Shift) error

	// GetShift returns the shift or ErrNotFound.
	GetShift(ctx context.Context, shiftID string) (*models.Shift, error)

	// UpdateShift replaces the editable fields of an existing shift.
	UpdateShift(ctx context.Context, shift *models.Shift) error

	// DeleteShift removes a shift. Returns ErrNotFound if unknown.
	DeleteShift(ctx context.Context, shiftID string) error

	// ListShiftsByEmployments returns the shifts of the given employments, newest first.
	ListShiftsByEmployments(ctx context.Context, employmentIDs []string) ([]*models.Shift, error)

	// Close releases any resources held by the store.
	Close() error
}
