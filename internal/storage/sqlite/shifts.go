package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/timecard/internal/models"
	"github.com/mmynk/timecard/internal/storage"
)

const shiftColumns = `id, employment_id, date, start_time, end_time, description, notes, created_at, updated_at`

func scanShift(row scanner) (*models.Shift, error) {
	shift := &models.Shift{}
	var (
		date                 string
		startTime            int64
		endTime              sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&shift.ID, &shift.EmploymentID, &date, &startTime, &endTime,
		&shift.Description, &shift.Notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if shift.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	shift.StartTime = fromMillis(startTime)
	shift.EndTime = fromNullMillis(endTime)
	shift.CreatedAt = fromMillis(createdAt)
	shift.UpdatedAt = fromMillis(updatedAt)
	return shift, nil
}

// prepareShift fills generated fields and normalizes timestamps to storage precision.
func prepareShift(shift *models.Shift) {
	if shift.ID == "" {
		shift.ID = uuid.New().String()
	}
	now := truncate(time.Now())
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = now
	}
	shift.UpdatedAt = now
	shift.StartTime = truncate(shift.StartTime)
	shift.EndTime = truncatePtr(shift.EndTime)
}

func (s *SQLiteStore) insertShift(ctx context.Context, shift *models.Shift) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO shifts ("+shiftColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		shift.ID, shift.EmploymentID, formatDate(shift.Date),
		toMillis(shift.StartTime), nullMillis(shift.EndTime),
		shift.Description, shift.Notes,
		toMillis(shift.CreatedAt), toMillis(shift.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", translateShiftWriteError(err))
	}
	return nil
}

// StartShift inserts an open shift. The partial unique index rejects a second
// open shift for the same employment, so concurrent callers cannot both succeed.
func (s *SQLiteStore) StartShift(ctx context.Context, shift *models.Shift) error {
	if shift.EndTime != nil {
		return fmt.Errorf("start shift: end time must be empty")
	}
	prepareShift(shift)
	return s.insertShift(ctx, shift)
}

// CreateShift inserts a manually entered shift, open or closed.
func (s *SQLiteStore) CreateShift(ctx context.Context, shift *models.Shift) error {
	prepareShift(shift)
	return s.insertShift(ctx, shift)
}

// CloseActiveShift closes the employment's open shift at endTime.
func (s *SQLiteStore) CloseActiveShift(ctx context.Context, employmentID string, endTime time.Time) (*models.Shift, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	shift, err := scanShift(tx.QueryRowContext(ctx,
		"SELECT "+shiftColumns+" FROM shifts WHERE employment_id = ? AND end_time IS NULL",
		employmentID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("active shift for employment %s: %w", employmentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active shift: %w", err)
	}

	end := truncate(endTime)
	if !end.After(shift.StartTime) {
		return nil, storage.ErrInvalidShiftTimes
	}
	updatedAt := truncate(time.Now())

	// The end_time IS NULL guard makes a racing second close affect zero rows.
	res, err := tx.ExecContext(ctx,
		"UPDATE shifts SET end_time = ?, updated_at = ? WHERE id = ? AND end_time IS NULL",
		toMillis(end), toMillis(updatedAt), shift.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to close shift: %w", translateShiftWriteError(err))
	}
	if err := requireAffected(res, "active shift", shift.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	shift.EndTime = &end
	shift.UpdatedAt = updatedAt
	return shift, nil
}

// GetActiveShift retrieves the open shift of an employment.
func (s *SQLiteStore) GetActiveShift(ctx context.Context, employmentID string) (*models.Shift, error) {
	shift, err := scanShift(s.db.QueryRowContext(ctx,
		"SELECT "+shiftColumns+" FROM shifts WHERE employment_id = ? AND end_time IS NULL",
		employmentID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("active shift for employment %s: %w", employmentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active shift: %w", err)
	}
	return shift, nil
}

// GetShift retrieves a shift by ID.
func (s *SQLiteStore) GetShift(ctx context.Context, shiftID string) (*models.Shift, error) {
	shift, err := scanShift(s.db.QueryRowContext(ctx,
		"SELECT "+shiftColumns+" FROM shifts WHERE id = ?",
		shiftID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shift %s: %w", shiftID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return shift, nil
}

// UpdateShift writes the editable fields of a shift. Clearing end_time is subject
// to the same one-active-shift index as StartShift.
func (s *SQLiteStore) UpdateShift(ctx context.Context, shift *models.Shift) error {
	shift.StartTime = truncate(shift.StartTime)
	shift.EndTime = truncatePtr(shift.EndTime)
	shift.UpdatedAt = truncate(time.Now())

	res, err := s.db.ExecContext(ctx,
		`UPDATE shifts SET date = ?, start_time = ?, end_time = ?, description = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		formatDate(shift.Date), toMillis(shift.StartTime), nullMillis(shift.EndTime),
		shift.Description, shift.Notes, toMillis(shift.UpdatedAt), shift.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", translateShiftWriteError(err))
	}
	return requireAffected(res, "shift", shift.ID)
}

// DeleteShift removes a shift by ID.
func (s *SQLiteStore) DeleteShift(ctx context.Context, shiftID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", shiftID)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return requireAffected(res, "shift", shiftID)
}

// ListShiftsByEmployments retrieves the shifts of several employments, newest first.
func (s *SQLiteStore) ListShiftsByEmployments(ctx context.Context, employmentIDs []string) ([]*models.Shift, error) {
	if len(employmentIDs) == 0 {
		return []*models.Shift{}, nil
	}

	args := make([]any, len(employmentIDs))
	for i, id := range employmentIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+shiftColumns+" FROM shifts WHERE employment_id IN ("+placeholders(len(employmentIDs))+
			") ORDER BY date DESC, start_time DESC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	shifts := make([]*models.Shift, 0)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}

	return shifts, nil
}
