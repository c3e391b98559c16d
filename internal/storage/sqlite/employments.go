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

// CreateCompany persists a new company.
func (s *SQLiteStore) CreateCompany(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO companies (id, name) VALUES (?, ?)",
		company.ID, company.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to insert company: %w", err)
	}
	return nil
}

// CreatePosition persists a new position.
func (s *SQLiteStore) CreatePosition(ctx context.Context, position *models.Position) error {
	if position.ID == "" {
		position.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO positions (id, company_id, name) VALUES (?, ?, ?)",
		position.ID, position.CompanyID, position.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	return nil
}

// CreateEmployment persists a new employment.
func (s *SQLiteStore) CreateEmployment(ctx context.Context, employment *models.Employment) error {
	if employment.ID == "" {
		employment.ID = uuid.New().String()
	}
	now := truncate(time.Now())
	if employment.CreatedAt.IsZero() {
		employment.CreatedAt = now
	}
	employment.UpdatedAt = now

	var interval sql.NullInt64
	if v := employment.Rounding.CustomInterval(); v > 0 {
		interval = sql.NullInt64{Int64: int64(v), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employments (id, user_id, position_id, start_date, end_date, round_mode, round_interval, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		employment.ID, employment.UserID, employment.PositionID,
		formatDate(employment.StartDate), nullDate(employment.EndDate),
		string(employment.Rounding.Mode()), interval,
		toMillis(employment.CreatedAt), toMillis(employment.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert employment: %w", err)
	}
	return nil
}

const employmentColumns = `e.id, e.user_id, e.position_id, e.start_date, e.end_date,
	e.round_mode, e.round_interval, e.created_at, e.updated_at`

// scanEmployment reads the employmentColumns followed by any extra destinations.
func scanEmployment(row scanner, extra ...any) (*models.Employment, error) {
	e := &models.Employment{}
	var (
		startDate, roundMode string
		endDate              sql.NullString
		interval             sql.NullInt64
		createdAt, updatedAt int64
	)

	dest := []any{&e.ID, &e.UserID, &e.PositionID, &startDate, &endDate,
		&roundMode, &interval, &createdAt, &updatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	if e.StartDate, err = parseDate(startDate); err != nil {
		return nil, err
	}
	if endDate.Valid {
		end, err := parseDate(endDate.String)
		if err != nil {
			return nil, err
		}
		e.EndDate = &end
	}
	if e.Rounding, err = models.ParseRoundPolicy(roundMode, int(interval.Int64)); err != nil {
		return nil, fmt.Errorf("employment %s has invalid rounding: %w", e.ID, err)
	}
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return e, nil
}

// GetEmployment retrieves an employment by ID.
func (s *SQLiteStore) GetEmployment(ctx context.Context, employmentID string) (*models.Employment, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+employmentColumns+" FROM employments e WHERE e.id = ?",
		employmentID,
	)
	employment, err := scanEmployment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("employment %s: %w", employmentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employment: %w", err)
	}
	return employment, nil
}

// EndEmployment sets the end date of an employment.
func (s *SQLiteStore) EndEmployment(ctx context.Context, employmentID string, endDate time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE employments SET end_date = ?, updated_at = ? WHERE id = ?",
		formatDate(endDate), toMillis(time.Now()), employmentID,
	)
	if err != nil {
		return fmt.Errorf("failed to end employment: %w", err)
	}
	return requireAffected(res, "employment", employmentID)
}

// DeleteEmployment removes an employment; its shifts cascade.
func (s *SQLiteStore) DeleteEmployment(ctx context.Context, employmentID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM employments WHERE id = ?", employmentID)
	if err != nil {
		return fmt.Errorf("failed to delete employment: %w", err)
	}
	return requireAffected(res, "employment", employmentID)
}

// ListActiveEmployments retrieves the user's active employments with position and company names.
func (s *SQLiteStore) ListActiveEmployments(ctx context.Context, userID string) ([]*models.EmploymentDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employmentColumns+`, p.name, c.id, c.name
		 FROM employments e
		 JOIN positions p ON p.id = e.position_id
		 JOIN companies c ON c.id = p.company_id
		 WHERE e.user_id = ? AND e.end_date IS NULL
		 ORDER BY e.start_date, e.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employments: %w", err)
	}
	defer rows.Close()

	var details []*models.EmploymentDetail
	for rows.Next() {
		detail := &models.EmploymentDetail{}
		employment, err := scanEmployment(rows, &detail.PositionName, &detail.CompanyID, &detail.CompanyName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employment: %w", err)
		}
		detail.Employment = *employment
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employments: %w", err)
	}

	return details, nil
}

// requireAffected turns a zero-row write into storage.ErrNotFound.
func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
