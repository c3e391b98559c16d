package models

import "time"

// Employment represents a user's tenure in a position.
type Employment struct {
	// ID is the unique identifier for the employment (UUID format).
	ID string

	// UserID is the user holding the employment. Supplied by the auth layer, never
	// created here.
	UserID string

	// PositionID is the position the user holds.
	PositionID string

	// StartDate is the first calendar day of the tenure.
	StartDate time.Time

	// EndDate is the last calendar day of the tenure, nil while the employment is active.
	EndDate *time.Time

	// Rounding is the policy applied to every shift of this employment.
	Rounding RoundPolicy

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the employment has no end date.
func (e *Employment) Active() bool {
	return e.EndDate == nil
}

// EmploymentDetail is an employment joined with its position and company for display.
type EmploymentDetail struct {
	Employment
	PositionName string
	CompanyID    string
	CompanyName  string
}
