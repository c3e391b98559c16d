package models

import "time"

// DateLayout is the format of Shift.Date in storage and API payloads.
const DateLayout = "2006-01-02"

// Shift is a single work session belonging to an employment.
type Shift struct {
	// ID is the unique identifier for the shift (UUID format).
	ID string

	// EmploymentID is the owning employment.
	EmploymentID string

	// Date is the calendar day the shift is booked on. Only its year, month and
	// day are meaningful; weekly and daily totals group by them.
	Date time.Time

	// StartTime is when the user clocked in.
	StartTime time.Time

	// EndTime is when the user clocked out, nil while the shift is active.
	// When set it must be after StartTime.
	EndTime *time.Time

	Description string
	Notes       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the shift is still open.
func (s *Shift) Active() bool {
	return s.EndTime == nil
}

// DateString returns Date formatted with DateLayout.
func (s *Shift) DateString() string {
	return s.Date.Format(DateLayout)
}
