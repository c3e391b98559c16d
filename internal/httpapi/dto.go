package httpapi

import (
	"fmt"
	"time"

	"github.com/mmynk/timecard/internal/models"
	"github.com/mmynk/timecard/internal/service"
)

// ShiftJSON is the wire form of a shift.
type ShiftJSON struct {
	ID           string     `json:"id"`
	EmploymentID string     `json:"employment_id"`
	Date         string     `json:"date"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Description  string     `json:"description"`
	Notes        string     `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	HoursWorked  *float64   `json:"hours_worked,omitempty"`
}

// EmploymentJSON is the wire form of an active employment with its display joins.
type EmploymentJSON struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	PositionID    string           `json:"position_id"`
	PositionName  string           `json:"position_name"`
	CompanyID     string           `json:"company_id"`
	CompanyName   string           `json:"company_name"`
	StartDate     string           `json:"start_date"`
	EndDate       *string          `json:"end_date"`
	RoundMode     models.RoundMode `json:"round_mode"`
	RoundInterval *int             `json:"round_interval"`
}

// DashboardJSON is the wire form of models.DashboardView.
type DashboardJSON struct {
	Shifts            []ShiftJSON        `json:"shifts"`
	ActiveEmployments []EmploymentJSON   `json:"active_employments"`
	TotalWeeklyHours  map[string]float64 `json:"total_weekly_hours"`
	DailyHours        map[string]float64 `json:"daily_hours"`
	CurrentShifts     []ShiftJSON        `json:"current_shifts"`
}

// ShiftRequest is the body of manual shift create and edit requests.
// For edits, absent fields are left unchanged and "end_time": null reopens the shift.
type ShiftRequest struct {
	Date        *string    `json:"date"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     Nullable   `json:"end_time"`
	Description *string    `json:"description"`
	Notes       *string    `json:"notes"`
}

// Nullable distinguishes an absent JSON field from an explicit null.
type Nullable struct {
	Set   bool
	Value *time.Time
}

func (n *Nullable) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var t time.Time
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	n.Value = &t
	return nil
}

func toShiftJSON(s *models.Shift) ShiftJSON {
	return ShiftJSON{
		ID:           s.ID,
		EmploymentID: s.EmploymentID,
		Date:         s.DateString(),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Description:  s.Description,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func toShiftWithHoursJSON(sh service.ShiftWithHours) ShiftJSON {
	out := toShiftJSON(sh.Shift)
	hours := sh.Hours
	out.HoursWorked = &hours
	return out
}

func toShiftsJSON(shifts []*models.Shift) []ShiftJSON {
	out := make([]ShiftJSON, len(shifts))
	for i, s := range shifts {
		out[i] = toShiftJSON(s)
	}
	return out
}

func toEmploymentJSON(d *models.EmploymentDetail) EmploymentJSON {
	out := EmploymentJSON{
		ID:           d.ID,
		UserID:       d.UserID,
		PositionID:   d.PositionID,
		PositionName: d.PositionName,
		CompanyID:    d.CompanyID,
		CompanyName:  d.CompanyName,
		StartDate:    d.StartDate.Format(models.DateLayout),
		RoundMode:    d.Rounding.Mode(),
	}
	if d.EndDate != nil {
		end := d.EndDate.Format(models.DateLayout)
		out.EndDate = &end
	}
	if interval := d.Rounding.CustomInterval(); interval > 0 {
		out.RoundInterval = &interval
	}
	return out
}

func toDashboardJSON(v *models.DashboardView) DashboardJSON {
	employments := make([]EmploymentJSON, len(v.ActiveEmployments))
	for i, d := range v.ActiveEmployments {
		employments[i] = toEmploymentJSON(d)
	}
	return DashboardJSON{
		Shifts:            toShiftsJSON(v.Shifts),
		ActiveEmployments: employments,
		TotalWeeklyHours:  v.TotalWeeklyHours,
		DailyHours:        v.DailyHours,
		CurrentShifts:     toShiftsJSON(v.CurrentShifts),
	}
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(models.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// toShiftInput converts a create request.
func (r *ShiftRequest) toShiftInput(loc *time.Location) (service.ShiftInput, error) {
	in := service.ShiftInput{EndTime: r.EndTime.Value}
	if r.StartTime != nil {
		in.StartTime = *r.StartTime
	}
	if r.Date != nil {
		d, err := parseDate(*r.Date, loc)
		if err != nil {
			return in, err
		}
		in.Date = &d
	}
	if r.Description != nil {
		in.Description = *r.Description
	}
	if r.Notes != nil {
		in.Notes = *r.Notes
	}
	return in, nil
}

// toShiftUpdate converts an edit request.
func (r *ShiftRequest) toShiftUpdate(loc *time.Location) (service.ShiftUpdate, error) {
	up := service.ShiftUpdate{
		StartTime:   r.StartTime,
		Description: r.Description,
		Notes:       r.Notes,
	}
	if r.EndTime.Set {
		if r.EndTime.Value == nil {
			up.ClearEndTime = true
		} else {
			up.EndTime = r.EndTime.Value
		}
	}
	if r.Date != nil {
		d, err := parseDate(*r.Date, loc)
		if err != nil {
			return up, err
		}
		up.Date = &d
	}
	return up, nil
}
