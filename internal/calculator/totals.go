package calculator

import (
	"time"

	"github.com/mmynk/timecard/internal/models"
)

// WeekBounds returns the Sunday-to-Sunday week containing ref in loc.
// start is Sunday 00:00 and end is the following Sunday 00:00 (exclusive).
func WeekBounds(ref time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := ref.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	start = day.AddDate(0, 0, -int(day.Weekday()))
	end = start.AddDate(0, 0, 7)
	return start, end
}

// WeeklyTotals sums rounded hours per employment for shifts booked in the week
// containing ref. Every employment passed in gets a key, 0 when it has no shifts that
// week. Shifts of unknown employments are skipped. Active shifts count their hours
// so far at now.
func WeeklyTotals(employments []*models.Employment, shifts []*models.Shift, ref, now time.Time, loc *time.Location) map[string]float64 {
	policies := policyIndex(employments)
	weekStart, weekEnd := WeekBounds(ref, loc)
	first, last := civilDay(weekStart), civilDay(weekEnd)

	totals := make(map[string]float64, len(employments))
	for _, e := range employments {
		totals[e.ID] = 0
	}

	for _, shift := range shifts {
		policy, ok := policies[shift.EmploymentID]
		if !ok {
			continue
		}
		day := civilDay(shift.Date)
		if day.Before(first) || !day.Before(last) {
			continue
		}
		totals[shift.EmploymentID] += HoursWorked(shift, policy, now)
	}

	for id, hours := range totals {
		totals[id] = round2(hours)
	}
	return totals
}

// DailyTotals sums rounded hours per (date, employment). Keys have the form
// "<YYYY-MM-DD>_<employmentID>". Shifts of unknown employments are skipped.
func DailyTotals(employments []*models.Employment, shifts []*models.Shift, now time.Time) map[string]float64 {
	policies := policyIndex(employments)

	totals := make(map[string]float64)
	for _, shift := range shifts {
		policy, ok := policies[shift.EmploymentID]
		if !ok {
			continue
		}
		totals[DailyKey(shift.Date, shift.EmploymentID)] += HoursWorked(shift, policy, now)
	}

	for key, hours := range totals {
		totals[key] = round2(hours)
	}
	return totals
}

// DailyKey builds the DailyTotals key for a date and employment.
func DailyKey(date time.Time, employmentID string) string {
	return date.Format(models.DateLayout) + "_" + employmentID
}

// CurrentShifts returns the shifts that are still open, preserving order.
func CurrentShifts(shifts []*models.Shift) []*models.Shift {
	current := make([]*models.Shift, 0)
	for _, shift := range shifts {
		if shift.Active() {
			current = append(current, shift)
		}
	}
	return current
}

func policyIndex(employments []*models.Employment) map[string]models.RoundPolicy {
	policies := make(map[string]models.RoundPolicy, len(employments))
	for _, e := range employments {
		policies[e.ID] = e.Rounding
	}
	return policies
}

// civilDay drops the location so dates from different sources compare by calendar day.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
