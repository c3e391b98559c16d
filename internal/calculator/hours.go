// Package calculator turns shift timestamps into billable hours.
//
// Everything here is a pure function of its arguments; the current time is always
// passed in explicitly.
package calculator

import (
	"math"
	"time"

	"github.com/mmynk/timecard/internal/models"
)

// RoundHours converts the time between start and end into hours under the given policy.
//
// Algorithm:
//   - elapsed = max(0, end - start) in fractional minutes
//   - exact: hours = elapsed / 60
//   - otherwise: minutes = roundHalfUp(elapsed / interval) × interval, hours = minutes / 60
//
// The result is rounded to two decimal places. With quarter_hour, 7.5 minutes past a
// boundary rounds up and anything less rounds down; half_hour and custom(k) use
// 15 and k/2 minutes respectively.
func RoundHours(start, end time.Time, policy models.RoundPolicy) float64 {
	elapsed := end.Sub(start).Minutes()
	if elapsed < 0 {
		elapsed = 0
	}

	interval := policy.Interval()
	if interval <= 0 {
		return round2(elapsed / 60)
	}

	step := float64(interval)
	snapped := math.Round(elapsed/step) * step
	return round2(snapped / 60)
}

// HoursWorked returns the rounded hours of a shift. An active shift is measured up
// to now, giving its hours so far.
func HoursWorked(shift *models.Shift, policy models.RoundPolicy, now time.Time) float64 {
	end := now
	if shift.EndTime != nil {
		end = *shift.EndTime
	}
	return RoundHours(shift.StartTime, end, policy)
}

// ClosedHours is HoursWorked for contexts that only count finished shifts:
// an active shift contributes 0.
func ClosedHours(shift *models.Shift, policy models.RoundPolicy) float64 {
	if shift.EndTime == nil {
		return 0
	}
	return RoundHours(shift.StartTime, *shift.EndTime, policy)
}

// round2 rounds to two decimal places, halves away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
