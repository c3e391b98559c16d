package models

// DashboardView summarizes a user's active employments and their shifts.
// Rebuilt on every request.
type DashboardView struct {
	// Shifts are all shifts of the user's active employments.
	Shifts []*Shift

	// ActiveEmployments are the employments without an end date.
	ActiveEmployments []*EmploymentDetail

	// TotalWeeklyHours maps employment ID to rounded hours in the current week.
	TotalWeeklyHours map[string]float64

	// DailyHours maps "<YYYY-MM-DD>_<employmentID>" to rounded hours on that day.
	DailyHours map[string]float64

	// CurrentShifts are the shifts still open across all active employments.
	CurrentShifts []*Shift
}
