// Package models defines the domain models for timecard.
//
// # Ownership
//
// A user holds Employments (a tenure in a Position at a Company). Each Employment
// exclusively owns its Shifts; deleting an employment deletes its shifts.
//
// # Active state
//
// Nil pointers mark open-ended records:
//   - Employment.EndDate == nil: the employment is active
//   - Shift.EndTime == nil: the shift is active (the user is clocked in)
//
// At most one shift per employment may be active at any time. The store enforces
// this with a unique index; the services translate violations into apperr values.
//
// # Derived views
//
// DashboardView is never persisted. It is rebuilt from employments and shifts on
// every request.
package models
