// Package views computes the smart lists and counts shown by the
// presentation layer.
package views

import (
	"strings"
	"time"

	"gtodo/internal/service"
)

// Smart view names. Any other view name is treated as a list id.
const (
	Today     = "today"
	Tomorrow  = "tomorrow"
	Yesterday = "yesterday"
	All       = "all"
	Scheduled = "scheduled"
	Completed = "completed"
)

// Smart lists the smart views in sidebar order.
var Smart = []string{Tomorrow, Today, Yesterday, All, Scheduled, Completed}

// IsSmart reports whether view is a built-in view rather than a list id.
func IsSmart(view string) bool {
	switch view {
	case Today, Tomorrow, Yesterday, All, Scheduled, Completed:
		return true
	}
	return false
}

// Title returns the display title of a smart view.
func Title(view string) string {
	if view == "" {
		return ""
	}
	return strings.ToUpper(view[:1]) + view[1:]
}

// Dates holds the local calendar dates views are evaluated against.
type Dates struct {
	Today     service.Date
	Tomorrow  service.Date
	Yesterday service.Date
}

// DatesAt returns the dates relative to now in now's location.
func DatesAt(now time.Time) Dates {
	return Dates{
		Today:     service.DateOf(now),
		Tomorrow:  service.DateOf(now.AddDate(0, 0, 1)),
		Yesterday: service.DateOf(now.AddDate(0, 0, -1)),
	}
}

// Filter returns the predicate selecting the tasks shown in view.
// hideCompleted affects only the all view and list views.
func Filter(view string, d Dates, hideCompleted bool) func(service.Task) bool {
	switch view {
	case Today:
		return func(t service.Task) bool { return t.DueDate == d.Today && !t.Completed }
	case Tomorrow:
		return func(t service.Task) bool { return t.DueDate == d.Tomorrow && !t.Completed }
	case Yesterday:
		return func(t service.Task) bool { return t.DueDate == d.Yesterday }
	case Scheduled:
		return func(t service.Task) bool { return !t.DueDate.IsZero() && !t.Completed }
	case Completed:
		return func(t service.Task) bool { return t.Completed }
	case All:
		return func(t service.Task) bool { return !t.Completed || !hideCompleted }
	default:
		return func(t service.Task) bool {
			return t.ListID == view && (!t.Completed || !hideCompleted)
		}
	}
}

// Count returns the badge count for view. Unlike Filter, the all view and
// list views count open tasks only.
func Count(tasks []service.Task, view string, d Dates) int {
	pred := Filter(view, d, true)
	n := 0
	for _, t := range tasks {
		if pred(t) {
			n++
		}
	}
	return n
}

// Apply returns the tasks matching pred, preserving order.
func Apply(tasks []service.Task, pred func(service.Task) bool) []service.Task {
	var out []service.Task
	for _, t := range tasks {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}
