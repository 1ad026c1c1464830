// Package schedule holds the pure overlap arithmetic of the booking
// core. All intervals are half-open, so back-to-back reservations that
// touch at a boundary do not conflict.
package schedule

import "github.com/Velimir1992/parkbooking/internal/domain"

func Overlaps(a, b domain.Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// IsFree reports whether candidate fits into the schedule described by
// existing without touching any reserved span.
func IsFree(candidate domain.Interval, existing []domain.Interval) bool {
	_, conflict := FirstConflict(candidate, existing)
	return !conflict
}

// FirstConflict returns the first existing interval that overlaps the
// candidate, so callers can tell the user which span is taken.
func FirstConflict(candidate domain.Interval, existing []domain.Interval) (domain.Interval, bool) {
	for _, iv := range existing {
		if Overlaps(candidate, iv) {
			return iv, true
		}
	}
	return domain.Interval{}, false
}
