// Package proration computes active-day windows and prorated amounts
// for contracts that only partially cover a billing month.
package proration

import (
	"math"
	"time"
)

// Early-month starts are billed in full: a contract that begins on or
// before this day of the month and runs through month end is not prorated.
const fullChargeStartDay = 5

// Result describes how a contract's active span maps onto a period.
type Result struct {
	ActiveDays     int
	TotalDays      int
	IsProrated     bool
	EffectiveStart time.Time
	EffectiveEnd   time.Time
}

// Compute clamps the entity's active span to the period and derives the
// active-day count. entityEnd may be nil for open-ended contracts.
func Compute(periodStart, periodEnd time.Time, totalDays int, entityStart time.Time, entityEnd *time.Time) Result {
	effectiveStart := entityStart
	if effectiveStart.Before(periodStart) {
		effectiveStart = periodStart
	}

	effectiveEnd := periodEnd
	if entityEnd != nil && entityEnd.Before(periodEnd) {
		effectiveEnd = *entityEnd
	}

	activeDays := int(effectiveEnd.Sub(effectiveStart).Hours()/24) + 1
	if activeDays < 0 {
		activeDays = 0
	}

	result := Result{
		ActiveDays:     activeDays,
		TotalDays:      totalDays,
		EffectiveStart: effectiveStart,
		EffectiveEnd:   effectiveEnd,
	}

	if effectiveStart.Day() <= fullChargeStartDay && effectiveEnd.Equal(periodEnd) {
		return result
	}

	result.IsProrated = activeDays < totalDays
	return result
}

// Amount returns the charge for fullPrice under this result. Prorated
// charges round half-up to the nearest whole unit.
func (r Result) Amount(fullPrice int64) int64 {
	if !r.IsProrated || r.TotalDays == 0 {
		return fullPrice
	}
	return int64(math.Floor(float64(fullPrice)/float64(r.TotalDays)*float64(r.ActiveDays) + 0.5))
}

// MonthBounds returns the first day, last day and day count of a month in UTC.
func MonthBounds(year int, month time.Month) (time.Time, time.Time, int) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end, end.Day()
}
