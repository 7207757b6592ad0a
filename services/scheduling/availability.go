package scheduling

import (
	"sort"
	"time"

	"glowdesk/utils"
)

// SameDayLeadTime is the minimum notice for bookings starting today: start
// times at or before now+15m are never offered.
const SameDayLeadTime = 15 // minutes

// ComputeFreeSlots returns the bookable start times, as "hh:mm" strings in
// ascending order, for a service of the given duration inside the open
// interval. Existing bookings act as walls: each gap between them is packed
// with a fixed grid of full-duration slots stepping by the service duration
// from the gap's left edge. The result is a pure function of its inputs.
//
// When now falls on the queried date, starts at or before now+SameDayLeadTime
// are filtered out. An empty interval yields no slots.
func ComputeFreeSlots(interval Interval, booked []Interval, serviceDuration int, now time.Time, date string) []string {
	if interval.Empty() || serviceDuration <= 0 {
		return nil
	}

	sorted := make([]Interval, len(booked))
	copy(sorted, booked)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	minStart := -1
	if utils.SameCanonicalDay(now, date) {
		minStart = now.Hour()*60 + now.Minute() + SameDayLeadTime
	}

	var slots []string
	emit := func(from, until int) {
		for start := from; start+serviceDuration <= until; start += serviceDuration {
			if start <= minStart {
				continue
			}
			slots = append(slots, utils.ToClock(start))
		}
	}

	cursor := interval.Start
	for _, b := range sorted {
		if b.Empty() {
			continue
		}
		if cursor < b.Start {
			emit(cursor, min(b.Start, interval.End))
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < interval.End {
		emit(cursor, interval.End)
	}
	return slots
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
