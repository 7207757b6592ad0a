package scheduling

import (
	"fmt"
	"strings"

	"glowdesk/models"
	"glowdesk/utils"
)

// Interval is a half-open [Start, End) range in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

// Empty reports whether the interval contains no time at all.
func (iv Interval) Empty() bool {
	return iv.End <= iv.Start
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && iv.End > other.Start
}

// Contains reports whether other lies entirely within iv.
func (iv Interval) Contains(other Interval) bool {
	return iv.Start <= other.Start && other.End <= iv.End
}

// ResolveWorkingHours derives an employee's open interval for a canonical
// date. A per-employee availability override wins over the place's weekly
// timings; if neither yields an open window the returned interval is empty,
// which callers surface as ErrClosed.
func ResolveWorkingHours(place *models.Place, employee *models.Employee, date string) (Interval, error) {
	weekday, err := utils.WeekdayOf(date)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	dayName := strings.ToLower(weekday.String())

	if employee != nil {
		if window, ok := employee.Availability[dayName]; ok {
			return parseClockInterval(window.Start, window.End)
		}
	}

	timing, ok := place.Timings[dayName]
	if !ok || !timing.IsOpen {
		return Interval{}, nil
	}
	return parseClockInterval(timing.Open, timing.Close)
}

func parseClockInterval(open, close string) (Interval, error) {
	start, err := utils.ToMinutes(open)
	if err != nil {
		return Interval{}, fmt.Errorf("bad opening time: %w", err)
	}
	end, err := utils.ToMinutes(close)
	if err != nil {
		return Interval{}, fmt.Errorf("bad closing time: %w", err)
	}
	return Interval{Start: start, End: end}, nil
}
