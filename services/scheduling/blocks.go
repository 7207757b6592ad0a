package scheduling

import "glowdesk/models"

// ServiceBlock is one service's computed [Start, End) on its employee's
// timeline within a single appointment.
type ServiceBlock struct {
	ServiceID  string
	EmployeeID string
	Start      int
	End        int
}

// EmployeeWindow is the coarsened occupied window of one employee within one
// appointment: [min start, max end) across that employee's service blocks.
// Conflict checks against other appointments use this window, not the
// individual blocks, so the coarsening policy lives here and nowhere else.
type EmployeeWindow struct {
	EmployeeID string
	Start      int
	End        int
	ServiceIDs []string
}

// Duration returns the window's span in minutes.
func (w EmployeeWindow) Duration() int {
	return w.End - w.Start
}

// Interval returns the window as a half-open interval.
func (w EmployeeWindow) Interval() Interval {
	return Interval{Start: w.Start, End: w.End}
}

// BuildBlocks expands an ordered service list into per-service blocks on one
// global timeline: block N starts where block N-1 ends, regardless of which
// employee performs it. Services are never run in parallel chairs.
func BuildBlocks(services []models.AppointmentService, requestedStart int) []ServiceBlock {
	blocks := make([]ServiceBlock, 0, len(services))
	cursor := requestedStart
	for _, svc := range services {
		blocks = append(blocks, ServiceBlock{
			ServiceID:  svc.ServiceID,
			EmployeeID: svc.EmployeeID,
			Start:      cursor,
			End:        cursor + svc.Duration,
		})
		cursor += svc.Duration
	}
	return blocks
}

// OccupiedWindows collapses service blocks into one window per employee, in
// first-appearance order.
func OccupiedWindows(blocks []ServiceBlock) []EmployeeWindow {
	index := make(map[string]int, len(blocks))
	var windows []EmployeeWindow
	for _, b := range blocks {
		i, ok := index[b.EmployeeID]
		if !ok {
			index[b.EmployeeID] = len(windows)
			windows = append(windows, EmployeeWindow{
				EmployeeID: b.EmployeeID,
				Start:      b.Start,
				End:        b.End,
				ServiceIDs: []string{b.ServiceID},
			})
			continue
		}
		if b.Start < windows[i].Start {
			windows[i].Start = b.Start
		}
		if b.End > windows[i].End {
			windows[i].End = b.End
		}
		windows[i].ServiceIDs = append(windows[i].ServiceIDs, b.ServiceID)
	}
	return windows
}

// AppointmentWindows recomputes the occupied windows of a stored appointment
// from its service lines and start time.
func AppointmentWindows(appt *models.Appointment) []EmployeeWindow {
	return OccupiedWindows(BuildBlocks(appt.Services, appt.StartTime))
}
