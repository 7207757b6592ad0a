package scheduling

import (
	"context"
	"errors"
	"fmt"

	appointmentRepo "glowdesk/database/repository/appointment"
	employeeRepo "glowdesk/database/repository/employee"
	placeRepo "glowdesk/database/repository/place"
	"glowdesk/models"
	"glowdesk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetAvailability lists bookable start times for one service, employee and date.
func (e *DefaultSchedulingEngine) GetAvailability(ctx context.Context, query models.AvailabilityQuery) ([]string, error) {
	date, err := utils.NormalizeDate(query.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	place, err := e.Reference.GetPlace(ctx, query.PlaceID)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	svc, ok := place.ServiceByID(query.ServiceID)
	if !ok {
		return nil, fmt.Errorf("%w: service %s", ErrNotFound, query.ServiceID)
	}
	if !svc.IsActive {
		return nil, invalidRequest("service %s is not active", svc.ID)
	}
	if svc.Duration <= 0 {
		return nil, invalidRequest("service %s has non-positive duration", svc.ID)
	}

	employeeID := query.EmployeeID
	if employeeID == "" {
		employeeID = place.MasterEmployeeID
	}
	if employeeID == "" {
		return nil, invalidRequest("no employee requested and place has no master employee")
	}
	employee, err := e.Reference.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	if !employee.IsActive {
		return nil, invalidRequest("employee %s is not active", employeeID)
	}

	hours, err := ResolveWorkingHours(place, employee, date)
	if err != nil {
		return nil, err
	}
	if hours.Empty() {
		return nil, ErrClosed
	}

	booked, err := e.bookedIntervals(ctx, place.ID, date, employeeID, "")
	if err != nil {
		return nil, err
	}
	return ComputeFreeSlots(hours, booked, svc.Duration, e.now(), date), nil
}

// Book turns a booking request into a confirmed appointment plus slot index
// entries. Validation always precedes mutation: on any rejection nothing has
// been written.
func (e *DefaultSchedulingEngine) Book(ctx context.Context, req models.BookingRequest) (*models.Appointment, error) {
	// Malformed input is rejected before any lookup occurs.
	if len(req.Services) == 0 {
		return nil, invalidRequest("at least one service is required")
	}
	if req.CustomerID == "" && req.WalkInCustomer == "" {
		return nil, invalidRequest("a customer id or walk-in customer name is required")
	}
	date, err := utils.NormalizeDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	startTime, err := utils.ToMinutes(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	mode := req.Mode
	if mode == "" {
		mode = models.BookingModeOnline
		if req.WalkInCustomer != "" {
			mode = models.BookingModeWalkin
		}
	}

	place, err := e.Reference.GetPlace(ctx, req.PlaceID)
	if err != nil {
		return nil, mapLookupErr(err)
	}

	lines, employees, err := e.resolveServiceLines(ctx, place, req.Services)
	if err != nil {
		return nil, err
	}

	blocks := BuildBlocks(lines, startTime)
	windows := OccupiedWindows(blocks)
	if err := e.checkWithinWorkingHours(place, employees, windows, date); err != nil {
		return nil, err
	}

	totalDuration, totalAmount := 0, 0.0
	for _, line := range lines {
		totalDuration += line.Duration
		totalAmount += line.Price
	}

	appt := &models.Appointment{
		ID:                uuid.New().String(),
		PlaceID:           place.ID,
		PlaceType:         place.Type,
		CustomerID:        req.CustomerID,
		WalkInCustomer:    req.WalkInCustomer,
		PrimaryEmployeeID: lines[0].EmployeeID,
		Services:          lines,
		Date:              date,
		StartTime:         startTime,
		TotalDuration:     totalDuration,
		TotalAmount:       totalAmount,
		Status:            models.AppointmentStatusBooked,
		PaymentStatus:     "pending",
		Mode:              mode,
		CreatedAt:         e.now(),
	}

	// Hold the place-day lock across validate+write so a concurrent request
	// cannot observe the same free state and also succeed.
	unlock := e.locks.Lock(place.ID, date)
	defer unlock()

	if err := e.Validator.Validate(ctx, place.ID, date, windows, ""); err != nil {
		return nil, err
	}

	if err := e.Appointments.CreateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	if err := e.SlotIndex.PutSlots(ctx, place.ID, date, slotEntries(appt.ID, windows)); err != nil {
		// Close the transient divergence within this request: void the
		// appointment so the index and the record agree again.
		if cancelErr := e.Appointments.SetStatus(ctx, appt.ID, models.AppointmentStatusCancelled); cancelErr != nil {
			utils.GetLogger().Error("failed to void appointment after slot write failure",
				zap.String("appointmentID", appt.ID), zap.Error(cancelErr))
		}
		_ = e.SlotIndex.DeleteSlotsByAppointment(ctx, place.ID, date, appt.ID)
		return nil, fmt.Errorf("failed to index appointment slots: %w", err)
	}

	publishEvent(ctx, e.Events, models.SchedulingEvent{
		Type:          models.EventAppointmentBooked,
		AppointmentID: appt.ID,
		PlaceID:       place.ID,
		EmployeeIDs:   appt.EmployeeIDs(),
		Date:          date,
		StartTime:     startTime,
	})
	e.scheduleReminder(ctx, appt)

	return appt, nil
}

// Cancel flips a booked appointment to cancelled and clears its slot entries.
func (e *DefaultSchedulingEngine) Cancel(ctx context.Context, callerID, appointmentID string) error {
	appt, err := e.Appointments.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return mapLookupErr(err)
	}
	place, err := e.Reference.GetPlace(ctx, appt.PlaceID)
	if err != nil {
		return mapLookupErr(err)
	}
	if !authorized(callerID, appt, place) {
		return ErrForbidden
	}

	// Status and schedule are only trustworthy under the day lock: a
	// concurrent reschedule may have moved the appointment since the fetch.
	appt, unlock, err := e.lockAppointmentDay(ctx, appt)
	if err != nil {
		return err
	}
	defer unlock()

	if appt.Status == models.AppointmentStatusCancelled {
		return ErrAlreadyCancelled
	}
	if err := e.checkLeadTime(appt, ErrTooLateToCancel); err != nil {
		return err
	}

	// Slots go first: the one permitted transient inconsistency is an
	// appointment still booked with its index already cleared, and it closes
	// with the status write below.
	if err := e.SlotIndex.DeleteSlotsByAppointment(ctx, appt.PlaceID, appt.Date, appt.ID); err != nil {
		return fmt.Errorf("failed to clear slot entries: %w", err)
	}
	if err := e.Appointments.SetStatus(ctx, appt.ID, models.AppointmentStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}

	publishEvent(ctx, e.Events, models.SchedulingEvent{
		Type:          models.EventAppointmentCancelled,
		AppointmentID: appt.ID,
		PlaceID:       appt.PlaceID,
		EmployeeIDs:   appt.EmployeeIDs(),
		Date:          appt.Date,
		StartTime:     appt.StartTime,
	})
	return nil
}

// Reschedule moves a booked appointment to a new date and start time. The
// prior date and time are overwritten on the record; the emitted event is the
// only place they survive.
func (e *DefaultSchedulingEngine) Reschedule(ctx context.Context, callerID, appointmentID string, req models.RescheduleRequest) (*models.Appointment, error) {
	appt, err := e.Appointments.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	place, err := e.Reference.GetPlace(ctx, appt.PlaceID)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	if !authorized(callerID, appt, place) {
		return nil, ErrForbidden
	}

	newDate, err := utils.NormalizeDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	newStart, err := utils.ToMinutes(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	blocks := BuildBlocks(appt.Services, newStart)
	windows := OccupiedWindows(blocks)

	employees, err := e.fetchEmployees(ctx, windows)
	if err != nil {
		return nil, err
	}
	if err := e.checkWithinWorkingHours(place, employees, windows, newDate); err != nil {
		return nil, err
	}

	// Status and schedule are only trustworthy under the day locks: a
	// concurrent cancel or reschedule may have changed them since the fetch.
	appt, unlock, err := e.lockAppointmentDayPair(ctx, appt, newDate)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if appt.Status == models.AppointmentStatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	// Lead time is checked against the original start, not the new one.
	if err := e.checkLeadTime(appt, ErrTooLateToReschedule); err != nil {
		return nil, err
	}

	oldDate, oldStart := appt.Date, appt.StartTime
	oldWindows := AppointmentWindows(appt)

	// The appointment's own prior slots must not veto its new position.
	if err := e.Validator.Validate(ctx, appt.PlaceID, newDate, windows, appt.ID); err != nil {
		return nil, err
	}

	if err := e.SlotIndex.DeleteSlotsByAppointment(ctx, appt.PlaceID, oldDate, appt.ID); err != nil {
		return nil, fmt.Errorf("failed to clear old slot entries: %w", err)
	}
	if err := e.SlotIndex.PutSlots(ctx, appt.PlaceID, newDate, slotEntries(appt.ID, windows)); err != nil {
		e.restoreSlots(ctx, appt.ID, appt.PlaceID, oldDate, oldWindows)
		return nil, fmt.Errorf("failed to index rescheduled slots: %w", err)
	}
	rescheduledAt := e.now()
	if err := e.Appointments.UpdateSchedule(ctx, appt.ID, newDate, newStart, rescheduledAt); err != nil {
		_ = e.SlotIndex.DeleteSlotsByAppointment(ctx, appt.PlaceID, newDate, appt.ID)
		e.restoreSlots(ctx, appt.ID, appt.PlaceID, oldDate, oldWindows)
		return nil, fmt.Errorf("failed to update appointment schedule: %w", err)
	}

	appt.Date = newDate
	appt.StartTime = newStart
	appt.RescheduledAt = &rescheduledAt

	publishEvent(ctx, e.Events, models.SchedulingEvent{
		Type:          models.EventAppointmentRescheduled,
		AppointmentID: appt.ID,
		PlaceID:       appt.PlaceID,
		EmployeeIDs:   appt.EmployeeIDs(),
		Date:          newDate,
		StartTime:     newStart,
		OldDate:       oldDate,
		OldStartTime:  oldStart,
	})
	e.scheduleReminder(ctx, appt)

	return appt, nil
}

// resolveServiceLines turns requested service selections into priced,
// staff-bound appointment lines, validating every referenced service and
// employee along the way.
func (e *DefaultSchedulingEngine) resolveServiceLines(
	ctx context.Context,
	place *models.Place,
	selections []models.ServiceSelection,
) ([]models.AppointmentService, map[string]*models.Employee, error) {
	lines := make([]models.AppointmentService, 0, len(selections))
	employees := make(map[string]*models.Employee)

	for _, sel := range selections {
		svc, ok := place.ServiceByID(sel.ServiceID)
		if !ok {
			return nil, nil, fmt.Errorf("%w: service %s", ErrNotFound, sel.ServiceID)
		}
		if !svc.IsActive {
			return nil, nil, invalidRequest("service %s is not active", svc.ID)
		}
		if svc.Duration <= 0 {
			return nil, nil, invalidRequest("service %s has non-positive duration", svc.ID)
		}

		employeeID := sel.EmployeeID
		if employeeID == "" {
			employeeID = place.MasterEmployeeID
		}
		if employeeID == "" {
			return nil, nil, invalidRequest("service %s has no employee and place has no master employee", svc.ID)
		}
		if !place.HasEmployee(employeeID) {
			return nil, nil, invalidRequest("employee %s is not linked to place %s", employeeID, place.ID)
		}

		if _, seen := employees[employeeID]; !seen {
			employee, err := e.Reference.GetEmployee(ctx, employeeID)
			if err != nil {
				return nil, nil, mapLookupErr(err)
			}
			if !employee.IsActive {
				return nil, nil, invalidRequest("employee %s is not active", employeeID)
			}
			employees[employeeID] = employee
		}

		lines = append(lines, models.AppointmentService{
			ServiceID:  svc.ID,
			EmployeeID: employeeID,
			Price:      svc.Price,
			Duration:   svc.Duration,
		})
	}
	return lines, employees, nil
}

// fetchEmployees loads the employees behind a window set (used by reschedule,
// where the service lines already exist).
func (e *DefaultSchedulingEngine) fetchEmployees(ctx context.Context, windows []EmployeeWindow) (map[string]*models.Employee, error) {
	employees := make(map[string]*models.Employee, len(windows))
	for _, w := range windows {
		employee, err := e.Reference.GetEmployee(ctx, w.EmployeeID)
		if err != nil {
			return nil, mapLookupErr(err)
		}
		employees[w.EmployeeID] = employee
	}
	return employees, nil
}

// checkWithinWorkingHours rejects any window falling outside its employee's
// open interval for the date.
func (e *DefaultSchedulingEngine) checkWithinWorkingHours(
	place *models.Place,
	employees map[string]*models.Employee,
	windows []EmployeeWindow,
	date string,
) error {
	for _, w := range windows {
		hours, err := ResolveWorkingHours(place, employees[w.EmployeeID], date)
		if err != nil {
			return err
		}
		if hours.Empty() || !hours.Contains(w.Interval()) {
			return ErrClosed
		}
	}
	return nil
}

// bookedIntervals collects every interval occupying an employee's timeline on
// a date: occupied windows of active appointments plus live slot entries.
func (e *DefaultSchedulingEngine) bookedIntervals(ctx context.Context, placeID, date, employeeID, excludeAppointmentID string) ([]Interval, error) {
	active, err := e.Appointments.GetActiveAppointments(ctx, placeID, date)
	if err != nil {
		return nil, fmt.Errorf("fetching active appointments: %w", err)
	}
	slots, err := e.SlotIndex.GetSlots(ctx, placeID, date)
	if err != nil {
		return nil, fmt.Errorf("fetching slot index: %w", err)
	}

	var intervals []Interval
	for i := range active {
		if active[i].ID == excludeAppointmentID {
			continue
		}
		for _, w := range AppointmentWindows(&active[i]) {
			if w.EmployeeID == employeeID {
				intervals = append(intervals, w.Interval())
			}
		}
	}
	for _, s := range slots {
		if s.AppointmentID == excludeAppointmentID || s.EmployeeID != employeeID {
			continue
		}
		if s.Status == models.AppointmentStatusCancelled {
			continue
		}
		intervals = append(intervals, Interval{Start: s.StartTime, End: s.EndTime})
	}
	return intervals, nil
}

// lockAppointmentDay takes the day lock for the appointment's current date
// and re-reads the record, retrying until the date observed under the lock is
// the one that was locked. Without the re-read, a reschedule completing
// between the initial fetch and the lock would leave the caller mutating the
// wrong day's index.
func (e *DefaultSchedulingEngine) lockAppointmentDay(ctx context.Context, appt *models.Appointment) (*models.Appointment, func(), error) {
	for {
		unlock := e.locks.Lock(appt.PlaceID, appt.Date)
		fresh, err := e.Appointments.GetAppointmentByID(ctx, appt.ID)
		if err != nil {
			unlock()
			return nil, nil, mapLookupErr(err)
		}
		if fresh.Date == appt.Date {
			return fresh, unlock, nil
		}
		unlock()
		appt = fresh
	}
}

// lockAppointmentDayPair is lockAppointmentDay over the (current, target)
// date pair a reschedule needs.
func (e *DefaultSchedulingEngine) lockAppointmentDayPair(ctx context.Context, appt *models.Appointment, newDate string) (*models.Appointment, func(), error) {
	for {
		unlock := e.locks.LockPair(appt.PlaceID, appt.Date, newDate)
		fresh, err := e.Appointments.GetAppointmentByID(ctx, appt.ID)
		if err != nil {
			unlock()
			return nil, nil, mapLookupErr(err)
		}
		if fresh.Date == appt.Date {
			return fresh, unlock, nil
		}
		unlock()
		appt = fresh
	}
}

// restoreSlots re-inserts an appointment's prior index entries after a failed
// reschedule write. Best effort: if this also fails the appointment is booked
// with no index entries, a divergence the validator's appointment scan still
// covers.
func (e *DefaultSchedulingEngine) restoreSlots(ctx context.Context, appointmentID, placeID, date string, windows []EmployeeWindow) {
	if err := e.SlotIndex.PutSlots(ctx, placeID, date, slotEntries(appointmentID, windows)); err != nil {
		utils.GetLogger().Error("failed to restore slot entries after reschedule failure",
			zap.String("appointmentID", appointmentID), zap.Error(err))
	}
}

// checkLeadTime enforces the 60-minute notice rule against the appointment's
// current start; lateErr names the operation being refused.
func (e *DefaultSchedulingEngine) checkLeadTime(appt *models.Appointment, lateErr error) error {
	start, err := utils.AbsoluteTime(appt.Date, appt.StartTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if e.now().After(start.Add(-CancelLeadTime)) {
		return lateErr
	}
	return nil
}

func (e *DefaultSchedulingEngine) scheduleReminder(ctx context.Context, appt *models.Appointment) {
	if e.Events == nil || appt.CustomerID == "" {
		return
	}
	start, err := utils.AbsoluteTime(appt.Date, appt.StartTime)
	if err != nil {
		return
	}
	fireAt := start.Add(-CancelLeadTime)
	if !fireAt.After(e.now()) {
		return
	}
	payload := models.ReminderPayload{
		AppointmentID: appt.ID,
		PlaceID:       appt.PlaceID,
		CustomerID:    appt.CustomerID,
		Date:          appt.Date,
		StartTime:     appt.StartTime,
	}
	if err := e.Events.ScheduleReminder(ctx, payload, fireAt); err != nil {
		utils.GetLogger().Warn("failed to schedule appointment reminder",
			zap.String("appointmentID", appt.ID), zap.Error(err))
	}
}

// slotEntries materializes one slot index entry per employee window.
func slotEntries(appointmentID string, windows []EmployeeWindow) []models.Slot {
	entries := make([]models.Slot, 0, len(windows))
	for _, w := range windows {
		entries = append(entries, models.Slot{
			AppointmentID: appointmentID,
			EmployeeID:    w.EmployeeID,
			StartTime:     w.Start,
			EndTime:       w.End,
			Duration:      w.Duration(),
			ServiceIDs:    w.ServiceIDs,
			Status:        models.AppointmentStatusBooked,
		})
	}
	return entries
}

// authorized reports whether the caller may mutate this appointment: the
// booking customer, any assigned employee, the place owner, or the place's
// master (front-desk) employee.
func authorized(callerID string, appt *models.Appointment, place *models.Place) bool {
	if callerID == "" {
		return false
	}
	if appt.CustomerID != "" && callerID == appt.CustomerID {
		return true
	}
	if callerID == place.OwnerID || (place.MasterEmployeeID != "" && callerID == place.MasterEmployeeID) {
		return true
	}
	for _, id := range appt.EmployeeIDs() {
		if callerID == id {
			return true
		}
	}
	return false
}

// mapLookupErr folds repository not-found errors into the engine taxonomy and
// passes everything else through as a transient storage failure.
func mapLookupErr(err error) error {
	switch {
	case errors.Is(err, placeRepo.ErrNotFound),
		errors.Is(err, employeeRepo.ErrNotFound),
		errors.Is(err, appointmentRepo.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}
