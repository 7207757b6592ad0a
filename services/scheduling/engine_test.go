package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	appointmentRepo "glowdesk/database/repository/appointment"
	employeeRepo "glowdesk/database/repository/employee"
	placeRepo "glowdesk/database/repository/place"
	"glowdesk/models"
	"glowdesk/utils"
)

// --- in-memory fakes -------------------------------------------------------

type fakeReference struct {
	places    map[string]*models.Place
	employees map[string]*models.Employee

	// onGetPlace runs once before the next place lookup returns, letting a
	// test interleave a competing operation into that window.
	onGetPlace func()
}

func (r *fakeReference) GetPlace(_ context.Context, placeID string) (*models.Place, error) {
	if r.onGetPlace != nil {
		hook := r.onGetPlace
		r.onGetPlace = nil
		hook()
	}
	place, ok := r.places[placeID]
	if !ok {
		return nil, placeRepo.ErrNotFound
	}
	return place, nil
}

func (r *fakeReference) GetEmployee(_ context.Context, employeeID string) (*models.Employee, error) {
	employee, ok := r.employees[employeeID]
	if !ok {
		return nil, employeeRepo.ErrNotFound
	}
	return employee, nil
}

type fakeAppointmentRepo struct {
	mu        sync.Mutex
	appts     map[string]*models.Appointment
	createErr error
	updateErr error
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: make(map[string]*models.Appointment)}
}

func (r *fakeAppointmentRepo) CreateAppointment(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	stored := *appt
	r.appts[appt.ID] = &stored
	return nil
}

func (r *fakeAppointmentRepo) GetAppointmentByID(_ context.Context, appointmentID string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appts[appointmentID]
	if !ok {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, errNotFoundAppointment)
	}
	copy := *stored
	return &copy, nil
}

func (r *fakeAppointmentRepo) GetActiveAppointments(_ context.Context, placeID, date string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, appt := range r.appts {
		if appt.PlaceID == placeID && appt.Date == date && appt.Status == models.AppointmentStatusBooked {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) SetStatus(_ context.Context, appointmentID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appts[appointmentID]
	if !ok {
		return errNotFoundAppointment
	}
	stored.Status = status
	return nil
}

func (r *fakeAppointmentRepo) UpdateSchedule(_ context.Context, appointmentID, date string, startTime int, rescheduledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.appts[appointmentID]
	if !ok {
		return errNotFoundAppointment
	}
	stored.Date = date
	stored.StartTime = startTime
	stored.RescheduledAt = &rescheduledAt
	return nil
}

func (r *fakeAppointmentRepo) stored(t *testing.T, id string) *models.Appointment {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appts[id]
	if !ok {
		t.Fatalf("appointment %s not stored", id)
	}
	copy := *stored
	return &copy
}

type fakeSlotRepo struct {
	mu      sync.Mutex
	entries map[string][]models.Slot
	putErr  error

	// failPut, when set, can reject writes selectively by date.
	failPut func(date string) error
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{entries: make(map[string][]models.Slot)}
}

func slotKey(placeID, date string) string { return placeID + "|" + date }

func (r *fakeSlotRepo) PutSlots(_ context.Context, placeID, date string, entries []models.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	if r.failPut != nil {
		if err := r.failPut(date); err != nil {
			return err
		}
	}
	key := slotKey(placeID, date)
	r.entries[key] = append(r.entries[key], entries...)
	return nil
}

func (r *fakeSlotRepo) GetSlots(_ context.Context, placeID, date string) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Slot(nil), r.entries[slotKey(placeID, date)]...), nil
}

func (r *fakeSlotRepo) DeleteSlotsByAppointment(_ context.Context, placeID, date, appointmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := slotKey(placeID, date)
	var kept []models.Slot
	for _, s := range r.entries[key] {
		if s.AppointmentID != appointmentID {
			kept = append(kept, s)
		}
	}
	r.entries[key] = kept
	return nil
}

func (r *fakeSlotRepo) count(placeID, date string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries[slotKey(placeID, date)])
}

type scheduledReminder struct {
	payload models.ReminderPayload
	fireAt  time.Time
}

type fakeEvents struct {
	mu        sync.Mutex
	published []models.SchedulingEvent
	reminders []scheduledReminder
}

func (e *fakeEvents) Publish(_ context.Context, event models.SchedulingEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.published = append(e.published, event)
	return nil
}

func (e *fakeEvents) ScheduleReminder(_ context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reminders = append(e.reminders, scheduledReminder{payload: payload, fireAt: fireAt})
	return nil
}

func (e *fakeEvents) lastEvent(t *testing.T) models.SchedulingEvent {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.published) == 0 {
		t.Fatalf("no events published")
	}
	return e.published[len(e.published)-1]
}

var errNotFoundAppointment = appointmentRepo.ErrNotFound

// --- fixture ---------------------------------------------------------------

type fixture struct {
	engine *DefaultSchedulingEngine
	ref    *fakeReference
	appts  *fakeAppointmentRepo
	slots  *fakeSlotRepo
	events *fakeEvents
}

// newFixture builds an engine over in-memory stores with the clock pinned to
// Sunday 14-06-2026 noon, the day before the monday used in most tests.
func newFixture() *fixture {
	ref := &fakeReference{
		places: map[string]*models.Place{
			"p1": {
				ID:               "p1",
				Name:             "Glow Studio",
				Type:             "salon",
				OwnerID:          "owner1",
				EmployeeIDs:      []string{"e1", "e2", "e3"},
				MasterEmployeeID: "e1",
				Timings: map[string]models.DayTiming{
					"monday":  {IsOpen: true, Open: "09:00", Close: "18:00"},
					"tuesday": {IsOpen: false},
				},
				Services: []models.Service{
					{ID: "cut", Name: "Haircut", Duration: 30, Price: 25, IsActive: true},
					{ID: "color", Name: "Coloring", Duration: 45, Price: 40, IsActive: true},
					{ID: "massage", Name: "Massage", Duration: 60, Price: 55, IsActive: true},
					{ID: "wax", Name: "Waxing", Duration: 20, Price: 15, IsActive: false},
				},
			},
		},
		employees: map[string]*models.Employee{
			"e1": {ID: "e1", Name: "Ari", PlaceID: "p1", IsActive: true},
			"e2": {ID: "e2", Name: "Bo", PlaceID: "p1", IsActive: true},
			"e3": {ID: "e3", Name: "Cam", PlaceID: "p1", IsActive: false},
		},
	}

	appts := newFakeAppointmentRepo()
	slots := newFakeSlotRepo()
	events := &fakeEvents{}

	engine := NewDefaultSchedulingEngine(ref, appts, slots, events)
	engine.now = func() time.Time {
		return time.Date(2026, 6, 14, 12, 0, 0, 0, time.Local)
	}
	return &fixture{engine: engine, ref: ref, appts: appts, slots: slots, events: events}
}

func (f *fixture) setNow(t time.Time) {
	f.engine.now = func() time.Time { return t }
}

func (f *fixture) book(t *testing.T, req models.BookingRequest) *models.Appointment {
	t.Helper()
	appt, err := f.engine.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	return appt
}

func bookingReq(serviceID, employeeID, date, startTime string) models.BookingRequest {
	return models.BookingRequest{
		PlaceID:    "p1",
		CustomerID: "c1",
		Date:       date,
		StartTime:  startTime,
		Services:   []models.ServiceSelection{{ServiceID: serviceID, EmployeeID: employeeID}},
	}
}

// --- Book ------------------------------------------------------------------

func TestBookCreatesAppointmentAndSlots(t *testing.T) {
	f := newFixture()

	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	if appt.Status != models.AppointmentStatusBooked {
		t.Fatalf("status = %q, want booked", appt.Status)
	}
	if appt.Date != monday || appt.StartTime != 600 {
		t.Fatalf("schedule = %s %d, want %s 600", appt.Date, appt.StartTime, monday)
	}
	if appt.TotalDuration != 30 || appt.TotalAmount != 25 {
		t.Fatalf("totals = %d min / %.2f, want 30 / 25.00", appt.TotalDuration, appt.TotalAmount)
	}
	if appt.PrimaryEmployeeID != "e1" || appt.Mode != models.BookingModeOnline {
		t.Fatalf("primary/mode = %s/%s", appt.PrimaryEmployeeID, appt.Mode)
	}

	stored := f.appts.stored(t, appt.ID)
	if stored.Status != models.AppointmentStatusBooked {
		t.Fatalf("stored status = %q", stored.Status)
	}

	slots, _ := f.slots.GetSlots(context.Background(), "p1", monday)
	if len(slots) != 1 {
		t.Fatalf("expected one slot entry, got %d", len(slots))
	}
	s := slots[0]
	if s.EmployeeID != "e1" || s.StartTime != 600 || s.EndTime != 630 || s.AppointmentID != appt.ID {
		t.Fatalf("slot entry = %+v", s)
	}

	event := f.events.lastEvent(t)
	if event.Type != models.EventAppointmentBooked || event.AppointmentID != appt.ID {
		t.Fatalf("event = %+v", event)
	}

	if len(f.events.reminders) != 1 {
		t.Fatalf("expected one reminder, got %d", len(f.events.reminders))
	}
	wantFire := time.Date(2026, 6, 15, 9, 0, 0, 0, time.Local)
	if !f.events.reminders[0].fireAt.Equal(wantFire) {
		t.Fatalf("reminder fires at %v, want %v", f.events.reminders[0].fireAt, wantFire)
	}
}

func TestBookWalkIn(t *testing.T) {
	f := newFixture()

	req := models.BookingRequest{
		PlaceID:        "p1",
		WalkInCustomer: "Ana",
		Date:           monday,
		StartTime:      "11:00",
		Services:       []models.ServiceSelection{{ServiceID: "cut", EmployeeID: "e1"}},
	}
	appt := f.book(t, req)

	if appt.Mode != models.BookingModeWalkin || appt.CustomerID != "" {
		t.Fatalf("walk-in appt = mode %q, customer %q", appt.Mode, appt.CustomerID)
	}
	if len(f.events.reminders) != 0 {
		t.Fatalf("walk-in bookings must not schedule reminders, got %d", len(f.events.reminders))
	}
}

func TestBookDefaultsToMasterEmployee(t *testing.T) {
	f := newFixture()

	appt := f.book(t, bookingReq("cut", "", monday, "10:00"))
	if appt.Services[0].EmployeeID != "e1" {
		t.Fatalf("employee = %q, want master e1", appt.Services[0].EmployeeID)
	}
}

func TestBookMultiServiceChain(t *testing.T) {
	f := newFixture()

	req := models.BookingRequest{
		PlaceID:    "p1",
		CustomerID: "c1",
		Date:       monday,
		StartTime:  "10:00",
		Services: []models.ServiceSelection{
			{ServiceID: "cut", EmployeeID: "e1"},
			{ServiceID: "color", EmployeeID: "e2"},
		},
	}
	appt := f.book(t, req)

	if appt.TotalDuration != 75 || appt.TotalAmount != 65 {
		t.Fatalf("totals = %d / %.2f, want 75 / 65.00", appt.TotalDuration, appt.TotalAmount)
	}
	slots, _ := f.slots.GetSlots(context.Background(), "p1", monday)
	if len(slots) != 2 {
		t.Fatalf("expected a slot entry per employee, got %d", len(slots))
	}
	// e1 occupies [600, 630), e2 continues at [630, 675).
	for _, s := range slots {
		switch s.EmployeeID {
		case "e1":
			if s.StartTime != 600 || s.EndTime != 630 {
				t.Fatalf("e1 slot = [%d, %d)", s.StartTime, s.EndTime)
			}
		case "e2":
			if s.StartTime != 630 || s.EndTime != 675 {
				t.Fatalf("e2 slot = [%d, %d)", s.StartTime, s.EndTime)
			}
		default:
			t.Fatalf("unexpected employee %q", s.EmployeeID)
		}
	}
}

func TestBookRejectsOverlap(t *testing.T) {
	f := newFixture()
	f.book(t, bookingReq("cut", "e1", monday, "10:00")) // e1 busy [600, 630)

	_, err := f.engine.Book(context.Background(), bookingReq("color", "e1", monday, "10:15"))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.EmployeeID != "e1" {
		t.Fatalf("conflict names %q, want e1", conflict.EmployeeID)
	}
	// The rejected booking left nothing behind.
	if f.slots.count("p1", monday) != 1 {
		t.Fatalf("rejected booking wrote slot entries")
	}
}

func TestBookAllowsAdjacentSlot(t *testing.T) {
	f := newFixture()
	f.book(t, bookingReq("cut", "e1", monday, "10:00")) // [600, 630)

	// A half-open window ending at 10:30 does not block a 10:30 start.
	if _, err := f.engine.Book(context.Background(), bookingReq("cut", "e1", monday, "10:30")); err != nil {
		t.Fatalf("adjacent booking rejected: %v", err)
	}
}

func TestBookOtherEmployeeUnaffected(t *testing.T) {
	f := newFixture()
	f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	if _, err := f.engine.Book(context.Background(), bookingReq("cut", "e2", monday, "10:00")); err != nil {
		t.Fatalf("parallel booking for another employee rejected: %v", err)
	}
}

func TestBookClosedDay(t *testing.T) {
	f := newFixture()

	_, err := f.engine.Book(context.Background(), bookingReq("cut", "e1", tuesday, "10:00"))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestBookOutsideWorkingHours(t *testing.T) {
	f := newFixture()

	// 17:45 + 30m runs past the 18:00 close.
	_, err := f.engine.Book(context.Background(), bookingReq("cut", "e1", monday, "17:45"))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestBookValidation(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name string
		req  models.BookingRequest
		want error
	}{
		{"no services", models.BookingRequest{PlaceID: "p1", CustomerID: "c1", Date: monday, StartTime: "10:00"}, ErrInvalidRequest},
		{"no customer", models.BookingRequest{PlaceID: "p1", Date: monday, StartTime: "10:00", Services: []models.ServiceSelection{{ServiceID: "cut"}}}, ErrInvalidRequest},
		{"bad date", bookingReq("cut", "e1", "15/06/2026", "10:00"), ErrInvalidRequest},
		{"bad time", bookingReq("cut", "e1", monday, "25:00"), ErrInvalidRequest},
		{"unknown place", func() models.BookingRequest { r := bookingReq("cut", "e1", monday, "10:00"); r.PlaceID = "ghost"; return r }(), ErrNotFound},
		{"unknown service", bookingReq("nope", "e1", monday, "10:00"), ErrNotFound},
		{"inactive service", bookingReq("wax", "e1", monday, "10:00"), ErrInvalidRequest},
		{"unlinked employee", bookingReq("cut", "stranger", monday, "10:00"), ErrInvalidRequest},
		{"inactive employee", bookingReq("cut", "e3", monday, "10:00"), ErrInvalidRequest},
	}
	for _, tc := range cases {
		if _, err := f.engine.Book(context.Background(), tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
	if f.slots.count("p1", monday) != 0 {
		t.Fatalf("rejected bookings wrote slot entries")
	}
}

func TestBookSlotWriteFailureVoidsAppointment(t *testing.T) {
	f := newFixture()
	f.slots.putErr = errors.New("index down")

	_, err := f.engine.Book(context.Background(), bookingReq("cut", "e1", monday, "10:00"))
	if err == nil {
		t.Fatalf("expected slot write failure to surface")
	}

	// The half-written appointment was voided, so nothing active remains.
	active, _ := f.appts.GetActiveAppointments(context.Background(), "p1", monday)
	if len(active) != 0 {
		t.Fatalf("expected no active appointments after rollback, got %d", len(active))
	}
}

func TestBookConcurrentSameSlotSingleWinner(t *testing.T) {
	f := newFixture()

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Book(context.Background(), bookingReq("cut", "e1", monday, "10:00"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			won++
		default:
			var conflict *ConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("unexpected error: %v", err)
			}
			conflicted++
		}
	}
	if won != 1 || conflicted != 1 {
		t.Fatalf("winners = %d, conflicts = %d; want exactly one of each", won, conflicted)
	}
}

// --- Cancel ----------------------------------------------------------------

func TestCancelClearsSlotsAndStatus(t *testing.T) {
	f := newFixture()
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	if err := f.engine.Cancel(context.Background(), "c1", appt.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if f.appts.stored(t, appt.ID).Status != models.AppointmentStatusCancelled {
		t.Fatalf("appointment not cancelled")
	}
	if f.slots.count("p1", monday) != 0 {
		t.Fatalf("cancelled appointment left slot entries behind")
	}
	event := f.events.lastEvent(t)
	if event.Type != models.EventAppointmentCancelled {
		t.Fatalf("event type = %q", event.Type)
	}
}

func TestCancelFreesTheSlot(t *testing.T) {
	f := newFixture()
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	if err := f.engine.Cancel(context.Background(), "c1", appt.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, err := f.engine.Book(context.Background(), bookingReq("cut", "e1", monday, "10:00")); err != nil {
		t.Fatalf("slot not reusable after cancellation: %v", err)
	}
}

func TestCancelAuthorization(t *testing.T) {
	cases := []struct {
		caller string
		want   error
	}{
		{"stranger", ErrForbidden},
		{"", ErrForbidden},
		{"c1", nil},
		{"owner1", nil},
		{"e1", nil}, // assigned employee
	}
	for _, tc := range cases {
		f := newFixture()
		appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))
		err := f.engine.Cancel(context.Background(), tc.caller, appt.ID)
		if !errors.Is(err, tc.want) {
			t.Fatalf("caller %q: got %v, want %v", tc.caller, err, tc.want)
		}
	}
}

func TestCancelTwice(t *testing.T) {
	f := newFixture()
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	if err := f.engine.Cancel(context.Background(), "c1", appt.ID); err != nil {
		t.Fatalf("first Cancel failed: %v", err)
	}
	if err := f.engine.Cancel(context.Background(), "c1", appt.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestCancelLeadTime(t *testing.T) {
	start := time.Date(2026, 6, 15, 10, 0, 0, 0, time.Local)
	cases := []struct {
		name string
		now  time.Time
		want error
	}{
		{"well before", start.Add(-3 * time.Hour), nil},
		{"exactly 60m before", start.Add(-60 * time.Minute), nil},
		{"59m before", start.Add(-59 * time.Minute), ErrTooLateToCancel},
		{"after start", start.Add(10 * time.Minute), ErrTooLateToCancel},
	}
	for _, tc := range cases {
		f := newFixture()
		appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))
		f.setNow(tc.now)
		if err := f.engine.Cancel(context.Background(), "c1", appt.ID); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestCancelNotFound(t *testing.T) {
	f := newFixture()
	if err := f.engine.Cancel(context.Background(), "c1", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- Reschedule ------------------------------------------------------------

func TestRescheduleMovesAppointment(t *testing.T) {
	f := newFixture()
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	moved, err := f.engine.Reschedule(context.Background(), "c1", appt.ID,
		models.RescheduleRequest{Date: monday, StartTime: "14:00"})
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	if moved.StartTime != 840 || moved.RescheduledAt == nil {
		t.Fatalf("moved = start %d, rescheduledAt %v", moved.StartTime, moved.RescheduledAt)
	}

	stored := f.appts.stored(t, appt.ID)
	if stored.StartTime != 840 || stored.Date != monday {
		t.Fatalf("stored schedule = %s %d", stored.Date, stored.StartTime)
	}

	slots, _ := f.slots.GetSlots(context.Background(), "p1", monday)
	if len(slots) != 1 || slots[0].StartTime != 840 || slots[0].EndTime != 870 {
		t.Fatalf("slot entries after reschedule = %+v", slots)
	}

	event := f.events.lastEvent(t)
	if event.Type != models.EventAppointmentRescheduled {
		t.Fatalf("event type = %q", event.Type)
	}
	if event.OldDate != monday || event.OldStartTime != 600 || event.StartTime != 840 {
		t.Fatalf("event schedule transition = %+v", event)
	}
}

func TestRescheduleAcrossDates(t *testing.T) {
	f := newFixture()
	const nextMonday = "22-06-2026"
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	if _, err := f.engine.Reschedule(context.Background(), "c1", appt.ID,
		models.RescheduleRequest{Date: nextMonday, StartTime: "10:00"}); err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}

	if f.slots.count("p1", monday) != 0 {
		t.Fatalf("old date still holds slot entries")
	}
	if f.slots.count("p1", nextMonday) != 1 {
		t.Fatalf("new date missing slot entries")
	}
	if f.appts.stored(t, appt.ID).Date != nextMonday {
		t.Fatalf("appointment date not moved")
	}
}

func TestRescheduleIgnoresOwnSlots(t *testing.T) {
	f := newFixture()
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00")) // [600, 630)

	// The new window overlaps the old one; only the appointment's own prior
	// occupancy is in the way, and that must not count.
	if _, err := f.engine.Reschedule(context.Background(), "c1", appt.ID,
		models.RescheduleRequest{Date: monday, StartTime: "10:15"}); err != nil {
		t.Fatalf("self-overlap rejected: %v", err)
	}
}

func TestRescheduleConflict(t *testing.T) {
	f := newFixture()
	f.book(t, bookingReq("cut", "e1", monday, "10:00"))
	second := f.book(t, bookingReq("cut", "e1", monday, "14:00"))

	_, err := f.engine.Reschedule(context.Background(), "c1", second.ID,
		models.RescheduleRequest{Date: monday, StartTime: "10:15"})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	// The rejected reschedule changed nothing.
	stored := f.appts.stored(t, second.ID)
	if stored.StartTime != 840 || stored.RescheduledAt != nil {
		t.Fatalf("rejected reschedule mutated the appointment: %+v", stored)
	}
	if f.slots.count("p1", monday) != 2 {
		t.Fatalf("slot entries disturbed by rejected reschedule")
	}
}

func TestRescheduleTooLate(t *testing.T) {
	f := newFixture()
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	f.setNow(time.Date(2026, 6, 15, 9, 30, 0, 0, time.Local))
	_, err := f.engine.Reschedule(context.Background(), "c1", appt.ID,
		models.RescheduleRequest{Date: monday, StartTime: "16:00"})
	if !errors.Is(err, ErrTooLateToReschedule) {
		t.Fatalf("expected ErrTooLateToReschedule, got %v", err)
	}
}

func TestRescheduleCancelledAppointment(t *testing.T) {
	f := newFixture()
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))
	if err := f.engine.Cancel(context.Background(), "c1", appt.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	_, err := f.engine.Reschedule(context.Background(), "c1", appt.ID,
		models.RescheduleRequest{Date: monday, StartTime: "14:00"})
	if !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestCancelAfterConcurrentReschedule(t *testing.T) {
	f := newFixture()
	const nextMonday = "22-06-2026"
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	// A reschedule lands inside the cancel's window between its initial fetch
	// and the day lock. The cancel must still clear the moved slots.
	f.ref.onGetPlace = func() {
		if _, err := f.engine.Reschedule(context.Background(), "c1", appt.ID,
			models.RescheduleRequest{Date: nextMonday, StartTime: "10:00"}); err != nil {
			t.Fatalf("interleaved Reschedule failed: %v", err)
		}
	}

	if err := f.engine.Cancel(context.Background(), "c1", appt.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if f.appts.stored(t, appt.ID).Status != models.AppointmentStatusCancelled {
		t.Fatalf("appointment not cancelled")
	}
	if n := f.slots.count("p1", monday); n != 0 {
		t.Fatalf("old date holds %d slot entries after cancel", n)
	}
	if n := f.slots.count("p1", nextMonday); n != 0 {
		t.Fatalf("cancelled appointment left %d slot entries on the new date", n)
	}
	// The freed time is bookable again.
	if _, err := f.engine.Book(context.Background(), bookingReq("cut", "e1", nextMonday, "10:00")); err != nil {
		t.Fatalf("freed time not rebookable: %v", err)
	}
}

func TestRescheduleAfterConcurrentCancel(t *testing.T) {
	f := newFixture()
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	// A cancel lands inside the reschedule's pre-lock window. The reschedule
	// must observe the cancelled status under the lock and write nothing.
	f.ref.onGetPlace = func() {
		if err := f.engine.Cancel(context.Background(), "c1", appt.ID); err != nil {
			t.Fatalf("interleaved Cancel failed: %v", err)
		}
	}

	_, err := f.engine.Reschedule(context.Background(), "c1", appt.ID,
		models.RescheduleRequest{Date: monday, StartTime: "14:00"})
	if !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
	if n := f.slots.count("p1", monday); n != 0 {
		t.Fatalf("rejected reschedule wrote %d slot entries", n)
	}
}

func TestReschedulePutSlotsFailureRestoresIndex(t *testing.T) {
	f := newFixture()
	const nextMonday = "22-06-2026"
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	f.slots.failPut = func(date string) error {
		if date == nextMonday {
			return errors.New("index down")
		}
		return nil
	}

	_, err := f.engine.Reschedule(context.Background(), "c1", appt.ID,
		models.RescheduleRequest{Date: nextMonday, StartTime: "10:00"})
	if err == nil {
		t.Fatalf("expected slot write failure to surface")
	}

	// The old slots came back and the record never moved.
	if f.slots.count("p1", monday) != 1 || f.slots.count("p1", nextMonday) != 0 {
		t.Fatalf("index diverged: old=%d new=%d", f.slots.count("p1", monday), f.slots.count("p1", nextMonday))
	}
	stored := f.appts.stored(t, appt.ID)
	if stored.Date != monday || stored.StartTime != 600 {
		t.Fatalf("stored schedule = %s %d after failed reschedule", stored.Date, stored.StartTime)
	}
	// The restored entries still guard the original time.
	if _, bookErr := f.engine.Book(context.Background(), bookingReq("cut", "e2", monday, "10:00")); bookErr != nil {
		t.Fatalf("other employee blocked: %v", bookErr)
	}
	var conflict *ConflictError
	_, bookErr := f.engine.Book(context.Background(), bookingReq("color", "e1", monday, "10:15"))
	if !errors.As(bookErr, &conflict) {
		t.Fatalf("restored slot no longer guards the time: %v", bookErr)
	}
}

func TestRescheduleUpdateFailureRestoresIndex(t *testing.T) {
	f := newFixture()
	const nextMonday = "22-06-2026"
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	f.appts.updateErr = errors.New("store down")

	_, err := f.engine.Reschedule(context.Background(), "c1", appt.ID,
		models.RescheduleRequest{Date: nextMonday, StartTime: "10:00"})
	if err == nil {
		t.Fatalf("expected schedule update failure to surface")
	}

	if f.slots.count("p1", monday) != 1 || f.slots.count("p1", nextMonday) != 0 {
		t.Fatalf("index diverged: old=%d new=%d", f.slots.count("p1", monday), f.slots.count("p1", nextMonday))
	}
	stored := f.appts.stored(t, appt.ID)
	if stored.Date != monday || stored.RescheduledAt != nil {
		t.Fatalf("record mutated by failed reschedule: %+v", stored)
	}
}

func TestRescheduleClosedDay(t *testing.T) {
	f := newFixture()
	appt := f.book(t, bookingReq("cut", "e1", monday, "10:00"))

	_, err := f.engine.Reschedule(context.Background(), "c1", appt.ID,
		models.RescheduleRequest{Date: tuesday, StartTime: "10:00"})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

// --- GetAvailability -------------------------------------------------------

func TestGetAvailability(t *testing.T) {
	f := newFixture()
	f.book(t, bookingReq("massage", "e1", monday, "12:00")) // e1 busy [720, 780)

	slots, err := f.engine.GetAvailability(context.Background(), models.AvailabilityQuery{
		PlaceID: "p1", EmployeeID: "e1", ServiceID: "massage", Date: monday,
	})
	if err != nil {
		t.Fatalf("GetAvailability failed: %v", err)
	}
	want := []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00", "17:00"}
	if len(slots) != len(want) {
		t.Fatalf("slots = %v, want %v", slots, want)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("slots = %v, want %v", slots, want)
		}
	}
}

func TestGetAvailabilityAcceptsISODate(t *testing.T) {
	f := newFixture()

	slots, err := f.engine.GetAvailability(context.Background(), models.AvailabilityQuery{
		PlaceID: "p1", EmployeeID: "e1", ServiceID: "cut", Date: "2026-06-15",
	})
	if err != nil {
		t.Fatalf("GetAvailability failed: %v", err)
	}
	if len(slots) == 0 || slots[0] != "09:00" {
		t.Fatalf("slots = %v, want grid starting at 09:00", slots)
	}
}

func TestGetAvailabilityDefaultsToMaster(t *testing.T) {
	f := newFixture()
	f.book(t, bookingReq("massage", "e1", monday, "09:00")) // master busy [540, 600)

	slots, err := f.engine.GetAvailability(context.Background(), models.AvailabilityQuery{
		PlaceID: "p1", ServiceID: "massage", Date: monday,
	})
	if err != nil {
		t.Fatalf("GetAvailability failed: %v", err)
	}
	if len(slots) == 0 || slots[0] != "10:00" {
		t.Fatalf("slots = %v, want first slot 10:00 once the master's 09:00 is taken", slots)
	}
}

func TestGetAvailabilityClosedDay(t *testing.T) {
	f := newFixture()

	_, err := f.engine.GetAvailability(context.Background(), models.AvailabilityQuery{
		PlaceID: "p1", EmployeeID: "e1", ServiceID: "cut", Date: tuesday,
	})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestGetAvailabilityUnknownService(t *testing.T) {
	f := newFixture()

	_, err := f.engine.GetAvailability(context.Background(), models.AvailabilityQuery{
		PlaceID: "p1", EmployeeID: "e1", ServiceID: "nope", Date: monday,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAvailabilityInactiveService(t *testing.T) {
	f := newFixture()

	_, err := f.engine.GetAvailability(context.Background(), models.AvailabilityQuery{
		PlaceID: "p1", EmployeeID: "e1", ServiceID: "wax", Date: monday,
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

// guard against the clock utilities drifting from the fixture's assumptions
func TestFixtureDatesAreValid(t *testing.T) {
	for _, date := range []string{monday, tuesday} {
		if _, err := utils.ParseCanonicalDate(date); err != nil {
			t.Fatalf("fixture date %q invalid: %v", date, err)
		}
	}
}
