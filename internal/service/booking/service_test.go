package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/notify"
	"agendly/backend/internal/store"
)

type fakeRepo struct {
	createFn                func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	updateCalendarEventIDFn func(ctx context.Context, id int64, eventID string) error
	isSlotAvailableFn       func(ctx context.Context, date, slot string) (bool, error)
	listOccupiedSlotsFn     func(ctx context.Context) ([]store.OccupiedSlot, error)
	listByDateFn            func(ctx context.Context, date string) ([]domain.Appointment, error)
	getByIDFn               func(ctx context.Context, id int64) (domain.Appointment, error)
	listByEmailFn           func(ctx context.Context, email string) ([]domain.Appointment, error)
	setStatusFn             func(ctx context.Context, id int64, status domain.AppointmentStatus) error
	statsFn                 func(ctx context.Context) (store.Stats, error)
}

func (f *fakeRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, appt)
}

func (f *fakeRepo) UpdateCalendarEventID(ctx context.Context, id int64, eventID string) error {
	if f.updateCalendarEventIDFn == nil {
		panic("UpdateCalendarEventID not configured")
	}
	return f.updateCalendarEventIDFn(ctx, id, eventID)
}

func (f *fakeRepo) IsSlotAvailable(ctx context.Context, date, slot string) (bool, error) {
	if f.isSlotAvailableFn == nil {
		panic("IsSlotAvailable not configured")
	}
	return f.isSlotAvailableFn(ctx, date, slot)
}

func (f *fakeRepo) ListOccupiedSlots(ctx context.Context) ([]store.OccupiedSlot, error) {
	if f.listOccupiedSlotsFn == nil {
		panic("ListOccupiedSlots not configured")
	}
	return f.listOccupiedSlotsFn(ctx)
}

func (f *fakeRepo) ListByDate(ctx context.Context, date string) ([]domain.Appointment, error) {
	if f.listByDateFn == nil {
		panic("ListByDate not configured")
	}
	return f.listByDateFn(ctx, date)
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (domain.Appointment, error) {
	if f.getByIDFn == nil {
		panic("GetByID not configured")
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeRepo) ListByEmail(ctx context.Context, email string) ([]domain.Appointment, error) {
	if f.listByEmailFn == nil {
		panic("ListByEmail not configured")
	}
	return f.listByEmailFn(ctx, email)
}

func (f *fakeRepo) SetStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	if f.setStatusFn == nil {
		panic("SetStatus not configured")
	}
	return f.setStatusFn(ctx, id, status)
}

func (f *fakeRepo) Stats(ctx context.Context) (store.Stats, error) {
	if f.statsFn == nil {
		panic("Stats not configured")
	}
	return f.statsFn(ctx)
}

type fakeScheduler struct {
	createEventFn func(ctx context.Context, ev notify.Event) (notify.EventRef, error)
}

func (f *fakeScheduler) CreateEvent(ctx context.Context, ev notify.Event) (notify.EventRef, error) {
	if f.createEventFn == nil {
		panic("CreateEvent not configured")
	}
	return f.createEventFn(ctx, ev)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validRequest() BookingRequest {
	return BookingRequest{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Phone:   "+34600111222",
		Date:    "2024-06-10",
		Time:    "14:00",
		Service: "architecture-review",
	}
}

func TestBook_MissingEmailIsValidationError(t *testing.T) {
	var createCalled bool
	svc := NewService(&fakeRepo{
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			createCalled = true
			return appt, nil
		},
	}, nil, testLogger(), 0)

	req := validRequest()
	req.Email = ""

	_, err := svc.Book(context.Background(), req)
	if err == nil {
		t.Fatalf("expected error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if vErr.Error() != "email is required" {
		t.Fatalf("error = %q, want %q", vErr.Error(), "email is required")
	}
	if createCalled {
		t.Fatalf("Create must not be called on validation failure")
	}
}

func TestBook_RejectsMalformedDateAndTime(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, testLogger(), 0)

	for _, tc := range []struct {
		name   string
		mutate func(*BookingRequest)
	}{
		{"bad date", func(r *BookingRequest) { r.Date = "10/06/2024" }},
		{"bad time", func(r *BookingRequest) { r.Time = "2pm" }},
		{"bad email", func(r *BookingRequest) { r.Email = "not-an-email" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)

			_, err := svc.Book(context.Background(), req)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v (%T), want *ValidationError", err, err)
			}
		})
	}
}

func TestBook_OccupiedSlotIsConflict(t *testing.T) {
	var createCalled bool
	svc := NewService(&fakeRepo{
		isSlotAvailableFn: func(ctx context.Context, date, slot string) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			createCalled = true
			return appt, nil
		},
	}, nil, testLogger(), 0)

	_, err := svc.Book(context.Background(), validRequest())
	if !errors.Is(err, store.ErrSlotTaken) {
		t.Fatalf("error = %v, want %v", err, store.ErrSlotTaken)
	}
	if createCalled {
		t.Fatalf("Create must not be called for an occupied slot")
	}
}

func TestBook_ConstraintViolationSurfacesAsConflict(t *testing.T) {
	svc := NewService(&fakeRepo{
		isSlotAvailableFn: func(ctx context.Context, date, slot string) (bool, error) {
			return true, nil
		},
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			return domain.Appointment{}, store.ErrSlotTaken
		},
	}, nil, testLogger(), 0)

	_, err := svc.Book(context.Background(), validRequest())
	if !errors.Is(err, store.ErrSlotTaken) {
		t.Fatalf("error = %v, want %v", err, store.ErrSlotTaken)
	}
}

func TestBook_SuccessCreatesCalendarEvent(t *testing.T) {
	var storedID int64
	var storedEventID string

	repo := &fakeRepo{
		isSlotAvailableFn: func(ctx context.Context, date, slot string) (bool, error) {
			return true, nil
		},
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			appt.ID = 42
			return appt, nil
		},
		updateCalendarEventIDFn: func(ctx context.Context, id int64, eventID string) error {
			storedID = id
			storedEventID = eventID
			return nil
		},
	}
	scheduler := &fakeScheduler{
		createEventFn: func(ctx context.Context, ev notify.Event) (notify.EventRef, error) {
			if ev.Appointment.ID != 42 {
				t.Fatalf("event appointment id = %d, want 42", ev.Appointment.ID)
			}
			return notify.EventRef{CalendarEventID: "evt-1", MeetLink: "https://meet.example/abc"}, nil
		},
	}

	svc := NewService(repo, scheduler, testLogger(), 0)

	result, err := svc.Book(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if result.ID != 42 {
		t.Fatalf("id = %d, want 42", result.ID)
	}
	if result.Date != "2024-06-10" || result.Time != "14:00" || result.Service != "architecture-review" {
		t.Fatalf("echoed fields = %+v", result)
	}
	if !result.CalendarEventCreated {
		t.Fatalf("expected CalendarEventCreated = true")
	}
	if storedID != 42 || storedEventID != "evt-1" {
		t.Fatalf("stored reference = (%d, %q), want (42, %q)", storedID, storedEventID, "evt-1")
	}
}

func TestBook_SchedulerFailureDoesNotFailBooking(t *testing.T) {
	var updateCalled bool
	repo := &fakeRepo{
		isSlotAvailableFn: func(ctx context.Context, date, slot string) (bool, error) {
			return true, nil
		},
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			appt.ID = 7
			return appt, nil
		},
		updateCalendarEventIDFn: func(ctx context.Context, id int64, eventID string) error {
			updateCalled = true
			return nil
		},
	}
	scheduler := &fakeScheduler{
		createEventFn: func(ctx context.Context, ev notify.Event) (notify.EventRef, error) {
			return notify.EventRef{}, errors.New("scheduler unreachable")
		},
	}

	svc := NewService(repo, scheduler, testLogger(), 0)

	result, err := svc.Book(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if result.CalendarEventCreated {
		t.Fatalf("expected CalendarEventCreated = false")
	}
	if updateCalled {
		t.Fatalf("UpdateCalendarEventID must not be called when the scheduler fails")
	}
}

func TestBook_SchedulerTimeoutIsBounded(t *testing.T) {
	repo := &fakeRepo{
		isSlotAvailableFn: func(ctx context.Context, date, slot string) (bool, error) {
			return true, nil
		},
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			appt.ID = 8
			return appt, nil
		},
	}
	scheduler := &fakeScheduler{
		createEventFn: func(ctx context.Context, ev notify.Event) (notify.EventRef, error) {
			<-ctx.Done()
			return notify.EventRef{}, ctx.Err()
		},
	}

	svc := NewService(repo, scheduler, testLogger(), 20*time.Millisecond)

	start := time.Now()
	result, err := svc.Book(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if result.CalendarEventCreated {
		t.Fatalf("expected CalendarEventCreated = false on timeout")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("booking blocked for %v waiting on the scheduler", elapsed)
	}
}

func TestBook_NoSchedulerConfigured(t *testing.T) {
	repo := &fakeRepo{
		isSlotAvailableFn: func(ctx context.Context, date, slot string) (bool, error) {
			return true, nil
		},
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			appt.ID = 9
			return appt, nil
		},
	}

	svc := NewService(repo, nil, testLogger(), 0)

	result, err := svc.Book(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if result.CalendarEventCreated {
		t.Fatalf("expected CalendarEventCreated = false without a scheduler")
	}
}

func TestBook_TrimsNameAndEmail(t *testing.T) {
	var got domain.Appointment
	repo := &fakeRepo{
		isSlotAvailableFn: func(ctx context.Context, date, slot string) (bool, error) {
			return true, nil
		},
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			got = appt
			return appt, nil
		},
	}

	svc := NewService(repo, nil, testLogger(), 0)

	req := validRequest()
	req.Name = "  Ada Lovelace  "
	req.Email = " ada@example.com "

	if _, err := svc.Book(context.Background(), req); err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if got.Name != "Ada Lovelace" {
		t.Fatalf("name = %q, want trimmed", got.Name)
	}
	if got.Email != "ada@example.com" {
		t.Fatalf("email = %q, want trimmed", got.Email)
	}
	if got.Status != domain.StatusConfirmed {
		t.Fatalf("status = %q, want %q", got.Status, domain.StatusConfirmed)
	}
}

func TestCancel_ForwardsSoftDelete(t *testing.T) {
	var gotID int64
	var gotStatus domain.AppointmentStatus
	svc := NewService(&fakeRepo{
		setStatusFn: func(ctx context.Context, id int64, status domain.AppointmentStatus) error {
			gotID = id
			gotStatus = status
			return nil
		},
	}, nil, testLogger(), 0)

	if err := svc.Cancel(context.Background(), 5); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if gotID != 5 || gotStatus != domain.StatusCancelled {
		t.Fatalf("SetStatus called with (%d, %q)", gotID, gotStatus)
	}
}

func TestCancel_UnknownIDPropagatesNotFound(t *testing.T) {
	svc := NewService(&fakeRepo{
		setStatusFn: func(ctx context.Context, id int64, status domain.AppointmentStatus) error {
			return store.ErrNotFound
		},
	}, nil, testLogger(), 0)

	if err := svc.Cancel(context.Background(), 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, store.ErrNotFound)
	}
}

func TestCancel_InvalidID(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, testLogger(), 0)

	var vErr *ValidationError
	if err := svc.Cancel(context.Background(), 0); !errors.As(err, &vErr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
}

func TestAppointmentsByDate_RejectsInvalidDate(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, testLogger(), 0)

	_, err := svc.AppointmentsByDate(context.Background(), "June 10")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
}

func TestAppointmentsByEmail_RequiresEmail(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, testLogger(), 0)

	_, err := svc.AppointmentsByEmail(context.Background(), "   ")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
}
