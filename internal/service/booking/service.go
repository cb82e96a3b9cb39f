package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/notify"
	"agendly/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// BookingRequest is what the booking form submits. The questionnaire fields
// are free-form labels chosen by the frontend; the workflow stores them as-is.
type BookingRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" validate:"required,datetime=15:04"`
	Service string `json:"service" validate:"required"`

	Company     string `json:"company"`
	Description string `json:"description"`

	AdvisoryType    string `json:"advisory_type"`
	ProjectType     string `json:"project_type"`
	ProjectStage    string `json:"project_stage"`
	Budget          string `json:"budget"`
	Timeline        string `json:"timeline"`
	ExpectedUsers   string `json:"expected_users"`
	Features        string `json:"features"`
	TechPreferences string `json:"tech_preferences"`
	HasTeam         string `json:"has_team"`
	Priority        string `json:"priority"`

	ChatTranscript string `json:"chat_transcript"`
}

type BookingResult struct {
	ID                   int64  `json:"id"`
	Date                 string `json:"date"`
	Time                 string `json:"time"`
	Service              string `json:"service"`
	CalendarEventCreated bool   `json:"calendar_event_created"`
}

type Service struct {
	repo          store.AppointmentRepository
	scheduler     notify.Scheduler
	validate      *validator.Validate
	log           *slog.Logger
	notifyTimeout time.Duration
}

// NewService wires the booking workflow. scheduler may be nil when no
// external calendar collaborator is configured; bookings then succeed with
// CalendarEventCreated = false.
func NewService(repo store.AppointmentRepository, scheduler notify.Scheduler, log *slog.Logger, notifyTimeout time.Duration) *Service {
	if notifyTimeout <= 0 {
		notifyTimeout = 5 * time.Second
	}
	return &Service{
		repo:          repo,
		scheduler:     scheduler,
		validate:      validator.New(),
		log:           log,
		notifyTimeout: notifyTimeout,
	}
}

// Book is the only path that creates appointments: validate, check the slot,
// persist, then best-effort notify the external scheduler. The appointment is
// the source of truth the moment Create returns; a failed notification never
// rolls it back.
func (s *Service) Book(ctx context.Context, req BookingRequest) (BookingResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validate.Struct(req); err != nil {
		return BookingResult{}, validationError(validationMessage(err))
	}

	available, err := s.repo.IsSlotAvailable(ctx, req.Date, req.Time)
	if err != nil {
		return BookingResult{}, fmt.Errorf("check slot availability: %w", err)
	}
	if !available {
		return BookingResult{}, store.ErrSlotTaken
	}

	created, err := s.repo.Create(ctx, domain.Appointment{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Company:         req.Company,
		Date:            req.Date,
		Time:            req.Time,
		Service:         req.Service,
		AdvisoryType:    req.AdvisoryType,
		ProjectType:     req.ProjectType,
		ProjectStage:    req.ProjectStage,
		Budget:          req.Budget,
		Timeline:        req.Timeline,
		ExpectedUsers:   req.ExpectedUsers,
		Features:        req.Features,
		TechPreferences: req.TechPreferences,
		HasTeam:         req.HasTeam,
		Priority:        req.Priority,
		Description:     req.Description,
		Status:          domain.StatusConfirmed,
	})
	if err != nil {
		// The partial unique index closes the check-then-insert race; a
		// lost race surfaces here as the same conflict as the pre-check.
		if errors.Is(err, store.ErrSlotTaken) {
			return BookingResult{}, err
		}
		return BookingResult{}, fmt.Errorf("persist appointment: %w", err)
	}

	return BookingResult{
		ID:                   created.ID,
		Date:                 created.Date,
		Time:                 created.Time,
		Service:              created.Service,
		CalendarEventCreated: s.createCalendarEvent(ctx, created, req.ChatTranscript),
	}, nil
}

func (s *Service) createCalendarEvent(ctx context.Context, appt domain.Appointment, transcript string) bool {
	if s.scheduler == nil {
		return false
	}

	nctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	ref, err := s.scheduler.CreateEvent(nctx, notify.Event{Appointment: appt, ChatTranscript: transcript})
	if err != nil {
		s.log.Warn("calendar event creation failed",
			slog.Int64("appointment_id", appt.ID),
			slog.Any("err", err),
		)
		return false
	}

	if ref.CalendarEventID != "" {
		if err := s.repo.UpdateCalendarEventID(ctx, appt.ID, ref.CalendarEventID); err != nil {
			s.log.Warn("storing calendar event reference failed",
				slog.Int64("appointment_id", appt.ID),
				slog.String("calendar_event_id", ref.CalendarEventID),
				slog.Any("err", err),
			)
		}
	}
	return true
}

// Cancel soft-deletes: the row keeps its history but stops occupying the
// slot. Cancelling an already-cancelled appointment is a no-op success.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	if id <= 0 {
		return validationError("id must be a positive integer")
	}
	return s.repo.SetStatus(ctx, id, domain.StatusCancelled)
}

func (s *Service) OccupiedSlots(ctx context.Context) ([]store.OccupiedSlot, error) {
	return s.repo.ListOccupiedSlots(ctx)
}

func (s *Service) AppointmentsByDate(ctx context.Context, date string) ([]domain.Appointment, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, validationError("date has an invalid format, expected YYYY-MM-DD")
	}
	return s.repo.ListByDate(ctx, date)
}

func (s *Service) AppointmentByID(ctx context.Context, id int64) (domain.Appointment, error) {
	if id <= 0 {
		return domain.Appointment{}, validationError("id must be a positive integer")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) AppointmentsByEmail(ctx context.Context, email string) ([]domain.Appointment, error) {
	if strings.TrimSpace(email) == "" {
		return nil, validationError("email is required")
	}
	return s.repo.ListByEmail(ctx, email)
}

func (s *Service) Stats(ctx context.Context) (store.Stats, error) {
	return s.repo.Stats(ctx)
}

func validationMessage(err error) string {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return "invalid request"
	}

	fe := vErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "datetime":
		return field + " has an invalid format"
	default:
		return field + " is invalid"
	}
}
