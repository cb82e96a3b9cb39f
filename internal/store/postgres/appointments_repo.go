package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

// Name of the partial unique index on (date, time) WHERE status = 'confirmed'.
// A 23505 on it means two bookings raced for the same slot.
const confirmedSlotConstraint = "appointments_confirmed_slot_key"

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

func (r *AppointmentRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	m.ID = 0

	_, err := r.db.NewInsert().
		Model(&m).
		Returning("id, status, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		if isConfirmedSlotViolation(err) {
			return domain.Appointment{}, store.ErrSlotTaken
		}
		return domain.Appointment{}, err
	}

	return m, nil
}

func (r *AppointmentRepo) UpdateCalendarEventID(ctx context.Context, id int64, eventID string) error {
	res, err := r.db.NewUpdate().
		Model((*domain.Appointment)(nil)).
		Set("calendar_event_id = ?", eventID).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *AppointmentRepo) IsSlotAvailable(ctx context.Context, date, slot string) (bool, error) {
	taken, err := r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("date = ?", date).
		Where("time = ?", slot).
		Where("status = ?", domain.StatusConfirmed).
		Exists(ctx)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (r *AppointmentRepo) ListOccupiedSlots(ctx context.Context) ([]store.OccupiedSlot, error) {
	slots := make([]store.OccupiedSlot, 0)
	err := r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Column("date", "time").
		Where("status = ?", domain.StatusConfirmed).
		OrderExpr("date ASC, time ASC").
		Scan(ctx, &slots)
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *AppointmentRepo) ListByDate(ctx context.Context, date string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("date = ?", date).
		Where("status = ?", domain.StatusConfirmed).
		OrderExpr("time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (domain.Appointment, error) {
	var appt domain.Appointment
	err := r.db.NewSelect().
		Model(&appt).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (r *AppointmentRepo) ListByEmail(ctx context.Context, email string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("email = ?", email).
		OrderExpr("date DESC, time DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) SetStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	res, err := r.db.NewUpdate().
		Model((*domain.Appointment)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *AppointmentRepo) Stats(ctx context.Context) (store.Stats, error) {
	var stats store.Stats
	err := r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		ColumnExpr("count(*) AS total").
		ColumnExpr("count(*) FILTER (WHERE status = ?) AS confirmed", domain.StatusConfirmed).
		ColumnExpr("count(*) FILTER (WHERE status = ?) AS cancelled", domain.StatusCancelled).
		Scan(ctx, &stats)
	if err != nil {
		return store.Stats{}, err
	}
	return stats, nil
}

func isConfirmedSlotViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == confirmedSlotConstraint
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
