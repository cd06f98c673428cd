package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ebookinghq/booking-api/internal/model"
)

const appointmentColumns = `id, provider_id, service_id, client_id,
	   appointment_date, start_time, duration_minutes, status,
	   created_at, updated_at`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, provider_id, service_id, client_id,
			appointment_date, start_time, duration_minutes, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.ProviderID,
		appointment.ServiceID,
		appointment.ClientID,
		appointment.Date,
		appointment.StartTime,
		appointment.DurationMinutes,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET service_id = $1, appointment_date = $2, start_time = $3,
			duration_minutes = $4, status = $5, updated_at = $6
		WHERE id = $7
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.ServiceID,
		appointment.Date,
		appointment.StartTime,
		appointment.DurationMinutes,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE client_id = $1
		ORDER BY appointment_date ASC, start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, clientID); err != nil {
		return nil, fmt.Errorf("failed to list client appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE provider_id = $1
		ORDER BY appointment_date ASC, start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, providerID); err != nil {
		return nil, fmt.Errorf("failed to list provider appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByProviderAndDate(ctx context.Context, providerID uuid.UUID, date model.Date) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE provider_id = $1 AND appointment_date = $2
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, providerID, date); err != nil {
		return nil, fmt.Errorf("failed to list provider appointments for date: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListBlocking(ctx context.Context, providerID uuid.UUID, date model.Date) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE provider_id = $1 AND appointment_date = $2
		AND status IN ('PENDING', 'CONFIRMED')
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, providerID, date); err != nil {
		return nil, fmt.Errorf("failed to list blocking appointments: %w", err)
	}
	return appointments, nil
}
