package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ebookinghq/booking-api/internal/model"
)

func (r *windowRepository) Create(ctx context.Context, window *model.AvailabilityWindow) error {
	query := `
		INSERT INTO availability_windows (
			id, provider_id, weekday, start_time, end_time, service_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	window.ID = uuid.New()
	window.CreatedAt = time.Now()
	window.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		window.ID,
		window.ProviderID,
		window.Weekday,
		window.StartTime,
		window.EndTime,
		window.ServiceID,
		window.CreatedAt,
		window.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability window: %w", err)
	}
	return nil
}

func (r *windowRepository) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityWindow, error) {
	query := `
		SELECT id, provider_id, weekday, start_time, end_time, service_id,
			   created_at, updated_at
		FROM availability_windows
		WHERE id = $1
	`
	var window model.AvailabilityWindow
	if err := r.db.GetContext(ctx, &window, query, id); err != nil {
		return nil, fmt.Errorf("failed to get availability window: %w", err)
	}
	return &window, nil
}

func (r *windowRepository) Update(ctx context.Context, window *model.AvailabilityWindow) error {
	query := `
		UPDATE availability_windows
		SET weekday = $1, start_time = $2, end_time = $3, service_id = $4, updated_at = $5
		WHERE id = $6
	`
	window.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		window.Weekday,
		window.StartTime,
		window.EndTime,
		window.ServiceID,
		window.UpdatedAt,
		window.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update availability window: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("availability window not found")
	}
	return nil
}

func (r *windowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM availability_windows
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability window: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("availability window not found")
	}
	return nil
}

func (r *windowRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.AvailabilityWindow, error) {
	query := `
		SELECT id, provider_id, weekday, start_time, end_time, service_id,
			   created_at, updated_at
		FROM availability_windows
		WHERE provider_id = $1
		ORDER BY weekday, start_time ASC
	`
	var windows []*model.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, providerID); err != nil {
		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}
	return windows, nil
}

func (r *windowRepository) ListByProviderAndWeekday(ctx context.Context, providerID uuid.UUID, weekday model.Weekday) ([]*model.AvailabilityWindow, error) {
	query := `
		SELECT id, provider_id, weekday, start_time, end_time, service_id,
			   created_at, updated_at
		FROM availability_windows
		WHERE provider_id = $1 AND weekday = $2
		ORDER BY start_time ASC
	`
	var windows []*model.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, providerID, weekday); err != nil {
		return nil, fmt.Errorf("failed to list availability windows for weekday: %w", err)
	}
	return windows, nil
}
