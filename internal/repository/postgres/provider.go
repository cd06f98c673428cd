package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ebookinghq/booking-api/internal/model"
	apperrors "github.com/ebookinghq/booking-api/pkg/errors"
)

func (r *providerRepository) Create(ctx context.Context, provider *model.Provider) error {
	query := `
		INSERT INTO providers (id, user_id, name, contact_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	provider.ID = uuid.New()
	provider.CreatedAt = time.Now()
	provider.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		provider.ID,
		provider.UserID,
		provider.Name,
		provider.ContactEmail,
		provider.CreatedAt,
		provider.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

func (r *providerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	query := `
		SELECT id, user_id, name, contact_email, created_at, updated_at
		FROM providers
		WHERE id = $1
	`
	var provider model.Provider
	if err := r.db.GetContext(ctx, &provider, query, id); err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

func (r *providerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error) {
	query := `
		SELECT id, user_id, name, contact_email, created_at, updated_at
		FROM providers
		WHERE user_id = $1
	`
	var provider model.Provider
	if err := r.db.GetContext(ctx, &provider, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get provider by user: %w", err)
	}
	return &provider, nil
}

func (r *providerRepository) LinkService(ctx context.Context, providerID, serviceID uuid.UUID) error {
	query := `
		INSERT INTO provider_services (provider_id, service_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider_id, service_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, providerID, serviceID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to link service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.Conflict("provider is already linked to this service")
	}
	return nil
}

func (r *providerRepository) IsServiceLinked(ctx context.Context, providerID, serviceID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM provider_services
			WHERE provider_id = $1 AND service_id = $2
		)
	`
	var linked bool
	if err := r.db.GetContext(ctx, &linked, query, providerID, serviceID); err != nil {
		return false, fmt.Errorf("failed to check service link: %w", err)
	}
	return linked, nil
}
