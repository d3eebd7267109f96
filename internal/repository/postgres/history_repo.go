package postgres

import (
	"context"
	"database/sql"

	"speakermarket/internal/domain"
)

type statusHistoryRepository struct {
	DB *sql.DB
}

func NewStatusHistoryRepository(db *sql.DB) domain.StatusHistoryRepository {
	return &statusHistoryRepository{DB: db}
}

func (r *statusHistoryRepository) Append(ctx context.Context, h *domain.StatusHistory) error {
	query := `
		INSERT INTO status_history (entity_type, entity_id, previous_status, new_status, reason, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		h.EntityType, h.EntityID, h.PreviousStatus, h.NewStatus, h.Reason, h.ActorID, h.CreatedAt).
		Scan(&h.ID)
}

func (r *statusHistoryRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.StatusHistory, error) {
	query := `
		SELECT id, entity_type, entity_id, previous_status, new_status, reason, COALESCE(actor_id::text, ''), created_at
		FROM status_history
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.StatusHistory
	for rows.Next() {
		h := &domain.StatusHistory{}
		if err := rows.Scan(&h.ID, &h.EntityType, &h.EntityID, &h.PreviousStatus,
			&h.NewStatus, &h.Reason, &h.ActorID, &h.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*domain.StatusHistory{}
	}
	return entries, nil
}
