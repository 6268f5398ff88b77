package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/otcheredev/pcd-manager/internal/models"
)

// AssociationEventRepository records and queries the audited history of
// connection-context state transitions, backing the admin API's
// association history endpoint.
type AssociationEventRepository struct {
	db *gorm.DB
}

func NewAssociationEventRepository(db *gorm.DB) *AssociationEventRepository {
	return &AssociationEventRepository{db: db}
}

// Create persists one transition event.
func (r *AssociationEventRepository) Create(ctx context.Context, ev *models.AssociationEvent) error {
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("repository: create association event: %w", err)
	}
	return nil
}

// GetByConnectionID retrieves the full transition history for one
// connection context, oldest first.
func (r *AssociationEventRepository) GetByConnectionID(ctx context.Context, connectionID uuid.UUID) ([]models.AssociationEvent, error) {
	var events []models.AssociationEvent
	if err := r.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("repository: get association events: %w", err)
	}
	return events, nil
}

// Recent retrieves the most recent events across all connections,
// newest first, for the admin dashboard.
func (r *AssociationEventRepository) Recent(ctx context.Context, limit int) ([]models.AssociationEvent, error) {
	var events []models.AssociationEvent
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("repository: get recent association events: %w", err)
	}
	return events, nil
}
