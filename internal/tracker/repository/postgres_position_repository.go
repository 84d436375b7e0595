package repository

import (
	"context"
	"errors"

	"portfolio-tracker/internal/entity"

	"gorm.io/gorm"
)

// NewPostgresPositionRepository creates a new GORM-based position repository.
func NewPostgresPositionRepository(db *gorm.DB) PositionRepository {
	return &postgresPositionRepository{db: db}
}

type postgresPositionRepository struct {
	db *gorm.DB
}

// FindAll retrieves all positions ordered by ID.
func (r *postgresPositionRepository) FindAll(ctx context.Context) ([]entity.Position, error) {
	var positions []entity.Position
	if err := r.db.WithContext(ctx).Order("id").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// FindByID retrieves a position by its ID.
func (r *postgresPositionRepository) FindByID(ctx context.Context, id uint) (*entity.Position, error) {
	var position entity.Position
	if err := r.db.WithContext(ctx).First(&position, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	return &position, nil
}

// Create inserts a new position.
func (r *postgresPositionRepository) Create(ctx context.Context, position *entity.Position) error {
	return r.db.WithContext(ctx).Create(position).Error
}

// Update saves an existing position.
func (r *postgresPositionRepository) Update(ctx context.Context, position *entity.Position) error {
	result := r.db.WithContext(ctx).Model(&entity.Position{}).Where("id = ?", position.ID).
		Updates(map[string]interface{}{
			"description":    position.Description,
			"ticker":         position.Ticker,
			"quantity":       position.Quantity,
			"purchase_price": position.PurchasePrice,
			"fees":           position.Fees,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPositionNotFound
	}
	return nil
}

// Delete removes a position by its ID.
func (r *postgresPositionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Position{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPositionNotFound
	}
	return nil
}
