package repository

import (
	"context"
	"errors"

	"portfolio-tracker/internal/entity"
)

// ErrPositionNotFound is returned when no position exists for the given ID.
var ErrPositionNotFound = errors.New("position not found")

// PositionRepository defines the interface for position data operations.
type PositionRepository interface {
	FindAll(ctx context.Context) ([]entity.Position, error)
	FindByID(ctx context.Context, id uint) (*entity.Position, error)
	Create(ctx context.Context, position *entity.Position) error
	Update(ctx context.Context, position *entity.Position) error
	Delete(ctx context.Context, id uint) error
}
