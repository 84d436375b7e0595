package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"portfolio-tracker/internal/entity"
	"portfolio-tracker/pkg/logger"
)

// filePositionRepository persists positions as a single pretty-printed JSON
// array. Every mutation rewrites the whole file through a temp-file rename so
// a crash mid-write cannot corrupt the stored portfolio.
type filePositionRepository struct {
	path      string
	log       *logger.Logger
	mu        sync.Mutex
	positions []entity.Position
	nextID    uint
}

// NewFilePositionRepository creates a file-backed position repository,
// loading any previously persisted portfolio from disk.
func NewFilePositionRepository(path string, log *logger.Logger) (PositionRepository, error) {
	r := &filePositionRepository{path: path, log: log}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *filePositionRepository) load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.log.Info("Portfolio file not found, starting empty", logger.StringField("path", r.path))
		r.positions = []entity.Position{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read portfolio file: %w", err)
	}
	if err := json.Unmarshal(data, &r.positions); err != nil {
		return fmt.Errorf("failed to parse portfolio file: %w", err)
	}
	for _, p := range r.positions {
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return nil
}

// save writes the portfolio atomically: write to a temp file in the same
// directory, sync, then rename over the destination.
func (r *filePositionRepository) save() error {
	data, err := json.MarshalIndent(r.positions, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// assignID hands out monotonically increasing IDs, seeded from the highest
// persisted ID, so deleting a position never frees its ID for reuse.
func (r *filePositionRepository) assignID() uint {
	if r.nextID == 0 {
		r.nextID = 1
	}
	id := r.nextID
	r.nextID++
	return id
}

// FindAll returns all positions in insertion order.
func (r *filePositionRepository) FindAll(ctx context.Context) ([]entity.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Position, len(r.positions))
	copy(out, r.positions)
	return out, nil
}

// FindByID returns the position with the given ID.
func (r *filePositionRepository) FindByID(ctx context.Context, id uint) (*entity.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.positions {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrPositionNotFound
}

// Create appends a new position and persists the portfolio.
func (r *filePositionRepository) Create(ctx context.Context, position *entity.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	position.ID = r.assignID()
	if position.DateAdded.IsZero() {
		position.DateAdded = time.Now()
	}
	r.positions = append(r.positions, *position)
	if err := r.save(); err != nil {
		r.positions = r.positions[:len(r.positions)-1]
		return err
	}
	return nil
}

// Update replaces an existing position in place and persists the portfolio.
func (r *filePositionRepository) Update(ctx context.Context, position *entity.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.positions {
		if p.ID == position.ID {
			previous := r.positions[i]
			r.positions[i] = *position
			if err := r.save(); err != nil {
				r.positions[i] = previous
				return err
			}
			return nil
		}
	}
	return ErrPositionNotFound
}

// Delete removes the position with the given ID and persists the portfolio.
func (r *filePositionRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.positions {
		if p.ID == id {
			removed := r.positions[i]
			r.positions = append(r.positions[:i], r.positions[i+1:]...)
			if err := r.save(); err != nil {
				r.positions = append(r.positions[:i], append([]entity.Position{removed}, r.positions[i:]...)...)
				return err
			}
			return nil
		}
	}
	return ErrPositionNotFound
}
