package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/supercivilian/supercivilian/internal/core/domain"
)

// OccupancyRepo implements ports.OccupancyRepository.
type OccupancyRepo struct {
	db *DB
}

func NewOccupancyRepo(db *DB) *OccupancyRepo {
	return &OccupancyRepo{db: db}
}

func (r *OccupancyRepo) Get(ctx context.Context, shelterID int64) (*domain.Occupancy, error) {
	o := &domain.Occupancy{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, capacity, occupancy, updated_at
		FROM shelter_occupancy WHERE id = $1
	`, shelterID).Scan(&o.ShelterID, &o.Capacity, &o.Occupancy, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OccupancyRepo) Upsert(ctx context.Context, occ *domain.Occupancy) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO shelter_occupancy (id, capacity, occupancy, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			capacity = EXCLUDED.capacity,
			occupancy = EXCLUDED.occupancy,
			updated_at = EXCLUDED.updated_at
	`, occ.ShelterID, occ.Capacity, occ.Occupancy, occ.UpdatedAt)
	return err
}
