package repository

import (
	"context"
	"errors"

	"github.com/Velimir1992/parkbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSpotNotFound = errors.New("spot not found")

type SpotRepository interface {
	List(ctx context.Context) ([]domain.Spot, error)
	GetByID(ctx context.Context, id int64) (*domain.Spot, error)
}

type PGSpotRepository struct {
	db *pgxpool.Pool
}

func NewSpotRepository(db *pgxpool.Pool) SpotRepository {
	return &PGSpotRepository{db: db}
}

func (r *PGSpotRepository) List(ctx context.Context) ([]domain.Spot, error) {
	rows, err := r.db.Query(ctx, `SELECT id, owner_id, title, address, price_cents_per_hour, created_at, updated_at FROM spots ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spots := make([]domain.Spot, 0)
	for rows.Next() {
		var s domain.Spot
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Address, &s.PriceCentsPerHour, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}

func (r *PGSpotRepository) GetByID(ctx context.Context, id int64) (*domain.Spot, error) {
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, title, address, price_cents_per_hour, created_at, updated_at FROM spots WHERE id=$1`, id)
	var s domain.Spot
	if err := row.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Address, &s.PriceCentsPerHour, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}
	return &s, nil
}

var _ SpotRepository = (*PGSpotRepository)(nil)
