package repository

import (
	"context"
	"errors"

	"github.com/Velimir1992/parkbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrIntervalTaken is returned when an insert hits the exclusion
// constraint on (spot_id, tstzrange(start_at, end_at)). The constraint
// is the last line of defence against a double booking: even if the
// application-level check races, the database rejects the overlap.
var ErrIntervalTaken = errors.New("reservation interval already taken")

// ErrIDTaken is returned when the generated reservation id collides
// with a concurrently inserted row.
var ErrIDTaken = errors.New("reservation id already taken")

type ReservationRepository interface {
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, reservation *domain.Reservation) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	ListIntervals(ctx context.Context, spotID int64) ([]domain.Interval, error)
	ListIntervalsOverlapping(ctx context.Context, spotID int64, window domain.Interval) ([]domain.Interval, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) NextID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('reservations_id_seq')`).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGReservationRepository) Insert(ctx context.Context, reservation *domain.Reservation) error {
	err := r.db.QueryRow(ctx, `INSERT INTO reservations (id, spot_id, user_id, start_at, end_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		reservation.ID, reservation.SpotID, reservation.UserID, reservation.Start, reservation.End).
		Scan(&reservation.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23P01":
				return ErrIntervalTaken
			case "23505":
				return ErrIDTaken
			}
		}
		return err
	}
	return nil
}

func (r *PGReservationRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("reservation not found")
	}
	return nil
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT id, spot_id, user_id, start_at, end_at, created_at FROM reservations WHERE id=$1`, id)
	var res domain.Reservation
	if err := row.Scan(&res.ID, &res.SpotID, &res.UserID, &res.Start, &res.End, &res.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGReservationRepository) ListIntervals(ctx context.Context, spotID int64) ([]domain.Interval, error) {
	rows, err := r.db.Query(ctx, `SELECT start_at, end_at FROM reservations WHERE spot_id=$1 ORDER BY start_at`, spotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIntervals(rows)
}

func (r *PGReservationRepository) ListIntervalsOverlapping(ctx context.Context, spotID int64, window domain.Interval) ([]domain.Interval, error) {
	rows, err := r.db.Query(ctx, `SELECT start_at, end_at FROM reservations
		WHERE spot_id=$1 AND start_at < $3 AND end_at > $2
		ORDER BY start_at`, spotID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIntervals(rows)
}

func (r *PGReservationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT id, spot_id, user_id, start_at, end_at, created_at FROM reservations WHERE user_id=$1 ORDER BY start_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.SpotID, &res.UserID, &res.Start, &res.End, &res.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func scanIntervals(rows pgx.Rows) ([]domain.Interval, error) {
	intervals := make([]domain.Interval, 0)
	for rows.Next() {
		var iv domain.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
