package repository

import (
	"context"
	"errors"

	"github.com/Velimir1992/parkbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository interface {
	// Insert records the transaction. The write is idempotent: a second
	// insert with the same payment reference is a no-op, never an error.
	Insert(ctx context.Context, tx *domain.Transaction) error
	GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Transaction, error)
}

type PGTransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &PGTransactionRepository{db: db}
}

func (r *PGTransactionRepository) Insert(ctx context.Context, tx *domain.Transaction) error {
	_, err := r.db.Exec(ctx, `INSERT INTO transactions (payment_ref, reservation_id, amount_cents, paid)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (payment_ref) DO NOTHING`,
		tx.PaymentRef, tx.ReservationID, tx.AmountCents, tx.Paid)
	return err
}

func (r *PGTransactionRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx, `SELECT payment_ref, reservation_id, amount_cents, paid, created_at FROM transactions WHERE payment_ref=$1`, paymentRef)
	var tx domain.Transaction
	if err := row.Scan(&tx.PaymentRef, &tx.ReservationID, &tx.AmountCents, &tx.Paid, &tx.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

var _ TransactionRepository = (*PGTransactionRepository)(nil)
