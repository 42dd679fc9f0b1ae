package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

// PaymentRepo is an inert ledger: rows are recorded and summed, never
// charged from here.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

func (r *PaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (business_id, payment_type, amount, status, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		p.BusinessID, p.PaymentType, p.Amount.String(), p.Status, p.Description,
	).Scan(&p.ID, &p.CreatedAt)
}

// ForBusiness lists a business's payments, newest first.
func (r *PaymentRepo) ForBusiness(ctx context.Context, businessID int64) ([]models.Payment, error) {
	query := `
		SELECT id, business_id, payment_type, amount, status, description, created_at, completed_at
		FROM payments
		WHERE business_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var (
			p           models.Payment
			amount      string
			completedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.PaymentType, &amount, &p.Status,
			&p.Description, &p.CreatedAt, &completedAt); err != nil {
			return nil, err
		}
		p.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		if completedAt.Valid {
			p.CompletedAt = &completedAt.Time
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// CompletedRevenue sums all completed payments.
func (r *PaymentRepo) CompletedRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total string
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0)::text FROM payments WHERE status = $1`,
		models.PaymentCompleted,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(total)
}
