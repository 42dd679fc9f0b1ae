package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

type ModerationRepo struct {
	db *sql.DB
}

func NewModerationRepo(db *sql.DB) *ModerationRepo {
	return &ModerationRepo{db: db}
}

// CreateBusinessRequest inserts a pending request.
func (r *ModerationRepo) CreateBusinessRequest(ctx context.Context, req *models.BusinessRequest) error {
	query := `
		INSERT INTO business_requests (user_id, business_name, business_description,
			phone, latitude, longitude, location_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	req.Status = models.StatusPending
	return r.db.QueryRowContext(ctx, query,
		req.UserID, req.BusinessName, req.BusinessDescription,
		req.Phone, req.Latitude, req.Longitude, req.LocationName, req.Status,
	).Scan(&req.ID, &req.CreatedAt)
}

// GetBusinessRequest returns (nil, nil) when absent.
func (r *ModerationRepo) GetBusinessRequest(ctx context.Context, id int64) (*models.BusinessRequest, error) {
	req, err := scanBusinessRequest(r.db.QueryRowContext(ctx, businessRequestSelect+` WHERE br.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// PendingBusinessRequests lists requests awaiting review, oldest first.
func (r *ModerationRepo) PendingBusinessRequests(ctx context.Context) ([]*models.BusinessRequest, error) {
	query := businessRequestSelect + ` WHERE br.status = $1 ORDER BY br.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("query business requests: %w", err)
	}
	defer rows.Close()

	var reqs []*models.BusinessRequest
	for rows.Next() {
		req, err := scanBusinessRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// ResolveBusinessRequest stamps the reviewer's decision.
func (r *ModerationRepo) ResolveBusinessRequest(ctx context.Context, id int64, status string, reviewerID int64, rejectionReason string) error {
	query := `
		UPDATE business_requests
		SET status = $2, reviewed_at = NOW(), reviewed_by = $3, rejection_reason = $4
		WHERE id = $1 AND status = $5
	`
	res, err := r.db.ExecContext(ctx, query, id, status, reviewerID, rejectionReason, models.StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("request already resolved")
	}
	return nil
}

// CountPendingRequests counts requests awaiting review.
func (r *ModerationRepo) CountPendingRequests(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM business_requests WHERE status = $1`, models.StatusPending,
	).Scan(&n)
	return n, err
}

// CreateVetoAppeal inserts a pending appeal.
func (r *ModerationRepo) CreateVetoAppeal(ctx context.Context, a *models.VetoAppeal) error {
	query := `
		INSERT INTO veto_appeals (business_id, reason, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	a.Status = models.StatusPending
	return r.db.QueryRowContext(ctx, query, a.BusinessID, a.Reason, a.Status).Scan(&a.ID, &a.CreatedAt)
}

// GetVetoAppeal returns (nil, nil) when absent.
func (r *ModerationRepo) GetVetoAppeal(ctx context.Context, id int64) (*models.VetoAppeal, error) {
	a, err := scanVetoAppeal(r.db.QueryRowContext(ctx, vetoAppealSelect+` WHERE va.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// PendingVetoAppeals lists appeals awaiting review, oldest first.
func (r *ModerationRepo) PendingVetoAppeals(ctx context.Context) ([]*models.VetoAppeal, error) {
	query := vetoAppealSelect + ` WHERE va.status = $1 ORDER BY va.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("query veto appeals: %w", err)
	}
	defer rows.Close()

	var appeals []*models.VetoAppeal
	for rows.Next() {
		a, err := scanVetoAppeal(rows)
		if err != nil {
			return nil, err
		}
		appeals = append(appeals, a)
	}
	return appeals, rows.Err()
}

// ResolveVetoAppeal stamps the admin's decision.
func (r *ModerationRepo) ResolveVetoAppeal(ctx context.Context, id int64, status, adminResponse string) error {
	query := `
		UPDATE veto_appeals
		SET status = $2, reviewed_at = NOW(), admin_response = $3
		WHERE id = $1 AND status = $4
	`
	res, err := r.db.ExecContext(ctx, query, id, status, adminResponse, models.StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("appeal already resolved")
	}
	return nil
}

const businessRequestSelect = `
	SELECT br.id, br.user_id, br.business_name, br.business_description,
	       br.phone, br.latitude, br.longitude, br.location_name, br.status,
	       br.created_at, br.reviewed_at, br.reviewed_by, br.rejection_reason,
	       u.username
	FROM business_requests br
	JOIN users u ON u.id = br.user_id
`

func scanBusinessRequest(s interface{ Scan(...any) error }) (*models.BusinessRequest, error) {
	var (
		req        models.BusinessRequest
		reviewedAt sql.NullTime
		reviewedBy sql.NullInt64
	)
	err := s.Scan(
		&req.ID, &req.UserID, &req.BusinessName, &req.BusinessDescription,
		&req.Phone, &req.Latitude, &req.Longitude, &req.LocationName, &req.Status,
		&req.CreatedAt, &reviewedAt, &reviewedBy, &req.RejectionReason,
		&req.Username,
	)
	if err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		req.ReviewedAt = &reviewedAt.Time
	}
	if reviewedBy.Valid {
		req.ReviewedBy = &reviewedBy.Int64
	}
	return &req, nil
}

const vetoAppealSelect = `
	SELECT va.id, va.business_id, va.reason, va.status, va.created_at,
	       va.reviewed_at, va.admin_response, u.business_name
	FROM veto_appeals va
	JOIN users u ON u.id = va.business_id
`

func scanVetoAppeal(s interface{ Scan(...any) error }) (*models.VetoAppeal, error) {
	var (
		a          models.VetoAppeal
		reviewedAt sql.NullTime
	)
	err := s.Scan(&a.ID, &a.BusinessID, &a.Reason, &a.Status, &a.CreatedAt,
		&reviewedAt, &a.AdminResponse, &a.BusinessName)
	if err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		a.ReviewedAt = &reviewedAt.Time
	}
	return &a, nil
}
