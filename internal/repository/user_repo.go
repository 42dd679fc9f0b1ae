package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `
	id, username, email, role, phone, latitude, longitude, location_name,
	notifications_enabled, business_name, business_description,
	business_verified, business_vetted, veto_reason, created_at
`

func scanUser(s interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u         models.User
		latitude  sql.NullFloat64
		longitude sql.NullFloat64
	)
	err := s.Scan(
		&u.ID, &u.Username, &u.Email, &u.Role, &u.Phone, &latitude, &longitude, &u.LocationName,
		&u.NotificationsEnabled, &u.BusinessName, &u.BusinessDescription,
		&u.BusinessVerified, &u.BusinessVetted, &u.VetoReason, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if latitude.Valid {
		u.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		u.Longitude = &longitude.Float64
	}
	return &u, nil
}

// Get returns (nil, nil) when the user does not exist.
func (r *UserRepo) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// Admins lists all administrator accounts.
func (r *UserRepo) Admins(ctx context.Context) ([]models.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1`, models.RoleAdmin)
}

// BusinessFollowers lists users following a business.
func (r *UserRepo) BusinessFollowers(ctx context.Context, businessID int64) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id IN (SELECT user_id FROM business_followers WHERE business_id = $1)
	`
	return r.queryUsers(ctx, query, businessID)
}

// CategoryFollowers lists users following a category.
func (r *UserRepo) CategoryFollowers(ctx context.Context, categoryID int64) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id IN (SELECT user_id FROM category_followers WHERE category_id = $1)
	`
	return r.queryUsers(ctx, query, categoryID)
}

// FollowersCount returns how many users follow the business.
func (r *UserRepo) FollowersCount(ctx context.Context, businessID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM business_followers WHERE business_id = $1`, businessID,
	).Scan(&n)
	return n, err
}

// ToggleFollowBusiness flips the follow edge and reports the new state.
func (r *UserRepo) ToggleFollowBusiness(ctx context.Context, userID, businessID int64) (bool, error) {
	return r.toggleFollow(ctx,
		`DELETE FROM business_followers WHERE user_id = $1 AND business_id = $2`,
		`INSERT INTO business_followers (user_id, business_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, businessID,
	)
}

// ToggleFollowCategory flips the follow edge and reports the new state.
func (r *UserRepo) ToggleFollowCategory(ctx context.Context, userID, categoryID int64) (bool, error) {
	return r.toggleFollow(ctx,
		`DELETE FROM category_followers WHERE user_id = $1 AND category_id = $2`,
		`INSERT INTO category_followers (user_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, categoryID,
	)
}

func (r *UserRepo) toggleFollow(ctx context.Context, deleteQ, insertQ string, ids ...any) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, deleteQ, ids...)
	if err != nil {
		return false, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	following := false
	if removed == 0 {
		if _, err := tx.ExecContext(ctx, insertQ, ids...); err != nil {
			return false, err
		}
		following = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("tx commit: %w", err)
	}
	committed = true
	return following, nil
}

// PromoteToBusiness marks a user as a verified business account, copying
// the approved request profile onto the user row.
func (r *UserRepo) PromoteToBusiness(ctx context.Context, req *models.BusinessRequest) error {
	query := `
		UPDATE users
		SET role = $2, business_name = $3, business_description = $4, phone = $5,
		    latitude = $6, longitude = $7, location_name = $8,
		    business_verified = TRUE, business_vetted = FALSE, veto_reason = ''
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		req.UserID, models.RoleBusiness, req.BusinessName, req.BusinessDescription,
		req.Phone, req.Latitude, req.Longitude, req.LocationName,
	)
	return err
}

// SetVetted sets or clears the business veto flag.
func (r *UserRepo) SetVetted(ctx context.Context, businessID int64, vetted bool, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET business_vetted = $2, veto_reason = $3 WHERE id = $1`,
		businessID, vetted, reason,
	)
	return err
}

// AdminUserCounts aggregates the user counts shown on the admin dashboard.
type AdminUserCounts struct {
	RegularUsers       int
	VerifiedBusinesses int
	VettedBusinesses   int
}

func (r *UserRepo) AdminCounts(ctx context.Context) (AdminUserCounts, error) {
	var c AdminUserCounts
	query := `
		SELECT
			COUNT(*) FILTER (WHERE role = $1),
			COUNT(*) FILTER (WHERE role = $2 AND business_verified),
			COUNT(*) FILTER (WHERE business_vetted)
		FROM users
	`
	err := r.db.QueryRowContext(ctx, query, models.RoleUser, models.RoleBusiness).
		Scan(&c.RegularUsers, &c.VerifiedBusinesses, &c.VettedBusinesses)
	return c, err
}

func (r *UserRepo) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
