package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/iliyamo/design-studio/internal/model"
)

// UserRepo reads and writes the users table, including the quota
// settings columns.  Measurements are stored as a JSON object.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, email, password_hash, is_admin, designs_limit, designs_used, is_unlimited, email_verified, measurements, created_at`

func scanUser(s scanner) (model.User, error) {
	var (
		u            model.User
		measurements []byte
	)
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin,
		&u.DesignsLimit, &u.DesignsUsed, &u.IsUnlimited, &u.EmailVerified, &measurements, &u.CreatedAt); err != nil {
		return u, err
	}
	if len(measurements) > 0 {
		u.Measurements = &model.Measurements{}
		if err := json.Unmarshal(measurements, u.Measurements); err != nil {
			return u, err
		}
	}
	return u, nil
}

// encodeMeasurements returns nil for a nil m so the column stays NULL.
func encodeMeasurements(m *model.Measurements) (any, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Create inserts u.  A taken username or email yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	measurements, err := encodeMeasurements(u.Measurements)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsAdmin,
		u.DesignsLimit, u.DesignsUsed, u.IsUnlimited, u.EmailVerified, measurements, u.CreatedAt)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id))
	return u, notFound(err)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username=? LIMIT 1`, username))
	return u, notFound(err)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, email))
	return u, notFound(err)
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateQuotaSettings sets designs_limit and/or is_unlimited and returns
// the updated row.
func (r *UserRepo) UpdateQuotaSettings(ctx context.Context, id string, limit *int, unlimited *bool) (model.User, error) {
	var sets []string
	var args []any
	if limit != nil {
		sets = append(sets, "designs_limit=?")
		args = append(args, *limit)
	}
	if unlimited != nil {
		sets = append(sets, "is_unlimited=?")
		args = append(args, *unlimited)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdateMeasurements replaces the stored measurements of user id.
func (r *UserRepo) UpdateMeasurements(ctx context.Context, id string, m model.Measurements) (model.User, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return model.User{}, err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET measurements=? WHERE id=?`, raw, id); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}
