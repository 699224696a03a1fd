package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/design-studio/internal/model"
)

// OrderRepo persists orders.
type OrderRepo struct{ db *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, user_id, design_id, design_image_base64, prompt, phone_number, size, color, price, discount, final_price, coupon_code, notes, status, created_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertOrder(ctx context.Context, db execer, o *model.Order) error {
	if o.Status == "" {
		o.Status = model.OrderPending
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.UserID, nullString(o.DesignID), o.DesignImageBase64, o.Prompt, o.PhoneNumber,
		o.Size, o.Color, o.Price, o.Discount, o.FinalPrice, nullString(o.CouponCode), o.Notes,
		string(o.Status), o.CreatedAt)
	return err
}

func scanOrder(s scanner, extra ...any) (model.Order, error) {
	var (
		o              model.Order
		designID, code sql.NullString
		status         string
	)
	dest := []any{&o.ID, &o.UserID, &designID, &o.DesignImageBase64, &o.Prompt, &o.PhoneNumber,
		&o.Size, &o.Color, &o.Price, &o.Discount, &o.FinalPrice, &code, &o.Notes, &status, &o.CreatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return o, err
	}
	o.DesignID, o.CouponCode, o.Status = designID.String, code.String, model.OrderStatus(status)
	return o, nil
}

func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	return insertOrder(ctx, r.db, o)
}

// CreateWithRedemption redeems the coupon named by red against o and
// inserts o, all in one transaction.  check may adjust o's pricing.
func (r *OrderRepo) CreateWithRedemption(ctx context.Context, o *model.Order, red Redemption, check CouponCheck) (model.CouponUsage, error) {
	var usage model.CouponUsage
	red.OrderID = o.ID
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		if usage, err = redeemTx(ctx, tx, red, check); err != nil {
			return err
		}
		return insertOrder(ctx, tx, o)
	})
	return usage, err
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListAll returns every order with its customer's username and email.
func (r *OrderRepo) ListAll(ctx context.Context) ([]model.OrderWithOwner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT o.id, o.user_id, o.design_id, o.design_image_base64, o.prompt, o.phone_number, o.size,
		        o.color, o.price, o.discount, o.final_price, o.coupon_code, o.notes, o.status, o.created_at,
		        COALESCE(u.username, ''), COALESCE(u.email, '')
		   FROM orders o LEFT JOIN users u ON u.id = o.user_id
		  ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.OrderWithOwner{}
	for rows.Next() {
		var row model.OrderWithOwner
		o, err := scanOrder(rows, &row.UserName, &row.UserEmail)
		if err != nil {
			return nil, err
		}
		row.Order = o
		out = append(out, row)
	}
	return out, rows.Err()
}

// UpdateStatus sets the order status.  Setting the current status again
// is not an error.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id=?`, id).Scan(&exists); err != nil {
		return notFound(err)
	}
	_, err := r.db.ExecContext(ctx, `UPDATE orders SET status=? WHERE id=?`, string(status), id)
	return err
}
