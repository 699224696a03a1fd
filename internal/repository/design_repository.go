package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/design-studio/internal/model"
)

// DesignRepo persists saved designs.
type DesignRepo struct{ db *sql.DB }

func NewDesignRepo(db *sql.DB) *DesignRepo { return &DesignRepo{db: db} }

const designColumns = `id, user_id, prompt, image_base64, clothing_type, template_id, color, phone_number, user_photo_base64, logo_base64, is_favorite, created_at`

func scanDesign(s scanner, extra ...any) (model.Design, error) {
	var d model.Design
	dest := []any{&d.ID, &d.UserID, &d.Prompt, &d.ImageBase64, &d.ClothingType, &d.TemplateID,
		&d.Color, &d.PhoneNumber, &d.UserPhotoBase64, &d.LogoBase64, &d.IsFavorite, &d.CreatedAt}
	err := s.Scan(append(dest, extra...)...)
	return d, err
}

// CreateWithOrder inserts the design and, when o is set, its order in one
// transaction.
func (r *DesignRepo) CreateWithOrder(ctx context.Context, d *model.Design, o *model.Order) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO designs (`+designColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			d.ID, d.UserID, d.Prompt, d.ImageBase64, d.ClothingType, d.TemplateID, d.Color,
			d.PhoneNumber, d.UserPhotoBase64, d.LogoBase64, d.IsFavorite, d.CreatedAt); err != nil {
			return err
		}
		if o == nil {
			return nil
		}
		if o.DesignID == "" {
			o.DesignID = d.ID
		}
		return insertOrder(ctx, tx, o)
	})
}

func (r *DesignRepo) ListByUser(ctx context.Context, userID string) ([]model.Design, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+designColumns+` FROM designs WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Design{}
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListAll returns every design with its owner's username and email.
func (r *DesignRepo) ListAll(ctx context.Context) ([]model.DesignWithOwner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT d.id, d.user_id, d.prompt, d.image_base64, d.clothing_type, d.template_id, d.color,
		        d.phone_number, d.user_photo_base64, d.logo_base64, d.is_favorite, d.created_at,
		        COALESCE(u.username, ''), COALESCE(u.email, '')
		   FROM designs d LEFT JOIN users u ON u.id = d.user_id
		  ORDER BY d.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.DesignWithOwner{}
	for rows.Next() {
		var row model.DesignWithOwner
		d, err := scanDesign(rows, &row.UserName, &row.UserEmail)
		if err != nil {
			return nil, err
		}
		row.Design = d
		out = append(out, row)
	}
	return out, rows.Err()
}

// ToggleFavorite flips is_favorite on a design owned by userID and returns
// the new value.
func (r *DesignRepo) ToggleFavorite(ctx context.Context, id, userID string) (bool, error) {
	var fav bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT is_favorite FROM designs WHERE id=? AND user_id=? FOR UPDATE`, id, userID).Scan(&fav); err != nil {
			return notFound(err)
		}
		fav = !fav
		_, err := tx.ExecContext(ctx, `UPDATE designs SET is_favorite=? WHERE id=?`, fav, id)
		return err
	})
	return fav, err
}

// DeleteAndRelease deletes the design and decrements its owner's
// designs_used (floored at zero) in one transaction.  An empty ownerID
// deletes regardless of owner.
func (r *DesignRepo) DeleteAndRelease(ctx context.Context, id, ownerID string) (model.Design, error) {
	var d model.Design
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		d, err = scanDesign(tx.QueryRowContext(ctx,
			`SELECT `+designColumns+` FROM designs WHERE id=? FOR UPDATE`, id))
		if err != nil {
			return notFound(err)
		}
		if ownerID != "" && d.UserID != ownerID {
			return ErrNotFound
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM designs WHERE id=?`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, releaseSQL, d.UserID)
		return err
	})
	return d, err
}
