package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/iliyamo/design-studio/internal/model"
)

// ShowcaseRepo persists curated showcase designs.  Tags are stored as a
// JSON array.
type ShowcaseRepo struct{ db *sql.DB }

func NewShowcaseRepo(db *sql.DB) *ShowcaseRepo { return &ShowcaseRepo{db: db} }

const showcaseColumns = `id, title, description, prompt, image_base64, clothing_type, color, template_id, tags, likes_count, is_featured, is_active, created_at, updated_at`

func scanShowcase(s scanner) (model.ShowcaseDesign, error) {
	var (
		d       model.ShowcaseDesign
		tags    []byte
		updated sql.NullTime
	)
	if err := s.Scan(&d.ID, &d.Title, &d.Description, &d.Prompt, &d.ImageBase64, &d.ClothingType,
		&d.Color, &d.TemplateID, &tags, &d.LikesCount, &d.IsFeatured, &d.IsActive, &d.CreatedAt, &updated); err != nil {
		return d, err
	}
	d.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &d.Tags); err != nil {
			return d, err
		}
	}
	if updated.Valid {
		t := updated.Time
		d.UpdatedAt = &t
	}
	return d, nil
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func (r *ShowcaseRepo) query(ctx context.Context, q string, args ...any) ([]model.ShowcaseDesign, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ShowcaseDesign{}
	for rows.Next() {
		d, err := scanShowcase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListActive returns active designs, featured first, then by likes.
func (r *ShowcaseRepo) ListActive(ctx context.Context, limit int) ([]model.ShowcaseDesign, error) {
	return r.query(ctx, `SELECT `+showcaseColumns+` FROM showcase_designs WHERE is_active=TRUE
		ORDER BY is_featured DESC, likes_count DESC, created_at DESC LIMIT ?`, limit)
}

func (r *ShowcaseRepo) List(ctx context.Context) ([]model.ShowcaseDesign, error) {
	return r.query(ctx, `SELECT `+showcaseColumns+` FROM showcase_designs ORDER BY created_at DESC`)
}

func (r *ShowcaseRepo) Create(ctx context.Context, d *model.ShowcaseDesign) error {
	tags, err := encodeTags(d.Tags)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO showcase_designs (`+showcaseColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.Title, d.Description, d.Prompt, d.ImageBase64, d.ClothingType, d.Color, d.TemplateID,
		tags, d.LikesCount, d.IsFeatured, d.IsActive, d.CreatedAt, nil)
	return err
}

// Update loads the row under lock, applies patch and writes it back.
func (r *ShowcaseRepo) Update(ctx context.Context, id string, patch model.ShowcasePatch, now time.Time) (model.ShowcaseDesign, error) {
	var d model.ShowcaseDesign
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		d, err = scanShowcase(tx.QueryRowContext(ctx,
			`SELECT `+showcaseColumns+` FROM showcase_designs WHERE id=? FOR UPDATE`, id))
		if err != nil {
			return notFound(err)
		}
		patch.Apply(&d)
		d.UpdatedAt = &now
		tags, err := encodeTags(d.Tags)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE showcase_designs SET title=?, description=?, prompt=?, image_base64=?, clothing_type=?,
			        color=?, template_id=?, tags=?, is_featured=?, is_active=?, updated_at=? WHERE id=?`,
			d.Title, d.Description, d.Prompt, d.ImageBase64, d.ClothingType, d.Color, d.TemplateID,
			tags, d.IsFeatured, d.IsActive, now, id)
		return err
	})
	return d, err
}

func (r *ShowcaseRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM showcase_designs WHERE id=?`, id))
}

// ToggleFeatured flips is_featured and returns the new value.
func (r *ShowcaseRepo) ToggleFeatured(ctx context.Context, id string, now time.Time) (bool, error) {
	var featured bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT is_featured FROM showcase_designs WHERE id=? FOR UPDATE`, id).Scan(&featured); err != nil {
			return notFound(err)
		}
		featured = !featured
		_, err := tx.ExecContext(ctx,
			`UPDATE showcase_designs SET is_featured=?, updated_at=? WHERE id=?`, featured, now, id)
		return err
	})
	return featured, err
}
