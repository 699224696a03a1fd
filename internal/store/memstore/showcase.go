package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

type ShowcaseRepo struct{ db *DB }

func (r *ShowcaseRepo) ListActive(_ context.Context, limit int) ([]model.ShowcaseDesign, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := r.db.showcase.newestFirst(func(d model.ShowcaseDesign) bool { return d.IsActive })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsFeatured != out[j].IsFeatured {
			return out[i].IsFeatured
		}
		return out[i].LikesCount > out[j].LikesCount
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ShowcaseRepo) List(_ context.Context) ([]model.ShowcaseDesign, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.showcase.newestFirst(nil), nil
}

func (r *ShowcaseRepo) Create(_ context.Context, d *model.ShowcaseDesign) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ensureID(&d.ID)
	ensureTime(&d.CreatedAt)
	if d.Tags == nil {
		d.Tags = []string{}
	}
	r.db.showcase.put(d.ID, *d)
	return nil
}

func (r *ShowcaseRepo) Update(_ context.Context, id string, patch model.ShowcasePatch, now time.Time) (model.ShowcaseDesign, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.showcase.get(id)
	if !ok {
		return model.ShowcaseDesign{}, repository.ErrNotFound
	}
	patch.Apply(&d)
	d.UpdatedAt = &now
	r.db.showcase.put(id, d)
	return d, nil
}

func (r *ShowcaseRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !r.db.showcase.del(id) {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ShowcaseRepo) ToggleFeatured(_ context.Context, id string, now time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.showcase.get(id)
	if !ok {
		return false, repository.ErrNotFound
	}
	d.IsFeatured = !d.IsFeatured
	d.UpdatedAt = &now
	r.db.showcase.put(id, d)
	return d.IsFeatured, nil
}
