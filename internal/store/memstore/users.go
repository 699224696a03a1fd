package memstore

import (
	"context"
	"strings"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

type UserRepo struct{ db *DB }

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, x := range r.db.users.rows {
		if strings.EqualFold(x.Username, u.Username) || strings.EqualFold(x.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	ensureID(&u.ID)
	ensureTime(&u.CreatedAt)
	r.db.users.put(u.ID, *u)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users.get(id)
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == username })
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *UserRepo) find(match func(model.User) bool) (model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users.rows {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r *UserRepo) List(_ context.Context) ([]model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.users.newestFirst(nil), nil
}

func (r *UserRepo) UpdateQuotaSettings(_ context.Context, id string, limit *int, unlimited *bool) (model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users.get(id)
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if limit != nil {
		u.DesignsLimit = *limit
	}
	if unlimited != nil {
		u.IsUnlimited = *unlimited
	}
	r.db.users.put(id, u)
	return u, nil
}

func (r *UserRepo) UpdateMeasurements(_ context.Context, id string, m model.Measurements) (model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users.get(id)
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	u.Measurements = &m
	r.db.users.put(id, u)
	return u, nil
}
