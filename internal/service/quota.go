package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

// Quota is the per-user generation ledger.
//
// The generation path never does check-then-write.  Reserve takes a hold on
// one slot inside a single storage transaction; Commit turns the hold into
// a consumed slot and is the only path that raises designs_used.  Cancel
// gives the hold back.  A hold expires after holdTTL so a
// request that dies mid-render cannot pin a slot.
type Quota struct {
	store   QuotaStore
	holdTTL time.Duration
	now     func() time.Time
}

// Reservation is a granted hold on one generation slot.
type Reservation struct {
	UserID string
	Token  string
	// Quota as seen when the hold was granted, not counting the hold.
	Quota model.Quota
}

func NewQuota(store QuotaStore, holdTTL time.Duration) *Quota {
	return &Quota{store: store, holdTTL: holdTTL, now: time.Now}
}

// Check is the pure admission rule applied to a loaded user.
func (q *Quota) Check(u model.User) error {
	if u.IsUnlimited || u.DesignsUsed < u.DesignsLimit {
		return nil
	}
	return forbidden(ErrQuotaExhausted)
}

// Status returns the user's quota figures.
func (q *Quota) Status(ctx context.Context, userID string) (model.Quota, error) {
	st, err := q.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Quota{}, notFound("user not found")
		}
		return model.Quota{}, internal("load quota failed", err)
	}
	return st, nil
}

// Reserve holds one slot for userID.  Concurrent reservations are
// linearized by the store; when one slot is left exactly one caller wins.
func (q *Quota) Reserve(ctx context.Context, userID string) (Reservation, error) {
	now := q.now().UTC()
	hold := model.QuotaHold{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(q.holdTTL),
		CreatedAt: now,
	}
	st, err := q.store.Reserve(ctx, hold, now)
	switch {
	case err == nil:
		return Reservation{UserID: userID, Token: hold.Token, Quota: st}, nil
	case errors.Is(err, repository.ErrQuotaExceeded):
		return Reservation{}, forbidden(ErrQuotaExhausted)
	case errors.Is(err, repository.ErrNotFound):
		return Reservation{}, notFound("user not found")
	}
	return Reservation{}, internal("reserve quota failed", err)
}

// Commit consumes the reserved slot.  Replaying a commit for the same
// token is a no-op reported as repository.ErrHoldNotFound.
func (q *Quota) Commit(ctx context.Context, r Reservation) (model.Quota, error) {
	return q.store.Commit(ctx, r.UserID, r.Token)
}

// Cancel releases a hold that will not be committed.
func (q *Quota) Cancel(ctx context.Context, r Reservation) error {
	return q.store.Cancel(ctx, r.Token)
}

// Release decrements designs_used, floored at zero.
func (q *Quota) Release(ctx context.Context, userID string) (model.Quota, error) {
	return q.store.Decrement(ctx, userID)
}
