// Package memstore is an in-process implementation of the service store
// interfaces.  A single mutex serializes every operation, which gives the
// same atomicity the MySQL repositories get from transactions and row
// locks.  It backs STORAGE_DRIVER=memory and the service tests.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/design-studio/internal/model"
)

// table keeps rows by id and remembers insertion order.
type table[T any] struct {
	rows map[string]T
	ids  []string
}

func newTable[T any]() *table[T] { return &table[T]{rows: map[string]T{}} }

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.rows[id] = v
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) del(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, x := range t.ids {
		if x == id {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			break
		}
	}
	return true
}

// newestFirst returns rows in reverse insertion order.
func (t *table[T]) newestFirst(keep func(T) bool) []T {
	out := make([]T, 0, len(t.ids))
	for i := len(t.ids) - 1; i >= 0; i-- {
		v := t.rows[t.ids[i]]
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// DB holds every collection.
type DB struct {
	mu            sync.Mutex
	users         *table[model.User]
	holds         *table[model.QuotaHold] // keyed by token
	designs       *table[model.Design]
	orders        *table[model.Order]
	coupons       *table[model.Coupon]
	usages        *table[model.CouponUsage]
	notifications *table[model.Notification]
	showcase      *table[model.ShowcaseDesign]
}

// New returns an empty store.
func New() *DB {
	return &DB{
		users:         newTable[model.User](),
		holds:         newTable[model.QuotaHold](),
		designs:       newTable[model.Design](),
		orders:        newTable[model.Order](),
		coupons:       newTable[model.Coupon](),
		usages:        newTable[model.CouponUsage](),
		notifications: newTable[model.Notification](),
		showcase:      newTable[model.ShowcaseDesign](),
	}
}

func (db *DB) Users() *UserRepo                 { return &UserRepo{db} }
func (db *DB) Quota() *QuotaRepo                { return &QuotaRepo{db} }
func (db *DB) Designs() *DesignRepo             { return &DesignRepo{db} }
func (db *DB) Orders() *OrderRepo               { return &OrderRepo{db} }
func (db *DB) Coupons() *CouponRepo             { return &CouponRepo{db} }
func (db *DB) Notifications() *NotificationRepo { return &NotificationRepo{db} }
func (db *DB) Showcase() *ShowcaseRepo          { return &ShowcaseRepo{db} }
func (db *DB) Stats() *StatsRepo                { return &StatsRepo{db} }

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func ensureTime(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}
