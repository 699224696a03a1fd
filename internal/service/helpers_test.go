package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/design-studio/internal/generator"
	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/service"
	"github.com/iliyamo/design-studio/internal/store/memstore"
)

// fakeRenderer records calls and answers with a fixed result.
type fakeRenderer struct {
	mu    sync.Mutex
	calls []generator.Request
	err   error
	gate  chan struct{}
}

func (f *fakeRenderer) Generate(_ context.Context, req generator.Request) (generator.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	err, gate := f.err, f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return generator.Response{}, err
	}
	return generator.Response{Success: true, ImageBase64: "aW1n", RevisedPrompt: "revised"}, nil
}

func (f *fakeRenderer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// syncNotifier collects notifications synchronously.
type syncNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (n *syncNotifier) Notify(_ context.Context, m model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, m)
}

type fixture struct {
	db       *memstore.DB
	stores   service.Stores
	quota    *service.Quota
	renderer *fakeRenderer
	pipeline *service.Pipeline
	coupons  *service.Coupons
	notifier *syncNotifier
	orders   *service.Orders
	admin    *service.Admin
	showcase *service.Showcase
	creds    *service.Credentials
	inbox    *service.Notifications
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memstore.New()
	st := service.Stores{
		Users:         db.Users(),
		Quota:         db.Quota(),
		Designs:       db.Designs(),
		Orders:        db.Orders(),
		Coupons:       db.Coupons(),
		Notifications: db.Notifications(),
		Showcase:      db.Showcase(),
		Stats:         db.Stats(),
	}
	log := zap.NewNop()
	f := &fixture{db: db, stores: st, renderer: &fakeRenderer{}, notifier: &syncNotifier{}, ctx: context.Background()}
	f.quota = service.NewQuota(st.Quota, 3*time.Minute)
	f.pipeline = service.NewPipeline(f.quota, f.renderer, log)
	f.coupons = service.NewCoupons(st.Coupons)
	f.orders = service.NewOrders(st.Designs, st.Orders, f.coupons, f.notifier, log)
	f.admin = service.NewAdmin(st, f.orders)
	f.showcase = service.NewShowcase(st.Showcase)
	f.creds = service.NewCredentials(st.Users, "test-secret", time.Hour, 4, nil, log)
	f.inbox = service.NewNotifications(st.Notifications)
	return f
}

func (f *fixture) user(t *testing.T, name string, limit, used int) model.User {
	t.Helper()
	u := model.User{Username: name, Email: name + "@example.com", DesignsLimit: limit, DesignsUsed: used}
	require.NoError(t, f.stores.Users.Create(f.ctx, &u))
	return u
}

// reload returns the stored copy of u.
func (f *fixture) reload(t *testing.T, u model.User) model.User {
	t.Helper()
	got, err := f.stores.Users.GetByID(f.ctx, u.ID)
	require.NoError(t, err)
	return got
}

func (f *fixture) coupon(t *testing.T, code string, pct float64, maxUses *int) model.Coupon {
	t.Helper()
	c, err := f.coupons.Create(f.ctx, service.CouponInput{Code: code, DiscountPercentage: pct, MaxUses: maxUses})
	require.NoError(t, err)
	return c
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

var preview = service.PreviewInput{Prompt: "desert sunset print", ClothingType: "tshirt", Color: "sand"}
