package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/design-studio/internal/config"
	"github.com/iliyamo/design-studio/internal/generator"
	"github.com/iliyamo/design-studio/internal/handler"
	"github.com/iliyamo/design-studio/internal/middleware"
	"github.com/iliyamo/design-studio/internal/router"
	"github.com/iliyamo/design-studio/internal/service"
	"github.com/iliyamo/design-studio/internal/store/memstore"
)

type stubRenderer struct{}

func (stubRenderer) Generate(_ context.Context, req generator.Request) (generator.Response, error) {
	return generator.Response{Success: true, ImageBase64: "aW1n", RevisedPrompt: req.Prompt}, nil
}

type app struct {
	e        *echo.Echo
	creds    *service.Credentials
	notifier *service.DirectNotifier
}

func newApp(t *testing.T) *app {
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
	quota := service.NewQuota(st.Quota, time.Minute)
	coupons := service.NewCoupons(st.Coupons)
	notifier := service.NewDirectNotifier(st.Notifications, log)
	orders := service.NewOrders(st.Designs, st.Orders, coupons, notifier, log)
	showcase := service.NewShowcase(st.Showcase)
	creds := service.NewCredentials(st.Users, "test-secret", time.Hour, 4, nil, log)

	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(middleware.RequestID())
	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(creds),
		Designs:       handler.NewDesignHandler(service.NewPipeline(quota, stubRenderer{}, log), quota, orders, showcase),
		Orders:        handler.NewOrderHandler(orders),
		Coupons:       handler.NewCouponHandler(coupons),
		Notifications: handler.NewNotificationHandler(service.NewNotifications(st.Notifications)),
		Admin:         handler.NewAdminHandler(service.NewAdmin(st, orders), showcase),
		Prompt:        handler.NewPromptHandler(service.NewPromptAssistant(nil, log)),
	}, router.Guards{
		Auth:      creds,
		RateLimit: middleware.NewTokenBucket(config.RateLimitConfig{}, nil),
		Cache:     middleware.NewRedisCache(config.CacheConfig{}, nil),
	}, map[string]handler.Check{})

	return &app{e: e, creds: creds, notifier: notifier}
}

func (a *app) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["detail"]
}

func (a *app) register(t *testing.T, name string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "", service.RegisterInput{
		Username: name, Email: name + "@example.com", Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[service.AuthResult](t, rec).AccessToken
}

func (a *app) admin(t *testing.T) string {
	t.Helper()
	require.NoError(t, a.creds.EnsureAdmin(context.Background(), "root", "root@example.com", "rootpass"))
	rec := a.do(t, http.MethodPost, "/api/auth/login", "", echo.Map{"username": "root", "password": "rootpass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[service.AuthResult](t, rec).AccessToken
}

func TestProbesAndCatalog(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = a.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/templates", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 6)

	rec = a.do(t, http.MethodGet, "/api/calculate-price?template_id=hoodie&size=xl&has_logo=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 330.0, decode[map[string]any](t, rec)["total_price"])

	rec = a.do(t, http.MethodGet, "/api/calculate-price?size=XXXL", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown size", detail(t, rec))

	rec = a.do(t, http.MethodGet, "/api/size-chart?chest=100", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "L", decode[map[string]any](t, rec)["suggested_size"])

	rec = a.do(t, http.MethodGet, "/api/designs/showcase", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAuthentication(t *testing.T) {
	a := newApp(t)
	token := a.register(t, "alice")

	rec := a.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "alice", me["username"])
	assert.NotContains(t, me, "password_hash")

	rec = a.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "not authenticated", detail(t, rec))

	rec = a.do(t, http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/auth/register", "", service.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/auth/login", "", echo.Map{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", detail(t, rec))

	rec = a.do(t, http.MethodPost, "/api/auth/google", "", echo.Map{"credential": "x"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGenerationQuota(t *testing.T) {
	a := newApp(t)
	token := a.register(t, "bob")
	root := a.admin(t)

	rec := a.do(t, http.MethodGet, "/api/user/designs-quota", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"designs_limit":3,"designs_used":0,"designs_remaining":3,"is_unlimited":false}`, rec.Body.String())

	body := service.PreviewInput{Prompt: "desert sunset", ClothingType: "tshirt", Color: "sand"}
	rec = a.do(t, http.MethodPost, "/api/designs/preview", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[service.PreviewResult](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.DesignsUsed)
	assert.Equal(t, 2, res.DesignsRemaining)

	users := decode[[]map[string]any](t, a.do(t, http.MethodGet, "/api/admin/users", root, nil))
	var bobID string
	for _, u := range users {
		if u["username"] == "bob" {
			bobID = u["id"].(string)
		}
	}
	require.NotEmpty(t, bobID)

	rec = a.do(t, http.MethodPut, "/api/admin/users/"+bobID+"/designs-limit", root, echo.Map{"designs_limit": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1.0, decode[map[string]any](t, rec)["designs_limit"])

	rec = a.do(t, http.MethodPost, "/api/designs/preview", token, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, service.ErrQuotaExhausted, detail(t, rec))

	rec = a.do(t, http.MethodPut, "/api/admin/users/"+bobID+"/designs-limit", root, echo.Map{"designs_limit": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/designs/preview", token, service.PreviewInput{Color: "red"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	a := newApp(t)
	token := a.register(t, "carol")

	for _, path := range []string{"/api/admin/stats", "/api/admin/orders", "/api/coupons"} {
		rec := a.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Equal(t, "admin access required", detail(t, rec))
	}
	rec := a.do(t, http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckoutWithCoupon(t *testing.T) {
	a := newApp(t)
	token := a.register(t, "dave")
	root := a.admin(t)

	rec := a.do(t, http.MethodPost, "/api/coupons", root, echo.Map{"code": "save10", "discount_percentage": 10, "max_uses": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "SAVE10", decode[map[string]any](t, rec)["code"])

	rec = a.do(t, http.MethodPost, "/api/coupons/validate", token, echo.Map{"code": "save10", "amount": 110})
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[map[string]any](t, rec)
	assert.Equal(t, true, v["valid"])
	assert.Equal(t, 99.0, v["final_price"])

	rec = a.do(t, http.MethodPost, "/api/coupons/validate", token, echo.Map{"code": "nope"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "not_found", decode[map[string]any](t, rec)["reason"])

	order := service.CreateOrderInput{
		DesignImageBase64: "aQ==",
		Prompt:            "palm leaves",
		PhoneNumber:       "0500000000",
		Size:              "M",
		TemplateID:        "tshirt",
		CouponCode:        "SAVE10",
	}
	rec = a.do(t, http.MethodPost, "/api/orders/create", token, order)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decode[map[string]any](t, rec)
	assert.Equal(t, 110.0, o["price"])
	assert.Equal(t, 99.0, o["final_price"])

	rec = a.do(t, http.MethodPost, "/api/orders/create", token, order)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.CouponExhausted.Message(), detail(t, rec))

	rec = a.do(t, http.MethodGet, "/api/orders/my-orders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	a.notifier.Wait()
	rec = a.do(t, http.MethodGet, "/api/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())

	rec = a.do(t, http.MethodPut, "/api/notifications/mark-all-read", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":1}`, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/admin/stats", root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.Equal(t, 99.0, stats["total_revenue"])
}

func TestDesignLifecycle(t *testing.T) {
	a := newApp(t)
	token := a.register(t, "erin")
	other := a.register(t, "frank")

	rec := a.do(t, http.MethodPost, "/api/designs/save", token, service.SaveDesignInput{
		Prompt: "waves", ImageBase64: "aQ==", ClothingType: "tshirt", TemplateID: "tshirt",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]any](t, rec)["id"].(string)

	rec = a.do(t, http.MethodPut, "/api/designs/"+id+"/favorite", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"is_favorite":true}`, rec.Body.String())

	rec = a.do(t, http.MethodDelete, "/api/designs/"+id, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodDelete, "/api/designs/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/designs", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestMeasurementsAndPromptEnhance(t *testing.T) {
	a := newApp(t)
	token := a.register(t, "gina")

	rec := a.do(t, http.MethodPut, "/api/user/measurements", "", echo.Map{"chest": 100})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPut, "/api/user/measurements", token, echo.Map{"chest": 100, "height": 170})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[map[string]any](t, rec)
	assert.Equal(t, "L", saved["suggested_size"])
	assert.Equal(t, map[string]any{"chest": 100.0, "height": 170.0}, saved["measurements"])

	rec = a.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, map[string]any{"chest": 100.0, "height": 170.0}, me["measurements"])

	rec = a.do(t, http.MethodPut, "/api/user/measurements", token, echo.Map{"chest": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/prompt/enhance", token, echo.Map{
		"prompt": "palm trees", "clothing_type": "tshirt", "color": "white",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"original_prompt":"palm trees",
		"enhanced_prompt":"Professional tshirt: palm trees in white, high quality fabric, modern design"}`, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/prompt/enhance", token, echo.Map{"clothing_type": "tshirt"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "prompt is required", detail(t, rec))
}

func TestShowcaseAdmin(t *testing.T) {
	a := newApp(t)
	root := a.admin(t)

	rec := a.do(t, http.MethodPost, "/api/admin/showcase-designs", root, service.ShowcaseInput{
		Title: "Dunes", Description: "sand tones", Prompt: "dunes", ImageBase64: "aQ==", ClothingType: "hoodie",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]any](t, rec)["id"].(string)

	rec = a.do(t, http.MethodPut, "/api/admin/showcase-designs/"+id+"/toggle-featured", root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"is_featured":true}`, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/designs/showcase", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Dunes", list[0]["title"])

	rec = a.do(t, http.MethodDelete, "/api/admin/showcase-designs/"+id, root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodDelete, "/api/admin/showcase-designs/"+id, root, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
