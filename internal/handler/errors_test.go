package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/design-studio/internal/service"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", &service.Error{Kind: service.KindValidation, Message: "prompt is required"},
			http.StatusBadRequest, `{"detail":"prompt is required"}`},
		{"wrapped forbidden", fmt.Errorf("generate: %w", &service.Error{Kind: service.KindForbidden, Message: service.ErrQuotaExhausted}),
			http.StatusForbidden, `{"detail":"design quota exhausted"}`},
		{"unavailable", &service.Error{Kind: service.KindUnavailable, Message: "image service unavailable"},
			http.StatusBadGateway, `{"detail":"image service unavailable"}`},
		{"internal hides cause", &service.Error{Kind: service.KindInternal, Message: "load quota failed", Err: errors.New("dial tcp")},
			http.StatusInternalServerError, `{"detail":"internal server error"}`},
		{"echo error", echo.NewHTTPError(http.StatusUnauthorized, "not authenticated"),
			http.StatusUnauthorized, `{"detail":"not authenticated"}`},
		{"echo not found", echo.ErrNotFound,
			http.StatusNotFound, `{"detail":"Not Found"}`},
		{"plain error", errors.New("boom"),
			http.StatusInternalServerError, `{"detail":"internal server error"}`},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			ErrorHandler(tt.err, c)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestErrorHandlerSkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "partial")

	ErrorHandler(errors.New("late"), c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestCouponPatchMaxUses(t *testing.T) {
	var absent, null, set couponPatchReq
	assert.NoError(t, json.Unmarshal([]byte(`{"is_active":false}`), &absent))
	assert.NoError(t, json.Unmarshal([]byte(`{"max_uses":null}`), &null))
	assert.NoError(t, json.Unmarshal([]byte(`{"max_uses":5}`), &set))

	assert.False(t, absent.MaxUses.Set)
	assert.True(t, null.MaxUses.Set)
	assert.Nil(t, null.MaxUses.Value)
	assert.True(t, set.MaxUses.Set)
	assert.Equal(t, 5, *set.MaxUses.Value)
}
