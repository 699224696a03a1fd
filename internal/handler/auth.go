package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/service"
)

// AuthHandler serves registration, sign-in and the current account.
type AuthHandler struct {
	creds *service.Credentials
}

func NewAuthHandler(creds *service.Credentials) *AuthHandler {
	return &AuthHandler{creds: creds}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type googleReq struct {
	Credential string `json:"credential"`
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	res, err := h.creds.Register(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	res, err := h.creds.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Google exchanges a Google ID token for a session, creating the account
// on first use.
func (h *AuthHandler) Google(c echo.Context) error {
	var req googleReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	res, err := h.creds.LoginWithGoogle(ctx, req.Credential)
	if err != nil {
		return err
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, res)
}

func (h *AuthHandler) Me(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateMeasurements stores the caller's body measurements and answers
// with a suggested size.
func (h *AuthHandler) UpdateMeasurements(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req model.Measurements
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	res, err := h.creds.UpdateMeasurements(ctx, u.ID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":        "measurements saved",
		"suggested_size": res.SuggestedSize,
		"measurements":   res.Measurements,
	})
}
