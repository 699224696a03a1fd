package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/generator"
	"github.com/iliyamo/design-studio/internal/service"
)

// PromptHandler serves prompt enhancement.
type PromptHandler struct {
	assistant *service.PromptAssistant
}

func NewPromptHandler(a *service.PromptAssistant) *PromptHandler {
	return &PromptHandler{assistant: a}
}

func (h *PromptHandler) Enhance(c echo.Context) error {
	var req generator.EnhanceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 45*time.Second)
	defer cancel()

	res, err := h.assistant.Enhance(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
