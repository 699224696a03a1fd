package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/catalog"
)

func Templates(c echo.Context) error {
	return c.JSON(http.StatusOK, catalog.Templates())
}

// SizeChart returns the chart; with ?chest=<cm> it also suggests a size.
func SizeChart(c echo.Context) error {
	raw := c.QueryParam("chest")
	if raw == "" {
		return c.JSON(http.StatusOK, catalog.SizeChart())
	}
	chest, err := strconv.ParseFloat(raw, 64)
	if err != nil || chest <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "chest must be a positive number")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"sizes":          catalog.SizeChart(),
		"suggested_size": catalog.SuggestSize(chest),
	})
}

func ColorPalettes(c echo.Context) error {
	return c.JSON(http.StatusOK, catalog.Palettes())
}

// CalculatePrice quotes ?template_id=&size=&has_logo=.  Size defaults to M.
func CalculatePrice(c echo.Context) error {
	size := strings.ToUpper(strings.TrimSpace(c.QueryParam("size")))
	if size == "" {
		size = catalog.DefaultSize
	}
	if !catalog.ValidSize(size) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown size")
	}
	hasLogo, _ := strconv.ParseBool(c.QueryParam("has_logo"))
	return c.JSON(http.StatusOK, catalog.Price(c.QueryParam("template_id"), size, hasLogo))
}
