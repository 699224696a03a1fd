package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/design-studio/internal/catalog"
	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

// MeasurementsResult is returned after measurements are saved.
type MeasurementsResult struct {
	Measurements  model.Measurements `json:"measurements"`
	SuggestedSize string             `json:"suggested_size"`
}

// UpdateMeasurements replaces the user's stored measurements and suggests
// a size from the chest measurement.
func (s *Credentials) UpdateMeasurements(ctx context.Context, userID string, m model.Measurements) (MeasurementsResult, error) {
	for _, v := range []*float64{m.Chest, m.Waist, m.Hips, m.Height, m.Weight} {
		if v != nil && *v <= 0 {
			return MeasurementsResult{}, validationError("measurements must be positive")
		}
	}
	m.PreferredSize = strings.ToUpper(strings.TrimSpace(m.PreferredSize))
	if m.PreferredSize != "" && !catalog.ValidSize(m.PreferredSize) {
		return MeasurementsResult{}, validationError("unknown size")
	}

	u, err := s.users.UpdateMeasurements(ctx, userID, m)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return MeasurementsResult{}, notFound("user not found")
		}
		return MeasurementsResult{}, internal("save measurements failed", err)
	}
	return MeasurementsResult{Measurements: *u.Measurements, SuggestedSize: SuggestSize(u.Measurements)}, nil
}

// SuggestSize picks a size for m, the default size when no chest
// measurement is known.
func SuggestSize(m *model.Measurements) string {
	if m == nil || m.Chest == nil {
		return catalog.DefaultSize
	}
	return catalog.SuggestSize(*m.Chest)
}
