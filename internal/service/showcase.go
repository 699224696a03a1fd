package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

// ShowcaseListLimit caps the public showcase.
const ShowcaseListLimit = 20

// ShowcaseInput is the body of a showcase create.
type ShowcaseInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Prompt       string   `json:"prompt"`
	ImageBase64  string   `json:"image_base64"`
	ClothingType string   `json:"clothing_type"`
	Color        string   `json:"color"`
	TemplateID   string   `json:"template_id"`
	Tags         []string `json:"tags"`
	IsFeatured   bool     `json:"is_featured"`
}

// Showcase manages curated inspiration designs.
type Showcase struct {
	store ShowcaseStore
	now   func() time.Time
}

func NewShowcase(store ShowcaseStore) *Showcase {
	return &Showcase{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// ListPublic returns active designs, featured first then most liked.
func (s *Showcase) ListPublic(ctx context.Context) ([]model.ShowcaseDesign, error) {
	out, err := s.store.ListActive(ctx, ShowcaseListLimit)
	if err != nil {
		return nil, internal("list showcase failed", err)
	}
	return out, nil
}

func (s *Showcase) List(ctx context.Context) ([]model.ShowcaseDesign, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, internal("list showcase failed", err)
	}
	return out, nil
}

func (s *Showcase) Create(ctx context.Context, in ShowcaseInput) (model.ShowcaseDesign, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.Prompt) == "" || in.ImageBase64 == "" || strings.TrimSpace(in.ClothingType) == "" {
		return model.ShowcaseDesign{}, validationError("title, description, prompt, image and clothing type are required")
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	d := model.ShowcaseDesign{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Prompt:       strings.TrimSpace(in.Prompt),
		ImageBase64:  in.ImageBase64,
		ClothingType: strings.TrimSpace(in.ClothingType),
		Color:        in.Color,
		TemplateID:   in.TemplateID,
		Tags:         tags,
		IsFeatured:   in.IsFeatured,
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	if err := s.store.Create(ctx, &d); err != nil {
		return model.ShowcaseDesign{}, internal("create showcase design failed", err)
	}
	return d, nil
}

func (s *Showcase) Update(ctx context.Context, id string, patch model.ShowcasePatch) (model.ShowcaseDesign, error) {
	d, err := s.store.Update(ctx, id, patch, s.now())
	if err != nil {
		return model.ShowcaseDesign{}, showcaseError("update showcase design failed", err)
	}
	return d, nil
}

func (s *Showcase) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return showcaseError("delete showcase design failed", err)
	}
	return nil
}

// ToggleFeatured flips is_featured and returns the new value.
func (s *Showcase) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	featured, err := s.store.ToggleFeatured(ctx, id, s.now())
	if err != nil {
		return false, showcaseError("toggle featured failed", err)
	}
	return featured, nil
}

func showcaseError(msg string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("showcase design not found")
	}
	return internal(msg, err)
}
