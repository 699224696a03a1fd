package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/design-studio/internal/catalog"
	"github.com/iliyamo/design-studio/internal/generator"
	"github.com/iliyamo/design-studio/internal/metrics"
	"github.com/iliyamo/design-studio/internal/model"
)

// Renderer is the external image service.
type Renderer interface {
	Generate(ctx context.Context, req generator.Request) (generator.Response, error)
}

// PreviewInput is a generation request.
type PreviewInput struct {
	Prompt       string `json:"prompt"`
	ClothingType string `json:"clothing_type"`
	Color        string `json:"color"`
	TemplateID   string `json:"template_id"`
	generator.Options
}

// PreviewResult is a rendered design plus the caller's quota afterwards.
type PreviewResult struct {
	Success              bool   `json:"success"`
	ImageBase64          string `json:"image_base64"`
	CompositeImageBase64 string `json:"composite_image_base64,omitempty"`
	RevisedPrompt        string `json:"revised_prompt,omitempty"`
	Prompt               string `json:"prompt"`
	DesignsRemaining     int    `json:"designs_remaining"`
	DesignsUsed          int    `json:"designs_used"`
	DesignsLimit         int    `json:"designs_limit"`
	IsUnlimited          bool   `json:"is_unlimited"`
}

// Pipeline runs a generation: quota gate, prompt composition, the external
// render and the quota commit.  There is no retry; a provider failure is
// terminal for the request.
type Pipeline struct {
	quota    *Quota
	renderer Renderer
	log      *zap.Logger
}

func NewPipeline(quota *Quota, renderer Renderer, log *zap.Logger) *Pipeline {
	return &Pipeline{quota: quota, renderer: renderer, log: log}
}

// Generate renders a design for user.  Denied requests never reach the
// renderer.  Once dispatched, the render is detached from ctx cancellation
// and runs until it completes or the renderer's own deadline fires.
func (p *Pipeline) Generate(ctx context.Context, user model.User, in PreviewInput) (PreviewResult, error) {
	prompt := strings.TrimSpace(in.Prompt)
	clothing := strings.TrimSpace(in.ClothingType)
	if t, ok := catalog.TemplateByID(in.TemplateID); ok {
		if prompt == "" {
			prompt = t.Prompt
		}
		if clothing == "" {
			clothing = t.Type
		}
	}
	if prompt == "" || clothing == "" {
		return PreviewResult{}, validationError("prompt and clothing type are required")
	}

	if err := p.quota.Check(user); err != nil {
		metrics.Generations.WithLabelValues("quota_denied").Inc()
		return PreviewResult{}, err
	}
	res, err := p.quota.Reserve(ctx, user.ID)
	if err != nil {
		if KindOf(err) == KindForbidden {
			metrics.Generations.WithLabelValues("quota_denied").Inc()
		}
		return PreviewResult{}, err
	}

	req := generator.NewRequest(prompt, clothing, in.Color, in.Options)
	renderCtx := context.WithoutCancel(ctx)
	out, err := p.renderer.Generate(renderCtx, req)
	if err != nil {
		if cerr := p.quota.Cancel(renderCtx, res); cerr != nil {
			p.log.Warn("quota hold cancel failed", zap.String("user_id", user.ID),
				zap.String("token", res.Token), zap.Error(cerr))
		}
		failure := generator.FailureOf(err)
		metrics.Generations.WithLabelValues(failure.String()).Inc()
		p.log.Warn("generation failed", zap.String("user_id", user.ID),
			zap.String("failure", failure.String()), zap.Error(err))
		return PreviewResult{}, providerError(failure, err)
	}

	st, err := p.quota.Commit(renderCtx, res)
	if err != nil {
		// the user still gets the render; the slot stays uncharged
		metrics.QuotaCommitFailures.Inc()
		p.log.Error("quota commit failed after successful render",
			zap.String("user_id", user.ID), zap.String("token", res.Token), zap.Error(err))
		st = res.Quota
	}
	metrics.Generations.WithLabelValues("success").Inc()

	return PreviewResult{
		Success:              true,
		ImageBase64:          out.ImageBase64,
		CompositeImageBase64: out.CompositeImageBase64,
		RevisedPrompt:        out.RevisedPrompt,
		Prompt:               req.Prompt,
		DesignsRemaining:     st.Remaining(),
		DesignsUsed:          st.Used,
		DesignsLimit:         st.Limit,
		IsUnlimited:          st.IsUnlimited,
	}, nil
}

func providerError(f generator.Failure, cause error) *Error {
	switch f {
	case generator.ContentRejected:
		return newError(KindContentRejected, "the design request was rejected by the image service, please rephrase the description", cause)
	case generator.RateLimited:
		return newError(KindRateLimited, "the image service is busy, please try again shortly", cause)
	}
	return newError(KindUnavailable, "the image service is currently unavailable", cause)
}
