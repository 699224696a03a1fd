package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/design-studio/internal/generator"
	"github.com/iliyamo/design-studio/internal/metrics"
)

// PromptEnhancer rewrites a design description into a richer prompt.
type PromptEnhancer interface {
	Enhance(ctx context.Context, req generator.EnhanceRequest) (string, error)
}

// PromptEnhancement is the answer to an enhancement request.
type PromptEnhancement struct {
	OriginalPrompt string `json:"original_prompt"`
	EnhancedPrompt string `json:"enhanced_prompt"`
}

// PromptAssistant enhances prompts with an optional model.  Without one,
// or when the model fails, the deterministic fallback answers.
type PromptAssistant struct {
	enhancer PromptEnhancer
	log      *zap.Logger
}

func NewPromptAssistant(enhancer PromptEnhancer, log *zap.Logger) *PromptAssistant {
	return &PromptAssistant{enhancer: enhancer, log: log}
}

// Enhance never fails for a valid request.
func (a *PromptAssistant) Enhance(ctx context.Context, req generator.EnhanceRequest) (PromptEnhancement, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.ClothingType = strings.TrimSpace(req.ClothingType)
	req.Color = strings.TrimSpace(req.Color)
	if req.Prompt == "" {
		return PromptEnhancement{}, validationError("prompt is required")
	}
	if req.ClothingType == "" {
		return PromptEnhancement{}, validationError("clothing_type is required")
	}

	out := PromptEnhancement{OriginalPrompt: req.Prompt}
	if a.enhancer != nil {
		enhanced, err := a.enhancer.Enhance(ctx, req)
		if err == nil && enhanced != "" {
			if req.Color != "" {
				enhanced += " with " + req.Color + " color"
			}
			metrics.PromptEnhancements.WithLabelValues("model").Inc()
			out.EnhancedPrompt = enhanced
			return out, nil
		}
		a.log.Warn("prompt enhancement failed, using fallback", zap.Error(err))
	}
	metrics.PromptEnhancements.WithLabelValues("fallback").Inc()
	out.EnhancedPrompt = generator.FallbackEnhancement(req)
	return out, nil
}
