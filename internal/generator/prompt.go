package generator

import (
	"strings"

	"github.com/iliyamo/design-studio/internal/catalog"
)

const promptSuffix = ". High quality, detailed clothing design, modern style, clean background, professional photography"

// Options are the optional render inputs a user may attach to a request.
type Options struct {
	LogoBase64      string `json:"logo_base64,omitempty"`
	LogoPosition    string `json:"logo_position,omitempty"`
	UserPhotoBase64 string `json:"user_photo_base64,omitempty"`
	ViewAngle       string `json:"view_angle,omitempty"`
}

// ComposePrompt merges the user's description with the garment vocabulary,
// color and options into the prompt sent to the image service.
func ComposePrompt(prompt, clothingType, color string, opts Options) string {
	var b strings.Builder
	prompt = strings.TrimSpace(prompt)
	if ct := catalog.Describe(clothingType); ct != "" {
		b.WriteString(ct)
		b.WriteString(" design: ")
	} else {
		b.WriteString("Professional fashion design: ")
	}
	b.WriteString(prompt)

	if c := strings.TrimSpace(color); c != "" {
		b.WriteString(", ")
		b.WriteString(c)
		b.WriteString(" color")
	}
	if a := strings.ToLower(strings.TrimSpace(opts.ViewAngle)); a != "" && a != "front" {
		b.WriteString(", ")
		b.WriteString(a)
		b.WriteString(" view")
	}
	if opts.LogoBase64 != "" {
		pos := strings.TrimSpace(opts.LogoPosition)
		if pos == "" {
			pos = "chest"
		}
		b.WriteString(", with custom logo on ")
		b.WriteString(pos)
	}
	if opts.UserPhotoBase64 != "" {
		b.WriteString(", on a person, realistic fit")
	}
	b.WriteString(promptSuffix)
	return b.String()
}

// NewRequest builds the wire request for a render.
func NewRequest(prompt, clothingType, color string, opts Options) Request {
	return Request{
		Prompt:          ComposePrompt(prompt, clothingType, color, opts),
		ClothingType:    clothingType,
		Color:           color,
		LogoBase64:      opts.LogoBase64,
		LogoPosition:    opts.LogoPosition,
		UserPhotoBase64: opts.UserPhotoBase64,
		ViewAngle:       opts.ViewAngle,
	}
}

// EnhanceRequest is the body of POST /enhance.
type EnhanceRequest struct {
	Prompt       string `json:"prompt"`
	ClothingType string `json:"clothing_type"`
	Color        string `json:"color,omitempty"`
}

// FallbackEnhancement is the deterministic rewrite used when no model
// answers an enhancement request.
func FallbackEnhancement(req EnhanceRequest) string {
	var b strings.Builder
	b.WriteString("Professional ")
	b.WriteString(strings.TrimSpace(req.ClothingType))
	b.WriteString(": ")
	b.WriteString(strings.TrimSpace(req.Prompt))
	if c := strings.TrimSpace(req.Color); c != "" {
		b.WriteString(" in ")
		b.WriteString(c)
	}
	b.WriteString(", high quality fabric, modern design")
	return b.String()
}
