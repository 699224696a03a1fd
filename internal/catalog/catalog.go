// Package catalog holds the static product data: garment templates, the
// size chart, color palettes and the pricing rules built on them.
package catalog

import (
	"math"
	"sort"
	"strings"
)

// Currency of every price in the catalog.
const Currency = "SAR"

// CustomElementSurcharge is added when a design carries a logo or other
// custom artwork.
const CustomElementSurcharge = 50.0

const fallbackBasePrice = 150.0

// Template is a garment starting point offered to the user.
type Template struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Prompt      string  `json:"prompt"`
	BasePrice   float64 `json:"base_price"`
}

// Size is one row of the size chart, in centimeters.
type Size struct {
	Chest      float64 `json:"chest"`
	Waist      float64 `json:"waist"`
	Hips       float64 `json:"hips"`
	Adjustment float64 `json:"adjustment"`
}

var templates = []Template{
	{ID: "casual-shirt", Name: "Casual shirt", Type: "shirt", Description: "Simple, neat casual shirt",
		Prompt: "casual button-up shirt, comfortable fit, modern design", BasePrice: 150},
	{ID: "formal-shirt", Name: "Formal shirt", Type: "shirt", Description: "Formal shirt for occasions",
		Prompt: "formal dress shirt, elegant, professional look", BasePrice: 200},
	{ID: "hoodie", Name: "Modern hoodie", Type: "hoodie", Description: "Comfortable modern hoodie",
		Prompt: "modern hoodie, comfortable, streetwear style", BasePrice: 250},
	{ID: "tshirt", Name: "Basic t-shirt", Type: "tshirt", Description: "Plain cotton t-shirt",
		Prompt: "simple cotton t-shirt, basic design, comfortable", BasePrice: 100},
	{ID: "dress", Name: "Elegant dress", Type: "dress", Description: "Elegant dress for occasions",
		Prompt: "elegant dress, modern design, sophisticated", BasePrice: 350},
	{ID: "jacket", Name: "Sport jacket", Type: "jacket", Description: "Comfortable sport jacket",
		Prompt: "sporty jacket, comfortable, modern athletic wear", BasePrice: 300},
}

var sizeChart = map[string]Size{
	"XS":  {Chest: 85, Waist: 70, Hips: 90, Adjustment: 0},
	"S":   {Chest: 90, Waist: 75, Hips: 95, Adjustment: 0},
	"M":   {Chest: 95, Waist: 80, Hips: 100, Adjustment: 10},
	"L":   {Chest: 100, Waist: 85, Hips: 105, Adjustment: 20},
	"XL":  {Chest: 105, Waist: 90, Hips: 110, Adjustment: 30},
	"XXL": {Chest: 110, Waist: 95, Hips: 115, Adjustment: 40},
}

var sizeOrder = []string{"XS", "S", "M", "L", "XL", "XXL"}

var palettes = map[string][]string{
	"classic": {"#000000", "#FFFFFF", "#1a1a1a", "#f5f5f5", "#2c3e50"},
	"warm":    {"#e74c3c", "#e67e22", "#f39c12", "#d35400", "#c0392b"},
	"cool":    {"#3498db", "#2980b9", "#1abc9c", "#16a085", "#2c3e50"},
	"earth":   {"#8b7355", "#a0826d", "#6d4c41", "#8d6e63", "#5d4037"},
	"pastel":  {"#fad0c4", "#a8d8ea", "#aa96da", "#fcbad3", "#d4f1f4"},
	"vibrant": {"#9b59b6", "#e74c3c", "#f39c12", "#1abc9c", "#3498db"},
}

// DefaultSize is used when an order does not name one.
const DefaultSize = "M"

// Templates returns a copy of the template list.
func Templates() []Template {
	return append([]Template(nil), templates...)
}

// TemplateByID looks a template up by id.
func TemplateByID(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// ResolveTemplate picks the template for an order: by id first, then by
// garment type, then the first template.
func ResolveTemplate(templateID, clothingType string) Template {
	if t, ok := TemplateByID(templateID); ok {
		return t
	}
	ct := strings.ToLower(strings.TrimSpace(clothingType))
	for _, t := range templates {
		if t.Type == ct || t.ID == ct {
			return t
		}
	}
	return templates[0]
}

// SizeChart returns a copy of the size chart.
func SizeChart() map[string]Size {
	out := make(map[string]Size, len(sizeChart))
	for k, v := range sizeChart {
		out[k] = v
	}
	return out
}

// ValidSize reports whether s is a size on the chart.
func ValidSize(s string) bool {
	_, ok := sizeChart[strings.ToUpper(s)]
	return ok
}

// SuggestSize returns the size whose chest measurement is closest to chest.
// Ties go to the smaller size.
func SuggestSize(chest float64) string {
	if chest <= 0 {
		return DefaultSize
	}
	best, bestDiff := DefaultSize, math.Inf(1)
	for _, name := range sizeOrder {
		if d := math.Abs(sizeChart[name].Chest - chest); d < bestDiff {
			best, bestDiff = name, d
		}
	}
	return best
}

// Palettes returns a copy of the color palettes.
func Palettes() map[string][]string {
	out := make(map[string][]string, len(palettes))
	for k, v := range palettes {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// PaletteNames lists palette names alphabetically.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Quote is the breakdown of a catalog price.
type Quote struct {
	BasePrice            float64 `json:"base_price"`
	SizeAdjustment       float64 `json:"size_adjustment"`
	ComplexityAdjustment float64 `json:"complexity_adjustment"`
	TotalPrice           float64 `json:"total_price"`
	Currency             string  `json:"currency"`
}

// Price computes base + size adjustment + custom element surcharge.
// Unknown templates price at the fallback base and unknown sizes carry
// no adjustment.
func Price(templateID, size string, customElements bool) Quote {
	q := Quote{BasePrice: fallbackBasePrice, Currency: Currency}
	if t, ok := TemplateByID(templateID); ok {
		q.BasePrice = t.BasePrice
	}
	if s, ok := sizeChart[strings.ToUpper(size)]; ok {
		q.SizeAdjustment = s.Adjustment
	}
	if customElements {
		q.ComplexityAdjustment = CustomElementSurcharge
	}
	q.TotalPrice = q.BasePrice + q.SizeAdjustment + q.ComplexityAdjustment
	return q
}
