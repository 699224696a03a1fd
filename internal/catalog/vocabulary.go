package catalog

import "strings"

// vocabulary translates internal garment tags into wording the image model
// renders well.
var vocabulary = map[string]string{
	"tshirt":       "crew-neck cotton t-shirt",
	"t-shirt":      "crew-neck cotton t-shirt",
	"shirt":        "button-up collared shirt",
	"casual-shirt": "casual button-up shirt",
	"formal-shirt": "formal dress shirt",
	"hoodie":       "pullover hoodie with kangaroo pocket",
	"dress":        "tailored dress",
	"jacket":       "zip-up athletic jacket",
	"pants":        "straight-leg trousers",
	"polo":         "short-sleeve polo shirt",
}

// Describe returns the generation vocabulary for clothingType, or the tag
// itself when it has no mapping.
func Describe(clothingType string) string {
	key := strings.ToLower(strings.TrimSpace(clothingType))
	if v, ok := vocabulary[key]; ok {
		return v
	}
	return strings.TrimSpace(clothingType)
}
