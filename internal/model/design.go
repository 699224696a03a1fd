package model

import "time"

// Design is a rendered mock-up saved by its owner.  Deleting a design
// hands the generation slot that produced it back to the owner.
type Design struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Prompt          string    `json:"prompt"`
	ImageBase64     string    `json:"image_base64"`
	ClothingType    string    `json:"clothing_type,omitempty"`
	TemplateID      string    `json:"template_id,omitempty"`
	Color           string    `json:"color,omitempty"`
	PhoneNumber     string    `json:"phone_number,omitempty"`
	UserPhotoBase64 string    `json:"user_photo_base64,omitempty"`
	LogoBase64      string    `json:"logo_base64,omitempty"`
	IsFavorite      bool      `json:"is_favorite"`
	CreatedAt       time.Time `json:"created_at"`
}

// DesignWithOwner decorates a design with its owner for admin listings.
type DesignWithOwner struct {
	Design
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// ShowcaseDesign is an admin-curated inspiration design shown to all
// visitors.  Its lifecycle is independent of user designs.
type ShowcaseDesign struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Prompt       string     `json:"prompt"`
	ImageBase64  string     `json:"image_base64"`
	ClothingType string     `json:"clothing_type"`
	Color        string     `json:"color"`
	TemplateID   string     `json:"template_id"`
	Tags         []string   `json:"tags"`
	LikesCount   int        `json:"likes_count"`
	IsFeatured   bool       `json:"is_featured"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// ShowcasePatch carries the optional fields of a showcase update.  Nil
// members are left untouched.
type ShowcasePatch struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Prompt       *string   `json:"prompt"`
	ImageBase64  *string   `json:"image_base64"`
	ClothingType *string   `json:"clothing_type"`
	Color        *string   `json:"color"`
	TemplateID   *string   `json:"template_id"`
	Tags         *[]string `json:"tags"`
	IsFeatured   *bool     `json:"is_featured"`
	IsActive     *bool     `json:"is_active"`
}

// Apply copies the non-nil members of p onto d.
func (p ShowcasePatch) Apply(d *ShowcaseDesign) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Prompt != nil {
		d.Prompt = *p.Prompt
	}
	if p.ImageBase64 != nil {
		d.ImageBase64 = *p.ImageBase64
	}
	if p.ClothingType != nil {
		d.ClothingType = *p.ClothingType
	}
	if p.Color != nil {
		d.Color = *p.Color
	}
	if p.TemplateID != nil {
		d.TemplateID = *p.TemplateID
	}
	if p.Tags != nil {
		d.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.IsFeatured != nil {
		d.IsFeatured = *p.IsFeatured
	}
	if p.IsActive != nil {
		d.IsActive = *p.IsActive
	}
}
