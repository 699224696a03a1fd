package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/design-studio/internal/catalog"
	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

const unspecifiedPhone = "not specified"

// SaveDesignInput is the body of a design save.
type SaveDesignInput struct {
	Prompt          string `json:"prompt"`
	ImageBase64     string `json:"image_base64"`
	ClothingType    string `json:"clothing_type"`
	TemplateID      string `json:"template_id"`
	Color           string `json:"color"`
	PhoneNumber     string `json:"phone_number"`
	UserPhotoBase64 string `json:"user_photo_base64"`
	LogoBase64      string `json:"logo_base64"`
}

// CreateOrderInput is the body of a checkout.
type CreateOrderInput struct {
	DesignID          string `json:"design_id"`
	DesignImageBase64 string `json:"design_image_base64"`
	Prompt            string `json:"prompt"`
	PhoneNumber       string `json:"phone_number"`
	Size              string `json:"size"`
	Color             string `json:"color"`
	TemplateID        string `json:"template_id"`
	ClothingType      string `json:"clothing_type"`
	HasLogo           bool   `json:"has_logo"`
	CouponCode        string `json:"coupon_code"`
	Notes             string `json:"notes"`
}

// Orders records designs and orders for their owners.
type Orders struct {
	designs  DesignStore
	orders   OrderStore
	coupons  *Coupons
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewOrders(designs DesignStore, orders OrderStore, coupons *Coupons, notifier Notifier, log *zap.Logger) *Orders {
	return &Orders{designs: designs, orders: orders, coupons: coupons, notifier: notifier, log: log, now: time.Now}
}

// SaveDesign persists the design together with a pending order for it.
// Quota is not touched here; it was consumed by the generation.
func (s *Orders) SaveDesign(ctx context.Context, user model.User, in SaveDesignInput) (model.Design, model.Order, error) {
	if strings.TrimSpace(in.Prompt) == "" || in.ImageBase64 == "" || strings.TrimSpace(in.ClothingType) == "" {
		return model.Design{}, model.Order{}, validationError("prompt, image and clothing type are required")
	}
	now := s.now().UTC()
	d := model.Design{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Prompt:          strings.TrimSpace(in.Prompt),
		ImageBase64:     in.ImageBase64,
		ClothingType:    strings.TrimSpace(in.ClothingType),
		TemplateID:      in.TemplateID,
		Color:           in.Color,
		PhoneNumber:     in.PhoneNumber,
		UserPhotoBase64: in.UserPhotoBase64,
		LogoBase64:      in.LogoBase64,
		CreatedAt:       now,
	}
	tpl := catalog.ResolveTemplate(in.TemplateID, in.ClothingType)
	quote := catalog.Price(tpl.ID, catalog.DefaultSize, in.LogoBase64 != "")
	phone := in.PhoneNumber
	if phone == "" {
		phone = unspecifiedPhone
	}
	o := model.Order{
		ID:                uuid.NewString(),
		UserID:            user.ID,
		DesignID:          d.ID,
		DesignImageBase64: in.ImageBase64,
		Prompt:            d.Prompt,
		PhoneNumber:       phone,
		Size:              catalog.DefaultSize,
		Color:             in.Color,
		Price:             quote.TotalPrice,
		FinalPrice:        quote.TotalPrice,
		Status:            model.OrderPending,
		CreatedAt:         now,
	}
	if err := s.designs.CreateWithOrder(ctx, &d, &o); err != nil {
		return model.Design{}, model.Order{}, internal("save design failed", err)
	}
	return d, o, nil
}

// CreateOrder prices and records an order.  With a coupon, redemption and
// the order insert commit together; an unusable coupon fails the order.
func (s *Orders) CreateOrder(ctx context.Context, user model.User, in CreateOrderInput) (model.Order, error) {
	if in.DesignImageBase64 == "" || strings.TrimSpace(in.Prompt) == "" || strings.TrimSpace(in.PhoneNumber) == "" {
		return model.Order{}, validationError("design image, prompt and phone number are required")
	}
	size := strings.ToUpper(strings.TrimSpace(in.Size))
	if size == "" {
		size = catalog.DefaultSize
	}
	if !catalog.ValidSize(size) {
		return model.Order{}, validationError("invalid size")
	}
	tpl := catalog.ResolveTemplate(in.TemplateID, in.ClothingType)
	quote := catalog.Price(tpl.ID, size, in.HasLogo)

	now := s.now().UTC()
	o := model.Order{
		ID:                uuid.NewString(),
		UserID:            user.ID,
		DesignID:          in.DesignID,
		DesignImageBase64: in.DesignImageBase64,
		Prompt:            strings.TrimSpace(in.Prompt),
		PhoneNumber:       strings.TrimSpace(in.PhoneNumber),
		Size:              size,
		Color:             in.Color,
		Price:             quote.TotalPrice,
		FinalPrice:        quote.TotalPrice,
		Notes:             in.Notes,
		Status:            model.OrderPending,
		CreatedAt:         now,
	}

	if code := NormalizeCode(in.CouponCode); code != "" {
		red := repository.Redemption{
			UsageID: uuid.NewString(),
			Code:    code,
			UserID:  user.ID,
			OrderID: o.ID,
			Now:     now,
		}
		apply := func(c model.Coupon) {
			o.Discount, o.FinalPrice = ApplyDiscount(o.Price, c.DiscountPercentage)
			o.CouponCode = c.Code
		}
		_, err := s.orders.CreateWithRedemption(ctx, &o, red, s.coupons.check(now, apply))
		if err := s.coupons.redeemResult(err); err != nil {
			return model.Order{}, err
		}
	} else if err := s.orders.Create(ctx, &o); err != nil {
		return model.Order{}, internal("create order failed", err)
	}

	s.notifier.Notify(ctx, NewNotification(user.ID,
		"Your order has been sent",
		"We will contact you at "+o.PhoneNumber+" shortly to confirm the order details.",
		model.NotificationSuccess, o.ID))
	return o, nil
}

func (s *Orders) ListOrders(ctx context.Context, userID string) ([]model.Order, error) {
	list, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, internal("list orders failed", err)
	}
	return list, nil
}

func (s *Orders) ListDesigns(ctx context.Context, userID string) ([]model.Design, error) {
	list, err := s.designs.ListByUser(ctx, userID)
	if err != nil {
		return nil, internal("list designs failed", err)
	}
	return list, nil
}

func (s *Orders) ToggleFavorite(ctx context.Context, id, userID string) (bool, error) {
	fav, err := s.designs.ToggleFavorite(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, notFound("design not found")
		}
		return false, internal("update favorite failed", err)
	}
	return fav, nil
}

// DeleteDesign removes a design owned by ownerID and gives its generation
// slot back.  An empty ownerID is the admin path and skips ownership.
func (s *Orders) DeleteDesign(ctx context.Context, id, ownerID string) error {
	d, err := s.designs.DeleteAndRelease(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("design not found")
		}
		return internal("delete design failed", err)
	}
	s.log.Debug("design deleted", zap.String("design_id", d.ID), zap.String("owner_id", d.UserID))
	return nil
}
