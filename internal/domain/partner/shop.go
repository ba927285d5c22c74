package partner

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// ShopState tells whether a shop accepts orders
type ShopState string

const (
	ShopStateOn  ShopState = "on"
	ShopStateOff ShopState = "off"
)

// ParseShopState accepts on/off and the boolean spellings true/false
func ParseShopState(s string) (ShopState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1":
		return ShopStateOn, nil
	case "off", "false", "0":
		return ShopStateOff, nil
	}
	return "", shared.NewDomainError("INVALID_STATE_VALUE", "State must be one of: on, off")
}

// Shop is a partner-owned catalog source. Each partner user owns at most one.
type Shop struct {
	shared.BaseAggregateRoot
	Name   string
	URL    string
	State  ShopState
	UserID uuid.UUID
}

// NewShop creates an enabled shop for a partner user
func NewShop(userID uuid.UUID, name, rawURL string) (*Shop, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Shop owner is required")
	}
	shop := &Shop{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		State:             ShopStateOn,
		UserID:            userID,
	}
	if err := shop.Rename(name, rawURL); err != nil {
		return nil, err
	}
	return shop, nil
}

// Rename updates the display name and site URL
func (s *Shop) Rename(name, rawURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_SHOP_NAME", "Shop name is required")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_SHOP_NAME", "Shop name cannot exceed 100 characters")
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL != "" {
		if u, err := url.ParseRequestURI(rawURL); err != nil || u.Host == "" {
			return shared.NewDomainError("INVALID_SHOP_URL", "Enter a valid URL.")
		}
	}
	s.Name = name
	s.URL = rawURL
	s.Touch()
	return nil
}

// SetState switches the shop on or off
func (s *Shop) SetState(state ShopState) error {
	if state != ShopStateOn && state != ShopStateOff {
		return shared.NewDomainError("INVALID_STATE_VALUE", "State must be one of: on, off")
	}
	s.State = state
	s.Touch()
	return nil
}

// IsOn reports whether the shop accepts orders
func (s *Shop) IsOn() bool {
	return s.State == ShopStateOn
}
