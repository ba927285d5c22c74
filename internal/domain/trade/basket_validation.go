package trade

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BasketLine is one requested (shop, offer, quantity) triple
type BasketLine struct {
	ShopID        uuid.UUID
	ProductInfoID uuid.UUID
	Quantity      int
}

// ShopAvailability is the part of a shop the basket checks look at
type ShopAvailability struct {
	ID      uuid.UUID
	Enabled bool
}

// Offer is the part of a ProductInfo the basket checks look at
type Offer struct {
	ID          uuid.UUID
	ShopID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	ShopName    string
	Quantity    int
	Price       decimal.Decimal
	PriceRRC    decimal.Decimal
}

func basketError(msg string) error {
	return shared.NewDomainError("VALIDATION_ERROR", msg)
}

// ValidateLines checks the request shape
func ValidateLines(lines []BasketLine) error {
	if len(lines) == 0 {
		return basketError("Items are required")
	}
	for _, l := range lines {
		if l.ShopID == uuid.Nil || l.ProductInfoID == uuid.Nil {
			return basketError("Each item needs shop and product_info")
		}
		if l.Quantity < 1 {
			return basketError(fmt.Sprintf("Quantity of product with id %s must be at least 1", l.ProductInfoID))
		}
	}
	return nil
}

// RequestedShopIDs returns the distinct shop ids of the lines
func RequestedShopIDs(lines []BasketLine) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if !seen[l.ShopID] {
			seen[l.ShopID] = true
			ids = append(ids, l.ShopID)
		}
	}
	return ids
}

// CheckShops fails when a requested shop is missing or switched off.
// Missing shops are reported before disabled ones.
func CheckShops(lines []BasketLine, existing []ShopAvailability) error {
	known := make(map[uuid.UUID]bool, len(existing))
	off := make(map[uuid.UUID]bool)
	for _, s := range existing {
		known[s.ID] = true
		if !s.Enabled {
			off[s.ID] = true
		}
	}

	missing := make([]uuid.UUID, 0)
	disabled := make([]uuid.UUID, 0)
	for _, id := range RequestedShopIDs(lines) {
		switch {
		case !known[id]:
			missing = append(missing, id)
		case off[id]:
			disabled = append(disabled, id)
		}
	}

	if len(missing) == 1 {
		return basketError(fmt.Sprintf("Shop with id %s does not exist", missing[0]))
	}
	if len(missing) > 1 {
		return basketError(fmt.Sprintf("Shops with ids %s do not exist", joinIDs(missing)))
	}
	if len(disabled) == 1 {
		return basketError(fmt.Sprintf("Shop with id %s is OFF", disabled[0]))
	}
	if len(disabled) > 1 {
		return basketError(fmt.Sprintf("Shops with ids %s are OFF", joinIDs(disabled)))
	}
	return nil
}

// MatchOffers pairs every line with its offer in the requested shop and
// checks stock. The result follows the order of lines.
func MatchOffers(lines []BasketLine, offers []Offer) ([]Offer, error) {
	type key struct{ shop, offer uuid.UUID }
	index := make(map[key]Offer, len(offers))
	for _, o := range offers {
		index[key{o.ShopID, o.ID}] = o
	}

	matched := make([]Offer, 0, len(lines))
	for _, l := range lines {
		offer, ok := index[key{l.ShopID, l.ProductInfoID}]
		if !ok {
			return nil, basketError(fmt.Sprintf("Product with id %s in shop %s does not exist", l.ProductInfoID, l.ShopID))
		}
		if offer.Quantity < l.Quantity {
			return nil, basketError(fmt.Sprintf("Not enough product with id %s in stock", l.ProductInfoID))
		}
		matched = append(matched, offer)
	}
	return matched, nil
}

func joinIDs(ids []uuid.UUID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = id.String()
	}
	sort.Strings(s)
	return strings.Join(s, ", ")
}
