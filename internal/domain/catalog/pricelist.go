package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/shopfront/backend/internal/domain/shared"
)

// PriceList is a partner's catalog feed after decoding
type PriceList struct {
	Shop       string
	URL        string
	Categories []PriceListCategory
	Goods      []PriceListGood
}

// PriceListCategory is a category entry of a price list
type PriceListCategory struct {
	ID   int64
	Name string
}

// PriceListGood is one offer line of a price list
type PriceListGood struct {
	ID         int64
	Category   int64
	Model      string
	Name       string
	Price      decimal.Decimal
	PriceRRC   decimal.Decimal
	Quantity   int
	Parameters map[string]string
}

// ParameterNames returns the good's parameter names in a stable order
func (g PriceListGood) ParameterNames() []string {
	names := make([]string, 0, len(g.Parameters))
	for name := range g.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GoodsOf returns the goods that belong to a category, in feed order
func (p *PriceList) GoodsOf(categoryID int64) []PriceListGood {
	goods := make([]PriceListGood, 0)
	for _, g := range p.Goods {
		if g.Category == categoryID {
			goods = append(goods, g)
		}
	}
	return goods
}

// Validate checks the feed before anything is written
func (p *PriceList) Validate() error {
	if strings.TrimSpace(p.Shop) == "" {
		return shared.NewDomainError("INVALID_PRICE_LIST", "Price list has no shop name")
	}
	declared := make(map[int64]bool, len(p.Categories))
	for _, c := range p.Categories {
		if c.ID <= 0 {
			return shared.NewDomainError("INVALID_PRICE_LIST", "Category id must be positive")
		}
		if strings.TrimSpace(c.Name) == "" {
			return shared.NewDomainError("INVALID_PRICE_LIST", fmt.Sprintf("Category %d has no name", c.ID))
		}
		if declared[c.ID] {
			return shared.NewDomainError("INVALID_PRICE_LIST", fmt.Sprintf("Category %d is declared twice", c.ID))
		}
		declared[c.ID] = true
	}
	listed := make(map[int64]bool, len(p.Goods))
	for i, g := range p.Goods {
		if strings.TrimSpace(g.Name) == "" {
			return shared.NewDomainError("INVALID_PRICE_LIST", fmt.Sprintf("Good #%d has no name", i+1))
		}
		if listed[g.ID] {
			return shared.NewDomainError("INVALID_PRICE_LIST", fmt.Sprintf("Good %d is listed twice", g.ID))
		}
		listed[g.ID] = true
		if !declared[g.Category] {
			return shared.NewDomainError("INVALID_PRICE_LIST", fmt.Sprintf("Good %d refers to unknown category %d", g.ID, g.Category))
		}
		if g.Quantity < 0 {
			return shared.NewDomainError("INVALID_PRICE_LIST", fmt.Sprintf("Good %d has negative quantity", g.ID))
		}
		if g.Price.IsNegative() || g.PriceRRC.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE_LIST", fmt.Sprintf("Good %d has negative price", g.ID))
		}
	}
	return nil
}

// ImportResult counts what a price-list import wrote
type ImportResult struct {
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Offers     int `json:"offers"`
	Parameters int `json:"parameters"`
}
