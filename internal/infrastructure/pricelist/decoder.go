package pricelist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type rawPriceList struct {
	Shop       string        `yaml:"shop"`
	URL        string        `yaml:"url"`
	Categories []rawCategory `yaml:"categories"`
	Goods      []rawGood     `yaml:"goods"`
}

type rawCategory struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type rawGood struct {
	ID         int64                `yaml:"id"`
	Category   int64                `yaml:"category"`
	Model      string               `yaml:"model"`
	Name       string               `yaml:"name"`
	Price      yamlDecimal          `yaml:"price"`
	PriceRRC   yamlDecimal          `yaml:"price_rrc"`
	Quantity   int                  `yaml:"quantity"`
	Parameters map[string]yaml.Node `yaml:"parameters"`
}

// yamlDecimal reads prices written either as integers or as decimals
// without going through float64
type yamlDecimal struct {
	decimal.Decimal
}

func (d *yamlDecimal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: price must be a number", node.Line)
	}
	if node.Tag == "!!null" || strings.TrimSpace(node.Value) == "" {
		d.Decimal = decimal.Zero
		return nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("line %d: invalid price %q", node.Line, node.Value)
	}
	d.Decimal = v
	return nil
}

// Decode parses a UTF-8 YAML price list and validates it
func Decode(data []byte) (*catalog.PriceList, error) {
	var raw rawPriceList
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	list := &catalog.PriceList{
		Shop:       strings.TrimSpace(raw.Shop),
		URL:        strings.TrimSpace(raw.URL),
		Categories: make([]catalog.PriceListCategory, 0, len(raw.Categories)),
		Goods:      make([]catalog.PriceListGood, 0, len(raw.Goods)),
	}
	for _, c := range raw.Categories {
		list.Categories = append(list.Categories, catalog.PriceListCategory{
			ID:   c.ID,
			Name: strings.TrimSpace(c.Name),
		})
	}
	for _, g := range raw.Goods {
		params := make(map[string]string, len(g.Parameters))
		for name, node := range g.Parameters {
			if node.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: parameter %q of good %d must be a scalar",
					ErrInvalidDocument, node.Line, name, g.ID)
			}
			params[strings.TrimSpace(name)] = node.Value
		}
		list.Goods = append(list.Goods, catalog.PriceListGood{
			ID:         g.ID,
			Category:   g.Category,
			Model:      strings.TrimSpace(g.Model),
			Name:       strings.TrimSpace(g.Name),
			Price:      g.Price.Decimal,
			PriceRRC:   g.PriceRRC.Decimal,
			Quantity:   g.Quantity,
			Parameters: params,
		})
	}

	if err := list.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return list, nil
}
