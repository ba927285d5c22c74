package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPriceList() *PriceList {
	return &PriceList{
		Shop: "Связной",
		Categories: []PriceListCategory{
			{ID: 224, Name: "Смартфоны"},
			{ID: 15, Name: "Аксессуары"},
		},
		Goods: []PriceListGood{
			{ID: 4216292, Category: 224, Name: "Смартфон Apple iPhone XS Max 512GB (золотистый)", Price: decimal.NewFromInt(110000), PriceRRC: decimal.NewFromInt(116990), Quantity: 14,
				Parameters: map[string]string{"Цвет": "золотистый", "Диагональ (дюйм)": "6.5"}},
			{ID: 4672670, Category: 15, Name: "Чехол", Price: decimal.NewFromInt(990), PriceRRC: decimal.NewFromInt(1290), Quantity: 3},
		},
	}
}

func TestPriceList_Validate(t *testing.T) {
	t.Run("accepts valid feed", func(t *testing.T) {
		assert.NoError(t, validPriceList().Validate())
	})

	t.Run("requires shop name", func(t *testing.T) {
		pl := validPriceList()
		pl.Shop = ""
		assert.Error(t, pl.Validate())
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		pl := validPriceList()
		pl.Goods[1].Category = 999
		err := pl.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown category 999")
	})

	t.Run("rejects duplicate category", func(t *testing.T) {
		pl := validPriceList()
		pl.Categories = append(pl.Categories, PriceListCategory{ID: 15, Name: "Dup"})
		assert.Error(t, pl.Validate())
	})

	t.Run("rejects good listed twice", func(t *testing.T) {
		pl := validPriceList()
		dup := pl.Goods[1]
		dup.Category = 224
		pl.Goods = append(pl.Goods, dup)
		err := pl.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Good 4672670 is listed twice")
	})

	t.Run("rejects negative values", func(t *testing.T) {
		pl := validPriceList()
		pl.Goods[0].Quantity = -1
		assert.Error(t, pl.Validate())

		pl = validPriceList()
		pl.Goods[0].Price = decimal.NewFromInt(-5)
		assert.Error(t, pl.Validate())
	})
}

func TestPriceList_GoodsOf(t *testing.T) {
	pl := validPriceList()

	goods := pl.GoodsOf(224)
	require.Len(t, goods, 1)
	assert.Equal(t, int64(4216292), goods[0].ID)
	assert.Equal(t, []string{"Диагональ (дюйм)", "Цвет"}, goods[0].ParameterNames())
	assert.Empty(t, pl.GoodsOf(1))
}

func TestNewProductInfo(t *testing.T) {
	productID, shopID := uuid.New(), uuid.New()

	info, err := NewProductInfo(productID, shopID, 1, "apple/iphone/xs-max", 5, decimal.NewFromInt(100), decimal.NewFromInt(120))
	require.NoError(t, err)
	assert.True(t, info.HasStock(5))
	assert.False(t, info.HasStock(6))

	param, err := NewParameter("Цвет")
	require.NoError(t, err)
	pp := info.AddParameter(param, "золотистый")
	assert.Equal(t, info.ID, pp.ProductInfoID)
	assert.Len(t, info.Parameters, 1)

	_, err = NewProductInfo(productID, shopID, 1, "", -1, decimal.Zero, decimal.Zero)
	assert.Error(t, err)
}

func TestNewCategoryAndProduct(t *testing.T) {
	cat, err := NewCategory(224, "Смартфоны")
	require.NoError(t, err)
	shopID := uuid.New()
	assert.False(t, cat.HasShop(shopID))
	cat.ShopIDs = append(cat.ShopIDs, shopID)
	assert.True(t, cat.HasShop(shopID))

	_, err = NewCategory(0, "x")
	assert.Error(t, err)

	p, err := NewProduct("iPhone", cat.ID)
	require.NoError(t, err)
	assert.Equal(t, cat.ID, p.CategoryID)

	_, err = NewProduct("iPhone", uuid.Nil)
	assert.Error(t, err)
}
