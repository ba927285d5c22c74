package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShop(t *testing.T) {
	userID := uuid.New()

	t.Run("creates enabled shop", func(t *testing.T) {
		shop, err := NewShop(userID, " Связной ", "https://www.svyaznoy.ru")

		require.NoError(t, err)
		assert.Equal(t, "Связной", shop.Name)
		assert.Equal(t, ShopStateOn, shop.State)
		assert.Equal(t, userID, shop.UserID)
		assert.True(t, shop.IsOn())
	})

	t.Run("allows empty url", func(t *testing.T) {
		shop, err := NewShop(userID, "Shop", "")

		require.NoError(t, err)
		assert.Empty(t, shop.URL)
	})

	t.Run("rejects bad url", func(t *testing.T) {
		_, err := NewShop(userID, "Shop", "not a url")
		assert.Error(t, err)
	})

	t.Run("requires name and owner", func(t *testing.T) {
		_, err := NewShop(userID, "  ", "")
		assert.Error(t, err)

		_, err = NewShop(uuid.Nil, "Shop", "")
		assert.Error(t, err)
	})
}

func TestParseShopState(t *testing.T) {
	tests := map[string]ShopState{
		"on":    ShopStateOn,
		"ON":    ShopStateOn,
		"true":  ShopStateOn,
		"off":   ShopStateOff,
		"False": ShopStateOff,
	}
	for input, want := range tests {
		got, err := ParseShopState(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseShopState("maybe")
	assert.Error(t, err)
}

func TestShop_SetState(t *testing.T) {
	shop, err := NewShop(uuid.New(), "Shop", "")
	require.NoError(t, err)

	require.NoError(t, shop.SetState(ShopStateOff))
	assert.False(t, shop.IsOn())

	assert.Error(t, shop.SetState(ShopState("paused")))
}
