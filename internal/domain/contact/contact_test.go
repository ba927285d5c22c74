package contact

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContact(t *testing.T) {
	userID := uuid.New()

	t.Run("defaults address parts", func(t *testing.T) {
		c, err := NewContact(userID, Details{Phone: "+79991234567"})

		require.NoError(t, err)
		assert.Equal(t, TypeBuyer, c.Type)
		assert.Equal(t, "n/a", c.City)
		assert.Equal(t, "n/a", c.Street)
		assert.Equal(t, "n/a", c.House)
		assert.Empty(t, c.Apartment)
		assert.True(t, c.BelongsTo(userID))
	})

	t.Run("rejects bad phone", func(t *testing.T) {
		for _, phone := range []string{"", "12345", "+7 999 123 45 67", "phone123456"} {
			_, err := NewContact(userID, Details{Phone: phone})
			require.Error(t, err, phone)
			assert.Equal(t, MsgInvalidPhone, err.Error())
		}
	})

	t.Run("rejects bad city", func(t *testing.T) {
		_, err := NewContact(userID, Details{Phone: "+79991234567", City: "Moscow1"})
		require.Error(t, err)
		assert.Equal(t, MsgInvalidCity, err.Error())
	})

	t.Run("accepts hyphenated city", func(t *testing.T) {
		c, err := NewContact(userID, Details{Phone: "123456789", City: "Rostov-on-Don", Street: "Lenina", House: "1"})
		require.NoError(t, err)
		assert.Equal(t, "Rostov-on-Don", c.City)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewContact(userID, Details{Phone: "+79991234567", Type: "office"})
		assert.Error(t, err)
	})
}
