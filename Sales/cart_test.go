package Sales_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CafePOS/Models"
	"CafePOS/Sales"
)

func TestCartStore(t *testing.T) {
	store := Sales.NewCartStore()

	cart, err := store.Add("s1", "Latte", 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Latte": 2}, cart)

	cart, err = store.Add("s1", "Latte", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, cart["Latte"])

	// returned maps are copies
	cart["Latte"] = 100
	assert.Equal(t, 3, store.Get("s1")["Latte"])

	_, err = store.Add("s1", "Latte", 0)
	assert.ErrorIs(t, err, Models.ErrValidation)
	_, err = store.Set("s1", "Latte", -1)
	assert.ErrorIs(t, err, Models.ErrValidation)

	cart, err = store.Set("s1", "Espresso", 4)
	require.NoError(t, err)
	assert.Len(t, cart, 2)

	cart, err = store.Set("s1", "Espresso", 0)
	require.NoError(t, err)
	assert.NotContains(t, cart, "Espresso")

	assert.Empty(t, store.Get("s2"))

	cart = store.Remove("s1", "Latte")
	assert.Empty(t, cart)

	store.Add("s1", "Latte", 1)
	store.Clear("s1")
	assert.Empty(t, store.Get("s1"))
}
