package checkout

import (
	"testing"

	"github.com/abgdnv/tillpos/internal/catalog"
	poserrors "github.com/abgdnv/tillpos/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id, price string) catalog.Product {
	return catalog.Product{ID: id, Name: "Product " + id, Price: dec(price), State: catalog.StateActive}
}

func Test_Cart_AddFreezesPrice(t *testing.T) {
	var cart Cart
	p := product("prod_1", "2.50")

	cart, err := cart.Add(p, 1)
	require.NoError(t, err)

	p.Price = dec("9.99")
	cart, err = cart.Add(p, 2)
	require.NoError(t, err)

	require.Len(t, cart, 1)
	assert.Equal(t, 3, cart[0].Quantity)
	assert.True(t, dec("2.50").Equal(cart[0].UnitPrice))
	assert.True(t, dec("7.50").Equal(cart.Total()))
}

func Test_Cart_AddRejects(t *testing.T) {
	var cart Cart
	_, err := cart.Add(product("prod_1", "1"), 0)
	assert.ErrorIs(t, err, poserrors.ErrValidation)

	retired := product("prod_2", "1")
	retired.State = catalog.StateRetired
	_, err = cart.Add(retired, 1)
	assert.ErrorIs(t, err, poserrors.ErrProductNotFound)
}

func Test_Cart_SetQuantityAndRemove(t *testing.T) {
	cart := Cart{}
	cart, err := cart.Add(product("a", "1"), 1)
	require.NoError(t, err)
	cart, err = cart.Add(product("b", "2"), 1)
	require.NoError(t, err)

	updated, err := cart.SetQuantity("b", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, cart[1].Quantity, "receiver is not modified")
	assert.Equal(t, 5, updated[1].Quantity)
	assert.True(t, dec("11").Equal(updated.Total()))

	_, err = updated.SetQuantity("missing", 1)
	assert.ErrorIs(t, err, poserrors.ErrProductNotFound)

	removed, err := updated.SetQuantity("a", 0)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "b", removed[0].ProductID)

	assert.Empty(t, removed.Remove("b"))
	assert.Len(t, removed, 1)
}
