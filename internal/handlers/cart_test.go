package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/Beerzinss/DatKomp/internal/store/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutForm(deliveryTypeID int64) url.Values {
	return url.Values{
		"first_name":       {"Anna"},
		"last_name":        {"Ozola"},
		"phone":            {"+37129999999"},
		"email":            {"anna@example.com"},
		"address_line":     {"Elizabetes iela 10, Riga"},
		"delivery_type_id": {strconv.FormatInt(deliveryTypeID, 10)},
	}
}

func (a *testApp) addToCart(c *http.Client, productID int64) {
	a.t.Helper()
	resp, _ := a.post(c, "/cart/add", url.Values{"product_id": {strconv.FormatInt(productID, 10)}})
	require.Equal(a.t, http.StatusSeeOther, resp.StatusCode)
}

func TestCartIncrementDecrementRemove(t *testing.T) {
	app := newTestApp(t)
	cpu := app.productByName("AMD Ryzen 7 7800X3D")
	id := url.Values{"product_id": {strconv.FormatInt(cpu.ID, 10)}}

	app.addToCart(app.client, cpu.ID)
	_, body := app.get(app.client, "/cart")
	assert.Contains(t, body, "Cart (1)")
	assert.Contains(t, body, "389.90 €")

	app.post(app.client, "/cart/increment", id)
	_, body = app.get(app.client, "/cart")
	assert.Contains(t, body, "Cart (2)")
	assert.Contains(t, body, "779.80 €")

	app.post(app.client, "/cart/decrement", id)
	app.post(app.client, "/cart/decrement", id)
	_, body = app.get(app.client, "/cart")
	assert.Contains(t, body, "Cart (0)")
	assert.Contains(t, body, "Your cart is empty.")

	app.addToCart(app.client, cpu.ID)
	app.post(app.client, "/cart/remove", id)
	_, body = app.get(app.client, "/cart")
	assert.Contains(t, body, "Your cart is empty.")
}

func TestCartWithManyProducts(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < 30; i++ {
		p := storetest.AddProduct(t, app.store,
			fmt.Sprintf("Corsair Vengeance RGB 64GB (2x32GB) DDR5-6400 CL32 kit %02d", i), "249.99", 10)
		app.addToCart(app.client, p.ID)
		app.get(app.client, "/cart") // follow the redirect so the flash is shown
	}

	resp, body := app.get(app.client, "/cart")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Cart (30)")
	assert.Contains(t, body, "7499.70 €")

	resp, _ = app.post(app.client, "/cart/checkout", checkoutForm(1))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = app.get(app.client, "/cart")
	assert.Contains(t, body, "Cart (0)")
}

func TestAddUnknownProduct(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.post(app.client, "/cart/add", url.Values{"product_id": {"9999"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = app.post(app.client, "/cart/add", url.Values{"product_id": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckoutPlacesOrder(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	cpu := app.productByName("AMD Ryzen 7 7800X3D")
	ram := app.productByName("Kingston Fury Beast 32GB DDR5")

	app.addToCart(app.client, cpu.ID)
	app.addToCart(app.client, cpu.ID)
	app.addToCart(app.client, ram.ID)

	resp, body := app.get(app.client, "/cart/checkout")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Store pickup")
	assert.Contains(t, body, "Courier")

	resp, _ = app.post(app.client, "/cart/checkout", checkoutForm(3))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/cart/confirmation/"), location)
	orderID, err := strconv.ParseInt(strings.TrimPrefix(location, "/cart/confirmation/"), 10, 64)
	require.NoError(t, err)

	order, err := app.store.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, order.UserID, "guest order")
	assert.Equal(t, "anna@example.com", order.Customer.Email)
	require.Len(t, order.Items, 2)
	assert.True(t, decimal.RequireFromString("884.79").Equal(order.ItemsTotal), "items total %s", order.ItemsTotal)
	assert.True(t, decimal.RequireFromString("891.29").Equal(order.GrandTotal), "grand total %s", order.GrandTotal)

	updated, err := app.store.GetProductByID(ctx, cpu.ID)
	require.NoError(t, err)
	assert.Equal(t, cpu.StockQty-2, updated.StockQty)

	notices := app.notifier.sent()
	require.Len(t, notices, 1)
	assert.Equal(t, orderID, notices[0].OrderID)
	assert.Equal(t, "anna@example.com", notices[0].Email)
	assert.True(t, order.GrandTotal.Equal(notices[0].GrandTotal))
	assert.Equal(t, testBaseURL+location, notices[0].StatusURL)

	resp, body = app.get(app.client, location)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Order #"+strconv.FormatInt(orderID, 10))
	assert.Contains(t, body, "891.29 €")
	assert.Contains(t, body, "Thank you! Your order has been placed.")

	_, body = app.get(app.client, "/cart")
	assert.Contains(t, body, "Your cart is empty.")

	// another visitor cannot open the confirmation
	resp, _ = app.get(app.newClient(), location)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckoutLinksOrderToLoggedInUser(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	u := app.addUser("buyer@example.com", "secret1", false)
	app.login(app.client, "buyer@example.com", "secret1")

	app.addToCart(app.client, app.productByName("Samsung 990 Pro 2TB").ID)
	resp, _ := app.post(app.client, "/cart/checkout", checkoutForm(1))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	orders, err := app.store.GetOrdersForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].UserID)
	assert.Equal(t, u.ID, *orders[0].UserID)
	assert.True(t, decimal.RequireFromString("179.50").Equal(orders[0].GrandTotal))

	_, body := app.get(app.client, "/account/orders")
	assert.Contains(t, body, "Samsung 990 Pro 2TB")
}

func TestCheckoutWithEmptyCart(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.get(app.client, "/cart/checkout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/cart", resp.Header.Get("Location"))

	resp, body := app.post(app.client, "/cart/checkout", checkoutForm(3))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Your cart is empty.")
	assert.Empty(t, app.notifier.sent())
}

func TestCheckoutRejectsInactiveDeliveryType(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	d, err := app.store.GetDeliveryType(ctx, 2)
	require.NoError(t, err)
	d.IsActive = false
	require.NoError(t, app.store.UpdateDeliveryType(ctx, d))

	app.addToCart(app.client, app.productByName("Samsung 990 Pro 2TB").ID)
	resp, body := app.post(app.client, "/cart/checkout", checkoutForm(2))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Please choose an available delivery option.")

	n, err := app.store.GetTotalOrdersCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// the cart survives the failed attempt
	_, body = app.get(app.client, "/cart")
	assert.Contains(t, body, "Cart (1)")
}

func TestCheckoutValidation(t *testing.T) {
	app := newTestApp(t)
	app.addToCart(app.client, app.productByName("Samsung 990 Pro 2TB").ID)

	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"missing first name", "first_name", "", "This field is required."},
		{"bad email", "email", "not-an-email", "Please enter a valid email address."},
		{"no delivery type", "delivery_type_id", "", "This field is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := checkoutForm(1)
			form.Set(tt.field, tt.value)
			resp, body := app.post(app.client, "/cart/checkout", form)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Contains(t, body, tt.want)
		})
	}
	assert.Empty(t, app.notifier.sent())
}
