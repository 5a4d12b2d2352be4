package store_test

import (
	"context"
	"testing"

	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/store"
	"github.com/Beerzinss/DatKomp/internal/store/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryTypes(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	expensive := &models.DeliveryType{Name: "Express", Price: decimal.RequireFromString("10.00"), IsActive: true}
	require.NoError(t, s.CreateDeliveryType(ctx, expensive))
	hidden := &models.DeliveryType{Name: "Hidden", Price: decimal.Zero, IsActive: false}
	require.NoError(t, s.CreateDeliveryType(ctx, hidden))

	active, err := s.GetActiveDeliveryTypes(ctx)
	require.NoError(t, err)
	var names []string
	for _, d := range active {
		names = append(names, d.Name)
	}
	// numeric order: 0.00, 2.99, 6.50, 10.00
	assert.Equal(t, []string{"Store pickup", "Parcel terminal", "Courier", "Express"}, names)

	all, err := s.GetAllDeliveryTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	expensive.Description = "Same day"
	expensive.IsActive = false
	require.NoError(t, s.UpdateDeliveryType(ctx, expensive))
	got, err := s.GetDeliveryType(ctx, expensive.ID)
	require.NoError(t, err)
	assert.Equal(t, "Same day", got.Description)
	assert.False(t, got.IsActive)

	require.NoError(t, s.DeleteDeliveryType(ctx, hidden.ID))
	_, err = s.GetDeliveryType(ctx, hidden.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteDeliveryTypeInUse(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	p := storetest.AddProduct(t, s, "HDD", "49.00", 3)

	_, err := s.PlaceOrder(ctx, store.PlaceOrderInput{
		Customer:       customer,
		DeliveryTypeID: 2,
		Lines:          []store.LineInput{{ProductID: p.ID, ProductName: p.Name, Quantity: 1, UnitPrice: p.Price}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteDeliveryType(ctx, 2), store.ErrDeliveryTypeInUse)
	assert.ErrorIs(t, s.DeleteDeliveryType(ctx, 999), store.ErrNotFound)
}
