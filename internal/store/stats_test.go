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

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	u := storetest.AddUser(t, s, "u@example.com", "pw1234", false)
	p := storetest.AddProduct(t, s, "Webcam", "30.00", 10)

	for i := 0; i < 2; i++ {
		_, err := s.PlaceOrder(ctx, store.PlaceOrderInput{
			Customer:       customer,
			DeliveryTypeID: 2, // 2.99
			Lines:          []store.LineInput{{ProductID: p.ID, ProductName: p.Name, Quantity: 2, UnitPrice: p.Price}},
		})
		require.NoError(t, err)
	}
	require.NoError(t, s.CreateMessage(ctx, &models.ContactMessage{UserID: u.ID, Content: "Do you ship to Tartu?"}))

	stats, err := s.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalProducts)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 1, stats.UnreadMessages)
	assert.True(t, decimal.RequireFromString("125.98").Equal(stats.Revenue), "revenue %s", stats.Revenue)

	require.Len(t, stats.OrdersByStatus, 5)
	assert.Equal(t, store.StatusCount{Status: "New", Count: 2}, stats.OrdersByStatus[0])
	require.NotEmpty(t, stats.TopProducts)
	assert.Equal(t, store.ProductSales{ProductName: "Webcam", Quantity: 4}, stats.TopProducts[0])
}

func TestMessages(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	u := storetest.AddUser(t, s, "m@example.com", "pw1234", false)

	m := &models.ContactMessage{UserID: u.ID, Email: u.Email, Content: "Is the 4070 in stock?"}
	require.NoError(t, s.CreateMessage(ctx, m))

	list, err := s.GetMessages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Test User", list[0].SenderName)
	assert.False(t, list[0].IsRead)

	require.NoError(t, s.MarkMessageRead(ctx, m.ID))
	list, err = s.GetMessages(ctx)
	require.NoError(t, err)
	assert.True(t, list[0].IsRead)
	assert.ErrorIs(t, s.MarkMessageRead(ctx, 777), store.ErrNotFound)
}
