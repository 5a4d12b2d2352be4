// Package storetest opens migrated throwaway stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Beerzinss/DatKomp/internal/auth"
	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// New returns a sqlite store in t.TempDir() with all migrations applied.
func New(t testing.TB) *store.Store {
	t.Helper()
	ctx := context.Background()

	s, err := store.NewStore(ctx, "sqlite", filepath.Join(t.TempDir(), "test.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(ctx))
	return s
}

// AddProduct inserts a product with the given price and stock.
func AddProduct(t testing.TB, s *store.Store, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), StockQty: stock}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

// AddUser inserts a user whose password is password.
func AddUser(t testing.TB, s *store.Store, email, password string, admin bool) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{FirstName: "Test", LastName: "User", Email: email, PasswordHash: hash, IsAdmin: admin}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}
