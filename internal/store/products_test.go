package store_test

import (
	"context"
	"math"
	"testing"

	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/store"
	"github.com/Beerzinss/DatKomp/internal/store/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	p := &models.Product{Name: "Monitor", Description: "27 inch", Price: decimal.RequireFromString("249.00"), StockQty: 7, ImageURL: "/static/uploads/a.jpg"}
	require.NoError(t, s.CreateProduct(ctx, p))
	require.NotZero(t, p.ID)

	got, err := s.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Monitor", got.Name)
	assert.True(t, p.Price.Equal(got.Price))
	assert.Equal(t, "/static/uploads/a.jpg", got.ImageURL)

	got.Name = "Monitor Pro"
	got.ImageURL = "" // keep the current image
	require.NoError(t, s.UpdateProduct(ctx, got))
	again, err := s.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Monitor Pro", again.Name)
	assert.Equal(t, "/static/uploads/a.jpg", again.ImageURL)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	_, err = s.GetProductByID(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), store.ErrNotFound)
}

func TestReplaceCategoriesAndSpecs(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	p := storetest.AddProduct(t, s, "Laptop", "999.00", 2)

	cats, err := s.GetCategories(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(cats), 2)

	require.NoError(t, s.ReplaceProductCategories(ctx, p.ID, []int64{cats[0].ID, cats[1].ID, cats[0].ID}))
	linked, err := s.GetCategoriesForProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, linked, 2)

	require.NoError(t, s.ReplaceProductCategories(ctx, p.ID, []int64{cats[1].ID}))
	linked, err = s.GetCategoriesForProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, cats[1].ID, linked[0].ID)

	err = s.ReplaceProductCategories(ctx, p.ID, []int64{cats[0].ID, 9999})
	assert.Error(t, err, "unknown category must fail the whole replacement")
	linked, err = s.GetCategoriesForProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, linked, 1, "failed replacement left the old set in place")

	require.NoError(t, s.ReplaceProductSpecs(ctx, p.ID, []models.ProductSpec{
		{Key: "RAM", Value: "16", Unit: "GB"},
		{Key: "", Value: "ignored"},
		{Key: "Screen", Value: " "},
		{Key: " CPU ", Value: " i7 "},
	}))
	specs, err := s.GetSpecs(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, models.ProductSpec{ID: specs[0].ID, ProductID: p.ID, Key: "RAM", Value: "16", Unit: "GB"}, specs[0])
	assert.Equal(t, "CPU", specs[1].Key)
	assert.Equal(t, "i7", specs[1].Value)
}

func TestListProductsFilters(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	// seeded: 4 products, one per category
	all, total, err := s.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, all, 4)

	cpus, total, err := s.ListProducts(ctx, store.ProductFilter{Category: "Processors"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, cpus, 1)
	assert.Equal(t, "AMD Ryzen 7 7800X3D", cpus[0].Name)

	tdp, total, err := s.ListProducts(ctx, store.ProductFilter{Specs: map[string][]string{"TDP": {"120", "220"}}})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, tdp, 2)

	both, _, err := s.ListProducts(ctx, store.ProductFilter{Specs: map[string][]string{"TDP": {"220"}, "Memory": {"12"}}})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "NVIDIA GeForce RTX 4070 Super", both[0].Name)

	none, total, err := s.ListProducts(ctx, store.ProductFilter{Category: "Processors", Specs: map[string][]string{"Capacity": {"32"}}})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func TestListProductsPagination(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	for i := 0; i < 10; i++ {
		storetest.AddProduct(t, s, "Cable", "3.00", 1)
	}

	page1, total, err := s.ListProducts(ctx, store.ProductFilter{Page: 1, PageSize: 12})
	require.NoError(t, err)
	assert.Equal(t, 14, total)
	assert.Len(t, page1, 12)

	page2, _, err := s.ListProducts(ctx, store.ProductFilter{Page: 2, PageSize: 12})
	require.NoError(t, err)
	assert.Len(t, page2, 2)
	assert.NotEqual(t, page1[0].ID, page2[0].ID)

	past, total, err := s.ListProducts(ctx, store.ProductFilter{Page: math.MaxInt, PageSize: 12})
	require.NoError(t, err)
	assert.Equal(t, 14, total)
	assert.Equal(t, page2, past, "pages past the end show the last page")
}

func TestSpecFilterGroups(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	groups, err := s.SpecFilterGroups(ctx, "")
	require.NoError(t, err)
	byKey := map[string][]string{}
	for _, g := range groups {
		byKey[g.Key] = g.Values
	}
	assert.Equal(t, []string{"120", "220"}, byKey["TDP"])
	assert.Equal(t, []string{"2", "32"}, byKey["Capacity"])

	memory, err := s.SpecFilterGroups(ctx, "Memory")
	require.NoError(t, err)
	require.Len(t, memory, 2)
	assert.Equal(t, "Capacity", memory[0].Key)
	assert.Equal(t, []string{"32"}, memory[0].Values)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	id, err := s.CreateCategory(ctx, "Cooling")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = s.CreateCategory(ctx, "cooling")
	assert.ErrorIs(t, err, store.ErrCategoryExists)

	require.NoError(t, s.DeleteCategory(ctx, id))
	assert.ErrorIs(t, s.DeleteCategory(ctx, id), store.ErrNotFound)
}
