package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

func TestDashboardTotalsAndLowStock(t *testing.T) {
	backend := newFakeBackend(
		saline(42),
		gauze(3), // threshold 5, low
		models.Product{Code: "MED-007", Name: "Gloves", Quantity: 8, LowStockThreshold: 8, Returnable: true}, // at threshold, low
	)
	s := newTestStore(t, backend)

	dash := s.Dashboard()
	assert.Equal(t, 3, dash.TotalProducts)
	assert.Equal(t, 53, dash.TotalQuantity)
	assert.Equal(t, 2, dash.LowStockCount)
	require.Len(t, dash.LowStock, 2)
	assert.Equal(t, "MED-002", dash.LowStock[0].Code)
	assert.Equal(t, "MED-007", dash.LowStock[1].Code)
}

func TestLowStockFlagMatchesThresholdExactly(t *testing.T) {
	above := models.Product{Quantity: 11, LowStockThreshold: 10}
	at := models.Product{Quantity: 10, LowStockThreshold: 10}
	below := models.Product{Quantity: 9, LowStockThreshold: 10}

	assert.False(t, above.LowStock())
	assert.True(t, at.LowStock())
	assert.True(t, below.LowStock())
}

func TestSearchProducts(t *testing.T) {
	backend := newFakeBackend(saline(42), gauze(3))
	s := newTestStore(t, backend)

	assert.Len(t, s.SearchProducts(""), 2)

	byName := s.SearchProducts("saline")
	require.Len(t, byName, 1)
	assert.Equal(t, "MED-001", byName[0].Code)

	byCode := s.SearchProducts("med-002")
	require.Len(t, byCode, 1)
	assert.Equal(t, "Gauze", byCode[0].Name)

	assert.Empty(t, s.SearchProducts("morphine"))
}

func TestReturnableProductsExcludesNonReturnable(t *testing.T) {
	backend := newFakeBackend(saline(42), gauze(3))
	s := newTestStore(t, backend)

	candidates := s.ReturnableProducts()
	require.Len(t, candidates, 1)
	assert.Equal(t, "MED-001", candidates[0].Code)
	for _, p := range candidates {
		assert.True(t, p.Returnable)
	}
}

func TestViewsReflectRefreshedCache(t *testing.T) {
	backend := newFakeBackend(saline(42))
	s := newTestStore(t, backend)

	backend.mu.Lock()
	backend.products[0].Quantity = 2
	backend.mu.Unlock()
	require.NoError(t, s.RefreshProducts(context.Background()))

	assert.Len(t, s.LowStockProducts(), 1)
	assert.Equal(t, 2, s.Dashboard().TotalQuantity)
}
