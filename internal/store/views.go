package store

import "github.com/wardstockhq/wardstock-backend/pkg/models"

// Dashboard summarizes the cached catalog for the overview screen.
type Dashboard struct {
	TotalProducts int              `json:"total_products"`
	TotalQuantity int              `json:"total_quantity"`
	LowStockCount int              `json:"low_stock_count"`
	LowStock      []models.Product `json:"low_stock"`
}

// Dashboard computes catalog totals and the low-stock list.
func (s *Store) Dashboard() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	dash := Dashboard{LowStock: []models.Product{}}
	for _, p := range s.products {
		dash.TotalProducts++
		dash.TotalQuantity += p.Quantity
		if p.LowStock() {
			dash.LowStockCount++
			dash.LowStock = append(dash.LowStock, p)
		}
	}
	return dash
}

// SearchProducts returns products whose code or name contains the query,
// case-insensitively. A blank query returns the whole catalog.
func (s *Store) SearchProducts(query string) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out
}

// LowStockProducts returns products at or below their threshold.
func (s *Store) LowStockProducts() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, 0)
	for _, p := range s.products {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out
}

// ReturnableProducts returns the candidates for a return operation.
// returnable=false never appears here.
func (s *Store) ReturnableProducts() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, 0)
	for _, p := range s.products {
		if p.Returnable {
			out = append(out, p)
		}
	}
	return out
}
