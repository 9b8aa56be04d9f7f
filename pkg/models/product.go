package models

import "strings"

// Product is one catalog row. Code is the external key and never changes
// after creation; quantity is only moved by withdraw/receive/return commands
// or a catalog edit on the write path.
type Product struct {
	Code               string `json:"code"`
	Name               string `json:"name"`
	Unit               string `json:"unit"`
	Quantity           int    `json:"quantity"`
	LowStockThreshold  int    `json:"low_stock_threshold"`
	Category           string `json:"category"`
	Returnable         bool   `json:"returnable"`
	RequireRoom        bool   `json:"require_room"`
	RequirePatientType bool   `json:"require_patient_type"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

// LowStock reports whether the product is at or below its threshold.
func (p Product) LowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// Matches reports whether the product's code or name contains the query,
// case-insensitively. An empty query matches everything.
func (p Product) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Code), q) ||
		strings.Contains(strings.ToLower(p.Name), q)
}
