package models

import (
	"time"

	"github.com/wardstockhq/wardstock-backend/pkg/enums"
)

// Transaction is one append-only audit row created by the write path.
// Timestamp is zero when the sheet value could not be parsed; such rows are
// kept and sort after every dated row.
type Transaction struct {
	ID             string                `json:"id"`
	Timestamp      time.Time             `json:"timestamp"`
	RawTimestamp   string                `json:"raw_timestamp,omitempty"`
	Type           enums.TransactionType `json:"type"`
	ProductCode    string                `json:"product_code"`
	ProductName    string                `json:"product_name"`
	Quantity       int                   `json:"quantity"`
	BeforeQuantity int                   `json:"before_quantity"`
	AfterQuantity  int                   `json:"after_quantity"`
	UserName       string                `json:"user_name"`
	Note           string                `json:"note,omitempty"`
}
