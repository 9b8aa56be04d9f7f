package store

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/wardstockhq/wardstock-backend/internal/script"
)

// BatchItem is one line of a multi-product withdrawal.
type BatchItem struct {
	ProductCode string `json:"productCode"`
	Quantity    int    `json:"quantity"`
	Note        string `json:"note,omitempty"`
}

// BatchResult aggregates a batch run into one terminal message. Partial
// application is correct behavior, not an error state: the backing store
// has no multi-row transaction.
type BatchResult struct {
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

// BatchWithdraw runs the items as independent sequential withdrawals.
// Item failures are collected, never short-circuited; the successful
// items stay applied.
func (s *Store) BatchWithdraw(ctx context.Context, items []BatchItem, userName string) BatchResult {
	var result BatchResult
	for _, item := range items {
		_, err := s.Withdraw(ctx, script.StockPayload{
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			Note:        item.Note,
		}, userName)
		if err != nil {
			result.Failed++
			result.Err = multierr.Append(result.Err, fmt.Errorf("%s: %w", item.ProductCode, err))
			continue
		}
		result.Succeeded++
	}
	result.Message = fmt.Sprintf("%d succeeded, %d failed", result.Succeeded, result.Failed)
	return result
}
