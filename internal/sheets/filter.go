package sheets

import (
	"sort"
	"strings"
	"time"

	"github.com/wardstockhq/wardstock-backend/pkg/enums"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

// TransactionFilter narrows a transaction read. Every field is optional;
// the zero value means "no constraint".
type TransactionFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Type        enums.TransactionType
	ProductCode string
	UserName    string
}

// Apply filters and sorts the rows newest-first. Date bounds are inclusive
// at start-of-day/end-of-day granularity; rows whose timestamp could not be
// parsed are dropped by date bounds and otherwise kept at the tail.
func (f TransactionFilter) Apply(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))

	var start, end time.Time
	if f.StartDate != nil {
		start = startOfDay(*f.StartDate)
	}
	if f.EndDate != nil {
		end = endOfDay(*f.EndDate)
	}
	userNeedle := strings.ToLower(strings.TrimSpace(f.UserName))

	for _, tx := range txs {
		if f.StartDate != nil && (tx.Timestamp.IsZero() || tx.Timestamp.Before(start)) {
			continue
		}
		if f.EndDate != nil && (tx.Timestamp.IsZero() || tx.Timestamp.After(end)) {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.ProductCode != "" && tx.ProductCode != f.ProductCode {
			continue
		}
		if userNeedle != "" && !strings.Contains(strings.ToLower(tx.UserName), userNeedle) {
			continue
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
