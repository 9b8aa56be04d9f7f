package sheets

import (
	"strconv"
	"strings"
	"time"

	"github.com/wardstockhq/wardstock-backend/pkg/enums"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

// Products!A2:K column order. The sheet has no header row in the fetched
// range; rows map positionally.
const (
	productColCode = iota
	productColName
	productColUnit
	productColQuantity
	productColLowStock
	productColCategory
	productColReturnable
	productColRequireRoom
	productColRequirePatientType
	productColCreatedAt
	productColUpdatedAt
)

// Transactions!A2:J column order.
const (
	txColID = iota
	txColTimestamp
	txColType
	txColProductCode
	txColProductName
	txColQuantity
	txColBefore
	txColAfter
	txColUserName
	txColNote
)

func rowString(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowInt(row []string, idx int) int {
	n, err := strconv.Atoi(rowString(row, idx))
	if err != nil {
		return 0
	}
	return n
}

func rowBool(row []string, idx int) bool {
	switch strings.ToUpper(rowString(row, idx)) {
	case "TRUE", "1", "YES":
		return true
	default:
		return false
	}
}

func rowToProduct(row []string) models.Product {
	return models.Product{
		Code:               rowString(row, productColCode),
		Name:               rowString(row, productColName),
		Unit:               rowString(row, productColUnit),
		Quantity:           rowInt(row, productColQuantity),
		LowStockThreshold:  rowInt(row, productColLowStock),
		Category:           rowString(row, productColCategory),
		Returnable:         rowBool(row, productColReturnable),
		RequireRoom:        rowBool(row, productColRequireRoom),
		RequirePatientType: rowBool(row, productColRequirePatientType),
		CreatedAt:          rowString(row, productColCreatedAt),
		UpdatedAt:          rowString(row, productColUpdatedAt),
	}
}

func rowToTransaction(row []string) models.Transaction {
	raw := rowString(row, txColTimestamp)
	ts, ok := parseSheetTimestamp(raw)

	tx := models.Transaction{
		ID:             rowString(row, txColID),
		Timestamp:      ts,
		Type:           canonicalType(rowString(row, txColType)),
		ProductCode:    rowString(row, txColProductCode),
		ProductName:    rowString(row, txColProductName),
		Quantity:       rowInt(row, txColQuantity),
		BeforeQuantity: rowInt(row, txColBefore),
		AfterQuantity:  rowInt(row, txColAfter),
		UserName:       rowString(row, txColUserName),
		Note:           rowString(row, txColNote),
	}
	if !ok {
		tx.RawTimestamp = raw
	}
	return tx
}

// canonicalType maps either the English code or the Thai label to the
// canonical enum. Unknown values pass through untranslated so the row is
// kept; it simply never matches a canonical type filter.
func canonicalType(raw string) enums.TransactionType {
	if parsed, err := enums.ParseTransactionType(raw); err == nil {
		return parsed
	}
	return enums.TransactionType(raw)
}

var isoTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseSheetTimestamp accepts ISO-like values and the locale form the
// command endpoint writes, "15/1/2026, 0:23:39". A failed parse reports
// ok=false with a zero time; it never errors the surrounding read.
func parseSheetTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range isoTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, true
		}
	}

	datePart, timePart, found := strings.Cut(raw, ",")
	if !found {
		return time.Time{}, false
	}
	dateFields := strings.Split(strings.TrimSpace(datePart), "/")
	timeFields := strings.Split(strings.TrimSpace(timePart), ":")
	if len(dateFields) != 3 || len(timeFields) != 3 {
		return time.Time{}, false
	}

	nums := make([]int, 0, 6)
	for _, field := range append(dateFields, timeFields...) {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return time.Time{}, false
		}
		nums = append(nums, n)
	}

	day, month, year := nums[0], nums[1], nums[2]
	hour, minute, second := nums[3], nums[4], nums[5]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local), true
}
