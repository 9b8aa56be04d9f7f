package validators

import (
	"net/http"
	"strings"
	"time"

	"github.com/wardstockhq/wardstock-backend/internal/sheets"
	"github.com/wardstockhq/wardstock-backend/pkg/enums"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
)

const queryDateLayout = "2006-01-02"

// ParseQueryDate reads an optional YYYY-MM-DD query parameter.
func ParseQueryDate(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(queryDateLayout, raw, time.Local)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD").WithDetails(map[string]any{"field": key})
	}
	return &parsed, nil
}

// ParseTransactionFilter builds the transaction filter from query params:
// start_date, end_date, type, product_code, user_name.
func ParseTransactionFilter(r *http.Request) (sheets.TransactionFilter, error) {
	var filter sheets.TransactionFilter

	start, err := ParseQueryDate(r, "start_date")
	if err != nil {
		return filter, err
	}
	end, err := ParseQueryDate(r, "end_date")
	if err != nil {
		return filter, err
	}
	filter.StartDate = start
	filter.EndDate = end

	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		parsed, err := enums.ParseTransactionType(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "unknown transaction type").WithDetails(map[string]any{"field": "type", "value": raw})
		}
		filter.Type = parsed
	}

	filter.ProductCode = strings.TrimSpace(r.URL.Query().Get("product_code"))
	filter.UserName = strings.TrimSpace(r.URL.Query().Get("user_name"))
	return filter, nil
}
