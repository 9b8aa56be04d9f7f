package controllers

import (
	"net/http"

	"github.com/wardstockhq/wardstock-backend/api/responses"
	"github.com/wardstockhq/wardstock-backend/api/validators"
	"github.com/wardstockhq/wardstock-backend/internal/store"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
)

// ListTransactions reads the audit log through the query filter
// (start_date, end_date, type, product_code, user_name), newest first.
func ListTransactions(s *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := validators.ParseTransactionFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txs, err := s.RefreshTransactions(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txs)
	}
}
