package controllers

import (
	"net/http"

	"github.com/wardstockhq/wardstock-backend/api/responses"
	"github.com/wardstockhq/wardstock-backend/internal/store"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
)

// Dashboard serves the catalog overview: totals plus the low-stock list.
func Dashboard(s *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, s.Dashboard())
	}
}
