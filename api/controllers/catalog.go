package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wardstockhq/wardstock-backend/api/middleware"
	"github.com/wardstockhq/wardstock-backend/api/responses"
	"github.com/wardstockhq/wardstock-backend/api/validators"
	"github.com/wardstockhq/wardstock-backend/internal/script"
	"github.com/wardstockhq/wardstock-backend/internal/store"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
)

type productRequest struct {
	Code               string `json:"code" validate:"required"`
	Name               string `json:"name" validate:"required"`
	Unit               string `json:"unit"`
	Quantity           int    `json:"quantity" validate:"min=0"`
	LowStockThreshold  int    `json:"low_stock_threshold" validate:"min=0"`
	Category           string `json:"category"`
	Returnable         bool   `json:"returnable"`
	RequireRoom        bool   `json:"require_room"`
	RequirePatientType bool   `json:"require_patient_type"`
}

func (p productRequest) toPayload() script.ProductPayload {
	return script.ProductPayload{
		Code:               strings.TrimSpace(p.Code),
		Name:               strings.TrimSpace(p.Name),
		Unit:               p.Unit,
		Quantity:           p.Quantity,
		LowStockThreshold:  p.LowStockThreshold,
		Category:           p.Category,
		Returnable:         p.Returnable,
		RequireRoom:        p.RequireRoom,
		RequirePatientType: p.RequirePatientType,
	}
}

func actorName(r *http.Request) (string, error) {
	actor, ok := middleware.IdentityFrom(r.Context())
	if !ok || actor.DisplayName == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return actor.DisplayName, nil
}

// ListProducts serves the cached catalog, optionally narrowed by ?q= and
// the low_stock / returnable view flags.
func ListProducts(s *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Query().Get("low_stock") == "true":
			responses.WriteSuccess(w, s.LowStockProducts())
		case r.URL.Query().Get("returnable") == "true":
			responses.WriteSuccess(w, s.ReturnableProducts())
		default:
			responses.WriteSuccess(w, s.SearchProducts(r.URL.Query().Get("q")))
		}
	}
}

// RefreshProducts forces a synchronous catalog re-read. The client calls
// this when it regains visibility.
func RefreshProducts(s *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.RefreshProducts(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, s.Products())
	}
}

// CreateProduct adds a catalog entry. Admin only.
func CreateProduct(s *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userName, err := actorName(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := s.AddProduct(r.Context(), payload.toPayload(), userName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// UpdateProduct rewrites the entry at {code}. Admin only.
func UpdateProduct(s *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userName, err := actorName(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code := chi.URLParam(r, "code")
		if payload.Code != code {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "body code must match the route"))
			return
		}

		result, err := s.UpdateProduct(r.Context(), payload.toPayload(), userName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeleteProduct removes the entry at {code}. Admin only.
func DeleteProduct(s *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userName, err := actorName(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product code is required"))
			return
		}

		result, err := s.DeleteProduct(r.Context(), code, userName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
