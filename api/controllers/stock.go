package controllers

import (
	"net/http"
	"strings"

	"github.com/wardstockhq/wardstock-backend/api/responses"
	"github.com/wardstockhq/wardstock-backend/api/validators"
	"github.com/wardstockhq/wardstock-backend/internal/script"
	"github.com/wardstockhq/wardstock-backend/internal/store"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

type withdrawRequest struct {
	ProductCode string `json:"product_code" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
	Room        string `json:"room"`
	PatientType string `json:"patient_type"`
	Note        string `json:"note"`
}

type stockRequest struct {
	ProductCode string `json:"product_code" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
	Note        string `json:"note"`
}

type batchWithdrawRequest struct {
	Items []withdrawRequest `json:"items" validate:"required,min=1,dive"`
}

// foldNote flattens room and patient type into the free-form audit note,
// the only place the transaction sheet has for them.
func foldNote(room, patientType, note string) string {
	parts := make([]string, 0, 3)
	if room = strings.TrimSpace(room); room != "" {
		parts = append(parts, "ห้อง: "+room)
	}
	if patientType = strings.TrimSpace(patientType); patientType != "" {
		parts = append(parts, "ผู้ป่วย: "+patientType)
	}
	if note = strings.TrimSpace(note); note != "" {
		parts = append(parts, note)
	}
	return strings.Join(parts, " | ")
}

func findCachedProduct(s *store.Store, code string) (models.Product, bool) {
	for _, p := range s.Products() {
		if p.Code == code {
			return p, true
		}
	}
	return models.Product{}, false
}

// checkWithdrawFields enforces the product's require_room /
// require_patient_type flags against the request.
func checkWithdrawFields(s *store.Store, req withdrawRequest) error {
	product, ok := findCachedProduct(s, req.ProductCode)
	if !ok {
		return nil // unknown locally; the endpoint owns the catalog truth
	}
	if product.RequireRoom && strings.TrimSpace(req.Room) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, req.ProductCode+" requires a room").
			WithDetails(map[string]string{"room": "is required"})
	}
	if product.RequirePatientType && strings.TrimSpace(req.PatientType) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, req.ProductCode+" requires a patient type").
			WithDetails(map[string]string{"patient_type": "is required"})
	}
	return nil
}

// Withdraw moves stock out for one product.
func Withdraw(s *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userName, err := actorName(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload withdrawRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := checkWithdrawFields(s, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := s.Withdraw(r.Context(), script.StockPayload{
			ProductCode: payload.ProductCode,
			Quantity:    payload.Quantity,
			Note:        foldNote(payload.Room, payload.PatientType, payload.Note),
		}, userName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Receive moves stock in for one product.
func Receive(s *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userName, err := actorName(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := s.Receive(r.Context(), script.StockPayload{
			ProductCode: payload.ProductCode,
			Quantity:    payload.Quantity,
			Note:        strings.TrimSpace(payload.Note),
		}, userName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Return moves previously withdrawn stock back in.
func Return(s *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userName, err := actorName(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := s.Return(r.Context(), script.StockPayload{
			ProductCode: payload.ProductCode,
			Quantity:    payload.Quantity,
			Note:        strings.TrimSpace(payload.Note),
		}, userName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// BatchWithdraw runs several withdrawals as one user action. Partial
// failure returns 200 with the aggregate counts; it is an expected
// outcome, not an error.
func BatchWithdraw(s *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userName, err := actorName(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload batchWithdrawRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		for _, item := range payload.Items {
			if err := checkWithdrawFields(s, item); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		items := make([]store.BatchItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, store.BatchItem{
				ProductCode: item.ProductCode,
				Quantity:    item.Quantity,
				Note:        foldNote(item.Room, item.PatientType, item.Note),
			})
		}

		responses.WriteSuccess(w, s.BatchWithdraw(r.Context(), items, userName))
	}
}
