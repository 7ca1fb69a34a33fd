package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/geo"
	"github.com/fjod/storefront/internal/ledger"
	"github.com/fjod/storefront/internal/payment"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps domain errors to HTTP statuses.
func handleError(w http.ResponseWriter, err error) {
	var vErr *payment.ValidationError
	if errors.As(err, &vErr) {
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   vErr.Err.Error(),
			Code:    vErr.Code(),
			Details: vErr.Field,
		})
		return
	}

	var httpStatus int
	var code string

	switch {
	case errors.Is(err, checkout.ErrUnauthenticated), errors.Is(err, ledger.ErrUserRequired):
		httpStatus = http.StatusUnauthorized
		code = "sign_in_required"
	case errors.Is(err, checkout.ErrEmptyCart):
		httpStatus = http.StatusConflict
		code = "empty_cart"
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		httpStatus = http.StatusConflict
		code = "checkout_in_progress"
	case errors.Is(err, payment.ErrUnsupportedMethod):
		httpStatus = http.StatusBadRequest
		code = "unsupported_payment_method"
	case errors.Is(err, geo.ErrInvalidCoordinates):
		httpStatus = http.StatusBadRequest
		code = "invalid_coordinates"
	case errors.Is(err, payment.ErrAbandoned):
		httpStatus = http.StatusRequestTimeout
		code = "payment_abandoned"
	case errors.Is(err, ledger.ErrOrderNotFound), errors.Is(err, catalog.ErrProductNotFound):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, catalog.ErrUnavailable), errors.Is(err, geo.ErrLookupFailed):
		httpStatus = http.StatusServiceUnavailable
		code = "service_unavailable"
	default:
		zap.L().Error("unhandled request error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}
