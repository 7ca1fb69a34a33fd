package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/geo"
)

type LocationHandler struct {
	locator geo.Locator
	timeout time.Duration
}

func NewLocationHandler(locator geo.Locator, timeout time.Duration) *LocationHandler {
	return &LocationHandler{
		locator: locator,
		timeout: timeout,
	}
}

type LocationResponse struct {
	Location domain.Location     `json:"location"`
	Delivery domain.DeliveryInfo `json:"delivery"`
}

// GET /api/v1/location?lat=&lon=
// Returns the resolved location together with delivery fields prefilled from it.
func (h *LocationHandler) Locate(w http.ResponseWriter, r *http.Request) {
	if h.locator == nil {
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "location lookup is disabled")
		return
	}

	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		respondError(w, http.StatusBadRequest, "invalid_coordinates", "lat and lon must be numbers")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	loc, err := h.locator.Locate(ctx, lat, lon)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &LocationResponse{
		Location: loc,
		Delivery: domain.DeliveryInfo{}.Prefill(loc),
	})
}
