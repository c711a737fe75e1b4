package handlers

import (
	"net/http"

	"finance-service/internal/clients"
)

type BillingHandler struct {
	pricing clients.PricingClient
}

func NewBillingHandler(pricing clients.PricingClient) *BillingHandler {
	return &BillingHandler{pricing: pricing}
}

// GetPrice proxies the subscription price from the payment provider.
func (h *BillingHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	if h.pricing == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Pricing service is not configured")
		return
	}

	price, err := h.pricing.GetPrice(r.Context())
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to fetch price")
		return
	}
	respondWithJSON(w, http.StatusOK, price)
}
