package handlers

import (
	"encoding/json"
	"net/http"

	"finance-service/internal/services"
)

type ReceivableHandler struct {
	receivableService *services.ReceivableService
	scopes            *scopeResolver
}

func NewReceivableHandler(receivableService *services.ReceivableService, scopes *scopeResolver) *ReceivableHandler {
	return &ReceivableHandler{receivableService: receivableService, scopes: scopes}
}

func (h *ReceivableHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	var req struct {
		Name             string `json:"name"`
		TotalAmountCents int64  `json:"total_amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	receivable, err := h.receivableService.CreateReceivable(scope, services.CreateReceivableInput{
		Name:             req.Name,
		TotalAmountCents: req.TotalAmountCents,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, receivable)
}

func (h *ReceivableHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	receivables, err := h.receivableService.ListReceivables(scope)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, receivables)
}

func (h *ReceivableHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	receivable, err := h.receivableService.GetReceivable(scope, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, receivable)
}

func (h *ReceivableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.receivableService.DeleteReceivable(scope, id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Receivable deleted"})
}

func (h *ReceivableHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var req struct {
		AmountCents int64  `json:"amount_cents"`
		PaymentDate string `json:"payment_date"`
		Notes       string `json:"notes"`
		ToAccountID int64  `json:"to_account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	payment, receivable, err := h.receivableService.AddPayment(scope, id, services.ReceivablePaymentInput{
		AmountCents: req.AmountCents,
		PaymentDate: req.PaymentDate,
		Notes:       req.Notes,
		ToAccountID: req.ToAccountID,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"payment":    payment,
		"receivable": receivable,
	})
}

func (h *ReceivableHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	payments, err := h.receivableService.ListPayments(scope, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, payments)
}
