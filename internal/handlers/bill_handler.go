package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"finance-service/internal/services"
)

type BillHandler struct {
	billService *services.BillService
	scopes      *scopeResolver
}

func NewBillHandler(billService *services.BillService, scopes *scopeResolver) *BillHandler {
	return &BillHandler{billService: billService, scopes: scopes}
}

// Open creates a bill for a future reference month, idempotently.
func (h *BillHandler) Open(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	var req struct {
		AccountID      int64  `json:"account_id"`
		ReferenceMonth string `json:"reference_month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	bill, err := h.billService.OpenBill(scope, req.AccountID, req.ReferenceMonth)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, bill)
}

func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	bill, err := h.billService.GetBill(scope, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, bill)
}

// Action dispatches the bill lifecycle operations: pay and
// close_with_interest.
func (h *BillHandler) Action(w http.ResponseWriter, r *http.Request) {
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
		Action        string  `json:"action"`
		AmountCents   int64   `json:"amount_cents"`
		PaymentDate   string  `json:"payment_date"`
		FromAccountID int64   `json:"from_account_id"`
		InterestRate  float64 `json:"interest_rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	switch req.Action {
	case "pay":
		bill, err := h.billService.PayBill(scope, id, services.PayBillInput{
			AmountCents:   req.AmountCents,
			PaymentDate:   req.PaymentDate,
			FromAccountID: req.FromAccountID,
		})
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, bill)
	case "close_with_interest":
		bill, err := h.billService.CloseWithInterest(scope, id, decimal.NewFromFloat(req.InterestRate))
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, bill)
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown action; use pay or close_with_interest")
	}
}
