package handlers

import (
	"encoding/json"
	"net/http"

	"finance-service/internal/services"
)

type DebtHandler struct {
	debtService *services.DebtService
	scopes      *scopeResolver
}

func NewDebtHandler(debtService *services.DebtService, scopes *scopeResolver) *DebtHandler {
	return &DebtHandler{debtService: debtService, scopes: scopes}
}

func (h *DebtHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	var req struct {
		Name                  string `json:"name"`
		TotalAmountCents      int64  `json:"total_amount_cents"`
		ContributionFrequency string `json:"contribution_frequency"`
		InstallmentCount      int64  `json:"installment_count"`
		InstallmentCents      int64  `json:"installment_amount_cents"`
		StartDate             string `json:"start_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	debt, err := h.debtService.CreateDebt(scope, services.CreateDebtInput{
		Name:                  req.Name,
		TotalAmountCents:      req.TotalAmountCents,
		ContributionFrequency: req.ContributionFrequency,
		InstallmentCount:      req.InstallmentCount,
		InstallmentCents:      req.InstallmentCents,
		StartDate:             req.StartDate,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, debt)
}

func (h *DebtHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	debts, err := h.debtService.ListDebts(scope)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, debts)
}

func (h *DebtHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	debt, err := h.debtService.GetDebt(scope, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, debt)
}

func (h *DebtHandler) Update(w http.ResponseWriter, r *http.Request) {
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
		Name             string `json:"name"`
		TotalAmountCents int64  `json:"total_amount_cents"`
		Status           string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	debt, err := h.debtService.UpdateDebt(scope, id, services.UpdateDebtInput{
		Name:             req.Name,
		TotalAmountCents: req.TotalAmountCents,
		Status:           req.Status,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, debt)
}

func (h *DebtHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.debtService.DeleteDebt(scope, id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Debt deleted"})
}

func (h *DebtHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
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
		AmountCents   int64  `json:"amount_cents"`
		PaymentDate   string `json:"payment_date"`
		Notes         string `json:"notes"`
		FromAccountID int64  `json:"from_account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	payment, debt, err := h.debtService.AddPayment(scope, id, services.DebtPaymentInput{
		AmountCents:   req.AmountCents,
		PaymentDate:   req.PaymentDate,
		Notes:         req.Notes,
		FromAccountID: req.FromAccountID,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"payment": payment,
		"debt":    debt,
	})
}

func (h *DebtHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	payments, err := h.debtService.ListPayments(scope, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, payments)
}
