package handlers

import (
	"encoding/json"
	"net/http"

	"finance-service/internal/services"
)

type BudgetHandler struct {
	budgetService *services.BudgetService
	scopes        *scopeResolver
}

func NewBudgetHandler(budgetService *services.BudgetService, scopes *scopeResolver) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, scopes: scopes}
}

// Set creates or overwrites the budget for (category, month).
func (h *BudgetHandler) Set(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	var req struct {
		CategoryID     int64  `json:"category_id"`
		ReferenceMonth string `json:"reference_month"`
		AmountCents    int64  `json:"amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	budget, err := h.budgetService.SetBudget(scope, services.BudgetInput{
		CategoryID:     req.CategoryID,
		ReferenceMonth: req.ReferenceMonth,
		AmountCents:    req.AmountCents,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, budget)
}

func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	statuses, err := h.budgetService.ListBudgets(scope, r.URL.Query().Get("month"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, statuses)
}

func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.budgetService.DeleteBudget(scope, id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Budget deleted"})
}
