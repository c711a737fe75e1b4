package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"finance-service/internal/repositories"
	"finance-service/internal/services"
)

type TransactionHandler struct {
	transactionService *services.TransactionService
	scopes             *scopeResolver
}

func NewTransactionHandler(transactionService *services.TransactionService, scopes *scopeResolver) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, scopes: scopes}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	var req struct {
		AccountID    int64  `json:"account_id"`
		CategoryID   int64  `json:"category_id"`
		Description  string `json:"description"`
		AmountCents  int64  `json:"amount_cents"`
		PostedAt     string `json:"posted_at"`
		ProviderTxID string `json:"provider_tx_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	transaction, err := h.transactionService.CreateTransaction(scope, services.TransactionInput{
		AccountID:    req.AccountID,
		CategoryID:   req.CategoryID,
		Description:  req.Description,
		AmountCents:  req.AmountCents,
		PostedAt:     req.PostedAt,
		ProviderTxID: req.ProviderTxID,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	filter := repositories.TransactionFilter{
		FromDate: r.URL.Query().Get("from_date"),
		ToDate:   r.URL.Query().Get("to_date"),
	}
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid account_id")
			return
		}
		filter.AccountID = id
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid category_id")
			return
		}
		filter.CategoryID = id
	}

	transactions, err := h.transactionService.ListTransactions(scope, filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	transaction, err := h.transactionService.GetTransaction(scope, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
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
		CategoryID  *int64  `json:"category_id"`
		Description *string `json:"description"`
		AmountCents *int64  `json:"amount_cents"`
		PostedAt    *string `json:"posted_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(scope, id, services.TransactionPatch{
		CategoryID:  req.CategoryID,
		Description: req.Description,
		AmountCents: req.AmountCents,
		PostedAt:    req.PostedAt,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.transactionService.DeleteTransaction(scope, id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}
