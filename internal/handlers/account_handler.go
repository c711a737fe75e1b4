package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"finance-service/internal/services"
)

type AccountHandler struct {
	accountService *services.AccountService
	billService    *services.BillService
	scopes         *scopeResolver
}

func NewAccountHandler(accountService *services.AccountService, billService *services.BillService, scopes *scopeResolver) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		billService:    billService,
		scopes:         scopes,
	}
}

type accountRequest struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	InitialCents     int64  `json:"initial_balance_cents"`
	CreditLimitCents int64  `json:"credit_limit_cents"`
	ClosingDay       int64  `json:"closing_day"`
	DueDay           int64  `json:"due_day"`
}

func (req accountRequest) toInput() services.AccountInput {
	return services.AccountInput{
		Name:             req.Name,
		Type:             req.Type,
		InitialCents:     req.InitialCents,
		CreditLimitCents: req.CreditLimitCents,
		ClosingDay:       req.ClosingDay,
		DueDay:           req.DueDay,
	}
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	account, err := h.accountService.CreateAccount(scope, req.toInput())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(scope)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	account, err := h.accountService.GetAccount(scope, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	account, err := h.accountService.UpdateAccount(scope, id, req.toInput())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.accountService.DeleteAccount(scope, id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

func (h *AccountHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	bills, err := h.billService.ListBills(scope, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	// optional reference-month range, YYYY-MM-DD (first of month)
	from := r.URL.Query().Get("from_month")
	to := r.URL.Query().Get("to_month")
	if from != "" || to != "" {
		filtered := bills[:0]
		for _, b := range bills {
			if from != "" && b.ReferenceMonth < from {
				continue
			}
			if to != "" && b.ReferenceMonth > to {
				continue
			}
			filtered = append(filtered, b)
		}
		bills = filtered
	}
	respondWithJSON(w, http.StatusOK, bills)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
