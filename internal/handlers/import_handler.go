package handlers

import (
	"encoding/json"
	"net/http"

	"finance-service/internal/services"
)

type ImportHandler struct {
	importService *services.ImportService
	scopes        *scopeResolver
}

func NewImportHandler(importService *services.ImportService, scopes *scopeResolver) *ImportHandler {
	return &ImportHandler{importService: importService, scopes: scopes}
}

func (h *ImportHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	var req struct {
		CSVContent         string   `json:"csv_content"`
		AccountID          int64    `json:"account_id"`
		CategoriesToCreate []string `json:"categories_to_create"`
		SelectedIDs        []string `json:"selected_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.CSVContent == "" {
		respondWithError(w, http.StatusBadRequest, "csv_content is required")
		return
	}

	result, err := h.importService.ImportCSV(r.Context(), scope, services.ImportInput{
		CSVContent:         req.CSVContent,
		AccountID:          req.AccountID,
		CategoriesToCreate: req.CategoriesToCreate,
		SelectedIDs:        req.SelectedIDs,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
