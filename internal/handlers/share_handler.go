package handlers

import (
	"encoding/json"
	"net/http"

	"finance-service/internal/models"
	"finance-service/internal/repositories"
)

type ShareHandler struct {
	shareRepo repositories.ShareRepository
	scopes    *scopeResolver
}

func NewShareHandler(shareRepo repositories.ShareRepository, scopes *scopeResolver) *ShareHandler {
	return &ShareHandler{shareRepo: shareRepo, scopes: scopes}
}

// Create invites another user to the caller's data. Shares always start
// pending; the member accepts or the owner revokes via UpdateStatus.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	var req struct {
		MemberID string `json:"member_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.MemberID == "" {
		respondWithError(w, http.StatusBadRequest, "member_id is required")
		return
	}
	if req.MemberID == scope.UserID {
		respondWithError(w, http.StatusBadRequest, "Cannot share an account with yourself")
		return
	}

	share := &models.AccountShare{
		OwnerID:  scope.UserID,
		MemberID: req.MemberID,
		Status:   models.ShareStatusPending,
	}
	if err := h.shareRepo.InsertShare(share); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create share")
		return
	}
	respondWithJSON(w, http.StatusCreated, share)
}

func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	shares, err := h.shareRepo.ListSharesForOwner(scope.UserID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list shares")
		return
	}
	respondWithJSON(w, http.StatusOK, shares)
}

func (h *ShareHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	switch req.Status {
	case models.ShareStatusAccepted, models.ShareStatusRevoked:
	default:
		respondWithError(w, http.StatusBadRequest, "status must be accepted or revoked")
		return
	}

	if err := h.shareRepo.UpdateShareStatus(scope.UserID, id, req.Status); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Share updated"})
}
