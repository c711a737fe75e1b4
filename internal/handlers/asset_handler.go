package handlers

import (
	"encoding/json"
	"net/http"

	"finance-service/internal/services"
)

type AssetHandler struct {
	assetService *services.AssetService
	scopes       *scopeResolver
}

func NewAssetHandler(assetService *services.AssetService, scopes *scopeResolver) *AssetHandler {
	return &AssetHandler{assetService: assetService, scopes: scopes}
}

type assetRequest struct {
	Name              string `json:"name"`
	Type              string `json:"type"`
	CurrentValueCents int64  `json:"current_value_cents"`
	AcquiredAt        string `json:"acquired_at"`
}

func (req assetRequest) toInput() services.AssetInput {
	return services.AssetInput{
		Name:              req.Name,
		Type:              req.Type,
		CurrentValueCents: req.CurrentValueCents,
		AcquiredAt:        req.AcquiredAt,
	}
}

func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	asset, err := h.assetService.CreateAsset(scope, req.toInput())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, asset)
}

func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	assets, err := h.assetService.ListAssets(scope)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, assets)
}

func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	asset, err := h.assetService.GetAsset(scope, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	asset, err := h.assetService.UpdateAsset(scope, id, req.toInput())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.assetService.DeleteAsset(scope, id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Asset deleted"})
}
