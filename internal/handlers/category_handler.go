package handlers

import (
	"encoding/json"
	"net/http"

	"finance-service/internal/services"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
	scopes          *scopeResolver
}

func NewCategoryHandler(categoryService *services.CategoryService, scopes *scopeResolver) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, scopes: scopes}
}

type categoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	category, err := h.categoryService.CreateCategory(scope, services.CategoryInput{Name: req.Name, Type: req.Type})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	categories, err := h.categoryService.ListCategories(scope)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	category, err := h.categoryService.GetCategory(scope, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	category, err := h.categoryService.UpdateCategory(scope, id, services.CategoryInput{Name: req.Name, Type: req.Type})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.categoryService.DeleteCategory(scope, id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}
