package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"finance-service/internal/services"
)

type NotificationRuleHandler struct {
	notificationService *services.NotificationService
	scopes              *scopeResolver
}

func NewNotificationRuleHandler(notificationService *services.NotificationService, scopes *scopeResolver) *NotificationRuleHandler {
	return &NotificationRuleHandler{notificationService: notificationService, scopes: scopes}
}

type ruleRequest struct {
	Kind       string `json:"kind"`
	DaysBefore *int   `json:"days_before"`
	Channel    string `json:"channel"`
	Target     string `json:"target"`
	Active     *bool  `json:"active"`
}

func (req ruleRequest) toInput() services.RuleInput {
	return services.RuleInput{
		Kind:       req.Kind,
		DaysBefore: req.DaysBefore,
		Channel:    req.Channel,
		Target:     req.Target,
		Active:     req.Active,
	}
}

func (h *NotificationRuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	rule, err := h.notificationService.CreateRule(scope, req.toInput())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, rule)
}

func (h *NotificationRuleHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}

	rules, err := h.notificationService.ListRules(scope)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rules)
}

func (h *NotificationRuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	rule, err := h.notificationService.UpdateRule(scope, id, req.toInput())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rule)
}

func (h *NotificationRuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.scopes)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.notificationService.DeleteRule(scope, id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification rule deleted"})
}

// CronHandler exposes the scheduler-triggered sweep, guarded by a shared
// token instead of a user session.
type CronHandler struct {
	token               string
	notificationService *services.NotificationService
}

func NewCronHandler(token string, notificationService *services.NotificationService) *CronHandler {
	return &CronHandler{token: token, notificationService: notificationService}
}

func (h *CronHandler) RunNotifications(w http.ResponseWriter, r *http.Request) {
	provided := r.Header.Get("X-Cron-Token")
	if h.token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.token)) != 1 {
		respondWithError(w, http.StatusUnauthorized, "Invalid cron token")
		return
	}

	result, err := h.notificationService.RunNotifications(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
