package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"finance-service/internal/clients"
	"finance-service/internal/repositories"
	"finance-service/internal/services"
)

type contextKey string

const userIDKey contextKey = "user_id"

func loggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// authMiddleware resolves the bearer token to a user id and stores it on the
// request context.
func authMiddleware(sessions clients.SessionClient) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respondWithError(w, http.StatusUnauthorized, "Missing or malformed Authorization header")
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			userID, err := sessions.Validate(r.Context(), token)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Invalid session token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// scopeResolver derives the effective owner of a request: the authenticated
// user, or the account named by X-Acting-As when that owner has an accepted
// share with the caller.
type scopeResolver struct {
	shareRepo repositories.ShareRepository
}

func newScopeResolver(shareRepo repositories.ShareRepository) *scopeResolver {
	return &scopeResolver{shareRepo: shareRepo}
}

var errShareForbidden = errors.New("no accepted share with the requested owner")

func (sr *scopeResolver) Resolve(r *http.Request) (services.Scope, error) {
	userID, _ := r.Context().Value(userIDKey).(string)
	scope := services.Scope{UserID: userID, OwnerID: userID}

	actingAs := r.Header.Get("X-Acting-As")
	if actingAs == "" || actingAs == userID {
		return scope, nil
	}

	ok, err := sr.shareRepo.IsAcceptedShare(actingAs, userID)
	if err != nil {
		return scope, err
	}
	if !ok {
		return scope, errShareForbidden
	}
	scope.OwnerID = actingAs
	return scope, nil
}

// resolveScope is the shared prologue of every authenticated handler.
func resolveScope(w http.ResponseWriter, r *http.Request, sr *scopeResolver) (services.Scope, bool) {
	scope, err := sr.Resolve(r)
	if err != nil {
		if errors.Is(err, errShareForbidden) {
			respondWithError(w, http.StatusForbidden, "You do not have access to this owner's data")
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to resolve request scope")
		}
		return services.Scope{}, false
	}
	return scope, true
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Error marshaling JSON response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithServiceError maps service-layer errors onto HTTP status codes.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Record not found")
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
