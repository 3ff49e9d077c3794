package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iamvtyagi/99acres/internal/services"
	jwtutil "github.com/iamvtyagi/99acres/pkg/jwt"
	"github.com/iamvtyagi/99acres/pkg/logger"
	"github.com/iamvtyagi/99acres/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func respondList(w http.ResponseWriter, data interface{}, count int) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   count,
		"data":    data,
	})
}

func respondFail(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// respondError maps service errors onto status codes. Unclassified errors are
// logged and reported as a generic server error.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		respondFail(w, status, "Server Error")
		return
	}
	respondFail(w, status, err.Error())
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &services.Error{Kind: services.ErrValidation, Msg: "Invalid request payload"}
	}
	return nil
}

// currentUser returns the authenticated claims and the caller's id. The
// routes using it sit behind AuthMiddleware.
func currentUser(r *http.Request) (*jwtutil.Claims, primitive.ObjectID, error) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return nil, primitive.NilObjectID, &services.Error{Kind: services.ErrUnauthorized, Msg: "Not authorized to access this route"}
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, primitive.NilObjectID, &services.Error{Kind: services.ErrUnauthorized, Msg: "Not authorized to access this route"}
	}
	return claims, id, nil
}
