package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/critiquest/critiquest/internal/logger"
)

// URLParamUserID is the chi route parameter holding the user id
const URLParamUserID = "userID"

// DecodeAndValidateRequest decodes a JSON request body, validates it, and returns appropriate errors.
// If this function returns an error, the HTTP response has already been written and the handler should return.
//
// Example usage:
//
//	var req UpdateRequest
//	if err := DecodeAndValidateRequest(r, w, &req, "Apply update"); err != nil {
//	    return
//	}
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	log := logger.FromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn(fmt.Sprintf("%s request too large", actionName), "limit", tooLarge.Limit)
			respondError(w, http.StatusRequestEntityTooLarge, ErrMsgRequestTooLarge)
			return err
		}
		log.Warn(fmt.Sprintf("Failed to decode %s request", actionName), "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}

	log.Debug(fmt.Sprintf("%s request decoded", actionName))

	if err := GetValidator().ValidateStruct(req); err != nil {
		log.Warn(fmt.Sprintf("%s request failed validation", actionName), "error", err)
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}

	return nil
}

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// GetUserIDParam reads and validates the {userID} path parameter.
// If ok is false, the HTTP response has already been written and the handler should return.
func GetUserIDParam(r *http.Request, w http.ResponseWriter) (string, bool) {
	userID := chi.URLParam(r, URLParamUserID)
	if err := GetValidator().ValidateVar(userID, "userid"); err != nil {
		logger.FromContext(r.Context()).Warn("Invalid user id path parameter", "user_id", userID)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidUserID)
		return "", false
	}
	return userID, true
}
