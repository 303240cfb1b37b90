package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abhinav121122/intellect-quiz-app/internal/auth"
	"github.com/abhinav121122/intellect-quiz-app/internal/extract"
	appI18n "github.com/abhinav121122/intellect-quiz-app/internal/i18n"
	"github.com/abhinav121122/intellect-quiz-app/internal/model"
	"github.com/abhinav121122/intellect-quiz-app/internal/session"
)

const maxJSONBody = 2 << 20

var (
	errBadRequest   = errors.New("malformed request body")
	errTooLarge     = errors.New("request body too large")
	errUnauthorized = errors.New("unauthorized")
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write response", "error", err)
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return errTooLarge
		}
		return errBadRequest
	}
	return nil
}

// statusFor maps a service error to an HTTP status and a message ID.
func statusFor(err error) (int, string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.MessageID
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "ErrBadRequest"
	case errors.Is(err, errTooLarge), errors.Is(err, extract.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "ErrFileTooLarge"
	case errors.Is(err, errUnauthorized), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "ErrUnauthorized"

	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "ErrQuizNotFound"
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, "ErrQuizForbidden"

	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, "ErrSessionNotFound"
	case errors.Is(err, session.ErrEmptyAnswer):
		return http.StatusBadRequest, "ErrEmptyAnswer"
	case errors.Is(err, session.ErrNotAnswering), errors.Is(err, session.ErrNotReviewing),
		errors.Is(err, session.ErrEmptyQuiz):
		return http.StatusConflict, "ErrSessionState"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "ErrInvalidCredentials"
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "ErrEmailTaken"
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, "ErrWeakPassword"
	case errors.Is(err, auth.ErrEmailRequired):
		return http.StatusBadRequest, "ErrEmailRequired"
	case errors.Is(err, auth.ErrGoogleDisabled):
		return http.StatusNotImplemented, "ErrGoogleDisabled"
	case errors.Is(err, auth.ErrGoogleSignIn):
		return http.StatusUnauthorized, "ErrGoogleSignIn"

	case errors.Is(err, extract.ErrNoText):
		return http.StatusUnprocessableEntity, "ErrNoTextExtracted"
	}
	return http.StatusInternalServerError, "ErrStorage"
}

// writeError writes err as a localized JSON error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msgID := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: appI18n.T(r.Context(), msgID)})
}
