package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/alexnjoya/mindlink/internal/service"
	"github.com/alexnjoya/mindlink/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		if status >= http.StatusInternalServerError {
			logger.Error(logMsg, zap.Error(err))
		} else {
			logger.Debug(logMsg, zap.Int("status", status), zap.Error(err))
		}
	}

	respondWithJSON(w, status, errorResponse{Error: userMsg})
}

func respondWithJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondWithServiceError maps a service error onto a status and message
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, logMsg string, err error) {
	var ve validation.ValidationError
	switch {
	case errors.As(err, &ve):
		respondWithError(w, logger, http.StatusBadRequest, err.Error(), logMsg, err)
	case errors.Is(err, service.ErrSessionNotFound):
		respondWithError(w, logger, http.StatusNotFound, ErrSessionNotFound, logMsg, err)
	case errors.Is(err, service.ErrUnknownGame):
		respondWithError(w, logger, http.StatusNotFound, ErrGameNotFound, logMsg, err)
	case errors.Is(err, service.ErrForbidden):
		respondWithError(w, logger, http.StatusForbidden, ErrForbidden, logMsg, err)
	case errors.Is(err, service.ErrWrongGame):
		respondWithError(w, logger, http.StatusBadRequest, ErrWrongGame, logMsg, err)
	case errors.Is(err, service.ErrLevelNotComplete):
		respondWithError(w, logger, http.StatusConflict, ErrLevelNotComplete, logMsg, err)
	default:
		respondWithError(w, logger, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

// decodeJSON reads a JSON request body into v. An empty body leaves v alone.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
